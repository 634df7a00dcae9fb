package fence

import (
	"fence-planner/pkg/geometry"
)

// weldCluster groups near-coincident endpoints around a representative
// point. The representative is the first endpoint that seeded the cluster.
type weldCluster struct {
	rep     geometry.Point2D
	lineIDs map[string]bool
	gateID  string // set when a gate-bearing line is in the cluster
}

// WeldEndpoints canonicalizes near-coincident line endpoints into shared
// points. Endpoints within the weld tolerance of a cluster's representative
// are rewritten to that representative.
//
// A line joins a cluster only if no line already in it would become
// topologically blocked against it: a gate-bearing line clusters only with
// itself, so gate boundaries are never dragged onto foreign geometry.
//
// Clustering is first-come-first-served over the input order. That is an
// explicit limitation: a dense corner can weld differently depending on
// draw order, and historic drawings must keep welding the way they did.
func WeldEndpoints(lines []Line, env Env) []Line {
	tol := env.WeldToleranceM()

	var clusters []*weldCluster

	place := func(l Line, pt geometry.Point2D) geometry.Point2D {
		for _, c := range clusters {
			if c.rep.Distance(pt) > tol {
				continue
			}
			if blocked(c, l) {
				continue
			}
			c.lineIDs[l.ID] = true
			if l.HasGate() {
				c.gateID = l.GateID
			}
			return c.rep
		}
		c := &weldCluster{rep: pt, lineIDs: map[string]bool{l.ID: true}}
		if l.HasGate() {
			c.gateID = l.GateID
		}
		clusters = append(clusters, c)
		return c.rep
	}

	out := make([]Line, len(lines))
	for i, l := range lines {
		a := place(l, env.Planar(l.A))
		b := place(l, env.Planar(l.B))
		l.A = env.Geographic(a)
		l.B = env.Geographic(b)
		out[i] = env.Refresh(l)
	}
	return out
}

// blocked reports whether line l may not share a welded point with the
// cluster. A cluster holding a gate-bearing line accepts only more
// endpoints of that same line, and a gate-bearing line never joins a
// cluster seeded by other lines.
func blocked(c *weldCluster, l Line) bool {
	if c.gateID != "" {
		return !c.lineIDs[l.ID]
	}
	if l.HasGate() {
		// Cluster has no gate yet; only this line's own endpoints allowed.
		return !c.lineIDs[l.ID] || len(c.lineIDs) > 1
	}
	return false
}
