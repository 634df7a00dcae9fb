package fence

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats/scalar"

	"fence-planner/pkg/geometry"
)

// neighborRef is one direction leaving a post, with the length of the run
// that provides it. Lengths drive the corner-bearing tie-break.
type neighborRef struct {
	dir   geometry.Point2D // unit vector away from the post
	lenMM float64
}

// postNode accumulates local topology for one candidate post position.
type postNode struct {
	pt        geometry.Point2D
	neighbors []neighborRef
	touchGate bool
	panel     bool
}

// GeneratePosts derives support-post positions and categories from line
// topology. Every line contributes its two endpoints; panel layouts
// contribute interior pseudo-nodes; endpoints landing in another line's
// interior contribute T-hit connections.
func GeneratePosts(lines []Line, layouts map[string]PanelLayout, env Env) []Post {
	nodes := make(map[string]*postNode)
	var order []string

	get := func(pt geometry.Point2D) *postNode {
		key := env.pointKey(pt)
		if n, ok := nodes[key]; ok {
			return n
		}
		n := &postNode{pt: pt}
		nodes[key] = n
		order = append(order, key)
		return n
	}

	// Endpoint vertices.
	for _, l := range lines {
		a, b := env.Planar(l.A), env.Planar(l.B)
		na, nb := get(a), get(b)
		na.neighbors = append(na.neighbors, neighborRef{dir: b.Sub(a).Unit(), lenMM: l.LengthMM})
		nb.neighbors = append(nb.neighbors, neighborRef{dir: a.Sub(b).Unit(), lenMM: l.LengthMM})
		if l.HasGate() {
			na.touchGate = true
			nb.touchGate = true
		}
	}

	// Panel-interior pseudo-nodes: degree-1 posts aligned with their run.
	for _, l := range lines {
		layout, ok := layouts[l.ID]
		if !ok || l.LengthMM <= 0 {
			continue
		}
		a, b := env.Planar(l.A), env.Planar(l.B)
		dir := b.Sub(a).Unit()
		for _, posMM := range layout.PositionsMM {
			t := posMM / l.LengthMM
			n := get(geometry.Lerp(a, b, t))
			n.panel = true
			n.neighbors = append(n.neighbors, neighborRef{dir: dir, lenMM: l.LengthMM})
		}
	}

	// T-hits: one line's endpoint landing in another line's interior.
	tol := env.WeldToleranceM()
	for _, l := range lines {
		for _, end := range []LineEnd{EndA, EndB} {
			p := env.Planar(endpoint(l, end))
			for _, other := range lines {
				if other.ID == l.ID {
					continue
				}
				oa, ob := env.Planar(other.A), env.Planar(other.B)
				sp := geometry.ProjectOntoSegment(p, oa, ob)
				if sp.Distance > tol || sp.T <= splitClampLo || sp.T >= splitClampHi {
					continue
				}
				n := get(p)
				n.neighbors = append(n.neighbors,
					neighborRef{dir: oa.Sub(p).Unit(), lenMM: other.LengthMM},
					neighborRef{dir: ob.Sub(p).Unit(), lenMM: other.LengthMM})
				if other.HasGate() {
					n.touchGate = true
				}
			}
		}
	}

	// Deterministic output order: scan order is insertion order, ids are
	// positional after a spatial sort.
	sort.Slice(order, func(i, j int) bool {
		a, b := nodes[order[i]].pt, nodes[order[j]].pt
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Y < b.Y
	})

	posts := make([]Post, 0, len(order))
	for i, key := range order {
		n := nodes[key]
		posts = append(posts, Post{
			ID:       fmt.Sprintf("post-%03d", i+1),
			Position: env.Geographic(n.pt),
			Category: classify(n, env.Params),
			Source:   postSource(n),
			AngleDeg: postAngle(n, lines, env),
		})
	}
	return posts
}

func postSource(n *postNode) PostSource {
	if n.panel {
		return SourcePanelInterior
	}
	return SourceVertex
}

// classify applies the category rules: end for degree ≤1 or any gate
// contact, t for degree ≥3, corner for a degree-2 bend inside the corner
// turn window, line otherwise.
func classify(n *postNode, p Params) PostCategory {
	if n.panel {
		return PostLine
	}
	if n.touchGate {
		return PostEnd
	}
	switch {
	case len(n.neighbors) <= 1:
		return PostEnd
	case len(n.neighbors) >= 3:
		return PostT
	}

	turn := turnDeg(n.neighbors[0].dir, n.neighbors[1].dir)
	if turn > p.CornerMinTurnDeg && turn < p.CornerMaxTurnDeg {
		return PostCorner
	}
	return PostLine
}

// turnDeg is the deviation from straight-through at a degree-2 post:
// 0 for collinear continuation, 90 for a right angle.
func turnDeg(u, v geometry.Point2D) float64 {
	return 180 - geometry.AngleBetweenDeg(u, v)
}

// postAngle picks the rendering orientation for a post.
//
// 0–1 neighbors use the direct bearing, falling back to the nearest line
// when isolated. Two neighbors use the bisector of the neighbor directions;
// corner posts instead take the bearing of the longer adjacent run when the
// length difference exceeds the tie threshold, or the flatter (smaller |y|)
// vector on a near-tie. Three or more neighbors keep the first bearing.
func postAngle(n *postNode, lines []Line, env Env) float64 {
	switch len(n.neighbors) {
	case 0:
		return nearestLineBearing(n.pt, lines, env)
	case 1:
		return vecBearing(n.neighbors[0].dir)
	case 2:
		if classify(n, env.Params) == PostCorner {
			a, b := n.neighbors[0], n.neighbors[1]
			if !scalar.EqualWithinAbs(a.lenMM, b.lenMM, env.Params.CornerBearingTieMM) {
				if a.lenMM >= b.lenMM {
					return vecBearing(a.dir)
				}
				return vecBearing(b.dir)
			}
			if math.Abs(a.dir.Y) <= math.Abs(b.dir.Y) {
				return vecBearing(a.dir)
			}
			return vecBearing(b.dir)
		}
		bisector := n.neighbors[0].dir.Add(n.neighbors[1].dir)
		if bisector.Norm() < 1e-9 {
			// Opposed directions (straight through): either bearing works.
			return vecBearing(n.neighbors[0].dir)
		}
		return vecBearing(bisector)
	default:
		return vecBearing(n.neighbors[0].dir)
	}
}

func vecBearing(v geometry.Point2D) float64 {
	return geometry.BearingDeg(geometry.Point2D{}, v)
}

func nearestLineBearing(pt geometry.Point2D, lines []Line, env Env) float64 {
	best := math.MaxFloat64
	var bearing float64
	for _, l := range lines {
		a, b := env.Planar(l.A), env.Planar(l.B)
		d := geometry.PointToSegmentDistance(pt, a, b)
		if d < best {
			best = d
			bearing = geometry.BearingDeg(a, b)
		}
	}
	return bearing
}
