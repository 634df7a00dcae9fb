package fence

import (
	"math"

	"fence-planner/pkg/geometry"
)

// MergeResult carries the merged line set plus a map from absorbed line ids
// to the id of the line that survived them. Callers holding a selection on
// an absorbed line follow the map (transitively resolved already).
type MergeResult struct {
	Lines    []Line
	Survivor map[string]string
}

// SurvivorOf resolves an id through any merges that absorbed it.
func (r MergeResult) SurvivorOf(id string) string {
	if s, ok := r.Survivor[id]; ok {
		return s
	}
	return id
}

// MergeLines fuses pairs of collinear, connected, unblocked lines until no
// further merge applies. Merging is idempotent: re-running on an already
// merged set is a no-op.
//
// Two lines merge when they share an endpoint within the weld tolerance,
// neither is gate-bearing, their direction difference through the junction
// is at most MergeAngleDeg, and the junction has degree exactly two with no
// gate-bearing line touching it. The merged line spans the two far
// endpoints, recomputes its length and orthogonal flag, and ORs the
// even-spacing flags. The earlier line's id survives.
func MergeLines(lines []Line, env Env) MergeResult {
	return mergeFixedPoint(lines, env, false)
}

// MergeConnectedLines is the stricter variant: in addition to the MergeLines
// rules, the two lines' projections onto their shared direction must
// overlap, preventing collinear-but-disjoint segments from fusing across a
// gap that only the weld tolerance bridges.
func MergeConnectedLines(lines []Line, env Env) MergeResult {
	return mergeFixedPoint(lines, env, true)
}

func mergeFixedPoint(lines []Line, env Env, requireOverlap bool) MergeResult {
	out := make([]Line, len(lines))
	copy(out, lines)
	survivor := make(map[string]string)

	// Each pass removes at least one line, so len(lines) passes bound the
	// loop even in pathological inputs.
	for pass := 0; pass < len(lines)+1; pass++ {
		merged := false
		for i := 0; i < len(out) && !merged; i++ {
			for j := i + 1; j < len(out); j++ {
				m, ok := tryMerge(out[i], out[j], out, env, requireOverlap)
				if !ok {
					continue
				}
				survivor[out[j].ID] = m.ID
				// Re-point anything that previously resolved to the
				// absorbed id.
				for from, to := range survivor {
					if to == out[j].ID {
						survivor[from] = m.ID
					}
				}
				out[i] = m
				out = append(out[:j], out[j+1:]...)
				merged = true
				break
			}
		}
		if !merged {
			break
		}
	}

	return MergeResult{Lines: out, Survivor: survivor}
}

// tryMerge attempts to fuse lines a and b across a shared endpoint.
func tryMerge(a, b Line, all []Line, env Env, requireOverlap bool) (Line, bool) {
	if a.HasGate() || b.HasGate() {
		return Line{}, false
	}

	tol := env.WeldToleranceM()

	// Locate the shared endpoint pair.
	var aEnd, bEnd LineEnd
	found := false
	for _, ae := range []LineEnd{EndA, EndB} {
		for _, be := range []LineEnd{EndA, EndB} {
			if env.Proj.DistanceM(endpoint(a, ae), endpoint(b, be)) <= tol {
				aEnd, bEnd = ae, be
				found = true
				break
			}
		}
		if found {
			break
		}
	}
	if !found {
		return Line{}, false
	}

	junction := env.Planar(endpoint(a, aEnd))
	farA := endpoint(a, otherEnd(aEnd))
	farB := endpoint(b, otherEnd(bEnd))

	// Direction continuity through the junction: walk far end of a into
	// the junction and out to the far end of b.
	va := junction.Sub(env.Planar(farA))
	vb := env.Planar(farB).Sub(junction)
	if geometry.AngleBetweenDeg(va, vb) > env.Params.MergeAngleDeg {
		return Line{}, false
	}

	// The junction must be a plain degree-2 point: exactly the two merge
	// candidates touch it, and no gate-bearing line comes near it.
	degree := 0
	for _, l := range all {
		touches := false
		for _, e := range []LineEnd{EndA, EndB} {
			if env.Planar(endpoint(l, e)).Distance(junction) <= tol {
				degree++
				touches = true
			}
		}
		if l.HasGate() {
			if touches || geometry.PointToSegmentDistance(junction, env.Planar(l.A), env.Planar(l.B)) <= tol {
				return Line{}, false
			}
		}
	}
	if degree != 2 {
		return Line{}, false
	}

	if requireOverlap && !projectionsOverlap(a, b, env) {
		return Line{}, false
	}

	m := Line{
		ID:          a.ID,
		A:           farA,
		B:           farB,
		EvenSpacing: a.EvenSpacing || b.EvenSpacing,
	}
	return env.Refresh(m), true
}

// projectionsOverlap projects both lines onto their shared direction and
// checks that the two intervals touch or overlap.
func projectionsOverlap(a, b Line, env Env) bool {
	dir := direction(a, env)
	if dir.Norm() == 0 {
		return false
	}

	interval := func(l Line) (lo, hi float64) {
		pa := env.Planar(l.A).Dot(dir)
		pb := env.Planar(l.B).Dot(dir)
		return math.Min(pa, pb), math.Max(pa, pb)
	}

	aLo, aHi := interval(a)
	bLo, bHi := interval(b)

	// A shared endpoint already puts the intervals in contact; any gap
	// here means the lines only meet through weld-tolerance slack.
	const eps = 1e-9
	return aHi >= bLo-eps && bHi >= aLo-eps
}
