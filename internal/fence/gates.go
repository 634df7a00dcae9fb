package fence

import (
	"fmt"
	"math"

	"fence-planner/internal/geo"
	"fence-planner/pkg/geometry"
)

// carveEpsilonMM drops zero-length pieces when carving a gate out of a run.
const carveEpsilonMM = 0.5

// CarveOutcome is the result of carving a gate opening out of a run.
type CarveOutcome struct {
	// Lines is the full replacement line set.
	Lines []Line
	Gate  Gate

	// Warning is set instead of a gate when the run cannot host the
	// opening; the carve is then a no-op.
	Warning string
}

// CarveGate carves a gate-width sub-line out of a run at the click position
// (projected onto the run) or, absent a click, its midpoint. The run is
// replaced by up to three pieces: before / gate / after, with zero-length
// pieces omitted. The piece before the opening keeps the run's id.
//
// The opening requires symmetric end clearance on both sides, unless
// exactly one end of the run is a true dead-end and the other an interior
// junction, in which case the junction side may sit flush.
func CarveGate(lines []Line, runID string, click *geo.Point, t GateType, newID func() string, env Env) CarveOutcome {
	run := FindLine(lines, runID)
	if run == nil || run.HasGate() {
		// Structurally impossible; callers log, users never see this.
		return CarveOutcome{Lines: lines, Warning: "gate target is not a plain run"}
	}

	rule := env.Params.WidthRule(t)
	opening := rule.DefaultMM
	runLen := run.LengthMM

	if opening > runLen {
		return CarveOutcome{Lines: lines, Warning: fmt.Sprintf(
			"run too short for %s gate: need %.0f mm, have %.0f mm", t, opening, runLen)}
	}

	net := BuildNetwork(lines, env)
	degA := net.Degree(env.Planar(run.A))
	degB := net.Degree(env.Planar(run.B))

	clearA := env.Params.GateEndClearanceMM
	clearB := env.Params.GateEndClearanceMM
	switch {
	case degA <= 1 && degB >= 2:
		clearB = 0
	case degB <= 1 && degA >= 2:
		clearA = 0
	}

	if opening+clearA+clearB > runLen {
		return CarveOutcome{Lines: lines, Warning: fmt.Sprintf(
			"run too short for %s gate: need %.0f mm with clearance, have %.0f mm",
			t, opening+clearA+clearB, runLen)}
	}

	center := runLen / 2
	if click != nil {
		sp := projectOnLine(*run, *click, env)
		tc := sp.T
		if tc < 0 {
			tc = 0
		} else if tc > 1 {
			tc = 1
		}
		center = tc * runLen
	}
	lo := clearA + opening/2
	hi := runLen - clearB - opening/2
	if center < lo {
		center = lo
	} else if center > hi {
		center = hi
	}

	s1 := center - opening/2
	s2 := center + opening/2

	a := env.Planar(run.A)
	dir := direction(*run, env)
	cutPoint := func(stationMM float64) geo.Point {
		return env.Quantize(env.Geographic(a.Add(dir.Scale(env.Meters(stationMM)))))
	}
	p1 := cutPoint(s1)
	p2 := cutPoint(s2)

	gate := Gate{
		ID:          newID(),
		Type:        t,
		WidthMM:     opening,
		LeafCount:   rule.Leaves,
		LeafWidthMM: opening / float64(max(rule.Leaves, 1)),
	}
	if t == GateSliding {
		gate.ReturnSide = ReturnSideB
		gate.ReturnLengthMM = env.Params.SlidingReturnMM
	}

	var pieces []Line
	if s1 > carveEpsilonMM {
		pieces = append(pieces, env.Refresh(Line{
			ID: run.ID, A: run.A, B: p1, EvenSpacing: run.EvenSpacing,
		}))
	}
	gateLine := env.Refresh(Line{ID: newID(), A: p1, B: p2, GateID: gate.ID})
	gate.LineID = gateLine.ID
	gate.WidthMM = gateLine.LengthMM
	gate.LeafWidthMM = gate.WidthMM / float64(max(rule.Leaves, 1))
	pieces = append(pieces, gateLine)
	if runLen-s2 > carveEpsilonMM {
		pieces = append(pieces, env.Refresh(Line{
			ID: newID(), A: p2, B: run.B, EvenSpacing: run.EvenSpacing,
		}))
	}

	out := make([]Line, 0, len(lines)+2)
	for _, l := range lines {
		if l.ID == runID {
			out = append(out, pieces...)
			continue
		}
		out = append(out, l)
	}
	return CarveOutcome{Lines: out, Gate: gate}
}

// ResizeOutcome is the result of a gate-width update.
type ResizeOutcome struct {
	OK      bool
	WidthMM float64
	Err     error

	Lines []Line
	Gates []Gate
}

// ResizeGate recenters a gate opening symmetrically at the requested width.
// The width is validated against the gate type's range (hard error) and
// clamped to the space available by walking aligned boundary lines on both
// sides. The new boundary points propagate to every line that shared the
// old ones.
func ResizeGate(lines []Line, gates []Gate, gateID string, widthMM float64, env Env) ResizeOutcome {
	fail := func(err error) ResizeOutcome {
		return ResizeOutcome{Err: err, Lines: lines, Gates: gates}
	}

	gate := FindGate(gates, gateID)
	if gate == nil {
		return fail(ErrUnknownGate)
	}
	gl := FindLine(lines, gate.LineID)
	if gl == nil {
		return fail(fmt.Errorf("%w: gate %s references line %s", ErrUnknownLine, gateID, gate.LineID))
	}

	rule := env.Params.WidthRule(gate.Type)
	if widthMM < rule.MinMM || widthMM > rule.MaxMM {
		return fail(fmt.Errorf("%w: %s gate allows %.0f-%.0f mm, got %.0f mm",
			ErrWidthOutOfRange, gate.Type, rule.MinMM, rule.MaxMM, widthMM))
	}

	dir := direction(*gl, env)
	availA := alignedChainMM(lines, gl.ID, gl.A, dir, env)
	availB := alignedChainMM(lines, gl.ID, gl.B, dir, env)

	// Symmetric recenter: each side gives up the same amount, so growth is
	// capped by the tighter side (keeping end clearance on both).
	grow := math.Min(availA, availB) - env.Params.GateEndClearanceMM
	if grow < 0 {
		grow = 0
	}
	maxW := gate.WidthMM + 2*grow

	target := widthMM
	if target > maxW {
		target = maxW
	}
	if target < rule.MinMM {
		return fail(fmt.Errorf("%w: only %.0f mm available for %s gate (min %.0f mm)",
			ErrInsufficientSpace, maxW, gate.Type, rule.MinMM))
	}

	delta := env.Meters((target - gate.WidthMM) / 2)
	oldA, oldB := gl.A, gl.B
	newA := env.Quantize(env.Geographic(env.Planar(oldA).Sub(dir.Scale(delta))))
	newB := env.Quantize(env.Geographic(env.Planar(oldB).Add(dir.Scale(delta))))

	outLines := make([]Line, len(lines))
	copy(outLines, lines)
	for i := range outLines {
		l := &outLines[i]
		if l.ID == gl.ID {
			l.A, l.B = newA, newB
			*l = env.Refresh(*l)
			continue
		}
		changed := false
		for _, end := range []LineEnd{EndA, EndB} {
			switch {
			case nearPoint(endpoint(*l, end), oldA, env):
				setEndpoint(l, end, newA)
				changed = true
			case nearPoint(endpoint(*l, end), oldB, env):
				setEndpoint(l, end, newB)
				changed = true
			}
		}
		if changed {
			*l = env.Refresh(*l)
		}
	}

	outGates := make([]Gate, len(gates))
	copy(outGates, gates)
	g := FindGate(outGates, gateID)
	g.WidthMM = FindLine(outLines, gl.ID).LengthMM
	g.LeafWidthMM = g.WidthMM / float64(max(g.LeafCount, 1))

	return ResizeOutcome{OK: true, WidthMM: g.WidthMM, Lines: outLines, Gates: outGates}
}

// ValidateSlidingReturn checks that a sliding gate's return side has an
// adjacent aligned run at least as long as the required return length.
// A shortfall is a warning only; it never blocks the mutation.
func ValidateSlidingReturn(lines []Line, gate Gate, env Env) (string, bool) {
	if gate.Type != GateSliding {
		return "", true
	}
	gl := FindLine(lines, gate.LineID)
	if gl == nil {
		return "", true
	}

	required := gate.ReturnLengthMM
	if required <= 0 {
		required = env.Params.SlidingReturnMM
	}

	from := gl.B
	if gate.ReturnSide == ReturnSideA {
		from = gl.A
	}
	avail := alignedChainMM(lines, gl.ID, from, direction(*gl, env), env)
	if avail+carveEpsilonMM >= required {
		return "", true
	}
	return fmt.Sprintf("sliding gate %s needs %.0f mm return, only %.0f mm available",
		gate.ID, required, avail), false
}

// alignedChainMM walks boundary lines outward from a point, following lines
// whose direction stays within the merge angle of dir, and returns the
// accumulated length. Gate-bearing lines stop the walk.
func alignedChainMM(lines []Line, excludeID string, from geo.Point, dir geometry.Point2D, env Env) float64 {
	visited := map[string]bool{excludeID: true}
	total := 0.0
	point := from

	for {
		advanced := false
		for i := range lines {
			l := lines[i]
			if visited[l.ID] || l.HasGate() {
				continue
			}
			var far geo.Point
			switch {
			case nearPoint(l.A, point, env):
				far = l.B
			case nearPoint(l.B, point, env):
				far = l.A
			default:
				continue
			}
			if geometry.DirectionDiffDeg(direction(l, env), dir) > env.Params.MergeAngleDeg {
				continue
			}
			visited[l.ID] = true
			total += l.LengthMM
			point = far
			advanced = true
			break
		}
		if !advanced {
			return total
		}
	}
}
