package fence

import (
	"fence-planner/internal/geo"
)

// splitClamp keeps a split junction away from the line's endpoints: the
// parametric position must land inside (splitClampLo, splitClampHi) so a
// split can never degenerate into an existing endpoint. Points nearer the
// ends are the welder's business, not the splitter's.
const (
	splitClampLo = 0.02
	splitClampHi = 0.98
)

// SplitResult is the outcome of cutting one line into two.
type SplitResult struct {
	// Left keeps the original line's id and spans [A, Junction].
	Left Line
	// Right is a new line spanning [Junction, B].
	Right Line
	// Junction is the quantized cut point.
	Junction geo.Point
}

// SplitLine cuts a line into two at the given point. The point is projected
// onto the segment and the junction quantized. Each piece recomputes its own
// length.
//
// Returns nil when the line is gate-bearing, the point does not land on the
// segment within the weld tolerance, or the projection falls outside the
// qualifying interior.
func SplitLine(l Line, p geo.Point, newID func() string, env Env) *SplitResult {
	if l.HasGate() {
		return nil
	}

	sp := projectOnLine(l, p, env)
	if sp.Distance > env.WeldToleranceM() {
		return nil
	}
	if sp.T <= splitClampLo || sp.T >= splitClampHi {
		return nil
	}

	junction := env.Quantize(env.Geographic(lerpPlanar(l, sp.T, env)))

	left := l
	left.B = junction
	left = env.Refresh(left)

	right := Line{
		ID:          newID(),
		A:           junction,
		B:           l.B,
		EvenSpacing: l.EvenSpacing,
	}
	right = env.Refresh(right)

	return &SplitResult{Left: left, Right: right, Junction: junction}
}
