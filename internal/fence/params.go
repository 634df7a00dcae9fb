package fence

import (
	"math"

	"fence-planner/internal/geo"
	"fence-planner/pkg/geometry"
)

// GateWidthRule bounds the opening width for one gate type.
type GateWidthRule struct {
	DefaultMM float64
	MinMM     float64
	MaxMM     float64
	Leaves    int
}

// Params holds the engine's tolerances and catalog dimensions.
// All distances are real-world millimeters.
type Params struct {
	// QuantStepMM is the grid pitch endpoints snap to.
	QuantStepMM float64

	// WeldToleranceMM is the distance at which near-coincident endpoints
	// are canonicalized into one shared point.
	WeldToleranceMM float64

	// MergeAngleDeg is the maximum direction difference for two connected
	// lines to fuse into one.
	MergeAngleDeg float64

	// OrthoToleranceDeg is how close a bearing must be to a multiple of
	// 90 degrees for a line to count as orthogonal.
	OrthoToleranceDeg float64

	// MinRunMM/MaxRunMM bound run lengths. Freehand draws below the
	// minimum warn and abort; numeric resizes outside the range error.
	MinRunMM float64
	MaxRunMM float64

	// Panel tiling.
	PanelLengthMM float64
	MinLeftoverMM float64

	// Gate placement.
	GateEndClearanceMM float64
	SlidingReturnMM    float64
	GateWidths         map[GateType]GateWidthRule

	// Post classification. A degree-2 post whose turn away from straight
	// lies inside (CornerMinTurnDeg, CornerMaxTurnDeg) is a corner.
	CornerMinTurnDeg float64
	CornerMaxTurnDeg float64

	// CornerBearingTieMM is the adjacent-run length difference below which
	// a corner post's bearing falls back to the flatter neighbor vector.
	CornerBearingTieMM float64

	// SpanNoiseFloorMM suppresses spans between posts closer than this.
	SpanNoiseFloorMM float64
}

// DefaultParams returns the engine defaults. These are tuned for
// residential fencing; site-specific catalogs override them via config.
func DefaultParams() Params {
	return Params{
		QuantStepMM:       1,
		WeldToleranceMM:   60,
		MergeAngleDeg:     2,
		OrthoToleranceDeg: 1,

		MinRunMM: 100,
		MaxRunMM: 50000,

		PanelLengthMM: 2380,
		MinLeftoverMM: 300,

		GateEndClearanceMM: 300,
		SlidingReturnMM:    4800,
		GateWidths: map[GateType]GateWidthRule{
			GateSingle:  {DefaultMM: 900, MinMM: 700, MaxMM: 1200, Leaves: 1},
			GateDouble:  {DefaultMM: 3000, MinMM: 1800, MaxMM: 3600, Leaves: 2},
			GateSliding: {DefaultMM: 3500, MinMM: 2400, MaxMM: 6000, Leaves: 1},
			GateCustom:  {DefaultMM: 1000, MinMM: 300, MaxMM: 12000, Leaves: 1},
		},

		CornerMinTurnDeg:   30,
		CornerMaxTurnDeg:   160,
		CornerBearingTieMM: 50,

		SpanNoiseFloorMM: 0.5,
	}
}

// WidthRule returns the width rule for a gate type, falling back to the
// custom rule for unknown types.
func (p Params) WidthRule(t GateType) GateWidthRule {
	if r, ok := p.GateWidths[t]; ok {
		return r
	}
	return p.GateWidths[GateCustom]
}

// Env bundles the projector, parameters and display scale that every
// geometric primitive needs. It is passed by value; primitives never hold
// shared mutable state.
type Env struct {
	Proj   *geo.Projector
	Params Params
	Scale  float64
}

// NewEnv creates an Env. A non-positive scale is treated as true scale.
func NewEnv(proj *geo.Projector, params Params, scale float64) Env {
	if scale <= 0 {
		scale = 1
	}
	return Env{Proj: proj, Params: params, Scale: scale}
}

// Planar projects a geographic point into local planar meters.
func (e Env) Planar(p geo.Point) geometry.Point2D {
	return e.Proj.ToPlanar(p)
}

// Geographic unprojects a planar point.
func (e Env) Geographic(pt geometry.Point2D) geo.Point {
	return e.Proj.ToGeographic(pt)
}

// MM converts a planar-meter distance into real-world millimeters.
func (e Env) MM(meters float64) float64 {
	return meters * 1000 * e.Scale
}

// Meters converts real-world millimeters into planar meters.
func (e Env) Meters(mm float64) float64 {
	return mm / 1000 / e.Scale
}

// DistanceMM returns the projected distance between two geographic points
// in real-world millimeters.
func (e Env) DistanceMM(a, b geo.Point) float64 {
	return e.MM(e.Proj.DistanceM(a, b))
}

// Quantize snaps a geographic point to the millimeter grid.
func (e Env) Quantize(p geo.Point) geo.Point {
	return geo.Quantize(e.Proj, p, e.Params.QuantStepMM, e.Scale)
}

// WeldToleranceM is the weld tolerance expressed in planar meters.
func (e Env) WeldToleranceM() float64 {
	return e.Meters(e.Params.WeldToleranceMM)
}

// Length recomputes a line's length from its endpoints.
func (e Env) Length(l Line) float64 {
	return e.DistanceMM(l.A, l.B)
}

// IsOrthogonal reports whether the segment a-b runs within tolerance of a
// multiple of 90 degrees.
func (e Env) IsOrthogonal(a, b geo.Point) bool {
	bearing := geometry.BearingDeg(e.Planar(a), e.Planar(b))
	rem := math.Mod(bearing, 90)
	if rem > 45 {
		rem = 90 - rem
	}
	return rem <= e.Params.OrthoToleranceDeg
}

// Refresh returns l with its length and orthogonal flag recomputed from its
// current endpoints.
func (e Env) Refresh(l Line) Line {
	l.LengthMM = e.Length(l)
	l.Orthogonal = e.IsOrthogonal(l.A, l.B)
	return l
}
