// Package fence implements the fence-line network engine: a canonical set
// of line segments (runs) and gate openings kept topologically consistent
// under drawing, resizing, splitting and gate placement, from which posts,
// panel layouts and measurement spans are deterministically derived.
//
// All functions in this package are pure: they operate on copies of the
// canonical state and return new values. Ownership of the canonical line
// and gate slices lives in the store.
package fence

import (
	"fence-planner/internal/geo"
)

// Line represents one fence run between two endpoints.
//
// LengthMM is always the projected distance between the current endpoints;
// a line never carries a length inconsistent with its own geometry.
type Line struct {
	ID          string    `json:"id"`
	A           geo.Point `json:"a"`
	B           geo.Point `json:"b"`
	LengthMM    float64   `json:"length_mm"`
	Orthogonal  bool      `json:"orthogonal"`
	EvenSpacing bool      `json:"even_spacing"`

	// GateID is set when this line is the opening of a gate. Gate-bearing
	// lines are immutable with respect to topology: they are never welded,
	// split or merged, and their endpoints move only symmetrically through
	// a gate resize.
	GateID string `json:"gate_id,omitempty"`
}

// HasGate reports whether the line carries a gate opening.
func (l Line) HasGate() bool {
	return l.GateID != ""
}

// GateType identifies the kind of gate occupying an opening.
type GateType string

const (
	GateSingle  GateType = "single"
	GateDouble  GateType = "double"
	GateSliding GateType = "sliding"
	GateCustom  GateType = "custom"
)

// ReturnSide names which end of a sliding gate's line the leaf retracts
// toward.
type ReturnSide string

const (
	ReturnSideA ReturnSide = "a"
	ReturnSideB ReturnSide = "b"
)

// Gate represents a gate opening carved out of a run.
type Gate struct {
	ID      string   `json:"id"`
	Type    GateType `json:"type"`
	WidthMM float64  `json:"width_mm"`

	// LineID is the gate-bearing line that forms the opening.
	LineID string `json:"line_id"`

	// Sliding gates need a clear return run adjacent to one side.
	ReturnSide     ReturnSide `json:"return_side,omitempty"`
	ReturnLengthMM float64    `json:"return_length_mm,omitempty"`

	LeafCount   int     `json:"leaf_count"`
	LeafWidthMM float64 `json:"leaf_width_mm"`
}

// LineEnd names one endpoint of a line.
type LineEnd string

const (
	EndA LineEnd = "a"
	EndB LineEnd = "b"
)

// PostCategory classifies a derived post by its local topology.
type PostCategory string

const (
	PostEnd    PostCategory = "end"
	PostCorner PostCategory = "corner"
	PostLine   PostCategory = "line"
	PostT      PostCategory = "t"
)

// PostSource records what produced a derived post.
type PostSource string

const (
	SourceVertex        PostSource = "vertex"
	SourcePanelInterior PostSource = "panel-interior"
)

// Post is a derived support point. Posts are regenerated wholesale on every
// recompute and are never mutated in place.
type Post struct {
	ID       string
	Position geo.Point
	Category PostCategory
	Source   PostSource

	// AngleDeg is the rendering orientation for the post, degrees
	// counter-clockwise from planar east.
	AngleDeg float64
}

// PostSpan is the walked-path distance between two consecutive posts.
type PostSpan struct {
	FromID   string
	ToID     string
	LengthMM float64
}

// Station is a post's cumulative distance along the walked path.
type Station struct {
	PostID    string
	StationMM float64
}

// FindLine returns the line with the given id, or nil.
func FindLine(lines []Line, id string) *Line {
	for i := range lines {
		if lines[i].ID == id {
			return &lines[i]
		}
	}
	return nil
}

// FindGate returns the gate with the given id, or nil.
func FindGate(gates []Gate, id string) *Gate {
	for i := range gates {
		if gates[i].ID == id {
			return &gates[i]
		}
	}
	return nil
}
