package fence

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

// PanelSegment is one fixed-length infill tile along a run.
type PanelSegment struct {
	Index    int     `json:"index"`
	StartMM  float64 `json:"start_mm"`
	LengthMM float64 `json:"length_mm"`
}

// PanelLayout is the derived tiling of a run: fixed panels plus an optional
// trailing leftover. Regenerated wholesale on every recompute.
type PanelLayout struct {
	RunID      string
	Segments   []PanelSegment
	LeftoverMM float64

	// PositionsMM are the interior boundary stations along the run where
	// panel-interior posts stand (run endpoints excluded).
	PositionsMM []float64

	// EvenSpacing reports whether gaps were widened evenly instead of
	// leaving a short leftover.
	EvenSpacing bool

	Warnings []string
}

// LeftoverAccumulator collects leftover cuts across runs so quoting can
// offer offcut reuse. One accumulator lives per recompute pass.
type LeftoverAccumulator struct {
	pieces []Leftover
}

// Leftover is one trailing remainder produced while tiling a run.
type Leftover struct {
	RunID    string  `json:"run_id"`
	LengthMM float64 `json:"length_mm"`
}

// Add records a leftover piece.
func (a *LeftoverAccumulator) Add(runID string, lengthMM float64) {
	if lengthMM <= 0 {
		return
	}
	a.pieces = append(a.pieces, Leftover{RunID: runID, LengthMM: lengthMM})
}

// Pieces returns the collected leftovers.
func (a *LeftoverAccumulator) Pieces() []Leftover {
	return a.pieces
}

// TotalMM returns the summed leftover length.
func (a *LeftoverAccumulator) TotalMM() float64 {
	var total float64
	for _, p := range a.pieces {
		total += p.LengthMM
	}
	return total
}

// FitPanels tiles a run with fixed-length panels plus a trailing leftover.
//
// Even spacing applies when explicitly requested, or automatically when the
// natural leftover is nonzero but below the minimum-leftover threshold; in
// that case the short leftover is dropped and all gaps widen evenly. An
// explicit even-spacing request with a usable leftover instead adds one
// more, slightly narrowed panel so nothing is wasted.
func FitPanels(runID string, lengthMM float64, evenSpacing bool, acc *LeftoverAccumulator, p Params) PanelLayout {
	layout := PanelLayout{RunID: runID}
	if lengthMM <= 0 || p.PanelLengthMM <= 0 {
		return layout
	}

	count := int(math.Floor(lengthMM / p.PanelLengthMM))
	leftover := lengthMM - float64(count)*p.PanelLengthMM
	if scalar.EqualWithinAbs(leftover, 0, 1e-9) {
		leftover = 0
	}

	even := false
	switch {
	case count == 0:
		// Run shorter than one panel: a single cut-down panel.
		layout.Segments = []PanelSegment{{Index: 0, StartMM: 0, LengthMM: lengthMM}}
		layout.Warnings = append(layout.Warnings,
			fmt.Sprintf("run %s shorter than one panel (%.0f mm)", runID, lengthMM))
		return layout
	case leftover == 0:
		// Exact fit.
	case evenSpacing && leftover >= p.MinLeftoverMM:
		count++
		even = true
	case evenSpacing || leftover < p.MinLeftoverMM:
		even = true
	}

	if even {
		seg := lengthMM / float64(count)
		for i := 0; i < count; i++ {
			layout.Segments = append(layout.Segments, PanelSegment{
				Index: i, StartMM: float64(i) * seg, LengthMM: seg,
			})
		}
		layout.EvenSpacing = true
	} else {
		for i := 0; i < count; i++ {
			layout.Segments = append(layout.Segments, PanelSegment{
				Index: i, StartMM: float64(i) * p.PanelLengthMM, LengthMM: p.PanelLengthMM,
			})
		}
		layout.LeftoverMM = leftover
		if acc != nil {
			acc.Add(runID, leftover)
		}
	}

	// Interior post positions: every boundary between consecutive pieces.
	for i := 1; i < len(layout.Segments); i++ {
		layout.PositionsMM = append(layout.PositionsMM, layout.Segments[i].StartMM)
	}
	if layout.LeftoverMM > 0 {
		layout.PositionsMM = append(layout.PositionsMM, lengthMM-layout.LeftoverMM)
	}

	return layout
}
