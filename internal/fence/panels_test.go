package fence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitPanelsNaturalLeftover(t *testing.T) {
	p := DefaultParams()
	var acc LeftoverAccumulator

	layout := FitPanels("run", 6000, false, &acc, p)
	require.Len(t, layout.Segments, 2)
	assert.InDelta(t, 2380, layout.Segments[0].LengthMM, 1e-9)
	assert.InDelta(t, 1240, layout.LeftoverMM, 1e-9)
	assert.False(t, layout.EvenSpacing)
	assert.InDeltaSlice(t, []float64{2380, 4760}, layout.PositionsMM, 1e-9)

	require.Len(t, acc.Pieces(), 1)
	assert.InDelta(t, 1240, acc.TotalMM(), 1e-9)
}

func TestFitPanelsExactFit(t *testing.T) {
	p := DefaultParams()
	layout := FitPanels("run", 4760, false, nil, p)
	require.Len(t, layout.Segments, 2)
	assert.Zero(t, layout.LeftoverMM)
	assert.False(t, layout.EvenSpacing)
	assert.InDeltaSlice(t, []float64{2380}, layout.PositionsMM, 1e-9)
}

func TestFitPanelsAutoEvenBelowThreshold(t *testing.T) {
	p := DefaultParams()
	var acc LeftoverAccumulator

	// 5000 mm leaves 240 mm, below the usable minimum: spacing evens out
	// instead of producing an unusable offcut.
	layout := FitPanels("run", 5000, false, &acc, p)
	require.Len(t, layout.Segments, 2)
	assert.True(t, layout.EvenSpacing)
	assert.InDelta(t, 2500, layout.Segments[0].LengthMM, 1e-9)
	assert.Zero(t, layout.LeftoverMM)
	assert.Empty(t, acc.Pieces())
	assert.InDeltaSlice(t, []float64{2500}, layout.PositionsMM, 1e-9)
}

func TestFitPanelsExplicitEvenAddsPanel(t *testing.T) {
	p := DefaultParams()

	// A usable leftover under explicit even spacing becomes one more,
	// slightly narrowed panel.
	layout := FitPanels("run", 6000, true, nil, p)
	require.Len(t, layout.Segments, 3)
	assert.True(t, layout.EvenSpacing)
	assert.InDelta(t, 2000, layout.Segments[1].LengthMM, 1e-9)
	assert.InDeltaSlice(t, []float64{2000, 4000}, layout.PositionsMM, 1e-9)
}

func TestFitPanelsShortRun(t *testing.T) {
	p := DefaultParams()
	layout := FitPanels("run", 1500, false, nil, p)
	require.Len(t, layout.Segments, 1)
	assert.InDelta(t, 1500, layout.Segments[0].LengthMM, 1e-9)
	assert.NotEmpty(t, layout.Warnings)
	assert.Empty(t, layout.PositionsMM)
}

func TestFitPanelsDegenerate(t *testing.T) {
	p := DefaultParams()
	assert.Empty(t, FitPanels("run", 0, false, nil, p).Segments)
	assert.Empty(t, FitPanels("run", -10, false, nil, p).Segments)
}

func TestLeftoverAccumulator(t *testing.T) {
	var acc LeftoverAccumulator
	acc.Add("a", 500)
	acc.Add("b", 0) // dropped
	acc.Add("c", 740)

	assert.Len(t, acc.Pieces(), 2)
	assert.InDelta(t, 1240, acc.TotalMM(), 1e-9)
}
