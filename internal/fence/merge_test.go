package fence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeCollinearSumsLengths(t *testing.T) {
	env := testEnv()
	lines := []Line{
		testLine(env, "a", 0, 0, 1.5, 0),
		testLine(env, "b", 1.5, 0, 3.5, 0),
	}

	res := MergeLines(lines, env)
	require.Len(t, res.Lines, 1)

	m := res.Lines[0]
	assert.Equal(t, "a", m.ID)
	assert.InDelta(t, 3500, m.LengthMM, 0.01)
	assert.Equal(t, "a", res.SurvivorOf("b"))
	assert.Equal(t, "a", res.SurvivorOf("a"))
}

func TestMergeIdempotent(t *testing.T) {
	env := testEnv()
	lines := []Line{
		testLine(env, "a", 0, 0, 1, 0),
		testLine(env, "b", 1, 0, 2, 0),
		testLine(env, "c", 2, 0, 2, 3),
	}

	first := MergeLines(lines, env)
	second := MergeLines(first.Lines, env)
	assert.Equal(t, first.Lines, second.Lines)
	assert.Empty(t, second.Survivor)
}

func TestMergeChainsTransitively(t *testing.T) {
	env := testEnv()
	lines := []Line{
		testLine(env, "a", 0, 0, 1, 0),
		testLine(env, "b", 1, 0, 2, 0),
		testLine(env, "c", 2, 0, 3, 0),
	}

	res := MergeLines(lines, env)
	require.Len(t, res.Lines, 1)
	assert.InDelta(t, 3000, res.Lines[0].LengthMM, 0.01)

	// Selections on any absorbed line resolve to the single survivor.
	assert.Equal(t, "a", res.SurvivorOf("b"))
	assert.Equal(t, "a", res.SurvivorOf("c"))
}

func TestMergeRefusesAngle(t *testing.T) {
	env := testEnv()
	lines := []Line{
		testLine(env, "a", 0, 0, 1.5, 0),
		testLine(env, "b", 1.5, 0, 3.5, 0.5), // ~14 degrees off
	}
	res := MergeLines(lines, env)
	assert.Len(t, res.Lines, 2)
}

func TestMergeRefusesBusyJunction(t *testing.T) {
	env := testEnv()
	lines := []Line{
		testLine(env, "a", 0, 0, 1, 0),
		testLine(env, "b", 1, 0, 2, 0),
		testLine(env, "c", 1, 0, 1, 1), // third line at the junction
	}
	res := MergeLines(lines, env)
	assert.Len(t, res.Lines, 3)
}

func TestMergeRefusesGateLines(t *testing.T) {
	env := testEnv()
	gateLine := testLine(env, "b", 1.5, 0, 2.4, 0)
	gateLine.GateID = "gate-1"
	lines := []Line{
		testLine(env, "a", 0, 0, 1.5, 0),
		gateLine,
	}
	res := MergeLines(lines, env)
	assert.Len(t, res.Lines, 2)
}

func TestMergeRefusesGateNearJunction(t *testing.T) {
	env := testEnv()
	// A gate-bearing line passes 30 mm from an otherwise mergeable
	// junction; the merge must not fuse across it.
	gateLine := testLine(env, "g", 0.5, 0.03, 1.5, 0.03)
	gateLine.GateID = "gate-1"
	lines := []Line{
		testLine(env, "a", 0, 0, 1, 0),
		testLine(env, "b", 1, 0, 2, 0),
		gateLine,
	}
	res := MergeLines(lines, env)
	assert.Len(t, res.Lines, 3)
}

func TestMergeConnectedRequiresOverlap(t *testing.T) {
	env := testEnv()
	// Collinear segments whose gap only the weld tolerance bridges.
	lines := []Line{
		testLine(env, "a", 0, 0, 1, 0),
		testLine(env, "b", 1.05, 0, 2, 0),
	}

	res := MergeConnectedLines(lines, env)
	assert.Len(t, res.Lines, 2)

	// The plain variant bridges the gap.
	res = MergeLines(lines, env)
	require.Len(t, res.Lines, 1)
	assert.InDelta(t, 2000, res.Lines[0].LengthMM, 0.01)
}

func TestMergeOrsEvenSpacing(t *testing.T) {
	env := testEnv()
	a := testLine(env, "a", 0, 0, 1, 0)
	b := testLine(env, "b", 1, 0, 2, 0)
	b.EvenSpacing = true

	res := MergeLines([]Line{a, b}, env)
	require.Len(t, res.Lines, 1)
	assert.True(t, res.Lines[0].EvenSpacing)
}
