package fence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitLineProportions(t *testing.T) {
	env := testEnv()
	l := testLine(env, "run", 0, 0, 1, 0)

	res := SplitLine(l, gp(env, 0.3, 0), counterIDs("new"), env)
	require.NotNil(t, res)

	assert.Equal(t, "run", res.Left.ID)
	assert.Equal(t, "new-1", res.Right.ID)
	assert.InDelta(t, 300, res.Left.LengthMM, 0.01)
	assert.InDelta(t, 700, res.Right.LengthMM, 0.01)
	assert.InDelta(t, 1000, res.Left.LengthMM+res.Right.LengthMM, 0.01)

	// Both pieces meet at the quantized junction.
	assert.Equal(t, res.Junction, res.Left.B)
	assert.Equal(t, res.Junction, res.Right.A)
	assert.Equal(t, l.B, res.Right.B)
}

func TestSplitLinePropagatesEvenSpacing(t *testing.T) {
	env := testEnv()
	l := testLine(env, "run", 0, 0, 2, 0)
	l.EvenSpacing = true

	res := SplitLine(l, gp(env, 1, 0), counterIDs("new"), env)
	require.NotNil(t, res)
	assert.True(t, res.Left.EvenSpacing)
	assert.True(t, res.Right.EvenSpacing)
}

func TestSplitLineRefusals(t *testing.T) {
	env := testEnv()
	ids := counterIDs("new")

	gateLine := testLine(env, "g", 0, 0, 1, 0)
	gateLine.GateID = "gate-1"
	assert.Nil(t, SplitLine(gateLine, gp(env, 0.5, 0), ids, env))

	l := testLine(env, "run", 0, 0, 1, 0)

	// Point too far off the segment.
	assert.Nil(t, SplitLine(l, gp(env, 0.5, 0.2), ids, env))

	// Projection lands outside the qualifying interior: endpoint
	// proximity is the welder's job.
	assert.Nil(t, SplitLine(l, gp(env, 0.01, 0), ids, env))
	assert.Nil(t, SplitLine(l, gp(env, 0.995, 0), ids, env))
	assert.Nil(t, SplitLine(l, gp(env, 1.02, 0), ids, env))
}
