package fence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveStationsChain(t *testing.T) {
	env := testEnv()
	lines := []Line{
		testLine(env, "a", 0, 0, 10, 0),
		testLine(env, "b", 10, 0, 10, 10),
	}
	posts := GeneratePosts(lines, nil, env)

	res := DeriveStations(lines, posts, env)
	require.Len(t, res.Stations, 3)
	assert.InDelta(t, 0, res.Stations[0].StationMM, 0.01)
	assert.InDelta(t, 10000, res.Stations[1].StationMM, 0.01)
	assert.InDelta(t, 20000, res.Stations[2].StationMM, 0.01)

	require.Len(t, res.Spans, 2)
	var total float64
	for _, sp := range res.Spans {
		total += sp.LengthMM
	}
	assert.InDelta(t, 20000, total, 0.01)

	// Every post gets a walked-path direction.
	for _, p := range posts {
		assert.Contains(t, res.AnglesDeg, p.ID)
	}
}

func TestDeriveStationsPanelInteriors(t *testing.T) {
	env := testEnv()
	lines := []Line{testLine(env, "a", 0, 0, 6, 0)}
	layouts := map[string]PanelLayout{
		"a": {RunID: "a", PositionsMM: []float64{2380, 4760}},
	}
	posts := GeneratePosts(lines, layouts, env)

	res := DeriveStations(lines, posts, env)
	require.Len(t, res.Stations, 4)
	assert.InDelta(t, 2380, res.Stations[1].StationMM, 0.6)
	assert.InDelta(t, 4760, res.Stations[2].StationMM, 0.6)
	assert.Len(t, res.Spans, 3)
}

func TestDeriveStationsEmptyInputs(t *testing.T) {
	env := testEnv()
	res := DeriveStations(nil, nil, env)
	assert.Empty(t, res.Stations)
	assert.Empty(t, res.Spans)

	lines := []Line{testLine(env, "a", 0, 0, 5, 0)}
	res = DeriveStations(lines, nil, env)
	assert.Empty(t, res.Stations)
}

func TestDeriveStationsClosedLoop(t *testing.T) {
	env := testEnv()
	lines := []Line{
		testLine(env, "a", 0, 0, 4, 0),
		testLine(env, "b", 4, 0, 4, 4),
		testLine(env, "c", 4, 4, 0, 4),
		testLine(env, "d", 0, 4, 0, 0),
	}
	posts := GeneratePosts(lines, nil, env)

	// No degree-1 endpoint: the walk starts from a deterministic node and
	// still stations every post.
	res := DeriveStations(lines, posts, env)
	assert.Len(t, res.Stations, 4)
}
