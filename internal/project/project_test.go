package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fence-planner/internal/fence"
	"fence-planner/internal/geo"
	"fence-planner/internal/store"
	"fence-planner/pkg/geometry"
)

var testOrigin = geo.Point{Lat: -33.865, Lng: 151.2094}

func buildStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New(geo.NewProjector(testOrigin), fence.DefaultParams(),
		store.WithFrame(func(cb func()) { cb() }),
	)
	proj := geo.NewProjector(testOrigin)
	gpt := func(x, y float64) geo.Point {
		return proj.ToGeographic(geometry.Point2D{X: x, Y: y})
	}

	runID := s.AddLine(gpt(0, 0), gpt(10, 0))
	require.NotEmpty(t, runID)
	require.NotEmpty(t, s.AddLine(gpt(10, 0), gpt(10, 10)))
	require.NotEmpty(t, s.AddGate(runID, nil))
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := buildStore(t)

	p := New("backyard", testOrigin)
	p.Capture(s)
	require.Len(t, p.Lines, 4)
	require.Len(t, p.Gates, 1)

	path := filepath.Join(t.TempDir(), "backyard.fenceproj")
	require.NoError(t, p.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, currentVersion, loaded.Version)
	assert.Equal(t, "backyard", loaded.Name)
	assert.Equal(t, testOrigin, loaded.Origin)
	assert.Equal(t, p.Lines, loaded.Lines)
	assert.Equal(t, p.Gates, loaded.Gates)
	assert.Equal(t, 1.0, loaded.Scale)
}

func TestHydrateRecomputesDerived(t *testing.T) {
	s := buildStore(t)
	want := s.Derived()

	p := New("backyard", testOrigin)
	p.Capture(s)

	// Derived state is not persisted; a fresh store rebuilds it from the
	// hydrated canonical state alone.
	s2 := store.New(geo.NewProjector(testOrigin), fence.DefaultParams(),
		store.WithFrame(func(func()) {}), // queued, never fired
	)
	p.Hydrate(s2)
	s2.Recompute()

	got := s2.Derived()
	assert.Equal(t, len(want.Posts), len(got.Posts))
	assert.Equal(t, len(want.Spans), len(got.Spans))
	assert.Equal(t, s.Lines(), s2.Lines())
	assert.Equal(t, s.Gates(), s2.Gates())
}

func TestLoadRejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "future.fenceproj")
	require.NoError(t, os.WriteFile(path, []byte(`{"version": 99}`), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "unsupported project version")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.fenceproj"))
	assert.Error(t, err)
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.fenceproj")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "parse project")
}

func TestLoadDefaultsScale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noscale.fenceproj")
	require.NoError(t, os.WriteFile(path, []byte(`{"version": 1}`), 0644))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1.0, loaded.Scale)
}
