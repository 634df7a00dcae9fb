package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fence-planner/internal/fence"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	params, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, fence.DefaultParams(), params)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	params, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, fence.DefaultParams(), params)
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
panel_length_mm = 2400
weld_tolerance_mm = 75

[gates.single]
default_mm = 1000
max_mm = 1500

[gates.pedestrian]
default_mm = 1100
`), 0644))

	params, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2400.0, params.PanelLengthMM)
	assert.Equal(t, 75.0, params.WeldToleranceMM)

	// Untouched values keep their defaults.
	assert.Equal(t, 100.0, params.MinRunMM)
	assert.Equal(t, 300.0, params.MinLeftoverMM)

	single := params.GateWidths[fence.GateSingle]
	assert.Equal(t, 1000.0, single.DefaultMM)
	assert.Equal(t, 1500.0, single.MaxMM)
	assert.Equal(t, 700.0, single.MinMM) // default retained

	// Unknown gate types start from the custom rule.
	ped, ok := params.GateWidths[fence.GateType("pedestrian")]
	require.True(t, ok)
	assert.Equal(t, 1100.0, ped.DefaultMM)
	assert.Equal(t, 300.0, ped.MinMM)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("panel_length_mm = ["), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}
