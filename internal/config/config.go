// Package config loads engine parameters from a TOML file and watches it
// for changes, so site-specific catalogs (panel lengths, gate width tables,
// tolerances) override the built-in defaults without a rebuild.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"fence-planner/internal/fence"
)

// File mirrors the TOML config layout. Zero values mean "keep the default".
type File struct {
	QuantStepMM     float64 `toml:"quant_step_mm"`
	WeldToleranceMM float64 `toml:"weld_tolerance_mm"`
	MergeAngleDeg   float64 `toml:"merge_angle_deg"`

	MinRunMM float64 `toml:"min_run_mm"`
	MaxRunMM float64 `toml:"max_run_mm"`

	PanelLengthMM float64 `toml:"panel_length_mm"`
	MinLeftoverMM float64 `toml:"min_leftover_mm"`

	GateEndClearanceMM float64 `toml:"gate_end_clearance_mm"`
	SlidingReturnMM    float64 `toml:"sliding_return_mm"`

	Gates map[string]GateRule `toml:"gates"`
}

// GateRule overrides one gate type's width table entry.
type GateRule struct {
	DefaultMM float64 `toml:"default_mm"`
	MinMM     float64 `toml:"min_mm"`
	MaxMM     float64 `toml:"max_mm"`
	Leaves    int     `toml:"leaves"`
}

// Load reads a config file and applies it over the engine defaults.
// A missing file is not an error; the defaults are returned as-is.
func Load(path string) (fence.Params, error) {
	params := fence.DefaultParams()
	if path == "" {
		return params, nil
	}

	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		if os.IsNotExist(err) {
			return params, nil
		}
		return params, fmt.Errorf("load config %s: %w", path, err)
	}
	return apply(params, f), nil
}

func apply(p fence.Params, f File) fence.Params {
	setIf := func(dst *float64, v float64) {
		if v > 0 {
			*dst = v
		}
	}
	setIf(&p.QuantStepMM, f.QuantStepMM)
	setIf(&p.WeldToleranceMM, f.WeldToleranceMM)
	setIf(&p.MergeAngleDeg, f.MergeAngleDeg)
	setIf(&p.MinRunMM, f.MinRunMM)
	setIf(&p.MaxRunMM, f.MaxRunMM)
	setIf(&p.PanelLengthMM, f.PanelLengthMM)
	setIf(&p.MinLeftoverMM, f.MinLeftoverMM)
	setIf(&p.GateEndClearanceMM, f.GateEndClearanceMM)
	setIf(&p.SlidingReturnMM, f.SlidingReturnMM)

	for name, rule := range f.Gates {
		t := fence.GateType(name)
		cur, ok := p.GateWidths[t]
		if !ok {
			cur = p.WidthRule(fence.GateCustom)
		}
		setIf(&cur.DefaultMM, rule.DefaultMM)
		setIf(&cur.MinMM, rule.MinMM)
		setIf(&cur.MaxMM, rule.MaxMM)
		if rule.Leaves > 0 {
			cur.Leaves = rule.Leaves
		}
		p.GateWidths[t] = cur
	}
	return p
}
