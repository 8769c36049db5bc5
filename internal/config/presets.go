package config

import "sort"

// Presets are ready-made lattices, keyed by name.
var Presets = map[string]LatticeConfig{
	"drift": {
		StepSize: 0.01,
		Elements: []ElementConfig{
			{Name: "D1", Type: "drift", Length: 1.0},
		},
	},
	"fodo": {
		StepSize: 0.02,
		Elements: []ElementConfig{
			{Name: "QF", Type: "quadrupole", Length: 0.1, K1: 8.0},
			{Name: "D1", Type: "drift", Length: 0.45},
			{Name: "QD", Type: "quadrupole", Length: 0.1, K1: -8.0},
			{Name: "D2", Type: "drift", Length: 0.45},
		},
	},
	"chicane_drifts": {
		StepSize: 0.05,
		Elements: []ElementConfig{
			{Name: "D1", Type: "drift", Length: 0.23},
			{Name: "D2", Type: "drift", Length: 0.51},
			{Name: "D3", Type: "drift", Length: 0.23},
		},
	},
}

// GetPreset returns a copy of the named lattice, or nil.
func GetPreset(name string) *LatticeConfig {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	out := LatticeConfig{StepSize: p.StepSize, Elements: append([]ElementConfig(nil), p.Elements...)}
	return &out
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
