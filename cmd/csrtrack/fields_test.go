package main

import (
	"testing"

	"github.com/san-kum/csrtrack/internal/config"
	"github.com/san-kum/csrtrack/internal/sim"
)

func TestParseScan(t *testing.T) {
	tests := []struct {
		arg     string
		name    string
		want    []float64
		wantErr bool
	}{
		{"QF=0:10:3", "QF", []float64{0, 5, 10}, false},
		{"QD=-2:-2:1", "QD", []float64{-2}, false},
		{"QF", "", nil, true},
		{"=0:1:2", "", nil, true},
		{"QF=0:1", "", nil, true},
		{"QF=a:1:2", "", nil, true},
		{"QF=0:1:0", "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			name, vals, err := parseScan(tt.arg)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if name != tt.name || len(vals) != len(tt.want) {
				t.Fatalf("got %s %v, want %s %v", name, vals, tt.name, tt.want)
			}
			for i := range vals {
				if vals[i] != tt.want[i] {
					t.Errorf("value %d = %g, want %g", i, vals[i], tt.want[i])
				}
			}
		})
	}
}

func TestRecordFields(t *testing.T) {
	rec := sim.Record{MeanX: 1, SigmaX: 2, SigmaZ: 3, MeanEnergy: 4, SigmaEnergy: 5, Slope: 6}
	want := map[string]float64{"mean_x": 1, "sigma_x": 2, "sigma_z": 3, "mean_energy": 4, "sigma_energy": 5, "slope": 6}

	names := recordFieldNames()
	if len(names) != len(want) {
		t.Fatalf("expected %d fields, got %v", len(want), names)
	}
	for _, name := range names {
		if got := recordFields[name](rec); got != want[name] {
			t.Errorf("%s = %g, want %g", name, got, want[name])
		}
	}
}

func TestHasQuadrupole(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Lattice = *config.GetPreset("fodo")

	if !hasQuadrupole(cfg, "QF") {
		t.Error("expected QF")
	}
	if hasQuadrupole(cfg, "D1") {
		t.Error("D1 is a drift")
	}
}
