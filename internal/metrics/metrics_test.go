package metrics

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/csrtrack/internal/beam"
	"github.com/san-kum/csrtrack/internal/sim"
)

func testBeam(t *testing.T, x, z, pz []float64) *beam.Beam {
	t.Helper()
	var sb strings.Builder
	for i := range x {
		fmt.Fprintf(&sb, "%g 0 0 0 %g %g\n", x[i], z[i], pz[i])
	}
	b, err := beam.New(beam.FromFile{Reader: strings.NewReader(sb.String()), Charge: 1e-12, Energy: 1e8})
	if err != nil {
		t.Fatalf("beam: %v", err)
	}
	return b
}

func TestEnergySpread(t *testing.T) {
	m := NewEnergySpread()
	if m.Value() != 0 {
		t.Error("expected zero before any observation")
	}

	// pz = ±1e-3 around the reference: σE/E ≈ 1e-3.
	m.Observe(testBeam(t, []float64{0, 0}, []float64{-1, 1}, []float64{-1e-3, 1e-3}))
	if v := m.Value(); math.Abs(v-1e-3) > 1e-6 {
		t.Errorf("expected spread ~1e-3, got %g", v)
	}

	m.Observe(testBeam(t, []float64{0, 0}, []float64{-1, 1}, []float64{0, 0}))
	if v := m.Value(); math.Abs(v-1e-3) > 1e-6 {
		t.Errorf("spread should keep its maximum, got %g", v)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestEnergyDrift(t *testing.T) {
	m := NewEnergyDrift()

	m.Observe(testBeam(t, []float64{0, 0}, []float64{-1, 1}, []float64{0, 0}))
	if m.Value() != 0 {
		t.Errorf("expected zero drift after first observation, got %g", m.Value())
	}

	m.Observe(testBeam(t, []float64{0, 0}, []float64{-1, 1}, []float64{2e-3, 2e-3}))
	if v := m.Value(); math.Abs(v-2e-3) > 1e-6 {
		t.Errorf("expected drift ~2e-3, got %g", v)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestSigmaXGrowth(t *testing.T) {
	tests := []struct {
		name      string
		dechirped bool
		want      float64
	}{
		// Second beam is the first with x doubled and a linear chirp added.
		{"raw", false, 2 * math.Sqrt2},
		{"dechirped", true, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewSigmaXGrowth(tt.dechirped)
			if m.Value() != 1 {
				t.Errorf("expected 1 before observations, got %g", m.Value())
			}

			z := []float64{-1, -1, 1, 1}
			zero := []float64{0, 0, 0, 0}
			m.Observe(testBeam(t, []float64{-1, 1, -1, 1}, z, zero))
			m.Observe(testBeam(t, []float64{-3, 1, 1, 5}, z, zero))

			if v := m.Value(); math.Abs(v-tt.want) > 1e-12 {
				t.Errorf("expected growth %g, got %g", tt.want, v)
			}
		})
	}
}

func TestAperture(t *testing.T) {
	m := NewAperture(1e-3)
	m.Observe(testBeam(t, []float64{0, 5e-4}, []float64{0, 1}, []float64{0, 0}))
	m.Observe(testBeam(t, []float64{0, 2e-3}, []float64{0, 1}, []float64{0, 0}))

	if v := m.Value(); math.Abs(v-0.5) > 1e-12 {
		t.Errorf("expected 0.5, got %g", v)
	}

	m.Reset()
	if m.Value() != 1 {
		t.Error("expected 1 after reset")
	}
}

func TestChirp(t *testing.T) {
	m := NewChirp()
	m.Observe(testBeam(t, []float64{-2, 0, 2}, []float64{-1, 0, 1}, []float64{0, 0, 0}))
	m.Observe(testBeam(t, []float64{0, 0, 0}, []float64{-1, 0, 1}, []float64{0, 0, 0}))

	if v := m.Value(); math.Abs(v-1) > 1e-12 {
		t.Errorf("expected mean |slope| 1, got %g", v)
	}
}

func TestDefaultNames(t *testing.T) {
	seen := make(map[string]bool)
	for _, m := range Default() {
		if seen[m.Name()] {
			t.Errorf("duplicate metric name %q", m.Name())
		}
		seen[m.Name()] = true
	}
	var _ sim.Metric = NewAperture(1)
}
