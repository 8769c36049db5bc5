package archive

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGroup() *ParticleGroup {
	return &ParticleGroup{
		Species: "electron",
		MC2:     ElectronMass,
		X:       []float64{1e-3, -1e-3},
		Px:      []float64{10, -10},
		Y:       []float64{0, 0},
		Py:      []float64{0, 0},
		Z:       []float64{1e-4, -1e-4},
		Pz:      []float64{1e8, 1.01e8},
		T:       []float64{0, 0},
		Weight:  []float64{5e-13, 5e-13},
	}
}

func TestChargeAndEnergy(t *testing.T) {
	pg := sampleGroup()

	assert.InDelta(t, 1e-12, pg.Charge(), 1e-24)

	e := pg.Energy()
	require.Len(t, e, 2)
	want := math.Sqrt(10*10 + 1e8*1e8 + ElectronMass*ElectronMass)
	assert.InDelta(t, want, e[0], 1e-6)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(pg *ParticleGroup)
	}{
		{"empty", func(pg *ParticleGroup) { *pg = ParticleGroup{MC2: ElectronMass} }},
		{"short column", func(pg *ParticleGroup) { pg.Pz = pg.Pz[:1] }},
		{"no mass", func(pg *ParticleGroup) { pg.MC2 = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pg := sampleGroup()
			tt.mutate(pg)
			assert.Error(t, pg.Validate())
		})
	}
}

func TestReadWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "beam.json")
	pg := sampleGroup()

	require.NoError(t, Write(path, pg))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, pg, got)
}
