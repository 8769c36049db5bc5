// Package distgen builds Gaussian particle distributions from a declarative
// YAML input file.
package distgen

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"os"

	"github.com/san-kum/csrtrack/internal/archive"
	"gopkg.in/yaml.v3"
)

// Input describes the distribution. Lengths are in metres, momenta in eV/c,
// energies in eV and charge in Coulombs.
type Input struct {
	NParticle   int     `yaml:"n_particle"`
	RandomSeed  uint64  `yaml:"random_seed"`
	Species     string  `yaml:"species"`
	TotalCharge float64 `yaml:"total_charge"`
	Energy      float64 `yaml:"energy"`
	SigmaEnergy float64 `yaml:"sigma_energy"`
	SigmaX      float64 `yaml:"sigma_x"`
	SigmaPx     float64 `yaml:"sigma_px"`
	SigmaY      float64 `yaml:"sigma_y"`
	SigmaPy     float64 `yaml:"sigma_py"`
	SigmaZ      float64 `yaml:"sigma_z"`
	// Chirp is the linear x-z correlation dx/dz added after sampling.
	Chirp float64 `yaml:"chirp"`
	// EnergyChirp is the linear energy-z correlation dE/dz in eV/m.
	EnergyChirp float64 `yaml:"energy_chirp"`
}

type Generator struct {
	input Input
}

func New(in Input) (*Generator, error) {
	if in.NParticle <= 0 {
		return nil, fmt.Errorf("distgen: n_particle must be positive, got %d", in.NParticle)
	}
	if in.Energy <= archive.ElectronMass {
		return nil, fmt.Errorf("distgen: energy %g eV is below the rest energy", in.Energy)
	}
	if in.TotalCharge == 0 {
		return nil, errors.New("distgen: total_charge must be non-zero")
	}
	if in.Species == "" {
		in.Species = "electron"
	}
	return &Generator{input: in}, nil
}

// Load reads a generator input file. Unknown keys are rejected.
func Load(path string) (*Generator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var in Input
	if err := dec.Decode(&in); err != nil {
		return nil, fmt.Errorf("distgen: decode %s: %w", path, err)
	}
	return New(in)
}

func (g *Generator) Input() Input { return g.input }

// Run samples the distribution. The same seed always yields the same group.
func (g *Generator) Run() (*archive.ParticleGroup, error) {
	in := g.input
	n := in.NParticle
	rng := rand.New(rand.NewPCG(in.RandomSeed, in.RandomSeed^0x9e3779b97f4a7c15))

	pg := &archive.ParticleGroup{
		Species: in.Species,
		MC2:     archive.ElectronMass,
		X:       make([]float64, n),
		Px:      make([]float64, n),
		Y:       make([]float64, n),
		Py:      make([]float64, n),
		Z:       make([]float64, n),
		Pz:      make([]float64, n),
		T:       make([]float64, n),
		Weight:  make([]float64, n),
	}

	mc2 := pg.MC2
	w := in.TotalCharge / float64(n)
	for i := 0; i < n; i++ {
		z := in.SigmaZ * rng.NormFloat64()
		x := in.SigmaX*rng.NormFloat64() + in.Chirp*z
		px := in.SigmaPx * rng.NormFloat64()
		y := in.SigmaY * rng.NormFloat64()
		py := in.SigmaPy * rng.NormFloat64()
		e := in.Energy + in.SigmaEnergy*rng.NormFloat64() + in.EnergyChirp*z

		pz2 := e*e - mc2*mc2 - px*px - py*py
		if pz2 <= 0 {
			return nil, fmt.Errorf("distgen: particle %d has energy %g eV below its transverse mass", i, e)
		}

		pg.X[i], pg.Px[i] = x, px
		pg.Y[i], pg.Py[i] = y, py
		pg.Z[i], pg.Pz[i] = z, math.Sqrt(pz2)
		pg.Weight[i] = w
	}

	return pg, nil
}
