package metrics

import (
	"math"

	"github.com/san-kum/csrtrack/internal/beam"
)

// EnergySpread reports the largest relative energy spread σE/E_ref seen.
type EnergySpread struct {
	name    string
	max     float64
	samples int
}

func NewEnergySpread() *EnergySpread {
	return &EnergySpread{name: "energy_spread"}
}

func (e *EnergySpread) Name() string { return e.name }

func (e *EnergySpread) Observe(b *beam.Beam) {
	e.max = math.Max(e.max, b.SigmaEnergy()/b.ReferenceEnergy())
	e.samples++
}

func (e *EnergySpread) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.max
}

func (e *EnergySpread) Reset() {
	e.max = 0
	e.samples = 0
}

// EnergyDrift is the largest change of the mean energy relative to the
// first observation, in units of the reference energy.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(b *beam.Beam) {
	energy := b.MeanEnergy()

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.samples++

	drift := math.Abs(energy-e.initialEnergy) / b.ReferenceEnergy()
	e.maxDrift = math.Max(e.maxDrift, drift)
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
