package beam

import (
	"fmt"
	"math"
)

// Stats are the derived quantities refreshed after every state change.
type Stats struct {
	MeanX     float64
	MeanZ     float64
	SigmaX    float64
	SigmaZ    float64
	Slope     float64
	Intercept float64
}

// Beam is a particle ensemble with its reference energy and charge.
type Beam struct {
	coords    *Coordinates
	charge    float64
	refEnergy float64
	refGamma  float64
	position  float64
	step      int
	stats     Stats
}

func newBeam(c *Coordinates, charge, energy float64) (*Beam, error) {
	if c.Len() == 0 {
		return nil, &ConfigError{Reason: "beam has no particles"}
	}
	if !c.consistent() {
		return nil, &ConfigError{Reason: "coordinate columns differ in length"}
	}
	if !(energy > 0) || math.IsInf(energy, 0) {
		return nil, &ConfigError{Field: "energy", Reason: fmt.Sprintf("must be positive and finite, got %g", energy)}
	}
	if math.IsNaN(charge) || math.IsInf(charge, 0) {
		return nil, &ConfigError{Field: "charge", Reason: fmt.Sprintf("must be finite, got %g", charge)}
	}

	b := &Beam{
		coords:    c,
		charge:    charge,
		refEnergy: energy,
		refGamma:  energy / c.MC2,
	}
	b.refresh()
	return b, nil
}

// AdvanceStep transports the beam through one lattice slice of length
// stepLength. The step counter only moves when isFullStep is set, so a step
// split over two elements is counted once. On a stepper error the beam is
// left unchanged.
func (b *Beam) AdvanceStep(st Stepper, stepLength float64, isFullStep bool) error {
	next := b.coords.Clone()
	if err := st.Track(next); err != nil {
		return fmt.Errorf("beam: step %d at s=%g: %w", b.step, b.position, err)
	}
	if !next.consistent() || next.Len() != b.coords.Len() {
		return fmt.Errorf("beam: step %d: stepper changed the particle count", b.step)
	}
	if next.P0C != b.coords.P0C || next.MC2 != b.coords.MC2 {
		return fmt.Errorf("beam: step %d: stepper changed the reference momentum", b.step)
	}

	b.coords = next
	b.position += stepLength
	if isFullStep {
		b.step++
	}
	b.refresh()
	return nil
}

// refresh recomputes every cached statistic from the current coordinates.
func (b *Beam) refresh() {
	c := b.coords
	s := Stats{}
	s.MeanX, s.SigmaX = meanStd(c.X)
	s.MeanZ, s.SigmaZ = meanStd(c.Z)
	if slope, intercept, err := b.Slope(); err == nil {
		s.Slope, s.Intercept = slope, intercept
	}
	b.stats = s
}

// Stats returns the statistics cached by the last state change.
func (b *Beam) Stats() Stats { return b.stats }

func (b *Beam) Len() int                 { return b.coords.Len() }
func (b *Beam) Charge() float64          { return b.charge }
func (b *Beam) ReferenceEnergy() float64 { return b.refEnergy }
func (b *Beam) ReferenceGamma() float64  { return b.refGamma }
func (b *Beam) P0C() float64             { return b.coords.P0C }
func (b *Beam) MC2() float64             { return b.coords.MC2 }
func (b *Beam) Position() float64        { return b.position }
func (b *Beam) StepCount() int           { return b.step }
func (b *Beam) S() float64               { return b.coords.S }

// Coordinates returns a copy of the particle coordinates.
func (b *Beam) Coordinates() *Coordinates { return b.coords.Clone() }

func (b *Beam) X() []float64  { return clone(b.coords.X) }
func (b *Beam) Px() []float64 { return clone(b.coords.Px) }
func (b *Beam) Y() []float64  { return clone(b.coords.Y) }
func (b *Beam) Py() []float64 { return clone(b.coords.Py) }
func (b *Beam) Z() []float64  { return clone(b.coords.Z) }
func (b *Beam) Pz() []float64 { return clone(b.coords.Pz) }
