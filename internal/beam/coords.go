package beam

// ElectronMass is the electron rest energy in eV.
const ElectronMass = 510998.95

// Coordinates is a Bmad-style particle set. Px, Py and Pz are normalized by
// P0C; Z is the longitudinal offset from the reference particle, positive
// towards the head.
type Coordinates struct {
	X, Px []float64
	Y, Py []float64
	Z, Pz []float64
	S     float64
	P0C   float64
	MC2   float64
}

func (c *Coordinates) Len() int { return len(c.X) }

func (c *Coordinates) Clone() *Coordinates {
	return &Coordinates{
		X:   clone(c.X),
		Px:  clone(c.Px),
		Y:   clone(c.Y),
		Py:  clone(c.Py),
		Z:   clone(c.Z),
		Pz:  clone(c.Pz),
		S:   c.S,
		P0C: c.P0C,
		MC2: c.MC2,
	}
}

func (c *Coordinates) consistent() bool {
	n := len(c.X)
	return len(c.Px) == n && len(c.Y) == n && len(c.Py) == n && len(c.Z) == n && len(c.Pz) == n
}

// Stepper transports coordinates through one lattice slice in place.
type Stepper interface {
	Track(c *Coordinates) error
}

// StepFunc adapts a function to Stepper.
type StepFunc func(c *Coordinates) error

func (f StepFunc) Track(c *Coordinates) error { return f(c) }

func clone(s []float64) []float64 {
	c := make([]float64, len(s))
	copy(c, s)
	return c
}
