// Package tracking transports particle coordinates through lattice
// elements and cuts a lattice into fixed-length steps.
//
// The element maps follow Bmad conventions: an exact drift and a
// kick-drift quadrupole. They are deliberately minimal; the beam core only
// sees them as [beam.Stepper] values.
package tracking

import (
	"fmt"
	"math"

	"github.com/san-kum/csrtrack/internal/beam"
)

// Element is a lattice element that can be cut into shorter pieces.
type Element interface {
	beam.Stepper
	Name() string
	Length() float64
	// Slice returns the same element with a different length.
	Slice(length float64) Element
}

type Drift struct {
	Label string
	L     float64
}

func (d Drift) Name() string                 { return d.Label }
func (d Drift) Length() float64              { return d.L }
func (d Drift) Slice(length float64) Element { return Drift{Label: d.Label, L: length} }

func (d Drift) Track(c *beam.Coordinates) error {
	return drift(c, d.L)
}

// Quadrupole is tracked as half drift, thin kick, half drift. K1 > 0
// focuses horizontally.
type Quadrupole struct {
	Label string
	L     float64
	K1    float64
}

func (q Quadrupole) Name() string    { return q.Label }
func (q Quadrupole) Length() float64 { return q.L }
func (q Quadrupole) Slice(length float64) Element {
	return Quadrupole{Label: q.Label, L: length, K1: q.K1}
}

func (q Quadrupole) Track(c *beam.Coordinates) error {
	if err := drift(c, q.L/2); err != nil {
		return err
	}
	kl := q.K1 * q.L
	for i := range c.X {
		rel := 1 + c.Pz[i]
		c.Px[i] -= kl * c.X[i] / rel
		c.Py[i] += kl * c.Y[i] / rel
	}
	return drift(c, q.L/2)
}

// drift is the exact field-free map, advancing s by length.
func drift(c *beam.Coordinates, length float64) error {
	beta0 := c.P0C / math.Sqrt(c.P0C*c.P0C+c.MC2*c.MC2)
	for i := range c.X {
		rel := 1 + c.Pz[i]
		px := c.Px[i] / rel
		py := c.Py[i] / rel
		pxy2 := px*px + py*py
		if pxy2 >= 1 {
			return fmt.Errorf("tracking: particle %d has transverse momentum beyond total momentum", i)
		}
		pl := math.Sqrt(1 - pxy2)

		p := rel * c.P0C
		beta := p / math.Sqrt(p*p+c.MC2*c.MC2)

		c.X[i] += length * px / pl
		c.Y[i] += length * py / pl
		c.Z[i] += length * (beta/beta0 - 1/pl)
	}
	c.S += length
	return nil
}

// FromConfig builds an element from its declarative description.
func FromConfig(name, kind string, length, k1 float64) (Element, error) {
	switch kind {
	case "drift":
		return Drift{Label: name, L: length}, nil
	case "quadrupole":
		return Quadrupole{Label: name, L: length, K1: k1}, nil
	default:
		return nil, fmt.Errorf("tracking: unknown element type %q", kind)
	}
}
