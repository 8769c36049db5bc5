package beam

import (
	"math"

	"github.com/san-kum/csrtrack/internal/archive"
)

// SpeedOfLight in m/s.
const SpeedOfLight = 299792458.0

// toCoordinates normalizes absolute momenta by p0c. The archive's Z column
// is taken as the bunch-frame offset, so the reference time is zero.
func toCoordinates(pg *archive.ParticleGroup, p0c float64) *Coordinates {
	n := pg.Len()
	c := &Coordinates{
		X:   make([]float64, n),
		Px:  make([]float64, n),
		Y:   make([]float64, n),
		Py:  make([]float64, n),
		Z:   make([]float64, n),
		Pz:  make([]float64, n),
		P0C: p0c,
		MC2: pg.MC2,
	}
	for i := 0; i < n; i++ {
		p := math.Sqrt(pg.Px[i]*pg.Px[i] + pg.Py[i]*pg.Py[i] + pg.Pz[i]*pg.Pz[i])
		c.X[i] = pg.X[i]
		c.Px[i] = pg.Px[i] / p0c
		c.Y[i] = pg.Y[i]
		c.Py[i] = pg.Py[i] / p0c
		c.Z[i] = pg.Z[i]
		c.Pz[i] = p/p0c - 1
	}
	return c
}

// ParticleGroup exports the beam as an archive particle group. Charge is
// spread evenly over the particles and T is the arrival time relative to
// the reference particle.
func (b *Beam) ParticleGroup() *archive.ParticleGroup {
	c := b.coords
	n := c.Len()
	pg := &archive.ParticleGroup{
		Species: "electron",
		MC2:     c.MC2,
		X:       make([]float64, n),
		Px:      make([]float64, n),
		Y:       make([]float64, n),
		Py:      make([]float64, n),
		Z:       make([]float64, n),
		Pz:      make([]float64, n),
		T:       make([]float64, n),
		Weight:  make([]float64, n),
	}

	w := b.charge / float64(n)
	for i := 0; i < n; i++ {
		p := (1 + c.Pz[i]) * c.P0C
		px := c.Px[i] * c.P0C
		py := c.Py[i] * c.P0C
		pz := math.Sqrt(math.Max(p*p-px*px-py*py, 0))
		beta := p / math.Sqrt(p*p+c.MC2*c.MC2)

		pg.X[i], pg.Px[i] = c.X[i], px
		pg.Y[i], pg.Py[i] = c.Y[i], py
		pg.Z[i], pg.Pz[i] = c.Z[i], pz
		pg.T[i] = -c.Z[i] / (beta * SpeedOfLight)
		pg.Weight[i] = w
	}
	return pg
}
