package metrics

import (
	"math"

	"github.com/san-kum/csrtrack/internal/beam"
)

// Aperture is the fraction of observations in which every particle stays
// within |x| <= threshold.
type Aperture struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewAperture(threshold float64) *Aperture {
	return &Aperture{
		name:      "aperture",
		threshold: threshold,
	}
}

func (a *Aperture) Name() string {
	return a.name
}

func (a *Aperture) Observe(b *beam.Beam) {
	a.samples++
	for _, x := range b.X() {
		if math.Abs(x) > a.threshold {
			a.violations++
			break
		}
	}
}

func (a *Aperture) Value() float64 {
	if a.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(a.violations)/float64(a.samples)
}

func (a *Aperture) Reset() {
	a.violations = 0
	a.samples = 0
}
