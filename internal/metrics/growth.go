package metrics

import (
	"math"

	"github.com/san-kum/csrtrack/internal/beam"
)

// SigmaXGrowth is the largest ratio σx/σx0 over the run, where σx0 is the
// first observation. Measured on the de-chirped coordinate when useDechirped
// is set.
type SigmaXGrowth struct {
	name         string
	useDechirped bool
	initial      float64
	max          float64
	samples      int
}

func NewSigmaXGrowth(useDechirped bool) *SigmaXGrowth {
	name := "sigma_x_growth"
	if useDechirped {
		name = "sigma_x_dechirped_growth"
	}
	return &SigmaXGrowth{name: name, useDechirped: useDechirped}
}

func (g *SigmaXGrowth) Name() string { return g.name }

func (g *SigmaXGrowth) Observe(b *beam.Beam) {
	sigma := b.SigmaX()
	if g.useDechirped {
		s, err := b.SigmaDechirpedX()
		if err != nil {
			return
		}
		sigma = s
	}

	if g.samples == 0 {
		g.initial = sigma
	}
	g.samples++

	if g.initial > 0 {
		g.max = math.Max(g.max, sigma/g.initial)
	}
}

func (g *SigmaXGrowth) Value() float64 {
	if g.samples == 0 || g.initial == 0 {
		return 1.0
	}
	return g.max
}

func (g *SigmaXGrowth) Reset() {
	g.initial = 0
	g.max = 0
	g.samples = 0
}
