package metrics

import (
	"math"

	"github.com/san-kum/csrtrack/internal/beam"
)

// Chirp is the mean absolute x-z slope over the run.
type Chirp struct {
	name    string
	sum     float64
	samples int
}

func NewChirp() *Chirp {
	return &Chirp{
		name: "chirp",
	}
}

func (c *Chirp) Name() string {
	return c.name
}

func (c *Chirp) Observe(b *beam.Beam) {
	c.sum += math.Abs(b.Stats().Slope)
	c.samples++
}

func (c *Chirp) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *Chirp) Reset() {
	c.sum = 0
	c.samples = 0
}
