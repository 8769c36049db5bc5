package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// SpeedOfLight in m/s.
const SpeedOfLight = 299792458.0

var ErrNoParticles = errors.New("analysis: no particles")

// Profile is a histogram of particle z positions.
type Profile struct {
	Edges  []float64
	Counts []float64
	Charge float64
	total  float64
}

// NewProfile bins z into equal-width bins spanning the bunch.
func NewProfile(z []float64, charge float64, bins int) (*Profile, error) {
	if bins < 1 {
		return nil, fmt.Errorf("analysis: bins must be positive, got %d", bins)
	}
	if len(z) == 0 {
		return nil, ErrNoParticles
	}

	sorted := make([]float64, len(z))
	copy(sorted, z)
	sort.Float64s(sorted)

	lo, hi := sorted[0], sorted[len(sorted)-1]
	if hi == lo {
		pad := math.Max(math.Abs(lo)*1e-9, 1e-15)
		lo, hi = lo-pad, hi+pad
	}

	edges := floats.Span(make([]float64, bins+1), lo, hi)
	// Histogram needs the maximum strictly below the last divider.
	edges[bins] = math.Nextafter(hi, math.Inf(1))

	return &Profile{
		Edges:  edges,
		Counts: stat.Histogram(nil, edges, sorted, nil),
		Charge: charge,
		total:  float64(len(z)),
	}, nil
}

func (p *Profile) Width() float64 {
	return p.Edges[1] - p.Edges[0]
}

func (p *Profile) Centers() []float64 {
	c := make([]float64, len(p.Counts))
	for i := range c {
		c[i] = (p.Edges[i] + p.Edges[i+1]) / 2
	}
	return c
}

// Current is the bin current in Amperes, taking z as c·t.
func (p *Profile) Current() []float64 {
	dt := p.Width() / SpeedOfLight
	q := math.Abs(p.Charge) / p.total
	out := make([]float64, len(p.Counts))
	for i, n := range p.Counts {
		out[i] = n * q / dt
	}
	return out
}

func (p *Profile) PeakCurrent() float64 {
	return floats.Max(p.Current())
}
