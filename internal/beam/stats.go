package beam

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

func (b *Beam) MeanX() float64  { return stat.Mean(b.coords.X, nil) }
func (b *Beam) MeanY() float64  { return stat.Mean(b.coords.Y, nil) }
func (b *Beam) MeanZ() float64  { return stat.Mean(b.coords.Z, nil) }
func (b *Beam) SigmaX() float64 { return popStd(b.coords.X) }
func (b *Beam) SigmaZ() float64 { return popStd(b.coords.Z) }

// Energy returns the total energy of each particle, (pz+1)*p0c, in eV.
func (b *Beam) Energy() []float64 {
	c := b.coords
	e := make([]float64, c.Len())
	for i, pz := range c.Pz {
		e[i] = (pz + 1) * c.P0C
	}
	return e
}

// Gamma returns the Lorentz factor of each particle, energy/mc2.
func (b *Beam) Gamma() []float64 {
	g := b.Energy()
	for i := range g {
		g[i] /= b.coords.MC2
	}
	return g
}

func (b *Beam) MeanEnergy() float64  { return stat.Mean(b.Energy(), nil) }
func (b *Beam) SigmaEnergy() float64 { return popStd(b.Energy()) }

// Slope fits x = slope*z + intercept by least squares. A bunch with no
// longitudinal spread has slope 0 and intercept <x>.
func (b *Beam) Slope() (slope, intercept float64, err error) {
	if b.Len() < 2 {
		return 0, 0, ErrInsufficientData
	}
	z, x := b.coords.Z, b.coords.X
	if stat.PopVariance(z, nil) == 0 {
		return 0, stat.Mean(x, nil), nil
	}
	alpha, beta := stat.LinearRegression(z, x, nil, false)
	return beta, alpha, nil
}

// DechirpedX returns x with the linear x-z correlation removed. The CSR mesh
// is built in this frame.
func (b *Beam) DechirpedX() ([]float64, error) {
	slope, intercept, err := b.Slope()
	if err != nil {
		return nil, err
	}
	c := b.coords
	xt := make([]float64, c.Len())
	for i := range xt {
		xt[i] = c.X[i] - (slope*c.Z[i] + intercept)
	}
	return xt, nil
}

func (b *Beam) SigmaDechirpedX() (float64, error) {
	xt, err := b.DechirpedX()
	if err != nil {
		return 0, err
	}
	return popStd(xt), nil
}

func meanStd(x []float64) (float64, float64) {
	mean, variance := stat.PopMeanVariance(x, nil)
	return mean, math.Sqrt(variance)
}

// popStd is the population standard deviation (divides by N).
func popStd(x []float64) float64 {
	return math.Sqrt(stat.PopVariance(x, nil))
}
