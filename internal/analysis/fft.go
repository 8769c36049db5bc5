package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// FormFactor returns |FFT(profile)|² / (Σ profile)² for wavenumber indices
// 0..len/2. Index 0 is always 1 for a non-empty profile.
func FormFactor(profile []float64) []float64 {
	if len(profile) == 0 {
		return nil
	}

	total := 0.0
	for _, v := range profile {
		total += v
	}
	if total == 0 {
		return make([]float64, len(profile)/2+1)
	}

	spectrum := fft.FFTReal(profile)
	out := make([]float64, len(profile)/2+1)
	for i := range out {
		a := cmplx.Abs(spectrum[i]) / total
		out[i] = a * a
	}
	return out
}

// Wavenumbers returns k in 1/m matching FormFactor for n bins of width dz.
func Wavenumbers(n int, dz float64) []float64 {
	out := make([]float64, n/2+1)
	for i := range out {
		out[i] = 2 * math.Pi * float64(i) / (float64(n) * dz)
	}
	return out
}
