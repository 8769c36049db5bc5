package wake

import (
	"math"
	"sort"
)

// BiLinear is a bi-linear interpolator over a rectangular mesh. Points
// outside the mesh evaluate to zero.
type BiLinear struct {
	xs, zs []float64
	vals   [][]float64
}

// NewBiLinear creates an interpolator for vals[ix][iz] sampled on the
// strictly increasing axes xs and zs.
func NewBiLinear(xs, zs []float64, vals [][]float64) (*BiLinear, error) {
	if !strictlyIncreasing(xs) || !strictlyIncreasing(zs) {
		return nil, ErrAxis
	}
	if err := checkShape("values", vals, len(xs), len(zs)); err != nil {
		return nil, err
	}
	return &BiLinear{xs: xs, zs: zs, vals: vals}, nil
}

// Eval returns the interpolated value at (x, z).
func (bi *BiLinear) Eval(x, z float64) float64 {
	ix, tx, ok := locate(bi.xs, x)
	if !ok {
		return 0
	}
	iz, tz, ok := locate(bi.zs, z)
	if !ok {
		return 0
	}
	jx := min(ix+1, len(bi.xs)-1)
	jz := min(iz+1, len(bi.zs)-1)

	v00, v01 := bi.vals[ix][iz], bi.vals[ix][jz]
	v10, v11 := bi.vals[jx][iz], bi.vals[jx][jz]

	return (1-tx)*(1-tz)*v00 + (1-tx)*tz*v01 + tx*(1-tz)*v10 + tx*tz*v11
}

// EvalAll evaluates the pairs (xs[i], zs[i]). If an output slice is given
// it is filled and returned.
func (bi *BiLinear) EvalAll(xs, zs []float64, out ...[]float64) []float64 {
	if len(out) == 0 {
		out = [][]float64{make([]float64, len(xs))}
	}
	dst := out[0]
	ParallelFor(len(xs), minChunk, func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] = bi.Eval(xs[i], zs[i])
		}
	})
	return dst
}

// locate finds the cell containing v and the fractional offset inside it.
// A single-point axis only contains that point.
func locate(axis []float64, v float64) (int, float64, bool) {
	n := len(axis)
	if math.IsNaN(v) || v < axis[0] || v > axis[n-1] {
		return 0, 0, false
	}
	if n == 1 {
		return 0, 0, true
	}
	i := sort.SearchFloat64s(axis, v)
	if i == 0 {
		return 0, 0, true
	}
	i--
	return i, (v - axis[i]) / (axis[i+1] - axis[i]), true
}

// Scale converts a solver field to per-step fractional deviations:
// stepLength * v * SolverLengthScale / referenceEnergy.
func Scale(field [][]float64, stepLength, referenceEnergy float64) [][]float64 {
	factor := stepLength * SolverLengthScale / referenceEnergy
	out := make([][]float64, len(field))
	for i, row := range field {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			out[i][j] = v * factor
		}
	}
	return out
}

// Kick interpolates an already scaled field at each (xs[i], zs[i]).
func Kick(xAxis, zAxis []float64, scaled [][]float64, xs, zs []float64) ([]float64, error) {
	bi, err := NewBiLinear(xAxis, zAxis, scaled)
	if err != nil {
		return nil, err
	}
	return bi.EvalAll(xs, zs), nil
}
