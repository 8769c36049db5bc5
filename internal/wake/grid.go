package wake

import (
	"fmt"
	"math"
	"os"

	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/floats"
	"gopkg.in/yaml.v3"
)

// SolverLengthScale converts the solver's field units to eV per metre.
const SolverLengthScale = 1e6

// Grid is one wake solver output. DEdct and XKick are indexed
// [ix][iz] over XAxis and ZAxis.
type Grid struct {
	Position float64     `yaml:"position,omitempty"`
	XAxis    []float64   `yaml:"x_axis"`
	ZAxis    []float64   `yaml:"z_axis"`
	DEdct    [][]float64 `yaml:"de_dct"`
	XKick    [][]float64 `yaml:"x_kick,omitempty"`
}

// NewZeroGrid returns a grid with both fields identically zero.
func NewZeroGrid(xAxis, zAxis []float64) *Grid {
	return &Grid{
		XAxis: xAxis,
		ZAxis: zAxis,
		DEdct: zeros(len(xAxis), len(zAxis)),
		XKick: zeros(len(xAxis), len(zAxis)),
	}
}

// UniformAxis returns n evenly spaced points spanning [lo, hi].
func UniformAxis(lo, hi float64, n int) []float64 {
	if n == 1 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// Validate checks the axes and the longitudinal field, and the transverse
// field when transverse is set.
func (g *Grid) Validate(transverse bool) error {
	if !strictlyIncreasing(g.XAxis) {
		return fmt.Errorf("x axis: %w", ErrAxis)
	}
	if !strictlyIncreasing(g.ZAxis) {
		return fmt.Errorf("z axis: %w", ErrAxis)
	}
	if err := checkShape("dE_dct", g.DEdct, len(g.XAxis), len(g.ZAxis)); err != nil {
		return err
	}
	if transverse {
		if err := checkShape("x_kick", g.XKick, len(g.XAxis), len(g.ZAxis)); err != nil {
			return err
		}
	}
	return nil
}

// LoadGrid reads a YAML encoded grid.
func LoadGrid(path string) (*Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	g := &Grid{}
	if err := yaml.Unmarshal(data, g); err != nil {
		return nil, fmt.Errorf("wake: decode %s: %w", path, err)
	}
	return g, nil
}

// SaveGrid writes g as YAML.
func SaveGrid(path string, g *Grid) error {
	data, err := yaml.Marshal(g)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func checkShape(name string, field [][]float64, nx, nz int) error {
	if len(field) != nx {
		cols := 0
		if len(field) > 0 {
			cols = len(field[0])
		}
		return &ShapeError{Field: name, Rows: len(field), Cols: cols, WantRows: nx, WantCols: nz}
	}
	for _, row := range field {
		if len(row) != nz {
			return &ShapeError{Field: name, Rows: len(field), Cols: len(row), WantRows: nx, WantCols: nz}
		}
	}
	return nil
}

func strictlyIncreasing[T constraints.Float](axis []T) bool {
	if len(axis) == 0 {
		return false
	}
	for i, v := range axis {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return false
		}
		if i > 0 && v <= axis[i-1] {
			return false
		}
	}
	return true
}

func zeros(nx, nz int) [][]float64 {
	out := make([][]float64, nx)
	for i := range out {
		out[i] = make([]float64, nz)
	}
	return out
}
