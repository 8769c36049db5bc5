package analysis

import (
	"fmt"
	"strings"

	"github.com/san-kum/csrtrack/internal/beam"
)

type Point struct{ X, Y float64 }

// PhaseSpace holds data for a 2D phase space plot.
type PhaseSpace struct {
	XLabel, YLabel string
	Points         []Point
}

// Columns maps coordinate names to copies of the beam's columns.
func Columns(b *beam.Beam) map[string][]float64 {
	return map[string][]float64{
		"x":  b.X(),
		"px": b.Px(),
		"y":  b.Y(),
		"py": b.Py(),
		"z":  b.Z(),
		"pz": b.Pz(),
	}
}

// NewPhaseSpace pairs the named columns of b.
func NewPhaseSpace(b *beam.Beam, xName, yName string) (*PhaseSpace, error) {
	cols := Columns(b)
	xs, ok := cols[xName]
	if !ok {
		return nil, fmt.Errorf("analysis: unknown coordinate %q", xName)
	}
	ys, ok := cols[yName]
	if !ok {
		return nil, fmt.Errorf("analysis: unknown coordinate %q", yName)
	}

	ps := &PhaseSpace{XLabel: xName, YLabel: yName, Points: make([]Point, len(xs))}
	for i := range xs {
		ps.Points[i] = Point{X: xs[i], Y: ys[i]}
	}
	return ps, nil
}

// ASCII renders the points on a width×height character canvas.
func (ps *PhaseSpace) ASCII(width, height int) string {
	if ps == nil || len(ps.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	// Find bounds
	minX, maxX := ps.Points[0].X, ps.Points[0].X
	minY, maxY := ps.Points[0].Y, ps.Points[0].Y

	for _, p := range ps.Points {
		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	// Draw axes if they cross the visible area
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			canvas[row][col] = '│'
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			canvas[row][col] = '─'
		}
	}

	for _, p := range ps.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))

		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
