// Package export renders run histories and phase space scatters as SVG.
package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/csrtrack/internal/analysis"
)

type bounds struct {
	minX, minY, rangeX, rangeY float64
}

// padded returns the bounds of points with 10% padding on each side.
func padded(points []analysis.Point) bounds {
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
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
	minY -= rangeY * 0.1
	return bounds{minX: minX, minY: minY, rangeX: rangeX * 1.2, rangeY: rangeY * 1.2}
}

func (b bounds) project(p analysis.Point, width, height int) (float64, float64) {
	x := (p.X - b.minX) / b.rangeX * float64(width)
	y := float64(height) - (p.Y-b.minY)/b.rangeY*float64(height)
	return x, y
}

func header(sb *strings.Builder, width, height int, title string) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)
	if title != "" {
		fmt.Fprintf(sb, `<text x="8" y="16" fill="#888899" font-family="monospace" font-size="12">%s</text>
`, escape(title))
	}
}

// LineSVG draws points joined in order, e.g. a history column against s.
func LineSVG(points []analysis.Point, width, height int, strokeColor, title string) string {
	if len(points) < 2 {
		return ""
	}

	b := padded(points)

	var sb strings.Builder
	header(&sb, width, height, title)
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor)

	for i, p := range points {
		x, y := b.project(p, width, height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

// ScatterSVG draws one dot per particle.
func ScatterSVG(ps *analysis.PhaseSpace, width, height int, fillColor string) string {
	if ps == nil || len(ps.Points) == 0 {
		return ""
	}

	b := padded(ps.Points)

	var sb strings.Builder
	header(&sb, width, height, ps.YLabel+" vs "+ps.XLabel)
	fmt.Fprintf(&sb, "<g fill=%q>\n", fillColor)

	for _, p := range ps.Points {
		x, y := b.project(p, width, height)
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="1.2"/>
`, x, y)
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

func escape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}
