package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/verletlab/internal/sim"
	"github.com/san-kum/verletlab/internal/verlet"
)

const background = "#0a0a0a"

// SnapshotToSVG draws the links and particles of one recorded frame in
// world coordinates.
func SnapshotToSVG(snap sim.Snapshot, width, height float64) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background))

	if len(snap.Links) > 0 {
		sb.WriteString(`<g stroke="#f5f5f5" stroke-width="1" stroke-opacity="0.6">` + "\n")
		for _, l := range snap.Links {
			if l.A >= len(snap.Particles) || l.B >= len(snap.Particles) {
				continue
			}
			a, b := snap.Particles[l.A], snap.Particles[l.B]
			sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
`, a.X, a.Y, b.X, b.Y))
		}
		sb.WriteString("</g>\n")
	}

	for _, p := range snap.Particles {
		stroke := ""
		if p.Status == verlet.Suspended {
			stroke = ` stroke="#ffd700" stroke-width="1.5"`
		}
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"%s/>
`, p.X, p.Y, p.Radius, HexColor(p.Color), stroke))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// HexColor turns packed RGBA into an SVG colour, dropping alpha.
func HexColor(c uint32) string {
	return fmt.Sprintf("#%06x", c>>8)
}

// Trajectory collects the positions of one particle index across frames.
// Frames that do not hold the index are skipped.
func Trajectory(frames []sim.Snapshot, index int) []struct{ X, Y float64 } {
	points := make([]struct{ X, Y float64 }, 0, len(frames))
	for _, f := range frames {
		if index < 0 || index >= len(f.Particles) {
			continue
		}
		p := f.Particles[index]
		points = append(points, struct{ X, Y float64 }{p.X, p.Y})
	}
	return points
}

// TrajectoryToSVG creates an SVG path from trajectory data, fitted to the
// canvas. Screen coordinates grow downward so y is not flipped.
func TrajectoryToSVG(points []struct{ X, Y float64 }, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

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
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, background, strokeColor))

	for i, p := range points {
		x := (p.X - minX) / rangeX * float64(width)
		y := (p.Y - minY) / rangeY * float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
