package verlet

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Container keeps particles inside a border.
type Container interface {
	// Constrain clamps p inside the border and reports whether it touched it.
	Constrain(p *Particle) bool
	// Contains reports whether a circle at pos fits inside the border.
	Contains(pos r2.Vec, radius float64) bool
}

// Circle is a circular container.
type Circle struct {
	Center r2.Vec
	Radius float64
}

func (c Circle) Constrain(p *Particle) bool {
	offset := r2.Sub(p.Position, c.Center)
	d := r2.Norm(offset)
	if d+p.Radius < c.Radius {
		return false
	}
	if p.Radius >= c.Radius {
		// too big to fit; hold it at the centre
		p.Position = c.Center
		return true
	}
	p.Position = r2.Add(c.Center, r2.Scale((c.Radius-p.Radius)/d, offset))
	return true
}

func (c Circle) Contains(pos r2.Vec, radius float64) bool {
	return r2.Norm(r2.Sub(pos, c.Center))+radius < c.Radius
}

// Box is an axis-aligned rectangular container.
type Box struct {
	Min, Max r2.Vec
}

// NewBox returns the box spanning (0,0)-(w,h).
func NewBox(w, h float64) Box { return Box{Max: r2.Vec{X: w, Y: h}} }

func (b Box) Constrain(p *Particle) bool {
	x := clamp(p.Position.X, b.Min.X+p.Radius, b.Max.X-p.Radius)
	y := clamp(p.Position.Y, b.Min.Y+p.Radius, b.Max.Y-p.Radius)
	hit := x != p.Position.X || y != p.Position.Y
	p.Position = r2.Vec{X: x, Y: y}
	return hit
}

func (b Box) Contains(pos r2.Vec, radius float64) bool {
	return pos.X-radius >= b.Min.X && pos.X+radius <= b.Max.X &&
		pos.Y-radius >= b.Min.Y && pos.Y+radius <= b.Max.Y
}

// Intersects reports whether a circle at pos touches the box at all.
func (b Box) Intersects(pos r2.Vec, radius float64) bool {
	cx := clamp(pos.X, b.Min.X, b.Max.X)
	cy := clamp(pos.Y, b.Min.Y, b.Max.Y)
	return math.Hypot(pos.X-cx, pos.Y-cy) <= radius
}

func clamp(v, lo, hi float64) float64 {
	if lo > hi {
		return (lo + hi) / 2
	}
	return math.Max(lo, math.Min(hi, v))
}
