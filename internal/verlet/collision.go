package verlet

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// ResolveCollision pushes two overlapping circles apart along their centre
// axis, each by half of scale times the penetration. It reports whether
// the circles overlapped.
func ResolveCollision(a, b *Particle, scale float64) (bool, error) {
	diff := r2.Sub(a.Position, b.Position)
	minDist := a.Radius + b.Radius
	d2 := r2.Norm2(diff)
	if d2 >= minDist*minDist {
		return false, nil
	}
	if d2 == 0 {
		return true, fmt.Errorf("%w: coincident circles", ErrInvalidConstraint)
	}
	d := r2.Norm(diff)
	delta := minDist - d
	n := r2.Scale(1/d, diff)
	displace(a, b, r2.Scale(delta*0.5*scale, n))
	return true, nil
}

// Penetration returns how deep two circles overlap, or 0.
func Penetration(a, b *Particle) float64 {
	d := r2.Norm(r2.Sub(a.Position, b.Position))
	if pen := a.Radius + b.Radius - d; pen > 0 {
		return pen
	}
	return 0
}
