package verlet

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// CompressionPolicy selects whether links push apart as well as pull.
type CompressionPolicy int

const (
	// ResistStretch only corrects links at or beyond their target distance.
	ResistStretch CompressionPolicy = iota
	// ResistBoth corrects links in both directions, like a rod.
	ResistBoth
)

func (c CompressionPolicy) String() string {
	switch c {
	case ResistStretch:
		return "stretch"
	case ResistBoth:
		return "both"
	default:
		return fmt.Sprintf("CompressionPolicy(%d)", int(c))
	}
}

// ParseCompressionPolicy accepts the names produced by String.
func ParseCompressionPolicy(s string) (CompressionPolicy, error) {
	switch s {
	case "", "stretch":
		return ResistStretch, nil
	case "both":
		return ResistBoth, nil
	}
	return 0, fmt.Errorf("%w: link policy %q", ErrInvalidConfig, s)
}

// RelaxLink moves a and b toward l.Target by a fraction scale of the
// error. It returns the endpoint distance measured before correction.
func RelaxLink(a, b *Particle, l Link, scale float64, policy CompressionPolicy) (float64, error) {
	diff := r2.Sub(a.Position, b.Position)
	d := r2.Norm(diff)
	if policy == ResistStretch && d < l.Target {
		return d, nil
	}
	if d == 0 {
		return 0, fmt.Errorf("%w: coincident link endpoints", ErrInvalidConstraint)
	}
	delta := l.Target - d
	n := r2.Scale(1/d, diff)
	displace(a, b, r2.Scale(delta*scale, n))
	return d, nil
}

// displace moves a by +shift and b by -shift. A suspended endpoint does
// not move and the free one takes both shares.
func displace(a, b *Particle, shift r2.Vec) {
	switch {
	case a.Movable() && b.Movable():
		a.Position = r2.Add(a.Position, shift)
		b.Position = r2.Sub(b.Position, shift)
	case a.Movable():
		a.Position = r2.Add(a.Position, r2.Scale(2, shift))
	case b.Movable():
		b.Position = r2.Sub(b.Position, r2.Scale(2, shift))
	}
}
