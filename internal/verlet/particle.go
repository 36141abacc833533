package verlet

import "gonum.org/v1/gonum/spatial/r2"

// Status selects how a particle takes part in a step.
type Status uint8

const (
	// Free particles integrate and respond to links and collisions.
	Free Status = iota
	// Suspended particles are pinned to their Anchor and never displaced.
	Suspended
)

func (s Status) String() string {
	switch s {
	case Free:
		return "free"
	case Suspended:
		return "suspended"
	default:
		return "unknown"
	}
}

// Particle is one simulated circle. Velocity is implicit in
// Position - Previous.
type Particle struct {
	Position     r2.Vec
	Previous     r2.Vec
	Acceleration r2.Vec
	Radius       float64
	Status       Status
	Anchor       r2.Vec
	Color        uint32 // 0xRRGGBBAA, drawing only
}

// NewParticle returns a free particle at rest at pos.
func NewParticle(pos r2.Vec, radius float64) Particle {
	return Particle{Position: pos, Previous: pos, Radius: radius, Color: 0xf5f5f5ff}
}

// NewPinned returns a suspended particle anchored at pos.
func NewPinned(pos r2.Vec, radius float64) Particle {
	p := NewParticle(pos, radius)
	p.Pin(pos)
	return p
}

// Velocity is the displacement over the last step.
func (p *Particle) Velocity() r2.Vec {
	return r2.Sub(p.Position, p.Previous)
}

// Pin suspends the particle at anchor.
func (p *Particle) Pin(anchor r2.Vec) {
	p.Status = Suspended
	p.Anchor = anchor
	p.Position = anchor
	p.Previous = anchor
}

// Release frees a suspended particle at rest where it is.
func (p *Particle) Release() {
	p.Status = Free
	p.Previous = p.Position
}

// Movable reports whether links and collisions may displace the particle.
func (p *Particle) Movable() bool { return p.Status == Free }

// Overlaps reports whether the particle's circle contains point, padded by pad.
func (p *Particle) Overlaps(point r2.Vec, pad float64) bool {
	return r2.Norm(r2.Sub(p.Position, point)) < p.Radius+pad
}
