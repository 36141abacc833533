package scene

import (
	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/verletlab/internal/config"
	"github.com/san-kum/verletlab/internal/verlet"
)

// Rope is a chain of equal circles hanging from the screen centre. The
// primary button picks a circle and drags it.
type Rope struct {
	base
	held  verlet.Handle
	grabY float64
}

func NewRope(cfg *config.Config, logger *log.Logger) (*Rope, error) {
	b, err := newBase("rope", cfg, logger)
	if err != nil {
		return nil, err
	}
	rc := cfg.Rope
	center := cfg.Center()
	gravity := cfg.Gravity()

	var prev verlet.Handle
	for i := range rc.Segments {
		pos := r2.Vec{X: center.X, Y: center.Y + float64(i)*2*rc.Radius}
		p := verlet.NewParticle(pos, rc.Radius)
		if i == 0 && rc.PinFirst {
			p.Pin(pos)
		}
		p.Acceleration = gravity
		h, err := b.world.AddParticle(p)
		if err != nil {
			return nil, err
		}
		if i > 0 {
			if _, err := b.world.AddLink(prev, h, 2*rc.Radius); err != nil {
				return nil, err
			}
		}
		prev = h
	}
	return &Rope{base: b}, nil
}

func (r *Rope) Update(in verlet.Input) (verlet.StepReport, error) {
	if in.PrimaryPressed {
		r.held, _ = r.world.PickAt(in.Cursor)
	}
	if !in.Primary {
		r.held = verlet.Handle{}
	}
	if !r.held.IsZero() {
		if err := r.world.Drag(r.held, in.Cursor); err != nil {
			r.held = verlet.Handle{}
		}
	}
	return r.advance()
}

// Script grabs the last circle after one second and swings it sideways
// for two seconds.
func (r *Rope) Script(frame int) verlet.Input {
	const grab, release = 60, 180
	switch {
	case frame < grab || frame > release:
		return verlet.Input{}
	case frame == grab:
		last := r.world.Particles.Len() - 1
		p, err := r.world.Particles.Get(last)
		if err != nil {
			return verlet.Input{}
		}
		r.grabY = p.Position.Y
		return verlet.Input{Cursor: p.Position, Primary: true, PrimaryPressed: true}
	case frame == release:
		return verlet.Input{}
	}
	c := r.cfg.Center()
	x := c.X + 150*sinStep(frame-grab, 60)
	return verlet.Input{Cursor: r2.Vec{X: x, Y: r.grabY}, Primary: true}
}
