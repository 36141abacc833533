package scene

import (
	"fmt"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/verletlab/internal/config"
	"github.com/san-kum/verletlab/internal/verlet"
)

// Cloth is a lattice hanging from its pinned top row. Holding the primary
// button cuts links near the cursor.
type Cloth struct {
	base
	cc config.ClothConfig
}

func NewCloth(cfg *config.Config, logger *log.Logger) (*Cloth, error) {
	b, err := newBase("cloth", cfg, logger)
	if err != nil {
		return nil, err
	}
	cc := cfg.Cloth
	if cc.Rows < 2 || cc.Cols < 2 {
		return nil, fmt.Errorf("%w: cloth needs at least 2x2, got %dx%d", verlet.ErrInvalidConfig, cc.Rows, cc.Cols)
	}
	dx := (cfg.World.Width - 2*cc.XPad) / float64(cc.Cols-1)
	dy := (cfg.World.Height - 2*cc.YPad) / float64(cc.Rows-1)
	gravity := cfg.Gravity()

	handles := make([]verlet.Handle, 0, cc.Rows*cc.Cols)
	for r := range cc.Rows {
		for c := range cc.Cols {
			pos := r2.Vec{X: cc.XPad + float64(c)*dx, Y: cc.YPad + float64(r)*dy}
			p := verlet.NewParticle(pos, cc.Radius)
			if r == 0 {
				p.Pin(pos)
			}
			p.Acceleration = gravity
			h, err := b.world.AddParticle(p)
			if err != nil {
				return nil, err
			}
			handles = append(handles, h)
		}
	}

	at := func(r, c int) verlet.Handle { return handles[r*cc.Cols+c] }
	link := func(a, b verlet.Handle, target float64) verlet.Link {
		return verlet.Link{A: a, B: b, Target: target, SnapDistance: cc.SnapFactor * target}
	}
	for r := range cc.Rows {
		for c := range cc.Cols {
			if c+1 < cc.Cols {
				if _, err := b.world.InsertLink(link(at(r, c), at(r, c+1), dx)); err != nil {
					return nil, err
				}
			}
			if r+1 < cc.Rows {
				if _, err := b.world.InsertLink(link(at(r, c), at(r+1, c), dy)); err != nil {
					return nil, err
				}
			}
		}
	}
	return &Cloth{base: b, cc: cc}, nil
}

func (c *Cloth) Update(in verlet.Input) (verlet.StepReport, error) {
	cut := 0
	if in.Primary {
		cut = c.world.Cut(in.Cursor, c.cc.CutTolerance)
	}
	report, err := c.advance()
	report.Snapped += cut
	return report, err
}

// Script lets the cloth settle for two seconds, then drags a horizontal
// cut across its middle over one second.
func (c *Cloth) Script(frame int) verlet.Input {
	const start, length = 120, 60
	if frame < start || frame >= start+length {
		return verlet.Input{}
	}
	t := float64(frame-start) / float64(length-1)
	x := c.cc.XPad + t*(c.cfg.World.Width-2*c.cc.XPad)
	y := c.cfg.World.Height / 2
	return verlet.Input{Cursor: r2.Vec{X: x, Y: y}, Primary: true, PrimaryPressed: frame == start}
}
