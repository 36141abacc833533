package scene

import (
	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/verletlab/internal/config"
	"github.com/san-kum/verletlab/internal/verlet"
)

// Bridge is a row of circles pinned at both ends. Pressing the primary
// button fires a projectile from the cursor away from the screen centre.
type Bridge struct {
	base
	bc config.BridgeConfig
}

const projectileColor = 0xe62937ff

func NewBridge(cfg *config.Config, logger *log.Logger) (*Bridge, error) {
	b, err := newBase("bridge", cfg, logger)
	if err != nil {
		return nil, err
	}
	bc := cfg.Bridge
	n := int((cfg.World.Width - 2*bc.XPad) / (2 * bc.Radius))
	gravity := cfg.Gravity()

	var prev verlet.Handle
	for i := range n {
		pos := r2.Vec{X: bc.XPad + float64(i)*2*bc.Radius, Y: cfg.World.Height / 2}
		p := verlet.NewParticle(pos, bc.Radius)
		if i == 0 || i == n-1 {
			p.Pin(pos)
		}
		p.Acceleration = gravity
		h, err := b.world.AddParticle(p)
		if err != nil {
			return nil, err
		}
		if i > 0 {
			if _, err := b.world.AddLink(prev, h, bc.Radius); err != nil {
				return nil, err
			}
		}
		prev = h
	}
	return &Bridge{base: b, bc: bc}, nil
}

func (b *Bridge) Update(in verlet.Input) (verlet.StepReport, error) {
	if in.PrimaryPressed {
		if err := b.fire(in.Cursor); err != nil {
			return verlet.StepReport{}, err
		}
	}
	report, err := b.advance()
	if err != nil {
		return report, err
	}
	report.Culled += b.world.CullOutside(b.screen())
	return report, nil
}

func (b *Bridge) fire(at r2.Vec) error {
	p := verlet.NewParticle(at, b.bc.ProjectileRadius)
	p.Color = projectileColor
	p.Acceleration = b.launch(at, b.bc.LaunchStrength)
	_, err := b.world.AddParticle(p)
	return err
}

// Script fires a projectile down at the bridge every second from
// alternating points above it.
func (b *Bridge) Script(frame int) verlet.Input {
	if frame%60 != 30 {
		return verlet.Input{}
	}
	k := frame / 60
	c := b.cfg.Center()
	cursor := r2.Vec{X: c.X + float64(k%3-1)*150, Y: c.Y / 3}
	return verlet.Input{Cursor: cursor, Primary: true, PrimaryPressed: true}
}
