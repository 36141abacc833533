package scene

import (
	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/verletlab/internal/config"
	"github.com/san-kum/verletlab/internal/verlet"
)

// Playground spawns balls at the cursor into a circular container. The
// secondary button erases balls under the cursor.
type Playground struct {
	base
	pc      config.PlaygroundConfig
	pending float64
}

func NewPlayground(cfg *config.Config, logger *log.Logger) (*Playground, error) {
	b, err := newBase("playground", cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Playground{base: b, pc: cfg.Playground}, nil
}

func (p *Playground) Update(in verlet.Input) (verlet.StepReport, error) {
	if in.Primary {
		p.pending += p.pc.BallsPerSecond / p.cfg.FPS
		for p.pending >= 1 {
			p.pending--
			if err := p.spawn(in.Cursor); err != nil {
				return verlet.StepReport{}, err
			}
		}
	} else {
		p.pending = 0
	}

	culled := 0
	if in.Secondary {
		culled = p.world.RemoveAt(in.Cursor, p.pc.EraseRadius)
	}

	report, err := p.advance()
	report.Culled += culled
	return report, err
}

func (p *Playground) spawn(at r2.Vec) error {
	if p.pc.MaxBalls > 0 && p.world.Particles.Len() >= p.pc.MaxBalls {
		return nil
	}
	radius := p.pc.MinRadius + p.rng.Float64()*(p.pc.MaxRadius-p.pc.MinRadius)
	ball := verlet.NewParticle(at, radius)
	ball.Color = p.randomColor()
	ball.Acceleration = p.launch(at, r2.Norm(p.world.Gravity())*p.pc.LaunchFactor)
	_, err := p.world.AddParticle(ball)
	return err
}

// SetContainerRadius resizes the circular border within the configured
// slider range.
func (p *Playground) SetContainerRadius(r float64) {
	r = max(p.pc.MinContainer, min(p.pc.MaxContainer, r))
	p.world.SetContainer(verlet.Circle{Center: p.cfg.Center(), Radius: r})
}

// SetSpawnRate sets how many balls per second the held button emits.
func (p *Playground) SetSpawnRate(n float64) {
	p.pc.BallsPerSecond = max(0, n)
}

// SetBallRadius sets the range new ball radii are drawn from, capped at
// the largest ball that fits a grid cell.
func (p *Playground) SetBallRadius(lo, hi float64) {
	if lo > hi {
		lo, hi = hi, lo
	}
	limit := p.world.Config().CellSize / 2
	p.pc.MinRadius, p.pc.MaxRadius = min(lo, limit), min(hi, limit)
}

// Spawner returns the live spawn settings.
func (p *Playground) Spawner() config.PlaygroundConfig { return p.pc }

// Script holds the spawner down while circling the centre, pausing every
// four seconds and erasing once per cycle.
func (p *Playground) Script(frame int) verlet.Input {
	cycle := frame % 240
	in := verlet.Input{Cursor: p.orbit(frame, 120, 0.05)}
	in.Primary = cycle < 180
	in.PrimaryPressed = cycle == 0
	if cycle == 239 {
		in.Secondary = true
		in.Cursor = p.cfg.Center()
	}
	return in
}
