package scene

import (
	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/verletlab/internal/config"
	"github.com/san-kum/verletlab/internal/verlet"
)

// Plinko is a triangular board of pinned pegs. Pressing the primary
// button drops a ball at the cursor.
type Plinko struct {
	base
	pc   config.PlinkoConfig
	pegs int
}

const pegColor = 0x8a8a8aff

func NewPlinko(cfg *config.Config, logger *log.Logger) (*Plinko, error) {
	b, err := newBase("plinko", cfg, logger)
	if err != nil {
		return nil, err
	}
	pc := cfg.Plinko
	d := pc.Spacing
	start := r2.Vec{X: cfg.World.Width/2 - d, Y: 100}

	pegs := 0
	for i := range pc.Levels {
		pos := start
		for range 3 + i {
			peg := verlet.NewPinned(pos, pc.PegRadius)
			peg.Color = pegColor
			if _, err := b.world.AddParticle(peg); err != nil {
				return nil, err
			}
			pegs++
			pos.X += d
		}
		start.X -= d / 2
		start.Y += d
	}
	return &Plinko{base: b, pc: pc, pegs: pegs}, nil
}

// Pegs is the number of pinned pegs on the board.
func (p *Plinko) Pegs() int { return p.pegs }

// Balls is the number of dropped balls still in play.
func (p *Plinko) Balls() int { return p.world.Particles.Len() - p.pegs }

func (p *Plinko) Update(in verlet.Input) (verlet.StepReport, error) {
	if in.PrimaryPressed && (p.pc.MaxBalls == 0 || p.Balls() < p.pc.MaxBalls) {
		ball := verlet.NewParticle(in.Cursor, p.pc.BallRadius)
		ball.Color = p.randomColor()
		ball.Acceleration = p.world.Gravity()
		if _, err := p.world.AddParticle(ball); err != nil {
			return verlet.StepReport{}, err
		}
	}
	return p.advance()
}

// Script drops a ball above the apex every DropEvery frames, nudged
// sideways in a repeating pattern.
func (p *Plinko) Script(frame int) verlet.Input {
	every := max(p.pc.DropEvery, 1)
	if frame%every != 0 {
		return verlet.Input{}
	}
	offset := float64((frame/every)%5-2) * p.pc.Spacing / 8
	cursor := r2.Vec{X: p.cfg.World.Width/2 + offset, Y: 40}
	return verlet.Input{Cursor: cursor, Primary: true, PrimaryPressed: true}
}
