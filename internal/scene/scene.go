// Package scene builds the interactive setups (playground, rope, cloth,
// bridge, plinko) on top of a verlet.World.
package scene

import (
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/verletlab/internal/config"
	"github.com/san-kum/verletlab/internal/verlet"
)

// Scene is a populated world plus the input handling that drives it.
type Scene interface {
	Name() string
	World() *verlet.World
	Config() *config.Config
	// Update applies one frame of input and advances the world one frame.
	Update(in verlet.Input) (verlet.StepReport, error)
	// Script returns deterministic input for headless runs.
	Script(frame int) verlet.Input
	Frame() int
}

type Factory func(cfg *config.Config, logger *log.Logger) (Scene, error)

type Registry struct {
	scenes map[string]Factory
}

func NewRegistry() *Registry {
	r := &Registry{scenes: make(map[string]Factory)}

	r.scenes["playground"] = func(cfg *config.Config, l *log.Logger) (Scene, error) { return NewPlayground(cfg, l) }
	r.scenes["rope"] = func(cfg *config.Config, l *log.Logger) (Scene, error) { return NewRope(cfg, l) }
	r.scenes["cloth"] = func(cfg *config.Config, l *log.Logger) (Scene, error) { return NewCloth(cfg, l) }
	r.scenes["bridge"] = func(cfg *config.Config, l *log.Logger) (Scene, error) { return NewBridge(cfg, l) }
	r.scenes["plinko"] = func(cfg *config.Config, l *log.Logger) (Scene, error) { return NewPlinko(cfg, l) }

	return r
}

// Build creates the scene named by cfg.Scene.
func (r *Registry) Build(cfg *config.Config, logger *log.Logger) (Scene, error) {
	fn, ok := r.scenes[cfg.Scene]
	if !ok {
		return nil, fmt.Errorf("unknown scene: %s", cfg.Scene)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s, err := fn(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", cfg.Scene, err)
	}
	logger.Debug("scene built", "scene", cfg.Scene,
		"particles", s.World().Particles.Len(), "links", s.World().Links.Len())
	return s, nil
}

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.scenes))
	for name := range r.scenes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type base struct {
	name   string
	cfg    *config.Config
	world  *verlet.World
	logger *log.Logger
	rng    *rand.Rand
	frame  int
}

func newBase(name string, cfg *config.Config, logger *log.Logger) (base, error) {
	if err := cfg.Validate(); err != nil {
		return base{}, err
	}
	vc, err := cfg.VerletConfig()
	if err != nil {
		return base{}, err
	}
	container, err := cfg.Container()
	if err != nil {
		return base{}, err
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	w, err := verlet.New(vc,
		verlet.WithLogger(logger),
		verlet.WithGravity(cfg.Gravity()),
		verlet.WithContainer(container),
		verlet.WithGridCenter(cfg.Center()))
	if err != nil {
		return base{}, err
	}
	return base{
		name:   name,
		cfg:    cfg,
		world:  w,
		logger: logger,
		rng:    rand.New(rand.NewPCG(cfg.Seed, uint64(len(name)))),
	}, nil
}

func (b *base) Name() string           { return b.name }
func (b *base) World() *verlet.World   { return b.world }
func (b *base) Config() *config.Config { return b.cfg }
func (b *base) Frame() int             { return b.frame }

func (b *base) advance() (verlet.StepReport, error) {
	report, err := b.world.Frame(b.cfg.FrameDt())
	if err != nil {
		return report, err
	}
	b.frame++
	return report, nil
}

func (b *base) screen() verlet.Box {
	return verlet.NewBox(b.cfg.World.Width, b.cfg.World.Height)
}

// launch returns an acceleration of the given strength pointing from
// cursor back through the centre of the screen.
func (b *base) launch(cursor r2.Vec, strength float64) r2.Vec {
	dir := r2.Sub(cursor, b.cfg.Center())
	if r2.Norm(dir) == 0 {
		return r2.Vec{}
	}
	return r2.Scale(-strength, r2.Unit(dir))
}

func (b *base) randomColor() uint32 {
	r := 64 + b.rng.Uint32N(192)
	g := 64 + b.rng.Uint32N(192)
	bl := 64 + b.rng.Uint32N(192)
	return r<<24 | g<<16 | bl<<8 | 0xff
}

// orbit returns a point on a circle of radius r around the screen centre.
func (b *base) orbit(frame int, r, speed float64) r2.Vec {
	angle := float64(frame) * speed
	c := b.cfg.Center()
	return r2.Vec{X: c.X + r*math.Cos(angle), Y: c.Y + r*math.Sin(angle)}
}

func sinStep(n, period int) float64 {
	return math.Sin(2 * math.Pi * float64(n) / float64(period))
}
