package config

import (
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/verletlab/internal/verlet"
)

const (
	DefaultFPS      = 60.0
	DefaultFrames   = 600
	DefaultSubSteps = 8
	DefaultDamping  = 0.95
	DefaultGravity  = 1000.0
	DefaultScreen   = 900.0
	DefaultRadius   = 400.0
	DefaultCellSize = 20.0
)

type Config struct {
	Scene       string  `yaml:"scene"`
	Frames      int     `yaml:"frames"`
	FPS         float64 `yaml:"fps"`
	Seed        uint64  `yaml:"seed"`
	RecordEvery int     `yaml:"record_every"`

	Solver SolverConfig `yaml:"solver"`
	World  WorldConfig  `yaml:"world"`

	Playground PlaygroundConfig `yaml:"playground"`
	Rope       RopeConfig       `yaml:"rope"`
	Cloth      ClothConfig      `yaml:"cloth"`
	Bridge     BridgeConfig     `yaml:"bridge"`
	Plinko     PlinkoConfig     `yaml:"plinko"`
}

type SolverConfig struct {
	SubSteps                   int     `yaml:"sub_steps"`
	Damping                    float64 `yaml:"damping"`
	MaxSpeed                   float64 `yaml:"max_speed"`
	GravityPolicy              string  `yaml:"gravity_policy"`
	LinkPolicy                 string  `yaml:"link_policy"`
	LinkScale                  float64 `yaml:"link_scale"`
	CollisionScale             float64 `yaml:"collision_scale"`
	Collide                    bool    `yaml:"collide"`
	ResetAccelerationOnContact bool    `yaml:"reset_acceleration_on_contact"`
	CellSize                   float64 `yaml:"cell_size"`
	GridExtent                 float64 `yaml:"grid_extent"`
	Workers                    int     `yaml:"workers"`
	InitialCapacity            int     `yaml:"initial_capacity"`
	MaxParticles               int     `yaml:"max_particles"`
	MaxLinks                   int     `yaml:"max_links"`
}

type Vec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type WorldConfig struct {
	Width     float64         `yaml:"width"`
	Height    float64         `yaml:"height"`
	Gravity   Vec             `yaml:"gravity"`
	Container ContainerConfig `yaml:"container"`
}

// ContainerConfig selects the border. Kind is "circle", "box" or "none";
// circles are centred on the screen.
type ContainerConfig struct {
	Kind   string  `yaml:"kind"`
	Radius float64 `yaml:"radius"`
}

type PlaygroundConfig struct {
	BallsPerSecond float64 `yaml:"balls_per_second"`
	MinRadius      float64 `yaml:"min_radius"`
	MaxRadius      float64 `yaml:"max_radius"`
	MaxBalls       int     `yaml:"max_balls"`
	LaunchFactor   float64 `yaml:"launch_factor"`
	EraseRadius    float64 `yaml:"erase_radius"`
	MinContainer   float64 `yaml:"min_container"`
	MaxContainer   float64 `yaml:"max_container"`
}

type RopeConfig struct {
	Segments int     `yaml:"segments"`
	Radius   float64 `yaml:"radius"`
	PinFirst bool    `yaml:"pin_first"`
}

type ClothConfig struct {
	Rows         int     `yaml:"rows"`
	Cols         int     `yaml:"cols"`
	Radius       float64 `yaml:"radius"`
	XPad         float64 `yaml:"x_pad"`
	YPad         float64 `yaml:"y_pad"`
	CutTolerance float64 `yaml:"cut_tolerance"`
	SnapFactor   float64 `yaml:"snap_factor"`
}

type BridgeConfig struct {
	Radius           float64 `yaml:"radius"`
	XPad             float64 `yaml:"x_pad"`
	ProjectileRadius float64 `yaml:"projectile_radius"`
	LaunchStrength   float64 `yaml:"launch_strength"`
}

type PlinkoConfig struct {
	Levels     int     `yaml:"levels"`
	Spacing    float64 `yaml:"spacing"`
	PegRadius  float64 `yaml:"peg_radius"`
	BallRadius float64 `yaml:"ball_radius"`
	DropEvery  int     `yaml:"drop_every"`
	MaxBalls   int     `yaml:"max_balls"`
}

func DefaultConfig() *Config {
	return &Config{
		Scene:       "playground",
		Frames:      DefaultFrames,
		FPS:         DefaultFPS,
		Seed:        1,
		RecordEvery: 10,
		Solver: SolverConfig{
			SubSteps:        DefaultSubSteps,
			Damping:         DefaultDamping,
			MaxSpeed:        10,
			GravityPolicy:   "exponential",
			LinkPolicy:      "stretch",
			LinkScale:       0.30,
			CollisionScale:  0.875,
			Collide:         true,
			CellSize:        DefaultCellSize,
			GridExtent:      DefaultRadius,
			Workers:         1,
			InitialCapacity: 16,
		},
		World: WorldConfig{
			Width:     DefaultScreen,
			Height:    DefaultScreen,
			Gravity:   Vec{Y: DefaultGravity},
			Container: ContainerConfig{Kind: "circle", Radius: 350},
		},
		Playground: PlaygroundConfig{
			BallsPerSecond: 10,
			MinRadius:      5,
			MaxRadius:      10,
			MaxBalls:       1000,
			LaunchFactor:   10,
			EraseRadius:    5,
			MinContainer:   100,
			MaxContainer:   DefaultRadius,
		},
		Rope: RopeConfig{
			Segments: 15,
			Radius:   10,
			PinFirst: true,
		},
		Cloth: ClothConfig{
			Rows:         30,
			Cols:         30,
			Radius:       5,
			XPad:         100,
			YPad:         30,
			CutTolerance: 15,
			SnapFactor:   4,
		},
		Bridge: BridgeConfig{
			Radius:           10,
			XPad:             100,
			ProjectileRadius: 15,
			LaunchStrength:   2000,
		},
		Plinko: PlinkoConfig{
			Levels:     10,
			Spacing:    45,
			PegRadius:  5,
			BallRadius: 5,
			DropEvery:  20,
			MaxBalls:   200,
		},
	}
}

// ForScene returns the defaults tuned for a scene: its screen size,
// gravity, border and solver settings.
func ForScene(scene string) *Config {
	cfg := DefaultConfig()
	cfg.Scene = scene
	switch scene {
	case "rope":
		cfg.World = WorldConfig{Width: 700, Height: 700, Gravity: Vec{Y: 2000}, Container: ContainerConfig{Kind: "box"}}
	case "cloth":
		cfg.World = WorldConfig{Width: 750, Height: 750, Gravity: Vec{Y: 3000}, Container: ContainerConfig{Kind: "none"}}
		cfg.Solver.Collide = false
		cfg.Solver.GravityPolicy = "hard"
		cfg.Solver.LinkScale = 0.35
		cfg.Solver.MaxSpeed = 0
		cfg.Solver.GridExtent = 375
	case "bridge":
		cfg.World = WorldConfig{Width: 900, Height: 900, Gravity: Vec{Y: 1000}, Container: ContainerConfig{Kind: "none"}}
		cfg.Solver.Damping = 0.975
		cfg.Solver.CellSize = 30
		cfg.Solver.GridExtent = 450
		cfg.Solver.ResetAccelerationOnContact = true
	case "plinko":
		cfg.World = WorldConfig{Width: 700, Height: 700, Gravity: Vec{Y: 1000}, Container: ContainerConfig{Kind: "box"}}
		cfg.Solver.GridExtent = 350
	}
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	probe := struct {
		Scene string `yaml:"scene"`
	}{}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	cfg := ForScene(probe.Scene)
	if probe.Scene == "" {
		cfg = DefaultConfig()
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, cfg); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write encodes cfg as yaml.
func Write(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}

// VerletConfig converts the solver section into the core configuration.
func (c *Config) VerletConfig() (verlet.Config, error) {
	gp, err := verlet.ParseGravityPolicy(c.Solver.GravityPolicy)
	if err != nil {
		return verlet.Config{}, err
	}
	lp, err := verlet.ParseCompressionPolicy(c.Solver.LinkPolicy)
	if err != nil {
		return verlet.Config{}, err
	}
	vc := verlet.Config{
		SubSteps:                   c.Solver.SubSteps,
		Damping:                    c.Solver.Damping,
		MaxSpeed:                   c.Solver.MaxSpeed,
		GravityPolicy:              gp,
		LinkPolicy:                 lp,
		LinkScale:                  c.Solver.LinkScale,
		CollisionScale:             c.Solver.CollisionScale,
		Collide:                    c.Solver.Collide,
		ResetAccelerationOnContact: c.Solver.ResetAccelerationOnContact,
		CellSize:                   c.Solver.CellSize,
		GridExtent:                 c.Solver.GridExtent,
		Workers:                    c.Solver.Workers,
		InitialCapacity:            c.Solver.InitialCapacity,
		MaxParticles:               c.Solver.MaxParticles,
		MaxLinks:                   c.Solver.MaxLinks,
	}
	return vc, vc.Validate()
}

// Container builds the border described by the world section, or nil.
func (c *Config) Container() (verlet.Container, error) {
	w := c.World
	switch w.Container.Kind {
	case "", "none":
		return nil, nil
	case "box":
		return verlet.NewBox(w.Width, w.Height), nil
	case "circle":
		if !(w.Container.Radius > 0) {
			return nil, fmt.Errorf("%w: container radius %g", verlet.ErrInvalidConfig, w.Container.Radius)
		}
		return verlet.Circle{Center: c.Center(), Radius: w.Container.Radius}, nil
	}
	return nil, fmt.Errorf("%w: unknown container %q", verlet.ErrInvalidConfig, w.Container.Kind)
}

// Center is the middle of the screen.
func (c *Config) Center() r2.Vec {
	return r2.Vec{X: c.World.Width / 2, Y: c.World.Height / 2}
}

func (c *Config) Gravity() r2.Vec {
	return r2.Vec{X: c.World.Gravity.X, Y: c.World.Gravity.Y}
}

// FrameDt is the simulated time per frame.
func (c *Config) FrameDt() float64 {
	return 1 / c.FPS
}

// Validate checks the fields the core does not.
func (c *Config) Validate() error {
	if c.Frames < 0 {
		return fmt.Errorf("%w: frames must be >= 0, got %d", verlet.ErrInvalidConfig, c.Frames)
	}
	if !(c.FPS > 0) {
		return fmt.Errorf("%w: fps must be > 0, got %g", verlet.ErrInvalidConfig, c.FPS)
	}
	if !(c.World.Width > 0 && c.World.Height > 0) {
		return fmt.Errorf("%w: world size %gx%g", verlet.ErrInvalidConfig, c.World.Width, c.World.Height)
	}
	if _, err := c.VerletConfig(); err != nil {
		return err
	}
	if _, err := c.Container(); err != nil {
		return err
	}
	if r := c.LargestRadius(); 2*r > c.Solver.CellSize {
		return fmt.Errorf("%w: %s radius %g does not fit cell_size %g", verlet.ErrInvalidConfig, c.Scene, r, c.Solver.CellSize)
	}
	return nil
}

// LargestRadius is the biggest particle the configured scene creates.
func (c *Config) LargestRadius() float64 {
	switch c.Scene {
	case "rope":
		return c.Rope.Radius
	case "cloth":
		return c.Cloth.Radius
	case "bridge":
		return max(c.Bridge.Radius, c.Bridge.ProjectileRadius)
	case "plinko":
		return max(c.Plinko.PegRadius, c.Plinko.BallRadius)
	}
	return max(c.Playground.MinRadius, c.Playground.MaxRadius)
}
