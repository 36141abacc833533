package verlet

import (
	"fmt"
	"math"
)

// Config holds the knobs that differ between scenes. The zero value is not
// usable; start from DefaultConfig.
type Config struct {
	SubSteps       int
	Damping        float64
	MaxSpeed       float64
	GravityPolicy  GravityPolicy
	LinkPolicy     CompressionPolicy
	LinkScale      float64
	CollisionScale float64
	Collide        bool

	// ResetAccelerationOnContact sets a particle's acceleration to world
	// gravity when it collides or the container clamps it.
	ResetAccelerationOnContact bool

	CellSize   float64
	GridExtent float64
	Workers    int

	InitialCapacity int
	MaxParticles    int
	MaxLinks        int
}

func DefaultConfig() Config {
	return Config{
		SubSteps:        8,
		Damping:         0.95,
		MaxSpeed:        10,
		GravityPolicy:   ExponentialApproach,
		LinkPolicy:      ResistStretch,
		LinkScale:       0.30,
		CollisionScale:  0.875,
		Collide:         true,
		CellSize:        20,
		GridExtent:      400,
		Workers:         1,
		InitialCapacity: 16,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch {
	case c.SubSteps < 1:
		return fmt.Errorf("%w: sub_steps must be >= 1, got %d", ErrInvalidConfig, c.SubSteps)
	case !(c.Damping > 0 && c.Damping <= 1):
		return fmt.Errorf("%w: damping must be in (0, 1], got %g", ErrInvalidConfig, c.Damping)
	case c.MaxSpeed < 0 || math.IsNaN(c.MaxSpeed):
		return fmt.Errorf("%w: max_speed must be >= 0, got %g", ErrInvalidConfig, c.MaxSpeed)
	case !(c.LinkScale > 0 && c.LinkScale <= 1):
		return fmt.Errorf("%w: link_scale must be in (0, 1], got %g", ErrInvalidConfig, c.LinkScale)
	case !(c.CollisionScale > 0 && c.CollisionScale <= 1):
		return fmt.Errorf("%w: collision_scale must be in (0, 1], got %g", ErrInvalidConfig, c.CollisionScale)
	case !(c.CellSize > 0):
		return fmt.Errorf("%w: cell_size must be > 0, got %g", ErrInvalidConfig, c.CellSize)
	case !(c.GridExtent > 0):
		return fmt.Errorf("%w: grid_extent must be > 0, got %g", ErrInvalidConfig, c.GridExtent)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidConfig, c.Workers)
	case c.InitialCapacity < 0 || c.MaxParticles < 0 || c.MaxLinks < 0:
		return fmt.Errorf("%w: capacities must be >= 0", ErrInvalidConfig)
	case c.GravityPolicy != ExponentialApproach && c.GravityPolicy != HardSet:
		return fmt.Errorf("%w: unknown %v", ErrInvalidConfig, c.GravityPolicy)
	case c.LinkPolicy != ResistStretch && c.LinkPolicy != ResistBoth:
		return fmt.Errorf("%w: unknown %v", ErrInvalidConfig, c.LinkPolicy)
	}
	return nil
}
