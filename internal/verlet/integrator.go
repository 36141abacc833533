package verlet

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// GravityPolicy selects how a particle's acceleration follows world gravity.
type GravityPolicy int

const (
	// ExponentialApproach relaxes acceleration toward gravity by a fraction
	// dt per step, giving a smooth spin-up after launches.
	ExponentialApproach GravityPolicy = iota
	// HardSet overwrites acceleration with gravity every step.
	HardSet
)

func (g GravityPolicy) String() string {
	switch g {
	case ExponentialApproach:
		return "exponential"
	case HardSet:
		return "hard"
	default:
		return fmt.Sprintf("GravityPolicy(%d)", int(g))
	}
}

// ParseGravityPolicy accepts the names produced by String.
func ParseGravityPolicy(s string) (GravityPolicy, error) {
	switch s {
	case "", "exponential":
		return ExponentialApproach, nil
	case "hard":
		return HardSet, nil
	}
	return 0, fmt.Errorf("%w: gravity policy %q", ErrInvalidConfig, s)
}

// ApplyGravity moves p's acceleration toward gravity under policy.
func ApplyGravity(p *Particle, gravity r2.Vec, dt float64, policy GravityPolicy) {
	switch policy {
	case HardSet:
		p.Acceleration = gravity
	default:
		delta := r2.Scale(dt, r2.Sub(gravity, p.Acceleration))
		p.Acceleration = r2.Add(p.Acceleration, delta)
	}
}

// UpdatePosition advances p by one damped Verlet step. A velocity at or
// above maxSpeed is zeroed; maxSpeed <= 0 disables the clamp.
func UpdatePosition(p *Particle, dt, damping, maxSpeed float64) {
	velocity := r2.Scale(damping, r2.Sub(p.Position, p.Previous))
	if maxSpeed > 0 && r2.Norm(velocity) >= maxSpeed {
		velocity = r2.Vec{}
	}
	p.Previous = p.Position
	// x(n+1) = x(n) + v + a*dt^2
	p.Position = r2.Add(p.Position, r2.Add(velocity, r2.Scale(dt*dt, p.Acceleration)))
}

// Integrate advances one particle by one sub-step of length dt.
func Integrate(p *Particle, gravity r2.Vec, dt float64, cfg *Config) {
	switch p.Status {
	case Suspended:
		p.Position = p.Anchor
		p.Previous = p.Anchor
	default:
		ApplyGravity(p, gravity, dt, cfg.GravityPolicy)
		UpdatePosition(p, dt, cfg.Damping, cfg.MaxSpeed)
	}
}
