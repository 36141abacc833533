// Package verlet provides the particle/constraint core of verletlab.
//
// The package simulates circular particles under damped Verlet integration:
//
//   - [ParticleStore]: growable arena of particles with generation-checked [Handle]s
//   - [ConstraintStore]: growable collection of distance [Link]s between handles
//   - [Grid]: uniform grid used as the collision broad phase
//   - [Container]: circular or rectangular border
//   - [World]: simulation context tying the above together
//
// # Example
//
//	w, _ := verlet.New(verlet.DefaultConfig(),
//	    verlet.WithGravity(r2.Vec{Y: 1000}),
//	    verlet.WithContainer(verlet.Circle{Center: c, Radius: 300}))
//	w.AddParticle(verlet.NewParticle(c, 8))
//	report, _ := w.Frame(1.0 / 60)
//
// # Thread Safety
//
// A World is NOT safe for concurrent use. With Config.Workers > 1 the
// collide phase fans out internally and joins before Step returns.
package verlet
