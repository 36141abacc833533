package sim

import (
	"time"

	"github.com/san-kum/verletlab/internal/verlet"
)

// ParticleState is a recorded copy of one particle.
type ParticleState struct {
	X, Y   float64
	Radius float64
	Status verlet.Status
	Color  uint32
}

// LinkState connects two particles by their index within a Snapshot.
type LinkState struct {
	A, B int
}

// Snapshot is the world as it stood after a frame.
type Snapshot struct {
	Frame     int
	Time      float64
	Particles []ParticleState
	Links     []LinkState
}

// Capture copies the particles and live links of w.
func Capture(w *verlet.World, frame int) Snapshot {
	s := Snapshot{
		Frame:     frame,
		Time:      w.Time(),
		Particles: make([]ParticleState, 0, w.Particles.Len()),
		Links:     make([]LinkState, 0, w.Links.Len()),
	}
	for _, p := range w.Particles.All() {
		s.Particles = append(s.Particles, ParticleState{
			X:      p.Position.X,
			Y:      p.Position.Y,
			Radius: p.Radius,
			Status: p.Status,
			Color:  p.Color,
		})
	}
	for _, l := range w.Links.All() {
		a, errA := w.Particles.Resolve(l.A)
		b, errB := w.Particles.Resolve(l.B)
		if errA != nil || errB != nil {
			continue
		}
		s.Links = append(s.Links, LinkState{A: a, B: b})
	}
	return s
}

type Metric interface {
	Name() string
	Observe(w *verlet.World, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(frame int, w *verlet.World, report verlet.StepReport)
}

// InputFunc supplies the input for a frame.
type InputFunc func(frame int) verlet.Input

type Config struct {
	Frames int
	// RecordEvery captures a snapshot every N frames; 0 records only the
	// first and last frame.
	RecordEvery int
	// Input overrides the scene's script when set.
	Input InputFunc
}

type Result struct {
	Scene     string
	Frames    []Snapshot
	Times     []float64
	Reports   []verlet.StepReport
	Metrics   map[string]float64
	Errors    []error
	FramesRun int
	Elapsed   time.Duration
}
