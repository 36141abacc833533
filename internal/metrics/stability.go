package metrics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/verletlab/internal/verlet"
)

// Stability is the fraction of observed frames in which every particle
// has a finite position and a per-step displacement below threshold.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(w *verlet.World, t float64) {
	s.samples++
	for _, p := range w.Particles.All() {
		if !finite(p.Position) || r2.Norm(p.Velocity()) > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

func finite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// Count reports the particle count at the last observation.
type Count struct {
	name string
	last int
}

func NewCount() *Count {
	return &Count{name: "particles"}
}

func (c *Count) Name() string { return c.name }

func (c *Count) Observe(w *verlet.World, t float64) {
	c.last = w.Particles.Len()
}

func (c *Count) Value() float64 { return float64(c.last) }
func (c *Count) Reset()         { c.last = 0 }
