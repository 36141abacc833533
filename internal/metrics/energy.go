package metrics

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/verletlab/internal/verlet"
)

// KineticEnergy averages the kinetic energy proxy sum(r² |v|²)/2 over
// observed frames, where v is the last sub-step displacement and the
// squared radius stands in for mass.
type KineticEnergy struct {
	name    string
	total   float64
	last    float64
	samples int
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (k *KineticEnergy) Name() string { return k.name }

func (k *KineticEnergy) Observe(w *verlet.World, t float64) {
	k.last = Kinetic(w.Particles)
	k.total += k.last
	k.samples++
}

func (k *KineticEnergy) Value() float64 {
	if k.samples == 0 {
		return 0
	}
	return k.total / float64(k.samples)
}

// Last is the energy at the most recent observation.
func (k *KineticEnergy) Last() float64 { return k.last }

func (k *KineticEnergy) Reset() {
	k.total = 0
	k.last = 0
	k.samples = 0
}

// Kinetic is the instantaneous kinetic energy proxy of every free particle.
func Kinetic(s *verlet.ParticleStore) float64 {
	e := 0.0
	for _, p := range s.All() {
		if !p.Movable() {
			continue
		}
		e += 0.5 * p.Radius * p.Radius * r2.Norm2(p.Velocity())
	}
	return e
}
