package metrics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/verletlab/internal/verlet"
)

// LinkStrain tracks the worst relative link error |d - target| / target
// seen across observations.
type LinkStrain struct {
	name string
	max  float64
}

func NewLinkStrain() *LinkStrain {
	return &LinkStrain{name: "max_link_strain"}
}

func (l *LinkStrain) Name() string { return l.name }

func (l *LinkStrain) Observe(w *verlet.World, t float64) {
	l.max = math.Max(l.max, MaxStrain(w))
}

func (l *LinkStrain) Value() float64 { return l.max }
func (l *LinkStrain) Reset()         { l.max = 0 }

// MaxStrain is the current worst relative link error. Links with a stale
// endpoint are ignored.
func MaxStrain(w *verlet.World) float64 {
	worst := 0.0
	for _, link := range w.Links.All() {
		a, errA := w.Particles.Lookup(link.A)
		b, errB := w.Particles.Lookup(link.B)
		if errA != nil || errB != nil {
			continue
		}
		d := r2.Norm(r2.Sub(a.Position, b.Position))
		worst = math.Max(worst, math.Abs(d-link.Target)/link.Target)
	}
	return worst
}

// Penetration tracks the deepest circle overlap seen across observations.
type Penetration struct {
	name string
	max  float64
}

func NewPenetration() *Penetration {
	return &Penetration{name: "max_penetration"}
}

func (p *Penetration) Name() string { return p.name }

func (p *Penetration) Observe(w *verlet.World, t float64) {
	p.max = math.Max(p.max, MaxPenetration(w))
}

func (p *Penetration) Value() float64 { return p.max }
func (p *Penetration) Reset()         { p.max = 0 }

// MaxPenetration re-buckets the world's grid and returns the deepest
// overlap among its candidate pairs.
func MaxPenetration(w *verlet.World) float64 {
	g := w.Grid()
	g.Populate(w.Particles)
	worst := 0.0
	for _, pair := range g.OverlappingPairs(w.Particles) {
		a, _ := w.Particles.Get(pair.I)
		b, _ := w.Particles.Get(pair.J)
		worst = math.Max(worst, verlet.Penetration(a, b))
	}
	return worst
}
