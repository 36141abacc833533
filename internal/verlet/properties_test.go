package verlet_test

import (
	"math"
	"math/rand/v2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/verletlab/internal/verlet"
)

const subDt = 1.0 / 480

var _ = Describe("Integrator", func() {
	It("leaves a particle at rest where it is", func() {
		w, err := verlet.New(verlet.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())
		h, err := w.AddParticle(verlet.NewParticle(r2.Vec{X: 40, Y: -25}, 3))
		Expect(err).NotTo(HaveOccurred())

		for range 200 {
			_, err := w.Step(subDt)
			Expect(err).NotTo(HaveOccurred())
		}

		p, err := w.Particles.Lookup(h)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Position).To(Equal(r2.Vec{X: 40, Y: -25}))
	})

	It("keeps a free particle moving in a straight line without forces", func() {
		p := verlet.NewParticle(r2.Vec{X: 10, Y: 20}, 1)
		p.Previous = r2.Vec{X: 9, Y: 19.5}
		v := p.Velocity()

		for range 100 {
			verlet.UpdatePosition(&p, subDt, 1, 0)
		}

		Expect(p.Position.X).To(BeNumerically("~", 10+100*v.X, 1e-9))
		Expect(p.Position.Y).To(BeNumerically("~", 20+100*v.Y, 1e-9))
		Expect(p.Velocity().X).To(BeNumerically("~", v.X, 1e-9))
	})

	It("zeroes velocity at the speed limit", func() {
		p := verlet.NewParticle(r2.Vec{X: 100}, 1)
		p.Previous = r2.Vec{X: 80}

		verlet.UpdatePosition(&p, subDt, 1, 10)

		Expect(p.Position).To(Equal(r2.Vec{X: 100}))
	})

	It("approaches gravity exponentially without overshoot", func() {
		p := verlet.NewParticle(r2.Vec{}, 1)
		g := r2.Vec{Y: 1000}
		last := 0.0

		for range 9600 {
			verlet.ApplyGravity(&p, g, subDt, verlet.ExponentialApproach)
			Expect(p.Acceleration.Y).To(BeNumerically(">=", last))
			Expect(p.Acceleration.Y).To(BeNumerically("<=", g.Y))
			last = p.Acceleration.Y
		}

		Expect(p.Acceleration.Y).To(BeNumerically("~", g.Y, 1e-5))
	})

	It("approaches a diagonal gravity on both axes", func() {
		p := verlet.NewParticle(r2.Vec{}, 1)
		g := r2.Vec{X: -600, Y: 800}
		gap := r2.Norm(g)

		for range 9600 {
			verlet.ApplyGravity(&p, g, subDt, verlet.ExponentialApproach)
			next := r2.Norm(r2.Sub(g, p.Acceleration))
			Expect(next).To(BeNumerically("<=", gap))
			Expect(p.Acceleration.X).To(BeNumerically("<=", 0))
			Expect(p.Acceleration.X).To(BeNumerically(">=", g.X))
			gap = next
		}

		Expect(p.Acceleration.X).To(BeNumerically("~", g.X, 1e-5))
		Expect(p.Acceleration.Y).To(BeNumerically("~", g.Y, 1e-5))
	})

	It("hard-sets gravity under the hard policy", func() {
		p := verlet.NewParticle(r2.Vec{}, 1)
		verlet.ApplyGravity(&p, r2.Vec{Y: 1000}, subDt, verlet.HardSet)
		Expect(p.Acceleration).To(Equal(r2.Vec{Y: 1000}))
	})
})

var _ = Describe("Containers", func() {
	DescribeTable("clamps to exactly R - r",
		func(pos r2.Vec) {
			c := verlet.Circle{Center: r2.Vec{X: 350, Y: 350}, Radius: 300}
			p := verlet.NewParticle(pos, 10)

			Expect(c.Constrain(&p)).To(BeTrue())
			Expect(r2.Norm(r2.Sub(p.Position, c.Center))).To(BeNumerically("~", 290, 1e-9))
		},
		Entry("right", r2.Vec{X: 900, Y: 350}),
		Entry("diagonal", r2.Vec{X: 0, Y: 0}),
		Entry("on the rim", r2.Vec{X: 350, Y: 645}),
	)

	It("clamps a particle outside the border within one step", func() {
		center := r2.Vec{X: 350, Y: 350}
		w, err := verlet.New(verlet.DefaultConfig(), verlet.WithContainer(verlet.Circle{Center: center, Radius: 300}))
		Expect(err).NotTo(HaveOccurred())
		h, err := w.AddParticle(verlet.NewParticle(r2.Vec{X: 900, Y: 500}, 10))
		Expect(err).NotTo(HaveOccurred())

		report, err := w.Step(subDt)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Contacts).To(Equal(1))

		p, err := w.Particles.Lookup(h)
		Expect(err).NotTo(HaveOccurred())
		Expect(r2.Norm(r2.Sub(p.Position, center))).To(BeNumerically("<=", 290+1e-9))
	})

	It("holds a particle larger than the border at its centre", func() {
		c := verlet.Circle{Center: r2.Vec{}, Radius: 5}
		p := verlet.NewParticle(r2.Vec{X: 1}, 10)

		Expect(c.Constrain(&p)).To(BeTrue())
		Expect(p.Position).To(Equal(r2.Vec{}))
	})

	It("leaves interior particles alone", func() {
		c := verlet.Circle{Center: r2.Vec{}, Radius: 100}
		p := verlet.NewParticle(r2.Vec{X: 50}, 10)

		Expect(c.Constrain(&p)).To(BeFalse())
		Expect(p.Position).To(Equal(r2.Vec{X: 50}))
	})

	It("clamps each axis of a box", func() {
		b := verlet.NewBox(700, 700)
		p := verlet.NewParticle(r2.Vec{X: -20, Y: 720}, 10)

		Expect(b.Constrain(&p)).To(BeTrue())
		Expect(p.Position).To(Equal(r2.Vec{X: 10, Y: 690}))
	})
})

var _ = Describe("Collision resolution", func() {
	It("drives overlapping circles apart monotonically", func() {
		a := verlet.NewParticle(r2.Vec{X: 0, Y: 0}, 10)
		b := verlet.NewParticle(r2.Vec{X: 5, Y: 3}, 10)
		last := verlet.Penetration(&a, &b)

		for range 12 {
			hit, err := verlet.ResolveCollision(&a, &b, 0.875)
			Expect(err).NotTo(HaveOccurred())
			Expect(hit).To(BeTrue())
			pen := verlet.Penetration(&a, &b)
			Expect(pen).To(BeNumerically("<", last))
			last = pen
		}

		Expect(last).To(BeNumerically("<", 1e-6))
	})

	It("moves only the free particle when the other is suspended", func() {
		pin := verlet.NewPinned(r2.Vec{}, 10)
		free := verlet.NewParticle(r2.Vec{X: 16}, 10)

		_, err := verlet.ResolveCollision(&pin, &free, 1)
		Expect(err).NotTo(HaveOccurred())

		Expect(pin.Position).To(Equal(r2.Vec{}))
		Expect(free.Position.X).To(BeNumerically("~", 20, 1e-9))
	})

	It("reports coincident centres as invalid", func() {
		a := verlet.NewParticle(r2.Vec{X: 4, Y: 4}, 2)
		b := verlet.NewParticle(r2.Vec{X: 4, Y: 4}, 2)

		_, err := verlet.ResolveCollision(&a, &b, 1)
		Expect(err).To(MatchError(verlet.ErrInvalidConstraint))
	})
})

var _ = Describe("Link relaxation", func() {
	It("converges to the target distance", func() {
		a := verlet.NewParticle(r2.Vec{X: 0}, 1)
		b := verlet.NewParticle(r2.Vec{X: 40}, 1)
		link := verlet.Link{Target: 20}
		errAt := func() float64 { return math.Abs(r2.Norm(r2.Sub(a.Position, b.Position)) - 20) }
		last := errAt()

		for range 30 {
			_, err := verlet.RelaxLink(&a, &b, link, 0.3, verlet.ResistBoth)
			Expect(err).NotTo(HaveOccurred())
			Expect(errAt()).To(BeNumerically("<=", last))
			last = errAt()
		}

		Expect(last).To(BeNumerically("<", 1e-9))
	})

	It("ignores compression under the stretch-only policy", func() {
		a := verlet.NewParticle(r2.Vec{X: 0}, 1)
		b := verlet.NewParticle(r2.Vec{X: 5}, 1)

		_, err := verlet.RelaxLink(&a, &b, verlet.Link{Target: 20}, 0.3, verlet.ResistStretch)
		Expect(err).NotTo(HaveOccurred())
		Expect(b.Position.X).To(Equal(5.0))
	})
})

var _ = Describe("Broad phase", func() {
	It("finds exactly the brute-force overlapping pairs", func() {
		rng := rand.New(rand.NewPCG(3, 5))
		grid, err := verlet.NewGrid(r2.Vec{X: 350, Y: 350}, 400, 20)
		Expect(err).NotTo(HaveOccurred())
		store := verlet.NewParticleStore(16, 0)
		for range 500 {
			pos := r2.Vec{X: rng.Float64() * 700, Y: rng.Float64() * 700}
			_, err := store.Add(verlet.NewParticle(pos, 5+rng.Float64()*5))
			Expect(err).NotTo(HaveOccurred())
		}

		Expect(grid.Populate(store)).To(BeZero())
		Expect(grid.OverlappingPairs(store)).To(Equal(verlet.BruteForcePairs(store)))
	})
})

var _ = Describe("Particle store", func() {
	It("reindexes survivors after removal", func() {
		store := verlet.NewParticleStore(2, 0)
		for i := range 5 {
			_, err := store.Add(verlet.NewParticle(r2.Vec{X: float64(i)}, 1))
			Expect(err).NotTo(HaveOccurred())
		}

		Expect(store.Remove(2)).To(Succeed())

		Expect(store.Len()).To(Equal(4))
		for i, x := range []float64{0, 1, 3, 4} {
			p, err := store.Get(i)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Position.X).To(Equal(x))
		}
		_, err := store.Get(4)
		Expect(err).To(MatchError(verlet.ErrOutOfRange))
	})
})

var _ = Describe("Rope", func() {
	It("settles with every link within 10% of its rest length", func() {
		gravity := r2.Vec{Y: 2000}
		w, err := verlet.New(verlet.DefaultConfig(),
			verlet.WithGravity(gravity),
			verlet.WithContainer(verlet.NewBox(700, 700)))
		Expect(err).NotTo(HaveOccurred())

		var prev verlet.Handle
		for i := range 15 {
			pos := r2.Vec{X: 350, Y: 350 + float64(i)*20}
			p := verlet.NewParticle(pos, 10)
			if i == 0 {
				p = verlet.NewPinned(pos, 10)
			}
			p.Acceleration = gravity
			h, err := w.AddParticle(p)
			Expect(err).NotTo(HaveOccurred())
			if i > 0 {
				_, err := w.AddLink(prev, h, 20)
				Expect(err).NotTo(HaveOccurred())
			}
			prev = h
		}

		for range 60 {
			report, err := w.Frame(1.0 / 60)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Errors).To(BeEmpty())
		}

		Expect(w.Links.Len()).To(Equal(14))
		for _, l := range w.Links.All() {
			a, err := w.Particles.Lookup(l.A)
			Expect(err).NotTo(HaveOccurred())
			b, err := w.Particles.Lookup(l.B)
			Expect(err).NotTo(HaveOccurred())
			Expect(r2.Norm(r2.Sub(a.Position, b.Position))).To(BeNumerically("~", 20, 2))
		}
		last, _ := w.Particles.Get(14)
		Expect(last.Position.X).To(BeNumerically("~", 350, 1e-9))
		Expect(last.Position.Y).To(BeNumerically(">", 350+13*20))
	})
})
