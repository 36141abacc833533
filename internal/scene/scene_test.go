package scene

import (
	"math"
	"slices"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/verletlab/internal/config"
	"github.com/san-kum/verletlab/internal/verlet"
)

func build(t *testing.T, name string, mutate func(*config.Config)) Scene {
	t.Helper()
	cfg := config.ForScene(name)
	if mutate != nil {
		mutate(cfg)
	}
	s, err := NewRegistry().Build(cfg, nil)
	if err != nil {
		t.Fatalf("build %s: %v", name, err)
	}
	return s
}

func runScript(t *testing.T, s Scene, frames int) verlet.StepReport {
	t.Helper()
	var total verlet.StepReport
	for range frames {
		r, err := s.Update(s.Script(s.Frame()))
		if err != nil {
			t.Fatalf("frame %d: %v", s.Frame(), err)
		}
		total.Collisions += r.Collisions
		total.Culled += r.Culled
		total.Snapped += r.Snapped
		total.Errors = append(total.Errors, r.Errors...)
	}
	return total
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	want := []string{"bridge", "cloth", "playground", "plinko", "rope"}
	if got := r.List(); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	cfg := config.DefaultConfig()
	cfg.Scene = "trampoline"
	if _, err := r.Build(cfg, nil); err == nil {
		t.Error("expected error for unknown scene")
	}
}

func TestPlaygroundSpawnsInsideContainer(t *testing.T) {
	s := build(t, "playground", nil)
	report := runScript(t, s, 180)

	n := s.World().Particles.Len()
	if n < 28 || n > 30 {
		t.Errorf("expected about 30 balls after 3s at 10/s, got %d", n)
	}
	if report.Collisions == 0 {
		t.Error("expected some collisions")
	}

	circle := s.World().Container().(verlet.Circle)
	for i, p := range s.World().Particles.All() {
		d := r2.Norm(r2.Sub(p.Position, circle.Center))
		if d+p.Radius > circle.Radius+1e-9 {
			t.Errorf("ball %d outside container: %v + %v > %v", i, d, p.Radius, circle.Radius)
		}
		if p.Radius < 5 || p.Radius > 10 {
			t.Errorf("ball %d radius %v outside [5, 10]", i, p.Radius)
		}
	}
}

func TestPlaygroundErase(t *testing.T) {
	s := build(t, "playground", nil)
	p := s.(*Playground)
	center := s.Config().Center()
	p.world.AddParticle(verlet.NewParticle(center, 8))

	report, err := s.Update(verlet.Input{Cursor: center, Secondary: true})
	if err != nil {
		t.Fatal(err)
	}
	if report.Culled != 1 || s.World().Particles.Len() != 0 {
		t.Errorf("expected the ball under the cursor erased, report %+v", report)
	}
}

func TestPlaygroundContainerRadiusClamped(t *testing.T) {
	s := build(t, "playground", nil)
	p := s.(*Playground)

	p.SetContainerRadius(5000)
	if r := s.World().Container().(verlet.Circle).Radius; r != 400 {
		t.Errorf("expected radius clamped to 400, got %v", r)
	}
	p.SetContainerRadius(1)
	if r := s.World().Container().(verlet.Circle).Radius; r != 100 {
		t.Errorf("expected radius clamped to 100, got %v", r)
	}
}

func TestPlaygroundSpawnerSettings(t *testing.T) {
	s := build(t, "playground", nil)
	p := s.(*Playground)

	p.SetBallRadius(9, 6)
	p.SetSpawnRate(30)
	if sp := p.Spawner(); sp.MinRadius != 6 || sp.MaxRadius != 9 || sp.BallsPerSecond != 30 {
		t.Fatalf("unexpected spawner %+v", sp)
	}

	for range 60 {
		if _, err := s.Update(verlet.Input{Cursor: s.Config().Center(), Primary: true}); err != nil {
			t.Fatal(err)
		}
	}
	if n := s.World().Particles.Len(); n != 30 {
		t.Errorf("expected 30 balls after 1s at 30/s, got %d", n)
	}
	for i, b := range s.World().Particles.All() {
		if b.Radius < 6 || b.Radius > 9 {
			t.Errorf("ball %d radius %v outside [6, 9]", i, b.Radius)
		}
	}

	p.SetBallRadius(8, 40)
	if sp := p.Spawner(); sp.MinRadius != 8 || sp.MaxRadius != 10 {
		t.Errorf("expected radii capped at half the cell size, got %+v", sp)
	}
	if _, err := s.Update(verlet.Input{Cursor: s.Config().Center(), Primary: true}); err != nil {
		t.Errorf("spawn after capping: %v", err)
	}
}

func TestRopeDragAndSettle(t *testing.T) {
	s := build(t, "rope", nil)
	w := s.World()
	center := s.Config().Center()

	swing := 0.0
	for range 300 {
		if _, err := s.Update(s.Script(s.Frame())); err != nil {
			t.Fatal(err)
		}
		last, _ := w.Particles.Get(w.Particles.Len() - 1)
		swing = math.Max(swing, math.Abs(last.Position.X-center.X))
	}

	if swing < 50 {
		t.Errorf("scripted drag should swing the rope, max offset %v", swing)
	}
	first, _ := w.Particles.Get(0)
	if first.Position != center {
		t.Errorf("pinned end moved to %v", first.Position)
	}
	for i, l := range w.Links.All() {
		a, _ := w.Particles.Lookup(l.A)
		b, _ := w.Particles.Lookup(l.B)
		if d := r2.Norm(r2.Sub(a.Position, b.Position)); d > 22 {
			t.Errorf("link %d stretched to %v", i, d)
		}
	}
}

func TestClothCut(t *testing.T) {
	s := build(t, "cloth", func(c *config.Config) {
		c.Cloth.Rows, c.Cloth.Cols = 12, 12
	})
	w := s.World()
	if w.Links.Len() != 2*12*11 {
		t.Fatalf("expected %d links, got %d", 2*12*11, w.Links.Len())
	}
	pinned := 0
	for _, p := range w.Particles.All() {
		if p.Status == verlet.Suspended {
			pinned++
		}
	}
	if pinned != 12 {
		t.Errorf("expected the top row pinned, got %d", pinned)
	}

	runScript(t, s, 119)
	before := w.Links.Len()
	runScript(t, s, 61)
	if w.Links.Len() >= before {
		t.Errorf("scripted cut removed nothing: %d links before, %d after", before, w.Links.Len())
	}
}

func TestBridgeCullsProjectiles(t *testing.T) {
	s := build(t, "bridge", nil)
	w := s.World()
	n := w.Particles.Len()
	if n != 35 {
		t.Fatalf("expected 35 bridge circles, got %d", n)
	}

	report, err := s.Update(verlet.Input{Cursor: r2.Vec{X: -200, Y: -200}, Primary: true, PrimaryPressed: true})
	if err != nil {
		t.Fatal(err)
	}
	if report.Culled != 1 || w.Particles.Len() != n {
		t.Errorf("projectile outside the screen should be culled, report %+v", report)
	}

	total := runScript(t, s, 200)
	if len(total.Errors) != 0 {
		t.Errorf("unexpected errors: %v", total.Errors)
	}
	if w.Particles.Len() <= n {
		t.Error("scripted projectiles should still be in play")
	}
	first, _ := w.Particles.Get(0)
	last, _ := w.Particles.Get(n - 1)
	if first.Status != verlet.Suspended || last.Status != verlet.Suspended {
		t.Error("bridge ends should stay pinned")
	}
}

func TestPlinkoBoard(t *testing.T) {
	s := build(t, "plinko", nil)
	p := s.(*Plinko)
	if p.Pegs() != 75 {
		t.Fatalf("expected 75 pegs, got %d", p.Pegs())
	}

	runScript(t, s, 300)
	if p.Balls() != 15 {
		t.Errorf("expected 15 dropped balls, got %d", p.Balls())
	}
	box := s.World().Container().(verlet.Box)
	for i, b := range s.World().Particles.All() {
		if !box.Contains(b.Position, b.Radius-1e-9) {
			t.Errorf("particle %d escaped the board at %v", i, b.Position)
		}
	}
}
