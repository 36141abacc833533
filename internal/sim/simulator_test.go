package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/verletlab/internal/config"
	"github.com/san-kum/verletlab/internal/scene"
	"github.com/san-kum/verletlab/internal/verlet"
)

func newSim(t *testing.T, name string) *Simulator {
	t.Helper()
	sc, err := scene.NewRegistry().Build(config.ForScene(name), nil)
	if err != nil {
		t.Fatal(err)
	}
	return New(sc, nil)
}

type frameCounter struct{ frames []int }

func (f *frameCounter) OnFrame(frame int, w *verlet.World, report verlet.StepReport) {
	f.frames = append(f.frames, frame)
}

func TestSimulatorRun(t *testing.T) {
	s := newSim(t, "rope")
	for _, m := range DefaultMetrics(10) {
		s.AddMetric(m)
	}
	obs := &frameCounter{}
	s.AddObserver(obs)

	result, err := s.Run(context.Background(), Config{Frames: 60, RecordEvery: 20})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.FramesRun != 60 {
		t.Errorf("expected 60 frames, got %d", result.FramesRun)
	}
	if len(result.Times) != 60 || len(result.Reports) != 60 {
		t.Errorf("expected 60 times and reports, got %d and %d", len(result.Times), len(result.Reports))
	}
	// initial frame plus frames 20, 40, 60
	if len(result.Frames) != 4 {
		t.Fatalf("expected 4 snapshots, got %d", len(result.Frames))
	}
	if result.Frames[3].Frame != 60 {
		t.Errorf("expected last snapshot at frame 60, got %d", result.Frames[3].Frame)
	}
	if len(result.Frames[0].Particles) != 15 || len(result.Frames[0].Links) != 14 {
		t.Errorf("unexpected rope snapshot: %d particles, %d links",
			len(result.Frames[0].Particles), len(result.Frames[0].Links))
	}
	if len(obs.frames) != 60 || obs.frames[59] != 59 {
		t.Errorf("observer saw frames %v", obs.frames)
	}
	for _, name := range []string{"kinetic_energy", "max_link_strain", "max_penetration", "stability", "particles"} {
		if _, ok := result.Metrics[name]; !ok {
			t.Errorf("missing metric %s", name)
		}
	}
	if result.Metrics["stability"] != 1 {
		t.Errorf("rope should be stable, got %f", result.Metrics["stability"])
	}
	if result.Metrics["max_link_strain"] > 0.1 {
		t.Errorf("rope links strained by %f", result.Metrics["max_link_strain"])
	}
}

func TestSimulatorRunInvalid(t *testing.T) {
	s := newSim(t, "rope")
	if _, err := s.Run(context.Background(), Config{Frames: 0}); err == nil {
		t.Error("expected error for zero frames")
	}
	if _, err := s.Run(context.Background(), Config{Frames: 5, RecordEvery: -1}); err == nil {
		t.Error("expected error for negative record interval")
	}
}

func TestSimulatorCancel(t *testing.T) {
	s := newSim(t, "plinko")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.Run(ctx, Config{Frames: 100})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result.FramesRun != 0 {
		t.Errorf("expected no frames after cancel, got %d", result.FramesRun)
	}
}

func TestSimulatorInputOverride(t *testing.T) {
	s := newSim(t, "bridge")
	n := s.Scene().World().Particles.Len()
	fired := false
	input := func(frame int) verlet.Input {
		if frame == 0 {
			fired = true
			return verlet.Input{Cursor: s.Scene().Config().Center(), PrimaryPressed: true, Primary: true}
		}
		return verlet.Input{}
	}

	if _, err := s.Run(context.Background(), Config{Frames: 3, Input: input}); err != nil {
		t.Fatal(err)
	}
	if !fired || s.Scene().World().Particles.Len() != n+1 {
		t.Errorf("expected one projectile from the override input, have %d particles", s.Scene().World().Particles.Len())
	}
}

func TestEnsemble(t *testing.T) {
	cfg := config.ForScene("plinko")
	e := NewEnsemble(cfg, scene.NewRegistry(), 3, nil)

	results, err := e.Run(context.Background(), Config{Frames: 45})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, r := range results {
		if r.FramesRun != 45 {
			t.Errorf("run %d: expected 45 frames, got %d", i, r.FramesRun)
		}
		if r.Metrics["particles"] != 75+3 {
			t.Errorf("run %d: expected 78 particles, got %f", i, r.Metrics["particles"])
		}
	}
}
