package viz

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/verletlab/internal/config"
	"github.com/san-kum/verletlab/internal/scene"
)

func newTestModel(t *testing.T, name string) Model {
	t.Helper()
	registry := scene.NewRegistry()
	m, err := NewModel(func() (scene.Scene, error) {
		return registry.Build(config.ForScene(name), nil)
	})
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	return m
}

func tickN(m Model, n int) Model {
	for range n {
		next, _ := m.Update(TickMsg(time.Now()))
		m = next.(Model)
	}
	return m
}

func TestModelTickAdvancesScene(t *testing.T) {
	m := tickN(newTestModel(t, "rope"), 3)

	if m.scene.Frame() != 3 {
		t.Errorf("expected frame 3, got %d", m.scene.Frame())
	}
	if len(m.history) != 4 {
		t.Errorf("expected 4 snapshots, got %d", len(m.history))
	}
	if len(m.energyHistory) != 3 {
		t.Errorf("expected 3 energy samples, got %d", len(m.energyHistory))
	}
}

func TestModelPauseAndScrub(t *testing.T) {
	m := tickN(newTestModel(t, "rope"), 5)

	m.scrub(-1)
	if m.running {
		t.Error("expected scrub to pause")
	}
	if m.playHead != len(m.history)-2 {
		t.Errorf("expected play head one back, got %d", m.playHead)
	}

	frame := m.scene.Frame()
	m.running = true
	m = tickN(m, 1)
	if m.scene.Frame() != frame {
		t.Error("replay must not advance the world")
	}
	m = tickN(m, 1)
	if m.playHead != -1 {
		t.Errorf("expected replay to end, got play head %d", m.playHead)
	}
}

func TestModelMouseInput(t *testing.T) {
	m := newTestModel(t, "rope")
	target := r2.Vec{X: 350, Y: 350}
	x, y := m.view.ToCanvas(target)

	next, _ := m.Update(tea.MouseMsg{
		X:      x/2 + canvasPadX,
		Y:      y/4 + canvasPadY,
		Action: tea.MouseActionPress,
		Button: tea.MouseButtonLeft,
	})
	m = next.(Model)

	if !m.primary || !m.pressed {
		t.Fatal("expected primary press recorded")
	}
	if d := r2.Norm(r2.Sub(m.cursor, target)); d > 20 {
		t.Errorf("cursor %v is %.1f from target", m.cursor, d)
	}

	m = tickN(m, 1)
	if m.pressed {
		t.Error("press must last a single frame")
	}
	if !m.primary {
		t.Error("button still held")
	}

	next, _ = m.Update(tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionRelease})
	m = next.(Model)
	if m.primary || m.secondary {
		t.Error("expected release to clear buttons")
	}
}

func TestModelTuneParams(t *testing.T) {
	m := newTestModel(t, "rope")

	m.adjustParam(1)
	if g := m.scene.World().Gravity().Y; g != 2100 {
		t.Errorf("expected gravity 2100, got %f", g)
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	if m.params[m.selected].name != "substeps" {
		t.Fatalf("expected substeps selected, got %s", m.params[m.selected].name)
	}
	for range 20 {
		m.adjustParam(-1)
	}
	if got := m.scene.World().Config().SubSteps; got != 1 {
		t.Errorf("expected substeps clamped to 1, got %d", got)
	}
}

func TestModelGravityCrossesZero(t *testing.T) {
	m := newTestModel(t, "rope")
	w := m.scene.World()

	w.SetGravity(r2.Vec{X: 50})
	m.adjustParam(1)
	if g := w.Gravity(); g.Y != 100 || g.X != 50 {
		t.Errorf("expected gravity to leave zero upwards, got %v", g)
	}

	w.SetGravity(r2.Vec{Y: -500})
	m.adjustParam(1)
	if g := w.Gravity().Y; g != -400 {
		t.Errorf("expected increase towards zero, got %f", g)
	}
	for range 10 {
		m.adjustParam(-1)
	}
	if g := w.Gravity().Y; g != -1400 {
		t.Errorf("expected decrease away from zero, got %f", g)
	}
}

func TestModelPlaygroundRadius(t *testing.T) {
	m := newTestModel(t, "playground")

	var idx = -1
	for i, p := range m.params {
		if p.name == "radius" {
			idx = i
		}
	}
	if idx < 0 {
		t.Fatal("expected radius param for a circular border")
	}
	m.selected = idx
	for range 10 {
		m.adjustParam(1)
	}
	if got := m.params[idx].get(); got != 400 {
		t.Errorf("expected radius clamped to 400, got %f", got)
	}
}

func TestModelReset(t *testing.T) {
	m := tickN(newTestModel(t, "plinko"), 10)
	m.reset()

	if m.scene.Frame() != 0 {
		t.Errorf("expected fresh scene, got frame %d", m.scene.Frame())
	}
	if len(m.history) != 1 || len(m.energyHistory) != 0 {
		t.Error("expected history cleared")
	}
}

func TestModelView(t *testing.T) {
	m := tickN(newTestModel(t, "cloth"), 2)
	view := m.View()

	for _, want := range []string{"CLOTH", "PARAMETERS", "gravity", "Links"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m.resize(120, 40)
	if m.canvas.Width != 120-statsWidth-2*canvasPadX-2 || m.canvas.Height != 40-2*canvasPadY {
		t.Errorf("unexpected canvas %dx%d", m.canvas.Width, m.canvas.Height)
	}
}

func TestCaptureFrame(t *testing.T) {
	m := tickN(newTestModel(t, "rope"), 1)
	m.captureFrame()

	if len(m.frames) != 1 {
		t.Fatalf("expected one frame, got %d", len(m.frames))
	}
	b := m.frames[0].Bounds()
	if b.Dx() != m.canvas.Width*8 || b.Dy() != m.canvas.Height*16 {
		t.Errorf("unexpected frame bounds %v", b)
	}
}
