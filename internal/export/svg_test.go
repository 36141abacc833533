package export

import (
	"strings"
	"testing"

	"github.com/san-kum/verletlab/internal/sim"
	"github.com/san-kum/verletlab/internal/verlet"
)

func TestSnapshotToSVG(t *testing.T) {
	snap := sim.Snapshot{
		Particles: []sim.ParticleState{
			{X: 10, Y: 20, Radius: 5, Status: verlet.Suspended, Color: 0xff0000ff},
			{X: 30, Y: 20, Radius: 5, Color: 0x00ff00ff},
		},
		Links: []sim.LinkState{{A: 0, B: 1}, {A: 0, B: 7}},
	}

	svg := SnapshotToSVG(snap, 100, 50)
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatal("expected a complete svg document")
	}
	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("expected 2 circles, got %d", n)
	}
	if n := strings.Count(svg, "<line"); n != 1 {
		t.Errorf("expected 1 line, got %d", n)
	}
	if !strings.Contains(svg, `fill="#ff0000"`) {
		t.Error("expected particle colour in output")
	}
	if !strings.Contains(svg, `stroke="#ffd700"`) {
		t.Error("expected suspended particle outline")
	}
}

func TestHexColor(t *testing.T) {
	if got := HexColor(0xe62937ff); got != "#e62937" {
		t.Errorf("expected #e62937, got %s", got)
	}
}

func TestTrajectoryToSVG(t *testing.T) {
	frames := []sim.Snapshot{
		{Particles: []sim.ParticleState{{X: 0, Y: 0}, {X: 1, Y: 1}}},
		{Particles: []sim.ParticleState{{X: 0, Y: 0}, {X: 2, Y: 3}}},
		{Particles: []sim.ParticleState{{X: 0, Y: 0}}},
		{Particles: []sim.ParticleState{{X: 0, Y: 0}, {X: 4, Y: 2}}},
	}

	points := Trajectory(frames, 1)
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}

	svg := TrajectoryToSVG(points, 200, 100, "#00ff00")
	if !strings.Contains(svg, "<path") || strings.Count(svg, " L") != 2 {
		t.Errorf("unexpected path: %s", svg)
	}

	if TrajectoryToSVG(points[:1], 200, 100, "#00ff00") != "" {
		t.Error("expected empty output for a single point")
	}
}
