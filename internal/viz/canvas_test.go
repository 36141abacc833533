package viz

import (
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestCanvasSetAndLit(t *testing.T) {
	c := NewCanvas(4, 2)

	c.Set(3, 5)
	if !c.Lit(3, 5) {
		t.Error("expected (3,5) lit")
	}
	if c.Lit(2, 5) {
		t.Error("expected (2,5) dark")
	}
	if c.Grid[1][1] != blank|0x10 {
		t.Errorf("unexpected cell rune %U", c.Grid[1][1])
	}

	c.Set(-1, 0)
	c.Set(0, 100)
	c.Set(100, 0)

	c.Clear()
	if c.Lit(3, 5) {
		t.Error("expected clear canvas")
	}
}

func TestCanvasString(t *testing.T) {
	c := NewCanvas(3, 2)
	lines := strings.Split(strings.TrimSuffix(c.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0] != strings.Repeat(string(rune(blank)), 3) {
		t.Errorf("expected blank braille row, got %q", lines[0])
	}
}

func TestDrawLine(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawLine(0, 0, 15, 10)

	if !c.Lit(0, 0) || !c.Lit(15, 10) {
		t.Error("expected both endpoints lit")
	}

	c.Clear()
	c.DrawLine(-5, 3, -1, 30)
	c.DrawLine(2, 2, 1<<30, 2)
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			if c.Lit(x, y) {
				t.Fatalf("off-canvas line lit (%d,%d)", x, y)
			}
		}
	}
}

func TestDrawCircle(t *testing.T) {
	c := NewCanvas(20, 10)
	c.DrawCircle(20, 20, 8)

	for _, p := range [][2]int{{28, 20}, {12, 20}, {20, 28}, {20, 12}} {
		if !c.Lit(p[0], p[1]) {
			t.Errorf("expected %v on the outline", p)
		}
	}
	if c.Lit(20, 20) {
		t.Error("expected hollow circle")
	}

	c.Clear()
	c.FillCircle(20, 20, 3)
	if !c.Lit(20, 20) || !c.Lit(22, 22) {
		t.Error("expected filled disc")
	}
	if c.Lit(23, 23) {
		t.Error("fill leaked outside radius")
	}
}

func TestViewport(t *testing.T) {
	c := NewCanvas(80, 24)
	v := NewViewport(900, 900, c)

	if math.Abs(v.Scale-96.0/900) > 1e-12 {
		t.Errorf("expected scale fitted to height, got %f", v.Scale)
	}
	if v.OffX != 32 || v.OffY != 0 {
		t.Errorf("expected horizontal margin 32, got %f,%f", v.OffX, v.OffY)
	}

	x, y := v.ToCanvas(r2.Vec{X: 450, Y: 450})
	if x != 80 || y != 48 {
		t.Errorf("expected centre at (80,48), got (%d,%d)", x, y)
	}

	back := v.ToWorld(x, y)
	if r2.Norm(r2.Sub(back, r2.Vec{X: 450, Y: 450})) > 1e-9 {
		t.Errorf("round trip drifted to %v", back)
	}

	if got := v.Length(450); got != 48 {
		t.Errorf("expected 48 sub-pixels, got %d", got)
	}
}

func TestThemeCycle(t *testing.T) {
	defer SetTheme(CurrentTheme.Name)

	SetTheme("minimal")
	NextTheme()
	if CurrentTheme.Name != "ocean" {
		t.Errorf("expected ocean after minimal, got %s", CurrentTheme.Name)
	}
	if GetTheme("missing").Name != "cyberpunk" {
		t.Error("expected fallback theme")
	}
	if len(ThemeNames()) != len(Themes) {
		t.Error("theme names out of sync")
	}
}

func TestBarAndSparkline(t *testing.T) {
	if got := Bar(0.5, 10); got != "[=====-----]" {
		t.Errorf("unexpected bar %q", got)
	}
	if got := Bar(2, 4); got != "[====]" {
		t.Errorf("expected clamped bar, got %q", got)
	}
	if got := SparklineChart(nil, 5); got != "─────" {
		t.Errorf("unexpected empty sparkline %q", got)
	}
	if r, g, b := parseHex("#102030"); r != 0x10 || g != 0x20 || b != 0x30 {
		t.Errorf("parseHex = %d,%d,%d", r, g, b)
	}
}
