// Package widget holds the pointer-driven controls drawn by the window shell.
package widget

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Slider is a horizontal value picker drawn over the scene. It owns the
// pointer from the press that lands on it until release.
type Slider struct {
	Label      string
	X, Y, W, H float64
	Min, Max   float64
	Value      float64
	Integer    bool
	OnChange   func(float64)

	dragging bool
}

func (s *Slider) Contains(p r2.Vec) bool {
	return p.X >= s.X && p.X <= s.X+s.W && p.Y >= s.Y && p.Y <= s.Y+s.H
}

// Ratio is the knob position in [0, 1].
func (s *Slider) Ratio() float64 {
	if s.Max == s.Min {
		return 0
	}
	return (s.Value - s.Min) / (s.Max - s.Min)
}

// Handle feeds one frame of pointer state and reports whether the slider
// consumed it.
func (s *Slider) Handle(p r2.Vec, down, pressed bool) bool {
	if pressed && s.Contains(p) {
		s.dragging = true
	}
	if !down {
		s.dragging = false
		return false
	}
	if !s.dragging {
		return false
	}

	t := max(0, min(1, (p.X-s.X)/s.W))
	v := s.Min + t*(s.Max-s.Min)
	if s.Integer {
		v = math.Round(v)
	}
	if v != s.Value {
		s.Value = v
		if s.OnChange != nil {
			s.OnChange(v)
		}
	}
	return true
}

// Layout stacks sliders in the bottom-left corner of a screen.
func Layout(sliders []*Slider, screenH float64) {
	const w, h, gap, margin = 180, 14, 26, 16
	for i, s := range sliders {
		s.X = margin
		s.Y = screenH - margin - float64(len(sliders)-i)*gap
		s.W, s.H = w, h
	}
}
