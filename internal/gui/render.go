package gui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/verletlab/internal/gui/widget"
	"github.com/san-kum/verletlab/internal/verlet"
)

func vec(v r2.Vec) rl.Vector2 {
	return rl.NewVector2(float32(v.X), float32(v.Y))
}

func (a *App) Draw() {
	rl.BeginDrawing()
	defer rl.EndDrawing()
	rl.ClearBackground(ColBg)

	if a.InMenu {
		a.drawMenu()
		return
	}

	if a.ShowGrid {
		a.drawGrid()
	}
	a.drawContainer()
	a.drawLinks()
	a.drawParticles()
	for _, s := range a.Sliders {
		drawSlider(s)
	}
	a.drawHUD()
}

func (a *App) drawMenu() {
	rl.DrawText("VERLETLAB", 40, 40, 32, ColSelect)
	rl.DrawText("verlet particle sandbox", 40, 80, 16, ColText)
	for i, name := range a.Scenes {
		col := ColTextDim
		prefix := "  "
		if i == a.Selected {
			col = ColSelect
			prefix = "> "
		}
		rl.DrawText(prefix+name, 40, int32(130+i*30), 20, col)
	}
	rl.DrawText("j/k navigate  enter select  q quit", 40, int32(150+len(a.Scenes)*30), 14, ColTextDim)
	if a.Err != nil {
		rl.DrawText(a.Err.Error(), 40, int32(180+len(a.Scenes)*30), 14, rl.Red)
	}
}

func (a *App) drawGrid() {
	g := a.Scene.World().Grid()
	o := g.Origin()
	size := g.CellSize()
	w, h := float64(g.Cols())*size, float64(g.Rows())*size
	for c := 0; c <= g.Cols(); c++ {
		x := o.X + float64(c)*size
		rl.DrawLineV(vec(r2.Vec{X: x, Y: o.Y}), vec(r2.Vec{X: x, Y: o.Y + h}), ColGrid)
	}
	for r := 0; r <= g.Rows(); r++ {
		y := o.Y + float64(r)*size
		rl.DrawLineV(vec(r2.Vec{X: o.X, Y: y}), vec(r2.Vec{X: o.X + w, Y: y}), ColGrid)
	}
}

func (a *App) drawContainer() {
	switch c := a.Scene.World().Container().(type) {
	case verlet.Circle:
		rl.DrawCircleLinesV(vec(c.Center), float32(c.Radius), ColAccent)
	case verlet.Box:
		rec := rl.NewRectangle(float32(c.Min.X), float32(c.Min.Y), float32(c.Max.X-c.Min.X), float32(c.Max.Y-c.Min.Y))
		rl.DrawRectangleLinesEx(rec, 1, ColAccent)
	}
}

func (a *App) drawLinks() {
	w := a.Scene.World()
	for _, l := range w.Links.All() {
		pa, errA := w.Particles.Lookup(l.A)
		pb, errB := w.Particles.Lookup(l.B)
		if errA != nil || errB != nil {
			continue
		}
		rl.DrawLineV(vec(pa.Position), vec(pb.Position), ColText)
	}
}

func (a *App) drawParticles() {
	for _, p := range a.Scene.World().Particles.All() {
		rl.DrawCircleV(vec(p.Position), float32(p.Radius), rl.GetColor(uint(p.Color)))
		if p.Status == verlet.Suspended {
			rl.DrawCircleLinesV(vec(p.Position), float32(p.Radius)+2, ColPinned)
		}
	}
}

func drawSlider(s *widget.Slider) {
	rec := rl.NewRectangle(float32(s.X), float32(s.Y), float32(s.W), float32(s.H))
	rl.DrawRectangleRec(rec, ColGrid)
	fill := rec
	fill.Width *= float32(s.Ratio())
	rl.DrawRectangleRec(fill, ColTextDim)
	rl.DrawRectangleLinesEx(rec, 1, ColAccent)
	rl.DrawText(fmt.Sprintf("%s %.0f", s.Label, s.Value), int32(s.X+s.W+10), int32(s.Y), int32(s.H), ColText)
}

func (a *App) drawHUD() {
	w := a.Scene.World()
	status := "running"
	if !a.Running {
		status = "paused"
	}
	lines := []string{
		fmt.Sprintf("%s  [%s]", a.Scene.Name(), status),
		fmt.Sprintf("particles %d  links %d", w.Particles.Len(), w.Links.Len()),
		fmt.Sprintf("collisions %d  contacts %d", a.Report.Collisions, a.Report.Contacts),
		"space pause  r reset  g grid  esc menu",
	}
	for i, l := range lines {
		rl.DrawText(l, 10, int32(10+i*18), 16, ColText)
	}
	rl.DrawFPS(int32(rl.GetScreenWidth()-90), 10)
}
