package gui

import (
	"fmt"

	"github.com/charmbracelet/log"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/verletlab/internal/config"
	"github.com/san-kum/verletlab/internal/gui/widget"
	"github.com/san-kum/verletlab/internal/scene"
	"github.com/san-kum/verletlab/internal/verlet"
)

// Theme Colors (Monochrome Hyper-Minimalist)
var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColGrid    = rl.NewColor(30, 30, 30, 255)
	ColPinned  = rl.NewColor(255, 215, 0, 255)
)

// ConfigFunc returns the configuration a scene is built from.
type ConfigFunc func(sceneName string) *config.Config

type App struct {
	registry  *scene.Registry
	configFor ConfigFunc
	logger    *log.Logger

	Scene    scene.Scene
	Scenes   []string
	Selected int
	InMenu   bool
	Running  bool
	ShowGrid bool
	Sliders  []*widget.Slider
	Report   verlet.StepReport
	Err      error
}

func initWindow(w, h int32) {
	rl.InitWindow(w, h, "verletlab")
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)
}

func NewApp(registry *scene.Registry, configFor ConfigFunc, logger *log.Logger) *App {
	return &App{
		registry:  registry,
		configFor: configFor,
		logger:    logger,
		Scenes:    registry.List(),
		InMenu:    true,
	}
}

// RunInteractive opens the window on the scene menu and blocks until it
// is closed.
func RunInteractive(registry *scene.Registry, configFor ConfigFunc, logger *log.Logger) error {
	initWindow(config.DefaultScreen, config.DefaultScreen)
	defer rl.CloseWindow()
	app := NewApp(registry, configFor, logger)
	app.RunLoop()
	return app.Err
}

// Run opens the window directly on the scene described by cfg.
func Run(registry *scene.Registry, cfg *config.Config, logger *log.Logger) error {
	initWindow(int32(cfg.World.Width), int32(cfg.World.Height))
	defer rl.CloseWindow()
	app := NewApp(registry, func(string) *config.Config { return cfg }, logger)
	if err := app.load(cfg.Scene); err != nil {
		return err
	}
	app.RunLoop()
	return app.Err
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		if !a.Update() {
			return
		}
		a.Draw()
	}
}

func (a *App) load(name string) error {
	cfg := a.configFor(name)
	if cfg == nil {
		cfg = config.ForScene(name)
	}
	sc, err := a.registry.Build(cfg, a.logger)
	if err != nil {
		return err
	}
	a.Scene = sc
	a.Report = verlet.StepReport{}
	a.Sliders = a.buildSliders()
	a.InMenu = false
	a.Running = true
	rl.SetWindowSize(int(cfg.World.Width), int(cfg.World.Height))
	rl.SetWindowTitle(fmt.Sprintf("verletlab - %s", name))
	return nil
}

func (a *App) buildSliders() []*widget.Slider {
	w := a.Scene.World()
	sliders := []*widget.Slider{
		{
			Label: "gravity", Min: 0, Max: 5000, Value: w.Gravity().Y,
			OnChange: func(v float64) { w.SetGravity(r2.Vec{X: w.Gravity().X, Y: v}) },
		},
		{
			Label: "sub-steps", Min: 1, Max: 16, Value: float64(w.Config().SubSteps), Integer: true,
			OnChange: func(v float64) {
				if err := w.UpdateConfig(func(c *verlet.Config) { c.SubSteps = int(v) }); err != nil {
					a.logger.Warn("sub-steps rejected", "err", err)
				}
			},
		},
	}

	if pg, ok := a.Scene.(*scene.Playground); ok {
		pc := pg.Spawner()
		radius := 0.0
		if c, ok := w.Container().(verlet.Circle); ok {
			radius = c.Radius
		}
		sliders = append(sliders,
			&widget.Slider{
				Label: "container", Min: pc.MinContainer, Max: pc.MaxContainer, Value: radius,
				OnChange: pg.SetContainerRadius,
			},
			&widget.Slider{
				Label: "balls/s", Min: 1, Max: 40, Value: pc.BallsPerSecond, Integer: true,
				OnChange: pg.SetSpawnRate,
			},
			&widget.Slider{
				Label: "min radius", Min: 5, Max: 10, Value: pc.MinRadius,
				OnChange: func(v float64) { pg.SetBallRadius(v, max(v, pg.Spawner().MaxRadius)) },
			},
			&widget.Slider{
				Label: "max radius", Min: 5, Max: 10, Value: pc.MaxRadius,
				OnChange: func(v float64) { pg.SetBallRadius(min(v, pg.Spawner().MinRadius), v) },
			},
		)
	}

	widget.Layout(sliders, a.Scene.Config().World.Height)
	return sliders
}

// Update polls input and advances the scene. It returns false when the
// window should close.
func (a *App) Update() bool {
	if rl.IsKeyPressed(rl.KeyQ) {
		return false
	}

	if a.InMenu {
		a.updateMenu()
		return true
	}

	if rl.IsKeyPressed(rl.KeyEscape) {
		a.InMenu = true
		a.Running = false
		return true
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		a.Running = !a.Running
	}
	if rl.IsKeyPressed(rl.KeyG) {
		a.ShowGrid = !a.ShowGrid
	}
	if rl.IsKeyPressed(rl.KeyR) {
		if err := a.load(a.Scene.Name()); err != nil {
			a.Err = err
			return false
		}
	}

	mouse := rl.GetMousePosition()
	cursor := r2.Vec{X: float64(mouse.X), Y: float64(mouse.Y)}
	down := rl.IsMouseButtonDown(rl.MouseLeftButton)
	pressed := rl.IsMouseButtonPressed(rl.MouseLeftButton)

	consumed := false
	for _, s := range a.Sliders {
		if s.Handle(cursor, down, pressed) {
			consumed = true
		}
	}

	if !a.Running {
		return true
	}
	in := verlet.Input{
		Cursor:         cursor,
		Primary:        down && !consumed,
		PrimaryPressed: pressed && !consumed,
		Secondary:      rl.IsMouseButtonDown(rl.MouseRightButton),
	}
	report, err := a.Scene.Update(in)
	if err != nil {
		a.logger.Error("frame failed", "scene", a.Scene.Name(), "err", err)
		a.Running = false
		a.Err = err
	}
	a.Report = report
	return true
}

func (a *App) updateMenu() {
	if rl.IsKeyPressed(rl.KeyDown) || rl.IsKeyPressed(rl.KeyJ) {
		a.Selected = (a.Selected + 1) % len(a.Scenes)
	}
	if rl.IsKeyPressed(rl.KeyUp) || rl.IsKeyPressed(rl.KeyK) {
		a.Selected = (a.Selected - 1 + len(a.Scenes)) % len(a.Scenes)
	}
	if rl.IsKeyPressed(rl.KeyEnter) || rl.IsKeyPressed(rl.KeySpace) {
		if err := a.load(a.Scenes[a.Selected]); err != nil {
			a.logger.Error("load scene", "scene", a.Scenes[a.Selected], "err", err)
			a.Err = err
		}
	}
}
