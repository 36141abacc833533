package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/verletlab/internal/metrics"
	"github.com/san-kum/verletlab/internal/scene"
	"github.com/san-kum/verletlab/internal/sim"
	"github.com/san-kum/verletlab/internal/verlet"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 300
	canvasPadX      = 2
	canvasPadY      = 1
	statsWidth      = 45
)

type TickMsg time.Time

// Builder creates a fresh scene; the live view calls it again on reset.
type Builder func() (scene.Scene, error)

// Model is the live view of one scene. Mouse input becomes verlet.Input for
// the next frame.
type Model struct {
	build         Builder
	scene         scene.Scene
	canvas        *Canvas
	view          Viewport
	width, height int
	running       bool
	autopilot     bool

	cursor    r2.Vec
	primary   bool
	pressed   bool
	secondary bool

	report        verlet.StepReport
	energyHistory []float64
	strainHistory []float64
	history       []sim.Snapshot
	playHead      int

	params   []param
	selected int

	recording bool
	frames    []*image.Paletted
	showHelp  bool
	status    string
	err       error
}

// param is a tunable knob of the running world.
type param struct {
	name string
	get  func() float64
	set  func(float64)
	step float64
	lo   float64
	hi   float64
}

// NewModel builds the scene and the canvas that shows it.
func NewModel(build Builder) (Model, error) {
	sc, err := build()
	if err != nil {
		return Model{}, err
	}
	m := Model{
		build:         build,
		width:         width,
		height:        height,
		running:       true,
		energyHistory: make([]float64, 0, historyCapacity),
		strainHistory: make([]float64, 0, historyCapacity),
		history:       make([]sim.Snapshot, 0, historyCapacity),
		playHead:      -1,
	}
	m.attach(sc)
	return m, nil
}

func (m *Model) attach(sc scene.Scene) {
	m.scene = sc
	m.canvas = NewCanvas(m.width, m.height)
	cfg := sc.Config()
	m.view = NewViewport(cfg.World.Width, cfg.World.Height, m.canvas)
	m.cursor = cfg.Center()
	m.params = worldParams(sc)
	m.selected = min(m.selected, max(len(m.params)-1, 0))
	m.history = append(m.history[:0], sim.Capture(sc.World(), sc.Frame()))
}

func worldParams(sc scene.Scene) []param {
	w := sc.World()
	params := []param{
		{
			name: "gravity",
			get:  func() float64 { return w.Gravity().Y },
			set:  func(v float64) { w.SetGravity(r2.Vec{X: w.Gravity().X, Y: v}) },
			step: 100,
			lo:   -20000,
			hi:   20000,
		},
		{
			name: "damping",
			get:  func() float64 { return w.Config().Damping },
			set: func(v float64) {
				_ = w.UpdateConfig(func(c *verlet.Config) { c.Damping = v })
			},
			step: 0.005,
			lo:   0.5,
			hi:   1,
		},
		{
			name: "substeps",
			get:  func() float64 { return float64(w.Config().SubSteps) },
			set: func(v float64) {
				_ = w.UpdateConfig(func(c *verlet.Config) { c.SubSteps = int(v) })
			},
			step: 1,
			lo:   1,
			hi:   32,
		},
	}

	if circle, ok := w.Container().(verlet.Circle); ok {
		set := func(v float64) { w.SetContainer(verlet.Circle{Center: circle.Center, Radius: v}) }
		lo, hi := 50.0, max(circle.Radius*2, 100)
		if pg, ok := sc.(*scene.Playground); ok {
			set = pg.SetContainerRadius
			lo, hi = sc.Config().Playground.MinContainer, sc.Config().Playground.MaxContainer
		}
		params = append(params, param{
			name: "radius",
			get: func() float64 {
				if c, ok := w.Container().(verlet.Circle); ok {
					return c.Radius
				}
				return 0
			},
			set:  set,
			step: 10,
			lo:   lo,
			hi:   hi,
		})
	}
	return params
}

func (m Model) Init() tea.Cmd {
	return tick(m.scene.Config().FPS)
}

func tick(fps float64) tea.Cmd {
	if fps <= 0 {
		fps = 60
	}
	return tea.Tick(time.Duration(float64(time.Second)/fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "a":
			m.autopilot = !m.autopilot
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "tab":
			if len(m.params) > 0 {
				m.selected = (m.selected + 1) % len(m.params)
			}
		case "up", "k":
			m.adjustParam(1)
		case "down", "j":
			m.adjustParam(-1)
		case "g":
			m.toggleRecording()
		case "?":
			m.showHelp = !m.showHelp
		case "t":
			NextTheme()
		}
	case tea.MouseMsg:
		m.handleMouse(msg)
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case TickMsg:
		if m.running {
			if m.playHead == -1 {
				m.step()
			} else {
				m.playHead++
				if m.playHead >= len(m.history) {
					m.playHead = -1
				}
			}
		}
		m.draw()
		if m.recording {
			m.captureFrame()
		}
		return m, tick(m.scene.Config().FPS)
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	x := (msg.X-canvasPadX)*2 + 1
	y := (msg.Y-canvasPadY)*4 + 2
	m.cursor = m.view.ToWorld(x, y)

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			if !m.primary {
				m.pressed = true
			}
			m.primary = true
		case tea.MouseButtonRight:
			m.secondary = true
		}
	case tea.MouseActionRelease:
		m.primary, m.secondary = false, false
	}
}

func (m *Model) resize(w, h int) {
	cols := max(w-statsWidth-2*canvasPadX-2, 20)
	rows := max(h-2*canvasPadY, 8)
	if cols == m.width && rows == m.height {
		return
	}
	m.width, m.height = cols, rows
	m.canvas = NewCanvas(cols, rows)
	cfg := m.scene.Config()
	m.view = NewViewport(cfg.World.Width, cfg.World.Height, m.canvas)
}

func (m *Model) input() verlet.Input {
	if m.autopilot {
		in := m.scene.Script(m.scene.Frame())
		m.cursor = in.Cursor
		return in
	}
	in := verlet.Input{
		Cursor:         m.cursor,
		Primary:        m.primary,
		PrimaryPressed: m.pressed,
		Secondary:      m.secondary,
	}
	m.pressed = false
	return in
}

// step advances the scene one frame and records it.
func (m *Model) step() {
	report, err := m.scene.Update(m.input())
	m.report = report
	if err != nil {
		m.err = err
		m.running = false
		return
	}

	w := m.scene.World()
	m.energyHistory = appendCapped(m.energyHistory, metrics.Kinetic(w.Particles))
	m.strainHistory = appendCapped(m.strainHistory, metrics.MaxStrain(w))

	m.history = append(m.history, sim.Capture(w, m.scene.Frame()))
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

func appendCapped(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}

func (m *Model) adjustParam(dir float64) {
	if len(m.params) == 0 {
		return
	}
	p := m.params[m.selected]
	v := p.get() + dir*p.step
	p.set(max(p.lo, min(p.hi, v)))
}

// scrub changes the playback position in history.
func (m *Model) scrub(dir int) {
	if m.playHead == -1 {
		if len(m.history) == 0 {
			return
		}
		m.playHead = len(m.history) - 1
		m.running = false
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.history) {
		m.playHead = -1
	}
}

// reset rebuilds the scene from its configuration.
func (m *Model) reset() {
	sc, err := m.build()
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.report = verlet.StepReport{}
	m.energyHistory = m.energyHistory[:0]
	m.strainHistory = m.strainHistory[:0]
	m.playHead = -1
	m.attach(sc)
}

// current is the snapshot on screen: the replay position or the newest frame.
func (m *Model) current() sim.Snapshot {
	if m.playHead >= 0 && m.playHead < len(m.history) {
		return m.history[m.playHead]
	}
	if len(m.history) > 0 {
		return m.history[len(m.history)-1]
	}
	return sim.Capture(m.scene.World(), m.scene.Frame())
}

func (m *Model) draw() {
	m.canvas.Clear()
	m.drawContainer()

	snap := m.current()
	for _, l := range snap.Links {
		a, b := snap.Particles[l.A], snap.Particles[l.B]
		x0, y0 := m.view.ToCanvas(r2.Vec{X: a.X, Y: a.Y})
		x1, y1 := m.view.ToCanvas(r2.Vec{X: b.X, Y: b.Y})
		m.canvas.DrawLine(x0, y0, x1, y1)
	}
	for _, p := range snap.Particles {
		x, y := m.view.ToCanvas(r2.Vec{X: p.X, Y: p.Y})
		r := m.view.Length(p.Radius)
		if r <= 2 || p.Status == verlet.Suspended {
			m.canvas.FillCircle(x, y, max(r, 0))
		} else {
			m.canvas.DrawCircle(x, y, r)
		}
	}

	if m.playHead == -1 {
		cx, cy := m.view.ToCanvas(m.cursor)
		m.canvas.DrawLine(cx-2, cy, cx+2, cy)
		m.canvas.DrawLine(cx, cy-2, cx, cy+2)
	}
}

func (m *Model) drawContainer() {
	switch c := m.scene.World().Container().(type) {
	case verlet.Circle:
		x, y := m.view.ToCanvas(c.Center)
		m.canvas.DrawCircle(x, y, m.view.Length(c.Radius))
	case verlet.Box:
		x0, y0 := m.view.ToCanvas(c.Min)
		x1, y1 := m.view.ToCanvas(c.Max)
		x1, y1 = min(x1, m.canvas.Width*2-1), min(y1, m.canvas.Height*4-1)
		m.canvas.DrawLine(x0, y0, x1, y0)
		m.canvas.DrawLine(x1, y0, x1, y1)
		m.canvas.DrawLine(x1, y1, x0, y1)
		m.canvas.DrawLine(x0, y1, x0, y0)
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Foreground(CurrentTheme.Canvas).Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Foreground(CurrentTheme.Primary).Render(strings.ToUpper(m.scene.Name())) + "\n")
	s.WriteString(m.statusLine() + "\n\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Kinetic energy"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	if len(m.strainHistory) > 0 {
		s.WriteString(labelStyle.Render("Strain") + SparklineChart(m.strainHistory, 28) + "\n\n")
	}

	snap := m.current()
	w := m.scene.World()
	rows := []struct{ label, value string }{
		{"Frame", fmt.Sprintf("%d", snap.Frame)},
		{"Time", fmt.Sprintf("%.2fs", snap.Time)},
		{"Particles", fmt.Sprintf("%d", len(snap.Particles))},
		{"Links", fmt.Sprintf("%d", len(snap.Links))},
		{"Collisions", fmt.Sprintf("%d", m.report.Collisions)},
		{"Contacts", fmt.Sprintf("%d", m.report.Contacts)},
		{"Snapped", fmt.Sprintf("%d", m.report.Snapped)},
		{"Grid", fmt.Sprintf("%dx%d @ %.0f", w.Grid().Cols(), w.Grid().Rows(), w.Grid().CellSize())},
	}
	for _, r := range rows {
		s.WriteString(labelStyle.Render(r.label) + valueStyle.Render(r.value) + "\n")
	}
	if m.err != nil {
		s.WriteString(lipgloss.NewStyle().Foreground(CurrentTheme.Error).Render("error: "+m.err.Error()) + "\n")
	}

	s.WriteString("\nPARAMETERS\n")
	for i, p := range m.params {
		v := p.get()
		line := fmt.Sprintf("%-9s %s %.3g", p.name, Bar((v-p.lo)/(p.hi-p.lo), 10), v)
		if i == m.selected {
			s.WriteString(activeStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + labelStyle.UnsetWidth().Render(line) + "\n")
		}
	}
	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause R:Reset Q:Quit\nT:Theme  G:Record ?:Help\nA:Auto   [ ]:Time-Travel\nTab ↑↓:Tune  Mouse:Act"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return helpOverlay + "\n\n" + mainView
	}
	return mainView
}

func (m Model) statusLine() string {
	var status string
	switch {
	case m.playHead != -1 && len(m.history) > 0:
		dt := m.history[m.playHead].Time - m.history[len(m.history)-1].Time
		status = StatusPaused.Render(fmt.Sprintf("REPLAY (%.1fs)", dt))
	case !m.running:
		status = StatusPaused.Render("PAUSED")
	default:
		status = StatusRunning.Render("RUNNING")
	}
	if m.autopilot {
		status += Subtle.Render("  auto")
	}
	if m.recording {
		status += "  " + StatusRecording.Render(fmt.Sprintf("● REC %d", len(m.frames)))
	} else if m.status != "" {
		status += "  " + Subtle.Render(m.status)
	}
	return status
}

const helpOverlay = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Rebuild scene            ║
║  Q        - Quit                     ║
║  A        - Toggle scripted input    ║
║  Tab      - Cycle parameters         ║
║  Up/K     - Increase parameter       ║
║  Down/J   - Decrease parameter       ║
║  [        - Rewind (time travel)     ║
║  ]        - Forward (time travel)    ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
║  Left     - Scene action             ║
║  Right    - Erase                    ║
╚══════════════════════════════════════╝`

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.frames = make([]*image.Paletted, 0)
		return
	}
	m.recording = false
	name := fmt.Sprintf("%s.gif", m.scene.Name())
	if err := saveGIF(name, m.frames); err != nil {
		m.err = err
	} else {
		m.status = "saved " + name
	}
	m.frames = nil
}

// captureFrame rasterises the braille canvas, one block per lit dot.
func (m *Model) captureFrame() {
	const charW, charH = 8, 16
	const dotW, dotH = charW / 2, charH / 4
	img := image.NewPaletted(image.Rect(0, 0, m.canvas.Width*charW, m.canvas.Height*charH),
		color.Palette{color.Black, color.White})

	for y := 0; y < m.canvas.Height*4; y++ {
		for x := 0; x < m.canvas.Width*2; x++ {
			if !m.canvas.Lit(x, y) {
				continue
			}
			for py := 0; py < dotH; py++ {
				for px := 0; px < dotW; px++ {
					img.SetColorIndex(x*dotW+px, y*dotH+py, 1)
				}
			}
		}
	}
	m.frames = append(m.frames, img)
}

func saveGIF(path string, frames []*image.Paletted) error {
	if len(frames) == 0 {
		return nil
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 2)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, &anim)
}

// RunLive opens the live view of one scene.
func RunLive(build Builder) error {
	m, err := NewModel(build)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run()
	return err
}
