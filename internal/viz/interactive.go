package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/san-kum/verletlab/internal/config"
	"github.com/san-kum/verletlab/internal/scene"
)

var (
	menuTitle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	menuSub      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	menuMarker   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	menuSelected = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	menuDesc     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	menuItem     = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	menuItemDesc = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	menuKey      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

var sceneInfo = map[string]string{
	"playground": "balls in a circle",
	"rope":       "drag a hanging chain",
	"cloth":      "cut a pinned lattice",
	"bridge":     "shoot at a span",
	"plinko":     "balls through pegs",
}

const (
	stateMenu = iota
	statePreset
	stateSim
)

// menu picks a scene and preset, then hands over to a live Model.
type menu struct {
	state, cursor int
	registry      *scene.Registry
	logger        *log.Logger
	scenes        []string
	selected      string
	presets       []string
	liveModel     Model
	err           error
	width, height int
}

func NewInteractiveApp(registry *scene.Registry, logger *log.Logger) *menu {
	return &menu{
		state:    stateMenu,
		registry: registry,
		logger:   logger,
		scenes:   registry.List(),
	}
}

func (m menu) Init() tea.Cmd { return nil }

func (m menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = size.Width, size.Height
	}
	if m.state == stateSim {
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
			m.state = stateMenu
			return m, nil
		}
		next, cmd := m.liveModel.Update(msg)
		m.liveModel = next.(Model)
		return m, cmd
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(key)
	}
	return m, nil
}

func (m menu) items() []string {
	if m.state == statePreset {
		return m.presets
	}
	return m.scenes
}

func (m menu) handleKey(msg tea.KeyMsg) (menu, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.state, m.cursor = stateMenu, 0
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items())-1 {
			m.cursor++
		}
	case "enter", " ":
		if m.state == stateMenu {
			m.selected = m.scenes[m.cursor]
			m.presets = append([]string{"default"}, config.ListPresets(m.selected)...)
			m.state, m.cursor = statePreset, 0
			return m, nil
		}
		cmd := m.start(m.presets[m.cursor])
		return m, cmd
	}
	return m, nil
}

func (m *menu) start(preset string) tea.Cmd {
	sceneName := m.selected
	build := func() (scene.Scene, error) {
		cfg := config.GetPreset(sceneName, preset)
		if cfg == nil {
			cfg = config.ForScene(sceneName)
		}
		return m.registry.Build(cfg, m.logger)
	}
	live, err := NewModel(build)
	if err != nil {
		m.err = err
		return nil
	}
	if m.width > 0 {
		live.resize(m.width, m.height)
	}
	m.err = nil
	m.liveModel = live
	m.state = stateSim
	return m.liveModel.Init()
}

func (m menu) View() string {
	switch m.state {
	case stateSim:
		return m.liveModel.View()
	case statePreset:
		return m.viewList(strings.ToUpper(m.selected), sceneInfo[m.selected], m.presets, nil)
	}
	return m.viewList("VERLETLAB", "verlet particle sandbox", m.scenes, sceneInfo)
}

func (m menu) viewList(title, subtitle string, items []string, info map[string]string) string {
	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render(GradientText(title, CurrentTheme.Primary, CurrentTheme.Accent)) + "\n    " + menuSub.Render(subtitle) + "\n    " + Separator(25) + "\n\n")
	for i, name := range items {
		desc := info[name]
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", menuMarker.Render("▸"), menuSelected.Render(fmt.Sprintf("%-16s", name)), menuDesc.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", menuItem.Render(fmt.Sprintf("  %-16s", name)), menuItemDesc.Render(desc)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + lipgloss.NewStyle().Foreground(CurrentTheme.Error).Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + menuKey.Render("j/k") + menuItem.Render(" navigate  ") +
		menuKey.Render("enter") + menuItem.Render(" select  ") +
		menuKey.Render("esc") + menuItem.Render(" back  ") +
		menuKey.Render("q") + menuItem.Render(" quit") + "\n")
	return b.String()
}

func RunInteractive(registry *scene.Registry, logger *log.Logger) error {
	_, err := tea.NewProgram(NewInteractiveApp(registry, logger), tea.WithAltScreen(), tea.WithMouseAllMotion()).Run()
	return err
}
