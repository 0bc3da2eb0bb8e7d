package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wayopenfan/wayopenfan/internal/config"
	"github.com/wayopenfan/wayopenfan/internal/discovery"
	"github.com/wayopenfan/wayopenfan/internal/monitor"
	"github.com/wayopenfan/wayopenfan/internal/openfan"
	"github.com/wayopenfan/wayopenfan/internal/transport"
)

// speedStep is the duty-cycle increment for the +/- keys.
const speedStep = 5

// Messages for async operations
type fanUpdateMsg monitor.Update
type commandDoneMsg struct{ err error }

// keyMap defines key bindings for the watch screen
type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Faster  key.Binding
	Slower  key.Binding
	Toggle  key.Binding
	Presets key.Binding
	Rescan  key.Binding
	Quit    key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Faster, k.Slower, k.Toggle, k.Presets, k.Rescan, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Faster, k.Slower},
		{k.Toggle, k.Presets, k.Rescan, k.Quit},
	}
}

func newKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Faster: key.NewBinding(
			key.WithKeys("right", "+", "="),
			key.WithHelp("→/+", "faster"),
		),
		Slower: key.NewBinding(
			key.WithKeys("left", "-"),
			key.WithHelp("←/-", "slower"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "t"),
			key.WithHelp("space", "toggle"),
		),
		Presets: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5"),
			key.WithHelp("1-5", "preset all"),
		),
		Rescan: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rescan"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Model is the bubbletea model for the live watch screen.
type Model struct {
	cfg    *config.Config
	engine *discovery.Engine
	mon    *monitor.Monitor

	states map[string]monitor.Update
	index  int

	width   int
	height  int
	spinner spinner.Model
	help    help.Model
	keys    keyMap
	lastErr error
}

// NewModel creates the watch-screen model over a started engine and
// monitor.
func NewModel(cfg *config.Config, engine *discovery.Engine, mon *monitor.Monitor) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	return Model{
		cfg:     cfg,
		engine:  engine,
		mon:     mon,
		states:  make(map[string]monitor.Update),
		spinner: s,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init starts the spinner and the update pump.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForUpdate(m.mon.Updates()))
}

// waitForUpdate relays one monitor update into the tea loop.
func waitForUpdate(updates <-chan monitor.Update) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-updates
		if !ok {
			return nil
		}
		return fanUpdateMsg(update)
	}
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case fanUpdateMsg:
		m.states[msg.State.Name] = monitor.Update(msg)
		m.clampIndex()
		return m, waitForUpdate(m.mon.Updates())

	case commandDoneMsg:
		m.lastErr = msg.err
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.index > 0 {
			m.index--
		}

	case key.Matches(msg, m.keys.Down):
		if m.index < len(m.mon.Fans())-1 {
			m.index++
		}

	case key.Matches(msg, m.keys.Faster):
		return m, m.adjustSelected(speedStep)

	case key.Matches(msg, m.keys.Slower):
		return m, m.adjustSelected(-speedStep)

	case key.Matches(msg, m.keys.Toggle):
		if fan := m.selectedFan(); fan != nil {
			return m, runCommand(func(ctx context.Context) error {
				return fan.Toggle(ctx)
			})
		}

	case key.Matches(msg, m.keys.Presets):
		idx := int(msg.String()[0] - '1')
		if idx >= 0 && idx < len(m.cfg.Presets) {
			percent := m.cfg.Presets[idx]
			mon := m.mon
			return m, runCommand(func(ctx context.Context) error {
				return mon.SetAll(ctx, percent)
			})
		}

	case key.Matches(msg, m.keys.Rescan):
		engine := m.engine
		return m, runCommand(func(ctx context.Context) error {
			engine.Stop()
			return engine.Start()
		})
	}

	return m, nil
}

// runCommand executes a device command asynchronously, bounded by the
// transport's own timeout plus a context safety margin.
func runCommand(fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*transport.DefaultTimeout)
		defer cancel()
		return commandDoneMsg{err: fn(ctx)}
	}
}

func (m *Model) clampIndex() {
	if count := len(m.mon.Fans()); m.index >= count && count > 0 {
		m.index = count - 1
	}
}

func (m Model) selectedFan() *openfan.Fan {
	fans := m.mon.Fans()
	if m.index < 0 || m.index >= len(fans) {
		return nil
	}
	return fans[m.index]
}

func (m Model) adjustSelected(delta int) tea.Cmd {
	fan := m.selectedFan()
	if fan == nil {
		return nil
	}

	target := fan.State().Speed + delta
	if target < 0 {
		target = 0
	}
	if target > 100 {
		target = 100
	}

	return runCommand(func(ctx context.Context) error {
		return fan.SetSpeed(ctx, target)
	})
}

// View renders the watch screen
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("WayOpenFan"))
	b.WriteString("\n\n")

	fans := m.mon.Fans()
	if len(fans) == 0 {
		b.WriteString(fmt.Sprintf("  %s Searching for fans on the local network...\n",
			m.spinner.View()))
	} else {
		for i, fan := range fans {
			b.WriteString(m.renderFan(fan, i == m.index))
			b.WriteString("\n")
		}
	}

	if m.lastErr != nil {
		b.WriteString("\n")
		b.WriteString(ErrorStyle.Render("  " + m.lastErr.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderFan(fan *openfan.Fan, selected bool) string {
	name := fan.Device.Name
	update, polled := m.states[name]

	var line strings.Builder
	if selected {
		line.WriteString(SelectedStyle.Render("→ " + name))
	} else {
		line.WriteString("  " + name)
	}

	switch {
	case !polled:
		line.WriteString(SubtleStyle.Render("  waiting for first status..."))
	case update.Err != nil:
		line.WriteString(ErrorStyle.Render("  unreachable"))
	default:
		state := update.State
		line.WriteString(fmt.Sprintf("  %s %3d%%  %s",
			renderBar(state.Speed), state.Speed,
			SubtleStyle.Render(fmt.Sprintf("%d RPM", state.RPM))))
	}

	return line.String()
}

// renderBar draws a 20-cell duty-cycle gauge.
func renderBar(percent int) string {
	const cells = 20
	filled := percent * cells / 100
	return BarFilledStyle.Render(strings.Repeat("█", filled)) +
		BarEmptyStyle.Render(strings.Repeat("░", cells-filled))
}

// Run wires up discovery, monitoring, and the tea program, blocking
// until the user quits.
func Run(cfg *config.Config) error {
	engine := discovery.New(discovery.Options{
		Prefix:        cfg.ServicePrefix,
		BrowseTimeout: cfg.ScanTimeout(),
		CycleInterval: cfg.ScanInterval(),
	})
	mon := monitor.New(openfan.NewClient(), engine, cfg.PollInterval())
	mon.SetDefaultSpeed(cfg.DefaultSpeed)

	if err := engine.Start(); err != nil {
		return err
	}
	defer engine.Stop()

	if err := mon.Start(); err != nil {
		return err
	}
	defer mon.Stop()

	program := tea.NewProgram(NewModel(cfg, engine, mon), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
