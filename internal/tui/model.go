// Package tui hosts the stacked-area chart in a bubbletea program: the
// terminal window is the chart's container, mouse motion drives the scanner
// and window resizes re-lay the chart out.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"github.com/janekbaraniewski/stackarea/internal/term"
	"github.com/janekbaraniewski/stackarea/internal/widget"
)

type frameMsg time.Time

func frameCmd() tea.Cmd {
	return tea.Tick(term.FrameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// DocumentMsg replaces the chart data, e.g. after the source file changed.
// A non-nil Err keeps the current chart and reports the failure.
type DocumentMsg struct {
	Config widget.Config
	Source string
	Err    error
}

type themePersistedMsg struct {
	err error
}

type Model struct {
	cfg     widget.Config
	opts    []widget.Option
	source  string
	surface *term.Surface
	chart   *widget.StackArea
	axis    *term.AxisTransition
	log     *log.Entry

	animating bool
	width     int
	height    int
	status    string

	keys keyMap
	help help.Model

	onThemeChange func(string) error
}

// NewModel prepares a chart for cfg. The chart is rendered on the first
// window size message, once the terminal width is known.
func NewModel(cfg widget.Config, cell term.CellSize, source string, opts ...widget.Option) Model {
	return Model{
		cfg:     cfg,
		opts:    opts,
		source:  source,
		surface: term.NewSurface(cell),
		axis:    term.NewAxisTransition(),
		log:     log.WithField("component", "tui"),
		keys:    defaultKeyMap(),
		help:    help.New(),
	}
}

// SetOnThemeChange registers a callback that persists the theme picked with
// the theme key.
func (m *Model) SetOnThemeChange(fn func(string) error) {
	m.onThemeChange = fn
}

// Chart returns the live chart, or nil before the first resize.
func (m Model) Chart() *widget.StackArea { return m.chart }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.surface.Resize(msg.Width)
		return m.relayout()

	case DocumentMsg:
		if msg.Err != nil {
			m.log.WithError(msg.Err).Warn("reload failed")
			m.status = "reload failed: " + msg.Err.Error()
			return m, nil
		}
		m.cfg = msg.Config
		if msg.Source != "" {
			m.source = msg.Source
		}
		m.chart = nil
		m.axis.Detach()
		m.status = "reloaded"
		if m.width == 0 {
			return m, nil
		}
		return m.relayout()

	case frameMsg:
		if m.axis.Step() {
			m.animating = false
			return m, nil
		}
		return m, frameCmd()

	case themePersistedMsg:
		if msg.err != nil {
			m.status = "theme save failed"
		} else {
			m.status = "theme saved"
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	}
	return m, nil
}

// relayout renders the chart on first use and updates it afterwards, then
// starts the axis transition if the update produced a new one.
func (m Model) relayout() (tea.Model, tea.Cmd) {
	if m.chart == nil {
		opts := append([]widget.Option{widget.WithLogger(m.log)}, m.opts...)
		chart, err := widget.New(m.cfg, m.surface, opts...).Render()
		if err != nil {
			m.log.WithError(err).Error("render chart")
			m.status = err.Error()
			return m, nil
		}
		m.chart = chart
	} else if err := m.chart.Update(); err != nil {
		m.log.WithError(err).Error("update chart")
		m.status = err.Error()
		return m, nil
	}

	if !m.axis.Start(m.chart.Scene().Axis) || m.animating {
		return m, nil
	}
	m.animating = true
	return m, frameCmd()
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.chart == nil {
		return m, nil
	}
	if msg.Action != tea.MouseActionMotion && msg.Action != tea.MouseActionPress {
		return m, nil
	}
	if msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown {
		return m, nil
	}
	scene := m.chart.Scene()
	if msg.Y >= m.surface.Rows(scene) {
		return m, nil
	}
	if err := m.chart.PointerMove(m.surface.PlotX(msg.X, scene)); err != nil {
		m.log.WithError(err).Debug("pointer move")
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Theme):
		name := term.CycleTheme()
		m.surface.SetStyles(term.StylesFor(term.ActiveTheme()))
		m.status = "theme: " + name
		return m, m.persistThemeCmd(name)
	}

	if m.chart == nil {
		return m, nil
	}
	n := m.chart.Data().Len()
	var err error
	switch {
	case key.Matches(msg, m.keys.Prev):
		err = m.chart.Step(-1)
	case key.Matches(msg, m.keys.Next):
		err = m.chart.Step(1)
	case key.Matches(msg, m.keys.First):
		err = m.chart.Step(-n)
	case key.Matches(msg, m.keys.Last):
		err = m.chart.Step(n)
	}
	if err != nil {
		m.log.WithError(err).Debug("step selection")
	}
	return m, nil
}

func (m Model) persistThemeCmd(name string) tea.Cmd {
	if m.onThemeChange == nil {
		return nil
	}
	save := m.onThemeChange
	return func() tea.Msg {
		err := save(name)
		if err != nil {
			log.WithError(err).Warn("theme persist")
		}
		return themePersistedMsg{err: err}
	}
}

func (m Model) View() string {
	if m.chart == nil {
		return "loading…"
	}
	scene := m.chart.Scene()
	chart := m.surface.Draw(scene, m.axis.Y())

	parts := []string{m.help.View(m.keys)}
	status := []string{}
	if m.source != "" {
		status = append(status, m.source)
	}
	status = append(status, term.ActiveTheme().Name)
	if m.status != "" {
		status = append(status, m.status)
	}
	parts = append(parts, term.Footer(m.width, status...))

	out := chart
	for _, p := range parts {
		out += "\n" + p
	}
	return out
}
