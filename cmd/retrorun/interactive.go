package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	optmodel "github.com/wippyai/retro-runtime/options"
	"github.com/wippyai/retro-runtime/runtime"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateLoading modelState = iota
	stateBrowse
	stateFrameCount
)

type interactiveModel struct {
	err      error
	h        *harness
	opts     options
	logger   *zap.Logger
	sys      runtime.SystemInfo
	defs     []optmodel.Definition
	input    textinput.Model
	status   string
	frames   int
	format   string
	selected int
	state    modelState
	busy     bool
}

type loadedMsg struct {
	err error
	h   *harness
	sys runtime.SystemInfo
}

type ranMsg struct {
	err    error
	frames int
}

func newInteractiveModel(o options, logger *zap.Logger) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "60"
	ti.Prompt = "frames: "
	ti.Width = 12
	ti.CharLimit = 7
	return &interactiveModel{opts: o, logger: logger, input: ti, state: stateLoading}
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadCore
}

// loadCore opens the core and loads content. It runs before any other
// command touches the session.
func (m *interactiveModel) loadCore() tea.Msg {
	h, err := open(m.opts, m.logger)
	if err != nil {
		return loadedMsg{err: err}
	}
	sys, err := h.session.SystemInfo()
	if err == nil {
		err = h.session.Init()
	}
	if err == nil {
		err = h.loadContent(m.opts.content)
	}
	if err != nil {
		_ = h.close()
		return loadedMsg{err: err}
	}
	return loadedMsg{h: h, sys: sys}
}

func (m *interactiveModel) runFrames(n int) tea.Cmd {
	s := m.h.session
	return func() tea.Msg {
		return ranMsg{frames: n, err: s.RunFrames(n)}
	}
}

func (m *interactiveModel) quit() (tea.Model, tea.Cmd) {
	if m.h != nil && !m.busy {
		if err := m.h.close(); err != nil {
			m.logger.Warn("close session", zap.Error(err))
		}
		m.h = nil
	}
	return m, tea.Quit
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		if m.state == stateFrameCount {
			return m.updateFrameCount(msg)
		}
		switch msg.String() {
		case "q":
			if m.busy {
				return m, nil
			}
			return m.quit()
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
		case "down", "j":
			if m.selected < len(m.defs)-1 {
				m.selected++
			}
		case "left", "h":
			m.cycleOption(-1)
		case "right", "l", " ":
			m.cycleOption(1)
		case "n":
			if m.canRun() {
				m.busy = true
				return m, m.runFrames(1)
			}
		case "r":
			if m.canRun() {
				m.state = stateFrameCount
				m.input.SetValue("")
				return m, m.input.Focus()
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.h = msg.h
		m.sys = msg.sys
		m.defs = m.h.opts.Definitions()
		m.format = m.h.session.PixelFormat().String()
		m.state = stateBrowse
		m.status = "loaded"

	case ranMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.frames += msg.frames
		m.format = m.h.session.PixelFormat().String()
		m.status = fmt.Sprintf("ran %d frame(s)", msg.frames)
		if m.h.session.ShutdownRequested() {
			m.status = "core requested shutdown"
		}
		// Cores may define or hide options while running.
		m.defs = m.h.opts.Definitions()
		if m.selected >= len(m.defs) {
			m.selected = max(len(m.defs)-1, 0)
		}
	}
	return m, nil
}

func (m *interactiveModel) updateFrameCount(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.input.Blur()
		m.state = stateBrowse
		return m, nil
	case "enter":
		m.input.Blur()
		m.state = stateBrowse
		n := 60
		if v := strings.TrimSpace(m.input.Value()); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil || parsed <= 0 {
				m.status = fmt.Sprintf("bad frame count %q", v)
				return m, nil
			}
			n = parsed
		}
		m.busy = true
		return m, m.runFrames(n)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) canRun() bool {
	return m.h != nil && !m.busy && m.err == nil && !m.h.session.ShutdownRequested()
}

// cycleOption moves the selected option to its next or previous value.
// The core sees the change on its next GET_VARIABLE_UPDATE.
func (m *interactiveModel) cycleOption(step int) {
	if m.h == nil || m.busy || len(m.defs) == 0 {
		return
	}
	d := m.defs[m.selected]
	if len(d.Values) == 0 {
		return
	}
	cur, _ := m.h.opts.Get(d.Key)
	idx := 0
	for i, v := range d.Values {
		if v.Value == cur {
			idx = i
			break
		}
	}
	idx = (idx + step + len(d.Values)) % len(d.Values)
	if m.h.opts.Set(d.Key, d.Values[idx].Value) {
		m.status = fmt.Sprintf("%s = %s", d.Key, d.Values[idx].Value)
	}
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.state == stateLoading {
		return "Loading core..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Retro Runner"))
	b.WriteString(" ")
	b.WriteString(m.sys.LibraryName)
	b.WriteString(" ")
	b.WriteString(m.sys.LibraryVersion)
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("frames %d  video %d  format %s",
		m.frames, m.h.video.Count(), m.format))
	if f, ok := m.h.video.Last(); ok && !f.Dupe {
		b.WriteString(fmt.Sprintf("  last %dx%d", f.Width, f.Height))
	}
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.status))
	b.WriteString("\n\n")

	if len(m.defs) == 0 {
		b.WriteString("The core defines no options.\n")
	}
	for i, d := range m.defs {
		if !m.h.opts.Visible(d.Key) {
			continue
		}
		v, _ := m.h.opts.Get(d.Key)
		label := d.Desc
		if label == "" {
			label = d.Key
		}
		shown := v
		if val, ok := d.Value(v); ok {
			shown = val.Display()
		}
		line := keyStyle.Render(label) + ": " + valueStyle.Render(shown)
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + label + ": " + shown))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.state == stateFrameCount {
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter run • esc back"))
		return b.String()
	}
	if m.busy {
		b.WriteString(helpStyle.Render("running..."))
		return b.String()
	}
	b.WriteString(helpStyle.Render("↑/↓ select • ←/→ change • n step • r run N • q quit"))
	return b.String()
}

func runInteractive(o options, logger *zap.Logger) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("interactive mode needs a terminal")
	}
	m := newInteractiveModel(o, logger)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return err
	}
	if m.h != nil {
		return m.h.close()
	}
	return nil
}
