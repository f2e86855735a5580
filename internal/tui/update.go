package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ziadkadry99/umlgen/internal/diagram"
	"github.com/ziadkadry99/umlgen/internal/generation"
)

// Update handles Bubbletea messages and updates model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.SetWidth(max(20, msg.Width-4))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case GeneratedMsg:
		m = m.handleGenerated(msg)
		if msg.Err != nil || msg.Outcome.Stale || msg.Outcome.Absent() {
			return m, nil
		}
		return m, m.probeCmd()

	case ProbedMsg:
		m.state = m.session.Viewer().State()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.cancelled = true
		return m, tea.Quit
	case "tab":
		m.typeIdx = (m.typeIdx + 1) % len(m.types)
		return m, nil
	case "shift+tab":
		m.typeIdx = (m.typeIdx + len(m.types) - 1) % len(m.types)
		return m, nil
	case "ctrl+g":
		return m.startGenerate()
	}

	if m.input.Focused() {
		if msg.String() == "esc" {
			m.input.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	v := m.session.Viewer()
	switch msg.String() {
	case "+", "=":
		m.state = v.ZoomIn()
	case "-", "_":
		m.state = v.ZoomOut()
	case "0":
		m.state = v.Reset()
	case "left", "h":
		m.state = v.Pan(-panStep, 0)
	case "right", "l":
		m.state = v.Pan(panStep, 0)
	case "up", "k":
		m.state = v.Pan(0, -panStep)
	case "down", "j":
		m.state = v.Pan(0, panStep)
	case "q":
		m.cancelled = true
		return m, tea.Quit
	case "i", "enter":
		return m, m.input.Focus()
	}
	return m, nil
}

func (m Model) startGenerate() (tea.Model, tea.Cmd) {
	if m.generating {
		return m, nil
	}
	description := strings.TrimSpace(m.input.Value())
	if description == "" {
		m.err = "Enter a description first."
		return m, nil
	}
	m.err = ""
	m.notice = ""
	m.generating = true
	return m, tea.Batch(m.generateCmd(description, m.DiagramType()), m.spinner.Tick)
}

func (m Model) handleGenerated(msg GeneratedMsg) Model {
	m.generating = false
	m.state = m.session.Viewer().State()

	switch {
	case errors.Is(msg.Err, diagram.ErrEmptyDescription):
		m.err = "Enter a description first."
	case errors.Is(msg.Err, generation.ErrGenerationFailed):
		m.err = "Something went wrong/Out of credits"
	case msg.Err != nil:
		m.err = msg.Err.Error()
	case msg.Outcome.Stale:
		// A newer request owns the display.
	case msg.Outcome.Absent():
		m.notice = "The model did not return a diagram. Try rephrasing the description."
	default:
		m.markup, m.url = currentMarkup(m.session)
		m.notice = ""
	}
	return m
}
