package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ziadkadry99/umlgen/internal/diagram"
	"github.com/ziadkadry99/umlgen/internal/pipeline"
)

// GeneratedMsg carries the result of a generation request.
type GeneratedMsg struct {
	Outcome pipeline.Outcome
	Err     error
}

// ProbedMsg reports that an image check finished.
type ProbedMsg struct {
	URL string
}

// generateCmd runs the pipeline off the UI goroutine.
func (m Model) generateCmd(description string, t diagram.Type) tea.Cmd {
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		out, err := session.Generate(ctx, description, t)
		return GeneratedMsg{Outcome: out, Err: err}
	}
}

// probeCmd checks the current image URL. It returns nil when no prober is
// set or nothing is shown.
func (m Model) probeCmd() tea.Cmd {
	if m.prober == nil || m.url == "" {
		return nil
	}
	ctx, prober, v, url := m.ctx, m.prober, m.session.Viewer(), m.url
	return func() tea.Msg {
		prober.Probe(ctx, url, v)
		return ProbedMsg{URL: url}
	}
}
