package tui

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/umlgen/internal/diagram"
	"github.com/ziadkadry99/umlgen/internal/generation"
	"github.com/ziadkadry99/umlgen/internal/llm/llmtest"
	"github.com/ziadkadry99/umlgen/internal/pipeline"
	"github.com/ziadkadry99/umlgen/internal/render"
	"github.com/ziadkadry99/umlgen/internal/templates"
	"github.com/ziadkadry99/umlgen/internal/viewer"
)

func newModel(t *testing.T, reply string) (Model, *llmtest.MockProvider) {
	t.Helper()
	mock := llmtest.NewMockProvider(reply)
	p := pipeline.New(templates.Default(), generation.NewClient(mock, generation.Options{}, nil), nil)
	v, err := viewer.New(viewer.DefaultOptions())
	require.NoError(t, err)
	return NewModel(context.Background(), pipeline.NewSession(p, v)), mock
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+g":
		return tea.KeyMsg{Type: tea.KeyCtrlG}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func TestNewModelShowsInitialTemplate(t *testing.T) {
	m, _ := newModel(t, "")
	require.Contains(t, m.markup, "@startuml")
	require.NotEmpty(t, m.url)
	require.Equal(t, diagram.TypeClass, m.DiagramType())
}

func TestTabCyclesDiagramType(t *testing.T) {
	m, _ := newModel(t, "")
	m, _ = update(t, m, key("tab"))
	require.Equal(t, diagram.TypeSequence, m.DiagramType())

	for range len(diagram.Types()) - 1 {
		m, _ = update(t, m, key("tab"))
	}
	require.Equal(t, diagram.TypeClass, m.DiagramType())
}

func TestGenerateRequiresDescription(t *testing.T) {
	m, mock := newModel(t, "")
	m, cmd := update(t, m, key("ctrl+g"))
	require.Nil(t, cmd)
	require.False(t, m.generating)
	require.NotEmpty(t, m.err)
	require.Zero(t, mock.CallCount())
}

func TestGenerateRunsPipeline(t *testing.T) {
	m, mock := newModel(t, "```plantuml\nBob -> Alice : hello\n```")
	m.input.SetValue("Bob greets Alice")
	m, _ = update(t, m, key("tab"))

	m, cmd := update(t, m, key("ctrl+g"))
	require.True(t, m.generating)
	require.NotNil(t, cmd)
	require.Contains(t, m.View(), "Generating")

	msg := m.generateCmd("Bob greets Alice", m.DiagramType())()
	m, _ = update(t, m, msg)
	require.False(t, m.generating)
	require.Equal(t, "Bob -> Alice : hello", m.markup)
	require.True(t, strings.HasSuffix(m.url, "SyfFKj2rKt3CoKnELR1Io4ZDoSa70000"))
	require.Equal(t, 1, mock.CallCount())
	require.Contains(t, m.View(), "Diagram generated")
}

func TestGeneratedDiagramIsProbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Syntax Error?", http.StatusBadRequest)
	}))
	defer srv.Close()

	m, _ := newModel(t, "```plantuml\nBob -> Alice : hello\n```")
	m = m.WithProber(render.NewFetcher(srv.Client(), nil))

	msg := m.generateCmd("Bob greets Alice", m.DiagramType())()
	m, cmd := update(t, m, msg)
	require.NotNil(t, cmd)

	probed, ok := cmd().(ProbedMsg)
	require.True(t, ok)
	require.Equal(t, m.url, probed.URL)

	m, _ = update(t, m, probed)
	require.Equal(t, viewer.DisplayImageError, m.state.Display)
	require.Contains(t, m.View(), "image could not be loaded")
}

func TestGeneratedAbsentIsNotProbed(t *testing.T) {
	m, _ := newModel(t, "no diagram here")
	m = m.WithProber(render.NewFetcher(nil, nil))

	msg := m.generateCmd("Bob greets Alice", m.DiagramType())()
	_, cmd := update(t, m, msg)
	require.Nil(t, cmd)
}

func TestGeneratedFailure(t *testing.T) {
	m, _ := newModel(t, "")
	before := m.markup
	m.generating = true

	m, _ = update(t, m, GeneratedMsg{Err: &generation.Error{Provider: "mock", Cause: errors.New("quota")}})
	require.False(t, m.generating)
	require.Equal(t, "Something went wrong/Out of credits", m.err)
	require.Equal(t, before, m.markup)
}

func TestGeneratedAbsent(t *testing.T) {
	m, _ := newModel(t, "")
	before := m.markup

	m, _ = update(t, m, GeneratedMsg{Outcome: pipeline.Outcome{Markup: diagram.Absent()}})
	require.NotEmpty(t, m.notice)
	require.Equal(t, before, m.markup)
}

func TestViewerKeysRequireBlurredInput(t *testing.T) {
	m, _ := newModel(t, "")

	// While typing, + goes to the description.
	m, _ = update(t, m, key("+"))
	require.Equal(t, 1.0, m.state.Transform.Scale)
	require.Equal(t, "+", m.input.Value())

	m, _ = update(t, m, key("esc"))
	m, _ = update(t, m, key("+"))
	require.Greater(t, m.state.Transform.Scale, 1.0)

	m, _ = update(t, m, key("left"))
	m, _ = update(t, m, key("down"))
	require.Equal(t, float64(-panStep), m.state.Transform.TranslateX)
	require.Equal(t, float64(panStep), m.state.Transform.TranslateY)

	m, _ = update(t, m, key("0"))
	require.Equal(t, viewer.Identity, m.state.Transform)
}

func TestCtrlCQuits(t *testing.T) {
	m, _ := newModel(t, "")
	m, cmd := update(t, m, key("ctrl+c"))
	require.NotNil(t, cmd)
	require.True(t, m.Cancelled())
}
