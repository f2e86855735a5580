package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ziadkadry99/umlgen/internal/diagram"
	"github.com/ziadkadry99/umlgen/internal/pipeline"
	"github.com/ziadkadry99/umlgen/internal/viewer"
)

// panStep is the distance in pixels an arrow key moves the diagram.
const panStep = 20

// Prober checks that a diagram URL renders and records the outcome on the
// viewer.
type Prober interface {
	Probe(ctx context.Context, url string, v *viewer.Controller) viewer.State
}

// Model is the Bubbletea state for the interactive generator.
type Model struct {
	ctx     context.Context
	session *pipeline.Session
	prober  Prober

	input   textarea.Model
	spinner spinner.Model
	types   []diagram.Type
	typeIdx int

	generating bool
	state      viewer.State
	markup     string
	url        string
	notice     string
	err        string

	width     int
	cancelled bool
}

// NewModel constructs a TUI model for session.
func NewModel(ctx context.Context, session *pipeline.Session) Model {
	ta := textarea.New()
	ta.Placeholder = "Describe the system, e.g. A Customer places Orders; each Order has many OrderItems"
	ta.ShowLineNumbers = false
	ta.SetHeight(4)
	ta.SetWidth(76)
	ta.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	m := Model{
		ctx:     ctx,
		session: session,
		input:   ta,
		spinner: s,
		types:   diagram.Types(),
		state:   session.Viewer().State(),
		width:   80,
	}
	m.markup, m.url = currentMarkup(session)
	return m
}

func currentMarkup(s *pipeline.Session) (string, string) {
	markup, enc, _ := s.Current()
	return markup, enc.URL
}

// WithProber makes the model check each new diagram URL with p, so render
// errors from the server show up in the terminal.
func (m Model) WithProber(p Prober) Model {
	m.prober = p
	return m
}

// Init starts the cursor blink and the spinner, and checks the initial
// diagram.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick, m.probeCmd())
}

// DiagramType returns the selected diagram type.
func (m Model) DiagramType() diagram.Type {
	return m.types[m.typeIdx]
}

// Cancelled reports whether the user quit.
func (m Model) Cancelled() bool {
	return m.cancelled
}
