package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ziadkadry99/umlgen/internal/diagram"
	"github.com/ziadkadry99/umlgen/internal/generation"
	"github.com/ziadkadry99/umlgen/internal/logger"
	"github.com/ziadkadry99/umlgen/internal/plantuml"
	"github.com/ziadkadry99/umlgen/internal/viewer"
)

// Attempt describes one generation call for the history log. It carries no
// markup: diagrams themselves are never recorded.
type Attempt struct {
	RequestID    uint64
	Type         diagram.Type
	Status       diagram.Status
	Result       string
	Model        string
	InputTokens  int
	OutputTokens int
	CostUSD      float64
	Duration     time.Duration
	Err          error
}

// Attempt results.
const (
	ResultFound  = "found"
	ResultAbsent = "absent"
	ResultStale  = "stale"
	ResultFailed = "failed"
)

// Recorder stores generation attempts.
type Recorder interface {
	RecordAttempt(ctx context.Context, a Attempt) error
}

// Outcome is the result of Session.Generate.
type Outcome struct {
	RequestID uint64
	Markup    diagram.Markup
	Encoded   plantuml.Encoded
	// Stale is set when a newer request was started before this one
	// finished; its result was discarded.
	Stale bool
}

// Absent reports whether the reply held no diagram.
func (o Outcome) Absent() bool { return o.Markup.IsAbsent() }

// Session is the state behind one editor: the current markup and its
// encoding, the viewer controller, and the generation request sequence.
// Only the newest request may change visible state.
//
// Viewer subscribers are called without mu held, so they may read the
// session. They must not call Edit or Generate synchronously.
type Session struct {
	pipeline *Pipeline
	viewer   *viewer.Controller
	recorder Recorder
	log      *logger.Logger

	// viewMu orders pushes to the viewer. It is always taken before mu.
	viewMu sync.Mutex

	mu          sync.Mutex
	latest      uint64
	markup      string
	encoded     plantuml.Encoded
	description string
	diagramType diagram.Type
}

// Snapshot is the session's visible state.
type Snapshot struct {
	// Description and Type are those of the last generation that produced
	// the current diagram. Hand edits keep them.
	Description string           `json:"description"`
	Type        diagram.Type     `json:"diagram_type"`
	Markup      string           `json:"markup"`
	Encoded     plantuml.Encoded `json:"encoded"`
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithRecorder records every generation attempt.
func WithRecorder(r Recorder) SessionOption {
	return func(s *Session) { s.recorder = r }
}

// WithLogger sets the session logger.
func WithLogger(l *logger.Logger) SessionOption {
	return func(s *Session) { s.log = l }
}

// NewSession creates a session whose editor starts with the class template.
func NewSession(p *Pipeline, v *viewer.Controller, opts ...SessionOption) *Session {
	s := &Session{pipeline: p, viewer: v}
	for _, opt := range opts {
		opt(s)
	}
	if initial, ok := p.Templates().Get(diagram.TypeClass); ok {
		s.diagramType = diagram.TypeClass
		s.Edit(initial)
	}
	return s
}

// Viewer returns the session's viewer controller.
func (s *Session) Viewer() *viewer.Controller { return s.viewer }

// Pipeline returns the underlying pipeline.
func (s *Session) Pipeline() *Pipeline { return s.pipeline }

// Current returns the markup and its encoding. ok is false when the editor
// is empty.
func (s *Session) Current() (markup string, enc plantuml.Encoded, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.markup, s.encoded, s.markup != ""
}

// Snapshot returns the current description, markup and encoding together.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Description: s.description,
		Type:        s.diagramType,
		Markup:      s.markup,
		Encoded:     s.encoded,
	}
}

// Edit replaces the markup, as when the user edits the source by hand, and
// re-encodes it. Empty markup clears the image.
func (s *Session) Edit(markup string) plantuml.Encoded {
	s.viewMu.Lock()
	defer s.viewMu.Unlock()

	s.mu.Lock()
	enc := s.apply(markup)
	s.mu.Unlock()

	s.show(enc)
	return enc
}

// apply must be called with mu held.
func (s *Session) apply(markup string) plantuml.Encoded {
	s.markup = markup
	if markup == "" {
		s.encoded = plantuml.Encoded{}
	} else {
		s.encoded = s.pipeline.ToResource(markup)
	}
	return s.encoded
}

// show must be called with viewMu held and mu released.
func (s *Session) show(enc plantuml.Encoded) {
	if enc.URL == "" {
		s.viewer.Clear()
		return
	}
	s.viewer.Show(enc)
}

// Generate runs the pipeline for a description. Model failures are
// returned as errors and leave the previous markup in place, as does an
// Absent reply. If another Generate call starts before this one returns,
// this call's result is discarded and Outcome.Stale is set.
func (s *Session) Generate(ctx context.Context, description string, t diagram.Type) (Outcome, error) {
	req := diagram.Request{Description: description, Type: t}
	if err := req.Validate(); err != nil {
		return Outcome{Markup: diagram.Absent()}, err
	}

	s.mu.Lock()
	s.latest++
	id := s.latest
	s.mu.Unlock()

	sink := generation.StatusFunc(func(st diagram.Status) {
		s.viewMu.Lock()
		defer s.viewMu.Unlock()

		s.mu.Lock()
		current := id == s.latest
		s.mu.Unlock()
		if current {
			s.viewer.SetStatus(st)
		}
	})

	markup, res, err := s.pipeline.generate(ctx, req, sink)
	out := Outcome{RequestID: id, Markup: markup}

	attempt := Attempt{RequestID: id, Type: t, Status: diagram.StatusSucceeded}
	if res != nil {
		attempt.Model = res.Model
		attempt.InputTokens = res.InputTokens
		attempt.OutputTokens = res.OutputTokens
		attempt.CostUSD = res.CostUSD
		attempt.Duration = res.Duration
	}

	s.viewMu.Lock()
	s.mu.Lock()
	out.Stale = id != s.latest
	switch {
	case err != nil:
		attempt.Status = diagram.StatusFailed
		attempt.Result = ResultFailed
		attempt.Err = err
	case out.Stale:
		attempt.Result = ResultStale
	case markup.IsAbsent():
		attempt.Result = ResultAbsent
	default:
		attempt.Result = ResultFound
		text, _ := markup.Text()
		out.Encoded = s.apply(text)
		s.description = description
		s.diagramType = t
	}
	s.mu.Unlock()
	if attempt.Result == ResultFound {
		s.show(out.Encoded)
	}
	s.viewMu.Unlock()

	s.record(attempt)
	return out, err
}

func (s *Session) record(a Attempt) {
	log := s.log.WithFields(map[string]any{
		"request_id":   a.RequestID,
		"diagram_type": string(a.Type),
		"result":       a.Result,
	})
	if a.Err != nil {
		log.Error(a.Err, "diagram generation failed")
	} else {
		log.Info("diagram generation finished")
	}

	if s.recorder == nil {
		return
	}
	// History is best effort: it must not affect the editor.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.recorder.RecordAttempt(ctx, a); err != nil && !errors.Is(err, context.Canceled) {
		s.log.Error(err, "recording generation attempt")
	}
}
