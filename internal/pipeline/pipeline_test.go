package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/umlgen/internal/diagram"
	"github.com/ziadkadry99/umlgen/internal/generation"
	"github.com/ziadkadry99/umlgen/internal/llm"
	"github.com/ziadkadry99/umlgen/internal/llm/llmtest"
	"github.com/ziadkadry99/umlgen/internal/plantuml"
	"github.com/ziadkadry99/umlgen/internal/templates"
	"github.com/ziadkadry99/umlgen/internal/viewer"
)

func newPipeline(p llm.Provider) *Pipeline {
	return New(templates.Default(), generation.NewClient(p, generation.Options{}, nil), nil)
}

func newViewer(t *testing.T) *viewer.Controller {
	t.Helper()
	v, err := viewer.New(viewer.DefaultOptions())
	require.NoError(t, err)
	return v
}

func TestGenerateDiagramEndToEnd(t *testing.T) {
	mock := llmtest.NewMockProvider("Here you go:\n```plantuml\nclass Customer\nclass Order\nCustomer --> Order\n```\nDone.")
	p := newPipeline(mock)

	markup, err := p.GenerateDiagram(context.Background(), "A Customer places Orders; each Order has many OrderItems", diagram.TypeClass)
	require.NoError(t, err)

	text, ok := markup.Text()
	require.True(t, ok)
	assert.Equal(t, "class Customer\nclass Order\nCustomer --> Order", text)

	sent := mock.LastPrompt()
	assert.True(t, strings.HasPrefix(sent, "Generate class PlantUML code for the following story: A Customer places Orders; each Order has many OrderItems."))
	assert.Contains(t, sent, "```plantuml")

	enc := p.ToResource(text)
	assert.NotEmpty(t, enc.Token)
	assert.Equal(t, plantuml.DefaultBaseURL+enc.Token, enc.URL)

	decoded, err := plantuml.Decode(enc.Token)
	require.NoError(t, err)
	assert.Equal(t, text, decoded)
}

func TestGenerateDiagramAbsent(t *testing.T) {
	mock := llmtest.NewMockProvider("I cannot generate a diagram for that.")
	markup, err := newPipeline(mock).GenerateDiagram(context.Background(), "something", diagram.TypeSequence)
	require.NoError(t, err)
	assert.True(t, markup.IsAbsent())
}

func TestGenerateDiagramEmptyDescription(t *testing.T) {
	mock := llmtest.NewMockProvider("```plantuml\nclass A\n```")
	_, err := newPipeline(mock).GenerateDiagram(context.Background(), "   ", diagram.TypeClass)
	require.ErrorIs(t, err, diagram.ErrEmptyDescription)
	assert.Zero(t, mock.CallCount())
}

func TestGenerateDiagramFailure(t *testing.T) {
	mock := llmtest.NewMockProvider("")
	mock.Err = errors.New("out of credits")
	_, err := newPipeline(mock).GenerateDiagram(context.Background(), "desc", diagram.TypeClass)
	require.ErrorIs(t, err, generation.ErrGenerationFailed)
}

func TestSessionStartsWithClassTemplate(t *testing.T) {
	s := NewSession(newPipeline(llmtest.NewMockProvider("")), newViewer(t))

	markup, enc, ok := s.Current()
	require.True(t, ok)
	tmpl, _ := templates.Default().Get(diagram.TypeClass)
	assert.Equal(t, tmpl, markup)
	assert.Equal(t, plantuml.Token(tmpl), enc.Token)
	assert.Equal(t, viewer.DisplayImage, s.Viewer().State().Display)
}

func TestSessionGenerateUpdatesPair(t *testing.T) {
	mock := llmtest.NewMockProvider("```plantuml\nBob -> Alice : hello\n```")
	s := NewSession(newPipeline(mock), newViewer(t))

	out, err := s.Generate(context.Background(), "Bob greets Alice", diagram.TypeSequence)
	require.NoError(t, err)
	assert.False(t, out.Stale)
	assert.False(t, out.Absent())
	assert.Equal(t, "SyfFKj2rKt3CoKnELR1Io4ZDoSa70000", out.Encoded.Token)

	markup, enc, _ := s.Current()
	assert.Equal(t, "Bob -> Alice : hello", markup)
	assert.Equal(t, out.Encoded, enc)

	st := s.Viewer().State()
	assert.Equal(t, diagram.StatusSucceeded, st.Status)
	assert.Equal(t, enc.URL, st.ImageURL)
}

func TestSessionSubscriberCanReadSession(t *testing.T) {
	mock := llmtest.NewMockProvider("```plantuml\nBob -> Alice : hello\n```")
	s := NewSession(newPipeline(mock), newViewer(t))

	var (
		mu   sync.Mutex
		seen []string
	)
	stop := s.Viewer().Subscribe(func(st viewer.State) {
		markup, _, _ := s.Current()
		snap := s.Snapshot()
		mu.Lock()
		seen = append(seen, markup+"|"+snap.Encoded.URL)
		mu.Unlock()
	})
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := s.Generate(context.Background(), "Bob greets Alice", diagram.TypeSequence)
		assert.NoError(t, err)
		s.Edit("class A")
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("subscriber reading the session blocked Generate")
	}

	markup, enc, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "class A", markup)
	assert.Equal(t, enc.URL, s.Viewer().State().ImageURL)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, seen)
	assert.Equal(t, "class A|"+enc.URL, seen[len(seen)-1])
}

func TestSessionAbsentKeepsPreviousMarkup(t *testing.T) {
	mock := llmtest.NewMockProvider("I cannot generate a diagram for that.")
	s := NewSession(newPipeline(mock), newViewer(t))
	s.Edit("class Previous")

	out, err := s.Generate(context.Background(), "anything", diagram.TypeClass)
	require.NoError(t, err)
	assert.True(t, out.Absent())
	assert.Empty(t, out.Encoded.Token)

	markup, _, _ := s.Current()
	assert.Equal(t, "class Previous", markup)
}

func TestSessionFailureSetsFailed(t *testing.T) {
	mock := llmtest.NewMockProvider("")
	mock.Err = errors.New("boom")
	s := NewSession(newPipeline(mock), newViewer(t))
	before, _, _ := s.Current()

	_, err := s.Generate(context.Background(), "anything", diagram.TypeClass)
	require.ErrorIs(t, err, generation.ErrGenerationFailed)

	after, _, _ := s.Current()
	assert.Equal(t, before, after)
	assert.Equal(t, diagram.StatusFailed, s.Viewer().State().Status)
}

func TestSessionEditEmptyClears(t *testing.T) {
	s := NewSession(newPipeline(llmtest.NewMockProvider("")), newViewer(t))
	enc := s.Edit("")
	assert.Empty(t, enc.Token)

	_, _, ok := s.Current()
	assert.False(t, ok)
	assert.Equal(t, viewer.DisplayEmpty, s.Viewer().State().Display)
}

// scripted replies per description and lets a test hold a call open.
type scripted struct {
	mu      sync.Mutex
	replies map[string]string
	gates   map[string]chan struct{}
	started chan string
}

func (s *scripted) Name() string { return "scripted" }

func (s *scripted) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	user := req.Messages[len(req.Messages)-1].Content
	s.mu.Lock()
	var key string
	for k := range s.replies {
		if strings.Contains(user, "story: "+k+".") {
			key = k
		}
	}
	gate := s.gates[key]
	reply := s.replies[key]
	s.mu.Unlock()

	s.started <- key
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return &llm.CompletionResponse{Content: reply, Model: "scripted"}, nil
}

func TestSessionDiscardsStaleResult(t *testing.T) {
	prov := &scripted{
		replies: map[string]string{
			"first":  "```plantuml\nclass First\n```",
			"second": "```plantuml\nclass Second\n```",
		},
		gates:   map[string]chan struct{}{"first": make(chan struct{})},
		started: make(chan string, 2),
	}
	rec := &memRecorder{}
	s := NewSession(newPipeline(prov), newViewer(t), WithRecorder(rec))

	firstDone := make(chan Outcome, 1)
	go func() {
		out, err := s.Generate(context.Background(), "first", diagram.TypeClass)
		assert.NoError(t, err)
		firstDone <- out
	}()
	require.Equal(t, "first", <-prov.started)

	out2, err := s.Generate(context.Background(), "second", diagram.TypeClass)
	require.NoError(t, err)
	require.Equal(t, "second", <-prov.started)
	assert.False(t, out2.Stale)

	close(prov.gates["first"])
	out1 := <-firstDone
	assert.True(t, out1.Stale)
	assert.Less(t, out1.RequestID, out2.RequestID)

	markup, _, _ := s.Current()
	assert.Equal(t, "class Second", markup)
	assert.Equal(t, diagram.StatusSucceeded, s.Viewer().State().Status)

	results := rec.results()
	assert.ElementsMatch(t, []string{ResultFound, ResultStale}, results)
}

type memRecorder struct {
	mu       sync.Mutex
	attempts []Attempt
}

func (m *memRecorder) RecordAttempt(_ context.Context, a Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts = append(m.attempts, a)
	return nil
}

func (m *memRecorder) results() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, a := range m.attempts {
		out = append(out, a.Result)
	}
	return out
}

func TestSessionRecordsFailure(t *testing.T) {
	mock := llmtest.NewMockProvider("")
	mock.Err = errors.New("quota")
	rec := &memRecorder{}
	s := NewSession(newPipeline(mock), newViewer(t), WithRecorder(rec))

	_, err := s.Generate(context.Background(), "x", diagram.TypeActivity)
	require.Error(t, err)
	require.Len(t, rec.attempts, 1)
	assert.Equal(t, diagram.StatusFailed, rec.attempts[0].Status)
	assert.Equal(t, diagram.TypeActivity, rec.attempts[0].Type)
}

func TestSessionSnapshotTracksLastGeneration(t *testing.T) {
	mock := llmtest.NewMockProvider("```plantuml\nactor User\nUser --> (Login)\n```")
	s := NewSession(newPipeline(mock), newViewer(t))

	_, err := s.Generate(context.Background(), "A user logs in", diagram.TypeUseCase)
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.Equal(t, "A user logs in", snap.Description)
	assert.Equal(t, diagram.TypeUseCase, snap.Type)
	assert.Equal(t, "actor User\nUser --> (Login)", snap.Markup)

	s.Edit("actor Admin")
	snap = s.Snapshot()
	assert.Equal(t, "A user logs in", snap.Description)
	assert.Equal(t, "actor Admin", snap.Markup)
	assert.Equal(t, plantuml.Token("actor Admin"), snap.Encoded.Token)
}
