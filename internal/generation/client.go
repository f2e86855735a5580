package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ziadkadry99/umlgen/internal/diagram"
	"github.com/ziadkadry99/umlgen/internal/llm"
	"github.com/ziadkadry99/umlgen/internal/logger"
	"github.com/ziadkadry99/umlgen/internal/prompt"
)

// ErrGenerationFailed is matched by every error returned from Generate.
var ErrGenerationFailed = errors.New("generation failed")

// ErrEmptyReply is the cause recorded when the model answers without text.
var ErrEmptyReply = errors.New("model returned an empty reply")

// Error wraps the underlying cause of a failed generation call.
type Error struct {
	Provider string
	Cause    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrGenerationFailed, e.Provider, e.Cause)
}

func (e *Error) Unwrap() []error {
	return []error{ErrGenerationFailed, e.Cause}
}

// StatusSink receives lifecycle transitions of a generation call.
type StatusSink interface {
	SetStatus(diagram.Status)
}

// StatusFunc adapts a function to StatusSink.
type StatusFunc func(diagram.Status)

func (f StatusFunc) SetStatus(s diagram.Status) { f(s) }

// Options tune the completion request.
type Options struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// Result is a successful reply plus its accounting.
type Result struct {
	Reply        string
	Model        string
	InputTokens  int
	OutputTokens int
	CostUSD      float64
	Duration     time.Duration
}

// Client sends composed prompts to a model. Each call is exactly one
// provider request: no retries, queuing or batching.
type Client struct {
	provider llm.Provider
	opts     Options
	log      *logger.Logger
}

// NewClient creates a generation client. A nil log disables logging.
func NewClient(provider llm.Provider, opts Options, log *logger.Logger) *Client {
	return &Client{provider: provider, opts: opts, log: log}
}

// Generate returns the raw reply text for promptText.
func (c *Client) Generate(ctx context.Context, promptText string, sink StatusSink) (string, error) {
	res, err := c.GenerateResult(ctx, promptText, sink)
	if err != nil {
		return "", err
	}
	return res.Reply, nil
}

// GenerateResult is Generate with usage accounting. sink may be nil.
func (c *Client) GenerateResult(ctx context.Context, promptText string, sink StatusSink) (*Result, error) {
	setStatus(sink, diagram.StatusGenerating)
	start := time.Now()

	resp, err := c.provider.Complete(ctx, llm.CompletionRequest{
		Model:       c.opts.Model,
		Messages:    prompt.Messages(promptText),
		MaxTokens:   c.opts.MaxTokens,
		Temperature: c.opts.Temperature,
	})
	if err == nil && strings.TrimSpace(resp.Content) == "" {
		err = ErrEmptyReply
	}
	elapsed := time.Since(start)

	log := c.log.WithFields(map[string]any{
		"provider":    c.provider.Name(),
		"duration_ms": elapsed.Milliseconds(),
	})
	if err != nil {
		setStatus(sink, diagram.StatusFailed)
		log.Error(err, "generation failed")
		return nil, &Error{Provider: c.provider.Name(), Cause: err}
	}

	model := resp.Model
	if model == "" {
		model = c.opts.Model
	}
	res := &Result{
		Reply:        resp.Content,
		Model:        model,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
		CostUSD:      llm.EstimateCost(model, resp.InputTokens, resp.OutputTokens),
		Duration:     elapsed,
	}
	setStatus(sink, diagram.StatusSucceeded)
	log.WithFields(map[string]any{
		"model":         model,
		"input_tokens":  res.InputTokens,
		"output_tokens": res.OutputTokens,
		"cost_usd":      res.CostUSD,
	}).Debug("generation succeeded")
	return res, nil
}

func setStatus(sink StatusSink, s diagram.Status) {
	if sink != nil {
		sink.SetStatus(s)
	}
}
