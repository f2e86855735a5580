package cmd

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/ziadkadry99/umlgen/internal/config"
	"github.com/ziadkadry99/umlgen/internal/db"
	"github.com/ziadkadry99/umlgen/internal/diagram"
	"github.com/ziadkadry99/umlgen/internal/generation"
	"github.com/ziadkadry99/umlgen/internal/history"
	"github.com/ziadkadry99/umlgen/internal/llm"
	"github.com/ziadkadry99/umlgen/internal/pipeline"
	"github.com/ziadkadry99/umlgen/internal/plantuml"
	"github.com/ziadkadry99/umlgen/internal/templates"
	"github.com/ziadkadry99/umlgen/internal/viewer"
)

var (
	errorLabel   = color.New(color.FgRed, color.Bold).SprintFunc()
	warnLabel    = color.New(color.FgYellow, color.Bold).SprintFunc()
	successLabel = color.New(color.FgGreen, color.Bold).SprintFunc()
	urlText      = color.New(color.FgCyan, color.Underline).SprintFunc()
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `umlgen init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	if err := setupLogger(cfg.Log); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newProvider creates the configured LLM provider behind the rate limiter.
func newProvider(cfg *config.Config) (llm.Provider, error) {
	p, err := llm.NewProvider(string(cfg.Provider), cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("creating %s provider: %w", cfg.Provider, err)
	}
	return llm.NewRateLimitedProvider(p, int(math.Ceil(cfg.RequestsPerMinute))), nil
}

// loadTemplates returns the configured templates, or the built-in set.
func loadTemplates(cfg *config.Config) (*templates.Store, error) {
	if cfg.TemplatesFile == "" {
		return templates.Default(), nil
	}
	store, err := templates.Load(cfg.TemplatesFile)
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}
	return store, nil
}

// newPipeline wires templates, the generation client and the encoder.
func newPipeline(cfg *config.Config) (*pipeline.Pipeline, error) {
	store, err := loadTemplates(cfg)
	if err != nil {
		return nil, err
	}
	provider, err := newProvider(cfg)
	if err != nil {
		return nil, err
	}
	client := generation.NewClient(provider, generation.Options{
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: float64(cfg.Temperature),
	}, appLog)
	return pipeline.New(store, client, plantuml.NewEncoder(cfg.Render.BaseURL)), nil
}

// newSession builds a pipeline plus viewer. The returned cleanup closes
// the history database when one was opened.
func newSession(cfg *config.Config, withHistory bool) (*pipeline.Session, *history.Store, func(), error) {
	p, err := newPipeline(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	v, err := viewer.New(cfg.Viewer)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("viewer: %w", err)
	}

	opts := []pipeline.SessionOption{pipeline.WithLogger(appLog)}
	cleanup := func() {}
	var hist *history.Store
	if withHistory {
		h, closeDB, err := openHistory(cfg)
		if err != nil {
			appLog.Warn(fmt.Sprintf("history disabled: %v", err))
		} else {
			hist = h
			cleanup = closeDB
			opts = append(opts, pipeline.WithRecorder(hist))
		}
	}
	return pipeline.NewSession(p, v, opts...), hist, cleanup, nil
}

// openHistory opens the history database under the data directory.
func openHistory(cfg *config.Config) (*history.Store, func(), error) {
	database, err := db.OpenDir(cfg.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening history database: %w", err)
	}
	return history.NewStore(database), func() { database.Close() }, nil
}

// parseType validates a --type flag value.
func parseType(s string) (diagram.Type, error) {
	t := diagram.ParseType(s)
	if !t.Known() {
		names := make([]string, 0, len(diagram.Types()))
		for _, k := range diagram.Types() {
			names = append(names, string(k))
		}
		return "", fmt.Errorf("unknown diagram type %q (want one of %s)", s, strings.Join(names, ", "))
	}
	return t, nil
}

// readInput returns args joined by spaces, or stdin when args is empty
// or a single "-".
func readInput(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}

func writeFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
