package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// answers are the wizard's collected choices.
type answers struct {
	Provider          ProviderType
	Quality           QualityTier
	Model             string
	RequestsPerMinute float64
	RenderBaseURL     string
	DataDir           string
}

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to umlgen! Let's configure diagram generation.")
	fmt.Println()

	var a answers
	defaults := DefaultConfig()

	// 1. Provider selection.
	items := make([]string, len(Providers))
	for i, p := range Providers {
		items[i] = string(p)
	}
	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: items,
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	a.Provider = ProviderType(providerStr)

	// 2. Quality tier.
	qualityPrompt := promptui.Select{
		Label: "Select quality tier",
		Items: []string{
			"lite   - fastest and cheapest",
			"normal - balanced",
			"max    - best diagrams",
		},
		CursorPos: 1,
	}
	qualityIdx, _, err := qualityPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("quality selection: %w", err)
	}
	a.Quality = []QualityTier{QualityLite, QualityNormal, QualityMax}[qualityIdx]

	// 3. Model, prefilled from the preset.
	modelPrompt := promptui.Prompt{
		Label:   "Model",
		Default: PresetModel(a.Provider, a.Quality),
	}
	if a.Model, err = modelPrompt.Run(); err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}

	// 4. Rate limit.
	rpmPrompt := promptui.Prompt{
		Label:   "Requests per minute (0 for unlimited)",
		Default: strconv.FormatFloat(defaults.RequestsPerMinute, 'f', -1, 64),
		Validate: func(s string) error {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil || v < 0 {
				return fmt.Errorf("enter a non-negative number")
			}
			return nil
		},
	}
	rpmStr, err := rpmPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("requests per minute: %w", err)
	}
	a.RequestsPerMinute, _ = strconv.ParseFloat(strings.TrimSpace(rpmStr), 64)

	// 5. Rendering server.
	renderPrompt := promptui.Prompt{
		Label:   "PlantUML server URL",
		Default: defaults.Render.BaseURL,
		Validate: func(s string) error {
			u, err := url.Parse(s)
			if err != nil || u.Scheme == "" || u.Host == "" {
				return fmt.Errorf("enter an absolute URL")
			}
			return nil
		},
	}
	if a.RenderBaseURL, err = renderPrompt.Run(); err != nil {
		return nil, fmt.Errorf("render server: %w", err)
	}

	// 6. Data directory.
	dataPrompt := promptui.Prompt{
		Label:   "Data directory for generation history",
		Default: defaults.DataDir,
	}
	if a.DataDir, err = dataPrompt.Run(); err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	cfg := a.config()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Check for API key.
	if envVar := APIKeyEnvVar(cfg.Provider); envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: Set %s in your environment before running umlgen generate.\n", envVar)
	}

	if path == "" {
		path = FileName
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

// config builds a Config from the answers on top of the defaults.
func (a answers) config() *Config {
	cfg := DefaultConfig()
	cfg.Provider = a.Provider
	cfg.Quality = a.Quality
	cfg.Model = strings.TrimSpace(a.Model)
	if cfg.Model == "" {
		cfg.Model = PresetModel(a.Provider, a.Quality)
	}
	cfg.RequestsPerMinute = a.RequestsPerMinute
	if s := strings.TrimSpace(a.RenderBaseURL); s != "" {
		cfg.Render.BaseURL = s
	}
	if s := strings.TrimSpace(a.DataDir); s != "" {
		cfg.DataDir = s
	}
	return cfg
}
