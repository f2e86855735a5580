package config

import (
	"github.com/ziadkadry99/umlgen/internal/plantuml"
	"github.com/ziadkadry99/umlgen/internal/viewer"
)

// FileName is the default configuration file.
const FileName = ".umlgen.yml"

// qualityPresets maps each provider+quality combination to its model.
var qualityPresets = map[ProviderType]map[QualityTier]string{
	ProviderGoogle: {
		QualityLite:   "gemini-2.0-flash-lite",
		QualityNormal: "gemini-2.0-flash",
		QualityMax:    "gemini-2.5-pro",
	},
	ProviderOpenAI: {
		QualityLite:   "gpt-4o-mini",
		QualityNormal: "gpt-4o",
		QualityMax:    "gpt-4o",
	},
	ProviderOpenRouter: {
		QualityLite:   "google/gemini-2.0-flash-lite-001",
		QualityNormal: "google/gemini-2.0-flash-001",
		QualityMax:    "anthropic/claude-sonnet-4.5",
	},
	ProviderAnthropic: {
		QualityLite:   "claude-haiku-4-5-20251001",
		QualityNormal: "claude-sonnet-4-5-20250929",
		QualityMax:    "claude-sonnet-4-5-20250929",
	},
	ProviderOllama: {
		QualityLite:   "llama3",
		QualityNormal: "llama3",
		QualityMax:    "llama3:70b",
	},
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:          ProviderGoogle,
		Model:             "gemini-2.0-flash",
		Quality:           QualityNormal,
		RequestsPerMinute: 15,
		MaxTokens:         4096,
		Temperature:       0.2,
		DataDir:           ".umlgen",
		Render:            RenderConfig{BaseURL: plantuml.DefaultBaseURL},
		Viewer:            viewer.DefaultOptions(),
		Server:            ServerConfig{Port: 8080},
		Log:               LogConfig{Level: "info", Format: "console"},
	}
}

// PresetModel returns the model for the given provider and tier.
// Returns the normal Google model if the combination is not found.
func PresetModel(provider ProviderType, tier QualityTier) string {
	if tiers, ok := qualityPresets[provider]; ok {
		if model, ok := tiers[tier]; ok {
			return model
		}
	}
	return qualityPresets[ProviderGoogle][QualityNormal]
}
