package config

import "github.com/ziadkadry99/umlgen/internal/viewer"

// QualityTier selects the preset model for a provider.
type QualityTier string

const (
	QualityLite   QualityTier = "lite"
	QualityNormal QualityTier = "normal"
	QualityMax    QualityTier = "max"
)

// ProviderType identifies an LLM provider.
type ProviderType string

const (
	ProviderGoogle     ProviderType = "google"
	ProviderOpenAI     ProviderType = "openai"
	ProviderOpenRouter ProviderType = "openrouter"
	ProviderAnthropic  ProviderType = "anthropic"
	ProviderOllama     ProviderType = "ollama"
)

// Providers lists the supported providers in wizard order.
var Providers = []ProviderType{ProviderGoogle, ProviderOpenAI, ProviderOpenRouter, ProviderAnthropic, ProviderOllama}

// Config is the top-level umlgen configuration, corresponding to .umlgen.yml.
type Config struct {
	Provider          ProviderType   `yaml:"provider" koanf:"provider" validate:"required,oneof=google openai openrouter anthropic ollama"`
	Model             string         `yaml:"model" koanf:"model" validate:"required"`
	Quality           QualityTier    `yaml:"quality" koanf:"quality" validate:"omitempty,oneof=lite normal max"`
	RequestsPerMinute float64        `yaml:"requests_per_minute" koanf:"requests_per_minute" validate:"gte=0"`
	MaxTokens         int            `yaml:"max_tokens" koanf:"max_tokens" validate:"gte=0"`
	Temperature       float32        `yaml:"temperature" koanf:"temperature" validate:"gte=0,lte=2"`
	TemplatesFile     string         `yaml:"templates_file" koanf:"templates_file"`
	DataDir           string         `yaml:"data_dir" koanf:"data_dir" validate:"required"`
	Render            RenderConfig   `yaml:"render" koanf:"render"`
	Viewer            viewer.Options `yaml:"viewer" koanf:"viewer"`
	Server            ServerConfig   `yaml:"server" koanf:"server"`
	Log               LogConfig      `yaml:"log" koanf:"log"`
}

// RenderConfig points at the PlantUML rendering server.
type RenderConfig struct {
	BaseURL string `yaml:"base_url" koanf:"base_url" validate:"required,url"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int  `yaml:"port" koanf:"port" validate:"gte=0,lte=65535"`
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level" koanf:"level" validate:"omitempty,oneof=trace debug info warn error"`
	Format string `yaml:"format" koanf:"format" validate:"omitempty,oneof=console json"`
}
