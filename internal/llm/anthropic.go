package llm

import (
	"context"
	"net/http"
	"strings"
)

// DefaultAnthropicURL is the Messages API endpoint.
const DefaultAnthropicURL = "https://api.anthropic.com/v1/messages"

// AnthropicProvider implements Provider using the Anthropic Messages API via direct HTTP.
type AnthropicProvider struct {
	apiKey string
	model  string
	url    string
	client *http.Client
}

// NewAnthropicProvider creates a new Anthropic provider.
func NewAnthropicProvider(apiKey string, model string) *AnthropicProvider {
	return &AnthropicProvider{
		apiKey: apiKey,
		model:  model,
		url:    DefaultAnthropicURL,
		client: &http.Client{},
	}
}

// WithURL overrides the Messages API endpoint.
func (p *AnthropicProvider) WithURL(url string) *AnthropicProvider {
	p.url = url
	return p
}

func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *AnthropicProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	apiReq := anthropicRequest{
		Model:       req.modelOr(p.model),
		MaxTokens:   req.maxTokens(),
		Temperature: req.Temperature,
	}

	// The Messages API takes system text as a top-level field.
	var system []string
	for _, msg := range req.Messages {
		if msg.Role == RoleSystem {
			system = append(system, msg.Content)
			continue
		}
		apiReq.Messages = append(apiReq.Messages, anthropicMessage{Role: string(msg.Role), Content: msg.Content})
	}
	apiReq.System = strings.Join(system, "\n\n")

	headers := map[string]string{
		"x-api-key":         p.apiKey,
		"anthropic-version": "2023-06-01",
	}

	var apiResp anthropicResponse
	if err := postJSON(ctx, p.client, "anthropic", p.url, headers, apiReq, &apiResp); err != nil {
		return nil, err
	}
	if apiResp.Error != nil {
		return nil, &APIError{Provider: "anthropic", Message: apiResp.Error.Type + ": " + apiResp.Error.Message}
	}

	var b strings.Builder
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}

	return &CompletionResponse{
		Content:      b.String(),
		InputTokens:  apiResp.Usage.InputTokens,
		OutputTokens: apiResp.Usage.OutputTokens,
		Model:        apiResp.Model,
		FinishReason: apiResp.StopReason,
	}, nil
}
