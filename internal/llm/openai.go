package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// OpenRouterBaseURL is the OpenAI-compatible OpenRouter endpoint.
const OpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenAIProvider implements Provider for OpenAI and any OpenAI-compatible
// Chat Completions endpoint such as OpenRouter.
type OpenAIProvider struct {
	name   string
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates a provider for the OpenAI API.
func NewOpenAIProvider(apiKey string, model string) *OpenAIProvider {
	return NewOpenAICompatibleProvider("openai", apiKey, "", model)
}

// NewOpenRouterProvider creates a provider for the OpenRouter API.
func NewOpenRouterProvider(apiKey string, model string) *OpenAIProvider {
	return NewOpenAICompatibleProvider("openrouter", apiKey, OpenRouterBaseURL, model)
}

// NewOpenAICompatibleProvider creates a provider talking to baseURL. An
// empty baseURL keeps the go-openai default.
func NewOpenAICompatibleProvider(name, apiKey, baseURL, model string) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIProvider{
		name:   name,
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (p *OpenAIProvider) Name() string {
	return p.name
}

func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.modelOr(p.model),
		Messages:    messages,
		MaxTokens:   req.maxTokens(),
		Temperature: float32(req.Temperature),
	})
	if err != nil {
		return nil, err
	}

	out := &CompletionResponse{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		Model:        resp.Model,
	}
	if len(resp.Choices) > 0 {
		out.Content = resp.Choices[0].Message.Content
		out.FinishReason = string(resp.Choices[0].FinishReason)
	}
	return out, nil
}
