package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// DefaultGoogleBaseURL is the Gemini REST endpoint prefix.
const DefaultGoogleBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// GoogleProvider implements Provider using the Gemini generateContent API.
type GoogleProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewGoogleProvider creates a new Google Gemini provider.
func NewGoogleProvider(apiKey string, model string) *GoogleProvider {
	return &GoogleProvider{
		apiKey:  apiKey,
		model:   model,
		baseURL: DefaultGoogleBaseURL,
		client:  &http.Client{},
	}
}

// WithBaseURL points the provider at a different endpoint prefix.
func (p *GoogleProvider) WithBaseURL(baseURL string) *GoogleProvider {
	p.baseURL = strings.TrimRight(baseURL, "/")
	return p
}

func (p *GoogleProvider) Name() string {
	return "google"
}

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float64 `json:"temperature"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      *geminiContent `json:"content"`
		FinishReason string         `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

func (p *GoogleProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	model := req.modelOr(p.model)

	apiReq := geminiRequest{
		GenerationConfig: &geminiGenerationConfig{
			MaxOutputTokens: req.maxTokens(),
			Temperature:     req.Temperature,
		},
	}
	for _, msg := range req.Messages {
		part := geminiPart{Text: msg.Content}
		switch msg.Role {
		case RoleSystem:
			if apiReq.SystemInstruction == nil {
				apiReq.SystemInstruction = &geminiContent{}
			}
			apiReq.SystemInstruction.Parts = append(apiReq.SystemInstruction.Parts, part)
		case RoleAssistant:
			apiReq.Contents = append(apiReq.Contents, geminiContent{Role: "model", Parts: []geminiPart{part}})
		default:
			apiReq.Contents = append(apiReq.Contents, geminiContent{Role: "user", Parts: []geminiPart{part}})
		}
	}

	endpoint := fmt.Sprintf("%s/%s:generateContent?key=%s", p.baseURL, url.PathEscape(model), url.QueryEscape(p.apiKey))

	var apiResp geminiResponse
	if err := postJSON(ctx, p.client, "gemini", endpoint, nil, apiReq, &apiResp); err != nil {
		return nil, err
	}
	if apiResp.Error != nil {
		return nil, &APIError{Provider: "gemini", StatusCode: apiResp.Error.Code, Message: apiResp.Error.Message}
	}

	resp := &CompletionResponse{Model: model}
	if len(apiResp.Candidates) > 0 {
		first := apiResp.Candidates[0]
		resp.FinishReason = first.FinishReason
		if first.Content != nil {
			var b strings.Builder
			for _, part := range first.Content.Parts {
				b.WriteString(part.Text)
			}
			resp.Content = b.String()
		}
	}
	if apiResp.UsageMetadata != nil {
		resp.InputTokens = apiResp.UsageMetadata.PromptTokenCount
		resp.OutputTokens = apiResp.UsageMetadata.CandidatesTokenCount
	}
	return resp, nil
}
