package llm

// Role represents the role of a message sender in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single turn sent to the model.
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest contains the parameters for one completion call.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// CompletionResponse is the text reply plus usage accounting.
type CompletionResponse struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Model        string
	FinishReason string
}

// defaultMaxTokens bounds replies when the request leaves MaxTokens unset.
// PlantUML diagrams rarely exceed a couple of thousand tokens.
const defaultMaxTokens = 4096

func (r CompletionRequest) maxTokens() int {
	if r.MaxTokens > 0 {
		return r.MaxTokens
	}
	return defaultMaxTokens
}

func (r CompletionRequest) modelOr(fallback string) string {
	if r.Model != "" {
		return r.Model
	}
	return fallback
}
