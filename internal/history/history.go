// Package history keeps an audit log of generation attempts. Entries hold
// metadata only: the diagrams themselves are never persisted.
package history

import (
	"time"

	"github.com/ziadkadry99/umlgen/internal/diagram"
)

// Entry is one recorded generation attempt.
type Entry struct {
	ID           string         `json:"id"`
	RequestID    uint64         `json:"request_id"`
	Type         diagram.Type   `json:"diagram_type"`
	Status       diagram.Status `json:"status"`
	Outcome      string         `json:"outcome"`
	Model        string         `json:"model,omitempty"`
	InputTokens  int            `json:"input_tokens"`
	OutputTokens int            `json:"output_tokens"`
	CostUSD      float64        `json:"cost_usd"`
	Duration     time.Duration  `json:"duration_ns"`
	Error        string         `json:"error,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// Summary aggregates the history.
type Summary struct {
	Total    int            `json:"total"`
	Failures int            `json:"failures"`
	Absent   int            `json:"absent"`
	CostUSD  float64        `json:"cost_usd"`
	ByType   map[string]int `json:"by_type"`
}
