package llm

// modelPricing holds per-model pricing in USD per 1M tokens.
type modelPricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

var priceTable = map[string]modelPricing{
	"gemini-2.0-flash":      {InputPerMillion: 0.10, OutputPerMillion: 0.40},
	"gemini-2.0-flash-exp":  {InputPerMillion: 0.10, OutputPerMillion: 0.40},
	"gemini-2.0-flash-lite": {InputPerMillion: 0.075, OutputPerMillion: 0.30},
	"gemini-2.5-pro":        {InputPerMillion: 1.25, OutputPerMillion: 10.00},
	"gemini-1.5-pro":        {InputPerMillion: 1.25, OutputPerMillion: 5.00},

	"gpt-4o":      {InputPerMillion: 2.50, OutputPerMillion: 10.00},
	"gpt-4o-mini": {InputPerMillion: 0.15, OutputPerMillion: 0.60},

	"claude-sonnet-4-5-20250929": {InputPerMillion: 3.00, OutputPerMillion: 15.00},
	"claude-haiku-4-5-20251001":  {InputPerMillion: 0.80, OutputPerMillion: 4.00},
}

// EstimateCost returns the estimated cost in USD for the given model and token counts.
// Returns 0 if the model is not found in the price table (local models are free).
func EstimateCost(model string, inputTokens, outputTokens int) float64 {
	pricing, ok := priceTable[model]
	if !ok {
		return 0
	}
	return (float64(inputTokens)*pricing.InputPerMillion + float64(outputTokens)*pricing.OutputPerMillion) / 1_000_000.0
}

// EstimateTokens approximates a token count at 4 characters per token.
func EstimateTokens(text string) int {
	n := len(text) / 4
	if n == 0 && len(text) > 0 {
		return 1
	}
	return n
}
