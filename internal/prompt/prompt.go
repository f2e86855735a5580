package prompt

import (
	"fmt"
	"strings"

	"github.com/ziadkadry99/umlgen/internal/diagram"
	"github.com/ziadkadry99/umlgen/internal/llm"
	"github.com/ziadkadry99/umlgen/internal/templates"
)

const systemPrompt = `You are a software architect who writes PlantUML. You translate plain-language descriptions of software systems into correct, current PlantUML diagrams.`

const userPromptTemplate = `Generate %s PlantUML code for the following story: %s.

Return only the UML code inside a single ` + "```plantuml" + ` fenced block, with no additional text, no other markdown and no explanations.

Learn updated syntax from the following diagram templates: %s`

// Compose builds the generation prompt for a description and diagram type.
// The diagram type is interpolated as given; unknown types are not rejected.
func Compose(description string, t diagram.Type, store *templates.Store) string {
	refs := "{}"
	if store != nil {
		refs = store.JSON()
	}
	return fmt.Sprintf(userPromptTemplate, string(t), strings.TrimSpace(description), refs)
}

// Messages wraps a composed prompt for an LLM completion request.
func Messages(promptText string) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: promptText},
	}
}
