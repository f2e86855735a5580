package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/umlgen/internal/diagram"
	"github.com/ziadkadry99/umlgen/internal/plantuml"
)

// noDiagramMessage is returned when the model replied without a diagram.
const noDiagramMessage = "The model did not return a PlantUML diagram for this description. Try rephrasing it."

// handleGenerateDiagram runs the full generation pipeline.
func (s *Server) handleGenerateDiagram(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	description, err := request.RequireString("description")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: description"), nil
	}
	t := diagram.ParseType(request.GetString("diagram_type", ""))
	if !t.Known() {
		return mcp.NewToolResultError(fmt.Sprintf("unknown diagram_type %q", t)), nil
	}

	markup, err := s.pipeline.GenerateDiagram(ctx, description, t)
	if err != nil {
		if errors.Is(err, diagram.ErrEmptyDescription) {
			return mcp.NewToolResultError("description must not be empty"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("generation failed: %v", err)), nil
	}

	text, ok := markup.Text()
	if !ok {
		return mcp.NewToolResultText(noDiagramMessage), nil
	}
	return mcp.NewToolResultText(formatDiagram(text, s.pipeline.ToResource(text))), nil
}

// handleEncodeDiagram encodes markup without calling the model.
func (s *Server) handleEncodeDiagram(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	markup, err := request.RequireString("markup")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: markup"), nil
	}
	enc := s.pipeline.ToResource(markup)
	return mcp.NewToolResultText(fmt.Sprintf("Token: %s\nURL: %s", enc.Token, enc.URL)), nil
}

// handleDecodeDiagram reverses encode_diagram.
func (s *Server) handleDecodeDiagram(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	token, err := request.RequireString("token")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: token"), nil
	}
	// Accept a full URL as well as a bare token.
	if i := strings.LastIndex(token, "/"); i >= 0 {
		token = token[i+1:]
	}
	markup, err := plantuml.Decode(token)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid token: %v", err)), nil
	}
	return mcp.NewToolResultText(markup), nil
}

// handleListTemplates returns every template as a fenced block.
func (s *Server) handleListTemplates(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store := s.pipeline.Templates()
	var b strings.Builder
	for _, t := range store.Types() {
		tmpl, _ := store.Get(t)
		fmt.Fprintf(&b, "## %s\n\n```plantuml\n%s\n```\n\n", t, strings.TrimRight(tmpl, "\n"))
	}
	return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
}

func formatDiagram(markup string, enc plantuml.Encoded) string {
	var b strings.Builder
	b.WriteString("```plantuml\n")
	b.WriteString(markup)
	b.WriteString("\n```\n\n")
	fmt.Fprintf(&b, "Rendered: %s\n", enc.URL)
	return b.String()
}
