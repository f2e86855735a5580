package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/umlgen/internal/generation"
	"github.com/ziadkadry99/umlgen/internal/llm/llmtest"
	"github.com/ziadkadry99/umlgen/internal/pipeline"
	"github.com/ziadkadry99/umlgen/internal/plantuml"
	"github.com/ziadkadry99/umlgen/internal/templates"
)

func newTestServer(reply string) (*Server, *llmtest.MockProvider) {
	mock := llmtest.NewMockProvider(reply)
	p := pipeline.New(templates.Default(), generation.NewClient(mock, generation.Options{}, nil), nil)
	return NewServer(p), mock
}

func call(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want mcp.TextContent", result.Content[0])
	}
	return text.Text
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		name     string
		tool     mcp.Tool
		wantName string
	}{
		{"generate_diagram", generateDiagramTool, "generate_diagram"},
		{"encode_diagram", encodeDiagramTool, "encode_diagram"},
		{"decode_diagram", decodeDiagramTool, "decode_diagram"},
		{"list_templates", listTemplatesTool, "list_templates"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestNewServer(t *testing.T) {
	srv, _ := newTestServer("")
	if srv == nil {
		t.Fatal("NewServer returned nil")
	}
	if srv.mcp == nil {
		t.Fatal("MCP server not initialized")
	}
}

func TestHandleGenerateDiagram(t *testing.T) {
	ctx := context.Background()

	t.Run("diagram found", func(t *testing.T) {
		srv, mock := newTestServer("```plantuml\nBob -> Alice : hello\n```")
		result, err := srv.handleGenerateDiagram(ctx, call(map[string]any{
			"description":  "Bob greets Alice",
			"diagram_type": "sequence",
		}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		text := resultText(t, result)
		if !strings.Contains(text, "Bob -> Alice : hello") {
			t.Errorf("missing markup in %q", text)
		}
		if !strings.Contains(text, plantuml.DefaultBaseURL+"SyfFKj2rKt3CoKnELR1Io4ZDoSa70000") {
			t.Errorf("missing URL in %q", text)
		}
		if !strings.HasPrefix(mock.LastPrompt(), "Generate sequence PlantUML code") {
			t.Errorf("prompt = %q", mock.LastPrompt())
		}
	})

	t.Run("absent", func(t *testing.T) {
		srv, _ := newTestServer("I cannot generate a diagram for that.")
		result, err := srv.handleGenerateDiagram(ctx, call(map[string]any{"description": "x"}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatal("absence is not a tool error")
		}
		if resultText(t, result) != noDiagramMessage {
			t.Errorf("text = %q", resultText(t, result))
		}
	})

	t.Run("missing description", func(t *testing.T) {
		srv, _ := newTestServer("")
		result, _ := srv.handleGenerateDiagram(ctx, call(map[string]any{}))
		if !result.IsError {
			t.Error("expected error for missing description")
		}
	})

	t.Run("blank description", func(t *testing.T) {
		srv, mock := newTestServer("")
		result, _ := srv.handleGenerateDiagram(ctx, call(map[string]any{"description": "   "}))
		if !result.IsError {
			t.Error("expected error for blank description")
		}
		if mock.CallCount() != 0 {
			t.Error("model should not be called")
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		srv, _ := newTestServer("")
		result, _ := srv.handleGenerateDiagram(ctx, call(map[string]any{"description": "x", "diagram_type": "gantt"}))
		if !result.IsError {
			t.Error("expected error for unknown type")
		}
	})

	t.Run("model failure", func(t *testing.T) {
		srv, mock := newTestServer("")
		mock.Err = errors.New("out of credits")
		result, _ := srv.handleGenerateDiagram(ctx, call(map[string]any{"description": "x"}))
		if !result.IsError {
			t.Error("expected tool error on model failure")
		}
	})
}

func TestHandleEncodeDecode(t *testing.T) {
	srv, _ := newTestServer("")
	ctx := context.Background()

	result, err := srv.handleEncodeDiagram(ctx, call(map[string]any{"markup": "Bob -> Alice : hello"}))
	if err != nil || result.IsError {
		t.Fatalf("encode failed: %v %v", err, result)
	}
	if !strings.Contains(resultText(t, result), "Token: SyfFKj2rKt3CoKnELR1Io4ZDoSa70000") {
		t.Errorf("encode text = %q", resultText(t, result))
	}

	for _, token := range []string{"SyfFKj2rKt3CoKnELR1Io4ZDoSa70000", plantuml.DefaultBaseURL + "SyfFKj2rKt3CoKnELR1Io4ZDoSa70000"} {
		result, err = srv.handleDecodeDiagram(ctx, call(map[string]any{"token": token}))
		if err != nil || result.IsError {
			t.Fatalf("decode %q failed: %v %v", token, err, result)
		}
		if got := resultText(t, result); got != "Bob -> Alice : hello" {
			t.Errorf("decode %q = %q", token, got)
		}
	}

	result, _ = srv.handleDecodeDiagram(ctx, call(map[string]any{"token": "@@@"}))
	if !result.IsError {
		t.Error("expected error for invalid token")
	}
}

func TestHandleListTemplates(t *testing.T) {
	srv, _ := newTestServer("")
	result, err := srv.handleListTemplates(context.Background(), call(nil))
	if err != nil || result.IsError {
		t.Fatalf("list failed: %v %v", err, result)
	}
	text := resultText(t, result)
	for _, name := range []string{"## class", "## sequence", "## usecase", "## activity", "## component"} {
		if !strings.Contains(text, name) {
			t.Errorf("missing %q", name)
		}
	}
}
