package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/umlgen/internal/diagram"
)

func diagramTypeNames() []string {
	types := diagram.Types()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return names
}

// generateDiagramTool defines the generate_diagram MCP tool.
var generateDiagramTool = mcp.NewTool("generate_diagram",
	mcp.WithDescription("Generate a PlantUML diagram from a natural-language description. Returns the PlantUML source and a rendering URL."),
	mcp.WithString("description",
		mcp.Required(),
		mcp.Description("Natural language description of the system or scenario"),
	),
	mcp.WithString("diagram_type",
		mcp.Description("Kind of UML diagram (default class)"),
		mcp.Enum(diagramTypeNames()...),
	),
)

// encodeDiagramTool defines the encode_diagram MCP tool.
var encodeDiagramTool = mcp.NewTool("encode_diagram",
	mcp.WithDescription("Encode PlantUML source into a PlantUML server token and rendering URL."),
	mcp.WithString("markup",
		mcp.Required(),
		mcp.Description("PlantUML source"),
	),
)

// decodeDiagramTool defines the decode_diagram MCP tool.
var decodeDiagramTool = mcp.NewTool("decode_diagram",
	mcp.WithDescription("Decode a PlantUML server token back into PlantUML source."),
	mcp.WithString("token",
		mcp.Required(),
		mcp.Description("Token from a PlantUML server URL"),
	),
)

// listTemplatesTool defines the list_templates MCP tool.
var listTemplatesTool = mcp.NewTool("list_templates",
	mcp.WithDescription("List the reference PlantUML templates used to steer generation, keyed by diagram type."),
)
