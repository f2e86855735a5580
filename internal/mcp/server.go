package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/umlgen/internal/pipeline"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes diagram generation tools.
type Server struct {
	pipeline *pipeline.Pipeline
	mcp      *server.MCPServer
}

// NewServer creates a new MCP server backed by p.
func NewServer(p *pipeline.Pipeline) *Server {
	s := &Server{pipeline: p}

	s.mcp = server.NewMCPServer(
		"umlgen",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(generateDiagramTool, s.handleGenerateDiagram)
	s.mcp.AddTool(encodeDiagramTool, s.handleEncodeDiagram)
	s.mcp.AddTool(decodeDiagramTool, s.handleDecodeDiagram)
	s.mcp.AddTool(listTemplatesTool, s.handleListTemplates)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
