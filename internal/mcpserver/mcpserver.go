// Package mcpserver exposes unused-code checks as Model Context Protocol
// tools.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/ucr/internal/service/analysis"
)

// Server wraps the MCP server and registers the ucr tools.
type Server struct {
	server *mcp.Server
	svc    *analysis.Service
}

// NewServer creates a new MCP server backed by svc.
func NewServer(version string, svc *analysis.Service) *Server {
	if version == "" {
		version = "dev"
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "ucr",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server, svc: svc}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "check_unused_code",
		Description: describeCheck(),
	}, s.handleCheck)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "check_unused_directory",
		Description: describeDirectory(),
	}, s.handleDirectory)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_dialects",
		Description: describeDialects(),
	}, s.handleDialects)
}
