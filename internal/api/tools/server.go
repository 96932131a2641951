package tools

import (
	"time"

	"github.com/mark3labs/mcp-go/server"
)

// NewServer creates an MCP server exposing every tool of at.
func NewServer(at *APITools, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"devstack",
		version,
		server.WithToolCapabilities(true),
	)
	s.AddTools(at.ServerTools()...)
	return s
}

// NewSSEServer wraps s for the SSE transport at baseURL.
func NewSSEServer(s *server.MCPServer, baseURL string) *server.SSEServer {
	return server.NewSSEServer(
		s,
		server.WithBaseURL(baseURL),
		server.WithSSEEndpoint("/sse"),
		server.WithMessageEndpoint("/message"),
		server.WithKeepAlive(true),
		server.WithKeepAliveInterval(30*time.Second),
	)
}
