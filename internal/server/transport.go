package server

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/server"
)

// TransportStarter is the common abstraction over the supported MCP
// transports (STDIO, SSE, StreamableHTTP).
//
// Implementations must handle:
//   - Starting the transport and establishing communication with the MCP server
//   - Gracefully shutting down the transport and cleaning up resources
//   - Reporting the transport type for logging and diagnostics
type TransportStarter interface {
	// Start initializes and starts the transport with the given MCP server.
	// It blocks until the transport stops or an error occurs.
	Start(ctx context.Context, mcpServer *server.MCPServer) error

	// Shutdown gracefully shuts down the transport and cleans up resources.
	Shutdown(ctx context.Context) error

	// Type returns the transport type name for logging and diagnostics.
	// Valid values are: "stdio", "sse", "streamablehttp"
	Type() string
}

// StdioTransport serves the MCP protocol over standard input/output,
// suitable for local process-based integrations.
//
// This transport:
//   - Reads MCP requests from stdin
//   - Writes MCP responses to stdout
//   - Leaves stderr for logs (to avoid protocol interference)
//   - Requires no network configuration (host/port)
type StdioTransport struct{}

// Start serves the MCP server over STDIO. Blocks until the client
// disconnects.
func (s *StdioTransport) Start(ctx context.Context, mcpServer *server.MCPServer) error {
	return server.ServeStdio(mcpServer)
}

// Shutdown is a no-op for STDIO; stdin/stdout are managed by the OS and
// close with the process.
func (s *StdioTransport) Shutdown(ctx context.Context) error {
	return nil
}

// Type returns "stdio".
func (s *StdioTransport) Type() string {
	return "stdio"
}

// SSETransport serves the MCP protocol over HTTP with Server-Sent Events,
// suitable for web-based clients. It requires network configuration and
// supports multiple concurrent client sessions.
type SSETransport struct {
	address string
	server  *server.SSEServer
}

// Start creates the SSE server and binds it to the configured address.
// Blocks until the server stops or an error occurs.
func (s *SSETransport) Start(ctx context.Context, mcpServer *server.MCPServer) error {
	s.server = server.NewSSEServer(mcpServer)
	return s.server.Start(s.address)
}

// Shutdown stops the HTTP server and closes all active client connections.
func (s *SSETransport) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Type returns "sse".
func (s *SSETransport) Type() string {
	return "sse"
}

// StreamableHTTPTransport serves the MCP protocol over the StreamableHTTP
// transport: HTTP POST for client-to-server messages with streamed
// responses. It requires network configuration and supports multiple
// concurrent client sessions.
type StreamableHTTPTransport struct {
	address string
	server  *server.StreamableHTTPServer
}

// Start creates the StreamableHTTP server and binds it to the configured
// address. Blocks until the server stops or an error occurs.
func (s *StreamableHTTPTransport) Start(ctx context.Context, mcpServer *server.MCPServer) error {
	s.server = server.NewStreamableHTTPServer(mcpServer)
	return s.server.Start(s.address)
}

// Shutdown stops the HTTP server and closes all active client connections.
func (s *StreamableHTTPTransport) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Type returns "streamablehttp".
func (s *StreamableHTTPTransport) Type() string {
	return "streamablehttp"
}

// transportConfig is the slice of configuration NewTransport needs. Defined
// as an interface so tests can supply fakes.
type transportConfig interface {
	GetTransportType() string
	GetPort() int
	GetTransportAddress() string
}

// NewTransport creates the appropriate transport based on configuration.
// Network transports (SSE and StreamableHTTP) must have a port configured;
// unknown transport types are an error.
func NewTransport(cfg transportConfig) (TransportStarter, error) {
	switch cfg.GetTransportType() {
	case "stdio":
		return &StdioTransport{}, nil
	case "sse":
		if cfg.GetPort() == 0 {
			return nil, fmt.Errorf("port must be configured for SSE transport")
		}
		return &SSETransport{
			address: cfg.GetTransportAddress(),
		}, nil
	case "streamablehttp":
		if cfg.GetPort() == 0 {
			return nil, fmt.Errorf("port must be configured for StreamableHTTP transport")
		}
		return &StreamableHTTPTransport{
			address: cfg.GetTransportAddress(),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported transport type: %s (must be one of: stdio, sse, streamablehttp)", cfg.GetTransportType())
	}
}
