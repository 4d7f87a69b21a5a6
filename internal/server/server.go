// Package server provides the MCP server core implementation, handling protocol
// communication, tool registration, and request routing.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/fastapi-docs/mcp-server/internal/cache"
	"github.com/fastapi-docs/mcp-server/internal/config"
	"github.com/fastapi-docs/mcp-server/internal/docs"
	"github.com/fastapi-docs/mcp-server/internal/fetcher"
	"github.com/fastapi-docs/mcp-server/internal/logger"
)

// Server represents the MCP server instance with all its dependencies.
// It coordinates the MCP protocol handling, documentation fetching, and
// tool execution.
type Server struct {
	config    *config.Config
	service   *docs.Service
	fetcher   *fetcher.CachingFetcher
	logger    *slog.Logger
	mcpServer *server.MCPServer
	transport TransportStarter
}

// NewServer creates a new MCP server instance with the provided configuration and logger.
// The server is not started until Start() is called.
//
// Parameters:
//   - cfg: Configuration for the server
//   - logger: Structured logger for logging
//
// Returns a configured Server instance ready to be started.
// Returns an error if transport creation fails.
func NewServer(cfg *config.Config, log *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if log == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	// Validate transport configuration
	if err := cfg.ValidateTransport(); err != nil {
		return nil, fmt.Errorf("invalid transport configuration: %w", err)
	}

	// Create MCP server instance
	mcpServer := server.NewMCPServer(
		"fastapi-docs-mcp-server",
		"1.0.0",
	)

	// Page cache with configured TTL
	store, err := cache.NewStore(time.Duration(cfg.CacheTTL)*time.Second, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	// HTTP client with rate limiting, wrapped in the caching fetcher
	client := fetcher.NewHTTPClient(time.Duration(cfg.FetchTimeout)*time.Second, cfg.MaxConcurrent)

	baseURL := strings.TrimRight(cfg.DocsBaseURL, "/")
	sitemapURL := baseURL + cfg.SitemapPath

	zerologLogger := logger.NewZerolog(cfg.LogLevel, os.Stderr)
	cachingFetcher := fetcher.NewCachingFetcher(client, store, sitemapURL, zerologLogger)

	// Documentation query operations
	service := docs.NewService(cachingFetcher, baseURL, cfg.MaxContentLength, log)

	// Create transport based on configuration
	transport, err := NewTransport(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}

	return &Server{
		config:    cfg,
		service:   service,
		fetcher:   cachingFetcher,
		logger:    log,
		mcpServer: mcpServer,
		transport: transport,
	}, nil
}

// Initialize warms up the sitemap so the first search does not pay the
// fetch cost. Warm-up failure is not fatal: the sitemap is re-fetched on
// demand and every operation degrades to an informative message when the
// site is unreachable.
//
// Parameters:
//   - ctx: Context for cancellation and timeout control
func (s *Server) Initialize(ctx context.Context) {
	s.logger.Info("Starting server initialization", "base_url", s.config.DocsBaseURL)

	urls := s.fetcher.Sitemap(ctx)
	if len(urls) == 0 {
		s.logger.Warn("Sitemap warm-up failed, continuing without it")
		return
	}

	s.logger.Info("Sitemap warmed up", "pages", len(urls))
}

// RegisterTools registers all MCP tools with the server.
// This should be called before Start().
func (s *Server) RegisterTools() error {
	s.logger.Info("Registering MCP tools")

	getDocsTool := mcp.NewTool(
		"get_fastapi_docs",
		mcp.WithDescription("Get FastAPI documentation for a specific page path. Returns the page content as readable text."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Documentation page path (e.g., 'tutorial/first-steps')"),
		),
	)
	s.mcpServer.AddTool(getDocsTool, s.handleGetDocs)

	searchTool := mcp.NewTool(
		"search_fastapi_docs",
		mcp.WithDescription("Search FastAPI documentation by keyword. Returns the best matching page's content plus related pages."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query (keyword or topic)"),
		),
	)
	s.mcpServer.AddTool(searchTool, s.handleSearch)

	listPagesTool := mcp.NewTool(
		"list_fastapi_pages",
		mcp.WithDescription("List all available FastAPI documentation pages, organized by category."),
	)
	s.mcpServer.AddTool(listPagesTool, s.handleListPages)

	getExampleTool := mcp.NewTool(
		"get_fastapi_example",
		mcp.WithDescription("Get code examples from FastAPI documentation for a specific topic."),
		mcp.WithString("topic",
			mcp.Required(),
			mcp.Description("Topic to find examples for (e.g., 'cors', 'websockets', 'testing')"),
		),
	)
	s.mcpServer.AddTool(getExampleTool, s.handleGetExample)

	compareTool := mcp.NewTool(
		"compare_fastapi_approaches",
		mcp.WithDescription("Compare different FastAPI approaches for a topic, side by side with code examples."),
		mcp.WithString("topic",
			mcp.Required(),
			mcp.Description("Comparison topic (e.g., 'sync-async', 'auth-methods', 'testing')"),
		),
	)
	s.mcpServer.AddTool(compareTool, s.handleCompare)

	bestPracticesTool := mcp.NewTool(
		"get_fastapi_best_practices",
		mcp.WithDescription("Get aggregated best-practice documentation for a FastAPI topic."),
		mcp.WithString("topic",
			mcp.Required(),
			mcp.Description("Topic to aggregate (e.g., 'security', 'testing', 'dependencies')"),
		),
	)
	s.mcpServer.AddTool(bestPracticesTool, s.handleBestPractices)

	s.logger.Info("MCP tools registered successfully", "count", 6)
	return nil
}

// Start starts the MCP server and begins listening for client connections.
// This is a blocking call that runs until the context is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting MCP server", "transport", s.transport.Type())
	if addr := s.config.GetTransportAddress(); addr != "" {
		s.logger.Info("Transport address", "address", addr)
	}

	if err := s.transport.Start(ctx, s.mcpServer); err != nil {
		s.logger.Error("MCP server error", "error", err, "transport", s.transport.Type())
		return fmt.Errorf("MCP server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server and cleans up resources.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server", "transport", s.transport.Type())

	if err := s.transport.Shutdown(ctx); err != nil {
		s.logger.Error("Error during transport shutdown", "error", err, "transport", s.transport.Type())
		return fmt.Errorf("transport shutdown error: %w", err)
	}

	s.logger.Info("Server shutdown complete", "transport", s.transport.Type())
	return nil
}

// handleGetDocs handles the get_fastapi_docs tool invocation
func (s *Server) handleGetDocs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path parameter is required and must be a non-empty string"), nil
	}

	return mcp.NewToolResultText(s.service.FetchPage(ctx, path)), nil
}

// handleSearch handles the search_fastapi_docs tool invocation
func (s *Server) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query parameter is required and must be a non-empty string"), nil
	}

	return mcp.NewToolResultText(s.service.Search(ctx, query)), nil
}

// handleListPages handles the list_fastapi_pages tool invocation
func (s *Server) handleListPages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.service.ListPages(ctx)), nil
}

// handleGetExample handles the get_fastapi_example tool invocation
func (s *Server) handleGetExample(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topic, err := request.RequireString("topic")
	if err != nil {
		return mcp.NewToolResultError("topic parameter is required and must be a non-empty string"), nil
	}

	return mcp.NewToolResultText(s.service.GetExample(ctx, topic)), nil
}

// handleCompare handles the compare_fastapi_approaches tool invocation
func (s *Server) handleCompare(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topic, err := request.RequireString("topic")
	if err != nil {
		return mcp.NewToolResultError("topic parameter is required and must be a non-empty string"), nil
	}

	return mcp.NewToolResultText(s.service.Compare(ctx, topic)), nil
}

// handleBestPractices handles the get_fastapi_best_practices tool invocation
func (s *Server) handleBestPractices(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topic, err := request.RequireString("topic")
	if err != nil {
		return mcp.NewToolResultError("topic parameter is required and must be a non-empty string"), nil
	}

	return mcp.NewToolResultText(s.service.BestPractices(ctx, topic)), nil
}
