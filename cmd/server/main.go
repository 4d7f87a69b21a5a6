// FastAPI Documentation MCP Server
//
// This is the main entry point for the FastAPI Documentation MCP Server.
// It provides LLMs with programmatic access to FastAPI documentation through
// the Model Context Protocol (MCP).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fastapi-docs/mcp-server/internal/config"
	"github.com/fastapi-docs/mcp-server/internal/logger"
	"github.com/fastapi-docs/mcp-server/internal/server"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	configFile  string
	logLevel    string
	transport   string
	showVersion bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fastapi-docs-mcp-server",
		Short: "FastAPI Documentation MCP Server",
		Long: `FastAPI Documentation MCP Server provides LLMs with programmatic access
to FastAPI documentation through the Model Context Protocol (MCP).

The server exposes six tools:
  - get_fastapi_docs: Fetch a documentation page by path
  - search_fastapi_docs: Search documentation by keyword
  - list_fastapi_pages: List all documentation pages by category
  - get_fastapi_example: Extract code examples for a topic
  - compare_fastapi_approaches: Compare approaches side by side
  - get_fastapi_best_practices: Aggregate best-practice pages for a topic

The server fetches documentation from https://fastapi.tiangolo.com/ on
demand and caches pages in memory with a short TTL.`,
		RunE: runServer,
	}

	// Add flags
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to configuration file (optional)")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "Log level (debug, info, warn, error)")
	rootCmd.Flags().StringVarP(&transport, "transport", "t", "", "Transport type (stdio, sse, streamablehttp)")
	rootCmd.Flags().BoolVarP(&showVersion, "version", "v", false, "Show version information")

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	// Show version if requested
	if showVersion {
		fmt.Printf("FastAPI Documentation MCP Server\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Commit:  %s\n", commit)
		fmt.Printf("Built:   %s\n", date)
		return nil
	}

	// Load configuration with flags taking precedence over file and env
	flags := map[string]interface{}{}
	if logLevel != "" {
		flags["log_level"] = logLevel
	}
	if transport != "" {
		flags["transport_type"] = transport
	}

	cfg, err := config.LoadWithFlags(configFile, flags)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Create logger
	log, err := logger.NewLogger(cfg.LogLevel, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	log.Info("Starting FastAPI Documentation MCP Server",
		"version", version,
		"commit", commit,
		"date", date)

	// Create server
	srv, err := server.NewServer(cfg, log)
	if err != nil {
		log.Error("Failed to create server", "error", err)
		return fmt.Errorf("failed to create server: %w", err)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server initialization in a goroutine
	errChan := make(chan error, 1)
	go func() {
		// Warm up the sitemap; failures degrade gracefully
		srv.Initialize(ctx)

		// Register MCP tools
		if err := srv.RegisterTools(); err != nil {
			errChan <- fmt.Errorf("tool registration failed: %w", err)
			return
		}

		log.Info("Server initialized successfully, starting MCP server")

		// Start the MCP server (this blocks until shutdown)
		if err := srv.Start(ctx); err != nil {
			errChan <- fmt.Errorf("server error: %w", err)
			return
		}

		errChan <- nil
	}()

	// Wait for either an error or shutdown signal
	select {
	case err := <-errChan:
		if err != nil {
			log.Error("Server error", "error", err)
			return err
		}
		log.Info("Server stopped normally")
		return nil

	case sig := <-sigChan:
		log.Info("Received shutdown signal", "signal", sig)
		cancel()

		// Graceful shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Error during shutdown", "error", err)
			return fmt.Errorf("shutdown error: %w", err)
		}

		log.Info("Server shutdown complete")
		return nil
	}
}
