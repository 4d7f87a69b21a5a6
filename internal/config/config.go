// Package config provides configuration management for the FastAPI Documentation MCP Server.
// It supports loading configuration from multiple sources: command-line flags, config files,
// and environment variables, with proper precedence handling.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration settings for the FastAPI Documentation MCP Server.
// It includes server settings, documentation fetching settings, and transport settings.
type Config struct {
	// Server settings
	LogLevel string // Log level: debug, info, warn, error (default: info)

	// Documentation settings
	DocsBaseURL      string // Base URL for FastAPI documentation (default: https://fastapi.tiangolo.com)
	SitemapPath      string // Path of the sitemap under the base URL (default: /sitemap.xml)
	FetchTimeout     int    // Timeout for fetching documentation in seconds (default: 30)
	CacheTTL         int    // Lifetime of cached pages in seconds (default: 300)
	MaxConcurrent    int    // Maximum concurrent fetches (default: 5)
	MaxContentLength int    // Maximum characters of page content per response (default: 15000)

	// Transport settings
	TransportType string // Transport type: stdio, sse, streamablehttp (default: stdio)
	Host          string // Host to bind network transports to (default: localhost)
	Port          int    // Port to bind network transports to (default: 8080)
}

// NewConfig creates a new Config with default values for all optional parameters.
// This ensures that the server can run with sensible defaults without requiring
// explicit configuration.
func NewConfig() *Config {
	return &Config{
		// Server defaults
		LogLevel: "info",

		// Documentation defaults
		DocsBaseURL:      "https://fastapi.tiangolo.com",
		SitemapPath:      "/sitemap.xml",
		FetchTimeout:     30,
		CacheTTL:         300,
		MaxConcurrent:    5,
		MaxContentLength: 15000,

		// Transport defaults
		TransportType: "stdio",
		Host:          "localhost",
		Port:          8080,
	}
}

// Load loads configuration from environment variables with defaults.
// Returns a Config with values from environment variables or defaults.
func Load() (*Config, error) {
	// Start with defaults
	cfg := NewConfig()

	// Load environment variables (override defaults)
	loadFromEnv(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file, with environment variables
// as fallback, and defaults as final fallback.
// The precedence order is: config file > environment variables > defaults.
func LoadFromFile(configPath string) (*Config, error) {
	return LoadWithFlags(configPath, nil)
}

// LoadWithFlags loads configuration from command-line flags, config file,
// environment variables, and defaults.
// The precedence order is: flags > config file > environment variables > defaults.
func LoadWithFlags(configPath string, flags map[string]interface{}) (*Config, error) {
	// Start with defaults
	cfg := NewConfig()

	// Load environment variables (override defaults)
	loadFromEnv(cfg)

	// Load config file if provided (override env vars)
	if configPath != "" {
		v := viper.New()
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		// Override with config file values (only if they exist in the file)
		if v.IsSet("log_level") {
			cfg.LogLevel = v.GetString("log_level")
		}
		if v.IsSet("docs_base_url") {
			cfg.DocsBaseURL = v.GetString("docs_base_url")
		}
		if v.IsSet("sitemap_path") {
			cfg.SitemapPath = v.GetString("sitemap_path")
		}
		if v.IsSet("fetch_timeout") {
			cfg.FetchTimeout = v.GetInt("fetch_timeout")
		}
		if v.IsSet("cache_ttl") {
			cfg.CacheTTL = v.GetInt("cache_ttl")
		}
		if v.IsSet("max_concurrent") {
			cfg.MaxConcurrent = v.GetInt("max_concurrent")
		}
		if v.IsSet("max_content_length") {
			cfg.MaxContentLength = v.GetInt("max_content_length")
		}
		if v.IsSet("transport_type") {
			cfg.TransportType = v.GetString("transport_type")
		}
		if v.IsSet("host") {
			cfg.Host = v.GetString("host")
		}
		if v.IsSet("port") {
			cfg.Port = v.GetInt("port")
		}
	}

	// Override with flags (highest precedence)
	applyFlag(flags, "log_level", &cfg.LogLevel)
	applyFlag(flags, "docs_base_url", &cfg.DocsBaseURL)
	applyFlag(flags, "sitemap_path", &cfg.SitemapPath)
	applyIntFlag(flags, "fetch_timeout", &cfg.FetchTimeout)
	applyIntFlag(flags, "cache_ttl", &cfg.CacheTTL)
	applyIntFlag(flags, "max_concurrent", &cfg.MaxConcurrent)
	applyIntFlag(flags, "max_content_length", &cfg.MaxContentLength)
	applyFlag(flags, "transport_type", &cfg.TransportType)
	applyFlag(flags, "host", &cfg.Host)
	applyIntFlag(flags, "port", &cfg.Port)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyFlag(flags map[string]interface{}, key string, dst *string) {
	if val, ok := flags[key]; ok && val != nil {
		if strVal, ok := val.(string); ok {
			*dst = strVal
		}
	}
}

func applyIntFlag(flags map[string]interface{}, key string, dst *int) {
	if val, ok := flags[key]; ok && val != nil {
		if intVal, ok := val.(int); ok {
			*dst = intVal
		}
	}
}

// loadFromEnv loads configuration from environment variables into the provided Config
func loadFromEnv(cfg *Config) {
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		cfg.LogLevel = val
	}
	if val := os.Getenv("DOCS_BASE_URL"); val != "" {
		cfg.DocsBaseURL = val
	}
	if val := os.Getenv("SITEMAP_PATH"); val != "" {
		cfg.SitemapPath = val
	}
	if val := os.Getenv("FETCH_TIMEOUT"); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			cfg.FetchTimeout = intVal
		}
	}
	if val := os.Getenv("CACHE_TTL"); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			cfg.CacheTTL = intVal
		}
	}
	if val := os.Getenv("MAX_CONCURRENT"); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			cfg.MaxConcurrent = intVal
		}
	}
	if val := os.Getenv("MAX_CONTENT_LENGTH"); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			cfg.MaxContentLength = intVal
		}
	}
	if val := os.Getenv("TRANSPORT_TYPE"); val != "" {
		cfg.TransportType = val
	}
	if val := os.Getenv("HOST"); val != "" {
		cfg.Host = val
	}
	if val := os.Getenv("PORT"); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			cfg.Port = intVal
		}
	}
}

// Validate validates all configuration values and returns descriptive errors
// for any invalid settings. This should be called after loading configuration
// to ensure the server doesn't start with invalid configuration.
func (c *Config) Validate() error {
	var errors []string

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		errors = append(errors, fmt.Sprintf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel))
	}

	// Validate fetch timeout (must be positive)
	if c.FetchTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("fetch_timeout must be positive, got: %d", c.FetchTimeout))
	}

	// Validate cache TTL (must be positive)
	if c.CacheTTL <= 0 {
		errors = append(errors, fmt.Sprintf("cache_ttl must be positive, got: %d", c.CacheTTL))
	}

	// Validate max concurrent (must be positive)
	if c.MaxConcurrent <= 0 {
		errors = append(errors, fmt.Sprintf("max_concurrent must be positive, got: %d", c.MaxConcurrent))
	}

	// Validate max content length (must be positive)
	if c.MaxContentLength <= 0 {
		errors = append(errors, fmt.Sprintf("max_content_length must be positive, got: %d", c.MaxContentLength))
	}

	// Validate docs base URL
	if c.DocsBaseURL == "" {
		errors = append(errors, "docs_base_url cannot be empty")
	} else {
		// Check if URL has valid scheme (http or https)
		if !strings.HasPrefix(c.DocsBaseURL, "http://") && !strings.HasPrefix(c.DocsBaseURL, "https://") {
			errors = append(errors, fmt.Sprintf("docs_base_url must start with http:// or https://, got: %s", c.DocsBaseURL))
		}
		// Basic URL validation - check for scheme and host
		if strings.HasPrefix(c.DocsBaseURL, "http://") && len(c.DocsBaseURL) <= 7 {
			errors = append(errors, fmt.Sprintf("docs_base_url is incomplete: %s", c.DocsBaseURL))
		}
		if strings.HasPrefix(c.DocsBaseURL, "https://") && len(c.DocsBaseURL) <= 8 {
			errors = append(errors, fmt.Sprintf("docs_base_url is incomplete: %s", c.DocsBaseURL))
		}
	}

	// Validate sitemap path
	if !strings.HasPrefix(c.SitemapPath, "/") {
		errors = append(errors, fmt.Sprintf("sitemap_path must start with /, got: %s", c.SitemapPath))
	}

	// Validate transport settings
	if err := c.ValidateTransport(); err != nil {
		errors = append(errors, err.Error())
	}

	// If there are validation errors, return them all
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}

// ValidateTransport validates the transport type and its network settings.
// STDIO needs no network settings; SSE and StreamableHTTP require a
// non-empty host and a port in the valid range.
func (c *Config) ValidateTransport() error {
	switch c.TransportType {
	case "stdio":
		return nil
	case "sse", "streamablehttp":
		if c.Host == "" {
			return fmt.Errorf("host cannot be empty for %s transport", c.TransportType)
		}
		if c.Port < 1 || c.Port > 65535 {
			return fmt.Errorf("port must be between 1 and 65535 for %s transport, got: %d", c.TransportType, c.Port)
		}
		return nil
	default:
		return fmt.Errorf("invalid transport type: %s (must be one of: stdio, sse, streamablehttp)", c.TransportType)
	}
}

// GetTransportType returns the configured transport type.
func (c *Config) GetTransportType() string {
	return c.TransportType
}

// GetPort returns the configured port for network transports.
func (c *Config) GetPort() int {
	return c.Port
}

// GetTransportAddress returns the "host:port" address for network transports,
// or an empty string for STDIO.
func (c *Config) GetTransportAddress() string {
	if c.TransportType == "stdio" {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
