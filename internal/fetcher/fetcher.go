// Package fetcher provides HTTP client functionality for fetching
// documentation pages from the configured site, with timeout handling,
// rate limiting, and a TTL cache short-circuiting repeat fetches.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/fastapi-docs/mcp-server/internal/cache"
)

// locPattern extracts URL entries from the sitemap document. The match is
// case-sensitive: the sitemap is machine-generated and always lowercase.
var locPattern = regexp.MustCompile(`<loc>([^<]+)</loc>`)

// HTTPClient performs rate-limited GET requests with a fixed timeout.
// Redirects are followed. There is no retry: a failed request is reported
// to the caller, which degrades gracefully.
type HTTPClient struct {
	client      *http.Client
	rateLimiter *rate.Limiter
}

// NewHTTPClient creates an HTTP client with the specified request timeout
// and concurrency bound.
//
// Parameters:
//   - timeout: HTTP request timeout duration
//   - maxConcurrent: Maximum number of concurrent requests allowed
//
// Returns a configured HTTPClient ready for use.
func NewHTTPClient(timeout time.Duration, maxConcurrent int) *HTTPClient {
	httpClient := &http.Client{
		Timeout: timeout,
	}

	// The limiter allows maxConcurrent tokens with a burst of maxConcurrent
	rateLimiter := rate.NewLimiter(rate.Limit(maxConcurrent), maxConcurrent)

	return &HTTPClient{
		client:      httpClient,
		rateLimiter: rateLimiter,
	}
}

// Get retrieves the body of a URL. Any non-2xx status is an error; the body
// is returned as a string on success.
func (c *HTTPClient) Get(ctx context.Context, url string) (string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", "fastapi-docs-mcp-server/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status: HTTP %d", resp.StatusCode)
	}

	return string(body), nil
}

// CachingFetcher fetches documentation pages through a TTL cache. It is the
// sole I/O boundary of the system; everything downstream is pure
// computation over strings it returns.
type CachingFetcher struct {
	client     *HTTPClient
	store      *cache.Store
	sitemapURL string
	logger     zerolog.Logger
}

// NewCachingFetcher creates a fetcher that consults the given cache store
// before going to the network.
//
// Parameters:
//   - client: The HTTP client to use for cache misses
//   - store: TTL cache keyed by URL
//   - sitemapURL: Absolute URL of the site's sitemap document
//   - logger: The zerolog logger for structured logging
//
// Returns a configured CachingFetcher ready for use.
func NewCachingFetcher(client *HTTPClient, store *cache.Store, sitemapURL string, logger zerolog.Logger) *CachingFetcher {
	return &CachingFetcher{
		client:     client,
		store:      store,
		sitemapURL: sitemapURL,
		logger:     logger,
	}
}

// Fetch returns the body of a URL, from cache when a fresh entry exists.
// A successful network fetch is stored with the current timestamp. Failures
// are logged as warnings and returned as errors; the caller decides how to
// degrade.
func (f *CachingFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if body, ok := f.store.Get(url); ok {
		f.logger.Debug().
			Str("url", url).
			Msg("Cache hit")
		return body, nil
	}

	body, err := f.client.Get(ctx, url)
	if err != nil {
		f.logger.Warn().
			Err(err).
			Str("url", url).
			Msg("Failed to fetch page")
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}

	f.store.Set(url, body)

	f.logger.Debug().
		Str("url", url).
		Int("content_size", len(body)).
		Msg("Fetched page")

	return body, nil
}

// Sitemap fetches the site's sitemap and returns every listed URL in
// document order. A fetch failure yields an empty slice: callers cannot
// distinguish an empty sitemap from an unavailable one, and both degrade
// the same way.
func (f *CachingFetcher) Sitemap(ctx context.Context) []string {
	body, err := f.Fetch(ctx, f.sitemapURL)
	if err != nil {
		return nil
	}

	matches := locPattern.FindAllStringSubmatch(body, -1)
	urls := make([]string, 0, len(matches))
	for _, m := range matches {
		urls = append(urls, m[1])
	}

	f.logger.Debug().
		Int("count", len(urls)).
		Msg("Parsed sitemap")

	return urls
}
