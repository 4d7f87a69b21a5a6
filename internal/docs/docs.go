// Package docs implements the query operations exposed as MCP tools:
// fetching pages, keyword search, category listings, code-example
// extraction, topic comparisons, and best-practice digests. Every operation
// returns human-readable formatted text; transport failures and empty
// lookups are absorbed into informative messages, never surfaced as errors.
package docs

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/fastapi-docs/mcp-server/internal/parser"
	"github.com/fastapi-docs/mcp-server/internal/search"
)

const (
	// DefaultMaxContentLength bounds full-page content in responses.
	DefaultMaxContentLength = 15000

	// bestPracticesMaxLength bounds each page in a best-practices digest.
	bestPracticesMaxLength = 4000

	// summaryLength bounds the per-page summaries in comparisons.
	summaryLength = 300

	maxRelatedPages      = 4
	maxExamples          = 5
	maxBestPracticePages = 3
	tutorialDisplayLimit = 30
)

// h1Pattern finds the page heading. It deliberately does not span newlines;
// the site renders headings on one line.
var h1Pattern = regexp.MustCompile(`(?i)<h1[^>]*>(.*?)</h1>`)

// Fetcher is the page-retrieval dependency of the operations. Fetch returns
// a page body or an error; Sitemap returns all site URLs, empty on failure.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
	Sitemap(ctx context.Context) []string
}

// Service implements the documentation query operations against one
// documentation site.
type Service struct {
	fetcher          Fetcher
	resolver         *search.Resolver
	baseURL          string
	baseHost         string
	maxContentLength int
	logger           *slog.Logger
}

// NewService creates the operations service.
//
// Parameters:
//   - fetcher: Page and sitemap retrieval (usually a CachingFetcher)
//   - baseURL: The documentation site origin, no trailing slash
//   - maxContentLength: Character bound for full-page responses
//   - logger: Structured logger
//
// Returns a Service ready to serve tool calls.
func NewService(fetcher Fetcher, baseURL string, maxContentLength int, logger *slog.Logger) *Service {
	if maxContentLength <= 0 {
		maxContentLength = DefaultMaxContentLength
	}
	if logger == nil {
		logger = slog.Default()
	}

	baseURL = strings.TrimRight(baseURL, "/")
	baseHost := ""
	if u, err := url.Parse(baseURL); err == nil {
		baseHost = u.Host
	}

	return &Service{
		fetcher:          fetcher,
		resolver:         search.NewResolver(baseURL, search.DefaultKeywordAliases()),
		baseURL:          baseURL,
		baseHost:         baseHost,
		maxContentLength: maxContentLength,
		logger:           logger,
	}
}

// pageURL joins a cleaned relative path onto the base origin. The result is
// verified to stay on the base host: a path that escapes the origin yields
// ok=false and is never fetched.
func (s *Service) pageURL(path string, trailingSlash bool) (string, bool) {
	u := s.baseURL + "/" + path
	if trailingSlash {
		u += "/"
	}

	parsed, err := url.Parse(u)
	if err != nil || parsed.Host != s.baseHost {
		return "", false
	}
	return u, true
}

// FetchPage returns the documentation content for a page path, e.g.
// "tutorial/first-steps". The URL is tried with a trailing slash first and
// retried without one. On failure the response names the attempted URL and
// points at the page listing.
func (s *Service) FetchPage(ctx context.Context, path string) string {
	path = strings.Trim(strings.TrimSpace(path), "/")

	pageURL, ok := s.pageURL(path, true)
	if !ok {
		s.logger.Warn("Rejected page path escaping the base origin", "path", path)
		return s.notFoundMessage(s.baseURL + "/" + path)
	}

	html, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		// Retry without trailing slash
		if retryURL, retryOK := s.pageURL(path, false); retryOK {
			pageURL = retryURL
			html, err = s.fetcher.Fetch(ctx, pageURL)
		}
	}

	if err != nil || html == "" {
		return s.notFoundMessage(pageURL)
	}

	content := parser.Truncate(parser.ExtractText(html), s.maxContentLength)

	s.logger.Info("Page fetched", "path", path, "url", pageURL)

	return fmt.Sprintf(`## FastAPI Documentation: %s

**URL**: %s

---

%s`, path, pageURL, content)
}

func (s *Service) notFoundMessage(attemptedURL string) string {
	return fmt.Sprintf(`Could not find documentation at '%s'.

📖 **Browse the docs**: %s

Use `+"`list_fastapi_pages()`"+` to see all valid paths.`, attemptedURL, s.baseURL)
}

// Search resolves a keyword query against the sitemap and returns the best
// matching page's content, with up to four further matches listed as
// related pages.
func (s *Service) Search(ctx context.Context, query string) string {
	paths := s.resolver.Resolve(query, s.fetcher.Sitemap(ctx))

	if len(paths) == 0 {
		return fmt.Sprintf(`No results for '%s'.

📖 Browse: %s

Use `+"`list_fastapi_pages()`"+` to see all available pages.`, query, s.baseURL)
	}

	best := paths[0]
	pageURL, ok := s.pageURL(best, true)
	if !ok {
		return fmt.Sprintf("Found '%s' but could not fetch content.", best)
	}

	html, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return fmt.Sprintf("Found '%s' but could not fetch content.", best)
	}

	content := parser.Truncate(parser.ExtractText(html), s.maxContentLength)

	related := ""
	if len(paths) > 1 {
		others := paths[1:]
		if len(others) > maxRelatedPages {
			others = others[:maxRelatedPages]
		}
		quoted := make([]string, len(others))
		for i, p := range others {
			quoted[i] = "`" + p + "`"
		}
		related = "\n\n**Related pages:** " + strings.Join(quoted, ", ")
	}

	s.logger.Info("Search completed", "query", query, "matches", len(paths), "best", best)

	return fmt.Sprintf(`## FastAPI Documentation: %s

**URL**: %s

---

%s%s`, best, pageURL, content, related)
}

// listSection pairs a display header with a category bucket and an optional
// display cap.
type listSection struct {
	header string
	key    string
	limit  int
}

// ListPages returns a categorized listing of every documentation page in
// the sitemap. The tutorial section is capped at 30 entries with an
// overflow note; other sections are uncapped.
func (s *Service) ListPages(ctx context.Context) string {
	urls := s.fetcher.Sitemap(ctx)
	if len(urls) == 0 {
		return fmt.Sprintf("Could not fetch sitemap. Browse docs at: %s", s.baseURL)
	}

	buckets := search.Categorize(urls, s.baseURL)

	sections := []listSection{
		{header: "📚 Tutorial", key: "tutorial", limit: tutorialDisplayLimit},
		{header: "🔧 Advanced", key: "advanced"},
		{header: "🚀 Deployment", key: "deployment"},
		{header: "📖 How-To Guides", key: "how-to"},
		{header: "📋 Reference", key: "reference"},
	}

	lines := []string{"## FastAPI Documentation Pages\n"}

	for _, section := range sections {
		paths := append([]string(nil), buckets[section.key]...)
		if len(paths) == 0 {
			continue
		}
		sort.Strings(paths)

		lines = append(lines, fmt.Sprintf("### %s", section.header))

		display := paths
		if section.limit > 0 && len(paths) > section.limit {
			display = paths[:section.limit]
		}
		for _, p := range display {
			lines = append(lines, fmt.Sprintf("- `%s`", p))
		}
		if section.limit > 0 && len(paths) > section.limit {
			lines = append(lines, fmt.Sprintf("- ... and %d more", len(paths)-section.limit))
		}

		lines = append(lines, "")
	}

	lines = append(lines, fmt.Sprintf("**Total pages**: %d", len(urls)))
	lines = append(lines, "")
	lines = append(lines, "💡 Use `get_fastapi_docs(\"path\")` to fetch any page.")

	s.logger.Info("Pages listed", "total", len(urls))

	return strings.Join(lines, "\n")
}

// GetExample returns just the code blocks from the best page matching a
// topic, up to five, with an overflow note when more exist.
func (s *Service) GetExample(ctx context.Context, topic string) string {
	topicLower := strings.ToLower(strings.TrimSpace(topic))

	paths := s.resolver.Resolve(topicLower, s.fetcher.Sitemap(ctx))
	if len(paths) == 0 {
		return fmt.Sprintf(`No examples found for '%s'.

Try: cors, dependencies, jwt, websockets, middleware, testing, database`, topic)
	}

	docPath := paths[0]
	pageURL, ok := s.pageURL(docPath, true)
	if !ok {
		return fmt.Sprintf("Could not fetch examples from %s", s.baseURL+"/"+docPath)
	}

	html, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return fmt.Sprintf("Could not fetch examples from %s", pageURL)
	}

	blocks := parser.ExtractCodeBlocks(html)
	if len(blocks) == 0 {
		return fmt.Sprintf("No code examples found in %s", docPath)
	}

	lines := []string{
		fmt.Sprintf("## Code Examples: %s\n", topic),
		fmt.Sprintf("**Source**: %s\n", pageURL),
		"---\n",
	}

	shown := blocks
	if len(shown) > maxExamples {
		shown = shown[:maxExamples]
	}
	for i, code := range shown {
		lines = append(lines, fmt.Sprintf("### Example %d\n", i+1))
		lines = append(lines, "```python")
		lines = append(lines, code)
		lines = append(lines, "```\n")
	}

	if len(blocks) > maxExamples {
		lines = append(lines, fmt.Sprintf("*... and %d more examples in the docs.*", len(blocks)-maxExamples))
	}

	s.logger.Info("Examples extracted", "topic", topic, "path", docPath, "blocks", len(blocks))

	return strings.Join(lines, "\n")
}

// fetchResult pairs a fetched body with the error that fetch produced. Used
// by the fan-out operations to recombine results positionally.
type fetchResult struct {
	body string
	err  error
}

// fetchAll fetches all URLs concurrently and returns results indexed by the
// input position, so consumption order is deterministic regardless of
// completion order.
func (s *Service) fetchAll(ctx context.Context, urls []string) []fetchResult {
	results := make([]fetchResult, len(urls))

	var wg sync.WaitGroup
	for i, u := range urls {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			body, err := s.fetcher.Fetch(ctx, u)
			results[i] = fetchResult{body: body, err: err}
		}(i, u)
	}
	wg.Wait()

	return results
}

// pageTitle extracts an <h1>-derived title, falling back to the page path
// when the page has no heading.
func pageTitle(html, fallback string) string {
	if m := h1Pattern.FindStringSubmatch(html); m != nil {
		return parser.ExtractText(m[1])
	}
	return fallback
}

// titleCase uppercases the first letter of each space-separated word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		words[i] = strings.ToUpper(string(r[:1])) + strings.ToLower(string(r[1:]))
	}
	return strings.Join(words, " ")
}
