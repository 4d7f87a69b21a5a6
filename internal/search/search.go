// Package search maps free-text queries to documentation paths using the
// site's sitemap listing. Matching is substring-based against full URLs,
// with a static synonym table as a fallback when the direct phase finds
// nothing. It also partitions sitemap URLs into fixed topical buckets.
package search

import "strings"

// DefaultKeywordAliases returns the synonym table mapping common query
// vocabulary to terms that actually appear in documentation URLs. These are
// vocabulary mappings, not hardcoded paths: they keep working as long as the
// canonical term appears somewhere in the sitemap.
func DefaultKeywordAliases() map[string]string {
	return map[string]string{
		"auth":                 "security",
		"login":                "security",
		"oauth":                "security",
		"jwt":                  "security",
		"token":                "security",
		"password":             "security",
		"db":                   "sql-databases",
		"database":             "sql-databases",
		"sqlalchemy":           "sql-databases",
		"postgres":             "sql-databases",
		"mysql":                "sql-databases",
		"websocket":            "websockets",
		"ws":                   "websockets",
		"realtime":             "websockets",
		"start":                "first-steps",
		"begin":                "first-steps",
		"hello":                "first-steps",
		"getting started":      "first-steps",
		"di":                   "dependencies",
		"dependency":           "dependencies",
		"inject":               "dependencies",
		"dependency injection": "dependencies",
		"background":           "background-tasks",
		"tasks":                "background-tasks",
		"test":                 "testing",
		"exception":            "handling-errors",
		"pydantic":             "body",
		"upload":               "request-files",
	}
}

// Resolver maps queries to matching sitemap paths.
type Resolver struct {
	baseURL string
	aliases map[string]string
}

// NewResolver creates a resolver for sitemap URLs under baseURL.
// A nil alias table means no fallback phase.
func NewResolver(baseURL string, aliases map[string]string) *Resolver {
	return &Resolver{
		baseURL: baseURL,
		aliases: aliases,
	}
}

// Resolve returns the documentation paths matching a free-text query, in
// sitemap order, relative to the base URL.
//
// The query is lowercased and trimmed, then matched as a substring against
// each lowercased URL. Direct matches always win; only when there are none
// is the query looked up in the alias table and the search repeated with
// the canonical term. Alias results are never merged with direct results.
func (r *Resolver) Resolve(query string, urls []string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if len(urls) == 0 {
		return nil
	}

	if matches := r.match(urls, q); len(matches) > 0 {
		return matches
	}

	mapped, ok := r.aliases[q]
	if !ok || mapped == q {
		return nil
	}

	return r.match(urls, mapped)
}

// match collects relative paths of URLs containing term, preserving order.
func (r *Resolver) match(urls []string, term string) []string {
	var paths []string
	for _, u := range urls {
		if strings.Contains(strings.ToLower(u), term) {
			paths = append(paths, RelativePath(u, r.baseURL))
		}
	}
	return paths
}

// RelativePath strips the base URL prefix and surrounding slashes from an
// absolute documentation URL.
func RelativePath(url, baseURL string) string {
	return strings.Trim(strings.TrimPrefix(url, baseURL), "/")
}
