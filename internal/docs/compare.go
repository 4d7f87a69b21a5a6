package docs

import (
	"context"
	"fmt"
	"strings"

	"github.com/fastapi-docs/mcp-server/internal/parser"
	"github.com/fastapi-docs/mcp-server/internal/search"
)

// comparison describes one side-by-side topic: the pages to pull together
// and how to introduce them.
type comparison struct {
	title       string
	pages       []string
	description string
}

// comparisonTopics maps topic keys (and their aliases) to comparison
// definitions. Static and read-only at runtime.
var comparisonTopics = buildComparisonTopics()

func buildComparisonTopics() map[string]comparison {
	syncAsync := comparison{
		title:       "Sync vs Async Functions",
		pages:       []string{"async", "tutorial/first-steps"},
		description: "When to use async def vs def in FastAPI",
	}
	authMethods := comparison{
		title: "Authentication Methods",
		pages: []string{
			"tutorial/security/oauth2-jwt",
			"advanced/security/http-basic-auth",
			"tutorial/security",
		},
		description: "Different ways to handle authentication",
	}
	dependencyPatterns := comparison{
		title: "Dependency Injection Patterns",
		pages: []string{
			"tutorial/dependencies",
			"tutorial/dependencies/classes-as-dependencies",
			"tutorial/dependencies/dependencies-with-yield",
		},
		description: "Different ways to use dependency injection",
	}
	responseTypes := comparison{
		title: "Response Types",
		pages: []string{
			"tutorial/response-model",
			"advanced/response-directly",
			"advanced/custom-response",
		},
		description: "Different ways to return responses",
	}

	return map[string]comparison{
		"sync-async":          syncAsync,
		"async":               syncAsync,
		"auth-methods":        authMethods,
		"auth":                authMethods,
		"security":            authMethods,
		"dependency-patterns": dependencyPatterns,
		"dependencies":        dependencyPatterns,
		"response-types":      responseTypes,
		"response":            responseTypes,
		"testing": {
			title:       "Testing Approaches",
			pages:       []string{"tutorial/testing", "advanced/async-tests"},
			description: "Sync vs async testing patterns",
		},
		"database": {
			title:       "Database Patterns",
			pages:       []string{"tutorial/sql-databases", "advanced/async-sql-databases"},
			description: "Sync vs async database access",
		},
	}
}

const unknownComparisonFormat = `No comparison found for '%s'.

**Available comparisons:**
- ` + "`sync-async`" + ` - When to use async def vs def
- ` + "`auth-methods`" + ` - OAuth2/JWT vs Basic Auth vs API Keys
- ` + "`dependency-patterns`" + ` - Functions, classes, and yield dependencies
- ` + "`response-types`" + ` - Response models vs direct responses
- ` + "`testing`" + ` - Sync vs async testing
- ` + "`database`" + ` - Sync vs async database access`

// Compare presents the pages of a known comparison topic side by side:
// each page's heading, its first code example, and a short summary. All
// pages are fetched concurrently; pages that fail to fetch are skipped
// silently.
func (s *Service) Compare(ctx context.Context, topic string) string {
	key := strings.ReplaceAll(strings.TrimSpace(strings.ToLower(topic)), " ", "-")

	cmp, ok := comparisonTopics[key]
	if !ok {
		return fmt.Sprintf(unknownComparisonFormat, topic)
	}

	lines := []string{
		fmt.Sprintf("## %s\n", cmp.title),
		fmt.Sprintf("*%s*\n", cmp.description),
		"---\n",
	}

	pageURLs := make([]string, len(cmp.pages))
	for i, page := range cmp.pages {
		// Comparison pages come from the static table, never from the
		// caller, so they are on the base origin by construction.
		pageURLs[i], _ = s.pageURL(page, true)
	}

	results := s.fetchAll(ctx, pageURLs)

	for i, page := range cmp.pages {
		if results[i].err != nil {
			continue
		}
		html := results[i].body

		lines = append(lines, fmt.Sprintf("### %s\n", pageTitle(html, page)))
		lines = append(lines, fmt.Sprintf("**Docs**: %s\n", pageURLs[i]))

		if blocks := parser.ExtractCodeBlocks(html); len(blocks) > 0 {
			lines = append(lines, "```python")
			lines = append(lines, blocks[0])
			lines = append(lines, "```\n")
		}

		summary := parser.Summarize(parser.ExtractText(html), summaryLength)
		lines = append(lines, fmt.Sprintf("> %s\n", summary))
	}

	s.logger.Info("Comparison built", "topic", key, "pages", len(cmp.pages))

	return strings.Join(lines, "\n")
}

// bestPracticePriority orders category buckets for best-practices matching.
// Deployment pages are deliberately excluded: they describe operations, not
// practices.
var bestPracticePriority = []string{"tutorial", "advanced", "how-to", "reference", search.CategoryOther}

// BestPractices aggregates the most relevant documentation for a topic:
// the top three matching pages fetched concurrently, each truncated to a
// digest, with up to five further matches listed by name.
func (s *Service) BestPractices(ctx context.Context, topic string) string {
	topicLower := strings.ToLower(strings.TrimSpace(topic))

	urls := s.fetcher.Sitemap(ctx)
	if len(urls) == 0 {
		return fmt.Sprintf("Could not fetch documentation. Browse at: %s", s.baseURL)
	}

	buckets := search.Categorize(urls, s.baseURL)

	var matching []string
	for _, cat := range bestPracticePriority {
		for _, path := range buckets[cat] {
			if strings.Contains(strings.ToLower(path), topicLower) {
				matching = append(matching, path)
			}
		}
	}

	if len(matching) == 0 {
		return fmt.Sprintf(`No documentation found for '%s'.

Use `+"`list_fastapi_pages()`"+` to see available topics.`, topic)
	}

	lines := []string{fmt.Sprintf("## Best Practices: %s\n", titleCase(topic))}
	lines = append(lines, fmt.Sprintf("*Found %d relevant page(s)*\n\n---\n", len(matching)))

	selected := matching
	if len(selected) > maxBestPracticePages {
		selected = selected[:maxBestPracticePages]
	}

	pageURLs := make([]string, len(selected))
	for i, path := range selected {
		pageURLs[i], _ = s.pageURL(path, true)
	}

	results := s.fetchAll(ctx, pageURLs)

	for i, path := range selected {
		if results[i].err != nil {
			continue
		}
		html := results[i].body

		content := parser.Truncate(parser.ExtractText(html), bestPracticesMaxLength)

		lines = append(lines, fmt.Sprintf("### %s", pageTitle(html, path)))
		lines = append(lines, fmt.Sprintf("**URL**: %s\n", pageURLs[i]))
		lines = append(lines, content)
		lines = append(lines, "\n---\n")
	}

	if len(matching) > maxBestPracticePages {
		more := matching[maxBestPracticePages:]
		if len(more) > 5 {
			more = more[:5]
		}
		quoted := make([]string, len(more))
		for i, p := range more {
			quoted[i] = "`" + p + "`"
		}
		lines = append(lines, fmt.Sprintf("**More pages:** %s", strings.Join(quoted, ", ")))
	}

	s.logger.Info("Best practices built", "topic", topicLower, "matches", len(matching))

	return strings.Join(lines, "\n")
}
