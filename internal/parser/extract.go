// Package parser extracts readable text and code snippets from documentation
// HTML. It is not a general HTML parser: the extraction is a pipeline of
// regex string transforms targeting the markup conventions of one
// documentation site, and accepts best-effort results on malformed input.
package parser

import (
	"fmt"
	"regexp"
	"strings"
)

// nonContentTags are elements removed wholesale before text extraction.
var nonContentTags = []string{"script", "style", "nav", "footer", "header"}

var (
	nonContentPatterns = compileNonContentPatterns()

	// articlePattern isolates the primary content region when present.
	articlePattern = regexp.MustCompile(`(?is)<article[^>]*>(.*?)</article>`)

	// tagPattern matches a single opening or closing tag. Stripping is
	// iterated to a fixed point to handle markup a single pass would miss.
	tagPattern = regexp.MustCompile(`<[a-zA-Z/][^>]*>`)

	// Artifacts left behind by malformed tags.
	strayBracketPattern = regexp.MustCompile(`\s*>\s*`)
	attrFragmentPattern = regexp.MustCompile(`[a-zA-Z-]+=("[^"]*"|'[^']*')\s*`)

	// Whitespace normalization.
	spaceRunPattern   = regexp.MustCompile(`[ \t]+`)
	blankLinesPattern = regexp.MustCompile(`\n\s*\n+`)
)

// compileNonContentPatterns builds one removal pattern per non-content tag.
// RE2 has no backreferences, so the tags are enumerated instead of captured.
func compileNonContentPatterns() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(nonContentTags))
	for _, tag := range nonContentTags {
		patterns = append(patterns, regexp.MustCompile(
			fmt.Sprintf(`(?is)<%s[^>]*>.*?</%s>`, tag, tag),
		))
	}
	return patterns
}

// ExtractText extracts readable prose from raw HTML.
//
// The stages run in order, each feeding the next:
//  1. Remove non-content elements (script, style, nav, footer, header).
//  2. Keep only the first <article> region when one exists.
//  3. Strip tags repeatedly until a full pass changes nothing.
//  4. Decode entities, after tag stripping so attribute text removed with
//     the tags never leaks into the output.
//  5. Collapse stray '>' characters and attribute-looking fragments left by
//     malformed markup.
//  6. Normalize whitespace.
//
// ExtractText never fails; malformed input yields best-effort text.
func ExtractText(html string) string {
	for _, pattern := range nonContentPatterns {
		html = pattern.ReplaceAllString(html, "")
	}

	if m := articlePattern.FindStringSubmatch(html); m != nil {
		html = m[1]
	}

	html = stripTags(html)
	html = DecodeEntities(html)

	html = strayBracketPattern.ReplaceAllString(html, " ")
	html = attrFragmentPattern.ReplaceAllString(html, "")

	text := spaceRunPattern.ReplaceAllString(html, " ")
	text = blankLinesPattern.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

// stripTags removes tag-shaped substrings until the input is stable.
func stripTags(html string) string {
	for {
		stripped := tagPattern.ReplaceAllString(html, "")
		if stripped == html {
			return stripped
		}
		html = stripped
	}
}
