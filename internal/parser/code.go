package parser

import (
	"regexp"
	"strings"
)

const (
	// minStandaloneCodeLength filters inline <code> mentions out of the
	// standalone collection pass.
	minStandaloneCodeLength = 50

	// minCodeBlockLength drops cleaned blocks too short to be useful.
	minCodeBlockLength = 20
)

var (
	// preCodePattern matches the <pre><code> fenced blocks the site uses
	// for examples.
	preCodePattern = regexp.MustCompile(`(?is)<pre[^>]*><code[^>]*>(.*?)</code></pre>`)

	// codePattern matches any <code> element.
	codePattern = regexp.MustCompile(`(?is)<code[^>]*>(.*?)</code>`)
)

// ExtractCodeBlocks recovers code snippets from raw HTML in document order:
// <pre><code> blocks first, then multi-line <code> blocks longer than 50
// characters. Each block has its markup stripped, entities decoded, and
// surrounding whitespace trimmed; blocks of 20 characters or fewer are
// dropped as noise. Empty input yields an empty slice.
func ExtractCodeBlocks(html string) []string {
	var raw []string

	for _, m := range preCodePattern.FindAllStringSubmatch(html, -1) {
		raw = append(raw, m[1])
	}

	for _, m := range codePattern.FindAllStringSubmatch(html, -1) {
		if strings.Contains(m[1], "\n") && len(m[1]) > minStandaloneCodeLength {
			raw = append(raw, m[1])
		}
	}

	var cleaned []string
	for _, block := range raw {
		// Tags are stripped before entities are decoded so that decoded
		// angle brackets in code survive.
		block = stripTags(block)
		block = DecodeEntities(block)
		block = strings.TrimSpace(block)
		if len(block) > minCodeBlockLength {
			cleaned = append(cleaned, block)
		}
	}

	return cleaned
}
