package parser

import "strings"

// TruncationNotice is appended to content cut by Truncate.
const TruncationNotice = "\n\n... [Content truncated. Visit the URL for full content.]"

// paragraphBreakRatio is how far into the prefix a paragraph break must
// fall for Truncate to prefer it over the hard boundary.
const paragraphBreakRatio = 0.8

// Truncate bounds text to max characters, preferring to cut at the last
// paragraph break when that break falls past 80% of the limit. Text within
// the limit is returned unchanged; truncated text carries a fixed notice.
// Lengths are counted in runes so a cut never splits a UTF-8 sequence.
func Truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}

	truncated := runes[:max]

	lastBreak := -1
	for i := len(truncated) - 1; i > 0; i-- {
		if truncated[i] == '\n' && truncated[i-1] == '\n' {
			lastBreak = i - 1
			break
		}
	}

	if float64(lastBreak) > float64(max)*paragraphBreakRatio {
		truncated = truncated[:lastBreak]
	}

	return string(truncated) + TruncationNotice
}

// Summarize cuts text to at most max characters at a word boundary and
// appends an ellipsis. Used for the short page summaries in comparisons.
func Summarize(text string, max int) string {
	runes := []rune(text)
	if len(runes) > max {
		runes = runes[:max]
	}

	s := string(runes)
	if i := strings.LastIndex(s, " "); i >= 0 {
		s = s[:i]
	}

	return s + "..."
}
