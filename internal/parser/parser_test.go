package parser

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ============================================================================
// Entity decoder
// ============================================================================

func TestDecodeEntities(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "angle brackets",
			input:    "&lt;div&gt;",
			expected: "<div>",
		},
		{
			name:     "all common entities",
			input:    "&lt;&gt;&amp;&quot;&#39;&nbsp;",
			expected: "<>&\"' ",
		},
		{
			name:     "apos variant",
			input:    "it&apos;s",
			expected: "it's",
		},
		{
			name:     "permalink markers dropped",
			input:    "a&para;b&sect;c",
			expected: "abc",
		},
		{
			name:     "unknown entities pass through",
			input:    "&copy; 2024",
			expected: "&copy; 2024",
		},
		{
			name:     "no double unescape",
			input:    "&amp;lt;",
			expected: "&lt;",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeEntities(tt.input); got != tt.expected {
				t.Errorf("DecodeEntities(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

// TestPropertyDecodeIdempotentOnPlainText verifies that decoding text with
// no entity tokens is the identity, so decode(decode(x)) == decode(x).
func TestPropertyDecodeIdempotentOnPlainText(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("decode is idempotent on entity-free text", prop.ForAll(
		func(text string) bool {
			once := DecodeEntities(text)
			return DecodeEntities(once) == once
		},
		gen.Identifier(),
	))

	properties.TestingRun(t)
}

// ============================================================================
// Text extractor
// ============================================================================

func TestExtractTextKeepsArticleDropsChrome(t *testing.T) {
	input := "<nav>Menu</nav><article><p>Main content</p></article><footer>F</footer>"

	got := ExtractText(input)

	if !strings.Contains(got, "Main content") {
		t.Errorf("expected article content in output, got %q", got)
	}
	if strings.Contains(got, "Menu") {
		t.Errorf("expected nav content excluded, got %q", got)
	}
	if strings.Contains(got, "F") {
		t.Errorf("expected footer content excluded, got %q", got)
	}
}

func TestExtractTextRemovesScripts(t *testing.T) {
	got := ExtractText("<p>Text</p><script>alert(1)</script>")

	if !strings.Contains(got, "Text") {
		t.Errorf("expected paragraph text in output, got %q", got)
	}
	if strings.Contains(got, "alert") {
		t.Errorf("expected script body excluded, got %q", got)
	}
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain paragraph",
			input:    "<p>Hello world</p>",
			expected: "Hello world",
		},
		{
			name:     "style removed case-insensitively",
			input:    "<STYLE>body{}</STYLE><p>Kept</p>",
			expected: "Kept",
		},
		{
			name:     "first article wins",
			input:    "before<article>one</article><article>two</article>",
			expected: "one",
		},
		{
			name:     "nested-looking markup stripped to fixpoint",
			input:    "<<p>p>inner<</p>/p>",
			expected: "inner",
		},
		{
			name:     "entities decoded after stripping",
			input:    "<p>a &lt; b &amp;&amp; c</p>",
			expected: "a < b && c",
		},
		{
			name:     "decoded closing bracket collapses like a stray",
			input:    "<p>a &gt; b</p>",
			expected: "a b",
		},
		{
			name:     "attribute fragments removed",
			input:    `<p>text class="lead" more</p>`,
			expected: "text more",
		},
		{
			name:     "whitespace normalized",
			input:    "<p>a\t \tb</p>\n\n\n\n<p>c</p>",
			expected: "a b\n\nc",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractText(tt.input); got != tt.expected {
				t.Errorf("ExtractText(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

// renderPage builds a small HTML page with x/net/html and returns its
// serialized form. Used to generate structurally valid extractor fixtures.
func renderPage(t *testing.T, navText, articleText string) string {
	t.Helper()

	text := func(s string) *html.Node {
		return &html.Node{Type: html.TextNode, Data: s}
	}
	elem := func(a atom.Atom, children ...*html.Node) *html.Node {
		n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
		for _, c := range children {
			n.AppendChild(c)
		}
		return n
	}

	body := elem(atom.Body,
		elem(atom.Nav, text(navText)),
		elem(atom.Article, elem(atom.P, text(articleText))),
	)
	page := elem(atom.Html, elem(atom.Head), body)

	var sb strings.Builder
	if err := html.Render(&sb, page); err != nil {
		t.Fatalf("failed to render fixture: %v", err)
	}
	return sb.String()
}

// TestPropertyExtractTextStripsAllMarkup verifies that no tag survives
// extraction of a rendered page and that article text is preserved.
func TestPropertyExtractTextStripsAllMarkup(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("rendered pages extract to tag-free article text", prop.ForAll(
		func(navText, articleText string) bool {
			page := renderPage(t, navText, articleText)
			got := ExtractText(page)

			if strings.ContainsAny(got, "<>") {
				return false
			}
			return strings.Contains(got, articleText)
		},
		gen.Identifier(),
		gen.Identifier(),
	))

	properties.TestingRun(t)
}

// ============================================================================
// Code block extractor
// ============================================================================

func TestExtractCodeBlocks(t *testing.T) {
	t.Run("pre code block", func(t *testing.T) {
		blocks := ExtractCodeBlocks("<pre><code>def hello():\n    return 1</code></pre>")

		if len(blocks) != 1 {
			t.Fatalf("expected exactly one block, got %d", len(blocks))
		}
		if !strings.Contains(blocks[0], "def hello") {
			t.Errorf("expected block to contain 'def hello', got %q", blocks[0])
		}
	})

	t.Run("entities decode inside code", func(t *testing.T) {
		blocks := ExtractCodeBlocks("<pre><code>if x &lt; 10:\n    print(&quot;small&quot;)</code></pre>")

		if len(blocks) != 1 {
			t.Fatalf("expected exactly one block, got %d", len(blocks))
		}
		if !strings.Contains(blocks[0], "if x < 10:") {
			t.Errorf("expected decoded '<' in block, got %q", blocks[0])
		}
		if !strings.Contains(blocks[0], `print("small")`) {
			t.Errorf("expected decoded quotes in block, got %q", blocks[0])
		}
	})

	t.Run("highlight spans stripped", func(t *testing.T) {
		blocks := ExtractCodeBlocks(`<pre><code><span class="k">def</span> <span class="n">handler</span>():
    <span class="k">return</span> {}</code></pre>`)

		if len(blocks) != 1 {
			t.Fatalf("expected exactly one block, got %d", len(blocks))
		}
		if strings.Contains(blocks[0], "span") {
			t.Errorf("expected span tags stripped, got %q", blocks[0])
		}
		if !strings.HasPrefix(blocks[0], "def handler():") {
			t.Errorf("expected clean code, got %q", blocks[0])
		}
	})

	t.Run("short blocks dropped", func(t *testing.T) {
		blocks := ExtractCodeBlocks("<pre><code>x = 1</code></pre>")

		if len(blocks) != 0 {
			t.Errorf("expected short block dropped, got %v", blocks)
		}
	})

	t.Run("inline code ignored", func(t *testing.T) {
		blocks := ExtractCodeBlocks("<p>Use <code>FastAPI()</code> to create the app.</p>")

		if len(blocks) != 0 {
			t.Errorf("expected inline code ignored, got %v", blocks)
		}
	})

	t.Run("multi-line standalone code collected after pre blocks", func(t *testing.T) {
		input := "<pre><code>first_block = instantiate_application()</code></pre>" +
			"<code>second_block = 1\nwith_lines = 2\nlong_enough_to_qualify = 3</code>"

		blocks := ExtractCodeBlocks(input)

		if len(blocks) != 2 {
			t.Fatalf("expected two blocks, got %d: %v", len(blocks), blocks)
		}
		if !strings.Contains(blocks[0], "first_block") {
			t.Errorf("expected pre block first, got %q", blocks[0])
		}
		if !strings.Contains(blocks[1], "second_block") {
			t.Errorf("expected standalone block second, got %q", blocks[1])
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if blocks := ExtractCodeBlocks(""); len(blocks) != 0 {
			t.Errorf("expected no blocks for empty input, got %v", blocks)
		}
	})
}

// ============================================================================
// Truncator
// ============================================================================

func TestTruncateShortTextUnchanged(t *testing.T) {
	text := "First.\n\n" + strings.Repeat("A", 50) + "\n\nThird."

	if got := Truncate(text, 80); got != text {
		t.Errorf("expected text within limit unchanged, got %q", got)
	}
}

func TestTruncateLongText(t *testing.T) {
	text := strings.Repeat("a", 200)

	got := Truncate(text, 100)

	if len(got) >= 200 {
		t.Errorf("expected truncated result shorter than input, got length %d", len(got))
	}
	if !strings.Contains(got, "truncated") {
		t.Errorf("expected truncation notice, got %q", got)
	}
}

func TestTruncateCutsAtParagraphBreak(t *testing.T) {
	// 20 paragraphs of 7 characters; the last break inside the first 100
	// characters starts at index 96, past the 80% threshold.
	text := strings.Repeat("para.\n\n", 20)

	got := Truncate(text, 100)

	want := strings.Repeat("para.\n\n", 13) + "para." + TruncationNotice
	if got != want {
		t.Errorf("expected cut at paragraph break:\n got %q\nwant %q", got, want)
	}
}

func TestTruncateIgnoresEarlyBreak(t *testing.T) {
	// The only break sits well before 80% of the limit, so the cut stays
	// at the hard boundary.
	text := "First.\n\n" + strings.Repeat("A", 200)

	got := Truncate(text, 100)

	want := "First.\n\n" + strings.Repeat("A", 92) + TruncationNotice
	if got != want {
		t.Errorf("expected hard-boundary cut:\n got %q\nwant %q", got, want)
	}
}

// TestPropertyTruncateBounds verifies that truncated output never exceeds
// the limit plus the fixed notice, and that text within the limit is
// returned unchanged.
func TestPropertyTruncateBounds(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("output is bounded by max plus the notice", prop.ForAll(
		func(text string, max int) bool {
			got := Truncate(text, max)
			if len([]rune(text)) <= max {
				return got == text
			}
			return len([]rune(got)) <= max+len([]rune(TruncationNotice))
		},
		gen.AnyString(),
		gen.IntRange(1, 500),
	))

	properties.TestingRun(t)
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{
			name:     "cuts at word boundary",
			input:    "alpha beta gamma delta",
			max:      12,
			expected: "alpha beta...",
		},
		{
			name:     "no space keeps everything",
			input:    "unbroken",
			max:      20,
			expected: "unbroken...",
		},
		{
			name:     "short text still loses trailing word",
			input:    "one two",
			max:      100,
			expected: "one...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Summarize(tt.input, tt.max); got != tt.expected {
				t.Errorf("Summarize(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.expected)
			}
		})
	}
}
