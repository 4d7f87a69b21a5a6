package parser

import "strings"

// entityTable maps the HTML character entities the documentation site emits
// to their literal replacements. &para; and &sect; are permalink markers on
// headings and are dropped rather than rendered. The table is ordered; each
// entity is applied exactly once in a single left-to-right scan, so decoded
// output is never re-decoded.
var entityTable = []string{
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
	"&quot;", `"`,
	"&#39;", "'",
	"&nbsp;", " ",
	"&para;", "",
	"&sect;", "",
	"&apos;", "'",
}

var entityReplacer = strings.NewReplacer(entityTable...)

// DecodeEntities replaces the known HTML character entities in text with
// their literal characters. Unrecognized entities pass through unchanged.
func DecodeEntities(text string) string {
	return entityReplacer.Replace(text)
}
