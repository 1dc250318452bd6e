package cleaner

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Cleaner normalizes text extracted from listing markup. Job boards mix
// typographic punctuation, non-breaking spaces and stray markup into their
// fields; everything written to output goes through here first.
type Cleaner struct {
	policy   *bluemonday.Policy
	replacer *strings.Replacer
}

// NewCleaner creates a cleaner that strips all HTML from field values
func NewCleaner() *Cleaner {
	return &Cleaner{
		policy: bluemonday.StrictPolicy(),
		replacer: strings.NewReplacer(
			"–", "-", // en dash
			"—", "-", // em dash
			"‘", "'", // curly single quotes
			"’", "'",
			"“", `"`, // curly double quotes
			"”", `"`,
			"…", "", // ellipsis
		),
	}
}

// Text normalizes a plain-text field: typographic punctuation is mapped to
// ASCII, remaining non-ASCII runes are dropped, whitespace is collapsed to
// single spaces and the result is trimmed.
func (c *Cleaner) Text(s string) string {
	s = c.replacer.Replace(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r <= 0x7F {
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// StripHTML removes any markup that leaked into a field, then normalizes
// the remaining text like Text does. Sanitizing entity-escapes the text,
// so it is unescaped again before normalization.
func (c *Cleaner) StripHTML(s string) string {
	return c.Text(html.UnescapeString(c.policy.Sanitize(s)))
}
