package marker

import (
	"sort"
	"strings"
)

// Link renders one marker occurrence as a Markdown link into its index page.
func Link(prefix rune, name, indexPath string) string {
	var b strings.Builder
	b.Grow(len(name)*2 + len(indexPath) + 6)
	b.WriteByte('[')
	b.WriteRune(prefix)
	b.WriteString(name)
	b.WriteString("](")
	b.WriteString(indexPath)
	b.WriteByte('#')
	b.WriteString(name)
	b.WriteByte(')')
	return b.String()
}

// RewriteSpans replaces exactly the given spans of text with link(span).
// Spans may come from several Scan calls; they are applied in Start order and
// any span overlapping an earlier one is left untouched.
func RewriteSpans(text string, spans []Span, link func(Span) string) string {
	if len(spans) == 0 {
		return text
	}
	ordered := make([]Span, len(spans))
	copy(ordered, spans)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Start < ordered[j].Start })

	var b strings.Builder
	b.Grow(len(text) + len(ordered)*32)
	pos := 0
	for _, s := range ordered {
		if s.Start < pos || s.End > len(text) {
			continue
		}
		b.WriteString(text[pos:s.Start])
		b.WriteString(link(s))
		pos = s.End
	}
	b.WriteString(text[pos:])
	return b.String()
}

// ReplaceAll replaces every literal prefix+name substring with its link,
// regardless of token boundaries. With markers "a" and "ab" in one text,
// replacing "a" also rewrites the leading "#a" of "#ab".
func ReplaceAll(text string, prefix rune, name, indexPath string) string {
	return strings.ReplaceAll(text, string(prefix)+name, Link(prefix, name, indexPath))
}
