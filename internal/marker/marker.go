// Package marker finds inline tags (#name) and mentions (@name) in raw text
// and rewrites them into links to their index pages.
//
// The tokenizer is markup-agnostic: text is split into words on whitespace and
// on every ASCII punctuation character except the prefix being scanned for.
package marker

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind identifies the marker family.
type Kind int

// Marker kinds.
const (
	Tag Kind = iota
	Mention
)

// Kinds lists every marker kind in processing order.
var Kinds = []Kind{Tag, Mention}

// Prefix returns the character that introduces a marker of this kind.
func (k Kind) Prefix() rune {
	if k == Mention {
		return '@'
	}
	return '#'
}

func (k Kind) String() string {
	if k == Mention {
		return "mention"
	}
	return "tag"
}

// ParseKind maps "tag"/"tags" and "mention"/"mentions" to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(s) {
	case "tag", "tags":
		return Tag, true
	case "mention", "mentions":
		return Mention, true
	}
	return Tag, false
}

// Marker is a (kind, name) pair extracted from text.
type Marker struct {
	Kind Kind
	Name string
}

// String returns the marker as written in text, e.g. "#go".
func (m Marker) String() string {
	return string(m.Kind.Prefix()) + m.Name
}

// Span is one occurrence of prefix+name. Start and End are byte offsets into
// the scanned text and cover the prefix character.
type Span struct {
	Prefix rune
	Name   string
	Start  int
	End    int
}

// Scan returns every marker occurrence for prefix in left-to-right order.
// Duplicates are preserved.
func Scan(text string, prefix rune) []Span {
	var spans []Span
	start := -1
	for i, r := range text {
		if isSeparator(r, prefix) {
			if start >= 0 {
				if s, ok := candidate(text, start, i, prefix); ok {
					spans = append(spans, s)
				}
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		if s, ok := candidate(text, start, len(text), prefix); ok {
			spans = append(spans, s)
		}
	}
	return spans
}

// Extract returns the marker names for prefix in occurrence order.
func Extract(text string, prefix rune) []string {
	spans := Scan(text, prefix)
	if len(spans) == 0 {
		return nil
	}
	names := make([]string, len(spans))
	for i, s := range spans {
		names[i] = s.Name
	}
	return names
}

// candidate reports whether text[start:end] is a marker word.
func candidate(text string, start, end int, prefix rune) (Span, bool) {
	word := text[start:end]
	r, size := utf8.DecodeRuneInString(word)
	if r != prefix {
		return Span{}, false
	}
	name := word[size:]
	if name == "" {
		return Span{}, false
	}
	// Exactly one leading prefix: "##x" is not a marker.
	if next, _ := utf8.DecodeRuneInString(name); next == prefix {
		return Span{}, false
	}
	return Span{Prefix: prefix, Name: name, Start: start, End: end}, true
}

func isSeparator(r, prefix rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	return r != prefix && isASCIIPunct(r)
}

func isASCIIPunct(r rune) bool {
	return (r >= '!' && r <= '/') ||
		(r >= ':' && r <= '@') ||
		(r >= '[' && r <= '`') ||
		(r >= '{' && r <= '~')
}
