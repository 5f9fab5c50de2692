package marker

import "testing"

func TestLink(t *testing.T) {
	if got := Link('#', "x", "tags.md"); got != "[#x](tags.md#x)" {
		t.Errorf("Link = %q", got)
	}
	if got := Link('@', "bob", "mentions.md"); got != "[@bob](mentions.md#bob)" {
		t.Errorf("Link = %q", got)
	}
}

func tagLink(s Span) string { return Link(s.Prefix, s.Name, "tags.md") }

func TestRewriteSpans_RespectsBoundaries(t *testing.T) {
	text := "#a and #ab"
	got := RewriteSpans(text, Scan(text, '#'), tagLink)
	want := "[#a](tags.md#a) and [#ab](tags.md#ab)"
	if got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}
}

func TestRewriteSpans_MixedKinds(t *testing.T) {
	text := "@bob likes #go, @bob."
	spans := append(Scan(text, '#'), Scan(text, '@')...)
	got := RewriteSpans(text, spans, func(s Span) string {
		if s.Prefix == '@' {
			return Link(s.Prefix, s.Name, "mentions.md")
		}
		return tagLink(s)
	})
	want := "[@bob](mentions.md#bob) likes [#go](tags.md#go), [@bob](mentions.md#bob)."
	if got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}
}

func TestRewriteSpans_NoSpans(t *testing.T) {
	if got := RewriteSpans("nothing here", nil, tagLink); got != "nothing here" {
		t.Errorf("got %q", got)
	}
}

func TestRewriteSpans_SkipsOverlap(t *testing.T) {
	text := "#abc"
	spans := []Span{
		{Prefix: '#', Name: "abc", Start: 0, End: 4},
		{Prefix: '#', Name: "bc", Start: 1, End: 4},
	}
	if got := RewriteSpans(text, spans, tagLink); got != "[#abc](tags.md#abc)" {
		t.Errorf("got %q", got)
	}
}

func TestReplaceAll_SubstringCollision(t *testing.T) {
	text := "#a and #ab"
	got := ReplaceAll(text, '#', "a", "tags.md")
	// The "#a" prefix of "#ab" is rewritten too.
	want := "[#a](tags.md#a) and [#a](tags.md#a)b"
	if got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}
}
