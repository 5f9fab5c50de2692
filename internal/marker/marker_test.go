package marker

import (
	"strings"
	"testing"
	"unicode"
)

func TestExtract_TagsAndMentions(t *testing.T) {
	text := "See #alpha and @bob, also #alpha again."

	tags := Extract(text, '#')
	if len(tags) != 2 || tags[0] != "alpha" || tags[1] != "alpha" {
		t.Errorf("tags = %v, want [alpha alpha]", tags)
	}
	mentions := Extract(text, '@')
	if len(mentions) != 1 || mentions[0] != "bob" {
		t.Errorf("mentions = %v, want [bob]", mentions)
	}
}

func TestExtract_TrailingPunctuationSplits(t *testing.T) {
	got := Extract("#tag, #other. (#third)", '#')
	want := []string{"tag", "other", "third"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExtract_BarePrefix(t *testing.T) {
	for _, text := range []string{"#", "@", "# heading", "a # b", "@ @", "", "   "} {
		if got := Extract(text, '#'); len(got) != 0 {
			t.Errorf("Extract(%q, '#') = %v, want none", text, got)
		}
		if got := Extract(text, '@'); len(got) != 0 {
			t.Errorf("Extract(%q, '@') = %v, want none", text, got)
		}
	}
}

func TestExtract_DoublePrefixIsNotAMarker(t *testing.T) {
	if got := Extract("##x and ## heading", '#'); len(got) != 0 {
		t.Errorf("got %v, want none", got)
	}
}

func TestExtract_PrefixInsideWord(t *testing.T) {
	if got := Extract("issue#12 mail@example", '#'); len(got) != 0 {
		t.Errorf("got %v, want none", got)
	}
	got := Extract("#foo#bar", '#')
	if len(got) != 1 || got[0] != "foo#bar" {
		t.Errorf("got %v, want [foo#bar]", got)
	}
}

func TestExtract_TrailingPrefixKeptInName(t *testing.T) {
	// The prefix never splits a word, so the remainder is kept verbatim.
	got := Extract("see #foo# and @bob@ here", '#')
	if len(got) != 1 || got[0] != "foo#" {
		t.Errorf("tags = %v, want [foo#]", got)
	}
	got = Extract("see #foo# and @bob@ here", '@')
	if len(got) != 1 || got[0] != "bob@" {
		t.Errorf("mentions = %v, want [bob@]", got)
	}
	spans := Scan("#foo#", '#')
	if len(spans) != 1 || spans[0].Start != 0 || spans[0].End != 5 {
		t.Errorf("spans = %+v", spans)
	}
}

func TestExtract_ASCIIPunctuationInsideName(t *testing.T) {
	got := Extract("#my-tag #snake_case @jane.doe", '#')
	if len(got) != 2 || got[0] != "my" || got[1] != "snake" {
		t.Errorf("tags = %v, want [my snake]", got)
	}
	got = Extract("#my-tag #snake_case @jane.doe", '@')
	if len(got) != 1 || got[0] != "jane" {
		t.Errorf("mentions = %v, want [jane]", got)
	}
}

func TestExtract_Unicode(t *testing.T) {
	got := Extract("#café #日本 #naïve!", '#')
	want := []string{"café", "日本", "naïve"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestScan_Spans(t *testing.T) {
	text := "x #a y\n#bc"
	spans := Scan(text, '#')
	if len(spans) != 2 {
		t.Fatalf("len(spans) = %d, want 2", len(spans))
	}
	for _, s := range spans {
		if text[s.Start:s.End] != "#"+s.Name {
			t.Errorf("span %+v covers %q", s, text[s.Start:s.End])
		}
		if s.Prefix != '#' {
			t.Errorf("prefix = %q", s.Prefix)
		}
	}
	if spans[0].Start != 2 || spans[0].End != 4 {
		t.Errorf("first span = %+v", spans[0])
	}
}

func TestExtract_NamesAreClean(t *testing.T) {
	corpus := []string{
		"plain text with #one, @two; and #three!",
		"#a#b @c@d #(e) @[f] #g\t#h\n@i\r\n",
		"##### @@@ #-# @_@ #.x @,y",
		"[#alpha](tags.md#alpha) [@bob](mentions.md#bob)",
		"emoji #🚀 and #x…y",
	}
	for _, text := range corpus {
		for _, prefix := range []rune{'#', '@'} {
			for _, name := range Extract(text, prefix) {
				if name == "" {
					t.Errorf("empty name from %q", text)
				}
				for _, r := range name {
					if unicode.IsSpace(r) {
						t.Errorf("name %q from %q contains whitespace", name, text)
					}
					if r != prefix && isASCIIPunct(r) {
						t.Errorf("name %q from %q contains punctuation %q", name, text, r)
					}
				}
			}
		}
	}
}

func TestKind(t *testing.T) {
	if Tag.Prefix() != '#' || Mention.Prefix() != '@' {
		t.Error("unexpected prefixes")
	}
	if Tag.String() != "tag" || Mention.String() != "mention" {
		t.Error("unexpected names")
	}
	if k, ok := ParseKind("Mentions"); !ok || k != Mention {
		t.Errorf("ParseKind(Mentions) = %v, %v", k, ok)
	}
	if got := (Marker{Kind: Mention, Name: "ann"}).String(); got != "@ann" {
		t.Errorf("Marker.String = %q", got)
	}
	if _, ok := ParseKind("links"); ok {
		t.Error("ParseKind(links) should fail")
	}
}
