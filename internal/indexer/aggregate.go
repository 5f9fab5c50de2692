package indexer

import (
	"github.com/starford/bookindex/internal/marker"
)

// Document is a snapshot of one chapter: its id and text body.
type Document struct {
	Path    string
	Content string
}

// Result is the outcome of one aggregation sweep.
type Result struct {
	// Documents holds the rewritten documents, in input order.
	Documents []Document
	Tags      Table
	Mentions  Table
}

// Table returns the table for kind.
func (r *Result) Table(k marker.Kind) Table {
	if k == marker.Mention {
		return r.Mentions
	}
	return r.Tags
}

// Aggregator scans documents for markers and rewrites them into links.
type Aggregator struct {
	opts Options
}

// NewAggregator creates an aggregator for opts.
func NewAggregator(opts Options) *Aggregator {
	return &Aggregator{opts: opts}
}

// Build scans every document once, in order. Both tables are filled from the
// original text of each document, then the document is rewritten. The input
// slice is not modified.
func (a *Aggregator) Build(docs []Document) Result {
	res := Result{
		Documents: make([]Document, 0, len(docs)),
		Tags:      Table{},
		Mentions:  Table{},
	}
	for _, d := range docs {
		tagSpans := marker.Scan(d.Content, marker.Tag.Prefix())
		mentionSpans := marker.Scan(d.Content, marker.Mention.Prefix())

		for _, s := range tagSpans {
			res.Tags.Add(s.Name, d.Path)
		}
		for _, s := range mentionSpans {
			res.Mentions.Add(s.Name, d.Path)
		}

		res.Documents = append(res.Documents, Document{
			Path:    d.Path,
			Content: a.rewrite(d.Content, tagSpans, mentionSpans),
		})
	}
	return res
}

func (a *Aggregator) rewrite(text string, tagSpans, mentionSpans []marker.Span) string {
	if a.opts.Rewrite == RewriteSubstring {
		for _, name := range distinct(tagSpans) {
			text = marker.ReplaceAll(text, marker.Tag.Prefix(), name, a.opts.TagsPath)
		}
		for _, name := range distinct(mentionSpans) {
			text = marker.ReplaceAll(text, marker.Mention.Prefix(), name, a.opts.MentionsPath)
		}
		return text
	}

	spans := make([]marker.Span, 0, len(tagSpans)+len(mentionSpans))
	spans = append(spans, tagSpans...)
	spans = append(spans, mentionSpans...)
	return marker.RewriteSpans(text, spans, func(s marker.Span) string {
		if s.Prefix == marker.Mention.Prefix() {
			return marker.Link(s.Prefix, s.Name, a.opts.MentionsPath)
		}
		return marker.Link(s.Prefix, s.Name, a.opts.TagsPath)
	})
}

// distinct returns span names in first-occurrence order without repeats.
func distinct(spans []marker.Span) []string {
	seen := make(map[string]struct{}, len(spans))
	var out []string
	for _, s := range spans {
		if _, ok := seen[s.Name]; ok {
			continue
		}
		seen[s.Name] = struct{}{}
		out = append(out, s.Name)
	}
	return out
}
