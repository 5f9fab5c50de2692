package indexer

import (
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/starford/bookindex/internal/book"
	"github.com/starford/bookindex/internal/marker"
)

// Name is the preprocessor name mdBook uses for [preprocessor.<name>].
const Name = "indexer"

// Report summarises one preprocessor run.
type Report struct {
	RunID     string
	StartedAt time.Time
	Chapters  int
	Tags      int
	Mentions  int
	Rewrite   string
	Result    Result
}

// Preprocessor rewrites markers in a book and appends the index chapters.
type Preprocessor struct {
	opts   Options
	agg    *Aggregator
	logger *slog.Logger
}

// New creates a preprocessor. A nil logger discards log output.
func New(opts Options, logger *slog.Logger) *Preprocessor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Preprocessor{opts: opts, agg: NewAggregator(opts), logger: logger}
}

// Name returns the preprocessor name.
func (p *Preprocessor) Name() string {
	return Name
}

// Options returns the options the preprocessor runs with.
func (p *Preprocessor) Options() Options {
	return p.opts
}

// SupportsRenderer reports whether the preprocessor can run before the
// given renderer. Only the configured unsupported renderer is refused.
func (p *Preprocessor) SupportsRenderer(renderer string) bool {
	return renderer != p.opts.UnsupportedRenderer
}

// Run processes a copy of b and returns it together with a run report. The
// input book is left untouched. Chapters are scanned sub-chapters first,
// which fixes the order of every location list. Draft chapters have no path
// to link to and are not scanned.
func (p *Preprocessor) Run(b *book.Book) (*book.Book, Report, error) {
	if b == nil {
		return nil, Report{}, errors.New("indexer: nil book")
	}
	report := Report{RunID: uuid.NewString(), StartedAt: time.Now().UTC(), Rewrite: p.opts.Rewrite}
	out := b.Clone()

	var chapters []*book.Chapter
	var docs []Document
	for _, ch := range out.ChaptersPostOrder() {
		if ch.IsDraft() {
			continue
		}
		chapters = append(chapters, ch)
		docs = append(docs, Document{Path: ch.ID(), Content: ch.Content})
	}

	res := p.agg.Build(docs)
	for i, ch := range chapters {
		ch.Content = res.Documents[i].Content
	}

	for _, k := range marker.Kinds {
		content := Render(p.opts.Title(k), k.Prefix(), res.Table(k))
		out.Push(book.ChapterItem(book.NewChapter(p.opts.Title(k), content, p.opts.IndexPath(k))))
	}

	report.Chapters = len(chapters)
	report.Tags = len(res.Tags)
	report.Mentions = len(res.Mentions)
	report.Result = res

	p.logger.Info("index built",
		slog.String("run_id", report.RunID),
		slog.Int("chapters", report.Chapters),
		slog.Int("tags", report.Tags),
		slog.Int("mentions", report.Mentions),
		slog.Int("tag_occurrences", res.Tags.Occurrences()),
		slog.Int("mention_occurrences", res.Mentions.Occurrences()),
		slog.String("rewrite", p.opts.Rewrite))

	return out, report, nil
}
