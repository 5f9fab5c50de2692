// Package indexservice coordinates loading chapters, running the indexer and
// publishing the result to the output directory and the catalog.
package indexservice

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/starford/bookindex/internal/catalog"
	"github.com/starford/bookindex/internal/indexer"
	"github.com/starford/bookindex/internal/marker"
	"github.com/starford/bookindex/internal/storage"
	"github.com/starford/bookindex/internal/vault"
)

// Service coordinates storage, indexer and catalog operations.
type Service struct {
	source storage.Provider
	output storage.Provider
	db     catalog.Catalog
	proc   *indexer.Preprocessor
	logger *slog.Logger

	// mu serialises rebuilds triggered by the watcher, HTTP and MCP.
	mu sync.Mutex
}

// NewService creates a new index service. output may be nil, in which case
// processed chapters only land in the catalog.
func NewService(source, output storage.Provider, db catalog.Catalog, proc *indexer.Preprocessor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{source: source, output: output, db: db, proc: proc, logger: logger}
}

// RebuildResult summarises one rebuild.
type RebuildResult struct {
	Run    catalog.Run `json:"run"`
	Output vault.Stats `json:"output"`
}

// Rebuild reindexes every source chapter from scratch.
func (s *Service) Rebuild(_ context.Context) (*RebuildResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	opts := s.proc.Options()
	in, err := vault.Load(s.source, opts.TagsPath, opts.MentionsPath)
	if err != nil {
		return nil, err
	}
	out, rep, err := s.proc.Run(in)
	if err != nil {
		return nil, err
	}

	var stats vault.Stats
	if s.output != nil {
		if stats, err = vault.Write(s.output, out); err != nil {
			return nil, err
		}
	}
	if err := s.db.Replace(rep, out); err != nil {
		return nil, fmt.Errorf("indexservice: store run: %w", err)
	}

	s.logger.Info("rebuild finished",
		slog.String("run_id", rep.RunID),
		slog.Int("written", stats.Written),
		slog.Int("unchanged", stats.Unchanged),
		slog.Int("removed", stats.Removed))

	return &RebuildResult{
		Run: catalog.Run{
			ID:        rep.RunID,
			StartedAt: rep.StartedAt,
			Chapters:  rep.Chapters,
			Tags:      rep.Tags,
			Mentions:  rep.Mentions,
			Rewrite:   rep.Rewrite,
		},
		Output: stats,
	}, nil
}

// Markers lists the distinct markers of kind with occurrence counts.
func (s *Service) Markers(_ context.Context, kind marker.Kind) ([]catalog.MarkerCount, error) {
	return s.db.Markers(kind.String())
}

// Locations returns the chapters a marker occurs in, once per occurrence.
func (s *Service) Locations(_ context.Context, kind marker.Kind, name string) ([]string, error) {
	return s.db.Locations(kind.String(), name)
}

// Chapter returns one processed chapter.
func (s *Service) Chapter(_ context.Context, path string) (*catalog.ChapterRow, error) {
	return s.db.Chapter(path)
}

// Chapters lists processed chapters in book order.
func (s *Service) Chapters(_ context.Context) ([]catalog.ChapterRow, error) {
	return s.db.Chapters()
}

// Status returns the latest run.
func (s *Service) Status(_ context.Context) (*catalog.Run, error) {
	return s.db.LastRun()
}

// IndexPath returns the index document path for kind.
func (s *Service) IndexPath(kind marker.Kind) string {
	opts := s.proc.Options()
	return opts.IndexPath(kind)
}
