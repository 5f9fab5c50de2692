package catalog

import (
	"github.com/starford/bookindex/internal/book"
	"github.com/starford/bookindex/internal/indexer"
)

// Catalog defines the query surface over the latest index run.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type Catalog interface {
	Replace(rep indexer.Report, out *book.Book) error
	Markers(kind string) ([]MarkerCount, error)
	Locations(kind, name string) ([]string, error)
	Chapter(path string) (*ChapterRow, error)
	Chapters() ([]ChapterRow, error)
	LastRun() (*Run, error)
	Close() error
}

// Verify *DB satisfies Catalog at compile time.
var _ Catalog = (*DB)(nil)
