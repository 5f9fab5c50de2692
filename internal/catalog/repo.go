package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/bookindex/internal/apperr"
	"github.com/starford/bookindex/internal/book"
	"github.com/starford/bookindex/internal/checksum"
	"github.com/starford/bookindex/internal/indexer"
	"github.com/starford/bookindex/internal/marker"
)

// Run describes one index run.
type Run struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Chapters  int       `json:"chapters"`
	Tags      int       `json:"tags"`
	Mentions  int       `json:"mentions"`
	Rewrite   string    `json:"rewrite"`
}

// MarkerCount is one distinct marker and its number of occurrences.
type MarkerCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ChapterRow is a processed chapter as stored in the catalog.
type ChapterRow struct {
	Path     string `json:"path"`
	Name     string `json:"name"`
	Position int    `json:"position"`
	Checksum string `json:"checksum"`
	Content  string `json:"content,omitempty"`
}

// Replace drops the previous run and stores rep and the processed book in a
// single transaction.
func (db *DB) Replace(rep indexer.Report, out *book.Book) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	for _, table := range []string{"runs", "chapters", "occurrences"} {
		if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("catalog: clear %s: %w", table, err)
		}
	}

	_, err = tx.Exec(`
		INSERT INTO runs (id, started_at, chapters, tags, mentions, rewrite)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rep.RunID, rep.StartedAt, rep.Chapters, rep.Tags, rep.Mentions, rewriteMode(rep))
	if err != nil {
		return fmt.Errorf("catalog: insert run: %w", err)
	}

	if out != nil {
		stmt, err := tx.Prepare(`INSERT OR REPLACE INTO chapters (path, name, position, checksum, content) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("catalog: prepare chapter insert: %w", err)
		}
		defer stmt.Close()
		for i, ch := range out.Chapters() {
			if ch.IsDraft() {
				continue
			}
			if _, err := stmt.Exec(ch.ID(), ch.Name, i, checksum.SumString(ch.Content), ch.Content); err != nil {
				return fmt.Errorf("catalog: insert chapter %s: %w", ch.ID(), err)
			}
		}
	}

	occ, err := tx.Prepare(`INSERT INTO occurrences (kind, name, path, seq) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("catalog: prepare occurrence insert: %w", err)
	}
	defer occ.Close()
	for _, k := range marker.Kinds {
		table := rep.Result.Table(k)
		for _, name := range table.Names() {
			for seq, path := range table[name] {
				if _, err := occ.Exec(k.String(), name, path, seq); err != nil {
					return fmt.Errorf("catalog: insert occurrence: %w", err)
				}
			}
		}
	}

	return tx.Commit()
}

func rewriteMode(rep indexer.Report) string {
	if rep.Rewrite != "" {
		return rep.Rewrite
	}
	return indexer.RewriteToken
}

// Markers returns every distinct marker of kind with its occurrence count,
// sorted by name.
func (db *DB) Markers(kind string) ([]MarkerCount, error) {
	rows, err := db.conn.Query(`
		SELECT name, COUNT(*)
		FROM occurrences
		WHERE kind = ?
		GROUP BY name
		ORDER BY name
	`, kind)
	if err != nil {
		return nil, fmt.Errorf("catalog: markers: %w", err)
	}
	defer rows.Close()

	out := []MarkerCount{}
	for rows.Next() {
		var m MarkerCount
		if err := rows.Scan(&m.Name, &m.Count); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Locations returns the chapter paths recorded for a marker, one per
// occurrence, in index order. It returns apperr.ErrNotFound for unknown markers.
func (db *DB) Locations(kind, name string) ([]string, error) {
	rows, err := db.conn.Query(`SELECT path FROM occurrences WHERE kind = ? AND name = ? ORDER BY seq`, kind, name)
	if err != nil {
		return nil, fmt.Errorf("catalog: locations: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, apperr.ErrNotFound
	}
	return out, nil
}

// Chapter returns one processed chapter including its content.
func (db *DB) Chapter(path string) (*ChapterRow, error) {
	var c ChapterRow
	err := db.conn.QueryRow(`SELECT path, name, position, checksum, content FROM chapters WHERE path = ?`, path).
		Scan(&c.Path, &c.Name, &c.Position, &c.Checksum, &c.Content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: chapter: %w", err)
	}
	return &c, nil
}

// Chapters lists processed chapters in book order, without content.
func (db *DB) Chapters() ([]ChapterRow, error) {
	rows, err := db.conn.Query(`SELECT path, name, position, checksum FROM chapters ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("catalog: chapters: %w", err)
	}
	defer rows.Close()

	out := []ChapterRow{}
	for rows.Next() {
		var c ChapterRow
		if err := rows.Scan(&c.Path, &c.Name, &c.Position, &c.Checksum); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// LastRun returns the stored run, or apperr.ErrNotFound before the first run.
func (db *DB) LastRun() (*Run, error) {
	var r Run
	err := db.conn.QueryRow(`SELECT id, started_at, chapters, tags, mentions, rewrite FROM runs LIMIT 1`).
		Scan(&r.ID, &r.StartedAt, &r.Chapters, &r.Tags, &r.Mentions, &r.Rewrite)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: last run: %w", err)
	}
	return &r, nil
}
