// Package vault turns a directory of Markdown chapters into a book and
// writes processed books back out.
package vault

import (
	"fmt"
	"path"
	"strings"

	"github.com/starford/bookindex/internal/book"
	"github.com/starford/bookindex/internal/checksum"
	"github.com/starford/bookindex/internal/storage"
)

// summaryFile is mdBook's table of contents; it is not a chapter.
const summaryFile = "SUMMARY.md"

// Load reads every Markdown file under store into a flat book, ordered by
// path. Files at any of the skip paths (the index documents of a previous
// run) and SUMMARY.md are left out.
func Load(store storage.Provider, skip ...string) (*book.Book, error) {
	files, err := store.List("")
	if err != nil {
		return nil, fmt.Errorf("vault: list: %w", err)
	}

	skipped := map[string]struct{}{summaryFile: {}}
	for _, p := range skip {
		skipped[path.Clean(p)] = struct{}{}
	}

	b := &book.Book{}
	n := uint32(0)
	for _, f := range files {
		if _, ok := skipped[path.Clean(f.Path)]; ok {
			continue
		}
		data, err := store.Read(f.Path)
		if err != nil {
			return nil, fmt.Errorf("vault: read %s: %w", f.Path, err)
		}
		n++
		ch := book.NewChapter(deriveTitle(f.Path, string(data)), string(data), f.Path)
		ch.Number = []uint32{n}
		b.Push(book.ChapterItem(ch))
	}
	return b, nil
}

// Stats counts what Write did.
type Stats struct {
	Written   int `json:"written"`
	Unchanged int `json:"unchanged"`
	Removed   int `json:"removed"`
}

// Write stores every chapter of b under store, skipping files whose content
// is already current, and removes Markdown files that are no longer part of
// the book.
func Write(store storage.Provider, b *book.Book) (Stats, error) {
	var st Stats
	existing, err := store.List("")
	if err != nil {
		return st, fmt.Errorf("vault: list output: %w", err)
	}
	current := make(map[string]string, len(existing))
	for _, f := range existing {
		current[f.Path] = f.Checksum
	}

	keep := make(map[string]struct{})
	for _, ch := range b.Chapters() {
		if ch.IsDraft() {
			continue
		}
		p := ch.ID()
		keep[p] = struct{}{}
		if current[p] == checksum.SumString(ch.Content) {
			st.Unchanged++
			continue
		}
		if err := store.Write(p, []byte(ch.Content)); err != nil {
			return st, fmt.Errorf("vault: write %s: %w", p, err)
		}
		st.Written++
	}

	for p := range current {
		if _, ok := keep[p]; ok {
			continue
		}
		if err := store.Delete(p); err != nil {
			return st, fmt.Errorf("vault: remove stale %s: %w", p, err)
		}
		st.Removed++
	}
	return st, nil
}

// deriveTitle returns the first H1 heading, otherwise the file name without
// its extension.
func deriveTitle(p, body string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return strings.TrimSuffix(path.Base(p), path.Ext(p))
}
