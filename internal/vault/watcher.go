package vault

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Change is one source file event. Kind is "created", "updated" or "deleted".
type Change struct {
	Kind string `json:"kind"`
	Path string `json:"path"`
}

// RebuildFunc is called once per quiet period with the changes collected
// since the previous call.
type RebuildFunc func(changes []Change)

// DefaultDebounce is the quiet period used when Watch is given zero.
const DefaultDebounce = 200 * time.Millisecond

// Watch starts an fsnotify watcher on root and calls rebuild after each
// burst of Markdown changes, until ctx is cancelled. Every rebuild is a full
// rebuild; changes are only reported for logging and notification.
//
// New directories created at runtime are added to the watch list. Anything
// under an ignored directory (typically the output directory) is dropped.
func Watch(ctx context.Context, root string, logger *slog.Logger, debounce time.Duration, rebuild RebuildFunc, ignore ...string) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	ignored := make([]string, 0, len(ignore))
	for _, dir := range ignore {
		if abs, err := filepath.Abs(dir); err == nil {
			ignored = append(ignored, abs)
		}
	}
	isIgnored := func(p string) bool {
		for _, dir := range ignored {
			if p == dir || strings.HasPrefix(p, dir+string(os.PathSeparator)) {
				return true
			}
		}
		return false
	}

	if err := addDirsRecursive(w, root, isIgnored); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	var pending []Change
	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func(c Change) {
		pending = append(pending, c)
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			changes := pending
			pending = nil
			logger.Debug("watcher: rebuilding", slog.Int("changes", len(changes)))
			rebuild(changes)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath, err := filepath.Abs(ev.Name)
			if err != nil || isIgnored(absPath) {
				continue
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath, isIgnored); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", absPath))
					}
					// The directory may already hold chapters.
					schedule(Change{Kind: "created", Path: relPath(root, absPath)})
					continue
				}
			}

			if !strings.HasSuffix(absPath, ".md") {
				continue
			}
			rel := relPath(root, absPath)

			switch {
			case ev.Op&fsnotify.Create != 0:
				schedule(Change{Kind: "created", Path: rel})
			case ev.Op&fsnotify.Write != 0:
				schedule(Change{Kind: "updated", Path: rel})
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				// Rename fires on the old path only; the new path arrives as
				// a separate Create.
				schedule(Change{Kind: "deleted", Path: rel})
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func relPath(root, abs string) string {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return abs
	}
	rel, err := filepath.Rel(absRoot, abs)
	if err != nil {
		return abs
	}
	return filepath.ToSlash(rel)
}

// addDirsRecursive adds root and all its subdirectories to the watcher,
// skipping hidden and ignored directories.
func addDirsRecursive(w *fsnotify.Watcher, root string, ignored func(string) bool) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		abs, absErr := filepath.Abs(p)
		if absErr == nil && ignored(abs) {
			return filepath.SkipDir
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(p)
	})
}
