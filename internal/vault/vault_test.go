package vault

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/bookindex/internal/book"
	"github.com/starford/bookindex/internal/storage"
)

func tempStore(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return dir, store
}

func TestLoad(t *testing.T) {
	_, store := tempStore(t)
	_ = store.Write("b.md", []byte("# Second\n#go"))
	_ = store.Write("a.md", []byte("no heading @ann"))
	_ = store.Write("sub/c.md", []byte("# Third"))
	_ = store.Write("SUMMARY.md", []byte("- [A](a.md)"))
	_ = store.Write("tags.md", []byte("# Tags\n\n## #go\n"))

	b, err := Load(store, "tags.md", "mentions.md")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	chapters := b.Chapters()
	if len(chapters) != 3 {
		t.Fatalf("chapters = %d, want 3", len(chapters))
	}
	want := []struct{ path, name string }{
		{"a.md", "a"},
		{"b.md", "Second"},
		{"sub/c.md", "Third"},
	}
	for i, w := range want {
		if chapters[i].ID() != w.path || chapters[i].Name != w.name {
			t.Errorf("chapter %d = %s/%s, want %s/%s", i, chapters[i].ID(), chapters[i].Name, w.path, w.name)
		}
		if len(chapters[i].Number) != 1 || chapters[i].Number[0] != uint32(i+1) {
			t.Errorf("chapter %d number = %v", i, chapters[i].Number)
		}
	}
	if chapters[1].Content != "# Second\n#go" {
		t.Errorf("content = %q", chapters[1].Content)
	}
}

func TestWrite_SkipsUnchangedAndPrunes(t *testing.T) {
	_, out := tempStore(t)
	b := &book.Book{}
	b.Push(book.ChapterItem(book.NewChapter("A", "alpha", "a.md")))
	b.Push(book.ChapterItem(book.NewChapter("B", "beta", "dir/b.md")))
	b.Push(book.ChapterItem(&book.Chapter{Name: "Draft"}))

	st, err := Write(out, b)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if st.Written != 2 || st.Unchanged != 0 || st.Removed != 0 {
		t.Errorf("first write stats = %+v", st)
	}

	_ = out.Write("stale.md", []byte("old"))
	b.Chapters()[0].Content = "alpha v2"

	st, err = Write(out, b)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if st.Written != 1 || st.Unchanged != 1 || st.Removed != 1 {
		t.Errorf("second write stats = %+v", st)
	}
	got, _ := out.Read("a.md")
	if string(got) != "alpha v2" {
		t.Errorf("a.md = %q", got)
	}
	if _, err := out.Read("stale.md"); err == nil {
		t.Error("stale.md should be removed")
	}
}

func TestDeriveTitle(t *testing.T) {
	if got := deriveTitle("x/intro.md", "text\n  # Welcome  \nmore"); got != "Welcome" {
		t.Errorf("title = %q", got)
	}
	if got := deriveTitle("x/intro.md", "## Not h1\n#tag"); got != "intro" {
		t.Errorf("title = %q", got)
	}
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatch_RebuildsOnChange(t *testing.T) {
	dir, _ := tempStore(t)
	outDir := filepath.Join(dir, "out")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var changes []Change
	go Watch(ctx, dir, logger, 50*time.Millisecond, func(batch []Change) {
		mu.Lock()
		changes = append(changes, batch...)
		mu.Unlock()
	}, outDir)

	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(outDir, "ignored.md"), []byte("#x"), 0o644)
	_ = os.WriteFile(filepath.Join(dir, "new.md"), []byte("#x"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, c := range changes {
			if c.Path == "new.md" {
				return true
			}
		}
		return false
	}, "expected a rebuild for new.md")

	mu.Lock()
	defer mu.Unlock()
	for _, c := range changes {
		if c.Path == "out/ignored.md" {
			t.Error("changes under the ignored dir should be dropped")
		}
	}
}
