// Package testutil provides shared test helpers for setting up chapter
// directories, catalogs and services.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/bookindex/internal/catalog"
	"github.com/starford/bookindex/internal/indexer"
	"github.com/starford/bookindex/internal/indexservice"
	"github.com/starford/bookindex/internal/storage"
)

// TestCatalog creates a temporary SQLite catalog that is automatically cleaned up.
func TestCatalog(t *testing.T) *catalog.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "bookindex-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := catalog.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestVault creates a temporary source directory with a storage.Provider.
func TestVault(t *testing.T) (string, storage.Provider) {
	t.Helper()
	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	return vaultDir, store
}

// TestService writes files into a fresh source directory and returns a
// service over it with a temporary output directory and catalog.
func TestService(t *testing.T, files map[string]string) (*indexservice.Service, storage.Provider, storage.Provider) {
	t.Helper()
	_, source := TestVault(t)
	for p, content := range files {
		if err := source.Write(p, []byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	_, output := TestVault(t)
	proc := indexer.New(indexer.DefaultOptions(), nil)
	return indexservice.NewService(source, output, TestCatalog(t), proc, nil), source, output
}
