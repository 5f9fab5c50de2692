// Package catalog keeps the result of the latest index run in SQLite so the
// HTTP and MCP surfaces can query it. Every run replaces the whole catalog.
package catalog

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// MemoryDSN opens a private in-memory catalog.
const MemoryDSN = ":memory:"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	started_at DATETIME NOT NULL,
	chapters   INTEGER NOT NULL DEFAULT 0,
	tags       INTEGER NOT NULL DEFAULT 0,
	mentions   INTEGER NOT NULL DEFAULT 0,
	rewrite    TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS chapters (
	path     TEXT PRIMARY KEY,
	name     TEXT NOT NULL DEFAULT '',
	position INTEGER NOT NULL,
	checksum TEXT NOT NULL DEFAULT '',
	content  TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS occurrences (
	kind TEXT NOT NULL,
	name TEXT NOT NULL,
	path TEXT NOT NULL,
	seq  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_occurrences_marker ON occurrences(kind, name);
CREATE INDEX IF NOT EXISTS idx_occurrences_path ON occurrences(path);
`

// DB wraps a sql.DB with catalog-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite catalog and applies the schema.
// MemoryDSN keeps the catalog in memory on a single connection.
func Open(dsn string) (*DB, error) {
	source := dsn + "?_journal_mode=WAL&_busy_timeout=5000"
	if dsn == MemoryDSN {
		source = dsn
	}
	conn, err := sql.Open("sqlite3", source)
	if err != nil {
		return nil, fmt.Errorf("catalog: open db: %w", err)
	}
	if dsn == MemoryDSN {
		// Every connection to :memory: is a separate database.
		conn.SetMaxOpenConns(1)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("catalog: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("catalog: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
