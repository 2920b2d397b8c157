// Package store persists scan state between passes: one row per tracked
// file snapshot plus the dependency graph's nodes and edges, in SQLite.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nmoller/drift/internal/change"
	"github.com/nmoller/drift/internal/lang"
)

// Snapshot is the per-tracked-path record. It is created on first successful
// scan of a path, replaced wholesale (never merged) when the content hash
// changes, and removed when the path disappears.
type Snapshot struct {
	Path           string
	Language       string
	ContentHash    string
	StructuralHash string // ast:... or source:... tagged
	Imports        []string
	Declarations   []lang.Declaration
	Category       change.Category // last classification
	ChangeType     string          // added / modified / deleted / unchanged
	LastModified   time.Time
}

// Store is the SQLite data access layer.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the state database at dbPath with WAL mode.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the schema. Idempotent.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS files (
  path              TEXT PRIMARY KEY,
  language          TEXT NOT NULL,
  hash              TEXT NOT NULL,
  ast_hash          TEXT NOT NULL,
  definitions       TEXT NOT NULL DEFAULT '[]',
  imports           TEXT NOT NULL DEFAULT '[]',
  semantic_category TEXT NOT NULL DEFAULT '',
  change_type       TEXT NOT NULL DEFAULT '',
  last_modified     TIMESTAMP
);

CREATE TABLE IF NOT EXISTS graph_nodes (
  path     TEXT PRIMARY KEY,
  imports  TEXT NOT NULL DEFAULT '[]',
  language TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS graph_edges (
  src TEXT NOT NULL,
  dst TEXT NOT NULL,
  PRIMARY KEY (src, dst)
);

CREATE INDEX IF NOT EXISTS idx_graph_edges_dst ON graph_edges(dst);
`
