package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/nmoller/drift/internal/change"
	"github.com/nmoller/drift/internal/graph"
	"github.com/nmoller/drift/internal/lang"
)

// Load reads the prior snapshot map and dependency-graph state. On any
// decode error the caller is expected to fall back to empty state (full
// rescan) rather than attempt partial recovery.
func (s *Store) Load() (map[string]*Snapshot, graph.State, error) {
	snapshots, err := s.loadSnapshots()
	if err != nil {
		return nil, emptyGraphState(), err
	}
	gs, err := s.loadGraphState()
	if err != nil {
		return nil, emptyGraphState(), err
	}
	return snapshots, gs, nil
}

func emptyGraphState() graph.State {
	return graph.State{
		Nodes:        map[string]graph.NodeState{},
		Dependencies: map[string][]string{},
		Dependents:   map[string][]string{},
	}
}

func (s *Store) loadSnapshots() (map[string]*Snapshot, error) {
	rows, err := s.db.Query(`
		SELECT path, language, hash, ast_hash, definitions, imports,
		       semantic_category, change_type, last_modified
		FROM files`)
	if err != nil {
		return nil, fmt.Errorf("query files: %w", err)
	}
	defer rows.Close()

	snapshots := map[string]*Snapshot{}
	for rows.Next() {
		var snap Snapshot
		var defs, imports, category string
		var lastModified sql.NullTime
		if err := rows.Scan(
			&snap.Path, &snap.Language, &snap.ContentHash, &snap.StructuralHash,
			&defs, &imports, &category, &snap.ChangeType, &lastModified,
		); err != nil {
			return nil, fmt.Errorf("scan file row: %w", err)
		}
		if err := json.Unmarshal([]byte(defs), &snap.Declarations); err != nil {
			return nil, fmt.Errorf("decode definitions for %s: %w", snap.Path, err)
		}
		if err := json.Unmarshal([]byte(imports), &snap.Imports); err != nil {
			return nil, fmt.Errorf("decode imports for %s: %w", snap.Path, err)
		}
		snap.Category = change.Category(category)
		if lastModified.Valid {
			snap.LastModified = lastModified.Time
		}
		snapshots[snap.Path] = &snap
	}
	return snapshots, rows.Err()
}

func (s *Store) loadGraphState() (graph.State, error) {
	gs := emptyGraphState()

	rows, err := s.db.Query(`SELECT path, imports, language FROM graph_nodes`)
	if err != nil {
		return gs, fmt.Errorf("query graph nodes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var path, imports, language string
		if err := rows.Scan(&path, &imports, &language); err != nil {
			return gs, fmt.Errorf("scan graph node: %w", err)
		}
		node := graph.NodeState{Language: language}
		if err := json.Unmarshal([]byte(imports), &node.Imports); err != nil {
			return gs, fmt.Errorf("decode imports for %s: %w", path, err)
		}
		gs.Nodes[path] = node
	}
	if err := rows.Err(); err != nil {
		return gs, err
	}

	edges, err := s.db.Query(`SELECT src, dst FROM graph_edges`)
	if err != nil {
		return gs, fmt.Errorf("query graph edges: %w", err)
	}
	defer edges.Close()
	for edges.Next() {
		var src, dst string
		if err := edges.Scan(&src, &dst); err != nil {
			return gs, fmt.Errorf("scan graph edge: %w", err)
		}
		gs.Dependencies[src] = append(gs.Dependencies[src], dst)
		gs.Dependents[dst] = append(gs.Dependents[dst], src)
	}
	return gs, edges.Err()
}

// Save rewrites the full state inside one transaction.
func (s *Store) Save(snapshots map[string]*Snapshot, gs graph.State) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"files", "graph_nodes", "graph_edges"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	fileStmt, err := tx.Prepare(`
		INSERT INTO files (path, language, hash, ast_hash, definitions, imports,
		                   semantic_category, change_type, last_modified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare files insert: %w", err)
	}
	defer fileStmt.Close()

	for _, snap := range snapshots {
		defs, err := json.Marshal(orEmptyDecls(snap.Declarations))
		if err != nil {
			return fmt.Errorf("encode definitions for %s: %w", snap.Path, err)
		}
		imports, err := json.Marshal(orEmptyStrings(snap.Imports))
		if err != nil {
			return fmt.Errorf("encode imports for %s: %w", snap.Path, err)
		}
		if _, err := fileStmt.Exec(
			snap.Path, snap.Language, snap.ContentHash, snap.StructuralHash,
			string(defs), string(imports), string(snap.Category), snap.ChangeType,
			snap.LastModified,
		); err != nil {
			return fmt.Errorf("insert file %s: %w", snap.Path, err)
		}
	}

	nodeStmt, err := tx.Prepare(`INSERT INTO graph_nodes (path, imports, language) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare node insert: %w", err)
	}
	defer nodeStmt.Close()

	for path, node := range gs.Nodes {
		imports, err := json.Marshal(orEmptyStrings(node.Imports))
		if err != nil {
			return fmt.Errorf("encode node imports for %s: %w", path, err)
		}
		if _, err := nodeStmt.Exec(path, string(imports), node.Language); err != nil {
			return fmt.Errorf("insert node %s: %w", path, err)
		}
	}

	edgeStmt, err := tx.Prepare(`INSERT INTO graph_edges (src, dst) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare edge insert: %w", err)
	}
	defer edgeStmt.Close()

	for src, targets := range gs.Dependencies {
		for _, dst := range targets {
			if _, err := edgeStmt.Exec(src, dst); err != nil {
				return fmt.Errorf("insert edge %s -> %s: %w", src, dst, err)
			}
		}
	}

	return tx.Commit()
}

func orEmptyDecls(d []lang.Declaration) []lang.Declaration {
	if d == nil {
		return []lang.Declaration{}
	}
	return d
}

func orEmptyStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
