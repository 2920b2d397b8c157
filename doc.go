// Package drift tracks the structural evolution of a codebase across scans.
// It parses source files with tree-sitter, fingerprints their declaration
// structure, maintains a directed import-dependency graph, and classifies
// every change by semantic severity.
//
// # Pipeline
//
// A scan runs in three phases:
//
//  1. Partition: Walk the repository, content-hash each tracked file, and
//     split paths into added, modified, unchanged, and deleted sets against
//     the persisted state.
//
//  2. Parse: For each added or modified file, parse with tree-sitter, extract
//     public and private declarations and import statements, and compute a
//     comment-insensitive structural fingerprint.
//
//  3. Classify and commit: Diff old and new declarations per file, assign a
//     change category, update the dependency graph, and persist the new
//     state to SQLite.
//
// # Usage
//
// Create an Engine at a repository root, scan, and query:
//
//	e, err := drift.New("path/to/project")
//	if err != nil { ... }
//	defer e.Close()
//
//	result, err := e.Scan(ctx)
//	for _, path := range result.Breaking() {
//		fmt.Println(path, result.Changes[path].Description)
//	}
//
// # Change Categories
//
// Every added, modified, or deleted file receives exactly one [Category]:
//
//   - [Breaking] — a public declaration was removed or its signature changed
//     incompatibly.
//   - [Additive] — public surface grew without modifying anything existing.
//   - [Internal] — only private declarations changed, or the file was deleted
//     with no public surface.
//   - [DocsOnly] — the structural fingerprint is unchanged; only comments or
//     formatting moved.
//   - [Unknown] — the change could not be attributed to any declaration.
//
// # Dependency Graph
//
// Import statements are resolved against the tracked file set only; imports
// of external packages stay unresolved and produce no edges. The graph
// answers direct and transitive dependency queries, detects import cycles,
// and orders files dependency-first via [Engine.AnalysisOrder].
//
// # State
//
// Scans are incremental. Snapshots and graph edges persist in a SQLite
// database under .drift/ at the repository root, so a second scan over an
// unchanged tree touches no parser at all.
package drift
