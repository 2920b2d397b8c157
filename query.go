package drift

import (
	"sort"

	"github.com/nmoller/drift/internal/change"
)

// ScanResult partitions one scan pass over the repository. The four path
// slices are disjoint and sorted; every path in Added, Modified, and Deleted
// has an entry in Changes.
type ScanResult struct {
	Added     []string
	Modified  []string
	Deleted   []string
	Unchanged []string

	// Changes maps each added, modified, or deleted path to its classified
	// semantic change.
	Changes map[string]change.Result

	Summary change.Summary
}

// Changed reports whether the scan observed any change at all.
func (r *ScanResult) Changed() bool {
	return len(r.Added) > 0 || len(r.Modified) > 0 || len(r.Deleted) > 0
}

// ChangedPaths returns every added, modified, or deleted path, sorted.
func (r *ScanResult) ChangedPaths() []string {
	paths := make([]string, 0, len(r.Changes))
	for p := range r.Changes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Breaking returns the paths whose change was classified as breaking, sorted.
func (r *ScanResult) Breaking() []string {
	return r.byCategory(change.Breaking)
}

// Additive returns the paths whose change was classified as additive, sorted.
func (r *ScanResult) Additive() []string {
	return r.byCategory(change.Additive)
}

func (r *ScanResult) byCategory(cat change.Category) []string {
	var out []string
	for p, res := range r.Changes {
		if res.Category == cat {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// Dependencies returns the resolved direct dependencies of a tracked file.
func (e *Engine) Dependencies(path string) []string {
	return e.Graph().Dependencies(path)
}

// Dependents returns the tracked files that directly import path.
func (e *Engine) Dependents(path string) []string {
	return e.Graph().Dependents(path)
}

// TransitiveDependents returns every file that reaches path through one or
// more import edges. This is the blast radius of a change to path.
func (e *Engine) TransitiveDependents(path string) []string {
	return e.Graph().TransitiveDependents(path)
}

// Cycles returns the import cycles currently present in the graph.
func (e *Engine) Cycles() [][]string {
	return e.Graph().DetectCycles()
}

// AnalysisOrder returns tracked files in dependency-first order and whether
// the graph was acyclic. Files inside cycles are appended after the acyclic
// portion.
func (e *Engine) AnalysisOrder() ([]string, bool) {
	return e.Graph().TopologicalSort()
}

// Impact derives a human-readable impact statement for each direct dependent
// of a changed file, keyed by dependent path. The statement's severity follows
// the change's category.
func (e *Engine) Impact(path string, result change.Result) map[string]string {
	return change.Impact(path, result, e.Graph().Dependents(path))
}

// ImpactOf runs Impact for every changed path in a scan result. Paths with no
// dependents are omitted.
func (e *Engine) ImpactOf(result *ScanResult) map[string]map[string]string {
	out := map[string]map[string]string{}
	for path, res := range result.Changes {
		impacts := e.Impact(path, res)
		if len(impacts) > 0 {
			out[path] = impacts
		}
	}
	return out
}

// TrackedFiles returns every path with a stored snapshot, sorted.
func (e *Engine) TrackedFiles() []string {
	e.ensureLoaded()
	paths := make([]string, 0, len(e.snapshots))
	for p := range e.snapshots {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Declarations returns the stored declarations for a tracked path, or nil if
// the path is untracked.
func (e *Engine) Declarations(path string) []Declaration {
	snap := e.Snapshot(path)
	if snap == nil {
		return nil
	}
	return snap.Declarations
}
