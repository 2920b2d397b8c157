package drift

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"
	"lukechampine.com/blake3"

	"github.com/nmoller/drift/internal/change"
	"github.com/nmoller/drift/internal/config"
	"github.com/nmoller/drift/internal/graph"
	"github.com/nmoller/drift/internal/lang"
	"github.com/nmoller/drift/internal/repo"
	"github.com/nmoller/drift/internal/store"
)

// Engine orchestrates one scan pass: file discovery, change detection,
// structural parsing, dependency-graph maintenance, semantic classification,
// and state persistence.
type Engine struct {
	root      string
	statePath string
	cfg       *config.Config
	repo      *repo.Repository
	store     *store.Store
	log       *zap.Logger

	// useParallel enables the worker-pool parse phase.
	useParallel bool

	// In-memory state, loaded lazily on first use.
	snapshots map[string]*store.Snapshot
	graph     *graph.Graph
	loaded    bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithParallel controls the parallel parse phase. When true (default), Scan
// fans structural parsing out across a worker pool and commits results from
// a single goroutine. Set to false for fully serial scans.
func WithParallel(parallel bool) Option {
	return func(e *Engine) { e.useParallel = parallel }
}

// WithConfig overrides the configuration loaded from .drift/config.yaml.
func WithConfig(cfg *config.Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// WithLanguages restricts scanning to the listed language tags.
func WithLanguages(languages ...string) Option {
	return func(e *Engine) {
		if e.cfg == nil {
			e.cfg = config.Default()
		}
		e.cfg.Languages = languages
	}
}

// WithStatePath overrides the state database location, which defaults to
// .drift/state.db under the root.
func WithStatePath(path string) Option {
	return func(e *Engine) { e.statePath = path }
}

// New creates an Engine for the repository rooted at root. The root is an
// explicit constructor argument; nothing here depends on the process working
// directory.
func New(root string, opts ...Option) (*Engine, error) {
	e := &Engine{
		root:        root,
		log:         zap.NewNop(),
		useParallel: true,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.cfg == nil {
		cfg, err := config.Load(root)
		if err != nil {
			return nil, fmt.Errorf("drift: load config: %w", err)
		}
		e.cfg = cfg
	}

	r, err := repo.New(root, e.cfg)
	if err != nil {
		return nil, fmt.Errorf("drift: open repository: %w", err)
	}
	e.repo = r

	if e.statePath == "" {
		e.statePath = config.StatePath(r.Root)
	}
	if err := os.MkdirAll(filepath.Dir(e.statePath), 0o755); err != nil {
		return nil, fmt.Errorf("drift: create state dir: %w", err)
	}
	s, err := store.Open(e.statePath)
	if err != nil {
		return nil, fmt.Errorf("drift: open state store: %w", err)
	}
	e.store = s
	return e, nil
}

// Close releases the engine's database resources.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Repository returns the repository metadata provider.
func (e *Engine) Repository() *repo.Repository {
	return e.repo
}

// Graph returns the dependency graph for read-only queries. It reflects
// persisted state before the first Scan and live state afterward.
func (e *Engine) Graph() *graph.Graph {
	e.ensureLoaded()
	return e.graph
}

// Snapshot returns the stored snapshot for a tracked path, or nil.
func (e *Engine) Snapshot(path string) *store.Snapshot {
	e.ensureLoaded()
	return e.snapshots[path]
}

// ensureLoaded pulls persisted state into memory once. Corrupted state
// resets to empty: the next scan degrades to a full rescan, which is always
// safe.
func (e *Engine) ensureLoaded() {
	if e.loaded {
		return
	}
	snapshots, gs, err := e.store.Load()
	if err != nil {
		e.log.Warn("persisted state unreadable, resetting to empty",
			zap.String("state", e.statePath), zap.Error(err))
		snapshots = map[string]*store.Snapshot{}
		e.graph = graph.New()
	} else {
		e.graph = graph.FromState(gs)
	}
	e.snapshots = snapshots
	e.loaded = true
}

// contentHash hashes raw file bytes. Tagged so it can never be confused with
// a structural fingerprint.
func contentHash(data []byte) string {
	sum := blake3.Sum256(data)
	return "blake3:" + hex.EncodeToString(sum[:])
}

// parseItem is one file queued for structural parsing.
type parseItem struct {
	path     string
	language string
	src      []byte
	hash     string

	// backfill marks an unchanged file whose stored snapshot predates
	// structural analysis; it is re-parsed but not reclassified.
	backfill bool
}

// parseOutput is the result of structurally parsing one file.
type parseOutput struct {
	item         parseItem
	fingerprint  string
	declarations []lang.Declaration
	imports      []string
}

// parseOne runs the language strategy for one file. Parse failure is a
// degraded outcome, not an error: empty declarations, empty imports, and the
// raw-text fallback fingerprint.
func (e *Engine) parseOne(ctx context.Context, item parseItem) parseOutput {
	out := parseOutput{item: item}

	strategy, ok := lang.ForLanguage(item.language)
	if !ok {
		out.fingerprint = lang.FallbackFingerprint(item.src)
		return out
	}

	tree, err := strategy.Parse(ctx, item.src)
	if err != nil || tree == nil {
		e.log.Warn("structural parse failed, using fallback fingerprint",
			zap.String("path", item.path), zap.Error(err))
		out.fingerprint = lang.FallbackFingerprint(item.src)
		return out
	}
	defer tree.Close()

	out.fingerprint = lang.Fingerprint(tree, item.src)
	out.declarations = strategy.Declarations(tree, item.src)
	out.imports = strategy.Imports(tree, item.src)
	return out
}

// Scan runs one pass over the repository and returns the partitioned result.
// Three phases: serial hashing and partitioning, parallel (or serial)
// structural parsing, and a serial commit that mutates the graph and
// snapshot set and persists them.
func (e *Engine) Scan(ctx context.Context) (*ScanResult, error) {
	e.ensureLoaded()
	start := time.Now()

	paths, err := e.repo.Files()
	if err != nil {
		return nil, fmt.Errorf("drift: discover files: %w", err)
	}

	// ---- Phase A: hash and partition ----
	result := &ScanResult{Changes: map[string]change.Result{}}
	var items []parseItem
	current := make(map[string]struct{}, len(paths))

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		language, ok := e.repo.Language(path)
		if !ok {
			continue
		}

		src, readErr := os.ReadFile(e.repo.Abs(path))
		if readErr != nil {
			// Unreadable file: skip for this pass only. A previously tracked
			// path keeps its stored snapshot and counts as unchanged.
			e.log.Warn("skipping unreadable file", zap.String("path", path), zap.Error(readErr))
			if _, tracked := e.snapshots[path]; tracked {
				current[path] = struct{}{}
				result.Unchanged = append(result.Unchanged, path)
			}
			continue
		}
		current[path] = struct{}{}
		hash := contentHash(src)

		prior, tracked := e.snapshots[path]
		switch {
		case !tracked:
			result.Added = append(result.Added, path)
			items = append(items, parseItem{path: path, language: language, src: src, hash: hash})
		case prior.ContentHash != hash:
			result.Modified = append(result.Modified, path)
			items = append(items, parseItem{path: path, language: language, src: src, hash: hash})
		default:
			result.Unchanged = append(result.Unchanged, path)
			if prior.StructuralHash == "" {
				// Snapshot predates structural analysis: backfill it without
				// reclassifying.
				items = append(items, parseItem{path: path, language: language, src: src, hash: hash, backfill: true})
			}
		}
	}

	// ---- Phase B: structural parsing ----
	outputs, err := e.parseAll(ctx, items)
	if err != nil {
		return nil, err
	}

	// ---- Phase C: serial commit ----
	now := time.Now().UTC()
	addedNew := false
	for _, out := range outputs {
		item := out.item
		prior := e.snapshots[item.path]

		snap := &store.Snapshot{
			Path:           item.path,
			Language:       item.language,
			ContentHash:    item.hash,
			StructuralHash: out.fingerprint,
			Imports:        out.imports,
			Declarations:   out.declarations,
			LastModified:   now,
		}

		switch {
		case item.backfill:
			snap.Category = prior.Category
			snap.ChangeType = prior.ChangeType
			snap.LastModified = prior.LastModified
		case prior == nil:
			res := change.Classify(nil, out.declarations, "", out.fingerprint, false, true)
			result.Changes[item.path] = res
			snap.Category = res.Category
			snap.ChangeType = "added"
			addedNew = true
		default:
			res := change.Classify(prior.Declarations, out.declarations,
				prior.StructuralHash, out.fingerprint, true, true)
			result.Changes[item.path] = res
			snap.Category = res.Category
			snap.ChangeType = "modified"
		}

		e.snapshots[item.path] = snap
		e.graph.AddFile(item.path, snap.Imports, snap.Language)
	}

	// Deleted paths: previously tracked, absent from this discovery pass.
	for path, prior := range e.snapshots {
		if _, ok := current[path]; ok {
			continue
		}
		res := change.Classify(prior.Declarations, nil, prior.StructuralHash, "", true, false)
		result.Changes[path] = res
		result.Deleted = append(result.Deleted, path)
		delete(e.snapshots, path)
		e.graph.RemoveFile(path)
	}
	sort.Strings(result.Deleted)

	// New tracked paths may satisfy imports that were unresolvable before.
	if addedNew {
		e.graph.RefreshUnresolved()
	}

	result.Summary = change.Summarize(result.Changes)

	if err := e.store.Save(e.snapshots, e.graph.ToState()); err != nil {
		return nil, fmt.Errorf("drift: save state: %w", err)
	}

	e.log.Info("scan complete",
		zap.Int("added", len(result.Added)),
		zap.Int("modified", len(result.Modified)),
		zap.Int("deleted", len(result.Deleted)),
		zap.Int("unchanged", len(result.Unchanged)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}
