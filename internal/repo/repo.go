// Package repo is the repository provider: deterministic discovery of
// tracked source files plus best-effort git metadata. The analysis core
// never walks the filesystem itself beyond reading file bytes; this package
// is its only view of the tree.
package repo

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/nmoller/drift/internal/config"
	"github.com/nmoller/drift/internal/lang"
)

// skipDirs are never descended into, regardless of gitignore or config.
var skipDirs = map[string]struct{}{
	".git":          {},
	".hg":           {},
	".svn":          {},
	config.Dir:      {},
	"node_modules":  {},
	"__pycache__":   {},
	"venv":          {},
	".venv":         {},
	"env":           {},
	".env":          {},
	"dist":          {},
	"build":         {},
	".tox":          {},
	".mypy_cache":   {},
	".ruff_cache":   {},
	".pytest_cache": {},
}

// Repository provides file discovery and metadata for one source tree.
type Repository struct {
	Root   string
	Name   string
	Branch string
	Commit string

	cfg       *config.Config
	langSet   map[string]struct{} // nil means all languages
	gitIgnore *ignore.GitIgnore   // parsed .gitignore, may be nil
}

// New creates a Repository rooted at root. Git branch and commit are
// captured best-effort and stay empty outside a git checkout.
func New(root string, cfg *config.Config) (*Repository, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", abs)
	}

	if cfg == nil {
		cfg = config.Default()
	}
	r := &Repository{
		Root:   abs,
		Name:   filepath.Base(abs),
		Branch: gitOutput(abs, "rev-parse", "--abbrev-ref", "HEAD"),
		Commit: gitOutput(abs, "rev-parse", "--short", "HEAD"),
		cfg:    cfg,
	}
	if len(cfg.Languages) > 0 {
		r.langSet = make(map[string]struct{}, len(cfg.Languages))
		for _, l := range cfg.Languages {
			r.langSet[strings.ToLower(l)] = struct{}{}
		}
	}
	if gi, err := ignore.CompileIgnoreFile(filepath.Join(abs, ".gitignore")); err == nil {
		r.gitIgnore = gi
	}
	return r, nil
}

// Files discovers tracked source files: supported extensions, not ignored,
// returned as sorted slash-separated paths relative to the root.
func (r *Repository) Files() ([]string, error) {
	var files []string

	err := filepath.WalkDir(r.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable directory entries
		}
		rel, relErr := filepath.Rel(r.Root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if _, skip := skipDirs[d.Name()]; skip {
				return filepath.SkipDir
			}
			if r.gitIgnore != nil && r.gitIgnore.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		tag, supported := lang.ForPath(rel)
		if !supported {
			return nil
		}
		if r.langSet != nil {
			if _, ok := r.langSet[tag]; !ok {
				return nil
			}
		}
		if r.gitIgnore != nil && r.gitIgnore.MatchesPath(rel) {
			return nil
		}
		if r.cfg.Ignored(rel) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", r.Root, err)
	}

	sort.Strings(files)
	return files, nil
}

// Language returns the canonical language tag for a tracked path.
func (r *Repository) Language(rel string) (string, bool) {
	return lang.ForPath(rel)
}

// Abs converts a repo-relative path to an absolute one.
func (r *Repository) Abs(rel string) string {
	return filepath.Join(r.Root, filepath.FromSlash(rel))
}

func gitOutput(dir string, args ...string) string {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
