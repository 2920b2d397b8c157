package graph

import (
	"path"
	"strings"
)

// A resolver maps a raw import string to a tracked path under one language's
// resolution policy. Resolvers only probe the tracked node set; there is no
// filesystem access here.
type resolver func(g *Graph, sourcePath, name string) (string, bool)

// resolvers is keyed by language tag. Languages without an entry never
// produce edges.
var resolvers = map[string]resolver{
	"python":     resolvePython,
	"javascript": resolveScript,
	"typescript": resolveScript,
	"tsx":        resolveScript,
}

// resolve memoizes resolver outcomes per (source path, raw import) pair.
// Entries are invalidated when either endpoint leaves the tracked set.
func (g *Graph) resolve(sourcePath, name, language string) (string, bool) {
	key := cacheKey{source: sourcePath, imp: name}
	if entry, ok := g.cache[key]; ok {
		return entry.path, entry.ok
	}

	var target string
	var ok bool
	if r, known := resolvers[language]; known {
		target, ok = r(g, sourcePath, name)
	}
	g.cache[key] = cacheEntry{path: target, ok: ok}
	return target, ok
}

// resolvePython maps dotted module imports to tracked paths.
//
// Relative imports count leading dots to determine how many directory levels
// to ascend from the importing file; the remaining dotted suffix maps to a
// path. Absolute imports map dots to separators from the tree root. Both try
// the module as a file and as a package index (__init__.py).
func resolvePython(g *Graph, sourcePath, name string) (string, bool) {
	var base string
	rest := name

	if strings.HasPrefix(name, ".") {
		level := 0
		for level < len(name) && name[level] == '.' {
			level++
		}
		rest = name[level:]

		dir := path.Dir(sourcePath)
		for i := 0; i < level-1; i++ {
			dir = path.Dir(dir)
		}
		if dir == "." {
			dir = ""
		}
		base = dir
	}

	module := strings.ReplaceAll(rest, ".", "/")
	joined := module
	if base != "" {
		joined = path.Join(base, module)
	}

	candidates := []string{
		joined + ".py",
		path.Join(joined, "__init__.py"),
	}
	for _, candidate := range candidates {
		if g.Has(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// scriptExtensions is the candidate extension list for ECMAScript-family
// relative imports, tried in order.
var scriptExtensions = []string{".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs"}

// resolveScript maps relative path imports ("./x", "../x") against the
// importing file's directory, trying the bare path, each known extension,
// and index files per extension. Bare package specifiers are external
// dependencies and stay unresolved.
func resolveScript(g *Graph, sourcePath, name string) (string, bool) {
	if !strings.HasPrefix(name, "./") && !strings.HasPrefix(name, "../") {
		return "", false
	}

	target := path.Join(path.Dir(sourcePath), name)

	candidates := []string{target}
	hasExt := false
	for _, ext := range scriptExtensions {
		if strings.HasSuffix(target, ext) {
			hasExt = true
			break
		}
	}
	if !hasExt {
		for _, ext := range scriptExtensions {
			candidates = append(candidates, target+ext)
		}
		for _, ext := range scriptExtensions {
			candidates = append(candidates, path.Join(target, "index"+ext))
		}
	}

	for _, candidate := range candidates {
		if g.Has(candidate) {
			return candidate, true
		}
	}
	return "", false
}
