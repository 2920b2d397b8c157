// Package lang provides the per-language structural front-ends: tree-sitter
// parsing, declaration and import extraction, and structural fingerprinting.
//
// Each supported language registers a Strategy from an init() function in its
// own file. Dispatch happens through the registry; adding a language means
// adding a file, not touching dispatch logic.
package lang

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Kind classifies a declaration.
type Kind string

const (
	KindFunction  Kind = "function"
	KindClass     Kind = "class"
	KindMethod    Kind = "method"
	KindVariable  Kind = "variable"
	KindConstant  Kind = "constant"
	KindInterface Kind = "interface"
)

// Declaration is one named code element found by parsing. Declarations are
// value objects; within one file they are compared by name.
type Declaration struct {
	Name       string  `json:"name"`
	Kind       Kind    `json:"kind"`
	Line       int     `json:"line"` // 1-based
	Public     bool    `json:"public"`
	Params     []Param `json:"params,omitempty"`
	ReturnType string  `json:"return_type,omitempty"`
}

// Strategy is the per-language contract: parse source text, extract
// declarations and raw import strings. Both extraction methods are pure
// functions of (tree, src); no state survives between calls, so a Strategy
// is safe to share across goroutines.
type Strategy interface {
	// Name returns the canonical language tag ("python", "javascript", ...).
	Name() string

	// Parse turns source text into a syntax tree. A nil tree with a non-nil
	// error is the typed failure outcome; callers degrade to the fallback
	// fingerprint and empty declarations, they do not abort.
	Parse(ctx context.Context, src []byte) (*sitter.Tree, error)

	// Declarations extracts the named code elements of the file.
	Declarations(tree *sitter.Tree, src []byte) []Declaration

	// Imports extracts raw import strings exactly as written in source.
	Imports(tree *sitter.Tree, src []byte) []string
}

// Registry maps language tags to their strategies. Populated by init()
// functions in the per-language files.
var Registry = map[string]Strategy{}

// extToLanguage maps file extensions to canonical language tags.
var extToLanguage = map[string]string{
	".py":  "python",
	".js":  "javascript",
	".jsx": "javascript",
	".mjs": "javascript",
	".cjs": "javascript",
	".ts":  "typescript",
	".tsx": "tsx",
}

// ForLanguage returns the strategy for a canonical language tag.
func ForLanguage(tag string) (Strategy, bool) {
	s, ok := Registry[strings.ToLower(tag)]
	return s, ok
}

// ForPath returns the canonical language tag for a file path based on its
// extension. Returns ("", false) for unsupported extensions.
func ForPath(path string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	tag, ok := extToLanguage[ext]
	return tag, ok
}

// Extensions returns the supported file extensions, sorted.
func Extensions() []string {
	exts := make([]string, 0, len(extToLanguage))
	for ext := range extToLanguage {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// newParser returns a fresh tree-sitter parser for the grammar. Parsers are
// not thread-safe, so each Parse call builds its own.
func newParser(grammar *sitter.Language) *sitter.Parser {
	p := sitter.NewParser()
	p.SetLanguage(grammar)
	return p
}

// nodeText returns the source text of a tree-sitter node.
func nodeText(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	return string(src[n.StartByte():n.EndByte()])
}

// nodeLine returns the 1-based start line of a node.
func nodeLine(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}
