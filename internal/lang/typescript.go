package lang

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	ts "github.com/smacker/go-tree-sitter/typescript/typescript"
)

func init() {
	Registry["typescript"] = typescriptStrategy{tag: "typescript", grammar: ts.GetLanguage()}
	Registry["tsx"] = typescriptStrategy{tag: "tsx", grammar: tsx.GetLanguage()}
}

// typescriptStrategy covers both the typescript and tsx grammars; extraction
// is shared with javascript.
type typescriptStrategy struct {
	tag     string
	grammar *sitter.Language
}

func (s typescriptStrategy) Name() string { return s.tag }

func (s typescriptStrategy) Parse(ctx context.Context, src []byte) (*sitter.Tree, error) {
	return newParser(s.grammar).ParseCtx(ctx, nil, src)
}

func (typescriptStrategy) Declarations(tree *sitter.Tree, src []byte) []Declaration {
	return scriptDeclarations(tree, src)
}

func (typescriptStrategy) Imports(tree *sitter.Tree, src []byte) []string {
	return scriptImports(tree, src)
}
