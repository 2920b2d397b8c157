package lang

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

func init() {
	Registry["javascript"] = javascriptStrategy{}
}

type javascriptStrategy struct{}

func (javascriptStrategy) Name() string { return "javascript" }

func (javascriptStrategy) Parse(ctx context.Context, src []byte) (*sitter.Tree, error) {
	return newParser(javascript.GetLanguage()).ParseCtx(ctx, nil, src)
}

func (javascriptStrategy) Declarations(tree *sitter.Tree, src []byte) []Declaration {
	return scriptDeclarations(tree, src)
}

func (javascriptStrategy) Imports(tree *sitter.Tree, src []byte) []string {
	return scriptImports(tree, src)
}
