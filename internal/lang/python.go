package lang

import (
	"context"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Python visibility policy: a leading underscore marks a declaration private
// (functions, classes, and methods alike); everything else is public.

func init() {
	Registry["python"] = pythonStrategy{}
}

type pythonStrategy struct{}

func (pythonStrategy) Name() string { return "python" }

func (pythonStrategy) Parse(ctx context.Context, src []byte) (*sitter.Tree, error) {
	return newParser(python.GetLanguage()).ParseCtx(ctx, nil, src)
}

func (pythonStrategy) Declarations(tree *sitter.Tree, src []byte) []Declaration {
	var decls []Declaration

	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		switch n.Type() {
		case "function_definition":
			if d, ok := pythonFunction(n, src); ok {
				decls = append(decls, d)
			}
		case "class_definition":
			if name := nodeText(n.ChildByFieldName("name"), src); name != "" {
				decls = append(decls, Declaration{
					Name:   name,
					Kind:   KindClass,
					Line:   nodeLine(n),
					Public: !strings.HasPrefix(name, "_"),
				})
			}
		case "assignment":
			if d, ok := pythonModuleVariable(n, src); ok {
				decls = append(decls, d)
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			visit(n.Child(i))
		}
	}
	visit(tree.RootNode())
	return decls
}

// pythonModuleVariable extracts a module-level assignment to a bare name.
// Assignments inside functions and classes are skipped; UPPER_SNAKE names
// classify as constants.
func pythonModuleVariable(n *sitter.Node, src []byte) (Declaration, bool) {
	parent := n.Parent()
	if parent == nil || parent.Type() != "expression_statement" {
		return Declaration{}, false
	}
	if gp := parent.Parent(); gp == nil || gp.Type() != "module" {
		return Declaration{}, false
	}
	left := n.ChildByFieldName("left")
	if left == nil || left.Type() != "identifier" {
		return Declaration{}, false
	}
	name := nodeText(left, src)

	kind := KindVariable
	if name == strings.ToUpper(name) && strings.ContainsAny(name, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		kind = KindConstant
	}
	return Declaration{
		Name:   name,
		Kind:   kind,
		Line:   nodeLine(n),
		Public: !strings.HasPrefix(name, "_"),
	}, true
}

func pythonFunction(n *sitter.Node, src []byte) (Declaration, bool) {
	name := nodeText(n.ChildByFieldName("name"), src)
	if name == "" {
		return Declaration{}, false
	}

	kind := KindFunction
	if pythonEnclosingClass(n) != nil {
		kind = KindMethod
	}

	d := Declaration{
		Name:       name,
		Kind:       kind,
		Line:       nodeLine(n),
		Public:     !strings.HasPrefix(name, "_"),
		ReturnType: nodeText(n.ChildByFieldName("return_type"), src),
	}

	if params := n.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.ChildCount()); i++ {
			child := params.Child(i)
			switch child.Type() {
			case "identifier":
				d.Params = append(d.Params, Param{Name: nodeText(child, src)})
			case "typed_parameter":
				p := Param{Type: nodeText(child.ChildByFieldName("type"), src)}
				// The name is the first identifier child; typed_parameter has
				// no "name" field in this grammar version.
				for j := 0; j < int(child.ChildCount()); j++ {
					if c := child.Child(j); c.Type() == "identifier" {
						p.Name = nodeText(c, src)
						break
					}
				}
				if p.Name != "" {
					d.Params = append(d.Params, p)
				}
			case "default_parameter", "typed_default_parameter":
				if name := nodeText(child.ChildByFieldName("name"), src); name != "" {
					d.Params = append(d.Params, Param{Name: name, HasDefault: true})
				}
			case "list_splat_pattern", "dictionary_splat_pattern":
				d.Params = append(d.Params, Param{Name: nodeText(child, src)})
			}
		}
	}
	return d, true
}

// pythonEnclosingClass walks up from a function_definition looking for a
// containing class, accounting for decorated definitions.
func pythonEnclosingClass(fn *sitter.Node) *sitter.Node {
	parent := fn.Parent()
	if parent == nil {
		return nil
	}
	if parent.Type() == "decorated_definition" {
		parent = parent.Parent()
		if parent == nil {
			return nil
		}
	}
	if parent.Type() == "block" && parent.Parent() != nil && parent.Parent().Type() == "class_definition" {
		return parent.Parent()
	}
	return nil
}

func (pythonStrategy) Imports(tree *sitter.Tree, src []byte) []string {
	set := map[string]struct{}{}

	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		switch n.Type() {
		case "import_statement":
			// import a.b, import a.b as c
			for i := 0; i < int(n.ChildCount()); i++ {
				child := n.Child(i)
				switch child.Type() {
				case "dotted_name":
					set[nodeText(child, src)] = struct{}{}
				case "aliased_import":
					if name := child.ChildByFieldName("name"); name != nil {
						set[nodeText(name, src)] = struct{}{}
					}
				}
			}
		case "import_from_statement":
			// from a.b import c / from . import c
			if mod := n.ChildByFieldName("module_name"); mod != nil {
				set[nodeText(mod, src)] = struct{}{}
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			visit(n.Child(i))
		}
	}
	visit(tree.RootNode())

	return sortedKeys(set)
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
