package lang

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Shared extraction for the ECMAScript family. The javascript, typescript,
// and tsx strategies differ only in grammar and in which node types their
// grammars can produce; one walk handles them all.
//
// Visibility policy: everything is public by convention, except method names
// with a leading underscore and TypeScript members carrying a private or
// protected accessibility modifier.

func scriptDeclarations(tree *sitter.Tree, src []byte) []Declaration {
	var decls []Declaration

	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		switch n.Type() {
		case "function_declaration", "generator_function_declaration":
			if name := nodeText(n.ChildByFieldName("name"), src); name != "" {
				decls = append(decls, Declaration{
					Name:       name,
					Kind:       KindFunction,
					Line:       nodeLine(n),
					Public:     true,
					Params:     scriptParams(n.ChildByFieldName("parameters"), src),
					ReturnType: annotationText(n.ChildByFieldName("return_type"), src),
				})
			}
		case "class_declaration":
			if name := nodeText(n.ChildByFieldName("name"), src); name != "" {
				decls = append(decls, Declaration{
					Name:   name,
					Kind:   KindClass,
					Line:   nodeLine(n),
					Public: true,
				})
			}
		case "interface_declaration":
			if name := nodeText(n.ChildByFieldName("name"), src); name != "" {
				decls = append(decls, Declaration{
					Name:   name,
					Kind:   KindInterface,
					Line:   nodeLine(n),
					Public: true,
				})
			}
		case "method_definition":
			if name := nodeText(n.ChildByFieldName("name"), src); name != "" {
				decls = append(decls, Declaration{
					Name:       name,
					Kind:       KindMethod,
					Line:       nodeLine(n),
					Public:     scriptMethodPublic(n, name, src),
					Params:     scriptParams(n.ChildByFieldName("parameters"), src),
					ReturnType: annotationText(n.ChildByFieldName("return_type"), src),
				})
			}
		case "variable_declaration", "lexical_declaration":
			isConst := strings.HasPrefix(nodeText(n, src), "const")
			for i := 0; i < int(n.ChildCount()); i++ {
				child := n.Child(i)
				if child.Type() != "variable_declarator" {
					continue
				}
				name := nodeText(child.ChildByFieldName("name"), src)
				if name == "" {
					continue
				}
				kind := KindVariable
				if isConst && name == strings.ToUpper(name) && strings.ContainsAny(name, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
					kind = KindConstant
				}
				decls = append(decls, Declaration{
					Name:   name,
					Kind:   kind,
					Line:   nodeLine(child),
					Public: true,
				})
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			visit(n.Child(i))
		}
	}
	visit(tree.RootNode())
	return decls
}

func scriptMethodPublic(n *sitter.Node, name string, src []byte) bool {
	if strings.HasPrefix(name, "_") || strings.HasPrefix(name, "#") {
		return false
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.Type() == "accessibility_modifier" {
			mod := nodeText(child, src)
			if mod == "private" || mod == "protected" {
				return false
			}
		}
	}
	return true
}

func scriptParams(params *sitter.Node, src []byte) []Param {
	if params == nil {
		return nil
	}
	var out []Param
	for i := 0; i < int(params.ChildCount()); i++ {
		child := params.Child(i)
		switch child.Type() {
		case "identifier":
			out = append(out, Param{Name: nodeText(child, src)})
		case "required_parameter":
			name := nodeText(child.ChildByFieldName("pattern"), src)
			if name == "" {
				continue
			}
			if child.ChildByFieldName("value") != nil {
				out = append(out, Param{Name: name, HasDefault: true})
				continue
			}
			out = append(out, Param{Name: name, Type: annotationText(child.ChildByFieldName("type"), src)})
		case "optional_parameter":
			if name := nodeText(child.ChildByFieldName("pattern"), src); name != "" {
				out = append(out, Param{Name: name, Optional: true})
			}
		case "assignment_pattern":
			// Plain JavaScript default: (a = 1)
			if name := nodeText(child.ChildByFieldName("left"), src); name != "" {
				out = append(out, Param{Name: name, HasDefault: true})
			}
		case "rest_pattern":
			out = append(out, Param{Name: nodeText(child, src)})
		}
	}
	return out
}

// annotationText returns the text of a type_annotation node with the leading
// colon stripped, or "" when absent.
func annotationText(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(nodeText(n, src)), ":"))
}

func scriptImports(tree *sitter.Tree, src []byte) []string {
	set := map[string]struct{}{}

	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		if n.Type() == "import_statement" {
			if source := n.ChildByFieldName("source"); source != nil {
				spec := strings.Trim(nodeText(source, src), `"'`)
				if spec != "" {
					set[spec] = struct{}{}
				}
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			visit(n.Child(i))
		}
	}
	visit(tree.RootNode())

	return sortedKeys(set)
}
