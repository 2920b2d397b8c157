// Package change classifies the semantic impact of a file modification by
// diffing two declaration snapshots. The output is one of five categories
// (breaking, additive, internal, docs-only, unknown) plus an itemized
// declaration-level diff.
//
// Declarations are diffed by name, not position. A renamed declaration is
// therefore indistinguishable from an unrelated remove-plus-add and will be
// reported as such; this is a documented limitation, not a bug to heuristic
// around.
package change

import (
	"fmt"
	"sort"

	"github.com/nmoller/drift/internal/lang"
)

// Category is the semantic-change classification of one file revision.
type Category string

const (
	Breaking Category = "breaking"  // removed public API or breaking signature change
	Additive Category = "additive"  // new public API, nothing removed
	Internal Category = "internal"  // private/internal code only
	DocsOnly Category = "docs-only" // comments, docstrings, whitespace
	Unknown  Category = "unknown"   // unable to classify
)

// ChangeKind describes what happened to one declaration.
type ChangeKind string

const (
	Added    ChangeKind = "added"
	Removed  ChangeKind = "removed"
	Modified ChangeKind = "modified"
)

// DeclarationChange is one entry in the itemized diff.
type DeclarationChange struct {
	Name    string     `json:"name"`
	Kind    lang.Kind  `json:"kind"`
	Change  ChangeKind `json:"change"`
	OldLine int        `json:"old_line,omitempty"`
	NewLine int        `json:"new_line,omitempty"`
	Public  bool       `json:"public"`
}

// Result is the classification of one file revision. It is transient, built
// per classification call; it is not a graph node.
type Result struct {
	Category     Category            `json:"category"`
	Declarations []DeclarationChange `json:"declarations,omitempty"`
	HasBreaking  bool                `json:"has_breaking"`
	HasAdditions bool                `json:"has_additions"`
	HasRemovals  bool                `json:"has_removals"`
	Description  string              `json:"description"`
}

// Classify diffs two snapshots of one file's declarations.
//
// existedBefore/existedAfter select the case: created, deleted, modified, or
// the degenerate both-missing case. For modifications, equal AST-derived
// structural hashes short-circuit to DocsOnly with an empty diff; a fallback
// (source:) hash never satisfies that check.
func Classify(oldDecls, newDecls []lang.Declaration, oldHash, newHash string, existedBefore, existedAfter bool) Result {
	switch {
	case !existedBefore && existedAfter:
		return classifyCreation(newDecls)
	case existedBefore && !existedAfter:
		return classifyDeletion(oldDecls)
	case !existedBefore && !existedAfter:
		return Result{
			Category:    Unknown,
			Description: "unable to classify change (both versions missing)",
		}
	}
	return classifyModification(oldDecls, newDecls, oldHash, newHash)
}

func classifyCreation(decls []lang.Declaration) Result {
	changes := make([]DeclarationChange, 0, len(decls))
	public := 0
	for _, d := range decls {
		changes = append(changes, DeclarationChange{
			Name:    d.Name,
			Kind:    d.Kind,
			Change:  Added,
			NewLine: d.Line,
			Public:  d.Public,
		})
		if d.Public {
			public++
		}
	}

	desc := fmt.Sprintf("new file with %d declaration(s)", len(decls))
	if public > 0 {
		desc += fmt.Sprintf(" (%d public)", public)
	}
	return Result{
		Category:     Additive,
		Declarations: changes,
		HasAdditions: true,
		Description:  desc,
	}
}

func classifyDeletion(decls []lang.Declaration) Result {
	changes := make([]DeclarationChange, 0, len(decls))
	public := 0
	for _, d := range decls {
		changes = append(changes, DeclarationChange{
			Name:    d.Name,
			Kind:    d.Kind,
			Change:  Removed,
			OldLine: d.Line,
			Public:  d.Public,
		})
		if d.Public {
			public++
		}
	}

	category := Internal
	desc := fmt.Sprintf("file deleted with %d declaration(s)", len(decls))
	if public > 0 {
		category = Breaking
		desc += fmt.Sprintf(" (%d public)", public)
	}
	return Result{
		Category:     category,
		Declarations: changes,
		HasBreaking:  public > 0,
		HasRemovals:  true,
		Description:  desc,
	}
}

func classifyModification(oldDecls, newDecls []lang.Declaration, oldHash, newHash string) Result {
	if lang.IsASTFingerprint(oldHash) && lang.IsASTFingerprint(newHash) && oldHash == newHash {
		// Structural-hash equality implies zero semantically visible change
		// regardless of raw content differences.
		return Result{
			Category:    DocsOnly,
			Description: "documentation-only changes (comments, docstrings, whitespace)",
		}
	}

	oldByName := byName(oldDecls)
	newByName := byName(newDecls)

	var changes []DeclarationChange
	var addedPublic, removedPublic, modifiedPublic, breakingSignatures int

	for _, name := range sortedNames(oldByName) {
		old := oldByName[name]
		if _, ok := newByName[name]; ok {
			continue
		}
		changes = append(changes, DeclarationChange{
			Name:    name,
			Kind:    old.Kind,
			Change:  Removed,
			OldLine: old.Line,
			Public:  old.Public,
		})
		if old.Public {
			removedPublic++
		}
	}

	for _, name := range sortedNames(newByName) {
		next := newByName[name]
		old, existed := oldByName[name]
		if !existed {
			changes = append(changes, DeclarationChange{
				Name:    name,
				Kind:    next.Kind,
				Change:  Added,
				NewLine: next.Line,
				Public:  next.Public,
			})
			if next.Public {
				addedPublic++
			}
			continue
		}
		if !declarationModified(old, next) {
			continue
		}
		changes = append(changes, DeclarationChange{
			Name:    name,
			Kind:    next.Kind,
			Change:  Modified,
			OldLine: old.Line,
			NewLine: next.Line,
			Public:  next.Public,
		})
		if next.Public {
			modifiedPublic++
			if SignatureBreaking(old, next) {
				breakingSignatures++
			}
		}
	}

	category := categorize(addedPublic, removedPublic, modifiedPublic, breakingSignatures, changes)

	return Result{
		Category:     category,
		Declarations: changes,
		HasBreaking:  removedPublic > 0 || breakingSignatures > 0,
		HasAdditions: addedPublic > 0,
		HasRemovals:  removedPublic > 0,
		Description:  describe(addedPublic, removedPublic, modifiedPublic, breakingSignatures, changes),
	}
}

// declarationModified reports whether a same-named declaration changed in a
// way the diff records: kind, visibility, or (for callables) signature.
func declarationModified(old, next lang.Declaration) bool {
	if old.Kind != next.Kind || old.Public != next.Public {
		return true
	}
	if !callable(old.Kind) {
		return false
	}
	if old.ReturnType != next.ReturnType {
		return true
	}
	return !paramsEqual(old.Params, next.Params)
}

// SignatureBreaking reports whether a function or method signature change
// would break existing callers:
//
//   - the parameter count decreased and a dropped trailing parameter had no
//     default;
//   - a parameter name differs at the same ordinal position (reordering);
//   - a declared parameter type annotation differs;
//   - the return type toggled present/absent or changed text.
func SignatureBreaking(old, next lang.Declaration) bool {
	if !callable(old.Kind) {
		return false
	}

	if len(next.Params) < len(old.Params) {
		for _, dropped := range old.Params[len(next.Params):] {
			if !dropped.HasDefault {
				return true
			}
		}
	}

	limit := min(len(old.Params), len(next.Params))
	for i := 0; i < limit; i++ {
		if old.Params[i].Name != next.Params[i].Name {
			return true
		}
		if old.Params[i].Type != "" && next.Params[i].Type != "" && old.Params[i].Type != next.Params[i].Type {
			return true
		}
	}

	if old.ReturnType != next.ReturnType {
		return true
	}
	return false
}

// categorize applies the priority order: breaking, then purely-additive,
// then internal variants, then additive-with-modifications, else unknown.
func categorize(addedPublic, removedPublic, modifiedPublic, breakingSignatures int, changes []DeclarationChange) Category {
	if removedPublic > 0 || breakingSignatures > 0 {
		return Breaking
	}
	if addedPublic > 0 && modifiedPublic == 0 {
		return Additive
	}

	publicChanged := false
	for _, c := range changes {
		if c.Public {
			publicChanged = true
			break
		}
	}
	if !publicChanged {
		return Internal
	}
	if modifiedPublic > 0 && addedPublic == 0 {
		return Internal
	}
	if addedPublic > 0 && modifiedPublic > 0 {
		return Additive
	}
	return Unknown
}

func describe(addedPublic, removedPublic, modifiedPublic, breakingSignatures int, changes []DeclarationChange) string {
	var parts []string
	if removedPublic > 0 {
		parts = append(parts, fmt.Sprintf("removed %d public API(s)", removedPublic))
	}
	if breakingSignatures > 0 {
		parts = append(parts, fmt.Sprintf("breaking signature changes in %d function(s)", breakingSignatures))
	}
	if addedPublic > 0 {
		parts = append(parts, fmt.Sprintf("added %d public API(s)", addedPublic))
	}
	if n := modifiedPublic - breakingSignatures; n > 0 {
		parts = append(parts, fmt.Sprintf("modified %d public API(s)", n))
	}

	internal := 0
	for _, c := range changes {
		if !c.Public {
			internal++
		}
	}
	if internal > 0 {
		parts = append(parts, fmt.Sprintf("%d internal change(s)", internal))
	}

	if len(parts) == 0 {
		return "no significant changes detected"
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += "; " + p
	}
	return out
}

func callable(k lang.Kind) bool {
	return k == lang.KindFunction || k == lang.KindMethod
}

func paramsEqual(a, b []lang.Param) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func byName(decls []lang.Declaration) map[string]lang.Declaration {
	m := make(map[string]lang.Declaration, len(decls))
	for _, d := range decls {
		m[d.Name] = d
	}
	return m
}

func sortedNames(m map[string]lang.Declaration) []string {
	out := make([]string, 0, len(m))
	for name := range m {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
