package change

import "fmt"

// Impact produces one templated note per dependent of a changed file, keyed
// by the dependent's path. DocsOnly and Internal changes still yield notes so
// report generators can show that dependents were considered.
func Impact(changedPath string, result Result, dependents []string) map[string]string {
	if len(dependents) == 0 {
		return map[string]string{}
	}

	impact := make(map[string]string, len(dependents))
	for _, dependent := range dependents {
		switch result.Category {
		case Breaking:
			impact[dependent] = fmt.Sprintf("may be broken by changes in %s: %s", changedPath, result.Description)
		case Additive:
			impact[dependent] = fmt.Sprintf("new APIs available from %s: %s", changedPath, result.Description)
		case Internal:
			impact[dependent] = fmt.Sprintf("internal changes in %s (no API impact expected)", changedPath)
		case DocsOnly:
			impact[dependent] = fmt.Sprintf("documentation updated in %s (no code impact)", changedPath)
		default:
			impact[dependent] = fmt.Sprintf("unclassified changes in %s", changedPath)
		}
	}
	return impact
}

// BreakingChanges extracts the declaration changes that put public callers
// at risk: public removals and public modifications.
func BreakingChanges(result Result) []DeclarationChange {
	var out []DeclarationChange
	for _, c := range result.Declarations {
		if c.Public && (c.Change == Removed || c.Change == Modified) {
			out = append(out, c)
		}
	}
	return out
}

// AdditiveChanges extracts the added declarations.
func AdditiveChanges(result Result) []DeclarationChange {
	var out []DeclarationChange
	for _, c := range result.Declarations {
		if c.Change == Added {
			out = append(out, c)
		}
	}
	return out
}
