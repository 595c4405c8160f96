package engine

import "github.com/roach88/bnfkit/internal/ast"

// checkDuplicates scans all rule names and collects every name declared
// more than once. Each duplicated name appears once in the error, in
// order of first appearance, so the result is independent of map
// iteration order.
func checkDuplicates(rules []ast.Rule) error {
	seen := make(map[string]int, len(rules))
	for _, r := range rules {
		seen[r.Name]++
	}

	var dups []string
	reported := make(map[string]bool)
	for _, r := range rules {
		if seen[r.Name] > 1 && !reported[r.Name] {
			dups = append(dups, r.Name)
			reported[r.Name] = true
		}
	}
	if len(dups) > 0 {
		return &BuildError{Code: ErrCodeDuplicatedNames, Names: dups}
	}
	return nil
}

// checkUndefined walks every atom of every variant and fails on the
// first non-terminal whose name is not a declared rule.
func checkUndefined(rules []ast.Rule, index map[string]int) error {
	for _, r := range rules {
		for _, v := range r.Variants {
			for _, a := range v.Atoms {
				if a.Kind != ast.AtomNonTerminal {
					continue
				}
				if _, ok := index[a.Name]; !ok {
					return &BuildError{
						Code:    ErrCodeUndefinedNonTerminal,
						Rule:    r.Name,
						Missing: a.Name,
					}
				}
			}
		}
	}
	return nil
}
