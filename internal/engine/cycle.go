package engine

import "github.com/roach88/bnfkit/internal/ast"

// checkLeftRecursion detects rules that reach themselves through a
// chain of leading non-terminal atoms.
//
// The walk is deliberately narrow: for each variant only the FIRST atom
// is followed, because only a leading reference can recurse before any
// input is consumed or emitted. Recursion behind a terminal, as in
// <a> ::= "x" <a>, passes this check and can still recurse without
// bound at generation or matching time. That gap is part of the
// contract; see the package comment.
//
// The on-stack markers are indexed by rule ordinal and reused across
// starting points; without a visited memo the worst case is O(n^2),
// which is fine at grammar scale and keeps the walk easy to audit.
func checkLeftRecursion(rules []ast.Rule, index map[string]int) error {
	onStack := make([]bool, len(rules))

	var walk func(i int) error
	walk = func(i int) error {
		if onStack[i] {
			return &BuildError{Code: ErrCodeLeftRecursion, Rule: rules[i].Name}
		}
		onStack[i] = true
		defer func() { onStack[i] = false }()

		for _, v := range rules[i].Variants {
			if len(v.Atoms) == 0 {
				continue
			}
			first := v.Atoms[0]
			if first.Kind != ast.AtomNonTerminal {
				continue
			}
			// Undefined references were rejected in the previous pass.
			if err := walk(index[first.Name]); err != nil {
				return err
			}
		}
		return nil
	}

	for i := range rules {
		if err := walk(i); err != nil {
			return err
		}
	}
	return nil
}
