package engine

import (
	"strings"

	"github.com/roach88/bnfkit/internal/ast"
)

// Generate expands the named rule into a random concrete string.
//
// Each rule expansion picks one variant uniformly at random,
// independently of every other pick, then concatenates terminal content
// and recursively generated non-terminal expansions in atom order.
//
// There is no depth or length bound: a grammar whose recursion escapes
// the build-time check can recurse forever here, which is a fatal
// fault, not a typed error.
//
// The error is always a *GenerateError naming the unknown rule.
func (e *Engine) Generate(name string) (string, error) {
	if !e.HasRule(name) {
		return "", &GenerateError{Rule: name}
	}
	var b strings.Builder
	e.genRule(e.lookup(name), &b)
	return b.String(), nil
}

func (e *Engine) genRule(rule ast.Rule, b *strings.Builder) {
	variant := rule.Variants[e.intn(len(rule.Variants))]
	for _, atom := range variant.Atoms {
		switch atom.Kind {
		case ast.AtomTerminal:
			b.WriteString(atom.Content)
		case ast.AtomNonTerminal:
			e.genRule(e.lookup(atom.Name), b)
		}
	}
}
