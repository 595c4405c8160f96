package cli

import (
	"fmt"
	"os"

	"github.com/roach88/bnfkit/internal/ast"
	"github.com/roach88/bnfkit/internal/parser"
)

// LoadGrammar reads and parses a grammar file, returning both the raw
// source (for token dumps) and the parsed rules.
//
// I/O and syntax failures come back as ExitErrors so commands can
// propagate them directly: unreadable files are command errors, syntax
// errors are failures.
func LoadGrammar(path string) (string, []ast.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, WrapExitError(ExitCommandError, fmt.Sprintf("cannot read grammar %s", path), err)
	}
	src := string(data)

	rules, err := parser.Parse(src)
	if err != nil {
		return "", nil, WrapExitError(ExitFailure, fmt.Sprintf("invalid grammar %s", path), err)
	}
	return src, rules, nil
}
