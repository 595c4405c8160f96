package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/bnfkit/internal/ast"
	"github.com/roach88/bnfkit/internal/engine"
	"github.com/roach88/bnfkit/internal/lexer"
	"github.com/roach88/bnfkit/internal/parser"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	DumpLex bool
	DumpAST bool
}

// validateResult is the JSON payload of a successful validation.
type validateResult struct {
	Grammar     string   `json:"grammar"`
	RuleCount   int      `json:"rule_count"`
	Rules       []string `json:"rules"`
	Fingerprint string   `json:"fingerprint"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <grammar.bnf>",
		Short: "Parse and validate a grammar file",
		Long: `Parse a BNF grammar file and run the engine's static checks:
duplicate rule names, references to undefined rules, and left-recursion
cycles reachable through leading atoms.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVarP(&opts.DumpLex, "dump-lex", "l", false, "dump the lex tokens (to stderr)")
	cmd.Flags().BoolVarP(&opts.DumpAST, "dump-ast", "a", false, "dump the parsed rules (to stderr)")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return formatter.Failure(ExitCommandError, "READ_ERROR", fmt.Sprintf("cannot read grammar %s: %v", path, err))
	}

	// The token dump is wanted even when parsing would fail, so lex
	// explicitly instead of going through LoadGrammar.
	tokens, err := lexer.Tokenize(string(data))
	if err != nil {
		return formatter.Failure(ExitFailure, "LEX_ERROR", err.Error())
	}
	if opts.DumpLex {
		for _, tok := range tokens {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s\n", tok)
		}
	}

	rules, err := parser.ParseTokens(tokens)
	if err != nil {
		return formatter.Failure(ExitFailure, "PARSE_ERROR", err.Error())
	}
	if opts.DumpAST {
		for _, r := range rules {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s\n", r)
		}
	}
	formatter.VerboseLog("parsed %d rule(s) from %s", len(rules), path)

	if _, err := engine.Build(rules); err != nil {
		code := "BUILD_ERROR"
		if be, ok := engine.IsBuildError(err); ok {
			code = string(be.Code)
		}
		return formatter.Failure(ExitFailure, code, err.Error())
	}

	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.Name
	}
	result := validateResult{
		Grammar:     path,
		RuleCount:   len(rules),
		Rules:       names,
		Fingerprint: ast.Fingerprint(rules),
	}
	return formatter.Success(result, func(w io.Writer) {
		fmt.Fprintf(w, "✓ grammar valid: %d rule(s), fingerprint %s\n",
			result.RuleCount, result.Fingerprint[:12])
	})
}
