package cli

import (
	"context"
	"fmt"
	"io"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/roach88/bnfkit/internal/ast"
	"github.com/roach88/bnfkit/internal/engine"
	"github.com/roach88/bnfkit/internal/store"
)

// GenOptions holds flags for the gen command.
type GenOptions struct {
	*RootOptions
	Count  int
	Seed   int64
	Record string // history database path, empty disables recording
}

// genResult is the JSON payload of a gen run.
type genResult struct {
	Rule        string   `json:"rule"`
	Fingerprint string   `json:"fingerprint"`
	Outputs     []string `json:"outputs"`
	Seed        *int64   `json:"seed,omitempty"`
}

// NewGenCommand creates the gen command.
func NewGenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "gen <grammar.bnf> <rule>",
		Short: "Generate random strings satisfying a rule",
		Long: `Expand the named rule into random concrete strings. Each expansion
picks variants uniformly at random; --seed makes the sequence
reproducible.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Count, "count", "n", 1, "number of strings to generate")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "seed for deterministic output")
	cmd.Flags().StringVar(&opts.Record, "record", "", "append runs to this history database")

	return cmd
}

func runGen(opts *GenOptions, path, ruleName string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	_, rules, err := LoadGrammar(path)
	if err != nil {
		return formatter.Failure(GetExitCode(err), "LOAD_ERROR", err.Error())
	}

	var engOpts []engine.Option
	var seed *int64
	if cmd.Flags().Changed("seed") {
		s := opts.Seed
		seed = &s
		engOpts = append(engOpts, engine.WithRand(rand.New(rand.NewSource(s))))
	}

	eng, err := engine.Build(rules, engOpts...)
	if err != nil {
		code := "BUILD_ERROR"
		if be, ok := engine.IsBuildError(err); ok {
			code = string(be.Code)
		}
		return formatter.Failure(ExitFailure, code, err.Error())
	}

	if opts.Count < 1 {
		return formatter.Failure(ExitCommandError, "BAD_COUNT", fmt.Sprintf("count must be positive, got %d", opts.Count))
	}

	outputs := make([]string, 0, opts.Count)
	for i := 0; i < opts.Count; i++ {
		out, err := eng.Generate(ruleName)
		if err != nil {
			return formatter.Failure(ExitFailure, "BAD_RULE", err.Error())
		}
		outputs = append(outputs, out)
	}

	fingerprint := ast.Fingerprint(rules)
	if opts.Record != "" {
		if err := recordGenRuns(opts.Record, fingerprint, ruleName, outputs, seed); err != nil {
			return formatter.Failure(ExitCommandError, "RECORD_ERROR", err.Error())
		}
		formatter.VerboseLog("recorded %d run(s) to %s", len(outputs), opts.Record)
	}

	result := genResult{Rule: ruleName, Fingerprint: fingerprint, Outputs: outputs, Seed: seed}
	return formatter.Success(result, func(w io.Writer) {
		for _, out := range outputs {
			fmt.Fprintln(w, out)
		}
	})
}

func recordGenRuns(dbPath, fingerprint, rule string, outputs []string, seed *int64) error {
	s, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	for _, out := range outputs {
		_, err := s.RecordRun(ctx, store.Run{
			Kind:        "gen",
			GrammarHash: fingerprint,
			Rule:        rule,
			Output:      out,
			Seed:        seed,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
