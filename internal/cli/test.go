package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/bnfkit/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
}

// testResult is the JSON payload of a test run.
type testResult struct {
	Reports []*harness.Report `json:"reports"`
	Passed  int               `json:"passed"`
	Failed  int               `json:"failed"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenario.yaml...>",
		Short: "Run grammar conformance scenarios",
		Long: `Run YAML scenario files against the engine. Each scenario loads a
grammar and checks generate and match steps, or asserts that the
grammar fails to build with a specific error.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTest(opts, args, cmd)
		},
	}

	return cmd
}

func runTest(opts *TestOptions, paths []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	result := testResult{}
	for _, path := range paths {
		sc, err := harness.Load(path)
		if err != nil {
			return formatter.Failure(ExitCommandError, "SCENARIO_ERROR", err.Error())
		}
		formatter.VerboseLog("running scenario %s (%s)", sc.Name, path)

		rep := sc.Run()
		result.Reports = append(result.Reports, rep)
		if rep.Passed {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	emit := formatter.Success(result, func(w io.Writer) {
		for _, rep := range result.Reports {
			if rep.Passed {
				fmt.Fprintf(w, "✓ %s\n", rep.Scenario)
				continue
			}
			fmt.Fprintf(w, "✗ %s\n", rep.Scenario)
			for _, step := range rep.Steps {
				if !step.Passed {
					fmt.Fprintf(w, "  step %d (%s): %s\n", step.Index, step.Kind, step.Detail)
				}
			}
		}
		fmt.Fprintf(w, "%d passed, %d failed\n", result.Passed, result.Failed)
	})
	if emit != nil {
		return emit
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}
