package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/bnfkit/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Grammar string
	Kind    string
	Limit   int
}

// historyResult is the JSON payload of a history listing.
type historyResult struct {
	Runs  []store.Run `json:"runs"`
	Total int64       `json:"total"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history <db>",
		Short: "List recorded gen and match runs",
		Long: `List runs recorded with --record, newest first. --grammar filters by
fingerprint (a prefix is enough, so the 12-character short form shown
by validate works).`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Grammar, "grammar", "", "filter by grammar fingerprint (prefix)")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "filter by run kind (gen|match)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum rows to list")

	return cmd
}

func runHistory(opts *HistoryOptions, dbPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if opts.Kind != "" && opts.Kind != "gen" && opts.Kind != "match" {
		return formatter.Failure(ExitCommandError, "BAD_KIND", fmt.Sprintf("invalid kind %q: must be gen or match", opts.Kind))
	}
	if _, err := os.Stat(dbPath); err != nil {
		return formatter.Failure(ExitCommandError, "DB_NOT_FOUND", fmt.Sprintf("history database %s not found", dbPath))
	}

	s, err := store.Open(dbPath)
	if err != nil {
		return formatter.Failure(ExitCommandError, "DB_ERROR", err.Error())
	}
	defer s.Close()

	ctx := context.Background()
	filter := store.Filter{GrammarHash: opts.Grammar, Kind: opts.Kind, Limit: opts.Limit}
	runs, err := s.ListRuns(ctx, filter)
	if err != nil {
		return formatter.Failure(ExitCommandError, "DB_ERROR", err.Error())
	}
	total, err := s.CountRuns(ctx, filter)
	if err != nil {
		return formatter.Failure(ExitCommandError, "DB_ERROR", err.Error())
	}

	result := historyResult{Runs: runs, Total: total}
	if result.Runs == nil {
		result.Runs = []store.Run{}
	}
	return formatter.Success(result, func(w io.Writer) {
		for _, r := range runs {
			switch r.Kind {
			case "gen":
				fmt.Fprintf(w, "#%d\t%s\tgen\t%s\t-> %q\n", r.ID, shortHash(r.GrammarHash), r.Rule, r.Output)
			case "match":
				fmt.Fprintf(w, "#%d\t%s\tmatch\t%s\t%q -> %d span(s)\n", r.ID, shortHash(r.GrammarHash), r.Rule, r.Input, len(r.Spans))
			}
		}
		fmt.Fprintf(w, "%d of %d run(s)\n", len(runs), total)
	})
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
