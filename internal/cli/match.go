package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/bnfkit/internal/ast"
	"github.com/roach88/bnfkit/internal/engine"
	"github.com/roach88/bnfkit/internal/highlight"
	"github.com/roach88/bnfkit/internal/store"
)

// MatchOptions holds flags for the match command.
type MatchOptions struct {
	*RootOptions
	Watch  []string
	Color  bool
	Scan   bool
	Trace  bool
	Record string
}

// matchResult is the JSON payload of a match run.
type matchResult struct {
	Rule        string        `json:"rule"`
	Fingerprint string        `json:"fingerprint"`
	Text        string        `json:"text"`
	Offset      int           `json:"offset"` // where the match anchored (non-zero only with --scan)
	Spans       []engine.Span `json:"spans"`
}

// NewMatchCommand creates the match command.
func NewMatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "match <grammar.bnf> <rule> <text>",
		Short: "Match text against a rule and report capture spans",
		Long: `Match text against the named rule. Matching is anchored at the start
of the text; --scan retries at every later offset until one matches.

Spans of watched rules (--watch, defaulting to the matched rule itself)
are reported parent-first and can be highlighted with --color.`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(opts, args[0], args[1], args[2], cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Watch, "watch", "w", nil, "rule whose spans to report (repeatable)")
	cmd.Flags().BoolVar(&opts.Color, "color", false, "highlight captured spans in the text")
	cmd.Flags().BoolVar(&opts.Scan, "scan", false, "slide the anchor forward until the rule matches")
	cmd.Flags().BoolVar(&opts.Trace, "trace", false, "trace every matching attempt (to stderr)")
	cmd.Flags().StringVar(&opts.Record, "record", "", "append the run to this history database")

	return cmd
}

func runMatch(opts *MatchOptions, path, ruleName, text string, cmd *cobra.Command) error {
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
	if opts.Trace {
		logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
		engOpts = append(engOpts, engine.WithTracer(engine.SlogTracer{Logger: logger}))
	}

	eng, err := engine.Build(rules, engOpts...)
	if err != nil {
		code := "BUILD_ERROR"
		if be, ok := engine.IsBuildError(err); ok {
			code = string(be.Code)
		}
		return formatter.Failure(ExitFailure, code, err.Error())
	}

	watch := opts.Watch
	if len(watch) == 0 {
		watch = []string{ruleName}
	}

	spans, offset, err := matchText(eng, ruleName, watch, text, opts.Scan)
	if err != nil {
		var me *engine.MatchError
		code := "MATCH_ERROR"
		if errors.As(err, &me) {
			code = string(me.Code)
		}
		return formatter.Failure(ExitFailure, code, err.Error())
	}

	fingerprint := ast.Fingerprint(rules)
	if opts.Record != "" {
		if err := recordMatchRun(opts.Record, fingerprint, ruleName, text, spans); err != nil {
			return formatter.Failure(ExitCommandError, "RECORD_ERROR", err.Error())
		}
		formatter.VerboseLog("recorded run to %s", opts.Record)
	}

	result := matchResult{Rule: ruleName, Fingerprint: fingerprint, Text: text, Offset: offset, Spans: spans}
	return formatter.Success(result, func(w io.Writer) {
		for _, s := range spans {
			fmt.Fprintf(w, "(%d, %d)\t%q\n", s.Start, s.End, text[s.Start:s.End])
		}
		if opts.Color {
			fmt.Fprintln(w, highlight.NewRenderer().Render(text, spans))
		}
	})
}

// matchText runs the engine's anchored match, optionally sliding the
// anchor forward one byte at a time. The sliding happens out here, on
// the caller's side of the engine contract: the engine itself only ever
// matches at offset 0 of the text it is handed.
func matchText(eng *engine.Engine, rule string, watch []string, text string, scan bool) ([]engine.Span, int, error) {
	spans, err := eng.Match(rule, watch, text)
	if err == nil || !scan || !engine.IsNoMatches(err) {
		return spans, 0, err
	}

	for off := 1; off <= len(text); off++ {
		spans, err = eng.Match(rule, watch, text[off:])
		if err == nil {
			for i := range spans {
				spans[i].Start += off
				spans[i].End += off
			}
			return spans, off, nil
		}
		if !engine.IsNoMatches(err) {
			return nil, 0, err
		}
	}
	return nil, 0, err
}

func recordMatchRun(dbPath, fingerprint, rule, text string, spans []engine.Span) error {
	s, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()

	_, err = s.RecordRun(context.Background(), store.Run{
		Kind:        "match",
		GrammarHash: fingerprint,
		Rule:        rule,
		Input:       text,
		Spans:       spans,
	})
	return err
}
