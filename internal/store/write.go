package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/roach88/bnfkit/internal/engine"
)

// Run is one recorded engine invocation.
//
// Which fields are meaningful depends on Kind:
//   - "gen": Output holds the generated string, Seed the generation
//     seed when one was fixed
//   - "match": Input holds the matched text, Rule the initial rule,
//     Spans the capture spans
type Run struct {
	ID          int64         `json:"id"`
	Kind        string        `json:"kind"` // "gen" or "match"
	GrammarHash string        `json:"grammar_hash"`
	Rule        string        `json:"rule"`
	Input       string        `json:"input,omitempty"`
	Output      string        `json:"output,omitempty"`
	Spans       []engine.Span `json:"spans,omitempty"`
	Seed        *int64        `json:"seed,omitempty"`
	CreatedAt   string        `json:"created_at"`
}

// RecordRun appends a run to the history and returns its row id.
// CreatedAt is assigned by the database.
func (s *Store) RecordRun(ctx context.Context, run Run) (int64, error) {
	if run.Kind != "gen" && run.Kind != "match" {
		return 0, fmt.Errorf("record run: invalid kind %q", run.Kind)
	}

	spansJSON, err := json.Marshal(run.Spans)
	if err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}
	if run.Spans == nil {
		spansJSON = []byte("[]")
	}

	var seed sql.NullInt64
	if run.Seed != nil {
		seed = sql.NullInt64{Int64: *run.Seed, Valid: true}
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (kind, grammar_hash, rule, input, output, spans, seed)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		run.Kind,
		run.GrammarHash,
		run.Rule,
		run.Input,
		run.Output,
		string(spansJSON),
		seed,
	)
	if err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}
	return id, nil
}
