package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// Filter narrows a history listing. Zero values mean "no constraint".
type Filter struct {
	GrammarHash string // full fingerprint, or a hex prefix
	Kind        string // "gen" or "match"
	Limit       int    // 0 means DefaultListLimit
}

// DefaultListLimit bounds unfiltered listings.
const DefaultListLimit = 50

// ListRuns returns history rows, newest first.
func (s *Store) ListRuns(ctx context.Context, f Filter) ([]Run, error) {
	query := `
		SELECT id, kind, grammar_hash, rule, input, output, spans, seed, created_at
		FROM runs
		WHERE 1=1`
	var args []any

	if f.GrammarHash != "" {
		// prefix match lets callers use the short fingerprint
		query += " AND grammar_hash LIKE ?"
		args = append(args, f.GrammarHash+"%")
	}
	if f.Kind != "" {
		query += " AND kind = ?"
		args = append(args, f.Kind)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var spansJSON string
		var seed sql.NullInt64
		if err := rows.Scan(&r.ID, &r.Kind, &r.GrammarHash, &r.Rule, &r.Input, &r.Output, &spansJSON, &seed, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		if err := json.Unmarshal([]byte(spansJSON), &r.Spans); err != nil {
			return nil, fmt.Errorf("list runs: bad spans on row %d: %w", r.ID, err)
		}
		if seed.Valid {
			v := seed.Int64
			r.Seed = &v
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return out, nil
}

// CountRuns returns the number of history rows matching the filter.
func (s *Store) CountRuns(ctx context.Context, f Filter) (int64, error) {
	query := "SELECT COUNT(*) FROM runs WHERE 1=1"
	var args []any
	if f.GrammarHash != "" {
		query += " AND grammar_hash LIKE ?"
		args = append(args, f.GrammarHash+"%")
	}
	if f.Kind != "" {
		query += " AND kind = ?"
		args = append(args, f.Kind)
	}
	var n int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count runs: %w", err)
	}
	return n, nil
}
