package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bnfkit/internal/engine"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	n, err := s2.CountRuns(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRecordAndListGenRun(t *testing.T) {
	s := openTempStore(t)
	ctx := context.Background()

	seed := int64(42)
	id, err := s.RecordRun(ctx, Run{
		Kind:        "gen",
		GrammarHash: "abc123",
		Rule:        "greeting",
		Output:      "hello world",
		Seed:        &seed,
	})
	require.NoError(t, err)
	assert.Positive(t, id)

	runs, err := s.ListRuns(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, runs, 1)

	got := runs[0]
	assert.Equal(t, "gen", got.Kind)
	assert.Equal(t, "abc123", got.GrammarHash)
	assert.Equal(t, "greeting", got.Rule)
	assert.Equal(t, "hello world", got.Output)
	require.NotNil(t, got.Seed)
	assert.Equal(t, int64(42), *got.Seed)
	assert.NotEmpty(t, got.CreatedAt)
	assert.Empty(t, got.Spans)
}

func TestRecordAndListMatchRun(t *testing.T) {
	s := openTempStore(t)
	ctx := context.Background()

	_, err := s.RecordRun(ctx, Run{
		Kind:        "match",
		GrammarHash: "abc123",
		Rule:        "s",
		Input:       "12",
		Spans:       []engine.Span{{Start: 0, End: 2}, {Start: 0, End: 1}},
	})
	require.NoError(t, err)

	runs, err := s.ListRuns(ctx, Filter{Kind: "match"})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, []engine.Span{{Start: 0, End: 2}, {Start: 0, End: 1}}, runs[0].Spans)
	assert.Nil(t, runs[0].Seed)
}

func TestRecordRunRejectsUnknownKind(t *testing.T) {
	s := openTempStore(t)
	_, err := s.RecordRun(context.Background(), Run{Kind: "replay"})
	assert.Error(t, err)
}

func TestListRunsNewestFirst(t *testing.T) {
	s := openTempStore(t)
	ctx := context.Background()

	for _, out := range []string{"first", "second", "third"} {
		_, err := s.RecordRun(ctx, Run{Kind: "gen", GrammarHash: "h", Rule: "r", Output: out})
		require.NoError(t, err)
	}

	runs, err := s.ListRuns(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "third", runs[0].Output)
	assert.Equal(t, "first", runs[2].Output)
}

func TestListRunsFilterByGrammarPrefix(t *testing.T) {
	s := openTempStore(t)
	ctx := context.Background()

	_, err := s.RecordRun(ctx, Run{Kind: "gen", GrammarHash: "aaaa1111", Rule: "r"})
	require.NoError(t, err)
	_, err = s.RecordRun(ctx, Run{Kind: "gen", GrammarHash: "bbbb2222", Rule: "r"})
	require.NoError(t, err)

	runs, err := s.ListRuns(ctx, Filter{GrammarHash: "aaaa"})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "aaaa1111", runs[0].GrammarHash)
}

func TestListRunsLimit(t *testing.T) {
	s := openTempStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := s.RecordRun(ctx, Run{Kind: "gen", GrammarHash: "h", Rule: "r"})
		require.NoError(t, err)
	}

	runs, err := s.ListRuns(ctx, Filter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestCountRuns(t *testing.T) {
	s := openTempStore(t)
	ctx := context.Background()

	_, err := s.RecordRun(ctx, Run{Kind: "gen", GrammarHash: "h", Rule: "r"})
	require.NoError(t, err)
	_, err = s.RecordRun(ctx, Run{Kind: "match", GrammarHash: "h", Rule: "r"})
	require.NoError(t, err)

	n, err := s.CountRuns(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = s.CountRuns(ctx, Filter{Kind: "gen"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
