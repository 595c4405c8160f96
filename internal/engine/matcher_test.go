package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bnfkit/internal/ast"
)

func mustBuild(t *testing.T, rules []ast.Rule, opts ...Option) *Engine {
	t.Helper()
	e, err := Build(rules, opts...)
	require.NoError(t, err)
	return e
}

func TestMatchSingleTerminal(t *testing.T) {
	e := mustBuild(t, []ast.Rule{rule("x", vr(ast.Terminal("abc")))})
	spans, err := e.Match("x", []string{"x"}, "abc")
	require.NoError(t, err)
	assert.Equal(t, []Span{{Start: 0, End: 3}}, spans)
}

func TestMatchIsAnchoredAtOffsetZero(t *testing.T) {
	// grammar <x> ::= "a", text "ba": no scanning past offset 0.
	e := mustBuild(t, []ast.Rule{rule("x", vr(ast.Terminal("a")))})
	_, err := e.Match("x", []string{"x"}, "ba")
	assert.True(t, IsNoMatches(err))
}

func TestMatchMayConsumeLessThanWholeText(t *testing.T) {
	e := mustBuild(t, []ast.Rule{rule("x", vr(ast.Terminal("a")))})
	spans, err := e.Match("x", []string{"x"}, "abc")
	require.NoError(t, err)
	assert.Equal(t, []Span{{Start: 0, End: 1}}, spans)
}

func TestMatchGreedyFirstVariantWins(t *testing.T) {
	// <x> ::= "a" | "ab" against "ab": the first variant already
	// succeeds, the longer alternative is never tried.
	e := mustBuild(t, []ast.Rule{
		rule("x", vr(ast.Terminal("a")), vr(ast.Terminal("ab"))),
	})
	spans, err := e.Match("x", []string{"x"}, "ab")
	require.NoError(t, err)
	assert.Equal(t, []Span{{Start: 0, End: 1}}, spans)
}

func TestMatchFailedVariantBacktracksToNext(t *testing.T) {
	e := mustBuild(t, []ast.Rule{
		rule("x", vr(ast.Terminal("zz")), vr(ast.Terminal("ab"))),
	})
	spans, err := e.Match("x", []string{"x"}, "ab")
	require.NoError(t, err)
	assert.Equal(t, []Span{{Start: 0, End: 2}}, spans)
}

func TestMatchCaptureOrderParentBeforeChildren(t *testing.T) {
	// <s> ::= <a> <b>, watching everything against "12":
	// parent first, then children left to right.
	e := mustBuild(t, []ast.Rule{
		rule("s", vr(ast.NonTerminal("a"), ast.NonTerminal("b"))),
		rule("a", vr(ast.Terminal("1"))),
		rule("b", vr(ast.Terminal("2"))),
	})
	spans, err := e.Match("s", []string{"s", "a", "b"}, "12")
	require.NoError(t, err)
	assert.Equal(t, []Span{{0, 2}, {0, 1}, {1, 2}}, spans)
}

func TestMatchUnwatchedParentStillReportsChildren(t *testing.T) {
	e := mustBuild(t, []ast.Rule{
		rule("s", vr(ast.NonTerminal("a"), ast.NonTerminal("b"))),
		rule("a", vr(ast.Terminal("1"))),
		rule("b", vr(ast.Terminal("2"))),
	})
	spans, err := e.Match("s", []string{"a", "b"}, "12")
	require.NoError(t, err)
	assert.Equal(t, []Span{{0, 1}, {1, 2}}, spans)
}

func TestMatchEmptyWatchSetReturnsEmptySpans(t *testing.T) {
	e := mustBuild(t, []ast.Rule{rule("x", vr(ast.Terminal("a")))})
	spans, err := e.Match("x", nil, "a")
	require.NoError(t, err)
	assert.Empty(t, spans)
	assert.NotNil(t, spans)
}

func TestMatchNestedCapture(t *testing.T) {
	// <s> ::= "(" <s> ")" | "o" against "((o))"
	e := mustBuild(t, []ast.Rule{
		rule("s",
			vr(ast.Terminal("("), ast.NonTerminal("s"), ast.Terminal(")")),
			vr(ast.Terminal("o"))),
	})
	spans, err := e.Match("s", []string{"s"}, "((o))")
	require.NoError(t, err)
	assert.Equal(t, []Span{{0, 5}, {1, 4}, {2, 3}}, spans)
}

func TestMatchDeeperFailureRetriesCurrentRulesNextVariant(t *testing.T) {
	// first variant of <s> fails inside <a>; <s> retries its second
	// variant from the same offset.
	e := mustBuild(t, []ast.Rule{
		rule("s",
			vr(ast.Terminal("x"), ast.NonTerminal("a")),
			vr(ast.Terminal("xz"))),
		rule("a", vr(ast.Terminal("y"))),
	})
	spans, err := e.Match("s", []string{"s"}, "xz")
	require.NoError(t, err)
	assert.Equal(t, []Span{{0, 2}}, spans)
}

func TestMatchBadInitialRule(t *testing.T) {
	e := mustBuild(t, []ast.Rule{rule("x", vr(ast.Terminal("a")))})
	_, err := e.Match("nope", nil, "a")
	var me *MatchError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, ErrCodeBadInitialRule, me.Code)
	assert.Equal(t, "nope", me.Rule)
}

func TestMatchBadWatchRule(t *testing.T) {
	e := mustBuild(t, []ast.Rule{rule("x", vr(ast.Terminal("a")))})
	_, err := e.Match("x", []string{"x", "ghost"}, "a")
	var me *MatchError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, ErrCodeBadWatchRule, me.Code)
	assert.Equal(t, "ghost", me.Rule)
}

func TestMatchNoMatchesNamesInitialRule(t *testing.T) {
	e := mustBuild(t, []ast.Rule{rule("x", vr(ast.Terminal("a")))})
	_, err := e.Match("x", nil, "zzz")
	var me *MatchError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, ErrCodeNoMatches, me.Code)
	assert.Equal(t, "x", me.Rule)
}

func TestMatchEmptyTextAgainstEmptyTerminal(t *testing.T) {
	e := mustBuild(t, []ast.Rule{rule("x", vr(ast.Terminal("")))})
	spans, err := e.Match("x", []string{"x"}, "")
	require.NoError(t, err)
	assert.Equal(t, []Span{{0, 0}}, spans)
}

func TestMatchOffsetsAreBytePositions(t *testing.T) {
	e := mustBuild(t, []ast.Rule{rule("x", vr(ast.Terminal("é")))})
	text := "émile"
	spans, err := e.Match("x", []string{"x"}, text)
	require.NoError(t, err)
	require.Len(t, spans, 1)
	assert.Equal(t, "é", text[spans[0].Start:spans[0].End])
	assert.Equal(t, 2, spans[0].End)
}

func TestMatchTraceObservesAttempts(t *testing.T) {
	collect := &CollectTracer{}
	e := mustBuild(t, []ast.Rule{
		rule("x", vr(ast.Terminal("zz")), vr(ast.Terminal("ab"))),
	}, WithTracer(collect), WithTokenGenerator(NewFixedGenerator("match-001")))

	spans, err := e.Match("x", []string{"x"}, "ab")
	require.NoError(t, err)
	assert.Equal(t, []Span{{0, 2}}, spans)

	events := collect.Events()
	require.NotEmpty(t, events)
	assert.Equal(t, TraceEvent{
		MatchID: "match-001", Kind: TraceRuleEnter, Rule: "x", Offset: 0,
	}, events[0])

	// both variants observed, failed terminal first
	var terminals []TraceEvent
	for _, ev := range events {
		if ev.Kind == TraceTerminal {
			terminals = append(terminals, ev)
		}
	}
	require.Len(t, terminals, 2)
	assert.Equal(t, "zz", terminals[0].Literal)
	assert.False(t, terminals[0].Matched)
	assert.Equal(t, "ab", terminals[1].Literal)
	assert.True(t, terminals[1].Matched)

	last := events[len(events)-1]
	assert.Equal(t, TraceRuleResult, last.Kind)
	assert.True(t, last.Matched)
	assert.Equal(t, 2, last.Consumed)
}

func TestMatchTraceDoesNotChangeResults(t *testing.T) {
	rules := []ast.Rule{
		rule("s", vr(ast.NonTerminal("a"), ast.NonTerminal("b"))),
		rule("a", vr(ast.Terminal("1"))),
		rule("b", vr(ast.Terminal("2"))),
	}
	plain := mustBuild(t, rules)
	traced := mustBuild(t, rules,
		WithTracer(&CollectTracer{}),
		WithTokenGenerator(NewFixedGenerator("t1")))

	want, err := plain.Match("s", []string{"s", "a", "b"}, "12")
	require.NoError(t, err)
	got, err := traced.Match("s", []string{"s", "a", "b"}, "12")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
