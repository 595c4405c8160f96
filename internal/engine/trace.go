package engine

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// TraceKind identifies a matcher trace event.
type TraceKind string

const (
	// TraceRuleEnter fires when the matcher enters a rule.
	TraceRuleEnter TraceKind = "rule_enter"

	// TraceVariantTry fires before a variant's atoms are attempted.
	TraceVariantTry TraceKind = "variant_try"

	// TraceTerminal fires after a terminal comparison, matched or not.
	TraceTerminal TraceKind = "terminal"

	// TraceRuleResult fires when a rule resolves, matched or not.
	TraceRuleResult TraceKind = "rule_result"
)

// TraceEvent is one observation from the matcher's diagnostic
// side-channel. MatchID correlates all events of a single Match call.
type TraceEvent struct {
	MatchID  string
	Kind     TraceKind
	Rule     string
	Variant  int    // 1-based, TraceVariantTry only
	Literal  string // terminal content, TraceTerminal only
	Offset   int
	Consumed int // TraceRuleResult only
	Matched  bool
}

// Tracer observes matcher attempts. Implementations must not assume
// events affect results; the side-channel is diagnostic only.
type Tracer interface {
	Trace(ev TraceEvent)
}

// SlogTracer logs every event at debug level through a slog.Logger.
type SlogTracer struct {
	Logger *slog.Logger
}

// Trace implements Tracer.
func (t SlogTracer) Trace(ev TraceEvent) {
	t.Logger.Debug("match trace",
		"match_id", ev.MatchID,
		"kind", string(ev.Kind),
		"rule", ev.Rule,
		"variant", ev.Variant,
		"literal", ev.Literal,
		"offset", ev.Offset,
		"consumed", ev.Consumed,
		"matched", ev.Matched,
	)
}

// CollectTracer records events in order. Useful in tests and for the
// CLI's trace output.
type CollectTracer struct {
	mu     sync.Mutex
	events []TraceEvent
}

// Trace implements Tracer.
func (t *CollectTracer) Trace(ev TraceEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, ev)
}

// Events returns a copy of the recorded events.
func (t *CollectTracer) Events() []TraceEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TraceEvent, len(t.events))
	copy(out, t.events)
	return out
}

// TokenGenerator produces trace correlation tokens, one per Match call.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type TokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 tokens, so traces from
// one engine sort by the time the match started.
//
// Thread-safety: stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7 as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined tokens for deterministic tests.
//
// Thread-safety: safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedGenerator creates a generator that returns tokens in order
// and panics when they run out.
func NewFixedGenerator(tokens ...string) *FixedGenerator {
	return &FixedGenerator{tokens: tokens}
}

// Generate implements TokenGenerator.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.tokens) {
		panic("FixedGenerator: all tokens exhausted")
	}
	tok := g.tokens[g.idx]
	g.idx++
	return tok
}
