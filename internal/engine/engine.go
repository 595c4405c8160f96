package engine

import (
	"math/rand"

	"github.com/roach88/bnfkit/internal/ast"
)

// Engine is a validated grammar plus its generation and matching
// operations.
//
// Thread-safety model:
//   - The rule set is read-only after Build; an Engine may be shared
//     across goroutines without synchronization
//   - Match and Generate calls are independent and carry no shared
//     mutable state
//   - A rand source injected with WithRand is used as-is; callers that
//     share one across goroutines must serialize it themselves. The
//     default source is the process-wide math/rand source, which is
//     safe for concurrent use.
//
// INVARIANTS:
//   - rules slice order never changes after Build (variant order is
//     semantics; rule ordinals index the cycle-check markers)
//   - index covers exactly the names in rules, no duplicates
type Engine struct {
	rules  []ast.Rule
	index  map[string]int // rule name -> ordinal in rules
	rng    *rand.Rand     // nil means the shared math/rand source
	tracer Tracer
	tokens TokenGenerator
}

// Option configures an Engine at build time.
type Option func(*Engine)

// WithRand injects a seeded randomness source for deterministic
// generation. The source is not locked by the engine.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		e.rng = r
	}
}

// WithTracer enables the diagnostic trace side-channel on Match.
// Tracing never affects match results.
func WithTracer(t Tracer) Option {
	return func(e *Engine) {
		e.tracer = t
	}
}

// WithTokenGenerator overrides the trace correlation token source.
// Tests use FixedGenerator for deterministic trace output.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(e *Engine) {
		e.tokens = g
	}
}

// Build validates rules and wraps them into an Engine.
//
// The three validation passes run in order and short-circuit: duplicate
// names first, then undefined non-terminal references, then leading-atom
// left recursion. The returned error is always a *BuildError.
//
// The rules slice is copied so later mutation by the caller cannot break
// the validated invariants.
func Build(rules []ast.Rule, opts ...Option) (*Engine, error) {
	rulesCopy := make([]ast.Rule, len(rules))
	copy(rulesCopy, rules)

	if err := checkDuplicates(rulesCopy); err != nil {
		return nil, err
	}
	index := make(map[string]int, len(rulesCopy))
	for i, r := range rulesCopy {
		index[r.Name] = i
	}
	if err := checkUndefined(rulesCopy, index); err != nil {
		return nil, err
	}
	if err := checkLeftRecursion(rulesCopy, index); err != nil {
		return nil, err
	}

	e := &Engine{
		rules:  rulesCopy,
		index:  index,
		tokens: UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// HasRule reports whether name is part of the grammar.
func (e *Engine) HasRule(name string) bool {
	_, ok := e.index[name]
	return ok
}

// Rules returns the rule set in declaration order. The slice is a copy;
// the engine's own rules stay immutable.
func (e *Engine) Rules() []ast.Rule {
	out := make([]ast.Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Fingerprint returns the content-addressed identity of the grammar.
func (e *Engine) Fingerprint() string {
	return ast.Fingerprint(e.rules)
}

// lookup resolves a rule by name. Validation guarantees every
// non-terminal resolves; a miss here is an internal invariant
// violation, not a user error.
func (e *Engine) lookup(name string) ast.Rule {
	i, ok := e.index[name]
	if !ok {
		panic("engine: unvalidated rule reference: " + name)
	}
	return e.rules[i]
}

// intn draws from the injected source if one was given, otherwise from
// the shared math/rand source.
func (e *Engine) intn(n int) int {
	if e.rng != nil {
		return e.rng.Intn(n)
	}
	return rand.Intn(n)
}
