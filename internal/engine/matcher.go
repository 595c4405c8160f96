package engine

import (
	"strings"

	"github.com/roach88/bnfkit/internal/ast"
)

// Span is a half-open [Start, End) byte range into the matched text.
// Slicing the original text with it yields the matched substring.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Match matches text against the named rule, anchored at offset 0, and
// returns the capture spans of every watched rule that participated in
// the successful parse.
//
// Capture order is parent before children: a watched rule's own span
// precedes the spans captured inside it, and children appear in
// left-to-right atom order. An unwatched rule contributes nothing
// itself but its watched descendants still appear.
//
// Variants are tried in declaration order and the first variant whose
// atoms all succeed settles the rule; no alternative parse of an
// already-matched rule is explored. A match may consume less than the
// whole text; spans tell the caller how far it reached.
//
// Errors are always *MatchError: BAD_INITIAL_RULE or BAD_WATCH_RULE
// when a name is not part of the grammar, NO_MATCHES when the initial
// rule does not match at offset 0.
func (e *Engine) Match(initial string, watch []string, text string) ([]Span, error) {
	if !e.HasRule(initial) {
		return nil, &MatchError{Code: ErrCodeBadInitialRule, Rule: initial}
	}
	watched := make(map[string]bool, len(watch))
	for _, w := range watch {
		if !e.HasRule(w) {
			return nil, &MatchError{Code: ErrCodeBadWatchRule, Rule: w}
		}
		watched[w] = true
	}

	m := &matcher{engine: e, watched: watched, text: text}
	if e.tracer != nil {
		m.trace = e.tracer
		m.matchID = e.tokens.Generate()
	}

	_, spans, ok := m.matchRule(e.lookup(initial), 0)
	if !ok {
		return nil, &MatchError{Code: ErrCodeNoMatches, Rule: initial}
	}
	if spans == nil {
		spans = []Span{}
	}
	return spans, nil
}

// matcher carries the per-call state of one Match invocation.
type matcher struct {
	engine  *Engine
	watched map[string]bool
	text    string
	trace   Tracer // nil disables the side-channel
	matchID string
}

// matchRule tries each variant of rule at offset. On success it returns
// the consumed length and the spans captured by rule and its
// descendants, parent first.
func (m *matcher) matchRule(rule ast.Rule, offset int) (consumed int, spans []Span, ok bool) {
	m.emit(TraceEvent{Kind: TraceRuleEnter, Rule: rule.Name, Offset: offset})

	for vi, variant := range rule.Variants {
		m.emit(TraceEvent{Kind: TraceVariantTry, Rule: rule.Name, Variant: vi + 1, Offset: offset})

		end, children, ok := m.matchVariant(rule.Name, variant, offset)
		if !ok {
			continue
		}

		// First fully-matching variant settles the rule.
		var out []Span
		if m.watched[rule.Name] {
			out = append(out, Span{Start: offset, End: end})
		}
		out = append(out, children...)

		m.emit(TraceEvent{Kind: TraceRuleResult, Rule: rule.Name, Offset: offset, Consumed: end - offset, Matched: true})
		return end - offset, out, true
	}

	m.emit(TraceEvent{Kind: TraceRuleResult, Rule: rule.Name, Offset: offset, Matched: false})
	return 0, nil, false
}

// matchVariant walks the variant's atoms left to right over a moving
// cursor. Any atom failure abandons the variant (the caller then tries
// the rule's next variant).
func (m *matcher) matchVariant(ruleName string, variant ast.Variant, offset int) (end int, spans []Span, ok bool) {
	cursor := offset
	var children []Span

	for _, atom := range variant.Atoms {
		switch atom.Kind {
		case ast.AtomTerminal:
			matched := strings.HasPrefix(m.text[cursor:], atom.Content)
			m.emit(TraceEvent{Kind: TraceTerminal, Rule: ruleName, Literal: atom.Content, Offset: cursor, Matched: matched})
			if !matched {
				return 0, nil, false
			}
			cursor += len(atom.Content)

		case ast.AtomNonTerminal:
			n, sub, ok := m.matchRule(m.engine.lookup(atom.Name), cursor)
			if !ok {
				return 0, nil, false
			}
			cursor += n
			children = append(children, sub...)
		}
	}
	return cursor, children, true
}

func (m *matcher) emit(ev TraceEvent) {
	if m.trace == nil {
		return
	}
	ev.MatchID = m.matchID
	m.trace.Trace(ev)
}
