package ast

import "strings"

// AtomKind discriminates the two atom shapes.
type AtomKind int

const (
	// AtomTerminal is a literal byte sequence matched exactly.
	AtomTerminal AtomKind = iota

	// AtomNonTerminal is a reference to another rule by name.
	AtomNonTerminal
)

// Atom is one element of a variant: either a terminal literal or a
// reference to another rule.
//
// For AtomTerminal, Content holds the exact bytes to match or emit
// (escapes already resolved). For AtomNonTerminal, Name holds the
// referenced rule name. The unused field is always empty.
type Atom struct {
	Kind    AtomKind `json:"kind"`
	Content string   `json:"content,omitempty"`
	Name    string   `json:"name,omitempty"`
}

// Terminal constructs a terminal atom from resolved literal bytes.
func Terminal(content string) Atom {
	return Atom{Kind: AtomTerminal, Content: content}
}

// NonTerminal constructs a rule-reference atom.
func NonTerminal(name string) Atom {
	return Atom{Kind: AtomNonTerminal, Name: name}
}

// String renders the atom in grammar notation: quoted literal or <name>.
// Control characters in terminals are re-escaped for display.
func (a Atom) String() string {
	if a.Kind == AtomNonTerminal {
		return "<" + a.Name + ">"
	}
	return `"` + escapeTerminal(a.Content) + `"`
}

// Variant is one alternative for a rule: an ordered, non-empty atom
// sequence. Matching a variant means matching every atom in order.
type Variant struct {
	Atoms []Atom `json:"atoms"`
}

// String renders the variant as space-separated atoms.
func (v Variant) String() string {
	parts := make([]string, len(v.Atoms))
	for i, a := range v.Atoms {
		parts[i] = a.String()
	}
	return strings.Join(parts, " ")
}

// Rule is a named, ordered, non-empty set of variants. A rule matches
// input iff at least one variant matches; variants are tried in
// declaration order and the order is significant.
type Rule struct {
	Name     string    `json:"name"`
	Variants []Variant `json:"variants"`
}

// String renders the rule in BNF notation on a single line.
func (r Rule) String() string {
	parts := make([]string, len(r.Variants))
	for i, v := range r.Variants {
		parts[i] = v.String()
	}
	return "<" + r.Name + "> ::= " + strings.Join(parts, " | ")
}

// Equal reports structural equality of two atoms.
func (a Atom) Equal(b Atom) bool {
	return a.Kind == b.Kind && a.Content == b.Content && a.Name == b.Name
}

// Equal reports structural equality of two variants.
func (v Variant) Equal(w Variant) bool {
	if len(v.Atoms) != len(w.Atoms) {
		return false
	}
	for i := range v.Atoms {
		if !v.Atoms[i].Equal(w.Atoms[i]) {
			return false
		}
	}
	return true
}

// Equal reports structural equality of two rules, including variant order.
func (r Rule) Equal(s Rule) bool {
	if r.Name != s.Name || len(r.Variants) != len(s.Variants) {
		return false
	}
	for i := range r.Variants {
		if !r.Variants[i].Equal(s.Variants[i]) {
			return false
		}
	}
	return true
}

// escapeTerminal reverses the lexer's escape resolution for display.
// Only the escapes the notation defines are produced; everything else
// passes through as-is.
func escapeTerminal(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
