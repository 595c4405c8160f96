// Package parser turns a token stream into grammar rules.
//
// The notation it accepts:
//
//	<rule> ::= "<" ID ">" "::=" <variants>
//	<variants> ::= <variant> "|" <variants> | <variant>
//	<variant> ::= <atom> <variant> | <atom>
//	<atom> ::= terminal | "<" ID ">"
//
// Rules are separated by newlines; a newline directly before a "|" is
// allowed so variants can be written one per line. The parser checks
// syntactic shape only; name-level validation (duplicates, undefined
// references, left recursion) happens when the engine is built.
package parser

import (
	"fmt"

	"github.com/roach88/bnfkit/internal/ast"
	"github.com/roach88/bnfkit/internal/lexer"
)

// UnexpectedError is the leaf parse error: the token at Line was not
// one of the Expecting alternatives. Outer context (which rule, which
// variant) is attached by %w wrapping; use errors.As to recover the leaf.
type UnexpectedError struct {
	Line      int
	Got       string // token display form, or "EOF"
	Expecting string
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("line %d: unexpected %s, expecting one of: %s", e.Line, e.Got, e.Expecting)
}

// Parse tokenizes src and parses it into rules.
func Parse(src string) ([]ast.Rule, error) {
	toks, err := lexer.Tokenize(src)
	if err != nil {
		return nil, fmt.Errorf("lex: %w", err)
	}
	return ParseTokens(toks)
}

// ParseTokens parses an already-lexed token stream into rules.
func ParseTokens(toks []lexer.Token) ([]ast.Rule, error) {
	p := &parser{toks: toks}
	return p.rules()
}

type parser struct {
	toks []lexer.Token
	pos  int
}

// peek returns the current token kind, or -1 at EOF.
func (p *parser) peek() lexer.Kind {
	if p.pos >= len(p.toks) {
		return -1
	}
	return p.toks[p.pos].Kind
}

// peekAt looks ahead n tokens past the current one.
func (p *parser) peekAt(n int) lexer.Kind {
	if p.pos+n >= len(p.toks) {
		return -1
	}
	return p.toks[p.pos+n].Kind
}

func (p *parser) next() lexer.Token {
	t := p.toks[p.pos]
	p.pos++
	return t
}

// unexpected builds the leaf error for the current position.
func (p *parser) unexpected(expecting string) *UnexpectedError {
	if p.pos >= len(p.toks) {
		line := 1
		if len(p.toks) > 0 {
			line = p.toks[len(p.toks)-1].Line
		}
		return &UnexpectedError{Line: line, Got: "EOF", Expecting: expecting}
	}
	t := p.toks[p.pos]
	return &UnexpectedError{Line: t.Line, Got: t.String(), Expecting: expecting}
}

// expect consumes a token of the given kind or fails.
func (p *parser) expect(k lexer.Kind, expecting string) (lexer.Token, error) {
	if p.peek() != k {
		return lexer.Token{}, p.unexpected(expecting)
	}
	return p.next(), nil
}

func (p *parser) rules() ([]ast.Rule, error) {
	var out []ast.Rule
	for p.pos < len(p.toks) {
		switch p.peek() {
		case lexer.Newline:
			p.next()
		case lexer.Lt:
			r, err := p.rule(out)
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		default:
			return nil, fmt.Errorf("parsing file: %w", p.unexpected("'<' or a new line"))
		}
	}
	return out, nil
}

// rule parses one full rule. prev is used only to phrase the error when
// the rule's name was not reached yet.
func (p *parser) rule(prev []ast.Rule) (ast.Rule, error) {
	noName := "first rule"
	if len(prev) > 0 {
		noName = fmt.Sprintf("rule after %q", prev[len(prev)-1].Name)
	}

	if _, err := p.expect(lexer.Lt, "'<'"); err != nil {
		return ast.Rule{}, fmt.Errorf("parsing %s: %w", noName, err)
	}
	nameTok, err := p.expect(lexer.Ident, "rule identifier")
	if err != nil {
		return ast.Rule{}, fmt.Errorf("parsing %s: %w", noName, err)
	}
	name := nameTok.Text
	if _, err := p.expect(lexer.Gt, "'>'"); err != nil {
		return ast.Rule{}, fmt.Errorf("parsing rule %q: %w", name, err)
	}
	if _, err := p.expect(lexer.Assign, "'::='"); err != nil {
		return ast.Rule{}, fmt.Errorf("parsing rule %q: %w", name, err)
	}

	variants, err := p.variants()
	if err != nil {
		return ast.Rule{}, fmt.Errorf("parsing rule %q: %w", name, err)
	}
	return ast.Rule{Name: name, Variants: variants}, nil
}

func (p *parser) variants() ([]ast.Variant, error) {
	var out []ast.Variant
	for {
		v, err := p.variant(len(out) + 1)
		if err != nil {
			return nil, err
		}
		out = append(out, v)

		// A "|" continues the rule; a newline directly before it is
		// swallowed so alternatives can sit on their own lines.
		switch {
		case p.peek() == lexer.Pipe:
			p.next()
		case p.peek() == lexer.Newline && p.peekAt(1) == lexer.Pipe:
			p.next()
			p.next()
		default:
			return out, nil
		}
	}
}

func (p *parser) variant(idx int) (ast.Variant, error) {
	var atoms []ast.Atom
	for {
		a, err := p.atom()
		if err != nil {
			return ast.Variant{}, fmt.Errorf("variant %d: %w", idx, err)
		}
		atoms = append(atoms, a)
		if k := p.peek(); k != lexer.Lt && k != lexer.Terminal {
			return ast.Variant{Atoms: atoms}, nil
		}
	}
}

func (p *parser) atom() (ast.Atom, error) {
	switch p.peek() {
	case lexer.Terminal:
		return ast.Terminal(p.next().Text), nil
	case lexer.Lt:
		p.next()
		nameTok, err := p.expect(lexer.Ident, "non-terminal identifier")
		if err != nil {
			return ast.Atom{}, fmt.Errorf("atom: %w", err)
		}
		if _, err := p.expect(lexer.Gt, "'>'"); err != nil {
			return ast.Atom{}, fmt.Errorf("atom: %w", err)
		}
		return ast.NonTerminal(nameTok.Text), nil
	default:
		return ast.Atom{}, fmt.Errorf("atom: %w", p.unexpected(`'<' or "..."`))
	}
}
