// Package lexer tokenizes the BNF notation consumed by bnfkit.
//
// The token stream keeps newline tokens: the parser uses them both as
// rule separators and for line numbers in diagnostics. Spaces, tabs and
// carriage returns are skipped.
//
// Terminal tokens carry their content with escape sequences already
// resolved: \n, \t and \r become the control character, and \ followed
// by any other character becomes that character with the backslash
// dropped. Downstream consumers treat the content as exact literal bytes.
package lexer

import "fmt"

// Kind identifies a token class.
type Kind int

const (
	// Newline separates rules and advances the line counter.
	Newline Kind = iota

	// Ident is a rule name: [a-zA-Z_][a-zA-Z_0-9]*.
	Ident

	// Lt and Gt bracket rule names and non-terminal references.
	Lt
	Gt

	// Assign is the ::= operator binding a rule to its variants.
	Assign

	// Pipe separates the variants of a rule.
	Pipe

	// Terminal is a quoted literal; Text holds the resolved content.
	Terminal
)

// String returns the notation-facing name of the kind.
func (k Kind) String() string {
	switch k {
	case Newline:
		return "NL"
	case Ident:
		return "ID"
	case Lt:
		return "'<'"
	case Gt:
		return "'>'"
	case Assign:
		return "'::='"
	case Pipe:
		return "'|'"
	case Terminal:
		return "terminal"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Token is one lexed unit of the input.
type Token struct {
	Kind Kind
	Text string // identifier name or resolved terminal content
	Line int    // 1-based line the token starts on
}

// String renders the token for diagnostics and --dump-lex output.
func (t Token) String() string {
	switch t.Kind {
	case Ident:
		return fmt.Sprintf("ID(%s)", t.Text)
	case Terminal:
		return fmt.Sprintf("terminal(%q)", t.Text)
	default:
		return t.Kind.String()
	}
}

// Error reports an unexpected character in the input.
type Error struct {
	Line int    // 1-based line of the offending character
	Near string // short slice of input starting at the offender
}

func (e *Error) Error() string {
	return fmt.Sprintf("unexpected character at line %d, near: %q", e.Line, e.Near)
}

// Tokenize lexes src into a token stream.
//
// On the first unexpected character it stops and returns a *Error
// naming the line and a short snippet of the remaining input.
func Tokenize(src string) ([]Token, error) {
	var out []Token
	line := 1
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			i++
		case c == '\n':
			out = append(out, Token{Kind: Newline, Line: line})
			line++
			i++
		case c == '<':
			out = append(out, Token{Kind: Lt, Line: line})
			i++
		case c == '>':
			out = append(out, Token{Kind: Gt, Line: line})
			i++
		case c == '|':
			out = append(out, Token{Kind: Pipe, Line: line})
			i++
		case c == ':':
			if i+2 < len(src) && src[i+1] == ':' && src[i+2] == '=' {
				out = append(out, Token{Kind: Assign, Line: line})
				i += 3
			} else {
				return nil, unexpected(src, i, line)
			}
		case c == '"':
			content, rest, err := lexTerminal(src, i, line)
			if err != nil {
				return nil, err
			}
			out = append(out, Token{Kind: Terminal, Text: content, Line: line})
			i = rest
		case isIdentStart(c):
			start := i
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			out = append(out, Token{Kind: Ident, Text: src[start:i], Line: line})
		default:
			return nil, unexpected(src, i, line)
		}
	}
	return out, nil
}

// lexTerminal consumes a quoted literal starting at the opening quote,
// resolving escapes as it goes. Returns the content and the index just
// past the closing quote. An unterminated literal is an Error at the
// opening quote's line.
func lexTerminal(src string, start, line int) (string, int, error) {
	content := make([]byte, 0, 16)
	i := start + 1
	for i < len(src) {
		switch c := src[i]; c {
		case '"':
			return string(content), i + 1, nil
		case '\\':
			if i+1 >= len(src) {
				return "", 0, unexpected(src, start, line)
			}
			switch esc := src[i+1]; esc {
			case 'n':
				content = append(content, '\n')
			case 't':
				content = append(content, '\t')
			case 'r':
				content = append(content, '\r')
			default:
				content = append(content, esc)
			}
			i += 2
		case '\n':
			// literals do not span lines
			return "", 0, unexpected(src, start, line)
		default:
			content = append(content, c)
			i++
		}
	}
	return "", 0, unexpected(src, start, line)
}

func unexpected(src string, i, line int) *Error {
	const window = 10
	end := i + window
	if end > len(src) {
		end = len(src)
	}
	near := src[i:end]
	for j := 0; j < len(near); j++ {
		if near[j] == '\n' {
			near = near[:j]
			break
		}
	}
	return &Error{Line: line, Near: near}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
