package engine

import (
	"errors"
	"fmt"
	"strings"
)

// BuildErrorCode categorizes build-time validation failures.
type BuildErrorCode string

const (
	// ErrCodeDuplicatedNames indicates two or more rules share a name.
	ErrCodeDuplicatedNames BuildErrorCode = "DUPLICATED_NAMES"

	// ErrCodeUndefinedNonTerminal indicates an atom references a rule
	// that is not declared anywhere in the grammar.
	ErrCodeUndefinedNonTerminal BuildErrorCode = "UNDEFINED_NONTERMINAL"

	// ErrCodeLeftRecursion indicates a rule reaches itself through a
	// chain of leading non-terminal atoms.
	ErrCodeLeftRecursion BuildErrorCode = "LEFT_RECURSION"
)

// BuildError is a validation failure detected by Build.
//
// Which fields are set depends on Code:
//   - DUPLICATED_NAMES: Names lists every duplicated name once
//   - UNDEFINED_NONTERMINAL: Rule is the referencing rule, Missing the
//     undeclared name
//   - LEFT_RECURSION: Rule is the rule the cycle returns to
type BuildError struct {
	Code    BuildErrorCode
	Names   []string
	Rule    string
	Missing string
}

func (e *BuildError) Error() string {
	switch e.Code {
	case ErrCodeDuplicatedNames:
		return fmt.Sprintf("grammar contains duplicated rule names: %s", strings.Join(e.Names, ", "))
	case ErrCodeUndefinedNonTerminal:
		return fmt.Sprintf("rule %q references inexistent non-terminal %q", e.Rule, e.Missing)
	case ErrCodeLeftRecursion:
		return fmt.Sprintf("rule %q is left-recursive and would recurse forever", e.Rule)
	default:
		return fmt.Sprintf("%s: invalid grammar", e.Code)
	}
}

// MatchErrorCode categorizes matching failures.
type MatchErrorCode string

const (
	// ErrCodeBadInitialRule indicates the initial rule is not in the grammar.
	ErrCodeBadInitialRule MatchErrorCode = "BAD_INITIAL_RULE"

	// ErrCodeBadWatchRule indicates a watched rule is not in the grammar.
	ErrCodeBadWatchRule MatchErrorCode = "BAD_WATCH_RULE"

	// ErrCodeNoMatches indicates the initial rule did not match the text
	// at offset 0.
	ErrCodeNoMatches MatchErrorCode = "NO_MATCHES"
)

// MatchError is a failure of the Match operation. Rule names the
// offending rule for the bad-rule codes and the initial rule for
// NO_MATCHES.
type MatchError struct {
	Code MatchErrorCode
	Rule string
}

func (e *MatchError) Error() string {
	switch e.Code {
	case ErrCodeBadInitialRule:
		return fmt.Sprintf("initial rule %q is not part of the grammar", e.Rule)
	case ErrCodeBadWatchRule:
		return fmt.Sprintf("watched rule %q is not part of the grammar", e.Rule)
	case ErrCodeNoMatches:
		return fmt.Sprintf("rule %q does not match the text", e.Rule)
	default:
		return fmt.Sprintf("%s: match failed", e.Code)
	}
}

// GenerateError is a failure of the Generate operation: the requested
// rule is not part of the grammar.
type GenerateError struct {
	Rule string
}

func (e *GenerateError) Error() string {
	return fmt.Sprintf("cannot generate: no rule named %q in the grammar", e.Rule)
}

// IsBuildError returns the *BuildError carried by err, if any.
// Uses errors.As to handle wrapped errors.
func IsBuildError(err error) (*BuildError, bool) {
	var be *BuildError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// IsNoMatches reports whether err is a NO_MATCHES match failure.
// Uses errors.As to handle wrapped errors.
func IsNoMatches(err error) bool {
	var me *MatchError
	if errors.As(err, &me) {
		return me.Code == ErrCodeNoMatches
	}
	return false
}
