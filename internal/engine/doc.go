// Package engine implements the bnfkit grammar engine.
//
// The engine wraps a validated rule set and exposes two operations:
// random generation of strings satisfying a rule, and anchored matching
// of text against a rule with selective span capture.
//
// ARCHITECTURE:
//
// Build-time validation:
// Build runs three passes in order, stopping at the first failure:
//  1. Duplicate rule names (every duplicate collected)
//  2. Undefined non-terminal references (first offender reported)
//  3. Left-recursion cycles, following only the leading atom of each
//     variant, with an explicit per-rule on-stack marker
//
// Only a rule set that passes all three becomes an Engine.
//
// Matching:
// Anchored at offset 0, variants tried in declaration order, first
// fully-matching variant wins for a rule and no alternative parse is
// explored after that. Failed variants backtrack to the next variant
// of the same rule. Offsets are byte positions into the exact text
// passed in.
//
// The engine is synchronous call-and-return: no goroutines, no I/O,
// no mutation after Build. An Engine may be shared across goroutines;
// each Match or Generate call is independent.
//
// KNOWN BOUNDARY:
// The cycle check inspects only the leading atom, so a grammar like
// <a> ::= "x" <a> builds successfully and recurses without bound when
// generated or matched. Stack exhaustion from such a grammar is a
// fatal fault, deliberately not modeled as a typed error.
package engine
