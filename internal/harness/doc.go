// Package harness runs grammar conformance scenarios.
//
// A scenario is a YAML file naming a grammar (inline or by path) and a
// list of steps exercising the engine against it: generate steps with a
// fixed seed and an expected string or a round-trip check, and match
// steps with expected capture spans or an expected error code. A
// scenario may instead expect the grammar build itself to fail.
//
// Scenarios back the `bnfkit test` command and the package's own golden
// tests: a scenario run produces a Report whose JSON form is stable and
// suitable for snapshot comparison.
package harness
