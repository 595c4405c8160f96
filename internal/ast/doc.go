// Package ast provides the grammar model types for bnfkit.
//
// This package contains value types only. All other internal packages
// import ast; ast imports nothing internal. This keeps the grammar model
// the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Rules are immutable once constructed; nothing mutates them after parse
//   - Terminal content holds the exact literal bytes to match or emit;
//     escape sequences are resolved by the lexer before atoms are built
//   - Rule references are by name, resolved at traversal time, never as
//     cyclic pointers between rules
package ast
