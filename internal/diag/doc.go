// Package diag defines the diagnostic model shared by the lexer, parser and
// semantic passes.
//
// # Purpose
//
//   - Provide deterministic data structures that capture findings produced
//     while lexing, parsing and extracting symbols.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to storage or formatting.
//   - Carry the single fatal error class, InvariantError, which records the
//     file, byte range and operation needed to reproduce a broken tree.
//
// Malformed user code is never an error value: it becomes Error nodes plus
// diagnostics, and parsing still returns a tree.
package diag
