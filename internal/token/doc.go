// Package token defines lexical token kinds for Perl source.
// Invariants:
//   - Token.Text is a slice of the original source (no copies).
//   - Token.Span matches Text exactly (Start..End).
//   - Whitespace, comments, POD and the data section are ordinary tokens;
//     the token stream covers every input byte.
//   - Every Kind belongs to exactly one Category. Adding a Kind without
//     extending Category panics in tests.
package token
