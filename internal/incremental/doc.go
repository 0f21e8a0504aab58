// Package incremental updates a syntax tree after a text edit without
// re-parsing the whole buffer.
//
// Reparse tries, in order:
//
//  1. the token fast path, for an edit strictly inside a number, string or
//     comment that re-lexes to the same kind of token with the same end;
//  2. a region reparse, which re-lexes from the checkpoint of a statement
//     before the edit until it reaches a shifted old boundary with an equal
//     lexer state, re-parses only that run of statements and moves the rest
//     of the old tree over. It is tried first in the innermost block around
//     the edit, then in each enclosing block, then among the top-level
//     nodes;
//  3. a full reparse, when the damage cannot be bounded.
//
// Reparse consumes the old tree: its untouched nodes are moved into the new
// tree and shifted in place, so they keep their identity.
package incremental
