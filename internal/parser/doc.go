// Package parser builds a full-coverage concrete syntax tree from a lexed
// token stream.
//
// Statements are parsed by recursive descent on their leading token and
// expressions by precedence climbing. Malformed input never aborts the
// parse: unexpected tokens are wrapped in Error nodes that keep their bytes,
// and missing pieces become problems attached to the node that lacks them.
//
// ParseRegion parses a run of top-level statements on its own, which is what
// the incremental engine re-parses after an edit.
package parser
