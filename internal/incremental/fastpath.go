package incremental

import (
	"slices"

	"perlsense/internal/cst"
	"perlsense/internal/lexer"
	"perlsense/internal/source"
	"perlsense/internal/token"
)

// fastPathKind reports the tokens whose text never changes how the parser
// builds the tree around them.
func fastPathKind(k token.Kind) bool {
	switch k {
	case token.Number, token.String, token.Comment:
		return true
	}
	return false
}

// fastPath handles an edit strictly inside a single number, string or
// comment token. It succeeds when the token re-lexes to the same kind with
// the same shifted end and leaves the lexer in the same state, in which case
// only the leaf is replaced and everything after it is shifted.
func fastPath(old *cst.Tree, e source.Edit, text string) (*cst.Tree, Result, bool) {
	if len(old.Root.Children) == 0 || e.Start >= old.Len() {
		return nil, Result{}, false
	}
	path := old.Path(e.Start)
	leaf := path[len(path)-1]
	if leaf.Tok == nil || !fastPathKind(leaf.Tok.Kind) || len(path) < 2 {
		return nil, Result{}, false
	}
	if e.Start <= leaf.Span.Start || e.End >= leaf.Span.End {
		return nil, Result{}, false
	}

	before, ok := stateAt(old, path, leaf.Span.Start)
	if !ok {
		return nil, Result{}, false
	}
	olx := lexer.New(old.File, old.Text, leaf.Span.Start, before, lexer.Options{})
	if olx.Next() != *leaf.Tok {
		return nil, Result{}, false
	}
	nlx := lexer.New(old.File, text, leaf.Span.Start, before, lexer.Options{})
	tok := nlx.Next()
	delta := e.Delta()
	if tok.Kind != leaf.Tok.Kind || tok.Span.Start != leaf.Span.Start ||
		int(tok.Span.End) != int(leaf.Span.End)+delta ||
		!nlx.State().Equal(olx.State()) {
		return nil, Result{}, false
	}

	fresh := &cst.Node{ID: old.NextID, Kind: cst.Token, Span: tok.Span, Tok: &tok}
	parent := path[len(path)-2]
	parent.Children[slices.Index(parent.Children, leaf)] = fresh
	path[len(path)-1] = fresh
	shiftAfter(path, delta)

	tree := &cst.Tree{
		File:        old.File,
		Text:        text,
		Root:        old.Root,
		Checkpoints: old.Checkpoints,
		End:         old.End,
		NextID:      old.NextID + 1,
	}
	return tree, Result{
		Reused:   len(old.Root.Children),
		Reparsed: tok.Span,
		FastPath: true,
	}, true
}

// stateAt re-lexes the old text up to off, the start of the last node of
// path, from the nearest recorded checkpoint: that of the innermost block
// on the path, or of the top-level node.
func stateAt(old *cst.Tree, path []*cst.Node, off uint32) (lexer.State, bool) {
	var (
		start  uint32
		before lexer.State
		found  bool
	)
	for depth := len(path) - 2; depth >= 0 && !found; depth-- {
		n, child := path[depth], path[depth+1]
		states := n.Checkpoints
		if depth == 0 {
			states = old.Checkpoints
		} else if n.Kind != cst.Block {
			continue
		}
		i := slices.Index(n.Children, child)
		if i < 0 || i >= len(states) {
			return lexer.State{}, false
		}
		start, before, found = child.Span.Start, states[i], true
	}
	if !found {
		return lexer.State{}, false
	}
	lx := lexer.New(old.File, old.Text, start, before, lexer.Options{})
	for lx.Offset() < off {
		if lx.Next().Kind == token.EOF {
			return lexer.State{}, false
		}
	}
	return lx.State(), lx.Offset() == off
}

// shiftAfter moves everything after the last node of path by delta and
// grows each of its ancestors by delta. path runs down from the root.
func shiftAfter(path []*cst.Node, delta int) {
	for depth := len(path) - 2; depth >= 0; depth-- {
		parent, child := path[depth], path[depth+1]
		if i := slices.Index(parent.Children, child); i >= 0 {
			for _, later := range parent.Children[i+1:] {
				later.Shift(delta)
			}
		}
		parent.Span.End = source.ToU32(int(parent.Span.End) + delta)
	}
}
