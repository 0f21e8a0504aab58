package cst

import (
	"sort"

	"perlsense/internal/diag"
	"perlsense/internal/lexer"
	"perlsense/internal/source"
	"perlsense/internal/token"
)

// Tree is one parse generation of a file.
type Tree struct {
	File source.FileID
	Text string
	Root *Node
	// Checkpoints[i] is the lexer state before the first token of
	// Root.Children[i]. They are the stable points incremental reparsing
	// restarts from.
	Checkpoints []lexer.State
	// End is the lexer state after the last token.
	End lexer.State
	// NextID is the first ID not used by any node of the tree.
	NextID NodeID
}

// Len returns the length of the covered text.
func (t *Tree) Len() uint32 { return source.ToU32(len(t.Text)) }

// NodeAt returns the innermost node whose span contains off. An offset at
// the end of the file resolves to the last leaf.
func (t *Tree) NodeAt(off uint32) *Node {
	if t == nil || t.Root == nil {
		return nil
	}
	if off >= t.Len() {
		if t.Len() == 0 {
			return t.Root
		}
		off = t.Len() - 1
	}
	n := t.Root
	for {
		i := childAt(n, off)
		if i < 0 {
			return n
		}
		n = n.Children[i]
	}
}

// TokenAt returns the leaf token covering off.
func (t *Tree) TokenAt(off uint32) (token.Token, bool) {
	n := t.NodeAt(off)
	if n == nil || n.Tok == nil {
		return token.Token{}, false
	}
	return *n.Tok, true
}

// Path returns the chain of nodes from the root down to the innermost node
// containing off.
func (t *Tree) Path(off uint32) []*Node {
	if t == nil || t.Root == nil {
		return nil
	}
	if off >= t.Len() && t.Len() > 0 {
		off = t.Len() - 1
	}
	path := []*Node{t.Root}
	n := t.Root
	for {
		i := childAt(n, off)
		if i < 0 {
			return path
		}
		n = n.Children[i]
		path = append(path, n)
	}
}

// childAt finds the child of n containing off, or -1.
func childAt(n *Node, off uint32) int {
	i := sort.Search(len(n.Children), func(i int) bool { return n.Children[i].Span.End > off })
	if i < len(n.Children) && n.Children[i].Span.Start <= off {
		return i
	}
	return -1
}

// TopLevelIndex returns the index of the root child containing off, or
// len(Root.Children) when off is at or past the end.
func (t *Tree) TopLevelIndex(off uint32) int {
	kids := t.Root.Children
	return sort.Search(len(kids), func(i int) bool { return kids[i].Span.End > off })
}

// Leaves returns every leaf token in source order, trivia included.
func (t *Tree) Leaves() []token.Token {
	var out []token.Token
	Walk(t.Root, func(n *Node) bool {
		if n.Tok != nil {
			out = append(out, *n.Tok)
		}
		return true
	})
	return out
}

// Diagnostics collects the problems attached to nodes, sorted by position.
func (t *Tree) Diagnostics() []diag.Diagnostic {
	var out []diag.Diagnostic
	Walk(t.Root, func(n *Node) bool {
		for _, p := range n.Problems {
			sp := n.Span
			if p.AtEnd {
				sp.Start = sp.End
			}
			out = append(out, diag.NewError(p.Code, sp, p.Msg))
		}
		return true
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Primary.Start < out[j].Primary.Start
	})
	return out
}

// HasErrors reports whether any node carries a problem.
func (t *Tree) HasErrors() bool {
	found := false
	Walk(t.Root, func(n *Node) bool {
		if len(n.Problems) > 0 {
			found = true
		}
		return !found
	})
	return found
}
