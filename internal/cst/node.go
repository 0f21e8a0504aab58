package cst

import (
	"perlsense/internal/diag"
	"perlsense/internal/lexer"
	"perlsense/internal/source"
	"perlsense/internal/token"
)

// NodeID identifies a node across parse generations. Zero is never assigned.
type NodeID uint32

// NoNode is the invalid NodeID.
const NoNode NodeID = 0

func (id NodeID) IsValid() bool { return id != NoNode }

// Problem is a syntax diagnostic attached to the node it concerns, so it
// moves with the node when the tree is edited.
type Problem struct {
	Code diag.Code
	Msg  string
	// AtEnd places the diagnostic at the end of the node (something is
	// missing) instead of over the whole node.
	AtEnd bool
}

// Node is a CST node. Leaves have Kind Token and a non-nil Tok; every other
// node has at least one child and spans exactly its children.
type Node struct {
	ID       NodeID
	Kind     Kind
	Span     source.Span
	Children []*Node
	Tok      *token.Token
	Problems []Problem
	// Checkpoints is set on Block nodes: the lexer state before each
	// child, so an edit between the braces can be re-lexed from there.
	Checkpoints []lexer.State
}

// IsLeaf reports whether n is a token leaf.
func (n *Node) IsLeaf() bool { return n.Tok != nil }

// IsError reports whether n is an Error node or an error token leaf.
func (n *Node) IsError() bool {
	return n.Kind == Error || (n.Tok != nil && n.Tok.Kind.Category() == token.CatError)
}

// FirstToken returns the first significant token leaf in n.
func (n *Node) FirstToken() *token.Token {
	if n.Tok != nil {
		if n.Tok.IsTrivia() {
			return nil
		}
		return n.Tok
	}
	for _, c := range n.Children {
		if t := c.FirstToken(); t != nil {
			return t
		}
	}
	return nil
}

// ChildTokens returns the significant tokens that are direct leaf children.
func (n *Node) ChildTokens() []*token.Token {
	var out []*token.Token
	for _, c := range n.Children {
		if c.Tok != nil && !c.Tok.IsTrivia() {
			out = append(out, c.Tok)
		}
	}
	return out
}

// ChildToken returns the first direct leaf child of kind k.
func (n *Node) ChildToken(k token.Kind) *token.Token {
	for _, c := range n.Children {
		if c.Tok != nil && c.Tok.Kind == k {
			return c.Tok
		}
	}
	return nil
}

// Child returns the first direct child of kind k.
func (n *Node) Child(k Kind) *Node {
	for _, c := range n.Children {
		if c.Kind == k {
			return c
		}
	}
	return nil
}

// SyntaxChildren returns the direct children that are not trivia leaves.
func (n *Node) SyntaxChildren() []*Node {
	out := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		if c.Tok != nil && c.Tok.IsTrivia() {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Shift moves n and its whole subtree by delta bytes, in place.
func (n *Node) Shift(delta int) {
	if delta == 0 {
		return
	}
	n.Span = n.Span.Shift(delta)
	if n.Tok != nil {
		shifted := n.Tok.Shifted(delta)
		n.Tok = &shifted
	}
	for _, c := range n.Children {
		c.Shift(delta)
	}
}

// Walk calls fn for n and its descendants in pre-order. Returning false
// skips the node's children.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// Count returns the number of nodes in the subtree.
func Count(n *Node) int {
	total := 0
	Walk(n, func(*Node) bool { total++; return true })
	return total
}
