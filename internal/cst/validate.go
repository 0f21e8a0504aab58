package cst

import (
	"perlsense/internal/diag"
	"perlsense/internal/source"
	"perlsense/internal/token"
)

// Validate checks the structural invariants of a tree: leaf tokens partition
// the text in order, every interior node spans exactly its children, and
// IDs are unique. A violation is an internal error, never a user error.
func Validate(t *Tree) error {
	if t == nil || t.Root == nil {
		return diag.Invariantf("validate", source.Span{}, "tree has no root")
	}
	v := validator{tree: t, seen: make(map[NodeID]struct{})}
	if err := v.node(t.Root, true); err != nil {
		return err
	}
	if v.cursor != t.Len() {
		return v.fail(source.Span{File: t.File, Start: v.cursor, End: t.Len()}, "leaves end at %d, text ends at %d", v.cursor, t.Len())
	}
	if len(t.Checkpoints) != len(t.Root.Children) {
		return v.fail(t.Root.Span, "%d checkpoints for %d top-level nodes", len(t.Checkpoints), len(t.Root.Children))
	}
	return nil
}

type validator struct {
	tree   *Tree
	cursor uint32
	seen   map[NodeID]struct{}
}

func (v *validator) fail(sp source.Span, format string, args ...any) *diag.InvariantError {
	err := diag.Invariantf("validate", sp, format, args...)
	err.File = v.tree.File
	return err
}

func (v *validator) node(n *Node, root bool) error {
	if n == nil {
		return v.fail(source.Span{File: v.tree.File, Start: v.cursor, End: v.cursor}, "nil node")
	}
	if !n.ID.IsValid() {
		return v.fail(n.Span, "%s node without ID", n.Kind)
	}
	if _, dup := v.seen[n.ID]; dup {
		return v.fail(n.Span, "duplicate node ID %d", n.ID)
	}
	v.seen[n.ID] = struct{}{}

	if n.Tok != nil {
		if n.Kind != Token || len(n.Children) > 0 {
			return v.fail(n.Span, "leaf has kind %s and %d children", n.Kind, len(n.Children))
		}
		if n.Span != n.Tok.Span {
			return v.fail(n.Span, "leaf span differs from token span %s", n.Tok.Span)
		}
		if n.Span.Empty() && (n.Tok.Kind != token.Unterminated || n.Span.Start != v.tree.Len()) {
			return v.fail(n.Span, "empty %s leaf", n.Tok.Kind)
		}
		if n.Span.Start != v.cursor {
			return v.fail(n.Span, "leaf starts at %d, expected %d", n.Span.Start, v.cursor)
		}
		if n.Span.End > v.tree.Len() || v.tree.Text[n.Span.Start:n.Span.End] != n.Tok.Text {
			return v.fail(n.Span, "%s leaf text does not match the source", n.Tok.Kind)
		}
		v.cursor = n.Span.End
		return nil
	}

	if n.Kind == Token {
		return v.fail(n.Span, "token node without token")
	}
	if len(n.Children) == 0 {
		if root && v.tree.Len() == 0 {
			return nil
		}
		return v.fail(n.Span, "empty %s node", n.Kind)
	}
	first, last := n.Children[0], n.Children[len(n.Children)-1]
	if first == nil || last == nil {
		return v.fail(n.Span, "%s node has a nil child", n.Kind)
	}
	if n.Span.Start != first.Span.Start || n.Span.End != last.Span.End {
		return v.fail(n.Span, "%s node does not span its children %d..%d", n.Kind, first.Span.Start, last.Span.End)
	}
	if n.Kind == Block && len(n.Checkpoints) != len(n.Children) {
		return v.fail(n.Span, "%d checkpoints for %d block children", len(n.Checkpoints), len(n.Children))
	}
	for _, c := range n.Children {
		if err := v.node(c, false); err != nil {
			return err
		}
	}
	return nil
}
