package cst

import (
	"fmt"
	"slices"

	"perlsense/internal/lexer"
)

// Equal reports whether two subtrees have the same shape, kinds, spans,
// tokens, problems and block checkpoints. IDs are ignored.
func Equal(a, b *Node) bool {
	return Diff(a, b) == ""
}

// Diff describes the first difference between two subtrees, or returns ""
// when they are structurally equal.
func Diff(a, b *Node) string {
	return diff(a, b, "root")
}

func diff(a, b *Node, path string) string {
	switch {
	case a == nil && b == nil:
		return ""
	case a == nil || b == nil:
		return path + ": one side is nil"
	case a.Kind != b.Kind:
		return fmt.Sprintf("%s: kind %s vs %s", path, a.Kind, b.Kind)
	case a.Span != b.Span:
		return fmt.Sprintf("%s (%s): span %s vs %s", path, a.Kind, a.Span, b.Span)
	case (a.Tok == nil) != (b.Tok == nil):
		return fmt.Sprintf("%s (%s): leaf vs interior", path, a.Kind)
	case a.Tok != nil && *a.Tok != *b.Tok:
		return fmt.Sprintf("%s: token %s %q vs %s %q", path, a.Tok.Kind, a.Tok.Text, b.Tok.Kind, b.Tok.Text)
	case !slices.Equal(a.Problems, b.Problems):
		return fmt.Sprintf("%s (%s): problems %v vs %v", path, a.Kind, a.Problems, b.Problems)
	case len(a.Children) != len(b.Children):
		return fmt.Sprintf("%s (%s): %d children vs %d", path, a.Kind, len(a.Children), len(b.Children))
	case !slices.EqualFunc(a.Checkpoints, b.Checkpoints, lexer.State.Equal):
		return fmt.Sprintf("%s (%s): block checkpoints differ", path, a.Kind)
	}
	for i := range a.Children {
		if d := diff(a.Children[i], b.Children[i], fmt.Sprintf("%s/%d", path, i)); d != "" {
			return d
		}
	}
	return ""
}

// TreesEqual compares two trees including their checkpoints and end state.
func TreesEqual(a, b *Tree) bool {
	return TreeDiff(a, b) == ""
}

// TreeDiff is Diff for whole trees.
func TreeDiff(a, b *Tree) string {
	if a.Text != b.Text {
		return "texts differ"
	}
	if d := Diff(a.Root, b.Root); d != "" {
		return d
	}
	if len(a.Checkpoints) != len(b.Checkpoints) {
		return fmt.Sprintf("%d checkpoints vs %d", len(a.Checkpoints), len(b.Checkpoints))
	}
	for i := range a.Checkpoints {
		if !a.Checkpoints[i].Equal(b.Checkpoints[i]) {
			return fmt.Sprintf("checkpoint %d differs: %+v vs %+v", i, a.Checkpoints[i], b.Checkpoints[i])
		}
	}
	if !a.End.Equal(b.End) {
		return fmt.Sprintf("end state differs: %+v vs %+v", a.End, b.End)
	}
	return ""
}
