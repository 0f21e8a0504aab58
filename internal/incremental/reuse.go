package incremental

import (
	"slices"

	"perlsense/internal/cst"
	"perlsense/internal/lexer"
	"perlsense/internal/source"
)

type reuseKey struct {
	kind       cst.Kind
	start, end uint32
}

type candidate struct {
	node  *cst.Node
	delta int
}

// matcher swaps freshly parsed nodes for old nodes of the replaced region
// that are equal to them once shifted. Old nodes that overlap the edit are
// never candidates.
type matcher struct {
	byKey  map[reuseKey]candidate
	reused int
}

func newMatcher(old []*cst.Node, e source.Edit) *matcher {
	m := &matcher{byKey: make(map[reuseKey]candidate)}
	delta := e.Delta()
	for _, n := range old {
		cst.Walk(n, func(o *cst.Node) bool {
			var d int
			switch {
			case o.Span.End <= e.Start:
			case o.Span.Start >= e.End:
				d = delta
			default:
				return true
			}
			key := reuseKey{kind: o.Kind, start: o.Span.Start, end: o.Span.End}
			if d != 0 {
				sp := o.Span.Shift(d)
				key.start, key.end = sp.Start, sp.End
			}
			if _, dup := m.byKey[key]; !dup {
				m.byKey[key] = candidate{node: o, delta: d}
			}
			return true
		})
	}
	return m
}

// reuse returns the old node equal to n when there is one, otherwise n with
// its children reused where possible.
func (m *matcher) reuse(n *cst.Node) *cst.Node {
	key := reuseKey{kind: n.Kind, start: n.Span.Start, end: n.Span.End}
	if c, ok := m.byKey[key]; ok && equalShifted(n, c.node, c.delta) {
		delete(m.byKey, key)
		c.node.Shift(c.delta)
		m.reused++
		return c.node
	}
	for i, child := range n.Children {
		n.Children[i] = m.reuse(child)
	}
	return n
}

// equalShifted reports whether fresh equals old moved by delta bytes, node
// IDs aside.
func equalShifted(fresh, old *cst.Node, delta int) bool {
	if fresh.Kind != old.Kind || fresh.Span != old.Span.Shift(delta) {
		return false
	}
	if (fresh.Tok == nil) != (old.Tok == nil) || len(fresh.Children) != len(old.Children) {
		return false
	}
	if fresh.Tok != nil && *fresh.Tok != old.Tok.Shifted(delta) {
		return false
	}
	if !slices.Equal(fresh.Problems, old.Problems) || !slices.EqualFunc(fresh.Checkpoints, old.Checkpoints, lexer.State.Equal) {
		return false
	}
	for i := range fresh.Children {
		if !equalShifted(fresh.Children[i], old.Children[i], delta) {
			return false
		}
	}
	return true
}
