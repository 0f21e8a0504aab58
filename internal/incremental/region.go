package incremental

import (
	"sort"

	"perlsense/internal/cst"
	"perlsense/internal/lexer"
	"perlsense/internal/parser"
	"perlsense/internal/source"
	"perlsense/internal/token"
)

// lookbehind is how many significant nodes before the damage are re-parsed
// with it. A statement peeks at most two tokens past its end
// (`} continue {`).
const lookbehind = 2

// peekInside is how many tokens after '{' the parser looks at to tell a
// block from an anonymous hash.
const peekInside = 2

// stmtList is a run of statements an edit can be spliced into: the
// children of the file root, or those of a block between its braces.
type stmtList struct {
	kids   []*cst.Node
	states []lexer.State
	// lo is the first child that may be replaced. For a block it follows
	// the tokens the parser peeks at.
	lo int
	// block is nil for the root. A block's closing brace, its last
	// child, is never replaced.
	block *cst.Node
}

func rootList(t *cst.Tree) stmtList {
	return stmtList{kids: t.Root.Children, states: t.Checkpoints}
}

// blockList returns the statement list of b when the edit lies between its
// braces, past the tokens that decide what the braces are.
func blockList(b *cst.Node, e source.Edit) (stmtList, bool) {
	kids := b.Children
	n := len(kids)
	if b.Kind != cst.Block || n < 3 || len(b.Checkpoints) != n || len(b.Problems) > 0 {
		return stmtList{}, false
	}
	open, closer := kids[0], kids[n-1]
	if open.Tok == nil || open.Tok.Kind != token.LBrace || closer.Tok == nil || closer.Tok.Kind != token.RBrace {
		return stmtList{}, false
	}
	if e.Start < open.Span.End || e.End > closer.Span.Start {
		return stmtList{}, false
	}
	lo, seen := 1, 0
	for ; lo < n-1 && seen < peekInside; lo++ {
		seen += significant(kids[lo], peekInside-seen)
	}
	if seen < peekInside {
		return stmtList{}, false
	}
	return stmtList{kids: kids, states: b.Checkpoints, lo: lo, block: b}, true
}

// significant counts the non-trivia tokens of n, up to limit.
func significant(n *cst.Node, limit int) int {
	count := 0
	cst.Walk(n, func(c *cst.Node) bool {
		if count >= limit {
			return false
		}
		if c.Tok != nil && !c.Tok.IsTrivia() {
			count++
		}
		return true
	})
	return count
}

// end is the index a run may extend to: the closing brace of a block, or
// one past the last root child.
func (l stmtList) end() int {
	if l.block != nil {
		return len(l.kids) - 1
	}
	return len(l.kids)
}

// region is a run of re-lexed tokens that ends on an old boundary of its
// list, or at the end of the text.
type region struct {
	start  uint32 // where re-lexing began
	first  int    // first replaced old child
	tail   int    // first kept old child; l.end() when the region hits the end
	stream lexer.Stream
}

// run is a re-parsed region, ready to be spliced in.
type run struct {
	region
	reg    parser.Region
	passes int
}

func reparseRegion(old *cst.Tree, e source.Edit, text string, popts parser.Options) (*cst.Tree, Result, bool) {
	passes := 0
	path := enclosing(old.Root, e)
	for i := len(path) - 1; i > 0; i-- {
		l, ok := blockList(path[i], e)
		if !ok {
			continue
		}
		r, ok := reparseList(old, l, e, text, popts)
		passes += r.passes
		if ok {
			tree, res := spliceBlock(old, path[:i+1], l, r, e, text)
			res.Passes = passes
			return tree, res, true
		}
	}
	if len(old.Root.Problems) > 0 {
		return nil, Result{Passes: passes}, false
	}
	r, ok := reparseList(old, rootList(old), e, text, popts)
	passes += r.passes
	if !ok {
		return nil, Result{Passes: passes}, false
	}
	tree, res := spliceRoot(old, r, e, text)
	res.Passes = passes
	return tree, res, true
}

// enclosing returns the interior nodes that strictly contain the edit,
// from the root down.
func enclosing(root *cst.Node, e source.Edit) []*cst.Node {
	path := []*cst.Node{root}
	for n := root; ; {
		kids := n.Children
		i := sort.Search(len(kids), func(i int) bool { return kids[i].Span.End > e.Start })
		if i == len(kids) {
			return path
		}
		c := kids[i]
		if c.Tok != nil || c.Span.Start >= e.Start || e.End >= c.Span.End {
			return path
		}
		path = append(path, c)
		n = c
	}
}

// reparseList re-lexes and re-parses the damaged run of l.
func reparseList(old *cst.Tree, l stmtList, e source.Edit, text string, popts parser.Options) (run, bool) {
	first, ok := damagedIndex(l, e)
	if !ok {
		return run{}, false
	}
	parse := parser.ParseRegion
	if l.block != nil {
		parse = parser.ParseBlockRegion
	}
	start := l.kids[first].Span.Start
	lx := lexer.New(old.File, text, start, l.states[first], lexer.Options{})
	r := run{region: region{start: start, first: first, tail: first}}
	for minTail := first + 1; ; {
		if !relex(old, l, e, text, lx, &r.region, minTail) {
			return r, false
		}
		r.reg = parse(old.File, text, r.stream, popts)
		r.passes++
		// A statement still open at the region end may have continued into
		// the tail. Double the region and try again, so a block swallowing
		// the rest of the list costs a logarithmic number of passes.
		if !r.reg.EOFInside || r.tail == l.end() {
			break
		}
		minTail = min(r.tail+max(1, r.tail-first), l.end())
	}
	if len(r.reg.Problems) > 0 || r.reg.Closed {
		return r, false
	}
	// Inside a block the parser would have seen the closing brace, not the
	// end of input.
	if l.block != nil && r.reg.EOFInside {
		return r, false
	}
	return r, true
}

// damagedIndex returns the child of l re-lexing starts from: the one
// holding the byte before the edit, moved back past lookbehind significant
// nodes. Inside a block it fails when those nodes reach before l.lo.
func damagedIndex(l stmtList, e source.Edit) (int, bool) {
	kids := l.kids
	anchor := e.Start
	if anchor > 0 {
		anchor--
	}
	i := sort.Search(len(kids), func(i int) bool { return kids[i].Span.End > anchor })
	if i >= l.end() {
		i = l.end() - 1
	}
	if i < l.lo {
		return 0, false
	}
	need := lookbehind
	for i > l.lo && need > 0 {
		i--
		if !isTriviaLeaf(kids[i]) {
			need--
		}
	}
	if l.block != nil && need > 0 {
		for _, k := range kids[1:l.lo] {
			if !isTriviaLeaf(k) {
				return 0, false
			}
		}
	}
	return i, true
}

// relex extends r.stream until the lexer sits on the start of an old child
// of l at or past the edit, with index at least minTail, whose recorded
// state and preceding byte match. From such a boundary the old tokens are
// exactly what lexing the new text would produce. Inside a block the
// closing brace is the last such boundary; passing it fails.
func relex(old *cst.Tree, l stmtList, e source.Edit, text string, lx *lexer.Lexer, r *region, minTail int) bool {
	kids := l.kids
	delta := e.Delta()
	newEnd := e.NewEnd()
	j := minTail
	for {
		off := lx.Offset()
		if off >= newEnd {
			oldOff := source.ToU32(int(off) - delta)
			for j < len(kids) && kids[j].Span.Start < oldOff {
				j++
			}
			if j < len(kids) && kids[j].Span.Start == oldOff &&
				sameByteBefore(text, off, old.Text, oldOff) &&
				lx.State().Equal(l.states[j]) {
				r.tail = j
				r.stream.End = lx.State()
				return true
			}
			if l.block != nil && j >= len(kids) {
				return false
			}
		}
		before := lx.State()
		tok := lx.Next()
		if tok.Kind == token.EOF {
			if l.block != nil {
				return false
			}
			r.tail = len(kids)
			r.stream.End = lx.State()
			return true
		}
		r.stream.Tokens = append(r.stream.Tokens, tok)
		r.stream.States = append(r.stream.States, before)
	}
}

// spliced returns the children and checkpoints of l with the run put in
// place of the old children it replaced. Kept old children are shifted.
func spliced(l stmtList, r run, e source.Edit) ([]*cst.Node, []lexer.State, int) {
	kids := l.kids
	delta := e.Delta()
	m := newMatcher(kids[r.first:r.tail], e)
	children := make([]*cst.Node, 0, r.first+len(r.reg.Nodes)+len(kids)-r.tail)
	children = append(children, kids[:r.first]...)
	for _, n := range r.reg.Nodes {
		children = append(children, m.reuse(n))
	}
	for _, k := range kids[r.tail:] {
		k.Shift(delta)
		children = append(children, k)
	}

	states := make([]lexer.State, 0, len(children))
	states = append(states, l.states[:r.first]...)
	states = append(states, r.reg.Checkpoints...)
	states = append(states, l.states[r.tail:]...)
	return children, states, r.first + len(kids) - r.tail + m.reused
}

// reparsed is the span of the new text the run re-lexed.
func (r run) reparsed(file source.FileID) source.Span {
	sp := source.Span{File: file, Start: r.start, End: r.start}
	if n := len(r.stream.Tokens); n > 0 {
		sp.End = r.stream.Tokens[n-1].Span.End
	}
	return sp
}

func spliceRoot(old *cst.Tree, r run, e source.Edit, text string) (*cst.Tree, Result) {
	l := rootList(old)
	children, checkpoints, reused := spliced(l, r, e)

	end := old.End
	if r.tail == len(l.kids) {
		end = r.stream.End
	}

	root := old.Root
	root.Children = children
	root.Span = source.Span{File: old.File, Start: 0, End: source.ToU32(len(text))}

	tree := &cst.Tree{
		File:        old.File,
		Text:        text,
		Root:        root,
		Checkpoints: checkpoints,
		End:         end,
		NextID:      max(r.reg.NextID, root.ID+1),
	}
	return tree, Result{Reused: reused, Reparsed: r.reparsed(old.File)}
}

// spliceBlock puts the run into the block at the end of path, then shifts
// what follows the block and grows its ancestors.
func spliceBlock(old *cst.Tree, path []*cst.Node, l stmtList, r run, e source.Edit, text string) (*cst.Tree, Result) {
	block := l.block
	children, checkpoints, reused := spliced(l, r, e)
	block.Children = children
	block.Checkpoints = checkpoints
	delta := e.Delta()
	block.Span.End = source.ToU32(int(block.Span.End) + delta)
	shiftAfter(path, delta)

	tree := &cst.Tree{
		File:        old.File,
		Text:        text,
		Root:        old.Root,
		Checkpoints: old.Checkpoints,
		End:         old.End,
		NextID:      max(r.reg.NextID, old.NextID),
	}
	return tree, Result{
		Reused:   reused + len(old.Root.Children) - 1,
		Reparsed: r.reparsed(old.File),
	}
}

// sameByteBefore reports whether the bytes before two offsets agree. The
// lexer looks one byte back for line starts and sigil spacing.
func sameByteBefore(a string, offA uint32, b string, offB uint32) bool {
	if offA == 0 || offB == 0 {
		return offA == offB
	}
	return a[offA-1] == b[offB-1]
}
