package parser

import (
	"slices"

	"perlsense/internal/cst"
	"perlsense/internal/diag"
	"perlsense/internal/token"
)

// frame is a node under construction.
type frame struct {
	kind     cst.Kind
	children []*cst.Node
	problems []cst.Problem
}

func (p *Parser) top() *frame { return &p.frames[len(p.frames)-1] }

func (p *Parser) allocID() cst.NodeID {
	id := p.nextID
	p.nextID++
	return id
}

// flushTrivia attaches pending trivia to the innermost open node. Trivia
// before a node therefore belongs to its parent, and no node starts or ends
// with trivia.
func (p *Parser) flushTrivia() {
	for p.pos < len(p.toks) && p.toks[p.pos].IsTrivia() {
		p.pushLeaf(p.pos)
		p.pos++
	}
}

func (p *Parser) pushLeaf(i int) {
	tok := p.toks[i]
	leaf := &cst.Node{ID: p.allocID(), Kind: cst.Token, Span: tok.Span, Tok: &tok}
	if tok.Kind.Category() == token.CatError {
		code, msg := p.lexerProblem(i)
		leaf.Problems = []cst.Problem{{Code: code, Msg: msg}}
	}
	f := p.top()
	f.children = append(f.children, leaf)
}

// open starts a node at the next significant token.
func (p *Parser) open(kind cst.Kind) {
	p.flushTrivia()
	p.frames = append(p.frames, frame{kind: kind})
}

// mark returns a position that precede can later wrap from.
func (p *Parser) mark() int {
	p.flushTrivia()
	return len(p.top().children)
}

// precede opens a node of kind that adopts every child added since m.
func (p *Parser) precede(m int, kind cst.Kind) {
	f := p.top()
	moved := slices.Clone(f.children[m:])
	f.children = f.children[:m]
	p.frames = append(p.frames, frame{kind: kind, children: moved})
}

// close finishes the innermost node and adds it to its parent. A node
// with no children is dropped and its problems move to the parent.
func (p *Parser) close() *cst.Node {
	f := p.frames[len(p.frames)-1]
	p.frames = p.frames[:len(p.frames)-1]
	parent := p.top()
	if len(f.children) == 0 {
		parent.problems = append(parent.problems, f.problems...)
		return nil
	}
	n := &cst.Node{
		ID:       p.allocID(),
		Kind:     f.kind,
		Span:     f.children[0].Span.Cover(f.children[len(f.children)-1].Span),
		Children: f.children,
		Problems: f.problems,
	}
	parent.children = append(parent.children, n)
	return n
}

// lastChild returns the most recently completed child of the open node.
func (p *Parser) lastChild() *cst.Node {
	kids := p.top().children
	for i := len(kids) - 1; i >= 0; i-- {
		if kids[i].Tok == nil || !kids[i].Tok.IsTrivia() {
			return kids[i]
		}
	}
	return nil
}

// problem attaches a syntax problem to the innermost open node.
func (p *Parser) problem(code diag.Code, msg string, atEnd bool) {
	f := p.top()
	f.problems = append(f.problems, cst.Problem{Code: code, Msg: msg, AtEnd: atEnd})
}
