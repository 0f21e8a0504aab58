package parser

import (
	"sort"

	"perlsense/internal/cst"
	"perlsense/internal/diag"
	"perlsense/internal/lexer"
	"perlsense/internal/source"
	"perlsense/internal/token"
)

type Options struct {
	MaxErrors uint
	Reporter  diag.Reporter
	// FirstID is the first node ID to hand out; zero means 1.
	FirstID cst.NodeID
}

// Enough reports whether n errors reach the configured limit.
func (o *Options) Enough(n uint) bool {
	if o.MaxErrors == 0 {
		return false
	}
	return n >= o.MaxErrors
}

// Parser holds the state for one parse of a token stream.
type Parser struct {
	file   source.FileID
	text   string
	toks   []token.Token
	states []lexer.State
	pos    int // next unconsumed token, trivia included
	end    uint32

	frames []frame
	nextID cst.NodeID
	opts   Options

	blockDepth int
	// eofInside is set when the stream ran out while a statement was
	// still open: more text could have changed how it parses.
	eofInside bool
}

// Region is the result of parsing a run of statements.
type Region struct {
	Nodes       []*cst.Node
	Checkpoints []lexer.State
	Problems    []cst.Problem
	EOFInside   bool
	// Closed is set when a '}' ended a block's statement list before the
	// stream ran out.
	Closed bool
	NextID cst.NodeID
}

func newParser(file source.FileID, text string, s lexer.Stream, opts Options) *Parser {
	p := &Parser{
		file:   file,
		text:   text,
		toks:   s.Tokens,
		states: s.States,
		opts:   opts,
		nextID: opts.FirstID,
	}
	if !p.nextID.IsValid() {
		p.nextID = 1
	}
	if n := len(s.Tokens); n > 0 {
		p.end = s.Tokens[n-1].Span.End
	}
	return p
}

// ParseRegion parses a stream as a sequence of top-level statements. text is
// the whole buffer the stream was lexed from.
func ParseRegion(file source.FileID, text string, s lexer.Stream, opts Options) Region {
	p := newParser(file, text, s, opts)
	p.frames = append(p.frames, frame{kind: cst.File})
	p.parseStatements()
	return p.region()
}

// ParseBlockRegion parses a stream as statements between the braces of a
// block. It stops early, setting Closed, at a '}' that would close the
// block.
func ParseBlockRegion(file source.FileID, text string, s lexer.Stream, opts Options) Region {
	p := newParser(file, text, s, opts)
	p.frames = append(p.frames, frame{kind: cst.File})
	p.blockDepth = 1
	closed := false
	for {
		k := p.peek().Kind
		if k == token.EOF {
			break
		}
		if k == token.RBrace {
			closed = true
			break
		}
		p.parseStmt()
	}
	reg := p.region()
	reg.Closed = closed
	return reg
}

func (p *Parser) region() Region {
	p.flushTrivia()
	root := p.frames[0]
	return Region{
		Nodes:       root.children,
		Checkpoints: p.checkpoints(root.children),
		Problems:    root.problems,
		EOFInside:   p.eofInside,
		NextID:      p.nextID,
	}
}

// Parse builds the tree of a whole buffer from its token stream and reports
// the tree's diagnostics through opts.Reporter.
func Parse(file source.FileID, text string, s lexer.Stream, opts Options) *cst.Tree {
	reg := ParseRegion(file, text, s, opts)
	root := &cst.Node{
		ID:       reg.NextID,
		Kind:     cst.File,
		Span:     source.Span{File: file, Start: 0, End: source.ToU32(len(text))},
		Children: reg.Nodes,
		Problems: reg.Problems,
	}
	tree := &cst.Tree{
		File:        file,
		Text:        text,
		Root:        root,
		Checkpoints: reg.Checkpoints,
		End:         s.End,
		NextID:      reg.NextID + 1,
	}
	Report(tree, opts)
	return tree
}

// ParseText lexes and parses text from the start.
func ParseText(file source.FileID, text string, opts Options) *cst.Tree {
	s := lexer.Lex(file, text, 0, lexer.Initial(), lexer.Options{})
	return Parse(file, text, s, opts)
}

// Report sends the tree's diagnostics to opts.Reporter, stopping at
// opts.MaxErrors.
func Report(tree *cst.Tree, opts Options) {
	if opts.Reporter == nil {
		return
	}
	var n uint
	for _, d := range tree.Diagnostics() {
		if opts.Enough(n) {
			sp := source.Span{File: tree.File, Start: d.Primary.Start, End: d.Primary.Start}
			diag.ReportWarning(opts.Reporter, diag.SynTooManyErrors, sp, "too many errors, stopping").Emit()
			return
		}
		opts.Reporter.Report(d.Code, d.Severity, d.Primary, d.Message, d.Notes)
		n++
	}
}

// checkpoints returns the lexer state before each of nodes.
func (p *Parser) checkpoints(nodes []*cst.Node) []lexer.State {
	out := make([]lexer.State, len(nodes))
	for i, n := range nodes {
		j := sort.Search(len(p.toks), func(j int) bool { return p.toks[j].Span.Start >= n.Span.Start })
		if j < len(p.states) {
			out[i] = p.states[j]
		}
	}
	return out
}

// parseStatements is the top-level loop. Every iteration consumes at least
// one token.
func (p *Parser) parseStatements() {
	for {
		tok := p.peek()
		if tok.Kind == token.EOF {
			return
		}
		switch tok.Kind {
		case token.RParen, token.RBracket, token.RBrace:
			p.strayCloser()
			continue
		}
		p.parseStmt()
	}
}
