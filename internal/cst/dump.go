package cst

import (
	"fmt"
	"io"
	"strings"
)

// DumpOptions configures tree dumping.
type DumpOptions struct {
	Trivia bool // include whitespace, comment and POD leaves
	IDs    bool
}

// Dump writes an indented outline of the subtree to w.
func Dump(w io.Writer, n *Node, opts DumpOptions) error {
	p := printer{w: w, opts: opts}
	p.node(n, 0)
	return p.err
}

type printer struct {
	w    io.Writer
	opts DumpOptions
	err  error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) node(n *Node, depth int) {
	if n == nil {
		return
	}
	if n.Tok != nil && n.Tok.IsTrivia() && !p.opts.Trivia {
		return
	}
	p.printf("%s", strings.Repeat("  ", depth))
	if n.Tok != nil {
		p.printf("%s %q", n.Tok.Kind, n.Tok.Text)
	} else {
		p.printf("%s", n.Kind)
	}
	p.printf(" %d..%d", n.Span.Start, n.Span.End)
	if p.opts.IDs {
		p.printf(" #%d", n.ID)
	}
	for _, pr := range n.Problems {
		p.printf(" !%s", pr.Code.ID())
	}
	p.printf("\n")
	for _, c := range n.Children {
		p.node(c, depth+1)
	}
}
