package incremental

import (
	"errors"
	"fmt"

	"perlsense/internal/cst"
	"perlsense/internal/lexer"
	"perlsense/internal/parser"
	"perlsense/internal/source"
	"perlsense/internal/token"
)

var ErrNilTree = errors.New("incremental: nil tree")

// Options configures Reparse.
type Options struct {
	Parser parser.Options
	// Check validates the new tree before it is returned.
	Check bool
}

// Result describes how an edit was applied.
type Result struct {
	// Reused counts subtrees moved from the old tree, each by its root.
	Reused int
	// Reparsed is the span of the new text that was re-lexed.
	Reparsed    source.Span
	FullReparse bool
	FastPath    bool
	// Passes counts parser runs over the new text, including a failed
	// region attempt before a full reparse.
	Passes int
}

// Reparse applies e to old and returns the tree of the edited text. The
// result is structurally equal to a fresh parse of the edited text. old
// must not be used afterwards.
func Reparse(old *cst.Tree, e source.Edit, opts Options) (*cst.Tree, Result, error) {
	if old == nil || old.Root == nil {
		return nil, Result{}, ErrNilTree
	}
	text, err := e.Apply(old.Text)
	if err != nil {
		return nil, Result{}, fmt.Errorf("reparse: %w", err)
	}
	if e.Start == e.End && e.NewText == "" {
		return old, Result{Reused: len(old.Root.Children)}, nil
	}
	popts := opts.Parser
	popts.FirstID = old.NextID

	tree, res := reparse(old, e, text, popts)
	if opts.Check {
		if err := cst.Validate(tree); err != nil {
			return nil, res, err
		}
	}
	return tree, res, nil
}

func reparse(old *cst.Tree, e source.Edit, text string, popts parser.Options) (*cst.Tree, Result) {
	if tree, res, ok := fastPath(old, e, text); ok {
		parser.Report(tree, popts)
		return tree, res
	}
	passes := 0
	if len(old.Root.Children) > 0 && !unbounded(old, e) {
		tree, res, ok := reparseRegion(old, e, text, popts)
		if ok {
			parser.Report(tree, popts)
			return tree, res
		}
		passes = res.Passes
	}
	tree, res := fullReparse(old.File, text, popts)
	res.Passes += passes
	return tree, res
}

func fullReparse(file source.FileID, text string, popts parser.Options) (*cst.Tree, Result) {
	s := lexer.Lex(file, text, 0, lexer.Initial(), lexer.Options{})
	tree := parser.Parse(file, text, s, popts)
	return tree, Result{
		Reparsed:    source.Span{File: file, Start: 0, End: source.ToU32(len(text))},
		FullReparse: true,
		Passes:      1,
	}
}

// unbounded reports whether the edit touches an unterminated token. Such a
// token runs to the end of input, so its extent depends on everything after
// it.
func unbounded(old *cst.Tree, e source.Edit) bool {
	last := lastLeaf(old.Root)
	return last != nil && last.Tok.Kind == token.Unterminated && last.Span.Start <= e.End
}

func lastLeaf(n *cst.Node) *cst.Node {
	for n != nil && n.Tok == nil {
		if len(n.Children) == 0 {
			return nil
		}
		n = n.Children[len(n.Children)-1]
	}
	return n
}

func isTriviaLeaf(n *cst.Node) bool {
	return n.Tok != nil && n.Tok.IsTrivia()
}
