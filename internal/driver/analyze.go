package driver

import (
	"context"
	"fmt"

	"fortio.org/safecast"

	"perlsense/internal/cst"
	"perlsense/internal/diag"
	"perlsense/internal/observ"
	"perlsense/internal/parser"
	"perlsense/internal/source"
	"perlsense/internal/symbols"
)

// AnalyzeResult is one file taken through parsing and symbol extraction.
type AnalyzeResult struct {
	FileSet *source.FileSet
	File    source.FileID
	Path    string
	Text    string
	Tree    *cst.Tree
	Symbols *symbols.Table
	Bag     *diag.Bag
	Timings observ.Report

	parents *cst.ParentIndex
}

// Enclosing returns the leaf at byte offset off followed by its ancestors,
// innermost first.
func (r *AnalyzeResult) Enclosing(off uint32) []*cst.Node {
	leaf := r.Tree.NodeAt(off)
	if leaf == nil {
		return nil
	}
	if r.parents == nil {
		r.parents = cst.BuildParentIndex(r.Tree.Root)
	}
	return append([]*cst.Node{leaf}, r.parents.Ancestors(leaf.ID)...)
}

// Analyze parses the file at path and extracts its symbols. Syntax errors
// and lint warnings go to the bag, sorted; they never fail the call.
func Analyze(ctx context.Context, path string, maxDiagnostics int) (*AnalyzeResult, error) {
	timer := observ.NewTimer()
	stop := timer.Phase("load")
	text, err := LoadFile(ctx, path)
	stop("")
	if err != nil {
		return nil, err
	}
	return analyzeText(path, text, maxDiagnostics, timer)
}

// AnalyzeText is Analyze over an in-memory buffer.
func AnalyzeText(path, text string, maxDiagnostics int) (*AnalyzeResult, error) {
	return analyzeText(path, text, maxDiagnostics, observ.NewTimer())
}

func analyzeText(path, text string, maxDiagnostics int, timer *observ.Timer) (*AnalyzeResult, error) {
	maxErrors, err := safecast.Conv[uint](maxDiagnostics)
	if err != nil {
		return nil, err
	}
	fs := source.NewFileSet()
	fileID := fs.Intern(path)
	bag := diag.NewBag(maxDiagnostics)
	reporter := &diag.BagReporter{Bag: bag}

	stop := timer.Phase("parse")
	tree := parser.ParseText(fileID, text, parser.Options{
		Reporter:  reporter,
		MaxErrors: maxErrors,
	})
	stop("")

	stop = timer.Phase("symbols")
	table := symbols.Extract(tree, fileID)
	symbols.Lint(table, reporter)
	stop(fmt.Sprintf("%d symbols", table.Len()))

	bag.Sort()
	return &AnalyzeResult{
		FileSet: fs,
		File:    fileID,
		Path:    fs.Path(fileID),
		Text:    text,
		Tree:    tree,
		Symbols: table,
		Bag:     bag,
		Timings: timer.Report(),
	}, nil
}
