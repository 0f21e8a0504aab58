package testkit

import (
	"errors"
	"fmt"
	"strings"

	"perlsense/internal/cst"
	"perlsense/internal/source"
	"perlsense/internal/symbols"
)

// CheckTree runs cst.Validate and the checks that tie a tree to its text:
// 1) the leaves spell the text exactly
// 2) node IDs are unique and below NextID
func CheckTree(tree *cst.Tree) error {
	if tree == nil {
		return errors.New("nil tree")
	}
	if err := cst.Validate(tree); err != nil {
		return err
	}

	var b strings.Builder
	for _, tok := range tree.Leaves() {
		b.WriteString(tok.Text)
	}
	if got := b.String(); got != tree.Text {
		return fmt.Errorf("leaves do not spell the text: %d bytes vs %d", len(got), len(tree.Text))
	}

	seen := make(map[cst.NodeID]struct{})
	var errs []error
	cst.Walk(tree.Root, func(n *cst.Node) bool {
		if _, dup := seen[n.ID]; dup {
			errs = append(errs, fmt.Errorf("node id %d used twice", n.ID))
		}
		seen[n.ID] = struct{}{}
		if n.ID >= tree.NextID {
			errs = append(errs, fmt.Errorf("node id %d not below NextID %d", n.ID, tree.NextID))
		}
		return true
	})
	return errors.Join(errs...)
}

// CheckSymbols runs Table.Validate and checks that every symbol and
// reference points into text and belongs to the table's file.
func CheckSymbols(table *symbols.Table, text string) error {
	if table == nil {
		return errors.New("nil table")
	}
	if err := table.Validate(); err != nil {
		return err
	}
	n := source.ToU32(len(text))
	inside := func(sp source.Span) bool {
		return sp.File == table.File && sp.Start <= sp.End && sp.End <= n
	}

	var errs []error
	for _, sym := range table.All() {
		if sym.File != table.File {
			errs = append(errs, fmt.Errorf("%s: file %d, table file %d", sym.QualifiedName, sym.File, table.File))
		}
		if !inside(sym.Span) || !inside(sym.NameSpan) {
			errs = append(errs, fmt.Errorf("%s: span %s / %s outside text", sym.QualifiedName, sym.Span, sym.NameSpan))
		}
	}
	for _, ref := range table.References {
		if !inside(ref.Span) || ref.Span.Empty() {
			errs = append(errs, fmt.Errorf("reference %s: bad span %s", ref.Name, ref.Span))
		}
	}
	return errors.Join(errs...)
}
