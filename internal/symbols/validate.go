package symbols

import (
	"errors"
	"fmt"
	"slices"
)

// Validate checks the links between scopes and symbols and joins every
// problem found.
func (t *Table) Validate() error {
	var errs []error

	t.Scopes.each(func(scopeID ScopeID, scope *Scope) {
		errs = append(errs, t.validateScope(scopeID, scope)...)
	})
	t.Symbols.each(func(id SymbolID, sym *Symbol) {
		if sym.Kind == SymbolInvalid {
			errs = append(errs, fmt.Errorf("symbol %d has invalid kind", id))
		}
		if sym.BareName == "" || sym.QualifiedName == "" {
			errs = append(errs, fmt.Errorf("symbol %d has an empty name", id))
		}
		if t.Scopes.Get(sym.Scope) == nil {
			errs = append(errs, fmt.Errorf("symbol %d has invalid scope %d", id, sym.Scope))
		}
	})

	return errors.Join(errs...)
}

func (t *Table) validateScope(id ScopeID, scope *Scope) []error {
	var errs []error
	if scope.Kind == ScopeInvalid {
		errs = append(errs, fmt.Errorf("scope %d has invalid kind", id))
	}
	if scope.Parent.IsValid() {
		parent := t.Scopes.Get(scope.Parent)
		switch {
		case parent == nil || scope.Parent == id:
			errs = append(errs, fmt.Errorf("scope %d has invalid parent %d", id, scope.Parent))
		case !slices.Contains(parent.Children, id):
			errs = append(errs, fmt.Errorf("scope %d is not a child of its parent %d", id, scope.Parent))
		case !parent.Span.ContainsSpan(scope.Span):
			errs = append(errs, fmt.Errorf("scope %d %s escapes parent %s", id, scope.Span, parent.Span))
		}
	}
	for _, child := range scope.Children {
		if cs := t.Scopes.Get(child); cs == nil || cs.Parent != id {
			errs = append(errs, fmt.Errorf("scope %d lists child %d with another parent", id, child))
		}
	}
	for _, symID := range scope.Symbols {
		sym := t.Symbols.Get(symID)
		switch {
		case sym == nil:
			errs = append(errs, fmt.Errorf("scope %d lists unknown symbol %d", id, symID))
		case sym.Scope != id:
			errs = append(errs, fmt.Errorf("symbol %d listed in scope %d but owned by %d", symID, id, sym.Scope))
		case !slices.Contains(scope.NameIndex[sym.BareName], symID):
			errs = append(errs, fmt.Errorf("symbol %d missing from name index of scope %d", symID, id))
		}
	}
	return errs
}
