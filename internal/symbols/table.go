package symbols

import (
	"slices"

	"perlsense/internal/source"
)

// Table is the symbol table of one file generation. It is built once by
// Extract and never mutated afterwards.
type Table struct {
	File         source.FileID
	Scopes       *Scopes
	Symbols      *Symbols
	References   []Reference
	Dependencies []string
	root         ScopeID
}

// NewTable builds an empty table whose file scope covers span.
func NewTable(file source.FileID, span source.Span) *Table {
	t := &Table{
		File:    file,
		Scopes:  NewScopes(0),
		Symbols: NewSymbols(0),
	}
	t.root = t.Scopes.New(ScopeFile, NoScopeID, span, DefaultPackage)
	return t
}

// Restore rebuilds a table from its parts, as stored by a cache. Every span
// is moved to file and scope name indexes are recomputed.
func Restore(file source.FileID, scopes []Scope, syms []Symbol, refs []Reference, deps []string) *Table {
	t := &Table{
		File:         file,
		Scopes:       NewScopes(len(scopes)),
		Symbols:      NewSymbols(len(syms)),
		References:   make([]Reference, len(refs)),
		Dependencies: deps,
	}
	for _, sc := range scopes {
		sc.Span.File = file
		sc.NameIndex = make(map[string][]SymbolID, len(sc.Symbols))
		t.Scopes.add(sc)
	}
	for i := range syms {
		sym := syms[i]
		sym.File = file
		sym.Span.File = file
		sym.NameSpan.File = file
		id := t.Symbols.New(&sym)
		if sc := t.Scopes.Get(sym.Scope); sc != nil {
			sc.NameIndex[sym.BareName] = append(sc.NameIndex[sym.BareName], id)
		}
	}
	for i, r := range refs {
		r.Span.File = file
		t.References[i] = r
	}
	if len(scopes) > 0 {
		t.root = 1
	}
	return t
}

// Root returns the file scope.
func (t *Table) Root() ScopeID { return t.root }

// All returns every symbol in declaration order.
func (t *Table) All() []Symbol { return t.Symbols.Data() }

// Len reports the number of symbols.
func (t *Table) Len() int { return t.Symbols.Len() }

// ByKind returns the symbols of one kind in declaration order.
func (t *Table) ByKind(kind SymbolKind) []Symbol {
	var out []Symbol
	for _, sym := range t.All() {
		if sym.Kind == kind {
			out = append(out, sym)
		}
	}
	return out
}

// Lookup returns the symbols whose bare or qualified name is name.
func (t *Table) Lookup(name string) []SymbolID {
	var out []SymbolID
	for i, sym := range t.All() {
		if sym.BareName == name || sym.QualifiedName == name {
			out = append(out, idAt[SymbolID](i+1))
		}
	}
	return out
}

// Packages returns the packages declared in the file, without repeats.
func (t *Table) Packages() []string {
	var out []string
	for _, sym := range t.All() {
		if sym.Kind == SymbolPackage && !slices.Contains(out, sym.QualifiedName) {
			out = append(out, sym.QualifiedName)
		}
	}
	return out
}

// ScopeAt returns the innermost scope containing off.
func (t *Table) ScopeAt(off uint32) ScopeID {
	id := t.root
	for {
		sc := t.Scopes.Get(id)
		if sc == nil {
			return id
		}
		next := NoScopeID
		for _, child := range sc.Children {
			if cs := t.Scopes.Get(child); cs != nil && cs.Span.Start <= off && off < cs.Span.End {
				next = child
				break
			}
		}
		if !next.IsValid() {
			return id
		}
		id = next
	}
}

// VisibleAt resolves name as seen from off: the innermost declaration
// before off in the enclosing scopes. Lexicals shadow globals the way Perl
// does, by nesting.
func (t *Table) VisibleAt(off uint32, name string) (SymbolID, bool) {
	for id := t.ScopeAt(off); id.IsValid(); {
		sc := t.Scopes.Get(id)
		if sc == nil {
			break
		}
		best := NoSymbolID
		for _, symID := range sc.NameIndex[name] {
			if sym := t.Symbols.Get(symID); sym != nil && sym.NameSpan.Start <= off {
				best = symID
			}
		}
		if best.IsValid() {
			return best, true
		}
		id = sc.Parent
	}
	return NoSymbolID, false
}

func (t *Table) declare(scope ScopeID, sym *Symbol) SymbolID {
	sym.Scope = scope
	sym.File = t.File
	id := t.Symbols.New(sym)
	if sc := t.Scopes.Get(scope); sc != nil {
		sc.Symbols = append(sc.Symbols, id)
		sc.NameIndex[sym.BareName] = append(sc.NameIndex[sym.BareName], id)
	}
	return id
}
