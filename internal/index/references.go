package index

import (
	"cmp"
	"slices"

	"perlsense/internal/symbols"
)

// implicitSubs are called by perl itself and never need a reference.
var implicitSubs = map[string]bool{
	"BEGIN": true, "END": true, "INIT": true, "CHECK": true, "UNITCHECK": true,
	"DESTROY": true, "AUTOLOAD": true, "import": true, "unimport": true,
}

type refSite struct {
	path  string
	table *symbols.Table
	ref   symbols.Reference
}

// ReferencesTo returns the use sites that name e, ordered by path and
// offset. Lexicals are resolved through the scopes of their own file;
// everything else matches by name.
func (idx *Index) ReferencesTo(e Entry) []Location {
	idx.mu.RLock()
	var out []Location
	for path, f := range idx.files {
		if e.Lexical() && path != e.Path {
			continue
		}
		for _, r := range f.table.References {
			if refersTo(&e, path, f.table, r) {
				out = append(out, Location{Path: path, Span: r.Span, Kind: r.Kind, Write: r.Write})
			}
		}
	}
	idx.mu.RUnlock()
	slices.SortFunc(out, func(a, b Location) int {
		return cmp.Or(cmp.Compare(a.Path, b.Path), cmp.Compare(a.Span.Start, b.Span.Start))
	})
	return out
}

// FindUnused returns the subs and variables nothing refers to. Imports,
// packages and subs perl calls implicitly are never reported.
func (idx *Index) FindUnused() []Entry {
	idx.mu.RLock()
	byName := make(map[string][]refSite)
	for path, f := range idx.files {
		for _, r := range f.table.References {
			site := refSite{path: path, table: f.table, ref: r}
			byName[r.Name] = append(byName[r.Name], site)
			if r.Qualified != "" && r.Qualified != r.Name {
				byName[r.Qualified] = append(byName[r.Qualified], site)
			}
		}
	}
	var out []Entry
	for _, f := range idx.files {
		for _, e := range f.entries {
			if !unusedCandidate(e) || used(e, byName) {
				continue
			}
			out = append(out, *e)
		}
	}
	idx.mu.RUnlock()
	slices.SortFunc(out, func(a, b Entry) int {
		return cmp.Or(cmp.Compare(a.Path, b.Path), cmp.Compare(a.NameSpan.Start, b.NameSpan.Start))
	})
	return out
}

func unusedCandidate(e *Entry) bool {
	switch e.Kind {
	case symbols.SymbolSub:
		return !implicitSubs[e.BareName]
	case symbols.SymbolVariable:
		return true
	default:
		return false
	}
}

func used(e *Entry, byName map[string][]refSite) bool {
	for _, key := range []string{e.BareName, e.QualifiedName} {
		for _, site := range byName[key] {
			if e.Lexical() && site.path != e.Path {
				continue
			}
			if refersTo(e, site.path, site.table, site.ref) {
				return true
			}
		}
	}
	return false
}

// refersTo reports whether r, found in path, names e.
func refersTo(e *Entry, path string, t *symbols.Table, r symbols.Reference) bool {
	switch e.Kind {
	case symbols.SymbolVariable:
		if r.Kind != symbols.RefVariable {
			return false
		}
		if e.Lexical() {
			id, ok := t.VisibleAt(r.Span.Start, r.Name)
			if !ok {
				return false
			}
			sym := t.Symbols.Get(id)
			return sym != nil && sym.NameSpan == e.NameSpan
		}
		return r.Qualified == e.QualifiedName
	case symbols.SymbolSub:
		switch r.Kind {
		case symbols.RefCall:
			return r.Qualified == e.QualifiedName || (r.Name == e.BareName && imports(t, e.Package, e.BareName))
		case symbols.RefMethod:
			return r.Qualified == e.QualifiedName || (r.Qualified == "" && r.Name == e.BareName)
		}
		return false
	case symbols.SymbolPackage:
		return r.Kind == symbols.RefClass && r.Qualified == e.QualifiedName
	case symbols.SymbolImport:
		return path == e.Path && r.Kind == symbols.RefClass && r.Name == e.QualifiedName
	default:
		return false
	}
}

// imports reports whether t imports name from module.
func imports(t *symbols.Table, module, name string) bool {
	for _, sym := range t.ByKind(symbols.SymbolImport) {
		if sym.QualifiedName == module && slices.Contains(sym.Imports, name) {
			return true
		}
	}
	return false
}

// Stats summarises the index contents.
type Stats struct {
	Files         int
	Symbols       int
	ByKind        map[symbols.SymbolKind]int
	QualifiedKeys int
	BareKeys      int
	References    int
	Modules       int
	MaxSymbols    int
}

func (idx *Index) Stats() Stats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	st := Stats{
		Files:         len(idx.files),
		Symbols:       idx.total,
		ByKind:        make(map[symbols.SymbolKind]int),
		QualifiedKeys: len(idx.byQualified),
		BareKeys:      len(idx.byBare),
		Modules:       len(idx.dependents),
		MaxSymbols:    idx.opts.maxSymbols,
	}
	for _, f := range idx.files {
		st.References += len(f.table.References)
		for _, e := range f.entries {
			st.ByKind[e.Kind]++
		}
	}
	return st
}
