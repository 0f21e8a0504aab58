package index

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"perlsense/internal/symbols"
)

func compareEntries(a, b Entry) int {
	return cmp.Or(
		cmp.Compare(a.Package, b.Package),
		cmp.Compare(a.Path, b.Path),
		cmp.Compare(a.NameSpan.Start, b.NameSpan.Start),
	)
}

func copyEntries(list []*Entry) []Entry {
	out := make([]Entry, len(list))
	for i, e := range list {
		out[i] = *e
	}
	return out
}

// LookupQualified returns the symbols declared under a fully qualified
// name, ordered by path and offset. More than one file may declare it.
func (idx *Index) LookupQualified(name string) []Entry {
	idx.mu.RLock()
	out := copyEntries(idx.byQualified[name])
	idx.mu.RUnlock()
	slices.SortFunc(out, compareEntries)
	return out
}

// LookupBare returns every symbol whose bare name is name. Candidates in
// the file from come first; the rest are ordered by package, then path,
// then offset.
func (idx *Index) LookupBare(name, from string) []Entry {
	idx.mu.RLock()
	out := copyEntries(idx.byBare[name])
	idx.mu.RUnlock()
	slices.SortFunc(out, func(a, b Entry) int {
		if (a.Path == from) != (b.Path == from) {
			if a.Path == from {
				return -1
			}
			return 1
		}
		return compareEntries(a, b)
	})
	return out
}

// SearchPrefix returns the symbols whose bare or qualified name starts with
// query, compared under Unicode case folding. A limit of zero or less
// returns everything.
func (idx *Index) SearchPrefix(query string, limit int) []Entry {
	fold := cases.Fold()
	q := fold.String(query)

	idx.mu.RLock()
	var out []Entry
	for _, f := range idx.files {
		for _, e := range f.entries {
			if strings.HasPrefix(fold.String(e.BareName), q) || strings.HasPrefix(fold.String(e.QualifiedName), q) {
				out = append(out, *e)
			}
		}
	}
	idx.mu.RUnlock()

	slices.SortFunc(out, func(a, b Entry) int {
		return cmp.Or(
			cmp.Compare(a.BareName, b.BareName),
			cmp.Compare(a.QualifiedName, b.QualifiedName),
			cmp.Compare(a.Path, b.Path),
			cmp.Compare(a.NameSpan.Start, b.NameSpan.Start),
		)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// FileSymbols returns the symbols of path in declaration order.
func (idx *Index) FileSymbols(path string) []Entry {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	f := idx.files[path]
	if f == nil {
		return nil
	}
	return copyEntries(f.entries)
}

// FileDependencies returns the modules path loads, in source order.
func (idx *Index) FileDependencies(path string) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	f := idx.files[path]
	if f == nil {
		return nil
	}
	return slices.Clone(f.table.Dependencies)
}

// Dependents returns the files that use or require module.
func (idx *Index) Dependents(module string) []string {
	idx.mu.RLock()
	set := idx.dependents[module]
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	idx.mu.RUnlock()
	slices.Sort(out)
	return out
}

// PackageMembers returns the subs and package variables declared in pkg,
// across all files. Lexicals are not members.
func (idx *Index) PackageMembers(pkg string) []Entry {
	idx.mu.RLock()
	var out []Entry
	for _, f := range idx.files {
		for _, e := range f.entries {
			if e.Package != pkg || e.Lexical() {
				continue
			}
			if e.Kind == symbols.SymbolSub || e.Kind == symbols.SymbolVariable {
				out = append(out, *e)
			}
		}
	}
	idx.mu.RUnlock()
	slices.SortFunc(out, func(a, b Entry) int {
		return cmp.Or(cmp.Compare(a.BareName, b.BareName), compareEntries(a, b))
	})
	return out
}
