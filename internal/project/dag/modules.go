package dag

import (
	"perlsense/internal/index"
	"perlsense/internal/symbols"
)

// Modules collects the packages declared in the index together with the
// modules loaded by their files. The implicit main package is not a
// module.
func Modules(idx *index.Index) []ModuleMeta {
	var out []ModuleMeta
	for _, path := range idx.Files() {
		deps := idx.FileDependencies(path)
		seen := make(map[string]bool)
		for _, e := range idx.FileSymbols(path) {
			if e.Kind != symbols.SymbolPackage || e.QualifiedName == symbols.DefaultPackage || seen[e.QualifiedName] {
				continue
			}
			seen[e.QualifiedName] = true
			out = append(out, ModuleMeta{
				Name:    e.QualifiedName,
				Files:   []string{path},
				Span:    e.NameSpan,
				Imports: deps,
			})
		}
	}
	return out
}
