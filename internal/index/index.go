package index

import (
	"fmt"
	"slices"
	"sync"

	"perlsense/internal/source"
	"perlsense/internal/symbols"
)

// Digest is the sha256 of a file's content.
type Digest [32]byte

// Hash returns the digest UpdateFile compares against.
func Hash(text string) Digest {
	return Digest(source.Hash(text))
}

// Entry is an indexed symbol together with the file that declares it.
type Entry struct {
	Path string
	symbols.Symbol
}

// Location is a use site found by ReferencesTo.
type Location struct {
	Path  string
	Span  source.Span
	Kind  symbols.RefKind
	Write bool
}

type fileEntry struct {
	sum     Digest
	table   *symbols.Table
	entries []*Entry
}

// Index is safe for concurrent use.
type Index struct {
	mu sync.RWMutex

	files       map[string]*fileEntry
	byQualified map[string][]*Entry
	byBare      map[string][]*Entry
	// dependents maps a module name to the files that use or require it.
	dependents map[string]map[string]struct{}
	total      int

	opts options
}

// New creates an empty index.
func New(opts ...Option) *Index {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	idx := &Index{opts: o}
	idx.reset()
	return idx
}

func (idx *Index) reset() {
	idx.files = make(map[string]*fileEntry)
	idx.byQualified = make(map[string][]*Entry)
	idx.byBare = make(map[string][]*Entry)
	idx.dependents = make(map[string]map[string]struct{})
	idx.total = 0
}

// UpdateFile replaces everything path contributed with table. It reports
// false without touching the index when sum matches the digest of the
// generation already indexed.
func (idx *Index) UpdateFile(path string, sum Digest, table *symbols.Table) (bool, error) {
	if path == "" {
		return false, ErrEmptyPath
	}
	if table == nil {
		return false, fmt.Errorf("update %s: %w", path, ErrNilTable)
	}

	// Build the new generation before taking the lock.
	syms := table.All()
	entries := make([]*Entry, len(syms))
	for i := range syms {
		entries[i] = &Entry{Path: path, Symbol: syms[i]}
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	old := idx.files[path]
	if old != nil && old.sum == sum {
		return false, nil
	}
	total := idx.total + len(entries)
	if old != nil {
		total -= len(old.entries)
	}
	if total > idx.opts.maxSymbols {
		return false, fmt.Errorf("update %s: %w (%d > %d)", path, ErrMaxSymbols, total, idx.opts.maxSymbols)
	}

	idx.removeLocked(path)
	for _, e := range entries {
		idx.byQualified[e.QualifiedName] = append(idx.byQualified[e.QualifiedName], e)
		idx.byBare[e.BareName] = append(idx.byBare[e.BareName], e)
	}
	idx.files[path] = &fileEntry{sum: sum, table: table, entries: entries}
	idx.total += len(entries)
	for _, dep := range table.Dependencies {
		set := idx.dependents[dep]
		if set == nil {
			set = make(map[string]struct{})
			idx.dependents[dep] = set
		}
		set[path] = struct{}{}
	}

	idx.opts.logger.Debug("indexed file", "path", path, "symbols", len(entries), "deps", len(table.Dependencies))
	if m := idx.opts.metrics; m != nil {
		m.FileIndexed(len(entries))
		m.IndexSize(idx.total)
	}
	return true, nil
}

// RemoveFile drops everything path contributed. It reports whether the
// file was indexed.
func (idx *Index) RemoveFile(path string) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if !idx.removeLocked(path) {
		return false
	}
	idx.opts.logger.Debug("removed file", "path", path)
	if m := idx.opts.metrics; m != nil {
		m.IndexSize(idx.total)
	}
	return true
}

func (idx *Index) removeLocked(path string) bool {
	old := idx.files[path]
	if old == nil {
		return false
	}
	for _, e := range old.entries {
		idx.byQualified[e.QualifiedName] = dropEntry(idx.byQualified[e.QualifiedName], e)
		if len(idx.byQualified[e.QualifiedName]) == 0 {
			delete(idx.byQualified, e.QualifiedName)
		}
		idx.byBare[e.BareName] = dropEntry(idx.byBare[e.BareName], e)
		if len(idx.byBare[e.BareName]) == 0 {
			delete(idx.byBare, e.BareName)
		}
	}
	for _, dep := range old.table.Dependencies {
		if set := idx.dependents[dep]; set != nil {
			delete(set, path)
			if len(set) == 0 {
				delete(idx.dependents, dep)
			}
		}
	}
	idx.total -= len(old.entries)
	delete(idx.files, path)
	return true
}

func dropEntry(list []*Entry, e *Entry) []*Entry {
	return slices.DeleteFunc(list, func(x *Entry) bool { return x == e })
}

// Clear empties the index.
func (idx *Index) Clear() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.reset()
	if m := idx.opts.metrics; m != nil {
		m.IndexSize(0)
	}
}

// Files returns the indexed paths in order.
func (idx *Index) Files() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]string, 0, len(idx.files))
	for p := range idx.files {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// Table returns the symbol table indexed for path.
func (idx *Index) Table(path string) (*symbols.Table, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	f := idx.files[path]
	if f == nil {
		return nil, false
	}
	return f.table, true
}

// Digest returns the content digest indexed for path.
func (idx *Index) Digest(path string) (Digest, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	f := idx.files[path]
	if f == nil {
		return Digest{}, false
	}
	return f.sum, true
}
