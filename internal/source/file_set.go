package source

import (
	"fmt"
	"sync"

	"fortio.org/safecast"
)

// FileSet hands out stable FileIDs for paths. IDs start at 1 so the zero
// value stays NoFile. Safe for concurrent use.
type FileSet struct {
	mu    sync.RWMutex
	paths []string          // id -> path, paths[0] is reserved
	index map[string]FileID // path -> id
}

// NewFileSet creates an empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		paths: []string{""},
		index: make(map[string]FileID),
	}
}

// Intern returns the ID for path, assigning a new one on first sight.
func (fileSet *FileSet) Intern(path string) FileID {
	p := NormalizePath(path)
	fileSet.mu.RLock()
	id, ok := fileSet.index[p]
	fileSet.mu.RUnlock()
	if ok {
		return id
	}

	fileSet.mu.Lock()
	defer fileSet.mu.Unlock()
	if id, ok := fileSet.index[p]; ok {
		return id
	}
	n, err := safecast.Conv[uint32](len(fileSet.paths))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	id = FileID(n)
	fileSet.paths = append(fileSet.paths, p)
	fileSet.index[p] = id
	return id
}

// Lookup returns the ID for path if it has been interned.
func (fileSet *FileSet) Lookup(path string) (FileID, bool) {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	id, ok := fileSet.index[NormalizePath(path)]
	return id, ok
}

// Path returns the path for id, or "" for unknown ids.
func (fileSet *FileSet) Path(id FileID) string {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	if int(id) >= len(fileSet.paths) {
		return ""
	}
	return fileSet.paths[id]
}

// Len returns the number of interned paths.
func (fileSet *FileSet) Len() int {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	return len(fileSet.paths) - 1
}
