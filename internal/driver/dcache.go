package driver

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"perlsense/internal/source"
	"perlsense/internal/symbols"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 1

// DiskCache хранит таблицы символов по хешу содержимого файла.
// In-memory state stays the source of truth: a miss, a stale schema or a
// corrupt entry only costs a reparse.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is one cached symbol table.
type DiskPayload struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	Scopes       []cachedScope
	Symbols      []symbols.Symbol
	References   []symbols.Reference
	Dependencies []string
}

// cachedScope leaves out the name index, which Restore rebuilds.
type cachedScope struct {
	Kind     symbols.ScopeKind
	Parent   symbols.ScopeID
	Span     source.Span
	Package  string
	Symbols  []symbols.SymbolID
	Children []symbols.ScopeID
}

// OpenDiskCache opens the cache in dir, or under the user cache directory
// for app when dir is empty.
func OpenDiskCache(dir, app string) (*DiskCache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, app)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) Dir() string { return c.dir }

func (c *DiskCache) pathFor(key [32]byte) string {
	hexKey := hex.EncodeToString(key[:])
	// Подкаталог "tables" по первым двум hex-символам ключа.
	return filepath.Join(c.dir, "tables", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a table under the digest of its content.
func (c *DiskCache) Put(key [32]byte, table *symbols.Table) (err error) {
	if c == nil || table == nil {
		return nil
	}
	payload := tableToPayload(table)

	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		// после успешного Rename временного файла уже нет
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads the table cached for key and binds it to file. A missing entry
// or one written by another schema is a miss, not an error.
func (c *DiskCache) Get(key [32]byte, file source.FileID) (*symbols.Table, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var payload DiskPayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", f.Name(), err)
	}
	if payload.Schema != diskCacheSchemaVersion {
		return nil, false, nil
	}
	table := payloadToTable(&payload, file)
	if err := table.Validate(); err != nil {
		return nil, false, fmt.Errorf("cached table %s: %w", f.Name(), err)
	}
	return table, true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// тривиально: переименуем каталог и удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.RemoveAll(old)
}

func tableToPayload(t *symbols.Table) *DiskPayload {
	scopes := t.Scopes.Data()
	payload := &DiskPayload{
		Schema:       diskCacheSchemaVersion,
		Scopes:       make([]cachedScope, len(scopes)),
		Symbols:      t.All(),
		References:   t.References,
		Dependencies: t.Dependencies,
	}
	for i, sc := range scopes {
		payload.Scopes[i] = cachedScope{
			Kind:     sc.Kind,
			Parent:   sc.Parent,
			Span:     sc.Span,
			Package:  sc.Package,
			Symbols:  sc.Symbols,
			Children: sc.Children,
		}
	}
	return payload
}

func payloadToTable(p *DiskPayload, file source.FileID) *symbols.Table {
	scopes := make([]symbols.Scope, len(p.Scopes))
	for i, sc := range p.Scopes {
		scopes[i] = symbols.Scope{
			Kind:     sc.Kind,
			Parent:   sc.Parent,
			Span:     sc.Span,
			Package:  sc.Package,
			Symbols:  sc.Symbols,
			Children: sc.Children,
		}
	}
	return symbols.Restore(file, scopes, p.Symbols, p.References, p.Dependencies)
}
