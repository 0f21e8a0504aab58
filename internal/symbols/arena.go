package symbols

import (
	"fmt"

	"fortio.org/safecast"

	"perlsense/internal/source"
)

// arena is a slice of T addressed by 1-based IDs; slot 0 stays zero so the
// zero ID never resolves.
type arena[ID ~uint32, T any] struct {
	items []T
}

func newArena[ID ~uint32, T any](hint int) arena[ID, T] {
	return arena[ID, T]{items: make([]T, 1, hint+1)}
}

func idAt[ID ~uint32](i int) ID {
	v, err := safecast.Conv[uint32](i)
	if err != nil {
		panic(fmt.Errorf("arena id overflow: %w", err))
	}
	return ID(v)
}

func (a *arena[ID, T]) add(v T) ID {
	a.items = append(a.items, v)
	return idAt[ID](len(a.items) - 1)
}

func (a *arena[ID, T]) at(id ID) *T {
	if id == 0 || int(id) >= len(a.items) {
		return nil
	}
	return &a.items[id]
}

// each visits the live slots in ID order.
func (a *arena[ID, T]) each(fn func(ID, *T)) {
	for i := 1; i < len(a.items); i++ {
		fn(idAt[ID](i), &a.items[i])
	}
}

// Len counts allocated entries.
func (a *arena[ID, T]) Len() int { return len(a.items) - 1 }

// Data is the allocated entries in ID order, ID n at index n-1. The slice
// aliases the arena.
func (a *arena[ID, T]) Data() []T {
	if len(a.items) <= 1 {
		return nil
	}
	return a.items[1:]
}

// Scopes is the scope arena of a table.
type Scopes struct {
	arena[ScopeID, Scope]
}

func NewScopes(hint int) *Scopes {
	return &Scopes{newArena[ScopeID, Scope](max(hint, 16))}
}

// New allocates a scope and links it under parent.
func (s *Scopes) New(kind ScopeKind, parent ScopeID, span source.Span, pkg string) ScopeID {
	id := s.add(Scope{
		Kind:      kind,
		Parent:    parent,
		Span:      span,
		Package:   pkg,
		NameIndex: make(map[string][]SymbolID),
	})
	if p := s.Get(parent); p != nil {
		p.Children = append(p.Children, id)
	}
	return id
}

func (s *Scopes) Get(id ScopeID) *Scope { return s.at(id) }

// Symbols is the symbol arena of a table.
type Symbols struct {
	arena[SymbolID, Symbol]
}

func NewSymbols(hint int) *Symbols {
	return &Symbols{newArena[SymbolID, Symbol](max(hint, 32))}
}

func (s *Symbols) New(sym *Symbol) SymbolID {
	if sym == nil {
		panic("symbols: nil symbol")
	}
	return s.add(*sym)
}

func (s *Symbols) Get(id SymbolID) *Symbol { return s.at(id) }
