package symbols

import (
	"perlsense/internal/source"
)

// ScopeKind enumerates supported scope categories.
type ScopeKind uint8

const (
	ScopeInvalid ScopeKind = iota
	ScopeFile              // one per file
	ScopePackage           // package NAME { ... }
	ScopeSub               // named or anonymous sub, parameters included
	ScopeBlock             // bare blocks and the statement around a loop or condition
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeFile:
		return "file"
	case ScopePackage:
		return "package"
	case ScopeSub:
		return "sub"
	case ScopeBlock:
		return "block"
	default:
		return "invalid"
	}
}

// Scope models a lexical scope with a parent-child hierarchy.
type Scope struct {
	Kind   ScopeKind
	Parent ScopeID
	Span   source.Span
	// Package is the package in effect when the scope opened.
	Package   string
	NameIndex map[string][]SymbolID
	Symbols   []SymbolID
	Children  []ScopeID
}
