package symbols

import (
	"perlsense/internal/source"
)

// SymbolKind classifies what a declaration introduces.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolPackage
	SymbolSub
	SymbolVariable
	SymbolImport
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolPackage:
		return "package"
	case SymbolSub:
		return "sub"
	case SymbolVariable:
		return "variable"
	case SymbolImport:
		return "import"
	default:
		return "invalid"
	}
}

// SymbolFlags encode misc attributes for quick checks.
type SymbolFlags uint16

const (
	// SymbolFlagLexical marks my/state variables and sub parameters.
	SymbolFlagLexical SymbolFlags = 1 << iota
	// SymbolFlagMethod marks subs whose first parameter is $self or $class.
	SymbolFlagMethod
	// SymbolFlagVariadic marks subs taking a slurpy list.
	SymbolFlagVariadic
	// SymbolFlagForward marks a sub declared without a body.
	SymbolFlagForward
	// SymbolFlagLocal marks a variable introduced by local.
	SymbolFlagLocal
	// SymbolFlagParam marks sub parameters.
	SymbolFlagParam
)

// Strings returns a slice of textual flag labels.
func (f SymbolFlags) Strings() []string {
	if f == 0 {
		return nil
	}
	labels := make([]string, 0, 4)
	if f&SymbolFlagLexical != 0 {
		labels = append(labels, "lexical")
	}
	if f&SymbolFlagMethod != 0 {
		labels = append(labels, "method")
	}
	if f&SymbolFlagVariadic != 0 {
		labels = append(labels, "variadic")
	}
	if f&SymbolFlagForward != 0 {
		labels = append(labels, "forward")
	}
	if f&SymbolFlagLocal != 0 {
		labels = append(labels, "local")
	}
	if f&SymbolFlagParam != 0 {
		labels = append(labels, "param")
	}
	return labels
}

// ArityUnknown is the arity hint of a sub whose parameters could not be
// read from a signature, a prototype or the usual @_ unpacking.
const ArityUnknown = -1

// Symbol describes one declaration.
//
// Variables keep their sigil in both names: the bare name of "our $x" in
// package Foo is "$x" and its qualified name "$Foo::x". Packages and imports
// are qualified by their full name; their bare name is the last segment.
type Symbol struct {
	QualifiedName string
	BareName      string
	Kind          SymbolKind
	File          source.FileID
	// Span covers the declaration: the whole sub, the package region, the
	// use statement, or the variable itself.
	Span     source.Span
	NameSpan source.Span
	Scope    ScopeID
	Package  string
	Flags    SymbolFlags
	// Arity is the parameter count hint of a sub, or ArityUnknown. A
	// variadic sub counts only its leading scalars.
	Arity int
	// Imports lists the names requested by a use statement.
	Imports []string
}

func (s Symbol) Lexical() bool { return s.Flags&SymbolFlagLexical != 0 }

func (s Symbol) Method() bool { return s.Flags&SymbolFlagMethod != 0 }

func (s Symbol) Forward() bool { return s.Flags&SymbolFlagForward != 0 }
