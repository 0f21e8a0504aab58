package symbols

import "perlsense/internal/source"

// RefKind classifies a use site.
type RefKind uint8

const (
	RefInvalid RefKind = iota
	RefVariable
	RefCall
	RefMethod
	RefClass
	// RefBareword is a bareword that matched nothing the file declares or
	// imports.
	RefBareword
)

func (k RefKind) String() string {
	switch k {
	case RefVariable:
		return "variable"
	case RefCall:
		return "call"
	case RefMethod:
		return "method"
	case RefClass:
		return "class"
	case RefBareword:
		return "bareword"
	default:
		return "invalid"
	}
}

// Reference is a name-based use site. Nothing is resolved: Qualified is the
// name the use would reach through the package in effect, and is empty when
// that cannot be told from the syntax (methods on an object).
type Reference struct {
	Name      string
	Qualified string
	Kind      RefKind
	Span      source.Span
	// Write marks a variable assigned to.
	Write bool
}
