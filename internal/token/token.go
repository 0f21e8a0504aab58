package token

import (
	"perlsense/internal/source"
)

// Token represents a single source token with its location.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}

// IsTrivia reports whether the token carries no syntax.
func (t Token) IsTrivia() bool { return t.Kind.IsTrivia() }

// IsLiteral reports whether the token is a literal.
func (t Token) IsLiteral() bool { return t.Kind.IsLiteral() }

// IsKeyword reports whether the token is a reserved word.
func (t Token) IsKeyword() bool { return t.Kind.Category() == CatKeyword }

// IsIdent reports whether the token is a bareword.
func (t Token) IsIdent() bool { return t.Kind == Ident }

// IsVariable reports whether the token is a sigiled variable.
func (t Token) IsVariable() bool { return t.Kind.Category() == CatVariable }

// Shifted returns a copy of t moved by delta bytes.
func (t Token) Shifted(delta int) Token {
	t.Span = t.Span.Shift(delta)
	return t
}
