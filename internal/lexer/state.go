package lexer

import (
	"slices"

	"perlsense/internal/token"
)

// Mode says what the lexer expects next. It decides whether '/' divides or
// starts a pattern, and whether '%', '&', '*' and '<' are sigils.
type Mode uint8

const (
	// ExpectTerm follows operators, keywords, openers and statement starts.
	ExpectTerm Mode = iota
	// ExpectOperator follows a complete term.
	ExpectOperator
)

func (m Mode) String() string {
	if m == ExpectOperator {
		return "operator"
	}
	return "term"
}

// Heredoc is a pending heredoc whose body starts after the next newline.
type Heredoc struct {
	Label  string
	Indent bool // <<~ allows an indented terminator
}

// subPhase tracks the tokens after the 'sub' keyword.
type subPhase uint8

const (
	subNone subPhase = iota
	subKeyword
	subName
)

// State is everything the lexer carries between tokens. It is a small value
// threaded through every call, so lexing can resume from any token boundary
// given the state recorded there. Heredocs is never mutated in place.
type State struct {
	Mode Mode
	// Prev is the kind of the last significant token, EOF at start of input.
	Prev token.Kind
	// Newline is set when a newline was seen since Prev.
	Newline  bool
	Sub      subPhase
	Heredocs []Heredoc
}

// Initial returns the state at the start of a file.
func Initial() State {
	return State{Mode: ExpectTerm, Prev: token.EOF}
}

// Equal reports whether two states lex the same text identically.
func (s State) Equal(o State) bool {
	return s.Mode == o.Mode && s.Prev == o.Prev && s.Newline == o.Newline &&
		s.Sub == o.Sub && slices.Equal(s.Heredocs, o.Heredocs)
}

// PendingHeredoc reports whether a heredoc body is still owed.
func (s State) PendingHeredoc() bool { return len(s.Heredocs) > 0 }

func (s State) pushHeredoc(h Heredoc) State {
	s.Heredocs = append(slices.Clip(s.Heredocs), h)
	return s
}

func (s State) popHeredoc() State {
	if len(s.Heredocs) <= 1 {
		s.Heredocs = nil
		return s
	}
	s.Heredocs = s.Heredocs[1:]
	return s
}

// next computes the state after a significant token.
func (s State) next(tok token.Token) State {
	switch tok.Kind {
	case token.Whitespace, token.Comment, token.Pod:
		for i := 0; i < len(tok.Text); i++ {
			if tok.Text[i] == '\n' {
				s.Newline = true
				break
			}
		}
		return s
	case token.HeredocBody, token.DataSection, token.Invalid, token.Unterminated:
		return s
	}

	prev := s.Prev
	s.Prev = tok.Kind
	s.Newline = false

	switch {
	case tok.Kind == token.KwSub:
		s.Sub = subKeyword
	case s.Sub == subKeyword && tok.Kind == token.Ident:
		s.Sub = subName
	default:
		s.Sub = subNone
	}

	switch cat := tok.Kind.Category(); {
	case tok.Kind == token.Ident:
		if prev != token.Arrow && token.ExpectsTerm(tok.Text) {
			s.Mode = ExpectTerm
		} else {
			s.Mode = ExpectOperator
		}
	case tok.Kind == token.Cast:
		s.Mode = ExpectTerm
	case cat == token.CatVariable, cat == token.CatLiteral:
		s.Mode = ExpectOperator
	case tok.Kind == token.RParen, tok.Kind == token.RBracket, tok.Kind == token.RBrace:
		s.Mode = ExpectOperator
	case tok.Kind == token.Inc, tok.Kind == token.Dec:
		// postfix keeps operator mode, prefix keeps term mode
	default:
		s.Mode = ExpectTerm
	}
	return s
}
