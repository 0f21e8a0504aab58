package lexer

import (
	"perlsense/internal/source"
	"perlsense/internal/token"
)

// Lexer produces tokens one at a time from a text, threading State.
type Lexer struct {
	cursor Cursor
	state  State
	opts   Options
}

// New creates a lexer that starts at off with state st. Resuming at a token
// boundary with the state recorded there reproduces the original stream.
func New(file source.FileID, text string, off uint32, st State, opts Options) *Lexer {
	return &Lexer{
		cursor: NewCursor(file, text, off),
		state:  st,
		opts:   opts,
	}
}

// State returns the state in effect before the next token.
func (lx *Lexer) State() State { return lx.state }

// Offset returns the start of the next token.
func (lx *Lexer) Offset() uint32 { return lx.cursor.Off }

// Next returns the next token. Every byte lands in exactly one token;
// after the last byte Next keeps returning an empty EOF token. A heredoc
// still waiting for its body at the end of input gets one empty
// Unterminated token there first.
func (lx *Lexer) Next() token.Token {
	if lx.cursor.EOF() {
		if !lx.state.PendingHeredoc() {
			return token.Token{Kind: token.EOF, Span: lx.emptySpan()}
		}
		before := lx.state
		lx.state.Heredocs = nil
		tok := token.Token{Kind: token.Unterminated, Span: lx.emptySpan()}
		lx.report(tok, before)
		return tok
	}
	before := lx.state
	tok := lx.scan()
	lx.state = lx.state.next(tok)
	if tok.Kind.Category() == token.CatError {
		lx.report(tok, before)
	}
	return tok
}

func (lx *Lexer) scan() token.Token {
	c := &lx.cursor
	if lx.state.PendingHeredoc() && c.AtLineStart() {
		return lx.scanHeredocBody()
	}

	ch := c.Peek()
	switch {
	case isSpace(ch):
		return lx.scanWhitespace()
	case ch == '#':
		return lx.scanComment()
	case ch == '=' && c.AtLineStart() && isIdentStartByte(c.PeekAt(1)):
		return lx.scanPod()
	case isIdentStartByte(ch) || ch >= utf8RuneSelf:
		return lx.scanWord()
	case ch == ':' && c.PeekAt(1) == ':' && isIdentStartByte(c.PeekAt(2)):
		return lx.scanWord()
	case isDec(ch):
		return lx.scanNumber()
	case ch == '.' && lx.termExpected() && isDec(c.PeekAt(1)):
		return lx.scanNumber()
	case ch == '$':
		return lx.scanScalar()
	case ch == '@':
		return lx.scanArray()
	case (ch == '%' || ch == '&' || ch == '*') && lx.sigilExpected(ch):
		return lx.scanSigil(ch)
	case ch == '\'' || ch == '"' || ch == '`':
		return lx.scanString(ch)
	case ch == '/' && lx.termExpected():
		return lx.scanRegex()
	case ch == '<' && lx.termExpected():
		if tok, ok := lx.scanHeredocStart(); ok {
			return tok
		}
		if tok, ok := lx.scanReadline(); ok {
			return tok
		}
	case ch == '-' && lx.termExpected() && lx.isFileTest():
		start := c.Mark()
		c.BumpN(2)
		return lx.emit(token.FileTest, start)
	case ch == '(' && lx.state.Sub != subNone:
		if tok, ok := lx.scanPrototype(); ok {
			return tok
		}
	}
	return lx.scanOperatorOrPunct()
}

// termExpected reports whether a term may start here. A newline after a
// closing brace usually ends a block, so the next line starts a statement.
func (lx *Lexer) termExpected() bool {
	if lx.state.Mode == ExpectTerm {
		return true
	}
	return lx.state.Prev == token.RBrace && lx.state.Newline
}

// sigilExpected decides whether '%', '&' or '*' starts a variable. Besides
// term position it accepts "map { ... } %h" and "foo %args": whitespace
// before the sigil and a name directly after it.
func (lx *Lexer) sigilExpected(ch byte) bool {
	c := &lx.cursor
	next := c.PeekAt(1)
	named := isIdentStartByte(next) || next == '$' || next == '{' || (next == ':' && c.PeekAt(2) == ':')
	if lx.termExpected() {
		if ch == '&' && next == '&' {
			return false
		}
		return true
	}
	if lx.state.Prev != token.RBrace && lx.state.Prev != token.Ident {
		return false
	}
	return named && c.Off > 0 && isSpace(c.Text[c.Off-1])
}

func (lx *Lexer) emit(k token.Kind, start Mark) token.Token {
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: k, Span: sp, Text: lx.cursor.Text[sp.Start:sp.End]}
}

func (lx *Lexer) emptySpan() source.Span {
	return source.Span{File: lx.cursor.File, Start: lx.cursor.Off, End: lx.cursor.Off}
}

// Stream is a lexed buffer with the state recorded before each token.
type Stream struct {
	Tokens []token.Token
	States []State
	End    State
}

// Lex tokenizes text[off:] starting in state st.
func Lex(file source.FileID, text string, off uint32, st State, opts Options) Stream {
	lx := New(file, text, off, st, opts)
	var s Stream
	for {
		before := lx.State()
		tok := lx.Next()
		if tok.Kind == token.EOF {
			break
		}
		s.Tokens = append(s.Tokens, tok)
		s.States = append(s.States, before)
	}
	s.End = lx.State()
	return s
}

// Tokenize lexes text from the beginning in state st and returns the tokens
// and the state after the last one. It is a pure function of its inputs.
func Tokenize(text string, st State) ([]token.Token, State) {
	s := Lex(source.NoFile, text, 0, st, Options{})
	return s.Tokens, s.End
}
