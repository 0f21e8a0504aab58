package lexer

import (
	"strings"

	"perlsense/internal/token"
)

// special punctuation variables: $_ is a name, these are single bytes.
const scalarPunct = "&`'+!@/\\,;.<>|?*=~%-\"0]:"

func (lx *Lexer) startsName() bool {
	c := &lx.cursor
	b := c.Peek()
	if isIdentStartByte(b) || b >= utf8RuneSelf {
		r, _ := lx.peekRune()
		return isIdentStartRune(r)
	}
	return b == ':' && c.PeekAt(1) == ':' && (isIdentStartByte(c.PeekAt(2)) || c.PeekAt(2) == '$' || isSpace(c.PeekAt(2)) || c.PeekAt(2) == 0)
}

// scanScalar lexes $name, $Pkg::name, $1, $^W, ${^NAME}, special
// punctuation variables, $#array, and the casts ${ $$ref $#{ $#$ref.
func (lx *Lexer) scanScalar() token.Token {
	c := &lx.cursor
	start := c.Mark()
	c.Bump()
	b := c.Peek()
	switch {
	case b == '#':
		n := c.PeekAt(1)
		switch {
		case n == '{' || n == '$':
			c.Bump()
			return lx.emit(token.Cast, start)
		case n == '*' && lx.state.Prev == token.Arrow:
			c.BumpN(2)
			return lx.emit(token.ArrayLen, start)
		case isIdentStartByte(n) || (n == ':' && c.PeekAt(2) == ':'):
			c.Bump()
			lx.scanIdentName()
			return lx.emit(token.ArrayLen, start)
		}
		c.Bump()
		return lx.emit(token.ScalarVar, start)
	case b == '*' && lx.state.Prev == token.Arrow:
		c.Bump()
		return lx.emit(token.ScalarVar, start)
	case lx.startsName():
		lx.scanIdentName()
		return lx.emit(token.ScalarVar, start)
	case isDec(b):
		for isDec(c.Peek()) {
			c.Bump()
		}
		return lx.emit(token.ScalarVar, start)
	case b == '^':
		c.Bump()
		if n := c.Peek(); (n >= 'A' && n <= 'Z') || n == '_' || n == '[' || n == ']' || n == '?' || n == '^' {
			c.Bump()
		}
		return lx.emit(token.ScalarVar, start)
	case b == '{':
		if c.PeekAt(1) == '^' {
			if end := strings.IndexByte(c.Text[c.Off:], '}'); end > 0 && !strings.ContainsRune(c.Text[c.Off:c.Off+uint32(end)], '\n') {
				c.BumpN(uint32(end) + 1)
				return lx.emit(token.ScalarVar, start)
			}
		}
		return lx.emit(token.Cast, start)
	case b == '$':
		n := c.PeekAt(1)
		if isIdentStartByte(n) || n == '{' || n == '$' || n == ':' || n >= utf8RuneSelf {
			return lx.emit(token.Cast, start)
		}
		c.Bump()
		return lx.emit(token.ScalarVar, start)
	case b != 0 && strings.IndexByte(scalarPunct, b) >= 0:
		c.Bump()
		return lx.emit(token.ScalarVar, start)
	}
	return lx.emit(token.Invalid, start)
}

// scanArray lexes @name, @$ref, @{ ... }, @- @+ and postfix ->@*.
func (lx *Lexer) scanArray() token.Token {
	c := &lx.cursor
	start := c.Mark()
	c.Bump()
	b := c.Peek()
	switch {
	case lx.startsName():
		lx.scanIdentName()
		return lx.emit(token.ArrayVar, start)
	case b == '{' || b == '$' || (b == '[' && lx.state.Prev == token.Arrow):
		return lx.emit(token.Cast, start)
	case b == '*' && lx.state.Prev == token.Arrow:
		c.Bump()
		return lx.emit(token.ArrayVar, start)
	case b == '-' || b == '+':
		c.Bump()
		return lx.emit(token.ArrayVar, start)
	}
	return lx.emit(token.Invalid, start)
}

// scanSigil lexes hash, code and glob variables introduced by '%', '&' or
// '*'. Anything else falls back to the operator reading of the byte.
func (lx *Lexer) scanSigil(sigil byte) token.Token {
	c := &lx.cursor
	start := c.Mark()
	kind := token.HashVar
	switch sigil {
	case '&':
		kind = token.CodeVar
	case '*':
		kind = token.GlobVar
	}
	c.Bump()
	b := c.Peek()
	switch {
	case lx.startsName():
		lx.scanIdentName()
		return lx.emit(kind, start)
	case b == '{' || b == '$':
		return lx.emit(token.Cast, start)
	case b == '*' && lx.state.Prev == token.Arrow:
		c.Bump()
		return lx.emit(kind, start)
	case sigil == '%' && (b == '+' || b == '-' || b == '!'):
		c.Bump()
		return lx.emit(kind, start)
	case sigil == '%' && b == '^' && c.PeekAt(1) == 'H':
		c.BumpN(2)
		return lx.emit(kind, start)
	}
	c.Reset(start)
	return lx.scanOperatorOrPunct()
}

// isFileTest recognizes -e, -f, -d ... in term position.
func (lx *Lexer) isFileTest() bool {
	c := &lx.cursor
	l := c.PeekAt(1)
	if l == 0 || !strings.ContainsRune("rwxoRWXOezsfdlpSbcugktTBAMC", rune(l)) {
		return false
	}
	n := c.PeekAt(2)
	if isIdentContinueByte(n) || n == '>' {
		return false
	}
	return !fatArrowAt(c.Text, c.Off+2)
}
