package lexer

import (
	"perlsense/internal/token"
)

// scanNumber lexes decimal, hex, binary and octal integers, floats with
// exponents, underscore separators and dotted versions like 5.36.0.
func (lx *Lexer) scanNumber() token.Token {
	c := &lx.cursor
	start := c.Mark()
	if c.Peek() == '0' {
		switch c.PeekAt(1) {
		case 'x', 'X':
			c.BumpN(2)
			for isHex(c.Peek()) || c.Peek() == '_' {
				c.Bump()
			}
			return lx.emit(token.Number, start)
		case 'b', 'B':
			c.BumpN(2)
			for c.Peek() == '0' || c.Peek() == '1' || c.Peek() == '_' {
				c.Bump()
			}
			return lx.emit(token.Number, start)
		}
	}
	lx.scanDigits()
	if c.Peek() == '.' && isDec(c.PeekAt(1)) {
		c.Bump()
		lx.scanDigits()
		lx.scanVersionTail()
	}
	if b := c.Peek(); b == 'e' || b == 'E' {
		n := c.PeekAt(1)
		if isDec(n) || ((n == '+' || n == '-') && isDec(c.PeekAt(2))) {
			c.BumpN(2)
			lx.scanDigits()
		}
	}
	return lx.emit(token.Number, start)
}

func (lx *Lexer) scanDigits() {
	c := &lx.cursor
	for isDec(c.Peek()) || c.Peek() == '_' {
		c.Bump()
	}
}
