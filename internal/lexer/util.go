package lexer

import (
	"unicode"
	"unicode/utf8"

	"perlsense/internal/source"
)

const utf8RuneSelf = utf8.RuneSelf

func (lx *Lexer) peekRune() (r rune, size int) {
	c := &lx.cursor
	if c.EOF() {
		return utf8.RuneError, 0
	}
	b := c.Peek()
	if b < utf8.RuneSelf {
		return rune(b), 1
	}
	return utf8.DecodeRuneInString(c.Text[c.Off:])
}

func (lx *Lexer) bumpRune() {
	_, sz := lx.peekRune()
	lx.cursor.BumpN(source.ToU32(sz))
}

func isIdentStartByte(b byte) bool {
	return b == '_' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isIdentContinueByte(b byte) bool {
	return isIdentStartByte(b) || isDec(b)
}

func isIdentStartRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentContinueRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isDec(b byte) bool { return b >= '0' && b <= '9' }

func isHex(b byte) bool {
	return isDec(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == '\v'
}

// closer returns the closing partner of a quote delimiter.
func closer(open byte) byte {
	switch open {
	case '(':
		return ')'
	case '[':
		return ']'
	case '{':
		return '}'
	case '<':
		return '>'
	}
	return open
}

// skipSpaceFrom returns the first offset at or after off that is not whitespace.
func skipSpaceFrom(text string, off uint32) uint32 {
	for int(off) < len(text) && isSpace(text[off]) {
		off++
	}
	return off
}

// fatArrowAt reports whether "=>" follows off after optional whitespace.
func fatArrowAt(text string, off uint32) bool {
	off = skipSpaceFrom(text, off)
	return int(off)+1 < len(text) && text[off] == '=' && text[off+1] == '>'
}

// scanIdentName consumes an optionally package-qualified name:
// Foo, Foo::Bar, ::main_var, Foo::Bar:: .
func (lx *Lexer) scanIdentName() {
	c := &lx.cursor
	for {
		if c.HasPrefix("::") {
			c.BumpN(2)
			continue
		}
		r, sz := lx.peekRune()
		if sz == 0 || !isIdentContinueRune(r) {
			return
		}
		lx.bumpRune()
	}
}
