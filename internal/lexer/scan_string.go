package lexer

import (
	"perlsense/internal/token"
)

// scanDelimited consumes a body after its opening delimiter through the
// matching closer. Bracketing delimiters nest; a backslash escapes the next
// byte. Returns false at EOF.
func (lx *Lexer) scanDelimited(open, cl byte) bool {
	c := &lx.cursor
	depth := 1
	for !c.EOF() {
		b := c.Bump()
		switch {
		case b == '\\':
			c.Bump()
		case open != cl && b == open:
			depth++
		case b == cl:
			depth--
			if depth == 0 {
				return true
			}
		}
	}
	return false
}

func (lx *Lexer) scanString(quote byte) token.Token {
	c := &lx.cursor
	start := c.Mark()
	c.Bump()
	if !lx.scanDelimited(quote, quote) {
		return lx.emit(token.Unterminated, start)
	}
	if quote == '`' {
		return lx.emit(token.Command, start)
	}
	return lx.emit(token.String, start)
}

// scanRegex lexes /pattern/flags in term position. A '/' inside a character
// class does not end the pattern.
func (lx *Lexer) scanRegex() token.Token {
	c := &lx.cursor
	start := c.Mark()
	c.Bump()
	inClass := false
	for !c.EOF() {
		b := c.Bump()
		switch {
		case b == '\\':
			c.Bump()
		case inClass:
			if b == ']' {
				inClass = false
			}
		case b == '[':
			inClass = true
		case b == '/':
			lx.scanModifiers()
			return lx.emit(token.Regex, start)
		}
	}
	return lx.emit(token.Unterminated, start)
}

// scanReadline lexes <FH>, <$fh>, <STDIN>, <> and simple globs like <*.pm>.
func (lx *Lexer) scanReadline() (token.Token, bool) {
	c := &lx.cursor
	text := c.Text
	p := c.Off + 1
	for int(p) < len(text) {
		b := text[p]
		if b == '>' {
			start := c.Mark()
			c.Off = p + 1
			return lx.emit(token.Readline, start), true
		}
		if !(isIdentContinueByte(b) || b == '$' || b == ':' || b == '*' || b == '.' || b == '?' || b == '/' || b == '~' || b == '-') {
			break
		}
		p++
	}
	return token.Token{}, false
}

// scanPrototype lexes a prototype such as ($$;@) after 'sub' or 'sub NAME'.
// A parenthesis holding named variables is a signature and is left alone.
func (lx *Lexer) scanPrototype() (token.Token, bool) {
	c := &lx.cursor
	text := c.Text
	for p := c.Off + 1; int(p) < len(text); p++ {
		switch b := text[p]; b {
		case ')':
			start := c.Mark()
			c.Off = p + 1
			return lx.emit(token.Prototype, start), true
		case '$', '@', '%', '&', '*', ';', '\\', '[', ']', '+', '_', ' ', '\t':
		default:
			return token.Token{}, false
		}
	}
	return token.Token{}, false
}
