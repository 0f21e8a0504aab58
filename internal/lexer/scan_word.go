package lexer

import (
	"strings"

	"perlsense/internal/token"
)

var quoteOps = map[string]token.Kind{
	"q":  token.QuoteLike,
	"qq": token.QuoteLike,
	"qw": token.QuoteWords,
	"qr": token.Regex,
	"qx": token.Command,
	"m":  token.Regex,
	"s":  token.Substitution,
	"tr": token.Transliteration,
	"y":  token.Transliteration,
}

// scanWord lexes barewords, keywords, word operators, quote-like operators,
// version strings and the __END__/__DATA__ marker.
func (lx *Lexer) scanWord() token.Token {
	c := &lx.cursor
	start := c.Mark()
	r, _ := lx.peekRune()
	if r != ':' && !isIdentStartRune(r) {
		c.Bump()
		return lx.emit(token.Invalid, start)
	}
	lx.scanIdentName()
	word := c.Text[start:c.Off]
	afterArrow := lx.state.Prev == token.Arrow

	if (word == "__END__" || word == "__DATA__") && !afterArrow {
		c.ToEOF()
		return lx.emit(token.DataSection, start)
	}
	if isVersionWord(word) && c.Peek() == '.' && isDec(c.PeekAt(1)) {
		lx.scanVersionTail()
		return lx.emit(token.Number, start)
	}
	if isVersionWord(word) {
		return lx.emit(token.Number, start)
	}
	if strings.Contains(word, "::") || afterArrow {
		return lx.emit(token.Ident, start)
	}

	if lx.state.Mode == ExpectOperator && !(lx.state.Prev == token.RBrace && lx.state.Newline) {
		// "x3" is the repetition operator followed by 3.
		if word[0] == 'x' && len(word) > 1 && allDigits(word[1:]) {
			c.Reset(start)
			c.Bump()
			return lx.emit(token.Repeat, start)
		}
		if k, ok := token.LookupWordOperator(word); ok {
			if k == token.Repeat && c.Peek() == '=' && c.PeekAt(1) != '=' && c.PeekAt(1) != '~' && c.PeekAt(1) != '>' {
				c.Bump()
				return lx.emit(token.RepeatAssign, start)
			}
			return lx.emit(k, start)
		}
	}

	if fatArrowAt(c.Text, c.Off) || lx.isHashKey() {
		return lx.emit(token.Ident, start)
	}
	if kind, ok := quoteOps[word]; ok && lx.state.Sub == subNone {
		if delim, ok := lx.quoteDelimiter(); ok {
			return lx.scanQuoteLike(word, kind, start, delim)
		}
	}
	if k, ok := token.LookupKeyword(word); ok && lx.state.Sub == subNone {
		return lx.emit(k, start)
	}
	return lx.emit(token.Ident, start)
}

// isHashKey reports whether the word just scanned is a lone word inside
// braces, as in $h{if} or $h{ s }.
func (lx *Lexer) isHashKey() bool {
	if lx.state.Prev != token.LBrace {
		return false
	}
	off := skipSpaceFrom(lx.cursor.Text, lx.cursor.Off)
	return int(off) < len(lx.cursor.Text) && lx.cursor.Text[off] == '}'
}

// quoteDelimiter finds the opening delimiter of a quote-like operator, which
// may be separated from the operator by whitespace.
func (lx *Lexer) quoteDelimiter() (uint32, bool) {
	text := lx.cursor.Text
	off := lx.cursor.Off
	p := skipSpaceFrom(text, off)
	if int(p) >= len(text) {
		return 0, false
	}
	d := text[p]
	if isIdentContinueByte(d) || d >= utf8RuneSelf {
		return 0, false
	}
	switch d {
	case ',', ';', ')', ']', '}', '>':
		return 0, false
	case '=':
		if p != off || (int(p)+1 < len(text) && (text[p+1] == '>' || text[p+1] == '=')) {
			return 0, false
		}
	case '#':
		if p != off {
			return 0, false
		}
	}
	return p, true
}

// scanQuoteLike consumes a quote-like operator whose delimiter is at delim.
// s, tr and y take two parts; with bracketing delimiters the second part has
// its own, possibly different, delimiters.
func (lx *Lexer) scanQuoteLike(word string, kind token.Kind, start Mark, delim uint32) token.Token {
	c := &lx.cursor
	c.Off = delim
	open := c.Bump()
	cl := closer(open)
	if !lx.scanDelimited(open, cl) {
		c.ToEOF()
		return lx.emit(token.Unterminated, start)
	}
	if word == "s" || word == "tr" || word == "y" {
		if open != cl {
			c.Off = skipSpaceFrom(c.Text, c.Off)
			if c.EOF() {
				return lx.emit(token.Unterminated, start)
			}
			open = c.Bump()
			cl = closer(open)
		}
		if !lx.scanDelimited(open, cl) {
			c.ToEOF()
			return lx.emit(token.Unterminated, start)
		}
	}
	if kind == token.Regex || kind == token.Substitution || kind == token.Transliteration {
		lx.scanModifiers()
	}
	return lx.emit(kind, start)
}

func (lx *Lexer) scanModifiers() {
	c := &lx.cursor
	for !c.EOF() {
		b := c.Peek()
		if (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') {
			c.Bump()
			continue
		}
		return
	}
}

func isVersionWord(word string) bool {
	return len(word) > 1 && word[0] == 'v' && allDigits(word[1:])
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDec(s[i]) {
			return false
		}
	}
	return s != ""
}

func (lx *Lexer) scanVersionTail() {
	c := &lx.cursor
	for c.Peek() == '.' && isDec(c.PeekAt(1)) {
		c.Bump()
		for isDec(c.Peek()) || c.Peek() == '_' {
			c.Bump()
		}
	}
}
