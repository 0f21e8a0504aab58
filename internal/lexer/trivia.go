package lexer

import (
	"strings"

	"perlsense/internal/token"
)

// scanWhitespace stops right after a newline when a heredoc body is owed, so
// the body can start on the next line.
func (lx *Lexer) scanWhitespace() token.Token {
	c := &lx.cursor
	start := c.Mark()
	for !c.EOF() && isSpace(c.Peek()) {
		b := c.Bump()
		if b == '\n' && lx.state.PendingHeredoc() {
			break
		}
	}
	return lx.emit(token.Whitespace, start)
}

func (lx *Lexer) scanComment() token.Token {
	c := &lx.cursor
	start := c.Mark()
	for !c.EOF() && c.Peek() != '\n' {
		c.Bump()
	}
	return lx.emit(token.Comment, start)
}

// scanPod consumes a POD block through its "=cut" line. POD without =cut
// runs to end of input, which perl accepts.
func (lx *Lexer) scanPod() token.Token {
	c := &lx.cursor
	start := c.Mark()
	for !c.EOF() {
		line := lx.consumeLine()
		if strings.HasPrefix(line, "=cut") && (len(line) == 4 || !isIdentContinueByte(line[4])) {
			break
		}
	}
	return lx.emit(token.Pod, start)
}

// consumeLine moves past the current line and its newline and returns the
// line without the newline.
func (lx *Lexer) consumeLine() string {
	c := &lx.cursor
	from := c.Off
	for !c.EOF() && c.Peek() != '\n' {
		c.Bump()
	}
	line := c.Text[from:c.Off]
	c.Eat('\n')
	return line
}
