package lexer

import (
	"strings"

	"perlsense/internal/token"
)

// scanHeredocStart recognizes <<"TAG", <<'TAG', <<`TAG`, <<TAG and the
// indented <<~ forms. The body is queued in the state and lexed after the
// next newline.
func (lx *Lexer) scanHeredocStart() (token.Token, bool) {
	c := &lx.cursor
	if !c.HasPrefix("<<") {
		return token.Token{}, false
	}
	text := c.Text
	p := c.Off + 2
	indent := false
	if int(p) < len(text) && text[p] == '~' {
		indent = true
		p++
	}
	q := p
	for int(q) < len(text) && (text[q] == ' ' || text[q] == '\t') {
		q++
	}

	var label string
	var end uint32
	switch {
	case int(q) < len(text) && (text[q] == '"' || text[q] == '\'' || text[q] == '`'):
		quote := text[q]
		closeAt := q + 1
		for int(closeAt) < len(text) && text[closeAt] != quote && text[closeAt] != '\n' {
			closeAt++
		}
		if int(closeAt) >= len(text) || text[closeAt] != quote {
			return token.Token{}, false
		}
		label = text[q+1 : closeAt]
		end = closeAt + 1
	case q == p && int(p) < len(text) && isIdentStartByte(text[p]):
		end = p
		for int(end) < len(text) && isIdentContinueByte(text[end]) {
			end++
		}
		label = text[p:end]
	default:
		return token.Token{}, false
	}

	start := c.Mark()
	c.Off = end
	lx.state = lx.state.pushHeredoc(Heredoc{Label: label, Indent: indent})
	return lx.emit(token.HeredocStart, start), true
}

// scanHeredocBody consumes lines up to and including the terminator of the
// oldest pending heredoc. A missing terminator turns the rest of the input
// into one Unterminated token and drops every pending heredoc.
func (lx *Lexer) scanHeredocBody() token.Token {
	c := &lx.cursor
	start := c.Mark()
	h := lx.state.Heredocs[0]
	for !c.EOF() {
		line := strings.TrimSuffix(lx.consumeLine(), "\r")
		if h.Indent {
			line = strings.TrimLeft(line, " \t")
		}
		if line == h.Label {
			lx.state = lx.state.popHeredoc()
			return lx.emit(token.HeredocBody, start)
		}
	}
	lx.state.Heredocs = nil
	return lx.emit(token.Unterminated, start)
}
