package symbols

import (
	"strings"

	"perlsense/internal/cst"
	"perlsense/internal/token"
)

// importNames lists the names of a use statement's import list:
// qw() words, quoted strings, barewords and "-flag" options.
func importNames(args *cst.Node) []string {
	if args == nil {
		return nil
	}
	var out []string
	neg := false
	cst.Walk(args, func(n *cst.Node) bool {
		tok := n.Tok
		if tok == nil {
			return true
		}
		if tok.IsTrivia() {
			return false
		}
		switch tok.Kind {
		case token.Minus:
			neg = true
			return false
		case token.Ident:
			name := tok.Text
			if neg {
				name = "-" + name
			}
			out = append(out, name)
		case token.String, token.QuoteLike:
			out = append(out, unquote(tok))
		case token.QuoteWords:
			out = append(out, quoteWords(tok.Text)...)
		}
		neg = false
		return false
	})
	return out
}

// unquote returns the contents of '...', "...", q{...} or qq{...}, without
// processing escapes.
func unquote(tok *token.Token) string {
	text := tok.Text
	if tok.Kind == token.QuoteLike {
		text = strings.TrimLeft(strings.TrimLeft(text, "q"), " \t\n")
	}
	if len(text) < 2 {
		return ""
	}
	return text[1 : len(text)-1]
}

func quoteWords(text string) []string {
	body := strings.TrimLeft(strings.TrimPrefix(text, "qw"), " \t\n")
	if len(body) < 2 {
		return nil
	}
	return strings.Fields(body[1 : len(body)-1])
}
