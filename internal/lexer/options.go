package lexer

import (
	"fmt"

	"perlsense/internal/diag"
	"perlsense/internal/token"
)

type Options struct {
	Reporter diag.Reporter // may be nil; lexing continues either way
}

func (lx *Lexer) report(tok token.Token, before State) {
	if lx.opts.Reporter == nil {
		return
	}
	code, msg := DescribeError(tok, before, lx.cursor.Text[:tok.Span.Start])
	diag.ReportError(lx.opts.Reporter, code, tok.Span, msg).Emit()
}

// DescribeError explains an error token. before is the lexer state in effect
// when the token was produced and prefix is the text preceding it.
func DescribeError(tok token.Token, before State, prefix string) (diag.Code, string) {
	if tok.Kind == token.Invalid {
		return diag.LexUnknownChar, fmt.Sprintf("unrecognized character %q", tok.Text)
	}
	atLineStart := prefix == "" || prefix[len(prefix)-1] == '\n'
	if before.PendingHeredoc() && atLineStart {
		return diag.LexUnterminatedHeredoc, fmt.Sprintf("can't find heredoc terminator %q", before.Heredocs[0].Label)
	}
	if before.PendingHeredoc() && tok.Text == "" {
		return diag.LexMissingHeredocNewline, fmt.Sprintf("heredoc %q has no body", before.Heredocs[0].Label)
	}
	if tok.Text == "" {
		return diag.UnknownCode, "empty error token"
	}
	switch tok.Text[0] {
	case '\'', '"', '`':
		return diag.LexUnterminatedString, "string is not terminated"
	default:
		return diag.LexUnterminatedQuote, "quote-like operator is not terminated"
	}
}
