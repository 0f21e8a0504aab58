package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"

	"perlsense/internal/source"
	"perlsense/internal/token"
)

type TokenOutput struct {
	Kind string      `json:"kind"`
	Text string      `json:"text,omitempty"`
	Span source.Span `json:"span"`
}

// FormatTokensPretty prints one token per line. Trivia is skipped unless
// withTrivia is set.
func FormatTokensPretty(w io.Writer, tokens []token.Token, src *Sources, withTrivia bool) error {
	n := 0
	for _, tok := range tokens {
		if tok.IsTrivia() && !withTrivia {
			continue
		}
		n++
		line := fmt.Sprintf("%3d: %-15s", n, tok.Kind.String())
		if tok.Text != "" {
			line += fmt.Sprintf(" %q", tok.Text)
		}
		if start, end, ok := src.resolve(tok.Span); ok {
			line += fmt.Sprintf(" at %d:%d-%d:%d", start.Line, start.Col, end.Line, end.Col)
		} else {
			line += fmt.Sprintf(" at %d-%d", tok.Span.Start, tok.Span.End)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// FormatTokensJSON writes the tokens as a JSON array.
func FormatTokensJSON(w io.Writer, tokens []token.Token, withTrivia bool) error {
	output := make([]TokenOutput, 0, len(tokens))
	for _, tok := range tokens {
		if tok.IsTrivia() && !withTrivia {
			continue
		}
		output = append(output, TokenOutput{
			Kind: tok.Kind.String(),
			Text: tok.Text,
			Span: tok.Span,
		})
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
