package driver

import (
	"context"

	"perlsense/internal/diag"
	"perlsense/internal/lexer"
	"perlsense/internal/source"
	"perlsense/internal/token"
)

type TokenizeResult struct {
	FileSet *source.FileSet
	File    source.FileID
	Path    string
	Text    string
	Tokens  []token.Token
	Bag     *diag.Bag
}

func Tokenize(ctx context.Context, path string, maxDiagnostics int) (*TokenizeResult, error) {
	text, err := LoadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return TokenizeText(path, text, maxDiagnostics), nil
}

// TokenizeText lexes text as the content of path. Lexical errors become
// error tokens in the stream and diagnostics in the bag.
func TokenizeText(path, text string, maxDiagnostics int) *TokenizeResult {
	fs := source.NewFileSet()
	fileID := fs.Intern(path)
	bag := diag.NewBag(maxDiagnostics)

	s := lexer.Lex(fileID, text, 0, lexer.Initial(), lexer.Options{
		Reporter: &diag.BagReporter{Bag: bag},
	})
	return &TokenizeResult{
		FileSet: fs,
		File:    fileID,
		Path:    fs.Path(fileID),
		Text:    text,
		Tokens:  s.Tokens,
		Bag:     bag,
	}
}
