package index

import "errors"

var (
	ErrNilTable   = errors.New("index: nil symbol table")
	ErrMaxSymbols = errors.New("index: symbol limit exceeded")
	ErrEmptyPath  = errors.New("index: empty path")
)
