package diag

import (
	"fmt"

	"perlsense/internal/source"
)

// InvariantError reports a broken tree or index invariant. It is the only
// fatal error class; it carries enough context to reproduce the failure.
type InvariantError struct {
	File source.FileID
	Span source.Span
	Op   string
	Msg  string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violation in %s (file %d, bytes %d-%d): %s", e.Op, e.File, e.Span.Start, e.Span.End, e.Msg)
}

// Invariantf builds an InvariantError.
func Invariantf(op string, span source.Span, format string, args ...any) *InvariantError {
	return &InvariantError{File: span.File, Span: span, Op: op, Msg: fmt.Sprintf(format, args...)}
}
