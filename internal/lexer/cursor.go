package lexer

import (
	"fmt"

	"fortio.org/safecast"

	"perlsense/internal/source"
)

// Cursor is a byte position inside the text being lexed.
type Cursor struct {
	File source.FileID
	Text string
	Off  uint32
	// Limit is the exclusive upper bound for Off.
	Limit uint32
}

// NewCursor creates a cursor positioned at off.
func NewCursor(file source.FileID, text string, off uint32) Cursor {
	limit, err := safecast.Conv[uint32](len(text))
	if err != nil {
		panic(fmt.Errorf("len text overflow: %w", err))
	}
	return Cursor{File: file, Text: text, Off: off, Limit: limit}
}

// EOF reports whether the cursor reached the end of text.
func (c *Cursor) EOF() bool {
	return c.Off >= c.Limit
}

// Peek returns the current byte or 0 at EOF.
func (c *Cursor) Peek() byte {
	if c.EOF() {
		return 0
	}
	return c.Text[c.Off]
}

// PeekAt returns the byte n positions ahead or 0 past EOF.
func (c *Cursor) PeekAt(n uint32) byte {
	if c.Off+n >= c.Limit {
		return 0
	}
	return c.Text[c.Off+n]
}

// Bump moves forward one byte and returns it.
func (c *Cursor) Bump() byte {
	if c.EOF() {
		return 0
	}
	b := c.Text[c.Off]
	c.Off++
	return b
}

// BumpN moves forward n bytes, stopping at EOF.
func (c *Cursor) BumpN(n uint32) {
	c.Off += n
	if c.Off > c.Limit {
		c.Off = c.Limit
	}
}

// Eat consumes the next byte if it matches b.
func (c *Cursor) Eat(b byte) bool {
	if !c.EOF() && c.Text[c.Off] == b {
		c.Off++
		return true
	}
	return false
}

// HasPrefix reports whether the text at the cursor starts with s.
func (c *Cursor) HasPrefix(s string) bool {
	end := int(c.Off) + len(s)
	return end <= int(c.Limit) && c.Text[c.Off:end] == s
}

// ToEOF moves the cursor to the end of text.
func (c *Cursor) ToEOF() {
	c.Off = c.Limit
}

// Mark records a position to build spans from.
type Mark uint32

// Mark saves the current position.
func (c *Cursor) Mark() Mark {
	return Mark(c.Off)
}

// SpanFrom returns the span from m to the current position.
func (c *Cursor) SpanFrom(m Mark) source.Span {
	return source.Span{File: c.File, Start: uint32(m), End: c.Off}
}

// Reset moves the cursor back to m.
func (c *Cursor) Reset(m Mark) {
	c.Off = uint32(m)
}

// AtLineStart reports whether the cursor sits at the beginning of a line.
func (c *Cursor) AtLineStart() bool {
	return c.Off == 0 || c.Text[c.Off-1] == '\n'
}
