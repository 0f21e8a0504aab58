package source

import (
	"errors"
	"fmt"

	"fortio.org/safecast"
)

// ErrEditRange is returned when an edit does not fit the buffer it is applied to.
var ErrEditRange = errors.New("edit range out of bounds")

// Edit replaces the old bytes [Start, End) with NewText.
type Edit struct {
	Start   uint32
	End     uint32
	NewText string
}

// Insert builds an edit that inserts text at off.
func Insert(off uint32, text string) Edit {
	return Edit{Start: off, End: off, NewText: text}
}

// Delete builds an edit that removes [start, end).
func Delete(start, end uint32) Edit {
	return Edit{Start: start, End: end}
}

// Delta is the change in buffer length caused by the edit.
func (e Edit) Delta() int {
	return len(e.NewText) - int(e.End-e.Start)
}

// NewEnd is the end of the inserted text in the edited buffer.
func (e Edit) NewEnd() uint32 {
	return e.Start + toU32(len(e.NewText))
}

// Validate checks the edit against a buffer of length n.
func (e Edit) Validate(n int) error {
	if e.Start > e.End || int(e.End) > n {
		return fmt.Errorf("%w: [%d,%d) in buffer of %d bytes", ErrEditRange, e.Start, e.End, n)
	}
	return nil
}

// Apply returns text with the edit applied.
func (e Edit) Apply(text string) (string, error) {
	if err := e.Validate(len(text)); err != nil {
		return "", err
	}
	return text[:e.Start] + e.NewText + text[e.End:], nil
}

func toU32(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("offset overflow: %w", err))
	}
	return v
}

// ToU32 converts a byte length or offset to the span representation.
func ToU32(n int) uint32 {
	return toU32(n)
}
