package source

import (
	"fmt"

	"fortio.org/safecast"
)

// Span is a half-open byte range [Start, End) inside one file.
type Span struct {
	File  FileID
	Start uint32 // inclusive
	End   uint32 // exclusive
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Cover returns the smallest span containing both s and other.
func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

// Contains reports whether off lies in [Start, End).
func (s Span) Contains(off uint32) bool {
	return off >= s.Start && off < s.End
}

// ContainsSpan reports whether other lies entirely inside s.
func (s Span) ContainsSpan(other Span) bool {
	return other.Start >= s.Start && other.End <= s.End
}

// Overlaps reports whether the two spans share at least one byte.
func (s Span) Overlaps(other Span) bool {
	return s.Start < other.End && other.Start < s.End
}

// Shift moves both ends by delta bytes. A shift below zero is an invariant
// violation and panics.
func (s Span) Shift(delta int) Span {
	if delta == 0 {
		return s
	}
	return Span{File: s.File, Start: shiftOffset(s.Start, delta), End: shiftOffset(s.End, delta)}
}

func shiftOffset(off uint32, delta int) uint32 {
	v, err := safecast.Conv[uint32](int64(off) + int64(delta))
	if err != nil {
		panic(fmt.Errorf("span shift out of range (%d%+d): %w", off, delta, err))
	}
	return v
}
