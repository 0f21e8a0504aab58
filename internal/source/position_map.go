package source

import (
	"sort"
	"unicode/utf8"
)

// PositionMap translates between byte offsets and line/UTF-16 positions for
// one buffer. Characters outside the BMP count as two UTF-16 units.
type PositionMap struct {
	text       string
	lineStarts []uint32 // sorted, lineStarts[0] == 0
	ascii      []bool   // per line: column in bytes equals column in UTF-16 units
}

// NewPositionMap indexes text.
func NewPositionMap(text string) *PositionMap {
	m := &PositionMap{text: text, lineStarts: buildLineStarts(text)}
	m.ascii = make([]bool, len(m.lineStarts))
	for i := range m.lineStarts {
		m.ascii[i] = isASCII(m.lineText(i))
	}
	return m
}

// Text returns the buffer the map describes.
func (m *PositionMap) Text() string { return m.text }

// LineCount returns the number of lines; an empty buffer has one line.
func (m *PositionMap) LineCount() int { return len(m.lineStarts) }

// LineStart returns the byte offset of the start of line, clamped to EOF.
func (m *PositionMap) LineStart(line uint32) uint32 {
	if int(line) >= len(m.lineStarts) {
		return toU32(len(m.text))
	}
	return m.lineStarts[line]
}

// lineEnd is the offset of the line's '\n' (or EOF).
func (m *PositionMap) lineEnd(line int) uint32 {
	if line+1 < len(m.lineStarts) {
		return m.lineStarts[line+1] - 1
	}
	return toU32(len(m.text))
}

func (m *PositionMap) lineText(line int) string {
	return m.text[m.lineStarts[line]:m.lineEnd(line)]
}

// LineText returns line without its newline; lines past EOF are empty.
func (m *PositionMap) LineText(line uint32) string {
	if int(line) >= len(m.lineStarts) {
		return ""
	}
	return m.lineText(int(line))
}

// lineOf returns the index of the line containing off.
func (m *PositionMap) lineOf(off uint32) int {
	return sort.Search(len(m.lineStarts), func(i int) bool { return m.lineStarts[i] > off }) - 1
}

// ByteToPosition converts a byte offset. Offsets past EOF clamp to EOF; an
// offset inside a multi-byte character maps to that character's column.
func (m *PositionMap) ByteToPosition(off uint32) Position {
	if int(off) > len(m.text) {
		off = toU32(len(m.text))
	}
	line := m.lineOf(off)
	start := m.lineStarts[line]
	if m.ascii[line] {
		return Position{Line: toU32(line), Character: off - start}
	}
	units := uint32(0)
	i := start
	for i < off {
		r, size := utf8.DecodeRuneInString(m.text[i:])
		if i+toU32(size) > off {
			break
		}
		units += utf16Len(r)
		i += toU32(size)
	}
	return Position{Line: toU32(line), Character: units}
}

// PositionToByte converts a position. A line past the end maps to EOF, a
// column past the line end maps to the line end, and a column that splits a
// surrogate pair maps to the start of the character.
func (m *PositionMap) PositionToByte(pos Position) uint32 {
	if int(pos.Line) >= len(m.lineStarts) {
		return toU32(len(m.text))
	}
	line := int(pos.Line)
	start, end := m.lineStarts[line], m.lineEnd(line)
	if m.ascii[line] {
		if pos.Character > end-start {
			return end
		}
		return start + pos.Character
	}
	units := uint32(0)
	i := start
	for i < end {
		r, size := utf8.DecodeRuneInString(m.text[i:end])
		need := utf16Len(r)
		if units+need > pos.Character {
			break
		}
		units += need
		i += toU32(size)
	}
	return i
}

// SpanToRange converts a byte span into a start and end position.
func (m *PositionMap) SpanToRange(s Span) (Position, Position) {
	return m.ByteToPosition(s.Start), m.ByteToPosition(s.End)
}

// Apply updates the map for an edit. Lines before the edit keep their
// entries, lines touched by it are rebuilt and later line starts are shifted.
func (m *PositionMap) Apply(e Edit) error {
	newText, err := e.Apply(m.text)
	if err != nil {
		return err
	}
	first := m.lineOf(e.Start)
	last := m.lineOf(e.End)
	delta := e.Delta()

	starts := make([]uint32, 0, len(m.lineStarts)+8)
	starts = append(starts, m.lineStarts[:first+1]...)
	for i := 0; i < len(e.NewText); i++ {
		if e.NewText[i] == '\n' {
			starts = append(starts, e.Start+toU32(i+1))
		}
	}
	rebuiltTo := len(starts) // lines [first, rebuiltTo) need a fresh ascii flag
	for _, s := range m.lineStarts[last+1:] {
		starts = append(starts, shiftOffset(s, delta))
	}

	ascii := make([]bool, len(starts))
	copy(ascii, m.ascii[:first])
	copy(ascii[rebuiltTo:], m.ascii[last+1:])

	m.text = newText
	m.lineStarts = starts
	m.ascii = ascii
	for i := first; i < rebuiltTo; i++ {
		m.ascii[i] = isASCII(m.lineText(i))
	}
	return nil
}

func utf16Len(r rune) uint32 {
	if r > 0xFFFF {
		return 2
	}
	return 1
}
