package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionMap_ByteToPosition(t *testing.T) {
	text := "my $x;\nmy $é = \"😀\";\n\nend"
	m := NewPositionMap(text)
	require.Equal(t, 4, m.LineCount())

	tests := []struct {
		name string
		off  uint32
		want Position
	}{
		{"start", 0, Position{0, 0}},
		{"end of first line", 6, Position{0, 6}},
		{"second line start", 7, Position{1, 0}},
		{"after two-byte rune", 7 + 6, Position{1, 5}},
		{"after non-bmp rune", 7 + 10 + 4, Position{1, 11}},
		{"empty line", 24, Position{2, 0}},
		{"eof", uint32(len(text)), Position{3, 3}},
		{"past eof clamps", 1000, Position{3, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.ByteToPosition(tt.off))
		})
	}
}

func TestPositionMap_PositionToByteClamps(t *testing.T) {
	m := NewPositionMap("ab\n😀x\n")
	assert.Equal(t, uint32(2), m.PositionToByte(Position{0, 50}), "column past line end")
	assert.Equal(t, uint32(3), m.PositionToByte(Position{1, 1}), "inside surrogate pair")
	assert.Equal(t, uint32(7), m.PositionToByte(Position{1, 2}))
	assert.Equal(t, uint32(9), m.PositionToByte(Position{9, 0}), "line past end")
}

func TestPositionMap_RoundTrip(t *testing.T) {
	texts := []string{
		"",
		"\n\n",
		"sub f { 1 }\n",
		"my $s = 'Ωmega';\n# 𝄞 clef\nprint $s;",
		"a\r\nb\r\n",
	}
	for _, text := range texts {
		m := NewPositionMap(text)
		for off := 0; off <= len(text); off++ {
			if off < len(text) && !isRuneStart(text[off]) {
				continue
			}
			pos := m.ByteToPosition(uint32(off))
			require.Equal(t, uint32(off), m.PositionToByte(pos), "text %q offset %d pos %+v", text, off, pos)
		}
	}
}

func TestPositionMap_ApplyMatchesRebuild(t *testing.T) {
	base := "package Foo;\nsub bar {\n  my $x = '😀';\n}\n1;\n"
	edits := []Edit{
		Insert(0, "# hi\n"),
		Insert(uint32(len(base)), "\n__END__\n"),
		Delete(13, 23),
		{Start: 20, End: 30, NewText: "ü\n\n\nv"},
		{Start: 5, End: 5, NewText: ""},
		{Start: 0, End: uint32(len(base)), NewText: "x"},
	}
	for i, e := range edits {
		m := NewPositionMap(base)
		require.NoError(t, m.Apply(e))
		want, err := e.Apply(base)
		require.NoError(t, err)
		fresh := NewPositionMap(want)
		assert.Equal(t, fresh.lineStarts, m.lineStarts, "edit %d line starts", i)
		assert.Equal(t, fresh.ascii, m.ascii, "edit %d ascii flags", i)
		assert.Equal(t, want, m.Text())
	}
}

func TestPositionMap_ApplyRejectsBadRange(t *testing.T) {
	m := NewPositionMap("abc")
	err := m.Apply(Edit{Start: 2, End: 10})
	require.ErrorIs(t, err, ErrEditRange)
	assert.Equal(t, "abc", m.Text())
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

func TestPositionMap_LineText(t *testing.T) {
	m := NewPositionMap("one\ntwo\n")
	assert.Equal(t, "one", m.LineText(0))
	assert.Equal(t, "two", m.LineText(1))
	assert.Equal(t, "", m.LineText(2))
	assert.Equal(t, "", m.LineText(9))
}
