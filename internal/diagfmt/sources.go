package diagfmt

import (
	"path/filepath"
	"strings"

	"perlsense/internal/source"
)

// Sources gives formatters the paths and texts of the files diagnostics
// point into. Files without text still print their location.
type Sources struct {
	fs    *source.FileSet
	texts map[source.FileID]*source.PositionMap
}

func NewSources(fs *source.FileSet) *Sources {
	return &Sources{fs: fs, texts: make(map[source.FileID]*source.PositionMap)}
}

// Add registers the text of file.
func (s *Sources) Add(file source.FileID, text string) *Sources {
	s.texts[file] = source.NewPositionMap(text)
	return s
}

func (s *Sources) lines(file source.FileID) (*source.PositionMap, bool) {
	m, ok := s.texts[file]
	return m, ok
}

// Position is a 1-based line and column; columns count UTF-16 units as
// editors do.
type Position struct {
	Line uint32
	Col  uint32
}

func (s *Sources) resolve(sp source.Span) (Position, Position, bool) {
	m, ok := s.texts[sp.File]
	if !ok {
		return Position{}, Position{}, false
	}
	start, end := m.SpanToRange(sp)
	return Position{start.Line + 1, start.Character + 1}, Position{end.Line + 1, end.Character + 1}, true
}

func (s *Sources) path(file source.FileID, mode PathMode, base string) string {
	p := ""
	if s.fs != nil {
		p = s.fs.Path(file)
	}
	if p == "" {
		return "<unknown>"
	}
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(filepath.FromSlash(p)); err == nil {
			return filepath.ToSlash(abs)
		}
	case PathModeRelative:
		if rel, ok := relative(p, base); ok {
			return rel
		}
	case PathModeBasename:
		return filepath.Base(filepath.FromSlash(p))
	case PathModeAuto:
		if rel, ok := relative(p, base); ok && !strings.HasPrefix(rel, "../") {
			return rel
		}
	}
	return p
}

func relative(p, base string) (string, bool) {
	if base == "" {
		return p, !filepath.IsAbs(filepath.FromSlash(p))
	}
	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", false
	}
	absPath, err := filepath.Abs(filepath.FromSlash(p))
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(absBase, absPath)
	if err != nil {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
