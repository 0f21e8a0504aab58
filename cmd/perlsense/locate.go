package main

import (
	"context"
	"fmt"
	"path/filepath"

	"perlsense/internal/driver"
	"perlsense/internal/source"
)

// locator turns byte offsets of indexed files back into line:col, reading
// each file at most once.
type locator struct {
	ctx  context.Context
	base string
	maps map[string]*source.PositionMap
}

func newLocator(ctx context.Context, base string) *locator {
	return &locator{ctx: ctx, base: base, maps: make(map[string]*source.PositionMap)}
}

func (l *locator) position(path string, off uint32) (source.Position, bool) {
	m, ok := l.maps[path]
	if !ok {
		text, err := driver.LoadFile(l.ctx, path)
		if err != nil {
			l.maps[path] = nil
			return source.Position{}, false
		}
		m = source.NewPositionMap(text)
		l.maps[path] = m
	}
	if m == nil {
		return source.Position{}, false
	}
	return m.ByteToPosition(off), true
}

// format renders path:line:col with 1-based numbers, relative to the base
// directory when possible.
func (l *locator) format(path string, off uint32) string {
	shown := path
	if l.base != "" {
		if rel, err := filepath.Rel(l.base, filepath.FromSlash(path)); err == nil && filepath.IsLocal(rel) {
			shown = filepath.ToSlash(rel)
		}
	}
	pos, ok := l.position(path, off)
	if !ok {
		return fmt.Sprintf("%s@%d", shown, off)
	}
	return fmt.Sprintf("%s:%d:%d", shown, pos.Line+1, pos.Character+1)
}
