package project

import (
	"bufio"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Discover lists the files of the workspace under root that the
// configuration selects, sorted. Extensionless files are taken when their
// first line is a perl shebang.
func Discover(ctx context.Context, root string, cfg WorkspaceConfig) ([]string, error) {
	m := NewMatcher(root, cfg)
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && m.SkipDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if m.Accept(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}

// Matcher applies the workspace selection to single paths, for callers
// that learn about files one at a time.
type Matcher struct {
	root string
	cfg  WorkspaceConfig
	exts []string
}

func NewMatcher(root string, cfg WorkspaceConfig) *Matcher {
	exts := cfg.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	return &Matcher{root: root, cfg: cfg, exts: exts}
}

func (m *Matcher) rel(path string) (string, bool) {
	rel, err := filepath.Rel(m.root, path)
	if err != nil || !filepath.IsLocal(rel) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// SkipDir reports whether the directory at path is excluded.
func (m *Matcher) SkipDir(path string) bool {
	rel, ok := m.rel(path)
	if !ok {
		return true
	}
	return matchAny(m.cfg.Exclude, rel, filepath.Base(path))
}

// Accept reports whether the file at path belongs to the workspace. An
// extensionless file that no longer exists is accepted, so its removal
// can still be noticed.
func (m *Matcher) Accept(path string) bool {
	rel, ok := m.rel(path)
	if !ok {
		return false
	}
	base := filepath.Base(path)
	if matchAny(m.cfg.Exclude, rel, base) {
		return false
	}
	if len(m.cfg.Include) > 0 && !matchAny(m.cfg.Include, rel, base) {
		return false
	}
	ext := filepath.Ext(path)
	if slices.Contains(m.exts, ext) {
		return true
	}
	if ext != "" {
		return false
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return true
	}
	return perlShebang(path)
}

// matchAny matches a pattern against the slash-separated relative path, its
// base name, or any leading directory of it.
func matchAny(patterns []string, rel, base string) bool {
	for _, pat := range patterns {
		if ok, _ := filepath.Match(pat, base); ok {
			return true
		}
		if ok, _ := filepath.Match(pat, rel); ok {
			return true
		}
		if strings.HasPrefix(rel, strings.TrimSuffix(pat, "/")+"/") {
			return true
		}
	}
	return false
}

func perlShebang(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return strings.HasPrefix(line, "#!") && strings.Contains(line, "perl")
}
