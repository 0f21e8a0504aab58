package driver

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for a burst of events to
// settle before handing it over.
const DefaultDebounce = 150 * time.Millisecond

// Batch is a settled set of file changes. A path appears in at most one of
// the lists; the last event seen for it decides which.
type Batch struct {
	Changed []string
	Removed []string
}

func (b Batch) Empty() bool { return len(b.Changed) == 0 && len(b.Removed) == 0 }

// Watcher follows a directory tree and reports debounced batches of changed
// source files.
type Watcher struct {
	root     string
	fsw      *fsnotify.Watcher
	debounce time.Duration
	log      *slog.Logger

	// Accept filters files; nil accepts everything.
	Accept func(path string) bool
	// SkipDir reports directories not to watch; nil watches all.
	SkipDir func(path string) bool
}

func NewWatcher(root string, debounce time.Duration, log *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Watcher{root: root, fsw: fsw, debounce: debounce, log: log}, nil
}

// Run watches until ctx is done, calling handle from this goroutine with
// each batch. Pending changes are flushed before Run returns.
func (w *Watcher) Run(ctx context.Context, handle func(Batch)) error {
	defer w.fsw.Close()
	if err := w.addTree(w.root); err != nil {
		return err
	}

	pending := make(map[string]fsnotify.Op)
	var timer *time.Timer
	var timerC <-chan time.Time
	flush := func() {
		if b := settle(pending); !b.Empty() {
			handle(b)
		}
		clear(pending)
		timerC = nil
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				flush()
				return nil
			}
			if !w.note(ev, pending) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C
		case err, ok := <-w.fsw.Errors:
			if !ok {
				flush()
				return nil
			}
			w.log.Warn("watch error", "err", err)
		case <-timerC:
			flush()
		}
	}
}

// note records ev and reports whether it concerns a source file.
func (w *Watcher) note(ev fsnotify.Event, pending map[string]fsnotify.Op) bool {
	if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write|fsnotify.Create) {
		return false
	}
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			// New directories are watched from here on; files created inside
			// before the watch was added are picked up by the walk.
			if err := w.addTree(ev.Name); err != nil {
				w.log.Warn("watch dir", "path", ev.Name, "err", err)
			}
			return w.noteTree(ev.Name, pending)
		}
	}
	if w.Accept != nil && !w.Accept(ev.Name) {
		return false
	}
	pending[ev.Name] = ev.Op
	return true
}

func (w *Watcher) noteTree(dir string, pending map[string]fsnotify.Op) bool {
	found := false
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if w.Accept == nil || w.Accept(path) {
			pending[path] = fsnotify.Create
			found = true
		}
		return nil
	})
	return found
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.SkipDir != nil && w.SkipDir(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	})
}

// settle turns the last op per path into a batch. Renames count as
// removals: the new name arrives as its own Create.
func settle(pending map[string]fsnotify.Op) Batch {
	var b Batch
	for path, op := range pending {
		if op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename) {
			b.Removed = append(b.Removed, path)
		} else {
			b.Changed = append(b.Changed, path)
		}
	}
	slices.Sort(b.Changed)
	slices.Sort(b.Removed)
	return b
}
