package workspace

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"perlsense/internal/index"
	"perlsense/internal/source"
	"perlsense/internal/symbols"
)

// Loader reads the content of a file. driver.LoadFile is the usual one.
type Loader func(ctx context.Context, path string) (string, error)

// IndexFiles indexes files in parallel. Open documents are skipped: their
// buffers are newer than the disk.
//
// Cancelling ctx stops scheduling new files; files already being parsed
// still commit, so the index stays consistent. A cancelled run, or one
// where some file failed to load, leaves the workspace Degraded and
// returns the joined errors.
func (w *Workspace) IndexFiles(ctx context.Context, files []string, load Loader) error {
	return w.IndexFilesWithProgress(ctx, files, load, w.opts.progress)
}

// IndexFilesWithProgress is IndexFiles reporting to progress instead of the
// callback set with WithProgress.
func (w *Workspace) IndexFilesWithProgress(ctx context.Context, files []string, load Loader, progress Progress) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	w.state = StateScanning
	todo := make([]string, 0, len(files))
	for _, p := range files {
		p = source.NormalizePath(p)
		if _, open := w.docs[p]; !open {
			todo = append(todo, p)
		}
	}
	w.mu.Unlock()

	slices.Sort(todo)
	todo = slices.Compact(todo)
	w.setState(StateIndexing)
	w.log.Info("indexing", "files", len(todo), "jobs", w.opts.jobs)

	var (
		mu   sync.Mutex
		errs []error
		done int
	)
	fail := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	var g errgroup.Group
	g.SetLimit(w.opts.jobs)
	cancelled := false
	for _, path := range todo {
		if ctx.Err() != nil {
			cancelled = true
			break
		}
		g.Go(func() error {
			if err := w.indexOne(ctx, path, load); err != nil {
				w.log.Warn("index failed", "path", path, "err", err)
				fail(err)
			}
			mu.Lock()
			done++
			n := done
			mu.Unlock()
			if progress != nil {
				progress(n, len(todo), path)
			}
			return nil
		})
	}
	_ = g.Wait()

	if cancelled {
		fail(fmt.Errorf("indexing: %w", context.Cause(ctx)))
	}
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if len(errs) > 0 {
		w.setState(StateDegraded)
		w.log.Warn("indexing degraded", "failed", len(errs), "cancelled", cancelled)
		return errors.Join(errs...)
	}
	w.setState(StateReady)
	w.log.Info("indexing done", "files", len(todo), "symbols", w.idx.Stats().Symbols)
	return nil
}

// Reindex reloads one file from disk, unless it is open.
func (w *Workspace) Reindex(ctx context.Context, path string, load Loader) error {
	path = source.NormalizePath(path)
	if _, open := w.Document(path); open {
		return nil
	}
	return w.indexOne(ctx, path, load)
}

// Forget drops a deleted file from the index, unless it is open.
func (w *Workspace) Forget(path string) bool {
	path = source.NormalizePath(path)
	if _, open := w.Document(path); open {
		return false
	}
	return w.idx.RemoveFile(path)
}

func (w *Workspace) indexOne(ctx context.Context, path string, load Loader) error {
	text, err := load(ctx, path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	sum := index.Hash(text)
	if old, ok := w.idx.Digest(path); ok && old == sum {
		return nil
	}
	file := w.files.Intern(path)
	table := w.cachedTable(path, sum, file, text)

	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return ErrClosed
	}
	// A document opened meanwhile wins over the disk content.
	if _, open := w.docs[path]; open {
		return nil
	}
	_, err = w.idx.UpdateFile(path, sum, table)
	return err
}

func (w *Workspace) cachedTable(path string, sum index.Digest, file source.FileID, text string) *symbols.Table {
	c := w.opts.cache
	if c == nil {
		_, table := w.analyze(file, text)
		return table
	}
	table, ok, err := c.Get(sum, file)
	if err != nil {
		w.log.Warn("cache read failed", "path", path, "err", err)
	}
	if ok {
		w.log.Debug("cache hit", "path", path)
		return table
	}
	_, table = w.analyze(file, text)
	if err := c.Put(sum, table); err != nil {
		w.log.Warn("cache write failed", "path", path, "err", err)
	}
	return table
}
