// Package workspace ties buffers to the index: it owns the open documents,
// keeps their trees current through incremental reparsing, and feeds every
// new symbol table to the workspace index.
package workspace

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"perlsense/internal/cst"
	"perlsense/internal/incremental"
	"perlsense/internal/index"
	"perlsense/internal/parser"
	"perlsense/internal/source"
	"perlsense/internal/symbols"
)

var (
	ErrNotOpen = errors.New("workspace: document not open")
	ErrClosed  = errors.New("workspace: shut down")
)

// Document is an open buffer. Edit updates it in place: the tree and
// position map of a document are only valid until its next edit.
type Document struct {
	Path      string
	File      source.FileID
	Version   int
	Text      string
	Tree      *cst.Tree
	Positions *source.PositionMap
	Symbols   *symbols.Table
}

// Workspace is safe for concurrent use. Edits to one workspace are
// serialised.
type Workspace struct {
	id    uuid.UUID
	files *source.FileSet
	idx   *index.Index
	opts  options
	log   *slog.Logger

	mu     sync.RWMutex
	docs   map[string]*Document
	state  State
	closed bool
}

// New creates an empty workspace with its own index.
func New(opts ...Option) *Workspace {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.jobs <= 0 {
		o.jobs = runtime.GOMAXPROCS(0)
	}
	id := uuid.New()
	log := o.logger.With("workspace", id.String())
	idxOpts := []index.Option{index.WithLogger(log), index.WithMaxSymbols(o.maxSymbols)}
	if o.metrics != nil {
		idxOpts = append(idxOpts, index.WithMetrics(o.metrics))
	}
	return &Workspace{
		id:    id,
		files: source.NewFileSet(),
		idx:   index.New(idxOpts...),
		opts:  o,
		log:   log,
		docs:  make(map[string]*Document),
	}
}

func (w *Workspace) ID() uuid.UUID { return w.id }

func (w *Workspace) Index() *index.Index { return w.idx }

func (w *Workspace) Files() *source.FileSet { return w.files }

func (w *Workspace) State() State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

func (w *Workspace) setState(s State) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
	w.log.Debug("state changed", "state", s.String())
}

// Document returns the open document for path.
func (w *Workspace) Document(path string) (*Document, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	doc, ok := w.docs[source.NormalizePath(path)]
	return doc, ok
}

// Open parses text as the content of path and indexes it. Opening a path
// again replaces the document.
func (w *Workspace) Open(path, text string) (*Document, error) {
	path = source.NormalizePath(path)
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, ErrClosed
	}
	file := w.files.Intern(path)
	tree, table := w.analyze(file, text)
	doc := &Document{
		Path:      path,
		File:      file,
		Version:   1,
		Text:      text,
		Tree:      tree,
		Positions: source.NewPositionMap(text),
		Symbols:   table,
	}
	if _, err := w.idx.UpdateFile(path, index.Hash(text), table); err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	w.docs[path] = doc
	w.log.Debug("opened document", "path", path, "bytes", len(text), "symbols", table.Len())
	return doc, nil
}

// Edit applies edits to an open document in order, each against the text
// the previous one produced, then re-extracts its symbols and updates the
// index once. When only the index update fails the edited document is
// returned with the error, and the index keeps the previous symbols.
func (w *Workspace) Edit(path string, edits ...source.Edit) (*Document, error) {
	path = source.NormalizePath(path)
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, ErrClosed
	}
	doc := w.docs[path]
	if doc == nil {
		return nil, fmt.Errorf("edit %s: %w", path, ErrNotOpen)
	}
	ropts := incremental.Options{Parser: w.opts.parser, Check: w.opts.check}
	for i, e := range edits {
		if err := e.Validate(len(doc.Text)); err != nil {
			return nil, fmt.Errorf("edit %s #%d: %w", path, i, err)
		}
		tree, res, err := incremental.Reparse(doc.Tree, e, ropts)
		if err != nil {
			// The old tree may be partly consumed; start over from the text.
			w.reload(doc)
			return nil, fmt.Errorf("edit %s #%d: %w", path, i, err)
		}
		if err := doc.Positions.Apply(e); err != nil {
			doc.Positions = source.NewPositionMap(tree.Text)
		}
		doc.Tree = tree
		doc.Text = tree.Text
		w.reparsed(res)
	}
	doc.Version++
	doc.Symbols = symbols.Extract(doc.Tree, doc.File)
	if _, err := w.idx.UpdateFile(path, index.Hash(doc.Text), doc.Symbols); err != nil {
		// The document already holds the edit; only the index lags behind.
		w.log.Warn("index kept previous symbols", "path", path, "version", doc.Version, "err", err)
		return doc, fmt.Errorf("edit %s: %w", path, err)
	}
	return doc, nil
}

func (w *Workspace) reload(doc *Document) {
	doc.Tree, doc.Symbols = w.analyze(doc.File, doc.Text)
	doc.Positions = source.NewPositionMap(doc.Text)
}

func (w *Workspace) reparsed(res incremental.Result) {
	mode := "region"
	switch {
	case res.FastPath:
		mode = "fast"
	case res.FullReparse:
		mode = "full"
	}
	w.log.Debug("reparsed", "mode", mode, "reused", res.Reused, "start", res.Reparsed.Start, "end", res.Reparsed.End)
	if w.opts.metrics != nil {
		w.opts.metrics.Reparsed(mode)
	}
}

// Close forgets the open document. Its symbols stay indexed.
func (w *Workspace) Close(path string) error {
	path = source.NormalizePath(path)
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if _, ok := w.docs[path]; !ok {
		return fmt.Errorf("close %s: %w", path, ErrNotOpen)
	}
	delete(w.docs, path)
	return nil
}

// Shutdown drops every document and empties the index. Every later call
// fails with ErrClosed.
func (w *Workspace) Shutdown() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	clear(w.docs)
	w.idx.Clear()
	w.state = StateIdle
	w.log.Debug("workspace shut down")
}

// analyze parses text from scratch and extracts its symbols.
func (w *Workspace) analyze(file source.FileID, text string) (*cst.Tree, *symbols.Table) {
	start := time.Now()
	tree := parser.ParseText(file, text, w.opts.parser)
	if w.opts.metrics != nil {
		w.opts.metrics.ParseDone(time.Since(start))
	}
	return tree, symbols.Extract(tree, file)
}
