package workspace

import (
	"context"
	"errors"
	"io/fs"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perlsense/internal/cst"
	"perlsense/internal/index"
	"perlsense/internal/parser"
	"perlsense/internal/source"
	"perlsense/internal/symbols"
	"perlsense/internal/testkit"
)

func mapLoader(files map[string]string) Loader {
	return func(_ context.Context, path string) (string, error) {
		text, ok := files[path]
		if !ok {
			return "", fs.ErrNotExist
		}
		return text, nil
	}
}

type fakeMetrics struct {
	mu       sync.Mutex
	modes    map[string]int
	parses   int
	indexed  int
	lastSize int
}

func (m *fakeMetrics) FileIndexed(int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.indexed++
}

func (m *fakeMetrics) IndexSize(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSize = n
}

func (m *fakeMetrics) ParseDone(time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.parses++
}

func (m *fakeMetrics) Reparsed(mode string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.modes == nil {
		m.modes = make(map[string]int)
	}
	m.modes[mode]++
}

func TestOpenIndexesDocument(t *testing.T) {
	w := New()
	doc, err := w.Open("lib/Foo.pm", "package Foo; sub bar { 1 }")
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Version)
	assert.NotEqual(t, "", w.ID().String())

	got, ok := w.Document("lib/./Foo.pm")
	require.True(t, ok)
	assert.Same(t, doc, got)

	hits := w.Index().LookupBare("bar", "lib/Foo.pm")
	require.Len(t, hits, 1)
	assert.Equal(t, "Foo::bar", hits[0].QualifiedName)
}

func TestEditUpdatesTreeAndIndex(t *testing.T) {
	m := &fakeMetrics{}
	w := New(WithChecks(true), WithMetrics(m))
	_, err := w.Open("a.pl", "sub old { 1 }\nmy $n = 12;\n")
	require.NoError(t, err)

	doc, err := w.Edit("a.pl",
		source.Edit{Start: 4, End: 7, NewText: "fresh"},
		source.Insert(25, "3"),
	)
	require.NoError(t, err)
	assert.Equal(t, "sub fresh { 1 }\nmy $n = 132;\n", doc.Text)
	assert.Equal(t, 2, doc.Version)

	fresh := parser.ParseText(doc.File, doc.Text, parser.Options{})
	assert.Empty(t, cst.TreeDiff(doc.Tree, fresh))

	pos := doc.Positions.ByteToPosition(16)
	assert.Equal(t, uint32(1), pos.Line)
	assert.Equal(t, uint32(0), pos.Character)

	assert.Empty(t, w.Index().LookupBare("old", ""))
	assert.Len(t, w.Index().LookupQualified("main::fresh"), 1)
	assert.Equal(t, 1, m.modes["fast"])
	assert.Equal(t, 1, m.parses)
}

func TestEditErrors(t *testing.T) {
	w := New()
	_, err := w.Edit("missing.pl", source.Insert(0, "x"))
	require.ErrorIs(t, err, ErrNotOpen)

	_, err = w.Open("a.pl", "1;\n")
	require.NoError(t, err)
	_, err = w.Edit("a.pl", source.Delete(1, 10))
	require.ErrorIs(t, err, source.ErrEditRange)

	doc, ok := w.Document("a.pl")
	require.True(t, ok)
	assert.Equal(t, "1;\n", doc.Text)

	require.ErrorIs(t, w.Close("b.pl"), ErrNotOpen)
	require.NoError(t, w.Close("a.pl"))
	_, ok = w.Document("a.pl")
	assert.False(t, ok)
	assert.Len(t, w.Index().Files(), 1)
}

func TestEditReturnsDocumentWhenIndexRejects(t *testing.T) {
	w := New(WithMaxSymbols(2), WithLogger(testkit.Logger(t)))
	_, err := w.Open("a.pl", "sub a { 1 }\n")
	require.NoError(t, err)
	before, ok := w.Index().Digest("a.pl")
	require.True(t, ok)

	doc, err := w.Edit("a.pl", source.Insert(12, "sub b { 1 }\nsub c { 1 }\n"))
	require.ErrorIs(t, err, index.ErrMaxSymbols)
	require.NotNil(t, doc)
	assert.Equal(t, 2, doc.Version)
	assert.Equal(t, "sub a { 1 }\nsub b { 1 }\nsub c { 1 }\n", doc.Text)
	assert.Equal(t, 3, doc.Symbols.Len())

	after, ok := w.Index().Digest("a.pl")
	require.True(t, ok)
	assert.Equal(t, before, after)
	assert.Empty(t, w.Index().LookupBare("c", ""))
	assert.Len(t, w.Index().LookupBare("a", ""), 1)

	cur, ok := w.Document("a.pl")
	require.True(t, ok)
	assert.Same(t, doc, cur)
}

func TestTypingKeepsIndexCurrent(t *testing.T) {
	w := New(WithChecks(true), WithLogger(testkit.Logger(t)))
	_, err := w.Open("t.pl", "")
	require.NoError(t, err)

	src := "package T;\nsub greet {\n    my ($who) = @_;\n    return \"hi $who\";\n}\n"
	for i := range len(src) {
		_, err := w.Edit("t.pl", source.Insert(uint32(i), src[i:i+1]))
		require.NoError(t, err)
	}
	doc, _ := w.Document("t.pl")
	require.Equal(t, src, doc.Text)
	require.NoError(t, testkit.CheckTree(doc.Tree))
	require.NoError(t, testkit.CheckSymbols(doc.Symbols, doc.Text))
	assert.Empty(t, cst.TreeDiff(doc.Tree, parser.ParseText(doc.File, src, parser.Options{})))
	assert.Len(t, w.Index().LookupQualified("T::greet"), 1)
}

func TestIndexFiles(t *testing.T) {
	files := map[string]string{
		"lib/A.pm": "package A;\nsub a { 1 }\n1;\n",
		"lib/B.pm": "package B;\nuse A;\nsub b { A::a() }\n1;\n",
		"bin/run":  "use B;\nB::b();\n",
	}
	var calls []string
	var mu sync.Mutex
	w := New(WithJobs(2), WithProgress(func(done, total int, path string) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, path)
		assert.Equal(t, 3, total)
	}))
	require.Equal(t, StateIdle, w.State())

	err := w.IndexFiles(context.Background(), []string{"lib/A.pm", "lib/B.pm", "bin/run", "lib/A.pm"}, mapLoader(files))
	require.NoError(t, err)
	assert.Equal(t, StateReady, w.State())
	assert.Len(t, calls, 3)
	assert.Equal(t, []string{"bin/run", "lib/A.pm", "lib/B.pm"}, w.Index().Files())
	assert.Equal(t, []string{"lib/B.pm"}, w.Index().Dependents("A"))
}

func TestIndexFilesSkipsOpenDocuments(t *testing.T) {
	w := New()
	_, err := w.Open("a.pl", "sub from_buffer { 1 }\n")
	require.NoError(t, err)

	files := map[string]string{"a.pl": "sub from_disk { 1 }\n"}
	require.NoError(t, w.IndexFiles(context.Background(), []string{"a.pl"}, mapLoader(files)))
	assert.Len(t, w.Index().LookupBare("from_buffer", ""), 1)
	assert.Empty(t, w.Index().LookupBare("from_disk", ""))
}

func TestIndexFilesDegraded(t *testing.T) {
	w := New()
	files := map[string]string{"a.pl": "sub a { 1 }\n"}
	err := w.IndexFiles(context.Background(), []string{"a.pl", "gone.pl"}, mapLoader(files))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Equal(t, StateDegraded, w.State())
	assert.Len(t, w.Index().LookupBare("a", ""), 1)
}

func TestIndexFilesCancelled(t *testing.T) {
	w := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := w.IndexFiles(ctx, []string{"a.pl"}, mapLoader(map[string]string{"a.pl": "1;"}))
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateDegraded, w.State())
	assert.Empty(t, w.Index().Files())
}

func TestReindexAndForget(t *testing.T) {
	w := New()
	files := map[string]string{"a.pl": "sub one { 1 }\n"}
	load := mapLoader(files)
	require.NoError(t, w.Reindex(context.Background(), "a.pl", load))
	assert.Len(t, w.Index().LookupBare("one", ""), 1)

	files["a.pl"] = "sub two { 1 }\n"
	require.NoError(t, w.Reindex(context.Background(), "a.pl", load))
	assert.Empty(t, w.Index().LookupBare("one", ""))
	assert.Len(t, w.Index().LookupBare("two", ""), 1)

	assert.True(t, w.Forget("a.pl"))
	assert.Empty(t, w.Index().Files())
}

func TestShutdown(t *testing.T) {
	w := New()
	_, err := w.Open("a.pl", "sub a { 1 }\n")
	require.NoError(t, err)
	w.Shutdown()
	w.Shutdown()

	assert.Empty(t, w.Index().Files())
	_, err = w.Open("b.pl", "1;")
	require.ErrorIs(t, err, ErrClosed)
	_, err = w.Edit("a.pl", source.Insert(0, "x"))
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, w.Close("a.pl"), ErrClosed)
	require.ErrorIs(t, w.IndexFiles(context.Background(), nil, mapLoader(nil)), ErrClosed)
}

type memCache struct {
	mu     sync.Mutex
	tables map[[32]byte]*symbols.Table
	hits   int
}

func (c *memCache) Get(key [32]byte, file source.FileID) (*symbols.Table, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.tables[key]
	if !ok {
		return nil, false, nil
	}
	c.hits++
	return symbols.Restore(file, t.Scopes.Data(), t.All(), t.References, t.Dependencies), true, nil
}

func (c *memCache) Put(key [32]byte, table *symbols.Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tables == nil {
		c.tables = make(map[[32]byte]*symbols.Table)
	}
	c.tables[key] = table
	return nil
}

func TestIndexFilesUsesTableCache(t *testing.T) {
	cache := &memCache{}
	m := &fakeMetrics{}
	files := map[string]string{"a.pl": "sub cached { 1 }\n"}

	first := New(WithTableCache(cache))
	require.NoError(t, first.IndexFiles(context.Background(), []string{"a.pl"}, mapLoader(files)))
	assert.Equal(t, 0, cache.hits)

	second := New(WithTableCache(cache), WithMetrics(m))
	require.NoError(t, second.IndexFiles(context.Background(), []string{"a.pl"}, mapLoader(files)))
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, 0, m.parses)
	assert.Len(t, second.Index().LookupBare("cached", ""), 1)
}
