package index

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perlsense/internal/parser"
	"perlsense/internal/source"
	"perlsense/internal/symbols"
)

func extract(t *testing.T, src string) *symbols.Table {
	t.Helper()
	tree := parser.ParseText(source.FileID(1), src, parser.Options{})
	return symbols.Extract(tree, source.FileID(1))
}

func update(t *testing.T, idx *Index, path, src string) {
	t.Helper()
	_, err := idx.UpdateFile(path, Hash(src), extract(t, src))
	require.NoError(t, err)
}

func qualifiedNames(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.QualifiedName
	}
	return out
}

func TestDualLookup(t *testing.T) {
	idx := New()
	update(t, idx, "lib/Foo.pm", "package Foo; sub bar { 1 }")

	bare := idx.LookupBare("bar", "")
	require.Len(t, bare, 1)
	assert.Equal(t, "Foo::bar", bare[0].QualifiedName)
	assert.Equal(t, "lib/Foo.pm", bare[0].Path)

	qual := idx.LookupQualified("Foo::bar")
	require.Len(t, qual, 1)
	assert.Equal(t, "bar", qual[0].BareName)
}

func TestUpdateReplacesGeneration(t *testing.T) {
	idx := New()
	update(t, idx, "a.pl", "sub old_name { 1 }\nour $gone;\n")
	update(t, idx, "a.pl", "sub new_name { 1 }\n")

	assert.Empty(t, idx.LookupBare("old_name", ""))
	assert.Empty(t, idx.LookupQualified("main::old_name"))
	assert.Empty(t, idx.LookupBare("$gone", ""))
	assert.Empty(t, idx.LookupQualified("$main::gone"))
	assert.Len(t, idx.LookupBare("new_name", ""), 1)
	assert.Len(t, idx.LookupQualified("main::new_name"), 1)

	// Every symbol of the current generation is reachable both ways.
	for _, e := range idx.FileSymbols("a.pl") {
		assert.Contains(t, qualifiedNames(idx.LookupBare(e.BareName, "")), e.QualifiedName)
		assert.NotEmpty(t, idx.LookupQualified(e.QualifiedName))
	}
}

func TestUnchangedDigestIsNoop(t *testing.T) {
	idx := New()
	src := "sub f { 1 }\n"
	changed, err := idx.UpdateFile("a.pl", Hash(src), extract(t, src))
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = idx.UpdateFile("a.pl", Hash(src), extract(t, src))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Len(t, idx.LookupBare("f", ""), 1)
}

func TestBareLookupOrder(t *testing.T) {
	idx := New()
	update(t, idx, "c.pl", "package Alpha; sub run { 1 }")
	update(t, idx, "b.pl", "package Alpha; sub run { 1 }")
	update(t, idx, "a.pl", "package Zed; sub run { 1 }")

	got := idx.LookupBare("run", "a.pl")
	require.Len(t, got, 3)
	assert.Equal(t, []string{"a.pl", "b.pl", "c.pl"}, []string{got[0].Path, got[1].Path, got[2].Path})
	assert.Equal(t, []string{"Zed::run", "Alpha::run", "Alpha::run"}, qualifiedNames(got))

	got = idx.LookupBare("run", "")
	assert.Equal(t, []string{"Alpha::run", "Alpha::run", "Zed::run"}, qualifiedNames(got))
}

func TestSearchPrefixFoldsCase(t *testing.T) {
	idx := New()
	update(t, idx, "a.pl", "package Foo; sub ParseThing { 1 } sub parse_other { 1 } sub other { 1 }")

	got := idx.SearchPrefix("parse", 0)
	assert.Equal(t, []string{"Foo::ParseThing", "Foo::parse_other"}, qualifiedNames(got))

	got = idx.SearchPrefix("FOO::P", 0)
	assert.Equal(t, []string{"Foo::ParseThing", "Foo::parse_other"}, qualifiedNames(got))

	assert.Len(t, idx.SearchPrefix("parse", 1), 1)
}

func TestReferencesAcrossFiles(t *testing.T) {
	idx := New()
	update(t, idx, "lib/Util.pm", "package Util;\nsub helper { 1 }\n1;\n")
	update(t, idx, "main.pl", "use Util;\nUtil::helper();\nUtil->helper;\n")

	defs := idx.LookupQualified("Util::helper")
	require.Len(t, defs, 1)
	locs := idx.ReferencesTo(defs[0])
	require.Len(t, locs, 2)
	assert.Equal(t, "main.pl", locs[0].Path)
	assert.Equal(t, symbols.RefCall, locs[0].Kind)
	assert.Equal(t, symbols.RefMethod, locs[1].Kind)
	assert.Less(t, locs[0].Span.Start, locs[1].Span.Start)

	// "Util" names both the package and main.pl's import of it.
	var pkg Entry
	for _, e := range idx.LookupQualified("Util") {
		if e.Kind == symbols.SymbolPackage {
			pkg = e
		}
	}
	require.Equal(t, "lib/Util.pm", pkg.Path)
	assert.Len(t, idx.ReferencesTo(pkg), 1)
}

func TestImportedCallReferences(t *testing.T) {
	idx := New()
	update(t, idx, "lib/Util.pm", "package Util;\nsub first_of { 1 }\n1;\n")
	update(t, idx, "main.pl", "use Util qw(first_of);\nfirst_of(1);\n")

	defs := idx.LookupQualified("Util::first_of")
	require.Len(t, defs, 1)
	locs := idx.ReferencesTo(defs[0])
	require.Len(t, locs, 1)
	assert.Equal(t, "main.pl", locs[0].Path)
}

func TestLexicalReferencesStayInFile(t *testing.T) {
	idx := New()
	update(t, idx, "a.pl", "my $x = 1;\nmy $y = $x;\n")
	update(t, idx, "b.pl", "my $x = 2;\nmy $z = $x;\n")

	var ax Entry
	for _, e := range idx.FileSymbols("a.pl") {
		if e.BareName == "$x" {
			ax = e
		}
	}
	require.Equal(t, "$x", ax.BareName)
	locs := idx.ReferencesTo(ax)
	require.Len(t, locs, 1)
	assert.Equal(t, "a.pl", locs[0].Path)
}

func TestShadowedLexicalResolvesByScope(t *testing.T) {
	idx := New()
	src := "my $x = 1;\nsub f { my $x = 2; $x }\n$x;\n"
	update(t, idx, "a.pl", src)

	var outer, inner Entry
	for _, e := range idx.FileSymbols("a.pl") {
		if e.BareName != "$x" {
			continue
		}
		if outer.BareName == "" {
			outer = e
		} else {
			inner = e
		}
	}
	require.NotEmpty(t, inner.BareName)

	outerRefs := idx.ReferencesTo(outer)
	require.Len(t, outerRefs, 1)
	assert.Equal(t, uint32(35), outerRefs[0].Span.Start)

	innerRefs := idx.ReferencesTo(inner)
	require.Len(t, innerRefs, 1)
	assert.Equal(t, uint32(30), innerRefs[0].Span.Start)
}

func TestDependents(t *testing.T) {
	idx := New()
	update(t, idx, "a.pl", "use strict;\nuse Foo;\n")
	update(t, idx, "b.pl", "require Foo;\n")

	assert.Equal(t, []string{"a.pl", "b.pl"}, idx.Dependents("Foo"))
	assert.Equal(t, []string{"strict", "Foo"}, idx.FileDependencies("a.pl"))

	assert.True(t, idx.RemoveFile("a.pl"))
	assert.False(t, idx.RemoveFile("a.pl"))
	assert.Equal(t, []string{"b.pl"}, idx.Dependents("Foo"))
	assert.Empty(t, idx.Dependents("strict"))
}

func TestPackageMembers(t *testing.T) {
	idx := New()
	update(t, idx, "a.pm", "package Foo;\nour $v;\nmy $lex;\nsub m1 { 1 }\n")
	update(t, idx, "b.pm", "package Foo;\nsub m0 { 1 }\npackage Bar;\nsub other { 1 }\n")

	var names []string
	for _, e := range idx.PackageMembers("Foo") {
		names = append(names, e.BareName)
	}
	assert.Equal(t, []string{"$v", "m0", "m1"}, names)
}

func TestFindUnused(t *testing.T) {
	idx := New()
	src := "use Foo;\nsub used_one { 1 }\nsub unused_one { 2 }\nused_one();\nmy $dead;\nmy $live = 1;\nmy $z = $live;\n"
	update(t, idx, "a.pl", src)

	var names []string
	for _, e := range idx.FindUnused() {
		names = append(names, e.BareName)
	}
	assert.Equal(t, []string{"unused_one", "$dead", "$z"}, names)
}

func TestSubNamedLikeLibraryFunctionIsUsed(t *testing.T) {
	idx := New()
	src := "sub max { 1 }\nsub first { 2 }\nprint max(1, 2);\n"
	update(t, idx, "a.pl", src)

	defs := idx.LookupQualified("main::max")
	require.Len(t, defs, 1)
	assert.Len(t, idx.ReferencesTo(defs[0]), 1)

	var names []string
	for _, e := range idx.FindUnused() {
		names = append(names, e.BareName)
	}
	assert.Equal(t, []string{"first"}, names)
}

func TestMaxSymbolsLeavesIndexUntouched(t *testing.T) {
	idx := New(WithMaxSymbols(2))
	src := "sub a { 1 } sub b { 1 } sub c { 1 }"
	_, err := idx.UpdateFile("a.pl", Hash(src), extract(t, src))
	require.ErrorIs(t, err, ErrMaxSymbols)
	assert.Zero(t, idx.Stats().Files)
	assert.Empty(t, idx.LookupBare("a", ""))
}

func TestUpdateErrors(t *testing.T) {
	idx := New()
	_, err := idx.UpdateFile("a.pl", Digest{}, nil)
	require.ErrorIs(t, err, ErrNilTable)
	_, err = idx.UpdateFile("", Digest{}, extract(t, "1;"))
	require.ErrorIs(t, err, ErrEmptyPath)
}

type countingMetrics struct {
	mu    sync.Mutex
	files int
	size  int
}

func (m *countingMetrics) FileIndexed(int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files++
}

func (m *countingMetrics) IndexSize(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.size = n
}

func TestStatsAndMetrics(t *testing.T) {
	m := &countingMetrics{}
	idx := New(WithMetrics(m))
	update(t, idx, "a.pl", "package Foo;\nsub f { $x }\n")
	update(t, idx, "b.pl", "sub g { 1 }\n")

	st := idx.Stats()
	assert.Equal(t, 2, st.Files)
	assert.Equal(t, 3, st.Symbols)
	assert.Equal(t, 1, st.ByKind[symbols.SymbolPackage])
	assert.Equal(t, 2, st.ByKind[symbols.SymbolSub])
	assert.Equal(t, 1, st.References)
	assert.Equal(t, DefaultMaxSymbols, st.MaxSymbols)
	assert.Equal(t, 2, m.files)
	assert.Equal(t, 3, m.size)

	idx.Clear()
	assert.Zero(t, idx.Stats().Symbols)
	assert.Empty(t, idx.Files())
	assert.Zero(t, m.size)
}

func TestConcurrentUpdates(t *testing.T) {
	idx := New()
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			path := fmt.Sprintf("f%d.pl", i)
			for gen := range 20 {
				src := fmt.Sprintf("package P%d;\nsub s%d { 1 }\n", i, gen)
				tbl := symbols.Extract(parser.ParseText(source.FileID(i+1), src, parser.Options{}), source.FileID(i+1))
				if _, err := idx.UpdateFile(path, Hash(src), tbl); err != nil {
					t.Error(err)
					return
				}
				idx.LookupBare(fmt.Sprintf("s%d", gen), path)
				idx.SearchPrefix("P", 5)
			}
		}()
	}
	wg.Wait()

	st := idx.Stats()
	assert.Equal(t, 8, st.Files)
	assert.Equal(t, 16, st.Symbols)
	for i := range 8 {
		assert.Len(t, idx.LookupQualified(fmt.Sprintf("P%d::s19", i)), 1)
		assert.Empty(t, idx.LookupQualified(fmt.Sprintf("P%d::s18", i)))
	}
}
