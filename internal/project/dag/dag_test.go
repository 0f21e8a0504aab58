package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perlsense/internal/diag"
	"perlsense/internal/index"
	"perlsense/internal/parser"
	"perlsense/internal/source"
	"perlsense/internal/symbols"
)

func batchesToNames(idx ModuleIndex, batches [][]ModuleID) [][]string {
	out := make([][]string, len(batches))
	for i, batch := range batches {
		out[i] = idx.Names(batch)
	}
	return out
}

func TestBuildIndexIncludesImports(t *testing.T) {
	metas := []ModuleMeta{
		{Name: "App", Imports: []string{"strict", "App::Util"}},
		{Name: "App::Util"},
	}
	idx := BuildIndex(metas)
	assert.Equal(t, []string{"App", "App::Util", "strict"}, idx.IDToName)
	for i, name := range idx.IDToName {
		assert.Equal(t, ModuleID(i), idx.NameToID[name])
	}
}

func TestToposortKahnBatches(t *testing.T) {
	metas := []ModuleMeta{
		{Name: "B", Imports: []string{"C", "strict"}},
		{Name: "A"},
		{Name: "C"},
		{Name: "D", Imports: []string{"B", "A"}},
	}
	idx := BuildIndex(metas)
	g, slots := BuildGraph(idx, metas)
	assert.False(t, slots[idx.NameToID["strict"]].Present)

	topo := ToposortKahn(g)
	require.False(t, topo.Cyclic)
	assert.Equal(t, []string{"A", "C", "B", "D"}, idx.Names(topo.Order))
	assert.Equal(t, [][]string{{"A", "C"}, {"B"}, {"D"}}, batchesToNames(idx, topo.Batches))
}

func TestDuplicateDeclarationsMerge(t *testing.T) {
	metas := []ModuleMeta{
		{Name: "A", Files: []string{"a1.pm"}, Imports: []string{"B"}},
		{Name: "A", Files: []string{"a2.pm"}, Imports: []string{"C"}},
		{Name: "B"},
		{Name: "C"},
	}
	idx := BuildIndex(metas)
	g, slots := BuildGraph(idx, metas)
	a := slots[idx.NameToID["A"]]
	assert.Equal(t, []string{"a1.pm", "a2.pm"}, a.Meta.Files)
	assert.Equal(t, 2, g.Indeg[idx.NameToID["A"]])
}

func TestReportCycles(t *testing.T) {
	spanA := source.Span{File: 1, Start: 8, End: 9}
	spanB := source.Span{File: 2, Start: 8, End: 9}
	metas := []ModuleMeta{
		{Name: "A", Span: spanA, Imports: []string{"B"}},
		{Name: "B", Span: spanB, Imports: []string{"A"}},
		{Name: "C"},
	}
	idx := BuildIndex(metas)
	g, slots := BuildGraph(idx, metas)
	topo := ToposortKahn(g)
	require.True(t, topo.Cyclic)
	assert.Equal(t, []string{"A", "B"}, idx.Names(topo.Cycles))
	assert.Equal(t, []string{"C"}, idx.Names(topo.Order))

	bag := diag.NewBag(10)
	ReportCycles(idx, slots, topo, &diag.BagReporter{Bag: bag})
	require.Equal(t, 2, bag.Len())
	for _, d := range bag.Items() {
		assert.Equal(t, diag.ProjImportCycle, d.Code)
		assert.Contains(t, d.Message, "A -> B")
	}
	assert.Equal(t, spanA, bag.Items()[0].Primary)
}

func TestModulesFromIndex(t *testing.T) {
	idx := index.New()
	add := func(path, src string) {
		tbl := symbols.Extract(parser.ParseText(1, src, parser.Options{}), 1)
		_, err := idx.UpdateFile(path, index.Hash(src), tbl)
		require.NoError(t, err)
	}
	add("lib/App.pm", "package App;\nuse App::Util;\nuse strict;\n1;\n")
	add("lib/App/Util.pm", "package App::Util;\n1;\n")
	add("bin/app", "use App;\nApp->run;\n")

	metas := Modules(idx)
	require.Len(t, metas, 2)
	assert.Equal(t, "App", metas[0].Name)
	assert.Equal(t, []string{"App::Util", "strict"}, metas[0].Imports)

	mi := BuildIndex(metas)
	g, _ := BuildGraph(mi, metas)
	assert.Equal(t, []string{"App::Util", "App"}, mi.Names(ToposortKahn(g).Order))
}
