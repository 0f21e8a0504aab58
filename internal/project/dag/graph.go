package dag

import (
	"fmt"
	"slices"
	"strings"

	"perlsense/internal/diag"
	"perlsense/internal/source"
)

// ModuleMeta is a package declared in the workspace and the modules its
// files load.
type ModuleMeta struct {
	Name    string
	Files   []string
	Span    source.Span // first declaration
	Imports []string
}

// Graph edges run from a module to the modules that load it, so a
// topological order lists dependencies first.
type Graph struct {
	Edges   [][]ModuleID // Edges[dep] = dependents
	Indeg   []int        // число загружаемых модулей, объявленных в workspace
	Present []bool       // модуль объявлен в workspace, а не только загружается
}

type ModuleSlot struct {
	Meta    ModuleMeta
	Present bool
}

// BuildGraph links the declared modules. Modules loaded but not declared in
// the workspace (CPAN, core) are nodes without edges.
func BuildGraph(idx ModuleIndex, metas []ModuleMeta) (Graph, []ModuleSlot) {
	nodeCount := len(idx.IDToName)
	g := Graph{
		Edges:   make([][]ModuleID, nodeCount),
		Indeg:   make([]int, nodeCount),
		Present: make([]bool, nodeCount),
	}
	slots := make([]ModuleSlot, nodeCount)
	for i, name := range idx.IDToName {
		slots[i].Meta.Name = name
	}

	for _, meta := range metas {
		id, ok := idx.NameToID[meta.Name]
		if !ok {
			continue
		}
		slot := &slots[int(id)]
		if slot.Present {
			// один пакет может быть объявлен в нескольких файлах
			slot.Meta.Files = append(slot.Meta.Files, meta.Files...)
			slot.Meta.Imports = append(slot.Meta.Imports, meta.Imports...)
			continue
		}
		slot.Meta = meta
		slot.Meta.Files = slices.Clone(meta.Files)
		slot.Meta.Imports = slices.Clone(meta.Imports)
		slot.Present = true
		g.Present[int(id)] = true
	}

	for from := range slots {
		slot := &slots[from]
		if !slot.Present {
			continue
		}
		seen := make(map[ModuleID]struct{}, len(slot.Meta.Imports))
		for _, dep := range slot.Meta.Imports {
			depID, ok := idx.NameToID[dep]
			if !ok || int(depID) == from || !g.Present[int(depID)] {
				continue
			}
			if _, dup := seen[depID]; dup {
				continue
			}
			seen[depID] = struct{}{}
			g.Edges[int(depID)] = append(g.Edges[int(depID)], toModuleID(from))
			g.Indeg[from]++
		}
	}
	for i := range g.Edges {
		slices.Sort(g.Edges[i])
	}
	return g, slots
}

// ReportCycles reports every module left in a cycle at its declaration.
func ReportCycles(idx ModuleIndex, slots []ModuleSlot, topo *Topo, r diag.Reporter) {
	if r == nil || topo == nil || !topo.Cyclic || len(topo.Cycles) == 0 {
		return
	}
	summary := strings.Join(idx.Names(topo.Cycles), " -> ")
	for _, id := range topo.Cycles {
		slot := slots[int(id)]
		if !slot.Present {
			continue
		}
		msg := fmt.Sprintf("module %q participates in a load cycle: %s", slot.Meta.Name, summary)
		diag.ReportWarning(r, diag.ProjImportCycle, slot.Meta.Span, msg).Emit()
	}
}
