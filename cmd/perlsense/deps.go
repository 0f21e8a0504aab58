package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"perlsense/internal/diag"
	"perlsense/internal/project/dag"
)

var depsCmd = &cobra.Command{
	Use:   "deps [flags] [dir]",
	Short: "Print the load order of the workspace modules",
	Long: `Deps orders the packages declared in the workspace so that every module
comes after the modules it loads, grouped in batches of independent modules.
Load cycles are reported as warnings.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDeps,
}

func init() {
	addWorkspaceFlags(depsCmd)
	depsCmd.Flags().String("dependents", "", "only list the files that load this module")
}

func runDeps(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, dirArg(args))
	if err != nil {
		return err
	}
	defer s.ws.Shutdown()
	if err := s.index(cmd); err != nil {
		return err
	}
	idx := s.ws.Index()
	w := cmd.OutOrStdout()
	loc := newLocator(cmd.Context(), s.manifest.Root)

	if module, _ := cmd.Flags().GetString("dependents"); module != "" {
		for _, path := range idx.Dependents(module) {
			fmt.Fprintln(w, loc.format(path, 0))
		}
		return nil
	}

	metas := dag.Modules(idx)
	mi := dag.BuildIndex(metas)
	graph, slots := dag.BuildGraph(mi, metas)
	topo := dag.ToposortKahn(graph)

	for i, batch := range topo.Batches {
		fmt.Fprintf(w, "%d: %s\n", i+1, strings.Join(mi.Names(batch), " "))
	}

	bag := diag.NewBag(len(topo.Cycles) + 1)
	dag.ReportCycles(mi, slots, topo, &diag.BagReporter{Bag: bag})
	bag.Sort()
	if err := printDiagnostics(cmd, bag, sourcesFor(cmd.Context(), s.ws.Files(), bag), s.manifest.Root); err != nil {
		return err
	}
	s.printTimings(cmd)
	return nil
}
