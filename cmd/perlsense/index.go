package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"perlsense/internal/symbols"
)

var indexCmd = &cobra.Command{
	Use:   "index [flags] [dir]",
	Short: "Index a Perl workspace and print a summary",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIndex,
}

func init() {
	addWorkspaceFlags(indexCmd)
	indexCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type indexSummary struct {
	Workspace  string         `json:"workspace"`
	Root       string         `json:"root"`
	Manifest   string         `json:"manifest,omitempty"`
	State      string         `json:"state"`
	Files      int            `json:"files"`
	Symbols    int            `json:"symbols"`
	ByKind     map[string]int `json:"by_kind"`
	References int            `json:"references"`
	Modules    int            `json:"modules"`
}

func dirArg(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}

func runIndex(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	s, err := openSession(cmd, dirArg(args))
	if err != nil {
		return err
	}
	defer s.ws.Shutdown()
	if err := s.index(cmd); err != nil {
		return err
	}

	st := s.ws.Index().Stats()
	sum := indexSummary{
		Workspace:  s.ws.ID().String(),
		Root:       s.manifest.Root,
		Manifest:   s.manifest.Path,
		State:      s.ws.State().String(),
		Files:      st.Files,
		Symbols:    st.Symbols,
		ByKind:     make(map[string]int, len(st.ByKind)),
		References: st.References,
		Modules:    st.Modules,
	}
	for k, n := range st.ByKind {
		sum.ByKind[k.String()] = n
	}

	w := cmd.OutOrStdout()
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(sum); err != nil {
			return err
		}
	case "pretty":
		fmt.Fprintf(w, "%s: %d files, %d symbols, %d references (%s)\n", sum.Root, sum.Files, sum.Symbols, sum.References, sum.State)
		kinds := []symbols.SymbolKind{symbols.SymbolPackage, symbols.SymbolSub, symbols.SymbolVariable, symbols.SymbolImport}
		for _, k := range kinds {
			fmt.Fprintf(w, "  %-9s %d\n", k.String(), st.ByKind[k])
		}
		fmt.Fprintf(w, "  %-9s %d\n", "modules", sum.Modules)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	s.printTimings(cmd)
	return nil
}
