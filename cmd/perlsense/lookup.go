package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"perlsense/internal/index"
	"perlsense/internal/source"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup [flags] name [dir]",
	Short: "Find the declarations of a name across the workspace",
	Long: `Lookup resolves a fully qualified name (Foo::bar, $Foo::x) or a bare one
(bar, $x). Bare names may match declarations in several packages.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runLookup,
}

func init() {
	addWorkspaceFlags(lookupCmd)
	lookupCmd.Flags().Bool("prefix", false, "match names starting with the query, ignoring case")
	lookupCmd.Flags().Int("limit", 50, "maximum prefix matches")
	lookupCmd.Flags().String("from", "", "file the lookup starts from; its own declarations rank first")
	lookupCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type entryJSON struct {
	Location  string   `json:"location"`
	Kind      string   `json:"kind"`
	Qualified string   `json:"qualified"`
	Bare      string   `json:"bare"`
	Package   string   `json:"package"`
	Flags     []string `json:"flags,omitempty"`
}

// resolveName looks name up the way an editor would for go-to-definition.
func resolveName(idx *index.Index, name, from string) []index.Entry {
	if strings.Contains(name, "::") {
		if hits := idx.LookupQualified(name); len(hits) > 0 {
			return hits
		}
	}
	return idx.LookupBare(name, from)
}

func runLookup(cmd *cobra.Command, args []string) error {
	name := args[0]
	prefix, _ := cmd.Flags().GetBool("prefix")
	limit, _ := cmd.Flags().GetInt("limit")
	from, _ := cmd.Flags().GetString("from")
	format, _ := cmd.Flags().GetString("format")

	s, err := openSession(cmd, dirArg(args[1:]))
	if err != nil {
		return err
	}
	defer s.ws.Shutdown()
	if err := s.index(cmd); err != nil {
		return err
	}

	idx := s.ws.Index()
	var hits []index.Entry
	if prefix {
		hits = idx.SearchPrefix(name, limit)
	} else {
		if from != "" {
			if abs, err := filepath.Abs(from); err == nil {
				from = source.NormalizePath(abs)
			}
		}
		hits = resolveName(idx, name, from)
	}

	loc := newLocator(cmd.Context(), s.manifest.Root)
	if err := writeEntries(cmd.OutOrStdout(), format, hits, loc); err != nil {
		return err
	}
	s.printTimings(cmd)
	if len(hits) == 0 {
		return fmt.Errorf("%s: not found", name)
	}
	return nil
}

func writeEntries(w io.Writer, format string, entries []index.Entry, loc *locator) error {
	switch format {
	case "json":
		out := make([]entryJSON, 0, len(entries))
		for _, e := range entries {
			out = append(out, entryJSON{
				Location:  loc.format(e.Path, e.NameSpan.Start),
				Kind:      e.Kind.String(),
				Qualified: e.QualifiedName,
				Bare:      e.BareName,
				Package:   e.Package,
				Flags:     e.Flags.Strings(),
			})
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(out)
	case "pretty":
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\n", loc.format(e.Path, e.NameSpan.Start), e.Kind, e.QualifiedName)
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}
