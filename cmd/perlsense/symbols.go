package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"perlsense/internal/diagfmt"
	"perlsense/internal/driver"
	"perlsense/internal/source"
	"perlsense/internal/symbols"
)

var symbolsCmd = &cobra.Command{
	Use:   "symbols [flags] file.pl",
	Short: "List the declarations of a Perl source file",
	Args:  cobra.ExactArgs(1),
	RunE:  runSymbols,
}

func init() {
	symbolsCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	symbolsCmd.Flags().Bool("refs", false, "also list references")
}

type symbolJSON struct {
	Kind      string   `json:"kind"`
	Qualified string   `json:"qualified"`
	Bare      string   `json:"bare"`
	Package   string   `json:"package"`
	Line      uint32   `json:"line"`
	Character uint32   `json:"character"`
	Arity     *int     `json:"arity,omitempty"`
	Flags     []string `json:"flags,omitempty"`
	Imports   []string `json:"imports,omitempty"`
}

type referenceJSON struct {
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	Qualified string `json:"qualified,omitempty"`
	Line      uint32 `json:"line"`
	Character uint32 `json:"character"`
	Write     bool   `json:"write,omitempty"`
}

type fileSymbolsJSON struct {
	Path         string          `json:"path"`
	Dependencies []string        `json:"dependencies"`
	Symbols      []symbolJSON    `json:"symbols"`
	References   []referenceJSON `json:"references,omitempty"`
}

func runSymbols(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	withRefs, _ := cmd.Flags().GetBool("refs")
	maxDiagnostics, _ := cmd.Root().PersistentFlags().GetInt("max-diagnostics")

	result, err := driver.Analyze(cmd.Context(), args[0], maxDiagnostics)
	if err != nil {
		return err
	}
	src := diagfmt.NewSources(result.FileSet).Add(result.File, result.Text)
	if err := printDiagnostics(cmd, result.Bag, src, ""); err != nil {
		return err
	}

	pm := source.NewPositionMap(result.Text)
	out := fileSymbolsJSON{Path: result.Path, Dependencies: result.Symbols.Dependencies}
	for _, sym := range result.Symbols.All() {
		pos := pm.ByteToPosition(sym.NameSpan.Start)
		sj := symbolJSON{
			Kind:      sym.Kind.String(),
			Qualified: sym.QualifiedName,
			Bare:      sym.BareName,
			Package:   sym.Package,
			Line:      pos.Line + 1,
			Character: pos.Character + 1,
			Flags:     sym.Flags.Strings(),
			Imports:   sym.Imports,
		}
		if sym.Kind == symbols.SymbolSub && sym.Arity != symbols.ArityUnknown {
			arity := sym.Arity
			sj.Arity = &arity
		}
		out.Symbols = append(out.Symbols, sj)
	}
	if withRefs {
		for _, r := range result.Symbols.References {
			pos := pm.ByteToPosition(r.Span.Start)
			out.References = append(out.References, referenceJSON{
				Kind:      r.Kind.String(),
				Name:      r.Name,
				Qualified: r.Qualified,
				Line:      pos.Line + 1,
				Character: pos.Character + 1,
				Write:     r.Write,
			})
		}
	}

	w := cmd.OutOrStdout()
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(out)
	case "pretty":
		for _, s := range out.Symbols {
			extra := ""
			if s.Arity != nil {
				extra = fmt.Sprintf(" arity=%d", *s.Arity)
			}
			if len(s.Flags) > 0 {
				extra += " [" + strings.Join(s.Flags, ",") + "]"
			}
			if len(s.Imports) > 0 {
				extra += " imports=" + strings.Join(s.Imports, ",")
			}
			fmt.Fprintf(w, "%4d:%-3d %-8s %s%s\n", s.Line, s.Character, s.Kind, s.Qualified, extra)
		}
		if len(out.Dependencies) > 0 {
			fmt.Fprintf(w, "depends on: %s\n", strings.Join(out.Dependencies, ", "))
		}
		for _, r := range out.References {
			mark := ""
			if r.Write {
				mark = " (write)"
			}
			name := r.Name
			if r.Qualified != "" && r.Qualified != r.Name {
				name += " -> " + r.Qualified
			}
			fmt.Fprintf(w, "%4d:%-3d ref:%-8s %s%s\n", r.Line, r.Character, r.Kind, name, mark)
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}
