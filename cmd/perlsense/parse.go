package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"perlsense/internal/cst"
	"perlsense/internal/diagfmt"
	"perlsense/internal/driver"
	"perlsense/internal/source"
)

var parseCmd = &cobra.Command{
	Use:   "parse [flags] file.pl",
	Short: "Parse a Perl source file and print its syntax tree",
	Long: `Parse builds the concrete syntax tree of a Perl source file. The parser
recovers from errors, so a tree is printed even for broken input`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().String("format", "tree", "output format (tree|none)")
	parseCmd.Flags().Bool("trivia", false, "include whitespace, comment and POD leaves")
	parseCmd.Flags().Bool("ids", false, "print node IDs")
	parseCmd.Flags().String("at", "", "print the nodes enclosing LINE:COL instead of the tree")
}

// parsePosition reads a 1-based LINE:COL; COL counts UTF-16 code units.
func parsePosition(s string) (source.Position, error) {
	var line, col uint32
	if _, err := fmt.Sscanf(s, "%d:%d", &line, &col); err != nil || line == 0 || col == 0 {
		return source.Position{}, fmt.Errorf("invalid position %q, want LINE:COL", s)
	}
	return source.Position{Line: line - 1, Character: col - 1}, nil
}

func printEnclosing(w io.Writer, nodes []*cst.Node) {
	for depth, i := 0, len(nodes)-1; i >= 0; depth, i = depth+1, i-1 {
		n := nodes[i]
		fmt.Fprintf(w, "%s%s %d..%d", strings.Repeat("  ", depth), n.Kind, n.Span.Start, n.Span.End)
		if n.Tok != nil {
			fmt.Fprintf(w, " %q", n.Tok.Text)
		}
		fmt.Fprintln(w)
	}
}

func runParse(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	trivia, _ := cmd.Flags().GetBool("trivia")
	ids, _ := cmd.Flags().GetBool("ids")
	at, _ := cmd.Flags().GetString("at")
	var pos source.Position
	if at != "" {
		if pos, err = parsePosition(at); err != nil {
			return err
		}
	}

	result, err := driver.Analyze(cmd.Context(), args[0], maxDiagnostics)
	if err != nil {
		return fmt.Errorf("parsing failed: %w", err)
	}

	switch {
	case at != "":
		off := source.NewPositionMap(result.Text).PositionToByte(pos)
		printEnclosing(cmd.OutOrStdout(), result.Enclosing(off))
	case format == "tree":
		if err := cst.Dump(cmd.OutOrStdout(), result.Tree.Root, cst.DumpOptions{Trivia: trivia, IDs: ids}); err != nil {
			return err
		}
	case format == "none":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	src := diagfmt.NewSources(result.FileSet).Add(result.File, result.Text)
	if err := printDiagnostics(cmd, result.Bag, src, ""); err != nil {
		return err
	}
	if show, _ := cmd.Root().PersistentFlags().GetBool("timings"); show {
		fmt.Fprint(cmd.ErrOrStderr(), result.Timings.Summary())
	}
	if result.Bag.HasErrors() {
		return errReported
	}
	return nil
}
