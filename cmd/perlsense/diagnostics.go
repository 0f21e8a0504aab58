package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"perlsense/internal/diag"
	"perlsense/internal/diagfmt"
	"perlsense/internal/driver"
	"perlsense/internal/source"
	"perlsense/internal/version"
)

// errReported is returned after diagnostics with errors were printed; it
// sets the exit status without a second message.
var errReported = errors.New("errors reported")

func printDiagnostics(cmd *cobra.Command, bag *diag.Bag, src *diagfmt.Sources, baseDir string) error {
	if bag == nil || bag.Len() == 0 {
		return nil
	}
	flags := cmd.Root().PersistentFlags()
	format, _ := flags.GetString("diag-format")
	maxDiagnostics, _ := flags.GetInt("max-diagnostics")
	out := cmd.ErrOrStderr()

	switch strings.ToLower(format) {
	case "pretty":
		return diagfmt.Pretty(out, bag, src, diagfmt.PrettyOpts{
			Color:     useColor(cmd, os.Stderr),
			Context:   2,
			PathMode:  diagfmt.PathModeAuto,
			BaseDir:   baseDir,
			ShowNotes: true,
			Max:       maxDiagnostics,
		})
	case "json":
		return diagfmt.JSON(out, bag, src, diagfmt.JSONOpts{
			IncludePositions: true,
			IncludeNotes:     true,
			PathMode:         diagfmt.PathModeAuto,
			BaseDir:          baseDir,
			Max:              maxDiagnostics,
		})
	case "sarif":
		return diagfmt.Sarif(out, bag, src, diagfmt.SarifRunMeta{
			ToolName:       "perlsense",
			ToolVersion:    version.Version,
			InvocationArgs: os.Args[1:],
			BaseDir:        baseDir,
		})
	default:
		return fmt.Errorf("unknown diagnostics format: %s", format)
	}
}

// sourcesFor loads the text of every file the diagnostics point into.
// Files that cannot be read print without a snippet.
func sourcesFor(ctx context.Context, fs *source.FileSet, bag *diag.Bag) *diagfmt.Sources {
	src := diagfmt.NewSources(fs)
	seen := map[source.FileID]bool{}
	add := func(id source.FileID) {
		if seen[id] {
			return
		}
		seen[id] = true
		if text, err := driver.LoadFile(ctx, fs.Path(id)); err == nil {
			src.Add(id, text)
		}
	}
	for _, d := range bag.Items() {
		add(d.Primary.File)
		for _, n := range d.Notes {
			add(n.Span.File)
		}
	}
	return src
}
