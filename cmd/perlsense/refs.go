package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var refsCmd = &cobra.Command{
	Use:   "refs [flags] name [dir]",
	Short: "List the references to a declaration across the workspace",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runRefs,
}

func init() {
	addWorkspaceFlags(refsCmd)
	refsCmd.Flags().Bool("include-declaration", false, "print the declaration before its references")
}

func runRefs(cmd *cobra.Command, args []string) error {
	withDecl, _ := cmd.Flags().GetBool("include-declaration")
	s, err := openSession(cmd, dirArg(args[1:]))
	if err != nil {
		return err
	}
	defer s.ws.Shutdown()
	if err := s.index(cmd); err != nil {
		return err
	}

	idx := s.ws.Index()
	targets := resolveName(idx, args[0], "")
	if len(targets) == 0 {
		return fmt.Errorf("%s: not found", args[0])
	}

	w := cmd.OutOrStdout()
	loc := newLocator(cmd.Context(), s.manifest.Root)
	for _, e := range targets {
		if len(targets) > 1 || withDecl {
			fmt.Fprintf(w, "%s\t%s\t%s (declaration)\n", loc.format(e.Path, e.NameSpan.Start), e.Kind, e.QualifiedName)
		}
		for _, r := range idx.ReferencesTo(e) {
			mark := ""
			if r.Write {
				mark = "\twrite"
			}
			fmt.Fprintf(w, "%s\t%s%s\n", loc.format(r.Path, r.Span.Start), r.Kind, mark)
		}
	}
	s.printTimings(cmd)
	return nil
}
