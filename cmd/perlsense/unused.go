package main

import (
	"github.com/spf13/cobra"
)

var unusedCmd = &cobra.Command{
	Use:   "unused [flags] [dir]",
	Short: "List subs and variables nothing in the workspace refers to",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runUnused,
}

func init() {
	addWorkspaceFlags(unusedCmd)
	unusedCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runUnused(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	s, err := openSession(cmd, dirArg(args))
	if err != nil {
		return err
	}
	defer s.ws.Shutdown()
	if err := s.index(cmd); err != nil {
		return err
	}
	loc := newLocator(cmd.Context(), s.manifest.Root)
	if err := writeEntries(cmd.OutOrStdout(), format, s.ws.Index().FindUnused(), loc); err != nil {
		return err
	}
	s.printTimings(cmd)
	return nil
}
