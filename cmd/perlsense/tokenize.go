package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"perlsense/internal/diagfmt"
	"perlsense/internal/driver"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] file.pl",
	Short: "Tokenize a Perl source file",
	Long:  `Tokenize breaks a Perl source file into tokens, using the surrounding context to tell regexes, heredocs and quote-like operators apart`,
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenize,
}

func init() {
	tokenizeCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	tokenizeCmd.Flags().Bool("trivia", false, "include whitespace, comments and POD")
}

func runTokenize(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	trivia, _ := cmd.Flags().GetBool("trivia")
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	result, err := driver.Tokenize(cmd.Context(), args[0], maxDiagnostics)
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}
	src := diagfmt.NewSources(result.FileSet).Add(result.File, result.Text)
	if err := printDiagnostics(cmd, result.Bag, src, ""); err != nil {
		return err
	}

	switch format {
	case "pretty":
		return diagfmt.FormatTokensPretty(cmd.OutOrStdout(), result.Tokens, src, trivia)
	case "json":
		return diagfmt.FormatTokensJSON(cmd.OutOrStdout(), result.Tokens, trivia)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}
