package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"perlsense/internal/prof"
	"perlsense/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "perlsense",
	Short: "Perl language intelligence engine",
	Long: `perlsense parses Perl sources into lossless syntax trees, extracts their
symbols and indexes whole workspaces for definition and reference lookups`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: prepareRun,
}

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(symbolsCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(refsCmd)
	rootCmd.AddCommand(depsCmd)
	rootCmd.AddCommand(unusedCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	rootCmd.PersistentFlags().String("diag-format", "pretty", "diagnostics format (pretty|json|sarif)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug|info|warn|error); overrides the manifest")
	rootCmd.PersistentFlags().String("log-format", "", "log format (text|json); overrides the manifest")
	rootCmd.PersistentFlags().String("config", "", "path to perlsense.toml (default: search upwards)")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to this file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile to this file on exit")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write a runtime trace to this file")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if profErr := profiling.Stop(); profErr != nil {
		fmt.Fprintln(os.Stderr, "profiling:", profErr)
	}
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func useColor(cmd *cobra.Command, f *os.File) bool {
	colorFlag, _ := cmd.Root().PersistentFlags().GetString("color")
	switch strings.ToLower(colorFlag) {
	case "on":
		return true
	case "off":
		return false
	default:
		return isTerminal(f)
	}
}

type loggerKey struct{}

// profiling is stopped by main after the command returns, whatever the
// outcome.
var profiling *prof.Session

func prepareRun(cmd *cobra.Command, args []string) error {
	if err := setupLogging(cmd, args); err != nil {
		return err
	}
	flags := cmd.Root().PersistentFlags()
	var cfg prof.Config
	cfg.CPU, _ = flags.GetString("cpu-profile")
	cfg.Mem, _ = flags.GetString("mem-profile")
	cfg.Trace, _ = flags.GetString("runtime-trace")
	if !cfg.Enabled() {
		return nil
	}
	s, err := prof.Start(cfg)
	if err != nil {
		return err
	}
	profiling = s
	return nil
}

// setupLogging builds the stderr logger from the flags and stores it in the
// command context. The manifest may refine it later, see openSession.
func setupLogging(cmd *cobra.Command, _ []string) error {
	level, _ := cmd.Root().PersistentFlags().GetString("log-level")
	format, _ := cmd.Root().PersistentFlags().GetString("log-format")
	logger, err := newLogger(level, format)
	if err != nil {
		return err
	}
	cmd.SetContext(context.WithValue(cmd.Context(), loggerKey{}, logger))
	return nil
}

func newLogger(level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "", "warn":
		lvl = slog.LevelWarn
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level %q (expected debug|info|warn|error)", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q (expected text|json)", format)
	}
}

func getLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
