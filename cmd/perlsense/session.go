package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"perlsense/internal/driver"
	"perlsense/internal/observ"
	"perlsense/internal/project"
	"perlsense/internal/ui"
	"perlsense/internal/workspace"
)

// session is a loaded project with its workspace, ready to index.
type session struct {
	manifest *project.Manifest
	ws       *workspace.Workspace
	log      *slog.Logger
	timer    *observ.Timer
	registry *prometheus.Registry
	files    []string
}

func addWorkspaceFlags(cmd *cobra.Command) {
	cmd.Flags().Int("jobs", 0, "max parallel workers for indexing (0=manifest or auto)")
	cmd.Flags().Bool("no-cache", false, "do not read or write the symbol cache")
	cmd.Flags().String("ui", "off", "progress UI (auto|on|off)")
}

// openSession loads the manifest above dir (or the --config one) and sets
// up the workspace it describes.
func openSession(cmd *cobra.Command, dir string) (*session, error) {
	flags := cmd.Root().PersistentFlags()
	configPath, _ := flags.GetString("config")

	var (
		m   *project.Manifest
		err error
	)
	if configPath != "" {
		m, err = project.LoadFile(configPath)
	} else {
		m, err = project.Load(dir)
	}
	if err != nil {
		return nil, err
	}

	log := getLogger(cmd.Context())
	level, _ := flags.GetString("log-level")
	format, _ := flags.GetString("log-format")
	if level == "" || format == "" {
		if level == "" {
			level = m.Config.Log.Level
		}
		if format == "" {
			format = m.Config.Log.Format
		}
		if log, err = newLogger(level, format); err != nil {
			return nil, err
		}
	}
	log = log.With("root", m.Root)

	jobs, _ := cmd.Flags().GetInt("jobs")
	if jobs <= 0 {
		jobs = m.Config.Index.Jobs
	}
	reg := prometheus.NewRegistry()
	opts := []workspace.Option{
		workspace.WithLogger(log),
		workspace.WithMetrics(observ.NewMetrics(reg)),
	}
	if jobs > 0 {
		opts = append(opts, workspace.WithJobs(jobs))
	}
	if m.Config.Index.MaxSymbols > 0 {
		opts = append(opts, workspace.WithMaxSymbols(m.Config.Index.MaxSymbols))
	}
	if noCache, _ := cmd.Flags().GetBool("no-cache"); !noCache {
		cache, err := driver.OpenDiskCache(m.Config.Index.CacheDir, "perlsense")
		if err != nil {
			log.Warn("symbol cache disabled", "err", err)
		} else {
			opts = append(opts, workspace.WithTableCache(cache))
		}
	}
	if m.Path != "" {
		log.Debug("manifest loaded", "path", m.Path)
	}

	return &session{
		manifest: m,
		ws:       workspace.New(opts...),
		log:      log,
		timer:    observ.NewTimer(),
		registry: reg,
	}, nil
}

// index discovers the workspace files and indexes them. A partial index is
// kept: failures are logged and only cancellation is returned.
func (s *session) index(cmd *cobra.Command) error {
	ctx := cmd.Context()
	stop := s.timer.Phase("discover")
	files, err := project.Discover(ctx, s.manifest.Root, s.manifest.Config.Workspace)
	stop(fmt.Sprintf("%d files", len(files)))
	if err != nil {
		return fmt.Errorf("discover: %w", err)
	}
	s.files = files

	mode, _ := cmd.Flags().GetString("ui")
	drawUI, err := progressUI(mode, isTerminal(os.Stdout))
	if err != nil {
		return err
	}

	stop = s.timer.Phase("index")
	if drawUI {
		err = s.indexWithUI(ctx, files)
	} else {
		err = s.ws.IndexFiles(ctx, files, driver.LoadFile)
	}
	stop(s.ws.State().String())

	switch {
	case err == nil:
	case errors.Is(err, context.Canceled), errors.Is(err, workspace.ErrClosed):
		return err
	default:
		s.log.Warn("index incomplete", "err", err)
	}
	return nil
}

// progressUI reads the --ui value; auto draws only on a terminal.
func progressUI(value string, tty bool) (bool, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return tty, nil
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

type indexOutcome struct {
	err error
}

func (s *session) indexWithUI(ctx context.Context, files []string) error {
	events := make(chan ui.Event, 256)
	outcomeCh := make(chan indexOutcome, 1)

	progress := func(done, total int, path string) {
		events <- ui.Event{Done: done, Total: total, Path: path}
	}
	ws := s.ws
	go func() {
		err := ws.IndexFilesWithProgress(ctx, files, driver.LoadFile, progress)
		outcomeCh <- indexOutcome{err: err}
		close(events)
	}()

	model := ui.NewProgressModel("indexing "+s.manifest.Root, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// Keep draining so indexing never blocks on a quit UI.
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return uiErr
	}
	return outcome.err
}

func (s *session) printTimings(cmd *cobra.Command) {
	if show, _ := cmd.Root().PersistentFlags().GetBool("timings"); show {
		fmt.Fprint(cmd.ErrOrStderr(), s.timer.Summary())
	}
}
