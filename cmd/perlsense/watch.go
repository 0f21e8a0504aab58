package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"perlsense/internal/driver"
	"perlsense/internal/observ"
	"perlsense/internal/project"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] [dir]",
	Short: "Index a workspace and keep the index current as files change",
	Long: `Watch indexes the workspace, then follows the file system and reindexes
changed files until interrupted. With --metrics-addr the indexing metrics are
served in the Prometheus text format.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	addWorkspaceFlags(watchCmd)
	watchCmd.Flags().Duration("debounce", driver.DefaultDebounce, "how long a burst of changes settles before reindexing")
	watchCmd.Flags().String("metrics-addr", "", "serve metrics on this address (e.g. :9464)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	debounce, _ := cmd.Flags().GetDuration("debounce")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

	s, err := openSession(cmd, dirArg(args))
	if err != nil {
		return err
	}
	defer s.ws.Shutdown()

	if metricsAddr != "" {
		stop, err := serveMetrics(ctx, s, metricsAddr)
		if err != nil {
			return err
		}
		defer stop()
	}

	if err := s.index(cmd); err != nil {
		return err
	}
	s.log.Info("watching", "files", len(s.ws.Index().Files()), "symbols", s.ws.Index().Stats().Symbols)

	w, err := driver.NewWatcher(s.manifest.Root, debounce, s.log)
	if err != nil {
		return err
	}
	m := project.NewMatcher(s.manifest.Root, s.manifest.Config.Workspace)
	w.Accept = m.Accept
	w.SkipDir = m.SkipDir

	return w.Run(ctx, func(b driver.Batch) {
		for _, path := range b.Removed {
			if s.ws.Forget(path) {
				s.log.Info("removed", "path", path)
			}
		}
		for _, path := range b.Changed {
			if err := s.ws.Reindex(ctx, path, driver.LoadFile); err != nil {
				s.log.Warn("reindex failed", "path", path, "err", err)
				continue
			}
			s.log.Debug("reindexed", "path", path)
		}
		s.log.Info("index updated", "changed", len(b.Changed), "removed", len(b.Removed), "symbols", s.ws.Index().Stats().Symbols)
	})
}

func serveMetrics(ctx context.Context, s *session, addr string) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", observ.Handler(s.registry))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Warn("metrics server", "err", err)
		}
	}()
	s.log.Info("serving metrics", "addr", ln.Addr().String())
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}, nil
}
