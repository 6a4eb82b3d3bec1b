package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/RobinCoderZhao/pdfsite/internal/accesslog"
	"github.com/RobinCoderZhao/pdfsite/internal/dev"
	"github.com/RobinCoderZhao/pdfsite/internal/server"
	"github.com/RobinCoderZhao/pdfsite/internal/siteconfig"
	"github.com/RobinCoderZhao/pdfsite/pkg/scheduler"
	"github.com/RobinCoderZhao/pdfsite/pkg/storage"
)

func serveCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dev server or the production preview server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return runServe(cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

func runServe(cfg siteconfig.SiteConfig) error {
	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		slog.Debug(fmt.Sprintf(format, args...))
	})); err != nil {
		slog.Warn("failed to set GOMAXPROCS", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	deps := server.Deps{Config: cfg, Pages: catalog, Version: version}
	var wg sync.WaitGroup
	stopAccessLog := func() {}

	if cfg.AccessLog.Enabled {
		db, err := storage.Open(storage.Config{DSN: cfg.Storage.DSN})
		if err != nil {
			return err
		}
		defer db.Close()

		store, err := accesslog.NewStore(ctx, db)
		if err != nil {
			return err
		}
		recorder := accesslog.NewRecorder(store, cfg.AccessLog.Buffer)
		deps.Recorder = recorder
		deps.Stats = store

		sched := scheduler.New()
		sched.Add(retentionJob(store, cfg.AccessLog.Retention))
		stopAccessLog = startAccessLog(recorder, sched)
	}

	if cfg.Server.Mode == siteconfig.ModeDev {
		reload := dev.NewReloadServer()
		defer reload.Close()
		deps.Reload = reload

		watcher := dev.NewWatcher(dev.WatcherConfig{Paths: []string{cfg.SourceRoot}})
		watcher.OnChange(reload.HandleChanges)
		wg.Add(1)
		go func() { defer wg.Done(); _ = watcher.Run(ctx) }()
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server.New(deps).Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting pdfsite server",
			"addr", cfg.Server.Addr,
			"mode", cfg.Server.Mode,
			"base", cfg.BaseURL,
			"languages", len(cfg.Languages),
			"pages", catalog.Len(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			stop()
			stopAccessLog()
			wg.Wait()
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}
	stopAccessLog()
	wg.Wait()
	return nil
}

// startAccessLog runs the recorder and its maintenance jobs until the
// returned stop function is called. They outlive the signal context so hits
// from requests drained by Shutdown are still written.
func startAccessLog(recorder *accesslog.Recorder, sched *scheduler.Scheduler) (stop func()) {
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); recorder.Run(ctx) }()
	go func() { defer wg.Done(); sched.Start(ctx) }()
	return func() {
		cancel()
		wg.Wait()
	}
}

func retentionJob(store *accesslog.Store, retention time.Duration) scheduler.Job {
	return scheduler.Job{
		Name:     "access-log-retention",
		Interval: time.Hour,
		Fn: func(ctx context.Context) error {
			if retention <= 0 {
				return nil
			}
			n, err := store.Prune(ctx, time.Now().Add(-retention))
			if err != nil {
				return err
			}
			if n > 0 {
				slog.Info("pruned access log", "rows", n)
			}
			return nil
		},
	}
}
