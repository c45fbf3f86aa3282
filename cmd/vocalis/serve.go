package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ekisa-team/vocalis/internal/config"
	"github.com/ekisa-team/vocalis/internal/model"
	grpcserver "github.com/ekisa-team/vocalis/internal/server/grpc"
	httpserver "github.com/ekisa-team/vocalis/internal/server/http"
	"github.com/ekisa-team/vocalis/internal/service"
	"github.com/ekisa-team/vocalis/internal/shutdown"
)

const closeTimeout = 5 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and gRPC servers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}
}

func runServe(cmd *cobra.Command, opts *rootOptions) error {
	var live atomic.Pointer[service.TTS]

	cfg, watcher, err := loadWatched(opts.configPath, func(cfg *config.Config) {
		if tts := live.Load(); tts != nil {
			tts.SetParams(paramsFrom(cfg))
		}
	})
	if err != nil {
		return err
	}
	if watcher != nil {
		defer watcher.Close()
	}

	setupLogger(cfg, opts.logLevel)
	slog.Info("Config loaded", "path", opts.configPath, "default_model", cfg.Models.Default)

	coordinator := shutdown.New(cfg.Server.ShutdownGrace)
	grpcSrv := grpcserver.NewServer()
	registry := newRegistry(cfg, newResolver(cfg), model.WithStatusHook(grpcSrv.ObserveModel))
	defer func() {
		if err := registry.Close(); err != nil {
			slog.Error("Failed to close engines", "error", err)
		}
	}()

	tts := newService(cfg, registry, coordinator)
	live.Store(tts)

	httpSrv, err := httpserver.NewServer(httpserver.Config{
		Port:        cfg.Server.HTTPPort,
		CORSOrigins: cfg.Server.CORSOrigins,
	}, tts, coordinator)
	if err != nil {
		return err
	}

	coordinator.OnDrain(grpcSrv.Drain)
	coordinator.OnDrain(func() {
		slog.Info("Draining", "in_flight", coordinator.InFlight(), "grace", cfg.Server.ShutdownGrace)
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go coordinator.Watch(ctx, os.Interrupt, syscall.SIGTERM)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(httpSrv.ListenAndServe)
	if cfg.Server.GRPCPort > 0 {
		g.Go(func() error {
			return grpcSrv.ListenAndServe(cfg.Server.GRPCPort)
		})
	} else {
		slog.Info("gRPC health server disabled")
	}
	g.Go(func() error {
		select {
		case <-coordinator.Terminated():
		case <-gctx.Done():
		}

		slog.Info("Shutting down servers")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
		defer cancel()

		grpcSrv.Stop()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("Shutdown complete")
	return nil
}

// loadWatched loads the config and hot-reloads it when the file's directory
// exists. Otherwise the config is loaded once.
func loadWatched(path string, apply func(*config.Config)) (*config.Config, *config.Watcher, error) {
	if _, err := os.Stat(filepath.Dir(path)); errors.Is(err, fs.ErrNotExist) {
		cfg, err := config.Load(path)
		return cfg, nil, err
	}

	watcher, err := config.NewWatcher(path, func(cfg *config.Config, err error) {
		if err != nil {
			slog.Error("Config reload rejected, keeping previous values", "error", err)
			return
		}
		apply(cfg)
	})
	if err != nil {
		return nil, nil, err
	}

	return watcher.Snapshot(), watcher, nil
}
