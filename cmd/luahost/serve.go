// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/luahost/internal/config"
	"github.com/holomush/luahost/internal/observability"
	"github.com/holomush/luahost/internal/output"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the script HTTP API",
		Long: `Serve scripts over HTTP alongside metrics and health probes:

  GET  /scripts             list scripts
  POST /scripts/{name}/run  run a script and return its events
  GET  /metrics             Prometheus metrics
  GET  /healthz/liveness    liveness probe
  GET  /healthz/readiness   readiness probe`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().String(config.KeyMetricsAddr, config.DefaultMetricsAddr, "HTTP listen address")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	be, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer be.close()

	// Each request redirects the executor to its own collector.
	exec, err := newExecutor(cfg, be, output.NewRouter(output.Sinks{}))
	if err != nil {
		return err
	}

	srv := observability.NewServer(cfg.MetricsAddr, func() bool { return ctx.Err() == nil })
	srv.MountAPI(exec, be.scripts)

	errCh, err := srv.Start()
	if err != nil {
		return oops.Code("SERVE_FAILED").With("addr", cfg.MetricsAddr).Wrap(err)
	}
	slog.InfoContext(ctx, "serving scripts",
		"addr", srv.Addr(),
		"store", cfg.Store)

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		return err
	}
	if serveErr != nil {
		return oops.Code("SERVE_FAILED").Wrap(serveErr)
	}
	return nil
}
