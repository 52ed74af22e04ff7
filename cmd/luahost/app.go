// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"io"

	"github.com/fatih/color"
	"github.com/samber/oops"

	"github.com/holomush/luahost/internal/bridge"
	"github.com/holomush/luahost/internal/config"
	"github.com/holomush/luahost/internal/executor"
	"github.com/holomush/luahost/internal/output"
	"github.com/holomush/luahost/internal/scripts"
	"github.com/holomush/luahost/internal/session"
	"github.com/holomush/luahost/internal/store"
)

// backend is an opened script store plus its optional run recorder.
type backend struct {
	scripts  scripts.Store
	recorder scripts.RunRecorder
	close    func()
}

// openBackend opens the store selected by cfg.
func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	switch cfg.Store {
	case config.StorePostgres:
		pg, err := store.Connect(ctx, cfg.DatabaseURL, store.ConnectOptions{})
		if err != nil {
			return nil, err
		}
		return &backend{scripts: pg, recorder: pg, close: pg.Close}, nil
	default:
		return &backend{
			scripts: scripts.NewFileStore(cfg.ScriptsDir, cfg.Extension),
			close:   func() {},
		}, nil
	}
}

// newExecutor wires the bridge, session factory and executor for cfg.
func newExecutor(cfg *config.Config, be *backend, router *output.Router) (*executor.Executor, error) {
	allow, err := cfg.Allowlist()
	if err != nil {
		return nil, oops.Code(config.CodeInvalid).Wrap(err)
	}

	factory := session.NewFactory(
		bridge.New(nil, bridge.WithAllowlist(allow)),
		session.WithExtension(cfg.Extension),
	)

	opts := []executor.Option{executor.WithScriptsDir(cfg.ScriptsDir)}
	if be.recorder != nil {
		opts = append(opts, executor.WithRecorder(be.recorder))
	}
	return executor.New(factory, be.scripts, router, opts...), nil
}

// consoleSinks prints events to the terminal. Errors go to errOut; the
// lifecycle channels are colored.
func consoleSinks(out, errOut io.Writer) output.Sinks {
	line := func(w io.Writer, c *color.Color) output.Sink {
		return func(text string) {
			//nolint:errcheck // console write failures are not actionable
			c.Fprintln(w, text)
		}
	}
	return output.Sinks{
		Normal:  line(out, color.New(color.Reset)),
		Info:    line(out, color.New(color.FgCyan)),
		Success: line(out, color.New(color.FgGreen)),
		Error:   line(errOut, color.New(color.FgRed, color.Bold)),
	}
}
