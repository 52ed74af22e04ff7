// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package executor runs stored scripts in fresh sessions and reports each run
// as output events.
//
// Every run emits an Info event with the start time, any script output as
// Normal events, and then exactly one terminal event: Success when the script
// returns, Error when preparation or the script fails.
package executor

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	lua "github.com/yuin/gopher-lua"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/holomush/luahost/internal/logging"
	"github.com/holomush/luahost/internal/output"
	"github.com/holomush/luahost/internal/scripts"
	"github.com/holomush/luahost/internal/session"
	"github.com/holomush/luahost/pkg/errutil"
)

// Event texts.
const (
	TimeLayout     = "2006-01-02 15:04:05"
	SuccessMessage = "Script execution completed successfully"
	timePrefix     = "Time: "
	errorPrefix    = "Error: "
)

// Result describes a finished run.
type Result struct {
	RunID     string
	Script    string
	State     State
	Err       error
	StartedAt time.Time
	Duration  time.Duration
}

// Succeeded reports whether the script ran to completion.
func (r Result) Succeeded() bool {
	return r.State == Completed
}

// Executor runs scripts. It keeps no per-run state, so concurrent Run calls
// are safe; each gets its own session.
type Executor struct {
	factory    *session.Factory
	store      scripts.Store
	router     *output.Router
	scriptsDir string
	recorder   scripts.RunRecorder
	tracer     trace.Tracer
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures an Executor.
type Option func(*Executor)

// WithScriptsDir sets the directory added to each session's module search path.
func WithScriptsDir(dir string) Option {
	return func(e *Executor) { e.scriptsDir = dir }
}

// WithRecorder stores every run outcome through r.
func WithRecorder(r scripts.RunRecorder) Option {
	return func(e *Executor) { e.recorder = r }
}

// WithTracer overrides the tracer used for run spans.
func WithTracer(t trace.Tracer) Option {
	return func(e *Executor) {
		if t != nil {
			e.tracer = t
		}
	}
}

// WithLogger overrides the logger used for failure details.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock overrides the time source for the start timestamp.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) {
		if now != nil {
			e.now = now
		}
	}
}

// New creates an executor.
func New(factory *session.Factory, store scripts.Store, router *output.Router, opts ...Option) *Executor {
	e := &Executor{
		factory: factory,
		store:   store,
		router:  router,
		tracer:  otel.Tracer("luahost/executor"),
		logger:  slog.Default(),
		now:     time.Now,
	}
	if fs, ok := store.(*scripts.FileStore); ok {
		e.scriptsDir = fs.Dir()
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Redirect returns a copy of e that reports to r. The copy shares the
// factory, store and recorder.
func (e *Executor) Redirect(r *output.Router) *Executor {
	c := *e
	c.router = r
	return &c
}

// Run executes the named script to a terminal state. Failures are reported
// through the router and in the Result, never as a panic.
func (e *Executor) Run(ctx context.Context, name string) Result {
	started := e.now()
	res := Result{
		RunID:     ulid.Make().String(),
		Script:    name,
		StartedAt: started,
	}

	ctx = logging.ContextWithRunID(ctx, res.RunID)
	ctx, span := e.tracer.Start(ctx, "script.run",
		trace.WithAttributes(
			attribute.String("script.name", name),
			attribute.String("script.run_id", res.RunID),
		),
	)
	defer span.End()

	m := &machine{}
	err := e.execute(ctx, m, name, started)
	if err != nil {
		e.fail(ctx, m, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, errutil.Describe(err))
	} else {
		e.router.Success(SuccessMessage)
	}

	res.State = m.state
	res.Err = err
	res.Duration = time.Since(started)
	span.SetAttributes(attribute.String("script.outcome", res.State.String()))

	recordRun(res.State, res.Duration)
	e.record(ctx, res)

	slog.DebugContext(ctx, "script run finished",
		"script", name,
		"state", res.State.String(),
		"duration", res.Duration)
	return res
}

// execute drives the run from Idle up to Completed. On error the machine is
// left in Preparing or Running.
func (e *Executor) execute(ctx context.Context, m *machine, name string, started time.Time) error {
	if err := m.advance(Preparing); err != nil {
		return err
	}
	e.router.Info(timePrefix + started.Format(TimeLayout))

	sess, err := e.factory.NewSession(ctx, e.scriptsDir)
	if err != nil {
		return err
	}
	defer sess.Close()

	L := sess.State()
	L.SetContext(ctx)
	L.SetGlobal("print", L.NewFunction(e.router.Print))

	script, err := e.store.Read(ctx, name)
	if err != nil {
		return err
	}

	fn, err := L.Load(strings.NewReader(script.Source), name)
	if err != nil {
		return loadError(name, err)
	}

	if err := m.advance(Running); err != nil {
		return err
	}
	if err := L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}); err != nil {
		return scriptError(name, err)
	}
	return m.advance(Completed)
}

func (e *Executor) fail(ctx context.Context, m *machine, err error) {
	if advErr := m.advance(Failed); advErr != nil {
		errutil.LogErrorContext(ctx, e.logger, "run state", advErr)
		m.state = Failed
	}
	errutil.LogErrorContext(ctx, e.logger, "script run failed", err)
	e.router.Error(errorPrefix + errutil.Describe(err))
}

func (e *Executor) record(ctx context.Context, res Result) {
	if e.recorder == nil {
		return
	}
	rec := scripts.RunRecord{
		ID:        res.RunID,
		Script:    res.Script,
		Outcome:   res.State.String(),
		StartedAt: res.StartedAt,
		Duration:  res.Duration,
	}
	if res.Err != nil {
		rec.ErrorCode = errutil.Code(res.Err)
		rec.Message = errutil.Describe(res.Err)
	}
	if err := e.recorder.RecordRun(ctx, rec); err != nil {
		slog.WarnContext(ctx, "failed to record script run",
			"script", res.Script,
			"error", err)
	}
}
