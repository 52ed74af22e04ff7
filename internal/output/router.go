// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package output routes categorized script output to caller-supplied sinks.
//
// Every run produces Normal events for intercepted print calls and lifecycle
// events (Info, Success, Error) emitted by the executor. Sinks are synchronous
// and unbuffered: each event reaches exactly one sink, in the order it was
// produced.
package output

import (
	"fmt"
	"log/slog"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// Kind identifies the channel an event is routed to.
type Kind int

// Event kinds.
const (
	Normal Kind = iota
	Error
	Success
	Info
)

// String returns the lowercase channel name.
func (k Kind) String() string {
	switch k {
	case Normal:
		return "normal"
	case Error:
		return "error"
	case Success:
		return "success"
	case Info:
		return "info"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name. Unknown names are an error.
func (k *Kind) UnmarshalText(text []byte) error {
	for _, kind := range []Kind{Normal, Error, Success, Info} {
		if kind.String() == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown output kind %q", text)
}

// Event is a single line of run output.
type Event struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
}

// Sink consumes the text of one event.
type Sink func(text string)

// Sinks holds the four output channels. Nil sinks drop their events.
type Sinks struct {
	Normal  Sink
	Error   Sink
	Success Sink
	Info    Sink
}

// Router dispatches events to sinks. It holds no per-run state and is safe to
// share between concurrent runs as long as the sinks themselves are.
type Router struct {
	sinks Sinks
}

// NewRouter creates a router over the given sinks.
func NewRouter(sinks Sinks) *Router {
	return &Router{sinks: sinks}
}

// Emit routes text to the sink for kind.
//
// A panicking sink is recovered and logged; the event is lost but the caller
// keeps running.
func (r *Router) Emit(kind Kind, text string) {
	sink := r.sink(kind)
	if sink == nil {
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			recordSinkFailure(kind)
			slog.Error("output sink panicked",
				"kind", kind.String(),
				"panic", rec)
		}
	}()
	sink(text)
}

// Normal emits a Normal event.
func (r *Router) Normal(text string) { r.Emit(Normal, text) }

// Error emits an Error event.
func (r *Router) Error(text string) { r.Emit(Error, text) }

// Success emits a Success event.
func (r *Router) Success(text string) { r.Emit(Success, text) }

// Info emits an Info event.
func (r *Router) Info(text string) { r.Emit(Info, text) }

// Print replaces the interpreter's print function. All arguments are converted
// with tostring semantics, joined by a tab and emitted as one Normal event.
//
//nolint:gocritic // captLocal: L is the idiomatic name for lua.LState
func (r *Router) Print(L *lua.LState) int {
	top := L.GetTop()
	parts := make([]string, top)
	for i := 1; i <= top; i++ {
		parts[i-1] = L.ToStringMeta(L.Get(i)).String()
	}
	r.Normal(strings.Join(parts, "\t"))
	return 0
}

func (r *Router) sink(kind Kind) Sink {
	switch kind {
	case Normal:
		return r.sinks.Normal
	case Error:
		return r.sinks.Error
	case Success:
		return r.sinks.Success
	case Info:
		return r.sinks.Info
	default:
		return nil
	}
}
