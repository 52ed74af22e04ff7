// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package executor

import (
	"errors"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"

	"github.com/holomush/luahost/internal/bridge"
)

// Error codes raised by the executor.
const (
	CodeScriptLoad        = "SCRIPT_LOAD"
	CodeUncaughtScript    = "UNCAUGHT_SCRIPT"
	CodeInvalidTransition = "INVALID_TRANSITION"
)

// loadError classifies a chunk that failed to compile.
func loadError(script string, err error) error {
	return oops.Code(CodeScriptLoad).
		In("executor").
		With("script", script).
		Wrap(err)
}

// scriptError classifies an error that escaped the script. Errors raised by
// the bridge keep their own classification.
func scriptError(script string, err error) error {
	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) {
		if goErr, ok := bridge.ErrorFromValue(apiErr.Object); ok {
			return goErr
		}
	}
	return oops.Code(CodeUncaughtScript).
		In("executor").
		With("script", script).
		Wrap(err)
}
