// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package errutil

import (
	"strings"

	"github.com/samber/oops"
)

// Describe returns a one-line description of err for user-facing output:
// the first non-blank line of its message. Tracebacks and other detail
// on later lines are dropped.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	for line := range strings.Lines(err.Error()) {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return "unknown error"
}

// Code returns the oops code of err, or "" when it has none.
func Code(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	code, _ := oopsErr.Code().(string) //nolint:errcheck // non-string codes are not used
	return code
}
