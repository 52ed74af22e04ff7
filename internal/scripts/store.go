// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package scripts defines script storage and a directory-backed store.
package scripts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/oops"
)

// Error codes for script storage failures.
const (
	CodeScriptNotFound = "SCRIPT_NOT_FOUND"
	CodeInvalidName    = "INVALID_SCRIPT_NAME"
)

// Descriptor is a named script and its source text.
type Descriptor struct {
	Name   string `json:"name" yaml:"name"`
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}

// Store looks up and persists scripts by name.
type Store interface {
	// Read returns the named script or a SCRIPT_NOT_FOUND error.
	Read(ctx context.Context, name string) (Descriptor, error)
	// List returns the names of all stored scripts, sorted.
	List(ctx context.Context) ([]string, error)
	// Save creates or replaces a script.
	Save(ctx context.Context, script Descriptor) error
	// Delete removes the named script or returns a SCRIPT_NOT_FOUND error.
	Delete(ctx context.Context, name string) error
}

// RunRecord is the outcome of one script run.
type RunRecord struct {
	ID        string        `json:"id" yaml:"id"`
	Script    string        `json:"script" yaml:"script"`
	Outcome   string        `json:"outcome" yaml:"outcome"`
	ErrorCode string        `json:"error_code,omitempty" yaml:"error_code,omitempty"`
	Message   string        `json:"message,omitempty" yaml:"message,omitempty"`
	StartedAt time.Time     `json:"started_at" yaml:"started_at"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}

// RunRecorder persists run outcomes. Stores that keep history implement it.
type RunRecorder interface {
	RecordRun(ctx context.Context, run RunRecord) error
}

// ErrNotFound creates a SCRIPT_NOT_FOUND error for name.
func ErrNotFound(name string) error {
	return oops.Code(CodeScriptNotFound).
		In("scripts").
		With("script", name).
		Errorf("script not found: %s", name)
}

// IsNotFound reports whether err is a SCRIPT_NOT_FOUND error.
func IsNotFound(err error) bool {
	oopsErr, ok := oops.AsOops(err)
	return ok && oopsErr.Code() == CodeScriptNotFound
}

// ValidateName checks that name can be used as a script name: non-empty,
// no path separators, no leading dot, and no surrounding whitespace.
func ValidateName(name string) error {
	var reason string
	switch {
	case name == "":
		reason = "name is empty"
	case strings.TrimSpace(name) != name:
		reason = "name has leading or trailing whitespace"
	case strings.ContainsAny(name, `/\`):
		reason = "name contains a path separator"
	case strings.HasPrefix(name, "."):
		reason = "name starts with a dot"
	case strings.ContainsRune(name, 0):
		reason = "name contains a NUL byte"
	default:
		return nil
	}
	return oops.Code(CodeInvalidName).
		In("scripts").
		With("script", name).
		Errorf("invalid script name %q: %s", name, reason)
}

// Template returns the source of a newly created script.
func Template(name string) string {
	return fmt.Sprintf("-- %s\nprint(\"Hello from %s!\")\n", name, name)
}
