// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package capability decides which host classes scripts may reach.
//
// Pattern matching uses gobwas/glob with '.' as the segment separator:
//   - '*' matches a single segment (does not cross '.')
//   - '**' matches zero or more segments (crosses '.')
//
// Examples:
//   - "time.Time" matches only "time.Time"
//   - "container/list.*" matches "container/list.List" and "container/list.Element"
//   - "**" matches any class name
package capability

import (
	"sync"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// AllowAll is the pattern granting every class.
const AllowAll = "**"

// compiledGrant holds a pattern and its compiled glob for efficient matching.
type compiledGrant struct {
	pattern string
	glob    glob.Glob
}

// Allowlist checks class names against a set of glob patterns.
//
// Allowlist is safe for concurrent use. The zero value denies everything.
type Allowlist struct {
	grants []compiledGrant
	mu     sync.RWMutex
}

// NewAllowlist compiles patterns into an allowlist.
func NewAllowlist(patterns []string) (*Allowlist, error) {
	a := &Allowlist{}
	if err := a.SetPatterns(patterns); err != nil {
		return nil, err
	}
	return a, nil
}

// Unrestricted returns an allowlist that grants every class.
func Unrestricted() *Allowlist {
	a, err := NewAllowlist([]string{AllowAll})
	if err != nil {
		panic(err) // AllowAll always compiles
	}
	return a
}

// SetPatterns replaces the granted patterns. Validation is all-or-nothing: if
// any pattern is empty or fails to compile the allowlist is left unchanged.
func (a *Allowlist) SetPatterns(patterns []string) error {
	compiled := make([]compiledGrant, len(patterns))
	for i, pattern := range patterns {
		if pattern == "" {
			return oops.In("capability").With("index", i).Errorf("empty class pattern")
		}
		g, err := glob.Compile(pattern, '.')
		if err != nil {
			return oops.In("capability").With("index", i).With("pattern", pattern).Wrapf(err, "invalid class pattern")
		}
		compiled[i] = compiledGrant{pattern: pattern, glob: g}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.grants = compiled
	return nil
}

// Patterns returns a copy of the granted patterns.
func (a *Allowlist) Patterns() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	patterns := make([]string, len(a.grants))
	for i, g := range a.grants {
		patterns[i] = g.pattern
	}
	return patterns
}

// Allows reports whether className matches any granted pattern.
// Empty names are never allowed.
func (a *Allowlist) Allows(className string) bool {
	if className == "" {
		return false
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	for _, grant := range a.grants {
		if grant.glob.Match(className) {
			return true
		}
	}
	return false
}
