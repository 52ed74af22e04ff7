// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package session

import (
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// Session is one interpreter instance with its own global namespace. It
// serves a single run and is never reused.
type Session struct {
	state     *lua.LState
	libraries []string
	path      string
	closeOnce sync.Once
}

// State returns the underlying interpreter.
func (s *Session) State() *lua.LState {
	return s.state
}

// Libraries returns the installed library names in install order.
func (s *Session) Libraries() []string {
	return append([]string(nil), s.libraries...)
}

// PackagePath returns package.path as it was when the session was built.
func (s *Session) PackagePath() string {
	return s.path
}

// Close releases the interpreter. It is safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(s.state.Close)
}
