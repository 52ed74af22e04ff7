// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package session builds fresh Lua interpreter sessions for script runs.
package session

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"

	"github.com/holomush/luahost/internal/bridge"
)

// DefaultExtension is the script file extension used for the module search path.
const DefaultExtension = ".lua"

// Library names, in install order.
const (
	LibBase      = "base"
	LibPackage   = "package"
	LibBit32     = "bit32"
	LibTable     = "table"
	LibString    = "string"
	LibCoroutine = "coroutine"
	LibMath      = "math"
	LibIO        = "io"
	LibOS        = "os"
)

// library is a named opener installed into every session.
type library struct {
	name string
	fn   lua.LGFunction
}

// standardLibraries returns the libraries every session gets before the bridge.
func standardLibraries() []library {
	return []library{
		{LibBase, lua.OpenBase},
		{LibPackage, lua.OpenPackage},
		{LibBit32, OpenBit32},
		{LibTable, lua.OpenTable},
		{LibString, lua.OpenString},
		{LibCoroutine, lua.OpenCoroutine},
		{LibMath, lua.OpenMath},
		{LibIO, lua.OpenIo},
		{LibOS, lua.OpenOs},
	}
}

// Factory creates interpreter sessions. The install order is fixed at
// construction, so every session built by one factory is identical.
type Factory struct {
	libraries []library
	extension string
}

// Option configures a Factory.
type Option func(*Factory)

// WithExtension sets the extension used for the scripts directory search
// path entry. The default is DefaultExtension.
func WithExtension(ext string) Option {
	return func(f *Factory) {
		if ext != "" {
			f.extension = ext
		}
	}
}

// NewFactory creates a factory that installs the standard libraries and
// then b as the luajava module.
func NewFactory(b *bridge.Bridge, opts ...Option) *Factory {
	libs := standardLibraries()
	libs = append(libs, library{bridge.ModuleName, b.Loader})

	f := &Factory{
		libraries: libs,
		extension: DefaultExtension,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Libraries returns the library names in install order.
func (f *Factory) Libraries() []string {
	names := make([]string, len(f.libraries))
	for i, lib := range f.libraries {
		names[i] = lib.name
	}
	return names
}

// NewSession builds a fresh session and adds scriptsDir to its module search
// path. Either every library installs or no session is returned.
func (f *Factory) NewSession(ctx context.Context, scriptsDir string) (*Session, error) {
	L := lua.NewState(lua.Options{
		SkipOpenLibs: true,
	})

	for _, lib := range f.libraries {
		if err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(lib.fn),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name)); err != nil {
			L.Close()
			return nil, buildError(lib.name, err)
		}
	}

	path, err := appendSearchPath(L, scriptsDir, f.extension)
	if err != nil {
		L.Close()
		return nil, err
	}

	slog.DebugContext(ctx, "session created",
		"libraries", len(f.libraries),
		"package_path", path)

	return &Session{
		state:     L,
		libraries: f.Libraries(),
		path:      path,
	}, nil
}

// appendSearchPath adds "<dir>/?<ext>" to package.path at the lowest
// priority. Existing entries are kept as they are.
func appendSearchPath(L *lua.LState, dir, ext string) (string, error) {
	pkg, ok := L.GetGlobal(LibPackage).(*lua.LTable)
	if !ok {
		return "", oops.Code(CodeSessionBuild).
			In("session").
			Errorf("package library is not installed")
	}

	current := lua.LVAsString(L.GetField(pkg, "path"))
	if dir == "" {
		return current, nil
	}

	entry := filepath.Join(dir, "?"+ext)
	path := entry
	if current != "" {
		path = current + ";" + entry
	}
	L.SetField(pkg, "path", lua.LString(path))
	return path, nil
}
