// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package bridge exposes host Go types to Lua scripts.
//
// Scripts reach the bridge through the luajava module:
//
//	local List = luajava.bindClass("container/list.List") -- class or nil
//	local l = luajava.new(List)                           -- zero-argument instance
//	local now = luajava.loadLib("time.Time", "Now")       -- static entry point
//
// Class names resolve through an ordered chain of registries (application,
// context, default). Instances are wrapped with gopher-luar so scripts can
// call their methods directly.
//
//nolint:gocritic // captLocal: L is the idiomatic name for lua.LState
package bridge

import (
	"context"
	"fmt"
	"log/slog"

	lua "github.com/yuin/gopher-lua"

	"github.com/holomush/luahost/internal/capability"
)

// ModuleName is the global under which the bridge is installed.
const ModuleName = "luajava"

// Lua type names for the bridge's userdata metatables.
const (
	classTypeName           = "luajava.class"
	errorTypeName           = "luajava.error"
	unrepresentableTypeName = "luajava.unrepresentable"
)

// Bridge resolves, instantiates and invokes host classes on behalf of scripts.
// It holds no per-session state; one Bridge may serve many sessions.
type Bridge struct {
	resolver  *Resolver
	allowlist *capability.Allowlist
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithAllowlist restricts the classes scripts may reach. Without it every
// resolvable class is reachable.
func WithAllowlist(a *capability.Allowlist) Option {
	return func(b *Bridge) {
		if a != nil {
			b.allowlist = a
		}
	}
}

// WithResolver replaces the default application -> context -> default chain.
func WithResolver(r *Resolver) Option {
	return func(b *Bridge) {
		if r != nil {
			b.resolver = r
		}
	}
}

// New creates a bridge whose first resolution tier is app. A nil app
// registry is treated as empty.
func New(app *Registry, opts ...Option) *Bridge {
	if app == nil {
		app = NewRegistry()
	}
	b := &Bridge{
		resolver:  DefaultResolver(app),
		allowlist: capability.Unrestricted(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Resolver returns the bridge's resolution chain.
func (b *Bridge) Resolver() *Resolver {
	return b.resolver
}

// BindClass resolves name. Unknown and denied names report false.
func (b *Bridge) BindClass(ctx context.Context, name string) (*ClassHandle, bool) {
	h, err := b.resolve(ctx, name)
	if err != nil {
		slog.DebugContext(ctx, "bindClass miss", "class", name, "error", err)
		return nil, false
	}
	return h, true
}

// Instantiate builds a zero-argument instance of the class behind h.
func (b *Bridge) Instantiate(_ context.Context, h *ClassHandle) (any, error) {
	if !b.allowlist.Allows(h.Name()) {
		return nil, InstantiationError(h.Name(), ErrClassDenied(h.Name()))
	}
	v, err := instantiate(h.Class())
	if err != nil {
		return nil, InstantiationError(h.Name(), err)
	}
	return v, nil
}

// InstantiateByName resolves className and instantiates it.
func (b *Bridge) InstantiateByName(ctx context.Context, className string) (any, error) {
	h, err := b.resolve(ctx, className)
	if err != nil {
		return nil, InstantiationError(className, err)
	}
	return b.Instantiate(ctx, h)
}

// InvokeStatic calls the zero-argument static entry point method of className.
func (b *Bridge) InvokeStatic(ctx context.Context, className, method string) (any, error) {
	h, err := b.resolve(ctx, className)
	if err != nil {
		return nil, InvocationError(className, method, err)
	}
	fn, ok := h.Class().Statics[method]
	if !ok {
		return nil, InvocationError(className, method, fmt.Errorf("no static method %s on %s", method, className))
	}
	v, err := callNullary(fn)
	if err != nil {
		return nil, InvocationError(className, method, err)
	}
	return v, nil
}

func (b *Bridge) resolve(ctx context.Context, name string) (*ClassHandle, error) {
	if !b.allowlist.Allows(name) {
		return nil, ErrClassDenied(name)
	}
	return b.resolver.Resolve(ctx, name)
}

// Loader installs the luajava module into L, as a global and in
// package.loaded. It has the shape of a gopher-lua library opener.
func (b *Bridge) Loader(L *lua.LState) int {
	metatable(L, classTypeName, initClassMetatable)
	metatable(L, errorTypeName, initErrorMetatable)

	mod := L.RegisterModule(ModuleName, map[string]lua.LGFunction{
		"bindClass":   b.luaBindClass,
		"new":         b.luaNew,
		"createProxy": b.luaCreateProxy,
		"loadLib":     b.luaLoadLib,
	})
	L.Push(mod)
	return 1
}

func (b *Bridge) luaBindClass(L *lua.LState) int {
	name, ok := L.Get(1).(lua.LString)
	if !ok {
		recordCall(opBindClass, statusNotFound)
		L.Push(lua.LNil)
		return 1
	}

	h, found := b.BindClass(stateContext(L), string(name))
	if !found {
		recordCall(opBindClass, statusNotFound)
		L.Push(lua.LNil)
		return 1
	}
	recordCall(opBindClass, statusOK)
	L.Push(newClassValue(L, h))
	return 1
}

func (b *Bridge) luaNew(L *lua.LState) int {
	ctx := stateContext(L)
	nargs := L.GetTop()
	if nargs < 1 {
		recordCall(opNew, statusError)
		return raise(L, InstantiationError("", errNoArgs))
	}

	var (
		h    *ClassHandle
		name string
	)
	switch arg := L.Get(1).(type) {
	case lua.LString:
		name = string(arg)
	case *lua.LUserData:
		ch, ok := arg.Value.(*ClassHandle)
		if !ok {
			recordCall(opNew, statusError)
			return raise(L, InstantiationError("", fmt.Errorf("expected class or class name, got %s", arg.Type())))
		}
		h, name = ch, ch.Name()
	default:
		recordCall(opNew, statusError)
		return raise(L, InstantiationError("", fmt.Errorf("expected class or class name, got %s", arg.Type())))
	}

	if nargs > 1 {
		recordCall(opNew, statusError)
		return raise(L, InstantiationError(name, errConstructorArgs))
	}

	var (
		v   any
		err error
	)
	if h != nil {
		v, err = b.Instantiate(ctx, h)
	} else {
		v, err = b.InstantiateByName(ctx, name)
	}
	if err != nil {
		recordCall(opNew, statusError)
		return raise(L, err)
	}

	recordCall(opNew, statusOK)
	L.Push(Coerce(L, v))
	return 1
}

// luaCreateProxy is reserved for dynamic proxies and always returns nil.
func (b *Bridge) luaCreateProxy(L *lua.LState) int {
	recordCall(opCreateProxy, statusOK)
	L.Push(lua.LNil)
	return 1
}

func (b *Bridge) luaLoadLib(L *lua.LState) int {
	className, ok1 := L.Get(1).(lua.LString)
	method, ok2 := L.Get(2).(lua.LString)
	if !ok1 || !ok2 {
		recordCall(opLoadLib, statusError)
		return raise(L, InvocationError(L.Get(1).String(), L.Get(2).String(),
			fmt.Errorf("expected class name and method name strings, got %s and %s", L.Get(1).Type(), L.Get(2).Type())))
	}

	v, err := b.InvokeStatic(stateContext(L), string(className), string(method))
	if err != nil {
		recordCall(opLoadLib, statusError)
		return raise(L, err)
	}

	recordCall(opLoadLib, statusOK)
	L.Push(Coerce(L, v))
	return 1
}

// raise throws err into Lua as an error userdata so the Go error survives
// the trip through the interpreter. It does not return.
func raise(L *lua.LState, err error) int {
	ud := L.NewUserData()
	ud.Value = err
	ud.Metatable = metatable(L, errorTypeName, initErrorMetatable)
	L.Error(ud, 1)
	return 0
}

// ErrorFromValue extracts the Go error carried by a value raised by the
// bridge.
func ErrorFromValue(lv lua.LValue) (error, bool) {
	ud, ok := lv.(*lua.LUserData)
	if !ok {
		return nil, false
	}
	err, ok := ud.Value.(error)
	return err, ok
}

func newClassValue(L *lua.LState, h *ClassHandle) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = h
	ud.Metatable = metatable(L, classTypeName, initClassMetatable)
	return ud
}

func checkClass(L *lua.LState, n int) *ClassHandle {
	ud := L.CheckUserData(n)
	h, ok := ud.Value.(*ClassHandle)
	if !ok {
		L.ArgError(n, "class expected")
		return nil
	}
	return h
}

func initClassMetatable(L *lua.LState, mt *lua.LTable) {
	L.SetField(mt, "__tostring", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(checkClass(L, 1).String()))
		return 1
	}))
	L.SetField(mt, "__eq", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(checkClass(L, 1).Equal(checkClass(L, 2))))
		return 1
	}))
	L.SetField(mt, "__index", L.NewFunction(func(L *lua.LState) int {
		h := checkClass(L, 1)
		switch L.CheckString(2) {
		case "name":
			L.Push(lua.LString(h.Name()))
		case "tier":
			L.Push(lua.LString(h.Tier()))
		default:
			L.Push(lua.LNil)
		}
		return 1
	}))
}

func initErrorMetatable(L *lua.LState, mt *lua.LTable) {
	L.SetField(mt, "__tostring", L.NewFunction(func(L *lua.LState) int {
		if err, ok := ErrorFromValue(L.Get(1)); ok {
			L.Push(lua.LString(err.Error()))
			return 1
		}
		L.Push(lua.LString("error"))
		return 1
	}))
}

// metatable returns the registry metatable for typ, initializing it on first
// use in this state.
func metatable(L *lua.LState, typ string, init func(*lua.LState, *lua.LTable)) *lua.LTable {
	if mt, ok := L.GetTypeMetatable(typ).(*lua.LTable); ok {
		return mt
	}
	mt := L.NewTypeMetatable(typ)
	init(L, mt)
	return mt
}

func stateContext(L *lua.LState) context.Context {
	if ctx := L.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
