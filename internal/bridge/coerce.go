// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package bridge

import (
	"reflect"

	lua "github.com/yuin/gopher-lua"
	luar "layeh.com/gopher-luar"
)

// Unrepresentable marks a host value that has no Lua form.
type Unrepresentable struct {
	TypeName string
}

// String returns "unrepresentable: <type>".
func (u Unrepresentable) String() string {
	return "unrepresentable: " + u.TypeName
}

// Coerce converts a host value to a Lua value. It never panics: primitives
// map to Lua primitives, errors to their message, class handles to class
// userdata, and every other value is wrapped by reference through luar.
// Values that cannot be wrapped become an Unrepresentable userdata.
//
//nolint:gocritic // captLocal: L is the idiomatic name for lua.LState
func Coerce(L *lua.LState, v any) (lv lua.LValue) {
	defer func() {
		if r := recover(); r != nil {
			lv = newUnrepresentable(L, v)
		}
	}()

	switch x := v.(type) {
	case nil:
		return lua.LNil
	case lua.LValue:
		return x
	case *ClassHandle:
		if x == nil {
			return lua.LNil
		}
		return newClassValue(L, x)
	case error:
		return lua.LString(x.Error())
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return lua.LBool(rv.Bool())
	case reflect.String:
		return lua.LString(rv.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return lua.LNumber(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return lua.LNumber(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return lua.LNumber(rv.Float())
	case reflect.Complex64, reflect.Complex128, reflect.UnsafePointer:
		return newUnrepresentable(L, v)
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		if rv.IsNil() {
			return lua.LNil
		}
	}

	return luar.New(L, v)
}

func newUnrepresentable(L *lua.LState, v any) lua.LValue {
	ud := L.NewUserData()
	ud.Value = Unrepresentable{TypeName: reflect.TypeOf(v).String()}
	ud.Metatable = metatable(L, unrepresentableTypeName, initUnrepresentableMetatable)
	return ud
}

func initUnrepresentableMetatable(L *lua.LState, mt *lua.LTable) {
	L.SetField(mt, "__tostring", L.NewFunction(func(L *lua.LState) int {
		ud := L.CheckUserData(1)
		if u, ok := ud.Value.(Unrepresentable); ok {
			L.Push(lua.LString(u.String()))
			return 1
		}
		L.Push(lua.LString("unrepresentable"))
		return 1
	}))
}
