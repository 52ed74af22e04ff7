// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package bridge_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"github.com/holomush/luahost/internal/bridge"
)

func TestCoerce_Primitives(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	tests := []struct {
		name string
		in   any
		want lua.LValue
	}{
		{"nil", nil, lua.LNil},
		{"bool", true, lua.LTrue},
		{"string", "text", lua.LString("text")},
		{"int", 42, lua.LNumber(42)},
		{"int8", int8(-3), lua.LNumber(-3)},
		{"uint64", uint64(7), lua.LNumber(7)},
		{"float32", float32(1.5), lua.LNumber(1.5)},
		{"float64", 2.25, lua.LNumber(2.25)},
		{"error", errors.New("went wrong"), lua.LString("went wrong")},
		{"lua value", lua.LString("as is"), lua.LString("as is")},
		{"nil pointer", (*bytes.Buffer)(nil), lua.LNil},
		{"nil map", map[string]int(nil), lua.LNil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bridge.Coerce(L, tt.in))
		})
	}
}

func TestCoerce_WrapsReferences(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	buf := &bytes.Buffer{}
	lv := bridge.Coerce(L, buf)

	ud, ok := lv.(*lua.LUserData)
	require.True(t, ok, "expected userdata, got %s", lv.Type())
	assert.Same(t, buf, ud.Value)
}

func TestCoerce_Unrepresentable(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	lv := bridge.Coerce(L, complex(1, 2))

	ud, ok := lv.(*lua.LUserData)
	require.True(t, ok)
	assert.Equal(t, bridge.Unrepresentable{TypeName: "complex128"}, ud.Value)

	L.SetGlobal("v", lv)
	require.NoError(t, L.DoString(`text = tostring(v)`))
	assert.Equal(t, lua.LString("unrepresentable: complex128"), L.GetGlobal("text"))
}
