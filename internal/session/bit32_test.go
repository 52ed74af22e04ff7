// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"github.com/holomush/luahost/internal/session"
)

func newBit32State(t *testing.T) *lua.LState {
	t.Helper()
	L := lua.NewState()
	t.Cleanup(L.Close)
	L.Push(L.NewFunction(session.OpenBit32))
	L.Call(0, 0)
	return L
}

func TestBit32(t *testing.T) {
	tests := []struct {
		expr string
		want lua.LValue
	}{
		{"bit32.band(0xF0, 0x3C)", lua.LNumber(0x30)},
		{"bit32.band()", lua.LNumber(0xFFFFFFFF)},
		{"bit32.bor(0xF0, 0x0F, 0x100)", lua.LNumber(0x1FF)},
		{"bit32.bor()", lua.LNumber(0)},
		{"bit32.bxor(0xFF, 0x0F)", lua.LNumber(0xF0)},
		{"bit32.bnot(0)", lua.LNumber(0xFFFFFFFF)},
		{"bit32.bnot(-1)", lua.LNumber(0)},
		{"bit32.btest(1, 2)", lua.LFalse},
		{"bit32.btest(3, 2)", lua.LTrue},
		{"bit32.lshift(1, 4)", lua.LNumber(16)},
		{"bit32.lshift(1, 32)", lua.LNumber(0)},
		{"bit32.lshift(16, -4)", lua.LNumber(1)},
		{"bit32.lshift(0xFFFFFFFF, 4)", lua.LNumber(0xFFFFFFF0)},
		{"bit32.rshift(0x80000000, 31)", lua.LNumber(1)},
		{"bit32.rshift(1, -1)", lua.LNumber(2)},
		{"bit32.arshift(0x80000000, 4)", lua.LNumber(0xF8000000)},
		{"bit32.arshift(0x80000000, 40)", lua.LNumber(0xFFFFFFFF)},
		{"bit32.arshift(0x40000000, 4)", lua.LNumber(0x04000000)},
		{"bit32.lrotate(0x80000001, 1)", lua.LNumber(3)},
		{"bit32.rrotate(3, 1)", lua.LNumber(0x80000001)},
		{"bit32.lrotate(1, 33)", lua.LNumber(2)},
		{"bit32.extract(0xABCD, 4, 8)", lua.LNumber(0xBC)},
		{"bit32.extract(5, 0)", lua.LNumber(1)},
		{"bit32.replace(0, 0xF, 4, 4)", lua.LNumber(0xF0)},
		{"bit32.replace(0xFF, 0, 0, 4)", lua.LNumber(0xF0)},
		{"bit32.band(2^32 + 5, 7)", lua.LNumber(5)},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			L := newBit32State(t)
			require.NoError(t, L.DoString("result = "+tt.expr))
			assert.Equal(t, tt.want, L.GetGlobal("result"))
		})
	}
}

func TestBit32_FieldErrors(t *testing.T) {
	tests := []struct {
		expr    string
		message string
	}{
		{"bit32.extract(1, -1)", "field cannot be negative"},
		{"bit32.extract(1, 0, 0)", "width must be positive"},
		{"bit32.extract(1, 30, 4)", "trying to access non-existent bits"},
		{"bit32.replace(1, 1, 31, 2)", "trying to access non-existent bits"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			L := newBit32State(t)
			err := L.DoString("return " + tt.expr)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}
