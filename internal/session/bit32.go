// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package session

import (
	"math"
	"math/bits"

	lua "github.com/yuin/gopher-lua"
)

const twoTo32 = 4294967296.0

var bit32Funcs = map[string]lua.LGFunction{
	"band":    bit32Band,
	"bor":     bit32Bor,
	"bxor":    bit32Bxor,
	"bnot":    bit32Bnot,
	"btest":   bit32Btest,
	"lshift":  bit32Lshift,
	"rshift":  bit32Rshift,
	"arshift": bit32Arshift,
	"lrotate": bit32Lrotate,
	"rrotate": bit32Rrotate,
	"extract": bit32Extract,
	"replace": bit32Replace,
}

// OpenBit32 installs the Lua 5.2 bit32 library. Operands are taken modulo
// 2^32 and results are unsigned 32-bit integers.
//
//nolint:gocritic // captLocal: L is the idiomatic name for lua.LState
func OpenBit32(L *lua.LState) int {
	mod := L.RegisterModule(LibBit32, bit32Funcs)
	L.Push(mod)
	return 1
}

func toUint32(n lua.LNumber) uint32 {
	f := math.Floor(float64(n))
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	m := math.Mod(f, twoTo32)
	if m < 0 {
		m += twoTo32
	}
	return uint32(m)
}

func checkUint32(L *lua.LState, n int) uint32 {
	return toUint32(L.CheckNumber(n))
}

func pushUint32(L *lua.LState, v uint32) int {
	L.Push(lua.LNumber(v))
	return 1
}

func fold(L *lua.LState, init uint32, op func(a, b uint32) uint32) uint32 {
	acc := init
	for i := 1; i <= L.GetTop(); i++ {
		acc = op(acc, checkUint32(L, i))
	}
	return acc
}

func bit32Band(L *lua.LState) int {
	return pushUint32(L, fold(L, math.MaxUint32, func(a, b uint32) uint32 { return a & b }))
}

func bit32Bor(L *lua.LState) int {
	return pushUint32(L, fold(L, 0, func(a, b uint32) uint32 { return a | b }))
}

func bit32Bxor(L *lua.LState) int {
	return pushUint32(L, fold(L, 0, func(a, b uint32) uint32 { return a ^ b }))
}

func bit32Bnot(L *lua.LState) int {
	return pushUint32(L, ^checkUint32(L, 1))
}

func bit32Btest(L *lua.LState) int {
	v := fold(L, math.MaxUint32, func(a, b uint32) uint32 { return a & b })
	L.Push(lua.LBool(v != 0))
	return 1
}

func shift(x uint32, disp int) uint32 {
	switch {
	case disp <= -32 || disp >= 32:
		return 0
	case disp >= 0:
		return x << uint(disp)
	default:
		return x >> uint(-disp)
	}
}

func bit32Lshift(L *lua.LState) int {
	return pushUint32(L, shift(checkUint32(L, 1), L.CheckInt(2)))
}

func bit32Rshift(L *lua.LState) int {
	return pushUint32(L, shift(checkUint32(L, 1), -L.CheckInt(2)))
}

func bit32Arshift(L *lua.LState) int {
	x := checkUint32(L, 1)
	disp := L.CheckInt(2)
	if disp < 0 || x&0x80000000 == 0 {
		return pushUint32(L, shift(x, -disp))
	}
	if disp >= 32 {
		return pushUint32(L, math.MaxUint32)
	}
	return pushUint32(L, uint32(int32(x)>>uint(disp)))
}

func bit32Lrotate(L *lua.LState) int {
	return pushUint32(L, bits.RotateLeft32(checkUint32(L, 1), L.CheckInt(2)%32))
}

func bit32Rrotate(L *lua.LState) int {
	return pushUint32(L, bits.RotateLeft32(checkUint32(L, 1), -(L.CheckInt(2)%32)))
}

// fieldArgs validates the field and width arguments of extract and replace,
// starting at argument n.
func fieldArgs(L *lua.LState, n int) (field, width int) {
	field = L.CheckInt(n)
	width = L.OptInt(n+1, 1)
	if field < 0 {
		L.ArgError(n, "field cannot be negative")
	}
	if width <= 0 {
		L.ArgError(n+1, "width must be positive")
	}
	if field+width > 32 {
		L.RaiseError("trying to access non-existent bits")
	}
	return field, width
}

func mask(width int) uint32 {
	return math.MaxUint32 >> uint(32-width)
}

func bit32Extract(L *lua.LState) int {
	x := checkUint32(L, 1)
	field, width := fieldArgs(L, 2)
	return pushUint32(L, (x>>uint(field))&mask(width))
}

func bit32Replace(L *lua.LState) int {
	x := checkUint32(L, 1)
	v := checkUint32(L, 2)
	field, width := fieldArgs(L, 3)
	m := mask(width)
	return pushUint32(L, (x&^(m<<uint(field)))|((v&m)<<uint(field)))
}
