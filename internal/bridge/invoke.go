// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package bridge

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	errConstructorArgs = errors.New("constructor arguments are not supported")
	errNoArgs          = errors.New("luajava.new requires at least 1 argument")
	errorType          = reflect.TypeFor[error]()
)

// checkNullary verifies fn is a function callable with no arguments whose
// results are (), (T), (error) or (T, error).
func checkNullary(fn any) error {
	t := reflect.TypeOf(fn)
	if t == nil || t.Kind() != reflect.Func {
		return fmt.Errorf("%T is not a function", fn)
	}
	if t.NumIn() != 0 && !(t.IsVariadic() && t.NumIn() == 1) {
		return fmt.Errorf("function takes %d arguments, want 0", t.NumIn())
	}
	switch t.NumOut() {
	case 0, 1:
		return nil
	case 2:
		if t.Out(1) != errorType {
			return fmt.Errorf("second result must be error, got %s", t.Out(1))
		}
		return nil
	default:
		return fmt.Errorf("function returns %d results, want at most 2", t.NumOut())
	}
}

// callNullary invokes fn with no arguments. A non-nil trailing error or a
// panic becomes the returned error.
func callNullary(fn any) (result any, err error) {
	if err := checkNullary(fn); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	out := reflect.ValueOf(fn).Call(nil)
	if n := len(out); n > 0 && out[n-1].Type() == errorType {
		if !out[n-1].IsNil() {
			return nil, out[n-1].Interface().(error) //nolint:forcetypeassert // type checked above
		}
		out = out[:n-1]
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0].Interface(), nil
}

// instantiate builds a zero-argument instance of c.
func instantiate(c *Class) (any, error) {
	if c.New != nil {
		return callNullary(c.New)
	}
	if c.Type == nil {
		return nil, fmt.Errorf("class %s has no type or constructor", c.Name)
	}

	t := c.Type
	switch t.Kind() {
	case reflect.Interface, reflect.Func, reflect.UnsafePointer, reflect.Invalid:
		return nil, fmt.Errorf("cannot instantiate %s type %s", t.Kind(), c.Name)
	case reflect.Pointer:
		return reflect.New(t.Elem()).Interface(), nil
	case reflect.Map:
		return reflect.MakeMap(t).Interface(), nil
	case reflect.Slice:
		return reflect.MakeSlice(t, 0, 0).Interface(), nil
	case reflect.Chan:
		return reflect.MakeChan(t, 0).Interface(), nil
	default:
		return reflect.New(t).Interface(), nil
	}
}
