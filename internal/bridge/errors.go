// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package bridge

import (
	"errors"

	"github.com/samber/oops"
)

// Error codes for bridge failures.
const (
	CodeClassNotFound = "CLASS_NOT_FOUND"
	CodeClassDenied   = "CLASS_DENIED"
	CodeInstantiation = "INSTANTIATION"
	CodeInvocation    = "INVOCATION"
)

// ErrClassNotFound creates an error for a name no tier could resolve.
func ErrClassNotFound(name string) error {
	return oops.Code(CodeClassNotFound).
		In("bridge").
		With("class", name).
		Errorf("class not found: %s", name)
}

// ErrClassDenied creates an error for a class excluded by the allowlist.
func ErrClassDenied(name string) error {
	return oops.Code(CodeClassDenied).
		In("bridge").
		With("class", name).
		Errorf("access to class denied: %s", name)
}

// InstantiationError classifies a construction failure.
func InstantiationError(class string, cause error) error {
	return oops.Code(CodeInstantiation).
		In("bridge").
		With("class", class).
		Wrapf(detach(cause), "error creating instance")
}

// InvocationError classifies a static invocation failure.
func InvocationError(class, method string, cause error) error {
	return oops.Code(CodeInvocation).
		In("bridge").
		With("class", class).
		With("method", method).
		Wrapf(detach(cause), "error loading library")
}

// IsClassNotFound reports whether err is a CLASS_NOT_FOUND error.
func IsClassNotFound(err error) bool {
	oopsErr, ok := oops.AsOops(err)
	return ok && oopsErr.Code() == CodeClassNotFound
}

// detach keeps the message of a coded cause without inheriting its code, since
// oops reports the deepest code in a chain.
func detach(err error) error {
	if _, ok := oops.AsOops(err); ok {
		return errors.New(err.Error())
	}
	return err
}
