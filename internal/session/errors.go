// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package session

import "github.com/samber/oops"

// CodeSessionBuild marks a session that could not be constructed.
const CodeSessionBuild = "SESSION_BUILD"

func buildError(library string, err error) error {
	return oops.Code(CodeSessionBuild).
		In("session").
		With("library", library).
		Wrapf(err, "failed to open library %s", library)
}
