// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_WriteThenCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "luahost.schema.json")

	require.NoError(t, run(path, false))
	assert.FileExists(t, path)
	require.NoError(t, run(path, true))

	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o600))
	assert.Error(t, run(path, true))
}

func TestRun_CheckMissingFile(t *testing.T) {
	assert.Error(t, run(filepath.Join(t.TempDir(), "absent.json"), true))
}
