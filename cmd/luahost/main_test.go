// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/luahost/internal/config"
	"github.com/holomush/luahost/pkg/errutil"
)

type cliResult struct {
	stdout string
	stderr string
	err    error
}

// execute runs the CLI with isolated XDG directories and colors disabled.
func execute(t *testing.T, args ...string) cliResult {
	t.Helper()
	configFile = ""
	noColor = false
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("DATABASE_URL", "")

	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--no-color"}, args...))

	err := cmd.Execute()
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func TestRootCommand_HasExpectedSubcommands(t *testing.T) {
	res := execute(t, "--help")
	require.NoError(t, res.err)

	for _, sub := range []string{"run", "list", "new", "rm", "show", "serve", "migrate", "history"} {
		assert.Contains(t, res.stdout, sub, "Help missing %q command", sub)
	}
}

func TestRootCommand_ConfigFlag(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantFlag string
	}{
		{
			name:     "config flag",
			args:     []string{"--config", "/path/to/config.yaml", "--help"},
			wantFlag: "/path/to/config.yaml",
		},
		{
			name:     "config flag with equals",
			args:     []string{"--config=/etc/luahost.yaml", "--help"},
			wantFlag: "/etc/luahost.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := execute(t, tt.args...)
			require.NoError(t, res.err)
			assert.Equal(t, tt.wantFlag, configFile)
		})
	}
}

func TestLoadConfig_ExplicitFileMustExist(t *testing.T) {
	res := execute(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "list")
	require.Error(t, res.err)
	errutil.AssertErrorCode(t, res.err, config.CodeInvalid)
}

func TestLoadConfig_FileSetsScriptsDir(t *testing.T) {
	scriptsDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(scriptsDir, "from-file.lua"), []byte(""), 0o600))

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("scripts-dir: "+scriptsDir+"\n"), 0o600))

	res := execute(t, "--config", cfgPath, "list")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "from-file\n")
}

func TestLoadConfig_InvalidFlagValue(t *testing.T) {
	res := execute(t, "--log-format", "xml", "list")
	require.Error(t, res.err)
	errutil.AssertErrorCode(t, res.err, config.CodeInvalid)
}
