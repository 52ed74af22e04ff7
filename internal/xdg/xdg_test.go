// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package xdg

import (
	"testing"
)

func TestDirs(t *testing.T) {
	tests := []struct {
		name string
		fn   func() (string, error)
		env  map[string]string
		want string
	}{
		{"config from env", ConfigDir, map[string]string{"XDG_CONFIG_HOME": "/custom/config"}, "/custom/config/luahost"},
		{"config default", ConfigDir, map[string]string{"XDG_CONFIG_HOME": "", "HOME": "/home/testuser"}, "/home/testuser/.config/luahost"},
		{"data from env", DataDir, map[string]string{"XDG_DATA_HOME": "/custom/data"}, "/custom/data/luahost"},
		{"data default", DataDir, map[string]string{"XDG_DATA_HOME": "", "HOME": "/home/testuser"}, "/home/testuser/.local/share/luahost"},
		{"scripts", ScriptsDir, map[string]string{"XDG_DATA_HOME": "/custom/data"}, "/custom/data/luahost/scripts"},
		{"config file", ConfigFile, map[string]string{"XDG_CONFIG_HOME": "/custom/config"}, "/custom/config/luahost/config.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			got, err := tt.fn()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDataDir_NoHome(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("HOME", "")

	if _, err := DataDir(); err == nil {
		t.Fatal("DataDir() expected error when HOME is unset")
	}
	if _, err := ScriptsDir(); err == nil {
		t.Fatal("ScriptsDir() expected error when HOME is unset")
	}
}
