// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"github.com/fatih/color"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/luahost/internal/config"
	"github.com/holomush/luahost/internal/logging"
	"github.com/holomush/luahost/internal/xdg"
)

// Global flags available to all subcommands.
var (
	configFile string
	noColor    bool
)

// NewRootCmd creates the root command for the luahost CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "luahost",
		Short: "luahost - run Lua scripts against host Go types",
		Long: `luahost runs Lua scripts in isolated interpreter sessions. Scripts
reach registered host types through the luajava module, and their output is
reported as categorized events.`,
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if noColor {
				color.NoColor = true
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file path (default: XDG_CONFIG_HOME/luahost/config.yaml)")
	flags.BoolVar(&noColor, "no-color", false, "disable colored output")
	flags.String(config.KeyScriptsDir, "", "script directory (default: XDG_DATA_HOME/luahost/scripts)")
	flags.String(config.KeyExtension, "", "script file extension (default: .lua)")
	flags.String(config.KeyLogFormat, config.DefaultLogFormat, "log format (json or text)")
	flags.String(config.KeyStore, config.StoreFile, "script store (file or postgres)")
	flags.String(config.KeyDatabaseURL, "", "PostgreSQL URL for the postgres store (default: $DATABASE_URL)")
	flags.StringSlice(config.KeyGrants, nil, "class name patterns scripts may reach (default: **)")

	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewListCmd())
	cmd.AddCommand(NewNewCmd())
	cmd.AddCommand(NewRmCmd())
	cmd.AddCommand(NewShowCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewHistoryCmd())

	return cmd
}

// loadConfig layers defaults, the config file and the command's flags, then
// installs the default logger. A --config path must exist; the XDG default
// may be absent.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	opts := config.Options{
		Path:     configFile,
		Required: configFile != "",
		Flags:    cmd.Flags(),
	}
	if opts.Path == "" {
		path, err := xdg.ConfigFile()
		if err != nil {
			return nil, oops.Code(config.CodeInvalid).Wrap(err)
		}
		opts.Path = path
	}

	cfg, err := config.Load(opts)
	if err != nil {
		return nil, err
	}
	logging.SetDefault("luahost", version, cfg.LogFormat)
	return cfg, nil
}
