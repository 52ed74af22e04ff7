// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"encoding/json"
	"fmt"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/holomush/luahost/internal/output"
	"github.com/holomush/luahost/internal/scripts"
)

// CodeScriptExists is returned by new when the script is already stored.
const CodeScriptExists = "SCRIPT_EXISTS"

// Output formats for list.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// NewRunCmd creates the run subcommand.
func NewRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <name>",
		Short: "Run a script",
		Long: `Run a script in a fresh interpreter session. Output is printed as it
is produced, followed by a success or error line.`,
		Args: cobra.ExactArgs(1),
		RunE: runScript,
	}
}

func runScript(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	be, err := openBackend(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer be.close()

	router := output.NewRouter(consoleSinks(cmd.OutOrStdout(), cmd.ErrOrStderr()))
	exec, err := newExecutor(cfg, be, router)
	if err != nil {
		return err
	}

	router.Info("Executing: " + args[0])
	res := exec.Run(cmd.Context(), args[0])
	if !res.Succeeded() {
		// Already reported through the Error channel.
		cmd.SilenceErrors = true
		return res.Err
	}
	return nil
}

type listConfig struct {
	format string
}

// NewListCmd creates the list subcommand.
func NewListCmd() *cobra.Command {
	cfg := &listConfig{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored scripts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, cfg)
		},
	}

	cmd.Flags().StringVarP(&cfg.format, "output", "o", formatText, "output format (text, json or yaml)")

	return cmd
}

// scriptList is the structured form of list output.
type scriptList struct {
	Scripts []string `json:"scripts" yaml:"scripts"`
}

func runList(cmd *cobra.Command, lc *listConfig) error {
	if lc.format != formatText && lc.format != formatJSON && lc.format != formatYAML {
		return oops.Code("INVALID_FORMAT").With("format", lc.format).
			Errorf("output must be 'text', 'json' or 'yaml', got %q", lc.format)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	be, err := openBackend(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer be.close()

	names, err := be.scripts.List(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch lc.format {
	case formatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(scriptList{Scripts: names})
	case formatYAML:
		enc := yaml.NewEncoder(out)
		if err := enc.Encode(scriptList{Scripts: names}); err != nil {
			return oops.With("format", lc.format).Wrap(err)
		}
		return enc.Close()
	}

	router := output.NewRouter(consoleSinks(out, cmd.ErrOrStderr()))
	for _, name := range names {
		router.Normal(name)
	}
	router.Info(fmt.Sprintf("Loaded %d scripts", len(names)))
	return nil
}

type newConfig struct {
	force bool
}

// NewNewCmd creates the new subcommand.
func NewNewCmd() *cobra.Command {
	cfg := &newConfig{}

	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create a script from the starter template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNew(cmd, cfg, args[0])
		},
	}

	cmd.Flags().BoolVar(&cfg.force, "force", false, "overwrite an existing script")

	return cmd
}

func runNew(cmd *cobra.Command, nc *newConfig, name string) error {
	if err := scripts.ValidateName(name); err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	be, err := openBackend(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer be.close()

	if !nc.force {
		_, err := be.scripts.Read(cmd.Context(), name)
		switch {
		case err == nil:
			return oops.Code(CodeScriptExists).With("script", name).
				Hint("pass --force to overwrite").
				Errorf("script already exists: %s", name)
		case !scripts.IsNotFound(err):
			return err
		}
	}

	if err := be.scripts.Save(cmd.Context(), scripts.Descriptor{Name: name, Source: scripts.Template(name)}); err != nil {
		return err
	}
	cmd.Printf("Created %s\n", name)
	return nil
}

// NewRmCmd creates the rm subcommand.
func NewRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <name>",
		Aliases: []string{"delete"},
		Short:   "Delete a script",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			be, err := openBackend(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer be.close()

			if err := be.scripts.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			cmd.Printf("Removed %s\n", args[0])
			return nil
		},
	}
}

// NewShowCmd creates the show subcommand.
func NewShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Print a script's source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			be, err := openBackend(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer be.close()

			script, err := be.scripts.Read(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), script.Source)
			return err
		},
	}
}
