// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package config loads luahost settings from defaults, an optional YAML file
// and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/holomush/luahost/internal/capability"
	"github.com/holomush/luahost/internal/scripts"
	"github.com/holomush/luahost/internal/xdg"
)

// CodeInvalid is the oops code for configuration that fails validation.
const CodeInvalid = "CONFIG_INVALID"

// Store backends.
const (
	StoreFile     = "file"
	StorePostgres = "postgres"
)

// Keys, shared by the YAML file and the command-line flags.
const (
	KeyScriptsDir  = "scripts-dir"
	KeyExtension   = "extension"
	KeyLogFormat   = "log-format"
	KeyStore       = "store"
	KeyDatabaseURL = "database-url"
	KeyGrants      = "grants"
	KeyMetricsAddr = "metrics-addr"
)

// Default values.
const (
	DefaultLogFormat   = "text"
	DefaultMetricsAddr = "127.0.0.1:9110"
)

// Config holds luahost settings.
type Config struct {
	ScriptsDir  string   `koanf:"scripts-dir" json:"scripts-dir,omitempty" jsonschema:"description=Directory holding scripts and the module search path root"`
	Extension   string   `koanf:"extension" json:"extension,omitempty" jsonschema:"description=Script file extension,pattern=^\\.[A-Za-z0-9]+$"`
	LogFormat   string   `koanf:"log-format" json:"log-format,omitempty" jsonschema:"enum=json,enum=text"`
	Store       string   `koanf:"store" json:"store,omitempty" jsonschema:"description=Script source backend,enum=file,enum=postgres"`
	DatabaseURL string   `koanf:"database-url" json:"database-url,omitempty" jsonschema:"description=PostgreSQL connection string for the postgres store"`
	Grants      []string `koanf:"grants" json:"grants,omitempty" jsonschema:"description=Class name glob patterns scripts may reach"`
	MetricsAddr string   `koanf:"metrics-addr" json:"metrics-addr,omitempty" jsonschema:"description=Listen address for metrics and the run endpoint"`
}

// Defaults returns the built-in configuration.
func Defaults() (*Config, error) {
	dir, err := xdg.ScriptsDir()
	if err != nil {
		return nil, oops.Code(CodeInvalid).In("config").Wrapf(err, "resolve default scripts dir")
	}
	return &Config{
		ScriptsDir:  dir,
		Extension:   scripts.DefaultExtension,
		LogFormat:   DefaultLogFormat,
		Store:       StoreFile,
		Grants:      []string{capability.AllowAll},
		MetricsAddr: DefaultMetricsAddr,
	}, nil
}

// Options controls Load.
type Options struct {
	// Path is the YAML config file. Empty means no file.
	Path string
	// Required makes a missing file an error. Otherwise it is skipped.
	Required bool
	// Flags override file values when they were set on the command line.
	Flags *pflag.FlagSet
}

// Load layers defaults, the config file and flags, then validates the result.
// DATABASE_URL fills database-url when nothing else sets it.
func Load(opts Options) (*Config, error) {
	defaults, err := Defaults()
	if err != nil {
		return nil, err
	}

	k := koanf.New(".")
	for key, val := range map[string]any{
		KeyScriptsDir:  defaults.ScriptsDir,
		KeyExtension:   defaults.Extension,
		KeyLogFormat:   defaults.LogFormat,
		KeyStore:       defaults.Store,
		KeyGrants:      defaults.Grants,
		KeyMetricsAddr: defaults.MetricsAddr,
	} {
		if err := k.Set(key, val); err != nil {
			return nil, oops.Code(CodeInvalid).In("config").With("key", key).Wrapf(err, "set default")
		}
	}

	if opts.Path != "" {
		if err := loadFile(k, opts.Path, opts.Required); err != nil {
			return nil, err
		}
	}

	if opts.Flags != nil {
		if err := k.Load(posflag.Provider(opts.Flags, ".", k), nil); err != nil {
			return nil, oops.Code(CodeInvalid).In("config").Wrapf(err, "load flags")
		}
	}

	cfg := &Config{}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, oops.Code(CodeInvalid).In("config").Wrapf(err, "decode config")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(k *koanf.Koanf, path string, required bool) error {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil
		}
		return oops.Code(CodeInvalid).In("config").With("path", path).Wrapf(err, "read config file")
	}
	if err := ValidateSchema(data); err != nil {
		return oops.Code(CodeInvalid).In("config").With("path", path).Wrap(err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return oops.Code(CodeInvalid).In("config").With("path", path).Wrapf(err, "parse config file")
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	invalid := oops.Code(CodeInvalid).In("config")

	if !strings.HasPrefix(c.Extension, ".") || strings.ContainsAny(c.Extension, `/\`) {
		return invalid.With("extension", c.Extension).Errorf("extension must start with '.', got %q", c.Extension)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return invalid.With("log_format", c.LogFormat).Errorf("log-format must be 'json' or 'text', got %q", c.LogFormat)
	}

	switch c.Store {
	case StoreFile:
		if c.ScriptsDir == "" {
			return invalid.Errorf("scripts-dir is required for the file store")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return invalid.Errorf("database-url (or DATABASE_URL) is required for the postgres store")
		}
	default:
		return invalid.With("store", c.Store).Errorf("store must be 'file' or 'postgres', got %q", c.Store)
	}

	if _, err := capability.NewAllowlist(c.Grants); err != nil {
		return invalid.Wrapf(err, "invalid grants")
	}
	return nil
}

// Allowlist compiles the configured grants.
func (c *Config) Allowlist() (*capability.Allowlist, error) {
	return capability.NewAllowlist(c.Grants)
}
