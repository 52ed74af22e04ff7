// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package scripts

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/oops"
)

// DefaultExtension is the file extension of script files.
const DefaultExtension = ".lua"

// FileStore keeps each script in <dir>/<name><ext>.
type FileStore struct {
	dir string
	ext string
}

// NewFileStore creates a store over dir. An empty ext means DefaultExtension.
// The directory is created on first Save.
func NewFileStore(dir, ext string) *FileStore {
	if ext == "" {
		ext = DefaultExtension
	}
	return &FileStore{dir: dir, ext: ext}
}

// Dir returns the scripts directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Extension returns the script file extension.
func (s *FileStore) Extension() string {
	return s.ext
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name+s.ext)
}

// Read returns the script stored under name.
func (s *FileStore) Read(_ context.Context, name string) (Descriptor, error) {
	if err := ValidateName(name); err != nil {
		return Descriptor{}, err
	}

	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return Descriptor{}, ErrNotFound(name)
	}
	if err != nil {
		return Descriptor{}, oops.In("scripts").With("script", name).Wrapf(err, "read script")
	}
	return Descriptor{Name: name, Source: string(data)}, nil
}

// List returns the names of the script files in the directory, sorted. A
// missing directory holds no scripts.
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, oops.In("scripts").With("dir", s.dir).Wrapf(err, "list scripts")
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name, ok := strings.CutSuffix(entry.Name(), s.ext)
		if !ok {
			continue
		}
		if err := ValidateName(name); err != nil {
			slog.DebugContext(ctx, "skipping script file", "file", entry.Name(), "error", err)
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Save writes the script, creating the directory if needed.
func (s *FileStore) Save(_ context.Context, script Descriptor) error {
	if err := ValidateName(script.Name); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return oops.In("scripts").With("dir", s.dir).Wrapf(err, "create scripts directory")
	}
	if err := os.WriteFile(s.path(script.Name), []byte(script.Source), 0o600); err != nil {
		return oops.In("scripts").With("script", script.Name).Wrapf(err, "write script")
	}
	return nil
}

// Delete removes the script file.
func (s *FileStore) Delete(_ context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	err := os.Remove(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound(name)
	}
	if err != nil {
		return oops.In("scripts").With("script", name).Wrapf(err, "delete script")
	}
	return nil
}
