// Package config manages anvilup's persisted settings.
//
// Settings live in settings.toml below the anvilup root directory. A missing
// file is not an error; defaults apply until the first save. A file that
// cannot be parsed or validated produces a LoadError whose message tells the
// user to fix the file or reinstall.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// CurrentSchemaVersion is the settings schema this build reads and writes.
const CurrentSchemaVersion = "1"

// SettingsFileName is the settings file name below the anvilup root.
const SettingsFileName = "settings.toml"

// Settings holds the persisted configuration.
type Settings struct {
	// Version is the settings schema version.
	Version string `toml:"version"`
	// DefaultToolchain is the toolchain version used when none is named.
	DefaultToolchain string `toml:"default_toolchain,omitempty"`
	// DistServer overrides the distribution server base URL.
	DistServer string `toml:"dist_server,omitempty"`
	// AutoSelfUpdate checks for a newer anvilup during `update`.
	AutoSelfUpdate bool `toml:"auto_self_update"`
}

// LoadError is a user-facing settings failure. Its message carries recovery
// guidance because it surfaces directly on the terminal before any
// subcommand runs.
type LoadError struct {
	Path  string
	Cause error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("could not load settings from %s: %v\nfix the file or reinstall anvilup", e.Path, e.Cause)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Load reads settings from the given root directory. A missing settings file
// yields defaults.
func Load(root string) (*Settings, error) {
	path := filepath.Join(root, SettingsFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, &LoadError{Path: path, Cause: err}
	}

	settings := Default()
	if err := toml.Unmarshal(data, settings); err != nil {
		return nil, &LoadError{Path: path, Cause: err}
	}

	settings.normalize()
	if err := settings.Validate(); err != nil {
		return nil, &LoadError{Path: path, Cause: err}
	}

	return settings, nil
}

// Save writes settings below the root directory atomically.
func (s *Settings) Save(root string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create root directory: %w", err)
	}

	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	path := filepath.Join(root, SettingsFileName)
	tmp, err := os.CreateTemp(root, ".settings-tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close settings: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("chmod settings: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename settings into place: %w", err)
	}
	return nil
}
