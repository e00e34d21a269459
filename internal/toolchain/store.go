package toolchain

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/blang/semver"
)

// ErrNotInstalled is returned when a requested toolchain version is not
// present in the store.
var ErrNotInstalled = errors.New("toolchain not installed")

// Installed describes one toolchain present in the store.
type Installed struct {
	Record
	// Path is the toolchain's root directory.
	Path string
}

// Store manages installed toolchains under <root>/toolchains and the
// active-version symlinks under <root>/bin.
type Store struct {
	root  string
	clock Clock
}

// NewStore creates a store rooted at the anvilup root directory.
func NewStore(root string) *Store {
	return &Store{root: root, clock: RealClock{}}
}

// Dir returns the directory holding installed toolchains.
func (s *Store) Dir() string {
	return filepath.Join(s.root, "toolchains")
}

// BinDir returns the directory holding the active toolchain's symlinks.
func (s *Store) BinDir() string {
	return filepath.Join(s.root, "bin")
}

func (s *Store) versionDir(version string) string {
	return filepath.Join(s.Dir(), version)
}

// List returns all installed toolchains, newest version first. Directories
// without a record file are ignored.
func (s *Store) List() ([]Installed, error) {
	entries, err := os.ReadDir(s.Dir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read toolchain store: %w", err)
	}

	var installed []Installed
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := s.versionDir(entry.Name())
		rec, err := readRecord(dir)
		if err != nil {
			continue
		}
		installed = append(installed, Installed{Record: rec, Path: dir})
	}

	sort.Slice(installed, func(i, j int) bool {
		vi, erri := semver.Parse(installed[i].Version)
		vj, errj := semver.Parse(installed[j].Version)
		if erri != nil || errj != nil {
			return installed[i].Version > installed[j].Version
		}
		return vi.GT(vj)
	})
	return installed, nil
}

// Get returns the installed toolchain with the given version.
func (s *Store) Get(version string) (Installed, error) {
	dir := s.versionDir(version)
	rec, err := readRecord(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Installed{}, fmt.Errorf("%w: %s", ErrNotInstalled, version)
		}
		return Installed{}, err
	}
	return Installed{Record: rec, Path: dir}, nil
}

// IsInstalled reports whether the given version is present in the store.
func (s *Store) IsInstalled(version string) bool {
	_, err := s.Get(version)
	return err == nil
}

// Install moves an extracted toolchain tree into the store and writes its
// record. extractedRoot must contain the toolchain's files; it is consumed
// by the move. Installing over an existing version replaces it.
func (s *Store) Install(extractedRoot string, rec Record) (Installed, error) {
	if err := validateVersionName(rec.Version); err != nil {
		return Installed{}, err
	}
	if err := os.MkdirAll(s.Dir(), 0o755); err != nil {
		return Installed{}, fmt.Errorf("create toolchain store: %w", err)
	}

	rec.InstalledAt = s.clock.Now().UTC()

	dir := s.versionDir(rec.Version)
	if err := os.RemoveAll(dir); err != nil {
		return Installed{}, fmt.Errorf("clear existing toolchain %s: %w", rec.Version, err)
	}
	if err := os.Rename(extractedRoot, dir); err != nil {
		return Installed{}, fmt.Errorf("install toolchain %s: %w", rec.Version, err)
	}
	if err := writeRecord(dir, rec); err != nil {
		os.RemoveAll(dir)
		return Installed{}, err
	}
	return Installed{Record: rec, Path: dir}, nil
}

// Remove deletes an installed toolchain from the store.
func (s *Store) Remove(version string) error {
	if err := validateVersionName(version); err != nil {
		return err
	}
	if !s.IsInstalled(version) {
		return fmt.Errorf("%w: %s", ErrNotInstalled, version)
	}
	if err := os.RemoveAll(s.versionDir(version)); err != nil {
		return fmt.Errorf("remove toolchain %s: %w", version, err)
	}
	return nil
}

// Link points the store's bin directory at the given version's executables.
// Existing links are cleared first so stale entries from a previous version
// do not linger.
func (s *Store) Link(version string) error {
	inst, err := s.Get(version)
	if err != nil {
		return err
	}

	toolBin := filepath.Join(inst.Path, "bin")
	entries, err := os.ReadDir(toolBin)
	if err != nil {
		return fmt.Errorf("read toolchain bin directory: %w", err)
	}

	binDir := s.BinDir()
	if err := clearSymlinks(binDir); err != nil {
		return err
	}
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("create bin directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		target := filepath.Join("..", "toolchains", version, "bin", entry.Name())
		link := filepath.Join(binDir, entry.Name())
		if err := os.Symlink(target, link); err != nil {
			return fmt.Errorf("link %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// Unlink removes all symlinks from the store's bin directory. Used when the
// default toolchain is uninstalled without a replacement.
func (s *Store) Unlink() error {
	return clearSymlinks(s.BinDir())
}

func clearSymlinks(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read bin directory: %w", err)
	}
	for _, entry := range entries {
		if entry.Type()&os.ModeSymlink == 0 {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			return fmt.Errorf("remove stale link %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// validateVersionName rejects versions that would escape the store directory.
func validateVersionName(version string) error {
	if version == "" || version == "." || version == ".." ||
		strings.ContainsAny(version, `/\`) {
		return fmt.Errorf("invalid toolchain version %q", version)
	}
	return nil
}
