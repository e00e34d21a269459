// Package testutil provides utilities for testing anvilup in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SetupTestEnv points anvilup at isolated temp directories for one test.
// This ensures tests never touch:
// - The user's real home directory or shell rc files
// - An actual ~/.anvilup installation
//
// It returns the anvilup root it configured. Cleanup is handled by
// t.TempDir(), so callers don't need to clean up.
func SetupTestEnv(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	home := filepath.Join(tmpDir, "home")
	root := filepath.Join(home, ".anvilup")

	t.Setenv("HOME", home)
	t.Setenv("ANVILUP_HOME", root)

	// Keep shell detection deterministic regardless of the host shell.
	t.Setenv("SHELL", "/bin/bash")
	t.Setenv("ZDOTDIR", "")

	for _, dir := range []string{home, root} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}

	return root
}
