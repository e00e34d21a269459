package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnvRoot overrides the anvilup root directory.
const EnvRoot = "ANVILUP_HOME"

// Root resolves the anvilup root directory: $ANVILUP_HOME when set,
// otherwise ~/.anvilup.
func Root() (string, error) {
	if root := os.Getenv(EnvRoot); root != "" {
		return filepath.Clean(root), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".anvilup"), nil
}
