package shell

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Script is a named shell script managed by anvilup.
type Script struct {
	// Name is the file name below the anvilup root.
	Name string
	// Content is the full script text.
	Content string
}

// EnvScript returns the environment script that puts the anvilup bin
// directory on PATH. The script is POSIX sh and safe to source repeatedly
// from any supported shell.
func EnvScript(root string) Script {
	binDir := filepath.Join(root, "bin")
	content := fmt.Sprintf(`#!/bin/sh
# anvilup environment setup
# Pad PATH with colons so the middle-of-PATH case needs no special handling.
case ":${PATH}:" in
    *:"%s":*)
        ;;
    *)
        export PATH="%s:$PATH"
        ;;
esac
`, binDir, binDir)

	return Script{
		Name:    EnvScriptName,
		Content: content,
	}
}

// Write writes the script below root atomically (temp file + rename).
// Existing content is replaced; the script is the manager's to own.
func (s Script) Write(root string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create root directory: %w", err)
	}

	dest := filepath.Join(root, s.Name)
	tmp, err := os.CreateTemp(root, ".anvilup-tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.WriteString(s.Content); err != nil {
		tmp.Close()
		return fmt.Errorf("write script: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync script: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close script: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("chmod script: %w", err)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("rename script into place: %w", err)
	}
	return nil
}

// sourceCommand builds the rc-file line that sources the environment script.
// When the root lives below the home directory the line uses $HOME so rc
// files stay valid if the home directory moves.
func sourceCommand(home, root string) string {
	if home != "" {
		if rel, err := filepath.Rel(home, root); err == nil && rel != ".." && !strings.HasPrefix(rel, "../") {
			return fmt.Sprintf(`. "$HOME/%s"`, filepath.ToSlash(filepath.Join(rel, EnvScriptName)))
		}
	}
	return fmt.Sprintf(`. "%s"`, filepath.Join(root, EnvScriptName))
}
