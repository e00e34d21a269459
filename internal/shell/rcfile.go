package shell

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// sourceComment precedes every source line anvilup writes, so removal can
// also take the comment back out.
const sourceComment = "# anvilup - Anvil toolchain manager"

// RCFileExists checks if the rc file exists and is a regular file.
func RCFileExists(rcPath string) (bool, error) {
	info, err := os.Stat(rcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, &RCFileError{
			Path:    rcPath,
			Message: "failed to stat file",
			Cause:   err,
		}
	}

	if !info.Mode().IsRegular() {
		return false, &RCFileError{
			Path:    rcPath,
			Message: "not a regular file",
		}
	}

	return true, nil
}

// HasSourceLine checks if the rc file already contains an anvilup source
// line. Any line mentioning both the marker and the env script counts, so
// lines written by older versions with a different root are honored too.
func HasSourceLine(rcPath string) (bool, error) {
	file, err := os.Open(rcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, &RCFileError{
			Path:    rcPath,
			Message: "failed to open file",
			Cause:   err,
		}
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if isSourceLine(scanner.Text()) {
			return true, nil
		}
	}

	if err := scanner.Err(); err != nil {
		return false, &RCFileError{
			Path:    rcPath,
			Message: "failed to read file",
			Cause:   err,
		}
	}

	return false, nil
}

// isSourceLine reports whether a line sources the anvilup env script.
func isSourceLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, ".") && !strings.HasPrefix(trimmed, "source") {
		return false
	}
	return strings.Contains(trimmed, SourceMarker) &&
		strings.Contains(trimmed, "/"+EnvScriptName+`"`)
}

// BackupRCFile copies the rc file aside before modification.
func BackupRCFile(rcPath string) (string, error) {
	content, err := os.ReadFile(rcPath)
	if err != nil {
		return "", &RCFileError{
			Path:    rcPath,
			Message: "failed to read file for backup",
			Cause:   err,
		}
	}

	backupPath := rcPath + BackupSuffix
	if err := os.WriteFile(backupPath, content, 0o644); err != nil {
		return "", &RCFileError{
			Path:    backupPath,
			Message: "failed to write backup file",
			Cause:   err,
		}
	}

	return backupPath, nil
}

// AppendSourceLine adds the source line to the rc file, creating the file
// (and parent directory) if needed. The write is atomic via temp file +
// rename. Calling it on a file that already has the line duplicates it, so
// callers check HasSourceLine first.
func AppendSourceLine(rcPath, sourceLine string) error {
	var existing []byte
	if exists, _ := RCFileExists(rcPath); exists {
		var err error
		existing, err = os.ReadFile(rcPath)
		if err != nil {
			return &RCFileError{
				Path:    rcPath,
				Message: "failed to read existing file",
				Cause:   err,
			}
		}
	}

	dir := filepath.Dir(rcPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &RCFileError{
			Path:    rcPath,
			Message: "failed to create parent directory",
			Cause:   err,
		}
	}

	var b strings.Builder
	b.Write(existing)
	if len(existing) > 0 && !strings.HasSuffix(string(existing), "\n") {
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\n%s\n%s\n", sourceComment, sourceLine)

	return writeRCFile(rcPath, b.String())
}

// RemoveSourceLines strips every anvilup source line (and its comment) from
// the rc file. Missing files are not an error. The write is atomic.
func RemoveSourceLines(rcPath string) error {
	exists, err := RCFileExists(rcPath)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	file, err := os.Open(rcPath)
	if err != nil {
		return &RCFileError{
			Path:    rcPath,
			Message: "failed to open file",
			Cause:   err,
		}
	}

	var kept []string
	changed := false
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == sourceComment {
			changed = true
			// Drop the blank separator AppendSourceLine wrote before the block.
			if n := len(kept); n > 0 && kept[n-1] == "" {
				kept = kept[:n-1]
			}
			continue
		}
		if isSourceLine(line) {
			changed = true
			continue
		}
		kept = append(kept, line)
	}
	scanErr := scanner.Err()
	file.Close()
	if scanErr != nil {
		return &RCFileError{
			Path:    rcPath,
			Message: "failed to read file",
			Cause:   scanErr,
		}
	}

	if !changed {
		return nil
	}

	content := strings.Join(kept, "\n")
	if content != "" {
		content += "\n"
	}
	return writeRCFile(rcPath, content)
}

// writeRCFile replaces the rc file's contents atomically.
func writeRCFile(rcPath, content string) error {
	dir := filepath.Dir(rcPath)
	tmp, err := os.CreateTemp(dir, ".anvilup-tmp-*")
	if err != nil {
		return &RCFileError{
			Path:    rcPath,
			Message: "failed to create temporary file",
			Cause:   err,
		}
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return &RCFileError{
			Path:    rcPath,
			Message: "failed to write content",
			Cause:   err,
		}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return &RCFileError{
			Path:    rcPath,
			Message: "failed to sync file",
			Cause:   err,
		}
	}
	if err := tmp.Close(); err != nil {
		return &RCFileError{
			Path:    rcPath,
			Message: "failed to close temporary file",
			Cause:   err,
		}
	}

	// Preserve permissions of an existing rc file.
	if info, err := os.Stat(rcPath); err == nil {
		_ = os.Chmod(tmpPath, info.Mode().Perm())
	} else {
		_ = os.Chmod(tmpPath, 0o644)
	}

	if err := os.Rename(tmpPath, rcPath); err != nil {
		return &RCFileError{
			Path:    rcPath,
			Message: "failed to rename temp file",
			Cause:   err,
		}
	}
	return nil
}
