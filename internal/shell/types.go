package shell

import "fmt"

// Shell describes one supported shell and how anvilup hooks into it.
//
// Detection errs toward false positives: any trace of the shell counts as
// present. A shell that is wrongly reported present costs one unused source
// line; a shell wrongly reported absent leaves the user without PATH setup.
type Shell interface {
	// Name returns the shell's name ("posix", "bash", "zsh").
	Name() string

	// Exists reports whether the shell appears to be in use on this system.
	Exists() bool

	// RCFiles returns all candidate rc files for this shell, whether or not
	// they exist on disk.
	RCFiles() []string

	// UpdateRCs returns the rc files the source line should be written to.
	// For zsh this can fail when the dotfile directory cannot be determined.
	UpdateRCs() ([]string, error)

	// SourceLine returns the line added to rc files to source the
	// environment script.
	SourceLine() string
}

// Config holds the inputs shell detection depends on.
type Config struct {
	// Home is the user's home directory.
	Home string
	// Root is the anvilup root directory (usually ~/.anvilup).
	Root string
}

// SetupOptions holds options for shell integration setup.
type SetupOptions struct {
	// Backup creates a backup of each rc file before modification.
	Backup bool
	// DryRun shows what would be done without making changes.
	DryRun bool
}

// SetupResult describes what happened to one rc file during setup.
type SetupResult struct {
	// Shell is the shell the rc file belongs to.
	Shell string
	// RCFile is the path to the rc file.
	RCFile string
	// Added indicates the source line was added.
	Added bool
	// AlreadyPresent indicates the source line was already configured.
	AlreadyPresent bool
	// BackupPath is the path to the backup file (if created).
	BackupPath string
}

// SetupError indicates shell integration could not be configured.
type SetupError struct {
	Shell   string
	Message string
	Cause   error
}

func (e *SetupError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s setup failed: %s: %v", e.Shell, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s setup failed: %s", e.Shell, e.Message)
}

func (e *SetupError) Unwrap() error {
	return e.Cause
}

// RCFileError represents an error with shell rc file operations.
type RCFileError struct {
	Path    string
	Message string
	Cause   error
}

func (e *RCFileError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("rc file error (%s): %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("rc file error (%s): %s", e.Path, e.Message)
}

func (e *RCFileError) Unwrap() error {
	return e.Cause
}
