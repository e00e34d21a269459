package shell

// Environment variable names consulted during shell detection
const (
	// EnvShell is the login shell reported by the environment
	EnvShell = "SHELL"

	// EnvZDotDir is zsh's startup-file directory override
	EnvZDotDir = "ZDOTDIR"
)

// Source-line and backup markers
const (
	// SourceMarker is the substring that must appear in every line anvilup
	// writes to an rc file, used to find lines again on removal
	SourceMarker = "anvilup"

	// EnvScriptName is the file name of the environment script below the
	// anvilup root directory
	EnvScriptName = "env"

	// BackupSuffix is the suffix for rc file backups
	BackupSuffix = ".anvilup-backup"
)
