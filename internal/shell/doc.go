// Package shell provides shell integration for anvilup.
//
// This package handles:
//   - Detecting which supported shells are present (posix, bash, zsh)
//   - Locating shell configuration files (rc files)
//   - Writing the environment script that puts anvilup's bin dir on PATH
//   - Safely adding and removing source lines in rc files
//
// # Detection
//
// Detection is heuristic and errs toward false positives. A shell wrongly
// reported present costs one harmless source line; a shell wrongly reported
// absent leaves the user's PATH unset.
//
//   - posix: always present; hooks into ~/.profile
//   - bash: present iff ~/.bash_profile, ~/.bash_login or ~/.bashrc exists;
//     hooks into whichever of those exist
//   - zsh: present iff $SHELL mentions zsh or a zsh binary is on $PATH;
//     hooks into .zshenv in the active dotfile directory
//
// The zsh dotfile directory comes from $ZDOTDIR when set, or from asking zsh
// itself (the variable is often exported only inside zsh sessions). When both
// fail the zsh setup fails with a SetupError; other shells are unaffected.
//
// # RC file management
//
// All rc file modifications are:
//   - Idempotent (safe to run multiple times)
//   - Optionally backed up before changes
//   - Atomic (temp file + rename)
//
// # Example
//
//	manager, err := shell.NewManager(shell.Config{
//	    Home: home,
//	    Root: filepath.Join(home, ".anvilup"),
//	})
//	results, err := manager.Setup(shell.SetupOptions{Backup: true})
package shell
