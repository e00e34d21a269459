package shell

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Posix covers any POSIX-compatible login shell via ~/.profile.
type Posix struct {
	cfg Config
}

// Name returns "posix".
func (s Posix) Name() string { return "posix" }

// Exists always returns true: every supported system has a POSIX shell.
func (s Posix) Exists() bool { return true }

// RCFiles returns the single POSIX login profile.
func (s Posix) RCFiles() []string {
	return []string{filepath.Join(s.cfg.Home, ".profile")}
}

// UpdateRCs returns ~/.profile unconditionally.
func (s Posix) UpdateRCs() ([]string, error) {
	return s.RCFiles(), nil
}

// SourceLine returns the line sourcing the environment script.
func (s Posix) SourceLine() string {
	return sourceCommand(s.cfg.Home, s.cfg.Root)
}

// Bash hooks into bash login rc files.
type Bash struct {
	cfg Config
}

// Name returns "bash".
func (s Bash) Name() string { return "bash" }

// Exists reports bash as present iff at least one of its rc files exists.
func (s Bash) Exists() bool {
	return len(s.existingRCs()) > 0
}

// RCFiles returns bash's candidate rc files in login-precedence order.
func (s Bash) RCFiles() []string {
	return []string{
		filepath.Join(s.cfg.Home, ".bash_profile"),
		filepath.Join(s.cfg.Home, ".bash_login"),
		filepath.Join(s.cfg.Home, ".bashrc"),
	}
}

// UpdateRCs returns the candidate rc files that exist. Bash reads only the
// first of .bash_profile/.bash_login on login, so every existing candidate
// gets the source line.
func (s Bash) UpdateRCs() ([]string, error) {
	return s.existingRCs(), nil
}

// SourceLine returns the line sourcing the environment script.
func (s Bash) SourceLine() string {
	return sourceCommand(s.cfg.Home, s.cfg.Root)
}

func (s Bash) existingRCs() []string {
	var existing []string
	for _, rc := range s.RCFiles() {
		if ok, _ := RCFileExists(rc); ok {
			existing = append(existing, rc)
		}
	}
	return existing
}

// Zsh hooks into zsh via .zshenv in the active dotfile directory.
type Zsh struct {
	cfg Config
}

// Name returns "zsh".
func (s Zsh) Name() string { return "zsh" }

// Exists reports zsh as present iff $SHELL mentions zsh or a zsh binary is
// discoverable on $PATH.
func (s Zsh) Exists() bool {
	if strings.Contains(os.Getenv(EnvShell), "zsh") {
		return true
	}
	if _, err := exec.LookPath("zsh"); err == nil {
		return true
	}
	return false
}

// DotDir resolves the directory zsh reads its startup files from.
//
// $ZDOTDIR wins when set and non-empty. Otherwise zsh itself is asked, since
// the variable may only be exported inside zsh sessions. An empty answer from
// zsh means the default applies, which is $HOME. When the variable is unset
// and zsh cannot be queried, the dotfile directory is unknowable and a
// SetupError is returned.
func (s Zsh) DotDir() (string, error) {
	if dir := os.Getenv(EnvZDotDir); dir != "" {
		return dir, nil
	}

	out, err := exec.Command("zsh", "-c", "echo -n $ZDOTDIR").Output()
	if err != nil {
		return "", &SetupError{
			Shell:   s.Name(),
			Message: "could not determine zsh dotfile directory ($ZDOTDIR unset and zsh not invocable)",
			Cause:   err,
		}
	}

	if dir := strings.TrimSpace(string(out)); dir != "" {
		return dir, nil
	}
	return s.cfg.Home, nil
}

// RCFiles returns candidate .zshenv locations. The dotfile directory lookup
// is best-effort here; callers that must not guess use UpdateRCs.
func (s Zsh) RCFiles() []string {
	var candidates []string
	if dotdir, err := s.DotDir(); err == nil && dotdir != s.cfg.Home {
		candidates = append(candidates, filepath.Join(dotdir, ".zshenv"))
	}
	return append(candidates, filepath.Join(s.cfg.Home, ".zshenv"))
}

// UpdateRCs returns the single .zshenv to write: an existing candidate if
// there is one, otherwise .zshenv in the resolved dotfile directory.
func (s Zsh) UpdateRCs() ([]string, error) {
	dotdir, err := s.DotDir()
	if err != nil {
		return nil, err
	}

	candidates := []string{
		filepath.Join(dotdir, ".zshenv"),
		filepath.Join(s.cfg.Home, ".zshenv"),
	}
	for _, rc := range candidates {
		if ok, _ := RCFileExists(rc); ok {
			return []string{rc}, nil
		}
	}
	return candidates[:1], nil
}

// SourceLine returns the line sourcing the environment script.
func (s Zsh) SourceLine() string {
	return sourceCommand(s.cfg.Home, s.cfg.Root)
}

// DetectShells returns the supported shells considered present, POSIX first.
// Results are deterministic for a fixed environment and filesystem snapshot.
func DetectShells(cfg Config) []Shell {
	all := []Shell{Posix{cfg}, Bash{cfg}, Zsh{cfg}}

	var present []Shell
	for _, sh := range all {
		if sh.Exists() {
			present = append(present, sh)
		}
	}
	return present
}
