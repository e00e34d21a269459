package shell

import "fmt"

// Manager orchestrates shell integration setup across detected shells.
type Manager struct {
	cfg Config
}

// NewManager creates a new shell manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Home == "" {
		return nil, fmt.Errorf("Home is required")
	}
	if cfg.Root == "" {
		return nil, fmt.Errorf("Root is required")
	}

	return &Manager{cfg: cfg}, nil
}

// Setup writes the environment script and adds a source line to every rc
// file of every detected shell. The operation is idempotent: rc files that
// already source the script are left alone.
//
// A zsh dotfile-directory failure aborts setup for zsh only; the error is
// returned alongside the results for the shells that succeeded.
func (m *Manager) Setup(opts SetupOptions) ([]SetupResult, error) {
	if !opts.DryRun {
		if err := EnvScript(m.cfg.Root).Write(m.cfg.Root); err != nil {
			return nil, fmt.Errorf("write env script: %w", err)
		}
	}

	var results []SetupResult
	var firstErr error
	for _, sh := range DetectShells(m.cfg) {
		rcs, err := sh.UpdateRCs()
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		for _, rc := range rcs {
			result, err := m.setupRC(sh, rc, opts)
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			results = append(results, result)
		}
	}

	return results, firstErr
}

func (m *Manager) setupRC(sh Shell, rcPath string, opts SetupOptions) (SetupResult, error) {
	result := SetupResult{Shell: sh.Name(), RCFile: rcPath}

	present, err := HasSourceLine(rcPath)
	if err != nil {
		return result, fmt.Errorf("check source line: %w", err)
	}
	if present {
		result.AlreadyPresent = true
		return result, nil
	}

	if opts.DryRun {
		return result, nil
	}

	if opts.Backup {
		if exists, _ := RCFileExists(rcPath); exists {
			backupPath, err := BackupRCFile(rcPath)
			if err != nil {
				return result, fmt.Errorf("backup rc file: %w", err)
			}
			result.BackupPath = backupPath
		}
	}

	if err := AppendSourceLine(rcPath, sh.SourceLine()); err != nil {
		return result, fmt.Errorf("add source line: %w", err)
	}
	result.Added = true
	return result, nil
}

// Remove strips anvilup source lines from every candidate rc file of every
// detected shell. It returns the rc files that were actually modified.
func (m *Manager) Remove() ([]string, error) {
	seen := make(map[string]bool)
	var modified []string

	for _, sh := range DetectShells(m.cfg) {
		for _, rc := range sh.RCFiles() {
			if seen[rc] {
				continue
			}
			seen[rc] = true

			present, err := HasSourceLine(rc)
			if err != nil {
				return modified, err
			}
			if !present {
				continue
			}

			if err := RemoveSourceLines(rc); err != nil {
				return modified, err
			}
			modified = append(modified, rc)
		}
	}

	return modified, nil
}
