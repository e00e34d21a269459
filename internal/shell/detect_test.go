package shell

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// fakeZsh installs a fake zsh binary on PATH that answers the ZDOTDIR query
// with the given value. PATH is restricted to the fake binary's directory.
func fakeZsh(t *testing.T, zdotdir string) {
	t.Helper()

	binDir := t.TempDir()
	script := "#!/bin/sh\nprintf '%s' '" + zdotdir + "'\n"
	if err := os.WriteFile(filepath.Join(binDir, "zsh"), []byte(script), 0o755); err != nil {
		t.Fatalf("write fake zsh: %v", err)
	}
	t.Setenv("PATH", binDir)
}

// emptyPath points PATH at an empty directory so no zsh binary is found.
func emptyPath(t *testing.T) {
	t.Helper()
	t.Setenv("PATH", t.TempDir())
}

func testConfig(t *testing.T) Config {
	t.Helper()
	home := t.TempDir()
	return Config{
		Home: home,
		Root: filepath.Join(home, ".anvilup"),
	}
}

func TestPosixAlwaysExists(t *testing.T) {
	cfg := testConfig(t)
	sh := Posix{cfg}

	if !sh.Exists() {
		t.Error("Posix.Exists() = false, want true")
	}

	rcs, err := sh.UpdateRCs()
	if err != nil {
		t.Fatalf("Posix.UpdateRCs() error = %v", err)
	}
	want := filepath.Join(cfg.Home, ".profile")
	if len(rcs) != 1 || rcs[0] != want {
		t.Errorf("Posix.UpdateRCs() = %v, want [%s]", rcs, want)
	}
}

func TestBashExists(t *testing.T) {
	tests := []struct {
		name    string
		rcFiles []string
		want    bool
	}{
		{name: "no rc files", rcFiles: nil, want: false},
		{name: "bash_profile only", rcFiles: []string{".bash_profile"}, want: true},
		{name: "bash_login only", rcFiles: []string{".bash_login"}, want: true},
		{name: "bashrc only", rcFiles: []string{".bashrc"}, want: true},
		{name: "all three", rcFiles: []string{".bash_profile", ".bash_login", ".bashrc"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			for _, rc := range tt.rcFiles {
				if err := os.WriteFile(filepath.Join(cfg.Home, rc), []byte("# rc\n"), 0o644); err != nil {
					t.Fatalf("write rc file: %v", err)
				}
			}

			sh := Bash{cfg}
			if got := sh.Exists(); got != tt.want {
				t.Errorf("Bash.Exists() = %v, want %v", got, tt.want)
			}

			rcs, err := sh.UpdateRCs()
			if err != nil {
				t.Fatalf("Bash.UpdateRCs() error = %v", err)
			}
			if len(rcs) != len(tt.rcFiles) {
				t.Errorf("Bash.UpdateRCs() returned %d files, want %d", len(rcs), len(tt.rcFiles))
			}
		})
	}
}

func TestZshExists(t *testing.T) {
	tests := []struct {
		name     string
		shellEnv string
		zshOnPath bool
		want     bool
	}{
		{name: "SHELL is zsh", shellEnv: "/usr/bin/zsh", want: true},
		{name: "SHELL mentions zsh elsewhere", shellEnv: "/opt/zsh/bin/sh", want: true},
		{name: "zsh on PATH", shellEnv: "/bin/bash", zshOnPath: true, want: true},
		{name: "no trace of zsh", shellEnv: "/bin/bash", want: false},
		{name: "SHELL unset, no binary", shellEnv: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			if tt.shellEnv != "" {
				t.Setenv("SHELL", tt.shellEnv)
			} else {
				t.Setenv("SHELL", "")
			}
			if tt.zshOnPath {
				fakeZsh(t, "")
			} else {
				emptyPath(t)
			}

			sh := Zsh{cfg}
			if got := sh.Exists(); got != tt.want {
				t.Errorf("Zsh.Exists() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestZshDotDir(t *testing.T) {
	t.Run("ZDOTDIR set", func(t *testing.T) {
		cfg := testConfig(t)
		t.Setenv("ZDOTDIR", "/custom/zdotdir")
		emptyPath(t)

		sh := Zsh{cfg}
		dir, err := sh.DotDir()
		if err != nil {
			t.Fatalf("DotDir() error = %v", err)
		}
		if dir != "/custom/zdotdir" {
			t.Errorf("DotDir() = %q, want /custom/zdotdir", dir)
		}
	})

	t.Run("queried from zsh", func(t *testing.T) {
		cfg := testConfig(t)
		t.Setenv("ZDOTDIR", "")
		fakeZsh(t, "/from/zsh")

		sh := Zsh{cfg}
		dir, err := sh.DotDir()
		if err != nil {
			t.Fatalf("DotDir() error = %v", err)
		}
		if dir != "/from/zsh" {
			t.Errorf("DotDir() = %q, want /from/zsh", dir)
		}
	})

	t.Run("zsh answers empty, home applies", func(t *testing.T) {
		cfg := testConfig(t)
		t.Setenv("ZDOTDIR", "")
		fakeZsh(t, "")

		sh := Zsh{cfg}
		dir, err := sh.DotDir()
		if err != nil {
			t.Fatalf("DotDir() error = %v", err)
		}
		if dir != cfg.Home {
			t.Errorf("DotDir() = %q, want home %q", dir, cfg.Home)
		}
	})

	t.Run("unset and zsh not invocable", func(t *testing.T) {
		cfg := testConfig(t)
		t.Setenv("ZDOTDIR", "")
		emptyPath(t)

		sh := Zsh{cfg}
		_, err := sh.DotDir()
		if err == nil {
			t.Fatal("DotDir() error = nil, want setup error")
		}
		var setupErr *SetupError
		if !errors.As(err, &setupErr) {
			t.Errorf("DotDir() error = %T, want *SetupError", err)
		}
	})
}

func TestZshUpdateRCs(t *testing.T) {
	t.Run("existing zshenv in dotdir wins", func(t *testing.T) {
		cfg := testConfig(t)
		dotdir := t.TempDir()
		t.Setenv("ZDOTDIR", dotdir)
		emptyPath(t)

		rc := filepath.Join(dotdir, ".zshenv")
		if err := os.WriteFile(rc, []byte("# zshenv\n"), 0o644); err != nil {
			t.Fatalf("write zshenv: %v", err)
		}

		rcs, err := Zsh{cfg}.UpdateRCs()
		if err != nil {
			t.Fatalf("UpdateRCs() error = %v", err)
		}
		if len(rcs) != 1 || rcs[0] != rc {
			t.Errorf("UpdateRCs() = %v, want [%s]", rcs, rc)
		}
	})

	t.Run("existing home zshenv used as fallback", func(t *testing.T) {
		cfg := testConfig(t)
		t.Setenv("ZDOTDIR", t.TempDir())
		emptyPath(t)

		rc := filepath.Join(cfg.Home, ".zshenv")
		if err := os.WriteFile(rc, []byte("# zshenv\n"), 0o644); err != nil {
			t.Fatalf("write zshenv: %v", err)
		}

		rcs, err := Zsh{cfg}.UpdateRCs()
		if err != nil {
			t.Fatalf("UpdateRCs() error = %v", err)
		}
		if len(rcs) != 1 || rcs[0] != rc {
			t.Errorf("UpdateRCs() = %v, want [%s]", rcs, rc)
		}
	})

	t.Run("no zshenv anywhere targets dotdir", func(t *testing.T) {
		cfg := testConfig(t)
		dotdir := t.TempDir()
		t.Setenv("ZDOTDIR", dotdir)
		emptyPath(t)

		rcs, err := Zsh{cfg}.UpdateRCs()
		if err != nil {
			t.Fatalf("UpdateRCs() error = %v", err)
		}
		want := filepath.Join(dotdir, ".zshenv")
		if len(rcs) != 1 || rcs[0] != want {
			t.Errorf("UpdateRCs() = %v, want [%s]", rcs, want)
		}
	})
}

func TestDetectShells(t *testing.T) {
	t.Run("posix only", func(t *testing.T) {
		cfg := testConfig(t)
		t.Setenv("SHELL", "/bin/sh")
		emptyPath(t)

		shells := DetectShells(cfg)
		if len(shells) != 1 || shells[0].Name() != "posix" {
			t.Errorf("DetectShells() = %v, want [posix]", shellNames(shells))
		}
	})

	t.Run("posix, bash and zsh", func(t *testing.T) {
		cfg := testConfig(t)
		t.Setenv("SHELL", "/usr/bin/zsh")
		emptyPath(t)
		if err := os.WriteFile(filepath.Join(cfg.Home, ".bashrc"), []byte("# rc\n"), 0o644); err != nil {
			t.Fatalf("write bashrc: %v", err)
		}

		got := shellNames(DetectShells(cfg))
		want := []string{"posix", "bash", "zsh"}
		if len(got) != len(want) {
			t.Fatalf("DetectShells() = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("DetectShells()[%d] = %q, want %q", i, got[i], want[i])
			}
		}
	})
}

func shellNames(shells []Shell) []string {
	names := make([]string, 0, len(shells))
	for _, sh := range shells {
		names = append(names, sh.Name())
	}
	return names
}
