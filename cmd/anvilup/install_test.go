package main

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/anvil-lang/anvilup/internal/config"
	"github.com/anvil-lang/anvilup/internal/testutil"
	"github.com/anvil-lang/anvilup/internal/toolchain"
)

// toolchainArchive builds a tar.gz containing a minimal toolchain tree
// wrapped in one top-level directory, the way release archives ship.
func toolchainArchive(t *testing.T, version string) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	top := "anvil-" + version
	entries := []struct {
		name string
		mode int64
		body string
	}{
		{top + "/bin/anvil", 0o755, "#!/bin/sh\necho anvil " + version + "\n"},
		{top + "/bin/anvil-fmt", 0o755, "#!/bin/sh\n"},
		{top + "/lib/std.anv", 0o644, "module std\n"},
	}
	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Mode: e.mode, Size: int64(len(e.body))}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(e.body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// distServer serves a manifest with one release for the host target.
func distServer(t *testing.T, version string) *httptest.Server {
	t.Helper()

	archive := toolchainArchive(t, version)
	sum := sha256.Sum256(archive)
	target := hostTarget()

	manifest := fmt.Sprintf(`[[releases]]
version = "%s"
date = "2026-08-01"

[releases.artifacts.%q]
url = "anvil/%s/anvil.tar.gz"
sha256 = "%s"
`, version, target, version, hex.EncodeToString(sum[:]))

	mux := http.NewServeMux()
	mux.HandleFunc("/manifest.toml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, manifest)
	})
	mux.HandleFunc("/anvil/"+version+"/anvil.tar.gz", func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func hostTarget() string {
	arch := map[string]string{"amd64": "x86_64", "arm64": "aarch64"}[runtime.GOARCH]
	return arch + "-" + runtime.GOOS
}

func pointAtServer(t *testing.T, root, url string) {
	t.Helper()
	settings := config.Default()
	settings.DistServer = url
	if err := settings.Save(root); err != nil {
		t.Fatal(err)
	}
}

func TestInstallEndToEnd(t *testing.T) {
	root := testutil.SetupTestEnv(t)
	srv := distServer(t, "1.4.2")
	pointAtServer(t, root, srv.URL)

	out, err := runCommand(t, "install", "--no-modify-path")
	if err != nil {
		t.Fatalf("install: %v\n%s", err, out)
	}
	// Progress and status go through the command's error stream so tests
	// and redirections capture them.
	if !strings.Contains(out, "installed anvil 1.4.2") {
		t.Errorf("install status missing from command output: %q", out)
	}

	store := toolchain.NewStore(root)
	inst, err := store.Get("1.4.2")
	if err != nil {
		t.Fatalf("toolchain not in store: %v", err)
	}
	if inst.Requested != "latest" {
		t.Errorf("Requested = %q, want latest", inst.Requested)
	}
	if inst.Verified != "SHA256" {
		t.Errorf("Verified = %q, want SHA256", inst.Verified)
	}
	if _, err := os.Stat(filepath.Join(inst.Path, "bin", "anvil")); err != nil {
		t.Errorf("installed binary missing: %v", err)
	}

	// First install becomes the default and gets linked.
	settings, err := config.Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if settings.DefaultToolchain != "1.4.2" {
		t.Errorf("default = %q, want 1.4.2", settings.DefaultToolchain)
	}
	if _, err := os.Lstat(filepath.Join(root, "bin", "anvil")); err != nil {
		t.Errorf("bin symlink missing: %v", err)
	}
}

func TestInstallExactVersionKeepsExistingDefault(t *testing.T) {
	root := testutil.SetupTestEnv(t)
	installFakeToolchain(t, root, "1.0.0")

	settings := config.Default()
	settings.DefaultToolchain = "1.0.0"
	srv := distServer(t, "1.4.2")
	settings.DistServer = srv.URL
	if err := settings.Save(root); err != nil {
		t.Fatal(err)
	}

	if out, err := runCommand(t, "install", "1.4.2", "--no-modify-path"); err != nil {
		t.Fatalf("install: %v\n%s", err, out)
	}

	settings, err := config.Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if settings.DefaultToolchain != "1.0.0" {
		t.Errorf("default changed to %q, want 1.0.0", settings.DefaultToolchain)
	}

	inst, err := toolchain.NewStore(root).Get("1.4.2")
	if err != nil {
		t.Fatal(err)
	}
	if inst.Requested != "1.4.2" {
		t.Errorf("Requested = %q, want 1.4.2", inst.Requested)
	}
}

func TestInstallUnknownVersion(t *testing.T) {
	root := testutil.SetupTestEnv(t)
	srv := distServer(t, "1.4.2")
	pointAtServer(t, root, srv.URL)

	_, err := runCommand(t, "install", "9.9.9", "--no-modify-path")
	if err == nil {
		t.Fatal("expected error for unknown version")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestInstallWritesShellIntegration(t *testing.T) {
	root := testutil.SetupTestEnv(t)
	srv := distServer(t, "1.4.2")
	pointAtServer(t, root, srv.URL)

	home := os.Getenv("HOME")
	if err := os.WriteFile(filepath.Join(home, ".bashrc"), []byte("# existing\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCommand(t, "install")
	if err != nil {
		t.Fatalf("install: %v\n%s", err, out)
	}

	if _, err := os.Stat(filepath.Join(root, "env")); err != nil {
		t.Errorf("env script missing: %v", err)
	}
	profile, err := os.ReadFile(filepath.Join(home, ".profile"))
	if err != nil {
		t.Fatalf("read .profile: %v", err)
	}
	if !strings.Contains(string(profile), "anvilup") {
		t.Error(".profile has no source line")
	}
	bashrc, err := os.ReadFile(filepath.Join(home, ".bashrc"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(bashrc), "anvilup") {
		t.Error(".bashrc has no source line")
	}
}
