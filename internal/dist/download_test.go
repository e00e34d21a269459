package dist

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/anvil-lang/anvilup/internal/logging"
)

func TestDownloadToFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("archive bytes"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "sub", "archive.tar.gz")
	d := NewDownloader()

	if err := d.DownloadToFile(context.Background(), server.URL, dest); err != nil {
		t.Fatalf("DownloadToFile() error = %v", err)
	}

	content, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read downloaded file: %v", err)
	}
	if string(content) != "archive bytes" {
		t.Errorf("downloaded content = %q", content)
	}

	// No temp file left behind.
	if _, err := os.Stat(dest + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}
}

func TestDownloadRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "file")
	if err := NewDownloader().DownloadToFile(context.Background(), server.URL, dest); err != nil {
		t.Fatalf("DownloadToFile() error = %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server called %d times, want 3", got)
	}
}

func TestDownloadLogsRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := logging.WithLogger(context.Background(), logger)

	dest := filepath.Join(t.TempDir(), "file")
	if err := NewDownloader().DownloadToFile(ctx, server.URL, dest); err != nil {
		t.Fatalf("DownloadToFile() error = %v", err)
	}
	if !strings.Contains(buf.String(), "retrying download") {
		t.Errorf("retry not logged: %q", buf.String())
	}
}

func TestDownloadGivesUpAfterRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "file")
	d := NewDownloader()
	d.retries = 0
	err := d.DownloadToFile(context.Background(), server.URL, dest)
	if err == nil {
		t.Fatal("DownloadToFile() error = nil, want failure")
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Error("failed download left a destination file")
	}
}

func TestDownloadHonorsCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewDownloader().DownloadToFile(ctx, server.URL, filepath.Join(t.TempDir(), "file"))
	if err != context.Canceled {
		t.Errorf("DownloadToFile() error = %v, want context.Canceled", err)
	}
}

func TestClientManifest(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/manifest.toml", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleManifest))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(server.URL, t.TempDir())
	m, err := client.Manifest(context.Background())
	if err != nil {
		t.Fatalf("Manifest() error = %v", err)
	}
	if len(m.Releases) != 3 {
		t.Errorf("got %d releases, want 3", len(m.Releases))
	}
}

func TestClientFetchArtifact(t *testing.T) {
	archive := []byte("pretend tar.gz")

	mux := http.NewServeMux()
	mux.HandleFunc("/anvil-1.4.2-x86_64-linux.tar.gz", func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	})
	mux.HandleFunc("/anvil-1.4.2-x86_64-linux.tar.gz.sig", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("sig bytes"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	m, _ := ParseManifest([]byte(sampleManifest))
	release, _ := m.Find("1.4.2")

	client := NewClient(server.URL, t.TempDir())
	archivePath, sigPath, err := client.FetchArtifact(context.Background(), release, "x86_64-linux")
	if err != nil {
		t.Fatalf("FetchArtifact() error = %v", err)
	}

	got, _ := os.ReadFile(archivePath)
	if string(got) != string(archive) {
		t.Errorf("archive content = %q", got)
	}
	if sigPath == "" {
		t.Error("signature was not downloaded")
	}

	// Second fetch hits the cache: point the client at a dead server.
	client2 := NewClient("http://127.0.0.1:0", filepath.Dir(filepath.Dir(filepath.Dir(archivePath))))
	cached, _, err := client2.FetchArtifact(context.Background(), release, "x86_64-linux")
	if err != nil {
		t.Fatalf("cached FetchArtifact() error = %v", err)
	}
	if cached != archivePath {
		t.Errorf("cached path = %q, want %q", cached, archivePath)
	}
}

func TestClientFetchArtifactMissingSignatureDowngrades(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/anvil-1.4.2-x86_64-linux.tar.gz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("bytes"))
	})
	// No .sig route: signature download fails.
	server := httptest.NewServer(mux)
	defer server.Close()

	m, _ := ParseManifest([]byte(sampleManifest))
	release, _ := m.Find("1.4.2")

	client := NewClient(server.URL, t.TempDir())
	_, sigPath, err := client.FetchArtifact(context.Background(), release, "x86_64-linux")
	if err != nil {
		t.Fatalf("FetchArtifact() error = %v", err)
	}
	if sigPath != "" {
		t.Errorf("sigPath = %q, want empty after failed signature download", sigPath)
	}
}
