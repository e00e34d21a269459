// Package selfupdate replaces the running anvilup binary with the latest
// release published on the dist server.
package selfupdate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/blang/semver"
	"github.com/pelletier/go-toml/v2"

	"github.com/anvil-lang/anvilup/internal/dist"
)

// ReleasePath is the dist-server path of the anvilup release manifest,
// relative to the configured dist server URL.
const ReleasePath = "anvilup/release.toml"

// ErrUpToDate is returned by Check when the running binary is already the
// latest published version.
var ErrUpToDate = errors.New("anvilup is up to date")

// Release describes the latest published anvilup binary.
type Release struct {
	Version   string                   `toml:"version"`
	Artifacts map[string]dist.Artifact `toml:"artifacts"`
}

// Update holds an available self-update for one platform target.
type Update struct {
	Version  string
	Artifact dist.Artifact
}

// Updater checks for and applies anvilup self-updates.
type Updater struct {
	baseURL    string
	current    string
	client     *http.Client
	downloader *dist.Downloader
}

// NewUpdater creates an updater for the given dist server and the currently
// running version.
func NewUpdater(baseURL, currentVersion string) *Updater {
	return &Updater{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		current:    currentVersion,
		client:     http.DefaultClient,
		downloader: dist.NewDownloader(),
	}
}

// Check fetches the release manifest and returns the available update for
// the given target. Returns ErrUpToDate when the published version is not
// newer than the running one.
func (u *Updater) Check(ctx context.Context, target string) (*Update, error) {
	rel, err := u.fetchRelease(ctx)
	if err != nil {
		return nil, err
	}

	latest, err := semver.Parse(rel.Version)
	if err != nil {
		return nil, fmt.Errorf("invalid published version %q: %w", rel.Version, err)
	}
	if current, err := semver.Parse(u.current); err == nil && !latest.GT(current) {
		return nil, ErrUpToDate
	}

	artifact, ok := rel.Artifacts[target]
	if !ok {
		return nil, fmt.Errorf("no anvilup build published for %s", target)
	}
	return &Update{Version: rel.Version, Artifact: artifact}, nil
}

func (u *Updater) fetchRelease(ctx context.Context) (*Release, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.baseURL+"/"+ReleasePath, nil)
	if err != nil {
		return nil, err
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch release manifest: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch release manifest: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read release manifest: %w", err)
	}

	var rel Release
	if err := toml.Unmarshal(data, &rel); err != nil {
		return nil, fmt.Errorf("parse release manifest: %w", err)
	}
	if rel.Version == "" {
		return nil, fmt.Errorf("release manifest has no version")
	}
	return &rel, nil
}

// Apply downloads the update, verifies its checksum, and swaps it in for
// the executable at exePath. The previous binary is kept alongside with an
// ".old" suffix and restored if the swap fails partway.
func (u *Updater) Apply(ctx context.Context, update *Update, exePath string) error {
	exePath, err := filepath.EvalSymlinks(exePath)
	if err != nil {
		return fmt.Errorf("resolve executable path: %w", err)
	}

	newPath := exePath + ".new"
	if err := u.downloader.DownloadToFile(ctx, u.absoluteURL(update.Artifact.URL), newPath); err != nil {
		return fmt.Errorf("download anvilup %s: %w", update.Version, err)
	}
	defer os.Remove(newPath)

	if err := verifySHA256(newPath, update.Artifact.SHA256); err != nil {
		return err
	}
	if err := os.Chmod(newPath, 0o755); err != nil {
		return fmt.Errorf("make new binary executable: %w", err)
	}

	oldPath := exePath + ".old"
	os.Remove(oldPath)
	if err := os.Rename(exePath, oldPath); err != nil {
		return fmt.Errorf("move aside current binary: %w", err)
	}
	if err := os.Rename(newPath, exePath); err != nil {
		// Put the old binary back so the install is not left broken.
		os.Rename(oldPath, exePath)
		return fmt.Errorf("install new binary: %w", err)
	}
	os.Remove(oldPath)
	return nil
}

func (u *Updater) absoluteURL(url string) string {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	return u.baseURL + "/" + strings.TrimPrefix(url, "/")
}

func verifySHA256(path, expected string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open downloaded binary: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("hash downloaded binary: %w", err)
	}
	got := hex.EncodeToString(h.Sum(nil))
	if !strings.EqualFold(got, expected) {
		return fmt.Errorf("checksum mismatch for downloaded binary: got %s, want %s", got, expected)
	}
	return nil
}
