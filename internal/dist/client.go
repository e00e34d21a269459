package dist

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ManifestPath is the manifest location below the dist server base URL.
const ManifestPath = "manifest.toml"

// Client fetches release metadata and artifacts from a distribution server.
type Client struct {
	baseURL    string
	cacheDir   string
	downloader *Downloader
}

// NewClient creates a dist client. Downloads land below cacheDir.
func NewClient(baseURL, cacheDir string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		cacheDir:   cacheDir,
		downloader: NewDownloader(),
	}
}

// Downloader exposes the client's downloader for progress configuration.
func (c *Client) Downloader() *Downloader {
	return c.downloader
}

// Manifest fetches and parses the release manifest. The manifest is always
// re-fetched: it is small, and staleness here means missing releases.
func (c *Client) Manifest(ctx context.Context) (*Manifest, error) {
	dest := filepath.Join(c.cacheDir, ManifestPath)
	url := c.baseURL + "/" + ManifestPath

	if err := c.downloader.DownloadToFile(ctx, url, dest); err != nil {
		return nil, fmt.Errorf("fetch manifest from %s: %w", url, err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	return ParseManifest(data)
}

// FetchArtifact downloads a release's archive (and detached signature, when
// published) for the given target. Downloads are cached per version; a
// cached archive is returned without a network round trip.
func (c *Client) FetchArtifact(ctx context.Context, release *Release, target string) (archivePath, sigPath string, err error) {
	artifact, err := release.ArtifactFor(target)
	if err != nil {
		return "", "", err
	}

	versionDir := filepath.Join(c.cacheDir, "downloads", release.Version)

	archivePath = filepath.Join(versionDir, path.Base(artifact.URL))
	if !fileExists(archivePath) {
		if err := c.downloader.DownloadToFile(ctx, c.absoluteURL(artifact.URL), archivePath); err != nil {
			return "", "", fmt.Errorf("download archive: %w", err)
		}
	}

	if artifact.Sig != "" {
		sigPath = filepath.Join(versionDir, path.Base(artifact.Sig))
		if !fileExists(sigPath) {
			if err := c.downloader.DownloadToFile(ctx, c.absoluteURL(artifact.Sig), sigPath); err != nil {
				// A missing signature downgrades verification to SHA256
				// rather than failing the install.
				sigPath = ""
			}
		}
	}

	return archivePath, sigPath, nil
}

// absoluteURL resolves a manifest URL that may be relative to the server.
func (c *Client) absoluteURL(u string) string {
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return c.baseURL + "/" + strings.TrimLeft(u, "/")
}
