package dist

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/blang/semver"
	"github.com/pelletier/go-toml/v2"
)

// LatestAlias is the version spec that resolves to the newest release.
const LatestAlias = "latest"

var (
	// ErrNoReleases is returned when the manifest lists no releases.
	ErrNoReleases = errors.New("manifest lists no releases")
	// ErrUnknownVersion is returned when a requested version is not in the
	// manifest.
	ErrUnknownVersion = errors.New("version not found in manifest")
	// ErrUnsupportedTarget is returned when a release has no artifact for
	// the host platform.
	ErrUnsupportedTarget = errors.New("release has no artifact for this platform")
)

// Artifact describes one downloadable archive of a release.
type Artifact struct {
	// URL is the archive location, absolute or relative to the dist server.
	URL string `toml:"url"`
	// SHA256 is the hex digest of the archive.
	SHA256 string `toml:"sha256"`
	// Sig is the detached GPG signature location, when published.
	Sig string `toml:"sig,omitempty"`
}

// Release is one published toolchain version.
type Release struct {
	Version string `toml:"version"`
	Date    string `toml:"date"`
	// Artifacts maps target names (e.g. "x86_64-linux") to archives.
	Artifacts map[string]Artifact `toml:"artifacts"`
}

// Manifest is the release index published by the distribution server.
type Manifest struct {
	Releases []Release `toml:"releases"`
}

// ParseManifest decodes and validates a manifest document. Releases come
// back sorted newest first.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	for i := range m.Releases {
		r := &m.Releases[i]
		r.Version = strings.TrimSpace(r.Version)
		if _, err := semver.Parse(r.Version); err != nil {
			return nil, fmt.Errorf("manifest release %q: invalid version: %w", r.Version, err)
		}
		for target, a := range r.Artifacts {
			if a.URL == "" {
				return nil, fmt.Errorf("manifest release %s: artifact %s has no url", r.Version, target)
			}
			if len(a.SHA256) != 64 {
				return nil, fmt.Errorf("manifest release %s: artifact %s has malformed sha256", r.Version, target)
			}
		}
	}

	sort.SliceStable(m.Releases, func(i, j int) bool {
		vi, _ := semver.Parse(m.Releases[i].Version)
		vj, _ := semver.Parse(m.Releases[j].Version)
		return vi.GT(vj)
	})

	return &m, nil
}

// Latest returns the newest release.
func (m *Manifest) Latest() (*Release, error) {
	if len(m.Releases) == 0 {
		return nil, ErrNoReleases
	}
	return &m.Releases[0], nil
}

// Find returns the release with the exact version.
func (m *Manifest) Find(version string) (*Release, error) {
	for i := range m.Releases {
		if m.Releases[i].Version == version {
			return &m.Releases[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownVersion, version)
}

// Resolve maps a version spec to a release. Empty specs and the latest
// alias resolve to the newest release; anything else must match exactly.
func (m *Manifest) Resolve(spec string) (*Release, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" || spec == LatestAlias {
		return m.Latest()
	}
	return m.Find(spec)
}

// ArtifactFor returns the release's artifact for a target platform.
func (r *Release) ArtifactFor(target string) (Artifact, error) {
	a, ok := r.Artifacts[target]
	if !ok {
		return Artifact{}, fmt.Errorf("%w: %s (release %s)", ErrUnsupportedTarget, target, r.Version)
	}
	return a, nil
}

// NewerThan reports whether the release is strictly newer than version.
// Unparseable versions compare as older than everything.
func (r *Release) NewerThan(version string) bool {
	rv, err := semver.Parse(r.Version)
	if err != nil {
		return false
	}
	v, err := semver.Parse(strings.TrimSpace(version))
	if err != nil {
		return true
	}
	return rv.GT(v)
}
