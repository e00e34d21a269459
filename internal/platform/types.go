// Package platform detects the host platform anvilup is running on.
//
// It determines OS and architecture from the Go runtime and, on Linux,
// enriches the result with distribution details via gopsutil. Distribution
// detection failures fall back gracefully to plain OS/arch information.
// The normalized target string names the artifact a toolchain release
// publishes for this host (e.g. "x86_64-linux").
package platform

import "context"

// Linux distribution family constants.
// These represent canonical family names for grouping related distributions.
const (
	FamilyDebian  = "debian"  // Debian, Ubuntu, Linux Mint
	FamilyRHEL    = "rhel"    // RHEL, CentOS, Rocky Linux, AlmaLinux
	FamilyFedora  = "fedora"  // Fedora
	FamilySUSE    = "suse"    // openSUSE, SLES
	FamilyArch    = "arch"    // Arch Linux, Manjaro
	FamilyAlpine  = "alpine"  // Alpine Linux
	FamilyGentoo  = "gentoo"  // Gentoo
	FamilyUnknown = "unknown" // Unrecognized distributions
)

// Info contains platform detection information.
type Info struct {
	OS       string // "linux", "darwin"
	Arch     string // "amd64", "arm64" (normalized)
	ArchRaw  string // original GOARCH value
	Platform string // distro ID (Linux only, e.g. "ubuntu", "arch")
	Family   string // canonical family (e.g. "debian", "rhel")
	Version  string // distro version (Linux only, e.g. "22.04")
}

// Distro contains Linux distribution information.
// This is nil on non-Linux platforms.
type Distro struct {
	ID      string // distro ID (e.g. "ubuntu")
	Family  string // canonical family (e.g. "debian")
	Version string // version (e.g. "22.04")
}

// GetDistro returns distro information if this is a Linux platform.
// Returns nil for non-Linux platforms or if distro detection failed.
func (i *Info) GetDistro() *Distro {
	if i.OS != "linux" || i.Platform == "" {
		return nil
	}
	return &Distro{
		ID:      i.Platform,
		Family:  i.Family,
		Version: i.Version,
	}
}

// Target returns the release artifact target for this platform,
// in the <cpu>-<os> form used by the distribution server
// (e.g. "x86_64-linux", "aarch64-darwin").
func (i *Info) Target() string {
	return targetArchName(i.Arch) + "-" + i.OS
}

// String renders the platform for human-readable diagnostics, including
// distro details when they were detected.
func (i *Info) String() string {
	d := i.GetDistro()
	if d == nil {
		return i.Target()
	}

	distro := d.ID
	if d.Version != "" {
		distro += " " + d.Version
	}
	if d.Family != "" && d.Family != FamilyUnknown {
		distro += ", " + d.Family + " family"
	}
	return i.Target() + " (" + distro + ")"
}

// IsLinux returns true if the platform is Linux.
func (i *Info) IsLinux() bool {
	return i.OS == "linux"
}

// IsMacOS returns true if the platform is macOS.
func (i *Info) IsMacOS() bool {
	return i.OS == "darwin"
}

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}
