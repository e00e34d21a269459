package toolchain

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// RecordFileName marks a directory as an anvilup-managed toolchain.
const RecordFileName = ".anvilup-toolchain.toml"

// Record is the metadata written alongside an installed toolchain.
type Record struct {
	// Version is the installed toolchain version.
	Version string `toml:"version"`
	// Target is the platform artifact this install came from.
	Target string `toml:"target"`
	// Requested is the version spec the user asked for ("latest" or exact).
	// Toolchains requested as "latest" are eligible for `anvilup update`.
	Requested string `toml:"requested"`
	// InstalledAt is the install timestamp (UTC).
	InstalledAt time.Time `toml:"installed_at"`
	// Verified names the verification method used for the archive.
	Verified string `toml:"verified"`
}

// writeRecord writes the record file into a toolchain directory.
func writeRecord(dir string, rec Record) error {
	data, err := toml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode toolchain record: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, RecordFileName), data, 0o644); err != nil {
		return fmt.Errorf("write toolchain record: %w", err)
	}
	return nil
}

// readRecord reads the record file from a toolchain directory.
func readRecord(dir string) (Record, error) {
	data, err := os.ReadFile(filepath.Join(dir, RecordFileName))
	if err != nil {
		return Record{}, err
	}

	var rec Record
	if err := toml.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("decode toolchain record: %w", err)
	}
	return rec, nil
}
