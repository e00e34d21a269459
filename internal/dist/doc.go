// Package dist talks to the Anvil distribution server.
//
// The server publishes a TOML manifest listing toolchain releases and, per
// release, one archive per target platform with its SHA256 digest and an
// optional detached GPG signature. This package fetches and parses the
// manifest, downloads archives into the local cache with retries and
// resumable atomicity (temp file + rename), verifies digests and
// signatures, and extracts archives into place.
//
// Verification policy: the manifest digest is always enforced. Signatures
// are enforced whenever both a signature and a local keyring exist; a
// published signature without an installed keyring downgrades to
// checksum-only rather than blocking installs.
package dist
