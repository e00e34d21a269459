// Package toolchain manages installed Anvil toolchains on disk: the
// per-version directories under the anvilup root, their metadata records,
// and the bin symlinks that select the active version.
package toolchain
