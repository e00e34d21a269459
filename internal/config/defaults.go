package config

import "strings"

// DefaultDistServer is the base URL toolchain releases are fetched from.
const DefaultDistServer = "https://dist.anvil-lang.org"

// Default returns settings with every field at its default.
func Default() *Settings {
	return &Settings{
		Version:        CurrentSchemaVersion,
		AutoSelfUpdate: false,
	}
}

// EffectiveDistServer returns the configured dist server or the default.
func (s *Settings) EffectiveDistServer() string {
	if s.DistServer != "" {
		return s.DistServer
	}
	return DefaultDistServer
}

// normalize cleans up values that are equivalent after trimming.
func (s *Settings) normalize() {
	s.Version = strings.TrimSpace(s.Version)
	s.DefaultToolchain = strings.TrimSpace(s.DefaultToolchain)
	s.DistServer = strings.TrimRight(strings.TrimSpace(s.DistServer), "/")
	if s.Version == "" {
		s.Version = CurrentSchemaVersion
	}
}
