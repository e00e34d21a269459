package config

import (
	"fmt"
	"net/url"
)

// Validate ensures the settings are usable by this build.
func (s *Settings) Validate() error {
	if s.Version != CurrentSchemaVersion {
		return fmt.Errorf("settings version %q is not supported (this build understands version %s)", s.Version, CurrentSchemaVersion)
	}

	if s.DistServer != "" {
		u, err := url.Parse(s.DistServer)
		if err != nil {
			return fmt.Errorf("dist_server is not a valid URL: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("dist_server must be an http or https URL, got %q", s.DistServer)
		}
		if u.Host == "" {
			return fmt.Errorf("dist_server URL has no host: %q", s.DistServer)
		}
	}

	return nil
}
