// Package settings is the configuration of the API server: the shared core
// config plus the database section.
package settings

import (
	coreconfig "github.com/examscores/scorebot/core/config"
	coredatabase "github.com/examscores/scorebot/core/database"
)

// Settings is the full config.yaml as read by cmd/api.
type Settings struct {
	coreconfig.Config `yaml:",inline"`
	Database          coredatabase.Config `yaml:"database"`
}

// CoreConfig returns the shared part of the configuration.
func (s *Settings) CoreConfig() *coreconfig.Config {
	return &s.Config
}

// Load decodes path and the environment into Settings and normalizes them.
func Load(path string, opts coreconfig.Options) (*Settings, error) {
	var s Settings
	if err := coreconfig.Decode(path, &s); err != nil {
		return nil, err
	}
	if err := coreconfig.Normalize(&s.Config, opts); err != nil {
		return nil, err
	}
	if err := s.Database.Normalize(); err != nil {
		return nil, err
	}
	return &s, nil
}
