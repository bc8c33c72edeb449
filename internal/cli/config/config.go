// Package config persists the CLI session between invocations.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	DefaultURL = "http://localhost:8080"

	// EnvConfigDir overrides the directory holding the session file.
	EnvConfigDir = "KAMY_CLI_CONFIG_DIR"

	appDir      = "kamy"
	sessionFile = "config.json"
	dirMode     = 0o700
	fileMode    = 0o600
)

// Config is the persisted session. Token is a bearer JWT; Email is kept so
// "kamy login" can default to the last account.
type Config struct {
	ServerURL string `json:"server_url"`
	Token     string `json:"token"`
	Email     string `json:"email,omitempty"`
}

func (c *Config) HasToken() bool {
	return c.Token != ""
}

// Store reads and writes one session file.
type Store struct {
	Path string
}

// Open resolves the session file location: $KAMY_CLI_CONFIG_DIR when set,
// otherwise <user config dir>/kamy.
func Open() (*Store, error) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return &Store{Path: filepath.Join(dir, sessionFile)}, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("locating config dir: %w", err)
	}
	return &Store{Path: filepath.Join(base, appDir, sessionFile)}, nil
}

// Load returns the stored session, or an empty one pointing at DefaultURL
// when nothing has been saved yet.
func (s *Store) Load() (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(s.Path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", s.Path, err)
		}
	}

	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultURL
	}
	return cfg, nil
}

// Save writes cfg readable only by the current user.
func (s *Store) Save(cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), dirMode); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.Path, data, fileMode)
}

// Clear deletes the session file. A missing file is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
