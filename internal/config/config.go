package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Config holds application configuration.
type Config struct {
	// VaultDir is the directory of workout notes (the note store).
	VaultDir string `json:"vault_dir"`

	// APIBaseURL is the remote activity source base URL.
	APIBaseURL string `json:"api_base_url,omitempty"`

	// TokenFile is the path of the file holding the OAuth bearer token.
	// Token acquisition and refresh are handled outside stride.
	TokenFile string `json:"token_file,omitempty"`

	// LookbackDays bounds the first-run fetch window when no cursor exists.
	// 0 means fetch all available history.
	LookbackDays int `json:"lookback_days,omitempty"`

	// PageSize is the remote fetch page size.
	PageSize int `json:"page_size,omitempty"`

	// LogMaxSizeMB and LogMaxBackups tune sync.log rotation.
	LogMaxSizeMB  int `json:"log_max_size_mb,omitempty"`
	LogMaxBackups int `json:"log_max_backups,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		VaultDir:      filepath.Join(home, "Brain", "workouts"),
		APIBaseURL:    "https://connectapi.garmin.com",
		TokenFile:     filepath.Join(home, ".stride", "token"),
		PageSize:      100,
		LogMaxSizeMB:  5,
		LogMaxBackups: 3,
	}
}

// Load loads configuration from baseDir/config.json, merged over defaults.
// Returns default config if the file doesn't exist. The baseDir parameter
// allows tests to use t.TempDir() instead of ~/.stride.
func Load(baseDir string) (*Config, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, "config.json"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs. Overlay values take precedence
// when non-zero.
func Merge(base, overlay *Config) *Config {
	result := *overlay

	if result.VaultDir == "" {
		result.VaultDir = base.VaultDir
	}
	if result.APIBaseURL == "" {
		result.APIBaseURL = base.APIBaseURL
	}
	if result.TokenFile == "" {
		result.TokenFile = base.TokenFile
	}
	if result.LookbackDays == 0 {
		result.LookbackDays = base.LookbackDays
	}
	if result.PageSize == 0 {
		result.PageSize = base.PageSize
	}
	if result.LogMaxSizeMB == 0 {
		result.LogMaxSizeMB = base.LogMaxSizeMB
	}
	if result.LogMaxBackups == 0 {
		result.LogMaxBackups = base.LogMaxBackups
	}

	return &result
}
