package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// FilePermissions is the default permission mode for regular files (read/write for owner, read for others)
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories (rwxr-xr-x)
	DirPermissions = 0755
)

var (
	// ConfigDir is the global configuration directory (~/.liftload)
	ConfigDir string

	// DatabasePath is the SQLite database file holding run history
	DatabasePath string

	// ConfigFile is the optional global configuration file
	ConfigFile string
)

// Initialize sets up the configuration directory
// It creates ~/.liftload/ if it doesn't exist
func Initialize() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	return InitializeAt(filepath.Join(homeDir, ".liftload"))
}

// InitializeAt sets up the configuration directory rooted at dir
func InitializeAt(dir string) error {
	ConfigDir = dir
	DatabasePath = filepath.Join(ConfigDir, "liftload.db")
	ConfigFile = filepath.Join(ConfigDir, "config.yaml")

	if err := os.MkdirAll(ConfigDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}

	return nil
}

// ResolveConfigFile returns the config file to load: the explicit path if set,
// then a local liftload.yaml, then the global one. Empty means none exists.
func ResolveConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, candidate := range []string{"liftload.yaml", "liftload.yml", "liftload.json", "liftload.jsonc"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	if ConfigFile != "" {
		if _, err := os.Stat(ConfigFile); err == nil {
			return ConfigFile
		}
	}
	return ""
}
