// Package config provides configuration utilities for the application.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ExpandPath expands ~ and environment variables in a file path.
// It handles both ~ for home directory and $VAR style environment variables.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}

// DatabasePath resolves the record database location from configuration,
// defaulting under the user config directory.
func DatabasePath() string {
	if configured := viper.GetString("database.path"); configured != "" {
		return ExpandPath(configured)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "qrflow.db"
	}
	return filepath.Join(home, ".config", "qrflow", "qrflow.db")
}

// BackendURL returns the hosted backend base URL, empty when sync is not
// configured.
func BackendURL() string {
	return viper.GetString("backend.url")
}

// BackendToken returns the bearer token for backend calls.
func BackendToken() string {
	return viper.GetString("backend.token")
}

// Locale returns the user's preferred BCP 47 language tag.
func Locale() string {
	if l := viper.GetString("locale"); l != "" {
		return l
	}
	return "en"
}
