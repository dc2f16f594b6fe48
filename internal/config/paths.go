// Package config resolves the platform-specific locations p4prune writes
// to: the exclusion list, the log file, and the scratch metadata index.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const appDirName = "p4prune"

// AppDir returns the per-user application data directory, creating it if
// needed. Windows uses %APPDATA%\p4prune; everything else follows XDG with
// a ~/.config fallback.
func AppDir() (string, error) {
	var base string

	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("APPDATA")
		if base == "" {
			base = filepath.Join(homeDir(), "AppData", "Roaming")
		}
	default:
		base = os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			base = filepath.Join(homeDir(), ".config")
		}
	}

	dir := filepath.Join(base, appDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func homeDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return h
	}
	return "."
}

// ExcludeFile returns the path of the persisted exclusion list.
func ExcludeFile() (string, error) {
	dir, err := AppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "exclude.conf"), nil
}

// LogFile returns the path of the append-only run log.
func LogFile() (string, error) {
	dir, err := AppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "p4prune.log"), nil
}

// IndexDir returns the directory holding the per-run scratch index.
func IndexDir() (string, error) {
	return AppDir()
}
