package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	appDirName = ".guideprogress"
	homeEnvVar = "GUIDEPROGRESS_HOME"
)

// DataDir returns the base data directory. GUIDEPROGRESS_HOME overrides the
// default of ~/.guideprogress.
func DataDir() (string, error) {
	if override := strings.TrimSpace(os.Getenv(homeEnvVar)); override != "" {
		return override, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, appDirName), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	return dataPath("config.toml")
}

// ProgressDBPath returns the default bbolt file holding the progress slot.
func ProgressDBPath() (string, error) {
	return dataPath("progress.db")
}

// SlotsDir returns the default directory for the file slot backend.
func SlotsDir() (string, error) {
	return dataPath("slots")
}

// UILogPath returns the log file used while the terminal UI owns the screen.
func UILogPath() (string, error) {
	return dataPath("ui.log")
}

func dataPath(name string) (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, name), nil
}
