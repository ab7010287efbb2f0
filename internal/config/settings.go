package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"guideprogress/internal/progress"
	"guideprogress/internal/slot"
)

const defaultSiteRoot = "src/content/docs"

type Config struct {
	Storage StorageConfig `json:"storage" toml:"storage"`
	Site    SiteConfig    `json:"site" toml:"site"`
	Logging LoggingConfig `json:"logging" toml:"logging"`
}

type StorageConfig struct {
	Backend string `json:"backend" toml:"backend"`
	DBPath  string `json:"db_path" toml:"db_path"`
	Dir     string `json:"dir" toml:"dir"`
	SlotKey string `json:"slot_key" toml:"slot_key"`
}

type SiteConfig struct {
	Root string `json:"root" toml:"root"`
}

type LoggingConfig struct {
	Level string `json:"level" toml:"level"`
}

func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Backend: slot.BackendBbolt,
			SlotKey: progress.DefaultSlotKey,
		},
		Site: SiteConfig{
			Root: defaultSiteRoot,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func Load() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	return loadFromPath(path)
}

func (c Config) StorageBackend() string {
	backend := strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if backend == "" {
		return slot.BackendBbolt
	}
	return backend
}

func (c Config) SlotKey() string {
	key := strings.TrimSpace(c.Storage.SlotKey)
	if key == "" {
		return progress.DefaultSlotKey
	}
	return key
}

func (c Config) LogLevel() string {
	level := strings.TrimSpace(c.Logging.Level)
	if level == "" {
		return "info"
	}
	return level
}

func (c Config) SiteRoot() string {
	root := strings.TrimSpace(c.Site.Root)
	if root == "" {
		return defaultSiteRoot
	}
	return root
}

// SlotPaths resolves storage locations. Relative paths are taken from the
// data directory.
func (c Config) SlotPaths() (slot.Paths, error) {
	dbPath := strings.TrimSpace(c.Storage.DBPath)
	if dbPath == "" {
		defaultPath, err := ProgressDBPath()
		if err != nil {
			return slot.Paths{}, err
		}
		dbPath = defaultPath
	} else {
		resolved, err := resolveDataPath(dbPath)
		if err != nil {
			return slot.Paths{}, err
		}
		dbPath = resolved
	}

	dir := strings.TrimSpace(c.Storage.Dir)
	if dir == "" {
		defaultDir, err := SlotsDir()
		if err != nil {
			return slot.Paths{}, err
		}
		dir = defaultDir
	} else {
		resolved, err := resolveDataPath(dir)
		if err != nil {
			return slot.Paths{}, err
		}
		dir = resolved
	}
	return slot.Paths{DBPath: dbPath, Dir: dir}, nil
}

func loadFromPath(path string) (Config, error) {
	cfg := DefaultConfig()
	if err := readTOML(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readTOML(path string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return toml.Unmarshal(data, out)
}

func resolveDataPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("path is required")
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[2:]), nil
	}
	if filepath.IsAbs(path) {
		return path, nil
	}
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, path), nil
}

// Marshal renders cfg as TOML.
func Marshal(cfg Config) ([]byte, error) {
	return toml.Marshal(cfg)
}
