package main

import (
	"encoding/json"
	"errors"
	"flag"
	"io"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"guideprogress/internal/config"
)

type ConfigCommand struct {
	stdout io.Writer
	stderr io.Writer
}

const (
	configFormatJSON = "json"
	configFormatTOML = "toml"
)

type configOutput struct {
	ConfigPath string                 `json:"config_path" toml:"config_path"`
	DataDir    string                 `json:"data_dir" toml:"data_dir"`
	Storage    effectiveStorageConfig `json:"storage" toml:"storage"`
	Site       config.SiteConfig      `json:"site" toml:"site"`
	Logging    config.LoggingConfig   `json:"logging" toml:"logging"`
}

type effectiveStorageConfig struct {
	Backend string `json:"backend" toml:"backend"`
	DBPath  string `json:"db_path" toml:"db_path"`
	Dir     string `json:"dir" toml:"dir"`
	SlotKey string `json:"slot_key" toml:"slot_key"`
}

func NewConfigCommand(stdout, stderr io.Writer) *ConfigCommand {
	return &ConfigCommand{
		stdout: stdout,
		stderr: stderr,
	}
}

func (c *ConfigCommand) Run(args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	defaults := fs.Bool("default", false, "print default config values")
	format := fs.String("format", configFormatJSON, "output format: json|toml")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resolvedFormat, err := resolveConfigFormat(*format)
	if err != nil {
		return err
	}
	payload, err := buildConfigOutput(*defaults)
	if err != nil {
		return err
	}
	return writeConfigOutput(c.stdout, resolvedFormat, payload)
}

func buildConfigOutput(defaults bool) (configOutput, error) {
	cfg := config.DefaultConfig()
	if !defaults {
		loaded, err := config.Load()
		if err != nil {
			return configOutput{}, err
		}
		cfg = loaded
	}
	configPath, err := config.ConfigPath()
	if err != nil {
		return configOutput{}, err
	}
	dataDir, err := config.DataDir()
	if err != nil {
		return configOutput{}, err
	}
	paths, err := cfg.SlotPaths()
	if err != nil {
		return configOutput{}, err
	}
	return configOutput{
		ConfigPath: configPath,
		DataDir:    dataDir,
		Storage: effectiveStorageConfig{
			Backend: cfg.StorageBackend(),
			DBPath:  paths.DBPath,
			Dir:     paths.Dir,
			SlotKey: cfg.SlotKey(),
		},
		Site:    config.SiteConfig{Root: cfg.SiteRoot()},
		Logging: config.LoggingConfig{Level: cfg.LogLevel()},
	}, nil
}

func writeConfigOutput(out io.Writer, format string, payload any) error {
	switch format {
	case configFormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	case configFormatTOML:
		data, err := toml.Marshal(payload)
		if err != nil {
			return err
		}
		if len(data) == 0 || data[len(data)-1] != '\n' {
			data = append(data, '\n')
		}
		_, err = out.Write(data)
		return err
	default:
		return errors.New("unsupported format")
	}
}

func resolveConfigFormat(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", configFormatJSON:
		return configFormatJSON, nil
	case configFormatTOML:
		return configFormatTOML, nil
	default:
		return "", errors.New("invalid format: must be json or toml")
	}
}
