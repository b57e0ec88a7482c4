// Package config loads the pcrm configuration from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Database    Database    `yaml:"database"`
	Server      Server      `yaml:"server"`
	Log         Log         `yaml:"log"`
	Suggestions Suggestions `yaml:"suggestions"`
	Calendar    Calendar    `yaml:"calendar"`
}

// Database selects the store. Driver is either "sqlite" (Path is used) or "mysql" (Host, User,
// Password and Name are used).
type Database struct {
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

type Server struct {
	Port    int    `yaml:"port"`
	Logging bool   `yaml:"logging"`
	Mode    string `yaml:"mode"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Suggestions struct {
	Days int `yaml:"days"`
}

type Calendar struct {
	Enabled         bool   `yaml:"enabled"`
	CredentialsFile string `yaml:"credentials_file"`
	CalendarID      string `yaml:"calendar_id"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Database: Database{
			Driver: "sqlite",
			Path:   "personal_crm.db",
			Host:   "localhost:3306",
			Name:   "pcrm",
		},
		Server: Server{
			Port:    8080,
			Logging: true,
			Mode:    "release",
		},
		Log: Log{
			Level:  "info",
			Format: "development",
		},
		Suggestions: Suggestions{Days: 30},
		Calendar: Calendar{
			CredentialsFile: "credentials.json",
			CalendarID:      "primary",
		},
	}
}

// DefaultPath is ~/.pcrm/pcrm.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find the user's home directory: %w", err)
	}
	return filepath.Join(home, ".pcrm", "pcrm.yaml"), nil
}

// Load reads the configuration file at path, creating it with defaults if it does not exist yet,
// and then applies the environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			if err := writeDefault(path, cfg); err != nil {
				return cfg, err
			}
		case err != nil:
			return cfg, fmt.Errorf("failed to read the config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse the config file %s: %w", path, err)
			}
		}
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate checks the values that have a fixed set of choices.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Suggestions.Days < 0 {
		return fmt.Errorf("invalid suggestion threshold %d", c.Suggestions.Days)
	}
	return nil
}

func writeDefault(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create the config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// applyEnv overrides configuration values with environment variables. The database and server
// variables keep the names the service has always used.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("PCRM_DB_DRIVER", &cfg.Database.Driver)
	str("PCRM_DB_PATH", &cfg.Database.Path)
	str("DBHOST", &cfg.Database.Host)
	str("DBUSER", &cfg.Database.User)
	str("DBPWD", &cfg.Database.Password)
	str("DBNAME", &cfg.Database.Name)
	str("GIN_MODE", &cfg.Server.Mode)
	str("PCRM_LOG_LEVEL", &cfg.Log.Level)
	str("PCRM_CALENDAR_CREDENTIALS", &cfg.Calendar.CredentialsFile)

	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("could not parse PORT env variable: %w", err)
		}
		cfg.Server.Port = port
	}
	if v, ok := lookup("GIN_LOGGING"); ok {
		cfg.Server.Logging = !strings.EqualFold(v, "off")
	}
	return nil
}
