package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Session backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMySQL  = "mysql"
)

var (
	ErrInvalidBackend  = errors.New("invalid session backend")
	ErrInvalidLogLevel = errors.New("invalid log level")
	ErrMissingAPIURL   = errors.New("api_url is required")
)

type Config struct {
	APIURL   string        `yaml:"api_url"`
	Env      string        `yaml:"env"`
	LogLevel string        `yaml:"log_level"`
	Session  SessionConfig `yaml:"session"`
}

// SessionConfig selects where the access token is persisted. Path is used by
// the file backend; DSN by the sqlite and mysql backends.
type SessionConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
	DSN     string `yaml:"dsn"`
}

// Default returns the built-in configuration.
func Default() Config {
	dir := defaultDir()
	return Config{
		APIURL:   "http://localhost:8080",
		Env:      "development",
		LogLevel: "info",
		Session: SessionConfig{
			Backend: BackendFile,
			Path:    filepath.Join(dir, "access_token"),
		},
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when path is empty or the file does not exist), then environment
// variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg.APIURL = getEnv("RECIPES_API_URL", cfg.APIURL)
	cfg.Env = getEnv("RECIPES_ENV", cfg.Env)
	cfg.LogLevel = getEnv("RECIPES_LOG_LEVEL", cfg.LogLevel)
	cfg.Session.Backend = getEnv("RECIPES_SESSION_BACKEND", cfg.Session.Backend)
	cfg.Session.Path = getEnv("RECIPES_SESSION_PATH", cfg.Session.Path)
	cfg.Session.DSN = getEnv("RECIPES_SESSION_DSN", cfg.Session.DSN)

	if cfg.Session.Backend == BackendSQLite && cfg.Session.DSN == "" {
		cfg.Session.DSN = filepath.Join(defaultDir(), "session.db")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values Load cannot default.
func (c Config) Validate() error {
	if c.APIURL == "" {
		return ErrMissingAPIURL
	}

	switch c.Session.Backend {
	case BackendMemory, BackendFile, BackendSQLite, BackendMySQL:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBackend, c.Session.Backend)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}

	return nil
}

func defaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "recipes")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
