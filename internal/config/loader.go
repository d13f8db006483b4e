package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is read when no --config flag is given and the file exists
const DefaultConfigPath = "./.datefilter.yaml"

// Loader handles configuration loading with priority merging
type Loader struct {
	defaultPath string
	envFiles    []string
}

// NewLoader creates a new config loader
func NewLoader() *Loader {
	return &Loader{
		defaultPath: DefaultConfigPath,
		envFiles:    []string{".env"},
	}
}

// LoadConfig loads configuration with priority order (highest first):
// 1. DATEFILTER_* environment variables (a .env file is loaded into the environment first)
// 2. the YAML file at customPath, or ./.datefilter.yaml if present
// 3. built-in defaults
func (l *Loader) LoadConfig(customPath string) (*Config, error) {
	config := DefaultConfig()

	switch {
	case customPath != "":
		if err := loadFromFile(config, customPath); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", customPath, err)
		}
	case l.defaultPath != "" && fileExists(l.defaultPath):
		if err := loadFromFile(config, l.defaultPath); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", l.defaultPath, err)
		}
	}

	if err := l.loadEnvFiles(); err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// loadFromFile decodes YAML over the already-populated config, so keys
// absent from the file keep their current value.
func loadFromFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

// loadEnvFiles never overrides variables that are already set.
func (l *Loader) loadEnvFiles() error {
	for _, path := range l.envFiles {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

func applyEnvOverrides(config *Config) error {
	envMappings := map[string]func(string) error{
		"DATEFILTER_SERVER_ADDR":             func(v string) error { config.Server.Addr = v; return nil },
		"DATEFILTER_SERVER_SHUTDOWN_TIMEOUT": func(v string) error { return parseDuration(v, &config.Server.ShutdownTimeout) },
		"DATEFILTER_UPLOAD_MAX_FILE_SIZE":    func(v string) error { return parseInt64(v, &config.Upload.MaxFileSize) },
		"DATEFILTER_UPLOAD_MAX_ROWS":         func(v string) error { return parseInt(v, &config.Upload.MaxRows) },
		"DATEFILTER_SESSION_IDLE_TIMEOUT":    func(v string) error { return parseDuration(v, &config.Session.IdleTimeout) },
		"DATEFILTER_SESSION_COOKIE_NAME":     func(v string) error { config.Session.CookieName = v; return nil },
		"DATEFILTER_LOG_LEVEL":               func(v string) error { config.Log.Level = v; return nil },
		"DATEFILTER_LOG_FILE":                func(v string) error { config.Log.File = v; return nil },
	}

	for key, apply := range envMappings {
		value, ok := os.LookupEnv(key)
		if !ok || value == "" {
			continue
		}
		if err := apply(value); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

func parseDuration(v string, dst *time.Duration) error {
	d, err := time.ParseDuration(v)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

func parseInt(v string, dst *int) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

func parseInt64(v string, dst *int64) error {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
