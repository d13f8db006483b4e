package config

import (
	"fmt"
	"strings"
	"time"

	"datefilter/internal/apperr"
	"datefilter/internal/logger"
)

const (
	DefaultMaxFileSize = 10 << 20 // 10MB
	DefaultCookieName  = "datefilter_session"
)

// Config holds the complete application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server" json:"server"`
	Upload  UploadConfig  `yaml:"upload" json:"upload"`
	Session SessionConfig `yaml:"session" json:"session"`
	Log     LogConfig     `yaml:"log" json:"log"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Addr            string        `yaml:"addr" json:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// UploadConfig bounds what an upload may contain
type UploadConfig struct {
	MaxFileSize int64 `yaml:"max_file_size" json:"max_file_size"` // bytes
	MaxRows     int   `yaml:"max_rows" json:"max_rows"`           // 0 = unlimited
}

// SessionConfig configures the per-browser view state
type SessionConfig struct {
	IdleTimeout time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	CookieName  string        `yaml:"cookie_name" json:"cookie_name"`
}

// LogConfig configures logging
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"` // used by the terminal browser
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Upload: UploadConfig{
			MaxFileSize: DefaultMaxFileSize,
		},
		Session: SessionConfig{
			IdleTimeout: 30 * time.Minute,
			CookieName:  DefaultCookieName,
		},
		Log: LogConfig{
			Level: "INFO",
		},
	}
}

// Validate checks the configuration for values the application cannot run with
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return apperr.ConfigInvalid("server.addr must not be empty")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return apperr.ConfigInvalid(fmt.Sprintf("server.shutdown_timeout must be positive, got %s", c.Server.ShutdownTimeout))
	}
	if c.Upload.MaxFileSize <= 0 {
		return apperr.ConfigInvalid(fmt.Sprintf("upload.max_file_size must be positive, got %d", c.Upload.MaxFileSize))
	}
	if c.Upload.MaxRows < 0 {
		return apperr.ConfigInvalid(fmt.Sprintf("upload.max_rows must not be negative, got %d", c.Upload.MaxRows))
	}
	if c.Session.IdleTimeout <= 0 {
		return apperr.ConfigInvalid(fmt.Sprintf("session.idle_timeout must be positive, got %s", c.Session.IdleTimeout))
	}
	if strings.TrimSpace(c.Session.CookieName) == "" {
		return apperr.ConfigInvalid("session.cookie_name must not be empty")
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return apperr.ConfigInvalid(fmt.Sprintf("invalid log.level: %s (must be one of: ERROR, WARN, INFO, DEBUG)", c.Log.Level))
	}
	return nil
}

// LogLevel returns the parsed log level; Validate guarantees it parses.
func (c *Config) LogLevel() logger.Level {
	level, _ := logger.ParseLevel(c.Log.Level)
	return level
}
