// Package config provides configuration management for the meetsum
// command-line tool and API server. It supports loading from a YAML file,
// environment variables, and command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// OutputFormat defines the supported output formats for CLI results.
type OutputFormat string

const (
	// OutputFormatText is human-readable plain text output.
	OutputFormatText OutputFormat = "text"
	// OutputFormatJSON is JSON-formatted output for machine processing.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML is YAML-formatted output for machine processing.
	OutputFormatYAML OutputFormat = "yaml"
)

// Default configuration values.
const (
	DefaultServerURL     = "http://localhost:8080"
	DefaultTimeout       = 30 * time.Second
	DefaultUploadTimeout = 5 * time.Minute
	DefaultPollInterval  = 3 * time.Second
	DefaultOutputFormat  = OutputFormatText
	DefaultConfigDir     = ".meetsum"
	DefaultConfigFile    = "config.yaml"

	DefaultListenAddr = ":8080"
	DefaultBlobDir    = "data/audio"
)

// Database defaults.
const (
	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "meetsum"
	DefaultDBUser     = "meetsum"
	DefaultDBSSLMode  = "disable"
	DefaultDBMaxConns = 25
	DefaultDBMinConns = 5
)

// DatabaseConfig holds the Postgres settings for the API server. The
// password normally comes from the DB_PASSWORD environment variable rather
// than the config file.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password,omitempty"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int32  `yaml:"max_conns"`
	MinConns int32  `yaml:"min_conns"`
}

// ServerConfig holds the API server settings.
type ServerConfig struct {
	// ListenAddr is the address the HTTP server binds to.
	ListenAddr string `yaml:"listen_addr"`

	// BlobDir is the directory audio blobs are stored under.
	BlobDir string `yaml:"blob_dir"`

	// BaseURL is the externally reachable URL audio files are served from.
	// Empty means derived from ListenAddr.
	BaseURL string `yaml:"base_url,omitempty"`

	// GroqBaseURL overrides the Groq API root, mainly for testing.
	GroqBaseURL string `yaml:"groq_base_url,omitempty"`

	// SpeechModel is the transcription model name.
	SpeechModel string `yaml:"speech_model,omitempty"`

	// ChatModel is the analysis model name.
	ChatModel string `yaml:"chat_model,omitempty"`

	// Database holds the Postgres connection settings.
	Database DatabaseConfig `yaml:"database"`
}

// Config holds the full meetsum configuration.
type Config struct {
	// ServerURL is the API base URL the CLI talks to.
	ServerURL string `yaml:"server_url"`

	// Timeout applies to CLI calls except uploads.
	Timeout time.Duration `yaml:"timeout"`

	// UploadTimeout applies to multipart uploads.
	UploadTimeout time.Duration `yaml:"upload_timeout"`

	// PollInterval is the status poll cadence.
	PollInterval time.Duration `yaml:"poll_interval"`

	// OutputFormat is the default CLI output format.
	OutputFormat OutputFormat `yaml:"output_format"`

	// Debug enables verbose logging.
	Debug bool `yaml:"debug"`

	// Server holds the API server settings.
	Server ServerConfig `yaml:"server"`
}

// DefaultConfig returns the configuration defaults.
func DefaultConfig() *Config {
	return &Config{
		ServerURL:     DefaultServerURL,
		Timeout:       DefaultTimeout,
		UploadTimeout: DefaultUploadTimeout,
		PollInterval:  DefaultPollInterval,
		OutputFormat:  DefaultOutputFormat,
		Server: ServerConfig{
			ListenAddr: DefaultListenAddr,
			BlobDir:    DefaultBlobDir,
			Database: DatabaseConfig{
				Host:     DefaultDBHost,
				Port:     DefaultDBPort,
				Name:     DefaultDBName,
				User:     DefaultDBUser,
				SSLMode:  DefaultDBSSLMode,
				MaxConns: DefaultDBMaxConns,
				MinConns: DefaultDBMinConns,
			},
		},
	}
}

// ConfigDir returns the configuration directory.
// Uses $MEETSUM_CONFIG_DIR if set, otherwise ~/.meetsum.
func ConfigDir() (string, error) {
	if dir := os.Getenv("MEETSUM_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, DefaultConfigDir), nil
}

// ConfigPath returns the path of the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultConfigFile), nil
}

// LoadConfig loads the configuration with the following precedence
// (lowest to highest):
//  1. Built-in defaults
//  2. Config file (~/.meetsum/config.yaml or $MEETSUM_CONFIG_DIR/config.yaml)
//  3. Environment variables (MEETSUM_SERVER_URL, MEETSUM_TIMEOUT, ...)
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	configPath, err := ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("getting config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("MEETSUM_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("MEETSUM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = d
		}
	}
	if v := os.Getenv("MEETSUM_UPLOAD_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.UploadTimeout = d
		}
	}
	if v := os.Getenv("MEETSUM_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.PollInterval = d
		}
	}
	if v := os.Getenv("MEETSUM_OUTPUT_FORMAT"); v != "" {
		cfg.OutputFormat = OutputFormat(v)
	}
	if v := os.Getenv("MEETSUM_DEBUG"); v == "true" || v == "1" {
		cfg.Debug = true
	}
	if v := os.Getenv("MEETSUM_LISTEN_ADDR"); v != "" {
		cfg.Server.ListenAddr = v
	}
	if v := os.Getenv("MEETSUM_BLOB_DIR"); v != "" {
		cfg.Server.BlobDir = v
	}
	if v := os.Getenv("MEETSUM_BASE_URL"); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv("MEETSUM_GROQ_BASE_URL"); v != "" {
		cfg.Server.GroqBaseURL = v
	}
	loadDatabaseFromEnv(&cfg.Server.Database)
}

// loadDatabaseFromEnv applies the DB_* environment variables. Unparseable
// numbers leave the existing value in place.
func loadDatabaseFromEnv(dbc *DatabaseConfig) {
	if v := os.Getenv("DB_HOST"); v != "" {
		dbc.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			dbc.Port = p
		}
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		dbc.Name = v
	}
	if v := os.Getenv("DB_USER"); v != "" {
		dbc.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		dbc.Password = v
	}
	if v := os.Getenv("DB_SSLMODE"); v != "" {
		dbc.SSLMode = v
	}
	if v := os.Getenv("DB_MAX_CONNS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			dbc.MaxConns = int32(n)
		}
	}
	if v := os.Getenv("DB_MIN_CONNS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			dbc.MinConns = int32(n)
		}
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	switch c.OutputFormat {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML:
	default:
		return fmt.Errorf("invalid output format %q (must be text, json, or yaml)", c.OutputFormat)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.UploadTimeout <= 0 {
		return fmt.Errorf("upload timeout must be positive")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server listen address must not be empty")
	}
	return c.Server.Database.Validate()
}

// Validate checks the database settings for inconsistencies.
func (d *DatabaseConfig) Validate() error {
	if d.Host == "" {
		return fmt.Errorf("database host must not be empty")
	}
	if d.Port <= 0 || d.Port > 65535 {
		return fmt.Errorf("invalid database port %d", d.Port)
	}
	if d.Name == "" {
		return fmt.Errorf("database name must not be empty")
	}
	if d.User == "" {
		return fmt.Errorf("database user must not be empty")
	}
	if d.MaxConns < d.MinConns {
		return fmt.Errorf("database max_conns (%d) below min_conns (%d)", d.MaxConns, d.MinConns)
	}
	return nil
}
