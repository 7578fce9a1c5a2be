package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	MinBatchSize = 1
	MaxBatchSize = 500
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database  DatabaseConfig  `toml:"database"`
	WordPress WordPressConfig `toml:"wordpress"`
	Migration MigrationConfig `toml:"migration"`
	Store     StoreConfig     `toml:"store"`
	Media     MediaConfig     `toml:"media"`
	Server    ServerConfig    `toml:"server"`
}

// DatabaseConfig contains the legacy WordPress database settings.
//
// Driver is "mysql" for a live installation or "sqlite3" for a local dump, in which case Name is the file path.
type DatabaseConfig struct {
	Driver   string `toml:"driver"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Name     string `toml:"name"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Prefix   string `toml:"prefix"`
	Charset  string `toml:"charset"`
	Timeout  int    `toml:"timeout"`
}

// WordPressConfig contains settings for the legacy site itself.
type WordPressConfig struct {
	BaseURL string `toml:"base_url"`
}

// MigrationConfig controls batch behaviour.
type MigrationConfig struct {
	BatchSize          int  `toml:"batch_size"`
	SkipExisting       bool `toml:"skip_existing"`
	CreateContentTypes bool `toml:"create_content_types"`
}

// StoreConfig contains the local target store (and ledger) database settings.
type StoreConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// MediaConfig contains download and file storage settings.
type MediaConfig struct {
	PublicDir         string  `toml:"public_dir"`
	Directory         string  `toml:"directory"`
	Timeout           int     `toml:"timeout"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	UserAgent         string  `toml:"user_agent"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig encodes the config as TOML and writes it to path, replacing any existing file.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate reports the first problem that would prevent a migration run.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql":
		if c.Database.Host == "" {
			return fmt.Errorf("%w: database.host is required", ErrInvalidConfig)
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			return fmt.Errorf("%w: database.port %d out of range", ErrInvalidConfig, c.Database.Port)
		}
		if c.Database.Username == "" {
			return fmt.Errorf("%w: database.username is required", ErrInvalidConfig)
		}
	case "sqlite3":
	default:
		return fmt.Errorf("%w: unsupported database.driver %q", ErrInvalidConfig, c.Database.Driver)
	}

	if c.Database.Name == "" {
		return fmt.Errorf("%w: database.name is required", ErrInvalidConfig)
	}

	if err := ValidateBatchSize(c.Migration.BatchSize); err != nil {
		return err
	}

	if c.Store.Path == "" {
		return fmt.Errorf("%w: store.path is required", ErrInvalidConfig)
	}
	return nil
}

// ValidateBatchSize checks n against [MinBatchSize] and [MaxBatchSize].
func ValidateBatchSize(n int) error {
	if n < MinBatchSize || n > MaxBatchSize {
		return fmt.Errorf("%w: batch size must be between %d and %d, got %d", ErrInvalidArgument, MinBatchSize, MaxBatchSize, n)
	}
	return nil
}

// Masked returns a copy of the config safe for display.
func (c *Config) Masked() Config {
	masked := *c
	if masked.Database.Password != "" {
		masked.Database.Password = "********"
	}
	return masked
}
