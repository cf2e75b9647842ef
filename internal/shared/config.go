package shared

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Storage  StorageConfig  `toml:"storage"`
	Database DatabaseConfig `toml:"database"`
	Playback PlaybackConfig `toml:"playback"`
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
}

// StorageConfig selects where and how the library is persisted.
type StorageConfig struct {
	Backend       string `toml:"backend"`
	Directory     string `toml:"directory"`
	SongsFile     string `toml:"songs_file"`
	PlaylistsFile string `toml:"playlists_file"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// PlaybackConfig contains auto-scroll defaults.
type PlaybackConfig struct {
	Speed       float64 `toml:"speed"`
	BufferLines int     `toml:"buffer_lines"`
	FPS         int     `toml:"fps"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
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

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks enumerated and numeric settings.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("%w: unknown storage backend %q", ErrInvalidConfig, c.Storage.Backend)
	}

	if c.Storage.SongsFile == "" || c.Storage.PlaylistsFile == "" {
		return fmt.Errorf("%w: storage file names must not be empty", ErrInvalidConfig)
	}

	if c.Playback.Speed <= 0 {
		return fmt.Errorf("%w: playback speed must be positive", ErrInvalidConfig)
	}

	if c.Playback.FPS <= 0 {
		return fmt.Errorf("%w: playback fps must be positive", ErrInvalidConfig)
	}

	if c.Playback.BufferLines < 0 {
		return fmt.Errorf("%w: playback buffer_lines must not be negative", ErrInvalidConfig)
	}

	return nil
}

// StorageDir returns the library directory, falling back to $XDG_DATA_HOME/lyrx.
func (c *Config) StorageDir() string {
	if c.Storage.Directory != "" {
		return c.Storage.Directory
	}
	return filepath.Join(xdg.DataHome, "lyrx")
}

// SongsPath is the songs store location for the json backend.
func (c *Config) SongsPath() string {
	return filepath.Join(c.StorageDir(), c.Storage.SongsFile)
}

// PlaylistsPath is the playlists store location for the json backend.
func (c *Config) PlaylistsPath() string {
	return filepath.Join(c.StorageDir(), c.Storage.PlaylistsFile)
}

// DatabasePath is the SQLite file used by the sqlite backend.
func (c *Config) DatabasePath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	return filepath.Join(c.StorageDir(), "lyrx.db")
}

// LogFile is where the TUI writes logs.
func (c *Config) LogFile() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(c.StorageDir(), "lyrx-tui.log")
}

// Addr is the host:port the local API listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
