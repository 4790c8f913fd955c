package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/mainbong/termulator/internal/filesystem"
	"github.com/mainbong/termulator/internal/logger"
)

var watchLog = logger.For("config")

// Config holds the application configuration
type Config struct {
	LogDir      string `json:"log_dir" yaml:"log_dir" toml:"log_dir"`
	LogLevel    string `json:"log_level" yaml:"log_level" toml:"log_level"`          // "debug", "info", "warn", "error"
	ExecTimeout string `json:"exec_timeout" yaml:"exec_timeout" toml:"exec_timeout"` // empty means no timeout
	TopInterval string `json:"top_interval" yaml:"top_interval" toml:"top_interval"`
	MirrorEnv   bool   `json:"mirror_env" yaml:"mirror_env" toml:"mirror_env"` // export also sets the host process environment
	TUI         string `json:"tui" yaml:"tui" toml:"tui"`                      // "auto", "on", "off"
	Color       bool   `json:"color" yaml:"color" toml:"color"`

	path string
	fs   filesystem.FileSystem
}

// candidateFiles are looked up in order inside the config directory
var candidateFiles = []string{"config.json", "config.yaml", "config.yml", "config.toml"}

var (
	configDir = filepath.Join(os.Getenv("HOME"), ".termulator")
	defaultFS = filesystem.NewOSFileSystem()
)

// Load loads the configuration from the default directory or creates a default one
func Load() (*Config, error) {
	return LoadWithFS(defaultFS, configDir)
}

// FindFile returns the first config file present in dir, or dir/config.json when there is none
func FindFile(fs filesystem.FileSystem, dir string) string {
	for _, name := range candidateFiles {
		candidate := filepath.Join(dir, name)
		if info, err := fs.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return filepath.Join(dir, candidateFiles[0])
}

// LoadWithFS loads the configuration using a custom FileSystem (for testing)
func LoadWithFS(fs filesystem.FileSystem, dir string) (*Config, error) {
	// Create config directory if it doesn't exist
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	file := FindFile(fs, dir)
	cfg := defaults(dir)
	cfg.path = file
	cfg.fs = fs

	if _, err := fs.Stat(file); err == nil {
		data, err := fs.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := decode(file, data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if err := cfg.SaveWithFS(fs, file); err != nil {
		return nil, fmt.Errorf("failed to save default config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", file, err)
	}

	if err := cfg.ensureDir(fs, file, "log_dir", &cfg.LogDir, filepath.Join(dir, "logs")); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaults(dir string) *Config {
	return &Config{
		LogDir:      filepath.Join(dir, "logs"),
		LogLevel:    "info",
		TopInterval: "1s",
		TUI:         "auto",
		Color:       true,
	}
}

func decode(file string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	case ".toml":
		return toml.Unmarshal(data, cfg)
	default:
		return json.Unmarshal(data, cfg)
	}
}

func encode(file string, cfg *Config) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		return yaml.Marshal(cfg)
	case ".toml":
		return toml.Marshal(cfg)
	default:
		return json.MarshalIndent(cfg, "", "  ")
	}
}

func (c *Config) validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level: %s", c.LogLevel)
	}
	switch c.TUI {
	case "auto", "on", "off":
	default:
		return fmt.Errorf("invalid tui: %s", c.TUI)
	}
	if _, err := parseDuration(c.ExecTimeout); err != nil {
		return fmt.Errorf("invalid exec_timeout: %w", err)
	}
	if _, err := parseDuration(c.TopInterval); err != nil {
		return fmt.Errorf("invalid top_interval: %w", err)
	}
	return nil
}

func parseDuration(value string) (time.Duration, error) {
	if strings.TrimSpace(value) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", value)
	}
	return d, nil
}

// ExecTimeoutDuration returns the external command timeout, 0 meaning none
func (c *Config) ExecTimeoutDuration() time.Duration {
	d, _ := parseDuration(c.ExecTimeout)
	return d
}

// TopIntervalDuration returns the CPU sampling interval for top, defaulting to one second
func (c *Config) TopIntervalDuration() time.Duration {
	d, _ := parseDuration(c.TopInterval)
	if d == 0 {
		return time.Second
	}
	return d
}

// Marshal encodes the configuration in the format of the file it was loaded from
func (c *Config) Marshal() ([]byte, error) {
	return encode(c.path, c)
}

// Path returns the file the configuration was loaded from
func (c *Config) Path() string {
	return c.path
}

// Save saves the configuration back to the file it was loaded from
func (c *Config) Save() error {
	fs := c.fs
	if fs == nil {
		fs = defaultFS
	}
	file := c.path
	if file == "" {
		file = FindFile(fs, configDir)
	}
	return c.SaveWithFS(fs, file)
}

// SaveWithFS saves the configuration using a custom FileSystem (for testing).
// The encoding follows the file extension.
func (c *Config) SaveWithFS(fs filesystem.FileSystem, file string) error {
	data, err := encode(file, c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(file)
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := fs.WriteFile(file, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() string {
	return configDir
}

func (c *Config) ensureDir(fs filesystem.FileSystem, file, key string, value *string, fallback string) error {
	if strings.TrimSpace(*value) == "" {
		*value = fallback
		if err := c.SaveWithFS(fs, file); err != nil {
			return fmt.Errorf("failed to save default %s: %w", key, err)
		}
	}

	if err := fs.MkdirAll(*value, 0755); err != nil {
		*value = fallback
		if err := fs.MkdirAll(*value, 0755); err != nil {
			return fmt.Errorf("failed to create %s directory: %w", key, err)
		}
		if err := c.SaveWithFS(fs, file); err != nil {
			return fmt.Errorf("failed to save fallback %s: %w", key, err)
		}
	}

	return nil
}

// Set updates a config value by key.
func (c *Config) Set(key, value string) error {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "log_dir":
		c.LogDir = value
	case "log_level":
		switch strings.ToLower(value) {
		case "debug", "info", "warn", "error":
			c.LogLevel = strings.ToLower(value)
		default:
			return fmt.Errorf("invalid log_level: %s", value)
		}
	case "exec_timeout":
		if _, err := parseDuration(value); err != nil {
			return fmt.Errorf("invalid exec_timeout: %s", value)
		}
		c.ExecTimeout = value
	case "top_interval":
		if _, err := parseDuration(value); err != nil {
			return fmt.Errorf("invalid top_interval: %s", value)
		}
		c.TopInterval = value
	case "mirror_env":
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid mirror_env: %s", value)
		}
		c.MirrorEnv = parsed
	case "tui":
		switch strings.ToLower(value) {
		case "auto", "on", "off":
			c.TUI = strings.ToLower(value)
		default:
			return fmt.Errorf("invalid tui: %s", value)
		}
	case "color":
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid color: %s", value)
		}
		c.Color = parsed
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}

	return nil
}

// Watch reloads the configuration whenever its file is written and passes the
// result to onChange. A file that fails to parse is logged and skipped. Watch
// blocks until ctx is done or the watcher fails.
func (c *Config) Watch(ctx context.Context, onChange func(*Config)) error {
	fs := c.fs
	if fs == nil {
		fs = defaultFS
	}
	dir := filepath.Dir(c.path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// the directory is watched so that a replaced file is still seen
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to add config directory to watcher: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(c.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			reloaded, err := LoadWithFS(fs, dir)
			if err != nil {
				watchLog.Warn("config reload failed: %v", err)
				continue
			}
			watchLog.Info("config reloaded from %s", reloaded.path)
			onChange(reloaded)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}
