package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	// Theme names the active color palette (see internal/theme).
	Theme string `mapstructure:"theme" yaml:"theme"`

	// PreviewCount is how many member messages a conversation card shows.
	PreviewCount int `mapstructure:"preview_count" yaml:"preview_count"`

	// TimestampFormat is the Go reference layout for card timestamps.
	TimestampFormat string `mapstructure:"timestamp_format" yaml:"timestamp_format"`
}

// LoggingConfig holds diagnostics settings.
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// DefaultTimestampFormat is the card timestamp layout,
// e.g. "Jan 02, 2006 03:04 PM".
const DefaultTimestampFormat = "Jan 02, 2006 03:04 PM"

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/inbox-reader/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "inbox-reader", "config.yaml")
}

// DefaultDataDir returns the directory holding the account registry
// database and log file.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "inbox-reader")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Display: DisplayConfig{
			Theme:           "ocean",
			PreviewCount:    3,
			TimestampFormat: DefaultTimestampFormat,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  filepath.Join(DefaultDataDir(), "inbox-reader.log"),
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("display.theme", "ocean")
	v.SetDefault("display.preview_count", 3)
	v.SetDefault("display.timestamp_format", DefaultTimestampFormat)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", filepath.Join(DefaultDataDir(), "inbox-reader.log"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Display.PreviewCount < 1 {
		cfg.Display.PreviewCount = 3
	}
	if cfg.Display.TimestampFormat == "" {
		cfg.Display.TimestampFormat = DefaultTimestampFormat
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("display", cfg.Display)
	v.Set("logging", cfg.Logging)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
