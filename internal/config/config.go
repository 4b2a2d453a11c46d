package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. TIMETHIS_LOG_LEVEL
const EnvPrefix = "TIMETHIS"

// Config holds the resolved settings for a timethis invocation
type Config struct {
	Loops        uint        `mapstructure:"loops"`
	Output       string      `mapstructure:"output"`
	LogLevel     string      `mapstructure:"log_level"`
	LogFormat    string      `mapstructure:"log_format"`
	LogFile      string      `mapstructure:"log_file"`
	Shell        string      `mapstructure:"shell"`
	HistoryDB    string      `mapstructure:"history_db"`
	OTLPEndpoint string      `mapstructure:"otlp_endpoint"`
	MetricsFile  string      `mapstructure:"metrics_file"`
	Watch        WatchConfig `mapstructure:"watch"`
}

// WatchConfig holds settings for the watch daemon
type WatchConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Listen   string        `mapstructure:"listen"`
	Keep     int           `mapstructure:"keep"`
}

// SetDefaults registers the built-in defaults on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("loops", 1)
	v.SetDefault("output", "table")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("log_file", "")
	v.SetDefault("shell", "/bin/sh")
	v.SetDefault("history_db", "")
	v.SetDefault("otlp_endpoint", "")
	v.SetDefault("metrics_file", "")
	v.SetDefault("watch.interval", 30*time.Second)
	v.SetDefault("watch.listen", ":9464")
	v.SetDefault("watch.keep", 100)
}

// DefaultDir returns $HOME/.timethis
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to find home directory: %w", err)
	}
	return filepath.Join(home, ".timethis"), nil
}

// Load reads cfgFile (or $HOME/.timethis/config.yaml when empty) and the
// environment into v. A missing default config file is not an error.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// mapstructure decodes weakly, so a negative count would wrap around
	// when stored in the uint field
	if loops := v.GetInt64("loops"); loops < 0 {
		return nil, fmt.Errorf("loops must not be negative, got %d", loops)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings that cannot be acted on
func (c *Config) Validate() error {
	switch c.Output {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("invalid output format %q: want table, json or yaml", c.Output)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q: want text or json", c.LogFormat)
	}
	if c.Watch.Interval <= 0 {
		return fmt.Errorf("watch interval must be positive, got %s", c.Watch.Interval)
	}
	if c.Watch.Keep <= 0 {
		return fmt.Errorf("watch keep must be positive, got %d", c.Watch.Keep)
	}
	return nil
}
