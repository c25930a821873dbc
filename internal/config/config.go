// Package config loads the fanout CLI configuration with Viper: defaults,
// an optional YAML file, and MCPFAN_* environment overrides, resolved once
// at startup.
package config

import (
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/chatstack/mcp-fanout-go/internal/logging"
)

// EnvPrefix is the prefix for environment overrides, e.g. MCPFAN_LOG_LEVEL.
const EnvPrefix = "MCPFAN"

// Server declares one additional MCP server in the config file. Either
// command/args or url is set, mirroring mcpfan.ServerSpec.
type Server struct {
	Command   string   `mapstructure:"command"`
	Args      []string `mapstructure:"args"`
	URL       string   `mapstructure:"url"`
	Transport string   `mapstructure:"transport"`
}

// Config is the top-level CLI configuration.
type Config struct {
	LogLevel     string            `mapstructure:"log_level"`
	LogFormat    string            `mapstructure:"log_format"`
	Timeout      time.Duration     `mapstructure:"timeout"`
	IncludeBase  bool              `mapstructure:"include_base"`
	IncludeRevit bool              `mapstructure:"include_revit"`
	Servers      map[string]Server `mapstructure:"servers"`
}

// Load reads the configuration. When path is empty it searches the working
// directory for fanout.yaml and falls back to defaults when nothing is
// found; a missing explicit path is an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("fanout")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("include_base", true)
	v.SetDefault("include_revit", true)

	if path != "" {
		v.SetConfigFile(path)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Implicit search found nothing; defaults apply.
		} else if path != "" {
			return nil, errors.Wrapf(err, "reading config file %s", path)
		} else {
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}
	return &cfg, nil
}

// Level returns the configured slog level.
func (c *Config) Level() slog.Level {
	return logging.ParseLevel(c.LogLevel)
}

// Format returns the configured log format.
func (c *Config) Format() logging.Format {
	if c.LogFormat == string(logging.FormatJSON) {
		return logging.FormatJSON
	}
	return logging.FormatText
}
