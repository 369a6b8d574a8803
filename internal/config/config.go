// Package config provides the application configuration layer on top of viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"wisp/pkg/logger"

	"github.com/spf13/viper"
)

// Config is the root configuration structure.
type Config struct {
	Version string        `mapstructure:"version" yaml:"version"`
	Gemini  GeminiConfig  `mapstructure:"gemini" yaml:"gemini"`
	MCP     MCPConfig     `mapstructure:"mcp" yaml:"mcp"`
	Retry   RetryConfig   `mapstructure:"retry" yaml:"retry"`
	Log     logger.Config `mapstructure:"log" yaml:"log"`
}

// GeminiConfig configures the Gemini model backend.
type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key" yaml:"api_key"`
	Model       string  `mapstructure:"model" yaml:"model"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
}

// MCPConfig configures the external MCP tool server subprocess.
type MCPConfig struct {
	Command string            `mapstructure:"command" yaml:"command"`
	Args    []string          `mapstructure:"args" yaml:"args,omitempty"`
	Env     map[string]string `mapstructure:"env" yaml:"env,omitempty"`
	WorkDir string            `mapstructure:"work_dir" yaml:"work_dir,omitempty"`
	Timeout string            `mapstructure:"timeout" yaml:"timeout,omitempty"`
}

// GetTimeout parses the Timeout field, defaulting to 30 seconds.
func (c *MCPConfig) GetTimeout() time.Duration {
	if c.Timeout == "" {
		return 30 * time.Second
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// RetryConfig configures the generation retry behavior.
type RetryConfig struct {
	MaxAttempts  int    `mapstructure:"max_attempts" yaml:"max_attempts"`
	DefaultDelay string `mapstructure:"default_delay" yaml:"default_delay"`
}

// GetDefaultDelay parses the DefaultDelay field, defaulting to 30 seconds.
func (c *RetryConfig) GetDefaultDelay() time.Duration {
	if c.DefaultDelay == "" {
		return 30 * time.Second
	}
	d, err := time.ParseDuration(c.DefaultDelay)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// Validate checks that the configuration is usable for a chat session.
func (c *Config) Validate() error {
	if c.Gemini.APIKey == "" {
		return errors.New("gemini.api_key is required (or set WISP_GEMINI_API_KEY)")
	}
	if c.Gemini.Model == "" {
		return errors.New("gemini.model is required")
	}
	if c.MCP.Command == "" {
		return errors.New("mcp.command is required")
	}
	return nil
}

// Load reads configuration from the given path, applying defaults and
// WISP_* environment variable overrides. A missing config file is not an
// error; a malformed or unreadable one is.
func Load(path string) (*Config, error) {
	SetDefaults()

	viper.SetEnvPrefix("WISP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if path != "" {
		expandedPath, err := ExpandPath(path)
		if err != nil {
			return nil, err
		}

		viper.SetConfigFile(expandedPath)
		if err := viper.ReadInConfig(); err != nil {
			// Only a missing file falls back to defaults. Unreadable or
			// malformed config must not masquerade as an empty one.
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("read config %s: %w", expandedPath, err)
			}
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}
