// Package config handles configuration loading for swarm.
// It supports XDG config paths, project-level overrides, and environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/reedwhitmont/swarm/pkg/models"
)

// Config holds all configuration for swarm.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Defaults  DefaultsConfig  `mapstructure:"defaults"`
	Roles     RolesConfig     `mapstructure:"roles"`
	Steering  SteeringConfig  `mapstructure:"steering"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	// APIKey is the Anthropic API key; ${VAR} references are expanded.
	APIKey string `mapstructure:"api_key"`
	// Model is the default model for all roles.
	Model string `mapstructure:"model"`
	// UseAWSBedrock routes requests through AWS Bedrock.
	UseAWSBedrock bool `mapstructure:"use_aws_bedrock"`
	// AWSRegion is the AWS region for Bedrock.
	AWSRegion string `mapstructure:"aws_region"`
	// AWSProfile is the optional AWS profile name.
	AWSProfile string `mapstructure:"aws_profile"`
}

// DefaultsConfig holds default run settings.
type DefaultsConfig struct {
	// Protocol is the default execution protocol for planned runs.
	Protocol string `mapstructure:"protocol"`
	// MaxTurns is the global turn budget per run.
	MaxTurns int `mapstructure:"max_turns"`
	// MaxConcurrency caps parallel fan-out (0 = unlimited).
	MaxConcurrency int `mapstructure:"max_concurrency"`
	// ContextEntries is how many recent blackboard entries go into each
	// task prompt.
	ContextEntries int `mapstructure:"context_entries"`
	// TaskTimeout bounds one agent invocation (0 = no timeout).
	TaskTimeout time.Duration `mapstructure:"task_timeout"`
}

// RolesConfig points at custom role definitions.
type RolesConfig struct {
	// File is a YAML file of role definitions merged over the built-ins.
	File string `mapstructure:"file"`
}

// SteeringConfig holds operator steering settings.
type SteeringConfig struct {
	// Dir is the watched directory for operator notes and signals.
	// Empty disables steering.
	Dir string `mapstructure:"dir"`
}

// Load loads configuration from XDG paths, project overrides, and
// environment variables.
// Precedence (highest to lowest):
//  1. Environment variables (SWARM_*, ANTHROPIC_API_KEY)
//  2. Project config (.swarm.yaml in current directory or a parent)
//  3. User config (~/.config/swarm/config.yaml)
//  4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("SWARM")
	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file.
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)
	return cfg, nil
}

// LoadRoles reads custom role definitions from the YAML file named in
// the config. An empty file name yields no custom roles.
func (c *Config) LoadRoles() ([]*models.Role, error) {
	if c.Roles.File == "" {
		return nil, nil
	}

	data, err := os.ReadFile(c.Roles.File)
	if err != nil {
		return nil, fmt.Errorf("reading roles file: %w", err)
	}

	var doc struct {
		Roles []*models.Role `yaml:"roles"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing roles file %s: %w", c.Roles.File, err)
	}
	return doc.Roles, nil
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "")
	v.SetDefault("anthropic.use_aws_bedrock", false)

	v.SetDefault("defaults.protocol", "sequential")
	v.SetDefault("defaults.max_turns", 20)
	v.SetDefault("defaults.max_concurrency", 0)
	v.SetDefault("defaults.context_entries", 10)
	v.SetDefault("defaults.task_timeout", "0s")

	v.SetDefault("roles.file", "")
	v.SetDefault("steering.dir", "")
}

// UserConfigPath returns the path to the user config file.
func UserConfigPath() string {
	return filepath.Join(userConfigDir(), "config.yaml")
}

// userConfigDir returns the XDG config directory for swarm.
func userConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "swarm")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "swarm")
	}
	return filepath.Join(home, ".config", "swarm")
}

// findProjectConfig searches for .swarm.yaml in the current directory
// and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".swarm.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}
