// Package config manages configuration for the auditdeck CLI and replay server.
// It uses Viper for unified configuration management from files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/auditdeck/auditdeck/internal/constants"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the unified configuration for the CLI and the replay server.
// It supports loading from ~/.auditdeck/config.yaml and environment variables
// with the AUDITDECK_ prefix; environment variables take precedence.
type Config struct {
	APIEndpoint string `mapstructure:"api_endpoint" yaml:"api_endpoint" validate:"omitempty,url"`
	APIKey      string `mapstructure:"api_key" yaml:"api_key"`

	// HistoryLimit bounds the historical event page fetched during hydration.
	HistoryLimit int `mapstructure:"history_limit" validate:"omitempty,gte=1,lte=5000"`

	// PollInterval is how often the task snapshot is refreshed while running.
	PollInterval time.Duration `mapstructure:"poll_interval"`

	// IncludeThinking controls whether reasoning traces are requested from
	// the live feed.
	IncludeThinking bool `mapstructure:"include_thinking"`
	// IncludeToolCalls controls whether tool invocations are requested from
	// the live feed.
	IncludeToolCalls bool `mapstructure:"include_tool_calls"`

	// Replay server configuration
	Port         int    `mapstructure:"port" validate:"omitempty,gte=1,lte=65535"`
	ScenarioPath string `mapstructure:"scenario_path"`

	LogLevel string `mapstructure:"log_level"`
}

var validate = validator.New()

// Load loads the configuration using Viper.
// Config file values are overridden by AUDITDECK_-prefixed environment variables.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if err := loadConfigFile(v); err != nil {
		// Missing config file is acceptable; env vars may carry everything
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	v.SetEnvPrefix(strings.ToUpper(constants.ProjectName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Empty defaults register the keys so env-only values survive Unmarshal.
	v.SetDefault("api_endpoint", "")
	v.SetDefault("api_key", "")
	v.SetDefault("scenario_path", "")
	v.SetDefault("history_limit", constants.DefaultHistoryLimit)
	v.SetDefault("poll_interval", constants.TaskPollInterval)
	v.SetDefault("include_thinking", true)
	v.SetDefault("include_tool_calls", true)
	v.SetDefault("port", 8089)
	v.SetDefault("log_level", "info")
}

func loadConfigFile(v *viper.Viper) error {
	home, err := os.UserHomeDir()
	if err != nil {
		// No home directory; rely on env vars
		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(home, "."+constants.ProjectName))

	return v.ReadInConfig()
}

// ConfigDir returns the directory holding the user's config file.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, "."+constants.ProjectName), nil
}

// Save writes the CLI-relevant fields to the user's config file.
func Save(cfg *Config) error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err = os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	v := viper.New()
	v.Set("api_endpoint", cfg.APIEndpoint)
	v.Set("api_key", cfg.APIKey)
	if cfg.HistoryLimit > 0 {
		v.Set("history_limit", cfg.HistoryLimit)
	}

	path := filepath.Join(dir, "config.yaml")
	if err = v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("cannot write config file: %w", err)
	}
	return nil
}
