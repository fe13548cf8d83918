// Package config provides configuration management using the Singleton pattern.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	defaultConfigName = "config"
	defaultConfigType = "yaml"
	envPrefix         = "HPN_ADAPTER"

	// EnvGoogleAPIKey is the conventional Gemini credential variable.
	// It is consulted after HPN_ADAPTER_GEMINI_API_KEY.
	EnvGoogleAPIKey = "GOOGLE_API_KEY"
)

// loadConfig loads the configuration from environment variables and files.
// Priority order (highest to lowest):
// 1. Environment variables (prefixed with HPN_ADAPTER_, plus GOOGLE_API_KEY)
// 2. config.yaml
// 3. Default values
func loadConfig(configPath string) (*Configuration, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName(defaultConfigName)
	v.SetConfigType(defaultConfigType)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/hpn-gemini-adapter")
		v.AddConfigPath("$HOME/.hpn-gemini-adapter")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// The credential also answers to the variable every Gemini tool uses.
	if err := v.BindEnv("gemini.api_key", envPrefix+"_GEMINI_API_KEY", EnvGoogleAPIKey); err != nil {
		return nil, &ConfigError{Op: "bind_env", Err: err}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Fprintf(os.Stderr, "[CONFIG] Config file not found, using environment variables only\n")
		} else {
			return nil, &ConfigError{
				Op:  "read",
				Err: fmt.Errorf("failed to read config file: %w", err),
			}
		}
	} else if v.IsSet("gemini.api_key") && os.Getenv(EnvGoogleAPIKey) == "" && os.Getenv(envPrefix+"_GEMINI_API_KEY") == "" {
		fmt.Fprintf(os.Stderr, "[SECURITY] Warning: API key read from %s - prefer %s in production\n",
			v.ConfigFileUsed(), EnvGoogleAPIKey)
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigError{
			Op:  "unmarshal",
			Err: fmt.Errorf("failed to unmarshal config: %w", err),
		}
	}
	cfg.Gemini.APIKey = strings.TrimSpace(cfg.Gemini.APIKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout_seconds", 30)
	v.SetDefault("server.write_timeout_seconds", 120)
	v.SetDefault("server.shutdown_timeout_seconds", 15)

	// Gemini defaults
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("gemini.request_timeout_seconds", 0)
	v.SetDefault("gemini.models", []string{"gemini-1.5-pro", "gemini-1.5-flash", "gemini-2.0-flash"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
