// Package config provides configuration management using the Singleton pattern.
// It loads configuration from environment variables and config.yaml using Viper.
package config

import (
	"sync"
	"time"
)

// Configuration holds all application configuration values.
type Configuration struct {
	// Server configuration
	Server ServerConfig `json:"server" mapstructure:"server"`

	// Gemini backend configuration
	Gemini GeminiConfig `json:"gemini" mapstructure:"gemini"`

	// Logging configuration
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	// Host is the server bind address.
	Host string `json:"host" mapstructure:"host"`

	// Port is the server port number.
	Port int `json:"port" mapstructure:"port"`

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeoutSeconds int `json:"read_timeout_seconds" mapstructure:"read_timeout_seconds"`

	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeoutSeconds int `json:"write_timeout_seconds" mapstructure:"write_timeout_seconds"`

	// ShutdownTimeout is the maximum duration to wait for active connections to finish.
	ShutdownTimeoutSeconds int `json:"shutdown_timeout_seconds" mapstructure:"shutdown_timeout_seconds"`
}

// GeminiConfig holds the backend credential and endpoint.
type GeminiConfig struct {
	// APIKey authenticates against the Gemini API. GOOGLE_API_KEY is used when unset.
	APIKey string `json:"-" mapstructure:"api_key"`

	// BaseURL overrides the Gemini API endpoint.
	BaseURL string `json:"base_url" mapstructure:"base_url"`

	// RequestTimeoutSeconds bounds each backend call. 0 means no bound.
	RequestTimeoutSeconds int `json:"request_timeout_seconds" mapstructure:"request_timeout_seconds"`

	// Models is the list advertised by GET /v1/models.
	Models []string `json:"models" mapstructure:"models"`
}

// RequestTimeout returns the per-call bound as a duration.
func (g GeminiConfig) RequestTimeout() time.Duration {
	return time.Duration(g.RequestTimeoutSeconds) * time.Second
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `json:"level" mapstructure:"level"`

	// Format is the log format (json, text).
	Format string `json:"format" mapstructure:"format"`
}

var (
	configInstance *Configuration
	configOnce     sync.Once
	configErr      error
)

// GetConfig returns the process-wide Configuration, loading it on the first
// call. configPath names a config file; empty searches the default locations.
// Later calls return the first result regardless of configPath.
func GetConfig(configPath string) (*Configuration, error) {
	configOnce.Do(func() {
		configInstance, configErr = loadConfig(configPath)
	})
	return configInstance, configErr
}

// ResetConfig drops the loaded configuration so the next GetConfig reads again.
func ResetConfig() {
	configOnce = sync.Once{}
	configInstance = nil
	configErr = nil
}

// Validate reports every invalid or missing value as one *ValidationError.
func (c *Configuration) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, &InvalidValueError{
			Key:    "server.port",
			Value:  c.Server.Port,
			Reason: "must be between 1 and 65535",
		})
	}

	if c.Gemini.APIKey == "" {
		errs = append(errs, &MissingKeyError{
			Key:  "gemini.api_key",
			Hint: "set " + EnvGoogleAPIKey + " or " + envPrefix + "_GEMINI_API_KEY",
		})
	}

	if c.Gemini.RequestTimeoutSeconds < 0 {
		errs = append(errs, &InvalidValueError{
			Key:    "gemini.request_timeout_seconds",
			Value:  c.Gemini.RequestTimeoutSeconds,
			Reason: "cannot be negative",
		})
	}

	if c.Logging.Level != "" && !isValidLogLevel(c.Logging.Level) {
		errs = append(errs, &InvalidValueError{
			Key:           "logging.level",
			Value:         c.Logging.Level,
			AllowedValues: []string{"debug", "info", "warn", "error"},
		})
	}

	if c.Logging.Format != "" && !isValidLogFormat(c.Logging.Format) {
		errs = append(errs, &InvalidValueError{
			Key:           "logging.format",
			Value:         c.Logging.Format,
			AllowedValues: []string{"json", "text"},
		})
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// isValidLogLevel checks if the log level is valid.
func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func isValidLogFormat(format string) bool {
	return format == "json" || format == "text"
}
