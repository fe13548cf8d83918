package config

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigError wraps a failure to load configuration.
type ConfigError struct {
	Op  string // read, bind_env, unmarshal
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s error: %v", e.Op, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ValidationError collects every problem Validate found. Each entry is a
// *MissingKeyError or *InvalidValueError, reachable through errors.As.
type ValidationError struct {
	Errors []error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	if len(msgs) == 1 {
		return "configuration validation failed: " + msgs[0]
	}
	return fmt.Sprintf("configuration validation failed with %d errors:\n  - %s",
		len(msgs), strings.Join(msgs, "\n  - "))
}

func (e *ValidationError) Unwrap() []error {
	return e.Errors
}

// HasError reports whether key failed validation.
func (e *ValidationError) HasError(key string) bool {
	for _, err := range e.Errors {
		var missing *MissingKeyError
		if errors.As(err, &missing) && missing.Key == key {
			return true
		}
		var invalid *InvalidValueError
		if errors.As(err, &invalid) && invalid.Key == key {
			return true
		}
	}
	return false
}

// MissingKeyError reports a required key with no value from any source.
type MissingKeyError struct {
	Key  string
	Hint string // where the value can be supplied
}

func (e *MissingKeyError) Error() string {
	msg := fmt.Sprintf("required configuration key '%s' is missing", e.Key)
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

// InvalidValueError reports a key whose value is out of range or not allowed.
type InvalidValueError struct {
	Key           string
	Value         any
	Reason        string
	AllowedValues []string
}

func (e *InvalidValueError) Error() string {
	msg := fmt.Sprintf("invalid value '%v' for key '%s'", e.Value, e.Key)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if len(e.AllowedValues) > 0 {
		msg += ", allowed values: " + strings.Join(e.AllowedValues, ", ")
	}
	return msg
}

// IsValidationError checks if an error is a ValidationError.
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsConfigError checks if an error is a ConfigError.
func IsConfigError(err error) bool {
	var target *ConfigError
	return errors.As(err, &target)
}
