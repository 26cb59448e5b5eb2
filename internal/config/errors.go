package config

import (
	"errors"
	"fmt"
)

// Errors returned by option loading.
var (
	// ErrConfigFile indicates the config file could not be read or parsed.
	ErrConfigFile = errors.New("config file error")

	// ErrInvalidOption indicates an option value is not usable.
	ErrInvalidOption = errors.New("invalid option")

	// ErrInvalidLogLevel indicates an unknown log level name.
	ErrInvalidLogLevel = errors.New("invalid log level")
)

// OptionError describes an invalid option value.
type OptionError struct {
	// Key is the option key.
	Key string
	// Value is the rejected value.
	Value any
	// Message describes the problem.
	Message string
}

// Error implements the error interface.
func (e *OptionError) Error() string {
	return fmt.Sprintf("%s: %s (value: %v)", e.Key, e.Message, e.Value)
}

// Is implements error matching for OptionError.
func (e *OptionError) Is(target error) bool {
	return target == ErrInvalidOption
}
