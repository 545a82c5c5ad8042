package core

import (
	"errors"
	"fmt"
	"strings"
)

const minCredentialLength = 10

var (
	// ErrGatewayFailure is wrapped by every error a Gateway returns
	ErrGatewayFailure = errors.New("language model gateway failure")
	// ErrParseFailure is returned when model output is not a usable analysis
	ErrParseFailure = errors.New("model analysis could not be parsed")
	// ErrRecordNotFound is returned when a record does not exist
	ErrRecordNotFound = errors.New("record not found")
)

// ConfigurationError is a fatal startup problem with the service configuration
type ConfigurationError struct {
	Setting string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s %s", e.Setting, e.Reason)
}

// ValidationError is a rejected caller input
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %s %s", e.Field, e.Reason)
}

// RequireCredential returns a ConfigurationError when value is too short to
// be a usable API credential
func RequireCredential(setting, value string) error {
	if len(strings.TrimSpace(value)) < minCredentialLength {
		return &ConfigurationError{Setting: setting, Reason: "is missing or too short"}
	}
	return nil
}
