package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Environment names a deployment stage.
type Environment string

const (
	Development Environment = "develop"
	Staging     Environment = "staging"
	Production  Environment = "product"
)

// UnmarshalText accepts the stage names case-insensitively.
func (e *Environment) UnmarshalText(text []byte) error {
	switch env := Environment(strings.ToLower(strings.TrimSpace(string(text)))); env {
	case Development, Staging, Production:
		*e = env
		return nil
	}
	return fmt.Errorf("unknown environment (expected %s, %s or %s)", Development, Staging, Production)
}

func (e Environment) String() string {
	return string(e)
}

// Base holds settings shared by every service configuration. Embed it to
// add them at the top level of a schema.
type Base struct {
	Environment Environment `op:"environment" default:"develop"`
}

// IsProduction reports whether the configuration targets production.
func (b Base) IsProduction() bool {
	return b.Environment == Production
}

const redacted = "**********"

// SecretString holds a value that is hidden when printed or marshalled.
type SecretString struct {
	value string
}

// NewSecretString wraps s.
func NewSecretString(s string) SecretString {
	return SecretString{value: s}
}

// Reveal returns the secret value.
func (s SecretString) Reveal() string {
	return s.value
}

// IsZero reports whether the secret is empty.
func (s SecretString) IsZero() bool {
	return s.value == ""
}

func (s SecretString) String() string {
	if s.value == "" {
		return ""
	}
	return redacted
}

func (s SecretString) GoString() string {
	return "models.SecretString(" + redacted + ")"
}

// MarshalJSON emits the redacted form, never the value.
func (s SecretString) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalText stores text as the secret value.
func (s *SecretString) UnmarshalText(text []byte) error {
	s.value = string(text)
	return nil
}
