package models

import (
	"fmt"
	"net/url"
)

// SentryConfig configures error reporting to Sentry.
type SentryConfig struct {
	DSN              url.URL `op:"dsn"`
	Enabled          bool    `op:"enabled" default:"true"`
	SendDefaultPII   bool    `op:"send_default_pii" default:"false"`
	TracesSampleRate float64 `op:"traces_sample_rate" default:"0.0"`
}

// EnvPrefix makes SENTRY_DSN, SENTRY_ENABLED and so on override stored
// fields in developer mode.
func (c SentryConfig) EnvPrefix() string { return "SENTRY_" }

// Validate checks that the sample rate is a probability.
func (c SentryConfig) Validate() error {
	if c.TracesSampleRate < 0 || c.TracesSampleRate > 1 {
		return fmt.Errorf("traces_sample_rate must be between 0 and 1, got %g", c.TracesSampleRate)
	}
	return nil
}
