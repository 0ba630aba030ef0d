package errors

import (
	"errors"
	"fmt"
	"strings"
)

// UserError is an error meant for the person running the program. It wraps
// the underlying cause and may carry details and a suggested fix.
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// ConfigError reports an invalid or missing loader setting.
type ConfigError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
}

func (e ConfigError) Error() string {
	msg := "Configuration error"
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	msg += ": " + e.Message

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// StoreError decorates a secret-store error with the operation that failed
// and, when the failure is recognisable, a suggestion for fixing it.
func StoreError(operation string, err error) error {
	if err == nil {
		return nil
	}
	var existing UserError
	if errors.As(err, &existing) {
		return err
	}
	return UserError{
		Message:    fmt.Sprintf("1Password error during %s: %v", operation, err),
		Suggestion: storeSuggestion(err),
		Err:        err,
	}
}

// storeSuggestion matches op CLI error text against known failure modes.
func storeSuggestion(err error) string {
	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "not signed in") || strings.Contains(errStr, "authorization"):
		return "Set OP_SERVICE_ACCOUNT_TOKEN or run 'op signin' to authenticate with 1Password"
	case strings.Contains(errStr, "session expired"):
		return "Your 1Password session has expired. Run 'op signin' again"
	case strings.Contains(errStr, "executable file not found") || strings.Contains(errStr, "command not found"):
		return "Install 1Password CLI: https://developer.1password.com/docs/cli/get-started/"
	case strings.Contains(errStr, "vault") && strings.Contains(errStr, "not found"):
		return "Verify the vault title. Use 'op vault list' to see available vaults"
	case strings.Contains(errStr, "not found"):
		return "Verify the item exists. Use 'op item list --vault <vault>' to see available items"
	case strings.Contains(errStr, "timeout"):
		return "The operation timed out. Check your network connection and try again"
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "no such host"):
		return "Unable to connect. Check your network and proxy configuration"
	}
	return ""
}

// IsRetryable reports transient op failures worth another attempt: timeouts,
// dropped connections and rate limiting.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"timeout",
		"temporary failure",
		"connection reset",
		"broken pipe",
		"rate limit",
		"throttling",
		"too many requests",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}
