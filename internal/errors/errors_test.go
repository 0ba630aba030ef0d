package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/utiligize/configator/internal/errors"
)

func TestUserErrorFormatting(t *testing.T) {
	t.Parallel()

	err := errors.UserError{
		Message:    "Operation failed",
		Details:    "Connection timeout",
		Suggestion: "Check network connectivity",
	}

	errMsg := err.Error()
	assert.Contains(t, errMsg, "Operation failed")
	assert.Contains(t, errMsg, "Connection timeout")
	assert.Contains(t, errMsg, "Check network connectivity")
}

func TestUserErrorFallsBackToWrapped(t *testing.T) {
	t.Parallel()

	err := errors.UserError{Err: fmt.Errorf("boom")}
	assert.Equal(t, "boom", err.Error())
}

func TestConfigErrorFormatting(t *testing.T) {
	t.Parallel()

	err := errors.ConfigError{
		Field:      "log_level",
		Value:      "loud",
		Message:    "unknown log level",
		Suggestion: "Use one of debug, info, warn, error",
	}

	errMsg := err.Error()
	assert.Contains(t, errMsg, "log_level")
	assert.Contains(t, errMsg, "loud")
	assert.Contains(t, errMsg, "unknown log level")
	assert.Contains(t, errMsg, "debug, info, warn, error")
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	sentinel := stderrors.New("sentinel")

	tests := []struct {
		name           string
		err            error
		wantSuggestion string
	}{
		{
			name:           "not signed in",
			err:            fmt.Errorf("[ERROR] You are not signed in: %w", sentinel),
			wantSuggestion: "OP_SERVICE_ACCOUNT_TOKEN",
		},
		{
			name:           "missing cli",
			err:            fmt.Errorf("exec: \"op\": executable file not found in $PATH: %w", sentinel),
			wantSuggestion: "Install 1Password CLI",
		},
		{
			name:           "vault not found",
			err:            fmt.Errorf("vault \"Prod\" not found: %w", sentinel),
			wantSuggestion: "op vault list",
		},
		{
			name:           "item not found",
			err:            fmt.Errorf("item \"db\" not found: %w", sentinel),
			wantSuggestion: "op item list",
		},
		{
			name: "unknown",
			err:  fmt.Errorf("weird: %w", sentinel),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := errors.StoreError("load", tt.err)

			var userErr errors.UserError
			assert.True(t, stderrors.As(err, &userErr))
			assert.ErrorIs(t, err, sentinel)
			if tt.wantSuggestion == "" {
				assert.Empty(t, userErr.Suggestion)
			} else {
				assert.Contains(t, userErr.Suggestion, tt.wantSuggestion)
			}
		})
	}
}

func TestStoreErrorNil(t *testing.T) {
	t.Parallel()
	assert.NoError(t, errors.StoreError("load", nil))
}

func TestStoreErrorDoesNotDoubleWrap(t *testing.T) {
	t.Parallel()

	inner := errors.UserError{Message: "already decorated"}
	assert.Equal(t, error(inner), errors.StoreError("load", inner))
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	assert.False(t, errors.IsRetryable(nil))
	assert.True(t, errors.IsRetryable(fmt.Errorf("i/o Timeout")))
	assert.True(t, errors.IsRetryable(fmt.Errorf("429 Too Many Requests")))
	assert.False(t, errors.IsRetryable(fmt.Errorf("item not found")))
}
