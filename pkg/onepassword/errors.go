package onepassword

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when the store reports that a vault, item, field
// or reference does not exist.
var ErrNotFound = errors.New("not found in 1Password")

// CLIError wraps a failed `op` invocation with its stderr output.
type CLIError struct {
	Op       string // Operation: "vault list", "item list", "item get", "read"
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CLIError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.ExitCode > 0 {
		return fmt.Sprintf("op %s failed (exit code %d): %s", e.Op, e.ExitCode, msg)
	}
	return fmt.Sprintf("op %s failed: %s", e.Op, msg)
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// Is reports not-found conditions so callers can test with errors.Is(err, ErrNotFound).
func (e *CLIError) Is(target error) bool {
	if target != ErrNotFound {
		return false
	}
	stderr := strings.ToLower(e.Stderr)
	return strings.Contains(stderr, "not found") ||
		strings.Contains(stderr, "isn't a vault") ||
		strings.Contains(stderr, "isn't an item") ||
		strings.Contains(stderr, "could not find")
}
