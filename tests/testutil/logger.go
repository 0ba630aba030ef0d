package testutil

import (
	"bytes"
	"sync"
	"testing"

	"github.com/utiligize/configator/internal/logging"
)

// syncBuffer guards a bytes.Buffer for loggers shared across goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// LogCapture exposes what a test logger wrote.
type LogCapture interface {
	String() string
}

// NewTestLogger returns a debug-level logger writing to an in-memory buffer.
//
// Example usage:
//
//	logger, out := testutil.NewTestLogger(t)
//	hydrate.New(fake, hydrate.WithLogger(logger))
//	assert.NotContains(t, out.String(), "hunter2")
func NewTestLogger(t *testing.T) (*logging.Logger, LogCapture) {
	t.Helper()

	buf := &syncBuffer{}
	logger, err := logging.NewWithLevel(buf, "debug")
	if err != nil {
		t.Fatalf("failed to create test logger: %v", err)
	}
	return logger, buf
}
