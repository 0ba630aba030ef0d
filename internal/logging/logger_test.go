package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{level: "debug", wantDebug: true, wantInfo: true, wantWarn: true},
		{level: "", wantDebug: false, wantInfo: true, wantWarn: true},
		{level: "INFO", wantDebug: false, wantInfo: true, wantWarn: true},
		{level: "warning", wantDebug: false, wantInfo: false, wantWarn: true},
		{level: "error", wantDebug: false, wantInfo: false, wantWarn: false},
	}

	for _, tt := range tests {
		t.Run("level "+tt.level, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger, err := NewWithLevel(&buf, tt.level)
			require.NoError(t, err)

			logger.Debug("debug-line")
			logger.Info("info-line")
			logger.Warn("warn-line")
			logger.Error("error-line")

			out := buf.String()
			assert.Equal(t, tt.wantDebug, bytes.Contains([]byte(out), []byte("debug-line")))
			assert.Equal(t, tt.wantInfo, bytes.Contains([]byte(out), []byte("info-line")))
			assert.Equal(t, tt.wantWarn, bytes.Contains([]byte(out), []byte("warn-line")))
			assert.Contains(t, out, "error-line")
		})
	}
}

func TestParseLevelRejectsUnknown(t *testing.T) {
	t.Parallel()

	_, err := ParseLevel("verbose")
	assert.ErrorContains(t, err, "unknown log level")
}

func TestLoggerWith(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := NewWithLevel(&buf, "debug")
	require.NoError(t, err)

	logger.With("schema", "SentryConfig").Debug("hydrating")
	assert.Contains(t, buf.String(), "schema=SentryConfig")
}

func TestNopDiscards(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		Nop().Error("nothing %d", 1)
	})
}

func TestRedact(t *testing.T) {
	t.Parallel()

	got := Redact("dsn=postgresql://app:s3cr3t@db/app", []string{"s3cr3t", "ab"})
	assert.Equal(t, "dsn=postgresql://app:[REDACTED]@db/app", got)
}
