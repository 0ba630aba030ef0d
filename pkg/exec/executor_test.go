package exec

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealCommandExecutor_Execute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		script     string
		wantStdout string
		wantStderr string
		wantCode   int
	}{
		{
			name:       "stdout only",
			script:     `printf '[{"id":"v1","name":"Prod"}]'`,
			wantStdout: `[{"id":"v1","name":"Prod"}]`,
		},
		{
			name:       "stderr and exit code",
			script:     `printf '[ERROR] not signed in' >&2; exit 1`,
			wantStderr: "[ERROR] not signed in",
			wantCode:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stdout, stderr, err := DefaultExecutor().Execute(context.Background(), "sh", "-c", tt.script)
			if tt.wantCode == 0 {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, ExitCode(err))
			}
			assert.Equal(t, tt.wantStdout, string(stdout))
			assert.Equal(t, tt.wantStderr, string(stderr))
		})
	}
}

func TestRealCommandExecutor_MissingBinary(t *testing.T) {
	t.Parallel()

	_, _, err := DefaultExecutor().Execute(context.Background(), "configator-missing-binary-xyz")
	require.Error(t, err)
	assert.Equal(t, -1, ExitCode(err))
}

func TestRealCommandExecutor_Env(t *testing.T) {
	t.Parallel()

	executor := WithEnv("CONFIGATOR_EXEC_TEST=from-env")
	stdout, _, err := executor.Execute(context.Background(), "sh", "-c", "printf %s \"$CONFIGATOR_EXEC_TEST\"")
	require.NoError(t, err)
	assert.Equal(t, "from-env", string(stdout))

	stdout, _, err = DefaultExecutor().Execute(context.Background(), "sh", "-c", "printf %s \"$CONFIGATOR_EXEC_TEST\"")
	require.NoError(t, err)
	assert.Empty(t, string(stdout))
}

func TestRealCommandExecutor_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := DefaultExecutor().Execute(ctx, "sleep", "10")
	assert.Error(t, err)
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	_, _, err := DefaultExecutor().Execute(context.Background(), "sh", "-c", "exit 3")
	require.Error(t, err)
	assert.Equal(t, 3, ExitCode(err))
	assert.Equal(t, -1, ExitCode(assert.AnError))
}
