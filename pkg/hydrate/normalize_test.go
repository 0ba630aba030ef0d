package hydrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Foo-Bar", "foo_bar"},
		{"foo_bar", "foo_bar"},
		{"DEBUG", "debug"},
		{"send-default-pii", "send_default_pii"},
		{"", ""},
		{"a--b", "a__b"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got := Normalize(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Normalize(got), "normalize must be idempotent")
		})
	}
}

func TestSnakeCase(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"Host":             "host",
		"TracesSampleRate": "traces_sample_rate",
		"PGHost":           "pg_host",
		"DSN":              "dsn",
		"SendDefaultPII":   "send_default_pii",
		"Port2":            "port2",
		"V2Endpoint":       "v2_endpoint",
		"already_snake":    "already_snake",
	}

	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, want, snakeCase(in))
		})
	}
}
