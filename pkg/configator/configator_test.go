package configator_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfgerrors "github.com/utiligize/configator/internal/errors"
	"github.com/utiligize/configator/internal/logging"
	"github.com/utiligize/configator/pkg/configator"
	"github.com/utiligize/configator/pkg/hydrate"
	"github.com/utiligize/configator/pkg/onepassword"
	"github.com/utiligize/configator/tests/fakes"
	"github.com/utiligize/configator/tests/testutil"
)

type appConfig struct {
	Debug   bool `op:"debug"`
	Timeout int  `op:"timeout"`
}

type serviceConfig struct {
	Name     string `op:"name"`
	Password string `op:"password"`
	Config   appConfig
}

func serviceItem() onepassword.Item {
	return onepassword.Item{
		ID:       "i1",
		Title:    "I",
		Sections: []onepassword.Section{{ID: "s1", Title: "Config"}},
		Fields: []onepassword.Field{
			{ID: "f1", Title: "name", Value: "api"},
			{ID: "f2", Title: "password", Value: "op://V/db/password"},
			{ID: "f3", Title: "debug", Value: "yes", SectionID: "s1"},
			{ID: "f4", Title: "timeout", Value: "30", SectionID: "s1"},
		},
	}
}

func newFake() *fakes.FakeOnePassword {
	return fakes.NewFakeOnePassword().
		WithVault("Other").
		WithItem("V", onepassword.Item{ID: "i0", Title: "unrelated"}).
		WithItem("V", serviceItem()).
		WithReference("op://V/db/password", "hunter2")
}

func TestLoad_EndToEnd(t *testing.T) {
	t.Parallel()

	fake := newFake()
	cfg, err := configator.Load[serviceConfig](context.Background(), "", "V", "I", configator.WithClient(fake))
	require.NoError(t, err)

	assert.Equal(t, serviceConfig{
		Name:     "api",
		Password: "hunter2",
		Config:   appConfig{Debug: true, Timeout: 30},
	}, cfg)
	assert.Equal(t, []string{"ListVaults", "ListItems", "GetItem", "ResolveReference"}, fake.Calls())
}

func TestLoad_VaultNotFound(t *testing.T) {
	t.Parallel()

	fake := newFake()
	logger, logs := testutil.NewTestLogger(t)

	_, err := configator.Load[serviceConfig](context.Background(), "", "v", "I",
		configator.WithClient(fake), configator.WithLogger(logger))
	require.Error(t, err)
	assert.ErrorIs(t, err, configator.ErrVaultNotFound)
	assert.NotErrorIs(t, err, configator.ErrItemNotFound)
	assert.Zero(t, fake.CallCount("ListItems"), "no item lookup after a missing vault")
	assert.Contains(t, logs.String(), "vault 'v' not found")

	var userErr cfgerrors.UserError
	require.ErrorAs(t, err, &userErr)
	assert.Contains(t, userErr.Suggestion, "op vault list")
}

func TestLoad_ItemNotFound(t *testing.T) {
	t.Parallel()

	fake := newFake()
	logger, logs := testutil.NewTestLogger(t)

	_, err := configator.Load[serviceConfig](context.Background(), "", "V", "i",
		configator.WithClient(fake), configator.WithLogger(logger))
	require.Error(t, err)
	assert.ErrorIs(t, err, configator.ErrItemNotFound)
	assert.Zero(t, fake.CallCount("GetItem"))
	assert.Contains(t, logs.String(), "item 'i' not found in vault 'V'")
}

func TestLoad_StoreErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("not signed in")
	fake := newFake().WithError("ListVaults", boom)

	_, err := configator.Load[serviceConfig](context.Background(), "", "V", "I", configator.WithClient(fake))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var userErr cfgerrors.UserError
	require.ErrorAs(t, err, &userErr)
	assert.Contains(t, userErr.Suggestion, "OP_SERVICE_ACCOUNT_TOKEN")
}

func TestLoad_HydrationErrors(t *testing.T) {
	t.Parallel()

	item := serviceItem()
	item.Fields = item.Fields[:3]
	fake := fakes.NewFakeOnePassword().WithItem("V", item).WithReference("op://V/db/password", "hunter2")

	_, err := configator.Load[serviceConfig](context.Background(), "", "V", "I", configator.WithClient(fake))
	require.Error(t, err)
	assert.ErrorIs(t, err, hydrate.ErrRequiredFieldMissing)

	var fe *hydrate.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "config.timeout", fe.Path)

	var userErr cfgerrors.UserError
	require.ErrorAs(t, err, &userErr)
	assert.Contains(t, userErr.Suggestion, "config.timeout")
	assert.NotContains(t, err.Error(), "hunter2")
}

func TestLoadConfig_TargetUntouchedOnError(t *testing.T) {
	t.Parallel()

	item := serviceItem()
	item.Fields[2].Value = "perhaps"
	fake := fakes.NewFakeOnePassword().WithItem("V", item).WithReference("op://V/db/password", "hunter2")

	target := serviceConfig{Name: "before"}
	err := configator.LoadConfig(context.Background(), "", "V", "I", &target, configator.WithClient(fake))
	require.Error(t, err)
	assert.ErrorIs(t, err, hydrate.ErrInvalidBooleanLiteral)
	assert.Equal(t, serviceConfig{Name: "before"}, target)
}

func TestLoad_JSONSchema(t *testing.T) {
	t.Parallel()

	type named struct {
		Name string `op:"name" json:"name"`
	}
	schema := []byte(`{"type": "object", "properties": {"name": {"type": "string", "minLength": 5}}}`)

	_, err := configator.Load[named](context.Background(), "", "V", "I",
		configator.WithClient(newFake()), configator.WithJSONSchema(schema))
	assert.ErrorIs(t, err, hydrate.ErrSchemaValidationFailed)
}

func TestLoad_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := configator.Load[serviceConfig](ctx, "", "V", "I", configator.WithClient(newFake()))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoad_ThroughCLI(t *testing.T) {
	t.Parallel()

	mockExec := testutil.NewMockCommandExecutor()
	mockExec.AddJSONResponse("op vault list", `[{"id": "vault1", "name": "V"}]`)
	mockExec.AddJSONResponse("op item list --vault vault1", `[{"id": "item1", "title": "I", "vault": {"id": "vault1"}}]`)
	mockExec.AddJSONResponse("op item get item1 --vault vault1", `{
		"id": "item1",
		"title": "I",
		"vault": {"id": "vault1", "name": "V"},
		"sections": [{"id": "add more"}, {"id": "s1", "label": "Config"}],
		"fields": [
			{"id": "f1", "label": "name", "value": "api"},
			{"id": "f2", "label": "password", "value": "op://V/db/password"},
			{"id": "f3", "label": "debug", "value": "off", "section": {"id": "s1", "label": "Config"}},
			{"id": "f4", "label": "timeout", "value": "5", "section": {"id": "s1", "label": "Config"}}
		]
	}`)
	mockExec.AddResponse("op read op://V/db/password", testutil.MockResponse{Stdout: []byte("hunter2")})

	cfg, err := configator.Load[serviceConfig](context.Background(), "ops_token", "V", "I",
		configator.WithExecutor(mockExec),
		configator.WithAccount("team.1password.com"),
		configator.WithRetries(0, time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, serviceConfig{Name: "api", Password: "hunter2", Config: appConfig{Debug: false, Timeout: 5}}, cfg)

	reads := mockExec.Calls("op read")
	require.Len(t, reads, 1)
	assert.Equal(t, []string{"read", "op://V/db/password", "--no-newline", "--account", "team.1password.com"}, reads[0].Args)
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	logger, logs := testutil.NewTestLogger(t)
	client := configator.NewClient(nil, configator.WithLogger(logger))
	require.NotNil(t, client)
	_, ok := client.(*onepassword.CLIClient)
	assert.True(t, ok)
	assert.Contains(t, logs.String(), "creating 1Password client for configator")
}

// Not parallel: replaces the package logger.
func TestConfigureLogging(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, configator.ConfigureLogging("debug", &buf))
	t.Cleanup(func() { _ = configator.ConfigureLogging("warn", nil) })

	_, err := configator.Load[serviceConfig](context.Background(), "", "nope", "I", configator.WithClient(newFake()))
	require.ErrorIs(t, err, configator.ErrVaultNotFound)
	assert.Contains(t, buf.String(), "vault 'nope' not found")

	err = configator.ConfigureLogging("loud", nil)
	var cfgErr cfgerrors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "log_level", cfgErr.Field)
}

func nopLogger(t *testing.T) *logging.Logger {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return logger
}
