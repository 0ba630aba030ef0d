package configator

import (
	"context"
	"os"

	"github.com/utiligize/configator/internal/devstore"
	"github.com/utiligize/configator/internal/logging"
	"github.com/utiligize/configator/pkg/onepassword"
	"github.com/utiligize/configator/pkg/settings"
)

// FromEnv reads settings from the environment and loads a T with them.
func FromEnv[T any](ctx context.Context, opts ...Option) (T, error) {
	var out T
	s, err := settings.Load(settings.WithLogger(newOptions(opts).logger))
	if err != nil {
		return out, err
	}
	defer s.Credential.Destroy()

	if err := LoadFromSettings(ctx, s, &out, opts...); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// EnvPrefixer is implemented by schemas that accept environment overrides in
// developer mode. A variable named EnvPrefix()+FIELD overrides the top-level
// field FIELD. Schemas that do not implement it ignore the environment.
type EnvPrefixer interface {
	EnvPrefix() string
}

// LoadFromSettings hydrates target using the vault, item and client settings
// in s. In developer mode items come from s.DevStore; if target implements
// EnvPrefixer, matching environment variables override top-level fields.
func LoadFromSettings(ctx context.Context, s *settings.Settings, target interface{}, opts ...Option) error {
	if err := s.RequireTarget(); err != nil {
		return err
	}

	base := make([]Option, 0, len(opts)+2)
	if s.LogLevel != "" {
		if logger, err := logging.NewWithLevel(os.Stderr, s.LogLevel); err == nil {
			base = append(base, WithLogger(logger))
		}
	}
	if s.Account != "" {
		base = append(base, WithAccount(s.Account))
	}
	o := newOptions(append(base, opts...))
	if o.retries < 0 {
		o.retries = s.Retries
		o.retryDelay = defaultRetryDelay
	}

	client := o.client
	if client == nil {
		var err error
		client, err = o.settingsClient(s, target)
		if err != nil {
			return err
		}
	}
	return o.load(ctx, client, s.Vault, s.Item, target)
}

func (o *options) settingsClient(s *settings.Settings, target interface{}) (onepassword.Client, error) {
	if !s.DevMode {
		return o.newClient(s.Credential), nil
	}
	o.logger.Warn("loading configuration from developer store %s", s.DevStore)

	var storeOpts []devstore.Option
	if p, ok := target.(EnvPrefixer); ok {
		o.logger.Debug("environment variables prefixed '%s' override stored fields", p.EnvPrefix())
		storeOpts = append(storeOpts, devstore.WithEnvOverlay(p.EnvPrefix(), os.Environ()))
	}
	store, err := devstore.Load(s.DevStore, storeOpts...)
	if err != nil {
		return nil, err
	}
	return store, nil
}
