// Package settings reads loader settings from the environment, an optional
// YAML file and the OS keyring.
//
// Environment variables use the CONFIGATOR_ prefix:
//
//	CONFIGATOR_VAULT      vault title
//	CONFIGATOR_ITEM       item title
//	CONFIGATOR_ACCOUNT    1Password account passed to op --account
//	CONFIGATOR_RETRIES    retries for transient op failures (default 2)
//	CONFIGATOR_DEV_MODE   enables developer mode; see below
//	CONFIGATOR_DEV_STORE  YAML dev store used in developer mode
//	CONFIGATOR_CONFIG     YAML file with the same keys (vault, item, ...)
//	LOG_LEVEL             debug, info, warn or error
//
// Developer mode is enabled by any non-empty CONFIGATOR_DEV_MODE except the
// false literals accepted by hydrate.ParseBool (false, 0, no, off), so
// CONFIGATOR_DEV_MODE=false turns it off. Setting it to any other text, even
// "SUDO MAKE ME A SANDWICH", turns it on.
//
// The service account token is read from OP_SERVICE_ACCOUNT_TOKEN and
// otherwise from the keyring entry "configator". It is never read from the
// settings file.
package settings

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"

	cfgerrors "github.com/utiligize/configator/internal/errors"
	"github.com/utiligize/configator/internal/logging"
	"github.com/utiligize/configator/internal/secure"
	"github.com/utiligize/configator/pkg/hydrate"
	"github.com/utiligize/configator/pkg/onepassword"
)

const (
	// EnvPrefix prefixes every settings environment variable.
	EnvPrefix = "CONFIGATOR"

	// ConfigFileEnv names an optional YAML settings file.
	ConfigFileEnv = "CONFIGATOR_CONFIG"

	// KeyringService is the keyring service holding the service account token.
	KeyringService = "configator"

	// KeyringUser is the keyring account used when no 1Password account is set.
	KeyringUser = "service-account-token"

	defaultRetries = 2
)

// Settings are the inputs of a configator load.
type Settings struct {
	Vault    string
	Item     string
	Account  string
	LogLevel string
	Retries  int
	DevMode  bool
	DevStore string

	// Credential holds the service account token. It may be empty.
	Credential *secure.Credential
}

// Option configures Load.
type Option func(*loader)

type loader struct {
	logger     *logging.Logger
	useKeyring bool
}

// WithLogger sets the logger used to report where settings came from.
func WithLogger(logger *logging.Logger) Option {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithoutKeyring disables the keyring fallback for the token.
func WithoutKeyring() Option {
	return func(l *loader) { l.useKeyring = false }
}

// Load reads settings. Environment variables take precedence over the
// settings file.
func Load(opts ...Option) (*Settings, error) {
	l := &loader{logger: logging.Nop(), useKeyring: true}
	for _, opt := range opts {
		opt(l)
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetDefault("retries", defaultRetries)
	if err := v.BindEnv("log_level", logging.LevelEnv, EnvPrefix+"_LOG_LEVEL"); err != nil {
		return nil, err
	}

	if path := os.Getenv(ConfigFileEnv); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, cfgerrors.ConfigError{
				Field:      "config",
				Value:      path,
				Message:    "failed to read settings file: " + err.Error(),
				Suggestion: "Check that " + ConfigFileEnv + " points to a readable YAML file",
			}
		}
		l.logger.Debug("read settings from %s", path)
	}

	s := &Settings{
		Vault:    v.GetString("vault"),
		Item:     v.GetString("item"),
		Account:  v.GetString("account"),
		LogLevel: strings.ToLower(v.GetString("log_level")),
		Retries:  v.GetInt("retries"),
		DevMode:  devModeEnabled(v.GetString("dev_mode")),
		DevStore: v.GetString("dev_store"),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	if s.DevMode {
		l.logger.Warn("configator developer mode is ENABLED")
	} else {
		l.logger.Debug("configator developer mode is disabled")
	}

	s.Credential = l.credential(s.Account)
	return s, nil
}

// devModeEnabled treats any non-empty value as enabled unless it is an
// explicit false literal.
func devModeEnabled(raw string) bool {
	if strings.TrimSpace(raw) == "" {
		return false
	}
	if b, err := hydrate.ParseBool(raw); err == nil {
		return b
	}
	return true
}

// Validate checks values that can be checked without a load target.
func (s *Settings) Validate() error {
	if _, err := logging.ParseLevel(s.LogLevel); err != nil {
		return cfgerrors.ConfigError{
			Field:      "log_level",
			Value:      s.LogLevel,
			Message:    "unknown log level",
			Suggestion: "Use one of debug, info, warn or error",
		}
	}
	if s.Retries < 0 {
		return cfgerrors.ConfigError{
			Field:      "retries",
			Value:      s.Retries,
			Message:    "retries cannot be negative",
			Suggestion: "Set CONFIGATOR_RETRIES to 0 to disable retries",
		}
	}
	if s.DevMode && s.DevStore == "" {
		return cfgerrors.ConfigError{
			Field:      "dev_store",
			Message:    "developer mode needs a dev store file",
			Suggestion: "Set CONFIGATOR_DEV_STORE to a YAML dev store, or unset CONFIGATOR_DEV_MODE",
		}
	}
	return nil
}

// RequireTarget checks that a vault and item are configured.
func (s *Settings) RequireTarget() error {
	if s.Vault == "" {
		return cfgerrors.ConfigError{
			Field:      "vault",
			Message:    "no vault configured",
			Suggestion: "Set CONFIGATOR_VAULT to the title of the vault holding your configuration",
		}
	}
	if s.Item == "" {
		return cfgerrors.ConfigError{
			Field:      "item",
			Message:    "no item configured",
			Suggestion: "Set CONFIGATOR_ITEM to the title of the configuration item",
		}
	}
	return nil
}

func (l *loader) credential(account string) *secure.Credential {
	if token, ok := os.LookupEnv(onepassword.TokenEnv); ok && token != "" {
		l.logger.Debug("using service account token from %s", onepassword.TokenEnv)
		return secure.NewCredential(token)
	}
	if !l.useKeyring {
		return secure.NewCredential("")
	}

	user := KeyringUser
	if account != "" {
		user = account
	}
	token, err := keyring.Get(KeyringService, user)
	switch {
	case err == nil:
		l.logger.Debug("using service account token from keyring entry %s/%s", KeyringService, user)
		return secure.NewCredential(token)
	case errors.Is(err, keyring.ErrNotFound):
		l.logger.Debug("no service account token found; relying on the op CLI session")
	default:
		l.logger.Warn("keyring unavailable, relying on the op CLI session: %v", err)
	}
	return secure.NewCredential("")
}
