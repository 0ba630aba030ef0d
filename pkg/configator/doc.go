// Package configator loads typed configuration from 1Password.
//
// Configuration lives in a 1Password item: top-level fields map to the
// fields of a Go struct, sections map to nested structs, and values may be
// op:// references to secrets stored elsewhere. A schema is an ordinary
// struct (see package hydrate for the tag syntax):
//
//	type Config struct {
//	    Name     string `op:"name"`
//	    Postgres models.PostgresConfig
//	    Sentry   models.SentryConfig
//	}
//
//	cfg, err := configator.Load[Config](ctx, os.Getenv("OP_SERVICE_ACCOUNT_TOKEN"), "Prod", "api")
//
// FromEnv reads the vault, item, account and token from the environment
// (see package settings) and also supports developer mode, which serves items
// from a local YAML file instead of 1Password. In developer mode a schema
// implementing EnvPrefixer also takes top-level fields from environment
// variables carrying its prefix, such as SENTRY_DSN for models.SentryConfig.
//
// Load talks to 1Password through the op CLI, which must be installed. Pass
// WithClient to use any other onepassword.Client.
package configator
