// Package models provides ready-made schemas for common services.
//
// Each model can be used on its own or as a nested section of a larger
// configuration struct:
//
//	type Config struct {
//	    models.Base
//	    Postgres models.PostgresConfig // section "postgres"
//	    Sentry   models.SentryConfig   // section "sentry"
//	}
//
// Field titles follow the conventional environment variable names of each
// service (PGHOST, PGPORT, ...), so the same item also works with the
// developer-mode environment overlay.
package models
