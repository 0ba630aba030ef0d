// Package hydrate populates typed configuration structs from 1Password items.
//
// # Schemas
//
// A schema is a Go struct. Each exported field is matched against an item
// field whose normalized title equals the schema key:
//
//	type DatabaseConfig struct {
//	    Host     string        `op:"host" default:"localhost"`
//	    Port     int           `default:"5432"`
//	    Password string        // required: no default tag
//	    Timeout  time.Duration `op:"timeout,optional"`
//	    Replica  ReplicaConfig // nested: hydrated from the section titled "Replica"
//	}
//
// The key is the name in the `op` tag or, when absent, the snake_case form of
// the Go field name. `op:"-"` excludes a field. A `default` tag declares a
// default that is parsed like a stored value; `,optional` declares the zero
// value as default. A field with neither is required, so `default:""` and no
// default are different things.
//
// Nested structs (and pointers to structs) are looked up as sections of the
// item; their fields only match item fields inside that section. Embedded
// structs are mixins and are hydrated at the scope of the embedding struct.
//
// # Values
//
// Raw values starting with "op://" are dereferenced through the
// ReferenceResolver, at most MaxReferenceDepth hops. The result is coerced to
// the declared type: booleans accept true/1/yes/on and false/0/no/off, maps,
// slices, arrays and sets (map[K]struct{}) are decoded from JSON, and scalars
// use the type's own parser (strconv, time.ParseDuration, url.Parse or
// encoding.TextUnmarshaler).
//
// # Validation
//
// After a struct is assembled, its Validate() error method runs if it has
// one. A JSON schema can additionally be applied to the top-level result with
// WithJSONSchema.
//
// Hydration is all-or-nothing: on any error the target is left untouched.
package hydrate
