package hydrate

import (
	"errors"
	"fmt"
)

// Error kinds returned by the hydrator. Use errors.Is to test for them.
var (
	ErrSectionNotFound           = errors.New("section not found")
	ErrFieldNotFound             = errors.New("field not found")
	ErrRequiredFieldMissing      = errors.New("required field missing")
	ErrMalformedContainerLiteral = errors.New("malformed container literal")
	ErrInvalidBooleanLiteral     = errors.New("invalid boolean literal")
	ErrInvalidLiteral            = errors.New("invalid literal")
	ErrReferenceChainTooDeep     = errors.New("reference chain too deep")
	ErrSchemaValidationFailed    = errors.New("schema validation failed")
	ErrInvalidSchema             = errors.New("invalid schema")
)

// FieldError ties an error to the dotted path of the schema field it occurred on.
type FieldError struct {
	Path string
	Err  error
}

func (e *FieldError) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("field '%s': %v", e.Path, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func fieldError(path string, err error) error {
	var fe *FieldError
	if errors.As(err, &fe) {
		return err
	}
	return &FieldError{Path: path, Err: err}
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
