package hydrate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/xeipuuv/gojsonschema"

	"github.com/utiligize/configator/internal/logging"
	"github.com/utiligize/configator/pkg/onepassword"
)

// Validator is implemented by schemas that check their own invariants after
// being assembled.
type Validator interface {
	Validate() error
}

// Hydrator populates schema structs from items. It holds no per-call state
// and can be reused.
type Hydrator struct {
	resolver   ReferenceResolver
	logger     *logging.Logger
	jsonSchema []byte
}

// Option configures a Hydrator.
type Option func(*Hydrator)

// WithLogger sets the logger used for per-field diagnostics.
func WithLogger(logger *logging.Logger) Option {
	return func(h *Hydrator) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithJSONSchema validates the top-level result against a JSON schema. The
// result is marshalled with encoding/json before validation.
func WithJSONSchema(schema []byte) Option {
	return func(h *Hydrator) { h.jsonSchema = schema }
}

// New creates a Hydrator that dereferences op:// values with resolver.
func New(resolver ReferenceResolver, opts ...Option) *Hydrator {
	h := &Hydrator{
		resolver: resolver,
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Into hydrates a new T from item.
func Into[T any](ctx context.Context, h *Hydrator, item onepassword.Item) (T, error) {
	var out T
	if err := h.Hydrate(ctx, item, &out); err != nil {
		return out, err
	}
	return out, nil
}

// Hydrate populates target, which must be a non-nil pointer to a struct,
// from the top level of item. target is only written when every field
// succeeded.
func (h *Hydrator) Hydrate(ctx context.Context, item onepassword.Item, target interface{}) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: target must be a non-nil pointer to a struct, got %T", ErrInvalidSchema, target)
	}

	plan, err := planFor(rv.Elem().Type())
	if err != nil {
		return err
	}

	run := &hydration{
		Hydrator: h,
		item:     item,
		sections: SectionIndex(item),
	}
	result, err := run.record(ctx, plan, "", "")
	if err != nil {
		return err
	}

	if len(h.jsonSchema) > 0 {
		if err := validateJSONSchema(h.jsonSchema, result.Interface()); err != nil {
			return err
		}
	}

	rv.Elem().Set(result.Elem())
	return nil
}

// hydration carries the inputs shared by every level of one Hydrate call.
type hydration struct {
	*Hydrator
	item     onepassword.Item
	sections map[string]string
}

// record hydrates one struct at the given section scope and returns a pointer to it.
func (r *hydration) record(ctx context.Context, plan *schemaPlan, scope, prefix string) (reflect.Value, error) {
	r.logger.Debug("hydrating model '%s'", plan.typ)

	values := make(map[string]interface{}, len(plan.fields))
	var direct []assignment
	for _, f := range plan.fields {
		if err := ctx.Err(); err != nil {
			return reflect.Value{}, err
		}
		path := joinPath(prefix, f.key)

		switch f.kind {
		case kindUnsupported:
			r.logger.Warn("no usable type for field '%s' (%s); skipping", path, f.typ)
			observeField(outcomeSkipped)

		case kindNested:
			sectionID, ok := r.sections[f.key]
			if !ok {
				r.logger.Error("section '%s' not found in item '%s'", f.key, r.item.Title)
				return reflect.Value{}, fieldError(path, fmt.Errorf("%w: no section titled %q", ErrSectionNotFound, f.key))
			}
			nested, err := r.record(ctx, f.nested, sectionID, path)
			if err != nil {
				return reflect.Value{}, err
			}
			if f.nestedPtr {
				values[f.decodeName] = nested.Interface()
			} else {
				values[f.decodeName] = nested.Elem().Interface()
			}

		default:
			v, err := r.leaf(ctx, f, scope, path)
			if err != nil {
				return reflect.Value{}, err
			}
			switch {
			case !v.IsValid():
			case f.direct:
				direct = append(direct, assignment{index: f.index, value: v})
			default:
				values[f.decodeName] = v.Interface()
			}
		}
	}

	return assemble(plan, values, direct, prefix)
}

// assignment is a value set on the assembled struct by field index.
type assignment struct {
	index []int
	value reflect.Value
}

// leaf hydrates a non-nested field. An invalid Value means the field keeps
// its zero value.
func (r *hydration) leaf(ctx context.Context, f fieldPlan, scope, path string) (reflect.Value, error) {
	r.logger.Debug("hydrating field '%s'", path)

	field, err := FindField(r.item.Fields, f.key, scope)
	if errors.Is(err, ErrFieldNotFound) {
		if !f.hasDefault {
			r.logger.Error("field '%s' not found and no default value provided", path)
			return reflect.Value{}, fieldError(path, fmt.Errorf("%w: %w", ErrRequiredFieldMissing, err))
		}
		r.logger.Debug("using default value for field '%s'", path)
		observeField(outcomeDefault)
		if f.defaultVal.IsValid() {
			return copyValue(f.defaultVal), nil
		}
		return reflect.Value{}, nil
	}

	raw, err := ResolveLink(ctx, r.resolver, field.Value)
	if err != nil {
		r.logger.Error("failed to resolve reference for field '%s': %v", path, err)
		return reflect.Value{}, fieldError(path, err)
	}

	v, err := f.parse(raw)
	if err != nil {
		r.logger.Error("failed to parse field '%s' as %s: %v", path, f.kind, err)
		return reflect.Value{}, fieldError(path, err)
	}
	observeField(outcomeMatched)
	return v, nil
}

// copyValue returns a fresh copy of a default so that hydrated structs never
// share maps, slices or pointers with the cached plan.
func copyValue(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Map:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), iter.Value())
		}
		return out
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		reflect.Copy(out, v)
		return out
	case reflect.Pointer:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type().Elem())
		out.Elem().Set(copyValue(v.Elem()))
		return out
	}
	return v
}

// assemble constructs the struct from the collected values, applies the
// direct assignments and runs its Validate method.
func assemble(plan *schemaPlan, values map[string]interface{}, direct []assignment, path string) (reflect.Value, error) {
	out := reflect.New(plan.typ)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out.Interface(),
		TagName:     tagName,
		Squash:      true,
		ErrorUnused: true,
		MatchName:   func(mapKey, fieldName string) bool { return mapKey == fieldName },
	})
	if err != nil {
		return reflect.Value{}, fieldError(path, fmt.Errorf("%w: %v", ErrInvalidSchema, err))
	}
	if err := decoder.Decode(values); err != nil {
		return reflect.Value{}, fieldError(path, fmt.Errorf("%w: constructing %s: %v", ErrSchemaValidationFailed, plan.typ, err))
	}
	for _, a := range direct {
		out.Elem().FieldByIndex(a.index).Set(a.value)
	}

	if v, ok := out.Interface().(Validator); ok {
		if err := v.Validate(); err != nil {
			return reflect.Value{}, fieldError(path, fmt.Errorf("%w: %s: %w", ErrSchemaValidationFailed, plan.typ, err))
		}
	}
	return out, nil
}

func validateJSONSchema(schema []byte, value interface{}) error {
	doc, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal result for validation: %v", ErrSchemaValidationFailed, err)
	}

	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schema), gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: json schema error: %v", ErrInvalidSchema, err)
	}
	if !result.Valid() {
		var messages []string
		for _, desc := range result.Errors() {
			messages = append(messages, desc.String())
		}
		return fmt.Errorf("%w:\n  - %s", ErrSchemaValidationFailed, strings.Join(messages, "\n  - "))
	}
	return nil
}
