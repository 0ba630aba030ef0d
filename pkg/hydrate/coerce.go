package hydrate

import (
	"encoding"
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// strategyKind is the closed set of ways a schema field is populated. It is
// resolved once per field when the schema plan is built.
type strategyKind int

const (
	kindUnsupported strategyKind = iota
	kindScalar
	kindBool
	kindContainer
	kindNested
)

func (k strategyKind) String() string {
	switch k {
	case kindScalar:
		return "scalar"
	case kindBool:
		return "bool"
	case kindContainer:
		return "container"
	case kindNested:
		return "nested"
	default:
		return "unsupported"
	}
}

// parseFunc converts a raw string into a value of the field's declared type.
type parseFunc func(raw string) (reflect.Value, error)

var (
	durationType        = reflect.TypeOf(time.Duration(0))
	urlType             = reflect.TypeOf(url.URL{})
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
	emptyStructType     = reflect.TypeOf(struct{}{})
)

var (
	truthy = map[string]bool{"true": true, "1": true, "yes": true, "on": true}
	falsy  = map[string]bool{"false": true, "0": true, "no": true, "off": true}
)

// ParseBool parses a boolean using a flexible vocabulary. Matching is
// case-insensitive and ignores surrounding whitespace.
func ParseBool(raw string) (bool, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case truthy[v]:
		return true, nil
	case falsy[v]:
		return false, nil
	}
	return false, fmt.Errorf("%w: expected one of true/1/yes/on or false/0/no/off", ErrInvalidBooleanLiteral)
}

// isLeafStruct reports struct types that are parsed from a single string
// rather than hydrated from a section.
func isLeafStruct(t reflect.Type) bool {
	return t == urlType || reflect.PointerTo(t).Implements(textUnmarshalerType)
}

// isSet reports map types used as sets, decoded from a JSON array.
func isSet(t reflect.Type) bool {
	return t.Kind() == reflect.Map && t.Elem() == emptyStructType
}

// leafStrategy resolves how a non-nested type is coerced. It returns
// kindUnsupported for types that cannot be populated from a string.
func leafStrategy(t reflect.Type) (strategyKind, parseFunc) {
	switch {
	case t == durationType:
		return kindScalar, parseDuration
	case t == urlType:
		return kindScalar, parseURL
	case t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(textUnmarshalerType):
		return kindScalar, textParser(t)
	}

	switch t.Kind() {
	case reflect.Bool:
		return kindBool, func(raw string) (reflect.Value, error) {
			b, err := ParseBool(raw)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(b).Convert(t), nil
		}
	case reflect.String:
		return kindScalar, func(raw string) (reflect.Value, error) {
			return reflect.ValueOf(raw).Convert(t), nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return kindScalar, func(raw string) (reflect.Value, error) {
			n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, t.Bits())
			if err != nil {
				return reflect.Value{}, invalidLiteral(t, err)
			}
			return reflect.ValueOf(n).Convert(t), nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return kindScalar, func(raw string) (reflect.Value, error) {
			n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, t.Bits())
			if err != nil {
				return reflect.Value{}, invalidLiteral(t, err)
			}
			return reflect.ValueOf(n).Convert(t), nil
		}
	case reflect.Float32, reflect.Float64:
		return kindScalar, func(raw string) (reflect.Value, error) {
			f, err := strconv.ParseFloat(strings.TrimSpace(raw), t.Bits())
			if err != nil {
				return reflect.Value{}, invalidLiteral(t, err)
			}
			return reflect.ValueOf(f).Convert(t), nil
		}
	case reflect.Complex64, reflect.Complex128:
		return kindScalar, func(raw string) (reflect.Value, error) {
			c, err := strconv.ParseComplex(strings.TrimSpace(raw), t.Bits())
			if err != nil {
				return reflect.Value{}, invalidLiteral(t, err)
			}
			return reflect.ValueOf(c).Convert(t), nil
		}
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return kindScalar, func(raw string) (reflect.Value, error) {
				return reflect.ValueOf([]byte(raw)).Convert(t), nil
			}
		}
		return kindContainer, containerParser(t)
	case reflect.Map, reflect.Array:
		return kindContainer, containerParser(t)
	case reflect.Pointer:
		kind, elem := leafStrategy(t.Elem())
		if kind == kindUnsupported {
			return kindUnsupported, nil
		}
		return kind, func(raw string) (reflect.Value, error) {
			v, err := elem(raw)
			if err != nil {
				return reflect.Value{}, err
			}
			ptr := reflect.New(t.Elem())
			ptr.Elem().Set(v)
			return ptr, nil
		}
	}
	return kindUnsupported, nil
}

// setDirectly reports types mapstructure cannot decode into. Their values
// are assigned to the struct after decoding.
func setDirectly(t reflect.Type) bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Complex64 || t.Kind() == reflect.Complex128
}

func invalidLiteral(t reflect.Type, err error) error {
	// strconv errors quote the input, which may be a secret.
	if numErr, ok := err.(*strconv.NumError); ok {
		err = numErr.Err
	}
	return fmt.Errorf("%w: cannot parse value as %s: %v", ErrInvalidLiteral, t, err)
}

func parseDuration(raw string) (reflect.Value, error) {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return reflect.Value{}, fmt.Errorf("%w: cannot parse value as duration", ErrInvalidLiteral)
	}
	return reflect.ValueOf(d), nil
}

// parseURL accepts absolute URLs only.
func parseURL(raw string) (reflect.Value, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !u.IsAbs() || u.Host == "" {
		return reflect.Value{}, fmt.Errorf("%w: value is not an absolute URL", ErrInvalidLiteral)
	}
	return reflect.ValueOf(*u), nil
}

func textParser(t reflect.Type) parseFunc {
	return func(raw string) (reflect.Value, error) {
		ptr := reflect.New(t)
		if err := ptr.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(raw)); err != nil {
			return reflect.Value{}, fmt.Errorf("%w: cannot parse value as %s: %v", ErrInvalidLiteral, t, err)
		}
		return ptr.Elem(), nil
	}
}

// containerParser decodes JSON into maps, slices, sets and fixed-size arrays.
// Arrays are treated as tuples and must match their declared length exactly.
func containerParser(t reflect.Type) parseFunc {
	return func(raw string) (reflect.Value, error) {
		data := []byte(raw)
		switch {
		case isSet(t):
			members := reflect.New(reflect.SliceOf(t.Key()))
			if err := json.Unmarshal(data, members.Interface()); err != nil {
				return reflect.Value{}, malformed(t, err)
			}
			set := reflect.MakeMapWithSize(t, members.Elem().Len())
			for i := 0; i < members.Elem().Len(); i++ {
				set.SetMapIndex(members.Elem().Index(i), reflect.Zero(emptyStructType))
			}
			return set, nil
		case t.Kind() == reflect.Array:
			var elems []json.RawMessage
			if err := json.Unmarshal(data, &elems); err != nil {
				return reflect.Value{}, malformed(t, err)
			}
			if len(elems) != t.Len() {
				return reflect.Value{}, fmt.Errorf("%w: %s expects %d elements, got %d", ErrMalformedContainerLiteral, t, t.Len(), len(elems))
			}
		}

		ptr := reflect.New(t)
		if err := json.Unmarshal(data, ptr.Interface()); err != nil {
			return reflect.Value{}, malformed(t, err)
		}
		return ptr.Elem(), nil
	}
}

func malformed(t reflect.Type, err error) error {
	return fmt.Errorf("%w: cannot decode JSON as %s: %v", ErrMalformedContainerLiteral, t, err)
}
