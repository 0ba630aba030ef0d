package hydrate

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

const (
	tagName        = "op"
	defaultTagName = "default"
	optionalOption = "optional"
)

// fieldPlan is the resolved hydration strategy for one schema field.
type fieldPlan struct {
	goName     string
	index      []int  // field index path from the schema struct
	direct     bool   // assigned after decoding instead of by mapstructure
	decodeName string // name the assembled map uses for this field
	key        string // normalized key matched against item fields and sections
	typ        reflect.Type
	kind       strategyKind
	parse      parseFunc
	nested     *schemaPlan
	nestedPtr  bool
	hasDefault bool
	defaultVal reflect.Value // invalid means "leave unset"
}

// schemaPlan lists a struct's fields in declaration order, embedded struct
// fields inlined at their position.
type schemaPlan struct {
	typ    reflect.Type
	fields []fieldPlan
}

var plans sync.Map // reflect.Type -> *schemaPlan

// planFor returns the cached plan for a struct type, building it on first use.
func planFor(t reflect.Type) (*schemaPlan, error) {
	if cached, ok := plans.Load(t); ok {
		return cached.(*schemaPlan), nil
	}
	p, err := buildPlan(t, map[reflect.Type]bool{})
	if err != nil {
		return nil, err
	}
	actual, _ := plans.LoadOrStore(t, p)
	return actual.(*schemaPlan), nil
}

func buildPlan(t reflect.Type, building map[reflect.Type]bool) (*schemaPlan, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s is not a struct", ErrInvalidSchema, t)
	}
	if building[t] {
		return nil, fmt.Errorf("%w: %s refers to itself", ErrInvalidSchema, t)
	}
	building[t] = true
	defer delete(building, t)

	p := &schemaPlan{typ: t}
	if err := p.addFields(t, nil, building); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *schemaPlan) addFields(t reflect.Type, parent []int, building map[reflect.Type]bool) error {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		index := append(append([]int(nil), parent...), i)
		if !sf.IsExported() {
			continue
		}
		tag, hasTag := sf.Tag.Lookup(tagName)
		if tag == "-" {
			continue
		}

		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			if err := p.addFields(sf.Type, index, building); err != nil {
				return err
			}
			continue
		}

		fp, err := planField(sf, tag, hasTag, building)
		if err != nil {
			return err
		}
		fp.index = index
		p.fields = append(p.fields, fp)
	}
	return nil
}

func planField(sf reflect.StructField, tag string, hasTag bool, building map[reflect.Type]bool) (fieldPlan, error) {
	name, opts, _ := strings.Cut(tag, ",")
	fp := fieldPlan{
		goName:     sf.Name,
		decodeName: sf.Name,
		key:        snakeCase(sf.Name),
		typ:        sf.Type,
	}
	if hasTag && name != "" {
		fp.decodeName = name
		fp.key = Normalize(name)
	}

	if nestedType, isPtr, ok := nestedStruct(sf.Type); ok {
		if _, has := sf.Tag.Lookup(defaultTagName); has {
			return fp, fmt.Errorf("%w: nested field %s cannot declare a default", ErrInvalidSchema, sf.Name)
		}
		nested, err := buildPlan(nestedType, building)
		if err != nil {
			return fp, err
		}
		fp.kind = kindNested
		fp.nested = nested
		fp.nestedPtr = isPtr
		return fp, nil
	}

	fp.kind, fp.parse = leafStrategy(sf.Type)
	if fp.kind == kindUnsupported {
		return fp, nil
	}
	fp.direct = setDirectly(sf.Type)

	if def, ok := sf.Tag.Lookup(defaultTagName); ok {
		v, err := fp.parse(def)
		if err != nil {
			return fp, fmt.Errorf("%w: default for %s: %v", ErrInvalidSchema, sf.Name, err)
		}
		fp.hasDefault = true
		fp.defaultVal = v
	} else if hasOption(opts, optionalOption) {
		fp.hasDefault = true
		if sf.Type.Kind() != reflect.Pointer {
			fp.defaultVal = reflect.Zero(sf.Type)
		}
	}
	return fp, nil
}

// nestedStruct reports whether t is hydrated from a section, and the struct
// type to recurse into.
func nestedStruct(t reflect.Type) (reflect.Type, bool, bool) {
	isPtr := false
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
		isPtr = true
	}
	if t.Kind() != reflect.Struct || isLeafStruct(t) {
		return nil, false, false
	}
	return t, isPtr, true
}

func hasOption(opts, want string) bool {
	for _, opt := range strings.Split(opts, ",") {
		if strings.TrimSpace(opt) == want {
			return true
		}
	}
	return false
}
