package serializer

import (
	"fmt"
	"reflect"
	"strings"
)

// ComputedFunc derives a read-only value from an instance.
type ComputedFunc func(instance interface{}) (interface{}, error)

type computedField struct {
	name string
	fn   ComputedFunc
}

// StructFieldBuilder builds the field mapping of a Go struct type from its
// json tags. A `serializer:"readonly"` or `serializer:"writeonly"` tag
// restricts the direction of a field.
type StructFieldBuilder struct {
	typ      reflect.Type
	computed []computedField
	cache    *PlanCache
}

// StructOption is a functional option for configuring a StructFieldBuilder.
type StructOption func(*StructFieldBuilder)

// WithComputedField appends a read-only field whose value is produced by fn.
func WithComputedField(name string, fn ComputedFunc) StructOption {
	return func(b *StructFieldBuilder) {
		b.computed = append(b.computed, computedField{name: name, fn: fn})
	}
}

// WithPlanCache uses cache instead of the process-wide plan cache.
func WithPlanCache(cache *PlanCache) StructOption {
	return func(b *StructFieldBuilder) {
		b.cache = cache
	}
}

// NewStructFieldBuilder creates a builder for the struct type of
// prototype. prototype may be a struct value, a pointer to one, or a
// reflect.Type.
func NewStructFieldBuilder(prototype interface{}, opts ...StructOption) (*StructFieldBuilder, error) {
	if prototype == nil {
		return nil, fmt.Errorf("%w: nil prototype", ErrNotStruct)
	}

	t, ok := prototype.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(prototype)
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s", ErrNotStruct, t)
	}

	b := &StructFieldBuilder{typ: t}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Type returns the struct type the builder reflects.
func (b *StructFieldBuilder) Type() reflect.Type {
	return b.typ
}

// BuildFields implements FieldBuilder.
func (b *StructFieldBuilder) BuildFields() (*FieldMap, error) {
	cache := b.cache
	if cache == nil {
		cache = DefaultPlanCache()
	}

	plan := cache.plan(b.typ)

	fm := NewFieldMap()
	for _, f := range plan.fields {
		fm.Add(f.clone())
	}

	for _, c := range b.computed {
		if fm.Has(c.name) {
			return nil, fmt.Errorf("%w: %q on %s", ErrDuplicateField, c.name, b.typ)
		}
		fm.Add(&Field{
			Name:     c.name,
			ReadOnly: true,
			get:      computedAccessor(b.typ, c.fn),
		})
	}

	return fm, nil
}

func computedAccessor(root reflect.Type, fn ComputedFunc) accessor {
	return func(instance interface{}) (interface{}, bool, error) {
		if _, err := derefInstance(root, instance); err != nil {
			return nil, false, err
		}
		v, err := fn(instance)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %w", ErrComputedField, err)
		}
		return v, true, nil
	}
}

// parseJSONTag returns the name and omitempty flag of a json struct tag.
func parseJSONTag(tag string) (string, bool) {
	name, opts, _ := strings.Cut(tag, ",")
	omitEmpty := false
	for _, opt := range strings.Split(opts, ",") {
		if opt == "omitempty" {
			omitEmpty = true
		}
	}
	return name, omitEmpty
}

// parseSerializerTag returns the readonly and writeonly flags of a
// serializer struct tag.
func parseSerializerTag(tag string) (readOnly, writeOnly bool) {
	for _, opt := range strings.Split(tag, ",") {
		switch strings.TrimSpace(opt) {
		case "readonly":
			readOnly = true
		case "writeonly":
			writeOnly = true
		}
	}
	return readOnly, writeOnly
}
