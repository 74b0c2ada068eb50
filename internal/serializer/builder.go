package serializer

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/samber/lo"
)

// FieldBuilder produces the full field mapping of a serializer. Every
// call must return a fresh FieldMap owned by the caller.
type FieldBuilder interface {
	BuildFields() (*FieldMap, error)
}

// FieldBuilderFunc adapts a function to the FieldBuilder interface.
type FieldBuilderFunc func() (*FieldMap, error)

// BuildFields calls f.
func (f FieldBuilderFunc) BuildFields() (*FieldMap, error) {
	return f()
}

// MapFieldBuilder builds fields for map-shaped records such as decoded
// JSON or YAML objects.
type MapFieldBuilder struct {
	names []string
}

// NewMapFieldBuilder creates a builder exposing the given keys in order.
// Duplicate names are dropped.
func NewMapFieldBuilder(names ...string) *MapFieldBuilder {
	return &MapFieldBuilder{names: lo.Uniq(names)}
}

// MapFieldBuilderFromRecord creates a builder exposing every key of
// record, sorted.
func MapFieldBuilderFromRecord(record map[string]interface{}) *MapFieldBuilder {
	names := lo.Keys(record)
	sort.Strings(names)
	return &MapFieldBuilder{names: names}
}

// BuildFields implements FieldBuilder.
func (b *MapFieldBuilder) BuildFields() (*FieldMap, error) {
	fm := NewFieldMap()
	for _, name := range b.names {
		fm.Add(&Field{
			Name: name,
			get:  mapAccessor(name),
		})
	}
	return fm, nil
}

// mapAccessor reads key from map[string]interface{} or any other map
// with a string key type.
func mapAccessor(key string) accessor {
	return func(instance interface{}) (interface{}, bool, error) {
		if m, ok := instance.(map[string]interface{}); ok {
			v, present := m[key]
			return v, present, nil
		}

		rv := reflect.ValueOf(instance)
		if !rv.IsValid() {
			return nil, false, ErrNilInstance
		}
		for rv.Kind() == reflect.Ptr {
			if rv.IsNil() {
				return nil, false, ErrNilInstance
			}
			rv = rv.Elem()
		}
		if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
			return nil, false, fmt.Errorf("%w: expected map with string keys, got %s", ErrTypeMismatch, rv.Type())
		}

		v := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil, false, nil
		}
		return v.Interface(), true, nil
	}
}
