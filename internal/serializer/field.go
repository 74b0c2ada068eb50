package serializer

import (
	"reflect"
)

// accessor reads a field value from an instance. The boolean reports
// whether the field is present on that instance.
type accessor func(instance interface{}) (interface{}, bool, error)

// Field describes one named attribute a serializer reads from or writes
// to an instance. Its contents are owned by the builder that produced it.
type Field struct {
	// Name is the external name of the field.
	Name string

	// GoName is the Go struct field name, empty for map and computed fields.
	GoName string

	// Type is the Go type of the value, nil when unknown.
	Type reflect.Type

	// Index is the struct field index path, nil for map and computed fields.
	Index []int

	// ReadOnly fields are emitted but never accepted as input.
	ReadOnly bool

	// WriteOnly fields are accepted as input but never emitted.
	WriteOnly bool

	// OmitEmpty drops zero values from the representation.
	OmitEmpty bool

	get accessor
}

// Value reads the field from instance.
func (f *Field) Value(instance interface{}) (interface{}, bool, error) {
	if f.get == nil {
		return nil, false, nil
	}
	return f.get(instance)
}

// clone returns a shallow copy. Index is shared and must not be mutated.
func (f *Field) clone() *Field {
	c := *f
	return &c
}

// FieldMap is an ordered mapping from field name to descriptor.
// Builders add to it; the filter only ever removes from it. The zero value
// is an empty mapping ready to use.
type FieldMap struct {
	names  []string
	fields map[string]*Field
}

// NewFieldMap creates a FieldMap holding fields in the given order.
// A later field with an already used name replaces the earlier one in place.
func NewFieldMap(fields ...*Field) *FieldMap {
	m := &FieldMap{
		names:  make([]string, 0, len(fields)),
		fields: make(map[string]*Field, len(fields)),
	}
	for _, f := range fields {
		m.Add(f)
	}
	return m
}

// Add appends a field, or replaces the field with the same name keeping
// its position.
func (m *FieldMap) Add(f *Field) {
	if f == nil {
		return
	}
	if m.fields == nil {
		m.fields = make(map[string]*Field)
	}
	if _, exists := m.fields[f.Name]; !exists {
		m.names = append(m.names, f.Name)
	}
	m.fields[f.Name] = f
}

// Get returns the field with the given name.
func (m *FieldMap) Get(name string) (*Field, bool) {
	f, ok := m.fields[name]
	return f, ok
}

// Has reports whether a field with the given name exists.
func (m *FieldMap) Has(name string) bool {
	_, ok := m.fields[name]
	return ok
}

// Remove deletes the named field. It reports whether the field existed.
func (m *FieldMap) Remove(name string) bool {
	if _, ok := m.fields[name]; !ok {
		return false
	}
	delete(m.fields, name)
	for i, n := range m.names {
		if n == name {
			m.names = append(m.names[:i], m.names[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of fields.
func (m *FieldMap) Len() int {
	return len(m.names)
}

// Names returns the field names in order.
func (m *FieldMap) Names() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// Fields returns the descriptors in order.
func (m *FieldMap) Fields() []*Field {
	out := make([]*Field, 0, len(m.names))
	for _, n := range m.names {
		out = append(out, m.fields[n])
	}
	return out
}

// Clone returns a copy whose membership can change independently.
// Descriptors are copied too.
func (m *FieldMap) Clone() *FieldMap {
	c := &FieldMap{
		names:  make([]string, len(m.names)),
		fields: make(map[string]*Field, len(m.fields)),
	}
	copy(c.names, m.names)
	for name, f := range m.fields {
		c.fields[name] = f.clone()
	}
	return c
}
