package serializer

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"

	"github.com/vyrodovalexey/dynfields/internal/encoding"
	"github.com/vyrodovalexey/dynfields/internal/observability"
)

// Serializer exposes the fields a FieldBuilder produces, narrowed by a
// FieldSelection. A Serializer is meant to live for one request and is not
// safe for concurrent mutation; its read operations may run concurrently.
type Serializer struct {
	fields    *FieldMap
	selection FieldSelection
	filtered  FilterResult
	logger    observability.Logger
	codec     encoding.Codec
}

// Option is a functional option for configuring a Serializer.
type Option func(*options)

type options struct {
	selection FieldSelection
	logger    observability.Logger
	codec     encoding.Codec
	filter    FieldFilter
}

// WithFields sets the allow-list. Calling it with no names sets an empty
// allow-list, which removes every field.
func WithFields(names ...string) Option {
	return func(o *options) {
		o.selection.Fields = append(make([]string, 0, len(names)), names...)
	}
}

// WithExcludeFields sets the deny-list.
func WithExcludeFields(names ...string) Option {
	return func(o *options) {
		o.selection.ExcludeFields = append(make([]string, 0, len(names)), names...)
	}
}

// WithSelection sets both lists from sel.
func WithSelection(sel FieldSelection) Option {
	return func(o *options) {
		o.selection = sel.Clone()
	}
}

// WithLogger sets the logger.
func WithLogger(logger observability.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithCodec sets the codec used by Encode and Decode. Defaults to JSON.
func WithCodec(codec encoding.Codec) Option {
	return func(o *options) {
		if codec != nil {
			o.codec = codec
		}
	}
}

// WithFieldFilter sets a custom field filter.
func WithFieldFilter(filter FieldFilter) Option {
	return func(o *options) {
		o.filter = filter
	}
}

// New builds the field mapping with builder and narrows it with the
// configured selection: allow-list first, then deny-list. Unknown names
// are ignored. The only errors come from the builder.
func New(builder FieldBuilder, opts ...Option) (*Serializer, error) {
	start := time.Now()
	metrics := GetSerializerMetrics()

	if builder == nil {
		metrics.RecordOperation(OperationBuild, "error", time.Since(start).Seconds())
		return nil, ErrNilBuilder
	}

	o := options{
		logger: observability.NopLogger(),
		codec:  encoding.NewJSONCodec(nil),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.filter == nil {
		o.filter = NewFieldFilter(o.logger)
	}

	fm, err := builder.BuildFields()
	if err != nil {
		metrics.RecordOperation(OperationBuild, "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("failed to build fields: %w", err)
	}
	if fm == nil {
		fm = NewFieldMap()
	}

	filtered := applySelection(o.filter, fm, o.selection)

	o.logger.Debug("serializer fields selected",
		observability.Strings("fields", fm.Names()),
		observability.Int("removed", filtered.Removed()))
	metrics.RecordOperation(OperationBuild, "success", time.Since(start).Seconds())

	return &Serializer{
		fields:    fm,
		selection: o.selection,
		filtered:  filtered,
		logger:    o.logger,
		codec:     o.codec,
	}, nil
}

// Fields returns the names of the surviving fields in builder order.
func (s *Serializer) Fields() []string {
	return s.fields.Names()
}

// Field returns the descriptor of a surviving field.
func (s *Serializer) Field(name string) (*Field, bool) {
	return s.fields.Get(name)
}

// Selection returns the selection the serializer was built with.
func (s *Serializer) Selection() FieldSelection {
	return s.selection.Clone()
}

// FilterResult returns the fields removed at construction.
func (s *Serializer) FilterResult() FilterResult {
	return s.filtered
}

// ToRepresentation reads every surviving, non write-only field from
// instance. Absent fields and empty omitempty fields are left out.
func (s *Serializer) ToRepresentation(ctx context.Context, instance interface{}) (map[string]interface{}, error) {
	ctx, span := observability.ComponentTracer("serializer").Start(ctx, "serializer.represent",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.Int("serializer.fields_count", s.fields.Len())),
	)
	defer span.End()

	start := time.Now()

	out, err := s.represent(instance)
	if err != nil {
		observability.RecordSpanError(span, err)
		GetSerializerMetrics().RecordOperation(OperationRepresent, "error", time.Since(start).Seconds())
		s.logger.WithContext(ctx).Debug("representation failed", observability.Error(err))
		return nil, err
	}

	GetSerializerMetrics().RecordOperation(OperationRepresent, "success", time.Since(start).Seconds())
	return out, nil
}

func (s *Serializer) represent(instance interface{}) (map[string]interface{}, error) {
	if isNil(instance) {
		return nil, ErrNilInstance
	}

	out := make(map[string]interface{}, s.fields.Len())
	for _, f := range s.fields.Fields() {
		if f.WriteOnly {
			continue
		}

		v, present, err := f.Value(instance)
		if err != nil {
			return nil, &FieldError{Field: f.Name, Cause: err}
		}
		if !present || (f.OmitEmpty && isEmptyValue(v)) {
			continue
		}
		out[f.Name] = v
	}
	return out, nil
}

// ToRepresentationList represents every element of a slice or array. All
// element errors are collected; on any error no list is returned.
func (s *Serializer) ToRepresentationList(ctx context.Context, instances interface{}) ([]map[string]interface{}, error) {
	ctx, span := observability.ComponentTracer("serializer").Start(ctx, "serializer.represent_list",
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	defer span.End()

	start := time.Now()
	metrics := GetSerializerMetrics()

	rv := reflect.ValueOf(instances)
	if !rv.IsValid() || (rv.Kind() == reflect.Slice && rv.IsNil()) {
		metrics.RecordOperation(OperationRepresentList, "success", time.Since(start).Seconds())
		return []map[string]interface{}{}, nil
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		err := fmt.Errorf("%w: expected slice or array, got %s", ErrTypeMismatch, rv.Type())
		observability.RecordSpanError(span, err)
		metrics.RecordOperation(OperationRepresentList, "error", time.Since(start).Seconds())
		return nil, err
	}

	span.SetAttributes(attribute.Int("serializer.items_count", rv.Len()))

	out := make([]map[string]interface{}, 0, rv.Len())
	var errs error
	for i := 0; i < rv.Len(); i++ {
		item, err := s.represent(rv.Index(i).Interface())
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("item %d: %w", i, err))
			continue
		}
		out = append(out, item)
	}

	if errs != nil {
		observability.RecordSpanError(span, errs)
		metrics.RecordOperation(OperationRepresentList, "error", time.Since(start).Seconds())
		s.logger.WithContext(ctx).Debug("list representation failed",
			observability.Int("failed", len(multierr.Errors(errs))))
		return nil, errs
	}

	metrics.RecordOperation(OperationRepresentList, "success", time.Since(start).Seconds())
	return out, nil
}

// ToInternalValue keeps the keys of data that name a surviving, non
// read-only field. Other keys are dropped silently.
func (s *Serializer) ToInternalValue(ctx context.Context, data map[string]interface{}) map[string]interface{} {
	ctx, span := observability.ComponentTracer("serializer").Start(ctx, "serializer.internal_value",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.Int("serializer.keys_count", len(data))),
	)
	defer span.End()

	start := time.Now()

	out := make(map[string]interface{}, len(data))
	for key, value := range data {
		f, ok := s.fields.Get(key)
		if !ok || f.ReadOnly {
			s.logger.WithContext(ctx).Debug("dropping input field", observability.String("field", key))
			continue
		}
		out[key] = value
	}

	GetSerializerMetrics().RecordOperation(OperationInternalValue, "success", time.Since(start).Seconds())
	return out
}

// Encode represents instance, or each element when instance is a slice or
// array, and encodes the result with the serializer's codec.
func (s *Serializer) Encode(ctx context.Context, instance interface{}) ([]byte, error) {
	ctx, span := observability.ComponentTracer("serializer").Start(ctx, "serializer.encode",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("serializer.content_type", s.codec.ContentType())),
	)
	defer span.End()

	start := time.Now()
	metrics := GetSerializerMetrics()

	var (
		payload interface{}
		err     error
	)
	if isList(instance) {
		payload, err = s.ToRepresentationList(ctx, instance)
	} else {
		payload, err = s.ToRepresentation(ctx, instance)
	}
	if err != nil {
		observability.RecordSpanError(span, err)
		metrics.RecordOperation(OperationEncode, "error", time.Since(start).Seconds())
		return nil, err
	}

	data, err := s.codec.Encode(payload)
	if err != nil {
		observability.RecordSpanError(span, err)
		metrics.RecordOperation(OperationEncode, "error", time.Since(start).Seconds())
		return nil, err
	}

	metrics.RecordOperation(OperationEncode, "success", time.Since(start).Seconds())
	return data, nil
}

// Decode decodes one object with the serializer's codec, narrows it with
// ToInternalValue and stores the result in target. target may be a
// *map[string]interface{} or any value the codec can decode into.
func (s *Serializer) Decode(ctx context.Context, data []byte, target interface{}) error {
	ctx, span := observability.ComponentTracer("serializer").Start(ctx, "serializer.decode",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("serializer.content_type", s.codec.ContentType())),
	)
	defer span.End()

	start := time.Now()
	metrics := GetSerializerMetrics()

	fail := func(err error) error {
		observability.RecordSpanError(span, err)
		metrics.RecordOperation(OperationDecode, "error", time.Since(start).Seconds())
		return err
	}

	if isNil(target) {
		return fail(ErrNilInstance)
	}

	var raw map[string]interface{}
	if err := s.codec.Decode(data, &raw); err != nil {
		return fail(err)
	}

	internal := s.ToInternalValue(ctx, raw)

	if m, ok := target.(*map[string]interface{}); ok {
		*m = internal
		metrics.RecordOperation(OperationDecode, "success", time.Since(start).Seconds())
		return nil
	}

	buf, err := s.codec.Encode(internal)
	if err != nil {
		return fail(err)
	}
	if err := s.codec.Decode(buf, target); err != nil {
		return fail(err)
	}

	metrics.RecordOperation(OperationDecode, "success", time.Since(start).Seconds())
	return nil
}

// isNil reports whether v is nil or a nil pointer, map, slice or interface.
func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

// isList reports whether v is a slice or array other than []byte.
func isList(v interface{}) bool {
	if v == nil {
		return false
	}
	t := reflect.TypeOf(v)
	switch t.Kind() {
	case reflect.Slice:
		return t.Elem().Kind() != reflect.Uint8
	case reflect.Array:
		return true
	default:
		return false
	}
}

// isEmptyValue follows the omitempty rules of encoding/json.
func isEmptyValue(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return rv.Len() == 0
	case reflect.Bool:
		return !rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() == 0
	case reflect.Interface, reflect.Ptr:
		return rv.IsNil()
	default:
		return false
	}
}
