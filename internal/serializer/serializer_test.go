package serializer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/multierr"

	"github.com/vyrodovalexey/dynfields/internal/encoding"
)

type account struct {
	ID       int    `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Email    string `json:"email,omitempty" yaml:"email,omitempty"`
	Password string `json:"password" yaml:"password" serializer:"writeonly"`
	Created  string `json:"created" yaml:"created" serializer:"readonly"`
}

func accountBuilder(t *testing.T) FieldBuilder {
	t.Helper()
	b, err := NewStructFieldBuilder(account{}, WithPlanCache(newTestPlanCache(t)))
	require.NoError(t, err)
	return b
}

func TestNew_Selection(t *testing.T) {
	tests := []struct {
		name     string
		opts     []Option
		expected []string
	}{
		{
			name:     "no options",
			expected: []string{"id", "name", "email", "password"},
		},
		{
			name:     "fields",
			opts:     []Option{WithFields("id", "name")},
			expected: []string{"id", "name"},
		},
		{
			name:     "exclude fields",
			opts:     []Option{WithExcludeFields("password")},
			expected: []string{"id", "name", "email"},
		},
		{
			name:     "fields then exclude",
			opts:     []Option{WithFields("id", "name", "email"), WithExcludeFields("email")},
			expected: []string{"id", "name"},
		},
		{
			name:     "unknown names are ignored",
			opts:     []Option{WithFields("id", "nonexistent")},
			expected: []string{"id"},
		},
		{
			name:     "empty allow-list removes everything",
			opts:     []Option{WithFields()},
			expected: []string{},
		},
		{
			name:     "selection option",
			opts:     []Option{WithSelection(FieldSelection{ExcludeFields: []string{"id", "email"}})},
			expected: []string{"name", "password"},
		},
		{
			name: "later option wins",
			opts: []Option{
				WithSelection(FieldSelection{Fields: []string{"id"}}),
				WithFields("name"),
			},
			expected: []string{"name"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(NewMapFieldBuilder("id", "name", "email", "password"), tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, s.Fields())
		})
	}
}

func TestNew_Errors(t *testing.T) {
	t.Run("nil builder", func(t *testing.T) {
		s, err := New(nil)
		assert.ErrorIs(t, err, ErrNilBuilder)
		assert.Nil(t, s)
	})

	t.Run("builder error is wrapped", func(t *testing.T) {
		boom := errors.New("boom")
		s, err := New(FieldBuilderFunc(func() (*FieldMap, error) { return nil, boom }))
		assert.ErrorIs(t, err, boom)
		assert.ErrorContains(t, err, "failed to build fields")
		assert.Nil(t, s)
	})

	t.Run("nil field map is empty", func(t *testing.T) {
		s, err := New(FieldBuilderFunc(func() (*FieldMap, error) { return nil, nil }))
		require.NoError(t, err)
		assert.Empty(t, s.Fields())
	})
}

func TestNew_SelectionIsCopied(t *testing.T) {
	sel := FieldSelection{Fields: []string{"id", "name"}}
	s, err := New(NewMapFieldBuilder("id", "name"), WithSelection(sel))
	require.NoError(t, err)

	sel.Fields[0] = "changed"
	got := s.Selection()
	assert.Equal(t, []string{"id", "name"}, got.Fields)

	got.Fields[1] = "changed"
	assert.Equal(t, []string{"id", "name"}, s.Selection().Fields)
}

func TestSerializer_FieldAndFilterResult(t *testing.T) {
	s, err := New(NewMapFieldBuilder("id", "name", "email"),
		WithFields("id", "name"), WithExcludeFields("name"))
	require.NoError(t, err)

	_, ok := s.Field("id")
	assert.True(t, ok)
	_, ok = s.Field("name")
	assert.False(t, ok)

	res := s.FilterResult()
	assert.Equal(t, []string{"email"}, res.AllowRemoved)
	assert.Equal(t, []string{"name"}, res.DenyRemoved)
}

func TestSerializer_ToRepresentation(t *testing.T) {
	ctx := context.Background()
	instance := account{ID: 1, Name: "Ann", Password: "secret", Created: "2024-01-01"}

	tests := []struct {
		name     string
		opts     []Option
		instance interface{}
		expected map[string]interface{}
	}{
		{
			name:     "write-only and empty omitempty fields are left out",
			instance: instance,
			expected: map[string]interface{}{"id": 1, "name": "Ann", "created": "2024-01-01"},
		},
		{
			name:     "pointer instance",
			instance: &instance,
			expected: map[string]interface{}{"id": 1, "name": "Ann", "created": "2024-01-01"},
		},
		{
			name:     "selection applies",
			opts:     []Option{WithFields("id", "email"), WithExcludeFields("id")},
			instance: account{ID: 2, Email: "b@example.com"},
			expected: map[string]interface{}{"email": "b@example.com"},
		},
		{
			name:     "empty allow-list",
			opts:     []Option{WithFields()},
			instance: instance,
			expected: map[string]interface{}{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := append([]Option{}, tt.opts...)
			s, err := New(accountBuilder(t), opts...)
			require.NoError(t, err)

			got, err := s.ToRepresentation(ctx, tt.instance)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSerializer_ToRepresentation_Errors(t *testing.T) {
	ctx := context.Background()
	s, err := New(accountBuilder(t))
	require.NoError(t, err)

	t.Run("nil instance", func(t *testing.T) {
		_, err := s.ToRepresentation(ctx, nil)
		assert.ErrorIs(t, err, ErrNilInstance)

		var nilPtr *account
		_, err = s.ToRepresentation(ctx, nilPtr)
		assert.ErrorIs(t, err, ErrNilInstance)
	})

	t.Run("wrong type reports field", func(t *testing.T) {
		_, err := s.ToRepresentation(ctx, testShadow{})
		require.Error(t, err)

		var fe *FieldError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "id", fe.Field)
		assert.ErrorIs(t, err, ErrTypeMismatch)
	})
}

func TestSerializer_ToRepresentation_Map(t *testing.T) {
	record := map[string]interface{}{"id": 7, "name": "Bob", "email": "bob@example.com"}

	s, err := New(MapFieldBuilderFromRecord(record), WithExcludeFields("email"))
	require.NoError(t, err)

	got, err := s.ToRepresentation(context.Background(), record)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"id": 7, "name": "Bob"}, got)

	got, err = s.ToRepresentation(context.Background(), map[string]interface{}{"id": 8})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"id": 8}, got)
}

func TestSerializer_ToRepresentationList(t *testing.T) {
	ctx := context.Background()
	s, err := New(accountBuilder(t), WithFields("id", "name"))
	require.NoError(t, err)

	t.Run("slice", func(t *testing.T) {
		got, err := s.ToRepresentationList(ctx, []account{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}})
		require.NoError(t, err)
		assert.Equal(t, []map[string]interface{}{
			{"id": 1, "name": "a"},
			{"id": 2, "name": "b"},
		}, got)
	})

	t.Run("array of pointers", func(t *testing.T) {
		got, err := s.ToRepresentationList(ctx, [1]*account{{ID: 3}})
		require.NoError(t, err)
		assert.Equal(t, []map[string]interface{}{{"id": 3, "name": ""}}, got)
	})

	t.Run("nil gives empty list", func(t *testing.T) {
		got, err := s.ToRepresentationList(ctx, nil)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)

		var empty []account
		got, err = s.ToRepresentationList(ctx, empty)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("not a list", func(t *testing.T) {
		_, err := s.ToRepresentationList(ctx, account{})
		assert.ErrorIs(t, err, ErrTypeMismatch)
	})

	t.Run("element errors are collected", func(t *testing.T) {
		items := []interface{}{account{ID: 1}, nil, testShadow{}, &account{ID: 2}}
		got, err := s.ToRepresentationList(ctx, items)
		assert.Nil(t, got)
		require.Error(t, err)

		errs := multierr.Errors(err)
		require.Len(t, errs, 2)
		assert.ErrorIs(t, errs[0], ErrNilInstance)
		assert.ErrorContains(t, errs[0], "item 1")
		assert.ErrorIs(t, errs[1], ErrTypeMismatch)
		assert.ErrorContains(t, errs[1], "item 2")
	})
}

func TestSerializer_ToInternalValue(t *testing.T) {
	s, err := New(accountBuilder(t), WithExcludeFields("email"))
	require.NoError(t, err)

	got := s.ToInternalValue(context.Background(), map[string]interface{}{
		"id":       1,
		"name":     "Ann",
		"email":    "dropped@example.com",
		"password": "secret",
		"created":  "read-only",
		"unknown":  true,
	})

	assert.Equal(t, map[string]interface{}{
		"id":       1,
		"name":     "Ann",
		"password": "secret",
	}, got)

	assert.Empty(t, s.ToInternalValue(context.Background(), nil))
}

func TestSerializer_EncodeJSON(t *testing.T) {
	ctx := context.Background()
	s, err := New(accountBuilder(t), WithFields("id", "name"))
	require.NoError(t, err)

	t.Run("object", func(t *testing.T) {
		data, err := s.Encode(ctx, account{ID: 1, Name: "Ann", Password: "x"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":1,"name":"Ann"}`, string(data))
	})

	t.Run("list", func(t *testing.T) {
		data, err := s.Encode(ctx, []account{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}})
		require.NoError(t, err)
		assert.JSONEq(t, `[{"id":1,"name":"a"},{"id":2,"name":"b"}]`, string(data))
	})

	t.Run("error", func(t *testing.T) {
		_, err := s.Encode(ctx, nil)
		assert.ErrorIs(t, err, ErrNilInstance)
	})
}

func TestSerializer_EncodeYAML(t *testing.T) {
	s, err := New(accountBuilder(t),
		WithFields("id", "name"),
		WithCodec(encoding.NewYAMLCodec()))
	require.NoError(t, err)

	data, err := s.Encode(context.Background(), account{ID: 1, Name: "Ann"})
	require.NoError(t, err)
	assert.YAMLEq(t, "id: 1\nname: Ann\n", string(data))
}

func TestSerializer_Decode(t *testing.T) {
	ctx := context.Background()

	t.Run("into map", func(t *testing.T) {
		s, err := New(accountBuilder(t), WithExcludeFields("email"))
		require.NoError(t, err)

		var got map[string]interface{}
		err = s.Decode(ctx, []byte(`{"id":5,"email":"x","created":"y","password":"p"}`), &got)
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"id": json.Number("5"), "password": "p"}, got)
	})

	t.Run("into struct", func(t *testing.T) {
		s, err := New(accountBuilder(t))
		require.NoError(t, err)

		var got account
		err = s.Decode(ctx, []byte(`{"id":5,"name":"Ann","created":"ignored","password":"p"}`), &got)
		require.NoError(t, err)
		assert.Equal(t, account{ID: 5, Name: "Ann", Password: "p"}, got)
	})

	t.Run("yaml into struct", func(t *testing.T) {
		s, err := New(accountBuilder(t), WithCodec(encoding.NewYAMLCodec()), WithFields("id", "created"))
		require.NoError(t, err)

		var got account
		err = s.Decode(ctx, []byte("id: 9\nname: dropped\ncreated: ignored\n"), &got)
		require.NoError(t, err)
		assert.Equal(t, account{ID: 9}, got)
	})

	t.Run("nil target", func(t *testing.T) {
		s, err := New(accountBuilder(t))
		require.NoError(t, err)

		assert.ErrorIs(t, s.Decode(ctx, []byte(`{}`), nil), ErrNilInstance)
	})

	t.Run("malformed input", func(t *testing.T) {
		s, err := New(accountBuilder(t))
		require.NoError(t, err)

		var got map[string]interface{}
		err = s.Decode(ctx, []byte(`{"id":`), &got)
		assert.ErrorIs(t, err, encoding.ErrDecodingFailed)
	})
}

func TestSerializer_Spans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = provider.Shutdown(context.Background())
	})

	s, err := New(accountBuilder(t))
	require.NoError(t, err)

	_, err = s.Encode(context.Background(), account{ID: 1})
	require.NoError(t, err)
	_, err = s.ToRepresentation(context.Background(), nil)
	require.Error(t, err)

	ended := recorder.Ended()
	names := make([]string, 0, len(ended))
	for _, span := range ended {
		names = append(names, span.Name())
	}
	assert.Equal(t, []string{"serializer.represent", "serializer.encode", "serializer.represent"}, names)

	failed := ended[2]
	assert.Equal(t, codes.Error, failed.Status().Code)
	assert.Equal(t, ended[1].SpanContext().SpanID(), ended[0].Parent().SpanID())
}

func TestIsEmptyValue(t *testing.T) {
	var nilPtr *account

	tests := []struct {
		name  string
		value interface{}
		want  bool
	}{
		{name: "nil", value: nil, want: true},
		{name: "empty string", value: "", want: true},
		{name: "string", value: "x", want: false},
		{name: "zero int", value: 0, want: true},
		{name: "uint", value: uint8(1), want: false},
		{name: "false", value: false, want: true},
		{name: "zero float", value: 0.0, want: true},
		{name: "empty slice", value: []int{}, want: true},
		{name: "empty map", value: map[string]int{}, want: true},
		{name: "nil pointer", value: nilPtr, want: true},
		{name: "struct", value: account{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isEmptyValue(tt.value))
		})
	}
}

func TestIsList(t *testing.T) {
	assert.True(t, isList([]account{}))
	assert.True(t, isList([2]int{}))
	assert.False(t, isList([]byte("x")))
	assert.False(t, isList(account{}))
	assert.False(t, isList(nil))
}
