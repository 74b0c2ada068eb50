package encoding

import (
	"bytes"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// JSONOptions contains JSON-specific encoding options.
type JSONOptions struct {
	// PrettyPrint indents the output with two spaces.
	PrettyPrint bool
}

// jsonCodec implements Codec for JSON encoding.
type jsonCodec struct {
	opts JSONOptions
	api  jsoniter.API
}

// NewJSONCodec creates a new JSON codec.
func NewJSONCodec(opts *JSONOptions) Codec {
	if opts == nil {
		opts = &JSONOptions{}
	}
	return &jsonCodec{
		opts: *opts,
		api:  jsoniter.ConfigCompatibleWithStandardLibrary,
	}
}

// Encode encodes the value to JSON bytes.
func (c *jsonCodec) Encode(v interface{}) ([]byte, error) {
	metrics := GetEncodingMetrics()

	if v == nil {
		metrics.RecordError(ContentTypeJSON, "encode")
		return nil, ErrNilValue
	}

	var buf bytes.Buffer
	encoder := c.api.NewEncoder(&buf)
	if c.opts.PrettyPrint {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(v); err != nil {
		metrics.RecordEncode(ContentTypeJSON, "error")
		metrics.RecordError(ContentTypeJSON, "encode")
		return nil, fmt.Errorf("%w: %w", ErrEncodingFailed, err)
	}

	metrics.RecordEncode(ContentTypeJSON, "success")

	// Remove trailing newline added by encoder
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Decode decodes JSON bytes into the value. Numbers decoded into
// interface{} values are kept as json.Number.
func (c *jsonCodec) Decode(data []byte, v interface{}) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	metrics := GetEncodingMetrics()

	decoder := c.api.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	if err := decoder.Decode(v); err != nil {
		metrics.RecordDecode(ContentTypeJSON, "error")
		metrics.RecordError(ContentTypeJSON, "decode")
		return fmt.Errorf("%w: %w", ErrDecodingFailed, err)
	}

	metrics.RecordDecode(ContentTypeJSON, "success")
	return nil
}

// ContentType returns the JSON content type.
func (c *jsonCodec) ContentType() string {
	return ContentTypeJSON
}
