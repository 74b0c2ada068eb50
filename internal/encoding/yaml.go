package encoding

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// yamlCodec implements Codec for YAML encoding.
type yamlCodec struct{}

// NewYAMLCodec creates a new YAML codec.
func NewYAMLCodec() Codec {
	return &yamlCodec{}
}

// Encode encodes the value to YAML bytes.
func (c *yamlCodec) Encode(v interface{}) ([]byte, error) {
	metrics := GetEncodingMetrics()

	if v == nil {
		metrics.RecordError(ContentTypeYAML, "encode")
		return nil, ErrNilValue
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(yamlValue(v)); err != nil {
		metrics.RecordEncode(ContentTypeYAML, "error")
		metrics.RecordError(ContentTypeYAML, "encode")
		return nil, fmt.Errorf("%w: %w", ErrEncodingFailed, err)
	}
	if err := encoder.Close(); err != nil {
		metrics.RecordEncode(ContentTypeYAML, "error")
		metrics.RecordError(ContentTypeYAML, "encode")
		return nil, fmt.Errorf("%w: %w", ErrEncodingFailed, err)
	}

	metrics.RecordEncode(ContentTypeYAML, "success")
	return buf.Bytes(), nil
}

// Decode decodes YAML bytes into the value.
func (c *yamlCodec) Decode(data []byte, v interface{}) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	metrics := GetEncodingMetrics()

	if err := yaml.Unmarshal(data, v); err != nil {
		metrics.RecordDecode(ContentTypeYAML, "error")
		metrics.RecordError(ContentTypeYAML, "decode")
		return fmt.Errorf("%w: %w", ErrDecodingFailed, err)
	}

	metrics.RecordDecode(ContentTypeYAML, "success")
	return nil
}

// ContentType returns the YAML content type.
func (c *yamlCodec) ContentType() string {
	return ContentTypeYAML
}

// yamlValue replaces json.Number values inside maps and slices produced by
// the JSON codec with int64 or float64, so that they are written as YAML
// numbers rather than quoted strings.
func yamlValue(v interface{}) interface{} {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = yamlValue(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = yamlValue(item)
		}
		return out
	case []map[string]interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = yamlValue(item)
		}
		return out
	default:
		return v
	}
}
