package encoding

import (
	"errors"
	"sort"
	"strings"

	"github.com/vyrodovalexey/dynfields/internal/observability"
)

// ContentType constants for supported content types.
const (
	// ContentTypeJSON is the JSON content type.
	ContentTypeJSON = "application/json"

	// ContentTypeYAML is the YAML content type.
	ContentTypeYAML = "application/yaml"
)

// Common encoding errors.
var (
	// ErrUnsupportedContentType indicates that the content type is not supported.
	ErrUnsupportedContentType = errors.New("unsupported content type")

	// ErrEncodingFailed indicates that encoding failed.
	ErrEncodingFailed = errors.New("encoding failed")

	// ErrDecodingFailed indicates that decoding failed.
	ErrDecodingFailed = errors.New("decoding failed")

	// ErrNilValue indicates that the value to encode is nil.
	ErrNilValue = errors.New("nil value")
)

// Encoder encodes data to bytes.
type Encoder interface {
	// Encode encodes the value to bytes.
	Encode(v interface{}) ([]byte, error)

	// ContentType returns the content type for this encoder.
	ContentType() string
}

// Decoder decodes bytes to data.
type Decoder interface {
	// Decode decodes the data into the value.
	Decode(data []byte, v interface{}) error
}

// Codec combines Encoder and Decoder.
type Codec interface {
	Encoder
	Decoder
}

// CodecFactory creates codecs based on content type.
type CodecFactory interface {
	// GetCodec returns a codec for the given content type.
	GetCodec(contentType string) (Codec, error)

	// SupportedTypes returns the sorted list of supported content types.
	SupportedTypes() []string

	// RegisterCodec registers a codec for a content type.
	RegisterCodec(contentType string, codec Codec)
}

// codecFactory implements CodecFactory.
type codecFactory struct {
	logger observability.Logger
	codecs map[string]Codec
}

// NewCodecFactory creates a new CodecFactory with default codecs.
func NewCodecFactory(logger observability.Logger) CodecFactory {
	if logger == nil {
		logger = observability.NopLogger()
	}

	factory := &codecFactory{
		logger: logger,
		codecs: make(map[string]Codec),
	}

	jsonCodec := NewJSONCodec(nil)
	factory.codecs[ContentTypeJSON] = jsonCodec
	factory.codecs["text/json"] = jsonCodec

	yamlCodec := NewYAMLCodec()
	factory.codecs[ContentTypeYAML] = yamlCodec
	factory.codecs["application/x-yaml"] = yamlCodec
	factory.codecs["text/yaml"] = yamlCodec

	return factory
}

// GetCodec returns a codec for the given content type.
func (f *codecFactory) GetCodec(contentType string) (Codec, error) {
	ct := normalizeContentType(contentType)

	codec, exists := f.codecs[ct]
	if !exists {
		f.logger.Debug("unsupported content type",
			observability.String("contentType", contentType))
		return nil, ErrUnsupportedContentType
	}

	return codec, nil
}

// SupportedTypes returns the list of supported content types.
func (f *codecFactory) SupportedTypes() []string {
	types := make([]string, 0, len(f.codecs))
	for ct := range f.codecs {
		types = append(types, ct)
	}
	sort.Strings(types)
	return types
}

// RegisterCodec registers a codec for a content type.
func (f *codecFactory) RegisterCodec(contentType string, codec Codec) {
	f.codecs[normalizeContentType(contentType)] = codec
}

// normalizeContentType strips parameters and lowercases a content type.
func normalizeContentType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

// ContentTypeForFormat maps a short format name ("json", "yaml", "yml")
// to its content type. Anything else is returned unchanged so that full
// content types pass through.
func ContentTypeForFormat(format string) string {
	switch strings.ToLower(format) {
	case "json":
		return ContentTypeJSON
	case "yaml", "yml":
		return ContentTypeYAML
	default:
		return format
	}
}

// IsSupported reports whether the default factory has a codec for the
// content type.
func IsSupported(contentType string) bool {
	_, err := NewCodecFactory(nil).GetCodec(contentType)
	return err == nil
}
