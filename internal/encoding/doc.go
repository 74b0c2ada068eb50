// Package encoding provides the codecs used to turn narrowed field
// representations into bytes and back.
//
// Two content types are supported:
//
//   - JSON (application/json), backed by json-iterator
//   - YAML (application/yaml), backed by gopkg.in/yaml.v3
//
// # Example Usage
//
//	codec := encoding.NewJSONCodec(nil)
//
//	data, err := codec.Encode(representation)
//
//	var record map[string]interface{}
//	err = codec.Decode(data, &record)
//
//	// Lookup by content type or short format name
//	factory := encoding.NewCodecFactory(logger)
//	codec, err = factory.GetCodec("application/yaml; charset=utf-8")
//	codec, err = factory.GetCodec(encoding.ContentTypeForFormat("yaml"))
//
// # Thread Safety
//
// Codecs are safe for concurrent use. A CodecFactory must not be
// modified with RegisterCodec while it is being read.
package encoding
