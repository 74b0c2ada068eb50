package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/dynfields/internal/config"
	"github.com/vyrodovalexey/dynfields/internal/encoding"
	"github.com/vyrodovalexey/dynfields/internal/observability"
	"github.com/vyrodovalexey/dynfields/internal/serializer"
)

// runTraced wraps run in a root span.
func runTraced(
	ctx context.Context,
	tracer *observability.Tracer,
	flags cliFlags,
	cfg *config.Config,
	stdin io.Reader,
	stdout io.Writer,
	logger observability.Logger,
) error {
	ctx, span := tracer.StartSpan(ctx, "dynfields.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("dynfields.profile", flags.profile),
			attribute.String("dynfields.output_format", flags.outputFormat),
		),
	)
	defer span.End()

	if err := run(ctx, flags, cfg, stdin, stdout, logger); err != nil {
		observability.RecordSpanError(span, err)
		return err
	}
	return nil
}

// run reads records, narrows them with the selected fields and writes the
// result.
func run(
	ctx context.Context,
	flags cliFlags,
	cfg *config.Config,
	stdin io.Reader,
	stdout io.Writer,
	logger observability.Logger,
) error {
	if err := serializer.SetDefaultPlanCacheSize(cfg.Cache.MaxTypes); err != nil {
		return fmt.Errorf("failed to size plan cache: %w", err)
	}

	sel, err := resolveSelection(flags, cfg)
	if err != nil {
		return err
	}

	inCodec, err := inputCodec(flags.inputFormat)
	if err != nil {
		return err
	}
	outCodec, err := outputCodec(flags, cfg)
	if err != nil {
		return err
	}

	data, err := readInput(flags.input, stdin)
	if err != nil {
		return err
	}

	var payload interface{}
	if err := inCodec.Decode(data, &payload); err != nil {
		return fmt.Errorf("failed to decode input: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	builder, err := builderFor(payload)
	if err != nil {
		return err
	}

	s, err := serializer.New(builder,
		serializer.WithSelection(sel),
		serializer.WithLogger(logger),
		serializer.WithCodec(outCodec),
	)
	if err != nil {
		return err
	}

	out, err := s.Encode(ctx, payload)
	if err != nil {
		return fmt.Errorf("failed to serialize records: %w", err)
	}

	logger.Debug("records serialized",
		observability.Strings("fields", s.Fields()),
		observability.Int("removed", s.FilterResult().Removed()),
		observability.String("content_type", outCodec.ContentType()),
	)

	if _, err := stdout.Write(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if len(out) > 0 && out[len(out)-1] != '\n' {
		if _, err := io.WriteString(stdout, "\n"); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

// resolveSelection starts from the named profile and lets explicit flags
// replace the corresponding list.
func resolveSelection(flags cliFlags, cfg *config.Config) (serializer.FieldSelection, error) {
	var sel serializer.FieldSelection
	if flags.profile != "" {
		p, err := cfg.Profile(flags.profile)
		if err != nil {
			return serializer.FieldSelection{}, err
		}
		sel = p
	}

	return sel.Override(serializer.FieldSelection{
		Fields:        flags.fields.list(),
		ExcludeFields: flags.excludeFields.list(),
	}), nil
}

func inputCodec(format string) (encoding.Codec, error) {
	codec, err := encoding.NewCodecFactory(nil).GetCodec(encoding.ContentTypeForFormat(format))
	if err != nil {
		return nil, fmt.Errorf("input format %q: %w", format, err)
	}
	return codec, nil
}

// outputCodec picks the output codec from -output-format, falling back to
// the configured content type. JSON output is indented when either -pretty
// or the configuration asks for it.
func outputCodec(flags cliFlags, cfg *config.Config) (encoding.Codec, error) {
	contentType := cfg.Encoding.ContentType
	if flags.outputFormat != "" {
		contentType = encoding.ContentTypeForFormat(flags.outputFormat)
	}

	codec, err := encoding.NewCodecFactory(nil).GetCodec(contentType)
	if err != nil {
		return nil, fmt.Errorf("output format %q: %w", contentType, err)
	}
	if codec.ContentType() == encoding.ContentTypeJSON && (flags.pretty || cfg.Encoding.PrettyPrint) {
		return encoding.NewJSONCodec(&encoding.JSONOptions{PrettyPrint: true}), nil
	}
	return codec, nil
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is supplied by the operator
	if err != nil {
		return nil, fmt.Errorf("failed to read input %s: %w", path, err)
	}
	return data, nil
}

// builderFor returns a field builder covering the keys of a record, or the
// union of keys across a list of records.
func builderFor(payload interface{}) (serializer.FieldBuilder, error) {
	switch v := payload.(type) {
	case map[string]interface{}:
		return serializer.MapFieldBuilderFromRecord(v), nil
	case []interface{}:
		records := make([]map[string]interface{}, 0, len(v))
		for i, item := range v {
			record, ok := item.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%w: item %d is %T, not an object",
					serializer.ErrTypeMismatch, i, item)
			}
			records = append(records, record)
		}
		keys := lo.Uniq(lo.FlatMap(records, func(record map[string]interface{}, _ int) []string {
			return lo.Keys(record)
		}))
		sort.Strings(keys)
		return serializer.NewMapFieldBuilder(keys...), nil
	case nil:
		return nil, fmt.Errorf("%w: input is empty", serializer.ErrNilInstance)
	default:
		return nil, fmt.Errorf("%w: input must be an object or a list of objects, got %T",
			serializer.ErrTypeMismatch, payload)
	}
}
