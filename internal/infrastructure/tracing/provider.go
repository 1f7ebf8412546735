// Package tracing installs the OpenTelemetry tracer provider. Finished spans are
// written to the application log, there is no collector.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/fastygo/tracker/internal/config"
)

// Setup registers a global provider and returns its shutdown hook.
// When tracing is disabled the no-op global provider is left in place.
func Setup(cfg config.TracingConfig, logger *zap.Logger) func(context.Context) error {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
		sdktrace.WithBatcher(NewLogExporter(logger)),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown
}

// LogExporter writes each span as one structured log line.
type LogExporter struct {
	logger *zap.Logger
}

func NewLogExporter(logger *zap.Logger) *LogExporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogExporter{logger: logger.Named("trace")}
}

func (e *LogExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, span := range spans {
		fields := []zap.Field{
			zap.String("span", span.Name()),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.String("span_id", span.SpanContext().SpanID().String()),
			zap.Duration("duration", span.EndTime().Sub(span.StartTime())),
		}
		for _, kv := range span.Attributes() {
			fields = append(fields, attributeField(kv))
		}
		if span.Status().Code == codes.Error {
			e.logger.Warn("span finished", append(fields, zap.String("status", span.Status().Description))...)
			continue
		}
		e.logger.Debug("span finished", fields...)
	}
	return nil
}

func (e *LogExporter) Shutdown(context.Context) error { return nil }

func attributeField(kv attribute.KeyValue) zap.Field {
	key := string(kv.Key)
	switch kv.Value.Type() {
	case attribute.BOOL:
		return zap.Bool(key, kv.Value.AsBool())
	case attribute.INT64:
		return zap.Int64(key, kv.Value.AsInt64())
	case attribute.FLOAT64:
		return zap.Float64(key, kv.Value.AsFloat64())
	default:
		return zap.String(key, kv.Value.Emit())
	}
}
