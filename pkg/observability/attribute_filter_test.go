package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Sumatoshi-tech/relabel/pkg/observability"
)

func filteredSpanAttrs(t *testing.T, logger *slog.Logger, attrs ...attribute.KeyValue) map[string]any {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(observability.NewAttributeFilter(sdktrace.NewSimpleSpanProcessor(exporter), logger)),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	_, span := tp.Tracer("test").Start(context.Background(), "relabel.run")
	span.SetAttributes(attrs...)
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	m := make(map[string]any, len(spans[0].Attributes))
	for _, a := range spans[0].Attributes {
		m[string(a.Key)] = a.Value.AsInterface()
	}

	return m
}

func TestAttributeFilter_AllowsKnownPrefixes(t *testing.T) {
	t.Parallel()

	attrs := filteredSpanAttrs(t, nil,
		attribute.String("relabel.language", "typescript"),
		attribute.Int("relabel.elements", 3),
		attribute.String("http.method", "GET"),
		attribute.String("error.type", "timeout"),
	)

	assert.Equal(t, "typescript", attrs["relabel.language"])
	assert.Equal(t, int64(3), attrs["relabel.elements"])
	assert.Equal(t, "GET", attrs["http.method"])
	assert.Equal(t, "timeout", attrs["error.type"])
}

func TestAttributeFilter_BlocksSensitiveAndUnknownKeys(t *testing.T) {
	t.Parallel()

	attrs := filteredSpanAttrs(t, nil,
		attribute.String("relabel.text", "锁定"),
		attribute.String("relabel.secret", "s3cr3t"),
		attribute.String("label", "x"),
		attribute.String("relabel.input", "menu.ts"),
	)

	assert.NotContains(t, attrs, "relabel.text")
	assert.NotContains(t, attrs, "relabel.secret")
	assert.NotContains(t, attrs, "label")
	assert.Equal(t, "menu.ts", attrs["relabel.input"])
}

func TestAttributeFilter_WarnsWhenLoggerSet(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	filteredSpanAttrs(t, logger, attribute.String("relabel.appid", "2015063000000001"))

	assert.Contains(t, buf.String(), "relabel.appid")
	assert.Contains(t, buf.String(), "blocked")
}
