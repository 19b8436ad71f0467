package observability

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/embedded"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

// SpanTranslate is the per-call gateway span. It is dropped from exported
// traces unless Config.TraceVerbose is set.
const SpanTranslate = "relabel.translate"

// filteringTracerProvider hands out tracers that replace hot-path spans
// with no-op spans, keeping one span per pipeline stage.
type filteringTracerProvider struct {
	embedded.TracerProvider

	delegate trace.TracerProvider
	noop     trace.TracerProvider
	suppress map[string]bool
}

// NewFilteringTracerProvider wraps delegate so that the spans named in
// suppressed are not recorded. With no names it suppresses SpanTranslate.
func NewFilteringTracerProvider(delegate trace.TracerProvider, suppressed ...string) trace.TracerProvider {
	if len(suppressed) == 0 {
		suppressed = []string{SpanTranslate}
	}

	suppress := make(map[string]bool, len(suppressed))
	for _, name := range suppressed {
		suppress[name] = true
	}

	return &filteringTracerProvider{
		delegate: delegate,
		noop:     nooptrace.NewTracerProvider(),
		suppress: suppress,
	}
}

// Tracer implements [trace.TracerProvider].
func (f *filteringTracerProvider) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	return &filteringTracer{
		delegate: f.delegate.Tracer(name, opts...),
		noop:     f.noop.Tracer(name, opts...),
		suppress: f.suppress,
	}
}

type filteringTracer struct {
	embedded.Tracer

	delegate trace.Tracer
	noop     trace.Tracer
	suppress map[string]bool
}

// Start returns a no-op span for suppressed names. The parent span context
// is kept in the returned context so children still join the trace.
func (f *filteringTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if f.suppress[name] {
		return f.noop.Start(ctx, name, opts...)
	}

	return f.delegate.Start(ctx, name, opts...)
}
