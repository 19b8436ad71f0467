package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricRunsTotal           = "relabel.runs.total"
	metricRunDuration         = "relabel.run.duration.seconds"
	metricTranslationsTotal   = "relabel.translations.total"
	metricTranslationDuration = "relabel.translation.duration.seconds"
	metricRewritesTotal       = "relabel.rewrites.total"
	metricFallbacksTotal      = "relabel.fallbacks.total"

	attrStatus = "status"
)

// translationBucketBoundaries covers one remote call: 10ms to 30s.
var translationBucketBoundaries = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// runBucketBoundaries covers a whole file, dominated by the paced
// translation queue: 10ms to 10min.
var runBucketBoundaries = []float64{0.01, 0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600}

// RunMetrics holds the relabel instruments. A nil *RunMetrics records
// nothing, so callers never need to check for it.
type RunMetrics struct {
	runsTotal           metric.Int64Counter
	runDuration         metric.Float64Histogram
	translationsTotal   metric.Int64Counter
	translationDuration metric.Float64Histogram
	rewritesTotal       metric.Int64Counter
	fallbacksTotal      metric.Int64Counter
}

// NewRunMetrics creates the relabel instruments from mt.
func NewRunMetrics(mt metric.Meter) (*RunMetrics, error) {
	in := &instruments{meter: mt}

	m := &RunMetrics{
		runsTotal:           in.counter(metricRunsTotal, "Completed transformation runs", "{run}"),
		runDuration:         in.seconds(metricRunDuration, "Transformation run duration", runBucketBoundaries),
		translationsTotal:   in.counter(metricTranslationsTotal, "Translation requests by outcome", "{request}"),
		translationDuration: in.seconds(metricTranslationDuration, "Translation request duration", translationBucketBoundaries),
		rewritesTotal:       in.counter(metricRewritesTotal, "Rewritten record fields", "{field}"),
		fallbacksTotal:      in.counter(metricFallbacksTotal, "Keys generated from untranslated text", "{field}"),
	}

	if err := in.err(); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordRun records one finished run.
func (m *RunMetrics) RecordRun(ctx context.Context, status string, d time.Duration) {
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String(attrStatus, status))

	m.runsTotal.Add(ctx, 1, attrs)
	m.runDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordTranslation records one remote translation call.
func (m *RunMetrics) RecordTranslation(ctx context.Context, status string, d time.Duration) {
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String(attrStatus, status))

	m.translationsTotal.Add(ctx, 1, attrs)
	m.translationDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordRewrites adds the rewritten and fallback field counts of one run.
func (m *RunMetrics) RecordRewrites(ctx context.Context, rewritten, fallbacks int) {
	if m == nil {
		return
	}

	m.rewritesTotal.Add(ctx, int64(rewritten))
	m.fallbacksTotal.Add(ctx, int64(fallbacks))
}
