package translate

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/relabel/pkg/observability"
	"github.com/Sumatoshi-tech/relabel/pkg/queue"
)

// Translation outcomes reported to GatewayConfig.Observe.
const (
	StatusOK       = "ok"
	StatusFallback = "fallback"
)

// GatewayConfig configures a Gateway.
type GatewayConfig struct {
	// Delay is the pause between remote calls; see queue.Config.Delay.
	Delay time.Duration

	// Observe, if set, receives the outcome and duration of every remote call.
	Observe func(status string, elapsed time.Duration)

	Logger *slog.Logger
	Tracer trace.Tracer
}

// Gateway routes translations through a rate-limited queue so remote calls
// run one at a time. Translate always yields a usable string: on any failure
// it is the source text itself.
type Gateway struct {
	queue  *queue.Queue[string, string]
	tracer trace.Tracer
}

// NewGateway creates a Gateway around t. Each Gateway owns its queue.
func NewGateway(t Translator, cfg GatewayConfig) *Gateway {
	lg := cfg.Logger
	if lg == nil {
		lg = slog.Default()
	}

	qcfg := queue.Config[string, string]{
		Delay:    cfg.Delay,
		Fallback: func(text string) string { return text },
		Logger:   lg,
	}

	if cfg.Observe != nil {
		qcfg.OnDone = func(_ string, res queue.Result[string], elapsed time.Duration) {
			status := StatusOK
			if res.Err != nil {
				status = StatusFallback
			}

			cfg.Observe(status, elapsed)
		}
	}

	tracer := cfg.Tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer("relabel")
	}

	return &Gateway{
		queue:  queue.New(queue.Worker[string, string](t.Translate), qcfg),
		tracer: tracer,
	}
}

// Translate returns the translation of text, or text itself when the remote
// call fails. The error is informational: the returned string is always
// usable.
func (g *Gateway) Translate(ctx context.Context, text string) (string, error) {
	ctx, span := g.tracer.Start(ctx, observability.SpanTranslate,
		trace.WithAttributes(attribute.Int("relabel.text_runes", len([]rune(text)))))
	defer span.End()

	out, err := g.queue.Do(ctx, text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, StatusFallback)
	}

	return out, err
}

// Pending returns the number of queued translations.
func (g *Gateway) Pending() int {
	return g.queue.Len()
}

// Idle returns a channel closed when no translation is queued or running.
func (g *Gateway) Idle() <-chan struct{} {
	return g.queue.Idle()
}
