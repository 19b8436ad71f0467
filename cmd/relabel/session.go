package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/relabel/pkg/config"
	"github.com/Sumatoshi-tech/relabel/pkg/jsgen"
	"github.com/Sumatoshi-tech/relabel/pkg/observability"
	"github.com/Sumatoshi-tech/relabel/pkg/transform"
	"github.com/Sumatoshi-tech/relabel/pkg/translate"
	"github.com/Sumatoshi-tech/relabel/pkg/version"
)

// session is the per-invocation state: configuration, telemetry and the
// logger built from them.
type session struct {
	cfg       *config.Config
	providers observability.Providers
	logger    *slog.Logger
}

// bindFlags maps config keys to command flags so an explicitly set flag
// overrides the file and the environment.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet, keys map[string]string) error {
	for key, flag := range keys {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return err
		}
	}

	return nil
}

func openSession(cmd *cobra.Command, opts *rootOptions, v *viper.Viper, mode observability.AppMode) (*session, error) {
	if err := bindFlags(v, cmd.Flags(), map[string]string{"logging.json": "log-json"}); err != nil {
		return nil, err
	}

	cfg, err := config.Load(v, opts.configPath)
	if err != nil {
		return nil, err
	}

	level, ok := observability.ParseLogLevel(cfg.Logging.Level)
	if !ok {
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidLogLevel, cfg.Logging.Level)
	}

	switch {
	case opts.quiet:
		level = slog.LevelError
	case opts.verbose:
		level = slog.LevelDebug
	}

	ocfg := observability.DefaultConfig()
	ocfg.ServiceVersion = version.Version
	ocfg.Mode = mode
	ocfg.LogLevel = level
	ocfg.LogJSON = cfg.Logging.JSON
	ocfg.LogOutput = cmd.ErrOrStderr()
	ocfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	ocfg.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Telemetry.OTLPHeaders)
	ocfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	ocfg.MetricsTextfile = cfg.Telemetry.MetricsTextfile
	ocfg.TraceVerbose = cfg.Telemetry.TraceVerbose

	providers, err := observability.Init(ocfg)
	if err != nil {
		return nil, err
	}

	return &session{cfg: cfg, providers: providers, logger: providers.Logger}, nil
}

// close flushes telemetry; failures are logged, never returned, so they
// cannot change the outcome of a finished run.
func (s *session) close() {
	if err := s.providers.Shutdown(context.Background()); err != nil {
		s.logger.Warn("telemetry shutdown failed", "error", err)
	}
}

func (s *session) baiduClient() (*translate.BaiduClient, error) {
	tc := s.cfg.Translator

	return translate.NewBaiduClient(translate.BaiduConfig{
		Endpoint: tc.Endpoint,
		AppID:    tc.AppID,
		Secret:   tc.Secret,
		From:     tc.From,
		To:       tc.To,
		Proxy:    tc.Proxy,
		Timeout:  tc.Timeout,
		Logger:   s.logger,
	})
}

// gateway wraps t in a paced queue whose outcomes feed the translation
// metrics.
func (s *session) gateway(t translate.Translator) *translate.Gateway {
	return translate.NewGateway(t, translate.GatewayConfig{
		Delay:  s.cfg.QueueDelay(),
		Logger: s.logger,
		Tracer: s.providers.Tracer,
		Observe: func(status string, elapsed time.Duration) {
			s.providers.Metrics.RecordTranslation(context.Background(), status, elapsed)
		},
	})
}

// pipeline builds the transform pipeline. A nil translator makes every key
// fall back to the source text.
func (s *session) pipeline(t translate.Translator) *transform.Pipeline {
	tc := s.cfg.Transform

	rw := &transform.Rewriter{
		Logger:   s.logger,
		Field:    tc.Field,
		Template: tc.KeyTemplate,
	}

	if t != nil {
		rw.Translator = s.gateway(t)
	}

	gen := jsgen.Options{Indent: s.cfg.Output.Indent, Quote: jsgen.QuoteDouble}
	if s.cfg.Output.Quote == config.QuoteSingle {
		gen.Quote = jsgen.QuoteSingle
	}

	return &transform.Pipeline{
		Rewriter: rw,
		Tracer:   s.providers.Tracer,
		Metrics:  s.providers.Metrics,
		Logger:   s.logger,
		Target:   tc.Target,
		Binding:  tc.Binding,
		DeclKind: tc.DeclarationKind,
		Generate: gen,
	}
}
