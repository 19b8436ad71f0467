// Package observability wires OpenTelemetry tracing and metrics and the
// structured slog logger used by every relabel command.
package observability

import (
	"io"
	"log/slog"
)

// AppMode identifies how the binary was launched.
type AppMode string

const (
	// ModeCLI is a one-shot command run.
	ModeCLI AppMode = "cli"
	// ModeDebug is a diagnostic command such as "relabel translate".
	ModeDebug AppMode = "debug"
)

const (
	defaultServiceName        = "relabel"
	defaultShutdownTimeoutSec = 5
)

// Config holds all observability configuration.
type Config struct {
	// ServiceName is the OTel resource service name.
	ServiceName string

	// ServiceVersion is the version of the running binary.
	ServiceVersion string

	// Environment is the deployment environment, e.g. "ci" or "dev".
	Environment string

	Mode AppMode

	// OTLPEndpoint is the OTLP gRPC collector address, e.g. "localhost:4317".
	// Empty disables OTLP export.
	OTLPEndpoint string

	OTLPHeaders  map[string]string
	OTLPInsecure bool

	// DebugTrace forces 100% trace sampling.
	DebugTrace bool

	// SampleRatio is the root sampling ratio when DebugTrace is false. Zero
	// samples every root span.
	SampleRatio float64

	// TraceVerbose keeps the per-translation spans that are otherwise
	// dropped when exporting.
	TraceVerbose bool

	LogLevel slog.Level
	LogJSON  bool

	// LogOutput receives log records; nil means os.Stderr.
	LogOutput io.Writer

	// MetricsTextfile, when set, receives a Prometheus text exposition of
	// all metrics at shutdown (node_exporter textfile collector format).
	MetricsTextfile string

	// ShutdownTimeoutSec bounds the flush on shutdown.
	ShutdownTimeoutSec int
}

// DefaultConfig returns a Config for zero-config startup: no export, text
// logs at info level.
func DefaultConfig() Config {
	return Config{
		ServiceName:        defaultServiceName,
		Mode:               ModeCLI,
		LogLevel:           slog.LevelInfo,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}

// ParseLogLevel maps a level name to a slog.Level. Unknown names yield
// slog.LevelInfo and false.
func ParseLogLevel(name string) (slog.Level, bool) {
	var level slog.Level

	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo, false
	}

	return level, true
}
