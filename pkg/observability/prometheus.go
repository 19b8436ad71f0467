package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// textfileReader is a Prometheus-backed metric reader whose registry is
// dumped to a file once, at shutdown.
type textfileReader struct {
	reader   sdkmetric.Reader
	registry *prometheus.Registry
	path     string
}

// newTextfileReader creates an exporter on a private registry so repeated
// Init calls never collide on collector registration.
func newTextfileReader(path string) (*textfileReader, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	return &textfileReader{reader: exporter, registry: registry, path: path}, nil
}

// write dumps the registry in text exposition format. WriteToTextfile
// renames a temporary file into place, so collectors never see a partial
// file.
func (r *textfileReader) write() error {
	if err := prometheus.WriteToTextfile(r.path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", r.path, err)
	}

	return nil
}
