// Package metrics provides the process-wide registry that backs the
// predictor, kernel and executor packages' own small Metrics interfaces.
// A single concrete registry (Prometheus by default, OTLP as an
// alternative) satisfies all three at once, plus an up/down gauge and a
// graceful Shutdown.
package metrics

import (
	"context"

	"github.com/zalgonoise/cfg"

	"github.com/atlas-rt/dispatch/executor"
	"github.com/atlas-rt/dispatch/kernel"
	"github.com/atlas-rt/dispatch/predictor"
)

// ServiceName identifies this module in OTLP resource attributes and is
// used as the default process name for the Prometheus up gauge.
const ServiceName = "atlas-rt-dispatch"

const (
	// traceIDKey is used as the trace ID key value in the prometheus.Labels in a prometheus.Exemplar.
	//
	// Its value of `trace_id` complies with the OpenTelemetry specification for metrics' exemplars, as seen in:
	// https://opentelemetry.io/docs/specs/otel/metrics/data-model/#exemplars
	traceIDKey = "trace_id"
)

// Metrics is the union of every package-local Metrics interface in this
// module, plus the ambient liveness gauge and shutdown hook, so one value
// can be passed to predictor.AddMetrics, kernel.WithMetrics and
// executor.WithMetrics. The dispatch constructors pass their Metrics value
// to executor.WithMetrics only.
type Metrics interface {
	predictor.Metrics
	kernel.Metrics
	executor.Metrics

	// IsUp records whether the dispatch queue is currently running.
	IsUp(up bool)
	// Shutdown releases any resources the registry holds (an HTTP server,
	// an OTLP exporter).
	Shutdown(ctx context.Context) error
}

// New builds a Metrics registry per the configured backend. Prometheus is
// the default.
func New(options ...cfg.Option[Config]) (Metrics, error) {
	config := cfg.Set(defaultConfig(), options...)

	switch config.metricsType {
	case metricsViaOtel:
		return NewOtel()
	case metricsViaProm:
		return NewPrometheus(config.serverPort)
	default:
		return NewPrometheus(config.serverPort)
	}
}
