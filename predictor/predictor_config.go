package predictor

import (
	"log/slog"
	"os"

	"github.com/zalgonoise/cfg"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/atlas-rt/dispatch/log"
)

// snapshotEnvVar names the environment variable that, when set, points the
// default predictor at a file path to load from at New, and that Save
// writes to when it is called with an empty path.
const snapshotEnvVar = "ATLAS_PREDICTOR"

// Config collects the options a Predictor is built from.
type Config struct {
	snapshotPath string

	handler slog.Handler
	metrics Metrics
	tracer  trace.Tracer
}

func defaultConfig() *Config {
	return &Config{
		snapshotPath: os.Getenv(snapshotEnvVar),
		handler:      log.NoOp(),
		metrics:      NoOpMetrics(),
		tracer:       noop.NewTracerProvider().Tracer("no-op tracer"),
	}
}

// WithSnapshot configures the file path a Predictor loads its initial state
// from. Save does not use it; it writes to the path it is given. An empty
// path is a cfg.NoOp.
func WithSnapshot(path string) cfg.Option[*Config] {
	if path == "" {
		return cfg.NoOp[*Config]{}
	}

	return cfg.Register(func(config *Config) *Config {
		config.snapshotPath = path

		return config
	})
}

// WithMetrics decorates the Predictor with the input metrics registry.
func WithMetrics(m Metrics) cfg.Option[*Config] {
	if m == nil {
		return cfg.NoOp[*Config]{}
	}

	return cfg.Register(func(config *Config) *Config {
		config.metrics = m

		return config
	})
}

// WithLogger decorates the Predictor with the input logger.
func WithLogger(logger *slog.Logger) cfg.Option[*Config] {
	if logger == nil {
		return cfg.NoOp[*Config]{}
	}

	return cfg.Register(func(config *Config) *Config {
		config.handler = logger.Handler()

		return config
	})
}

// WithLogHandler decorates the Predictor with logging using the input log
// handler.
func WithLogHandler(handler slog.Handler) cfg.Option[*Config] {
	if handler == nil {
		return cfg.NoOp[*Config]{}
	}

	return cfg.Register(func(config *Config) *Config {
		config.handler = handler

		return config
	})
}

// WithTrace decorates the Predictor with the input trace.Tracer.
func WithTrace(tracer trace.Tracer) cfg.Option[*Config] {
	if tracer == nil {
		return cfg.NoOp[*Config]{}
	}

	return cfg.Register(func(config *Config) *Config {
		config.tracer = tracer

		return config
	})
}
