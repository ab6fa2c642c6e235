package executor

import (
	"log/slog"

	"github.com/zalgonoise/cfg"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/atlas-rt/dispatch/clock"
	"github.com/atlas-rt/dispatch/kernel"
	"github.com/atlas-rt/dispatch/log"
	"github.com/atlas-rt/dispatch/predictor"
)

// Config collects the dependencies shared by every Executor realization.
type Config struct {
	scheduler kernel.Scheduler
	predictor predictor.Predictor
	cpuTime   clock.CPUTime

	handler slog.Handler
	metrics Metrics
	tracer  trace.Tracer
}

func defaultConfig() *Config {
	return &Config{
		predictor: predictor.NoOp(),
		cpuTime:   clock.NewCPUTime(),
		handler:   log.NoOp(),
		metrics:   NoOpMetrics(),
		tracer:    noop.NewTracerProvider().Tracer("atlas.executor"),
	}
}

// WithScheduler configures the Executor with the input kernel.Scheduler.
//
// This call returns a cfg.NoOp cfg.Option if the input Scheduler is either
// nil or a no-op.
func WithScheduler(sched kernel.Scheduler) cfg.Option[*Config] {
	if sched == nil || sched == kernel.NoOp() {
		return cfg.NoOp[*Config]{}
	}

	return cfg.Register(func(config *Config) *Config {
		config.scheduler = sched

		return config
	})
}

// WithPredictor configures the Executor with the input predictor.Predictor.
func WithPredictor(p predictor.Predictor) cfg.Option[*Config] {
	if p == nil {
		return cfg.NoOp[*Config]{}
	}

	return cfg.Register(func(config *Config) *Config {
		config.predictor = p

		return config
	})
}

// WithCPUTime configures the Executor with a custom clock.CPUTime, mostly
// useful in tests that need a deterministic execution-time measurement.
func WithCPUTime(c clock.CPUTime) cfg.Option[*Config] {
	if c == nil {
		return cfg.NoOp[*Config]{}
	}

	return cfg.Register(func(config *Config) *Config {
		config.cpuTime = c

		return config
	})
}

// WithMetrics decorates the Executor with the input metrics registry.
func WithMetrics(m Metrics) cfg.Option[*Config] {
	if m == nil {
		return cfg.NoOp[*Config]{}
	}

	return cfg.Register(func(config *Config) *Config {
		config.metrics = m

		return config
	})
}

// WithLogger decorates the Executor with the input logger.
func WithLogger(logger *slog.Logger) cfg.Option[*Config] {
	if logger == nil {
		return cfg.NoOp[*Config]{}
	}

	return cfg.Register(func(config *Config) *Config {
		config.handler = logger.Handler()

		return config
	})
}

// WithLogHandler decorates the Executor with logging using the input log
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

// WithTrace decorates the Executor with the input trace.Tracer.
func WithTrace(tracer trace.Tracer) cfg.Option[*Config] {
	if tracer == nil {
		return cfg.NoOp[*Config]{}
	}

	return cfg.Register(func(config *Config) *Config {
		config.tracer = tracer

		return config
	})
}
