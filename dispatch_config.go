package dispatch

import (
	"log/slog"

	"github.com/zalgonoise/cfg"
	"go.opentelemetry.io/otel/trace"

	"github.com/atlas-rt/dispatch/kernel"
	"github.com/atlas-rt/dispatch/metrics"
	"github.com/atlas-rt/dispatch/predictor"
)

// Config collects the dependencies a Queue is built with, independent of
// which concurrency strategy (NewSerial, NewConcurrent, MainQueue) wires it
// into an executor.
type Config struct {
	scheduler kernel.Scheduler
	predictor predictor.Predictor

	handler slog.Handler
	metrics metrics.Metrics
	tracer  trace.Tracer
}

func defaultConfig() *Config {
	sched, err := defaultScheduler()
	if err != nil {
		sched = kernel.NoOp()
	}

	pred, err := defaultPredictor()
	if err != nil {
		pred = predictor.NoOp()
	}

	return &Config{
		scheduler: sched,
		predictor: pred,
		handler:   defaultLogHandler(),
		metrics:   defaultMetrics(),
		tracer:    defaultTracer(),
	}
}

// WithScheduler configures the Queue with a kernel.Scheduler, for example
// one built with kernel.New(kernel.WithBackend("simulated")).
func WithScheduler(sched kernel.Scheduler) cfg.Option[*Config] {
	if sched == nil {
		return cfg.NoOp[*Config]{}
	}

	return cfg.Register(func(config *Config) *Config {
		config.scheduler = sched

		return config
	})
}

// WithPredictor configures the Queue with a predictor.Predictor.
func WithPredictor(p predictor.Predictor) cfg.Option[*Config] {
	if p == nil {
		return cfg.NoOp[*Config]{}
	}

	return cfg.Register(func(config *Config) *Config {
		config.predictor = p

		return config
	})
}

// WithMetrics configures the Queue, and every package it wires into, with
// one shared metrics.Metrics registry.
func WithMetrics(m metrics.Metrics) cfg.Option[*Config] {
	if m == nil {
		return cfg.NoOp[*Config]{}
	}

	return cfg.Register(func(config *Config) *Config {
		config.metrics = m

		return config
	})
}

// WithLogger configures the Queue with a *slog.Logger, unwrapped to its
// underlying slog.Handler.
func WithLogger(logger *slog.Logger) cfg.Option[*Config] {
	if logger == nil {
		return cfg.NoOp[*Config]{}
	}

	return cfg.Register(func(config *Config) *Config {
		config.handler = logger.Handler()

		return config
	})
}

// WithLogHandler configures the Queue with a slog.Handler directly.
func WithLogHandler(handler slog.Handler) cfg.Option[*Config] {
	if handler == nil {
		return cfg.NoOp[*Config]{}
	}

	return cfg.Register(func(config *Config) *Config {
		config.handler = handler

		return config
	})
}

// WithTrace configures the Queue with an OpenTelemetry trace.Tracer.
func WithTrace(tracer trace.Tracer) cfg.Option[*Config] {
	if tracer == nil {
		return cfg.NoOp[*Config]{}
	}

	return cfg.Register(func(config *Config) *Config {
		config.tracer = tracer

		return config
	})
}
