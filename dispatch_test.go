package dispatch

import (
	"io"
	"log/slog"
	"testing"

	"github.com/zalgonoise/cfg"
	"github.com/zalgonoise/x/is"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/atlas-rt/dispatch/executor"
	"github.com/atlas-rt/dispatch/kernel"
	"github.com/atlas-rt/dispatch/log"
	"github.com/atlas-rt/dispatch/metrics"
	"github.com/atlas-rt/dispatch/predictor"
)

func TestConfig(t *testing.T) {
	for _, testcase := range []struct {
		name string
		opts []cfg.Option[*Config]
	}{
		{
			name: "WithScheduler/Nil",
			opts: []cfg.Option[*Config]{WithScheduler(nil)},
		},
		{
			name: "WithScheduler/NoOp",
			opts: []cfg.Option[*Config]{WithScheduler(kernel.NoOp())},
		},
		{
			name: "WithPredictor/Nil",
			opts: []cfg.Option[*Config]{WithPredictor(nil)},
		},
		{
			name: "WithPredictor/NoOp",
			opts: []cfg.Option[*Config]{WithPredictor(predictor.NoOp())},
		},
		{
			name: "WithMetrics/Nil",
			opts: []cfg.Option[*Config]{WithMetrics(nil)},
		},
		{
			name: "WithMetrics/NoOp",
			opts: []cfg.Option[*Config]{WithMetrics(metrics.NoOp())},
		},
		{
			name: "WithLogger/Nil",
			opts: []cfg.Option[*Config]{WithLogger(nil)},
		},
		{
			name: "WithLogger/NoOp",
			opts: []cfg.Option[*Config]{WithLogger(slog.New(log.NoOp()))},
		},
		{
			name: "WithLogHandler/Nil",
			opts: []cfg.Option[*Config]{WithLogHandler(nil)},
		},
		{
			name: "WithLogHandler/NoOp",
			opts: []cfg.Option[*Config]{WithLogHandler(log.NoOp())},
		},
		{
			name: "WithTrace/Nil",
			opts: []cfg.Option[*Config]{WithTrace(nil)},
		},
		{
			name: "WithTrace/NoOp",
			opts: []cfg.Option[*Config]{WithTrace(noop.NewTracerProvider().Tracer("test"))},
		},
	} {
		t.Run(testcase.name, func(t *testing.T) {
			_ = cfg.Set(defaultConfig(), testcase.opts...)
		})
	}
}

func newTestQueue(t *testing.T) *Queue {
	t.Helper()

	return &Queue{
		label:   "test",
		exec:    executor.NoOp(),
		logger:  slog.New(log.NoOp()),
		metrics: metrics.NoOp(),
		tracer:  noop.NewTracerProvider().Tracer("test"),
	}
}

func TestAddLogs(t *testing.T) {
	q := newTestQueue(t)

	is.True(t, AddLogs(q, nil) == q)

	h := slog.NewJSONHandler(io.Discard, nil)
	got := AddLogs(q, h)

	is.Equal(t, q, got)
	is.Equal(t, h, got.logger.Handler())
}

func TestAddMetrics(t *testing.T) {
	q := newTestQueue(t)

	is.True(t, AddMetrics(q, nil) == q)

	m := metrics.NoOp()
	got := AddMetrics(q, m)

	is.Equal(t, q, got)
	is.Equal(t, m, got.metrics)
}

func TestAddTraces(t *testing.T) {
	q := newTestQueue(t)

	is.True(t, AddTraces(q, nil) == q)

	tracer := noop.NewTracerProvider().Tracer("replacement")
	got := AddTraces(q, tracer)

	is.Equal(t, q, got)
	is.Equal(t, tracer, got.tracer)
}

func TestNewSerialRequiresScheduler(t *testing.T) {
	// executor.WithScheduler treats kernel.NoOp() as no option at all, so the
	// executor underneath is left without a scheduler and NewSerial fails.
	_, err := NewSerial("test", WithScheduler(kernel.NoOp()))
	is.True(t, err != nil)
}
