// Package predictor implements the online execution-time predictor: a
// job-type-keyed registry of recursive linear-least-squares estimators,
// each with its own FIFO of in-flight jobs awaiting training.
//
// See predictor/llsp for the numerical kernel.
package predictor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zalgonoise/cfg"
	"github.com/zalgonoise/x/errs"

	"github.com/atlas-rt/dispatch/log"
	"github.com/atlas-rt/dispatch/predictor/llsp"
	"github.com/atlas-rt/dispatch/workitem"
)

const (
	errDomain = errs.Domain("predictor")

	ErrEmpty   = errs.Kind("empty")
	ErrUnknown = errs.Kind("not found")
	ErrInvalid = errs.Kind("invalid")

	ErrEntityMetrics   = errs.Entity("metrics")
	ErrEntityEstimator = errs.Entity("estimator")
	ErrEntityJob       = errs.Entity("job")
)

var (
	// ErrEmptyMetrics is returned by Predict when called with a zero-length
	// metrics vector.
	ErrEmptyMetrics = errs.WithDomain(errDomain, ErrEmpty, ErrEntityMetrics)
	// ErrEstimatorUnknown is returned by Train when no estimator has ever
	// been created for the given job type.
	ErrEstimatorUnknown = errs.WithDomain(errDomain, ErrUnknown, ErrEntityEstimator)
	// ErrJobUnknown is returned by Train when the job id is not present in
	// the estimator's in-flight FIFO.
	ErrJobUnknown = errs.WithDomain(errDomain, ErrUnknown, ErrEntityJob)
	// ErrMetricCountMismatch is returned by Predict when the supplied
	// metrics vector length does not match the estimator's recorded count.
	ErrMetricCountMismatch = errs.WithDomain(errDomain, ErrInvalid, ErrEntityMetrics)
)

// overallocationThreshold is the boundary above which the proportional
// overallocation rule applies
// instead of the fixed-margin rule.
const overallocationThreshold = time.Millisecond

// Metrics describes the actions that register Predictor-related metrics.
type Metrics interface {
	IncPredictCalls()
	IncTrainCalls()
	IncTrainErrors()
}

// Predictor is the job-type-keyed registry of execution-time estimators.
//
// Predict must be called exactly once per job before Train is called for
// that job's id; Train removes the job from its estimator's FIFO and feeds
// the observed execution time back into the LLSP solver.
type Predictor interface {
	// Predict records a new in-flight job for jobType and returns the
	// overallocated predicted execution time.
	Predict(ctx context.Context, jobType workitem.JobType, id workitem.JobID, metrics []float64) (time.Duration, error)
	// Train feeds the observed execution time for id back into jobType's
	// estimator and re-solves it.
	Train(ctx context.Context, jobType workitem.JobType, id workitem.JobID, observed time.Duration) error
	// Snapshot serializes the registry's current state.
	Snapshot() ([]byte, error)
}

type pendingJob struct {
	id      workitem.JobID
	metrics []float64
}

type estimator struct {
	jobType workitem.JobType
	count   int
	solver  *llsp.Solver
	jobs    []pendingJob
}

type predictor struct {
	mu         sync.Mutex
	estimators map[workitem.JobType]*estimator

	logger  *slog.Logger
	metrics Metrics
	tracer  trace.Tracer
}

// New creates a Predictor from the given options. If config.snapshotPath
// names a readable file, the registry is seeded from it.
func New(options ...cfg.Option[*Config]) (Predictor, error) {
	return newFromEstimators(make(map[workitem.JobType]*estimator), options...)
}

// newFromEstimators builds a predictor seeded with the given estimator map,
// applying options on top. If config.snapshotPath names a readable file, it
// overrides the seeded map -- used by New (seeded empty, snapshot is the
// usual way to seed) and by Load (seeded from decoded bytes, a snapshot
// path would be unusual but is still honored last-write-wins).
func newFromEstimators(estimators map[workitem.JobType]*estimator, options ...cfg.Option[*Config]) (Predictor, error) {
	config := cfg.Set(defaultConfig(), options...)

	if config.handler == nil {
		config.handler = log.NoOp()
	}

	if config.metrics == nil {
		config.metrics = NoOpMetrics()
	}

	if config.tracer == nil {
		config.tracer = noop.NewTracerProvider().Tracer("no-op tracer")
	}

	p := &predictor{
		estimators: estimators,
		logger:     slog.New(config.handler),
		metrics:    config.metrics,
		tracer:     config.tracer,
	}

	if config.snapshotPath != "" {
		if err := loadSnapshotFile(p, config.snapshotPath); err != nil {
			p.logger.Warn("failed to load predictor snapshot", "path", config.snapshotPath, "error", err)
		}
	}

	return p, nil
}

// Predict implements Predictor.
func (p *predictor) Predict(ctx context.Context, jobType workitem.JobType, id workitem.JobID, metrics []float64) (time.Duration, error) {
	ctx, span := p.tracer.Start(ctx, "Predictor.Predict")
	defer span.End()

	if len(metrics) == 0 {
		return 0, ErrEmptyMetrics
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	est, ok := p.estimators[jobType]
	if !ok {
		est = &estimator{
			jobType: jobType,
			count:   len(metrics),
			solver:  llsp.New(len(metrics) + 1),
		}

		p.estimators[jobType] = est
	}

	if len(metrics) != est.count {
		return 0, ErrMetricCountMismatch
	}

	row := make([]float64, est.count+1)
	copy(row, metrics)
	row[est.count] = 1.0

	est.jobs = append(est.jobs, pendingJob{id: id, metrics: row})

	prediction := seconds(est.solver.Predict(row))
	allocated := overallocate(prediction)

	p.metrics.IncPredictCalls()
	p.logger.DebugContext(ctx, "predicted execution time",
		"job_type", jobType, "job_id", id, "prediction", allocated)

	return allocated, nil
}

// Train implements Predictor.
func (p *predictor) Train(ctx context.Context, jobType workitem.JobType, id workitem.JobID, observed time.Duration) error {
	ctx, span := p.tracer.Start(ctx, "Predictor.Train")
	defer span.End()

	p.mu.Lock()
	defer p.mu.Unlock()

	est, ok := p.estimators[jobType]
	if !ok {
		p.metrics.IncTrainErrors()

		return ErrEstimatorUnknown
	}

	idx := -1

	for i, job := range est.jobs {
		if job.id == id {
			idx = i

			break
		}
	}

	if idx == -1 {
		p.metrics.IncTrainErrors()

		return ErrJobUnknown
	}

	job := est.jobs[idx]
	est.jobs = append(est.jobs[:idx], est.jobs[idx+1:]...)

	est.solver.Add(job.metrics, observed.Seconds())
	est.solver.Solve()

	p.metrics.IncTrainCalls()
	p.logger.DebugContext(ctx, "trained estimator",
		"job_type", jobType, "job_id", id, "observed", observed)

	return nil
}

// Snapshot implements Predictor.
func (p *predictor) Snapshot() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return encodeSnapshot(p.estimators)
}

// overallocate applies the fixed overallocation rule: a
// proportional 2.5% margin above 1ms, a fixed 25µs margin at or below it.
func overallocate(prediction time.Duration) time.Duration {
	if prediction > overallocationThreshold {
		return prediction * 1025 / 1000
	}

	return prediction + 25*time.Microsecond
}

func seconds(v float64) time.Duration {
	if v < 0 {
		v = 0
	}

	return time.Duration(v * float64(time.Second))
}

// NoOp returns a no-op Predictor, useful as a default placeholder.
func NoOp() Predictor {
	return noOpPredictor{}
}

type noOpPredictor struct{}

func (noOpPredictor) Predict(context.Context, workitem.JobType, workitem.JobID, []float64) (time.Duration, error) {
	return 0, nil
}

func (noOpPredictor) Train(context.Context, workitem.JobType, workitem.JobID, time.Duration) error {
	return nil
}

func (noOpPredictor) Snapshot() ([]byte, error) { return nil, nil }
