package predictor

import (
	"context"
	"testing"
	"time"

	"github.com/zalgonoise/x/is"

	"github.com/atlas-rt/dispatch/workitem"
)

func TestPredictCreatesEstimatorOnFirstUse(t *testing.T) {
	p, err := New()
	is.Empty(t, err)

	prediction, err := p.Predict(context.Background(), workitem.JobType(1), workitem.JobID(1), []float64{0.5})
	is.Empty(t, err)
	is.True(t, prediction > 0)
}

func TestPredictRejectsEmptyMetrics(t *testing.T) {
	p, err := New()
	is.Empty(t, err)

	_, err = p.Predict(context.Background(), workitem.JobType(1), workitem.JobID(1), nil)
	is.True(t, err != nil)
}

func TestPredictRejectsMetricCountMismatch(t *testing.T) {
	p, err := New()
	is.Empty(t, err)

	_, err = p.Predict(context.Background(), workitem.JobType(1), workitem.JobID(1), []float64{1, 2})
	is.Empty(t, err)

	_, err = p.Predict(context.Background(), workitem.JobType(1), workitem.JobID(2), []float64{1})
	is.True(t, err != nil)
}

func TestTrainUnknownEstimator(t *testing.T) {
	p, err := New()
	is.Empty(t, err)

	err = p.Train(context.Background(), workitem.JobType(99), workitem.JobID(1), time.Millisecond)
	is.True(t, err != nil)
}

func TestTrainUnknownJob(t *testing.T) {
	p, err := New()
	is.Empty(t, err)

	_, err = p.Predict(context.Background(), workitem.JobType(1), workitem.JobID(1), []float64{1})
	is.Empty(t, err)

	err = p.Train(context.Background(), workitem.JobType(1), workitem.JobID(404), time.Millisecond)
	is.True(t, err != nil)
}

func TestPredictorLearnsLinearRelationship(t *testing.T) {
	p, err := New()
	is.Empty(t, err)

	ctx := context.Background()
	jobType := workitem.JobType(7)

	for i := 1; i <= 30; i++ {
		metrics := []float64{float64(i)}

		_, err := p.Predict(ctx, jobType, workitem.JobID(i), metrics)
		is.Empty(t, err)

		observed := time.Duration(float64(i)*2) * time.Millisecond

		err = p.Train(ctx, jobType, workitem.JobID(i), observed)
		is.Empty(t, err)
	}

	prediction, err := p.Predict(ctx, jobType, workitem.JobID(1000), []float64{40})
	is.Empty(t, err)

	// learned relationship is ~2ms per unit; prediction should land near
	// 80ms once overallocated, comfortably within a generous tolerance.
	is.True(t, prediction > 70*time.Millisecond && prediction < 95*time.Millisecond)
}

func TestSnapshotRoundTrip(t *testing.T) {
	p, err := New()
	is.Empty(t, err)

	ctx := context.Background()
	jobType := workitem.JobType(3)

	for i := 1; i <= 5; i++ {
		_, err := p.Predict(ctx, jobType, workitem.JobID(i), []float64{float64(i)})
		is.Empty(t, err)

		err = p.Train(ctx, jobType, workitem.JobID(i), time.Duration(i)*time.Millisecond)
		is.Empty(t, err)
	}

	data, err := p.Snapshot()
	is.Empty(t, err)
	is.True(t, len(data) > 0)

	restored, err := Load(data)
	is.Empty(t, err)

	want, err := p.Predict(ctx, jobType, workitem.JobID(100), []float64{10})
	is.Empty(t, err)

	got, err := restored.Predict(ctx, jobType, workitem.JobID(100), []float64{10})
	is.Empty(t, err)

	is.Equal(t, want, got)
}

func TestOverallocationRule(t *testing.T) {
	is.Equal(t, 500*time.Microsecond+25*time.Microsecond, overallocate(500*time.Microsecond))
	is.Equal(t, 2*time.Millisecond*1025/1000, overallocate(2*time.Millisecond))
}
