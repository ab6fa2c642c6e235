package predictor

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"

	"github.com/zalgonoise/cfg"

	"github.com/atlas-rt/dispatch/predictor/llsp"
	"github.com/atlas-rt/dispatch/workitem"
)

// snapshotEstimator is the gob-encodable projection of an estimator: its
// type, metric count and LLSP accumulators. The in-flight job FIFO is
// deliberately excluded -- it is live dispatch state, not learned state,
// and only the learned estimator needs to survive a restart.
type snapshotEstimator struct {
	JobType workitem.JobType
	Count   int
	XtX     [][]float64
	Xty     []float64
	Samples int
}

// encodeSnapshot serializes the registry's estimators via encoding/gob. The
// snapshot format is internal-only and opaque to callers, which is exactly
// gob's contract -- no wire-compatibility or cross-language concern
// justifies a heavier serialization library here.
func encodeSnapshot(estimators map[workitem.JobType]*estimator) ([]byte, error) {
	snaps := make([]snapshotEstimator, 0, len(estimators))

	for _, est := range estimators {
		xtx, xty, samples := est.solver.State()

		snaps = append(snaps, snapshotEstimator{
			JobType: est.jobType,
			Count:   est.count,
			XtX:     xtx,
			Xty:     xty,
			Samples: samples,
		})
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snaps); err != nil {
		return nil, fmt.Errorf("encoding predictor snapshot: %w", err)
	}

	return buf.Bytes(), nil
}

// decodeSnapshot rebuilds a registry's estimator map from serialized bytes.
func decodeSnapshot(data []byte) (map[workitem.JobType]*estimator, error) {
	var snaps []snapshotEstimator

	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snaps); err != nil {
		return nil, fmt.Errorf("decoding predictor snapshot: %w", err)
	}

	estimators := make(map[workitem.JobType]*estimator, len(snaps))

	for _, snap := range snaps {
		solver := llsp.New(snap.Count + 1)
		solver.Restore(snap.XtX, snap.Xty, snap.Samples)

		estimators[snap.JobType] = &estimator{
			jobType: snap.JobType,
			count:   snap.Count,
			solver:  solver,
		}
	}

	return estimators, nil
}

// loadSnapshotFile reads path and seeds p's registry from it. Called from
// newFromEstimators, on behalf of New and Load; a missing file is not an
// error (first run has nothing to load).
func loadSnapshotFile(p *predictor, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return fmt.Errorf("reading predictor snapshot %q: %w", path, err)
	}

	estimators, err := decodeSnapshot(data)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.estimators = estimators
	p.mu.Unlock()

	return nil
}

// Save serializes p's registry and writes it to path, overwriting any
// existing file. An empty path falls back to the ATLAS_PREDICTOR
// environment variable.
func Save(p Predictor, path string) error {
	if path == "" {
		path = os.Getenv(snapshotEnvVar)
	}

	data, err := p.Snapshot()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing predictor snapshot %q: %w", path, err)
	}

	return nil
}

// Load decodes a snapshot previously produced by Predictor.Snapshot and
// returns a Predictor seeded from it, configured with the given options.
func Load(data []byte, options ...cfg.Option[*Config]) (Predictor, error) {
	estimators, err := decodeSnapshot(data)
	if err != nil {
		return nil, err
	}

	p, err := newFromEstimators(estimators, options...)
	if err != nil {
		return nil, err
	}

	return p, nil
}
