package llsp

import (
	"math"
	"testing"

	"github.com/zalgonoise/x/is"
)

func TestSolverConvergesOnLinearData(t *testing.T) {
	// target = 3*x0 + 2*x1 + 5 (constant column last), noise-free.
	s := New(3)

	samples := [][2]float64{{1, 1}, {2, 1}, {1, 2}, {3, 4}, {5, 1}, {2, 5}, {4, 4}, {0, 3}}
	for _, sample := range samples {
		x0, x1 := sample[0], sample[1]
		row := []float64{x0, x1, 1}
		target := 3*x0 + 2*x1 + 5

		s.Add(row, target)
	}

	got := s.Predict([]float64{10, 10, 1})
	want := 3*10.0 + 2*10.0 + 5

	is.True(t, math.Abs(got-want) < 1e-6)
}

func TestSolverDropsNegligibleColumn(t *testing.T) {
	// x1 never varies meaningfully with the target; x0 fully explains it.
	s := New(3)

	for i := 1; i <= 20; i++ {
		x0 := float64(i)
		row := []float64{x0, 0.0001, 1}
		target := 4*x0 + 1

		s.Add(row, target)
	}

	s.Solve()

	is.True(t, s.Active(0))
	is.True(t, !s.Active(1))
}

func TestSolverStateRoundTrip(t *testing.T) {
	s := New(2)
	s.Add([]float64{1, 1}, 4)
	s.Add([]float64{2, 1}, 7)

	xtx, xty, samples := s.State()

	restored := New(2)
	restored.Restore(xtx, xty, samples)

	want := s.Predict([]float64{3, 1})
	got := restored.Predict([]float64{3, 1})

	is.Equal(t, want, got)
}

func TestSolverZeroSamplesPredictsZero(t *testing.T) {
	s := New(2)

	is.Equal(t, 0.0, s.Predict([]float64{1, 1}))
}
