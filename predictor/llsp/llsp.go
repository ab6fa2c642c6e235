// Package llsp implements the incremental linear least-squares predictor
// the runtime's per-job-type estimators are built on: stable as samples
// accumulate, converging to zero residual on noise-free linearly generated
// data, and reproducible across a save/load round-trip. Built directly on
// "math" -- no ecosystem linear-algebra library is worth the dependency
// weight for a handful of small dense solves per job type.
package llsp

import "math"

// dropThreshold is the fraction of total fit energy (coef^T * Xty) below
// which a column's contribution is considered negligible and the column is
// excluded from the next Predict/Solve. Recomputed from scratch on every
// Solve call, so a column that regains predictive value with more samples
// is promoted again.
const dropThreshold = 0.01

// ridge is a small regularizer added to the normal equations' diagonal so
// that Solve is well-defined before enough samples have accumulated to make
// the system full rank.
const ridge = 1e-9

// Solver is a recursive linear least-squares estimator over a fixed number
// of columns (metrics plus a constant term, conventionally the caller's
// last column).
type Solver struct {
	columns int
	xtx     [][]float64
	xty     []float64
	samples int

	coef   []float64
	active []bool
}

// New creates a Solver over the given number of columns (including any
// constant term the caller appends to every sample).
func New(columns int) *Solver {
	xtx := make([][]float64, columns)
	for i := range xtx {
		xtx[i] = make([]float64, columns)
	}

	return &Solver{
		columns: columns,
		xtx:     xtx,
		xty:     make([]float64, columns),
		coef:    make([]float64, columns),
		active:  make([]bool, columns),
	}
}

// Columns returns the number of columns this solver was created with.
func (s *Solver) Columns() int { return s.columns }

// Samples returns the number of samples absorbed so far.
func (s *Solver) Samples() int { return s.samples }

// Add incrementally absorbs one sample into the normal equations. row must
// have length Columns(); target is the observed value.
func (s *Solver) Add(row []float64, target float64) {
	for i := 0; i < s.columns; i++ {
		s.xty[i] += row[i] * target

		for j := 0; j < s.columns; j++ {
			s.xtx[i][j] += row[i] * row[j]
		}
	}

	s.samples++
}

// Solve re-solves the normal equations and performs column-contribution
// analysis: columns whose contribution to the fit falls below
// dropThreshold of the total are demoted (their coefficient is zeroed and
// Predict ignores their corresponding row entry).
//
// The returned slice is owned by the Solver; callers must not mutate it.
func (s *Solver) Solve() []float64 {
	coef := gaussianSolve(s.xtx, s.xty, ridge)

	energy := 0.0
	contribution := make([]float64, s.columns)

	for i := 0; i < s.columns; i++ {
		contribution[i] = coef[i] * s.xty[i]
		energy += contribution[i]
	}

	for i := 0; i < s.columns; i++ {
		active := true

		if energy > 0 {
			active = contribution[i]/energy >= dropThreshold
		}

		s.active[i] = active

		if active {
			s.coef[i] = coef[i]
		} else {
			s.coef[i] = 0
		}
	}

	return s.coef
}

// Predict evaluates the reduced (column-dropped) model against row, which
// must have length Columns(). Predict implicitly calls Solve first, so
// that a Predict immediately following Add reflects the latest sample.
func (s *Solver) Predict(row []float64) float64 {
	coef := s.Solve()

	var result float64
	for i, c := range coef {
		result += c * row[i]
	}

	return result
}

// Active reports whether column i is currently promoted (used by Predict)
// or demoted, as of the last Solve call.
func (s *Solver) Active(i int) bool { return s.active[i] }

// State exposes the solver's internal accumulators for persistence. The
// returned values are owned by the Solver.
func (s *Solver) State() (xtx [][]float64, xty []float64, samples int) {
	return s.xtx, s.xty, s.samples
}

// Restore replaces the solver's accumulators wholesale, used when loading a
// persisted snapshot. The caller is responsible for matching dimensions.
func (s *Solver) Restore(xtx [][]float64, xty []float64, samples int) {
	s.xtx = xtx
	s.xty = xty
	s.samples = samples
}

// gaussianSolve solves (A + ridge*I) x = b via Gaussian elimination with
// partial pivoting, returning the zero vector if the system is singular
// even after regularization.
func gaussianSolve(a [][]float64, b []float64, ridge float64) []float64 {
	n := len(b)

	m := make([][]float64, n)
	rhs := make([]float64, n)

	for i := 0; i < n; i++ {
		m[i] = make([]float64, n)
		copy(m[i], a[i])
		m[i][i] += ridge
		rhs[i] = b[i]
	}

	for col := 0; col < n; col++ {
		pivot := col

		for row := col + 1; row < n; row++ {
			if math.Abs(m[row][col]) > math.Abs(m[pivot][col]) {
				pivot = row
			}
		}

		m[col], m[pivot] = m[pivot], m[col]
		rhs[col], rhs[pivot] = rhs[pivot], rhs[col]

		if math.Abs(m[col][col]) < 1e-15 {
			continue
		}

		for row := col + 1; row < n; row++ {
			factor := m[row][col] / m[col][col]
			if factor == 0 {
				continue
			}

			for k := col; k < n; k++ {
				m[row][k] -= factor * m[col][k]
			}

			rhs[row] -= factor * rhs[col]
		}
	}

	x := make([]float64, n)

	for row := n - 1; row >= 0; row-- {
		if math.Abs(m[row][row]) < 1e-15 {
			x[row] = 0

			continue
		}

		sum := rhs[row]

		for k := row + 1; k < n; k++ {
			sum -= m[row][k] * x[k]
		}

		x[row] = sum / m[row][row]
	}

	return x
}
