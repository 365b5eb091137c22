package contact

import "github.com/pkg/errors"

// Map ties a sparse symmetric contact matrix to its genomic bins. NanBins
// lists the bins whose row sum is zero; it is recomputed after every
// transformation, never carried over. CorrectionFactors, when non-nil, holds
// one normalization factor per bin; any operation that changes bin content
// invalidates them.
type Map struct {
	Matrix            *Matrix
	Intervals         []Interval
	NanBins           []int
	CorrectionFactors []float64
}

// SetMatrix installs a matrix and its parallel interval list, replacing the
// previous ones. The matrix dimension must match the interval count.
func (c *Map) SetMatrix(m *Matrix, intervals []Interval) error {
	if m.Dim() != len(intervals) {
		return errors.Errorf("contact: matrix dimension %d does not match %d intervals", m.Dim(), len(intervals))
	}
	c.Matrix = m
	c.Intervals = intervals
	return nil
}

// UpdateNanBins recomputes NanBins from the current matrix.
func (c *Map) UpdateNanBins() {
	c.NanBins = c.Matrix.ZeroRows()
}

// Validate checks the container invariants: interval count equals matrix
// dimension, and correction factors (when present) are per-bin.
func (c *Map) Validate() error {
	if c.Matrix == nil {
		return errors.New("contact: nil matrix")
	}
	if c.Matrix.Dim() != len(c.Intervals) {
		return errors.Errorf("contact: matrix dimension %d does not match %d intervals", c.Matrix.Dim(), len(c.Intervals))
	}
	if c.CorrectionFactors != nil && len(c.CorrectionFactors) != len(c.Intervals) {
		return errors.Errorf("contact: %d correction factors for %d bins", len(c.CorrectionFactors), len(c.Intervals))
	}
	for _, i := range c.NanBins {
		if i < 0 || i >= c.Matrix.Dim() {
			return errors.Errorf("contact: nan bin %d outside matrix of dimension %d", i, c.Matrix.Dim())
		}
	}
	return nil
}
