// Package contact holds the data model for Hi-C contact maps: genomic bin
// intervals, the sparse symmetric contact matrix, and the container tying the
// two together with nan-bin and correction-factor annotations.
package contact

import (
	"sort"

	"github.com/pkg/errors"
)

// Triple is one coordinate-form matrix entry.
type Triple struct {
	Row, Col int
	Val      float64
}

type cell struct {
	row, col int
}

// Matrix is an n×n sparse matrix in coordinate form. Only nonzero entries are
// stored. The merge engines maintain the symmetry invariant
// M[i][j] == M[j][i]; Matrix itself does not enforce it on Set/Add, since
// intermediate states during accumulation are legitimately asymmetric.
type Matrix struct {
	n    int
	vals map[cell]float64
}

// NewMatrix returns an empty n×n sparse matrix.
func NewMatrix(n int) *Matrix {
	if n < 0 {
		panic("contact: negative matrix dimension")
	}
	return &Matrix{n: n, vals: map[cell]float64{}}
}

// FromTriples builds an n×n matrix from coordinate entries, summing values at
// colliding coordinates. Coordinates must lie in [0, n).
func FromTriples(n int, ts []Triple) (*Matrix, error) {
	m := NewMatrix(n)
	for _, t := range ts {
		if t.Row < 0 || t.Row >= n || t.Col < 0 || t.Col >= n {
			return nil, errors.Errorf("contact: entry (%d,%d) outside %d×%d matrix", t.Row, t.Col, n, n)
		}
		m.Add(t.Row, t.Col, t.Val)
	}
	return m, nil
}

// FromUpper reconstructs the full symmetric matrix M = U + Uᵗ − diag(U) from
// upper-triangle entries (Row <= Col required). Values at colliding
// coordinates are summed before mirroring.
func FromUpper(n int, upper []Triple) (*Matrix, error) {
	u := NewMatrix(n)
	for _, t := range upper {
		if t.Row < 0 || t.Col >= n || t.Row > t.Col {
			return nil, errors.Errorf("contact: (%d,%d) is not an upper-triangle entry of a %d×%d matrix", t.Row, t.Col, n, n)
		}
		u.Add(t.Row, t.Col, t.Val)
	}
	m := NewMatrix(n)
	for c, v := range u.vals {
		m.Add(c.row, c.col, v)
		if c.row != c.col {
			m.Add(c.col, c.row, v)
		}
	}
	return m, nil
}

// Dim returns the matrix dimension n.
func (m *Matrix) Dim() int { return m.n }

// NNZ returns the number of stored entries.
func (m *Matrix) NNZ() int { return len(m.vals) }

// At returns the value at (i, j), zero if not stored.
func (m *Matrix) At(i, j int) float64 {
	m.checkIndex(i, j)
	return m.vals[cell{i, j}]
}

// Set stores v at (i, j). A zero value removes the entry.
func (m *Matrix) Set(i, j int, v float64) {
	m.checkIndex(i, j)
	if v == 0 {
		delete(m.vals, cell{i, j})
		return
	}
	m.vals[cell{i, j}] = v
}

// Add accumulates v into (i, j).
func (m *Matrix) Add(i, j int, v float64) {
	m.checkIndex(i, j)
	if v == 0 {
		return
	}
	m.vals[cell{i, j}] += v
}

func (m *Matrix) checkIndex(i, j int) {
	if i < 0 || i >= m.n || j < 0 || j >= m.n {
		panic("contact: matrix index out of range")
	}
}

// Triples returns all stored entries in row-major order.
func (m *Matrix) Triples() []Triple {
	ts := make([]Triple, 0, len(m.vals))
	for c, v := range m.vals {
		ts = append(ts, Triple{c.row, c.col, v})
	}
	sortTriples(ts)
	return ts
}

// Upper returns the stored upper-triangle entries (Row <= Col, diagonal
// included) in row-major order. For a symmetric matrix these entries fully
// determine the matrix.
func (m *Matrix) Upper() []Triple {
	var ts []Triple
	for c, v := range m.vals {
		if c.row <= c.col {
			ts = append(ts, Triple{c.row, c.col, v})
		}
	}
	sortTriples(ts)
	return ts
}

func sortTriples(ts []Triple) {
	sort.Slice(ts, func(i, j int) bool {
		if ts[i].Row != ts[j].Row {
			return ts[i].Row < ts[j].Row
		}
		return ts[i].Col < ts[j].Col
	})
}

// Sum returns the sum of all stored entries.
func (m *Matrix) Sum() float64 {
	var s float64
	for _, v := range m.vals {
		s += v
	}
	return s
}

// UpperSum returns the sum of the upper-triangle entries, i.e. the logical
// contact mass with every bin pair counted once.
func (m *Matrix) UpperSum() float64 {
	var s float64
	for c, v := range m.vals {
		if c.row <= c.col {
			s += v
		}
	}
	return s
}

// RowSums returns the per-row entry sums.
func (m *Matrix) RowSums() []float64 {
	sums := make([]float64, m.n)
	for c, v := range m.vals {
		sums[c.row] += v
	}
	return sums
}

// ZeroRows returns the indices of rows whose sum is exactly zero, in
// ascending order. For a symmetric matrix these coincide with the zero
// columns.
func (m *Matrix) ZeroRows() []int {
	sums := m.RowSums()
	var zero []int
	for i, s := range sums {
		if s == 0 {
			zero = append(zero, i)
		}
	}
	return zero
}

// EliminateZeros removes explicitly stored zero entries. This is a structural
// simplification only; no value changes.
func (m *Matrix) EliminateZeros() {
	for c, v := range m.vals {
		if v == 0 {
			delete(m.vals, c)
		}
	}
}

// IsSymmetric reports whether M[i][j] == M[j][i] for all stored entries.
func (m *Matrix) IsSymmetric() bool {
	for c, v := range m.vals {
		if m.vals[cell{c.col, c.row}] != v {
			return false
		}
	}
	return true
}

// Dense materializes the matrix as a dense [][]float64. Intended for small
// matrices (tests, debug dumps).
func (m *Matrix) Dense() [][]float64 {
	d := make([][]float64, m.n)
	for i := range d {
		d[i] = make([]float64, m.n)
	}
	for c, v := range m.vals {
		d[c.row][c.col] = v
	}
	return d
}
