package contact

// Accum accumulates coordinate contributions into an n×n grid, summing values
// at colliding coordinates. Contributions whose coordinates fall outside
// [0, n) are silently dropped rather than wrapped or clamped; this is the
// boundary policy the running-window merge relies on. Keeping the working set
// as a map keyed by coordinate (rather than one large candidate list) bounds
// memory at the number of distinct output cells.
type Accum struct {
	n    int
	vals map[cell]float64
}

// NewAccum returns an empty accumulator over an n×n grid.
func NewAccum(n int) *Accum {
	return &Accum{n: n, vals: map[cell]float64{}}
}

// Add accumulates v into (row, col), dropping out-of-range coordinates.
func (a *Accum) Add(row, col int, v float64) {
	if row < 0 || row >= a.n || col < 0 || col >= a.n {
		return
	}
	a.vals[cell{row, col}] += v
}

// Upper returns the upper triangle (row <= col, diagonal included) of the
// accumulated grid in row-major order. Entries below the diagonal are
// discarded, not folded in.
func (a *Accum) Upper() []Triple {
	var ts []Triple
	for c, v := range a.vals {
		if c.row <= c.col && v != 0 {
			ts = append(ts, Triple{c.row, c.col, v})
		}
	}
	sortTriples(ts)
	return ts
}
