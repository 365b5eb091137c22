package merge

import (
	"github.com/pkg/errors"

	"github.com/grailbio/hic/contact"
)

// RunningWindow replaces each matrix entry with the sum of the entries in a
// width×width neighborhood of diagonal offsets around it, keeping the bin
// count and interval list unchanged. width must be odd so that the window
// extends equally to both sides; width 1 is the identity and returns
// immediately. Contributions shifted outside the matrix are dropped.
// The output values are raw window sums, not averages.
//
// The accumulation works on the upper triangle: every stored entry is
// re-added at all width² offset positions, colliding coordinates are summed,
// the upper triangle of the result is taken, and the symmetric matrix is
// rebuilt from it. The nan-bin set is recomputed on the result.
func RunningWindow(cm *contact.Map, width int) error {
	if width < 1 {
		return errors.Errorf("merge: window width must be positive, got %d", width)
	}
	if width == 1 {
		return nil
	}
	if width%2 == 0 {
		return errors.Errorf("merge: window width must be odd, got %d", width)
	}
	k := (width - 1) / 2
	n := cm.Matrix.Dim()
	upper := cm.Matrix.Upper()

	// Offsets are processed one pair at a time against the map-backed
	// accumulator, so the working set never holds the full
	// nnz × width² candidate list at once.
	acc := contact.NewAccum(n)
	for dr := -k; dr <= k; dr++ {
		for dc := -k; dc <= k; dc++ {
			for _, t := range upper {
				acc.Add(t.Row+dr, t.Col+dc, t.Val)
			}
		}
	}
	m, err := contact.FromUpper(n, acc.Upper())
	if err != nil {
		return err
	}
	cm.Matrix = m
	cm.UpdateNanBins()
	return nil
}
