package merge

import (
	"github.com/pkg/errors"

	"github.com/grailbio/hic/contact"
)

// Bins merges runs of groupSize consecutive bins into single coarser bins,
// replacing cm's matrix and interval list in place. Entry (g1, g2) of the
// reduced matrix is the sum of all original entries whose row belongs to
// group g1 and column to group g2, with within-group diagonal blocks counted
// once per logical bin pair. Explicit zeros are eliminated from the result
// and the nan-bin set is recomputed.
func Bins(cm *contact.Map, groupSize int) error {
	if groupSize < 1 {
		return errors.Errorf("merge: number of bins to merge must be positive, got %d", groupSize)
	}
	if cm.Matrix.Dim() != len(cm.Intervals) {
		return errors.Errorf("merge: matrix dimension %d does not match %d intervals", cm.Matrix.Dim(), len(cm.Intervals))
	}
	newBins, groups, err := Partition(cm.Intervals, groupSize)
	if err != nil {
		return err
	}
	reduced, err := reduceByGroups(cm.Matrix, groups)
	if err != nil {
		return err
	}
	reduced.EliminateZeros()
	if err := cm.SetMatrix(reduced, newBins); err != nil {
		return err
	}
	cm.UpdateNanBins()
	return nil
}

// reduceByGroups reduces an n×n symmetric matrix to G×G by summing rows and
// columns groupwise. The reduction runs over the upper triangle of the input:
// each stored entry (i <= j) contributes once to output cell
// (group(i), group(j)), and the G×G upper triangle is then mirrored back to a
// full symmetric matrix. Entries whose row or column belongs to no group
// (bins dropped by the partitioner) are discarded.
func reduceByGroups(m *contact.Matrix, groups [][]int) (*contact.Matrix, error) {
	n := m.Dim()
	groupOf := make([]int, n)
	for i := range groupOf {
		groupOf[i] = -1
	}
	for g, group := range groups {
		for _, i := range group {
			if i < 0 || i >= n {
				return nil, errors.Errorf("merge: group %d references bin %d outside matrix of dimension %d", g, i, n)
			}
			if groupOf[i] != -1 {
				return nil, errors.Errorf("merge: bin %d assigned to groups %d and %d", i, groupOf[i], g)
			}
			groupOf[i] = g
		}
	}

	acc := contact.NewAccum(len(groups))
	for _, t := range m.Upper() {
		g1, g2 := groupOf[t.Row], groupOf[t.Col]
		if g1 == -1 || g2 == -1 {
			continue
		}
		if g1 > g2 {
			// Contiguous ordered groups keep the upper triangle upper, but
			// reduceByGroups does not assume that of its callers.
			g1, g2 = g2, g1
		}
		acc.Add(g1, g2, t.Val)
	}
	return contact.FromUpper(len(groups), acc.Upper())
}
