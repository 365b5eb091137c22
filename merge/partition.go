package merge

import (
	"github.com/grailbio/base/log"
	"github.com/pkg/errors"

	"github.com/grailbio/hic/contact"
)

// Partition splits an ordered interval list into contiguous groups of
// groupSize bins, one group per output bin, and returns the merged intervals
// together with the parallel index groups. Groups never cross a chromosome
// boundary. A merged interval spans from the first constituent's start to the
// last constituent's end and carries the arithmetic mean of the constituent
// coverages.
//
// When a chromosome ends with an incomplete group holding fewer than
// groupSize/2 bins, that group is dropped with a diagnostic rather than
// emitted undersized. The very last group of the sequence is always kept
// whatever its size, so trailing data is never lost.
func Partition(intervals []contact.Interval, groupSize int) ([]contact.Interval, [][]int, error) {
	if groupSize < 1 {
		return nil, nil, errors.Errorf("merge: group size must be positive, got %d", groupSize)
	}
	if len(intervals) == 0 {
		return nil, nil, nil
	}

	var (
		newBins []contact.Interval
		groups  [][]int
	)
	emit := func(idxStart, idxEnd int, final bool) {
		count := idxEnd - idxStart
		if !final && 2*count < groupSize {
			log.Error.Printf("%s has few bins (%d), skipping them", intervals[idxStart].Chrom, count)
			return
		}
		group := make([]int, 0, count)
		var coverage float64
		for i := idxStart; i < idxEnd; i++ {
			group = append(group, i)
			coverage += intervals[i].Coverage
		}
		newBins = append(newBins, contact.Interval{
			Chrom:    intervals[idxStart].Chrom,
			Start:    intervals[idxStart].Start,
			End:      intervals[idxEnd-1].End,
			Coverage: coverage / float64(count),
		})
		groups = append(groups, group)
	}

	idxStart := 0
	for idx := 1; idx < len(intervals); idx++ {
		if idx-idxStart == groupSize || intervals[idx].Chrom != intervals[idx-1].Chrom {
			emit(idxStart, idx, false)
			idxStart = idx
		}
	}
	emit(idxStart, len(intervals), true)
	return newBins, groups, nil
}
