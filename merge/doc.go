// Package merge reduces the resolution of a Hi-C contact map. It provides
// two independent engines: Bins collapses runs of consecutive bins into
// coarser bins (fewer, larger bins), and RunningWindow convolves the matrix
// with a square neighborhood kernel while keeping the bin count fixed.
// Both re-establish the symmetry invariant and recompute the nan-bin set on
// their output.
package merge
