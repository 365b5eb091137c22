package contact

// Interval describes one genomic bin: a half-open [Start, End) span on a
// chromosome, plus a scalar coverage annotation carried along from upstream
// processing. The order of an []Interval always matches the contact matrix
// row/column order 1:1.
type Interval struct {
	Chrom    string
	Start    int
	End      int
	Coverage float64
}
