// Package cmat reads and writes Hi-C contact-map containers. The format is a
// sectioned, tab-separated text file, gzip-compressed on disk:
//
//	#cmat	1
//	#intervals	<N>
//	<chrom>	<start>	<end>	<coverage>     (N lines, matrix row order)
//	#matrix	<N>	<nnz>
//	<row>	<col>	<value>                (upper triangle incl. diagonal)
//	#nanbins	<count>
//	<index>                                (count lines)
//	#correction	<0|N>
//	<factor>                               (N lines when factors are present)
//	#seahash	<16 hex digits>
//
// Only the upper triangle is stored; the full symmetric matrix is rebuilt on
// load as M = U + Uᵗ − diag(U). The trailing seahash line covers every
// payload byte before it and is verified on load.
package cmat

import (
	"bufio"
	"fmt"
	"hash"
	"io"
	"strconv"
	"strings"

	"blainsmith.com/go/seahash"
	"github.com/pkg/errors"

	"github.com/grailbio/hic/contact"
)

// Version is the container format version written by this package.
const Version = 1

const (
	magic         = "#cmat"
	secIntervals  = "#intervals"
	secMatrix     = "#matrix"
	secNanBins    = "#nanbins"
	secCorrection = "#correction"
	secChecksum   = "#seahash"
)

// Write serializes cm to w, uncompressed. Explicit zero entries are not
// written. Callers that want the on-disk representation should use Save,
// which adds gzip compression.
func Write(w io.Writer, cm *contact.Map) error {
	if err := cm.Validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	h := seahash.New()
	pw := io.MultiWriter(bw, h)

	fmt.Fprintf(pw, "%s\t%d\n", magic, Version)
	fmt.Fprintf(pw, "%s\t%d\n", secIntervals, len(cm.Intervals))
	for _, iv := range cm.Intervals {
		fmt.Fprintf(pw, "%s\t%d\t%d\t%s\n", iv.Chrom, iv.Start, iv.End, formatValue(iv.Coverage))
	}
	upper := cm.Matrix.Upper()
	nnz := 0
	for _, t := range upper {
		if t.Val != 0 {
			nnz++
		}
	}
	fmt.Fprintf(pw, "%s\t%d\t%d\n", secMatrix, cm.Matrix.Dim(), nnz)
	for _, t := range upper {
		if t.Val == 0 {
			continue
		}
		fmt.Fprintf(pw, "%d\t%d\t%s\n", t.Row, t.Col, formatValue(t.Val))
	}
	fmt.Fprintf(pw, "%s\t%d\n", secNanBins, len(cm.NanBins))
	for _, i := range cm.NanBins {
		fmt.Fprintf(pw, "%d\n", i)
	}
	fmt.Fprintf(pw, "%s\t%d\n", secCorrection, len(cm.CorrectionFactors))
	for _, f := range cm.CorrectionFactors {
		fmt.Fprintf(pw, "%s\n", formatValue(f))
	}
	fmt.Fprintf(bw, "%s\t%016x\n", secChecksum, h.Sum64())
	return bw.Flush()
}

// Read deserializes a container from r (uncompressed; see Load for gzip
// handling) and verifies its checksum footer.
func Read(r io.Reader) (*contact.Map, error) {
	sc := newSectionScanner(r)

	if _, err := sc.header(magic, 1); err != nil {
		return nil, err
	}
	counts, err := sc.header(secIntervals, 1)
	if err != nil {
		return nil, err
	}
	n := counts[0]
	intervals := make([]contact.Interval, 0, n)
	for i := 0; i < n; i++ {
		fields, err := sc.fields(4)
		if err != nil {
			return nil, errors.Wrapf(err, "cmat: interval %d", i)
		}
		start, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, errors.Wrapf(err, "cmat: interval %d start", i)
		}
		end, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, errors.Wrapf(err, "cmat: interval %d end", i)
		}
		coverage, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "cmat: interval %d coverage", i)
		}
		intervals = append(intervals, contact.Interval{Chrom: fields[0], Start: start, End: end, Coverage: coverage})
	}

	counts, err = sc.header(secMatrix, 2)
	if err != nil {
		return nil, err
	}
	dim, nnz := counts[0], counts[1]
	if dim != n {
		return nil, errors.Errorf("cmat: matrix dimension %d does not match %d intervals", dim, n)
	}
	upper := make([]contact.Triple, 0, nnz)
	for i := 0; i < nnz; i++ {
		fields, err := sc.fields(3)
		if err != nil {
			return nil, errors.Wrapf(err, "cmat: matrix entry %d", i)
		}
		row, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, errors.Wrapf(err, "cmat: matrix entry %d row", i)
		}
		col, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, errors.Wrapf(err, "cmat: matrix entry %d col", i)
		}
		val, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "cmat: matrix entry %d value", i)
		}
		upper = append(upper, contact.Triple{Row: row, Col: col, Val: val})
	}
	m, err := contact.FromUpper(dim, upper)
	if err != nil {
		return nil, err
	}

	counts, err = sc.header(secNanBins, 1)
	if err != nil {
		return nil, err
	}
	var nanBins []int
	for i := 0; i < counts[0]; i++ {
		fields, err := sc.fields(1)
		if err != nil {
			return nil, errors.Wrapf(err, "cmat: nan bin %d", i)
		}
		idx, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, errors.Wrapf(err, "cmat: nan bin %d", i)
		}
		nanBins = append(nanBins, idx)
	}

	counts, err = sc.header(secCorrection, 1)
	if err != nil {
		return nil, err
	}
	var factors []float64
	for i := 0; i < counts[0]; i++ {
		fields, err := sc.fields(1)
		if err != nil {
			return nil, errors.Wrapf(err, "cmat: correction factor %d", i)
		}
		f, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "cmat: correction factor %d", i)
		}
		factors = append(factors, f)
	}

	if err := sc.verifyChecksum(); err != nil {
		return nil, err
	}

	cm := &contact.Map{Matrix: m, Intervals: intervals, NanBins: nanBins, CorrectionFactors: factors}
	if err := cm.Validate(); err != nil {
		return nil, err
	}
	return cm, nil
}

// formatValue renders a value without a trailing fractional part when it is
// integral, so contact counts stay integers in the file.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// sectionScanner reads payload lines while feeding them to the running
// checksum, so verifyChecksum can compare against the footer once the payload
// has been consumed.
type sectionScanner struct {
	sc   *bufio.Scanner
	hash hash.Hash64
}

func newSectionScanner(r io.Reader) *sectionScanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, 1<<20)
	return &sectionScanner{sc: sc, hash: seahash.New()}
}

// line returns the next payload line and accumulates it into the checksum.
func (s *sectionScanner) line() (string, error) {
	if !s.sc.Scan() {
		if err := s.sc.Err(); err != nil {
			return "", err
		}
		return "", errors.New("cmat: unexpected end of file")
	}
	line := s.sc.Text()
	s.hash.Write(s.sc.Bytes())
	s.hash.Write([]byte{'\n'})
	return line, nil
}

// header consumes a "#section\t<int>..." line and returns its nArgs integer
// arguments.
func (s *sectionScanner) header(section string, nArgs int) ([]int, error) {
	line, err := s.line()
	if err != nil {
		return nil, err
	}
	fields := strings.Split(line, "\t")
	if len(fields) != nArgs+1 || fields[0] != section {
		return nil, errors.Errorf("cmat: malformed %s header: %q", section, line)
	}
	args := make([]int, nArgs)
	for i, f := range fields[1:] {
		if args[i], err = strconv.Atoi(f); err != nil {
			return nil, errors.Errorf("cmat: malformed %s header: %q", section, line)
		}
	}
	if section == magic && args[0] != Version {
		return nil, errors.Errorf("cmat: unsupported format version %d", args[0])
	}
	for _, a := range args {
		if a < 0 {
			return nil, errors.Errorf("cmat: negative count in %s header: %q", section, line)
		}
	}
	return args, nil
}

// fields consumes one data line and splits it into exactly n tab-separated
// fields.
func (s *sectionScanner) fields(n int) ([]string, error) {
	line, err := s.line()
	if err != nil {
		return nil, err
	}
	fields := strings.Split(line, "\t")
	if len(fields) != n {
		return nil, errors.Errorf("cmat: expected %d fields, got %q", n, line)
	}
	return fields, nil
}

// verifyChecksum consumes the footer line and compares the stored sum against
// the one accumulated over the payload.
func (s *sectionScanner) verifyChecksum() error {
	computed := s.hash.Sum64()
	if !s.sc.Scan() {
		if err := s.sc.Err(); err != nil {
			return err
		}
		return errors.New("cmat: missing checksum footer")
	}
	fields := strings.Split(s.sc.Text(), "\t")
	if len(fields) != 2 || fields[0] != secChecksum {
		return errors.Errorf("cmat: malformed checksum footer: %q", s.sc.Text())
	}
	stored, err := strconv.ParseUint(fields[1], 16, 64)
	if err != nil {
		return errors.Errorf("cmat: malformed checksum footer: %q", s.sc.Text())
	}
	if stored != computed {
		return errors.Errorf("cmat: checksum mismatch: stored %016x, computed %016x", stored, computed)
	}
	return nil
}
