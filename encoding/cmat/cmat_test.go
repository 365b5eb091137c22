package cmat

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/hic/contact"
)

func writeFile(ctx context.Context, path string, data []byte) error {
	out, err := file.Create(ctx, path)
	if err != nil {
		return err
	}
	if _, err := out.Writer(ctx).Write(data); err != nil {
		return err
	}
	return out.Close(ctx)
}

func testMap(t *testing.T) *contact.Map {
	t.Helper()
	m, err := contact.FromUpper(3, []contact.Triple{
		{Row: 0, Col: 0, Val: 50},
		{Row: 0, Col: 1, Val: 10},
		{Row: 1, Col: 1, Val: 60},
	})
	assert.NoError(t, err)
	return &contact.Map{
		Matrix: m,
		Intervals: []contact.Interval{
			{Chrom: "chr1", Start: 0, End: 5000, Coverage: 0.5},
			{Chrom: "chr1", Start: 5000, End: 10000, Coverage: 1},
			{Chrom: "chr2", Start: 0, End: 5000, Coverage: 0.25},
		},
		NanBins: []int{2},
	}
}

func TestRoundTrip(t *testing.T) {
	cm := testMap(t)
	var buf bytes.Buffer
	assert.NoError(t, Write(&buf, cm))

	got, err := Read(&buf)
	assert.NoError(t, err)
	expect.EQ(t, got.Intervals, cm.Intervals)
	expect.EQ(t, got.NanBins, cm.NanBins)
	expect.EQ(t, got.Matrix.Dense(), cm.Matrix.Dense())
	expect.True(t, got.CorrectionFactors == nil)
}

func TestRoundTripCorrectionFactors(t *testing.T) {
	cm := testMap(t)
	cm.CorrectionFactors = []float64{1.5, 0.75, 1}
	var buf bytes.Buffer
	assert.NoError(t, Write(&buf, cm))

	got, err := Read(&buf)
	assert.NoError(t, err)
	expect.EQ(t, got.CorrectionFactors, cm.CorrectionFactors)
}

func TestIntegerValuesStayIntegral(t *testing.T) {
	cm := testMap(t)
	var buf bytes.Buffer
	assert.NoError(t, Write(&buf, cm))
	require.Contains(t, buf.String(), "0\t0\t50\n")
	require.NotContains(t, buf.String(), "50.0")
}

func TestChecksumDetectsCorruption(t *testing.T) {
	cm := testMap(t)
	var buf bytes.Buffer
	assert.NoError(t, Write(&buf, cm))

	// Flip one value in the payload; the footer must no longer match.
	corrupted := strings.Replace(buf.String(), "0\t0\t50", "0\t0\t51", 1)
	require.NotEqual(t, corrupted, buf.String())
	_, err := Read(strings.NewReader(corrupted))
	assert.Regexp(t, err, "checksum mismatch")

	stored, computed, err := Checksum(strings.NewReader(corrupted))
	assert.NoError(t, err)
	require.NotEqual(t, stored, computed)

	stored, computed, err = Checksum(bytes.NewReader(buf.Bytes()))
	assert.NoError(t, err)
	expect.EQ(t, stored, computed)
}

func TestReadRejectsMalformed(t *testing.T) {
	_, err := Read(strings.NewReader("not a container\n"))
	assert.Regexp(t, err, "malformed")

	_, err = Read(strings.NewReader("#cmat\t9\n"))
	assert.Regexp(t, err, "unsupported format version")

	// Interval count and matrix dimension must agree.
	cm := testMap(t)
	var buf bytes.Buffer
	assert.NoError(t, Write(&buf, cm))
	bad := strings.Replace(buf.String(), "#matrix\t3", "#matrix\t2", 1)
	_, err = Read(strings.NewReader(bad))
	assert.Regexp(t, err, "does not match")

	_, err = Read(strings.NewReader("#cmat\t1\n#intervals\t1\nchr1\t0\t10\t1\n"))
	assert.Regexp(t, err, "unexpected end of file")
}

func TestSaveLoad(t *testing.T) {
	ctx := vcontext.Background()
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	cm := testMap(t)
	path := filepath.Join(tempDir, "matrix.cmat.gz")
	assert.NoError(t, Save(ctx, path, cm))

	got, err := Load(ctx, path)
	assert.NoError(t, err)
	expect.EQ(t, got.Intervals, cm.Intervals)
	expect.EQ(t, got.Matrix.Dense(), cm.Matrix.Dense())
	expect.EQ(t, got.NanBins, cm.NanBins)
}

func TestLoadUncompressed(t *testing.T) {
	ctx := vcontext.Background()
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	cm := testMap(t)
	var buf bytes.Buffer
	assert.NoError(t, Write(&buf, cm))
	path := filepath.Join(tempDir, "matrix.cmat")
	assert.NoError(t, writeFile(ctx, path, buf.Bytes()))

	got, err := Load(ctx, path)
	assert.NoError(t, err)
	expect.EQ(t, got.Matrix.Dense(), cm.Matrix.Dense())
}

func TestWriteSkipsExplicitZeros(t *testing.T) {
	m := contact.NewMatrix(2)
	m.Set(0, 1, 5)
	m.Set(1, 0, 5)
	m.Add(0, 0, 1)
	m.Add(0, 0, -1) // cancels out
	cm := &contact.Map{Matrix: m, Intervals: []contact.Interval{
		{Chrom: "chr1", Start: 0, End: 10, Coverage: 1},
		{Chrom: "chr1", Start: 10, End: 20, Coverage: 1},
	}}
	var buf bytes.Buffer
	assert.NoError(t, Write(&buf, cm))
	require.Contains(t, buf.String(), "#matrix\t2\t1\n")
}
