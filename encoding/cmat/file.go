package cmat

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"blainsmith.com/go/seahash"
	"github.com/grailbio/base/file"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"github.com/grailbio/hic/contact"
)

// Load reads a container from path. Both gzip-compressed (the Save output)
// and uncompressed files are accepted; compression is detected from the gzip
// magic bytes, not the file name.
func Load(ctx context.Context, path string) (cm *contact.Map, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := in.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	br := bufio.NewReader(in.Reader(ctx))
	r := io.Reader(br)
	if hdr, err := br.Peek(2); err == nil && hdr[0] == 0x1f && hdr[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, errors.Wrapf(err, "cmat: %s", path)
		}
		defer gz.Close()
		r = gz
	}
	cm, err = Read(r)
	if err != nil {
		return nil, errors.Wrapf(err, "cmat: %s", path)
	}
	return cm, nil
}

// Save writes cm to path, gzip-compressed.
func Save(ctx context.Context, path string, cm *contact.Map) (err error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	gz := gzip.NewWriter(out.Writer(ctx))
	if err := Write(gz, cm); err != nil {
		return errors.Wrapf(err, "cmat: %s", path)
	}
	return gz.Close()
}

// Checksum scans a container stream and returns the checksum stored in its
// footer together with the one computed over the payload. The two differ only
// for a corrupted file. No structural validation is performed.
func Checksum(r io.Reader) (stored, computed uint64, err error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, 1<<20)
	h := seahash.New()
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, secChecksum+"\t") {
			stored, err = strconv.ParseUint(line[len(secChecksum)+1:], 16, 64)
			if err != nil {
				return 0, 0, errors.Errorf("cmat: malformed checksum footer: %q", line)
			}
			return stored, h.Sum64(), nil
		}
		h.Write(sc.Bytes())
		h.Write([]byte{'\n'})
	}
	if err := sc.Err(); err != nil {
		return 0, 0, err
	}
	return 0, 0, errors.New("cmat: missing checksum footer")
}
