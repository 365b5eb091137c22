// Command hic-tool inspects Hi-C contact-matrix containers.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
	"github.com/klauspost/compress/gzip"
	"v.io/x/lib/cmdline"

	"github.com/grailbio/hic/encoding/cmat"
)

type viewFlags struct {
	intervals *bool
	triples   *bool
}

func newCmdView() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "view",
		Short:    "Print a summary of a contact-matrix container",
		ArgsName: "path",
	}
	flags := viewFlags{
		intervals: cmd.Flags.Bool("intervals", false, "Also print the bin intervals"),
		triples:   cmd.Flags.Bool("triples", false, "Also print the upper-triangle matrix entries"),
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("view takes one pathname argument, but got %v", argv)
		}
		return view(flags, argv[0])
	})
	return cmd
}

func view(flags viewFlags, path string) error {
	ctx := vcontext.Background()
	cm, err := cmat.Load(ctx, path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()

	upper := cm.Matrix.Upper()
	fmt.Fprintf(w, "bins:\t%d\n", len(cm.Intervals))
	fmt.Fprintf(w, "entries:\t%d\n", len(upper))
	fmt.Fprintf(w, "contact mass:\t%g\n", cm.Matrix.UpperSum())
	fmt.Fprintf(w, "nan bins:\t%d\n", len(cm.NanBins))
	if cm.CorrectionFactors != nil {
		fmt.Fprintf(w, "correction factors:\tpresent\n")
	} else {
		fmt.Fprintf(w, "correction factors:\tnone\n")
	}
	// Per-chromosome bin counts, in order of first appearance.
	var chroms []string
	counts := map[string]int{}
	for _, iv := range cm.Intervals {
		if counts[iv.Chrom] == 0 {
			chroms = append(chroms, iv.Chrom)
		}
		counts[iv.Chrom]++
	}
	for _, chrom := range chroms {
		fmt.Fprintf(w, "chrom %s:\t%d bins\n", chrom, counts[chrom])
	}
	if *flags.intervals {
		for i, iv := range cm.Intervals {
			fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%g\n", i, iv.Chrom, iv.Start, iv.End, iv.Coverage)
		}
	}
	if *flags.triples {
		for _, t := range upper {
			fmt.Fprintf(w, "%d\t%d\t%g\n", t.Row, t.Col, t.Val)
		}
	}
	return nil
}

func newCmdChecksum() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "checksum",
		Short:    "Verify the payload checksum of a contact-matrix container",
		ArgsName: "path",
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("checksum takes one pathname argument, but got %v", argv)
		}
		return checksum(argv[0])
	})
	return cmd
}

func checksum(path string) (err error) {
	ctx := vcontext.Background()
	in, err := file.Open(ctx, path)
	if err != nil {
		return err
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
			return err
		}
		defer gz.Close()
		r = gz
	}
	stored, computed, err := cmat.Checksum(r)
	if err != nil {
		return err
	}
	fmt.Printf("stored:\t%016x\ncomputed:\t%016x\n", stored, computed)
	if stored != computed {
		return fmt.Errorf("checksum mismatch in %s", path)
	}
	return nil
}

func main() {
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(&cmdline.Command{
		Name:     "hic-tool",
		Short:    "Tools for working with Hi-C contact-matrix containers",
		LookPath: false,
		Children: []*cmdline.Command{
			newCmdView(),
			newCmdChecksum(),
		},
	})
}
