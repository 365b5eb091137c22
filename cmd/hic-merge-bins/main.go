package main

// See doc.go for documentation
import (
	"flag"
	"fmt"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"

	"github.com/grailbio/hic/encoding/cmat"
	"github.com/grailbio/hic/merge"
)

const version = "1.0"

var (
	matrixFlag        = flag.String("matrix", "", "Input contact matrix to reduce")
	numBinsFlag       = flag.Int("num-bins", 0, "Number of consecutive bins to merge, or the window width with -running-window")
	runningWindowFlag = flag.Bool("running-window", false, "Merge using a running window of width -num-bins instead of reducing the bin count")
	outFlag           = flag.String("out", "", "File name to save the resulting matrix")
	versionFlag       = flag.Bool("version", false, "Print the program version and exit")
)

func main() {
	shutdown := grail.Init()
	defer shutdown()

	if *versionFlag {
		fmt.Printf("hic-merge-bins %s\n", version)
		return
	}
	if *matrixFlag == "" || *outFlag == "" {
		log.Fatalf("both -matrix and -out must be set")
	}

	ctx := vcontext.Background()
	cm, err := cmat.Load(ctx, *matrixFlag)
	if err != nil {
		log.Fatalf("load %s: %v", *matrixFlag, err)
	}
	if *runningWindowFlag {
		err = merge.RunningWindow(cm, *numBinsFlag)
	} else {
		err = merge.Bins(cm, *numBinsFlag)
	}
	if err != nil {
		log.Fatalf("merge: %v", err)
	}
	cm.Matrix.EliminateZeros()
	if cm.CorrectionFactors != nil {
		log.Error.Printf("correction factors cannot be merged and are dropped")
		cm.CorrectionFactors = nil
	}
	log.Printf("saving matrix to %s", *outFlag)
	if err := cmat.Save(ctx, *outFlag, cm); err != nil {
		log.Fatalf("save %s: %v", *outFlag, err)
	}
}
