package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/herohde/gambit/pkg/engine"
	"github.com/herohde/gambit/pkg/engine/uci"
	"github.com/herohde/gambit/pkg/eval"
	"github.com/herohde/gambit/pkg/search"
	"github.com/seekerror/logw"
)

var (
	hash    = flag.Uint("hash", 64, "Transposition table size in MB")
	threads = flag.Uint("threads", 1, "Number of search workers")
	depth   = flag.Uint("depth", 0, "Search depth limit (zero if no limit)")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: gambit [options]

GAMBIT is a UCI chess engine.
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	e := engine.New(ctx, "gambit", "herohde",
		search.NewIterative(eval.Tapered{}),
		engine.WithOptions(engine.Options{
			Depth:   *depth,
			Hash:    *hash,
			Threads: *threads,
		}),
	)

	in := engine.ReadStdinLines(ctx)
	switch <-in {
	case uci.ProtocolName:
		driver, out := uci.NewDriver(ctx, e, in)
		go engine.WriteStdoutLines(ctx, out)

		<-driver.Closed()

	default:
		flag.Usage()
		logw.Exitf(ctx, "Protocol not supported")
	}
}
