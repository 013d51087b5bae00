// perft is a movegen debugging tool. See: https://www.chessprogramming.org/Perft_Results.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/herohde/gambit/pkg/board"
	"github.com/herohde/gambit/pkg/board/fen"
	"github.com/seekerror/logw"
)

var (
	depth    = flag.Int("depth", 4, "Search depth")
	position = flag.String("fen", "", "Start position (default to standard)")
	divide   = flag.Bool("divide", false, "Divide counts by initial move")
)

func main() {
	ctx := context.Background()
	flag.Parse()

	if *position == "" {
		*position = fen.Initial
	}

	pos, err := fen.Decode(*position)
	if err != nil {
		logw.Exitf(ctx, "Invalid fen '%v': %v", *position, err)
	}

	for i := 1; i <= *depth; i++ {
		start := time.Now()

		var nodes uint64
		if *divide && i == *depth {
			for _, m := range board.LegalMoves(pos) {
				undo := pos.Make(m)
				count := board.Perft(pos, i-1)
				pos.Unmake(undo)

				println(fmt.Sprintf("%v: %v", m, count))
				nodes += count
			}
		} else {
			nodes = board.Perft(pos, i)
		}
		duration := time.Since(start)

		println(fmt.Sprintf("perft,%v,%v,%v,%v", *position, i, nodes, duration.Microseconds()))
	}
}
