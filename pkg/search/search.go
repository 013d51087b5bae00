// Package search contains search functionality and utilities.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/herohde/gambit/pkg/board"
	"github.com/herohde/gambit/pkg/eval"
	"github.com/seekerror/stdlib/pkg/lang"
)

// ErrHalted is an error indicating that the search was halted.
var ErrHalted = errors.New("search halted")

const (
	// MaxDepth is the maximum search depth in plies.
	MaxDepth = 64
	// MaxVariation is the capacity of a principal variation line.
	MaxVariation = 128
)

// PV represents the principal variation for some search depth.
type PV struct {
	Depth int           // depth of the completed iteration
	Moves []board.Move  // principal variation
	Score eval.Score    // evaluation at depth, side to move perspective
	Nodes uint64        // nodes searched across all workers
	Time  time.Duration // time taken by search
}

func (p PV) String() string {
	return fmt.Sprintf("depth=%v score=%v nodes=%v time=%v pv=%v", p.Depth, p.Score, p.Nodes, p.Time, board.PrintMoves(p.Moves))
}

// TimeControl holds the game clock state as reported by the controller.
type TimeControl struct {
	White, Black       time.Duration
	WhiteInc, BlackInc time.Duration
	MovesToGo          int
}

// Time returns the clock and increment for the given color.
func (tc TimeControl) Time(c board.Color) (time.Duration, time.Duration) {
	if c == board.White {
		return tc.White, tc.WhiteInc
	}
	return tc.Black, tc.BlackInc
}

func (tc TimeControl) String() string {
	return fmt.Sprintf("{w=%v+%v, b=%v+%v, moves=%v}", tc.White, tc.WhiteInc, tc.Black, tc.BlackInc, tc.MovesToGo)
}

// Options hold dynamic search options. The user may change these on a
// particular search.
type Options struct {
	// DepthLimit, if set, limits the search to the given depth.
	DepthLimit lang.Optional[int]
	// TimeControl, if set, limits the search per the game clock.
	TimeControl lang.Optional[TimeControl]
	// MoveTime, if set, searches for exactly the given duration.
	MoveTime lang.Optional[time.Duration]
	// Infinite searches until stopped.
	Infinite bool
	// Threads is the number of parallel search workers. Defaults to 1.
	Threads int
}

func (o Options) String() string {
	var ret []string
	if d, ok := o.DepthLimit.V(); ok {
		ret = append(ret, fmt.Sprintf("depth=%v", d))
	}
	if tc, ok := o.TimeControl.V(); ok {
		ret = append(ret, fmt.Sprintf("time=%v", tc))
	}
	if mt, ok := o.MoveTime.V(); ok {
		ret = append(ret, fmt.Sprintf("movetime=%v", mt))
	}
	if o.Infinite {
		ret = append(ret, "infinite")
	}
	ret = append(ret, fmt.Sprintf("threads=%v", o.Threads))
	return fmt.Sprintf("[%v]", strings.Join(ret, ", "))
}

// Launcher is a Search generator.
type Launcher interface {
	// Launch a new search from the given position. It expects an exclusive
	// copy of the position along with the hashes of the game positions before
	// it for repetition detection, and returns a PV channel for iteratively deeper searches. If
	// the search is exhausted, the channel is closed. The search can be
	// stopped at any time.
	Launch(ctx context.Context, pos *board.Position, history []board.ZobristHash, tt *TranspositionTable, opt Options) (Handle, <-chan PV)
}

// Handle is an interface for the engine to manage searches. The engine is
// expected to spin off searches with position copies and halt/abandon them
// when no longer needed. This design keeps stopping conditions and
// re-synchronization trivial.
type Handle interface {
	// Halt halts the search, if running. Idempotent.
	Halt() PV
}
