// Package uci contains a driver for using the engine under the UCI protocol.
//
// See: http://wbec-ridderkerk.nl/html/UCIProtocol.html
// See: https://en.wikipedia.org/wiki/Universal_Chess_Interface
package uci

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/herohde/gambit/pkg/board"
	"github.com/herohde/gambit/pkg/board/fen"
	"github.com/herohde/gambit/pkg/engine"
	"github.com/herohde/gambit/pkg/search"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/seekerror/stdlib/pkg/util/iox"
	"go.uber.org/atomic"
)

const ProtocolName = "uci"

// Driver implements a UCI driver for an engine. It is activated if sent "uci".
type Driver struct {
	iox.AsyncCloser

	e *engine.Engine

	out chan<- string

	active       atomic.Bool    // controller is waiting for a bestmove
	ponder       chan search.PV // intermediate search information
	lastPosition string         // last position line (empty if none)
}

func NewDriver(ctx context.Context, e *engine.Engine, in <-chan string) (*Driver, <-chan string) {
	out := make(chan string, 100)
	d := &Driver{
		AsyncCloser: iox.NewAsyncCloser(),
		e:           e,
		out:         out,
		ponder:      make(chan search.PV, 400),
	}
	go d.process(ctx, in)

	return d, out
}

func (d *Driver) process(ctx context.Context, in <-chan string) {
	defer d.Close()
	defer close(d.out)

	logw.Infof(ctx, "UCI protocol initialized")

	// After receiving "uci", the engine must identify itself and declare its
	// options, finishing with "uciok".

	d.out <- fmt.Sprintf("id name %v", d.e.Name())
	d.out <- fmt.Sprintf("id author %v", d.e.Author())
	d.out <- fmt.Sprintf("option name Hash type spin default %v min %v max %v", d.e.Options().Hash, engine.MinHashMB, engine.MaxHashMB)
	d.out <- fmt.Sprintf("option name Threads type spin default %v min %v max %v", d.e.Options().Threads, engine.MinThreads, engine.MaxThreads)
	d.out <- "uciok"

	for {
		select {
		case line, ok := <-in:
			if !ok {
				logw.Infof(ctx, "Input stream broken. Exiting")
				return
			}

			parts := strings.Fields(strings.TrimSpace(line))
			if len(parts) == 0 {
				break
			}

			cmd := parts[0]
			args := parts[1:]

			switch strings.ToLower(cmd) {
			case "isready":
				// "isready" synchronizes the engine with the controller. Must
				// always be answered with "readyok", even while searching.

				d.out <- "readyok"

			case "debug", "register", "ponderhit":
				// Accepted and ignored.

			case "setoption":
				// "setoption name <id> [value <x>]"

				if err := d.setOption(ctx, args); err != nil {
					logw.Warningf(ctx, "Invalid setoption '%v': %v", line, err)
					d.out <- fmt.Sprintf("info string error: %v", err)
				}

			case "ucinewgame":
				// The next position starts a different game. Heuristics are
				// per-search and the transposition table is aged on "go", so a
				// board reset suffices.

				d.ensureInactive(ctx)
				d.lastPosition = ""

				if err := d.e.NewGame(ctx); err != nil {
					logw.Errorf(ctx, "New game failed: %v", err)
					d.out <- fmt.Sprintf("info string error: %v", err)
				}

			case "position":
				// "position [fen <fenstring> | startpos] moves <move1> ... <movei>"

				d.ensureInactive(ctx)

				if err := d.setPosition(ctx, line, args); err != nil {
					logw.Warningf(ctx, "Invalid position '%v': %v", line, err)
					d.out <- fmt.Sprintf("info string error: %v", err)
					d.lastPosition = ""
				}

			case "go":
				// "go [wtime N] [btime N] [winc N] [binc N] [movestogo N]
				//     [depth N] [movetime N] [infinite]"

				d.ensureInactive(ctx)

				opt, infinite, err := parseGo(args)
				if err != nil {
					logw.Warningf(ctx, "Invalid go '%v': %v", line, err)
					d.out <- fmt.Sprintf("info string error: %v", err)
					break
				}

				out, err := d.e.Analyze(ctx, opt)
				if err != nil {
					logw.Errorf(ctx, "Analyze failed: %v", err)
					d.out <- fmt.Sprintf("info string error: %v", err)
					break
				}
				d.active.Store(true)

				// Forward search info. Complete the search when it ends on its
				// own, unless infinite: then "stop" completes it.

				go func() {
					var last search.PV
					for pv := range out {
						last = pv
						d.ponder <- pv
					}
					if !infinite {
						d.searchCompleted(ctx, last)
					}
				}()

			case "stop":
				// "stop" ends the search as soon as possible; a "bestmove"
				// reply is still required.

				if pv, err := d.e.Halt(ctx); err == nil {
					d.searchCompleted(ctx, pv)
				}

			case "quit":
				return

			default:
				logw.Warningf(ctx, "Unknown command '%v': %v", cmd, args)
				d.out <- fmt.Sprintf("info string unknown command: %v", cmd)
			}

		case pv := <-d.ponder:
			// One "info" line per completed depth.

			if d.active.Load() {
				d.out <- printPV(pv)
			}

		case <-d.Closed():
			d.ensureInactive(ctx)

			logw.Infof(ctx, "Driver closed")
			return
		}
	}
}

func (d *Driver) setOption(ctx context.Context, args []string) error {
	var name, value string
	for i := 0; i+1 < len(args); i++ {
		switch args[i] {
		case "name":
			name = args[i+1]
		case "value":
			value = args[i+1]
		}
	}

	switch name {
	case "Hash":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid Hash value: %v", value)
		}
		return d.e.SetHash(ctx, uint(n))

	case "Threads":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid Threads value: %v", value)
		}
		return d.e.SetThreads(uint(n))

	default:
		return fmt.Errorf("unknown option: %v", name)
	}
}

func (d *Driver) setPosition(ctx context.Context, line string, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing position")
	}

	if d.lastPosition != "" && strings.HasPrefix(line, d.lastPosition) {
		// Continuation of the current game: apply only the new moves.

		moves := strings.Fields(strings.TrimPrefix(line, d.lastPosition))
		for _, arg := range moves {
			if arg == "moves" {
				continue
			}
			if err := d.e.Move(ctx, arg); err != nil {
				return err
			}
		}

		d.lastPosition = line
		return nil
	}

	// New position.

	position := fen.Initial
	rest := args

	switch args[0] {
	case "startpos":
		rest = args[1:]
	case "fen":
		var fields []string
		rest = nil
		for i, arg := range args[1:] {
			if arg == "moves" {
				rest = args[1+i:]
				break
			}
			fields = append(fields, arg)
		}
		position = strings.Join(fields, " ")
	default:
		return fmt.Errorf("invalid position: %v", args[0])
	}

	if err := d.e.Reset(ctx, position); err != nil {
		return err
	}

	move := false
	for _, arg := range rest {
		if arg == "moves" {
			move = true
			continue
		}
		if !move {
			continue
		}
		if err := d.e.Move(ctx, arg); err != nil {
			return err
		}
	}

	d.lastPosition = line
	return nil
}

func parseGo(args []string) (search.Options, bool, error) {
	var opt search.Options
	var tc search.TimeControl
	hasTC := false
	infinite := false

	for i := 0; i < len(args); i++ {
		cmd := args[i]
		switch cmd {
		case "wtime", "btime", "winc", "binc", "movestogo", "depth", "movetime":
			// The next argument is an int.

			i++
			if i == len(args) {
				return opt, false, fmt.Errorf("no argument for %v", cmd)
			}
			n, err := strconv.Atoi(args[i])
			if err != nil {
				return opt, false, fmt.Errorf("invalid argument for %v: %v", cmd, err)
			}

			switch cmd {
			case "depth":
				opt.DepthLimit = lang.Some(n)
			case "movetime":
				opt.MoveTime = lang.Some(time.Millisecond * time.Duration(n))
			case "wtime":
				tc.White, hasTC = time.Millisecond*time.Duration(n), true
			case "btime":
				tc.Black, hasTC = time.Millisecond*time.Duration(n), true
			case "winc":
				tc.WhiteInc, hasTC = time.Millisecond*time.Duration(n), true
			case "binc":
				tc.BlackInc, hasTC = time.Millisecond*time.Duration(n), true
			case "movestogo":
				tc.MovesToGo, hasTC = n, true
			}

		case "infinite":
			infinite = true
			opt.Infinite = true

		default:
			// Silently ignore anything not handled.
		}
	}

	if hasTC {
		opt.TimeControl = lang.Some(tc)
	}
	return opt, infinite, nil
}

func (d *Driver) ensureInactive(ctx context.Context) {
	d.active.Store(false)
	_, _ = d.e.Halt(ctx)
}

func (d *Driver) searchCompleted(ctx context.Context, pv search.PV) {
	if d.active.CAS(true, false) {
		if len(pv.Moves) > 0 {
			d.out <- printPV(pv)
			d.out <- fmt.Sprintf("bestmove %v", pv.Moves[0])
		} else {
			// No PV: the position is checkmate or stalemate.

			d.out <- "bestmove 0000"
		}
	} // else: stale or duplicate result
}

// printPV formats an info line, such as:
//
//	"info score cp 214 depth 8 nodes 123456 time 1242 nps 99400 pv e2e4 e7e5"
func printPV(pv search.PV) string {
	parts := []string{"info"}

	if pv.Score.IsMate() {
		// Mate distance is reported in moves, not plies.

		dist := pv.Score.MateDistance()
		moves := (dist + 1) / 2
		if dist < 0 {
			moves = (dist - 1) / 2
		}
		parts = append(parts, fmt.Sprintf("score mate %v", moves))
	} else {
		parts = append(parts, fmt.Sprintf("score cp %v", int(pv.Score)))
	}

	parts = append(parts, fmt.Sprintf("depth %v", pv.Depth))
	if pv.Nodes > 0 {
		parts = append(parts, fmt.Sprintf("nodes %v", pv.Nodes))
	}
	if pv.Time > 0 {
		parts = append(parts, fmt.Sprintf("time %v", pv.Time.Milliseconds()))
	}
	if pv.Nodes > 0 && pv.Time > 0 {
		parts = append(parts, fmt.Sprintf("nps %v", uint64(time.Second)*pv.Nodes/uint64(pv.Time)))
	}
	if len(pv.Moves) > 0 {
		parts = append(parts, "pv", board.PrintMoves(pv.Moves))
	}

	return strings.Join(parts, " ")
}
