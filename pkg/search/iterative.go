package search

import (
	"context"
	"sync"
	"time"

	"github.com/herohde/gambit/pkg/board"
	"github.com/herohde/gambit/pkg/eval"
	"github.com/seekerror/logw"
	"go.uber.org/atomic"
)

// Iterative is a search harness for iterative-deepening search over parallel
// workers. Each worker owns its position copy and ordering heuristics; the
// transposition table, time manager and stop flag are shared. The reported
// result is the last completed iteration of the primary worker.
type Iterative struct {
	Eval eval.Evaluator
}

func NewIterative(e eval.Evaluator) Launcher {
	return &Iterative{Eval: e}
}

func (i *Iterative) Launch(ctx context.Context, pos *board.Position, history []board.ZobristHash, tt *TranspositionTable, opt Options) (Handle, <-chan PV) {
	out := make(chan PV, 1)
	h := &handle{
		tm:   &TimeManager{},
		init: make(chan struct{}),
	}
	go h.process(ctx, i.Eval, pos, history, tt, opt, out)

	return h, out
}

type handle struct {
	tm          *TimeManager
	init        chan struct{}
	initialized atomic.Bool

	pv PV
	mu sync.Mutex
}

func (h *handle) process(ctx context.Context, e eval.Evaluator, pos *board.Position, history []board.ZobristHash, tt *TranspositionTable, opt Options, out chan PV) {
	defer h.markInitialized()
	defer close(out)

	tt.IncrementAge()
	h.tm.Begin(opt, pos.Turn())

	threads := opt.Threads
	if threads < 1 {
		threads = 1
	}
	limit := MaxDepth
	if d, ok := opt.DepthLimit.V(); ok && d > 0 && d < MaxDepth {
		limit = d
	}

	workers := make([]*worker, threads)
	for i := range workers {
		workers[i] = newWorker(i, pos.Copy(), history, e, tt, h.tm)
	}

	// Fan out the helpers. They run the same iterative deepening without
	// reporting, feeding the shared transposition table.
	var wg sync.WaitGroup
	for _, w := range workers[1:] {
		wg.Add(1)
		go func(w *worker) {
			defer wg.Done()
			w.iterate(ctx, limit, nil)
		}(w)
	}

	workers[0].iterate(ctx, limit, func(pv PV) {
		pv.Nodes = totalNodes(workers)
		pv.Time = h.tm.Elapsed()

		logw.Debugf(ctx, "Searched %v: %v", pos, pv)

		h.mu.Lock()
		h.pv = pv
		h.mu.Unlock()

		// Drop a stale unread result, if any.
		select {
		case <-out:
		default:
		}
		out <- pv

		h.markInitialized()
	})

	h.tm.Stop()
	wg.Wait()
}

// Halt stops the search and returns the best completed iteration. Idempotent.
func (h *handle) Halt() PV {
	h.tm.Stop()
	<-h.init

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pv
}

func (h *handle) markInitialized() {
	if h.initialized.CAS(false, true) {
		close(h.init)
	}
}

func totalNodes(workers []*worker) uint64 {
	var ret uint64
	for _, w := range workers {
		ret += w.nodes.Load()
	}
	return ret
}

// iterate runs iterative deepening to the depth limit, reporting each
// completed iteration. An iteration cut short by the stop flag is discarded;
// the previous completed result stands.
func (w *worker) iterate(ctx context.Context, limit int, report func(PV)) {
	for depth := 1; depth <= limit; depth++ {
		start := time.Now()

		var line Variation
		score := w.alphaBeta(ctx, depth, 0, eval.NegInfScore, eval.InfScore, &line)
		if w.halted {
			return
		}
		span := time.Since(start)

		if report != nil {
			report(PV{
				Depth: depth,
				Moves: w.extendPV(line.Moves(), depth),
				Score: score,
			})
		}

		// A proven forced mate cannot improve with depth.
		if score.IsMate() {
			return
		}
		if w.tm.ShouldStop() || !w.tm.ContinueIteration(span) {
			return
		}
	}
}

// extendPV lengthens the accumulated line by walking transposition table
// moves, stopping at a node without a legal table move or on a cycle. The
// accumulated line itself is authoritative.
func (w *worker) extendPV(moves []board.Move, depth int) []board.Move {
	pos := w.pos.Copy()
	seen := map[board.ZobristHash]bool{}

	for _, m := range moves {
		seen[pos.Hash()] = true
		pos.Make(m)
	}

	for len(moves) < depth && len(moves) < MaxVariation {
		if seen[pos.Hash()] {
			break
		}
		seen[pos.Hash()] = true

		m, _, _, _, ok := w.tt.Probe(pos.Hash())
		if !ok || m == board.NullMove || !isLegalIn(pos, m) {
			break
		}
		moves = append(moves, m)
		pos.Make(m)
	}
	return moves
}

func isLegalIn(pos *board.Position, m board.Move) bool {
	for _, legal := range board.LegalMoves(pos) {
		if legal == m {
			return true
		}
	}
	return false
}
