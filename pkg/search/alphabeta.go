package search

import (
	"context"

	"github.com/herohde/gambit/pkg/board"
	"github.com/herohde/gambit/pkg/eval"
	"github.com/seekerror/stdlib/pkg/util/contextx"
	"go.uber.org/atomic"
)

// Search heuristics parameters.
const (
	// Null-move pruning: skip a turn and search reduced; a fail-high proves
	// the position is too good to need a move.
	nullMoveMinDepth = 3

	// Late move reductions: late quiet moves are searched shallower with a
	// zero-width window first.
	lmrMinDepth     = 3
	lmrMinIndex     = 4
	lmrDeepCutDepth = 6
)

// worker is a single search thread. It owns its position copy, its move
// ordering state and its node counter; the transposition table and time
// manager are shared with its siblings.
type worker struct {
	id   int
	pos  *board.Position
	eval eval.Evaluator

	tt *TranspositionTable
	tm *TimeManager

	killers Killers
	history History
	stack   *HashStack

	nodes  atomic.Uint64
	halted bool
}

func newWorker(id int, pos *board.Position, history []board.ZobristHash, e eval.Evaluator, tt *TranspositionTable, tm *TimeManager) *worker {
	w := &worker{
		id:    id,
		pos:   pos,
		eval:  e,
		tt:    tt,
		tm:    tm,
		stack: NewHashStack(history),
	}
	w.stack.Push(pos.Hash())
	return w
}

// checkStop polls the shared stop flag every node and the clock periodically.
// Once halted, the search unwinds with InvalidScore without updating any
// shared or ordering state.
func (w *worker) checkStop(ctx context.Context) bool {
	if w.halted {
		return true
	}
	if w.tm.Stopped() || contextx.IsCancelled(ctx) || w.nodes.Load()&1023 == 0 && w.tm.ShouldStop() {
		w.halted = true
	}
	return w.halted
}

// alphaBeta is the negamax alpha-beta search. Scores are root-relative and
// from the perspective of the side to move at the node.
func (w *worker) alphaBeta(ctx context.Context, depth, ply int, alpha, beta eval.Score, pv *Variation) eval.Score {
	pv.Clear()

	if depth <= 0 || ply >= MaxDepth {
		return w.quiescence(ctx, ply, 0, alpha, beta)
	}

	w.nodes.Inc()
	if w.checkStop(ctx) {
		return eval.InvalidScore
	}

	pos := w.pos
	us := pos.Turn()

	// Draw by the fifty-move rule or repetition. The root is exempt so a
	// best move is always produced.
	if ply > 0 {
		if pos.HalfmoveClock() >= 100 || w.stack.IsRepetition(pos.HalfmoveClock()) {
			return eval.DrawScore
		}
	}

	// Probe the transposition table. A deep-enough hit cuts if its bound
	// allows; the stored move always primes ordering.
	ttMove := board.NullMove
	if move, score, ttDepth, flag, ok := w.tt.Probe(pos.Hash()); ok {
		ttMove = move
		if ply > 0 && ttDepth >= depth {
			score = ScoreFromTT(score, ply)
			switch flag {
			case ExactFlag:
				return score
			case BetaFlag:
				if score >= beta {
					return score
				}
			case AlphaFlag:
				if score <= alpha {
					return score
				}
			}
		}
	}

	gen := board.NewMoveGenerator(pos, board.Ordering{
		PV:      ttMove,
		Killers: w.killers.Get(ply),
		History: func(m board.Move) uint16 { return w.history.Priority(us, m) },
	}, false)
	inCheck := gen.Checked()

	// Null-move pruning: pass the turn and search reduced with a null
	// window around beta. Zugzwang is guarded by the non-pawn material
	// requirement.
	if ply > 0 && depth >= nullMoveMinDepth && !inCheck && pos.HasNonPawnMaterial(us) {
		reduction := 2
		if depth > 6 {
			reduction = 3
		}

		undo := pos.MakeNull()
		w.stack.Push(pos.Hash())
		var line Variation
		score := w.alphaBeta(ctx, depth-reduction-1, ply+1, -beta, -beta+1, &line).Negate()
		w.stack.Pop()
		pos.UnmakeNull(undo)

		if w.halted {
			return eval.InvalidScore
		}
		if score >= beta {
			return beta // fail-hard
		}
	}

	original := alpha
	best := board.NullMove
	moveCount := 0

	var line Variation
	for {
		m := gen.Pop()
		if m == board.NullMove {
			break
		}

		undo := pos.Make(m)
		w.stack.Push(pos.Hash())

		newDepth := depth - 1
		score := eval.InvalidScore
		needFull := true

		// Late move reduction: late quiet moves outside check first get a
		// reduced zero-width probe; only a fail-high earns the full search.
		if depth >= lmrMinDepth && moveCount >= lmrMinIndex && m.IsQuiet() && !inCheck {
			reduction := 1
			if depth > lmrDeepCutDepth {
				reduction = 2
			}
			reduced := newDepth - reduction
			if reduced < 1 {
				reduced = 1
			}

			score = w.alphaBeta(ctx, reduced, ply+1, -alpha-1, -alpha, &line).Negate()
			needFull = !w.halted && score > alpha
		}

		if needFull {
			score = w.alphaBeta(ctx, newDepth, ply+1, -beta, -alpha, &line).Negate()
		}

		w.stack.Pop()
		pos.Unmake(undo)

		if w.halted {
			return eval.InvalidScore
		}
		moveCount++

		if score > alpha {
			alpha = score
			best = m
			pv.Set(m, &line)

			if alpha >= beta {
				if m.IsQuiet() {
					w.killers.Push(ply, m)
					w.history.Increment(us, m, depth)
				}
				w.tt.Store(pos.Hash(), m, ScoreToTT(beta, ply), depth, BetaFlag)
				return beta
			}
		}
	}

	// No legal move: checkmate or stalemate.
	if moveCount == 0 {
		if inCheck {
			return eval.MatedIn(ply)
		}
		return eval.DrawScore
	}

	flag := AlphaFlag
	if alpha > original {
		flag = ExactFlag
	}
	w.tt.Store(pos.Hash(), best, ScoreToTT(alpha, ply), depth, flag)
	return alpha
}
