package search

import (
	"context"

	"github.com/herohde/gambit/pkg/board"
	"github.com/herohde/gambit/pkg/eval"
)

// Minimax implements naive full-width negamax without pruning, move ordering
// or caching. Useful for comparison and validation of the alpha-beta search.
//
// See: https://en.wikipedia.org/wiki/Minimax.
type Minimax struct {
	Eval eval.Evaluator
}

// Search returns the node count, score and principal variation at the given
// depth.
func (m Minimax) Search(ctx context.Context, pos *board.Position, depth int) (uint64, eval.Score, []board.Move) {
	run := &runMinimax{eval: m.Eval, pos: pos.Copy()}
	score, moves := run.search(ctx, depth, 0)
	return run.nodes, score, moves
}

type runMinimax struct {
	eval  eval.Evaluator
	pos   *board.Position
	nodes uint64
}

func (m *runMinimax) search(ctx context.Context, depth, ply int) (eval.Score, []board.Move) {
	m.nodes++

	if m.pos.HalfmoveClock() >= 100 {
		return eval.DrawScore, nil
	}

	moves := board.LegalMoves(m.pos)
	if len(moves) == 0 {
		if m.pos.IsChecked(m.pos.Turn()) {
			return eval.MatedIn(ply), nil
		}
		return eval.DrawScore, nil
	}
	if depth == 0 {
		return m.eval.Evaluate(ctx, m.pos), nil
	}

	best := eval.NegInfScore
	var pv []board.Move

	for _, move := range moves {
		undo := m.pos.Make(move)
		score, rem := m.search(ctx, depth-1, ply+1)
		m.pos.Unmake(undo)

		if s := score.Negate(); s > best {
			best = s
			pv = append([]board.Move{move}, rem...)
		}
	}
	return best, pv
}
