package search

import (
	"context"

	"github.com/herohde/gambit/pkg/board"
	"github.com/herohde/gambit/pkg/eval"
)

const (
	// maxQuiescenceDepth caps the capture resolution depth.
	maxQuiescenceDepth = 12

	// futilityMargin skips captures that cannot plausibly raise alpha.
	futilityMargin = 150
)

// captureValue is the optimistic material gain per captured piece kind, used
// by the futility filter.
var captureValue = [board.NumPieces]eval.Score{100, 320, 330, 500, 900, 0}

// quiescence resolves tactical sequences at the horizon by searching captures
// and promotions only, or all evasions when in check.
func (w *worker) quiescence(ctx context.Context, ply, depth int, alpha, beta eval.Score) eval.Score {
	w.nodes.Inc()
	if w.checkStop(ctx) {
		return eval.InvalidScore
	}

	pos := w.pos
	inCheck := pos.IsChecked(pos.Turn())

	standPat := w.eval.Evaluate(ctx, pos)
	if !inCheck {
		if standPat >= beta {
			return beta
		}
		if standPat > alpha {
			alpha = standPat
		}
	}
	if depth >= maxQuiescenceDepth || ply >= MaxDepth {
		if inCheck {
			return standPat
		}
		return alpha
	}

	gen := board.NewMoveGenerator(pos, board.Ordering{}, !inCheck)

	moveCount := 0
	for {
		m := gen.Pop()
		if m == board.NullMove {
			break
		}

		// Futility: skip captures whose optimistic gain still leaves the
		// score below alpha. Never applied in check.
		if !inCheck && m.IsCapture() && !m.IsPromotion() {
			victim := board.Pawn
			if !m.IsEnPassant() {
				victim = pos.PieceOn(m.To()).Piece()
			}
			if standPat+captureValue[victim]+futilityMargin <= alpha {
				continue
			}
		}

		undo := pos.Make(m)
		score := w.quiescence(ctx, ply+1, depth+1, -beta, -alpha).Negate()
		pos.Unmake(undo)

		if w.halted {
			return eval.InvalidScore
		}
		moveCount++

		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}

	// A checked position with no evasion is mate even at the horizon.
	if inCheck && moveCount == 0 {
		return eval.MatedIn(ply)
	}
	return alpha
}
