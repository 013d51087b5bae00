package eval

import (
	"context"

	"github.com/herohde/gambit/pkg/board"
)

// Evaluator is a static position evaluator.
type Evaluator interface {
	// Evaluate returns the position score in centipawns for the side to move.
	Evaluate(ctx context.Context, pos *board.Position) Score
}

// Material returns the nominal material balance for the side to move. Useful
// for comparison and validation.
type Material struct{}

func (Material) Evaluate(ctx context.Context, pos *board.Position) Score {
	return Crop(sign(pos.Turn()) * materialBalance(pos))
}

// Tapered is the main evaluator: material, piece-square tables, pawn
// structure and mop-up, blended between middlegame and endgame weights by a
// phase coefficient in [0;phaseScale].
type Tapered struct{}

func (Tapered) Evaluate(ctx context.Context, pos *board.Position) Score {
	material := materialBalance(pos)
	phase := phaseOf(pos)

	score := material
	score += piecePlacement(pos, phase)
	score += pawnStructure(pos, phase)
	score += mopUp(pos, board.White, material, phase) - mopUp(pos, board.Black, -material, phase)

	return Crop(sign(pos.Turn()) * score)
}

// referenceMaterial is the fixed reference total of non-king material used by
// the phase coefficient: 16 pawns, 4 knights, 4 bishops, 6 rooks (weighted up
// to lean the coefficient towards the endgame) and 2 queens.
const referenceMaterial = 16*100 + 4*320 + 4*330 + 6*500 + 2*900

// phaseOf returns the endgame coefficient scaled to [0;phaseScale]: 0 when the
// material reaches the reference total, phaseScale for a bare endgame. The full
// starting material is below the reference total and yields 114. Forced to the
// endgame when 12 or fewer pieces remain.
func phaseOf(pos *board.Position) int {
	material := pos.Material()

	if material.All().PopCount() <= 12 {
		return phaseScale
	}

	m := 0
	for p := board.Pawn; p < board.King; p++ {
		m += pieceValue[p] * material.Kind(p).PopCount()
	}

	t := phaseScale - m*phaseScale/referenceMaterial
	if t < 0 {
		return 0
	}
	if t > phaseScale {
		return phaseScale
	}
	return t
}

// materialBalance returns the white-positive material balance.
func materialBalance(pos *board.Position) int {
	material := pos.Material()

	ret := 0
	for p := board.Pawn; p < board.King; p++ {
		white := material.Piece(board.White, p).PopCount()
		black := material.Piece(board.Black, p).PopCount()
		ret += pieceValue[p] * (white - black)
	}
	return ret
}

// piecePlacement returns the white-positive piece-square score. Pawn and king
// tables are blended by the phase; the other kinds use a single table. Black
// squares are looked up by vertical flip.
func piecePlacement(pos *board.Position, phase int) int {
	material := pos.Material()

	ret := 0
	for c := board.ZeroColor; c < board.NumColors; c++ {
		s := sign(c)

		for bb := material.Piece(c, board.Pawn); bb != 0; {
			var sq board.Square
			sq, bb = bb.PopLSB()
			i := tableIndex(c, sq)
			ret += s * lerp(pawnTable[i], pawnEndgameTable[i], phase)
		}

		for p := board.Knight; p <= board.Queen; p++ {
			table := officerTable[p]
			for bb := material.Piece(c, p); bb != 0; {
				var sq board.Square
				sq, bb = bb.PopLSB()
				ret += s * table[tableIndex(c, sq)]
			}
		}

		i := tableIndex(c, material.King(c))
		ret += s * lerp(kingTable[i], kingEndgameTable[i], phase)
	}
	return ret
}

// pawnStructure returns the white-positive pawn structure score: doubled pawn
// penalties per file, passed pawn bonuses (extra when the passer is guarded),
// and a bonus for pawns defended by another pawn.
func pawnStructure(pos *board.Position, phase int) int {
	material := pos.Material()

	ret := 0
	for c := board.ZeroColor; c < board.NumColors; c++ {
		s := sign(c)
		pawns := material.Piece(c, board.Pawn)
		opPawns := material.Piece(c.Opponent(), board.Pawn)

		for f := board.ZeroFile; f < board.NumFiles; f++ {
			doubled := (pawns & board.BitFile(f)).PopCount() >> 1
			ret += s * doubled * lerp(0, doubledPawnPenalty, phase)
		}

		guarded := pawns & pawns.PawnCaptureboard(c)
		ret += s * guarded.PopCount() * guardedPawnBonus

		for bb := pawns; bb != 0; {
			var sq board.Square
			sq, bb = bb.PopLSB()

			if frontSpan(c, sq)&opPawns == 0 {
				ret += s * lerp(0, passedPawnBonus, phase)
				if guarded.IsSet(sq) {
					ret += s * guardedPawnBonus * guardedPassedPawnBonus
				}
			}
		}
	}
	return ret
}

// frontSpan returns the squares ahead of the pawn on its own and adjacent
// files, relative to the color.
func frontSpan(c board.Color, sq board.Square) board.Bitboard {
	span := board.BitMask(sq).Forward(c)
	span |= span.East() | span.West()
	for next := span.Forward(c); next&^span != 0; next = span.Forward(c) {
		span |= next
	}
	return span
}

// mopUp rewards driving the defending king towards the edge and the kings
// together, once the side is clearly ahead and the endgame has begun.
func mopUp(pos *board.Position, us board.Color, material, phase int) int {
	if material <= 2*pieceValue[board.Pawn] || phase <= phaseScale/2 {
		return 0
	}

	king := pos.Material().King(us)
	opKing := pos.Material().King(us.Opponent())

	ret := (14 - manhattanDistance[king][opKing]) * mopUpFactor
	ret += (3 - centerDistance[king]) * 10
	return ret
}

// tableIndex maps a square to its piece-square table index: white by vertical
// flip, black directly.
func tableIndex(c board.Color, sq board.Square) board.Square {
	if c == board.White {
		return sq.Flip()
	}
	return sq
}

// sign returns the white-positive sign for the color: 1 for White, -1 for Black.
func sign(c board.Color) int {
	if c == board.White {
		return 1
	}
	return -1
}
