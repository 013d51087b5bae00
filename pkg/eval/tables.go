package eval

import "github.com/herohde/gambit/pkg/board"

// Piece values and piece-square tables. Tables are laid out from white's
// perspective with rank 8 first, so white pieces are looked up by vertical
// flip and black pieces directly.

// pieceValue is the material value per piece kind in centipawns.
var pieceValue = [board.NumPieces]int{100, 320, 330, 500, 900, 0}

// Pawn structure weights. Interpolation uses integer math with scale 1024.
const (
	phaseScale = 1024

	doubledPawnPenalty     = -12
	passedPawnBonus        = 24
	guardedPawnBonus       = 6
	guardedPassedPawnBonus = 2 // multiplier on the guard bonus for passers

	mopUpFactor = 8
)

var pawnTable = [board.NumSquares]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	50, 50, 50, 50, 50, 50, 50, 50,
	10, 10, 20, 30, 30, 20, 10, 10,
	5, 5, 10, 25, 25, 10, 5, 5,
	0, 0, 0, 20, 20, 0, 0, 0,
	5, -5, -10, 0, 0, -10, -5, 5,
	5, 10, 10, -20, -20, 10, 10, 5,
	0, 0, 0, 0, 0, 0, 0, 0,
}

// pawnEndgameTable emphasizes advancement: in the endgame a far-advanced pawn
// outweighs its file placement.
var pawnEndgameTable = [board.NumSquares]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	80, 80, 80, 80, 80, 80, 80, 80,
	50, 50, 50, 50, 50, 50, 50, 50,
	30, 30, 30, 30, 30, 30, 30, 30,
	15, 15, 15, 15, 15, 15, 15, 15,
	5, 5, 5, 5, 5, 5, 5, 5,
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var knightTable = [board.NumSquares]int{
	-50, -40, -30, -30, -30, -30, -40, -50,
	-40, -20, 0, 0, 0, 0, -20, -40,
	-30, 0, 10, 15, 15, 10, 0, -30,
	-30, 5, 15, 20, 20, 15, 5, -30,
	-30, 0, 15, 20, 20, 15, 0, -30,
	-30, 5, 10, 15, 15, 10, 5, -30,
	-40, -20, 0, 5, 5, 0, -20, -40,
	-50, -40, -30, -30, -30, -30, -40, -50,
}

var bishopTable = [board.NumSquares]int{
	-20, -10, -10, -10, -10, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 10, 10, 5, 0, -10,
	-10, 5, 5, 10, 10, 5, 5, -10,
	-10, 0, 10, 10, 10, 10, 0, -10,
	-10, 10, 10, 10, 10, 10, 10, -10,
	-10, 5, 0, 0, 0, 0, 5, -10,
	-20, -10, -10, -10, -10, -10, -10, -20,
}

var rookTable = [board.NumSquares]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	5, 10, 10, 10, 10, 10, 10, 5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	0, 0, 0, 5, 5, 0, 0, 0,
}

var queenTable = [board.NumSquares]int{
	-20, -10, -10, -5, -5, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 5, 5, 5, 0, -10,
	-5, 0, 5, 5, 5, 5, 0, -5,
	0, 0, 5, 5, 5, 5, 0, -5,
	-10, 5, 5, 5, 5, 5, 0, -10,
	-10, 0, 5, 0, 0, 0, 0, -10,
	-20, -10, -10, -5, -5, -10, -10, -20,
}

var kingTable = [board.NumSquares]int{
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-20, -30, -30, -40, -40, -30, -30, -20,
	-10, -20, -20, -20, -20, -20, -20, -10,
	20, 20, 0, 0, 0, 0, 20, 20,
	20, 30, 10, 0, 0, 10, 30, 20,
}

var kingEndgameTable = [board.NumSquares]int{
	-50, -40, -30, -20, -20, -30, -40, -50,
	-30, -20, -10, 0, 0, -10, -20, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -30, 0, 0, 0, 0, -30, -30,
	-50, -30, -30, -30, -30, -30, -30, -50,
}

// officerTable holds the single (non-tapered) tables for knight through queen.
var officerTable = [board.NumPieces]*[board.NumSquares]int{
	board.Knight: &knightTable,
	board.Bishop: &bishopTable,
	board.Rook:   &rookTable,
	board.Queen:  &queenTable,
}

// manhattanDistance holds the walking distance between squares, used by the
// mop-up term to drive the kings together.
var manhattanDistance = func() [board.NumSquares][board.NumSquares]int {
	var ret [board.NumSquares][board.NumSquares]int
	for a := board.ZeroSquare; a < board.NumSquares; a++ {
		for b := board.ZeroSquare; b < board.NumSquares; b++ {
			ret[a][b] = abs(a.File().V()-b.File().V()) + abs(a.Rank().V()-b.Rank().V())
		}
	}
	return ret
}()

// centerDistance holds the Chebyshev distance to the nearest center square.
var centerDistance = func() [board.NumSquares]int {
	var ret [board.NumSquares]int
	for sq := board.ZeroSquare; sq < board.NumSquares; sq++ {
		f := max(3-sq.File().V(), sq.File().V()-4)
		r := max(3-sq.Rank().V(), sq.Rank().V()-4)
		ret[sq] = max(f, r)
	}
	return ret
}()

// lerp interpolates between a (phase 0) and b (phase phaseScale) with integer
// math.
func lerp(a, b, phase int) int {
	return a + ((b-a)*phase)/phaseScale
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func max(a, b int) int {
	if a < b {
		return b
	}
	return a
}
