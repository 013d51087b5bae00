package board_test

import (
	"testing"

	"github.com/herohde/gambit/pkg/board"
	"github.com/stretchr/testify/assert"
)

// traceAttacks is a naive step-wise slider attack computation, used as an
// oracle for the magic lookup tables.
func traceAttacks(sq board.Square, occupancy board.Bitboard, deltas [][2]int) board.Bitboard {
	ret := board.EmptyBitboard
	for _, d := range deltas {
		f, r := sq.File().V()+d[0], sq.Rank().V()+d[1]
		for 0 <= f && f < 8 && 0 <= r && r < 8 {
			cur := board.NewSquare(board.File(f), board.Rank(r))
			ret |= board.BitMask(cur)
			if occupancy.IsSet(cur) {
				break
			}
			f += d[0]
			r += d[1]
		}
	}
	return ret
}

var (
	rookDeltas   = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopDeltas = [][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

// xorshift is a tiny deterministic PRNG for occupancy sampling.
func xorshift(state *uint64) uint64 {
	*state ^= *state << 13
	*state ^= *state >> 7
	*state ^= *state << 17
	return *state
}

func TestSliderAttackboards(t *testing.T) {
	state := uint64(0x9e3779b97f4a7c15)

	for sq := board.ZeroSquare; sq < board.NumSquares; sq++ {
		for i := 0; i < 128; i++ {
			// Sparse-ish random occupancy.
			occupancy := board.Bitboard(xorshift(&state) & xorshift(&state))

			assert.Equal(t, traceAttacks(sq, occupancy, rookDeltas), board.RookAttackboard(occupancy, sq), "rook@%v occ=%v", sq, occupancy)
			assert.Equal(t, traceAttacks(sq, occupancy, bishopDeltas), board.BishopAttackboard(occupancy, sq), "bishop@%v occ=%v", sq, occupancy)
		}
	}
}

func TestKnightAttackboard(t *testing.T) {
	assert.Equal(t, board.BitMask(board.B3)|board.BitMask(board.C2), board.KnightAttackboard(board.A1))
	assert.Equal(t, 8, board.KnightAttackboard(board.E4).PopCount())
	assert.True(t, board.KnightAttackboard(board.G1).IsSet(board.F3))
	assert.False(t, board.KnightAttackboard(board.G1).IsSet(board.G3))

	// Knights never wrap across the board edge.
	assert.Equal(t, 2, board.KnightAttackboard(board.H8).PopCount())
	assert.Equal(t, 3, board.KnightAttackboard(board.B1).PopCount())
}

func TestKingAttackboard(t *testing.T) {
	assert.Equal(t, 3, board.KingAttackboard(board.A1).PopCount())
	assert.Equal(t, 5, board.KingAttackboard(board.E1).PopCount())
	assert.Equal(t, 8, board.KingAttackboard(board.E4).PopCount())
	assert.False(t, board.KingAttackboard(board.E4).IsSet(board.E4))
}

func TestPawnAttackboard(t *testing.T) {
	assert.Equal(t, board.BitMask(board.D3)|board.BitMask(board.F3), board.PawnAttackboard(board.White, board.E2))
	assert.Equal(t, board.BitMask(board.D6)|board.BitMask(board.F6), board.PawnAttackboard(board.Black, board.E7))
	assert.Equal(t, board.BitMask(board.B3), board.PawnAttackboard(board.White, board.A2))
}

func TestBetweenMask(t *testing.T) {
	tests := []struct {
		from, to board.Square
		expected board.Bitboard
	}{
		{board.A1, board.A4, board.BitMask(board.A2) | board.BitMask(board.A3)},
		{board.A4, board.A1, board.BitMask(board.A2) | board.BitMask(board.A3)},
		{board.A1, board.H8, board.BitMask(board.B2) | board.BitMask(board.C3) | board.BitMask(board.D4) | board.BitMask(board.E5) | board.BitMask(board.F6) | board.BitMask(board.G7)},
		{board.E4, board.F4, board.EmptyBitboard}, // adjacent
		{board.A1, board.B3, board.EmptyBitboard}, // off-line
		{board.E4, board.E4, board.EmptyBitboard},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, board.BetweenMask(tt.from, tt.to), "%v-%v", tt.from, tt.to)
	}
}

func TestQueenAttackboard(t *testing.T) {
	occupancy := board.BitMask(board.E6) | board.BitMask(board.B4)
	expected := board.RookAttackboard(occupancy, board.E4) | board.BishopAttackboard(occupancy, board.E4)
	assert.Equal(t, expected, board.QueenAttackboard(occupancy, board.E4))
}
