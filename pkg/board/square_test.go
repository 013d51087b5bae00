package board_test

import (
	"testing"

	"github.com/herohde/gambit/pkg/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSquareLayout(t *testing.T) {
	assert.Equal(t, board.Square(0), board.A1)
	assert.Equal(t, board.Square(7), board.H1)
	assert.Equal(t, board.Square(63), board.H8)

	assert.Equal(t, board.FileE, board.E4.File())
	assert.Equal(t, board.Rank4, board.E4.Rank())
	assert.Equal(t, board.E4, board.NewSquare(board.FileE, board.Rank4))
}

func TestSquareFlip(t *testing.T) {
	assert.Equal(t, board.A8, board.A1.Flip())
	assert.Equal(t, board.E4, board.E5.Flip())
	assert.Equal(t, board.H1, board.H8.Flip())
}

func TestParseSquare(t *testing.T) {
	for sq := board.ZeroSquare; sq < board.NumSquares; sq++ {
		actual, err := board.ParseSquareStr(sq.String())
		require.NoError(t, err)
		assert.Equal(t, sq, actual)
	}

	for _, bad := range []string{"", "e", "e44", "i4", "e9", "44"} {
		_, err := board.ParseSquareStr(bad)
		assert.Error(t, err, bad)
	}
}
