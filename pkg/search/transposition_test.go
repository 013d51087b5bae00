package search_test

import (
	"context"
	"testing"

	"github.com/herohde/gambit/pkg/board"
	"github.com/herohde/gambit/pkg/eval"
	"github.com/herohde/gambit/pkg/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranspositionTableRoundTrip(t *testing.T) {
	ctx := context.Background()
	tt := search.NewTranspositionTable(ctx, 1<<20)

	hash := board.ZobristHash(0x123456789abcdef)
	move := board.NewMove(board.E2, board.E4, board.DoublePushFlag)

	tt.Store(hash, move, 42, 7, search.ExactFlag)

	gotMove, gotScore, gotDepth, gotFlag, ok := tt.Probe(hash)
	require.True(t, ok)
	assert.Equal(t, move, gotMove)
	assert.Equal(t, eval.Score(42), gotScore)
	assert.Equal(t, 7, gotDepth)
	assert.Equal(t, search.ExactFlag, gotFlag)

	_, _, _, _, ok = tt.Probe(hash ^ 0xffff0000)
	assert.False(t, ok, "different hash must miss")
}

func TestTranspositionTableNegativeScore(t *testing.T) {
	ctx := context.Background()
	tt := search.NewTranspositionTable(ctx, 1<<20)

	tt.Store(1, board.NullMove, -1234, 3, search.AlphaFlag)
	_, score, _, _, ok := tt.Probe(1)
	require.True(t, ok)
	assert.Equal(t, eval.Score(-1234), score)
}

func TestTranspositionTableReplacement(t *testing.T) {
	ctx := context.Background()
	tt := search.NewTranspositionTable(ctx, 1<<10) // 64 entries, 32 buckets

	// Three same-age entries hash to the same bucket: the shallowest of the
	// first two is evicted, the deepest survives.
	base := board.ZobristHash(5)
	h1, h2, h3 := base, base+32, base+64

	tt.Store(h1, board.NullMove, 1, 9, search.ExactFlag)
	tt.Store(h2, board.NullMove, 2, 3, search.ExactFlag)
	tt.Store(h3, board.NullMove, 3, 5, search.ExactFlag)

	_, _, _, _, ok := tt.Probe(h1)
	assert.True(t, ok, "deepest entry must survive")
	_, _, _, _, ok = tt.Probe(h3)
	assert.True(t, ok, "latest store must land")
	_, _, _, _, ok = tt.Probe(h2)
	assert.False(t, ok, "shallowest entry must be evicted")
}

func TestTranspositionTableSamePositionOverwrites(t *testing.T) {
	ctx := context.Background()
	tt := search.NewTranspositionTable(ctx, 1<<10)

	tt.Store(7, board.NullMove, 10, 2, search.AlphaFlag)
	tt.Store(7, board.NullMove, 20, 6, search.ExactFlag)

	_, score, depth, flag, ok := tt.Probe(7)
	require.True(t, ok)
	assert.Equal(t, eval.Score(20), score)
	assert.Equal(t, 6, depth)
	assert.Equal(t, search.ExactFlag, flag)
}

func TestScoreToFromTT(t *testing.T) {
	// A mate found at ply 4 is stored node-relative and recovered at a
	// different probing ply.
	root := eval.MateIn(9) // mate in 9 plies from the root, seen at ply 4

	stored := search.ScoreToTT(root, 4)
	assert.Equal(t, eval.MateIn(5), stored, "node-relative: mate in 5 from the node")

	assert.Equal(t, eval.MateIn(11), search.ScoreFromTT(stored, 6), "re-rooted at ply 6")
	assert.Equal(t, root, search.ScoreFromTT(stored, 4))

	// Mated scores mirror.
	mated := search.ScoreToTT(eval.MatedIn(9), 4)
	assert.Equal(t, eval.MatedIn(5), mated)
	assert.Equal(t, eval.MatedIn(9), search.ScoreFromTT(mated, 4))

	// Heuristic scores pass through unchanged.
	assert.Equal(t, eval.Score(123), search.ScoreToTT(123, 12))
	assert.Equal(t, eval.Score(123), search.ScoreFromTT(123, 12))
}
