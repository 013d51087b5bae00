package search_test

import (
	"context"
	"testing"
	"time"

	"github.com/herohde/gambit/pkg/board"
	"github.com/herohde/gambit/pkg/board/fen"
	"github.com/herohde/gambit/pkg/eval"
	"github.com/herohde/gambit/pkg/search"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func launch(t *testing.T, position string, opt search.Options) (search.Handle, <-chan search.PV) {
	t.Helper()

	pos, err := fen.Decode(position)
	require.NoError(t, err)

	tt := search.NewTranspositionTable(context.Background(), 4<<20)
	return search.NewIterative(eval.Tapered{}).Launch(context.Background(), pos, nil, tt, opt)
}

// assertPVConsistent verifies that every move in the reported line is legal
// in the sequence of positions obtained by applying the earlier moves.
func assertPVConsistent(t *testing.T, position string, pv search.PV) {
	t.Helper()

	pos, err := fen.Decode(position)
	require.NoError(t, err)

	for _, m := range pv.Moves {
		legal := false
		for _, l := range board.LegalMoves(pos) {
			if l == m {
				legal = true
				break
			}
		}
		require.True(t, legal, "PV move %v is not legal in %v", m, pos)
		pos.Make(m)
	}
}

func TestIterativeDeepening(t *testing.T) {
	position := fen.Initial
	h, out := launch(t, position, search.Options{DepthLimit: lang.Some(4)})

	var last search.PV
	depths := 0
	for pv := range out {
		// Depths are reported in increasing order; each with a consistent PV.
		assert.Greater(t, pv.Depth, last.Depth)
		assert.NotEmpty(t, pv.Moves)
		assert.Greater(t, pv.Nodes, uint64(0))
		assertPVConsistent(t, position, pv)

		last = pv
		depths++
	}

	assert.Equal(t, 4, last.Depth, "search must reach the depth limit")
	assert.Equal(t, last.Moves, h.Halt().Moves, "Halt returns the last completed iteration")
}

func TestIterativeMateInOne(t *testing.T) {
	position := "3qk3/8/8/8/8/8/5PPP/3R2K1 b - - 0 1"
	_, out := launch(t, position, search.Options{DepthLimit: lang.Some(5)})

	var last search.PV
	for pv := range out {
		last = pv
	}

	require.NotEmpty(t, last.Moves)
	assert.Equal(t, "d8d1", last.Moves[0].String())
	assert.Equal(t, eval.MateIn(1), last.Score)
	assert.Less(t, last.Depth, 5, "a proven mate ends the deepening early")
}

func TestIterativeParallelWorkers(t *testing.T) {
	position := "2rr3k/pp3pp1/1nnqbN1p/3pN3/2pP4/2P3Q1/PPB4P/R4RK1 w - - 0 1"
	_, out := launch(t, position, search.Options{DepthLimit: lang.Some(5), Threads: 4})

	var last search.PV
	for pv := range out {
		assertPVConsistent(t, position, pv)
		last = pv
	}

	require.NotEmpty(t, last.Moves)
	assert.Equal(t, "g3g6", last.Moves[0].String())
	assert.Equal(t, eval.MateIn(3), last.Score)
}

func TestIterativeHalt(t *testing.T) {
	// An unbounded search is stopped externally; the best completed
	// iteration is returned. Halt is idempotent.
	position := "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"
	h, out := launch(t, position, search.Options{Infinite: true})

	time.Sleep(100 * time.Millisecond)
	pv := h.Halt()

	assert.NotEmpty(t, pv.Moves)
	assertPVConsistent(t, position, pv)
	assert.Equal(t, pv.Moves, h.Halt().Moves)

	// The channel drains and closes once the workers unwind.
	for range out {
	}
}

func TestIterativeRepetitionAvoidance(t *testing.T) {
	// The game history primes repetition detection: the root has already
	// occurred twice, but the root is exempt from the draw rule, so every
	// iteration still reports a move.
	pos, err := fen.Decode("4k3/8/8/8/8/8/8/4KR2 w - - 0 1")
	require.NoError(t, err)

	history := []board.ZobristHash{pos.Hash(), 1, pos.Hash(), 2}

	tt := search.NewTranspositionTable(context.Background(), 1<<20)
	_, out := search.NewIterative(eval.Tapered{}).Launch(context.Background(), pos.Copy(), history, tt, search.Options{DepthLimit: lang.Some(3)})

	for pv := range out {
		assert.NotEmpty(t, pv.Moves)
	}
}
