package engine_test

import (
	"context"
	"testing"

	"github.com/herohde/gambit/pkg/board/fen"
	"github.com/herohde/gambit/pkg/engine"
	"github.com/herohde/gambit/pkg/eval"
	"github.com/herohde/gambit/pkg/search"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	return engine.New(context.Background(), "gambit", "test",
		search.NewIterative(eval.Tapered{}),
		engine.WithOptions(engine.Options{Hash: 8, Threads: 1}),
	)
}

func TestEngineReset(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)

	assert.Equal(t, fen.Initial, e.Position())

	kiwipete := "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"
	require.NoError(t, e.Reset(ctx, kiwipete))
	assert.Equal(t, kiwipete, e.Position())

	assert.Error(t, e.Reset(ctx, "not a fen"))
}

func TestEngineMove(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)

	require.NoError(t, e.Move(ctx, "e2e4"))
	require.NoError(t, e.Move(ctx, "c7c5"))
	assert.Equal(t, "rnbqkbnr/pp1ppppp/8/2p5/4P3/8/PPPP1PPP/RNBQKBNR w KQkq c6 0 2", e.Position())

	// Illegal or malformed moves leave the position untouched.
	before := e.Position()
	assert.Error(t, e.Move(ctx, "e4e6"))
	assert.Error(t, e.Move(ctx, "zzzz"))
	assert.Equal(t, before, e.Position())
}

func TestEnginePromotionMove(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)

	require.NoError(t, e.Reset(ctx, "4k3/P7/8/8/8/8/8/4K3 w - - 0 1"))
	require.NoError(t, e.Move(ctx, "a7a8q"))
	assert.Equal(t, "Q3k3/8/8/8/8/8/8/4K3 b - - 0 1", e.Position())
}

func TestEngineAnalyze(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)

	out, err := e.Analyze(ctx, search.Options{DepthLimit: lang.Some(3)})
	require.NoError(t, err)

	// A second search cannot start while one is active.
	_, err = e.Analyze(ctx, search.Options{})
	assert.Error(t, err)

	var last search.PV
	for pv := range out {
		last = pv
	}
	assert.NotEmpty(t, last.Moves)
	assert.Equal(t, 3, last.Depth)

	_, err = e.Halt(ctx)
	assert.NoError(t, err)
}

func TestEngineSettings(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)

	assert.NoError(t, e.SetHash(ctx, 16))
	assert.Error(t, e.SetHash(ctx, 0))
	assert.Error(t, e.SetHash(ctx, 4096))

	assert.NoError(t, e.SetThreads(4))
	assert.Error(t, e.SetThreads(0))
	assert.Error(t, e.SetThreads(64))

	assert.Equal(t, uint(16), e.Options().Hash)
	assert.Equal(t, uint(4), e.Options().Threads)
}

func TestEngineNewGame(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)

	require.NoError(t, e.Move(ctx, "e2e4"))
	require.NoError(t, e.NewGame(ctx))
	assert.Equal(t, fen.Initial, e.Position())
}
