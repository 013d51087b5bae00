package search_test

import (
	"testing"
	"time"

	"github.com/herohde/gambit/pkg/board"
	"github.com/herohde/gambit/pkg/search"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/stretchr/testify/assert"
)

func TestTimeManagerInfinite(t *testing.T) {
	var tm search.TimeManager
	tm.Begin(search.Options{Infinite: true}, board.White)

	assert.False(t, tm.ShouldStop())
	assert.True(t, tm.ContinueIteration(time.Hour))

	tm.Stop()
	assert.True(t, tm.ShouldStop())
	assert.True(t, tm.Stopped())
}

func TestTimeManagerDepthOnly(t *testing.T) {
	var tm search.TimeManager
	tm.Begin(search.Options{DepthLimit: lang.Some(5)}, board.White)

	assert.False(t, tm.ShouldStop(), "depth-only search has no deadline")
	assert.True(t, tm.ContinueIteration(time.Hour))
}

func TestTimeManagerMoveTime(t *testing.T) {
	var tm search.TimeManager
	tm.Begin(search.Options{MoveTime: lang.Some(time.Hour)}, board.White)

	assert.False(t, tm.ShouldStop())

	tm.Begin(search.Options{MoveTime: lang.Some(-time.Second)}, board.White)
	assert.True(t, tm.ShouldStop(), "expired budget must stop")
}

func TestTimeManagerClock(t *testing.T) {
	// 24s on the clock, no movestogo: the allocation is about a second, so
	// an iteration that took 2s predicts 8s and must not continue.
	var tm search.TimeManager
	tm.Begin(search.Options{TimeControl: lang.Some(search.TimeControl{
		White: 24 * time.Second,
		Black: time.Second,
	})}, board.White)

	assert.False(t, tm.ShouldStop())
	assert.True(t, tm.ContinueIteration(10*time.Millisecond))
	assert.False(t, tm.ContinueIteration(2*time.Second))
}

func TestTimeManagerPerspective(t *testing.T) {
	// Black is nearly out of time; the allocation must use black's clock.
	var tm search.TimeManager
	tm.Begin(search.Options{TimeControl: lang.Some(search.TimeControl{
		White: time.Hour,
		Black: 10 * time.Millisecond,
	})}, board.Black)

	assert.False(t, tm.ContinueIteration(time.Second))
}
