package search

import (
	"time"

	"github.com/herohde/gambit/pkg/board"
	"go.uber.org/atomic"
)

// TimeManager allocates per-move search time from the game clock and owns
// the cooperative stop flag shared by all workers. Begin is called once per
// search; ShouldStop is polled at every node.
type TimeManager struct {
	stop atomic.Bool

	start   time.Time
	end     time.Time
	managed bool
}

// Begin starts the clock for a search with the given options, from the
// perspective of the side to move.
func (tm *TimeManager) Begin(opt Options, turn board.Color) {
	tm.start = time.Now()
	tm.stop.Store(false)
	tm.managed = false

	if opt.Infinite {
		return // search until stopped
	}

	if mt, ok := opt.MoveTime.V(); ok {
		tm.managed = true
		tm.end = tm.start.Add(mt)
		return
	}

	if tc, ok := opt.TimeControl.V(); ok {
		left, inc := tc.Time(turn)
		if left <= 0 {
			return // no clock: depth-only or infinite
		}

		moves := tc.MovesToGo
		if moves < 24 {
			moves = 24
		}

		ideal := left/time.Duration(moves) + 3*inc/4
		if limit := left * 95 / 100; ideal > limit {
			ideal = limit
		}

		tm.managed = true
		tm.end = tm.start.Add(ideal)
	}
}

// ShouldStop returns true iff the external stop was requested or the
// allocated time is exhausted. Cheap enough to poll once per node.
func (tm *TimeManager) ShouldStop() bool {
	if tm.stop.Load() {
		return true
	}
	return tm.managed && time.Now().After(tm.end)
}

// ContinueIteration predicts whether another iterative-deepening iteration
// fits in the remaining budget. The next iteration is predicted to take about
// four times the last one.
func (tm *TimeManager) ContinueIteration(last time.Duration) bool {
	if !tm.managed {
		return true
	}

	predicted := 4 * last
	remaining := time.Until(tm.end) * 95 / 100
	return predicted < remaining
}

// Elapsed returns the time since Begin.
func (tm *TimeManager) Elapsed() time.Duration {
	return time.Since(tm.start)
}

// Stop requests a cooperative stop. Idempotent.
func (tm *TimeManager) Stop() {
	tm.stop.Store(true)
}

// Stopped returns true iff an external stop was requested. A relaxed flag
// read, cheap enough for the per-node poll.
func (tm *TimeManager) Stopped() bool {
	return tm.stop.Load()
}
