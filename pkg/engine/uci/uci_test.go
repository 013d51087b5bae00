package uci_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/herohde/gambit/pkg/engine"
	"github.com/herohde/gambit/pkg/engine/uci"
	"github.com/herohde/gambit/pkg/eval"
	"github.com/herohde/gambit/pkg/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// session drives a driver with scripted input and collects output lines.
type session struct {
	t   *testing.T
	in  chan string
	out <-chan string
}

func newSession(t *testing.T) *session {
	ctx := context.Background()

	e := engine.New(ctx, "gambit", "test",
		search.NewIterative(eval.Tapered{}),
		engine.WithOptions(engine.Options{Hash: 8, Threads: 1}),
	)

	in := make(chan string, 16)
	_, out := uci.NewDriver(ctx, e, in)
	return &session{t: t, in: in, out: out}
}

func (s *session) send(line string) {
	s.in <- line
}

// expect reads lines until one has the given prefix, failing on timeout.
func (s *session) expect(prefix string) string {
	s.t.Helper()

	deadline := time.After(30 * time.Second)
	for {
		select {
		case line, ok := <-s.out:
			if !ok {
				s.t.Fatalf("output closed while waiting for %q", prefix)
			}
			if strings.HasPrefix(line, prefix) {
				return line
			}
		case <-deadline:
			s.t.Fatalf("timeout waiting for %q", prefix)
		}
	}
}

func TestDriverHandshake(t *testing.T) {
	s := newSession(t)

	s.expect("id name")
	s.expect("id author")
	s.expect("option name Hash")
	s.expect("option name Threads")
	s.expect("uciok")

	s.send("isready")
	s.expect("readyok")

	s.send("quit")
}

func TestDriverSearch(t *testing.T) {
	s := newSession(t)
	s.expect("uciok")

	s.send("position startpos moves e2e4 e7e5")
	s.send("go depth 3")

	info := s.expect("info")
	assert.Contains(t, info, "score")
	assert.Contains(t, info, "pv")

	best := s.expect("bestmove")
	parts := strings.Fields(best)
	require.Len(t, parts, 2)
	assert.NotEqual(t, "0000", parts[1])

	s.send("quit")
}

func TestDriverMate(t *testing.T) {
	s := newSession(t)
	s.expect("uciok")

	// Back-rank mate in 1 for black.
	s.send("position fen 3qk3/8/8/8/8/8/5PPP/3R2K1 b - - 0 1")
	s.send("go depth 5")

	info := s.expect("info score mate")
	assert.Contains(t, info, "score mate 1")

	best := s.expect("bestmove")
	assert.Equal(t, "bestmove d8d1", best)

	s.send("quit")
}

func TestDriverStopInfinite(t *testing.T) {
	s := newSession(t)
	s.expect("uciok")

	s.send("position startpos")
	s.send("go infinite")

	time.Sleep(100 * time.Millisecond)
	s.send("stop")
	s.expect("bestmove")

	s.send("quit")
}

func TestDriverSetOption(t *testing.T) {
	s := newSession(t)
	s.expect("uciok")

	s.send("setoption name Hash value 16")
	s.send("setoption name Threads value 2")
	s.send("isready")
	s.expect("readyok")

	// Out-of-range and unknown options surface an error without killing the
	// driver.
	s.send("setoption name Hash value 99999")
	s.expect("info string error")
	s.send("setoption name Nonsense value 1")
	s.expect("info string error")

	s.send("isready")
	s.expect("readyok")
	s.send("quit")
}

func TestDriverInvalidInput(t *testing.T) {
	s := newSession(t)
	s.expect("uciok")

	s.send("position fen not/a/fen w - - 0 1")
	s.expect("info string error")

	s.send("position startpos moves e2e5")
	s.expect("info string error")

	// The engine remains usable.
	s.send("position startpos moves g1f3")
	s.send("go depth 2")
	s.expect("bestmove")

	s.send("quit")
}

func TestDriverGameContinuation(t *testing.T) {
	s := newSession(t)
	s.expect("uciok")

	s.send("position startpos moves e2e4")
	s.send("go depth 2")
	s.expect("bestmove")

	// The next position line extends the previous one; only the new moves
	// are applied.
	s.send("position startpos moves e2e4 e7e5 g1f3")
	s.send("go depth 2")
	s.expect("bestmove")

	s.send("ucinewgame")
	s.send("isready")
	s.expect("readyok")
	s.send("quit")
}
