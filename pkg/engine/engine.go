// Package engine encapsulates game-playing logic, search and evaluation
// behind a protocol-agnostic facade.
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/herohde/gambit/pkg/board"
	"github.com/herohde/gambit/pkg/board/fen"
	"github.com/herohde/gambit/pkg/search"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
)

var version = build.NewVersion(0, 3, 0)

// Limits on dynamically configurable options.
const (
	MinHashMB = 1
	MaxHashMB = 1024

	MinThreads = 1
	MaxThreads = 24
)

// Options are engine creation options.
type Options struct {
	// Depth is the default search depth limit. If zero, there is no limit.
	// Overridden by search options if provided.
	Depth uint
	// Hash is the transposition table size in MB.
	Hash uint
	// Threads is the default number of search workers.
	Threads uint
}

func (o Options) String() string {
	return fmt.Sprintf("{depth=%v, hash=%v, threads=%v}", o.Depth, o.Hash, o.Threads)
}

// Engine drives the board state and search lifecycle for a game.
type Engine struct {
	name, author string

	launcher search.Launcher
	opts     Options

	pos     *board.Position
	history []board.ZobristHash // game hashes up to the current position
	tt      *search.TranspositionTable
	active  search.Handle
	mu      sync.Mutex
}

// Option is an engine creation option.
type Option func(*Engine)

// WithOptions sets default runtime options.
func WithOptions(opts Options) Option {
	return func(e *Engine) {
		e.opts = opts
	}
}

func New(ctx context.Context, name, author string, launcher search.Launcher, opts ...Option) *Engine {
	e := &Engine{
		name:     name,
		author:   author,
		launcher: launcher,
		opts:     Options{Hash: 64, Threads: 1},
	}
	for _, fn := range opts {
		fn(e)
	}

	_ = e.Reset(ctx, fen.Initial)

	logw.Infof(ctx, "Initialized engine: %v, options=%v", e.Name(), e.opts)
	return e
}

// Name returns the engine name and version.
func (e *Engine) Name() string {
	return fmt.Sprintf("%v %v", e.name, version)
}

// Author returns the author.
func (e *Engine) Author() string {
	return e.author
}

func (e *Engine) Options() Options {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.opts
}

func (e *Engine) SetDepth(depth uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Depth = depth
}

// SetHash reallocates the transposition table. On failure, the previously
// configured table is retained.
func (e *Engine) SetHash(ctx context.Context, size uint) (err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if size < MinHashMB || size > MaxHashMB {
		return fmt.Errorf("hash size out of range [%v;%v]: %v", MinHashMB, MaxHashMB, size)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hash allocation of %vMB failed: %v", size, r)
		}
	}()

	e.tt = search.NewTranspositionTable(ctx, uint64(size)<<20)
	e.opts.Hash = size
	return nil
}

func (e *Engine) SetThreads(threads uint) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if threads < MinThreads || threads > MaxThreads {
		return fmt.Errorf("thread count out of range [%v;%v]: %v", MinThreads, MaxThreads, threads)
	}
	e.opts.Threads = threads
	return nil
}

// Position returns the current position in FEN format.
func (e *Engine) Position() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return fen.Encode(e.pos)
}

// NewGame resets the board for a new game. The transposition table is
// retained; it is aged at the start of every search.
func (e *Engine) NewGame(ctx context.Context) error {
	return e.Reset(ctx, fen.Initial)
}

// Reset resets the engine to a new starting position in FEN format.
func (e *Engine) Reset(ctx context.Context, position string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	logw.Infof(ctx, "Reset %v, options=%v", position, e.opts)

	_, _ = e.haltSearchIfActive(ctx)

	pos, err := fen.Decode(position)
	if err != nil {
		return err
	}
	e.pos = pos
	e.history = []board.ZobristHash{pos.Hash()}

	if e.tt == nil {
		e.tt = search.NewTranspositionTable(ctx, uint64(e.opts.Hash)<<20)
	}

	logw.Infof(ctx, "New board: %v", e.pos)
	return nil
}

// Move applies the given move, usually an opponent move, in coordinate
// notation. The move is validated against the generated legal moves before
// any state changes.
func (e *Engine) Move(ctx context.Context, move string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	candidate, err := board.ParseCandidate(move)
	if err != nil {
		return fmt.Errorf("invalid move: %v", err)
	}

	_, _ = e.haltSearchIfActive(ctx)

	for _, m := range board.LegalMoves(e.pos) {
		if !candidate.Matches(m) {
			continue
		}

		e.pos.Make(m)
		e.history = append(e.history, e.pos.Hash())

		logw.Infof(ctx, "Move %v: %v", m, e.pos)
		return nil
	}
	return fmt.Errorf("illegal move: %v", candidate)
}

// Analyze analyzes the current position.
func (e *Engine) Analyze(ctx context.Context, opt search.Options) (<-chan search.PV, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := opt.DepthLimit.V(); !ok && e.opts.Depth > 0 {
		opt.DepthLimit = lang.Some(int(e.opts.Depth))
	}
	if opt.Threads == 0 {
		opt.Threads = int(e.opts.Threads)
	}

	logw.Infof(ctx, "Analyze %v, opt=%v", e.pos, opt)

	if e.active != nil {
		return nil, fmt.Errorf("search already active")
	}

	// The search pushes the current position itself, so only the hashes of
	// the earlier positions are passed.
	history := make([]board.ZobristHash, len(e.history)-1)
	copy(history, e.history)

	handle, out := e.launcher.Launch(ctx, e.pos.Copy(), history, e.tt, opt)
	e.active = handle
	return out, nil
}

// Halt halts the active search and returns the principal variation, if any.
func (e *Engine) Halt(ctx context.Context) (search.PV, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pv, ok := e.haltSearchIfActive(ctx)
	if !ok {
		return search.PV{}, fmt.Errorf("no active search")
	}
	return pv, nil
}

func (e *Engine) haltSearchIfActive(ctx context.Context) (search.PV, bool) {
	if e.active != nil {
		pv := e.active.Halt()
		logw.Infof(ctx, "Search %v halted: %v", e.pos, pv)

		e.active = nil
		return pv, true
	}
	return search.PV{}, false
}
