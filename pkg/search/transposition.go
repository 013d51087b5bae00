package search

import (
	"context"
	"fmt"
	"math/bits"
	"sync/atomic"

	"github.com/herohde/gambit/pkg/board"
	"github.com/herohde/gambit/pkg/eval"
	"github.com/seekerror/logw"
)

// Flag is the bound of a -- possibly inexact -- transposition table score.
type Flag uint8

const (
	NoFlag    Flag = iota
	ExactFlag      // exact score
	AlphaFlag      // upper bound: true score <= entry score
	BetaFlag       // lower bound: true score >= entry score
)

func (f Flag) String() string {
	switch f {
	case ExactFlag:
		return "Exact"
	case AlphaFlag:
		return "Alpha"
	case BetaFlag:
		return "Beta"
	default:
		return "None"
	}
}

// TranspositionTable is a fixed-size, power-of-two-bucket, aged cache of
// search results, shared by all workers. Each 16-byte entry occupies two
// words: the packed payload and the position hash XORed with the payload, so
// a torn write is detected on read and discarded ("lock-less hashing"). Each
// bucket holds two entries; eviction prefers empty slots, then older age,
// then shallower depth. Thread-safe.
//
// See: https://www.chessprogramming.org/Shared_Hash_Table.
type TranspositionTable struct {
	words []uint64 // two words per entry, four per bucket
	mask  uint64   // bucket index mask
	age   uint32
}

const (
	entryWords  = 2
	bucketSlots = 2
	entryBytes  = 16
)

// NewTranspositionTable returns a table of the nearest power-of-two number of
// buckets that fits the given size.
func NewTranspositionTable(ctx context.Context, size uint64) *TranspositionTable {
	entries := uint64(bucketSlots)
	if n := size / entryBytes; n >= bucketSlots {
		entries = uint64(1) << (63 - bits.LeadingZeros64(n))
	}
	buckets := entries / bucketSlots

	logw.Infof(ctx, "Allocating %vMB TT with %v entries", size>>20, entries)

	return &TranspositionTable{
		words: make([]uint64, entries*entryWords),
		mask:  buckets - 1,
	}
}

// Size returns the size of the table in bytes.
func (t *TranspositionTable) Size() uint64 {
	return uint64(len(t.words)) << 3
}

// IncrementAge ages the table by one. Called at the start of every search so
// that eviction prefers entries from recent searches.
func (t *TranspositionTable) IncrementAge() {
	atomic.AddUint32(&t.age, 1)
}

// Probe returns the stored move, score, depth and flag for the position, if
// present. The score is entry-relative; callers adjust mate scores by ply via
// ScoreFromTT.
func (t *TranspositionTable) Probe(hash board.ZobristHash) (board.Move, eval.Score, int, Flag, bool) {
	base := (uint64(hash) & t.mask) * entryWords * bucketSlots

	for slot := uint64(0); slot < bucketSlots; slot++ {
		data := atomic.LoadUint64(&t.words[base+slot*entryWords])
		check := atomic.LoadUint64(&t.words[base+slot*entryWords+1])
		if data != 0 && data^check == uint64(hash) {
			move, score, depth, flag, _ := unpackEntry(data)
			return move, score, depth, flag, true
		}
	}
	return board.NullMove, 0, 0, NoFlag, false
}

// Store writes an entry for the position. The slot to overwrite is chosen in
// this order: same position > empty slot > older age > shallower depth, so the
// deepest recent entry is always kept.
func (t *TranspositionTable) Store(hash board.ZobristHash, move board.Move, score eval.Score, depth int, flag Flag) {
	base := (uint64(hash) & t.mask) * entryWords * bucketSlots
	age := uint8(atomic.LoadUint32(&t.age))

	victim := base
	victimDepth := 0
	victimOld := false
	picked := false

	for slot := uint64(0); slot < bucketSlots; slot++ {
		i := base + slot*entryWords
		data := atomic.LoadUint64(&t.words[i])
		check := atomic.LoadUint64(&t.words[i+1])

		if data == 0 || data^check == uint64(hash) {
			victim = i
			picked = true
			break
		}

		_, _, entryDepth, _, entryAge := unpackEntry(data)
		old := newerAge(age, entryAge)
		switch {
		case !picked:
			victim, victimDepth, victimOld, picked = i, entryDepth, old, true
		case old != victimOld:
			if old {
				victim, victimDepth, victimOld = i, entryDepth, old
			}
		case entryDepth < victimDepth:
			victim, victimDepth = i, entryDepth
		}
	}

	data := packEntry(move, score, depth, flag, age)
	atomic.StoreUint64(&t.words[victim], data)
	atomic.StoreUint64(&t.words[victim+1], data^uint64(hash))
}

func (t *TranspositionTable) String() string {
	return fmt.Sprintf("TT[%vMB]", t.Size()>>20)
}

// packEntry packs move(16) | score(16) | depth(8) | flag(8) | age(8) into one
// word. The word is never zero for a valid entry because the flag is nonzero.
func packEntry(move board.Move, score eval.Score, depth int, flag Flag, age uint8) uint64 {
	return uint64(move) |
		uint64(uint16(score))<<16 |
		uint64(uint8(depth))<<32 |
		uint64(flag)<<40 |
		uint64(age)<<48
}

func unpackEntry(data uint64) (board.Move, eval.Score, int, Flag, uint8) {
	move := board.Move(data & 0xffff)
	score := eval.Score(int16(data >> 16 & 0xffff))
	depth := int(data >> 32 & 0xff)
	flag := Flag(data >> 40 & 0xff)
	age := uint8(data >> 48 & 0xff)
	return move, score, depth, flag, age
}

// newerAge returns true iff a is newer than b under modular comparison.
func newerAge(a, b uint8) bool {
	d := a - b
	return 1 <= d && d <= 128
}

// ScoreToTT converts a root-relative score to entry-relative form for
// storage: a mate found k plies from the root is stored as a mate relative to
// the node itself.
func ScoreToTT(s eval.Score, ply int) eval.Score {
	if !s.IsMate() {
		return s
	}
	if s > 0 {
		return s + eval.Score(ply)
	}
	return s - eval.Score(ply)
}

// ScoreFromTT converts a stored entry-relative score back to root-relative
// form at the probing node's ply.
func ScoreFromTT(s eval.Score, ply int) eval.Score {
	if !s.IsMate() {
		return s
	}
	if s > 0 {
		return s - eval.Score(ply)
	}
	return s + eval.Score(ply)
}
