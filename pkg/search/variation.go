package search

import "github.com/herohde/gambit/pkg/board"

// Variation is a fixed-capacity principal variation buffer, accumulated
// during search. Each node sets its best move followed by the child line.
type Variation struct {
	moves [MaxVariation]board.Move
	n     int
}

// Set records the move followed by the child line.
func (v *Variation) Set(m board.Move, child *Variation) {
	v.moves[0] = m
	v.n = 1
	if child != nil {
		v.n += copy(v.moves[1:], child.moves[:child.n])
	}
}

// Clear empties the line.
func (v *Variation) Clear() {
	v.n = 0
}

// Moves returns the line as a slice copy.
func (v *Variation) Moves() []board.Move {
	ret := make([]board.Move, v.n)
	copy(ret, v.moves[:v.n])
	return ret
}
