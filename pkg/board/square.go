package board

import "fmt"

// Square represents a square on the board, ordered A1=0, B1=1, .., H8=63. The
// numbering is a bit-index into the bitboard layout: file = index mod 8 and
// rank = index div 8. 6 bits.
type Square uint8

const (
	A1 Square = iota
	B1
	C1
	D1
	E1
	F1
	G1
	H1

	A2
	B2
	C2
	D2
	E2
	F2
	G2
	H2

	A3
	B3
	C3
	D3
	E3
	F3
	G3
	H3

	A4
	B4
	C4
	D4
	E4
	F4
	G4
	H4

	A5
	B5
	C5
	D5
	E5
	F5
	G5
	H5

	A6
	B6
	C6
	D6
	E6
	F6
	G6
	H6

	A7
	B7
	C7
	D7
	E7
	F7
	G7
	H7

	A8
	B8
	C8
	D8
	E8
	F8
	G8
	H8
)

// Iteration helpers to enable "for sq := ZeroSquare; sq < NumSquares; sq++".
const (
	ZeroSquare Square = 0
	NumSquares Square = 64

	// NoSquare is the distinguished "none" value.
	NoSquare Square = 64
)

func NewSquare(f File, r Rank) Square {
	return ((Square(r) & 0x7) << 3) | (Square(f) & 0x7)
}

func ParseSquare(f, r rune) (Square, error) {
	file, ok := ParseFile(f)
	if !ok {
		return NoSquare, fmt.Errorf("invalid file: %v", string(f))
	}
	rank, ok := ParseRank(r)
	if !ok {
		return NoSquare, fmt.Errorf("invalid rank: %v", string(r))
	}
	return NewSquare(file, rank), nil
}

func ParseSquareStr(str string) (Square, error) {
	runes := []rune(str)
	if len(runes) != 2 {
		return NoSquare, fmt.Errorf("invalid square: %v", str)
	}
	return ParseSquare(runes[0], runes[1])
}

func (s Square) IsValid() bool {
	return s < NumSquares
}

func (s Square) Rank() Rank {
	return Rank((s >> 3) & 0x7)
}

func (s Square) File() File {
	return File(s & 0x7)
}

// Flip returns the vertically mirrored square, i.e., A1 <-> A8.
func (s Square) Flip() Square {
	return s ^ 56
}

func (s Square) String() string {
	if !s.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%v%v", s.File(), s.Rank())
}

// Rank represents a chess board rank from Rank1=0, ..Rank8=7. 3 bits.
type Rank uint8

const (
	Rank1 Rank = iota
	Rank2
	Rank3
	Rank4
	Rank5
	Rank6
	Rank7
	Rank8
)

const (
	ZeroRank Rank = 0
	NumRanks Rank = 8
)

func ParseRank(r rune) (Rank, bool) {
	if r < '1' || '8' < r {
		return 0, false
	}
	return Rank(r - '1'), true
}

func (r Rank) IsValid() bool {
	return r <= Rank8
}

func (r Rank) V() int {
	return int(r)
}

func (r Rank) String() string {
	if !r.IsValid() {
		return "?"
	}
	return string(rune('1' + r))
}

// File represents a chess board file from FileA=0, ..FileH=7. 3 bits.
type File uint8

const (
	FileA File = iota
	FileB
	FileC
	FileD
	FileE
	FileF
	FileG
	FileH
)

const (
	ZeroFile File = 0
	NumFiles File = 8
)

func ParseFile(r rune) (File, bool) {
	switch {
	case 'a' <= r && r <= 'h':
		return File(r - 'a'), true
	case 'A' <= r && r <= 'H':
		return File(r - 'A'), true
	default:
		return 0, false
	}
}

func (f File) IsValid() bool {
	return f <= FileH
}

func (f File) V() int {
	return int(f)
}

func (f File) String() string {
	if !f.IsValid() {
		return "?"
	}
	return string(rune('a' + f))
}
