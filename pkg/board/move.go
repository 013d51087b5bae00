package board

import (
	"fmt"
)

// MoveFlags describes the type of a packed move. 4 bits.
type MoveFlags uint16

const (
	QuietFlag MoveFlags = iota
	DoublePushFlag
	KingCastleFlag
	QueenCastleFlag
	CaptureFlag
	EnPassantFlag
	_
	_
	KnightPromotionFlag
	BishopPromotionFlag
	RookPromotionFlag
	QueenPromotionFlag
	KnightPromotionCaptureFlag
	BishopPromotionCaptureFlag
	RookPromotionCaptureFlag
	QueenPromotionCaptureFlag
)

// Move is a packed move: source(6) | target(6) | flags(4). The null move has
// all bits zero. 16 bits.
type Move uint16

// NullMove is the empty move, used as a sentinel.
const NullMove Move = 0

func NewMove(from, to Square, flags MoveFlags) Move {
	return Move(from) | Move(to)<<6 | Move(flags)<<12
}

// NewPromotionMove returns a promotion move to the given piece kind.
func NewPromotionMove(from, to Square, promotion Piece, capture bool) Move {
	flags := KnightPromotionFlag + MoveFlags(promotion-Knight)
	if capture {
		flags += KnightPromotionCaptureFlag - KnightPromotionFlag
	}
	return NewMove(from, to, flags)
}

func (m Move) From() Square {
	return Square(m & 0x3f)
}

func (m Move) To() Square {
	return Square((m >> 6) & 0x3f)
}

func (m Move) Flags() MoveFlags {
	return MoveFlags(m>>12) & 0xf
}

// IsCapture returns true for captures, including en passant and capturing
// promotions.
func (m Move) IsCapture() bool {
	return m.Flags()&CaptureFlag != 0
}

func (m Move) IsEnPassant() bool {
	return m.Flags() == EnPassantFlag
}

func (m Move) IsDoublePush() bool {
	return m.Flags() == DoublePushFlag
}

func (m Move) IsCastle() bool {
	return m.Flags() == KingCastleFlag || m.Flags() == QueenCastleFlag
}

func (m Move) IsPromotion() bool {
	return m.Flags()&KnightPromotionFlag != 0
}

// IsQuiet returns true iff the move is neither a capture nor a promotion.
func (m Move) IsQuiet() bool {
	return m.Flags()&(CaptureFlag|KnightPromotionFlag) == 0
}

// Promotion returns the promotion piece kind, if any.
func (m Move) Promotion() (Piece, bool) {
	if !m.IsPromotion() {
		return 0, false
	}
	return Knight + Piece(m.Flags()&0x3), true
}

func (m Move) String() string {
	if m == NullMove {
		return "0000"
	}
	if p, ok := m.Promotion(); ok {
		return fmt.Sprintf("%v%v%v", m.From(), m.To(), p)
	}
	return fmt.Sprintf("%v%v", m.From(), m.To())
}

// Candidate is a move candidate in pure coordinate notation, such as "a2a4"
// or "a7a8q". It carries no contextual flags; the engine infers capture and
// castling status by matching against generated legal moves.
type Candidate struct {
	From, To  Square
	Promotion Piece // Pawn if none
}

// ParseCandidate parses a move in pure algebraic coordinate notation.
func ParseCandidate(str string) (Candidate, error) {
	runes := []rune(str)

	if len(runes) < 4 || len(runes) > 5 {
		return Candidate{}, fmt.Errorf("invalid move: '%v'", str)
	}

	from, err := ParseSquare(runes[0], runes[1])
	if err != nil {
		return Candidate{}, fmt.Errorf("invalid from: '%v': %v", str, err)
	}
	to, err := ParseSquare(runes[2], runes[3])
	if err != nil {
		return Candidate{}, fmt.Errorf("invalid to: '%v': %v", str, err)
	}

	ret := Candidate{From: from, To: to, Promotion: Pawn}
	if len(runes) == 5 {
		promo, ok := ParsePiece(runes[4])
		if !ok || promo == Pawn || promo == King {
			return Candidate{}, fmt.Errorf("invalid promotion: '%v'", str)
		}
		ret.Promotion = promo
	}
	return ret, nil
}

// Matches returns true iff the move realizes the candidate.
func (c Candidate) Matches(m Move) bool {
	if c.From != m.From() || c.To != m.To() {
		return false
	}
	if p, ok := m.Promotion(); ok {
		return c.Promotion == p
	}
	return c.Promotion == Pawn
}

func (c Candidate) String() string {
	if c.Promotion != Pawn {
		return fmt.Sprintf("%v%v%v", c.From, c.To, c.Promotion)
	}
	return fmt.Sprintf("%v%v", c.From, c.To)
}

// PrintMoves formats a list of moves as a space-separated string.
func PrintMoves(moves []Move) string {
	ret := ""
	for i, m := range moves {
		if i > 0 {
			ret += " "
		}
		ret += m.String()
	}
	return ret
}
