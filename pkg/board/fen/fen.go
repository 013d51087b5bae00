// Package fen contains utilities for reading and writing positions in FEN notation.
package fen

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/herohde/gambit/pkg/board"
)

const (
	Initial = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
)

// Decode returns a new position from a FEN description. The first four fields
// are mandatory; the halfmove clock and fullmove number default to "0 1".
//
// Example:
//
//	"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
func Decode(fen string) (*board.Position, error) {
	// A FEN record contains six space-separated fields:

	parts := strings.Fields(strings.TrimSpace(fen))
	if len(parts) < 4 || len(parts) > 6 {
		return nil, fmt.Errorf("invalid number of sections in FEN: '%v'", fen)
	}

	// (1) Piece placement from white's perspective: rank 8 first, file a
	// through h within each rank.

	var pieces []board.Placement

	rank := board.Rank8
	file := board.FileA
	for _, r := range parts[0] {
		switch {
		case r == '/':
			// Rank separator.
			if file != board.NumFiles {
				return nil, fmt.Errorf("invalid number of squares on rank %v in FEN: '%v'", rank, fen)
			}
			if rank == board.Rank1 {
				return nil, fmt.Errorf("too many ranks in FEN: '%v'", fen)
			}
			rank--
			file = board.FileA

		case unicode.IsDigit(r):
			// Digits 1-8 denote that many blank squares.
			file += board.File(r - '0')

		case unicode.IsLetter(r):
			// Upper-case letters are white pieces, lower-case black.
			piece, ok := board.ParsePiece(r)
			if !ok {
				return nil, fmt.Errorf("invalid piece '%v' in FEN: '%v'", string(r), fen)
			}
			color := board.Black
			if unicode.IsUpper(r) {
				color = board.White
			}
			pieces = append(pieces, board.Placement{Square: board.NewSquare(file, rank), Color: color, Piece: piece})
			file++

		default:
			return nil, fmt.Errorf("invalid character in FEN: '%v'", fen)
		}

		if file > board.NumFiles {
			return nil, fmt.Errorf("invalid number of squares on rank %v in FEN: '%v'", rank, fen)
		}
	}
	if rank != board.Rank1 || file != board.NumFiles {
		return nil, fmt.Errorf("invalid number of squares in FEN: '%v'", fen)
	}

	// (2) Active color: "w" or "b".

	var turn board.Color
	switch parts[1] {
	case "w":
		turn = board.White
	case "b":
		turn = board.Black
	default:
		return nil, fmt.Errorf("invalid active color in FEN: '%v'", fen)
	}

	// (3) Castling availability: "-" or a subset of "KQkq".

	castling, err := parseCastling(parts[2])
	if err != nil {
		return nil, fmt.Errorf("invalid castling in FEN: '%v'", fen)
	}

	// (4) En passant target square: "-" or the square behind the just-pushed pawn.

	ep := board.NoSquare
	if parts[3] != "-" {
		sq, err := board.ParseSquareStr(parts[3])
		if err != nil {
			return nil, fmt.Errorf("invalid en passant in FEN: '%v'", fen)
		}
		ep = sq
	}

	// (5) Halfmove clock: plies since the last pawn advance or capture.

	halfmove := 0
	if len(parts) > 4 {
		halfmove, err = strconv.Atoi(parts[4])
		if err != nil || halfmove < 0 {
			return nil, fmt.Errorf("invalid halfmove clock in FEN: '%v'", fen)
		}
	}

	// (6) Fullmove number: starts at 1, incremented after Black's move.

	fullmove := 1
	if len(parts) > 5 {
		fullmove, err = strconv.Atoi(parts[5])
		if err != nil || fullmove < 1 {
			return nil, fmt.Errorf("invalid fullmove number in FEN: '%v'", fen)
		}
	}

	pos, err := board.NewPosition(pieces, turn, castling, ep, halfmove, fullmove)
	if err != nil {
		return nil, fmt.Errorf("invalid position in FEN: '%v': %v", fen, err)
	}
	return pos, nil
}

// Encode encodes the position in FEN notation. Decoding a FEN and re-encoding
// it yields the same string.
func Encode(pos *board.Position) string {
	var sb strings.Builder
	for r := board.NumRanks; r > 0; r-- {
		blanks := 0
		for f := board.ZeroFile; f < board.NumFiles; f++ {
			cp := pos.PieceOn(board.NewSquare(f, r-1))
			if cp.IsEmpty() {
				blanks++
				continue
			}

			if blanks > 0 {
				sb.WriteString(strconv.Itoa(blanks))
				blanks = 0
			}
			sb.WriteString(cp.String())
		}

		if blanks > 0 {
			sb.WriteString(strconv.Itoa(blanks))
		}
		if r > 1 {
			sb.WriteString("/")
		}
	}

	ep := "-"
	if sq, ok := pos.EnPassant(); ok {
		ep = sq.String()
	}

	return fmt.Sprintf("%v %v %v %v %v %v", sb.String(), pos.Turn(), pos.Castling(), ep, pos.HalfmoveClock(), pos.FullMoves())
}

func parseCastling(str string) (board.Castling, error) {
	if str == "-" {
		return 0, nil
	}

	var ret board.Castling
	for _, r := range str {
		switch r {
		case 'K':
			ret |= board.WhiteKingSideCastle
		case 'Q':
			ret |= board.WhiteQueenSideCastle
		case 'k':
			ret |= board.BlackKingSideCastle
		case 'q':
			ret |= board.BlackQueenSideCastle
		default:
			return 0, fmt.Errorf("invalid castling right: %v", string(r))
		}
	}
	return ret, nil
}
