package board

// KingThreats holds the pin and check analysis for the side to move, computed
// once per node before move generation. It makes per-move legality a handful
// of mask intersections:
//
//   - Per-ray pin masks: the ray from the king up to and including the first
//     opposing slider, when exactly one friendly piece sits between.
//   - Check mask: the squares that block or capture a single checker, or the
//     full board when not in check.
//   - The special en passant pin: pawns whose en passant capture would expose
//     the king.
//   - Opponent open angles: the squares from which our sliders would give
//     check, used to tag "gives check" cheaply during ordering.
type KingThreats struct {
	king Square

	pinRays [8]Bitboard // indexed by direction; zero if no pin on that ray
	pinned  Bitboard    // union of friendly pieces sitting on pin rays

	checkers  Bitboard
	checkMask Bitboard // block-or-capture squares; FullBitboard when not in check
	checks    int

	epBarred Bitboard // pawns barred from the en passant capture

	openOrthogonals Bitboard // rook/queen checking squares against their king
	openDiagonals   Bitboard // bishop/queen checking squares against their king
}

// NewKingThreats computes the analysis for the side to move.
func NewKingThreats(pos *Position) KingThreats {
	us := pos.Turn()
	them := us.Opponent()
	material := pos.Material()

	occupancy := material.All()
	friendly := material.Color(us)

	ret := KingThreats{
		king:      material.King(us),
		checkMask: FullBitboard,
	}

	// (1) Non-sliding checkers.

	knights := KnightAttackboard(ret.king) & material.Piece(them, Knight)
	pawns := PawnAttackboard(us, ret.king) & material.Piece(them, Pawn)
	contact := knights | pawns

	ret.checkers |= contact
	ret.checks += contact.PopCount()

	// (2) Per-ray slider analysis: a ray with zero friendly blockers before an
	// opposing slider is a check; with exactly one it is a pin.

	var sliderChecks Bitboard
	for dir := 0; dir < 8; dir++ {
		sliders := material.Piece(them, Queen)
		if dir < 4 {
			sliders |= material.Piece(them, Rook)
		} else {
			sliders |= material.Piece(them, Bishop)
		}
		if sliders == 0 {
			continue
		}

		r := ray(ret.king, dir, occupancy)
		blocker := r & occupancy
		if blocker == 0 {
			continue
		}

		switch {
		case blocker&sliders != 0:
			// Checked along this ray.
			ret.checkers |= blocker
			ret.checks++
			sliderChecks |= r

		case blocker&friendly != 0:
			// A single friendly blocker: look through it for a pinner.
			xray := ray(ret.king, dir, occupancy&^blocker)
			if pinner := xray & occupancy & sliders; pinner != 0 {
				ret.pinRays[dir] = xray
				ret.pinned |= blocker
			}
		}
	}

	switch ret.checks {
	case 0:
		// checkMask stays full.
	case 1:
		ret.checkMask = sliderChecks | contact
	default:
		ret.checkMask = EmptyBitboard // king moves only
	}

	// (3) The special en passant pin: capturing en passant removes two pieces
	// from the capture rank at once and may expose the king, along the rank or
	// along a diagonal through the captured pawn. Resolved by simulating the
	// resulting occupancy per candidate pawn.

	if ep, ok := pos.EnPassant(); ok {
		captured := BitMask(backwardSquare(us, ep))
		candidates := PawnAttackboard(them, ep) & material.Piece(us, Pawn)

		for bb := candidates; bb != 0; {
			var from Square
			from, bb = bb.PopLSB()

			after := occupancy&^BitMask(from)&^captured | BitMask(ep)
			orth := material.Piece(them, Rook) | material.Piece(them, Queen)
			diag := material.Piece(them, Bishop) | material.Piece(them, Queen)
			if RookAttackboard(after, ret.king)&orth != 0 || BishopAttackboard(after, ret.king)&diag != 0 {
				ret.epBarred |= BitMask(from)
			}
		}
	}

	// (4) Opponent open angles, for gives-check tagging.

	opKing := material.King(them)
	ret.openOrthogonals = RookAttackboard(occupancy, opKing)
	ret.openDiagonals = BishopAttackboard(occupancy, opKing)

	return ret
}

// KingSquare returns the analyzed king square.
func (kt *KingThreats) KingSquare() Square {
	return kt.king
}

// Checked returns true iff the side to move is in check.
func (kt *KingThreats) Checked() bool {
	return kt.checks > 0
}

// CheckCount returns the number of checking pieces. Two or more forces
// king-only moves.
func (kt *KingThreats) CheckCount() int {
	return kt.checks
}

// CheckMask returns the block-or-capture mask for a single check, or the full
// board when not in check.
func (kt *KingThreats) CheckMask() Bitboard {
	return kt.checkMask
}

// Pinned returns the union of pinned friendly pieces.
func (kt *KingThreats) Pinned() Bitboard {
	return kt.pinned
}

// PinRay returns the pin ray containing the given square, if the piece on it
// is pinned. A pinned piece may only move along its own ray.
func (kt *KingThreats) PinRay(sq Square) (Bitboard, bool) {
	if !kt.pinned.IsSet(sq) {
		return EmptyBitboard, false
	}
	mask := BitMask(sq)
	for _, r := range kt.pinRays {
		if r&mask != 0 {
			return r, true
		}
	}
	return EmptyBitboard, false
}

// EnPassantBarred returns true iff the pawn on the given square may not
// capture en passant.
func (kt *KingThreats) EnPassantBarred(sq Square) bool {
	return kt.epBarred.IsSet(sq)
}

// GivesCheckHint returns true if moving the given piece kind to the square
// likely delivers check. It is a fast hint for move ordering, not an oracle:
// discovered checks are not detected.
func (kt *KingThreats) GivesCheckHint(piece Piece, to Square, opKing Bitboard) bool {
	mask := BitMask(to)
	switch piece {
	case Rook:
		return kt.openOrthogonals&mask != 0
	case Bishop:
		return kt.openDiagonals&mask != 0
	case Queen:
		return (kt.openOrthogonals|kt.openDiagonals)&mask != 0
	case Knight:
		return KnightAttackboard(to)&opKing != 0
	default:
		return false
	}
}
