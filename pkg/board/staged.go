package board

// Move ordering priorities. Higher pops first. The priority only orders moves
// within a stage; stages are emitted strictly in order.
const (
	PriorityPV        = 5000
	PriorityPromotion = 2000
	PriorityCapture   = 1000
	PriorityCheck     = 900
	PriorityKiller    = 800

	mvvFactor = 16
)

// nominalValue is the nominal piece value used by MVV-LVA ordering.
var nominalValue = [NumPieces]uint16{1, 3, 3, 5, 9, 20}

// PrioritizedMove is a packed move with a 15-bit ordering priority and a
// 1-bit gives-check hint.
type PrioritizedMove struct {
	Move Move

	pri uint16
}

func NewPrioritizedMove(m Move, priority uint16, check bool) PrioritizedMove {
	pri := priority & 0x7fff
	if check {
		pri |= 0x8000
	}
	return PrioritizedMove{Move: m, pri: pri}
}

func (pm PrioritizedMove) Priority() uint16 {
	return pm.pri & 0x7fff
}

func (pm PrioritizedMove) GivesCheck() bool {
	return pm.pri&0x8000 != 0
}

// HistoryFn assigns a quiet-move ordering priority from the caller's history
// heuristic.
type HistoryFn func(m Move) uint16

// Ordering holds the caller-supplied move ordering inputs for a node.
type Ordering struct {
	// PV is the hash/PV move to emit first, if legal. NullMove if none.
	PV Move
	// Killers are the quiet moves that caused a beta cutoff at this ply.
	Killers [2]Move
	// History assigns priorities to remaining quiet moves. May be nil.
	History HistoryFn
}

type stage uint8

const (
	stagePV stage = iota
	stageCaptures
	stageKillers
	stageQuiets
	stageDone
)

// MoveGenerator produces the legal moves of a position as an ordered stream:
// hash/PV move, then captures and promotions (MVV-LVA), then killers, then
// quiet moves by history. Generation is lazy per stage and each stage is
// sorted on first access. The buffer bounds any legal chess position.
type MoveGenerator struct {
	pos *Position
	kt  KingThreats
	ord Ordering

	capturesOnly bool
	attacked     Bitboard // squares attacked by the opponent, our king removed
	kingBulk     Bitboard

	stage   stage
	buf     [256]PrioritizedMove
	n, next int

	emitted [3]Move // pv + killers already emitted in earlier stages
	nemit   int
}

// NewMoveGenerator returns a staged generator for the side to move. The
// captures-only filter restricts output to captures and promotions, as used
// by quiescence; the PV stage is skipped in that mode.
func NewMoveGenerator(pos *Position, ord Ordering, capturesOnly bool) *MoveGenerator {
	g := &MoveGenerator{
		pos:          pos,
		kt:           NewKingThreats(pos),
		ord:          ord,
		capturesOnly: capturesOnly,
		stage:        stagePV,
	}

	us := pos.Turn()
	material := pos.Material()
	king := g.kt.KingSquare()

	g.attacked = AttackedSquares(pos, us.Opponent(), material.All()&^BitMask(king))

	target := ^material.Color(us)
	if capturesOnly {
		target = material.Color(us.Opponent())
	}
	g.kingBulk = KingAttackboard(king) & target &^ g.attacked

	if capturesOnly || ord.PV == NullMove {
		g.stage = stageCaptures
	}
	return g
}

// Checked returns true iff the side to move is in check.
func (g *MoveGenerator) Checked() bool {
	return g.kt.Checked()
}

// Threats returns the underlying pin/check analysis.
func (g *MoveGenerator) Threats() *KingThreats {
	return &g.kt
}

// Pop returns the next move, or NullMove when exhausted.
func (g *MoveGenerator) Pop() Move {
	pm, ok := g.pop()
	if !ok {
		return NullMove
	}
	return pm.Move
}

// PopPrioritized returns the next move with its priority and check hint.
func (g *MoveGenerator) PopPrioritized() (PrioritizedMove, bool) {
	return g.pop()
}

// Peek returns the next move without consuming it.
func (g *MoveGenerator) Peek() Move {
	pm, ok := g.pop()
	if !ok {
		return NullMove
	}
	g.next--
	return pm.Move
}

func (g *MoveGenerator) pop() (PrioritizedMove, bool) {
	for {
		if g.next < g.n {
			pm := g.buf[g.next]
			g.next++
			return pm, true
		}

		switch g.stage {
		case stagePV:
			g.stage = stageCaptures
			if m := g.ord.PV; g.isLegal(m) {
				g.buf[0] = NewPrioritizedMove(m, PriorityPV, false)
				g.n, g.next = 1, 0
				g.markEmitted(m)
			}

		case stageCaptures:
			g.generateCaptures()
			g.stage = stageKillers

		case stageKillers:
			g.stage = stageQuiets
			if g.capturesOnly {
				g.stage = stageDone
				continue
			}
			g.n, g.next = 0, 0
			for _, m := range g.ord.Killers {
				if m != NullMove && m.IsQuiet() && !g.alreadyEmitted(m) && g.isLegal(m) {
					g.buf[g.n] = NewPrioritizedMove(m, PriorityKiller, false)
					g.n++
					g.markEmitted(m)
				}
			}

		case stageQuiets:
			g.generateQuiets()
			g.stage = stageDone

		default:
			return PrioritizedMove{}, false
		}
	}
}

func (g *MoveGenerator) add(pm PrioritizedMove) {
	if g.alreadyEmitted(pm.Move) {
		return
	}
	g.buf[g.n] = pm
	g.n++
}

func (g *MoveGenerator) markEmitted(m Move) {
	g.emitted[g.nemit] = m
	g.nemit++
}

func (g *MoveGenerator) alreadyEmitted(m Move) bool {
	for i := 0; i < g.nemit; i++ {
		if g.emitted[i] == m {
			return true
		}
	}
	return false
}

// sort orders buf[0:n] by descending priority. Insertion sort: the buffer is
// small and mostly short.
func (g *MoveGenerator) sort() {
	for i := 1; i < g.n; i++ {
		pm := g.buf[i]
		j := i - 1
		for j >= 0 && g.buf[j].Priority() < pm.Priority() {
			g.buf[j+1] = g.buf[j]
			j--
		}
		g.buf[j+1] = pm
	}
}

// generateCaptures fills the buffer with all captures and promotions, ordered
// by MVV-LVA with promotion and check bonuses.
func (g *MoveGenerator) generateCaptures() {
	g.n, g.next = 0, 0

	pos, us := g.pos, g.pos.Turn()
	material := pos.Material()
	them := material.Color(us.Opponent())
	opKing := material.Piece(us.Opponent(), King)

	// Pawns: captures plus all promotions, including quiet ones.
	promotionRank := PawnPromotionRank(us)
	bulk := BulkDestinations(pos, Pawn, false)
	for bb := material.Piece(us, Pawn); bb != 0; {
		var from Square
		from, bb = bb.PopLSB()

		quiets, captures := Isolate(pos, &g.kt, Pawn, from, bulk, false)
		for dests := captures | quiets&promotionRank; dests != 0; {
			var to Square
			to, dests = dests.PopLSB()
			g.addPawnMove(from, to, them, opKing)
		}
	}

	for piece := Knight; piece <= Queen; piece++ {
		bulk := BulkDestinations(pos, piece, true)
		if bulk == 0 {
			continue
		}
		for bb := material.Piece(us, piece); bb != 0; {
			var from Square
			from, bb = bb.PopLSB()

			_, captures := Isolate(pos, &g.kt, piece, from, bulk, true)
			for captures != 0 {
				var to Square
				to, captures = captures.PopLSB()

				victim := material.PieceOn(to).Piece()
				pri := PriorityCapture + nominalValue[victim]*mvvFactor - nominalValue[piece]
				check := g.kt.GivesCheckHint(piece, to, opKing)
				if check {
					pri += PriorityCheck
				}
				g.add(NewPrioritizedMove(NewMove(from, to, CaptureFlag), pri, check))
			}
		}
	}

	// King captures. Bulk already excludes defended targets.
	king := g.kt.KingSquare()
	for dests := g.kingBulk & them; dests != 0; {
		var to Square
		to, dests = dests.PopLSB()

		victim := material.PieceOn(to).Piece()
		pri := PriorityCapture + nominalValue[victim]*mvvFactor - nominalValue[King]
		g.add(NewPrioritizedMove(NewMove(king, to, CaptureFlag), pri, false))
	}

	g.sort()
}

// generateQuiets fills the buffer with the remaining quiet moves, ordered by
// the caller's history heuristic.
func (g *MoveGenerator) generateQuiets() {
	g.n, g.next = 0, 0

	pos, us := g.pos, g.pos.Turn()
	material := pos.Material()
	opKing := material.Piece(us.Opponent(), King)

	promotionRank := PawnPromotionRank(us)
	bulk := BulkDestinations(pos, Pawn, false)
	for bb := material.Piece(us, Pawn); bb != 0; {
		var from Square
		from, bb = bb.PopLSB()

		quiets, _ := Isolate(pos, &g.kt, Pawn, from, bulk, false)
		for dests := quiets &^ promotionRank; dests != 0; {
			var to Square
			to, dests = dests.PopLSB()

			flags := QuietFlag
			if to == forwardSquare(us, forwardSquare(us, from)) {
				flags = DoublePushFlag
			}
			m := NewMove(from, to, flags)
			check := PawnAttackboard(us, to)&opKing != 0
			g.add(NewPrioritizedMove(m, g.history(m), check))
		}
	}

	for piece := Knight; piece <= Queen; piece++ {
		bulk := BulkDestinations(pos, piece, false)
		if bulk == 0 {
			continue
		}
		for bb := material.Piece(us, piece); bb != 0; {
			var from Square
			from, bb = bb.PopLSB()

			quiets, _ := Isolate(pos, &g.kt, piece, from, bulk, false)
			for quiets != 0 {
				var to Square
				to, quiets = quiets.PopLSB()

				m := NewMove(from, to, QuietFlag)
				check := g.kt.GivesCheckHint(piece, to, opKing)
				g.add(NewPrioritizedMove(m, g.history(m), check))
			}
		}
	}

	king := g.kt.KingSquare()
	them := material.Color(us.Opponent())
	for dests := g.kingBulk &^ them; dests != 0; {
		var to Square
		to, dests = dests.PopLSB()

		m := NewMove(king, to, QuietFlag)
		g.add(NewPrioritizedMove(m, g.history(m), false))
	}

	for _, m := range CastleMoves(pos, &g.kt, g.attacked) {
		g.add(NewPrioritizedMove(m, g.history(m), false))
	}

	g.sort()
}

// addPawnMove emits a pawn capture or promotion, expanding promotions into
// the four piece choices.
func (g *MoveGenerator) addPawnMove(from, to Square, them, opKing Bitboard) {
	us := g.pos.Turn()
	material := g.pos.Material()

	capture := them.IsSet(to)
	enpassant := false
	if ep, ok := g.pos.EnPassant(); ok && to == ep {
		capture, enpassant = true, true
	}

	var capturePri uint16
	if capture {
		victim := Pawn
		if !enpassant {
			victim = material.PieceOn(to).Piece()
		}
		capturePri = PriorityCapture + nominalValue[victim]*mvvFactor - nominalValue[Pawn]
	}

	if PawnPromotionRank(us).IsSet(to) {
		// One destination yields four moves, queen first.
		for promo := Queen; promo >= Knight; promo-- {
			pri := PriorityPromotion + nominalValue[promo] + capturePri
			m := NewPromotionMove(from, to, promo, capture)
			check := g.kt.GivesCheckHint(promo, to, opKing)
			if check {
				pri += PriorityCheck
			}
			g.add(NewPrioritizedMove(m, pri, check))
		}
		return
	}

	flags := CaptureFlag
	if enpassant {
		flags = EnPassantFlag
	}
	check := PawnAttackboard(us, to)&opKing != 0
	pri := capturePri
	if check {
		pri += PriorityCheck
	}
	g.add(NewPrioritizedMove(NewMove(from, to, flags), pri, check))
}

// history returns the ordering priority for a quiet move.
func (g *MoveGenerator) history(m Move) uint16 {
	if g.ord.History == nil {
		return 0
	}
	return g.ord.History(m)
}

// isLegal verifies that a caller-supplied move (hash move or killer) is legal
// in the current position with exactly the flags the generator would assign.
func (g *MoveGenerator) isLegal(m Move) bool {
	if m == NullMove {
		return false
	}

	pos, us := g.pos, g.pos.Turn()
	from, to := m.From(), m.To()

	cp := pos.PieceOn(from)
	if cp.IsEmpty() || cp.Color() != us {
		return false
	}
	piece := cp.Piece()

	if m.IsCastle() {
		if piece != King {
			return false
		}
		for _, c := range CastleMoves(pos, &g.kt, g.attacked) {
			if c == m {
				return true
			}
		}
		return false
	}

	if piece == King {
		if m.Flags() != QuietFlag && m.Flags() != CaptureFlag {
			return false
		}
		if !g.kingBulk.IsSet(to) {
			return false
		}
		return m.IsCapture() == pos.Material().Color(us.Opponent()).IsSet(to)
	}

	bulk := BulkDestinations(pos, piece, false)
	quiets, captures := Isolate(pos, &g.kt, piece, from, bulk, false)

	// Reconstruct the expected move for the destination and compare, so that
	// stale flags (e.g. a killer that is now a capture) are rejected.
	var expected Move
	switch {
	case captures.IsSet(to):
		if piece == Pawn {
			if ep, ok := pos.EnPassant(); ok && to == ep {
				expected = NewMove(from, to, EnPassantFlag)
			} else if PawnPromotionRank(us).IsSet(to) {
				promo, ok := m.Promotion()
				if !ok {
					return false
				}
				expected = NewPromotionMove(from, to, promo, true)
			} else {
				expected = NewMove(from, to, CaptureFlag)
			}
		} else {
			expected = NewMove(from, to, CaptureFlag)
		}

	case quiets.IsSet(to):
		switch {
		case piece == Pawn && PawnPromotionRank(us).IsSet(to):
			promo, ok := m.Promotion()
			if !ok {
				return false
			}
			expected = NewPromotionMove(from, to, promo, false)
		case piece == Pawn && to == forwardSquare(us, forwardSquare(us, from)):
			expected = NewMove(from, to, DoublePushFlag)
		default:
			expected = NewMove(from, to, QuietFlag)
		}

	default:
		return false
	}

	return m == expected
}
