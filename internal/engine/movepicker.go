package engine

import "github.com/hailam/chessplay/internal/board"

// MPStage enumerates the staged move-generation sequence from spec §4.2.
// Transitions are explicit (a switch with one case per stage, each ending
// by advancing `stage` and looping) rather than relying on fallthrough,
// per spec §9's Open Question resolution.
type MPStage uint8

const (
	StageTT MPStage = iota
	StageGenNoisy
	StageNoisyGood
	StageKiller
	StageGenQuiet
	StageQuiet
	StageBadNoisy
	StageDone
)

// MVV gives the "victim value" component of MVV-LVA ordering, indexed by
// captured piece type, per spec §4.2.
var mvv = [6]int{800, 2400, 2400, 4800, 7200, 0}

type scoredMove struct {
	move  board.Move
	score int
}

// MovePicker generates and orders moves for one node, lazily: later stages
// are only populated once earlier ones are exhausted.
type MovePicker struct {
	pos      *board.Position
	hist     *History
	contHist1, contHist2 *ContinuationTable

	ttMove   board.Move
	killer   board.Move
	inQSearch bool
	inCheck  bool

	stage MPStage

	noisy    []scoredMove
	quiet    []scoredMove
	badNoisy []scoredMove
	idx      int
}

// NewMovePicker constructs a picker for the given node context.
func NewMovePicker(pos *board.Position, hist *History, ttMove, killer board.Move, contHist1, contHist2 *ContinuationTable, inQSearch, inCheck bool) *MovePicker {
	return &MovePicker{
		pos: pos, hist: hist, ttMove: ttMove, killer: killer,
		contHist1: contHist1, contHist2: contHist2,
		inQSearch: inQSearch, inCheck: inCheck,
		stage: StageTT,
	}
}

// Next returns the next move to try, or NoMove when exhausted.
func (p *MovePicker) Next() board.Move {
	for {
		switch p.stage {
		case StageTT:
			p.stage = StageGenNoisy
			if p.ttMove != board.NoMove && p.pos.IsLegal(p.ttMove) {
				if !p.inQSearch || p.ttMove.IsCapture(p.pos) || p.inCheck {
					return p.ttMove
				}
			}
			continue

		case StageGenNoisy:
			p.genNoisy()
			p.stage = StageNoisyGood
			p.idx = 0
			continue

		case StageNoisyGood:
			for p.idx < len(p.noisy) {
				m := p.selectHighest(p.noisy, p.idx)
				p.idx++
				if m.move == p.ttMove {
					continue
				}
				threshold := -m.score/4 + 15
				if !SEE(p.pos, m.move, threshold) {
					p.badNoisy = append(p.badNoisy, m)
					continue
				}
				return m.move
			}
			p.stage = StageKiller
			continue

		case StageKiller:
			p.stage = StageGenQuiet
			if !p.inQSearch && p.killer != board.NoMove && p.killer != p.ttMove && p.pos.IsLegal(p.killer) && p.killer.IsQuiet(p.pos) {
				return p.killer
			}
			continue

		case StageGenQuiet:
			if !p.inQSearch || p.inCheck {
				p.genQuiet()
			}
			p.stage = StageQuiet
			p.idx = 0
			continue

		case StageQuiet:
			for p.idx < len(p.quiet) {
				m := p.selectHighest(p.quiet, p.idx)
				p.idx++
				if m.move == p.ttMove || m.move == p.killer {
					continue
				}
				return m.move
			}
			p.stage = StageBadNoisy
			p.idx = 0
			continue

		case StageBadNoisy:
			for p.idx < len(p.badNoisy) {
				m := p.selectHighest(p.badNoisy, p.idx)
				p.idx++
				if m.move == p.ttMove {
					continue
				}
				return m.move
			}
			p.stage = StageDone
			continue

		case StageDone:
			return board.NoMove
		}
	}
}

func (p *MovePicker) selectHighest(list []scoredMove, from int) scoredMove {
	best := from
	for i := from + 1; i < len(list); i++ {
		if list[i].score > list[best].score {
			best = i
		}
	}
	list[from], list[best] = list[best], list[from]
	return list[from]
}

func (p *MovePicker) genNoisy() {
	var ml *board.MoveList
	if p.inQSearch && !p.inCheck {
		ml = p.pos.GenerateCaptures()
	} else if p.inQSearch {
		ml = p.pos.GeneratePseudoLegalMoves()
	} else {
		ml = p.pos.GenerateCaptures()
	}
	us := p.pos.SideToMove
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		if !m.IsCapture(p.pos) && !m.IsPromotion() {
			continue
		}
		if !p.pos.IsLegal(m) {
			continue
		}
		moving := p.pos.PieceAt(m.From())
		captured := p.pos.PieceAt(m.To())
		capturedType := board.Pawn
		if m.IsEnPassant() {
			capturedType = board.Pawn
		} else if captured != board.NoPiece {
			capturedType = captured.Type()
		}
		score := p.hist.getCapture(us, moving.Type(), capturedType, m.To()) + mvv[capturedType]
		if m.IsPromotion() {
			score += 20000 + int(m.Promotion())
		}
		p.noisy = append(p.noisy, scoredMove{m, score})
	}
}

func (p *MovePicker) genQuiet() {
	ml := p.pos.GeneratePseudoLegalMoves()
	us := p.pos.SideToMove
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		if !m.IsQuiet(p.pos) {
			continue
		}
		if !p.pos.IsLegal(m) {
			continue
		}
		moving := p.pos.PieceAt(m.From())
		score := p.hist.quietHistory(us, m, moving.Type(), p.contHist1, p.contHist2)
		score += threatBonus(p.pos, m, moving)
		p.quiet = append(p.quiet, scoredMove{m, score})
	}
}

// threatBonus implements spec §4.2's threat-aware quiet scoring: moving a
// piece away from a threat earns a bonus; moving it into one incurs a
// penalty, scaled by the moved piece's relative value.
func threatBonus(pos *board.Position, m board.Move, moving board.Piece) int {
	if m.IsPromotion() {
		return 0
	}
	them := moving.Color().Other()
	var escapeBonus, walkPenalty int
	var threatened board.Bitboard

	switch moving.Type() {
	case board.Queen:
		threatened = lesserThreats(pos, them, board.Queen)
		escapeBonus, walkPenalty = 12228, 11264
	case board.Rook:
		threatened = lesserThreats(pos, them, board.Bishop)
		escapeBonus, walkPenalty = 10240, 9216
	case board.Knight, board.Bishop:
		threatened = pos.AttackersByColor(m.From(), them, pos.AllOccupied) & pos.Pieces[them][board.Pawn]
		escapeBonus, walkPenalty = 8192, 7168
	default:
		return 0
	}

	bonus := 0
	if threatened.IsSet(m.From()) {
		bonus += escapeBonus
	}
	if threatened.IsSet(m.To()) {
		bonus -= walkPenalty
	}
	return bonus
}

// lesserThreats returns the union of squares attacked by `them`'s pieces
// that are less valuable than refPt, used to find escape-from-attack and
// walks-into-attack quiet moves for higher-value pieces.
func lesserThreats(pos *board.Position, them board.Color, refPt board.PieceType) board.Bitboard {
	var u board.Bitboard
	lesser := []board.PieceType{}
	switch refPt {
	case board.Queen:
		lesser = []board.PieceType{board.Pawn, board.Knight, board.Bishop, board.Rook}
	case board.Rook:
		lesser = []board.PieceType{board.Pawn, board.Knight, board.Bishop}
	case board.Bishop:
		lesser = []board.PieceType{board.Pawn}
	}
	for _, pt := range lesser {
		bb := pos.Pieces[them][pt]
		for bb != 0 {
			sq := bb.PopLSB()
			u |= attacksFor(pos, pt, sq, them)
		}
	}
	return u
}

func attacksFor(pos *board.Position, pt board.PieceType, sq board.Square, c board.Color) board.Bitboard {
	switch pt {
	case board.Pawn:
		return board.PawnAttacks(sq, c)
	case board.Knight:
		return board.KnightAttacks(sq)
	case board.Bishop:
		return board.BishopAttacks(sq, pos.AllOccupied)
	case board.Rook:
		return board.RookAttacks(sq, pos.AllOccupied)
	case board.Queen:
		return board.QueenAttacks(sq, pos.AllOccupied)
	case board.King:
		return board.KingAttacks(sq)
	}
	return 0
}
