package engine

import "github.com/hailam/chessplay/internal/board"

// Gravity-formula bounds (spec §3): moves/continuation/capture history
// saturate at MaxHistory; correction histories saturate at MaxCorrHist.
const (
	MaxHistory    = 16383
	CorrHistEntries = 16384
	MaxCorrHist   = 1024
)

// historyGravity applies the shared update rule `v += bonus - v*|bonus|/max`
// used by every history table in this package, clamping bonus to ±max/4
// first so a single update can never overshoot by more than a quarter of
// the table's range.
func historyGravity(v int16, bonus, max int) int16 {
	if bonus > max/4 {
		bonus = max / 4
	}
	if bonus < -max/4 {
		bonus = -max / 4
	}
	updated := int(v) + bonus - int(v)*abs(bonus)/max
	return int16(updated)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// historyBonus/historyMalus implement the quadratic-in-depth formulas from
// spec §4.1.2 step 10, grounded on original_source/src/search.h's
// historyBonus/historyMalus tunable-driven functions.
func historyBonus(depth int) int {
	v := HistBonusQuadratic.Get()*depth*depth + HistBonusLinear.Get()*depth - HistBonusOffset.Get()
	if v > 2048 {
		v = 2048
	}
	return v
}

func historyMalus(depth int) int {
	v := HistMalusQuadratic.Get()*depth*depth + HistMalusLinear.Get()*depth - HistMalusOffset.Get()
	if v > 1024 {
		v = 1024
	}
	return -v
}

// ContinuationTable is indexed [movedPieceType][to] of int16 and represents
// the history contribution of playing a move given a specific earlier move
// in the sequence (one- or two-ply back). One instance exists per (piece
// type, to-square) pair of the *earlier* move, forming a sparse
// [prevPieceType][prevTo] -> *ContinuationTable arena.
type ContinuationTable [6][64]int16

// History holds every per-worker history table named in spec §3.
type History struct {
	// Butterfly [side][from][to]
	Butterfly [2][64][64]int16

	// Continuation arena: indexed [side][pieceType][to], yields the table
	// used to score/update moves that follow a move of that piece to that
	// square. Allocated once; zero value is a valid empty table.
	Continuation [2][6][64]ContinuationTable

	// Capture [side][movingPieceType][capturedPieceType][to]
	Capture [2][6][6][64]int16

	// Correction histories, keyed mod CorrHistEntries.
	PawnCorr        [2][CorrHistEntries]int16
	MajorCorr       [2][CorrHistEntries]int16
	MinorCorr       [2][CorrHistEntries]int16
	NonPawnCorr     [2][2][CorrHistEntries]int16 // [side][material color]

	Killers [MaxPly + 3][2]board.Move
}

// NewHistory allocates a fresh (zeroed) history block for one worker.
func NewHistory() *History {
	return &History{}
}

// Reset clears every table, called between searches (but not on the TT).
func (h *History) Reset() {
	*h = History{}
}

func (h *History) updateButterfly(side board.Color, m board.Move, bonus int) {
	v := &h.Butterfly[side][m.From()][m.To()]
	*v = historyGravity(*v, bonus, MaxHistory)
}

func (h *History) getButterfly(side board.Color, m board.Move) int {
	return int(h.Butterfly[side][m.From()][m.To()])
}

// conthistSegment returns the continuation-history table addressed by a
// prior move (piece type + destination), for the given side to move.
func (h *History) conthistSegment(side board.Color, prevPieceType board.PieceType, prevTo board.Square) *ContinuationTable {
	if prevPieceType >= board.NoPieceType {
		return nil
	}
	return &h.Continuation[side][prevPieceType][prevTo]
}

func (h *History) updateConthist(seg *ContinuationTable, m board.Move, movingType board.PieceType, bonus int) {
	if seg == nil {
		return
	}
	v := &seg[movingType][m.To()]
	*v = historyGravity(*v, bonus, MaxHistory)
}

func (h *History) getConthist(seg *ContinuationTable, m board.Move, movingType board.PieceType) int {
	if seg == nil {
		return 0
	}
	return int(seg[movingType][m.To()])
}

func (h *History) updateCapture(side board.Color, movingType, capturedType board.PieceType, to board.Square, bonus int) {
	v := &h.Capture[side][movingType][capturedType][to]
	*v = historyGravity(*v, bonus, MaxHistory)
}

func (h *History) getCapture(side board.Color, movingType, capturedType board.PieceType, to board.Square) int {
	return int(h.Capture[side][movingType][capturedType][to])
}

// quietHistory sums the butterfly score plus 1-ply and 2-ply-back
// continuation-history contributions, matching spec §4.7's "getter...
// sums butterfly + last-ply conthist + 2-ply-back conthist when available".
func (h *History) quietHistory(side board.Color, m board.Move, movingType board.PieceType, contHist1, contHist2 *ContinuationTable) int {
	score := h.getButterfly(side, m)
	score += h.getConthist(contHist1, m, movingType)
	score += h.getConthist(contHist2, m, movingType)
	return score
}

// updateCorrhist applies gravity to one correction sub-table.
func updateCorrhistTable(table *[CorrHistEntries]int16, key uint64, bonus int) {
	idx := key % CorrHistEntries
	v := &table[idx]
	*v = historyGravity(*v, bonus, MaxCorrHist)
}

func getCorrhistTable(table *[CorrHistEntries]int16, key uint64) int {
	return int(table[key%CorrHistEntries])
}

// correctStaticEval applies the five weighted correction-history terms to a
// raw static eval, per spec §4.1.2 step 6.
func (h *History) correctStaticEval(side board.Color, raw int, sk subKeys) int {
	sum := 0
	sum += PawnCorrWeight.Get() * getCorrhistTable(&h.PawnCorr[side], sk.pawn)
	sum += MajorCorrWeight.Get() * getCorrhistTable(&h.MajorCorr[side], sk.major)
	sum += MinorCorrWeight.Get() * getCorrhistTable(&h.MinorCorr[side], sk.minor)
	sum += NonPawnStmCorrWeight.Get() * getCorrhistTable(&h.NonPawnCorr[side][side], sk.nonPawn[side])
	sum += NonPawnNstmCorrWeight.Get() * getCorrhistTable(&h.NonPawnCorr[side][side.Other()], sk.nonPawn[side.Other()])

	corrected := raw + sum/2048
	if corrected >= Infinity {
		corrected = Infinity - 1
	}
	if corrected <= -Infinity {
		corrected = -Infinity + 1
	}
	return corrected
}

// updateCorrectionHistory applies the corrhist bonus to all five sub-keys,
// per spec §4.1.2 step 12.
func (h *History) updateCorrectionHistory(side board.Color, sk subKeys, bestScore, staticEval, depth int) {
	bonus := CorrhistBonusWeight.Get() * (bestScore - staticEval) * depth / 8 / 100
	updateCorrhistTable(&h.PawnCorr[side], sk.pawn, bonus)
	updateCorrhistTable(&h.MajorCorr[side], sk.major, bonus)
	updateCorrhistTable(&h.MinorCorr[side], sk.minor, bonus)
	updateCorrhistTable(&h.NonPawnCorr[side][side], sk.nonPawn[side], bonus)
	updateCorrhistTable(&h.NonPawnCorr[side][side.Other()], sk.nonPawn[side.Other()], bonus)
}
