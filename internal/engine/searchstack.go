package engine

import "github.com/hailam/chessplay/internal/board"

// SearchStack holds per-ply state threaded through negamax, grounded on the
// teacher's worker.go Stack fields (currentMove/movedPiece/continuation
// history pointer) extended with the PV list, static/corrected eval, and
// excluded-move slot the spec's singular-extension and correction-history
// machinery need.
type SearchStack struct {
	Ply int

	PV []board.Move

	CurrentMove board.Move
	MovedPiece  board.Piece
	MoveTo      board.Square

	StaticEval     int
	CorrectedEval  int
	HasEval        bool
	ExcludedMove   board.Move

	ContHist1 *ContinuationTable
	ContHist2 *ContinuationTable

	CutoffCount int
	SubKeys     subKeys
}

// NewSearchStack allocates one frame per ply plus headroom for quiescence
// and reduction/extension overshoot.
func NewSearchStack() []SearchStack {
	ss := make([]SearchStack, MaxPly+8)
	for i := range ss {
		ss[i].PV = make([]board.Move, 0, MaxPly)
	}
	return ss
}
