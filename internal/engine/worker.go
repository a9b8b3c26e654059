package engine

import (
	"sync/atomic"

	"github.com/hailam/chessplay/internal/board"
	"github.com/hailam/chessplay/internal/nnue"
)

// Worker is a single Lazy-SMP search thread: its own position, move/history
// state, and NNUE accumulator stack, but a transposition table and cuckoo
// table shared with every other worker in the pool (spec §4.9). Grounded on
// the teacher's worker.go field layout (per-worker pos/orderer/stacks,
// shared tt/sharedHistory/stopFlag), generalized to this package's own
// History/MovePicker/NNUE types.
type Worker struct {
	ID int

	pos *board.Position
	rep *board.RepetitionHistory

	tt     *TranspositionTable
	cuckoo *CuckooTable

	hist *History
	eval *nnue.Evaluator

	ss []SearchStack

	nodes   uint64
	seldepth int

	stop  *atomic.Bool
	limit *Limit

	rootMoves  []board.Move
	rootDepth  int
	completedDepth int

	// minNmpPly blocks null-move pruning at or below this ply once a
	// zugzwang verification search is in flight for an ancestor node,
	// preventing nested verification searches (spec §4.1.2 step 8).
	minNmpPly int
}

// NewWorker builds a worker sharing tt/cuckoo with the rest of the pool.
func NewWorker(id int, tt *TranspositionTable, cuckoo *CuckooTable, net *nnue.Network) *Worker {
	return &Worker{
		ID:     id,
		tt:     tt,
		cuckoo: cuckoo,
		hist:   NewHistory(),
		eval:   nnue.NewEvaluator(net, MaxPly),
		ss:     NewSearchStack(),
	}
}

// SetPosition installs the position this worker will search from the root.
func (w *Worker) SetPosition(pos *board.Position, rep *board.RepetitionHistory) {
	w.pos = pos
	w.rep = rep
	w.eval.Reset(pos)
}

func pieceCount(pos *board.Position) int {
	return pos.AllOccupied.PopCount()
}

// staticEval runs the NNUE forward pass and applies correction history.
func (w *Worker) staticEval(ply int) int {
	raw := w.eval.Evaluate(w.pos.SideToMove, pieceCount(w.pos))
	corrected := w.hist.correctStaticEval(w.pos.SideToMove, raw, w.ss[ply].SubKeys)
	return corrected
}

// dirtyPieceFor builds the NNUE DirtyPiece describing move m, handling
// promotion (the added feature is the promoted piece, not the pawn) and
// en passant (the captured pawn sits off the `to` square) in addition to
// the normal/castling cases nnue.BuildDirtyPiece covers.
func dirtyPieceFor(m board.Move, moving, captured board.Piece, isCastling bool, rookFrom, rookTo board.Square) nnue.DirtyPiece {
	var d nnue.DirtyPiece
	from, to := m.From(), m.To()
	us := moving.Color()

	addType := moving.Type()
	if m.IsPromotion() {
		addType = m.Promotion()
	}

	d.SubPieceColor[0], d.SubPieceType[0], d.SubSquare[0] = us, moving.Type(), from
	d.AddPieceColor[0], d.AddPieceType[0], d.AddSquare[0] = us, addType, to
	d.NumSubbed, d.NumAdded = 1, 1

	if m.IsEnPassant() {
		capSq := to
		if us == board.White {
			capSq -= 8
		} else {
			capSq += 8
		}
		d.SubPieceColor[d.NumSubbed], d.SubPieceType[d.NumSubbed], d.SubSquare[d.NumSubbed] = us.Other(), board.Pawn, capSq
		d.NumSubbed++
	} else if captured != board.NoPiece {
		d.SubPieceColor[d.NumSubbed], d.SubPieceType[d.NumSubbed], d.SubSquare[d.NumSubbed] = captured.Color(), captured.Type(), to
		d.NumSubbed++
	}

	if isCastling {
		d.SubPieceColor[d.NumSubbed], d.SubPieceType[d.NumSubbed], d.SubSquare[d.NumSubbed] = us, board.Rook, rookFrom
		d.NumSubbed++
		d.AddPieceColor[d.NumAdded], d.AddPieceType[d.NumAdded], d.AddSquare[d.NumAdded] = us, board.Rook, rookTo
		d.NumAdded++
	}

	return d
}

func castlingRookSquares(m board.Move, moving board.Piece) (from, to board.Square) {
	rank := m.From().Rank()
	kingSide := m.To().File() > m.From().File()
	if kingSide {
		return board.NewSquare(board.RookFile(true), rank), board.NewSquare(m.To().File()-1, rank)
	}
	return board.NewSquare(board.RookFile(false), rank), board.NewSquare(m.To().File()+1, rank)
}

// makeMove applies m on the worker's position, maintaining repetition
// history, incremental zobrist sub-keys, and the NNUE accumulator stack.
func (w *Worker) makeMove(ply int, m board.Move) board.UndoInfo {
	moving := w.pos.PieceAt(m.From())
	captured := w.pos.PieceAt(m.To())
	if m.IsEnPassant() {
		captured = board.NewPiece(board.Pawn, moving.Color().Other())
	}

	isCastling := m.IsCastling()
	var rookFrom, rookTo board.Square
	if isCastling {
		rookFrom, rookTo = castlingRookSquares(m, moving)
	}

	sk := advanceSubKeys(w.ss[ply].SubKeys, w.pos, m, moving, captured)

	oldKingSq := [2]board.Square{w.pos.KingSquare[board.White], w.pos.KingSquare[board.Black]}

	undo := w.pos.MakeMove(m)
	w.rep.Push(w.pos.Hash)

	w.ss[ply+1].SubKeys = sk
	w.ss[ply+1].Ply = ply + 1

	w.eval.Push()
	if !m.IsPromotion() && !m.IsEnPassant() {
		dirty := dirtyPieceFor(m, moving, captured, isCastling, rookFrom, rookTo)
		needsRefresh := moving.Type() == board.King && nnue.RequiresRefresh(oldKingSq[moving.Color()], w.pos.KingSquare[moving.Color()])
		w.eval.ApplyMove(w.pos, moving.Color(), dirty, needsRefresh)
	} else {
		// Promotions and en passant change the feature-index identity of a
		// piece on a square the cache already tracks; simplest and always
		// correct is a cache-backed refresh of both perspectives (spec §4.4).
		dirty := dirtyPieceFor(m, moving, captured, isCastling, rookFrom, rookTo)
		w.eval.ApplyMove(w.pos, moving.Color(), dirty, true)
	}

	w.nodes++
	return undo
}

func (w *Worker) unmakeMove(m board.Move, undo board.UndoInfo) {
	w.pos.UnmakeMove(m, undo)
	w.rep.Pop()
	w.eval.Pop()
}

func (w *Worker) makeNullMove(ply int) board.NullMoveUndo {
	undo := w.pos.MakeNullMove()
	w.rep.Push(w.pos.Hash)
	w.ss[ply+1].SubKeys = w.ss[ply].SubKeys
	w.ss[ply+1].Ply = ply + 1
	return undo
}

func (w *Worker) unmakeNullMove(undo board.NullMoveUndo) {
	w.pos.UnmakeNullMove(undo)
	w.rep.Pop()
}

// isDrawn reports draw by the fifty-move rule, insufficient material, a
// threefold repetition found in the full game history, or a single
// in-search-tree repetition cycle found via the cuckoo table's O(1) upcoming-
// repetition check (spec §4.1.1 step 3's "non-root terminal checks:
// 1-repetition, 50-move rule"; a lone recurrence is enough to cut a branch
// that is merely going to shuffle back into the same position).
func (w *Worker) isDrawn(ply int) bool {
	if w.pos.HalfMoveClock >= 100 {
		return true
	}
	if w.pos.IsInsufficientMaterial() {
		return true
	}
	if w.rep.IsRepetition(w.pos.Hash, w.pos.HalfMoveClock, 2) {
		return true
	}
	return w.hasUpcomingRepetition(ply)
}

// hasUpcomingRepetition answers spec §4.10's cuckoo-table-backed question:
// could the opponent reach a repeated position with one reversible move
// from here, used to prune branches that walk into an unavoidable draw.
func (w *Worker) hasUpcomingRepetition(ply int) bool {
	n := w.rep.Len()
	if n < 3 {
		return false
	}
	originalKey := w.pos.Hash
	limit := w.pos.HalfMoveClock
	if limit > n-1 {
		limit = n - 1
	}
	for i := 3; i <= limit; i += 2 {
		diff := originalKey ^ w.rep.HashAt(n-i)
		if mv, ok := w.cuckoo.Lookup(diff); ok {
			if w.pos.AllOccupied&board.Between(mv.From(), mv.To()) == 0 {
				return true
			}
		}
	}
	return false
}

func (w *Worker) checkStop() bool {
	if w.stop.Load() {
		return true
	}
	if w.limit.OutOfNodesHard(w.nodes) {
		w.stop.Store(true)
		return true
	}
	if w.nodes&2047 == 0 && w.limit.OutOfTime() {
		w.stop.Store(true)
		return true
	}
	return false
}
