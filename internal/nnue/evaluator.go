package nnue

import "github.com/hailam/chessplay/internal/board"

// Evaluator bridges the incremental accumulator machinery to the search
// core, mirroring the teacher's old internal/nnue Evaluator's Push/Pop/
// Refresh/Update/Reset bridge method names so the engine package's call
// sites read the same way they did against the teacher's network.
type Evaluator struct {
	net   *Network
	stack *AccumulatorStack
	cache *AccumulatorCache
}

// NewEvaluator builds an Evaluator around a loaded network, sized for a
// search tree of at most maxPly deep.
func NewEvaluator(net *Network, maxPly int) *Evaluator {
	return &Evaluator{
		net:   net,
		stack: NewAccumulatorStack(maxPly),
		cache: NewAccumulatorCache(net),
	}
}

// Reset collapses the accumulator stack and forces both perspectives to be
// refreshed from the root position on the next Evaluate/MakeMove.
func (e *Evaluator) Reset(pos *board.Position) {
	e.stack.Reset()
	acc := e.stack.Current()
	e.cache.RefreshFromCache(acc, e.net, pos, board.White)
	e.cache.RefreshFromCache(acc, e.net, pos, board.Black)
}

// Push copies the current accumulator frame forward, matching the board
// layer's MakeMove/UnmakeMove discipline: call Push before applying a
// move's dirty-piece delta (or a full refresh), Pop on UnmakeMove.
func (e *Evaluator) Push() {
	e.stack.Push()
}

// Pop discards the most recently pushed frame.
func (e *Evaluator) Pop() {
	e.stack.Pop()
}

// ApplyMove updates the current (already-pushed) accumulator frame for one
// move. needsFullRefresh is true for promotions, en passant captures, and
// king moves that cross the mirror boundary or change king bucket (spec
// §4.4); in that case the moved side's perspective is refreshed from the
// cache against the position already reflecting the move, and the other
// perspective still takes the incremental dirty-piece path.
func (e *Evaluator) ApplyMove(pos *board.Position, mover board.Color, dirty DirtyPiece, needsFullRefresh bool) {
	acc := e.stack.Current()

	if needsFullRefresh {
		e.cache.RefreshFromCache(acc, e.net, pos, mover)
	} else {
		ApplyDirty(acc, e.net, mover, pos.KingSquare[mover], dirty)
	}

	other := mover.Other()
	if needsMirror(pos.KingSquare[other]) != needsMirror(acc.KingSq[other]) ||
		kingBuckets[pos.KingSquare[other]] != kingBuckets[acc.KingSq[other]] {
		e.cache.RefreshFromCache(acc, e.net, pos, other)
	} else {
		ApplyDirty(acc, e.net, other, pos.KingSquare[other], dirty)
	}
}

// Evaluate returns the current position's score from stm's perspective.
func (e *Evaluator) Evaluate(stm board.Color, pieceCount int) int {
	return Evaluate(e.net, e.stack.Current(), stm, pieceCount)
}
