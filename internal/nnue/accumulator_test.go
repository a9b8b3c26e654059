package nnue

import (
	"testing"

	"github.com/hailam/chessplay/internal/board"
)

func TestRefreshFullMatchesIncrementalDirtyUpdate(t *testing.T) {
	net := RandomNetwork(1)
	pos := board.NewPosition()

	var full Accumulator
	RefreshFull(&full, net, pos, board.White)

	// Build the pre-move accumulator, then apply Nb1-c3 incrementally and
	// compare against a from-scratch refresh of the post-move position.
	var incremental Accumulator
	RefreshFull(&incremental, net, pos, board.White)

	from, to := board.NewSquare(1, 0), board.NewSquare(2, 2)
	moving := pos.PieceAt(from)
	dirty := BuildDirtyPiece(board.NewMove(from, to), moving, board.NoPiece, false, board.NoSquare, board.NoSquare)

	undo := pos.MakeMove(board.NewMove(from, to))
	defer pos.UnmakeMove(board.NewMove(from, to), undo)

	ApplyDirty(&incremental, net, board.White, pos.KingSquare[board.White], dirty)

	var wantFull Accumulator
	RefreshFull(&wantFull, net, pos, board.White)

	if incremental.Values[board.White] != wantFull.Values[board.White] {
		t.Fatal("incremental ApplyDirty diverged from a from-scratch RefreshFull after one knight move")
	}
}

func TestAccumulatorStackPushPopRestoresValues(t *testing.T) {
	net := RandomNetwork(2)
	pos := board.NewPosition()

	s := NewAccumulatorStack(16)
	RefreshFull(s.Current(), net, pos, board.White)
	RefreshFull(s.Current(), net, pos, board.Black)
	before := s.Current().Values

	s.Push()
	cur := s.Current()
	cur.Values[board.White][0] += 12345

	s.Pop()
	if s.Current().Values != before {
		t.Fatal("Pop() did not restore the pre-Push accumulator values")
	}
}

func TestAccumulatorCacheMatchesFullRefresh(t *testing.T) {
	net := RandomNetwork(3)
	pos := board.NewPosition()
	cache := NewAccumulatorCache(net)

	var cached Accumulator
	cache.RefreshFromCache(&cached, net, pos, board.White)

	var full Accumulator
	RefreshFull(&full, net, pos, board.White)

	if cached.Values[board.White] != full.Values[board.White] {
		t.Fatal("RefreshFromCache diverged from RefreshFull on an empty cache")
	}
}

func TestAccumulatorCacheDiffsAgainstPriorEntry(t *testing.T) {
	net := RandomNetwork(4)
	pos := board.NewPosition()
	cache := NewAccumulatorCache(net)

	var acc Accumulator
	cache.RefreshFromCache(&acc, net, pos, board.White)

	from, to := board.NewSquare(1, 0), board.NewSquare(2, 2)
	undo := pos.MakeMove(board.NewMove(from, to))
	defer pos.UnmakeMove(board.NewMove(from, to), undo)

	cache.RefreshFromCache(&acc, net, pos, board.White)

	var want Accumulator
	RefreshFull(&want, net, pos, board.White)

	if acc.Values[board.White] != want.Values[board.White] {
		t.Fatal("cache-diffed refresh after a move diverged from a from-scratch RefreshFull")
	}
}
