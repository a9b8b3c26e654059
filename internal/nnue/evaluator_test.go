package nnue

import (
	"testing"

	"github.com/hailam/chessplay/internal/board"
)

func TestEvaluatorApplyMoveMatchesReset(t *testing.T) {
	net := RandomNetwork(11)
	pos := board.NewPosition()

	ev := NewEvaluator(net, 64)
	ev.Reset(pos)

	from, to := board.NewSquare(1, 0), board.NewSquare(2, 2) // Nb1-c3
	moving := pos.PieceAt(from)
	dirty := BuildDirtyPiece(board.NewMove(from, to), moving, board.NoPiece, false, board.NoSquare, board.NoSquare)

	ev.Push()
	undo := pos.MakeMove(board.NewMove(from, to))
	ev.ApplyMove(pos, board.White, dirty, RequiresRefresh(from, to))

	got := ev.Evaluate(board.Black, 32)

	fresh := NewEvaluator(net, 64)
	fresh.Reset(pos)
	want := fresh.Evaluate(board.Black, 32)

	if got != want {
		t.Fatalf("ApplyMove-incremented evaluator scored %d, want %d matching a fresh Reset() at the same position", got, want)
	}

	pos.UnmakeMove(board.NewMove(from, to), undo)
	ev.Pop()

	afterPop := ev.Evaluate(board.White, 32)
	rootFresh := NewEvaluator(net, 64)
	rootFresh.Reset(pos)
	wantRoot := rootFresh.Evaluate(board.White, 32)
	if afterPop != wantRoot {
		t.Fatalf("Pop() did not restore the pre-move evaluation: got %d, want %d", afterPop, wantRoot)
	}
}
