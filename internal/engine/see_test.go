package engine

import (
	"testing"

	"github.com/hailam/chessplay/internal/board"
)

func mustFEN(t *testing.T, fen string) *board.Position {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return pos
}

func TestSEEAcceptsWinningCapture(t *testing.T) {
	// White rook on d1 captures a lone, undefended black pawn on d5.
	pos := mustFEN(t, "4k3/8/8/3p4/8/8/8/3RK3 w - - 0 1")
	moves := pos.GenerateLegalMoves()
	var capture board.Move
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if m.From() == board.NewSquare(3, 0) && m.To() == board.NewSquare(3, 4) {
			capture = m
		}
	}
	if capture == board.NoMove {
		t.Fatal("expected Rd1xd5 to be a legal move")
	}
	if !SEE(pos, capture, 0) {
		t.Fatal("SEE rejected a capture of an undefended pawn with margin 0")
	}
}

func TestSEERejectsQueenTakesDefendedPawn(t *testing.T) {
	// White queen on d1 takes a pawn on d5 that is defended by a black
	// rook on d8 and nothing recaptures the queen back: queen for pawn is
	// a clear loss, margin 0 must fail.
	pos := mustFEN(t, "3rk3/8/8/3p4/8/8/8/3QK3 w - - 0 1")
	moves := pos.GenerateLegalMoves()
	var capture board.Move
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if m.From() == board.NewSquare(3, 0) && m.To() == board.NewSquare(3, 4) {
			capture = m
		}
	}
	if capture == board.NoMove {
		t.Fatal("expected Qd1xd5 to be a legal move")
	}
	if SEE(pos, capture, 0) {
		t.Fatal("SEE accepted queen-for-pawn against a defended target")
	}
}

func TestSEENeutralOnQuietMove(t *testing.T) {
	pos := board.NewPosition()
	moves := pos.GenerateLegalMoves()
	var quiet board.Move
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if m.IsQuiet() {
			quiet = m
			break
		}
	}
	if quiet == board.NoMove {
		t.Fatal("expected at least one quiet opening move")
	}
	if !SEE(pos, quiet, 0) {
		t.Fatal("SEE should treat a quiet move as neutral (margin <= 0 succeeds)")
	}
	if SEE(pos, quiet, 1) {
		t.Fatal("SEE should fail a quiet move against a positive margin")
	}
}
