package engine

import (
	"sync/atomic"
	"testing"

	"github.com/hailam/chessplay/internal/board"
	"github.com/hailam/chessplay/internal/nnue"
)

func newTestDriver(t *testing.T, workers int) *Driver {
	t.Helper()
	net := nnue.RandomNetwork(0xC0FFEE)
	return NewDriver(workers, 1, net)
}

// Rh1-h8 is a back-rank mate here (the h7/g7/f7 pawns box the king in); the
// search at any reasonable depth must find it regardless of what the
// (random, untrained) NNUE network thinks the position is worth otherwise.
func TestDriverFindsMateInOne(t *testing.T) {
	pos, err := board.ParseFEN("6k1/5ppp/8/8/8/8/8/4K2R w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	d := newTestDriver(t, 1)
	history := board.NewRepetitionHistory()
	history.Push(pos.Hash)

	limit := &Limit{DepthCap: 6}
	move, score := d.Search(pos, history, limit)

	if move == board.NoMove {
		t.Fatal("Search() returned no move on a position with a mate in one")
	}
	if !IsMateScore(score) || score < 0 {
		t.Fatalf("Search() score = %d, want a positive mate score", score)
	}

	undo := pos.MakeMove(move)
	pos.UpdateCheckers()
	defer pos.UnmakeMove(move, undo)

	if !pos.InCheck() {
		t.Fatalf("move %v found by Search() does not deliver check", move)
	}
	if pos.GenerateLegalMoves().Len() != 0 {
		t.Fatalf("move %v found by Search() is not checkmate (opponent has legal replies)", move)
	}
}

func TestDriverStalemateHasNoBestMoveToPlayWithNonZeroScore(t *testing.T) {
	// Black to move, stalemated: king on a8 boxed in by the white king and
	// queen, no legal moves, not in check.
	pos, err := board.ParseFEN("k7/8/1K6/8/8/8/8/7Q b - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	if pos.GenerateLegalMoves().Len() != 0 {
		t.Fatal("test position is not actually stalemate, fix the FEN")
	}

	w := NewWorker(0, NewTranspositionTable(1), NewCuckooTable(), nnue.RandomNetwork(1))
	w.SetPosition(pos, board.NewRepetitionHistory())
	var stop atomic.Bool
	w.stop = &stop
	w.limit = &Limit{Infinite: true}
	score := w.negamax(-Infinity, Infinity, 1, 0, false)
	if score != DrawScore {
		t.Fatalf("negamax() on a stalemate position = %d, want DrawScore (%d)", score, DrawScore)
	}
}

func TestDriverRespectsHardNodeCap(t *testing.T) {
	pos := board.NewPosition()
	d := newTestDriver(t, 1)
	history := board.NewRepetitionHistory()
	history.Push(pos.Hash)

	limit := &Limit{HardNodes: 500, DepthCap: 64}
	move, _ := d.Search(pos, history, limit)
	if move == board.NoMove {
		t.Fatal("Search() under a small hard node cap returned no move at all")
	}
}

func TestDriverMultipleWorkersAgreeOnMateInOne(t *testing.T) {
	pos, err := board.ParseFEN("6k1/5ppp/8/8/8/8/8/4K2R w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	d := newTestDriver(t, 4)
	history := board.NewRepetitionHistory()
	history.Push(pos.Hash)

	limit := &Limit{DepthCap: 6}
	move, score := d.Search(pos, history, limit)
	if move == board.NoMove || !IsMateScore(score) || score < 0 {
		t.Fatalf("4-worker Search() = (%v, %d), want a positive mate score and a move", move, score)
	}
}
