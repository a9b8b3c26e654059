package engine

import (
	"testing"

	"github.com/hailam/chessplay/internal/board"
)

func TestCuckooLookupFindsKnownReversibleMove(t *testing.T) {
	c := NewCuckooTable()

	from, to := board.NewSquare(1, 0), board.NewSquare(2, 2) // Nb1-c3
	diff := board.ZobristPiece(board.White, board.Knight, from) ^
		board.ZobristPiece(board.White, board.Knight, to) ^
		board.ZobristSideToMove()

	m, ok := c.Lookup(diff)
	if !ok {
		t.Fatal("expected a cuckoo hit for a legitimate reversible knight move")
	}
	if !(m.From() == from && m.To() == to) && !(m.From() == to && m.To() == from) {
		t.Fatalf("Lookup returned %v, want an endpoint pairing of %v/%v", m, from, to)
	}
}

func TestCuckooLookupMissesRandomDiff(t *testing.T) {
	c := NewCuckooTable()
	if _, ok := c.Lookup(0xdeadbeefcafef00d); ok {
		t.Fatal("expected a miss for a diff that matches no reversible move")
	}
}
