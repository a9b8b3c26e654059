package board

import "testing"

// positionsEqual compares every field relevant to search correctness:
// bitboards, side to move, castling/en passant state, and both hash keys.
// HalfMoveClock/FullMoveNumber are excluded deliberately — UnmakeMove restores
// them too, but a Copy-based before/after diff only needs the fields that
// feed move generation and hashing to catch a make/unmake asymmetry.
func positionsEqual(a, b *Position) bool {
	if a.Pieces != b.Pieces {
		return false
	}
	if a.Occupied != b.Occupied || a.AllOccupied != b.AllOccupied {
		return false
	}
	if a.SideToMove != b.SideToMove || a.CastlingRights != b.CastlingRights || a.EnPassant != b.EnPassant {
		return false
	}
	if a.Hash != b.Hash || a.PawnKey != b.PawnKey {
		return false
	}
	if a.KingSquare != b.KingSquare || a.Checkers != b.Checkers {
		return false
	}
	return true
}

// TestMakeUnmakeRestoresPosition walks perft-style through several depths
// from a handful of seed positions and checks that every MakeMove is
// exactly undone by its matching UnmakeMove, including the incrementally
// maintained Zobrist hash.
func TestMakeUnmakeRestoresPosition(t *testing.T) {
	seeds := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3",
	}

	var walk func(t *testing.T, p *Position, depth int)
	walk = func(t *testing.T, p *Position, depth int) {
		if depth == 0 {
			return
		}
		moves := p.GenerateLegalMoves()
		for i := 0; i < moves.Len(); i++ {
			m := moves.Get(i)
			before := p.Copy()
			undo := p.MakeMove(m)
			p.UpdateCheckers()
			walk(t, p, depth-1)
			p.UnmakeMove(m, undo)
			if !positionsEqual(before, p) {
				t.Fatalf("MakeMove/UnmakeMove(%v) did not restore position exactly", m)
			}
		}
	}

	for _, fen := range seeds {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}
		walk(t, pos, 3)
	}
}

// TestIncrementalHashMatchesFullRecompute plays a sequence of moves from the
// starting position and checks, after each one, that the Hash and PawnKey
// maintained incrementally by MakeMove agree with a from-scratch recompute.
func TestIncrementalHashMatchesFullRecompute(t *testing.T) {
	pos := NewPosition()

	check := func(label string) {
		t.Helper()
		wantHash := pos.ComputeHash()
		if pos.Hash != wantHash {
			t.Fatalf("%s: incremental Hash %x does not match recomputed %x", label, pos.Hash, wantHash)
		}
		wantPawnKey := pos.ComputePawnKey()
		if pos.PawnKey != wantPawnKey {
			t.Fatalf("%s: incremental PawnKey %x does not match recomputed %x", label, pos.PawnKey, wantPawnKey)
		}
	}

	check("start position")

	for ply := 0; ply < 12; ply++ {
		moves := pos.GenerateLegalMoves()
		if moves.Len() == 0 {
			break
		}
		m := moves.Get(ply % moves.Len())
		pos.MakeMove(m)
		pos.UpdateCheckers()
		check("after ply")
	}
}
