package engine

import "testing"

func TestTranspositionStoreProbeRoundTrip(t *testing.T) {
	tt := NewTranspositionTable(1)
	hash := uint64(0x1234_5678_9abc_def0)

	tt.Store(hash, 12, 150, 140, TTExact, 42, true)

	entry, ok := tt.Probe(hash)
	if !ok {
		t.Fatal("Probe() returned ok=false for a just-stored hash")
	}
	if entry.Score != 150 || entry.StaticEval != 140 || entry.Depth != 12 || entry.Flag != TTExact || entry.BestMove != 42 {
		t.Fatalf("Probe() = %+v, want matching stored fields", entry)
	}
}

func TestTranspositionVerifierMismatchIsMiss(t *testing.T) {
	tt := NewTranspositionTable(1)
	hash := uint64(0xaaaa_bbbb_cccc_dddd)
	tt.Store(hash, 5, 10, 10, TTExact, 1, false)

	// Same slot (forced by overwriting the low 32 verifier bits directly),
	// different low-32 verifier: the probe must treat it as a miss rather
	// than returning the other position's stale entry.
	idx := tt.index(hash)
	tt.entries[idx].Verifier = uint32(hash) + 1
	if _, ok := tt.Probe(hash); ok {
		t.Fatal("Probe() hit despite a verifier mismatch")
	}
}

func TestTranspositionStoreRetainsMoveWhenNoneGiven(t *testing.T) {
	tt := NewTranspositionTable(1)
	hash := uint64(0x1)

	tt.Store(hash, 3, 0, 0, TTUpper, 7, false)
	tt.Store(hash, 4, 5, 5, TTLower, 0, false)

	entry, ok := tt.Probe(hash)
	if !ok {
		t.Fatal("expected a hit after the second store")
	}
	if entry.BestMove != 7 {
		t.Fatalf("BestMove = %d, want the previously stored move 7 to be retained", entry.BestMove)
	}
}

func TestTranspositionClearEmptiesTable(t *testing.T) {
	tt := NewTranspositionTable(1)
	for i := uint64(0); i < 100; i++ {
		tt.Store(i*997, 1, 1, 1, TTExact, 1, false)
	}
	tt.Clear(4)
	for i := uint64(0); i < 100; i++ {
		if _, ok := tt.Probe(i * 997); ok {
			t.Fatalf("Probe() still hit hash %d after Clear()", i*997)
		}
	}
}

func TestAdjustScoreToFromTTRoundTrip(t *testing.T) {
	cases := []struct{ score, ply int }{
		{FoundMate + 3, 5},
		{-FoundMate - 3, 5},
		{100, 5},
		{0, 0},
	}
	for _, c := range cases {
		stored := AdjustScoreToTT(c.score, c.ply)
		back := AdjustScoreFromTT(stored, c.ply)
		if back != c.score {
			t.Errorf("round trip for score=%d ply=%d: got %d", c.score, c.ply, back)
		}
	}
}

func TestHashfullStartsEmpty(t *testing.T) {
	tt := NewTranspositionTable(1)
	if got := tt.Hashfull(); got != 0 {
		t.Fatalf("Hashfull() on a fresh table = %d, want 0", got)
	}
}
