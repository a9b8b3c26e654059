package engine

import (
	"testing"

	"github.com/hailam/chessplay/internal/board"
)

func TestHistoryGravityBounded(t *testing.T) {
	v := int16(0)
	for i := 0; i < 10000; i++ {
		v = historyGravity(v, MaxHistory, MaxHistory)
	}
	if int(v) > MaxHistory || int(v) < -MaxHistory {
		t.Fatalf("historyGravity escaped its bound: got %d, want within +/-%d", v, MaxHistory)
	}
}

func TestHistoryGravityPullsTowardZero(t *testing.T) {
	v := historyGravity(MaxHistory/2, MaxHistory/4, MaxHistory)
	if int(v) <= MaxHistory/2 {
		t.Fatalf("positive bonus should raise the value: got %d from %d", v, MaxHistory/2)
	}

	v2 := historyGravity(v, -(MaxHistory / 4), MaxHistory)
	if int(v2) >= int(v) {
		t.Fatalf("negative bonus should lower the value: got %d from %d", v2, v)
	}
}

func TestButterflyRoundTrip(t *testing.T) {
	h := NewHistory()
	m := board.NewMove(12, 28)

	h.updateButterfly(0, m, 1000)
	got := h.getButterfly(0, m)
	if got <= 0 {
		t.Fatalf("expected positive history after a positive update, got %d", got)
	}

	h.updateButterfly(0, m, -2000)
	got2 := h.getButterfly(0, m)
	if got2 >= got {
		t.Fatalf("expected history to drop after a negative update: before=%d after=%d", got, got2)
	}
}

func TestCorrectionHistoryStaysWithinBound(t *testing.T) {
	h := NewHistory()
	sk := subKeys{pawn: 1, major: 2, minor: 3, nonPawn: [2]uint64{4, 5}}

	for i := 0; i < 5000; i++ {
		h.updateCorrectionHistory(0, sk, 500, -500, 10)
	}

	corrected := h.correctStaticEval(0, 0, sk)
	if corrected >= Infinity || corrected <= -Infinity {
		t.Fatalf("correctStaticEval escaped Infinity bound: got %d", corrected)
	}
}

func TestQuietHistorySumsAllThreeTables(t *testing.T) {
	h := NewHistory()
	m := board.NewMove(8, 16)
	seg1 := h.conthistSegment(0, 1, 20)
	seg2 := h.conthistSegment(0, 2, 30)

	h.updateButterfly(0, m, 500)
	h.updateConthist(seg1, m, 0, 400)
	h.updateConthist(seg2, m, 0, 300)

	total := h.quietHistory(0, m, 0, seg1, seg2)
	sum := h.getButterfly(0, m) + h.getConthist(seg1, m, 0) + h.getConthist(seg2, m, 0)
	if total != sum {
		t.Fatalf("quietHistory() = %d, want sum of parts %d", total, sum)
	}
}
