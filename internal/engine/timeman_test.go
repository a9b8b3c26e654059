package engine

import (
	"testing"
	"time"
)

func TestLimitMoveTimeDisablesSoftBound(t *testing.T) {
	l := &Limit{MoveTimeMS: 500}
	l.Start()
	if l.softtime != 0 {
		t.Fatalf("softtime = %d with an explicit movetime, want 0", l.softtime)
	}
	if l.movetime != 500 {
		t.Fatalf("movetime = %d, want 500", l.movetime)
	}
}

func TestLimitClockSplitsHardAndSoft(t *testing.T) {
	l := &Limit{ClockMS: 60000, IncMS: 1000}
	l.Start()
	if l.movetime <= 0 {
		t.Fatal("expected a positive hard bound from clock time")
	}
	if l.softtime <= 0 || l.softtime >= l.movetime {
		t.Fatalf("softtime = %d, want a positive value below movetime (%d)", l.softtime, l.movetime)
	}
}

func TestLimitOutOfTimeRespectsInfinite(t *testing.T) {
	l := &Limit{MoveTimeMS: 1}
	l.Start()
	time.Sleep(5 * time.Millisecond)
	if !l.OutOfTime() {
		t.Fatal("expected OutOfTime() true after the move-time bound elapsed")
	}

	l2 := &Limit{MoveTimeMS: 1, Infinite: true}
	l2.Start()
	time.Sleep(5 * time.Millisecond)
	if l2.OutOfTime() {
		t.Fatal("Infinite search must never report OutOfTime()")
	}
}

func TestLimitSoftNodesClampsAboveHard(t *testing.T) {
	l := &Limit{HardNodes: 1000, SoftNodes: 200, UseSoftNodes: true}
	l.Start()
	if l.HardNodes != 0 {
		t.Fatalf("HardNodes = %d after enabling soft-node mode, want 0 (uncapped)", l.HardNodes)
	}
	if l.SoftNodes != 1000 {
		t.Fatalf("SoftNodes = %d, want raised to the prior hard cap 1000", l.SoftNodes)
	}
}

func TestLimitOutOfNodesHardAndSoft(t *testing.T) {
	l := &Limit{HardNodes: 100, SoftNodes: 50}
	if !l.OutOfNodesSoft(50) {
		t.Fatal("expected soft node cap hit at exactly the threshold")
	}
	if l.OutOfNodesHard(99) {
		t.Fatal("hard node cap should not trigger below the threshold")
	}
	if !l.OutOfNodesHard(100) {
		t.Fatal("expected hard node cap hit at exactly the threshold")
	}
}
