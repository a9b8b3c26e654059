package engine

import "testing"

func TestTunableSetClampsToRange(t *testing.T) {
	orig := RFPMargin.Get()
	defer RFPMargin.Set(int64(orig))

	RFPMargin.Set(RFPMargin.Max + 1000)
	if RFPMargin.Get() != int(RFPMargin.Max) {
		t.Fatalf("Set() above Max = %d, want clamped to %d", RFPMargin.Get(), RFPMargin.Max)
	}

	RFPMargin.Set(RFPMargin.Min - 1000)
	if RFPMargin.Get() != int(RFPMargin.Min) {
		t.Fatalf("Set() below Min = %d, want clamped to %d", RFPMargin.Get(), RFPMargin.Min)
	}
}

func TestSetTunableByNameRoundTrips(t *testing.T) {
	orig := RFPMaxDepth.Get()
	defer RFPMaxDepth.Set(int64(orig))

	if !SetTunable("RFP_MAX_DEPTH", 5) {
		t.Fatal("SetTunable returned false for a known tunable name")
	}
	if RFPMaxDepth.Get() != 5 {
		t.Fatalf("RFPMaxDepth.Get() = %d after SetTunable, want 5", RFPMaxDepth.Get())
	}
}

func TestSetTunableUnknownNameIgnored(t *testing.T) {
	if SetTunable("NOT_A_REAL_TUNABLE", 1) {
		t.Fatal("SetTunable returned true for an unregistered name")
	}
}

func TestAllTunablesIncludesRegisteredOnes(t *testing.T) {
	found := false
	for _, tun := range AllTunables() {
		if tun.Name == "RFP_MARGIN" {
			found = true
		}
	}
	if !found {
		t.Fatal("AllTunables() did not include RFP_MARGIN")
	}
}
