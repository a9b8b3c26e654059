// Package engine implements the search core: negamax with alpha-beta,
// quiescence, a shared transposition table, history heuristics, an NNUE
// evaluator bridge, and a parallel Lazy-SMP driver.
package engine

import "sync/atomic"

// Tunable is a named integer search parameter exposed through the UCI
// protocol surface and read with atomic load-acquire semantics from the
// search hot path. The registry mirrors the TUNABLE_PARAM macro of the
// engine this package's search core was distilled from: every parameter
// carries its default plus a min/max/step triple for UCI `option` reporting.
type Tunable struct {
	Name         string
	value        atomic.Int64
	Default      int64
	Min, Max     int64
	Step         int64
}

// Get returns the current value.
func (t *Tunable) Get() int {
	return int(t.value.Load())
}

// Set stores a new value, clamped to [Min, Max].
func (t *Tunable) Set(v int64) {
	if v < t.Min {
		v = t.Min
	}
	if v > t.Max {
		v = t.Max
	}
	t.value.Store(v)
}

var tunableRegistry = map[string]*Tunable{}
var tunableOrder []string

func newTunable(name string, def, min, max, step int64) *Tunable {
	t := &Tunable{Name: name, Default: def, Min: min, Max: max, Step: step}
	t.value.Store(def)
	tunableRegistry[name] = t
	tunableOrder = append(tunableOrder, name)
	return t
}

// Tunables, one per original_source/src/parameters.h TUNABLE_PARAM entry.
var (
	PawnCorrWeight         = newTunable("PAWN_CORR_WEIGHT", 186, 64, 2048, 32)
	MajorCorrWeight        = newTunable("MAJOR_CORR_WEIGHT", 128, 64, 2048, 32)
	MinorCorrWeight        = newTunable("MINOR_CORR_WEIGHT", 128, 64, 2048, 32)
	NonPawnStmCorrWeight   = newTunable("NON_PAWN_STM_CORR_WEIGHT", 128, 64, 2048, 32)
	NonPawnNstmCorrWeight  = newTunable("NON_PAWN_NSTM_CORR_WEIGHT", 128, 64, 2048, 32)
	CorrhistBonusWeight    = newTunable("CORRHIST_BONUS_WEIGHT", 100, 10, 300, 10)

	HistBonusQuadratic = newTunable("HIST_BONUS_QUADRATIC", 7, 1, 10, 1)
	HistBonusLinear    = newTunable("HIST_BONUS_LINEAR", 274, 64, 384, 32)
	HistBonusOffset    = newTunable("HIST_BONUS_OFFSET", 182, 64, 768, 64)

	HistMalusQuadratic = newTunable("HIST_MALUS_QUADRATIC", 5, 1, 10, 1)
	HistMalusLinear    = newTunable("HIST_MALUS_LINEAR", 283, 64, 384, 32)
	HistMalusOffset    = newTunable("HIST_MALUS_OFFSET", 169, 64, 768, 64)

	RFPMargin   = newTunable("RFP_MARGIN", 76, 30, 100, 8)
	RFPMaxDepth = newTunable("RFP_MAX_DEPTH", 6, 4, 10, 1)

	NMPBaseReduction = newTunable("NMP_BASE_REDUCTION", 4, 2, 5, 1)
	NMPReductionScale = newTunable("NMP_REDUCTION_SCALE", 4, 3, 6, 1)
	NMPEvalScale     = newTunable("NMP_EVAL_SCALE", 210, 50, 300, 10)

	SEMinDepth     = newTunable("SE_MIN_DEPTH", 7, 4, 10, 1)
	SEBetaScale    = newTunable("SE_BETA_SCALE", 31, 8, 64, 1)
	SEDoubleMargin = newTunable("SE_DOUBLE_MARGIN", 22, 0, 40, 2)

	LMRBaseQuiet     = newTunable("LMR_BASE_QUIET", 139, -50, 200, 5)
	LMRDivisorQuiet  = newTunable("LMR_DIVISOR_QUIET", 278, 150, 350, 5)
	LMRBaseNoisy     = newTunable("LMR_BASE_NOISY", 20, -50, 200, 5)
	LMRDivisorNoisy  = newTunable("LMR_DIVISOR_NOISY", 331, 150, 350, 5)
	LMRMinDepth      = newTunable("LMR_MIN_DEPTH", 1, 1, 8, 1)
	LMRMinMoveCount  = newTunable("LMR_MIN_MOVECOUNT", 4, 1, 10, 1)
	LMRHistDivisor   = newTunable("LMR_HIST_DIVISOR", 8192, 4096, 16385, 650)
	LMRDeeperBase    = newTunable("LMR_DEEPER_BASE", 53, 0, 128, 4)
	LMRDeeperScale   = newTunable("LMR_DEEPER_SCALE", 2, 1, 8, 1)

	IIRMinDepth = newTunable("IIR_MIN_DEPTH", 5, 2, 9, 1)

	LMPMinMovesBase = newTunable("LMP_MIN_MOVES_BASE", 2, 2, 8, 1)
	LMPDepthScale   = newTunable("LMP_DEPTH_SCALE", 1, 1, 10, 1)

	SEEPruningScalar = newTunable("SEE_PRUNING_SCALAR", -90, -128, -16, 16)

	MinAspWindowDepth = newTunable("MIN_ASP_WINDOW_DEPTH", 4, 3, 8, 1)
	InitialAspWindow  = newTunable("INITIAL_ASP_WINDOW", 37, 8, 64, 4)
	AspWideningFactor = newTunable("ASP_WIDENING_FACTOR", 3, 1, 32, 2)

	RazorMargin  = newTunable("RAZOR_MARGIN", 256, 64, 512, 16)
	RazorMaxDepth = newTunable("RAZOR_MAX_DEPTH", 4, 1, 8, 1)
)

// AllTunables returns every registered tunable in declaration order, for
// UCI `option name ... type spin` announcements at startup.
func AllTunables() []*Tunable {
	out := make([]*Tunable, len(tunableOrder))
	for i, name := range tunableOrder {
		out[i] = tunableRegistry[name]
	}
	return out
}

// SetTunable applies a UCI `setoption` for a tunable by name. Unknown names
// are ignored (malformed protocol input, per the engine's error-handling
// design: logged by the caller, no state change here).
func SetTunable(name string, value int64) bool {
	t, ok := tunableRegistry[name]
	if !ok {
		return false
	}
	t.Set(value)
	return true
}
