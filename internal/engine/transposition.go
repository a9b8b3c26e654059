package engine

import (
	"math/bits"
	"sync"
)

// TTFlag classifies the bound a stored score represents.
type TTFlag uint8

const (
	TTNone TTFlag = iota
	TTExact
	TTLower
	TTUpper
)

// TTEntry is a single transposition-table slot.
type TTEntry struct {
	Verifier   uint32
	BestMove   uint16
	Score      int16
	StaticEval int16
	Depth      uint8
	Flag       TTFlag
	TTPV       bool
	Age        uint8
}

// TranspositionTable is a fixed-size, lockless, open-addressed hash table.
// Concurrent access from multiple search workers is intentionally
// unsynchronised: a probe is only trusted if the low 32 bits of the full
// zobrist hash match the stored verifier, so a torn read can at worst cause
// a missed or spurious hit, never an illegal move played from bad data.
type TranspositionTable struct {
	entries []TTEntry
	size    uint64
	age     uint8
}

// NewTranspositionTable allocates a table sized in megabytes.
func NewTranspositionTable(mb int) *TranspositionTable {
	tt := &TranspositionTable{}
	tt.Resize(mb)
	return tt
}

// Resize reallocates the table for the given megabyte budget, rounding down
// to whole entries. size need not be a power of two: the wide-multiply
// index below works for any size.
func (tt *TranspositionTable) Resize(mb int) {
	const entrySize = 24
	size := uint64(mb) * 1024 * 1024 / entrySize
	if size == 0 {
		size = 1
	}
	tt.size = size
	tt.entries = make([]TTEntry, size)
}

// index computes the slot for a hash using a wide multiply: index =
// (hash * size) >> 64, so size need not be a power of two.
func (tt *TranspositionTable) index(hash uint64) uint64 {
	hi, _ := bits.Mul64(hash, tt.size)
	return hi
}

// Probe looks up a position by its full 64-bit hash. ok is false on a
// verifier mismatch (miss or collision).
func (tt *TranspositionTable) Probe(hash uint64) (entry TTEntry, ok bool) {
	e := tt.entries[tt.index(hash)]
	if e.Flag == TTNone || e.Verifier != uint32(hash) {
		return TTEntry{}, false
	}
	return e, true
}

// Store writes a result into the table, always overwriting the slot at the
// computed index. If bestMove is zero (NoMove) and the slot already belongs
// to this position, the previously-stored move is retained.
func (tt *TranspositionTable) Store(hash uint64, depth int, score, staticEval int, flag TTFlag, bestMove uint16, ttPV bool) {
	idx := tt.index(hash)
	verifier := uint32(hash)
	e := &tt.entries[idx]

	if bestMove == 0 && e.Verifier == verifier {
		bestMove = e.BestMove
	}

	e.Verifier = verifier
	e.BestMove = bestMove
	e.Score = clampInt16(score)
	e.StaticEval = clampInt16(staticEval)
	e.Depth = uint8(clampByte(depth))
	e.Flag = flag
	e.TTPV = ttPV
	e.Age = tt.age
}

// NewSearch bumps the table's generation counter; called once per
// start_searching by the driver.
func (tt *TranspositionTable) NewSearch() {
	tt.age++
}

// Clear wipes every slot, parallelised across the given worker count.
func (tt *TranspositionTable) Clear(threads int) {
	if threads < 1 {
		threads = 1
	}
	var wg sync.WaitGroup
	segment := tt.size / uint64(threads)
	for i := 0; i < threads; i++ {
		start := uint64(i) * segment
		end := start + segment
		if i == threads-1 {
			end = tt.size
		}
		wg.Add(1)
		go func(s, e uint64) {
			defer wg.Done()
			for j := s; j < e; j++ {
				tt.entries[j] = TTEntry{}
			}
		}(start, end)
	}
	wg.Wait()
	tt.age = 0
}

// Hashfull samples the first 1000 slots and reports permille occupancy.
func (tt *TranspositionTable) Hashfull() int {
	samples := tt.size
	if samples > 1000 {
		samples = 1000
	}
	hits := 0
	for i := uint64(0); i < samples; i++ {
		if tt.entries[i].Verifier != 0 || tt.entries[i].Flag != TTNone {
			hits++
		}
	}
	return int(float64(hits) / float64(samples) * 1000)
}

func clampInt16(v int) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

func clampByte(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// AdjustScoreToTT converts a search-relative mate score (counted from the
// current node) into a root-relative score suitable for storage, so that
// later probes at a different ply read a consistent mate distance.
func AdjustScoreToTT(score, ply int) int {
	if score >= FoundMate {
		return score + ply
	}
	if score <= -FoundMate {
		return score - ply
	}
	return score
}

// AdjustScoreFromTT is the inverse of AdjustScoreToTT, applied when a stored
// score is read back at a given ply.
func AdjustScoreFromTT(score, ply int) int {
	if score >= FoundMate {
		return score - ply
	}
	if score <= -FoundMate {
		return score + ply
	}
	return score
}
