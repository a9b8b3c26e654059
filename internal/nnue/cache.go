package nnue

import "github.com/hailam/chessplay/internal/board"

// cacheBuckets is the number of distinct (mirror-side, king-bucket) slots
// per perspective. sfnnue's AccumulatorCache keys on [king_square][color];
// this package keys on the coarser (mirror-side, king-bucket) pair instead,
// since MakeIndex only distinguishes king squares at that granularity
// (spec §4.5.3).
const cacheBuckets = 2 * InputBuckets

// AccumulatorCacheEntry remembers, for one (perspective, mirror-side,
// king-bucket) slot, the full piece placement it was last computed from and
// the resulting accumulator values, so a refresh can be done as a diff
// against the cache instead of a full recompute.
type AccumulatorCacheEntry struct {
	pieces [2][6]board.Bitboard
	values [HL]int16
	valid  bool
}

// AccumulatorCache is a Finny-table-style bucket cache: one entry per
// (perspective, mirror-side, king-bucket) slot, shared across the whole
// search (spec §4.5.3). It is not safe for concurrent use by multiple
// searcher goroutines; each worker owns its own cache.
type AccumulatorCache struct {
	entries [2][cacheBuckets]AccumulatorCacheEntry
}

// NewAccumulatorCache returns an empty cache with biases pre-loaded, ready
// for the first RefreshFromCache call per perspective.
func NewAccumulatorCache(net *Network) *AccumulatorCache {
	c := &AccumulatorCache{}
	for persp := 0; persp < 2; persp++ {
		for b := 0; b < cacheBuckets; b++ {
			copy(c.entries[persp][b].values[:], net.H1Bias)
		}
	}
	return c
}

func cacheSlot(kingSq board.Square) int {
	mirror := 0
	if needsMirror(kingSq) {
		mirror = 1
	}
	return mirror*InputBuckets + kingBuckets[kingSq]
}

// RefreshFromCache recomputes one perspective's accumulator using the
// cached entry for the current king bucket as a base, applying only the
// piece differences since that entry was last updated, then writes the
// fresh totals back into both the accumulator and the cache.
func (c *AccumulatorCache) RefreshFromCache(acc *Accumulator, net *Network, pos *board.Position, persp board.Color) {
	kingSq := pos.KingSquare[persp]
	slot := cacheSlot(kingSq)
	entry := &c.entries[persp][slot]

	values := entry.values

	for col := board.White; col <= board.Black; col++ {
		for pt := board.Pawn; pt <= board.King; pt++ {
			added := pos.Pieces[col][pt] &^ entry.pieces[col][pt]
			removed := entry.pieces[col][pt] &^ pos.Pieces[col][pt]

			for added != 0 {
				sq := added.PopLSB()
				idx := MakeIndex(persp, col, pt, sq, kingSq)
				offset := idx * HL
				for i := 0; i < HL; i++ {
					values[i] += net.H1Weights[offset+i]
				}
			}
			for removed != 0 {
				sq := removed.PopLSB()
				idx := MakeIndex(persp, col, pt, sq, kingSq)
				offset := idx * HL
				for i := 0; i < HL; i++ {
					values[i] -= net.H1Weights[offset+i]
				}
			}
		}
	}

	entry.pieces = pos.Pieces
	entry.values = values
	entry.valid = true

	acc.Values[persp] = values
	acc.Computed[persp] = true
	acc.KingSq[persp] = kingSq
	acc.NeedsRefresh[persp] = false
}
