package board

// RepetitionHistory is a caller-maintained ring of zobrist hashes for every
// position reached since the last irreversible move (capture, pawn push, or
// loss of castling/en-passant rights reset the halfmove clock upstream).
// The engine pushes/pops hashes as it makes/unmakes moves; this type only
// answers "has this exact position occurred before in the tracked window".
type RepetitionHistory struct {
	hashes []uint64
}

// NewRepetitionHistory creates an empty history with room for a full game.
func NewRepetitionHistory() *RepetitionHistory {
	return &RepetitionHistory{hashes: make([]uint64, 0, 1024)}
}

// Push records the hash of the position reached after a move.
func (r *RepetitionHistory) Push(hash uint64) {
	r.hashes = append(r.hashes, hash)
}

// Pop removes the most recently pushed hash (call on unmake).
func (r *RepetitionHistory) Pop() {
	if len(r.hashes) > 0 {
		r.hashes = r.hashes[:len(r.hashes)-1]
	}
}

// Len returns the number of tracked hashes.
func (r *RepetitionHistory) Len() int { return len(r.hashes) }

// HashAt returns the hash pushed at the given index.
func (r *RepetitionHistory) HashAt(i int) uint64 { return r.hashes[i] }

// IsRepetition reports whether the current hash has occurred at least
// `threshold` times (including the hypothetical current occurrence) within
// the positions reached since the last irreversible move, scanning back at
// most halfMoveClock plies and stepping by 2 (same side to move).
func (r *RepetitionHistory) IsRepetition(current uint64, halfMoveClock, threshold int) bool {
	n := len(r.hashes)
	limit := halfMoveClock
	if limit > n {
		limit = n
	}
	count := 1
	for i := 4; i <= limit; i += 2 {
		if r.hashes[n-i] == current {
			count++
			if count >= threshold {
				return true
			}
		}
	}
	return false
}

// RookFile returns the starting file of the castling rook on the given side,
// accounting for Chess960 starting setups where the rook need not start on
// file A/H. The standard board package only plays standard chess, so this
// always answers the orthodox file; it exists so the engine layer has a
// single call site regardless of variant.
func RookFile(kingSide bool) int {
	if kingSide {
		return 7
	}
	return 0
}
