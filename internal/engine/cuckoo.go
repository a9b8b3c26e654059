package engine

import "github.com/hailam/chessplay/internal/board"

// CuckooTable is a precomputed two-hash cuckoo table over every reversible
// single-piece move, used for O(1) "does an upcoming repetition exist"
// queries (spec §4.10). Grounded on original_source/src/cuckoo.cpp, whose
// piece-type set ({N,B,R,Q,K}) is followed exactly: a king's one-step
// reversible move is a legitimate repetition-cycle participant.
type CuckooTable struct {
	keys  [8192]uint64
	moves [8192]board.Move
}

func cuckooH1(diff uint64) uint64 { return diff % 8192 }
func cuckooH2(diff uint64) uint64 { return (diff >> 16) % 8192 }

// NewCuckooTable builds and returns the shared, read-only cuckoo table.
// Construction always terminates: the cuckoo eviction chain is bounded by
// the fixed number of reversible moves inserted (at most a few thousand),
// each insertion displacing at most one prior occupant per slot visited.
func NewCuckooTable() *CuckooTable {
	c := &CuckooTable{}
	pieceTypes := []board.PieceType{board.Knight, board.Bishop, board.Rook, board.Queen, board.King}

	for _, pt := range pieceTypes {
		for col := board.White; col <= board.Black; col++ {
			for from := board.Square(0); from < 63; from++ {
				for to := from + 1; to <= 63; to++ {
					if !pseudoAttacksEmpty(pt, from).IsSet(to) {
						continue
					}

					move := board.NewMove(from, to)
					key := board.ZobristPiece(col, pt, from) ^ board.ZobristPiece(col, pt, to) ^ board.ZobristSideToMove()

					slot := cuckooH1(key)
					for {
						c.keys[slot], key = key, c.keys[slot]
						c.moves[slot], move = move, c.moves[slot]

						if move == board.NoMove {
							break
						}
						if slot == cuckooH1(key) {
							slot = cuckooH2(key)
						} else {
							slot = cuckooH1(key)
						}
					}
				}
			}
		}
	}

	return c
}

func pseudoAttacksEmpty(pt board.PieceType, sq board.Square) board.Bitboard {
	switch pt {
	case board.Knight:
		return board.KnightAttacks(sq)
	case board.Bishop:
		return board.BishopAttacks(sq, 0)
	case board.Rook:
		return board.RookAttacks(sq, 0)
	case board.Queen:
		return board.QueenAttacks(sq, 0)
	case board.King:
		return board.KingAttacks(sq)
	}
	return 0
}

// Lookup returns the move and ok=true if diff (the XOR of two zobrist keys
// along a hypothesised reversible single-piece move) hashes to a populated
// slot whose stored key matches.
func (c *CuckooTable) Lookup(diff uint64) (board.Move, bool) {
	slot := cuckooH1(diff)
	if c.keys[slot] == diff {
		return c.moves[slot], true
	}
	slot = cuckooH2(diff)
	if c.keys[slot] == diff {
		return c.moves[slot], true
	}
	return board.NoMove, false
}
