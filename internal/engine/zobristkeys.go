package engine

import "github.com/hailam/chessplay/internal/board"

// subKeys bundles the four incremental zobrist sub-keys maintained per
// search-stack ply: a pawn key, a major-piece key (rook/queen), a
// minor-piece key (knight/bishop), and one non-pawn key per color. These
// feed the five correction-history tables (history.go), which use a
// cheaper, coarser signal than the full position hash to index corrections
// that should generalise across similar pawn/piece structures.
type subKeys struct {
	pawn     uint64
	major    uint64
	minor    uint64
	nonPawn  [2]uint64
}

// computeSubKeys derives the four sub-keys from scratch by walking every
// piece on the board. Used once at the root of a search; every other ply
// maintains its sub-keys incrementally via updateSubKeys.
func computeSubKeys(pos *board.Position) subKeys {
	var sk subKeys
	for c := board.White; c <= board.Black; c++ {
		for pt := board.Pawn; pt <= board.King; pt++ {
			bb := pos.Pieces[c][pt]
			for bb != 0 {
				sq := bb.PopLSB()
				key := board.ZobristPiece(c, pt, sq)
				switch pt {
				case board.Pawn:
					sk.pawn ^= key
				case board.Rook, board.Queen:
					sk.major ^= key
				case board.Knight, board.Bishop:
					sk.minor ^= key
				case board.King:
					// King contributes to neither major nor minor nor pawn
					// keys; it is tracked via non-pawn per the teacher and
					// original source's convention that kings count as
					// non-pawn material for both colors.
				}
				if pt != board.Pawn {
					sk.nonPawn[c] ^= key
				}
			}
		}
	}
	return sk
}

// applyPieceMove XORs the sub-key terms affected by moving (or
// removing/adding) a single piece, mirroring the full zobrist update the
// board oracle performs internally but scoped to the four coarser keys.
func (sk *subKeys) togglePiece(c board.Color, pt board.PieceType, sq board.Square) {
	key := board.ZobristPiece(c, pt, sq)
	switch pt {
	case board.Pawn:
		sk.pawn ^= key
	case board.Rook, board.Queen:
		sk.major ^= key
	case board.Knight, board.Bishop:
		sk.minor ^= key
	}
	if pt != board.Pawn {
		sk.nonPawn[c] ^= key
	}
}

// advanceSubKeys computes the sub-keys for the position after playing move m
// from position pos (queried before the move is made), given the piece that
// moved and whatever was captured. Handles pawn promotion, en passant, and
// castling (rook's own move) in addition to the moving piece itself.
func advanceSubKeys(prev subKeys, pos *board.Position, m board.Move, moving board.Piece, captured board.Piece) subKeys {
	sk := prev
	us := moving.Color()
	from, to := m.From(), m.To()

	sk.togglePiece(us, moving.Type(), from)

	if m.IsPromotion() {
		sk.togglePiece(us, m.Promotion(), to)
	} else {
		sk.togglePiece(us, moving.Type(), to)
	}

	if m.IsEnPassant() {
		capSq := to
		if us == board.White {
			capSq -= 8
		} else {
			capSq += 8
		}
		sk.togglePiece(us.Other(), board.Pawn, capSq)
	} else if captured != board.NoPiece {
		sk.togglePiece(captured.Color(), captured.Type(), to)
	}

	if m.IsCastling() {
		kingSide := to.File() > from.File()
		rank := from.Rank()
		var rookFrom, rookTo board.Square
		if kingSide {
			rookFrom = board.NewSquare(board.RookFile(true), rank)
			rookTo = board.NewSquare(to.File()-1, rank)
		} else {
			rookFrom = board.NewSquare(board.RookFile(false), rank)
			rookTo = board.NewSquare(to.File()+1, rank)
		}
		sk.togglePiece(us, board.Rook, rookFrom)
		sk.togglePiece(us, board.Rook, rookTo)
	}

	return sk
}
