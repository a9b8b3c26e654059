package engine

import "github.com/hailam/chessplay/internal/board"

// seeValue holds the piece values the static-exchange evaluator swaps with.
// Separate from board.PieceValue (which is tuned for human-readable
// material display) because spec §4.3 calls these out as independently
// tunable ints.
var seeValue = [6]int{100, 320, 330, 500, 900, 20000}

// SEE answers whether the capture sequence initiated by m nets at least
// margin centipawns for the side to move, per spec §4.3. Non-capturing,
// non-normal moves (castling, quiet moves) are treated as neutral: SEE
// succeeds iff margin <= 0.
func SEE(pos *board.Position, m board.Move, margin int) bool {
	if m.IsCastling() {
		return margin <= 0
	}

	to := m.To()
	from := m.From()

	var nextVictim board.PieceType
	movingPiece := pos.PieceAt(from)
	if movingPiece == board.NoPiece {
		return margin <= 0
	}
	nextVictim = movingPiece.Type()

	balance := -margin
	if m.IsEnPassant() {
		balance += seeValue[board.Pawn]
	} else if m.IsPromotion() {
		captured := pos.PieceAt(to)
		if captured != board.NoPiece {
			balance += seeValue[captured.Type()]
		}
		balance += seeValue[board.Queen] - seeValue[board.Pawn]
		nextVictim = board.Queen
	} else {
		captured := pos.PieceAt(to)
		if captured != board.NoPiece {
			balance += seeValue[captured.Type()]
		}
	}

	if balance < 0 {
		return false
	}
	balance -= seeValue[nextVictim]
	if balance >= 0 {
		return true
	}

	occupied := pos.AllOccupied &^ board.SquareBB(from)
	occupied |= board.SquareBB(to)
	if m.IsEnPassant() {
		capSq := to
		if movingPiece.Color() == board.White {
			capSq -= 8
		} else {
			capSq += 8
		}
		occupied &^= board.SquareBB(capSq)
	}

	us := movingPiece.Color().Other()
	pinned := [2]board.Bitboard{
		board.White: pos.ComputePinnedFor(board.White),
		board.Black: pos.ComputePinnedFor(board.Black),
	}

	attackers := allAttackersTo(pos, to, occupied)

	for {
		ourAttackers := attackers & pos.Occupied[us] &^ pinned[us]
		if ourAttackers == 0 {
			break
		}

		nextVictim, attackerSq := leastValuableAttacker(pos, ourAttackers)
		if attackerSq == board.NoSquare {
			break
		}

		occupied &^= board.SquareBB(attackerSq)
		attackers &^= board.SquareBB(attackerSq)
		attackers |= discoveredAttackers(pos, to, occupied)

		balance = -balance - 1 - seeValue[nextVictim]
		us = us.Other()

		if balance >= 0 {
			if nextVictim == board.King && attackers&pos.Occupied[us] != 0 {
				us = us.Other()
			}
			break
		}
	}

	return pos.SideToMove.Other() != us
}

func leastValuableAttacker(pos *board.Position, attackers board.Bitboard) (board.PieceType, board.Square) {
	for pt := board.Pawn; pt <= board.King; pt++ {
		bb := attackers
		for bb != 0 {
			sq := bb.PopLSB()
			if pos.PieceAt(sq).Type() == pt {
				return pt, sq
			}
		}
	}
	return board.NoPieceType, board.NoSquare
}

func allAttackersTo(pos *board.Position, sq board.Square, occupied board.Bitboard) board.Bitboard {
	var attackers board.Bitboard
	attackers |= board.PawnAttacks(sq, board.White) & pos.Pieces[board.Black][board.Pawn]
	attackers |= board.PawnAttacks(sq, board.Black) & pos.Pieces[board.White][board.Pawn]
	attackers |= board.KnightAttacks(sq) & (pos.Pieces[board.White][board.Knight] | pos.Pieces[board.Black][board.Knight])
	attackers |= board.KingAttacks(sq) & (pos.Pieces[board.White][board.King] | pos.Pieces[board.Black][board.King])
	bishops := pos.Pieces[board.White][board.Bishop] | pos.Pieces[board.Black][board.Bishop] |
		pos.Pieces[board.White][board.Queen] | pos.Pieces[board.Black][board.Queen]
	attackers |= board.BishopAttacks(sq, occupied) & bishops
	rooks := pos.Pieces[board.White][board.Rook] | pos.Pieces[board.Black][board.Rook] |
		pos.Pieces[board.White][board.Queen] | pos.Pieces[board.Black][board.Queen]
	attackers |= board.RookAttacks(sq, occupied) & rooks
	return attackers & occupied
}

// discoveredAttackers re-scans sliding attacks to sq after a piece has been
// removed from occupied, surfacing any x-ray attacker that was previously
// blocked. Mirrors the "add X-ray attackers" step of spec §4.3.
func discoveredAttackers(pos *board.Position, sq board.Square, occupied board.Bitboard) board.Bitboard {
	bishops := pos.Pieces[board.White][board.Bishop] | pos.Pieces[board.Black][board.Bishop] |
		pos.Pieces[board.White][board.Queen] | pos.Pieces[board.Black][board.Queen]
	rooks := pos.Pieces[board.White][board.Rook] | pos.Pieces[board.Black][board.Rook] |
		pos.Pieces[board.White][board.Queen] | pos.Pieces[board.Black][board.Queen]
	attackers := (board.BishopAttacks(sq, occupied) & bishops) | (board.RookAttacks(sq, occupied) & rooks)
	return attackers & occupied
}
