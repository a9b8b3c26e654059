package nnue

import "github.com/hailam/chessplay/internal/board"

// kingBuckets maps a king square to one of InputBuckets input buckets.
// Grounded on sfnnue/features/half_ka_v2_hm.go's KingBuckets table shape
// (a precomputed per-square bucket id); values below use a standard
// file-pair/rank partition rather than sfnnue's Stockfish-specific layout,
// since the network topology differs (16 buckets here, not Stockfish's).
var kingBuckets = buildKingBuckets()

func buildKingBuckets() [64]int {
	// Buckets are symmetric about the board center file-pair-wise: squares
	// are grouped by (rank/2, file/2) into a 4x4 grid of 16 buckets. Only
	// the queen-side half (file < 4) is addressed directly; MakeIndex
	// mirrors king-side squares onto it before indexing.
	var t [64]int
	for sq := board.Square(0); sq < 64; sq++ {
		file := sq.File()
		rank := sq.Rank()
		if file >= 4 {
			file = 7 - file
		}
		t[sq] = (rank/2)*4 + (file / 2)
	}
	return t
}

// orientTBL reports whether a given king square requires horizontal
// mirroring of feature indices (per spec: "XOR with 7 if king_square.file
// >= E"), grounded on sfnnue's OrientTBL.
func needsMirror(kingSq board.Square) bool {
	return kingSq.File() >= 4 // file E = index 4
}

// MakeIndex computes the feature index for one (perspective, piece, square)
// triple given the perspective's king square, per spec §4.5.1:
//
//	feature(persp, color, pt, sq, ksq) =
//	    bucket(ksq, persp)*768 + (persp==color?0:1)*384 + pt*64 + sq'
//
// where sq' mirrors vertically for a BLACK perspective and then XORs with 7
// if the king's file is >= E.
func MakeIndex(persp board.Color, pieceColor board.Color, pt board.PieceType, sq, kingSq board.Square) int {
	sqPrime := sq
	if persp == board.Black {
		sqPrime = sq ^ 56 // flip rank
	}
	if needsMirror(kingSq) {
		sqPrime ^= 7
	}

	colorOffset := 0
	if persp != pieceColor {
		colorOffset = 384
	}

	bucket := kingBuckets[kingSq^board.Square(uint8(pieceColor)*56)]
	return bucket*FeaturesPerPersp + colorOffset + int(pt)*64 + int(sqPrime)
}

// DirtyPiece records one piece addition or removal caused by a move, for
// incremental accumulator updates. At most 2 adds and 2 subs describe any
// legal move (captures: 1 add + 1 sub normal, 1 add + 2 subs en passant is
// actually 1 add/1 sub plus the captured pawn removal handled by refresh;
// castling: 2 adds + 2 subs for king+rook).
type DirtyPiece struct {
	AddPieceColor [2]board.Color
	AddPieceType  [2]board.PieceType
	AddSquare     [2]board.Square
	NumAdded      int

	SubPieceColor [2]board.Color
	SubPieceType  [2]board.PieceType
	SubSquare     [2]board.Square
	NumSubbed     int
}

func (d *DirtyPiece) add(pc board.Color, pt board.PieceType, sq board.Square) {
	d.AddPieceColor[d.NumAdded] = pc
	d.AddPieceType[d.NumAdded] = pt
	d.AddSquare[d.NumAdded] = sq
	d.NumAdded++
}

func (d *DirtyPiece) sub(pc board.Color, pt board.PieceType, sq board.Square) {
	d.SubPieceColor[d.NumSubbed] = pc
	d.SubPieceType[d.NumSubbed] = pt
	d.SubSquare[d.NumSubbed] = sq
	d.NumSubbed++
}

// BuildDirtyPiece derives the feature deltas for a normal, capture, or
// castling move. Promotions and en passant are reported by the caller as
// requiring a full refresh (spec §4.4) and never reach here.
func BuildDirtyPiece(m board.Move, moving board.Piece, captured board.Piece, isCastling bool, rookFrom, rookTo board.Square) DirtyPiece {
	var d DirtyPiece
	from, to := m.From(), m.To()

	d.sub(moving.Color(), moving.Type(), from)
	d.add(moving.Color(), moving.Type(), to)

	if captured != board.NoPiece {
		d.sub(captured.Color(), captured.Type(), to)
	}

	if isCastling {
		d.sub(moving.Color(), board.Rook, rookFrom)
		d.add(moving.Color(), board.Rook, rookTo)
	}

	return d
}

// RequiresRefresh reports whether a king move crosses the mirror boundary
// (file E) or changes king bucket, which forces a full perspective refresh
// rather than an incremental delta (spec §4.4).
func RequiresRefresh(oldKingSq, newKingSq board.Square) bool {
	if needsMirror(oldKingSq) != needsMirror(newKingSq) {
		return true
	}
	return kingBuckets[oldKingSq] != kingBuckets[newKingSq]
}
