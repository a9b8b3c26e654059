package nnue

import "github.com/hailam/chessplay/internal/board"

// Accumulator holds the per-perspective feature-transformer sums. Grounded
// on sfnnue/nnue_accumulator.go's Accumulator (Accumulation/Computed/KingSq/
// NeedsRefresh shape), trimmed to the single-network topology this package
// implements (no PSQT side-channel, no big/small split).
type Accumulator struct {
	Values       [2][HL]int16
	Computed     [2]bool
	KingSq       [2]board.Square
	NeedsRefresh [2]bool
}

func (a *Accumulator) reset() {
	a.Computed[0], a.Computed[1] = false, false
	a.KingSq[0], a.KingSq[1] = board.NoSquare, board.NoSquare
	a.NeedsRefresh[0], a.NeedsRefresh[1] = true, true
}

func (a *Accumulator) copyFrom(o *Accumulator) {
	a.Values = o.Values
	a.Computed = o.Computed
	a.KingSq = o.KingSq
	a.NeedsRefresh = o.NeedsRefresh
}

// AccumulatorStack is the per-search-stack-ply object copied forward on
// each move and updated by a small delta (spec §3), grounded on
// sfnnue/nnue_accumulator.go's AccumulatorStack Push/Pop discipline.
type AccumulatorStack struct {
	frames []Accumulator
	size   int
}

// NewAccumulatorStack allocates a stack deep enough for the whole search.
func NewAccumulatorStack(maxPly int) *AccumulatorStack {
	s := &AccumulatorStack{frames: make([]Accumulator, maxPly+4), size: 1}
	s.frames[0].reset()
	return s
}

// Reset collapses the stack to its root frame.
func (s *AccumulatorStack) Reset() {
	s.size = 1
	s.frames[0].reset()
}

// Push copies the current frame forward, as the board layer copies the
// accumulator before applying the new move's delta.
func (s *AccumulatorStack) Push() {
	s.frames[s.size].copyFrom(&s.frames[s.size-1])
	s.size++
}

// Pop discards the most recent frame (unmake).
func (s *AccumulatorStack) Pop() {
	if s.size > 1 {
		s.size--
	}
}

// Current returns the active frame.
func (s *AccumulatorStack) Current() *Accumulator {
	return &s.frames[s.size-1]
}

// applyAdd/applySub mutate one perspective's accumulator by a single
// feature's weight row.
func applyDelta(acc *Accumulator, persp board.Color, net *Network, bucketIdx, featureIdx int, sign int16) {
	weights := net.H1Weights
	offset := featureIdx * HL
	if sign > 0 {
		for i := 0; i < HL; i++ {
			acc.Values[persp][i] += weights[offset+i]
		}
	} else {
		for i := 0; i < HL; i++ {
			acc.Values[persp][i] -= weights[offset+i]
		}
	}
}

// RefreshFull recomputes one perspective's accumulator from scratch given
// the full board and that perspective's king square.
func RefreshFull(acc *Accumulator, net *Network, pos *board.Position, persp board.Color) {
	copy(acc.Values[persp][:], net.H1Bias)
	kingSq := pos.KingSquare[persp]

	for c := board.White; c <= board.Black; c++ {
		for pt := board.Pawn; pt <= board.King; pt++ {
			bb := pos.Pieces[c][pt]
			for bb != 0 {
				sq := bb.PopLSB()
				idx := MakeIndex(persp, c, pt, sq, kingSq)
				offset := idx * HL
				for i := 0; i < HL; i++ {
					acc.Values[persp][i] += net.H1Weights[offset+i]
				}
			}
		}
	}

	acc.Computed[persp] = true
	acc.KingSq[persp] = kingSq
	acc.NeedsRefresh[persp] = false
}

// ApplyDirty applies an incremental delta to one perspective's accumulator
// given the piece adds/subs computed for a move, per spec §4.4.
func ApplyDirty(acc *Accumulator, net *Network, persp board.Color, kingSq board.Square, d DirtyPiece) {
	for i := 0; i < d.NumSubbed; i++ {
		idx := MakeIndex(persp, d.SubPieceColor[i], d.SubPieceType[i], d.SubSquare[i], kingSq)
		applyDelta(acc, persp, net, 0, idx, -1)
	}
	for i := 0; i < d.NumAdded; i++ {
		idx := MakeIndex(persp, d.AddPieceColor[i], d.AddPieceType[i], d.AddSquare[i], kingSq)
		applyDelta(acc, persp, net, 0, idx, 1)
	}
}
