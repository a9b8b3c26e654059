package engine

import (
	"sync/atomic"

	"github.com/hailam/chessplay/internal/board"
)

// SearchInfo is one iterative-deepening progress report, consumed by the
// UCI layer to emit `info depth ... score ... pv ...` lines.
type SearchInfo struct {
	Depth    int
	SelDepth int
	Score    int
	Nodes    uint64
	PV       []board.Move
}

// Run drives iterative deepening from the worker's current position up to
// limit.DepthCap (or until stopped), invoking report after every completed
// depth. Grounded on the teacher's worker.go per-depth loop, generalized
// with the aspiration-window recurrence from original_source/src/search.h.
func (w *Worker) Run(limit *Limit, stop *atomic.Bool, report func(SearchInfo)) (board.Move, int) {
	w.stop = stop
	w.limit = limit
	w.nodes = 0
	w.seldepth = 0
	w.minNmpPly = 0
	w.ss[0].SubKeys = computeSubKeys(w.pos)
	w.ss[0].Ply = 0

	var bestMove board.Move
	bestScore := -Infinity

	maxDepth := limit.DepthCap
	if maxDepth <= 0 || maxDepth > MaxPly {
		maxDepth = MaxPly
	}

	alpha, beta := -Infinity, Infinity
	score := 0

	for depth := 1; depth <= maxDepth; depth++ {
		if depth >= MinAspWindowDepth.Get() {
			delta := InitialAspWindow.Get()
			alpha = max(score-delta, -Infinity)
			beta = min(score+delta, Infinity)
			aspDepth := depth
			for {
				score = w.negamax(alpha, beta, max(aspDepth, 1), 0, false)
				if w.stop.Load() {
					break
				}
				if score <= alpha {
					beta = (alpha + beta) / 2
					alpha = max(alpha-delta, -Infinity)
					aspDepth = depth
				} else if score >= beta {
					beta = min(beta+delta, Infinity)
					aspDepth = max(aspDepth-1, depth-5)
				} else {
					break
				}
				delta += delta / AspWideningFactor.Get()
			}
		} else {
			score = w.negamax(-Infinity, Infinity, depth, 0, false)
		}

		if w.stop.Load() && depth > 1 {
			break
		}

		w.completedDepth = depth
		bestScore = score
		if len(w.ss[0].PV) > 0 {
			bestMove = w.ss[0].PV[0]
			if report != nil {
				report(SearchInfo{Depth: depth, SelDepth: w.seldepth, Score: score, Nodes: w.nodes, PV: append([]board.Move{}, w.ss[0].PV...)})
			}
		}

		if limit.OutOfNodesSoft(w.nodes) {
			break
		}
		if limit.UseSoftNodes || limit.SoftNodes == 0 {
			if limit.OutOfTimeSoft(uint16(bestMove), w.nodes) {
				break
			}
		}
		if IsMateScore(bestScore) {
			break
		}
	}

	return bestMove, bestScore
}

// negamax implements the main alpha-beta search with the pruning/reduction/
// extension battery from spec §4.1.2, grounded on the teacher's worker.go
// control flow and original_source/src/search.cpp's exact formulas.
func (w *Worker) negamax(alpha, beta, depth, ply int, cutNode bool) int {
	w.ss[ply].PV = w.ss[ply].PV[:0]

	pvNode := beta-alpha > 1
	isRoot := ply == 0

	if ply > w.seldepth {
		w.seldepth = ply
	}

	if !isRoot {
		if w.checkStop() {
			return 0
		}
		if ply >= MaxPly {
			return w.staticEval(ply)
		}
		if w.isDrawn(ply) {
			return DrawScore
		}
		// Mate-distance pruning.
		alpha = max(alpha, -Mate+ply)
		beta = min(beta, Mate-ply-1)
		if alpha >= beta {
			return alpha
		}
	}

	if depth <= 0 {
		return w.quiescence(alpha, beta, ply)
	}

	inCheck := w.pos.Checkers != 0

	var ttMove board.Move
	var ttHit bool
	var ttEntry TTEntry
	if w.ss[ply].ExcludedMove == board.NoMove {
		ttEntry, ttHit = w.tt.Probe(w.pos.Hash)
		if ttHit {
			ttMove = board.Move(ttEntry.BestMove)
			if !pvNode && int(ttEntry.Depth) >= depth {
				ttScore := AdjustScoreFromTT(int(ttEntry.Score), ply)
				switch ttEntry.Flag {
				case TTExact:
					return ttScore
				case TTLower:
					if ttScore >= beta {
						return ttScore
					}
				case TTUpper:
					if ttScore <= alpha {
						return ttScore
					}
				}
			}
		}
	}

	var staticEval int
	if inCheck {
		staticEval = -Infinity
		w.ss[ply].StaticEval = staticEval
	} else if ttHit {
		staticEval = int(ttEntry.StaticEval)
		w.ss[ply].StaticEval = staticEval
	} else {
		staticEval = w.staticEval(ply)
		w.ss[ply].StaticEval = staticEval
	}

	improving := ply >= 2 && !inCheck && staticEval > w.ss[ply-2].StaticEval

	if !pvNode && !inCheck && w.ss[ply].ExcludedMove == board.NoMove {
		// Reverse futility pruning.
		if depth <= RFPMaxDepth.Get() && staticEval-RFPMargin.Get()*depth >= beta && staticEval < FoundMate {
			return staticEval
		}

		// Razoring: drop straight to quiescence if even a big margin can't
		// reach alpha, checked against the full window per spec's literal
		// text rather than a null-window probe.
		if depth <= RazorMaxDepth.Get() && staticEval+RazorMargin.Get()*depth < alpha {
			q := w.quiescence(alpha, beta, ply)
			if q < alpha {
				return q
			}
		}

		// Null-move pruning, same-stack-frame zugzwang verification.
		if depth >= 2 && staticEval >= beta && ply > w.minNmpPly && w.pos.HasNonPawnMaterial() {
			reduction := NMPBaseReduction.Get() + depth/NMPReductionScale.Get()
			if staticEval-beta > 0 {
				extra := (staticEval - beta) / NMPEvalScale.Get()
				reduction += min(extra, 2)
			}
			nullUndo := w.makeNullMove(ply)
			score := -w.negamax(-beta, -beta+1, depth-reduction, ply+1, !cutNode)
			w.unmakeNullMove(nullUndo)
			if w.stop.Load() {
				return 0
			}
			if score >= beta {
				if depth <= 15 || w.minNmpPly > 0 {
					if score >= FoundMate {
						score = beta
					}
					return score
				}
				w.minNmpPly = ply + (depth-reduction)*3/4
				verification := w.negamax(beta-1, beta, depth-NMPBaseReduction.Get(), ply, true)
				w.minNmpPly = 0
				if verification >= beta {
					return verification
				}
			}
		}
	}

	// Internal iterative reduction: no TT move on a sufficiently deep node
	// suggests this node was never searched before; shave a ply.
	if depth >= IIRMinDepth.Get() && ttMove == board.NoMove && (pvNode || cutNode) {
		depth--
	}

	contHist1 := w.contHistAt(ply, 1)
	contHist2 := w.contHistAt(ply, 2)
	killer := w.hist.Killers[ply][0]

	picker := NewMovePicker(w.pos, w.hist, ttMove, killer, contHist1, contHist2, false, inCheck)

	bestScore := -Infinity
	var bestMove board.Move
	bestFlag := TTUpper
	moveCount := 0
	var quietsTried, noisyTried []board.Move

	for {
		m := picker.Next()
		if m == board.NoMove {
			break
		}
		if m == w.ss[ply].ExcludedMove {
			continue
		}
		if !w.pos.IsLegal(m) {
			continue
		}

		isQuiet := m.IsQuiet(w.pos)
		moveCount++

		// Late-move pruning: skip late quiets at shallow depth once a
		// reasonable alternative already exists.
		if !isRoot && !pvNode && !inCheck && isQuiet && bestScore > -FoundMate {
			lmpLimit := LMPMinMovesBase.Get() + LMPDepthScale.Get()*depth*depth
			if moveCount > lmpLimit {
				continue
			}
		}

		// SEE pruning: reject moves that lose too much material for the
		// remaining depth.
		if !isRoot && bestScore > -FoundMate && depth <= 8 {
			threshold := SEEPruningScalar.Get() * depth
			if !SEE(w.pos, m, threshold) {
				continue
			}
		}

		extension := 0
		if !isRoot && depth >= SEMinDepth.Get() && m == ttMove && w.ss[ply].ExcludedMove == board.NoMove &&
			ttHit && int(ttEntry.Depth) >= depth-3 && ttEntry.Flag != TTUpper {
			sBeta := max(-Mate, int(ttEntry.Score)-SEBetaScale.Get()*depth/16)
			sDepth := (depth - 1) / 2

			w.ss[ply].ExcludedMove = m
			sScore := w.negamax(sBeta-1, sBeta, sDepth, ply, cutNode)
			w.ss[ply].ExcludedMove = board.NoMove

			switch {
			case sScore < sBeta:
				if !pvNode && sScore < sBeta-SEDoubleMargin.Get() {
					extension = 2
				} else {
					extension = 1
				}
			case int(ttEntry.Score) >= beta:
				extension = -2
				if pvNode {
					extension = -1
				}
			}
		}

		moving := w.pos.PieceAt(m.From())
		w.ss[ply].CurrentMove = m
		w.ss[ply].MovedPiece = moving
		w.ss[ply].MoveTo = m.To()

		undo := w.makeMove(ply, m)

		newDepth := depth - 1 + extension

		var score int
		if depth >= LMRMinDepth.Get() && moveCount > LMRMinMoveCount.Get() && !inCheck {
			reduction := w.lmrReduction(depth, moveCount, isQuiet, pvNode, improving, m, contHist1, contHist2)
			reducedDepth := max(newDepth-reduction, 1)
			score = -w.negamax(-alpha-1, -alpha, reducedDepth, ply+1, true)
			if score > alpha && reducedDepth < newDepth {
				deeper := score > bestScore+LMRDeeperBase.Get()+LMRDeeperScale.Get()*newDepth
				if deeper {
					newDepth++
				}
				score = -w.negamax(-alpha-1, -alpha, newDepth, ply+1, !cutNode)
			}
		} else if !pvNode || moveCount > 1 {
			score = -w.negamax(-alpha-1, -alpha, newDepth, ply+1, !cutNode)
		}

		if pvNode && (moveCount == 1 || score > alpha) {
			score = -w.negamax(-beta, -alpha, newDepth, ply+1, false)
		}

		w.unmakeMove(m, undo)

		if w.stop.Load() {
			return 0
		}

		if isQuiet {
			quietsTried = append(quietsTried, m)
		} else {
			noisyTried = append(noisyTried, m)
		}

		if score > bestScore {
			bestScore = score
			if score > alpha {
				bestMove = m
				alpha = score
				bestFlag = TTExact
				w.ss[ply].PV = append(w.ss[ply].PV[:0], m)
				w.ss[ply].PV = append(w.ss[ply].PV, w.ss[ply+1].PV...)

				if alpha >= beta {
					bestFlag = TTLower
					w.recordCutoff(ply, m, depth, moveCount, quietsTried, noisyTried, contHist1, contHist2)
					break
				}
			}
		}
	}

	if moveCount == 0 {
		if w.ss[ply].ExcludedMove != board.NoMove {
			return alpha
		}
		if inCheck {
			return -Mate + ply
		}
		return DrawScore
	}

	ttPV := pvNode || (ttHit && ttEntry.TTPV)
	if w.ss[ply].ExcludedMove == board.NoMove {
		w.tt.Store(w.pos.Hash, depth, AdjustScoreToTT(bestScore, ply), staticEval, bestFlag, uint16(bestMove), ttPV)
	}

	if !inCheck && (bestMove == board.NoMove || bestMove.IsQuiet(w.pos)) &&
		!(bestFlag == TTLower && bestScore <= staticEval) &&
		!(bestFlag == TTUpper && bestScore >= staticEval) {
		w.hist.updateCorrectionHistory(w.pos.SideToMove, w.ss[ply].SubKeys, bestScore, staticEval, depth)
	}

	return bestScore
}

// quiescence resolves captures and checks at the horizon so the static eval
// at a leaf never misjudges a hanging piece (spec §4.1.3).
func (w *Worker) quiescence(alpha, beta, ply int) int {
	if ply > w.seldepth {
		w.seldepth = ply
	}
	w.ss[ply].PV = w.ss[ply].PV[:0]

	if w.checkStop() {
		return 0
	}
	if ply >= MaxPly {
		return w.staticEval(ply)
	}
	if w.isDrawn(ply) {
		return DrawScore
	}

	inCheck := w.pos.Checkers != 0

	ttEntry, ttHit := w.tt.Probe(w.pos.Hash)
	var ttMove board.Move
	if ttHit {
		ttMove = board.Move(ttEntry.BestMove)
		ttScore := AdjustScoreFromTT(int(ttEntry.Score), ply)
		switch ttEntry.Flag {
		case TTExact:
			return ttScore
		case TTLower:
			if ttScore >= beta {
				return ttScore
			}
		case TTUpper:
			if ttScore <= alpha {
				return ttScore
			}
		}
	}

	var staticEval, bestScore int
	if inCheck {
		staticEval = -Infinity
		bestScore = -Infinity
	} else if ttHit {
		staticEval = int(ttEntry.StaticEval)
		bestScore = staticEval
	} else {
		staticEval = w.staticEval(ply)
		bestScore = staticEval
	}
	w.ss[ply].StaticEval = staticEval

	if !inCheck {
		if bestScore >= beta {
			return bestScore
		}
		if bestScore > alpha {
			alpha = bestScore
		}
	}

	picker := NewMovePicker(w.pos, w.hist, ttMove, board.NoMove, nil, nil, true, inCheck)

	var bestMove board.Move
	moveCount := 0

	for {
		m := picker.Next()
		if m == board.NoMove {
			break
		}
		if !w.pos.IsLegal(m) {
			continue
		}

		if !inCheck && !SEE(w.pos, m, 0) {
			continue
		}

		moveCount++
		moving := w.pos.PieceAt(m.From())
		w.ss[ply].CurrentMove = m
		w.ss[ply].MovedPiece = moving
		w.ss[ply].MoveTo = m.To()

		undo := w.makeMove(ply, m)
		score := -w.quiescence(-beta, -alpha, ply+1)
		w.unmakeMove(m, undo)

		if w.stop.Load() {
			return 0
		}

		if score > bestScore {
			bestScore = score
			if score > alpha {
				bestMove = m
				alpha = score
				w.ss[ply].PV = append(w.ss[ply].PV[:0], m)
				w.ss[ply].PV = append(w.ss[ply].PV, w.ss[ply+1].PV...)
				if alpha >= beta {
					break
				}
			}
		}
	}

	if inCheck && moveCount == 0 {
		return -Mate + ply
	}

	flag := TTUpper
	if bestScore >= beta {
		flag = TTLower
	} else if bestMove != board.NoMove {
		flag = TTExact
	}
	w.tt.Store(w.pos.Hash, 0, AdjustScoreToTT(bestScore, ply), staticEval, flag, uint16(bestMove), false)

	return bestScore
}

// recordCutoff updates killers and applies history bonuses/maluses to every
// move tried at this node once a beta cutoff fires (spec §4.1.2 step 10).
func (w *Worker) recordCutoff(ply int, cutMove board.Move, depth, moveCount int, quiets, noisies []board.Move, c1, c2 *ContinuationTable) {
	if cutMove.IsQuiet(w.pos) {
		w.hist.Killers[ply][1] = w.hist.Killers[ply][0]
		w.hist.Killers[ply][0] = cutMove

		bonus := historyBonus(depth)
		side := w.pos.SideToMove
		for _, m := range quiets {
			b := bonus
			if m != cutMove {
				b = historyMalus(depth)
			}
			w.hist.updateButterfly(side, m, b)
			moving := w.pos.PieceAt(m.From())
			if moving == board.NoPiece {
				continue
			}
			w.hist.updateConthist(c1, m, moving.Type(), b)
			w.hist.updateConthist(c2, m, moving.Type(), b)
		}
	}

	side := w.pos.SideToMove
	bonus := historyBonus(depth)
	for _, m := range noisies {
		b := bonus
		if m != cutMove {
			b = historyMalus(depth)
		}
		moving := w.pos.PieceAt(m.From())
		if moving == board.NoPiece {
			continue
		}
		capturedType := board.Pawn
		if !m.IsEnPassant() {
			if cap := w.pos.PieceAt(m.To()); cap != board.NoPiece {
				capturedType = cap.Type()
			}
		}
		w.hist.updateCapture(side, moving.Type(), capturedType, m.To(), b)
	}
}

// contHistAt returns the continuation-history table addressed by the move
// played `back` plies earlier, or nil if that ply hasn't happened yet.
func (w *Worker) contHistAt(ply, back int) *ContinuationTable {
	if ply-back < 0 {
		return nil
	}
	frame := &w.ss[ply-back]
	if frame.CurrentMove == board.NoMove {
		return nil
	}
	side := w.pos.SideToMove
	if back%2 == 1 {
		side = side.Other()
	}
	return w.hist.conthistSegment(side, frame.MovedPiece.Type(), frame.MoveTo)
}

// lmrReduction computes the late-move reduction in plies, using the
// Weiss-style log-product formula (spec §4.1.2 step 9 / original_source's
// LMR table) adjusted by the 6-feature factorized convolution: PV-node,
// improving, cut-node, move quietness, and the move's own history score.
func (w *Worker) lmrReduction(depth, moveCount int, isQuiet, pvNode, improving bool, m board.Move, c1, c2 *ContinuationTable) int {
	var r int
	if isQuiet {
		r = LMRBaseQuiet.Get() + logTimes1000(depth)*logTimes1000(moveCount)/LMRDivisorQuiet.Get()
	} else {
		r = LMRBaseNoisy.Get() + logTimes1000(depth)*logTimes1000(moveCount)/LMRDivisorNoisy.Get()
	}
	r /= 1000

	if pvNode {
		r--
	}
	if improving {
		r--
	}

	if isQuiet {
		moving := w.pos.PieceAt(m.From())
		if moving != board.NoPiece {
			hs := w.hist.quietHistory(w.pos.SideToMove, m, moving.Type(), c1, c2)
			r -= hs / LMRHistDivisor.Get()
		}
	}

	if r < 0 {
		r = 0
	}
	return r
}

// logTimes1000 approximates ln(x)*1000 with an integer-only bit-length
// estimate, avoiding a table or math.Log call in the search hot path.
func logTimes1000(x int) int {
	if x < 1 {
		x = 1
	}
	bits := 0
	for v := x; v > 1; v >>= 1 {
		bits++
	}
	return bits * 693 // ln(2) ~= 0.693
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
