package nnue

import (
	"testing"

	"github.com/hailam/chessplay/internal/board"
)

func TestForwardIsDeterministic(t *testing.T) {
	net := RandomNetwork(7)
	pos := board.NewPosition()

	var acc Accumulator
	RefreshFull(&acc, net, pos, board.White)
	RefreshFull(&acc, net, pos, board.Black)

	a := Forward(net, &acc, board.White, 32)
	b := Forward(net, &acc, board.White, 32)
	if a != b {
		t.Fatalf("Forward() is not deterministic: %d vs %d", a, b)
	}
}

func TestForwardSelectsDistinctOutputBuckets(t *testing.T) {
	net := RandomNetwork(8)
	pos := board.NewPosition()

	var acc Accumulator
	RefreshFull(&acc, net, pos, board.White)
	RefreshFull(&acc, net, pos, board.Black)

	fewPieces := Forward(net, &acc, board.White, 2)
	manyPieces := Forward(net, &acc, board.White, 32)

	if outputBucket(2) == outputBucket(32) {
		t.Skip("random bucket boundaries happened to coincide for this seed")
	}
	if fewPieces == manyPieces {
		t.Fatal("Forward() produced the same score from two different output buckets sharing the same random weights, which should essentially never happen")
	}
}

func TestScreluClampsToQA(t *testing.T) {
	if got := screlu(-50); got != 0 {
		t.Fatalf("screlu(-50) = %d, want 0", got)
	}
	if got := screlu(QA + 100); got != QA*QA {
		t.Fatalf("screlu(QA+100) = %d, want %d", got, QA*QA)
	}
	if got := screlu(10); got != 100 {
		t.Fatalf("screlu(10) = %d, want 100", got)
	}
}

func TestEvaluatorRoundTripsThroughEvaluate(t *testing.T) {
	net := RandomNetwork(9)
	pos := board.NewPosition()
	ev := NewEvaluator(net, 64)
	ev.Reset(pos)

	score := ev.Evaluate(board.White, 32)
	direct := Forward(net, ev.stack.Current(), board.White, 32)
	if score != direct {
		t.Fatalf("Evaluator.Evaluate() = %d, want %d matching a direct Forward() call", score, direct)
	}
}
