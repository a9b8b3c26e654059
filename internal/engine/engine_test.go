// Integration tests for the six concrete seed scenarios named by the
// specification's testable-properties section, using testify/require for
// its more readable one-liners on these end-to-end assertions (package-
// internal invariant tests elsewhere in this package stick to plain
// testing, matching the teacher's own style).
package engine

import (
	"sync/atomic"
	"testing"

	"github.com/hailam/chessplay/internal/board"
	"github.com/hailam/chessplay/internal/nnue"
	"github.com/stretchr/testify/require"
)

func testNet() *nnue.Network {
	return nnue.RandomNetwork(0xC0FFEE)
}

// Scenario 1: start position, fixed-nodes search with 1 thread and a
// cleared TT returns a legal move; node count is recorded (not asserted
// against a baked value here, since no prior baseline exists yet in this
// fresh module — see internal/store's BenchBaseline for the mechanism that
// would track it across runs).
func TestScenario1StartPositionFixedNodes(t *testing.T) {
	pos := board.NewPosition()
	d := NewDriver(1, 1, testNet())
	history := board.NewRepetitionHistory()
	history.Push(pos.Hash)

	limit := &Limit{HardNodes: 10000, DepthCap: 64}
	move, _ := d.Search(pos, history, limit)

	require.NotEqual(t, board.NoMove, move, "expected a legal move from the starting position")

	legal := pos.GenerateLegalMoves()
	found := false
	for i := 0; i < legal.Len(); i++ {
		if legal.Get(i) == move {
			found = true
			break
		}
	}
	require.True(t, found, "move %v returned by search is not in the legal move list", move)
}

// Scenario 2: a materially symmetric position searched to depth 1 returns
// a legal move quickly and a finite (non-mate) score. The exact eval
// magnitude isn't asserted against zero: "material-neutral" is a property
// of a trained network reading the position's material balance, which a
// structural smoke test against a random, untrained net can't exercise —
// what it can verify is that the search completes and the bucket/accumulator
// plumbing produces a well-formed, non-mate centipawn score.
func TestScenario2MaterialNeutralPosition(t *testing.T) {
	pos, err := board.ParseFEN("6k1/5ppp/8/8/8/8/5PPP/6K1 w - - 0 1")
	require.NoError(t, err)

	d := NewDriver(1, 1, testNet())
	history := board.NewRepetitionHistory()
	history.Push(pos.Hash)

	limit := &Limit{DepthCap: 1}
	move, score := d.Search(pos, history, limit)

	require.NotEqual(t, board.NoMove, move)
	require.False(t, IsMateScore(score), "a depth-1 search from a quiet, balanced position should not report a mate score")
}

// Scenario 3: mate-in-1 from Black's side; the search must find it and
// report a positive mate score.
func TestScenario3MateInOne(t *testing.T) {
	pos, err := board.ParseFEN("6k1/5ppp/8/8/8/8/r4PPP/4R1K1 b - - 0 1")
	require.NoError(t, err)

	d := NewDriver(1, 2, testNet())
	history := board.NewRepetitionHistory()
	history.Push(pos.Hash)

	limit := &Limit{DepthCap: 4}
	move, score := d.Search(pos, history, limit)

	require.NotEqual(t, board.NoMove, move)
	require.True(t, IsMateScore(score) && score > 0, "expected a positive mate score, got %d", score)

	undo := pos.MakeMove(move)
	pos.UpdateCheckers()
	defer pos.UnmakeMove(move, undo)
	require.True(t, pos.InCheck(), "mainline move %v does not give check", move)
	require.Equal(t, 0, pos.GenerateLegalMoves().Len(), "mainline move %v is not actually mate", move)
}

// Scenario 4: a stalemated side to move has no legal moves and the search
// returns a draw score with no move to play.
func TestScenario4Stalemate(t *testing.T) {
	pos, err := board.ParseFEN("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	require.NoError(t, err)
	require.Equal(t, 0, pos.GenerateLegalMoves().Len(), "test position is not actually stalemate")

	d := NewDriver(1, 1, testNet())
	history := board.NewRepetitionHistory()
	history.Push(pos.Hash)

	limit := &Limit{DepthCap: 6}
	move, score := d.Search(pos, history, limit)

	require.Equal(t, board.NoMove, move, "search on a stalemated position should return no move")
	require.Equal(t, DrawScore, score)
}

// Scenario 5: once a position has already recurred twice in the tracked
// history, the position is flagged as an immediate draw and a node one ply
// below the root returns DrawScore rather than continuing to search.
func TestScenario5RepetitionDraw(t *testing.T) {
	pos := board.NewPosition()
	w := NewWorker(0, NewTranspositionTable(1), NewCuckooTable(), testNet())

	rep := board.NewRepetitionHistory()
	rep.Push(pos.Hash) // occurrence 1 of the starting position

	// Shuffle a knight out and back twice (4 plies each cycle), returning
	// to the exact starting position hash both times.
	knightOut := board.NewMove(board.NewSquare(1, 0), board.NewSquare(2, 2))  // Nb1-c3
	knightBack := board.NewMove(board.NewSquare(2, 2), board.NewSquare(1, 0)) // Nc3-b1
	otherOut := board.NewMove(board.NewSquare(1, 7), board.NewSquare(2, 5))  // Nb8-c6
	otherBack := board.NewMove(board.NewSquare(2, 5), board.NewSquare(1, 7)) // Nc6-b8

	cycle := []board.Move{knightOut, otherOut, knightBack, otherBack}
	for cycleNum := 0; cycleNum < 2; cycleNum++ {
		for _, m := range cycle {
			pos.MakeMove(m)
			pos.UpdateCheckers()
			rep.Push(pos.Hash)
		}
	}
	// Current position hash == starting hash, occurring for the 3rd time
	// (index 0, index 4, and now). This is the root position; negamax's
	// draw check is skipped at ply 0 by design (see scenario 5's "the move
	// that completes the repetition" wording: that move lands us here, and
	// any deeper node reusing this same tracked history sees the repeat).
	w.SetPosition(pos, rep)
	require.True(t, w.isDrawn(1), "expected the thrice-reached position to be flagged as drawn")

	var stop atomic.Bool
	w.stop = &stop
	w.limit = &Limit{Infinite: true}
	w.ss[0].SubKeys = computeSubKeys(pos)
	score := w.negamax(-Infinity, Infinity, 6, 1, false)
	require.Equal(t, DrawScore, score, "negamax at a repeated position should return DrawScore")
}

// Scenario 6: the fixed bench set runs to completion and reports a
// consistent total node count across two runs from a cleared TT (the
// "parallel determinism on 1 thread" property applied to the bench set
// itself, standing in for comparison against a previously baked-in value
// until a real baseline has been recorded via internal/store).
func TestScenario6BenchIsReproducible(t *testing.T) {
	net := testNet()
	total1, results1 := Bench(net, 3)
	total2, results2 := Bench(net, 3)

	require.Equal(t, total1, total2, "bench total node count differs across two runs with a cleared TT each time")
	require.Equal(t, len(results1), len(results2))
	for i := range results1 {
		require.Equal(t, results1[i].Nodes, results2[i].Nodes, "bench node count for position %d diverged: %s", i, results1[i].FEN)
	}
}

// Parallel-determinism property (spec §8): two identical 1-thread searches
// from a cleared TT produce identical node counts and best moves.
func TestParallelDeterminismOnOneThread(t *testing.T) {
	net := testNet()
	pos1, err := board.ParseFEN("r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3")
	require.NoError(t, err)
	pos2, err := board.ParseFEN("r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3")
	require.NoError(t, err)

	d1 := NewDriver(1, 4, net)
	d2 := NewDriver(1, 4, net)

	h1 := board.NewRepetitionHistory()
	h1.Push(pos1.Hash)
	h2 := board.NewRepetitionHistory()
	h2.Push(pos2.Hash)

	limit1 := &Limit{DepthCap: 5}
	limit2 := &Limit{DepthCap: 5}

	move1, score1 := d1.Search(pos1, h1, limit1)
	move2, score2 := d2.Search(pos2, h2, limit2)

	require.Equal(t, move1, move2, "two identical 1-thread searches from a cleared TT picked different moves")
	require.Equal(t, score1, score2)
	require.Equal(t, d1.workers[0].nodes, d2.workers[0].nodes, "two identical 1-thread searches produced different node counts")
}
