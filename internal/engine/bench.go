package engine

import (
	"sync/atomic"

	"github.com/hailam/chessplay/internal/board"
	"github.com/hailam/chessplay/internal/nnue"
)

// BenchPositions is the fixed node-count regression set for `bench`/spec.md
// §8 scenario 6, grounded on the teacher's own bench-list convention
// (cmd/chessplay-uci's `-bench` flag) but trimmed from the teacher's 50
// FENs to a representative dozen covering openings, middlegames, and
// endgames, since this module carries no classical evaluator worth
// regression-testing at the teacher's original breadth.
var BenchPositions = []string{
	"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
	"r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3",
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"rnb1kbnr/pp1pqppp/2p5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 2 4",
	"6k1/5ppp/8/8/8/8/5PPP/6K1 w - - 0 1",
	"r4rk1/1pp1qppp/p1np1n2/2b1p3/2B1P1b1/2NP1N2/PPP1QPPP/R1B2RK1 w - - 4 10",
	"8/8/8/8/8/8/6k1/4K2R w K - 0 1",
	"2kr3r/ppp2ppp/2n1b3/2bqp3/4n3/2N1BN2/PPPQ1PPP/R3KB1R w KQ - 4 11",
	"rnbq1rk1/ppp1bppp/4pn2/3p4/2PP4/2N1PN2/PP3PPP/R1BQKB1R w KQ - 0 6",
	"8/5p2/4k1p1/3p3p/3P1P1P/4PK2/8/8 w - - 0 1",
	"r2q1rk1/1b1nbppp/p2p1n2/1ppNp3/4P3/1B3N1P/PPPQ1PP1/R1B1R1K1 w - - 0 13",
}

// BenchResult carries one position's node count at a fixed depth.
type BenchResult struct {
	FEN   string
	Nodes uint64
	Depth int
}

// Bench runs every BenchPositions entry to a fixed depth with one worker
// and an always-cleared transposition table, returning the total node
// count used as the regression anchor (spec.md §8 scenario 6).
func Bench(net *nnue.Network, depth int) (uint64, []BenchResult) {
	tt := NewTranspositionTable(16)
	cuckoo := NewCuckooTable()
	w := NewWorker(0, tt, cuckoo, net)

	var total uint64
	results := make([]BenchResult, 0, len(BenchPositions))

	for _, fen := range BenchPositions {
		pos, err := board.ParseFEN(fen)
		if err != nil {
			continue
		}
		tt.NewSearch()
		w.SetPosition(pos, board.NewRepetitionHistory())

		var stop atomic.Bool
		limit := &Limit{DepthCap: depth, Infinite: true}
		limit.Start()
		w.Run(limit, &stop, func(SearchInfo) {})

		results = append(results, BenchResult{FEN: fen, Nodes: w.nodes, Depth: depth})
		total += w.nodes
	}

	return total, results
}
