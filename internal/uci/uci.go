// Package uci implements the Universal Chess Interface protocol loop,
// adapted from the teacher's engine.go-facing handler set to drive the
// engine package's Lazy-SMP Driver instead of the teacher's Engine type.
package uci

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hailam/chessplay/internal/board"
	"github.com/hailam/chessplay/internal/engine"
	"github.com/hailam/chessplay/internal/nnue"
	"github.com/hailam/chessplay/internal/store"
)

const defaultHashMB = 64

// UCI implements the protocol loop: read a command line from stdin, mutate
// engine/position state, write a response line to stdout.
type UCI struct {
	driver   *engine.Driver
	net      *nnue.Network
	position *board.Position
	history  *board.RepetitionHistory

	settings *store.EngineSettings

	hashMB  int
	threads int

	searching  bool
	searchDone chan struct{}
}

// Options carries command-line overrides for Hash/Threads/EvalFile applied
// at startup, ahead of the persisted settings store (spec's `-hash`,
// `-threads`, `-nnue` flags).
type Options struct {
	HashMB   int
	Threads  int
	EvalFile string
}

// New creates a UCI handler with no command-line overrides, using whatever
// was last persisted (or the built-in defaults).
func New(settingsPath string) *UCI {
	return NewWithOptions(settingsPath, Options{})
}

// NewWithOptions creates a UCI handler around a loaded (or random fallback)
// network and a settings store used to persist Hash/Threads/tunable
// overrides across process restarts (spec's ambient config layer). Values
// in opts take precedence over anything already persisted.
func NewWithOptions(settingsPath string, opts Options) *UCI {
	settings, err := store.Open(settingsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "info string settings store unavailable: %v\n", err)
		settings = store.NewMemorySettings()
	}

	hashMB := settings.IntOr("Hash", defaultHashMB)
	if opts.HashMB > 0 {
		hashMB = opts.HashMB
	}
	threads := settings.IntOr("Threads", engine.NumWorkers)
	if opts.Threads > 0 {
		threads = opts.Threads
	}

	net := nnue.RandomNetwork(0xC0FFEE)
	if opts.EvalFile != "" {
		if loaded, err := nnue.LoadNetwork(opts.EvalFile); err == nil {
			net = loaded
		} else {
			fmt.Fprintf(os.Stderr, "info string failed to load network %q: %v\n", opts.EvalFile, err)
		}
	}

	u := &UCI{
		net:      net,
		position: board.NewPosition(),
		history:  board.NewRepetitionHistory(),
		settings: settings,
		hashMB:   hashMB,
		threads:  threads,
	}
	u.driver = engine.NewDriver(threads, hashMB, net)
	u.driver.OnInfo = u.sendInfo
	u.applyStoredTunables()
	return u
}

func (u *UCI) applyStoredTunables() {
	for _, t := range engine.AllTunables() {
		if v, ok := settingsInt(u.settings, "tune."+t.Name); ok {
			t.Set(int64(v))
		}
	}
}

func settingsInt(s *store.EngineSettings, key string) (int, bool) {
	v, ok := s.Int(key)
	return v, ok
}

// Run starts the UCI main loop, reading commands until "quit".
func (u *UCI) Run() {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 1<<20), 1<<20)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Fields(line)
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			fmt.Println("readyok")
		case "ucinewgame":
			u.handleNewGame()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(args)
		case "stop":
			u.handleStop()
		case "quit":
			u.handleStop()
			u.settings.Close()
			os.Exit(0)
		case "setoption":
			u.handleSetOption(args)
		case "d":
			fmt.Println(u.position.String())
		case "perft":
			u.handlePerft(args)
		case "bench":
			u.handleBench(args)
		}
	}
}

func (u *UCI) handleUCI() {
	fmt.Println("id name chessplay")
	fmt.Println("id author chessplay contributors")
	fmt.Println()
	fmt.Println("option name Hash type spin default 64 min 1 max 4096")
	fmt.Println("option name Threads type spin default 1 min 1 max 256")
	fmt.Println("option name EvalFile type string default <empty>")
	for _, t := range engine.AllTunables() {
		fmt.Printf("option name %s type spin default %d min %d max %d\n", t.Name, t.Default, t.Min, t.Max)
	}
	fmt.Println("uciok")
}

func (u *UCI) handleNewGame() {
	u.driver.Clear()
	u.position = board.NewPosition()
	u.history = board.NewRepetitionHistory()
	u.history.Push(u.position.Hash)
}

func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	u.history = board.NewRepetitionHistory()
	var moveStart int

	switch args[0] {
	case "startpos":
		u.position = board.NewPosition()
		moveStart = 1
		for i, a := range args {
			if a == "moves" {
				moveStart = i + 1
				break
			}
		}
	case "fen":
		fenEnd := len(args)
		for i, a := range args[1:] {
			if a == "moves" {
				fenEnd = i + 1
				break
			}
		}
		fenStr := strings.Join(args[1:fenEnd], " ")
		pos, err := board.ParseFEN(fenStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "info string invalid FEN: %v\n", err)
			return
		}
		u.position = pos
		moveStart = len(args)
		for i, a := range args {
			if a == "moves" {
				moveStart = i + 1
				break
			}
		}
	default:
		return
	}

	u.history.Push(u.position.Hash)

	for _, a := range args[min(moveStart, len(args)):] {
		m := u.parseMove(a)
		if m == board.NoMove {
			fmt.Fprintf(os.Stderr, "info string invalid move: %s\n", a)
			return
		}
		u.position.MakeMove(m)
		u.position.UpdateCheckers()
		u.history.Push(u.position.Hash)
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func (u *UCI) parseMove(moveStr string) board.Move {
	m, err := board.ParseMove(moveStr, u.position)
	if err != nil {
		return board.NoMove
	}
	return m
}

// GoOptions holds parsed "go" command arguments.
type GoOptions struct {
	Depth     int
	Nodes     uint64
	MoveTime  int64
	Infinite  bool
	WTime     int64
	BTime     int64
	WInc      int64
	BInc      int64
	MovesToGo int
}

func (u *UCI) handleGo(args []string) {
	opts := u.parseGoOptions(args)
	limit := u.buildLimit(opts)

	pos := u.position.Copy()
	hist := u.history

	u.searching = true
	u.searchDone = make(chan struct{})

	go func() {
		defer close(u.searchDone)
		move, _ := u.driver.Search(pos, hist, limit)
		u.searching = false

		if move == board.NoMove {
			legal := u.position.GenerateLegalMoves()
			if legal.Len() > 0 {
				move = legal.Get(0)
			}
		}
		if move == board.NoMove {
			fmt.Println("bestmove 0000")
		} else {
			fmt.Printf("bestmove %s\n", move.String())
		}
	}()
}

func (u *UCI) parseGoOptions(args []string) GoOptions {
	var opts GoOptions
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			if i+1 < len(args) {
				opts.Depth, _ = strconv.Atoi(args[i+1])
				i++
			}
		case "nodes":
			if i+1 < len(args) {
				n, _ := strconv.ParseUint(args[i+1], 10, 64)
				opts.Nodes = n
				i++
			}
		case "movetime":
			if i+1 < len(args) {
				ms, _ := strconv.ParseInt(args[i+1], 10, 64)
				opts.MoveTime = ms
				i++
			}
		case "infinite":
			opts.Infinite = true
		case "wtime":
			if i+1 < len(args) {
				opts.WTime, _ = strconv.ParseInt(args[i+1], 10, 64)
				i++
			}
		case "btime":
			if i+1 < len(args) {
				opts.BTime, _ = strconv.ParseInt(args[i+1], 10, 64)
				i++
			}
		case "winc":
			if i+1 < len(args) {
				opts.WInc, _ = strconv.ParseInt(args[i+1], 10, 64)
				i++
			}
		case "binc":
			if i+1 < len(args) {
				opts.BInc, _ = strconv.ParseInt(args[i+1], 10, 64)
				i++
			}
		case "movestogo":
			if i+1 < len(args) {
				opts.MovesToGo, _ = strconv.Atoi(args[i+1])
				i++
			}
		}
	}
	return opts
}

func (u *UCI) buildLimit(opts GoOptions) *engine.Limit {
	limit := &engine.Limit{DepthCap: opts.Depth, HardNodes: opts.Nodes, Infinite: opts.Infinite}

	if opts.MoveTime > 0 {
		limit.MoveTimeMS = opts.MoveTime
		return limit
	}

	if u.position.SideToMove == board.White {
		limit.ClockMS, limit.IncMS = opts.WTime, opts.WInc
	} else {
		limit.ClockMS, limit.IncMS = opts.BTime, opts.BInc
	}
	return limit
}

func (u *UCI) sendInfo(info engine.SearchInfo) {
	var parts []string
	parts = append(parts, fmt.Sprintf("depth %d", info.Depth))
	if info.SelDepth > 0 {
		parts = append(parts, fmt.Sprintf("seldepth %d", info.SelDepth))
	}

	if engine.IsMateScore(info.Score) {
		parts = append(parts, fmt.Sprintf("score mate %d", engine.MateIn(info.Score)))
	} else {
		parts = append(parts, fmt.Sprintf("score cp %d", info.Score))
	}

	parts = append(parts, fmt.Sprintf("nodes %d", info.Nodes))
	parts = append(parts, fmt.Sprintf("hashfull %d", u.driver.Hashfull()))

	if len(info.PV) > 0 {
		moves := make([]string, len(info.PV))
		for i, m := range info.PV {
			moves[i] = m.String()
		}
		parts = append(parts, "pv "+strings.Join(moves, " "))
	}

	fmt.Printf("info %s\n", strings.Join(parts, " "))
}

func (u *UCI) handleStop() {
	if u.searching {
		u.driver.Stop()
		<-u.searchDone
	}
}

func (u *UCI) handleSetOption(args []string) {
	var name, value string
	readingName, readingValue := false, false
	for _, a := range args {
		switch a {
		case "name":
			readingName, readingValue = true, false
		case "value":
			readingName, readingValue = false, true
		default:
			if readingName {
				name = appendWord(name, a)
			} else if readingValue {
				value = appendWord(value, a)
			}
		}
	}

	switch {
	case strings.EqualFold(name, "hash"):
		mb, err := strconv.Atoi(value)
		if err == nil && mb > 0 {
			u.hashMB = mb
			u.driver.Resize(mb)
			u.settings.SetInt("Hash", mb)
		}
	case strings.EqualFold(name, "threads"):
		n, err := strconv.Atoi(value)
		if err == nil && n > 0 {
			u.threads = n
			u.driver = engine.NewDriver(n, u.hashMB, u.net)
			u.driver.OnInfo = u.sendInfo
			u.settings.SetInt("Threads", n)
		}
	case strings.EqualFold(name, "evalfile"):
		if net, err := nnue.LoadNetwork(value); err == nil {
			u.net = net
			u.driver = engine.NewDriver(u.threads, u.hashMB, net)
			u.driver.OnInfo = u.sendInfo
		} else {
			fmt.Fprintf(os.Stderr, "info string failed to load network: %v\n", err)
		}
	default:
		if v, err := strconv.ParseInt(value, 10, 64); err == nil {
			if engine.SetTunable(name, v) {
				u.settings.SetInt("tune."+name, int(v))
			}
		}
	}
}

func appendWord(s, w string) string {
	if s == "" {
		return w
	}
	return s + " " + w
}

func (u *UCI) handlePerft(args []string) {
	depth := 5
	if len(args) > 0 {
		depth, _ = strconv.Atoi(args[0])
	}

	start := time.Now()
	nodes := perft(u.position, depth)
	elapsed := time.Since(start)

	fmt.Printf("Nodes: %d\n", nodes)
	fmt.Printf("Time: %v\n", elapsed)
	if elapsed > 0 {
		fmt.Printf("NPS: %.0f\n", float64(nodes)/elapsed.Seconds())
	}
}

// handleBench runs the fixed node-count regression set (spec.md §8 scenario
// 6) and compares the total against the last saved baseline, flagging a
// divergence rather than failing it outright: a change here is sometimes
// intentional (a tuned parameter, a new pruning rule) and the operator
// decides whether to accept it.
func (u *UCI) handleBench(args []string) {
	depth := 12
	if len(args) > 0 {
		if d, err := strconv.Atoi(args[0]); err == nil {
			depth = d
		}
	}

	total, results := engine.Bench(u.net, depth)
	for _, r := range results {
		fmt.Printf("info string bench depth %d nodes %d fen %s\n", r.Depth, r.Nodes, r.FEN)
	}
	fmt.Printf("%d nodes searched\n", total)

	if baseline, ok := u.settings.LoadBenchBaseline(); ok && baseline.Depth == depth {
		if baseline.Nodes != total {
			fmt.Printf("info string bench node count changed: baseline %d, got %d\n", baseline.Nodes, total)
		}
	}
	_ = u.settings.SaveBenchBaseline(store.BenchBaseline{Depth: depth, Nodes: total, Build: "dev"})
}

func perft(pos *board.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := pos.GenerateLegalMoves()
	if depth == 1 {
		return uint64(moves.Len())
	}
	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		undo := pos.MakeMove(m)
		pos.UpdateCheckers()
		nodes += perft(pos, depth-1)
		pos.UnmakeMove(m, undo)
	}
	return nodes
}
