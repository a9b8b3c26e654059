// Command chessplay-uci runs the engine as a UCI-protocol process speaking
// on stdin/stdout, grounded on the teacher's cmd/chessplay-uci/main.go
// startup sequence (flag parsing, optional CPU profile, then handing off to
// the UCI loop). NNUE network loading moved from an auto-discovery walk
// over several candidate directories to an explicit `setoption EvalFile`,
// since this headless engine has no install-time asset bundling step to
// search relative to.
package main

import (
	"flag"
	"log"
	"os"
	"runtime/pprof"

	"github.com/hailam/chessplay/internal/engine"
	"github.com/hailam/chessplay/internal/nnue"
	"github.com/hailam/chessplay/internal/store"
	"github.com/hailam/chessplay/internal/uci"
)

var (
	cpuprofile   = flag.String("cpuprofile", "", "write cpu profile to file")
	settingsPath = flag.String("settings", "", "path to the engine settings database (empty = platform default)")
	benchDepth   = flag.Int("bench", 0, "run the fixed node-count bench at this depth and exit (0 disables)")
	evalFile     = flag.String("nnue", "", "path to an NNUE network file (empty uses a random fallback net)")
	hashMB       = flag.Int("hash", 0, "transposition table size in MB (0 = use persisted or default)")
	threads      = flag.Int("threads", 0, "number of search workers (0 = use persisted or GOMAXPROCS)")
)

func main() {
	flag.Parse()

	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}

	if *benchDepth > 0 {
		net := nnue.RandomNetwork(0xC0FFEE)
		if *evalFile != "" {
			loaded, err := nnue.LoadNetwork(*evalFile)
			if err != nil {
				log.Fatalf("loading network %q: %v", *evalFile, err)
			}
			net = loaded
		}
		total, results := engine.Bench(net, *benchDepth)
		for _, r := range results {
			log.Printf("depth %d nodes %d fen %s", r.Depth, r.Nodes, r.FEN)
		}
		log.Printf("%d nodes searched", total)
		return
	}

	path := *settingsPath
	if path == "" {
		if p, err := store.DefaultPath(); err == nil {
			path = p
		} else {
			log.Printf("settings store disabled: %v", err)
		}
	}

	protocol := uci.NewWithOptions(path, uci.Options{HashMB: *hashMB, Threads: *threads, EvalFile: *evalFile})
	protocol.Run()
}
