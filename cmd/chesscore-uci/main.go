package main

import (
	"flag"
	"log"
	"os"
	"runtime/pprof"

	"github.com/hailam/chesscore/internal/engine"
	"github.com/hailam/chesscore/internal/storage"
	"github.com/hailam/chesscore/internal/uci"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	hashMB     = flag.Int("hash", uci.DefaultHashMB, "evaluation cache size in MB")
	dbDir      = flag.String("db", "", "read default depth and evaluator from the preferences in this database")
)

func main() {
	flag.Parse()
	// stdout carries the protocol.
	log.SetOutput(os.Stderr)

	// Start CPU profiling if requested (via flag or environment variable)
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
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	prefs := loadPreferences(*dbDir)

	eval, err := engine.NewEvaluator(prefs.Evaluator)
	if err != nil {
		log.Printf("Warning: %v (using the default evaluator)", err)
		eval = engine.DefaultEvaluator()
	}

	eng := engine.NewEngine(eval, *hashMB)
	protocol := uci.New(eng, os.Stdout)
	protocol.SetDepth(prefs.Depth)
	if err := protocol.Run(os.Stdin); err != nil {
		log.Printf("reading commands: %v", err)
	}
}

// loadPreferences returns the stored preferences in dir, or the defaults
// when dir is empty or cannot be opened.
func loadPreferences(dir string) *storage.Preferences {
	if dir == "" {
		return storage.DefaultPreferences()
	}
	store, err := storage.NewStorage(dir)
	if err != nil {
		log.Printf("Warning: preferences not loaded: %v", err)
		return storage.DefaultPreferences()
	}
	defer store.Close()

	prefs, err := store.LoadPreferences()
	if err != nil {
		log.Printf("Warning: preferences not loaded: %v", err)
		return storage.DefaultPreferences()
	}
	return prefs
}
