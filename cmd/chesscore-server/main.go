package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hailam/chesscore/internal/server"
	"github.com/hailam/chesscore/internal/storage"
)

var (
	addr     = flag.String("addr", ":8080", "listen address")
	dbDir    = flag.String("db", "", "database directory (default: platform data directory)")
	noDB     = flag.Bool("nodb", false, "run without persistent storage")
	depth    = flag.Int("depth", 0, "default search depth (0: stored preference)")
	topK     = flag.Int("topk", 0, "default number of best moves (0: stored preference)")
	eval     = flag.String("eval", "", "default evaluator (empty: stored preference)")
	cacheMB  = flag.Int("cache", 16, "evaluation cache size in MB")
	maxDepth = flag.Int("maxdepth", 8, "deepest search a request may ask for")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// run serves until interrupted. Errors are returned rather than logged
// fatally so the deferred database close always runs.
func run() error {
	var store *storage.Storage
	prefs := storage.DefaultPreferences()
	if !*noDB {
		var err error
		store, err = storage.NewStorage(*dbDir)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		defer store.Close()

		if prefs, err = store.LoadPreferences(); err != nil {
			return fmt.Errorf("load preferences: %w", err)
		}
	}

	if *depth > 0 {
		prefs.Depth = *depth
	}
	if *topK > 0 {
		prefs.TopK = *topK
	}
	if *eval != "" {
		prefs.Evaluator = *eval
	}
	if store != nil {
		if err := store.SavePreferences(prefs); err != nil {
			log.Printf("save preferences: %v", err)
		}
	}

	srv := server.New(server.Config{
		Store:       store,
		Defaults:    *prefs,
		CacheSizeMB: *cacheMB,
		MaxDepth:    *maxDepth,
	})

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	listenErr := make(chan error, 1)
	go func() {
		log.Printf("listening on %s (depth %d, topk %d, evaluator %s)", *addr, prefs.Depth, prefs.TopK, prefs.Evaluator)
		listenErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-listenErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Printf("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	return nil
}
