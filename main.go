// ChessCore analyzes a chess position from the command line.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/engine"
	"github.com/hailam/chesscore/internal/storage"
	"github.com/hailam/chesscore/internal/ui"
)

var (
	layout   = flag.String("layout", board.StartLayout, "64-character board layout, A1 first, lowercase for White")
	side     = flag.String("side", "W", "side to move (W or B)")
	fen      = flag.String("fen", "", "FEN position (overrides -layout and -side)")
	depth    = flag.Int("depth", 0, "search depth (0: stored preference)")
	topK     = flag.Int("topk", 0, "number of ranked moves to show (0: stored preference)")
	evalName = flag.String("eval", "", "evaluator name (empty: stored preference)")
	moveTime = flag.Duration("movetime", 0, "search time limit, e.g. 2s")
	perft    = flag.Int("perft", 0, "count leaf nodes to this depth instead of searching")
	selected = flag.String("select", "", "highlight the legal destinations of the piece on this square")
	dbDir    = flag.String("db", "", "database directory for preferences and history")
	saveDB   = flag.Bool("save", false, "store the analysis and preferences in the database")
	unicode  = flag.Bool("unicode", false, "draw pieces as chess glyphs")
	noColor  = flag.Bool("nocolor", false, "disable colored output")
)

func main() {
	flag.Parse()
	log.SetFlags(0)
	if *noColor {
		color.NoColor = true
	}
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// run does the work of main so that deferred cleanup, closing the
// database in particular, happens before the process exits.
func run() error {
	pos, err := readPosition()
	if err != nil {
		return err
	}
	if err := pos.Validate(); err != nil {
		return fmt.Errorf("invalid position: %w", err)
	}

	r := ui.NewRenderer(*unicode)
	out := color.Output

	h := ui.NoHighlights
	if *selected != "" {
		sq, err := board.ParseSquare(*selected)
		if err != nil {
			return err
		}
		h.Selected = sq
		h.LegalMoves = pos.LegalContinuations().Destinations(sq)
	}
	r.DrawBoard(out, pos, h)
	fmt.Fprintln(out)

	if *perft > 0 {
		start := time.Now()
		nodes := board.Perft(pos, *perft)
		fmt.Fprintf(out, "perft(%d) = %s in %v\n", *perft, engine.FormatCount(nodes), time.Since(start).Round(time.Millisecond))
		return nil
	}

	r.DrawPossibleMoves(out, pos)
	fmt.Fprintln(out)

	var store *storage.Storage
	prefs := storage.DefaultPreferences()
	if *dbDir != "" || *saveDB {
		store, err = storage.NewStorage(*dbDir)
		if err != nil {
			return err
		}
		defer store.Close()
		if prefs, err = store.LoadPreferences(); err != nil {
			return err
		}
	}
	if *depth > 0 {
		prefs.Depth = *depth
	}
	if *topK > 0 {
		prefs.TopK = *topK
	}
	if *evalName != "" {
		prefs.Evaluator = strings.ToLower(*evalName)
	}

	eval, err := engine.NewEvaluator(prefs.Evaluator)
	if err != nil {
		return err
	}
	eng := engine.NewEngine(eval, 16)
	eng.OnInfo = func(si engine.SearchInfo) {
		fmt.Fprintln(out, si)
	}

	start := time.Now()
	limits := engine.SearchLimits{Depth: prefs.Depth, MoveTime: *moveTime}
	if *moveTime > 0 && *depth == 0 {
		limits.Depth = 0
	}
	ranking := eng.Rank(pos, limits)
	elapsed := time.Since(start)
	fmt.Fprintln(out)
	r.DrawRanking(out, pos, ranking.Moves[:min(prefs.TopK, len(ranking.Moves))])

	if store == nil || !*saveDB {
		return nil
	}
	if err := store.SavePreferences(prefs); err != nil {
		log.Printf("save preferences: %v", err)
	}
	// Timed results depend on the machine and are not kept.
	if limits.Depth == 0 {
		return nil
	}
	rec := &storage.AnalysisRecord{
		Kind:      storage.KindBestMoves,
		Layout:    pos.Layout(),
		Side:      board.SideToken(pos.SideToMove),
		Depth:     prefs.Depth,
		Evaluator: prefs.Evaluator,
		Nodes:     ranking.Nodes,
		BestMoves: ranking.Pairs(),
		Elapsed:   elapsed,
	}
	if len(ranking.Moves) > 0 {
		rec.Score = ranking.Moves[0].Score
	}
	key := storage.AnalysisKey{
		Kind:      storage.KindBestMoves,
		Position:  pos.EPD(),
		Depth:     prefs.Depth,
		Evaluator: prefs.Evaluator,
	}
	if err := store.SaveAnalysis(key, rec); err != nil {
		log.Printf("save analysis: %v", err)
	}
	return nil
}

func readPosition() (board.Position, error) {
	if *fen != "" {
		return board.ParseFEN(*fen)
	}
	return board.Decode(*layout, *side)
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags]\n\nAnalyzes a position and ranks its best moves.\n\n", os.Args[0])
		flag.PrintDefaults()
	}
}
