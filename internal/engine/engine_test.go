package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/hailam/chesscore/internal/board"
)

// hashEvaluator gives every position an arbitrary but fixed score, which
// makes pruning mistakes visible where a smooth evaluator might hide them.
var hashEvaluator = EvaluatorFunc(func(pos board.Position) int {
	return int(pos.Hash%2001) - 1000
})

var searchFENs = []string{
	board.StartFEN,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"6k1/5ppp/8/8/8/8/5PPP/R5K1 b - - 0 1",
}

func TestAlphaBetaMatchesMinimax(t *testing.T) {
	evaluators := map[string]Evaluator{
		"hash":    hashEvaluator,
		"default": DefaultEvaluator(),
	}

	for name, eval := range evaluators {
		for _, fen := range searchFENs {
			pos := board.MustParseFEN(fen)
			for depth := 0; depth <= 3; depth++ {
				// No cache: both searches must see identical leaf scores anyway.
				s := NewSearcher(eval, nil)
				ab, abNodes := s.AlphaBeta(pos, depth, -Infinity, Infinity)
				mm, mmNodes := s.Minimax(pos, depth)
				if ab != mm {
					t.Errorf("%s %s depth %d: alpha-beta %d != minimax %d", name, fen, depth, ab, mm)
				}
				if abNodes > mmNodes {
					t.Errorf("%s %s depth %d: alpha-beta visited %d leaves, minimax %d", name, fen, depth, abNodes, mmNodes)
				}
			}
		}
	}
}

func TestMinimaxNodeCount(t *testing.T) {
	s := NewSearcher(Material{}, nil)
	pos := board.Initial()
	for depth := 0; depth <= 3; depth++ {
		_, nodes := s.Minimax(pos, depth)
		if want := board.Perft(pos, depth); nodes != want {
			t.Errorf("minimax depth %d visited %d leaves, want %d", depth, nodes, want)
		}
	}
}

func TestMateInOne(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want board.Move
	}{
		{"white back rank", "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1", board.Move{From: board.A1, To: board.A8}},
		{"black back rank", "r5k1/8/8/8/8/8/5PPP/6K1 b - - 0 1", board.Move{From: board.A8, To: board.A1}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := board.MustParseFEN(tc.fen)
			eng := NewEngine(DefaultEvaluator(), 1)

			ranked := eng.BestMoves(pos, SearchLimits{Depth: 3}, 3)
			if len(ranked) == 0 {
				t.Fatal("no moves ranked")
			}
			if ranked[0].Move != tc.want {
				t.Errorf("best move = %s, want %s", ranked[0].Move, tc.want)
			}
			if !IsMateScore(ranked[0].Score) {
				t.Errorf("score %d is not a mate score", ranked[0].Score)
			}
			if (pos.SideToMove == board.White) != (ranked[0].Score > 0) {
				t.Errorf("mate score %d has the wrong sign", ranked[0].Score)
			}
		})
	}
}

func TestTerminalNodesUseEvaluator(t *testing.T) {
	s := NewSearcher(DefaultEvaluator(), nil)

	mated := board.MustParseFEN("R6k/6pp/8/8/8/8/8/K7 b - - 0 1")
	for depth := 0; depth <= 3; depth++ {
		score, nodes := s.AlphaBeta(mated, depth, -Infinity, Infinity)
		if !IsMateScore(score) || score < 0 {
			t.Errorf("depth %d: mated black scored %d, want large positive", depth, score)
		}
		if nodes != 1 {
			t.Errorf("depth %d: terminal node counted %d leaves", depth, nodes)
		}
	}

	stalemate := board.MustParseFEN("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if got := (Checkmate{}).Evaluate(stalemate); got != 0 {
		t.Errorf("stalemate scored %d, want 0", got)
	}
	score, _ := NewSearcher(Checkmate{}, nil).AlphaBeta(stalemate, 2, -Infinity, Infinity)
	if score != 0 {
		t.Errorf("stalemate search scored %d, want 0", score)
	}
}

func TestEvaluators(t *testing.T) {
	initial := board.Initial()

	for _, e := range []Evaluator{Material{}, Positional{}, Checkmate{}, DefaultEvaluator()} {
		if got := e.Evaluate(initial); got != 0 {
			t.Errorf("%T scores the symmetric initial position %d", e, got)
		}
	}

	noQueen := board.MustParseFEN("rnb1kbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	if got := (Material{}).Evaluate(noQueen); got != QueenValue {
		t.Errorf("material without black queen = %d, want %d", got, QueenValue)
	}

	// A centralized knight beats one on the rim.
	center := board.MustParseFEN("4k3/8/8/8/3N4/8/8/4K3 w - - 0 1")
	rim := board.MustParseFEN("4k3/8/8/8/N7/8/8/4K3 w - - 0 1")
	if (Positional{}).Evaluate(center) <= (Positional{}).Evaluate(rim) {
		t.Error("positional score prefers a knight on the rim")
	}

	// Mirrored positions score with opposite signs.
	white := board.MustParseFEN("4k3/8/8/8/4P3/8/8/4K3 w - - 0 1")
	black := board.MustParseFEN("4k3/8/8/4p3/8/8/8/4K3 w - - 0 1")
	if (Positional{}).Evaluate(white) != -(Positional{}).Evaluate(black) {
		t.Error("positional tables are not mirrored for black")
	}

	pipeline := Pipeline{Material{}, Positional{}}
	if got, want := pipeline.Evaluate(white), (Material{}).Evaluate(white)+(Positional{}).Evaluate(white); got != want {
		t.Errorf("pipeline = %d, want %d", got, want)
	}

	mated := board.MustParseFEN("R6k/6pp/8/8/8/8/8/K7 b - - 0 1")
	if got := (Checkmate{}).Evaluate(mated); got != MateScore {
		t.Errorf("checkmate of black = %d, want %d", got, MateScore)
	}
}

func TestNewEvaluator(t *testing.T) {
	for _, name := range []string{"", "default", "Material", "positional", "checkmate"} {
		if _, err := NewEvaluator(name); err != nil {
			t.Errorf("NewEvaluator(%q): %v", name, err)
		}
	}
	if _, err := NewEvaluator("nnue"); !errors.Is(err, ErrUnknownEvaluator) {
		t.Errorf("NewEvaluator(nnue) error = %v", err)
	}
	if got := EvaluatorNames(); len(got) != 4 || got[0] != "checkmate" {
		t.Errorf("EvaluatorNames() = %v", got)
	}
}

func TestRankMoves(t *testing.T) {
	s := NewSearcher(DefaultEvaluator(), NewEvalCache(1))

	ranked, nodes := s.RankMoves(board.Initial(), 2, 0)
	if len(ranked) != 20 {
		t.Fatalf("ranked %d moves, want 20", len(ranked))
	}
	if nodes != 400 {
		t.Errorf("depth 2 ranking visited %d leaves, want 400", nodes)
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Score > ranked[i-1].Score {
			t.Errorf("white ranking not descending at %d: %d > %d", i, ranked[i].Score, ranked[i-1].Score)
		}
	}

	top, _ := s.RankMoves(board.Initial(), 2, 3)
	if len(top) != 3 || top[0] != ranked[0] {
		t.Errorf("top 3 = %v, want prefix of %v", top, ranked[:3])
	}

	black := board.Initial().ApplyMove(board.Move{From: board.E2, To: board.E4})
	ranked, _ = s.RankMoves(black, 2, 0)
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Score < ranked[i-1].Score {
			t.Errorf("black ranking not ascending at %d", i)
		}
	}

	// Each root score is the exact search score of the child.
	for _, sm := range ranked[:3] {
		want, _ := s.Minimax(black.Apply(sm.Move, sm.Kind), 1)
		if sm.Score != want {
			t.Errorf("%s scored %d, want %d", sm.Move, sm.Score, want)
		}
	}
}

func TestRankMovesStop(t *testing.T) {
	s := NewSearcher(Material{}, nil)
	s.Stop()

	ranked, _ := s.RankMoves(board.Initial(), 2, 0)
	if len(ranked) != 1 {
		t.Errorf("stopped ranking searched %d moves, want 1", len(ranked))
	}
	if !s.Interrupted() {
		t.Error("Interrupted() = false after stop")
	}

	s.Reset()
	s.SetDeadline(time.Now().Add(-time.Second))
	ranked, _ = s.RankMoves(board.Initial(), 1, 0)
	if len(ranked) != 1 || !s.Interrupted() {
		t.Errorf("expired deadline ranked %d moves", len(ranked))
	}
}

func TestEvalCache(t *testing.T) {
	c := NewEvalCache(1)
	if c.Len() != 1<<16 {
		t.Errorf("Len() = %d, want %d", c.Len(), 1<<16)
	}

	pos := board.Initial()
	if _, found := c.Probe(pos); found {
		t.Error("Expected cache miss on first probe")
	}

	c.Store(pos, -15)
	score, found := c.Probe(pos)
	if !found || score != -15 {
		t.Errorf("Probe() = %d, %v; want -15, true", score, found)
	}

	// Same hash, different en passant square.
	withEP := pos
	withEP.EnPassant = board.E3
	if _, found := c.Probe(withEP); found {
		t.Error("en passant square ignored by cache key")
	}

	probes, hits := c.Stats()
	if probes != 3 || hits != 1 {
		t.Errorf("Stats() = %d, %d; want 3, 1", probes, hits)
	}

	c.Clear()
	if _, found := c.Probe(pos); found {
		t.Error("entry survived Clear")
	}
}

func TestCachedSearchMatchesUncached(t *testing.T) {
	pos := board.MustParseFEN(searchFENs[1])
	cached := NewSearcher(DefaultEvaluator(), NewEvalCache(1))
	plain := NewSearcher(DefaultEvaluator(), nil)

	want, _ := plain.AlphaBeta(pos, 2, -Infinity, Infinity)
	for run := 0; run < 2; run++ {
		if got, _ := cached.AlphaBeta(pos, 2, -Infinity, Infinity); got != want {
			t.Errorf("run %d: cached %d != uncached %d", run, got, want)
		}
	}
	if _, hits := cached.cache.Stats(); hits == 0 {
		t.Error("repeated search produced no cache hits")
	}
}

func TestSearchBasic(t *testing.T) {
	eng := NewEngine(DefaultEvaluator(), 1)

	var infos []SearchInfo
	eng.OnInfo = func(si SearchInfo) { infos = append(infos, si) }

	move := eng.BestMove(board.Initial(), SearchLimits{Depth: 3})
	if move == board.NoMove {
		t.Fatal("Search returned NoMove for starting position")
	}
	if len(infos) != 3 {
		t.Fatalf("got %d info callbacks, want 3", len(infos))
	}
	for i, si := range infos {
		if si.Depth != i+1 {
			t.Errorf("info %d has depth %d", i, si.Depth)
		}
		if i > 0 && si.Nodes <= infos[i-1].Nodes {
			t.Errorf("node count did not grow: %d then %d", infos[i-1].Nodes, si.Nodes)
		}
	}
	if infos[2].PV[0] != move {
		t.Errorf("last info PV %v does not start with %s", infos[2].PV, move)
	}
	t.Logf("Best move: %s (%s)", move, infos[2])
}

func TestRankCountsAllIterations(t *testing.T) {
	eng := NewEngine(Material{}, 1)

	var last SearchInfo
	eng.OnInfo = func(si SearchInfo) { last = si }

	r := eng.Rank(board.Initial(), SearchLimits{Depth: 2})
	if len(r.Moves) != 20 {
		t.Fatalf("ranked %d moves, want 20", len(r.Moves))
	}
	// 20 leaves at depth 1 plus 400 at depth 2.
	if r.Nodes != 420 {
		t.Errorf("Nodes = %d, want 420", r.Nodes)
	}
	if last.Nodes != r.Nodes {
		t.Errorf("last info reported %d nodes, ranking %d", last.Nodes, r.Nodes)
	}
	if pairs := r.Pairs(); len(pairs) != 20 {
		t.Errorf("got %d pairs, want 20", len(pairs))
	}
}

func TestRankingPairsMergePromotions(t *testing.T) {
	pos := board.MustParseFEN("8/4P3/8/8/8/8/k7/7K w - - 0 1")
	r := NewEngine(Material{}, 1).Rank(pos, SearchLimits{Depth: 1})

	pairs := r.Pairs()
	if len(pairs) != len(r.Moves)-3 {
		t.Errorf("%d moves gave %d pairs, want the four promotions merged", len(r.Moves), len(pairs))
	}
	// Material ranks the queen promotion first.
	if pairs[0] != "E7:E8" {
		t.Errorf("best pair = %s, want E7:E8", pairs[0])
	}
	count := 0
	for _, p := range pairs {
		if p == "E7:E8" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("E7:E8 listed %d times", count)
	}
}

func TestEngineStopBetweenIterations(t *testing.T) {
	eng := NewEngine(Material{}, 1)
	var depths []int
	eng.OnInfo = func(si SearchInfo) {
		depths = append(depths, si.Depth)
		eng.Stop()
	}

	ranked := eng.BestMoves(board.Initial(), SearchLimits{Infinite: true}, 0)
	if len(ranked) != 20 {
		t.Errorf("ranked %d moves, want 20 from the completed first iteration", len(ranked))
	}
	if len(depths) != 1 {
		t.Errorf("iterations reported = %v, want only depth 1", depths)
	}
}

func TestEngineMoveTime(t *testing.T) {
	eng := NewEngine(DefaultEvaluator(), 1)
	start := time.Now()
	move := eng.BestMove(board.Initial(), SearchLimits{MoveTime: 200 * time.Millisecond})
	if move == board.NoMove {
		t.Fatal("no move under a time limit")
	}
	// One root subtree may overrun the deadline, never a whole iteration.
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("search took %v with a 200ms budget", elapsed)
	}
}

func TestEngineEvaluate(t *testing.T) {
	eng := NewEngine(Material{}, 1)
	if score, nodes := eng.Evaluate(board.Initial(), 0); score != 0 || nodes != 1 {
		t.Errorf("static evaluation = %d (%d nodes)", score, nodes)
	}

	// White wins the hanging queen at depth 1.
	pos := board.MustParseFEN("4k3/8/8/3q4/4P3/8/8/4K3 w - - 0 1")
	if score, _ := eng.Evaluate(pos, 1); score != PawnValue {
		t.Errorf("depth 1 score = %d, want %d", score, PawnValue)
	}

	eng.SetEvaluator(Positional{})
	if _, ok := eng.Evaluator().(Positional); !ok {
		t.Error("SetEvaluator did not replace the evaluator")
	}
}

func TestNoLegalMoves(t *testing.T) {
	eng := NewEngine(DefaultEvaluator(), 1)
	mated := board.MustParseFEN("R6k/6pp/8/8/8/8/8/K7 b - - 0 1")
	if got := eng.BestMoves(mated, SearchLimits{Depth: 2}, 5); len(got) != 0 {
		t.Errorf("mated side ranked %d moves", len(got))
	}
	if eng.BestMove(mated, SearchLimits{Depth: 2}) != board.NoMove {
		t.Error("expected NoMove")
	}
}

func TestScoreString(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{0, "+0.00"},
		{105, "+1.05"},
		{-37, "-0.37"},
		{MateScore, "#+"},
		{-MateScore + 400, "#-"},
	}
	for _, tc := range tests {
		if got := ScoreString(tc.score); got != tc.want {
			t.Errorf("ScoreString(%d) = %s, want %s", tc.score, got, tc.want)
		}
	}

	if got := FormatCount(1234567); got != "1,234,567" {
		t.Errorf("FormatCount = %s", got)
	}
}
