package engine

import (
	"strconv"
	"time"

	"github.com/hailam/chesscore/internal/board"
)

// SearchInfo contains information about the current search.
type SearchInfo struct {
	Depth int
	Score int
	Nodes uint64
	Time  time.Duration
	PV    []board.Move
}

// NPS returns nodes per second, or 0 before any time has elapsed.
func (si SearchInfo) NPS() uint64 {
	if si.Time <= 0 {
		return 0
	}
	return uint64(float64(si.Nodes) / si.Time.Seconds())
}

// String formats the info for humans with localized counts.
func (si SearchInfo) String() string {
	pv := ""
	for _, m := range si.PV {
		pv += " " + m.UCI()
	}
	return printer.Sprintf("depth %d score %s nodes %d nps %d time %v pv%s",
		si.Depth, ScoreString(si.Score), si.Nodes, si.NPS(), si.Time.Round(time.Millisecond), pv)
}

// SearchLimits specifies constraints on the search.
type SearchLimits struct {
	Depth    int           // Maximum depth (0 = DefaultDepth, or MaxDepth when Infinite)
	MoveTime time.Duration // Time for this move (0 = no limit)
	Infinite bool          // Search until stopped
}

// DefaultDepth is used when neither a depth nor a time is given.
const DefaultDepth = 4

func (l SearchLimits) maxDepth() int {
	switch {
	case l.Depth > 0:
		return clamp(l.Depth, 1, MaxDepth)
	case l.Infinite || l.MoveTime > 0:
		return MaxDepth
	default:
		return DefaultDepth
	}
}

// Engine runs iteratively deepened searches over a Searcher.
type Engine struct {
	searcher *Searcher
	cache    *EvalCache

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates an engine scoring leaves with eval and caching them
// in a table of the given size in MB.
func NewEngine(eval Evaluator, cacheSizeMB int) *Engine {
	cache := NewEvalCache(cacheSizeMB)
	return &Engine{
		searcher: NewSearcher(eval, cache),
		cache:    cache,
	}
}

// SetEvaluator replaces the leaf evaluator and drops cached scores.
func (e *Engine) SetEvaluator(eval Evaluator) {
	e.searcher = NewSearcher(eval, e.cache)
	e.cache.Clear()
}

// Evaluator returns the current leaf evaluator.
func (e *Engine) Evaluator() Evaluator {
	return e.searcher.Evaluator()
}

// Ranking is the result of a search: every legal root move, best first,
// and the nodes visited over all iterations.
type Ranking struct {
	Moves []ScoredMove
	Nodes uint64
}

// Pairs returns the ranked moves as "FROM:TO" pairs. Promotions sharing a
// pair keep the rank of the best one.
func (r Ranking) Pairs() []string {
	seen := make(map[string]bool, len(r.Moves))
	pairs := make([]string, 0, len(r.Moves))
	for _, sm := range r.Moves {
		pair := sm.Move.String()
		if seen[pair] {
			continue
		}
		seen[pair] = true
		pairs = append(pairs, pair)
	}
	return pairs
}

// BestMoves ranks the legal moves of pos under limits and returns the
// topK best (all when topK <= 0).
func (e *Engine) BestMoves(pos board.Position, limits SearchLimits, topK int) []ScoredMove {
	best := e.Rank(pos, limits).Moves
	if topK > 0 && len(best) > topK {
		best = best[:topK]
	}
	return best
}

// Rank ranks every legal move of pos by iterative deepening and keeps the
// deepest completed iteration.
//
// The clock and Stop are only consulted between root moves and between
// iterations. The first iteration always ranks every move unless Stop
// is called; later iterations cut short are discarded.
func (e *Engine) Rank(pos board.Position, limits SearchLimits) Ranking {
	s := e.searcher
	s.Reset()

	startTime := time.Now()
	var deadline time.Time
	if limits.MoveTime > 0 {
		deadline = startTime.Add(limits.MoveTime)
	}

	var best []ScoredMove
	var totalNodes uint64
	maxDepth := limits.maxDepth()

	// Iterative deepening
	for depth := 1; depth <= maxDepth; depth++ {
		if depth > 1 {
			if s.IsStopped() {
				break
			}
			s.SetDeadline(deadline)
		}

		ranked, nodes := s.RankMoves(pos, depth, 0)
		totalNodes += nodes
		if len(ranked) == 0 {
			break
		}
		if s.Interrupted() && best != nil {
			break
		}
		best = ranked

		if e.OnInfo != nil {
			e.OnInfo(SearchInfo{
				Depth: depth,
				Score: best[0].Score,
				Nodes: totalNodes,
				Time:  time.Since(startTime),
				PV:    []board.Move{best[0].Move},
			})
		}

		if s.Interrupted() {
			break
		}

		// Early termination: found mate
		if IsMateScore(best[0].Score) && !limits.Infinite {
			break
		}

		// If we've used more than half the time, don't start another iteration
		if !deadline.IsZero() {
			elapsed := time.Since(startTime)
			if limits.MoveTime-elapsed < elapsed {
				break
			}
		}
	}

	return Ranking{Moves: best, Nodes: totalNodes}
}

// BestMove returns the best move for pos, or NoMove if it has none.
func (e *Engine) BestMove(pos board.Position, limits SearchLimits) board.Move {
	ranked := e.BestMoves(pos, limits, 1)
	if len(ranked) == 0 {
		return board.NoMove
	}
	return ranked[0].Move
}

// Evaluate returns the alpha-beta score of pos at the given depth and the
// number of leaves visited. Depth 0 is the static evaluation.
func (e *Engine) Evaluate(pos board.Position, depth int) (int, uint64) {
	return e.searcher.AlphaBeta(pos, clamp(depth, 0, MaxDepth), -Infinity, Infinity)
}

// Stop stops the current search before its next root move.
func (e *Engine) Stop() {
	e.searcher.Stop()
}

// Clear clears the evaluation cache.
func (e *Engine) Clear() {
	e.cache.Clear()
}

// CacheStats returns the evaluation cache's probe and hit counts.
func (e *Engine) CacheStats() (probes, hits uint64) {
	return e.cache.Stats()
}

// Perft performs a perft test (for debugging move generation).
func (e *Engine) Perft(pos board.Position, depth int) uint64 {
	return board.Perft(pos, depth)
}

// ScoreString converts a score to a human-readable string in pawns, or
// "#" with the winning side's sign for mate scores.
func ScoreString(score int) string {
	if IsMateScore(score) {
		if score > 0 {
			return "#+"
		}
		return "#-"
	}

	sign := "+"
	if score < 0 {
		sign = "-"
		score = -score
	}
	cents := strconv.Itoa(score % 100)
	if len(cents) == 1 {
		cents = "0" + cents
	}
	return sign + strconv.Itoa(score/100) + "." + cents
}
