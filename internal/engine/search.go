package engine

import (
	"slices"
	"sync/atomic"
	"time"

	"github.com/hailam/chesscore/internal/board"
)

// Search constants
const (
	Infinity  = 1 << 20
	MateScore = 100000
	MaxDepth  = 64
)

// IsMateScore reports whether score lies in the range only a mate
// detected by the Checkmate evaluator can produce.
func IsMateScore(score int) bool {
	return abs(score) > MateScore/2
}

// ScoredMove is a root move with the score of the position it leads to.
type ScoredMove struct {
	Move  board.Move
	Kind  board.PieceType
	Score int
	Nodes uint64
}

// Searcher performs depth-limited minimax and alpha-beta searches.
// White is the maximizing side. A Searcher is not safe for concurrent
// searches; Stop may be called from another goroutine.
type Searcher struct {
	eval  Evaluator
	cache *EvalCache

	stopFlag    atomic.Bool
	deadline    time.Time
	interrupted bool
}

// NewSearcher creates a searcher scoring leaves with eval. cache may be nil.
func NewSearcher(eval Evaluator, cache *EvalCache) *Searcher {
	return &Searcher{eval: eval, cache: cache}
}

// Evaluator returns the leaf evaluator.
func (s *Searcher) Evaluator() Evaluator {
	return s.eval
}

// Stop asks RankMoves to return before its next root move.
func (s *Searcher) Stop() {
	s.stopFlag.Store(true)
}

// Reset clears the stop request and the deadline.
func (s *Searcher) Reset() {
	s.stopFlag.Store(false)
	s.deadline = time.Time{}
	s.interrupted = false
}

// SetDeadline makes RankMoves stop before a root move started after t.
// The zero time removes the deadline.
func (s *Searcher) SetDeadline(t time.Time) {
	s.deadline = t
}

// Interrupted reports whether the last RankMoves skipped root moves.
func (s *Searcher) Interrupted() bool {
	return s.interrupted
}

// IsStopped returns true if a stop was requested or the deadline passed.
func (s *Searcher) IsStopped() bool {
	if s.stopFlag.Load() {
		return true
	}
	return !s.deadline.IsZero() && time.Now().After(s.deadline)
}

// leaf evaluates pos through the cache.
func (s *Searcher) leaf(pos board.Position) int {
	if s.cache == nil {
		return s.eval.Evaluate(pos)
	}
	if score, ok := s.cache.Probe(pos); ok {
		return score
	}
	score := s.eval.Evaluate(pos)
	s.cache.Store(pos, score)
	return score
}

// AlphaBeta returns the minimax score of pos searched to depth plies,
// skipping siblings once alpha >= beta, and the number of leaves visited.
// A node without legal moves is scored by the evaluator.
func (s *Searcher) AlphaBeta(pos board.Position, depth, alpha, beta int) (int, uint64) {
	if depth <= 0 {
		return s.leaf(pos), 1
	}

	legal := pos.LegalContinuations()
	if len(legal) == 0 {
		return s.leaf(pos), 1
	}

	maximizing := pos.SideToMove == board.White
	best := Infinity
	if maximizing {
		best = -Infinity
	}
	var nodes uint64

	for _, sq := range legal.Origins() {
		entry := legal[sq]
		for _, m := range entry.Moves {
			score, n := s.AlphaBeta(pos.Apply(m, entry.Kind), depth-1, alpha, beta)
			nodes += n

			if maximizing {
				best = max(best, score)
				alpha = max(alpha, best)
			} else {
				best = min(best, score)
				beta = min(beta, best)
			}
			if alpha >= beta {
				return best, nodes
			}
		}
	}
	return best, nodes
}

// Minimax returns the unpruned minimax score of pos searched to depth
// plies and the number of leaves visited.
func (s *Searcher) Minimax(pos board.Position, depth int) (int, uint64) {
	if depth <= 0 {
		return s.leaf(pos), 1
	}

	legal := pos.LegalContinuations()
	if len(legal) == 0 {
		return s.leaf(pos), 1
	}

	maximizing := pos.SideToMove == board.White
	best := Infinity
	if maximizing {
		best = -Infinity
	}
	var nodes uint64

	for _, sq := range legal.Origins() {
		entry := legal[sq]
		for _, m := range entry.Moves {
			score, n := s.Minimax(pos.Apply(m, entry.Kind), depth-1)
			nodes += n
			if maximizing {
				best = max(best, score)
			} else {
				best = min(best, score)
			}
		}
	}
	return best, nodes
}

// RankMoves scores every legal move of pos with a full-window search of
// depth-1 plies below it and returns the topK best for the side to move,
// best first. topK <= 0 returns all of them. Ties keep generation order.
//
// Stop requests and the deadline are checked between root moves only;
// when one fires the ranking covers the moves searched so far and
// Interrupted reports true.
func (s *Searcher) RankMoves(pos board.Position, depth, topK int) ([]ScoredMove, uint64) {
	s.interrupted = false
	depth = max(depth, 1)

	legal := pos.LegalContinuations()
	ranked := make([]ScoredMove, 0, legal.Count())
	var nodes uint64

rootLoop:
	for _, sq := range legal.Origins() {
		entry := legal[sq]
		for _, m := range entry.Moves {
			if len(ranked) > 0 && s.IsStopped() {
				s.interrupted = true
				break rootLoop
			}
			score, n := s.AlphaBeta(pos.Apply(m, entry.Kind), depth-1, -Infinity, Infinity)
			nodes += n
			ranked = append(ranked, ScoredMove{Move: m, Kind: entry.Kind, Score: score, Nodes: n})
		}
	}

	sortForSide(ranked, pos.SideToMove)
	if topK > 0 && len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked, nodes
}

// sortForSide orders moves best first for side c.
func sortForSide(moves []ScoredMove, c board.Color) {
	slices.SortStableFunc(moves, func(a, b ScoredMove) int {
		if c == board.White {
			return b.Score - a.Score
		}
		return a.Score - b.Score
	})
}
