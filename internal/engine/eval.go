// Package engine implements position evaluation and the minimax search.
package engine

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/hailam/chesscore/internal/board"
)

// ErrUnknownEvaluator is returned by NewEvaluator for an unregistered name.
var ErrUnknownEvaluator = errors.New("unknown evaluator")

// Evaluator scores a position. Positive scores favor White.
type Evaluator interface {
	Evaluate(pos board.Position) int
}

// EvaluatorFunc adapts an ordinary function to the Evaluator interface.
type EvaluatorFunc func(pos board.Position) int

// Evaluate calls f(pos).
func (f EvaluatorFunc) Evaluate(pos board.Position) int {
	return f(pos)
}

// Material values
const (
	PawnValue   = 105
	KnightValue = 310
	BishopValue = 325
	RookValue   = 500
	QueenValue  = 900
	KingValue   = 0
)

var pieceValues = [6]int{PawnValue, KnightValue, BishopValue, RookValue, QueenValue, KingValue}

// Material sums piece values, White minus Black.
type Material struct{}

func (Material) Evaluate(pos board.Position) int {
	score := 0
	for _, pt := range board.PieceTypes {
		score += pieceValues[pt] * (pos.PiecesOf(board.White, pt).PopCount() - pos.PiecesOf(board.Black, pt).PopCount())
	}
	return score
}

// Piece-coordinate tables, laid out as seen from White with rank 8 on top.
// White looks up the vertically mirrored square, Black the square itself.

var pawnTable = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	80, 80, 85, 90, 90, 85, 80, 80,
	50, 50, 55, 60, 60, 55, 50, 50,
	30, 30, 35, 40, 40, 35, 30, 30,
	20, 20, 25, 30, 30, 25, 20, 20,
	10, 10, 15, 20, 20, 15, 10, 10,
	0, 0, 5, 10, 10, 5, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var knightTable = [64]int{
	0, 10, -10, -10, -10, -10, 10, 0,
	0, -10, 20, 10, 10, 20, -10, 0,
	0, 10, 30, 20, 20, 30, 10, 0,
	0, 10, 20, 30, 30, 20, 10, 0,
	0, 10, 30, 20, 20, 30, 10, 0,
	0, 10, 20, 30, 30, 20, 10, 0,
	0, -10, 20, 10, 10, 20, -10, 0,
	0, 10, -10, -10, -10, -10, 10, 0,
}

var bishopTable = [64]int{
	-20, 10, 10, 10, 10, 10, 10, -20,
	0, 20, 10, 30, 30, 10, 20, 0,
	20, 10, 30, 10, 10, 30, 10, 20,
	10, 20, 10, 30, 30, 10, 20, 10,
	10, 10, 30, 20, 20, 30, 10, 10,
	10, 30, 20, 10, 10, 20, 30, 10,
	10, 0, 10, 20, 20, 10, 0, 10,
	-20, 10, 20, 10, 10, 20, 10, -20,
}

var rookTable = [64]int{
	0, -5, -5, -5, -5, -5, -5, 0,
	5, -5, -5, -5, -5, -5, -5, 5,
	5, -5, -5, -5, -5, -5, -5, 5,
	5, -5, -5, -5, -5, -5, -5, 5,
	5, -5, -5, -5, -5, -5, -5, 5,
	5, -5, -5, -5, -5, -5, -5, 5,
	5, -5, -5, -5, -5, -5, -5, 5,
	0, -5, -5, -5, -5, -5, -5, 0,
}

var queenTable = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 20, 20, 20, 20, 0, 0,
	0, 0, 20, 30, 30, 20, 0, 0,
	0, 0, 20, 30, 30, 20, 0, 0,
	0, 0, 20, 20, 20, 20, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
}

// Castled king squares are rewarded, the center is discouraged.
var kingTable = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, -10, -10, -10, -10, 0, 0,
	0, 0, -10, -10, -10, -10, 0, 0,
	0, 0, -10, -10, -10, -10, 0, 0,
	0, 0, -10, -10, -10, -10, 0, 0,
	0, 0, 0, 10, 0, 10, 0, 0,
	0, 0, 20, 0, 0, 0, 20, 0,
}

var coordinateTables = [6]*[64]int{&pawnTable, &knightTable, &bishopTable, &rookTable, &queenTable, &kingTable}

// Positional scores piece placement with per-kind coordinate tables.
type Positional struct{}

func (Positional) Evaluate(pos board.Position) int {
	score := 0
	for _, pt := range board.PieceTypes {
		table := coordinateTables[pt]
		pos.PiecesOf(board.White, pt).ForEach(func(sq board.Square) {
			score += table[sq.Mirror()]
		})
		pos.PiecesOf(board.Black, pt).ForEach(func(sq board.Square) {
			score -= table[sq]
		})
	}
	return score
}

// Checkmate recognizes terminal positions: a side to move with no legal
// moves is mated if its king is attacked and stalemated otherwise.
type Checkmate struct{}

func (Checkmate) Evaluate(pos board.Position) int {
	if pos.HasLegalMoves() || !pos.CanKingBeCaptured(board.MovingPlayer) {
		return 0
	}
	if pos.SideToMove == board.White {
		return -MateScore
	}
	return MateScore
}

// Pipeline sums the scores of its members.
type Pipeline []Evaluator

func (p Pipeline) Evaluate(pos board.Position) int {
	score := 0
	for _, e := range p {
		score += e.Evaluate(pos)
	}
	return score
}

// DefaultEvaluator combines material, placement and mate detection.
func DefaultEvaluator() Evaluator {
	return Pipeline{Material{}, Positional{}, Checkmate{}}
}

var evaluators = map[string]func() Evaluator{
	"material":   func() Evaluator { return Material{} },
	"positional": func() Evaluator { return Positional{} },
	"checkmate":  func() Evaluator { return Checkmate{} },
	"default":    DefaultEvaluator,
}

// EvaluatorNames lists the names NewEvaluator accepts, sorted.
func EvaluatorNames() []string {
	names := make([]string, 0, len(evaluators))
	for name := range evaluators {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// NewEvaluator returns the evaluator registered under name. An empty name
// selects the default pipeline.
func NewEvaluator(name string) (Evaluator, error) {
	if name == "" {
		name = "default"
	}
	ctor, ok := evaluators[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownEvaluator, name, strings.Join(EvaluatorNames(), ", "))
	}
	return ctor(), nil
}
