package board

import (
	"slices"
	"strings"
)

// PieceAndMoves is the kind of the piece on a square together with its moves.
type PieceAndMoves struct {
	Kind  PieceType
	Moves []Move
}

// MovesMap maps an origin square to its piece and moves. Squares whose
// piece has no moves are absent.
type MovesMap map[Square]PieceAndMoves

// add appends m to the entry for m.From, creating it if needed.
func (mm MovesMap) add(kind PieceType, m Move) {
	entry := mm[m.From]
	entry.Kind = kind
	entry.Moves = append(entry.Moves, m)
	mm[m.From] = entry
}

// Merge extends mm with other. Entries already present get their move
// lists extended rather than replaced; moves already listed are skipped,
// so merging the same map twice is harmless.
func (mm MovesMap) Merge(other MovesMap) {
	for sq, entry := range other {
		if len(entry.Moves) == 0 {
			continue
		}
		existing, ok := mm[sq]
		if !ok {
			mm[sq] = PieceAndMoves{Kind: entry.Kind, Moves: slices.Clone(entry.Moves)}
			continue
		}
		for _, m := range entry.Moves {
			if !slices.Contains(existing.Moves, m) {
				existing.Moves = append(existing.Moves, m)
			}
		}
		mm[sq] = existing
	}
}

// Count returns the total number of moves.
func (mm MovesMap) Count() int {
	n := 0
	for _, entry := range mm {
		n += len(entry.Moves)
	}
	return n
}

// Origins returns the occupied squares present in the map, ascending.
func (mm MovesMap) Origins() []Square {
	squares := make([]Square, 0, len(mm))
	for sq := range mm {
		squares = append(squares, sq)
	}
	slices.Sort(squares)
	return squares
}

// Moves flattens the map in ascending origin order, keeping the
// generation order within each square.
func (mm MovesMap) Moves() []Move {
	moves := make([]Move, 0, mm.Count())
	for _, sq := range mm.Origins() {
		moves = append(moves, mm[sq].Moves...)
	}
	return moves
}

// Contains reports whether m is present.
func (mm MovesMap) Contains(m Move) bool {
	entry, ok := mm[m.From]
	return ok && slices.Contains(entry.Moves, m)
}

// Destinations returns the squares reachable from sq.
func (mm MovesMap) Destinations(sq Square) Bitboard {
	var bb Bitboard
	for _, m := range mm[sq].Moves {
		bb = bb.Set(m.To)
	}
	return bb
}

// PossibleMoves returns the comma-joined "FROM:TO" list. A pair appears
// once even when several promotion moves share it.
func (mm MovesMap) PossibleMoves() string {
	var pairs []string
	for _, sq := range mm.Origins() {
		mm.Destinations(sq).ForEach(func(to Square) {
			pairs = append(pairs, Move{From: sq, To: to}.String())
		})
	}
	return strings.Join(pairs, ",")
}
