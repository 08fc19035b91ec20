package board

import "slices"

// Perspective selects whose pieces count as allies when generating moves
// or attacks, independent of whose turn it is.
type Perspective uint8

const (
	MovingPlayer Perspective = iota
	WaitingPlayer
)

// Opposite returns the other perspective.
func (pp Perspective) Opposite() Perspective {
	return pp ^ 1
}

func (pp Perspective) String() string {
	if pp == MovingPlayer {
		return "moving"
	}
	return "waiting"
}

// sides returns the ally and enemy colors for a perspective.
func (p Position) sides(pp Perspective) (ally, enemy Color) {
	ally = p.SideToMove
	if pp == WaitingPlayer {
		ally = ally.Other()
	}
	return ally, ally.Other()
}

// Generator produces moves and attacks for one piece kind.
type Generator interface {
	// Kind returns the piece kind this generator handles.
	Kind() PieceType
	// Generate returns the pseudo-legal moves of the perspective's pieces.
	Generate(p Position, pp Perspective) MovesMap
	// RawAttacks returns every square the perspective's pieces attack,
	// including squares occupied by their own side.
	RawAttacks(p Position, pp Perspective) Bitboard
}

var generators = []Generator{
	pawnGenerator{},
	knightGenerator{},
	sliderGenerator{kind: Bishop, dirs: bishopDirections[:]},
	sliderGenerator{kind: Rook, dirs: rookDirections[:]},
	sliderGenerator{kind: Queen, dirs: queenDirections},
	kingGenerator{},
}

// Generators returns one generator per piece kind, in PieceType order.
func Generators() []Generator {
	return slices.Clone(generators)
}

// GeneratorFor returns the generator for a piece kind.
func GeneratorFor(pt PieceType) Generator {
	return generators[pt]
}

// PseudoLegal returns the merged moves of every generator.
func (p Position) PseudoLegal(pp Perspective) MovesMap {
	mm := MovesMap{}
	for _, g := range generators {
		mm.Merge(g.Generate(p, pp))
	}
	return mm
}

// RawAttacks returns the union of every generator's attacks.
func (p Position) RawAttacks(pp Perspective) Bitboard {
	var attacks Bitboard
	for _, g := range generators {
		attacks |= g.RawAttacks(p, pp)
	}
	return attacks
}
