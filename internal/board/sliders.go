package board

import "slices"

// Ray directions as (rank, file) steps.
var (
	bishopDirections = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	rookDirections   = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	queenDirections  = slices.Concat(bishopDirections[:], rookDirections[:])
)

// sliderGenerator casts rays one square at a time in (rank, file) space.
type sliderGenerator struct {
	kind PieceType
	dirs [][2]int
}

func (g sliderGenerator) Kind() PieceType { return g.kind }

// Generate stops a ray before an ally piece and after an enemy piece.
func (g sliderGenerator) Generate(p Position, pp Perspective) MovesMap {
	ally, enemy := p.sides(pp)
	own, theirs := p.AllPieces(ally), p.AllPieces(enemy)
	mm := MovesMap{}
	p.Pieces[ally][g.kind].ForEach(func(from Square) {
		for _, d := range g.dirs {
			for to, ok := from.Offset(d[0], d[1]); ok; to, ok = to.Offset(d[0], d[1]) {
				if own.IsSet(to) {
					break
				}
				mm.add(g.kind, Move{From: from, To: to})
				if theirs.IsSet(to) {
					break
				}
			}
		}
	})
	return mm
}

// RawAttacks includes the first occupied square of each ray, whichever side holds it.
func (g sliderGenerator) RawAttacks(p Position, pp Perspective) Bitboard {
	ally, _ := p.sides(pp)
	occupied := p.Occupied()
	var attacks Bitboard
	p.Pieces[ally][g.kind].ForEach(func(from Square) {
		attacks |= rays(from, g.dirs, occupied)
	})
	return attacks
}

func rays(from Square, dirs [][2]int, occupied Bitboard) Bitboard {
	var attacks Bitboard
	for _, d := range dirs {
		for to, ok := from.Offset(d[0], d[1]); ok; to, ok = to.Offset(d[0], d[1]) {
			attacks = attacks.Set(to)
			if occupied.IsSet(to) {
				break
			}
		}
	}
	return attacks
}

// BishopAttacks returns the bishop attack bitboard for a square with given occupancy.
func BishopAttacks(sq Square, occupied Bitboard) Bitboard {
	return rays(sq, bishopDirections[:], occupied)
}

// RookAttacks returns the rook attack bitboard for a square with given occupancy.
func RookAttacks(sq Square, occupied Bitboard) Bitboard {
	return rays(sq, rookDirections[:], occupied)
}

// QueenAttacks returns the queen attack bitboard for a square with given occupancy.
func QueenAttacks(sq Square, occupied Bitboard) Bitboard {
	return rays(sq, queenDirections, occupied)
}
