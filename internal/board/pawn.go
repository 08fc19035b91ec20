package board

// pawnGeometry returns the advance direction, start rank and promotion rank for a color.
func pawnGeometry(c Color) (dir, startRank, lastRank int) {
	if c == White {
		return 1, 1, 7
	}
	return -1, 6, 0
}

// PawnAttacks returns the squares a pawn of color c on sq attacks.
func PawnAttacks(sq Square, c Color) Bitboard {
	dir, _, _ := pawnGeometry(c)
	var attacks Bitboard
	for _, df := range [2]int{-1, 1} {
		if to, ok := sq.Offset(dir, df); ok {
			attacks = attacks.Set(to)
		}
	}
	return attacks
}

type pawnGenerator struct{}

func (pawnGenerator) Kind() PieceType { return Pawn }

func (pawnGenerator) Generate(p Position, pp Perspective) MovesMap {
	ally, enemy := p.sides(pp)
	dir, startRank, lastRank := pawnGeometry(ally)
	occupied := p.Occupied()
	enemies := p.AllPieces(enemy)
	mm := MovesMap{}

	p.Pieces[ally][Pawn].ForEach(func(from Square) {
		// Advances
		if one, ok := from.Offset(dir, 0); ok && !occupied.IsSet(one) {
			addPawnMove(mm, from, one, lastRank)
			if from.Rank() == startRank {
				if two, ok := one.Offset(dir, 0); ok && !occupied.IsSet(two) {
					mm.add(Pawn, Move{From: from, To: two})
				}
			}
		}

		// Captures
		for _, df := range [2]int{-1, 1} {
			to, ok := from.Offset(dir, df)
			if !ok {
				continue
			}
			if enemies.IsSet(to) {
				addPawnMove(mm, from, to, lastRank)
				continue
			}
			if p.enPassantCapturable(ally, to) {
				kind := EnPassantRight
				if df < 0 {
					kind = EnPassantLeft
				}
				mm.add(Pawn, Move{From: from, To: to, Kind: kind})
			}
		}
	})
	return mm
}

func (pawnGenerator) RawAttacks(p Position, pp Perspective) Bitboard {
	ally, _ := p.sides(pp)
	var attacks Bitboard
	p.Pieces[ally][Pawn].ForEach(func(from Square) {
		attacks |= PawnAttacks(from, ally)
	})
	return attacks
}

// enPassantCapturable reports whether a pawn of color c may capture en
// passant onto target: c must be the side to move, target must be the
// flagged empty square and the double-advanced enemy pawn must sit behind it.
func (p Position) enPassantCapturable(c Color, target Square) bool {
	if c != p.SideToMove || p.EnPassant == NoSquare || target != p.EnPassant {
		return false
	}
	if !p.IsEmpty(target) {
		return false
	}
	dir, _, _ := pawnGeometry(c)
	victim, ok := target.Offset(-dir, 0)
	return ok && p.Pieces[c.Other()][Pawn].IsSet(victim)
}

// addPawnMove adds a regular move, or the four promotions on the last rank.
func addPawnMove(mm MovesMap, from, to Square, lastRank int) {
	if to.Rank() != lastRank {
		mm.add(Pawn, Move{From: from, To: to})
		return
	}
	for _, kind := range promotionKinds {
		mm.add(Pawn, Move{From: from, To: to, Kind: kind})
	}
}
