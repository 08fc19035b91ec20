package board

// CanKingBeCaptured reports whether the king of the perspective's side
// stands on a square attacked by the opposing side.
func (p Position) CanKingBeCaptured(pp Perspective) bool {
	ally, _ := p.sides(pp)
	return p.Pieces[ally][King]&p.RawAttacks(pp.Opposite()) != 0
}

// LegalContinuations returns the pseudo-legal moves of the side to move
// that do not leave its own king capturable. Squares left without moves
// are absent from the result.
func (p Position) LegalContinuations() MovesMap {
	legal := MovesMap{}
	for _, entry := range p.PseudoLegal(MovingPlayer) {
		for _, m := range entry.Moves {
			// After the move the mover is the waiting player.
			if !p.Apply(m, entry.Kind).CanKingBeCaptured(WaitingPlayer) {
				legal.add(entry.Kind, m)
			}
		}
	}
	return legal
}

// LegalMoves returns the legal continuations as a flat, ordered slice.
func (p Position) LegalMoves() []Move {
	return p.LegalContinuations().Moves()
}

// InCheck returns true if the side to move is in check.
func (p Position) InCheck() bool {
	return p.CanKingBeCaptured(MovingPlayer)
}

// HasLegalMoves returns true if the side to move has any legal moves.
func (p Position) HasLegalMoves() bool {
	for _, entry := range p.PseudoLegal(MovingPlayer) {
		for _, m := range entry.Moves {
			if !p.Apply(m, entry.Kind).CanKingBeCaptured(WaitingPlayer) {
				return true
			}
		}
	}
	return false
}

// IsCheckmate returns true if the position is checkmate.
func (p Position) IsCheckmate() bool {
	return p.InCheck() && !p.HasLegalMoves()
}

// IsStalemate returns true if the position is stalemate.
func (p Position) IsStalemate() bool {
	return !p.InCheck() && !p.HasLegalMoves()
}
