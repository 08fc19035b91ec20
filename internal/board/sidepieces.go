package board

// SidePieces holds one side's six piece masks, indexed by PieceType.
// The masks are pairwise disjoint; their union is every piece of the side.
type SidePieces [6]Bitboard

// Of returns the mask for the given kind.
func (s SidePieces) Of(pt PieceType) Bitboard {
	return s[pt]
}

// Mask returns a pointer to the mask for the given kind.
func (s *SidePieces) Mask(pt PieceType) *Bitboard {
	return &s[pt]
}

// All returns the union of the six masks. It is recomputed on every call.
func (s SidePieces) All() Bitboard {
	return s[Pawn] | s[Knight] | s[Bishop] | s[Rook] | s[Queen] | s[King]
}

// KindAt returns the kind occupying sq, or NoPieceType.
func (s SidePieces) KindAt(sq Square) PieceType {
	for _, pt := range PieceTypes {
		if s[pt].IsSet(sq) {
			return pt
		}
	}
	return NoPieceType
}

// Disjoint reports whether no square appears in more than one mask.
func (s SidePieces) Disjoint() bool {
	var seen Bitboard
	for _, pt := range PieceTypes {
		if seen&s[pt] != 0 {
			return false
		}
		seen |= s[pt]
	}
	return true
}

// remove clears sq from every mask and returns the kind that was there.
func (s *SidePieces) remove(sq Square) PieceType {
	pt := s.KindAt(sq)
	if pt != NoPieceType {
		s[pt] = s[pt].Clear(sq)
	}
	return pt
}
