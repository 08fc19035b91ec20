package board

import "fmt"

// castlingLost holds, per square, the rights lost when a piece leaves or
// lands on it.
var castlingLost = [64]CastlingRights{
	E1: WhiteKingSideCastle | WhiteQueenSideCastle,
	H1: WhiteKingSideCastle,
	A1: WhiteQueenSideCastle,
	E8: BlackKingSideCastle | BlackQueenSideCastle,
	H8: BlackKingSideCastle,
	A8: BlackQueenSideCastle,
}

// Apply returns the position after the side to move plays m with a piece
// of the given kind. The receiver is not modified. The hash of the result
// is the receiver's hash XORed with the changes the move makes.
//
// Apply panics if the origin square does not hold a piece of that kind
// belonging to the side to move.
func (p Position) Apply(m Move, kind PieceType) Position {
	us, them := p.SideToMove, p.SideToMove.Other()
	if kind >= NoPieceType || !p.Pieces[us][kind].IsSet(m.From) {
		panic(fmt.Sprintf("board: apply %s (%s): no %s %s on %s", m, m.Kind, us, kind, m.From))
	}

	z := Zobrist()
	next := p
	h := p.Hash

	// Relocate the moving piece.
	mask := next.MutablePiecesOf(us, kind)
	*mask = mask.Clear(m.From).Set(m.To)
	h ^= z.MoveDelta(kind, us, m.From, m.To)

	// Capture on the destination.
	captured := next.Pieces[them].remove(m.To)
	if captured != NoPieceType {
		h ^= z.PieceKey(captured, them, m.To)
	}

	switch {
	case m.IsCastling():
		cs := castleFor(us, m.Kind)
		rooks := next.MutablePiecesOf(us, Rook)
		*rooks = rooks.Clear(cs.rookFrom).Set(cs.rookTo)
		h ^= z.MoveDelta(Rook, us, cs.rookFrom, cs.rookTo)

	case m.IsPromotion():
		promo := m.Promotion()
		*mask = mask.Clear(m.To)
		*next.MutablePiecesOf(us, promo) = next.Pieces[us][promo].Set(m.To)
		h ^= z.PieceKey(Pawn, us, m.To) ^ z.PieceKey(promo, us, m.To)

	case m.IsEnPassant():
		victim := NewSquare(m.To.File(), m.From.Rank())
		pawns := next.MutablePiecesOf(them, Pawn)
		*pawns = pawns.Clear(victim)
		h ^= z.PieceKey(Pawn, them, victim)
		captured = Pawn
	}

	// Castling rights
	rights := p.CastlingRights &^ (castlingLost[m.From] | castlingLost[m.To])
	h ^= z.CastlingKey(p.CastlingRights ^ rights)
	next.CastlingRights = rights

	// En passant target after a double advance
	next.EnPassant = NoSquare
	if kind == Pawn && abs(m.To.Rank()-m.From.Rank()) == 2 {
		next.EnPassant = NewSquare(m.From.File(), (m.From.Rank()+m.To.Rank())/2)
	}

	// Clocks
	if kind == Pawn || captured != NoPieceType {
		next.HalfMoveClock = 0
	} else {
		next.HalfMoveClock++
	}
	if us == Black {
		next.FullMoveNumber++
	}

	next.SideToMove = them
	h ^= z.SideKey()
	next.Hash = h

	return next
}

// ApplyMove applies m, looking up the moving piece's kind on the origin square.
func (p Position) ApplyMove(m Move) Position {
	return p.Apply(m, p.Pieces[p.SideToMove].KindAt(m.From))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
