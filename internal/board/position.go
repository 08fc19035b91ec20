package board

import (
	"fmt"
	"strings"
)

// CastlingRights represents the available castling options.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                            // q
	NoCastling           CastlingRights = 0
	AllCastling          CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// castlingFlags lists the four rights in Zobrist key order.
var castlingFlags = [4]CastlingRights{WhiteKingSideCastle, WhiteQueenSideCastle, BlackKingSideCastle, BlackQueenSideCastle}

// String returns the FEN castling rights string.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	var sb strings.Builder
	for i, flag := range castlingFlags {
		if cr&flag != 0 {
			sb.WriteByte("KQkq"[i])
		}
	}
	return sb.String()
}

// CanCastle returns true if the given side can castle in the given direction.
func (cr CastlingRights) CanCastle(c Color, kingSide bool) bool {
	return cr&castlingRight(c, kingSide) != 0
}

func castlingRight(c Color, kingSide bool) CastlingRights {
	switch {
	case c == White && kingSide:
		return WhiteKingSideCastle
	case c == White:
		return WhiteQueenSideCastle
	case kingSide:
		return BlackKingSideCastle
	default:
		return BlackQueenSideCastle
	}
}

// Metadata is the non-placement state of a position.
type Metadata struct {
	SideToMove     Color
	CastlingRights CastlingRights
	EnPassant      Square // Square passed over by the last double advance, NoSquare if none
	HalfMoveClock  int
	FullMoveNumber int

	// Zobrist hash of placement, castling rights and side to move.
	Hash uint64
}

// Position is a complete chess position. It is a value type: applying a
// move returns a new Position and never modifies the receiver.
type Position struct {
	Pieces [2]SidePieces
	Metadata
}

// Initial returns the standard starting position.
func Initial() Position {
	var p Position
	back := [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for file, pt := range back {
		*p.MutablePiecesOf(White, pt) |= SquareBB(NewSquare(file, 0))
		*p.MutablePiecesOf(Black, pt) |= SquareBB(NewSquare(file, 7))
	}
	p.Pieces[White][Pawn] = Rank2
	p.Pieces[Black][Pawn] = Rank7

	p.SideToMove = White
	p.CastlingRights = AllCastling
	p.EnPassant = NoSquare
	p.FullMoveNumber = 1
	p.Hash = Zobrist().FullHash(p)
	return p
}

// PiecesOf returns the mask of one side's pieces of one kind.
func (p Position) PiecesOf(c Color, pt PieceType) Bitboard {
	return p.Pieces[c][pt]
}

// MutablePiecesOf returns a pointer to one side's mask for one kind.
// Writing through it does not update the hash.
func (p *Position) MutablePiecesOf(c Color, pt PieceType) *Bitboard {
	return p.Pieces[c].Mask(pt)
}

// AllPieces returns every square occupied by the given side.
func (p Position) AllPieces(c Color) Bitboard {
	return p.Pieces[c].All()
}

// Occupied returns every occupied square.
func (p Position) Occupied() Bitboard {
	return p.Pieces[White].All() | p.Pieces[Black].All()
}

// IsEmpty returns true if the square is empty.
func (p Position) IsEmpty(sq Square) bool {
	return !p.Occupied().IsSet(sq)
}

// PieceAt returns the piece at the given square, or NoPiece if empty.
func (p Position) PieceAt(sq Square) Piece {
	for c := White; c <= Black; c++ {
		if pt := p.Pieces[c].KindAt(sq); pt != NoPieceType {
			return NewPiece(pt, c)
		}
	}
	return NoPiece
}

// KingSquare returns the square of the given side's king, or NoSquare.
func (p Position) KingSquare(c Color) Square {
	return p.Pieces[c][King].LSB()
}

// Validate checks the structural invariants of the position.
func (p Position) Validate() error {
	for c := White; c <= Black; c++ {
		if n := p.Pieces[c][King].PopCount(); n != 1 {
			return fmt.Errorf("%s must have exactly one king, has %d", strings.ToLower(c.String()), n)
		}
		if !p.Pieces[c].Disjoint() {
			return fmt.Errorf("%s piece masks overlap", strings.ToLower(c.String()))
		}
	}

	if p.AllPieces(White)&p.AllPieces(Black) != 0 {
		return fmt.Errorf("white and black pieces overlap")
	}

	if (p.Pieces[White][Pawn]|p.Pieces[Black][Pawn])&(Rank1|Rank8) != 0 {
		return fmt.Errorf("pawns cannot be on rank 1 or 8")
	}

	if p.CanKingBeCaptured(WaitingPlayer) {
		return fmt.Errorf("%s king can be captured by the side to move", strings.ToLower(p.SideToMove.Other().String()))
	}

	return nil
}

// String returns a visual representation of the position.
func (p Position) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for file := 0; file < 8; file++ {
			piece := p.PieceAt(NewSquare(file, rank))
			if piece == NoPiece {
				sb.WriteString(". ")
			} else {
				sb.WriteString(piece.String() + " ")
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n   A B C D E F G H\n\n")
	fmt.Fprintf(&sb, "Side to move: %s\n", p.SideToMove)
	fmt.Fprintf(&sb, "Castling: %s\n", p.CastlingRights)
	fmt.Fprintf(&sb, "En passant: %s\n", p.EnPassant)
	fmt.Fprintf(&sb, "Hash: %016x\n", p.Hash)
	return sb.String()
}
