package board

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidMove is returned when a move string does not name a legal move.
var ErrInvalidMove = errors.New("invalid move")

// MoveKind tags the side effects of a move beyond relocating one piece.
type MoveKind uint8

const (
	Regular MoveKind = iota
	ShortCastle
	LongCastle
	PromoteKnight
	PromoteBishop
	PromoteRook
	PromoteQueen
	EnPassantLeft  // Capture toward the A file
	EnPassantRight // Capture toward the H file
)

func (k MoveKind) String() string {
	switch k {
	case Regular:
		return "regular"
	case ShortCastle:
		return "short-castle"
	case LongCastle:
		return "long-castle"
	case PromoteKnight:
		return "promote-knight"
	case PromoteBishop:
		return "promote-bishop"
	case PromoteRook:
		return "promote-rook"
	case PromoteQueen:
		return "promote-queen"
	case EnPassantLeft:
		return "en-passant-left"
	case EnPassantRight:
		return "en-passant-right"
	default:
		return "unknown"
	}
}

// Move is a from-square, a to-square and a kind. It only has meaning
// relative to the Position it was generated from.
type Move struct {
	From Square
	To   Square
	Kind MoveKind
}

// NoMove represents the absence of a move.
var NoMove = Move{From: NoSquare, To: NoSquare}

// IsPromotion returns true if this is a promotion move.
func (m Move) IsPromotion() bool {
	return m.Kind >= PromoteKnight && m.Kind <= PromoteQueen
}

// Promotion returns the promoted-to kind, or NoPieceType.
func (m Move) Promotion() PieceType {
	if !m.IsPromotion() {
		return NoPieceType
	}
	return Knight + PieceType(m.Kind-PromoteKnight)
}

// IsCastling returns true if this is a castling move.
func (m Move) IsCastling() bool {
	return m.Kind == ShortCastle || m.Kind == LongCastle
}

// IsEnPassant returns true if this is an en passant capture.
func (m Move) IsEnPassant() bool {
	return m.Kind == EnPassantLeft || m.Kind == EnPassantRight
}

// String returns the "FROM:TO" form used by the board-layout contract (e.g., "A2:A4").
func (m Move) String() string {
	return m.From.String() + ":" + m.To.String()
}

// UCI returns the UCI format of the move (e.g., "e2e4", "e7e8q").
func (m Move) UCI() string {
	if m == NoMove {
		return "0000"
	}
	s := strings.ToLower(m.From.String() + m.To.String())
	if m.IsPromotion() {
		s += string(m.Promotion().Char())
	}
	return s
}

var promotionKinds = [4]MoveKind{PromoteQueen, PromoteRook, PromoteBishop, PromoteKnight}

// ParseUCIMove resolves a UCI move string against the legal moves of pos.
func ParseUCIMove(s string, pos Position) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return NoMove, fmt.Errorf("%w: %q", ErrInvalidMove, s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, fmt.Errorf("%w: %v", ErrInvalidMove, err)
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, fmt.Errorf("%w: %v", ErrInvalidMove, err)
	}

	promo := NoPieceType
	if len(s) == 5 {
		switch s[4] {
		case 'n', 'N':
			promo = Knight
		case 'b', 'B':
			promo = Bishop
		case 'r', 'R':
			promo = Rook
		case 'q', 'Q':
			promo = Queen
		default:
			return NoMove, fmt.Errorf("%w: invalid promotion piece %c", ErrInvalidMove, s[4])
		}
	}

	entry, ok := pos.LegalContinuations()[from]
	if !ok {
		return NoMove, fmt.Errorf("%w: no legal move from %s", ErrInvalidMove, from)
	}
	for _, m := range entry.Moves {
		if m.To == to && m.Promotion() == promo {
			return m, nil
		}
	}
	return NoMove, fmt.Errorf("%w: %s is not legal", ErrInvalidMove, s)
}
