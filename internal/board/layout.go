package board

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidLayout is returned when a board layout string cannot be decoded.
	ErrInvalidLayout = errors.New("invalid board layout")
	// ErrInvalidSide is returned for a side-to-move token other than "W" or "B".
	ErrInvalidSide = errors.New("invalid side to move")
)

// EmptySquare is the layout character for an unoccupied square.
const EmptySquare = '.'

// Layout characters: lowercase for White, uppercase for Black.
const (
	whiteLayoutChars = "pnbrqk"
	blackLayoutChars = "PNBRQK"
)

// StartLayout is the layout string of the initial position.
const StartLayout = "rnbqkbnr" + "pppppppp" +
	"........" + "........" + "........" + "........" +
	"PPPPPPPP" + "RNBQKBNR"

// ParseSide parses a side-to-move token ("W" or "B").
func ParseSide(token string) (Color, error) {
	switch token {
	case "W":
		return White, nil
	case "B":
		return Black, nil
	default:
		return NoColor, fmt.Errorf("%w: %q", ErrInvalidSide, token)
	}
}

// SideToken returns the side-to-move token for c.
func SideToken(c Color) string {
	if c == Black {
		return "B"
	}
	return "W"
}

// Decode builds a Position from a 64-character layout, one character per
// square starting at A1 with the file varying fastest. Castling rights are
// granted for every king and rook still on their home squares; en passant
// is never available.
func Decode(layout, side string) (Position, error) {
	var p Position

	stm, err := ParseSide(side)
	if err != nil {
		return p, err
	}
	if len(layout) != 64 {
		return p, fmt.Errorf("%w: need 64 squares, got %d", ErrInvalidLayout, len(layout))
	}

	for i := 0; i < 64; i++ {
		ch := layout[i]
		if ch == EmptySquare {
			continue
		}
		sq := Square(i)
		if idx := strings.IndexByte(whiteLayoutChars, ch); idx >= 0 {
			*p.MutablePiecesOf(White, PieceType(idx)) |= SquareBB(sq)
		} else if idx := strings.IndexByte(blackLayoutChars, ch); idx >= 0 {
			*p.MutablePiecesOf(Black, PieceType(idx)) |= SquareBB(sq)
		} else {
			return Position{}, fmt.Errorf("%w: unrecognized character %q at %s", ErrInvalidLayout, ch, sq)
		}
	}

	p.SideToMove = stm
	p.CastlingRights = homeCastlingRights(p)
	p.EnPassant = NoSquare
	p.FullMoveNumber = 1
	p.Hash = Zobrist().FullHash(p)
	return p, nil
}

func homeCastlingRights(p Position) CastlingRights {
	cr := NoCastling
	for c := White; c <= Black; c++ {
		for _, cs := range castles[c] {
			if p.Pieces[c][King].IsSet(cs.kingFrom) && p.Pieces[c][Rook].IsSet(cs.rookFrom) {
				cr |= cs.right
			}
		}
	}
	return cr
}

// Layout encodes the placement of p in the Decode format.
func (p Position) Layout() string {
	buf := make([]byte, 64)
	for sq := A1; sq <= H8; sq++ {
		buf[sq] = EmptySquare
		if pt := p.Pieces[White].KindAt(sq); pt != NoPieceType {
			buf[sq] = whiteLayoutChars[pt]
		} else if pt := p.Pieces[Black].KindAt(sq); pt != NoPieceType {
			buf[sq] = blackLayoutChars[pt]
		}
	}
	return string(buf)
}
