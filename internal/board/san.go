package board

import (
	"strings"
)

// SAN converts a legal move of p to Standard Algebraic Notation.
func (p Position) SAN(m Move) string {
	if m == NoMove {
		return "-"
	}

	switch m.Kind {
	case ShortCastle:
		return "O-O" + p.checkSuffix(m, King)
	case LongCastle:
		return "O-O-O" + p.checkSuffix(m, King)
	}

	pt := p.Pieces[p.SideToMove].KindAt(m.From)
	if pt == NoPieceType {
		return strings.ToLower(m.From.String() + m.To.String())
	}

	var sb strings.Builder

	if pt != Pawn {
		sb.WriteByte("PNBRQK"[pt])
		sb.WriteString(p.disambiguation(m, pt))
	}

	if m.IsEnPassant() || p.Pieces[p.SideToMove.Other()].KindAt(m.To) != NoPieceType {
		if pt == Pawn {
			sb.WriteByte('a' + byte(m.From.File()))
		}
		sb.WriteByte('x')
	}

	sb.WriteString(strings.ToLower(m.To.String()))

	if m.IsPromotion() {
		sb.WriteByte('=')
		sb.WriteByte("PNBRQK"[m.Promotion()])
	}

	sb.WriteString(p.checkSuffix(m, pt))
	return sb.String()
}

func (p Position) checkSuffix(m Move, pt PieceType) string {
	next := p.Apply(m, pt)
	if !next.InCheck() {
		return ""
	}
	if next.HasLegalMoves() {
		return "+"
	}
	return "#"
}

// disambiguation returns the origin file, rank or square needed when
// another piece of the same kind can reach the same destination.
func (p Position) disambiguation(m Move, pt PieceType) string {
	sameFile, sameRank, ambiguous := false, false, false
	legal := p.LegalContinuations()
	for sq, entry := range legal {
		if sq == m.From || entry.Kind != pt || !legal.Destinations(sq).IsSet(m.To) {
			continue
		}
		ambiguous = true
		if sq.File() == m.From.File() {
			sameFile = true
		}
		if sq.Rank() == m.From.Rank() {
			sameRank = true
		}
	}

	switch {
	case !ambiguous:
		return ""
	case !sameFile:
		return string(rune('a' + m.From.File()))
	case !sameRank:
		return string(rune('1' + m.From.Rank()))
	default:
		return strings.ToLower(m.From.String())
	}
}

// SANLine converts a sequence of moves starting at p to SAN.
func (p Position) SANLine(moves []Move) []string {
	result := make([]string, len(moves))
	for i, m := range moves {
		result[i] = p.SAN(m)
		p = p.ApplyMove(m)
	}
	return result
}
