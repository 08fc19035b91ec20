package board

import (
	"math/rand/v2"
	"sync"
)

// ZobristTable holds the random keys used to hash positions.
// It is built once per process and never modified afterwards.
type ZobristTable struct {
	pieces      [6][2][64]uint64 // [PieceType][Color][Square]
	castling    [4]uint64        // One per castling right
	blackToMove uint64
}

var (
	zobristOnce  sync.Once
	zobristTable *ZobristTable
)

// Zobrist returns the process-wide table, creating it on first use.
func Zobrist() *ZobristTable {
	zobristOnce.Do(func() {
		zobristTable = newZobristTable(rand.Uint64)
	})
	return zobristTable
}

func newZobristTable(next func() uint64) *ZobristTable {
	z := &ZobristTable{}
	for _, pt := range PieceTypes {
		for c := White; c <= Black; c++ {
			for sq := A1; sq <= H8; sq++ {
				z.pieces[pt][c][sq] = next()
			}
		}
	}
	for i := range z.castling {
		z.castling[i] = next()
	}
	z.blackToMove = next()
	return z
}

// PieceKey returns the key for a piece of kind pt and color c on sq.
func (z *ZobristTable) PieceKey(pt PieceType, c Color, sq Square) uint64 {
	return z.pieces[pt][c][sq]
}

// CastlingKey returns the combined key of every right set in cr.
func (z *ZobristTable) CastlingKey(cr CastlingRights) uint64 {
	var key uint64
	for i, flag := range castlingFlags {
		if cr&flag != 0 {
			key ^= z.castling[i]
		}
	}
	return key
}

// SideKey returns the key XORed in whenever Black is to move.
func (z *ZobristTable) SideKey() uint64 {
	return z.blackToMove
}

// MoveDelta returns the hash change for a piece moving from one square to another.
func (z *ZobristTable) MoveDelta(pt PieceType, c Color, from, to Square) uint64 {
	return z.pieces[pt][c][from] ^ z.pieces[pt][c][to]
}

// FullHash computes the hash of p from scratch.
func (z *ZobristTable) FullHash(p Position) uint64 {
	var h uint64
	for c := White; c <= Black; c++ {
		for _, pt := range PieceTypes {
			p.Pieces[c][pt].ForEach(func(sq Square) {
				h ^= z.pieces[pt][c][sq]
			})
		}
	}
	h ^= z.CastlingKey(p.CastlingRights)
	if p.SideToMove == Black {
		h ^= z.blackToMove
	}
	return h
}
