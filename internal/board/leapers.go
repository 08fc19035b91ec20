package board

// Offsets are (rank, file) pairs.
var (
	knightOffsets = [8][2]int{{2, 1}, {2, -1}, {-2, 1}, {-2, -1}, {1, 2}, {1, -2}, {-1, 2}, {-1, -2}}
	kingOffsets   = [8][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

// Pre-computed destination tables for the leaping pieces.
var (
	knightTargets [64]Bitboard
	kingTargets   [64]Bitboard
)

func init() {
	initLeaperTargets(&knightTargets, knightOffsets)
	initLeaperTargets(&kingTargets, kingOffsets)
}

// initLeaperTargets fills a table by stepping in (rank, file) space, so
// offsets that would cross a board edge are dropped instead of wrapping.
func initLeaperTargets(table *[64]Bitboard, offsets [8][2]int) {
	for sq := A1; sq <= H8; sq++ {
		for _, o := range offsets {
			if to, ok := sq.Offset(o[0], o[1]); ok {
				table[sq] = table[sq].Set(to)
			}
		}
	}
}

// KnightTargets returns the squares a knight on sq could reach on an empty board.
func KnightTargets(sq Square) Bitboard {
	return knightTargets[sq]
}

// KingTargets returns the squares a king on sq could reach on an empty board.
func KingTargets(sq Square) Bitboard {
	return kingTargets[sq]
}

func leaperMoves(p Position, pp Perspective, kind PieceType, table *[64]Bitboard) MovesMap {
	ally, _ := p.sides(pp)
	own := p.AllPieces(ally)
	mm := MovesMap{}
	p.Pieces[ally][kind].ForEach(func(from Square) {
		(table[from] &^ own).ForEach(func(to Square) {
			mm.add(kind, Move{From: from, To: to})
		})
	})
	return mm
}

func leaperAttacks(p Position, pp Perspective, kind PieceType, table *[64]Bitboard) Bitboard {
	ally, _ := p.sides(pp)
	var attacks Bitboard
	p.Pieces[ally][kind].ForEach(func(from Square) {
		attacks |= table[from]
	})
	return attacks
}

type knightGenerator struct{}

func (knightGenerator) Kind() PieceType { return Knight }

func (knightGenerator) Generate(p Position, pp Perspective) MovesMap {
	return leaperMoves(p, pp, Knight, &knightTargets)
}

func (knightGenerator) RawAttacks(p Position, pp Perspective) Bitboard {
	return leaperAttacks(p, pp, Knight, &knightTargets)
}

// castle describes one castling move for one side.
type castle struct {
	right    CastlingRights
	kind     MoveKind
	kingFrom Square
	kingTo   Square
	rookFrom Square
	rookTo   Square
	empty    Bitboard // Squares between king and rook
	safe     Bitboard // Origin, traversed and landing squares of the king
}

var castles = [2][2]castle{
	White: {
		{WhiteKingSideCastle, ShortCastle, E1, G1, H1, F1,
			SquareBB(F1) | SquareBB(G1),
			SquareBB(E1) | SquareBB(F1) | SquareBB(G1)},
		{WhiteQueenSideCastle, LongCastle, E1, C1, A1, D1,
			SquareBB(B1) | SquareBB(C1) | SquareBB(D1),
			SquareBB(E1) | SquareBB(D1) | SquareBB(C1)},
	},
	Black: {
		{BlackKingSideCastle, ShortCastle, E8, G8, H8, F8,
			SquareBB(F8) | SquareBB(G8),
			SquareBB(E8) | SquareBB(F8) | SquareBB(G8)},
		{BlackQueenSideCastle, LongCastle, E8, C8, A8, D8,
			SquareBB(B8) | SquareBB(C8) | SquareBB(D8),
			SquareBB(E8) | SquareBB(D8) | SquareBB(C8)},
	},
}

// castleFor returns the castle record matching a castling move kind.
func castleFor(c Color, kind MoveKind) castle {
	if kind == ShortCastle {
		return castles[c][0]
	}
	return castles[c][1]
}

type kingGenerator struct{}

func (kingGenerator) Kind() PieceType { return King }

func (kingGenerator) Generate(p Position, pp Perspective) MovesMap {
	mm := leaperMoves(p, pp, King, &kingTargets)

	ally, _ := p.sides(pp)
	var (
		enemyAttacks Bitboard
		computed     bool
	)
	for _, cs := range castles[ally] {
		if p.CastlingRights&cs.right == 0 ||
			!p.Pieces[ally][King].IsSet(cs.kingFrom) ||
			!p.Pieces[ally][Rook].IsSet(cs.rookFrom) ||
			p.Occupied()&cs.empty != 0 {
			continue
		}
		if !computed {
			enemyAttacks = p.RawAttacks(pp.Opposite())
			computed = true
		}
		if enemyAttacks&cs.safe != 0 {
			continue
		}
		mm.add(King, Move{From: cs.kingFrom, To: cs.kingTo, Kind: cs.kind})
	}
	return mm
}

func (kingGenerator) RawAttacks(p Position, pp Perspective) Bitboard {
	return leaperAttacks(p, pp, King, &kingTargets)
}
