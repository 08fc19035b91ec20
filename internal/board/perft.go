package board

// Perft counts the leaf nodes of the legal move tree at the given depth.
// This is the standard way to verify move generation correctness.
func Perft(p Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	legal := p.LegalContinuations()
	if depth == 1 {
		return uint64(legal.Count())
	}

	var nodes uint64
	for _, entry := range legal {
		for _, m := range entry.Moves {
			nodes += Perft(p.Apply(m, entry.Kind), depth-1)
		}
	}
	return nodes
}

// Divide returns the perft count below each legal root move.
func Divide(p Position, depth int) map[Move]uint64 {
	counts := make(map[Move]uint64)
	if depth < 1 {
		return counts
	}
	for _, entry := range p.LegalContinuations() {
		for _, m := range entry.Moves {
			counts[m] = Perft(p.Apply(m, entry.Kind), depth-1)
		}
	}
	return counts
}
