package engine

import "github.com/hailam/chesscore/internal/board"

// cacheEntry stores one cached leaf evaluation.
type cacheEntry struct {
	Key       uint64
	EnPassant board.Square
	Valid     bool
	Score     int32
}

// EvalCache is a direct-mapped hash table of leaf evaluations.
//
// Entries are keyed by the Zobrist hash together with the en passant
// square, since the hash leaves en passant out but the set of legal
// moves, and therefore mate detection, depends on it.
type EvalCache struct {
	entries []cacheEntry
	mask    uint64

	probes uint64
	hits   uint64
}

// NewEvalCache creates a cache using about sizeMB megabytes.
func NewEvalCache(sizeMB int) *EvalCache {
	// Each entry is 16 bytes, round to power of 2
	entrySize := 16
	numEntries := (max(sizeMB, 1) * 1024 * 1024) / entrySize

	size := 1
	for size*2 <= numEntries {
		size *= 2
	}

	return &EvalCache{
		entries: make([]cacheEntry, size),
		mask:    uint64(size - 1),
	}
}

// Probe returns the cached score for pos, if any.
func (c *EvalCache) Probe(pos board.Position) (int, bool) {
	c.probes++
	entry := &c.entries[pos.Hash&c.mask]
	if entry.Valid && entry.Key == pos.Hash && entry.EnPassant == pos.EnPassant {
		c.hits++
		return int(entry.Score), true
	}
	return 0, false
}

// Store saves the score for pos, replacing whatever shared its slot.
func (c *EvalCache) Store(pos board.Position, score int) {
	entry := &c.entries[pos.Hash&c.mask]
	entry.Key = pos.Hash
	entry.EnPassant = pos.EnPassant
	entry.Valid = true
	entry.Score = int32(score)
}

// Clear empties the cache and resets its counters.
func (c *EvalCache) Clear() {
	clear(c.entries)
	c.probes, c.hits = 0, 0
}

// Stats returns the number of probes and hits since the last Clear.
func (c *EvalCache) Stats() (probes, hits uint64) {
	return c.probes, c.hits
}

// Len returns the number of slots.
func (c *EvalCache) Len() int {
	return len(c.entries)
}
