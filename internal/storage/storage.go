package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// ErrNotFound is returned when no stored analysis matches a key.
var ErrNotFound = errors.New("storage: not found")

// Storage keys
const (
	keyPreferences  = "preferences"
	keyStats        = "stats"
	prefixAnalysis  = "analysis/"
	prefixHistory   = "history/"
	defaultEvalName = "default"
)

// Preferences stores engine defaults shared by the front ends.
type Preferences struct {
	Depth     int       `json:"depth"`
	TopK      int       `json:"topk"`
	Evaluator string    `json:"evaluator"`
	LastUsed  time.Time `json:"last_used"`
}

// DefaultPreferences returns default engine preferences
func DefaultPreferences() *Preferences {
	return &Preferences{
		Depth:     4,
		TopK:      3,
		Evaluator: defaultEvalName,
		LastUsed:  time.Now(),
	}
}

// RequestKind names the kind of analysis that produced a record.
type RequestKind string

const (
	KindPossibleMoves RequestKind = "possible_moves"
	KindBestMoves     RequestKind = "best_moves"
	KindEvaluate      RequestKind = "evaluate"
)

// AnalysisKey identifies a stored analysis. Position is the position's
// EPD (FEN without move clocks), so keys stay stable across processes.
type AnalysisKey struct {
	Kind      RequestKind
	Position  string
	Depth     int
	Evaluator string
}

func (k AnalysisKey) bytes() []byte {
	return []byte(fmt.Sprintf("%s%s/%d/%s/%s", prefixAnalysis, k.Kind, k.Depth, k.Evaluator, k.Position))
}

// AnalysisRecord is one analysis result.
type AnalysisRecord struct {
	Kind      RequestKind   `json:"kind"`
	Layout    string        `json:"layout"`
	Side      string        `json:"side"`
	Depth     int           `json:"depth"`
	Evaluator string        `json:"evaluator"`
	Score     int           `json:"score"`
	BestMoves []string      `json:"best_moves,omitempty"`
	Nodes     uint64        `json:"nodes"`
	Elapsed   time.Duration `json:"elapsed"`
	CreatedAt time.Time     `json:"created_at"`
}

// AnalysisStats counts analysis requests.
type AnalysisStats struct {
	Requests   int                 `json:"requests"`
	Served     int                 `json:"served_from_storage"`
	ByKind     map[RequestKind]int `json:"by_kind"`
	TotalNodes uint64              `json:"total_nodes"`
}

// NewAnalysisStats returns empty statistics
func NewAnalysisStats() *AnalysisStats {
	return &AnalysisStats{
		ByKind: make(map[RequestKind]int),
	}
}

// HitRate returns the share of requests answered from storage as a percentage (0-100)
func (s *AnalysisStats) HitRate() float64 {
	if s.Requests == 0 {
		return 0
	}
	return float64(s.Served) / float64(s.Requests) * 100
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB

	statsMu sync.Mutex
}

// NewStorage opens the database in dir, or in the platform data
// directory when dir is empty.
func NewStorage(dir string) (*Storage, error) {
	if dir == "" {
		var err error
		if dir, err = GetDatabaseDir(); err != nil {
			return nil, err
		}
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", dir, err)
	}

	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Storage) putJSON(key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// getJSON decodes the value stored under key into v, returning
// ErrNotFound when the key is absent.
func (s *Storage) getJSON(key []byte, v any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
}

// SavePreferences saves engine preferences
func (s *Storage) SavePreferences(prefs *Preferences) error {
	prefs.LastUsed = time.Now()
	return s.putJSON([]byte(keyPreferences), prefs)
}

// LoadPreferences loads engine preferences, returns defaults if not found
func (s *Storage) LoadPreferences() (*Preferences, error) {
	prefs := DefaultPreferences()
	err := s.getJSON([]byte(keyPreferences), prefs)
	if errors.Is(err, ErrNotFound) {
		return prefs, nil // Use defaults
	}
	return prefs, err
}

// SaveAnalysis stores rec under key and appends it to the history.
func (s *Storage) SaveAnalysis(key AnalysisKey, rec *AnalysisRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	historyKey := []byte(fmt.Sprintf("%s%020d", prefixHistory, rec.CreatedAt.UnixNano()))
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key.bytes(), data); err != nil {
			return err
		}
		return txn.Set(historyKey, data)
	})
}

// LoadAnalysis returns the record stored under key, or ErrNotFound.
func (s *Storage) LoadAnalysis(key AnalysisKey) (*AnalysisRecord, error) {
	rec := &AnalysisRecord{}
	if err := s.getJSON(key.bytes(), rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// History returns up to limit records, newest first. limit <= 0 returns all.
func (s *Storage) History(limit int) ([]AnalysisRecord, error) {
	var records []AnalysisRecord

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(prefixHistory)
		it := txn.NewIterator(opts)
		defer it.Close()

		// Seek past the last history key so the reverse walk starts at the newest.
		seek := append([]byte(prefixHistory), 0xff)
		for it.Seek(seek); it.ValidForPrefix(opts.Prefix); it.Next() {
			if limit > 0 && len(records) >= limit {
				break
			}
			var rec AnalysisRecord
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return err
			}
			records = append(records, rec)
		}
		return nil
	})

	return records, err
}

// SaveStats saves analysis statistics
func (s *Storage) SaveStats(stats *AnalysisStats) error {
	return s.putJSON([]byte(keyStats), stats)
}

// LoadStats loads analysis statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*AnalysisStats, error) {
	stats := NewAnalysisStats()
	err := s.getJSON([]byte(keyStats), stats)
	if errors.Is(err, ErrNotFound) {
		return stats, nil // Use empty stats
	}
	if stats.ByKind == nil {
		stats.ByKind = make(map[RequestKind]int)
	}
	return stats, err
}

// RecordRequest counts one request of the given kind and updates statistics
func (s *Storage) RecordRequest(kind RequestKind, served bool, nodes uint64) error {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()

	stats, err := s.LoadStats()
	if err != nil {
		return err
	}

	stats.Requests++
	stats.ByKind[kind]++
	stats.TotalNodes += nodes
	if served {
		stats.Served++
	}

	return s.SaveStats(stats)
}
