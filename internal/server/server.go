// Package server answers board-layout analysis requests over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/engine"
	"github.com/hailam/chesscore/internal/storage"
)

// Request is the JSON body of an analysis request.
type Request struct {
	Board     string `json:"board"`
	PToMove   string `json:"p_to_move"`
	ReqType   string `json:"req_type"`
	Depth     int    `json:"depth,omitempty"`
	TopK      int    `json:"topk,omitempty"`
	Timeout   int    `json:"timeout,omitempty"` // Milliseconds, 0 = depth only
	Evaluator string `json:"evaluator,omitempty"`
}

// Response is the JSON reply to a Request.
type Response struct {
	PossibleMoves string `json:"possible_moves"`
	BestMoves     string `json:"best_moves"`
	PosScore      string `json:"pos_score"`
	Nodes         uint64 `json:"nodes"`
	Stored        bool   `json:"stored,omitempty"` // Answered from storage
}

type errorResponse struct {
	Error string `json:"error"`
}

// Config configures a Server.
type Config struct {
	// Store records analyses and serves repeated ones. May be nil.
	Store *storage.Storage
	// Defaults supplies depth, topk and evaluator when a request omits them.
	Defaults storage.Preferences
	// CacheSizeMB sizes the engine's leaf evaluation cache.
	CacheSizeMB int
	// MaxDepth caps the requested search depth.
	MaxDepth int
}

// Server handles analysis requests. Searches run one at a time on a
// shared engine.
type Server struct {
	cfg Config

	mu       sync.Mutex
	eng      *engine.Engine
	evalName string
}

// New creates a server.
func New(cfg Config) *Server {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 8
	}
	if cfg.Defaults.Depth <= 0 {
		cfg.Defaults.Depth = storage.DefaultPreferences().Depth
	}
	if cfg.Defaults.TopK <= 0 {
		cfg.Defaults.TopK = storage.DefaultPreferences().TopK
	}
	if cfg.Defaults.Evaluator == "" {
		cfg.Defaults.Evaluator = storage.DefaultPreferences().Evaluator
	}
	if cfg.CacheSizeMB <= 0 {
		cfg.CacheSizeMB = 16
	}
	return &Server{cfg: cfg}
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /", s.handleAnalysis)
	mux.HandleFunc("GET /history", s.handleHistory)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return logRequests(mux)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s (%v)", r.Method, r.URL.Path, time.Since(start).Round(time.Microsecond))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// errBadRequest marks failures caused by the request itself.
var errBadRequest = errors.New("bad request")

// maxRequestBytes bounds an analysis request body.
const maxRequestBytes = 64 << 10

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	var req Request
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeError(w, status, fmt.Errorf("decode request: %w", err))
		return
	}

	resp, err := s.Analyze(req)
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, board.ErrInvalidLayout),
		errors.Is(err, board.ErrInvalidSide), errors.Is(err, engine.ErrUnknownEvaluator):
		writeError(w, http.StatusBadRequest, err)
	case err != nil:
		log.Printf("analysis failed: %v", err)
		writeError(w, http.StatusInternalServerError, err)
	default:
		writeJSON(w, http.StatusOK, resp)
	}
}

// Analyze answers one request.
func (s *Server) Analyze(req Request) (*Response, error) {
	pos, err := board.Decode(req.Board, req.PToMove)
	if err != nil {
		return nil, err
	}
	if err := pos.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}

	depth := req.Depth
	if depth <= 0 {
		depth = s.cfg.Defaults.Depth
	}
	if depth > s.cfg.MaxDepth {
		return nil, fmt.Errorf("%w: depth %d exceeds the limit of %d", errBadRequest, depth, s.cfg.MaxDepth)
	}
	topK := req.TopK
	if topK <= 0 {
		topK = s.cfg.Defaults.TopK
	}
	evalName := strings.ToLower(req.Evaluator)
	if evalName == "" {
		evalName = s.cfg.Defaults.Evaluator
	}

	kind := storage.RequestKind(req.ReqType)
	var resp *Response
	switch kind {
	case storage.KindPossibleMoves:
		resp = &Response{PossibleMoves: pos.LegalContinuations().PossibleMoves()}
	case storage.KindBestMoves, storage.KindEvaluate:
		resp, err = s.search(pos, req, kind, depth, topK, evalName)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unknown req_type %q", errBadRequest, req.ReqType)
	}

	if s.cfg.Store != nil {
		if err := s.cfg.Store.RecordRequest(kind, resp.Stored, resp.Nodes); err != nil {
			log.Printf("record request: %v", err)
		}
	}
	return resp, nil
}

// search runs a best_moves or evaluate request, consulting storage first.
// A timed best_moves ranking depends on the clock and is neither served
// from nor written to storage. Evaluate ignores the timeout.
func (s *Server) search(pos board.Position, req Request, kind storage.RequestKind, depth, topK int, evalName string) (*Response, error) {
	key := storage.AnalysisKey{
		Kind:      kind,
		Position:  pos.EPD(),
		Depth:     depth,
		Evaluator: evalName,
	}
	timed := kind == storage.KindBestMoves && req.Timeout > 0
	useStore := s.cfg.Store != nil && !timed

	if useStore {
		rec, err := s.cfg.Store.LoadAnalysis(key)
		switch {
		case err == nil:
			return recordResponse(rec, topK), nil
		case !errors.Is(err, storage.ErrNotFound):
			log.Printf("load analysis: %v", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.useEvaluator(evalName); err != nil {
		return nil, err
	}

	start := time.Now()
	rec := &storage.AnalysisRecord{
		Kind:      kind,
		Layout:    req.Board,
		Side:      req.PToMove,
		Depth:     depth,
		Evaluator: evalName,
	}

	if kind == storage.KindEvaluate {
		rec.Score, rec.Nodes = s.eng.Evaluate(pos, depth)
	} else {
		limits := engine.SearchLimits{Depth: depth, MoveTime: time.Duration(req.Timeout) * time.Millisecond}
		ranking := s.eng.Rank(pos, limits)
		rec.Nodes = ranking.Nodes
		rec.BestMoves = ranking.Pairs()
		if len(ranking.Moves) > 0 {
			rec.Score = ranking.Moves[0].Score
		} else {
			rec.Score, _ = s.eng.Evaluate(pos, 0)
		}
	}
	rec.Elapsed = time.Since(start)

	if useStore {
		if err := s.cfg.Store.SaveAnalysis(key, rec); err != nil {
			log.Printf("save analysis: %v", err)
		}
	}

	resp := recordResponse(rec, topK)
	resp.Stored = false
	return resp, nil
}

// useEvaluator switches the engine to the named evaluator. Callers hold s.mu.
func (s *Server) useEvaluator(name string) error {
	if s.eng != nil && s.evalName == name {
		return nil
	}
	eval, err := engine.NewEvaluator(name)
	if err != nil {
		return err
	}
	if s.eng == nil {
		s.eng = engine.NewEngine(eval, s.cfg.CacheSizeMB)
	} else {
		s.eng.SetEvaluator(eval)
	}
	s.evalName = name
	return nil
}

func recordResponse(rec *storage.AnalysisRecord, topK int) *Response {
	best := rec.BestMoves
	if topK > 0 && len(best) > topK {
		best = best[:topK]
	}
	return &Response{
		BestMoves: strings.Join(best, ","),
		PosScore:  strconv.Itoa(rec.Score),
		Nodes:     rec.Nodes,
		Stored:    true,
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Store == nil {
		writeJSON(w, http.StatusOK, []storage.AnalysisRecord{})
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", v))
			return
		}
		limit = n
	}

	records, err := s.cfg.Store.History(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if records == nil {
		records = []storage.AnalysisRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Store == nil {
		writeJSON(w, http.StatusOK, storage.NewAnalysisStats())
		return
	}
	stats, err := s.cfg.Store.LoadStats()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
