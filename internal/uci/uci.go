// Package uci speaks the Universal Chess Interface protocol over a pair of
// streams.
package uci

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/engine"
)

// Defaults for the engine options.
const (
	DefaultHashMB = 16
	maxHashMB     = 1024
)

// UCI implements the Universal Chess Interface protocol.
type UCI struct {
	engine   *engine.Engine
	position board.Position

	out   io.Writer
	outMu sync.Mutex

	depth int // Used when "go" names no limit

	// Search state
	searching  bool
	searchDone chan struct{}
}

// New creates a UCI protocol handler writing responses to out.
func New(eng *engine.Engine, out io.Writer) *UCI {
	return &UCI{
		engine:   eng,
		position: board.Initial(),
		out:      out,
	}
}

// SetDepth sets the depth used by "go" commands that name no limit.
func (u *UCI) SetDepth(depth int) {
	u.depth = depth
}

func (u *UCI) printf(format string, args ...any) {
	u.outMu.Lock()
	defer u.outMu.Unlock()
	fmt.Fprintf(u.out, format, args...)
}

// Run reads commands from in until "quit" or end of input. At end of
// input a running search is allowed to finish.
func (u *UCI) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			u.printf("readyok\n")
		case "ucinewgame":
			u.handleNewGame()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(args)
		case "stop":
			u.handleStop()
		case "quit":
			u.handleStop()
			return nil
		case "setoption":
			u.handleSetOption(args)
		// Debug commands
		case "d":
			u.waitSearch()
			u.printf("%s\nFen: %s\nKey: %016X\n", u.position.String(), u.position.FEN(), u.position.Hash)
		case "perft":
			u.handlePerft(args)
		default:
			u.printf("info string Unknown command: %s\n", cmd)
		}
	}

	u.waitSearch()
	return scanner.Err()
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	u.printf("id name ChessCore\n")
	u.printf("id author ChessCore Team\n\n")
	u.printf("option name Hash type spin default %d min 1 max %d\n", DefaultHashMB, maxHashMB)
	u.printf("option name Depth type spin default %d min 1 max %d\n", engine.DefaultDepth, engine.MaxDepth)
	u.printf("option name Evaluator type combo default default")
	for _, name := range engine.EvaluatorNames() {
		u.printf(" var %s", name)
	}
	u.printf("\nuciok\n")
}

// handleNewGame resets the engine for a new game.
func (u *UCI) handleNewGame() {
	u.waitSearch()
	u.engine.Clear()
	u.position = board.Initial()
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}
	u.waitSearch()

	movesAt := slices.Index(args, "moves")
	head := args
	if movesAt >= 0 {
		head = args[:movesAt]
	}

	var pos board.Position
	switch head[0] {
	case "startpos":
		pos = board.Initial()
	case "fen":
		var err error
		pos, err = board.ParseFEN(strings.Join(head[1:], " "))
		if err != nil {
			u.printf("info string Invalid FEN: %v\n", err)
			return
		}
	default:
		return
	}

	if movesAt >= 0 {
		for _, moveStr := range args[movesAt+1:] {
			m, err := board.ParseUCIMove(moveStr, pos)
			if err != nil {
				u.printf("info string %v\n", err)
				return
			}
			pos = pos.ApplyMove(m)
		}
	}
	u.position = pos
}

// GoOptions holds parsed "go" command options.
// Clock fields (wtime, btime, winc, binc, movestogo) are accepted and
// ignored; a search runs to its depth unless movetime bounds it.
type GoOptions struct {
	Depth    int
	MoveTime time.Duration
	Infinite bool
}

// handleGo starts a search with the given parameters.
func (u *UCI) handleGo(args []string) {
	u.waitSearch()

	opts := parseGoOptions(args)
	limits := u.calculateLimits(opts)

	u.engine.OnInfo = u.sendInfo

	u.searching = true
	u.searchDone = make(chan struct{})
	pos := u.position

	go func() {
		defer close(u.searchDone)

		bestMove := u.engine.BestMove(pos, limits)
		u.printf("bestmove %s\n", bestMove.UCI())
	}()
}

func parseGoOptions(args []string) GoOptions {
	opts := GoOptions{}

	millis := func(i int) time.Duration {
		ms, _ := strconv.Atoi(args[i])
		return time.Duration(ms) * time.Millisecond
	}

	for i := 0; i < len(args); i++ {
		hasValue := i+1 < len(args)
		switch args[i] {
		case "depth":
			if hasValue {
				opts.Depth, _ = strconv.Atoi(args[i+1])
				i++
			}
		case "movetime":
			if hasValue {
				opts.MoveTime = millis(i + 1)
				i++
			}
		case "infinite":
			opts.Infinite = true
		}
	}

	return opts
}

// calculateLimits converts GoOptions to engine.SearchLimits.
func (u *UCI) calculateLimits(opts GoOptions) engine.SearchLimits {
	limits := engine.SearchLimits{Depth: opts.Depth}

	if opts.Infinite {
		limits.Infinite = true
		return limits
	}

	limits.MoveTime = opts.MoveTime

	if limits.Depth == 0 && limits.MoveTime == 0 {
		limits.Depth = u.depth
	}
	return limits
}

// sendInfo outputs search info in UCI format. Scores are reported from
// the side to move's point of view.
func (u *UCI) sendInfo(info engine.SearchInfo) {
	score := info.Score
	if u.position.SideToMove == board.Black {
		score = -score
	}

	var scoreStr string
	if engine.IsMateScore(score) {
		// Iterative deepening stops at the first mating depth.
		mateIn := (info.Depth + 1) / 2
		if score < 0 {
			mateIn = -mateIn
		}
		scoreStr = fmt.Sprintf("mate %d", mateIn)
	} else {
		scoreStr = fmt.Sprintf("cp %d", score)
	}

	pv := make([]string, 0, len(info.PV))
	for _, m := range info.PV {
		pv = append(pv, m.UCI())
	}

	u.printf("info depth %d score %s nodes %d time %d nps %d pv %s\n",
		info.Depth, scoreStr, info.Nodes, info.Time.Milliseconds(), info.NPS(), strings.Join(pv, " "))
}

// handleStop stops the current search and waits for its bestmove. The
// stop is repeated until the search ends, since a search that has not
// started yet clears the flag.
func (u *UCI) handleStop() {
	if !u.searching {
		return
	}
	for {
		u.engine.Stop()
		select {
		case <-u.searchDone:
			u.searching = false
			return
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func (u *UCI) waitSearch() {
	if u.searching {
		<-u.searchDone
		u.searching = false
	}
}

// handleSetOption processes "setoption name <name> value <value>".
func (u *UCI) handleSetOption(args []string) {
	var name, value []string
	var target *[]string

	for _, arg := range args {
		switch arg {
		case "name":
			target = &name
		case "value":
			target = &value
		default:
			if target != nil {
				*target = append(*target, arg)
			}
		}
	}

	u.waitSearch()
	val := strings.Join(value, " ")

	switch strings.ToLower(strings.Join(name, " ")) {
	case "hash":
		mb, err := strconv.Atoi(val)
		if err != nil || mb < 1 || mb > maxHashMB {
			u.printf("info string Invalid Hash value: %s\n", val)
			return
		}
		u.engine = engine.NewEngine(u.engine.Evaluator(), mb)
	case "depth":
		depth, err := strconv.Atoi(val)
		if err != nil || depth < 1 || depth > engine.MaxDepth {
			u.printf("info string Invalid Depth value: %s\n", val)
			return
		}
		u.depth = depth
	case "evaluator":
		eval, err := engine.NewEvaluator(val)
		if err != nil {
			u.printf("info string %v\n", err)
			return
		}
		u.engine.SetEvaluator(eval)
	default:
		u.printf("info string Unknown option: %s\n", strings.Join(name, " "))
	}
}

// handlePerft runs a perft test, listing the count below each root move.
func (u *UCI) handlePerft(args []string) {
	u.waitSearch()

	depth := 5
	if len(args) > 0 {
		if d, err := strconv.Atoi(args[0]); err == nil && d > 0 {
			depth = d
		}
	}

	start := time.Now()
	divide := board.Divide(u.position, depth)
	moves := make([]board.Move, 0, len(divide))
	var nodes uint64
	for m, n := range divide {
		moves = append(moves, m)
		nodes += n
	}
	slices.SortFunc(moves, func(a, b board.Move) int {
		return strings.Compare(a.UCI(), b.UCI())
	})
	for _, m := range moves {
		u.printf("%s: %d\n", m.UCI(), divide[m])
	}
	elapsed := time.Since(start)

	u.printf("\nNodes: %d\n", nodes)
	u.printf("Time: %v\n", elapsed.Round(time.Millisecond))
	if elapsed > 0 {
		u.printf("NPS: %.0f\n", float64(nodes)/elapsed.Seconds())
	}
}
