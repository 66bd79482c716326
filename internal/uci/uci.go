// Package uci adapts the engine to the UCI line protocol on standard
// input and output.
package uci

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hailam/kestrel/internal/board"
	"github.com/hailam/kestrel/internal/engine"
	"github.com/hailam/kestrel/internal/storage"
)

const (
	engineName   = "Kestrel"
	engineAuthor = "hailam"

	defaultHashMB = 64
	minHashMB     = 1
	maxHashMB     = 4096
)

// UCI owns the game position and relays protocol commands to the engine.
// One search runs at a time, on its own goroutine, so stop can arrive on
// the input loop while go is thinking.
type UCI struct {
	engine   *engine.Engine
	position *board.Position
	store    *storage.Store

	// Zobrist hashes of every position of the current game, root first,
	// for repetition scoring.
	positionHashes []uint64

	hashMB     int
	searchDone chan struct{}

	out io.Writer
}

// New creates a protocol handler. store may be nil; option persistence is
// then disabled.
func New(eng *engine.Engine, store *storage.Store) *UCI {
	u := &UCI{
		engine:   eng,
		position: board.NewPosition(),
		store:    store,
		hashMB:   defaultHashMB,
		out:      os.Stdout,
	}
	u.positionHashes = []uint64{u.position.Hash}
	return u
}

// SetOutput redirects protocol output, primarily for tests.
func (u *UCI) SetOutput(w io.Writer) {
	u.out = w
}

// Run reads commands from r until quit or EOF.
func (u *UCI) Run(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if !u.ProcessLine(scanner.Text()) {
			return
		}
	}
	u.waitForSearch()
}

// ProcessLine handles a single protocol line; it returns false on quit.
func (u *UCI) ProcessLine(line string) bool {
	parts := strings.Fields(strings.TrimSpace(line))
	if len(parts) == 0 {
		return true
	}
	cmd, args := parts[0], parts[1:]

	switch cmd {
	case "uci":
		u.handleUCI()
	case "isready":
		fmt.Fprintln(u.out, "readyok")
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
		return false
	case "setoption":
		u.handleSetOption(args)
	case "eval":
		fmt.Fprintf(u.out, "eval: %d\n", u.engine.Evaluate(u.position))
	case "print", "d":
		fmt.Fprint(u.out, u.position.String())
	case "perft":
		u.handlePerft(args)
	case "divide":
		u.handleDivide(args)
	}
	return true
}

func (u *UCI) handleUCI() {
	fmt.Fprintf(u.out, "id name %s\n", engineName)
	fmt.Fprintf(u.out, "id author %s\n", engineAuthor)
	fmt.Fprintf(u.out, "option name Hash type spin default %d min %d max %d\n",
		defaultHashMB, minHashMB, maxHashMB)
	fmt.Fprintln(u.out, "uciok")
}

func (u *UCI) handleNewGame() {
	u.waitForSearch()
	u.engine.Clear()
	u.position = board.NewPosition()
	u.positionHashes = []uint64{u.position.Hash}
}

// handlePosition loads "startpos" or a FEN and applies the optional move
// list. A bad FEN or move leaves the previous position in place.
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	var pos *board.Position
	var moveStart int

	switch args[0] {
	case "startpos":
		pos = board.NewPosition()
		moveStart = 1
	case "fen":
		fenEnd := len(args)
		for i, arg := range args {
			if arg == "moves" {
				fenEnd = i
				break
			}
		}
		parsed, err := board.ParseFEN(strings.Join(args[1:fenEnd], " "))
		if err != nil {
			fmt.Fprintf(os.Stderr, "info string %v\n", err)
			return
		}
		pos = parsed
		moveStart = fenEnd
	default:
		return
	}

	hashes := []uint64{pos.Hash}

	if moveStart < len(args) && args[moveStart] == "moves" {
		for _, moveStr := range args[moveStart+1:] {
			move, err := u.resolveMove(pos, moveStr)
			if err != nil {
				fmt.Fprintf(os.Stderr, "info string %v\n", err)
				return
			}
			pos.MakeMove(move)
			hashes = append(hashes, pos.Hash)
		}
	}

	u.position = pos
	u.positionHashes = hashes
}

// resolveMove parses a coordinate move and checks it against the legal
// move set of pos, distinguishing syntax errors from illegal moves.
func (u *UCI) resolveMove(pos *board.Position, moveStr string) (board.Move, error) {
	move, err := board.ParseMove(moveStr, pos)
	if err != nil {
		return board.NoMove, err
	}
	if !pos.GenerateLegalMoves().Contains(move) {
		return board.NoMove, fmt.Errorf("%w: %s", board.ErrIllegalMove, moveStr)
	}
	return move, nil
}

// handleGo parses the limits and runs the search on its own goroutine.
// The final bestmove is validated against the position; "0000" is emitted
// only when no legal move exists.
func (u *UCI) handleGo(args []string) {
	u.waitForSearch()

	limits := parseGoLimits(args)

	u.engine.SetGameHistory(u.positionHashes)
	u.engine.OnInfo = func(info engine.SearchInfo) {
		u.sendInfo(info)
	}

	pos := u.position.Copy()
	done := make(chan struct{})
	u.searchDone = done

	// The goroutine validates against its own copy; the protocol loop may
	// replace u.position before the search winds down.
	validationPos := u.position.Copy()

	// StartSearch arms the stop flag synchronously, so a stop right after
	// this go command cannot race the search startup.
	result := u.engine.StartSearch(pos, limits)

	go func() {
		defer close(done)

		bestMove := <-result
		u.recordSearch()

		legal := validationPos.GenerateLegalMoves()
		if bestMove != board.NoMove && legal.Contains(bestMove) {
			fmt.Fprintf(u.out, "bestmove %s\n", bestMove)
			return
		}
		if legal.Len() > 0 {
			fmt.Fprintf(u.out, "bestmove %s\n", legal.Get(0))
			return
		}
		fmt.Fprintln(u.out, "bestmove 0000")
	}()
}

// parseGoLimits reads the depth/movetime/nodes/infinite arguments.
func parseGoLimits(args []string) engine.SearchLimits {
	var limits engine.SearchLimits

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			if i+1 < len(args) {
				limits.Depth, _ = strconv.Atoi(args[i+1])
				i++
			}
		case "nodes":
			if i+1 < len(args) {
				limits.Nodes, _ = strconv.ParseUint(args[i+1], 10, 64)
				i++
			}
		case "movetime":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				limits.MoveTime = time.Duration(ms) * time.Millisecond
				i++
			}
		case "infinite":
			limits.Infinite = true
		}
	}
	return limits
}

// sendInfo prints one progress line per completed iteration.
func (u *UCI) sendInfo(info engine.SearchInfo) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "info depth %d", info.Depth)

	switch {
	case info.Score > engine.MateScore-engine.MaxPly:
		fmt.Fprintf(&sb, " score mate %d", (engine.MateScore-info.Score+1)/2)
	case info.Score < -engine.MateScore+engine.MaxPly:
		fmt.Fprintf(&sb, " score mate %d", -(engine.MateScore+info.Score+1)/2)
	default:
		fmt.Fprintf(&sb, " score cp %d", info.Score)
	}

	fmt.Fprintf(&sb, " nodes %d", info.Nodes)
	fmt.Fprintf(&sb, " time %d", info.Time.Milliseconds())
	if info.Time > 0 {
		fmt.Fprintf(&sb, " nps %d", uint64(float64(info.Nodes)/info.Time.Seconds()))
	}

	if len(info.PV) > 0 {
		moves := make([]string, len(info.PV))
		for i, m := range info.PV {
			moves[i] = m.String()
		}
		fmt.Fprintf(&sb, " pv %s", strings.Join(moves, " "))
	}

	fmt.Fprintln(u.out, sb.String())
}

func (u *UCI) handleStop() {
	u.engine.Stop()
	u.waitForSearch()
}

// waitForSearch blocks until the in-flight search, if any, has emitted its
// bestmove.
func (u *UCI) waitForSearch() {
	if u.searchDone != nil {
		<-u.searchDone
		u.searchDone = nil
	}
}

func (u *UCI) handleSetOption(args []string) {
	name, value := parseOption(args)

	switch strings.ToLower(name) {
	case "hash":
		// Persisted and applied at the next startup; the live table is
		// not resized under a running game.
		mb, err := strconv.Atoi(value)
		if err != nil || mb < minHashMB || mb > maxHashMB {
			fmt.Fprintf(os.Stderr, "info string invalid Hash value %q\n", value)
			return
		}
		u.hashMB = mb
		u.saveOptions()
	}
}

// parseOption splits "name <name> value <value>"; both parts may span
// several words.
func parseOption(args []string) (name, value string) {
	target := &name
	for _, arg := range args {
		switch arg {
		case "name":
			target = &name
		case "value":
			target = &value
		default:
			if *target != "" {
				*target += " "
			}
			*target += arg
		}
	}
	return name, value
}

func (u *UCI) handlePerft(args []string) {
	depth := 5
	if len(args) > 0 {
		if d, err := strconv.Atoi(args[0]); err == nil && d > 0 {
			depth = d
		}
	}

	start := time.Now()
	nodes := engine.Perft(u.position, depth)
	elapsed := time.Since(start)

	fmt.Fprintf(u.out, "nodes %d time %dms\n", nodes, elapsed.Milliseconds())
	u.recordPerft()
}

func (u *UCI) handleDivide(args []string) {
	depth := 1
	if len(args) > 0 {
		if d, err := strconv.Atoi(args[0]); err == nil && d > 0 {
			depth = d
		}
	}

	var total uint64
	for _, entry := range engine.Divide(u.position, depth) {
		fmt.Fprintf(u.out, "%s: %d\n", entry.Move, entry.Nodes)
		total += entry.Nodes
	}
	fmt.Fprintf(u.out, "total %d\n", total)
	u.recordPerft()
}

// Storage hooks. Persistence is best-effort: a broken store never takes
// the engine down.

// HashMB returns the configured transposition table size.
func (u *UCI) HashMB() int {
	return u.hashMB
}

// LoadOptions restores persisted options, keeping defaults on any error.
func (u *UCI) LoadOptions() {
	if u.store == nil {
		return
	}
	opts, err := u.store.LoadOptions()
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "info string options not loaded: %v\n", err)
		}
		return
	}
	if opts.HashMB >= minHashMB && opts.HashMB <= maxHashMB {
		u.hashMB = opts.HashMB
	}
}

func (u *UCI) saveOptions() {
	if u.store == nil {
		return
	}
	if err := u.store.SaveOptions(storage.Options{HashMB: u.hashMB}); err != nil {
		fmt.Fprintf(os.Stderr, "info string options not saved: %v\n", err)
	}
}

func (u *UCI) recordSearch() {
	if u.store == nil {
		return
	}
	if err := u.store.RecordSearch(u.engine.Nodes()); err != nil {
		fmt.Fprintf(os.Stderr, "info string stats not saved: %v\n", err)
	}
}

func (u *UCI) recordPerft() {
	if u.store == nil {
		return
	}
	if err := u.store.RecordPerft(); err != nil {
		fmt.Fprintf(os.Stderr, "info string stats not saved: %v\n", err)
	}
}
