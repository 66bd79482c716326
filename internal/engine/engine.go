package engine

import (
	"time"

	"github.com/hailam/kestrel/internal/board"
)

// SearchLimits constrains a search. Zero values mean unlimited; Infinite
// runs until Stop.
type SearchLimits struct {
	Depth    int
	Nodes    uint64
	MoveTime time.Duration
	Infinite bool
}

// SearchInfo is the progress report emitted once per completed iteration,
// in non-decreasing depth order.
type SearchInfo struct {
	Depth int
	Score int
	Nodes uint64
	Time  time.Duration
	PV    []board.Move
}

// Engine binds a transposition table and a searcher and drives iterative
// deepening. The Position is borrowed for the duration of a search; the
// table persists across searches until Clear.
type Engine struct {
	searcher *Searcher
	tt       *TranspositionTable

	// OnInfo, when set, receives one progress report per completed depth.
	OnInfo func(SearchInfo)

	gameHistory []uint64
}

// NewEngine creates an engine with a transposition table of ttSizeMB
// megabytes.
func NewEngine(ttSizeMB int) *Engine {
	tt := NewTranspositionTable(ttSizeMB)
	return &Engine{
		searcher: NewSearcher(tt),
		tt:       tt,
	}
}

// SetGameHistory hands over the Zobrist hashes of the game so far, used
// for repetition scoring inside the search.
func (e *Engine) SetGameHistory(hashes []uint64) {
	e.gameHistory = append(e.gameHistory[:0], hashes...)
}

// Search runs iterative deepening on pos under the given limits and
// returns the best move of the deepest completed iteration, NoMove only
// when the position has no legal move at all.
func (e *Engine) Search(pos *board.Position, limits SearchLimits) board.Move {
	return <-e.StartSearch(pos, limits)
}

// StartSearch arms the searcher on the caller's goroutine and runs the
// iterative deepening loop on a new one, delivering the best move on the
// returned channel. Because arming is synchronous, a Stop issued any time
// after StartSearch returns is never lost to the reset.
func (e *Engine) StartSearch(pos *board.Position, limits SearchLimits) <-chan board.Move {
	e.tt.NewSearch()

	start := time.Now()

	maxDepth := MaxPly - 1
	if limits.Depth > 0 && !limits.Infinite {
		maxDepth = limits.Depth
	}
	var deadline time.Time
	if limits.MoveTime > 0 && !limits.Infinite {
		deadline = start.Add(limits.MoveTime)
	}

	e.searcher.prepare(pos, e.gameHistory, deadline, limits.Nodes)

	result := make(chan board.Move, 1)
	go func() {
		result <- e.iterate(pos, maxDepth, deadline, start)
	}()
	return result
}

// iterate is the iterative deepening loop.
func (e *Engine) iterate(pos *board.Position, maxDepth int, deadline, start time.Time) board.Move {
	var bestMove board.Move
	var bestScore int

	for depth := 1; depth <= maxDepth; depth++ {
		move, score := e.searcher.SearchRoot(depth)

		// A stopped iteration is incomplete; keep the previous result.
		if e.searcher.Stopped() {
			break
		}
		if move != board.NoMove {
			bestMove = move
			bestScore = score
		}

		if e.OnInfo != nil {
			e.OnInfo(SearchInfo{
				Depth: depth,
				Score: score,
				Nodes: e.searcher.Nodes(),
				Time:  time.Since(start),
				PV:    e.searcher.PV(),
			})
		}

		// A forced mate does not get better with depth.
		if bestScore > MateScore-MaxPly || bestScore < -MateScore+MaxPly {
			break
		}

		// Starting another iteration that cannot finish in the remaining
		// time just burns the clock.
		if !deadline.IsZero() {
			elapsed := time.Since(start)
			if time.Until(deadline) < elapsed {
				break
			}
		}
	}

	if bestMove == board.NoMove {
		// Stopped before depth 1 completed, or the search never raised
		// alpha; any legal move beats resigning to a protocol error.
		if legal := pos.GenerateLegalMoves(); legal.Len() > 0 {
			bestMove = legal.Get(0)
		}
	}

	return bestMove
}

// Stop aborts the running search; the best move found so far stands.
// Safe to call from another goroutine.
func (e *Engine) Stop() {
	e.searcher.Stop()
}

// Clear wipes the transposition table and heuristics for a new game.
func (e *Engine) Clear() {
	e.tt.Clear()
	e.searcher.orderer.Clear()
}

// Nodes returns the node count of the last search.
func (e *Engine) Nodes() uint64 {
	return e.searcher.Nodes()
}

// Evaluate returns the static evaluation of pos from the side to move.
func (e *Engine) Evaluate(pos *board.Position) int {
	return Evaluate(pos)
}

// Perft counts the leaf nodes of the legal move tree to the given depth,
// the standard cross-check for move generation.
func Perft(pos *board.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	moves := pos.GenerateLegalMoves()
	if depth == 1 {
		return uint64(moves.Len())
	}

	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		undo := pos.MakeMove(m)
		nodes += Perft(pos, depth-1)
		pos.UnmakeMove(m, undo)
	}
	return nodes
}

// DivideEntry is one root move's subtree size.
type DivideEntry struct {
	Move  board.Move
	Nodes uint64
}

// Divide splits a perft count by root move.
func Divide(pos *board.Position, depth int) []DivideEntry {
	moves := pos.GenerateLegalMoves()
	result := make([]DivideEntry, 0, moves.Len())

	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		undo := pos.MakeMove(m)
		count := uint64(1)
		if depth > 1 {
			count = Perft(pos, depth-1)
		}
		pos.UnmakeMove(m, undo)
		result = append(result, DivideEntry{Move: m, Nodes: count})
	}
	return result
}
