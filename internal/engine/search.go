package engine

import (
	"sync/atomic"
	"time"

	"github.com/hailam/kestrel/internal/board"
)

// Search bounds. Mate found at ply d scores MateScore-d, so shorter mates
// order first; the root window opens at (-MateScore, MateScore).
const (
	MateScore = 1_000_000
	MaxPly    = 128

	// maxQuiescencePly bounds the capture extension beyond the nominal
	// horizon.
	maxQuiescencePly = 8

	// stopCheckMask throttles deadline/node-cap polling to once per 2048
	// nodes.
	stopCheckMask = 2047
)

// PVTable holds the triangular principal variation collected on the way
// back up the tree.
type PVTable struct {
	length [MaxPly + 1]int
	moves  [MaxPly + 1][MaxPly + 1]board.Move
}

// Searcher runs the alpha-beta search over a borrowed position. It owns
// the killer slots and borrows the transposition table from the Engine.
// The stop flag is the only field another goroutine may touch.
type Searcher struct {
	pos     *board.Position
	tt      *TranspositionTable
	orderer *MoveOrderer

	nodes uint64
	pv    PVTable

	stopFlag  atomic.Bool
	deadline  time.Time
	nodeLimit uint64

	// Hashes of positions on the path from the game start through the
	// current search line, for repetition scoring.
	history []uint64

	undoStack [MaxPly]board.UndoInfo
}

// NewSearcher creates a searcher sharing the given transposition table.
func NewSearcher(tt *TranspositionTable) *Searcher {
	return &Searcher{
		tt:      tt,
		orderer: NewMoveOrderer(),
	}
}

// Stop asks the search to wind down; safe to call from another goroutine.
func (s *Searcher) Stop() {
	s.stopFlag.Store(true)
}

// Stopped reports whether the stop flag is set.
func (s *Searcher) Stopped() bool {
	return s.stopFlag.Load()
}

// Nodes returns the node count of the current search.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// PV returns the principal variation of the last completed root search.
func (s *Searcher) PV() []board.Move {
	pv := make([]board.Move, s.pv.length[0])
	copy(pv, s.pv.moves[0][:s.pv.length[0]])
	return pv
}

// prepare arms the searcher for a fresh go: counters reset, stop flag
// lowered, limits installed and the game history seeded.
func (s *Searcher) prepare(pos *board.Position, gameHistory []uint64, deadline time.Time, nodeLimit uint64) {
	s.pos = pos
	s.nodes = 0
	s.stopFlag.Store(false)
	s.deadline = deadline
	s.nodeLimit = nodeLimit
	s.orderer.Clear()

	s.history = s.history[:0]
	s.history = append(s.history, gameHistory...)
	if len(s.history) == 0 || s.history[len(s.history)-1] != pos.Hash {
		s.history = append(s.history, pos.Hash)
	}
}

// checkStop polls the stop condition: external flag, deadline, node cap.
// Called at every node but only inspects the clock every few thousand.
func (s *Searcher) checkStop() bool {
	if s.stopFlag.Load() {
		return true
	}
	if s.nodes&stopCheckMask != 0 {
		return false
	}
	if !s.deadline.IsZero() && time.Now().After(s.deadline) {
		s.stopFlag.Store(true)
		return true
	}
	if s.nodeLimit > 0 && s.nodes >= s.nodeLimit {
		s.stopFlag.Store(true)
		return true
	}
	return false
}

// isRepetition reports whether the position on top of the search path
// already occurred earlier on it. A single recurrence scores as a draw
// inside the search; claim handling is the adapter's business.
func (s *Searcher) isRepetition() bool {
	n := len(s.history)
	if n < 2 {
		return false
	}
	hash := s.history[n-1]
	for _, h := range s.history[:n-1] {
		if h == hash {
			return true
		}
	}
	return false
}

// SearchRoot runs one full-window alpha-beta iteration at the given depth
// and returns the best move and score. The caller drives the iterative
// deepening loop.
func (s *Searcher) SearchRoot(depth int) (board.Move, int) {
	score := s.negamax(depth, 0, -MateScore, MateScore, true)

	var best board.Move
	if s.pv.length[0] > 0 {
		best = s.pv.moves[0][0]
	}
	return best, score
}

// negamax is the alpha-beta workhorse. Moves are generated pseudo-legally
// and filtered by trial application; the transposition table, null move,
// principal-variation scouting and late-move reductions prune on top.
func (s *Searcher) negamax(depth, ply, alpha, beta int, doNull bool) int {
	s.nodes++
	s.pv.length[ply] = ply

	if s.checkStop() {
		return 0
	}
	if ply >= MaxPly {
		return Evaluate(s.pos)
	}

	if ply > 0 && s.isRepetition() {
		return 0
	}

	// Transposition probe. An exact entry at sufficient depth answers the
	// node outright; bounds tighten the window. The stored move seeds the
	// ordering either way.
	var ttMove board.Move
	if entry, ok := s.tt.Probe(s.pos.Hash); ok {
		ttMove = entry.BestMove
		if ply > 0 && int(entry.Depth) >= depth {
			score := scoreFromTT(int(entry.Score), ply)
			switch entry.Flag {
			case TTExact:
				return score
			case TTLowerBound:
				if score > alpha {
					alpha = score
				}
			case TTUpperBound:
				if score < beta {
					beta = score
				}
			}
			if alpha >= beta {
				return score
			}
		}
	}

	if depth <= 0 {
		return s.quiescence(ply, 0, alpha, beta)
	}

	inCheck := s.pos.InCheck()

	// Null move: hand the opponent a free shot at a reduced depth. If even
	// that fails high the node is almost certainly a cutoff. Skipped in
	// check, after another null, and without pieces (zugzwang).
	if doNull && depth >= 3 && !inCheck && s.pos.HasNonPawnMaterial() {
		undo := s.pos.MakeNullMove()
		s.history = append(s.history, s.pos.Hash)
		score := -s.negamax(depth-3, ply+1, -beta, -beta+1, false)
		s.history = s.history[:len(s.history)-1]
		s.pos.UnmakeNullMove(undo)

		if s.Stopped() {
			return 0
		}
		if score >= beta {
			return beta
		}
	}

	var moves board.MoveList
	s.pos.GeneratePseudoLegalMoves(&moves)
	scores := s.orderer.ScoreMoves(s.pos, &moves, ply, ttMove)

	alphaOrig := alpha
	bestScore := -MateScore
	bestMove := board.NoMove
	movesSearched := 0
	us := s.pos.SideToMove

	for i := 0; i < moves.Len(); i++ {
		PickMove(&moves, scores, i)
		move := moves.Get(i)
		isQuiet := !move.IsCapture(s.pos) && !move.IsPromotion()

		s.undoStack[ply] = s.pos.MakeMove(move)
		if s.pos.KingInCheck(us) {
			s.pos.UnmakeMove(move, s.undoStack[ply])
			continue
		}
		s.history = append(s.history, s.pos.Hash)
		movesSearched++

		var score int
		if movesSearched == 1 {
			// First legal move gets the full window.
			score = -s.negamax(depth-1, ply+1, -beta, -alpha, true)
		} else {
			// Scout the rest with a zero window, reduced when deep
			// enough and late enough in the ordering; re-search on a
			// fail-high.
			reduction := 0
			if depth >= 3 && movesSearched > 4 {
				reduction = 1
			}
			score = -s.negamax(depth-1-reduction, ply+1, -alpha-1, -alpha, true)
			if score > alpha {
				score = -s.negamax(depth-1, ply+1, -beta, -alpha, true)
			}
		}

		s.history = s.history[:len(s.history)-1]
		s.pos.UnmakeMove(move, s.undoStack[ply])

		if s.Stopped() {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = move

			if score > alpha {
				alpha = score
				s.pv.moves[ply][ply] = move
				for j := ply + 1; j < s.pv.length[ply+1]; j++ {
					s.pv.moves[ply][j] = s.pv.moves[ply+1][j]
				}
				s.pv.length[ply] = s.pv.length[ply+1]
			}
		}

		if alpha >= beta {
			if isQuiet {
				s.orderer.RecordKiller(move, ply)
			}
			break
		}
	}

	// No legal move at all: mate scored by distance from root, or
	// stalemate.
	if movesSearched == 0 {
		if inCheck {
			return -MateScore + ply
		}
		return 0
	}

	flag := TTExact
	if bestScore <= alphaOrig {
		flag = TTUpperBound
	} else if bestScore >= beta {
		flag = TTLowerBound
	}
	s.tt.Store(s.pos.Hash, depth, scoreToTT(bestScore, ply), flag, bestMove)

	return bestScore
}

// quiescence extends the search through captures until the position goes
// quiet, so the evaluation never judges a position mid-exchange. Capped at
// maxQuiescencePly plies of captures.
func (s *Searcher) quiescence(ply, qply, alpha, beta int) int {
	s.nodes++

	if s.checkStop() || ply >= MaxPly {
		return Evaluate(s.pos)
	}

	standPat := Evaluate(s.pos)
	if standPat >= beta {
		return beta
	}
	if standPat > alpha {
		alpha = standPat
	}
	if qply >= maxQuiescencePly {
		return standPat
	}

	var moves board.MoveList
	s.pos.GenerateCaptures(&moves)
	scores := s.orderer.ScoreMoves(s.pos, &moves, ply, board.NoMove)

	us := s.pos.SideToMove
	for i := 0; i < moves.Len(); i++ {
		PickMove(&moves, scores, i)
		move := moves.Get(i)

		undo := s.pos.MakeMove(move)
		if s.pos.KingInCheck(us) {
			s.pos.UnmakeMove(move, undo)
			continue
		}

		score := -s.quiescence(ply+1, qply+1, -beta, -alpha)
		s.pos.UnmakeMove(move, undo)

		if s.Stopped() {
			return 0
		}
		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}

	return alpha
}
