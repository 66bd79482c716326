package engine

import "github.com/hailam/kestrel/internal/board"

// Ordering scores. The table move outranks everything, winning-looking
// captures come next, then the killers for this ply, then promotions.
const (
	ttMoveScore   = 10000
	captureBase   = 9000
	killerScore   = 8000
	promotionBase = 7000
)

// MoveOrderer scores moves so the search visits the likely-best first.
// Killer slots remember quiet moves that produced beta cutoffs per ply;
// the history table is reserved for a future quiet-move heuristic.
type MoveOrderer struct {
	killers [MaxPly][2]board.Move
	history [64][64]int
}

// NewMoveOrderer returns an empty orderer.
func NewMoveOrderer() *MoveOrderer {
	return &MoveOrderer{}
}

// Clear wipes the killer slots and decays history.
func (mo *MoveOrderer) Clear() {
	for i := range mo.killers {
		mo.killers[i][0] = board.NoMove
		mo.killers[i][1] = board.NoMove
	}
	for i := range mo.history {
		for j := range mo.history[i] {
			mo.history[i][j] /= 2
		}
	}
}

// ScoreMoves assigns an ordering score to every move in ml.
func (mo *MoveOrderer) ScoreMoves(pos *board.Position, ml *board.MoveList, ply int, ttMove board.Move) []int {
	scores := make([]int, ml.Len())
	for i := range scores {
		scores[i] = mo.scoreMove(pos, ml.Get(i), ply, ttMove)
	}
	return scores
}

// scoreMove ranks a single move: table move, then captures by most
// valuable victim / least valuable attacker, then killers, promotions and
// finally quiet history.
func (mo *MoveOrderer) scoreMove(pos *board.Position, m board.Move, ply int, ttMove board.Move) int {
	if m == ttMove && m != board.NoMove {
		return ttMoveScore
	}

	if m.IsCapture(pos) {
		victim := PawnValue // en passant victim is always a pawn
		if !m.IsEnPassant() {
			victim = pieceValues[pos.PieceAt(m.To()).Type()]
		}
		attacker := pieceValues[pos.PieceAt(m.From()).Type()]
		return captureBase + victim - attacker/10
	}

	if ply < MaxPly {
		if m == mo.killers[ply][0] {
			return killerScore
		}
		if m == mo.killers[ply][1] {
			return killerScore - 1
		}
	}

	if m.IsPromotion() {
		return promotionBase + pieceValues[m.Promotion()]
	}

	return mo.history[m.From()][m.To()]
}

// RecordKiller shifts a quiet cutoff move into the killer slots for ply.
func (mo *MoveOrderer) RecordKiller(m board.Move, ply int) {
	if ply >= MaxPly || mo.killers[ply][0] == m {
		return
	}
	mo.killers[ply][1] = mo.killers[ply][0]
	mo.killers[ply][0] = m
}

// PickMove moves the best-scored remaining move to position index; the
// search sorts lazily since a cutoff usually ends the loop early.
func PickMove(ml *board.MoveList, scores []int, index int) {
	best := index
	for j := index + 1; j < ml.Len(); j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	if best != index {
		ml.Swap(index, best)
		scores[index], scores[best] = scores[best], scores[index]
	}
}
