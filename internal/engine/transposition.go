package engine

import "github.com/hailam/kestrel/internal/board"

// TTFlag classifies the bound a transposition entry carries.
type TTFlag uint8

const (
	TTExact      TTFlag = iota // exact score, searched with an open window
	TTLowerBound               // failed high: real score is at least Score
	TTUpperBound               // failed low: real score is at most Score
)

// TTEntry is one transposition table slot. The full 64-bit key is kept so
// an index collision can never smuggle in a foreign entry.
type TTEntry struct {
	Key      uint64
	BestMove board.Move
	Score    int32
	Depth    int8
	Flag     TTFlag
	Age      uint8
}

// TranspositionTable maps Zobrist keys to search results. The table is a
// power-of-two slice indexed by the low key bits; replacement favors
// entries from the current search generation at greater depth.
type TranspositionTable struct {
	entries []TTEntry
	mask    uint64
	age     uint8
}

// NewTranspositionTable allocates a table of roughly sizeMB megabytes.
func NewTranspositionTable(sizeMB int) *TranspositionTable {
	entrySize := uint64(24)
	numEntries := roundDownToPowerOf2(uint64(sizeMB) * 1024 * 1024 / entrySize)
	if numEntries == 0 {
		numEntries = 1
	}
	return &TranspositionTable{
		entries: make([]TTEntry, numEntries),
		mask:    numEntries - 1,
	}
}

func roundDownToPowerOf2(n uint64) uint64 {
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

// Probe returns the entry stored for hash, if any. The caller decides
// whether the entry is deep enough to cut; the best move is usable for
// ordering regardless. Interior nodes always store at depth >= 1, so an
// occupied slot has a positive depth.
func (tt *TranspositionTable) Probe(hash uint64) (TTEntry, bool) {
	entry := tt.entries[hash&tt.mask]
	if entry.Key == hash && entry.Depth > 0 {
		return entry, true
	}
	return TTEntry{}, false
}

// Store writes a result for hash at the current age. Entries from an older
// generation are always replaced; within the current generation the deeper
// result wins, and a same-key update always goes through.
func (tt *TranspositionTable) Store(hash uint64, depth, score int, flag TTFlag, bestMove board.Move) {
	entry := &tt.entries[hash&tt.mask]
	if entry.Age == tt.age && entry.Key != hash && int(entry.Depth) > depth {
		return
	}
	*entry = TTEntry{
		Key:      hash,
		BestMove: bestMove,
		Score:    int32(score),
		Depth:    int8(depth),
		Flag:     flag,
		Age:      tt.age,
	}
}

// Clear empties the table and resets the generation counter.
func (tt *TranspositionTable) Clear() {
	for i := range tt.entries {
		tt.entries[i] = TTEntry{}
	}
	tt.age = 0
}

// NewSearch bumps the generation; called once per go command.
func (tt *TranspositionTable) NewSearch() {
	tt.age++
}

// Size returns the slot count.
func (tt *TranspositionTable) Size() int {
	return len(tt.entries)
}

// Mate scores are stored relative to the entry's node so a position reached
// at different plies still reads a correct distance-to-mate.

// scoreToTT converts a root-relative score for storage at ply.
func scoreToTT(score, ply int) int {
	if score > MateScore-MaxPly {
		return score + ply
	}
	if score < -MateScore+MaxPly {
		return score - ply
	}
	return score
}

// scoreFromTT converts a stored score back to root-relative at ply.
func scoreFromTT(score, ply int) int {
	if score > MateScore-MaxPly {
		return score - ply
	}
	if score < -MateScore+MaxPly {
		return score + ply
	}
	return score
}
