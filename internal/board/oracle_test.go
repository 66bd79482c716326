package board

import (
	"slices"
	"testing"

	"github.com/dylhunn/dragontoothmg"
)

// Cross-check the move generator against an independent implementation.
// Both engines express castling as the king's two-file hop and promotions
// with a piece suffix, so the legal move sets must match string for
// string.

func oracleMoves(t *testing.T, fen string) []string {
	t.Helper()
	b := dragontoothmg.ParseFen(fen)
	var moves []string
	for _, m := range b.GenerateLegalMoves() {
		moves = append(moves, m.String())
	}
	slices.Sort(moves)
	return moves
}

func ourMoves(t *testing.T, fen string) []string {
	t.Helper()
	pos, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	legal := pos.GenerateLegalMoves()
	var moves []string
	for i := 0; i < legal.Len(); i++ {
		moves = append(moves, legal.Get(i).String())
	}
	slices.Sort(moves)
	return moves
}

func TestMoveGenerationMatchesOracle(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R b KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 b - - 0 1",
		"rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2",
		"4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1",
		"1n2k3/P7/8/8/8/8/8/4K3 w - - 0 1",
		"8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1",
		"r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1",
		"r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1",
		"R6k/6pp/8/8/8/8/8/K7 b - - 0 1",
		"7k/5Q2/6K1/8/8/8/8/8 b - - 0 1",
	}

	for _, fen := range fens {
		want := oracleMoves(t, fen)
		got := ourMoves(t, fen)
		if !slices.Equal(got, want) {
			t.Errorf("%s:\n got  %v\n want %v", fen, got, want)
		}
	}
}

// Walk a full game and compare the legal move set at every step.
func TestMoveGenerationMatchesOracleAlongGame(t *testing.T) {
	line := []string{
		"e2e4", "e7e5", "g1f3", "b8c6", "f1b5", "a7a6", "b5a4", "g8f6",
		"e1g1", "f8e7", "f1e1", "b7b5", "a4b3", "d7d6", "c2c3", "e8g8",
		"h2h3", "c6a5", "b3c2", "c7c5", "d2d4", "d8c7",
	}

	pos := NewPosition()
	for _, ms := range line {
		fen := pos.ToFEN()
		want := oracleMoves(t, fen)
		got := ourMoves(t, fen)
		if !slices.Equal(got, want) {
			t.Fatalf("%s (before %s):\n got  %v\n want %v", fen, ms, got, want)
		}

		m, err := ParseMove(ms, pos)
		if err != nil {
			t.Fatal(err)
		}
		pos.MakeMove(m)
	}
}
