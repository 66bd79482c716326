package board

import (
	"errors"
	"testing"
)

func TestFENRoundTrip(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
		"8/8/8/8/8/8/8/4K2k w - - 12 34",
		"4k3/8/8/8/8/8/8/4K2R w K - 0 1",
	}

	for _, fen := range fens {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}
		if got := pos.ToFEN(); got != fen {
			t.Errorf("round trip: got %q, want %q", got, fen)
		}
	}
}

func TestFENReparseEqual(t *testing.T) {
	pos, err := ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatal(err)
	}

	again, err := ParseFEN(pos.ToFEN())
	if err != nil {
		t.Fatal(err)
	}
	if *again != *pos {
		t.Errorf("reparsed position differs:\n%v\n%v", again, pos)
	}
}

func TestFENClockDefaults(t *testing.T) {
	pos, err := ParseFEN("4k3/8/8/8/8/8/8/4K3 w - -")
	if err != nil {
		t.Fatal(err)
	}
	if pos.HalfMoveClock != 0 {
		t.Errorf("halfmove clock = %d, want 0", pos.HalfMoveClock)
	}
	if pos.FullMoveNumber != 1 {
		t.Errorf("fullmove number = %d, want 1", pos.FullMoveNumber)
	}
}

func TestFENInvalid(t *testing.T) {
	bad := []string{
		"",
		"only three fields here",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w KQkq - 0 1",          // 7 ranks
		"rnbqkbnr/pppppppp/9/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", // rank overflow
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1", // bad side
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w XQkq - 0 1", // bad castling
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq z9 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - x 1",
		"rnbqkbnr/ppppzppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", // bad piece char
	}

	for _, fen := range bad {
		if _, err := ParseFEN(fen); !errors.Is(err, ErrInvalidFEN) {
			t.Errorf("ParseFEN(%q) = %v, want ErrInvalidFEN", fen, err)
		}
	}
}

func TestStartPositionBasics(t *testing.T) {
	pos := NewPosition()

	if err := pos.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if pos.SideToMove != White {
		t.Error("white should move first")
	}
	if pos.CastlingRights != AllCastling {
		t.Errorf("castling rights = %v, want KQkq", pos.CastlingRights)
	}
	if pos.EnPassant != NoSquare {
		t.Errorf("en passant = %v, want none", pos.EnPassant)
	}
	if pos.AllOccupied.PopCount() != 32 {
		t.Errorf("occupied = %d squares, want 32", pos.AllOccupied.PopCount())
	}
	if pos.Material() != 0 {
		t.Errorf("material = %d, want 0", pos.Material())
	}
	if pos.KingSquare[White] != E1 || pos.KingSquare[Black] != E8 {
		t.Error("king squares not cached correctly")
	}
}
