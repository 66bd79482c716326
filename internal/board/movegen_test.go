package board

import "testing"

func legalMoveStrings(p *Position) map[string]bool {
	set := make(map[string]bool)
	moves := p.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		set[moves.Get(i).String()] = true
	}
	return set
}

// A pawn reaching the last rank yields exactly the four promotion choices
// per target square.
func TestPromotionGeneratesFourMoves(t *testing.T) {
	pos, err := ParseFEN("4k3/P7/8/8/8/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}

	count := 0
	moves := pos.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		if moves.Get(i).IsPromotion() {
			count++
		}
	}
	if count != 4 {
		t.Errorf("promotions = %d, want 4", count)
	}

	for _, want := range []string{"a7a8q", "a7a8r", "a7a8b", "a7a8n"} {
		if !legalMoveStrings(pos)[want] {
			t.Errorf("missing promotion %s", want)
		}
	}
}

// Promotion captures also come in fours, alongside the push promotion.
func TestPromotionCaptures(t *testing.T) {
	pos, err := ParseFEN("1n2k3/P7/8/8/8/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}

	set := legalMoveStrings(pos)
	for _, want := range []string{"a7a8q", "a7b8q", "a7b8r", "a7b8b", "a7b8n"} {
		if !set[want] {
			t.Errorf("missing move %s", want)
		}
	}
}

func TestCastlingGeneration(t *testing.T) {
	cases := []struct {
		name    string
		fen     string
		move    string
		allowed bool
	}{
		{"kingside ok", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "e1g1", true},
		{"queenside ok", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "e1c1", true},
		{"no right", "r3k2r/8/8/8/8/8/8/R3K2R w Qkq - 0 1", "e1g1", false},
		{"path blocked", "r3k2r/8/8/8/8/8/8/R3KB1R w KQkq - 0 1", "e1g1", false},
		{"king attacked", "r3k2r/8/8/8/4r3/8/8/R3K2R w KQkq - 0 1", "e1g1", false},
		{"crossing square attacked", "r3k2r/8/8/8/5r2/8/8/R3K2R w KQkq - 0 1", "e1g1", false},
		{"target attacked", "r3k2r/8/8/8/6r1/8/8/R3K2R w KQkq - 0 1", "e1g1", false},
		{"queenside b1 occupied", "r3k2r/8/8/8/8/8/8/RN2K2R w KQkq - 0 1", "e1c1", false},
		{"black kingside ok", "r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1", "e8g8", true},
		{"black queenside ok", "r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1", "e8c8", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := ParseFEN(tc.fen)
			if err != nil {
				t.Fatal(err)
			}
			if got := legalMoveStrings(pos)[tc.move]; got != tc.allowed {
				t.Errorf("%s in %s: generated=%v, want %v", tc.move, tc.fen, got, tc.allowed)
			}
		})
	}
}

// The b1 square may be attacked during queenside castling; only e1, d1 and
// c1 must be safe.
func TestQueensideCastlingIgnoresB1Attack(t *testing.T) {
	pos, err := ParseFEN("r3k2r/8/8/8/1r6/8/8/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	if !legalMoveStrings(pos)["e1c1"] {
		t.Error("queenside castling should be legal with only b1 attacked")
	}
}

func TestEnPassantOnlyWhenSet(t *testing.T) {
	withEP, err := ParseFEN("4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1")
	if err != nil {
		t.Fatal(err)
	}
	if !legalMoveStrings(withEP)["e5d6"] {
		t.Error("en passant e5d6 missing")
	}

	withoutEP, err := ParseFEN("4k3/8/8/3pP3/8/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	if legalMoveStrings(withoutEP)["e5d6"] {
		t.Error("en passant generated without an en passant square")
	}
}

// GenerateCaptures must produce exactly the captures and promotions among
// all pseudo-legal moves.
func TestGenerateCapturesSubset(t *testing.T) {
	fens := []string{
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2",
		"1n2k3/P7/8/8/8/8/8/4K3 w - - 0 1",
	}

	for _, fen := range fens {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatal(err)
		}

		var all, caps MoveList
		pos.GeneratePseudoLegalMoves(&all)
		pos.GenerateCaptures(&caps)

		want := make(map[Move]bool)
		for i := 0; i < all.Len(); i++ {
			m := all.Get(i)
			if m.IsCapture(pos) || m.IsPromotion() {
				want[m] = true
			}
		}

		if caps.Len() != len(want) {
			t.Errorf("%s: captures = %d, want %d", fen, caps.Len(), len(want))
		}
		for i := 0; i < caps.Len(); i++ {
			if !want[caps.Get(i)] {
				t.Errorf("%s: unexpected capture %v", fen, caps.Get(i))
			}
		}
	}
}

// KingInCheck and IsSquareAttacked must agree through the king's location.
func TestCheckMatchesSquareAttacked(t *testing.T) {
	fens := []string{
		StartFEN,
		"rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3", // Qh4+
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	}

	for _, fen := range fens {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatal(err)
		}
		for c := White; c <= Black; c++ {
			kingSq := pos.Pieces[c][King].LSB()
			want := pos.IsSquareAttacked(kingSq, c.Other())
			if got := pos.KingInCheck(c); got != want {
				t.Errorf("%s: KingInCheck(%v)=%v, IsSquareAttacked(%v)=%v", fen, c, got, kingSq, want)
			}
		}
	}
}

func TestParseMoveErrors(t *testing.T) {
	pos := NewPosition()

	if _, err := ParseMove("e2", pos); err == nil {
		t.Error("short move string accepted")
	}
	if _, err := ParseMove("e2e9", pos); err == nil {
		t.Error("off-board square accepted")
	}
	if _, err := ParseMove("e7e8x", pos); err == nil {
		t.Error("bad promotion piece accepted")
	}
	if _, err := ParseMove("e4e5", pos); err == nil {
		t.Error("move from empty square accepted")
	}
}

func TestTerminalDetection(t *testing.T) {
	mate, err := ParseFEN("R6k/6pp/8/8/8/8/8/K7 b - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	if !mate.IsCheckmate() {
		t.Error("back rank mate not detected")
	}
	if mate.IsStalemate() {
		t.Error("mate misreported as stalemate")
	}

	stale, err := ParseFEN("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	if !stale.IsStalemate() {
		t.Error("stalemate not detected")
	}
	if stale.IsCheckmate() {
		t.Error("stalemate misreported as mate")
	}
}
