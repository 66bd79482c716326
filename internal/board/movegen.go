package board

// GeneratePseudoLegalMoves appends every move that obeys piece movement
// rules into ml. Moves that leave the own king attacked are included; the
// search filters those by trial application.
func (p *Position) GeneratePseudoLegalMoves(ml *MoveList) {
	us := p.SideToMove
	occupied := p.AllOccupied
	enemies := p.Occupied[us.Other()]

	p.generatePawnMoves(ml, us, enemies, occupied)

	knights := p.Pieces[us][Knight]
	for knights != 0 {
		from := knights.PopLSB()
		targets := KnightAttacks(from) &^ p.Occupied[us]
		for targets != 0 {
			ml.Add(NewMove(from, targets.PopLSB()))
		}
	}

	bishops := p.Pieces[us][Bishop]
	for bishops != 0 {
		from := bishops.PopLSB()
		targets := BishopAttacks(from, occupied) &^ p.Occupied[us]
		for targets != 0 {
			ml.Add(NewMove(from, targets.PopLSB()))
		}
	}

	rooks := p.Pieces[us][Rook]
	for rooks != 0 {
		from := rooks.PopLSB()
		targets := RookAttacks(from, occupied) &^ p.Occupied[us]
		for targets != 0 {
			ml.Add(NewMove(from, targets.PopLSB()))
		}
	}

	queens := p.Pieces[us][Queen]
	for queens != 0 {
		from := queens.PopLSB()
		targets := QueenAttacks(from, occupied) &^ p.Occupied[us]
		for targets != 0 {
			ml.Add(NewMove(from, targets.PopLSB()))
		}
	}

	if kingBB := p.Pieces[us][King]; kingBB != 0 {
		from := kingBB.LSB()
		targets := KingAttacks(from) &^ p.Occupied[us]
		for targets != 0 {
			ml.Add(NewMove(from, targets.PopLSB()))
		}
	}

	p.generateCastlingMoves(ml, us)
}

// GenerateCaptures appends pseudo-legal captures and promotions into ml,
// the move set quiescence search explores.
func (p *Position) GenerateCaptures(ml *MoveList) {
	us := p.SideToMove
	occupied := p.AllOccupied
	enemies := p.Occupied[us.Other()]

	p.generatePawnCaptures(ml, us, enemies, occupied)

	knights := p.Pieces[us][Knight]
	for knights != 0 {
		from := knights.PopLSB()
		targets := KnightAttacks(from) & enemies
		for targets != 0 {
			ml.Add(NewMove(from, targets.PopLSB()))
		}
	}

	bishops := p.Pieces[us][Bishop]
	for bishops != 0 {
		from := bishops.PopLSB()
		targets := BishopAttacks(from, occupied) & enemies
		for targets != 0 {
			ml.Add(NewMove(from, targets.PopLSB()))
		}
	}

	rooks := p.Pieces[us][Rook]
	for rooks != 0 {
		from := rooks.PopLSB()
		targets := RookAttacks(from, occupied) & enemies
		for targets != 0 {
			ml.Add(NewMove(from, targets.PopLSB()))
		}
	}

	queens := p.Pieces[us][Queen]
	for queens != 0 {
		from := queens.PopLSB()
		targets := QueenAttacks(from, occupied) & enemies
		for targets != 0 {
			ml.Add(NewMove(from, targets.PopLSB()))
		}
	}

	if kingBB := p.Pieces[us][King]; kingBB != 0 {
		from := kingBB.LSB()
		targets := KingAttacks(from) & enemies
		for targets != 0 {
			ml.Add(NewMove(from, targets.PopLSB()))
		}
	}
}

// generatePawnMoves emits pushes, double pushes, captures, promotions and
// en passant for the side to move.
func (p *Position) generatePawnMoves(ml *MoveList, us Color, enemies, occupied Bitboard) {
	pawns := p.Pieces[us][Pawn]
	empty := ^occupied

	var push1, push2, capL, capR, promoRank Bitboard
	var up int

	if us == White {
		push1 = pawns.North() & empty
		push2 = (push1 & Rank3).North() & empty
		capL = pawns.NorthWest() & enemies
		capR = pawns.NorthEast() & enemies
		promoRank = Rank8
		up = 8
	} else {
		push1 = pawns.South() & empty
		push2 = (push1 & Rank6).South() & empty
		capL = pawns.SouthWest() & enemies
		capR = pawns.SouthEast() & enemies
		promoRank = Rank1
		up = -8
	}

	quiet := push1 &^ promoRank
	for quiet != 0 {
		to := quiet.PopLSB()
		ml.Add(NewMove(Square(int(to)-up), to))
	}
	for push2 != 0 {
		to := push2.PopLSB()
		ml.Add(NewMove(Square(int(to)-2*up), to))
	}

	left := capL &^ promoRank
	for left != 0 {
		to := left.PopLSB()
		ml.Add(NewMove(Square(int(to)-up+1), to))
	}
	right := capR &^ promoRank
	for right != 0 {
		to := right.PopLSB()
		ml.Add(NewMove(Square(int(to)-up-1), to))
	}

	promoPush := push1 & promoRank
	for promoPush != 0 {
		to := promoPush.PopLSB()
		addPromotions(ml, Square(int(to)-up), to)
	}
	promoL := capL & promoRank
	for promoL != 0 {
		to := promoL.PopLSB()
		addPromotions(ml, Square(int(to)-up+1), to)
	}
	promoR := capR & promoRank
	for promoR != 0 {
		to := promoR.PopLSB()
		addPromotions(ml, Square(int(to)-up-1), to)
	}

	p.generateEnPassant(ml, us, pawns)
}

// generatePawnCaptures is the captures-only pawn subset: diagonal captures,
// all promotions (pushes included, quiescence wants those) and en passant.
func (p *Position) generatePawnCaptures(ml *MoveList, us Color, enemies, occupied Bitboard) {
	pawns := p.Pieces[us][Pawn]
	empty := ^occupied

	var push1, capL, capR, promoRank Bitboard
	var up int

	if us == White {
		push1 = pawns.North() & empty
		capL = pawns.NorthWest() & enemies
		capR = pawns.NorthEast() & enemies
		promoRank = Rank8
		up = 8
	} else {
		push1 = pawns.South() & empty
		capL = pawns.SouthWest() & enemies
		capR = pawns.SouthEast() & enemies
		promoRank = Rank1
		up = -8
	}

	left := capL &^ promoRank
	for left != 0 {
		to := left.PopLSB()
		ml.Add(NewMove(Square(int(to)-up+1), to))
	}
	right := capR &^ promoRank
	for right != 0 {
		to := right.PopLSB()
		ml.Add(NewMove(Square(int(to)-up-1), to))
	}

	promoL := capL & promoRank
	for promoL != 0 {
		to := promoL.PopLSB()
		addPromotions(ml, Square(int(to)-up+1), to)
	}
	promoR := capR & promoRank
	for promoR != 0 {
		to := promoR.PopLSB()
		addPromotions(ml, Square(int(to)-up-1), to)
	}
	promoPush := push1 & promoRank
	for promoPush != 0 {
		to := promoPush.PopLSB()
		addPromotions(ml, Square(int(to)-up), to)
	}

	p.generateEnPassant(ml, us, pawns)
}

func (p *Position) generateEnPassant(ml *MoveList, us Color, pawns Bitboard) {
	if p.EnPassant == NoSquare {
		return
	}
	epBB := SquareBB(p.EnPassant)
	var attackers Bitboard
	if us == White {
		attackers = (epBB.SouthWest() | epBB.SouthEast()) & pawns
	} else {
		attackers = (epBB.NorthWest() | epBB.NorthEast()) & pawns
	}
	for attackers != 0 {
		ml.Add(NewEnPassant(attackers.PopLSB(), p.EnPassant))
	}
}

// addPromotions emits the four promotion choices, queen first.
func addPromotions(ml *MoveList, from, to Square) {
	ml.Add(NewPromotion(from, to, Queen))
	ml.Add(NewPromotion(from, to, Rook))
	ml.Add(NewPromotion(from, to, Bishop))
	ml.Add(NewPromotion(from, to, Knight))
}

// generateCastlingMoves emits castling when the right is held, the path is
// clear and the king's origin, crossing and destination squares are all
// safe from the opponent.
func (p *Position) generateCastlingMoves(ml *MoveList, us Color) {
	them := us.Other()

	if us == White {
		if p.CastlingRights&WhiteKingSideCastle != 0 &&
			p.AllOccupied&(SquareBB(F1)|SquareBB(G1)) == 0 &&
			!p.IsSquareAttacked(E1, them) && !p.IsSquareAttacked(F1, them) && !p.IsSquareAttacked(G1, them) {
			ml.Add(NewCastling(E1, G1))
		}
		if p.CastlingRights&WhiteQueenSideCastle != 0 &&
			p.AllOccupied&(SquareBB(B1)|SquareBB(C1)|SquareBB(D1)) == 0 &&
			!p.IsSquareAttacked(E1, them) && !p.IsSquareAttacked(D1, them) && !p.IsSquareAttacked(C1, them) {
			ml.Add(NewCastling(E1, C1))
		}
		return
	}

	if p.CastlingRights&BlackKingSideCastle != 0 &&
		p.AllOccupied&(SquareBB(F8)|SquareBB(G8)) == 0 &&
		!p.IsSquareAttacked(E8, them) && !p.IsSquareAttacked(F8, them) && !p.IsSquareAttacked(G8, them) {
		ml.Add(NewCastling(E8, G8))
	}
	if p.CastlingRights&BlackQueenSideCastle != 0 &&
		p.AllOccupied&(SquareBB(B8)|SquareBB(C8)|SquareBB(D8)) == 0 &&
		!p.IsSquareAttacked(E8, them) && !p.IsSquareAttacked(D8, them) && !p.IsSquareAttacked(C8, them) {
		ml.Add(NewCastling(E8, C8))
	}
}

// IsLegal reports whether m leaves the mover's own king safe, decided by
// trial application.
func (p *Position) IsLegal(m Move) bool {
	us := p.SideToMove
	undo := p.MakeMove(m)
	legal := !p.KingInCheck(us)
	p.UnmakeMove(m, undo)
	return legal
}

// GenerateLegalMoves returns the fully legal move list. The search prefers
// the pseudo-legal generator with inline filtering; this form serves the
// adapter, perft and tests.
func (p *Position) GenerateLegalMoves() *MoveList {
	var pseudo MoveList
	p.GeneratePseudoLegalMoves(&pseudo)

	legal := &MoveList{}
	for i := 0; i < pseudo.Len(); i++ {
		if m := pseudo.Get(i); p.IsLegal(m) {
			legal.Add(m)
		}
	}
	return legal
}

// HasLegalMoves reports whether the side to move has any legal move.
func (p *Position) HasLegalMoves() bool {
	var pseudo MoveList
	p.GeneratePseudoLegalMoves(&pseudo)
	for i := 0; i < pseudo.Len(); i++ {
		if p.IsLegal(pseudo.Get(i)) {
			return true
		}
	}
	return false
}

// IsCheckmate reports whether the side to move is mated.
func (p *Position) IsCheckmate() bool {
	return p.InCheck() && !p.HasLegalMoves()
}

// IsStalemate reports whether the side to move is stalemated.
func (p *Position) IsStalemate() bool {
	return !p.InCheck() && !p.HasLegalMoves()
}
