package board

import "fmt"

// Move encodes a chess move in 16 bits:
//
//	bits 0-5   from square
//	bits 6-11  to square
//	bits 12-13 promotion piece (0=Knight .. 3=Queen)
//	bits 14-15 kind (normal, promotion, en passant, castling)
//
// Two moves are the same move iff the packed values are equal; the moving
// piece is implied by the from square, so this identity is what the
// transposition table stores and the orderer matches against.
type Move uint16

const (
	flagNormal    Move = 0 << 14
	flagPromotion Move = 1 << 14
	flagEnPassant Move = 2 << 14
	flagCastling  Move = 3 << 14
)

// NoMove is the null move; it prints as "0000".
const NoMove Move = 0

// NewMove creates an ordinary move (quiet or capture).
func NewMove(from, to Square) Move {
	return Move(from) | Move(to)<<6
}

// NewPromotion creates a promotion move to the given piece type.
func NewPromotion(from, to Square, promo PieceType) Move {
	return Move(from) | Move(to)<<6 | Move(promo-Knight)<<12 | flagPromotion
}

// NewEnPassant creates an en passant capture.
func NewEnPassant(from, to Square) Move {
	return Move(from) | Move(to)<<6 | flagEnPassant
}

// NewCastling creates a castling move expressed as the king's two-file hop.
func NewCastling(from, to Square) Move {
	return Move(from) | Move(to)<<6 | flagCastling
}

// From returns the origin square.
func (m Move) From() Square {
	return Square(m & 0x3F)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square((m >> 6) & 0x3F)
}

// Promotion returns the promoted piece type; only meaningful when
// IsPromotion reports true.
func (m Move) Promotion() PieceType {
	return PieceType((m>>12)&3) + Knight
}

// IsPromotion reports whether m promotes a pawn.
func (m Move) IsPromotion() bool {
	return m&(3<<14) == flagPromotion
}

// IsEnPassant reports whether m is an en passant capture.
func (m Move) IsEnPassant() bool {
	return m&(3<<14) == flagEnPassant
}

// IsCastling reports whether m is a castling move.
func (m Move) IsCastling() bool {
	return m&(3<<14) == flagCastling
}

// IsCapture reports whether m captures a piece in pos.
func (m Move) IsCapture(pos *Position) bool {
	return m.IsEnPassant() || !pos.IsEmpty(m.To())
}

// String returns the coordinate notation ("e2e4", "e7e8q", "0000").
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += string("nbrq"[m.Promotion()-Knight])
	}
	return s
}

// ParseMove parses coordinate notation against pos. A king moving two files
// becomes castling; a pawn stepping diagonally onto the en passant square
// becomes an en passant capture. The position itself is not modified and
// no legality check is performed here.
func ParseMove(s string, pos *Position) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return NoMove, fmt.Errorf("%w: %q", ErrInvalidMoveSyntax, s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}

	if len(s) == 5 {
		var promo PieceType
		switch s[4] {
		case 'n':
			promo = Knight
		case 'b':
			promo = Bishop
		case 'r':
			promo = Rook
		case 'q':
			promo = Queen
		default:
			return NoMove, fmt.Errorf("%w: promotion %q", ErrInvalidMoveSyntax, s)
		}
		return NewPromotion(from, to, promo), nil
	}

	piece := pos.PieceAt(from)
	if piece == NoPiece {
		return NoMove, fmt.Errorf("%w: no piece on %s", ErrIllegalMove, from)
	}

	switch {
	case piece.Type() == King && fileDistance(from, to) == 2:
		return NewCastling(from, to), nil
	case piece.Type() == Pawn && to == pos.EnPassant && from.File() != to.File():
		return NewEnPassant(from, to), nil
	}
	return NewMove(from, to), nil
}

func fileDistance(a, b Square) int {
	d := a.File() - b.File()
	if d < 0 {
		d = -d
	}
	return d
}

// MoveList is a fixed-capacity move buffer; generation never allocates.
type MoveList struct {
	moves [256]Move
	count int
}

// Add appends a move.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves held.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Swap exchanges two moves.
func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}

// Contains reports whether m is in the list.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice returns the live moves as a slice backed by the list.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}

// UndoInfo snapshots the state MakeMove destroys. UnmakeMove restores the
// position bit-identically, hash included.
type UndoInfo struct {
	Captured       Piece
	CastlingRights CastlingRights
	EnPassant      Square
	HalfMoveClock  int
	Hash           uint64
	KingSquare     [2]Square
	Pieces         [2][6]Bitboard
	Occupied       [2]Bitboard
	AllOccupied    Bitboard
}
