package board

import "errors"

// Error kinds reported to the protocol adapter. Parsing errors are raised
// before the position is mutated; an illegal move leaves the position
// unchanged.
var (
	ErrInvalidFEN        = errors.New("invalid fen")
	ErrInvalidMoveSyntax = errors.New("invalid move syntax")
	ErrIllegalMove       = errors.New("illegal move")
)
