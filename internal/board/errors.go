package board

import "errors"

// Sentinel errors returned by the parsing helpers. The rules core itself never
// returns errors; see FindMove and the terminal flags instead.
var (
	// ErrInvalidFEN indicates a malformed FEN string.
	ErrInvalidFEN = errors.New("invalid FEN string")

	// ErrInvalidSquare indicates a malformed algebraic square name.
	ErrInvalidSquare = errors.New("invalid square")

	// ErrInvalidMove indicates a move string that names no legal move.
	ErrInvalidMove = errors.New("invalid move")
)
