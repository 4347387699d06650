package board

import (
	"strings"
)

// Move flags
const (
	flagEnPassant uint8 = 1 << iota
	flagCastle
	flagPromotion
)

// Move describes one ply. It is built from a board snapshot and is immutable
// afterwards; the zero value is not a valid move.
type Move struct {
	from     Square
	to       Square
	moved    Piece
	captured Piece
	flags    uint8
}

// newMove builds a move from the board as it stands before the move.
// Promotion is derived from the moved piece and destination rank.
func newMove(b *Board, from, to Square, flags uint8) Move {
	m := Move{
		from:  from,
		to:    to,
		moved: b[from],
		flags: flags,
	}
	if flags&flagEnPassant != 0 {
		m.captured = b[NewSquare(to.File(), from.Rank())]
	} else {
		m.captured = b[to]
	}
	if m.moved.Type() == Pawn && to.RelativeRank(m.moved.Color()) == 7 {
		m.flags |= flagPromotion
	}
	return m
}

// From returns the origin square.
func (m Move) From() Square {
	return m.from
}

// To returns the destination square.
func (m Move) To() Square {
	return m.to
}

// Piece returns the piece that moves.
func (m Move) Piece() Piece {
	return m.moved
}

// Captured returns the captured piece, or Empty.
func (m Move) Captured() Piece {
	return m.captured
}

// IsPromotion returns true if this is a promotion move.
func (m Move) IsPromotion() bool {
	return m.flags&flagPromotion != 0
}

// IsCastling returns true if this is a castling move.
func (m Move) IsCastling() bool {
	return m.flags&flagCastle != 0
}

// IsEnPassant returns true if this is an en passant capture.
func (m Move) IsEnPassant() bool {
	return m.flags&flagEnPassant != 0
}

// IsCapture returns true if this move captures a piece.
func (m Move) IsCapture() bool {
	return m.captured != Empty
}

// IsZero reports whether m is the zero Move.
func (m Move) IsZero() bool {
	return m == Move{}
}

// Key packs origin and destination into an integer: from | to<<6.
// Two moves are equal exactly when their keys are equal.
func (m Move) Key() uint16 {
	return uint16(m.from) | uint16(m.to)<<6
}

// Equal reports whether m and o connect the same origin and destination.
// In a legal position at most one legal move does.
func (m Move) Equal(o Move) bool {
	return m.from == o.from && m.to == o.to
}

// String returns the long algebraic form of the move (e.g., "e2e4").
func (m Move) String() string {
	if m.IsZero() {
		return "0000"
	}
	return m.from.String() + m.to.String()
}

// ToNotation returns the short notation used in the move log.
// promo names the promotion piece; NoPieceType is shown as a queen.
func (m Move) ToNotation(promo PieceType) string {
	var sb strings.Builder
	pt := m.moved.Type()

	switch {
	case m.IsCastling():
		if m.to.File() < m.from.File() {
			return "O-O-O"
		}
		return "O-O"
	case m.IsPromotion():
		if !promo.IsPromotable() {
			promo = Queen
		}
		sb.WriteString(m.to.String())
		sb.WriteByte('=')
		sb.WriteString(promo.Letter())
	case m.IsCapture() && pt != Pawn:
		sb.WriteString(pt.Letter())
		sb.WriteByte('x')
		sb.WriteString(m.to.String())
	case m.IsCapture():
		sb.WriteByte(byte('a' + m.from.File()))
		sb.WriteByte('x')
		sb.WriteString(m.to.String())
	case pt == Pawn:
		sb.WriteString(m.to.String())
	default:
		sb.WriteString(pt.Letter())
		sb.WriteString(m.to.String())
	}

	return sb.String()
}

// FindMove returns the entry of moves equal to candidate. A false result is an
// invalid move request: the caller discards the selection and retries.
func FindMove(moves []Move, candidate Move) (Move, bool) {
	for _, m := range moves {
		if m.Equal(candidate) {
			return m, true
		}
	}
	return Move{}, false
}

// ParseMove parses a long algebraic move ("e2e4", "e7e8q") against a legal
// move list and returns the matching move and requested promotion piece.
func ParseMove(s string, moves []Move) (Move, PieceType, error) {
	s = strings.TrimSpace(s)
	if len(s) != 4 && len(s) != 5 {
		return Move{}, NoPieceType, ErrInvalidMove
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return Move{}, NoPieceType, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return Move{}, NoPieceType, err
	}

	promo := NoPieceType
	if len(s) == 5 {
		switch s[4] {
		case 'n', 'N':
			promo = Knight
		case 'b', 'B':
			promo = Bishop
		case 'r', 'R':
			promo = Rook
		case 'q', 'Q':
			promo = Queen
		default:
			return Move{}, NoPieceType, ErrInvalidMove
		}
	}

	m, ok := FindMove(moves, Move{from: from, to: to})
	if !ok {
		return Move{}, NoPieceType, ErrInvalidMove
	}
	return m, promo, nil
}
