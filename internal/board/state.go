package board

import (
	"fmt"
	"slices"
)

// Board is the 8x8 grid of square contents, indexed by Square.
type Board [64]Piece

// Status is the terminal classification computed by GenerateLegalMoves.
type Status uint8

const (
	Ongoing Status = iota
	Checkmate
	Stalemate
	FiftyMoveRule
	Repetition
	InsufficientMaterial
)

// String returns a short description of the status.
func (st Status) String() string {
	switch st {
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case FiftyMoveRule:
		return "draw by fifty-move rule"
	case Repetition:
		return "draw by threefold repetition"
	case InsufficientMaterial:
		return "draw by insufficient material"
	default:
		return "ongoing"
	}
}

// IsDraw reports whether st ends the game without a winner.
func (st Status) IsDraw() bool {
	return st != Ongoing && st != Checkmate
}

// GameState is a complete, mutable chess game. It is owned by one caller at
// a time; concurrent searches must work on clones.
//
// Every history slice holds one entry per applied move plus the initial
// value, and its last entry is the current value.
type GameState struct {
	board      Board
	sideToMove Color
	kingSquare [2]Square
	hash       uint64

	castleLog    []CastlingRights
	enPassantLog []Square
	clockLog     []int
	boardLog     []uint64
	moveLog      []Move

	startSide     Color
	startFullMove int

	status Status

	// scratch backs the reverse move generation in IsSquareAttacked.
	scratch []Move
}

// NewGameState creates the starting position.
func NewGameState() *GameState {
	s, _ := ParseFEN(StartFEN)
	return s
}

// newGameState wraps a board and its initial state values.
func newGameState(b Board, side Color, cr CastlingRights, ep Square, clock, fullMove int) *GameState {
	s := &GameState{
		board:         b,
		sideToMove:    side,
		kingSquare:    [2]Square{NoSquare, NoSquare},
		hash:          b.Hash(),
		startSide:     side,
		startFullMove: fullMove,
		scratch:       make([]Move, 0, 32),
	}
	for sq, p := range b {
		if p.Type() == King {
			s.kingSquare[p.Color()] = Square(sq)
		}
	}
	s.castleLog = []CastlingRights{cr}
	s.enPassantLog = []Square{ep}
	s.clockLog = []int{clock}
	s.boardLog = []uint64{s.hash}
	return s
}

// Clone creates a deep copy of the state, history included.
func (s *GameState) Clone() *GameState {
	c := *s
	c.castleLog = slices.Clone(s.castleLog)
	c.enPassantLog = slices.Clone(s.enPassantLog)
	c.clockLog = slices.Clone(s.clockLog)
	c.boardLog = slices.Clone(s.boardLog)
	c.moveLog = slices.Clone(s.moveLog)
	c.scratch = make([]Move, 0, cap(s.scratch))
	return &c
}

// SideToMove returns the color to move.
func (s *GameState) SideToMove() Color {
	return s.sideToMove
}

// PieceAt returns the piece at the given square, or Empty.
func (s *GameState) PieceAt(sq Square) Piece {
	return s.board[sq]
}

// Board returns a copy of the board.
func (s *GameState) Board() Board {
	return s.board
}

// KingSquare returns the cached king location of color c.
func (s *GameState) KingSquare(c Color) Square {
	return s.kingSquare[c]
}

// CastlingRights returns the current castling rights.
func (s *GameState) CastlingRights() CastlingRights {
	return s.castleLog[len(s.castleLog)-1]
}

// EnPassant returns the en passant target square, or NoSquare.
func (s *GameState) EnPassant() Square {
	return s.enPassantLog[len(s.enPassantLog)-1]
}

// HalfMoveClock returns the plies since the last capture or pawn move.
func (s *GameState) HalfMoveClock() int {
	return s.clockLog[len(s.clockLog)-1]
}

// FullMoveNumber returns the FEN full move counter.
func (s *GameState) FullMoveNumber() int {
	plies := len(s.moveLog)
	if s.startSide == Black {
		plies++
	}
	return s.startFullMove + plies/2
}

// Hash returns the board key of the current position.
func (s *GameState) Hash() uint64 {
	return s.hash
}

// MoveLog returns the applied moves, oldest first.
func (s *GameState) MoveLog() []Move {
	return slices.Clone(s.moveLog)
}

// Ply returns the number of applied moves.
func (s *GameState) Ply() int {
	return len(s.moveLog)
}

// LastMove returns the most recently applied move.
func (s *GameState) LastMove() (Move, bool) {
	if len(s.moveLog) == 0 {
		return Move{}, false
	}
	return s.moveLog[len(s.moveLog)-1], true
}

// Status returns the terminal classification from the last call to
// GenerateLegalMoves. ApplyMove and UndoMove do not recompute it.
func (s *GameState) Status() Status {
	return s.status
}

// Checkmate reports whether the side to move was found checkmated.
func (s *GameState) Checkmate() bool {
	return s.status == Checkmate
}

// Stalemate reports whether the position was found drawn, either by
// stalemate proper or by one of the draw rules.
func (s *GameState) Stalemate() bool {
	return s.status.IsDraw()
}

// RepetitionCount returns how often the current board occurs in the history,
// the current occurrence included.
func (s *GameState) RepetitionCount() int {
	n := 0
	for _, key := range s.boardLog {
		if key == s.hash {
			n++
		}
	}
	return n
}

// MoveFor builds a candidate move between two squares from the current board.
// The result carries no special flags; match it against the legal list with
// FindMove to obtain the playable move.
func (s *GameState) MoveFor(from, to Square) Move {
	return newMove(&s.board, from, to, 0)
}

// put places p on sq (Empty clears it) and keeps the board key in step.
func (s *GameState) put(sq Square, p Piece) {
	s.hash ^= zobristPiece[s.board[sq]][sq] ^ zobristPiece[p][sq]
	s.board[sq] = p
}

// ApplyMove plays m, which must come from GenerateLegalMoves. promo selects
// the promotion piece; anything other than a knight, bishop, rook or queen
// promotes to a queen.
func (s *GameState) ApplyMove(m Move, promo PieceType) {
	us := m.moved.Color()

	s.put(m.from, Empty)
	if m.IsEnPassant() {
		s.put(NewSquare(m.to.File(), m.from.Rank()), Empty)
	}
	s.put(m.to, m.moved)

	if m.moved.Type() == King {
		s.kingSquare[us] = m.to
	}

	if m.IsPromotion() {
		if !promo.IsPromotable() {
			promo = Queen
		}
		s.put(m.to, NewPiece(promo, us))
	}

	if m.IsCastling() {
		rookFrom, rookTo := castleRookSquares(m)
		s.put(rookTo, s.board[rookFrom])
		s.put(rookFrom, Empty)
	}

	ep := NoSquare
	if m.moved.Type() == Pawn && abs(m.to.Rank()-m.from.Rank()) == 2 {
		ep = NewSquare(m.from.File(), (m.from.Rank()+m.to.Rank())/2)
	}

	clock := s.HalfMoveClock() + 1
	if m.IsCapture() || m.moved.Type() == Pawn {
		clock = 0
	}

	s.castleLog = append(s.castleLog, s.CastlingRights().afterMove(m))
	s.enPassantLog = append(s.enPassantLog, ep)
	s.clockLog = append(s.clockLog, clock)
	s.boardLog = append(s.boardLog, s.hash)
	s.moveLog = append(s.moveLog, m)

	s.sideToMove = s.sideToMove.Other()
}

// UndoMove takes back the last applied move. It does nothing when no move has
// been applied.
func (s *GameState) UndoMove() {
	n := len(s.moveLog)
	if n == 0 {
		return
	}
	m := s.moveLog[n-1]
	us := m.moved.Color()

	if m.IsCastling() {
		rookFrom, rookTo := castleRookSquares(m)
		s.put(rookFrom, s.board[rookTo])
		s.put(rookTo, Empty)
	}

	s.put(m.from, m.moved)
	if m.IsEnPassant() {
		s.put(m.to, Empty)
		s.put(NewSquare(m.to.File(), m.from.Rank()), m.captured)
	} else {
		s.put(m.to, m.captured)
	}

	if m.moved.Type() == King {
		s.kingSquare[us] = m.from
	}

	s.moveLog = s.moveLog[:n-1]
	s.castleLog = s.castleLog[:n]
	s.enPassantLog = s.enPassantLog[:n]
	s.clockLog = s.clockLog[:n]
	s.boardLog = s.boardLog[:n]

	s.sideToMove = us
	s.status = Ongoing
}

// String returns a visual representation of the position.
func (s *GameState) String() string {
	out := "\n"
	for rank := 7; rank >= 0; rank-- {
		out += fmt.Sprintf("%d  ", rank+1)
		for file := 0; file < 8; file++ {
			p := s.board[NewSquare(file, rank)]
			if p == Empty {
				out += ". "
			} else {
				out += p.String() + " "
			}
		}
		out += "\n"
	}
	out += "\n   a b c d e f g h\n\n"
	out += fmt.Sprintf("Side to move: %s\n", s.sideToMove)
	out += fmt.Sprintf("Castling: %s\n", s.CastlingRights())
	out += fmt.Sprintf("En passant: %s\n", s.EnPassant())
	out += fmt.Sprintf("Half-move clock: %d\n", s.HalfMoveClock())
	out += fmt.Sprintf("Full move: %d\n", s.FullMoveNumber())
	return out
}

// validate checks the one-king-per-color and pawn placement invariants, and
// that the side that just moved did not leave its king in check.
func (s *GameState) validate() error {
	kings := [2]int{}
	for sq, p := range s.board {
		switch p.Type() {
		case King:
			kings[p.Color()]++
		case Pawn:
			if r := Square(sq).Rank(); r == 0 || r == 7 {
				return fmt.Errorf("%w: pawn on %s", ErrInvalidFEN, Square(sq))
			}
		}
	}
	if kings[White] != 1 {
		return fmt.Errorf("%w: white must have exactly one king", ErrInvalidFEN)
	}
	if kings[Black] != 1 {
		return fmt.Errorf("%w: black must have exactly one king", ErrInvalidFEN)
	}

	s.sideToMove = s.sideToMove.Other()
	exposed := s.IsInCheck()
	s.sideToMove = s.sideToMove.Other()
	if exposed {
		return fmt.Errorf("%w: %s king can be captured", ErrInvalidFEN, s.sideToMove.Other())
	}
	return nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
