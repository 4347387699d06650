package board

// Direction tables as (file, rank) steps.
var (
	rookDirections   = [][2]int{{0, 1}, {1, 0}, {0, -1}, {-1, 0}}
	bishopDirections = [][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	knightJumps      = [][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingSteps        = [][2]int{{0, 1}, {1, 1}, {1, 0}, {1, -1}, {0, -1}, {-1, -1}, {-1, 0}, {-1, 1}}
)

// pawnDirection returns the rank step of a pawn of color c.
func pawnDirection(c Color) int {
	if c == White {
		return 1
	}
	return -1
}

// GenerateLegalMoves returns every legal move for the side to move and
// classifies the position. The classification, checked in order, is:
// checkmate or stalemate when no move exists, then the fifty-move rule,
// threefold repetition and insufficient material.
func (s *GameState) GenerateLegalMoves() []Move {
	moves := s.generatePseudoLegal()
	us := s.sideToMove

	legal := moves[:0]
	for _, m := range moves {
		s.ApplyMove(m, Queen)
		s.sideToMove = us
		exposed := s.IsInCheck()
		s.sideToMove = us.Other()
		s.UndoMove()
		if !exposed {
			legal = append(legal, m)
		}
	}

	s.status = s.classify(len(legal) == 0)
	return legal
}

// classify computes the terminal status for the current position.
func (s *GameState) classify(noMoves bool) Status {
	switch {
	case noMoves && s.IsInCheck():
		return Checkmate
	case noMoves:
		return Stalemate
	case s.HalfMoveClock() >= 100:
		return FiftyMoveRule
	case s.RepetitionCount() >= 3:
		return Repetition
	case s.insufficientMaterial():
		return InsufficientMaterial
	}
	return Ongoing
}

// insufficientMaterial reports whether only the kings and at most one minor
// piece, counted over both sides, remain.
func (s *GameState) insufficientMaterial() bool {
	minors := 0
	for _, p := range s.board {
		switch pt := p.Type(); {
		case p == Empty, pt == King:
		case pt.IsMinor():
			minors++
			if minors > 1 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// generatePseudoLegal returns the moves of the side to move without the
// own-king safety filter.
func (s *GameState) generatePseudoLegal() []Move {
	us := s.sideToMove
	moves := make([]Move, 0, 64)

	for i, p := range s.board {
		if p == Empty || p.Color() != us {
			continue
		}
		sq := Square(i)
		switch p.Type() {
		case Pawn:
			moves = s.appendPawnMoves(moves, sq, us)
		case Knight:
			moves = s.appendSteps(moves, sq, us, knightJumps)
		case Bishop:
			moves = s.appendSliding(moves, sq, us, bishopDirections)
		case Rook:
			moves = s.appendSliding(moves, sq, us, rookDirections)
		case Queen:
			moves = s.appendSliding(moves, sq, us, rookDirections)
			moves = s.appendSliding(moves, sq, us, bishopDirections)
		case King:
			moves = s.appendSteps(moves, sq, us, kingSteps)
			moves = s.appendCastling(moves, sq, us)
		}
	}

	return moves
}

// appendSliding walks each direction until it leaves the board, stopping
// after the first occupied square and keeping it only if it holds an enemy.
func (s *GameState) appendSliding(moves []Move, from Square, us Color, dirs [][2]int) []Move {
	for _, d := range dirs {
		to, ok := from.offset(d[0], d[1])
		for ok {
			target := s.board[to]
			if target == Empty {
				moves = append(moves, newMove(&s.board, from, to, 0))
			} else {
				if target.Color() != us {
					moves = append(moves, newMove(&s.board, from, to, 0))
				}
				break
			}
			to, ok = to.offset(d[0], d[1])
		}
	}
	return moves
}

// appendSteps adds one move per fixed offset landing on an empty or enemy
// square.
func (s *GameState) appendSteps(moves []Move, from Square, us Color, offsets [][2]int) []Move {
	for _, d := range offsets {
		to, ok := from.offset(d[0], d[1])
		if !ok {
			continue
		}
		if target := s.board[to]; target == Empty || target.Color() != us {
			moves = append(moves, newMove(&s.board, from, to, 0))
		}
	}
	return moves
}

// appendPawnMoves adds single and double pushes, diagonal captures and the
// en passant capture onto the tracked target square.
func (s *GameState) appendPawnMoves(moves []Move, from Square, us Color) []Move {
	dir := pawnDirection(us)

	if one, ok := from.offset(0, dir); ok && s.board[one] == Empty {
		moves = append(moves, newMove(&s.board, from, one, 0))
		if from.RelativeRank(us) == 1 {
			if two, ok := one.offset(0, dir); ok && s.board[two] == Empty {
				moves = append(moves, newMove(&s.board, from, two, 0))
			}
		}
	}

	ep := s.EnPassant()
	for _, df := range [2]int{-1, 1} {
		to, ok := from.offset(df, dir)
		if !ok {
			continue
		}
		target := s.board[to]
		switch {
		case target != Empty && target.Color() != us:
			moves = append(moves, newMove(&s.board, from, to, 0))
		case target == Empty && to == ep:
			moves = append(moves, newMove(&s.board, from, to, flagEnPassant))
		}
	}

	return moves
}

// appendCastling adds the castling king moves allowed by the tracked rights.
// The king may not be in check, the squares between king and rook must be
// empty, and the squares the king crosses and lands on must be safe.
func (s *GameState) appendCastling(moves []Move, from Square, us Color) []Move {
	rights := s.CastlingRights()
	if !rights.CanCastle(us, true) && !rights.CanCastle(us, false) {
		return moves
	}
	if s.IsInCheck() {
		return moves
	}

	rank := from.Rank()
	if rights.CanCastle(us, true) {
		f, g := NewSquare(5, rank), NewSquare(6, rank)
		if s.board[f] == Empty && s.board[g] == Empty &&
			!s.IsSquareAttacked(f) && !s.IsSquareAttacked(g) {
			moves = append(moves, newMove(&s.board, from, g, flagCastle))
		}
	}
	if rights.CanCastle(us, false) {
		d, c, b := NewSquare(3, rank), NewSquare(2, rank), NewSquare(1, rank)
		if s.board[d] == Empty && s.board[c] == Empty && s.board[b] == Empty &&
			!s.IsSquareAttacked(d) && !s.IsSquareAttacked(c) {
			moves = append(moves, newMove(&s.board, from, c, flagCastle))
		}
	}

	return moves
}
