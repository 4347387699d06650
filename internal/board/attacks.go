package board

// IsInCheck returns true if the king of the side to move is attacked.
func (s *GameState) IsInCheck() bool {
	return s.IsSquareAttacked(s.kingSquare[s.sideToMove])
}

// IsSquareAttacked reports whether the opponent of the side to move attacks
// sq.
//
// Instead of walking every enemy piece it generates moves outward from sq as
// if sq held each piece type in turn: a rook line that ends on an enemy rook
// or queen, a bishop line ending on an enemy bishop or queen, a knight jump
// onto an enemy knight and so on. The generators are the same ones used for
// move generation, so the square does not need to be occupied.
func (s *GameState) IsSquareAttacked(sq Square) bool {
	if !sq.IsValid() {
		return false
	}
	us := s.sideToMove
	them := us.Other()

	if s.reverseHits(sq, us, rookDirections, true, them, Rook, Queen) ||
		s.reverseHits(sq, us, bishopDirections, true, them, Bishop, Queen) ||
		s.reverseHits(sq, us, knightJumps, false, them, Knight, Knight) ||
		s.reverseHits(sq, us, kingSteps, false, them, King, King) {
		return true
	}

	// An enemy pawn attacks sq from one rank ahead of it, seen from us.
	dir := pawnDirection(us)
	for _, df := range [2]int{-1, 1} {
		if from, ok := sq.offset(df, dir); ok && s.board[from].Is(them, Pawn) {
			return true
		}
	}
	return false
}

// reverseHits generates the pattern from sq and reports whether any capture
// lands on an enemy piece of type a or b.
func (s *GameState) reverseHits(sq Square, us Color, pattern [][2]int, sliding bool, them Color, a, b PieceType) bool {
	buf := s.scratch[:0]
	if sliding {
		buf = s.appendSliding(buf, sq, us, pattern)
	} else {
		buf = s.appendSteps(buf, sq, us, pattern)
	}
	s.scratch = buf[:0]

	for _, m := range buf {
		if m.captured.Is(them, a) || m.captured.Is(them, b) {
			return true
		}
	}
	return false
}
