package board

// CastlingRights represents the available castling options.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                            // q
	NoCastling           CastlingRights = 0
	AllCastling          CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String returns the FEN castling rights string.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	s := ""
	if cr&WhiteKingSideCastle != 0 {
		s += "K"
	}
	if cr&WhiteQueenSideCastle != 0 {
		s += "Q"
	}
	if cr&BlackKingSideCastle != 0 {
		s += "k"
	}
	if cr&BlackQueenSideCastle != 0 {
		s += "q"
	}
	return s
}

// castleRight returns the single flag for a color and wing.
func castleRight(c Color, kingSide bool) CastlingRights {
	if c == White {
		if kingSide {
			return WhiteKingSideCastle
		}
		return WhiteQueenSideCastle
	}
	if kingSide {
		return BlackKingSideCastle
	}
	return BlackQueenSideCastle
}

// CanCastle returns true if the given side can castle in the given direction.
func (cr CastlingRights) CanCastle(c Color, kingSide bool) bool {
	return cr&castleRight(c, kingSide) != 0
}

// afterMove returns the rights left once m has been played. Rights only ever
// shrink: a king move drops both wings, and a rook leaving or being captured
// on its home corner drops that wing.
func (cr CastlingRights) afterMove(m Move) CastlingRights {
	mover := m.moved.Color()

	switch m.moved.Type() {
	case King:
		cr &^= castleRight(mover, true) | castleRight(mover, false)
	case Rook:
		cr &^= cornerRight(m.from, mover)
	}
	if m.captured.Type() == Rook {
		cr &^= cornerRight(m.to, m.captured.Color())
	}
	return cr
}

// cornerRight returns the right tied to a rook of color c on sq, if sq is one
// of that color's home corners.
func cornerRight(sq Square, c Color) CastlingRights {
	home := 0
	if c == Black {
		home = 7
	}
	if sq.Rank() != home {
		return NoCastling
	}
	switch sq.File() {
	case 0:
		return castleRight(c, false)
	case 7:
		return castleRight(c, true)
	}
	return NoCastling
}

// castleRookSquares returns the rook origin and destination for a castling
// king move.
func castleRookSquares(m Move) (from, to Square) {
	rank := m.to.Rank()
	if m.to.File() > m.from.File() {
		return NewSquare(7, rank), NewSquare(m.to.File()-1, rank)
	}
	return NewSquare(0, rank), NewSquare(m.to.File()+1, rank)
}
