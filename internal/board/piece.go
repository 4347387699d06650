package board

// Color represents the color of a piece or player.
type Color uint8

const (
	White Color = iota
	Black
	NoColor Color = 2
)

// Other returns the opposite color.
func (c Color) Other() Color {
	return c ^ 1
}

// String returns the color name.
func (c Color) String() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return "NoColor"
	}
}

// PieceType represents the type of a chess piece.
// The zero value is NoPieceType so an unset promotion choice is explicit.
type PieceType uint8

const (
	NoPieceType PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// String returns the piece type name.
func (pt PieceType) String() string {
	switch pt {
	case Pawn:
		return "Pawn"
	case Knight:
		return "Knight"
	case Bishop:
		return "Bishop"
	case Rook:
		return "Rook"
	case Queen:
		return "Queen"
	case King:
		return "King"
	default:
		return "None"
	}
}

// Letter returns the uppercase notation letter for the piece type.
// Pawns have no letter.
func (pt PieceType) Letter() string {
	switch pt {
	case Knight:
		return "N"
	case Bishop:
		return "B"
	case Rook:
		return "R"
	case Queen:
		return "Q"
	case King:
		return "K"
	default:
		return ""
	}
}

// IsPromotable reports whether a pawn may promote to pt.
func (pt PieceType) IsPromotable() bool {
	return pt >= Knight && pt <= Queen
}

// IsMinor reports whether pt is a bishop or a knight.
func (pt PieceType) IsMinor() bool {
	return pt == Knight || pt == Bishop
}

// Piece is the content of a square: Empty, or a color and a piece type.
// Encoded as pieceType | color<<3, so the zero value is Empty.
type Piece uint8

const (
	Empty Piece = 0

	WhitePawn   Piece = Piece(Pawn) | Piece(White)<<3
	WhiteKnight Piece = Piece(Knight) | Piece(White)<<3
	WhiteBishop Piece = Piece(Bishop) | Piece(White)<<3
	WhiteRook   Piece = Piece(Rook) | Piece(White)<<3
	WhiteQueen  Piece = Piece(Queen) | Piece(White)<<3
	WhiteKing   Piece = Piece(King) | Piece(White)<<3
	BlackPawn   Piece = Piece(Pawn) | Piece(Black)<<3
	BlackKnight Piece = Piece(Knight) | Piece(Black)<<3
	BlackBishop Piece = Piece(Bishop) | Piece(Black)<<3
	BlackRook   Piece = Piece(Rook) | Piece(Black)<<3
	BlackQueen  Piece = Piece(Queen) | Piece(Black)<<3
	BlackKing   Piece = Piece(King) | Piece(Black)<<3

	pieceLimit = 16
)

// NewPiece creates a Piece from PieceType and Color.
func NewPiece(pt PieceType, c Color) Piece {
	if pt == NoPieceType || pt > King || c >= NoColor {
		return Empty
	}
	return Piece(pt) | Piece(c)<<3
}

// Type returns the PieceType of the piece.
func (p Piece) Type() PieceType {
	return PieceType(p & 7)
}

// Color returns the Color of the piece, or NoColor for Empty.
func (p Piece) Color() Color {
	if p == Empty {
		return NoColor
	}
	return Color(p >> 3)
}

// IsEmpty reports whether p is the Empty sentinel.
func (p Piece) IsEmpty() bool {
	return p == Empty
}

// Is reports whether p is a piece of color c and type pt.
func (p Piece) Is(c Color, pt PieceType) bool {
	return p != Empty && p == NewPiece(pt, c)
}

// String returns the FEN character for the piece.
// Uppercase for white, lowercase for black.
func (p Piece) String() string {
	if p == Empty {
		return " "
	}
	chars := " PNBRQK"
	ch := chars[p.Type()]
	if p.Color() == Black {
		ch += 'a' - 'A'
	}
	return string(ch)
}

// PieceFromChar converts a FEN character to a Piece.
func PieceFromChar(c byte) Piece {
	switch c {
	case 'P':
		return WhitePawn
	case 'N':
		return WhiteKnight
	case 'B':
		return WhiteBishop
	case 'R':
		return WhiteRook
	case 'Q':
		return WhiteQueen
	case 'K':
		return WhiteKing
	case 'p':
		return BlackPawn
	case 'n':
		return BlackKnight
	case 'b':
		return BlackBishop
	case 'r':
		return BlackRook
	case 'q':
		return BlackQueen
	case 'k':
		return BlackKing
	default:
		return Empty
	}
}
