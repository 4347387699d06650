package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN parses a FEN string and returns a fresh GameState with an empty
// move history. Castling rights whose king or rook is not on its home square
// are dropped, as is an en passant square no double push could have left.
func ParseFEN(fen string) (*GameState, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return nil, fmt.Errorf("%w: need at least 4 fields, got %d", ErrInvalidFEN, len(parts))
	}

	var b Board
	if err := parsePiecePlacement(&b, parts[0]); err != nil {
		return nil, err
	}

	var side Color
	switch parts[1] {
	case "w":
		side = White
	case "b":
		side = Black
	default:
		return nil, fmt.Errorf("%w: invalid side to move %q", ErrInvalidFEN, parts[1])
	}

	cr, err := parseCastlingRights(parts[2])
	if err != nil {
		return nil, err
	}

	ep := NoSquare
	if parts[3] != "-" {
		sq, err := ParseSquare(parts[3])
		if err != nil {
			return nil, fmt.Errorf("%w: invalid en passant square %q", ErrInvalidFEN, parts[3])
		}
		ep = sq
	}

	clock := 0
	if len(parts) > 4 {
		clock, err = strconv.Atoi(parts[4])
		if err != nil || clock < 0 {
			return nil, fmt.Errorf("%w: invalid half-move clock %q", ErrInvalidFEN, parts[4])
		}
	}

	fullMove := 1
	if len(parts) > 5 {
		fullMove, err = strconv.Atoi(parts[5])
		if err != nil || fullMove < 1 {
			return nil, fmt.Errorf("%w: invalid full-move number %q", ErrInvalidFEN, parts[5])
		}
	}

	s := newGameState(b, side, sanitizeCastling(&b, cr), sanitizeEnPassant(&b, side, ep), clock, fullMove)
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// MustParseFEN is like ParseFEN but panics on error. Intended for fixed
// positions in tests and tables.
func MustParseFEN(fen string) *GameState {
	s, err := ParseFEN(fen)
	if err != nil {
		panic(err)
	}
	return s
}

// parsePiecePlacement parses the piece placement section of a FEN string.
func parsePiecePlacement(b *Board, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("%w: need 8 ranks, got %d", ErrInvalidFEN, len(ranks))
	}

	for i, rankStr := range ranks {
		rank := 7 - i // FEN starts from rank 8
		file := 0

		for _, c := range rankStr {
			if file > 7 {
				return fmt.Errorf("%w: too many squares in rank %d", ErrInvalidFEN, rank+1)
			}

			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}

			p := PieceFromChar(byte(c))
			if p == Empty {
				return fmt.Errorf("%w: invalid piece character %q", ErrInvalidFEN, c)
			}
			b[NewSquare(file, rank)] = p
			file++
		}

		if file != 8 {
			return fmt.Errorf("%w: invalid number of squares in rank %d: got %d", ErrInvalidFEN, rank+1, file)
		}
	}

	return nil
}

// parseCastlingRights parses the castling rights section of a FEN string.
func parseCastlingRights(castling string) (CastlingRights, error) {
	if castling == "-" {
		return NoCastling, nil
	}

	var cr CastlingRights
	for _, c := range castling {
		switch c {
		case 'K':
			cr |= WhiteKingSideCastle
		case 'Q':
			cr |= WhiteQueenSideCastle
		case 'k':
			cr |= BlackKingSideCastle
		case 'q':
			cr |= BlackQueenSideCastle
		default:
			return NoCastling, fmt.Errorf("%w: invalid castling character %q", ErrInvalidFEN, c)
		}
	}

	return cr, nil
}

// sanitizeEnPassant keeps ep only if it lies on the rank the opponent's pawn
// just skipped, with that pawn one square beyond it and both the skipped and
// the origin squares empty.
func sanitizeEnPassant(b *Board, side Color, ep Square) Square {
	if !ep.IsValid() {
		return NoSquare
	}
	them := side.Other()
	if ep.RelativeRank(them) != 2 {
		return NoSquare
	}
	dir := pawnDirection(them) * 8
	pushed := Square(int(ep) + dir)
	origin := Square(int(ep) - dir)
	if b[pushed] != NewPiece(Pawn, them) || b[ep] != Empty || b[origin] != Empty {
		return NoSquare
	}
	return ep
}

// sanitizeCastling keeps only the rights whose king and rook stand on their
// home squares.
func sanitizeCastling(b *Board, cr CastlingRights) CastlingRights {
	for _, c := range [2]Color{White, Black} {
		home := 0
		if c == Black {
			home = 7
		}
		if b[NewSquare(4, home)] != NewPiece(King, c) {
			cr &^= castleRight(c, true) | castleRight(c, false)
			continue
		}
		if b[NewSquare(7, home)] != NewPiece(Rook, c) {
			cr &^= castleRight(c, true)
		}
		if b[NewSquare(0, home)] != NewPiece(Rook, c) {
			cr &^= castleRight(c, false)
		}
	}
	return cr
}

// ToFEN returns the FEN representation of the position.
func (s *GameState) ToFEN() string {
	var sb strings.Builder

	// Piece placement
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			p := s.board[NewSquare(file, rank)]
			if p == Empty {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(p.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	// Side to move
	sb.WriteByte(' ')
	if s.sideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteByte(' ')
	sb.WriteString(s.CastlingRights().String())

	sb.WriteByte(' ')
	sb.WriteString(s.EnPassant().String())

	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(s.HalfMoveClock()))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(s.FullMoveNumber()))

	return sb.String()
}
