// Package engine implements the chess AI: a static evaluator and a
// fixed-depth negamax alpha-beta search.
package engine

import (
	"github.com/hailam/chesscore/internal/board"
)

// MateValue is the score of a checkmate, signed against the mated side.
const MateValue = 1000.0

// positionalWeight scales a piece-square entry against material.
const positionalWeight = 0.1

// Material values indexed by PieceType. The king is not counted.
var pieceValues = [7]float64{
	board.Pawn:   1,
	board.Knight: 3,
	board.Bishop: 3,
	board.Rook:   5,
	board.Queen:  9,
	board.King:   0,
}

// Piece-square tables. Rows run from rank 8 (row 0) down to rank 1 (row 7),
// files a to h left to right, so each table reads like a diagram from
// white's side.
var (
	knightTable = [8][8]int{
		{1, 1, 1, 1, 1, 1, 1, 1},
		{1, 2, 2, 2, 2, 2, 2, 1},
		{1, 2, 3, 3, 3, 3, 2, 1},
		{1, 2, 3, 4, 4, 3, 2, 1},
		{1, 2, 3, 4, 4, 3, 2, 1},
		{1, 2, 3, 3, 3, 3, 2, 1},
		{1, 2, 2, 2, 2, 2, 2, 1},
		{1, 1, 1, 1, 1, 1, 1, 1},
	}

	bishopTable = [8][8]int{
		{4, 3, 2, 1, 1, 2, 3, 4},
		{3, 4, 3, 2, 2, 3, 4, 3},
		{2, 3, 4, 3, 3, 4, 3, 2},
		{1, 2, 3, 4, 4, 3, 2, 1},
		{1, 2, 3, 4, 4, 3, 2, 1},
		{2, 3, 4, 3, 3, 4, 3, 2},
		{3, 4, 3, 2, 2, 3, 4, 3},
		{4, 3, 2, 1, 1, 2, 3, 4},
	}

	queenTable = [8][8]int{
		{1, 1, 1, 3, 1, 1, 1, 1},
		{1, 2, 3, 3, 3, 1, 1, 1},
		{1, 4, 3, 3, 3, 4, 2, 1},
		{1, 2, 3, 3, 3, 2, 2, 1},
		{1, 2, 3, 3, 3, 2, 2, 1},
		{1, 4, 3, 3, 3, 4, 2, 1},
		{1, 1, 2, 3, 3, 1, 1, 1},
		{1, 1, 1, 3, 1, 1, 1, 1},
	}

	// Rooks prefer the seventh/second ranks and the back ranks.
	rookTable = [8][8]int{
		{4, 3, 4, 4, 4, 4, 3, 4},
		{4, 4, 4, 4, 4, 4, 4, 4},
		{1, 1, 2, 3, 3, 2, 1, 1},
		{1, 2, 3, 4, 4, 3, 2, 1},
		{1, 2, 3, 4, 4, 3, 2, 1},
		{1, 1, 2, 3, 3, 2, 1, 1},
		{4, 4, 4, 4, 4, 4, 4, 4},
		{4, 3, 4, 4, 4, 4, 3, 4},
	}

	// White pawn advancement. Black reads it mirrored.
	pawnTable = [8][8]int{
		{8, 8, 8, 8, 8, 8, 8, 8},
		{8, 8, 8, 8, 8, 8, 8, 8},
		{5, 6, 6, 7, 7, 6, 5, 5},
		{2, 3, 3, 5, 5, 3, 3, 2},
		{1, 2, 3, 4, 4, 3, 2, 1},
		{1, 1, 2, 3, 3, 2, 1, 1},
		{1, 1, 1, 0, 0, 1, 1, 1},
		{0, 0, 0, 0, 0, 0, 0, 0},
	}

	// White king shelter on the castled squares. Black reads it mirrored.
	kingTable = [8][8]int{
		{0, 0, 0, 0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 0, 0, 0},
		{0, 0, 11, 0, 4, 0, 12, 0},
	}
)

// positionalValue returns the table entry for a piece on sq.
func positionalValue(p board.Piece, sq board.Square) int {
	row, col := 7-sq.Rank(), sq.File()

	switch p.Type() {
	case board.Knight:
		return knightTable[row][col]
	case board.Bishop:
		return bishopTable[row][col]
	case board.Queen:
		return queenTable[row][col]
	case board.Rook:
		return rookTable[row][col]
	case board.Pawn:
		if p.Color() == board.Black {
			row = sq.Rank()
		}
		return pawnTable[row][col]
	case board.King:
		if p.Color() == board.Black {
			row = sq.Rank()
		}
		return kingTable[row][col]
	}
	return 0
}

// Evaluate returns the static score of the position from white's point of
// view. A checkmate scores MateValue against the mated side and any draw
// scores zero; both rely on the flags set by the last GenerateLegalMoves.
func Evaluate(s *board.GameState) float64 {
	switch {
	case s.Checkmate():
		if s.SideToMove() == board.White {
			return -MateValue
		}
		return MateValue
	case s.Stalemate():
		return 0
	}

	var score float64
	b := s.Board()
	for i, p := range b {
		if p == board.Empty {
			continue
		}
		v := pieceValues[p.Type()] + positionalWeight*float64(positionalValue(p, board.Square(i)))
		if p.Color() == board.White {
			score += v
		} else {
			score -= v
		}
	}
	return score
}

// turnMultiplier is +1 when white is to move and -1 for black.
func turnMultiplier(c board.Color) float64 {
	if c == board.White {
		return 1
	}
	return -1
}
