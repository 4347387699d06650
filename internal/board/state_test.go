package board

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var testPositions = []string{
	StartFEN,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
	"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
}

// snapshot captures every externally visible field of a state.
type snapshot struct {
	Board     Board
	Side      Color
	Kings     [2]Square
	Castling  CastlingRights
	EnPassant Square
	Clock     int
	Hash      uint64
	Ply       int
	Reps      int
	FEN       string
}

func takeSnapshot(s *GameState) snapshot {
	return snapshot{
		Board:     s.Board(),
		Side:      s.SideToMove(),
		Kings:     [2]Square{s.KingSquare(White), s.KingSquare(Black)},
		Castling:  s.CastlingRights(),
		EnPassant: s.EnPassant(),
		Clock:     s.HalfMoveClock(),
		Hash:      s.Hash(),
		Ply:       s.Ply(),
		Reps:      s.RepetitionCount(),
		FEN:       s.ToFEN(),
	}
}

// checkHistoryLengths verifies that every history stack has one entry more
// than the move log.
func checkHistoryLengths(t *testing.T, s *GameState) {
	t.Helper()
	want := len(s.moveLog) + 1
	for name, got := range map[string]int{
		"castle":    len(s.castleLog),
		"enpassant": len(s.enPassantLog),
		"clock":     len(s.clockLog),
		"board":     len(s.boardLog),
	} {
		if got != want {
			t.Fatalf("%s history length = %d, want %d", name, got, want)
		}
	}
}

// randomPlayout walks up to plies random legal moves, calling visit before
// each move is chosen.
func randomPlayout(s *GameState, rng *rand.Rand, plies int, visit func(moves []Move)) {
	for i := 0; i < plies; i++ {
		moves := s.GenerateLegalMoves()
		visit(moves)
		if len(moves) == 0 {
			return
		}
		m := moves[rng.Intn(len(moves))]
		promo := Knight + PieceType(rng.Intn(4))
		s.ApplyMove(m, promo)
	}
}

func TestApplyUndoRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for _, fen := range testPositions {
		for game := 0; game < 3; game++ {
			s := MustParseFEN(fen)
			randomPlayout(s, rng, 40, func(moves []Move) {
				checkHistoryLengths(t, s)
				before := takeSnapshot(s)
				for _, m := range moves {
					for _, promo := range []PieceType{Queen, Knight} {
						s.ApplyMove(m, promo)
						checkHistoryLengths(t, s)
						s.UndoMove()
						if diff := cmp.Diff(before, takeSnapshot(s)); diff != "" {
							t.Fatalf("%s: apply/undo %s changed state (-want +got):\n%s", fen, m, diff)
						}
						if !m.IsPromotion() {
							break
						}
					}
				}
			})
		}
	}
}

func TestLegalMovesNeverExposeKing(t *testing.T) {
	rng := rand.New(rand.NewSource(2))

	for _, fen := range testPositions {
		s := MustParseFEN(fen)
		randomPlayout(s, rng, 60, func(moves []Move) {
			us := s.SideToMove()
			for _, m := range moves {
				s.ApplyMove(m, Queen)
				s.sideToMove = us
				if s.IsInCheck() {
					t.Errorf("%s: move %s leaves %s king in check", fen, m, us)
				}
				s.sideToMove = us.Other()
				s.UndoMove()
			}
		})
	}
}

func TestRepetitionCount(t *testing.T) {
	s := NewGameState()
	shuffle := []string{"g1f3", "g8f6", "f3g1", "f6g8"}

	play(t, s, shuffle...)
	s.GenerateLegalMoves()
	if s.RepetitionCount() != 2 {
		t.Errorf("repetitions after one cycle = %d, want 2", s.RepetitionCount())
	}
	if s.Stalemate() {
		t.Fatal("should not be drawn after one cycle")
	}

	play(t, s, shuffle...)
	s.GenerateLegalMoves()
	if s.RepetitionCount() != 3 {
		t.Errorf("repetitions after two cycles = %d, want 3", s.RepetitionCount())
	}
	if !s.Stalemate() || s.Status() != Repetition {
		t.Errorf("status = %s, want threefold repetition", s.Status())
	}

	s.UndoMove()
	s.GenerateLegalMoves()
	if s.Stalemate() {
		t.Errorf("undo should leave a non-drawn position, status = %s", s.Status())
	}
}

func TestFiftyMoveRule(t *testing.T) {
	s := MustParseFEN("rn2k1nr/8/8/8/8/8/8/RN2K1NR w - - 0 1")

	// Walk quiet, non-checking piece moves that always reach a board not
	// seen before, so only the halfmove clock can end the game.
	for ply := 0; ply < 100; ply++ {
		moves := s.GenerateLegalMoves()
		if s.Status() != Ongoing {
			t.Fatalf("ply %d: status = %s, want ongoing", ply, s.Status())
		}
		played := false
		for _, m := range moves {
			if m.IsCapture() || m.Piece().Type() == Pawn {
				continue
			}
			s.ApplyMove(m, Queen)
			if s.RepetitionCount() == 1 && !s.IsInCheck() {
				played = true
				break
			}
			s.UndoMove()
		}
		if !played {
			t.Fatalf("ply %d: no fresh quiet move", ply)
		}
		if s.HalfMoveClock() != ply+1 {
			t.Fatalf("ply %d: clock = %d, want %d", ply, s.HalfMoveClock(), ply+1)
		}
	}

	s.GenerateLegalMoves()
	if !s.Stalemate() || s.Status() != FiftyMoveRule {
		t.Errorf("status = %s, want fifty-move draw", s.Status())
	}
}

func TestHalfMoveClockReset(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		move string
	}{
		{"pawn push", "4k3/8/8/3p4/8/8/4P3/4K3 w - - 57 40", "e2e4"},
		{"knight capture", "4k3/8/8/3p4/8/4N3/8/4K3 w - - 57 40", "e3d5"},
		{"piece capture", "4k3/8/8/3p4/8/8/8/3QK3 w - - 57 40", "d1d5"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := MustParseFEN(tc.fen)
			play(t, s, tc.move)
			if s.HalfMoveClock() != 0 {
				t.Errorf("clock = %d, want 0", s.HalfMoveClock())
			}
			s.UndoMove()
			if s.HalfMoveClock() != 57 {
				t.Errorf("clock after undo = %d, want 57", s.HalfMoveClock())
			}
		})
	}
}

func TestInsufficientMaterial(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		draw bool
	}{
		{"bare kings", "8/8/8/4k3/8/8/8/4K3 w - - 0 1", true},
		{"king and bishop", "8/8/8/4k3/8/8/8/3BK3 w - - 0 1", true},
		{"king and knight", "8/8/8/4k3/8/8/8/3NK3 b - - 0 1", true},
		{"two knights", "8/8/8/4k3/8/8/8/2NNK3 w - - 0 1", false},
		{"minor each", "8/8/3n4/4k3/8/8/8/3BK3 w - - 0 1", false},
		{"king and pawn", "8/8/8/4k3/8/8/4P3/4K3 w - - 0 1", false},
		{"king and rook", "8/8/8/4k3/8/8/8/3RK3 w - - 0 1", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := MustParseFEN(tc.fen)
			s.GenerateLegalMoves()
			if got := s.Status() == InsufficientMaterial; got != tc.draw {
				t.Errorf("insufficient material = %v, want %v (status %s)", got, tc.draw, s.Status())
			}
		})
	}
}

func TestCastling(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want map[string]bool
	}{
		{"both wings", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", map[string]bool{"e1g1": true, "e1c1": true}},
		{"f1 attacked", "4kr2/8/8/8/8/8/8/R3K2R w KQ - 0 1", map[string]bool{"e1g1": false, "e1c1": true}},
		{"b1 attacked only", "1r2k3/8/8/8/8/8/8/R3K2R w KQ - 0 1", map[string]bool{"e1g1": true, "e1c1": true}},
		{"d1 attacked", "3rk3/8/8/8/8/8/8/R3K2R w KQ - 0 1", map[string]bool{"e1g1": true, "e1c1": false}},
		{"in check", "4r1k1/8/8/8/8/8/8/R3K2R w KQ - 0 1", map[string]bool{"e1g1": false, "e1c1": false}},
		{"blocked", "4k3/8/8/8/8/8/8/RN2K1NR w KQ - 0 1", map[string]bool{"e1g1": false, "e1c1": false}},
		{"no rights", "4k3/8/8/8/8/8/8/R3K2R w - - 0 1", map[string]bool{"e1g1": false, "e1c1": false}},
		{"black", "r3k2r/8/8/8/8/8/8/4K3 b kq - 0 1", map[string]bool{"e8g8": true, "e8c8": true}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := MustParseFEN(tc.fen)
			got := map[string]bool{}
			for _, m := range s.GenerateLegalMoves() {
				if m.IsCastling() {
					got[m.String()] = true
				}
			}
			for move, want := range tc.want {
				if got[move] != want {
					t.Errorf("castle %s available = %v, want %v", move, got[move], want)
				}
			}
		})
	}
}

func TestCastlingMovesRook(t *testing.T) {
	s := MustParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	before := takeSnapshot(s)

	play(t, s, "e1g1")
	if s.PieceAt(F1) != WhiteRook || s.PieceAt(H1) != Empty || s.PieceAt(G1) != WhiteKing {
		t.Errorf("kingside castle board wrong:%s", s)
	}
	if s.KingSquare(White) != G1 {
		t.Errorf("king square = %s, want g1", s.KingSquare(White))
	}
	if s.CastlingRights() != BlackKingSideCastle|BlackQueenSideCastle {
		t.Errorf("rights = %s, want kq", s.CastlingRights())
	}

	play(t, s, "e8c8")
	if s.PieceAt(D8) != BlackRook || s.PieceAt(A8) != Empty || s.PieceAt(C8) != BlackKing {
		t.Errorf("queenside castle board wrong:%s", s)
	}
	if s.CastlingRights() != NoCastling {
		t.Errorf("rights = %s, want -", s.CastlingRights())
	}

	s.UndoMove()
	s.UndoMove()
	if diff := cmp.Diff(before, takeSnapshot(s)); diff != "" {
		t.Errorf("undo castling mismatch (-want +got):\n%s", diff)
	}
}

func TestCastlingRightsRevoked(t *testing.T) {
	tests := []struct {
		name  string
		moves []string
		want  CastlingRights
	}{
		{"king move", []string{"e1f1"}, BlackKingSideCastle | BlackQueenSideCastle},
		{"rook move", []string{"h1h2"}, WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle},
		{"rook capture", []string{"a1a8"}, WhiteKingSideCastle | BlackKingSideCastle},
		{"rook returns", []string{"h1h2", "h8h7", "h2h1"}, WhiteQueenSideCastle | BlackQueenSideCastle},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := MustParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
			play(t, s, tc.moves...)
			if s.CastlingRights() != tc.want {
				t.Errorf("rights = %s, want %s", s.CastlingRights(), tc.want)
			}
			for range tc.moves {
				s.UndoMove()
			}
			if s.CastlingRights() != AllCastling {
				t.Errorf("rights after undo = %s, want KQkq", s.CastlingRights())
			}
		})
	}
}

func TestEnPassant(t *testing.T) {
	t.Run("black captures", func(t *testing.T) {
		s := MustParseFEN("4k3/8/8/8/3p4/8/4P3/4K3 w - - 0 1")
		play(t, s, "e2e4")
		if s.EnPassant().String() != "e3" {
			t.Fatalf("en passant target = %s, want e3", s.EnPassant())
		}
		before := takeSnapshot(s)

		m, _, err := ParseMove("d4e3", s.GenerateLegalMoves())
		if err != nil {
			t.Fatalf("en passant not generated: %v", err)
		}
		if !m.IsEnPassant() || m.Captured() != WhitePawn {
			t.Fatalf("move %s: enpassant=%v captured=%v", m, m.IsEnPassant(), m.Captured())
		}

		s.ApplyMove(m, NoPieceType)
		e4, _ := ParseSquare("e4")
		e3, _ := ParseSquare("e3")
		if s.PieceAt(e4) != Empty || s.PieceAt(e3) != BlackPawn {
			t.Errorf("board after en passant:%s", s)
		}

		s.UndoMove()
		if diff := cmp.Diff(before, takeSnapshot(s)); diff != "" {
			t.Errorf("undo en passant mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("white captures", func(t *testing.T) {
		s := MustParseFEN("4k3/3p4/8/4P3/8/8/8/4K3 b - - 0 1")
		play(t, s, "d7d5", "e5d6")
		d5, _ := ParseSquare("d5")
		d6, _ := ParseSquare("d6")
		if s.PieceAt(d5) != Empty || s.PieceAt(d6) != WhitePawn {
			t.Errorf("board after en passant:%s", s)
		}
	})

	t.Run("expires after one ply", func(t *testing.T) {
		s := MustParseFEN("4k3/8/8/8/3p4/8/4P3/4K3 w - - 0 1")
		play(t, s, "e2e4", "e8d8", "e1d1")
		if _, _, err := ParseMove("d4e3", s.GenerateLegalMoves()); !errors.Is(err, ErrInvalidMove) {
			t.Errorf("stale en passant accepted, err = %v", err)
		}
	})
}

func TestPromotion(t *testing.T) {
	s := MustParseFEN("8/P6k/8/8/8/8/8/7K w - - 0 1")
	m, _, err := ParseMove("a7a8", s.GenerateLegalMoves())
	if err != nil {
		t.Fatal(err)
	}
	if !m.IsPromotion() {
		t.Fatal("a7a8 should be a promotion")
	}

	for _, tc := range []struct {
		promo PieceType
		want  Piece
	}{
		{Knight, WhiteKnight},
		{Bishop, WhiteBishop},
		{Rook, WhiteRook},
		{Queen, WhiteQueen},
		{NoPieceType, WhiteQueen},
		{King, WhiteQueen},
	} {
		s.ApplyMove(m, tc.promo)
		if got := s.PieceAt(A8); got != tc.want {
			t.Errorf("promote to %s: a8 = %v, want %v", tc.promo, got, tc.want)
		}
		s.UndoMove()
		if got := s.PieceAt(NewSquare(0, 6)); got != WhitePawn {
			t.Errorf("undo promotion: a7 = %v, want P", got)
		}
	}
}

func TestUndoUnderflow(t *testing.T) {
	s := NewGameState()
	before := takeSnapshot(s)
	s.UndoMove()
	if diff := cmp.Diff(before, takeSnapshot(s)); diff != "" {
		t.Errorf("undo on empty history changed state (-want +got):\n%s", diff)
	}
}

func TestLastMove(t *testing.T) {
	s := NewGameState()
	if _, ok := s.LastMove(); ok {
		t.Fatal("LastMove on fresh game reported a move")
	}

	play(t, s, "e2e4", "d7d5", "e4d5")
	m, ok := s.LastMove()
	if !ok || m.String() != "e4d5" || m.Captured() != BlackPawn {
		t.Errorf("LastMove = %s (captured %s), %v; want e4d5 capturing p", m, m.Captured(), ok)
	}

	s.UndoMove()
	if m, _ := s.LastMove(); m.String() != "d7d5" {
		t.Errorf("LastMove after undo = %s, want d7d5", m)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s := NewGameState()
	play(t, s, "e2e4", "e7e5")
	c := s.Clone()
	play(t, c, "g1f3")

	if s.Ply() != 2 || c.Ply() != 3 {
		t.Errorf("ply: original %d, clone %d", s.Ply(), c.Ply())
	}
	c.UndoMove()
	c.UndoMove()
	if diff := cmp.Diff(s.MoveLog()[:1], c.MoveLog(), cmp.AllowUnexported(Move{})); diff != "" {
		t.Errorf("clone history mismatch (-want +got):\n%s", diff)
	}
	if s.ToFEN() == c.ToFEN() {
		t.Error("undoing the clone changed the original")
	}
}

func TestFindMove(t *testing.T) {
	s := NewGameState()
	moves := s.GenerateLegalMoves()
	e2, _ := ParseSquare("e2")
	e4, _ := ParseSquare("e4")
	e5, _ := ParseSquare("e5")

	if m, ok := FindMove(moves, s.MoveFor(e2, e4)); !ok || m.String() != "e2e4" {
		t.Errorf("FindMove(e2e4) = %v, %v", m, ok)
	}
	if _, ok := FindMove(moves, s.MoveFor(e2, e5)); ok {
		t.Error("FindMove accepted e2e5")
	}

	castle := MustParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	m, ok := FindMove(castle.GenerateLegalMoves(), castle.MoveFor(E1, G1))
	if !ok || !m.IsCastling() {
		t.Errorf("two-square castle lookup = %v, castling=%v", ok, m.IsCastling())
	}
}
