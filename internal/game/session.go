// Package game drives a chess game between humans and the engine. It keeps
// the legal move list current, accepts moves as square pairs or clicks,
// answers with engine moves and archives finished games.
package game

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/engine"
	"github.com/hailam/chesscore/internal/storage"
)

// ErrGameOver is returned when a move is requested after the game ended.
var ErrGameOver = errors.New("game is over")

// Player is who moves for one color.
type Player int

const (
	Human Player = iota
	Computer
)

// String returns the player kind.
func (p Player) String() string {
	if p == Computer {
		return "engine"
	}
	return "human"
}

// Recorder archives finished games.
type Recorder interface {
	RecordGame(rec *storage.GameRecord) error
}

// Option configures a Session.
type Option func(*Session)

// WithPlayers sets who moves for white and black. The default is a human
// playing white against the engine.
func WithPlayers(white, black Player) Option {
	return func(s *Session) {
		s.players = [2]Player{white, black}
	}
}

// WithRecorder archives every game that ends.
func WithRecorder(r Recorder) Option {
	return func(s *Session) {
		s.recorder = r
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log logr.Logger) Option {
	return func(s *Session) {
		s.log = log
	}
}

// WithFEN starts games from fen instead of the standard position.
func WithFEN(fen string) Option {
	return func(s *Session) {
		s.startFEN = fen
	}
}

// Session is one game in progress. It is not safe for concurrent use.
type Session struct {
	engine   *engine.Engine
	players  [2]Player
	recorder Recorder
	log      logr.Logger
	startFEN string

	state    *board.GameState
	legal    []board.Move
	notation []string
	moves    []string
	selected board.Square
	started  time.Time
	recorded bool
}

// NewSession starts a game.
func NewSession(eng *engine.Engine, opts ...Option) (*Session, error) {
	s := &Session{
		engine:   eng,
		players:  [2]Player{Human, Computer},
		log:      logr.Discard(),
		startFEN: board.StartFEN,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Reset(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reset starts a new game from the configured position.
func (s *Session) Reset() error {
	state, err := board.ParseFEN(s.startFEN)
	if err != nil {
		return err
	}

	s.state = state
	s.notation = nil
	s.moves = nil
	s.selected = board.NoSquare
	s.started = time.Now()
	s.recorded = false
	s.refresh()

	s.log.V(1).Info("new game", "fen", s.startFEN, "white", s.players[board.White], "black", s.players[board.Black])
	return nil
}

// refresh regenerates the legal moves and with them the terminal flags.
func (s *Session) refresh() {
	s.legal = s.state.GenerateLegalMoves()
}

// State returns the underlying game state. Callers must not modify it.
func (s *Session) State() *board.GameState {
	return s.state
}

// LegalMoves returns the legal moves of the side to move.
func (s *Session) LegalMoves() []board.Move {
	return append([]board.Move(nil), s.legal...)
}

// Player returns who moves for color c.
func (s *Session) Player(c board.Color) Player {
	return s.players[c]
}

// EngineToMove reports whether the engine should move next.
func (s *Session) EngineToMove() bool {
	return !s.Over() && s.players[s.state.SideToMove()] == Computer
}

// Notation returns the short notation of every move played so far.
func (s *Session) Notation() []string {
	return append([]string(nil), s.notation...)
}

// Over reports whether the game has ended.
func (s *Session) Over() bool {
	return s.state.Status() != board.Ongoing
}

// Status returns the terminal classification of the current position.
func (s *Session) Status() board.Status {
	return s.state.Status()
}

// Result returns the result tag: 1-0, 0-1, 1/2-1/2, or * while ongoing.
func (s *Session) Result() string {
	st := s.state.Status()
	switch {
	case st == board.Checkmate && s.state.SideToMove() == board.Black:
		return "1-0"
	case st == board.Checkmate:
		return "0-1"
	case st.IsDraw():
		return "1/2-1/2"
	}
	return "*"
}

// Play applies m for the side to move. m must match one of LegalMoves by
// origin and destination; promo picks the promotion piece (queen if unset).
func (s *Session) Play(m board.Move, promo board.PieceType) error {
	if s.Over() {
		return ErrGameOver
	}
	legal, ok := board.FindMove(s.legal, m)
	if !ok {
		return fmt.Errorf("%w: %s", board.ErrInvalidMove, m)
	}

	s.apply(legal, promo)
	return nil
}

// PlaySquares plays the move between two squares.
func (s *Session) PlaySquares(from, to board.Square, promo board.PieceType) error {
	if !from.IsValid() || !to.IsValid() {
		return fmt.Errorf("%w: %s%s", board.ErrInvalidSquare, from, to)
	}
	return s.Play(s.state.MoveFor(from, to), promo)
}

// PlayString plays a long algebraic move such as e2e4 or e7e8n.
func (s *Session) PlayString(str string) error {
	if s.Over() {
		return ErrGameOver
	}
	m, promo, err := board.ParseMove(str, s.legal)
	if err != nil {
		return fmt.Errorf("%w: %q", err, str)
	}
	s.apply(m, promo)
	return nil
}

// Selected returns the square picked by the first click, if any.
func (s *Session) Selected() (board.Square, bool) {
	return s.selected, s.selected != board.NoSquare
}

// Select handles a click on sq. The first click picks a piece of the side to
// move; the second submits the move between the two squares, promoting to a
// queen. A pair that matches no legal move is discarded, except that clicking
// another own piece picks that piece instead. It reports whether a move was
// played.
func (s *Session) Select(sq board.Square) bool {
	if s.Over() || !sq.IsValid() {
		s.selected = board.NoSquare
		return false
	}

	own := s.state.PieceAt(sq).Color() == s.state.SideToMove()
	if s.selected == board.NoSquare || s.selected == sq {
		if own && s.selected != sq {
			s.selected = sq
		} else {
			s.selected = board.NoSquare
		}
		return false
	}

	from := s.selected
	s.selected = board.NoSquare
	if err := s.PlaySquares(from, sq, board.Queen); err != nil {
		s.log.V(1).Info("selection rejected", "from", from, "to", sq)
		if own {
			s.selected = sq
		}
		return false
	}
	return true
}

// Undo takes back the last move. It reports false when there is nothing to
// undo.
func (s *Session) Undo() bool {
	last, ok := s.state.LastMove()
	if !ok {
		return false
	}

	s.log.V(1).Info("undo", "move", s.moves[len(s.moves)-1], "piece", last.Piece().String())
	s.state.UndoMove()
	s.notation = s.notation[:len(s.notation)-1]
	s.moves = s.moves[:len(s.moves)-1]
	s.selected = board.NoSquare
	s.recorded = false
	s.refresh()
	return true
}

// EngineReply lets the engine move for the side to move. When the search
// yields nothing, a random legal move is played instead.
func (s *Session) EngineReply() (board.Move, error) {
	if s.Over() {
		return board.Move{}, ErrGameOver
	}

	m, score, ok := s.engine.FindBestMove(s.state, s.legal)
	if !ok {
		m, ok = s.engine.RandomMove(s.legal)
		if !ok {
			return board.Move{}, ErrGameOver
		}
		s.log.V(1).Info("search found no move, playing random move", "move", m.String())
	}

	s.log.Info("engine move", "move", m.ToNotation(board.Queen), "score", engine.ScoreToString(score))
	s.apply(m, board.Queen)
	return m, nil
}

// apply plays a legal move and handles the end of the game.
func (s *Session) apply(m board.Move, promo board.PieceType) {
	if m.IsPromotion() && !promo.IsPromotable() {
		promo = board.Queen
	}

	s.notation = append(s.notation, m.ToNotation(promo))
	s.moves = append(s.moves, longAlgebraic(m, promo))
	s.state.ApplyMove(m, promo)
	s.selected = board.NoSquare
	s.refresh()

	if s.Over() {
		s.log.Info("game over", "result", s.Result(), "reason", s.Status().String())
		s.archive()
	}
}

// Record returns the archive entry for the game so far.
func (s *Session) Record() *storage.GameRecord {
	rec := &storage.GameRecord{
		StartFEN: s.startFEN,
		Moves:    append([]string(nil), s.moves...),
		Notation: s.Notation(),
		Result:   s.Result(),
		White:    s.players[board.White].String(),
		Black:    s.players[board.Black].String(),
		Started:  s.started,
	}
	if s.Over() {
		rec.Reason = s.Status().String()
	}
	return rec
}

// archive hands a finished game to the recorder once.
func (s *Session) archive() {
	if s.recorder == nil || s.recorded {
		return
	}
	s.recorded = true

	rec := s.Record()
	rec.Finished = time.Now()
	if err := s.recorder.RecordGame(rec); err != nil {
		s.log.Error(err, "failed to archive game")
	}
}

// longAlgebraic formats m as e2e4, adding the promotion letter if any.
func longAlgebraic(m board.Move, promo board.PieceType) string {
	if !m.IsPromotion() {
		return m.String()
	}
	return m.String() + strings.ToLower(promo.Letter())
}
