package engine

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/go-logr/logr"

	"github.com/hailam/chesscore/internal/board"
)

// SearchInfo contains information about a finished search.
type SearchInfo struct {
	Depth int
	Score float64
	Nodes uint64
	Time  time.Duration
	Move  board.Move
}

// Difficulty represents the AI difficulty level.
type Difficulty int

const (
	Easy   Difficulty = iota // 2 ply
	Medium                   // 3 ply
	Hard                     // 4 ply
)

// DifficultyDepth maps difficulty to search depth.
var DifficultyDepth = map[Difficulty]int{
	Easy:   2,
	Medium: 3,
	Hard:   4,
}

// String returns the difficulty name.
func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	}
	return fmt.Sprintf("difficulty(%d)", int(d))
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log logr.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithRand sets the random source used for root ordering and fallback moves.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		e.rng = rng
	}
}

// Engine is the chess AI engine.
type Engine struct {
	cfg      Config
	searcher *Searcher
	rng      *rand.Rand
	log      logr.Logger

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates a new chess engine.
func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg: cfg,
		log: logr.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	e.searcher = NewSearcher(cfg, e.rng)
	return e, nil
}

// Config returns the active configuration.
func (e *Engine) Config() Config {
	c := e.cfg
	c.Depth = e.searcher.Depth()
	return c
}

// SetDifficulty sets the engine difficulty.
func (e *Engine) SetDifficulty(d Difficulty) {
	depth, ok := DifficultyDepth[d]
	if !ok {
		depth = DefaultDepth
	}
	e.searcher.SetDepth(depth)
	e.log.V(1).Info("difficulty changed", "difficulty", d, "depth", depth)
}

// SetDepth sets the search depth in plies.
func (e *Engine) SetDepth(depth int) error {
	cfg := e.Config()
	cfg.Depth = depth
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.searcher.SetDepth(depth)
	return nil
}

// FindBestMove searches the given legal moves of state. It reports false only
// when moves is empty or the position is already drawn.
func (e *Engine) FindBestMove(state *board.GameState, moves []board.Move) (board.Move, float64, bool) {
	start := time.Now()
	res := e.searcher.Search(state, moves)
	elapsed := time.Since(start)

	e.log.V(1).Info("search finished",
		"depth", e.searcher.Depth(),
		"parallel", e.cfg.Parallel,
		"move", res.Move.String(),
		"found", res.Found,
		"score", res.Score,
		"nodes", res.Nodes,
		"elapsed", elapsed)

	if e.OnInfo != nil {
		e.OnInfo(SearchInfo{
			Depth: e.searcher.Depth(),
			Score: res.Score,
			Nodes: res.Nodes,
			Time:  elapsed,
			Move:  res.Move,
		})
	}

	return res.Move, res.Score, res.Found
}

// RandomMove picks one of moves uniformly at random.
func (e *Engine) RandomMove(moves []board.Move) (board.Move, bool) {
	if len(moves) == 0 {
		return board.Move{}, false
	}
	return moves[e.rng.Intn(len(moves))], true
}

// Perft performs a perft test (for debugging move generation).
// Each promotion is counted once since the search only explores queens.
func (e *Engine) Perft(state *board.GameState, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	moves := state.GenerateLegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}

	var nodes uint64
	for _, m := range moves {
		state.ApplyMove(m, board.Queen)
		nodes += e.Perft(state, depth-1)
		state.UndoMove()
	}

	return nodes
}

// ScoreToString converts a side-to-move score to a human-readable string.
func ScoreToString(score float64) string {
	switch {
	case score >= MateValue:
		return "Mate"
	case score <= -MateValue:
		return "Mated"
	}
	return fmt.Sprintf("%+.2f", score)
}
