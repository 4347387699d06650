package engine

import (
	"math"
	"math/rand"
	"slices"

	"github.com/hailam/chesscore/internal/board"
)

// Search constants
const (
	DefaultDepth = 3
	MaxDepth     = 8
)

// Result is the outcome of a root search. Score is from the point of view of
// the side to move. Found is false when the search produced no move, in which
// case callers fall back to a random legal move.
type Result struct {
	Move  board.Move
	Score float64
	Found bool
	Nodes uint64
}

// Searcher performs the fixed-depth negamax alpha-beta search.
type Searcher struct {
	depth    int
	parallel bool
	workers  int
	rng      *rand.Rand
}

// NewSearcher creates a searcher for the given configuration. rng orders the
// root moves and is only used by the calling goroutine.
func NewSearcher(cfg Config, rng *rand.Rand) *Searcher {
	return &Searcher{
		depth:    cfg.Depth,
		parallel: cfg.Parallel,
		workers:  cfg.Workers,
		rng:      rng,
	}
}

// Depth returns the search depth in plies.
func (s *Searcher) Depth() int {
	return s.depth
}

// SetDepth changes the search depth.
func (s *Searcher) SetDepth(depth int) {
	s.depth = depth
}

// searchContext carries the per-search bookkeeping through the recursion.
type searchContext struct {
	rootDepth int
	best      board.Move
	bestScore float64
	found     bool
	nodes     uint64
}

// Search finds the best of moves, which must be the legal moves of state as
// returned by its last GenerateLegalMoves call. state is restored before
// returning, flags included.
func (s *Searcher) Search(state *board.GameState, moves []board.Move) Result {
	tm := turnMultiplier(state.SideToMove())
	if s.depth <= 0 || len(moves) == 0 || state.Stalemate() {
		sc := &searchContext{rootDepth: s.depth}
		return Result{Score: sc.negamax(state, moves, s.depth, -MateValue, MateValue, tm), Nodes: sc.nodes}
	}

	order := slices.Clone(moves)
	s.rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	var res Result
	if s.parallel && s.workers > 1 {
		res = s.searchParallel(state, order, tm)
	} else {
		sc := &searchContext{rootDepth: s.depth}
		sc.negamax(state, order, s.depth, -MateValue, MateValue, tm)
		res = Result{Move: sc.best, Score: sc.bestScore, Found: sc.found, Nodes: sc.nodes}
	}

	// The last undo cleared the root flags.
	state.GenerateLegalMoves()
	return res
}

// negamax scores the position for the side to move. moves are the legal
// moves of state, generated right after the move that led here so the
// terminal flags are current even at the horizon.
func (sc *searchContext) negamax(state *board.GameState, moves []board.Move, depth int, alpha, beta, tm float64) float64 {
	sc.nodes++

	if depth <= 0 {
		return tm * Evaluate(state)
	}
	if state.Stalemate() {
		return 0
	}
	if len(moves) == 0 {
		return tm * Evaluate(state)
	}

	maxScore := math.Inf(-1)
	for _, m := range moves {
		state.ApplyMove(m, board.Queen)
		next := state.GenerateLegalMoves()
		score := -sc.negamax(state, next, depth-1, -beta, -alpha, -tm)
		state.UndoMove()

		if score > maxScore {
			maxScore = score
			if depth == sc.rootDepth {
				sc.best = m
				sc.bestScore = score
				sc.found = true
			}
		}
		if maxScore > alpha {
			alpha = maxScore
		}
		if alpha >= beta {
			break
		}
	}
	return maxScore
}
