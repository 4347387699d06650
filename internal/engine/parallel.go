package engine

import (
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/hailam/chesscore/internal/board"
)

// rootScore is the outcome of one root branch.
type rootScore struct {
	score float64
	nodes uint64
}

// searchParallel splits the root moves over a fixed pool of workers. Each
// worker owns one clone of state and writes only the result slots of the
// moves it took, so nothing is shared until the pool has drained. Ties go to
// the earlier move in order.
func (s *Searcher) searchParallel(state *board.GameState, order []board.Move, tm float64) Result {
	results := make([]rootScore, len(order))

	jobs := make(chan int, len(order))
	for i := range order {
		jobs <- i
	}
	close(jobs)

	var g errgroup.Group
	for range min(s.workers, len(order)) {
		clone := state.Clone()
		g.Go(func() error {
			for i := range jobs {
				clone.ApplyMove(order[i], board.Queen)
				next := clone.GenerateLegalMoves()
				sc := &searchContext{rootDepth: -1}
				score := -sc.negamax(clone, next, s.depth-1, -MateValue, MateValue, -tm)
				clone.UndoMove()
				results[i] = rootScore{score: score, nodes: sc.nodes + 1}
			}
			return nil
		})
	}
	_ = g.Wait() // workers never fail

	res := Result{Score: math.Inf(-1)}
	for i, r := range results {
		res.Nodes += r.nodes
		if r.score > res.Score {
			res.Move = order[i]
			res.Score = r.score
			res.Found = true
		}
	}
	return res
}
