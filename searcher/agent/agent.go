package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"rbc/belief"
	"rbc/chess"
	"rbc/game"
	"rbc/meta"
	"rbc/rbc"
	"rbc/searcher"
	"rbc/utils"
)

// Decision records how one sense or move was found.
type Decision struct {
	Phase      rbc.Phase
	Candidates int
	Nodes      int
	Infosets   int
	Iterations int
	Duration   time.Duration
	Value      float64
	Action     string
}

type Agent interface {
	// ChooseSense picks a square to sense given the agent's belief, which
	// must have the agent to move.
	ChooseSense(ctx context.Context, b *belief.State) (chess.Square, Decision)
	// ChooseMove picks a requested move after the agent has sensed.
	ChooseMove(ctx context.Context, b *belief.State) (chess.Move, Decision)
}

type Option func(s *solver)

func WithIterations(iterations int) Option {
	return func(s *solver) {
		if iterations > 0 {
			s.iterations = iterations
		}
	}
}

func WithDuration(duration time.Duration) Option {
	return func(s *solver) {
		if duration > 0 {
			s.duration = duration
		}
	}
}

func WithDepth(depth int) Option {
	return func(s *solver) {
		if depth > 1 {
			s.depth = depth
		}
	}
}

func WithLeafDepth(depth int) Option {
	return func(s *solver) {
		if depth >= 0 {
			s.leafDepth = depth
		}
	}
}

func WithMaxCandidates(n int) Option {
	return func(s *solver) {
		if n > 0 {
			s.maxCandidates = n
		}
	}
}

func WithRand(r *rand.Rand) Option {
	return func(s *solver) {
		if r != nil {
			s.rand = r
		}
	}
}

// solver builds and solves one sub-decision per call. A solver is owned by
// one game and one goroutine.
type solver struct {
	iterations    int
	duration      time.Duration
	depth         int
	leafDepth     int
	maxCandidates int
	rand          *rand.Rand
	searchContext *chess.SearchContext
	zobrist       *chess.ZobristTable
}

func newSolver(options ...Option) *solver {
	s := &solver{ // Default values
		iterations:    meta.ITERATIONS,
		duration:      meta.DURATION,
		depth:         meta.DEPTH,
		leafDepth:     meta.LEAF_DEPTH,
		maxCandidates: meta.MAX_CANDIDATES,
		rand:          rand.New(rand.NewSource(meta.SEED)),
		searchContext: chess.NewSearchContext(),
		zobrist:       chess.NewZobristTable(meta.SEED),
	}
	for _, option := range options {
		option(s)
	}
	if s.iterations <= 0 && s.duration <= 0 {
		panic("Must specify solver iterations or duration")
	}
	return s
}

// solve returns player 0's average policy at its first decision.
func (s *solver) solve(ctx context.Context, b *belief.State, phase rbc.Phase) (searcher.Policy[rbc.Action], Decision) {
	if b.Size() == 0 {
		panic(fmt.Sprintf("%s belief has no possible state", b.Color))
	}

	indices := utils.Subsample(s.rand, b.Size(), s.maxCandidates)
	candidates := make([]chess.Board, len(indices))
	for i, idx := range indices {
		candidates[i] = b.States[idx]
	}

	depth := s.depth
	// The sense already happened, but the tree keeps at least one move.
	if phase == rbc.BeforeMove && depth > 2 {
		depth--
	}
	g := rbc.NewGame(rbc.Config{
		Depth:      depth,
		LeafDepth:  s.leafDepth,
		Phase:      phase,
		Candidates: candidates,
		Context:    s.searchContext,
		Zobrist:    s.zobrist,
	})
	defer g.Reset()

	encoding := game.NewEncoding[rbc.Action, string](g)
	cfr := searcher.NewCFR(encoding, searcher.WithMetrics(searcher.NewMetricsCollector()))

	if s.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.duration)
		defer cancel()
	}
	cfr.Run(ctx, s.iterations)

	policy, ok := cfr.Strategy()[rbc.RootInfoset]
	if !ok {
		panic(fmt.Sprintf("no decision for %s at depth %d", b.Color, depth))
	}
	metrics := cfr.Metrics()
	decision := Decision{
		Phase:      phase,
		Candidates: len(candidates),
		Nodes:      metrics.Nodes,
		Infosets:   metrics.Infosets,
		Iterations: int(metrics.Iterations),
		Duration:   metrics.Duration,
		Value:      policy.Value,
	}
	log.Debug().
		Str("color", b.Color.String()).
		Str("phase", phase.String()).
		Int("candidates", decision.Candidates).
		Int("nodes", decision.Nodes).
		Int("infosets", decision.Infosets).
		Int("iterations", decision.Iterations).
		Dur("duration", decision.Duration).
		Msg("solved sub-decision")
	return policy, decision
}
