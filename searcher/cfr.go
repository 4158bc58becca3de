package searcher

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"

	"rbc/game"
)

type Option func(o *options)

type options struct {
	metrics MetricsCollector
}

func WithMetrics(collector MetricsCollector) Option {
	return func(o *options) {
		if collector != nil {
			o.metrics = collector
		}
	}
}

// Policy is the average strategy at one infoset. Value is player 0's expected
// payoff at the infoset under average play, Visit the probability that average
// play reaches it at all.
type Policy[A comparable] struct {
	Actions []A
	Probs   []float64
	Value   float64
	Visit   float64
}

// CFR runs vanilla counterfactual regret minimization over a fixed encoding.
// Regret and strategy accumulators are flattened; infoset i owns the slots
// offsets[i] .. offsets[i]+len(actions).
type CFR[A comparable, I comparable] struct {
	encoding    *game.Encoding[A, I]
	players     int
	offsets     []int
	regrets     []float64
	strategySum []float64
	current     []float64
	iterations  int
	metrics     MetricsCollector
}

func NewCFR[A comparable, I comparable](encoding *game.Encoding[A, I], opts ...Option) *CFR[A, I] {
	o := options{metrics: NewNoMetricsCollector()}
	for _, opt := range opts {
		opt(&o)
	}

	infosets := encoding.Infosets()
	offsets := make([]int, len(infosets))
	size := 0
	for i, is := range infosets {
		offsets[i] = size
		size += len(is.Actions)
	}

	c := &CFR[A, I]{
		encoding:    encoding,
		players:     encoding.Players(),
		offsets:     offsets,
		regrets:     make([]float64, size),
		strategySum: make([]float64, size),
		current:     make([]float64, size),
		metrics:     o.metrics,
	}
	c.metrics.Start(len(encoding.Nodes()), len(infosets))
	return c
}

// Step performs one simultaneous update of every infoset. The current
// strategy is fixed from the regrets accumulated before the call.
func (c *CFR[A, I]) Step() {
	for is := range c.offsets {
		lo, hi := c.span(is)
		regretMatch(c.current[lo:hi], c.regrets[lo:hi])
	}

	reach := make([]float64, c.players+1) // last slot is chance
	for i := range reach {
		reach[i] = 1
	}
	c.update(0, reach)

	c.iterations++
	c.metrics.AddIteration()
}

func (c *CFR[A, I]) update(id int, reach []float64) float64 {
	n := c.encoding.Nodes()[id]
	switch n.Kind {
	case game.Terminal:
		return n.Payoff

	case game.Chance:
		chance := len(reach) - 1
		r := reach[chance]
		value := 0.0
		for i, p := range n.Probs {
			reach[chance] = r * p
			value += p * c.update(n.First+i, reach)
		}
		reach[chance] = r
		return value

	case game.Choice:
		player := c.encoding.Infosets()[n.Infoset].Player
		lo, hi := c.span(n.Infoset)
		sigma := c.current[lo:hi]

		own := reach[player]
		values := make([]float64, n.Count)
		for i := range values {
			reach[player] = own * sigma[i]
			values[i] = c.update(n.First+i, reach)
		}
		reach[player] = own
		value := floats.Dot(sigma, values)

		cf := counterfactual(reach, player)
		sign := 1.0
		if player != 0 {
			sign = -1
		}
		regrets := c.regrets[lo:hi]
		for i, v := range values {
			regrets[i] += sign * (v - value) * cf
		}
		floats.AddScaled(c.strategySum[lo:hi], own, sigma)
		return value
	}
	panic(fmt.Sprintf("node %d has unknown kind %v", id, n.Kind))
}

// Strategy normalizes the accumulated strategy weights of every infoset and
// evaluates the resulting average profile.
func (c *CFR[A, I]) Strategy() map[I]Policy[A] {
	average := c.average()

	infosets := c.encoding.Infosets()
	acc := make([]accumulator, len(infosets))
	reach := make([]float64, c.players+1)
	for i := range reach {
		reach[i] = 1
	}
	c.evaluate(0, reach, average, acc)

	strategy := make(map[I]Policy[A], len(infosets))
	for id, is := range infosets {
		lo, hi := c.span(id)
		strategy[is.Key] = Policy[A]{
			Actions: is.Actions,
			Probs:   average[lo:hi],
			Value:   acc[id].value(),
			Visit:   acc[id].reach,
		}
	}
	log.Debug().Int("iterations", c.iterations).Int("infosets", len(infosets)).Msg("read average strategy")
	return strategy
}

// Value is player 0's expected payoff at the root under the average strategy.
func (c *CFR[A, I]) Value() float64 {
	reach := make([]float64, c.players+1)
	for i := range reach {
		reach[i] = 1
	}
	return c.evaluate(0, reach, c.average(), make([]accumulator, len(c.offsets)))
}

func (c *CFR[A, I]) Iterations() int {
	return c.iterations
}

// Run steps until iterations steps were taken or ctx is done, whichever comes
// first, and returns the number of steps taken. The context is only checked
// between steps.
func (c *CFR[A, I]) Run(ctx context.Context, iterations int) int {
	if iterations <= 0 && ctx.Done() == nil {
		panic("Must specify solver iterations or a cancellable context")
	}

	steps := 0
	for iterations <= 0 || steps < iterations {
		select {
		case <-ctx.Done():
			return steps
		default:
		}
		c.Step()
		steps++
	}
	return steps
}

func (c *CFR[A, I]) Metrics() SolveMetrics {
	return c.metrics.Complete()
}

func (c *CFR[A, I]) span(infoset int) (int, int) {
	lo := c.offsets[infoset]
	return lo, lo + len(c.encoding.Infosets()[infoset].Actions)
}

func (c *CFR[A, I]) average() []float64 {
	average := make([]float64, len(c.strategySum))
	for is := range c.offsets {
		lo, hi := c.span(is)
		copy(average[lo:hi], c.strategySum[lo:hi])
		if total := floats.Sum(average[lo:hi]); total > 0 {
			floats.Scale(1/total, average[lo:hi])
		} else {
			uniform(average[lo:hi])
		}
	}
	return average
}

type accumulator struct {
	reach      float64 // sum of full reach over the infoset's nodes
	weighted   float64 // sum of full reach times node value
	cfReach    float64
	cfWeighted float64
}

func (a accumulator) value() float64 {
	if a.reach > 0 {
		return a.weighted / a.reach
	}
	if a.cfReach > 0 {
		return a.cfWeighted / a.cfReach
	}
	return 0
}

func (c *CFR[A, I]) evaluate(id int, reach, strategy []float64, acc []accumulator) float64 {
	n := c.encoding.Nodes()[id]
	switch n.Kind {
	case game.Terminal:
		return n.Payoff

	case game.Chance:
		chance := len(reach) - 1
		r := reach[chance]
		value := 0.0
		for i, p := range n.Probs {
			reach[chance] = r * p
			value += p * c.evaluate(n.First+i, reach, strategy, acc)
		}
		reach[chance] = r
		return value

	case game.Choice:
		player := c.encoding.Infosets()[n.Infoset].Player
		lo, hi := c.span(n.Infoset)
		sigma := strategy[lo:hi]

		own := reach[player]
		value := 0.0
		for i, p := range sigma {
			reach[player] = own * p
			value += p * c.evaluate(n.First+i, reach, strategy, acc)
		}
		reach[player] = own

		cf := counterfactual(reach, player)
		a := &acc[n.Infoset]
		a.reach += own * cf
		a.weighted += own * cf * value
		a.cfReach += cf
		a.cfWeighted += cf * value
		return value
	}
	panic(fmt.Sprintf("node %d has unknown kind %v", id, n.Kind))
}

// counterfactual is the probability of reaching a node if player always
// steered towards it: the product of every other player's and chance's reach.
func counterfactual(reach []float64, player int) float64 {
	p := 1.0
	for i, r := range reach {
		if i != player {
			p *= r
		}
	}
	return p
}

func regretMatch(dst, regrets []float64) {
	total := 0.0
	for i, r := range regrets {
		dst[i] = max(r, 0)
		total += dst[i]
	}
	if total > 0 {
		floats.Scale(1/total, dst)
		return
	}
	uniform(dst)
}

func uniform(dst []float64) {
	for i := range dst {
		dst[i] = 1 / float64(len(dst))
	}
}
