package agent

import (
	"context"
	"math"

	"rbc/belief"
	"rbc/chess"
	"rbc/rbc"
	"rbc/searcher"
	"rbc/utils"
)

type trainingAgent struct {
	solver      *solver
	temperature float64
}

// NewTrainingAgent returns an agent for self-play that samples its actions
// from the solved strategy sharpened or flattened by temperature.
func NewTrainingAgent(temperature float64, options ...Option) Agent {
	if temperature <= 0 {
		temperature = 1
	}
	return trainingAgent{solver: newSolver(options...), temperature: temperature}
}

func (a trainingAgent) ChooseSense(ctx context.Context, b *belief.State) (chess.Square, Decision) {
	policy, decision := a.solver.solve(ctx, b, rbc.BeforeSense)
	action := a.sample(policy)
	decision.Action = action.String()
	return action.Square, decision
}

func (a trainingAgent) ChooseMove(ctx context.Context, b *belief.State) (chess.Move, Decision) {
	policy, decision := a.solver.solve(ctx, b, rbc.BeforeMove)
	action := a.sample(policy)
	decision.Action = action.String()
	return action.Move, decision
}

func (a trainingAgent) sample(policy searcher.Policy[rbc.Action]) rbc.Action {
	p := adjustTemperature(policy.Probs, a.temperature)
	return policy.Actions[utils.Sample(a.solver.rand, p)]
}

func adjustTemperature(probs []float64, temperature float64) []float64 {
	exponent := 1.0 / temperature
	adjusted := make([]float64, len(probs))
	for i, p := range probs {
		adjusted[i] = math.Pow(p, exponent)
	}
	return utils.Normalize(adjusted)
}
