package agent

import (
	"context"

	"rbc/belief"
	"rbc/chess"
	"rbc/rbc"
	"rbc/searcher"
	"rbc/utils"
)

type evaluationAgent struct {
	solver *solver
}

// NewEvaluationAgent returns an agent that plays the most probable action of
// the solved strategy.
func NewEvaluationAgent(options ...Option) Agent {
	return evaluationAgent{solver: newSolver(options...)}
}

func (a evaluationAgent) ChooseSense(ctx context.Context, b *belief.State) (chess.Square, Decision) {
	policy, decision := a.solver.solve(ctx, b, rbc.BeforeSense)
	action := findMax(policy)
	decision.Action = action.String()
	return action.Square, decision
}

func (a evaluationAgent) ChooseMove(ctx context.Context, b *belief.State) (chess.Move, Decision) {
	policy, decision := a.solver.solve(ctx, b, rbc.BeforeMove)
	action := findMax(policy)
	decision.Action = action.String()
	return action.Move, decision
}

func findMax(policy searcher.Policy[rbc.Action]) rbc.Action {
	return policy.Actions[utils.ArgMax(policy.Probs)]
}
