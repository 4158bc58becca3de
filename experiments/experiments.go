package experiments

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"rbc/engine"
	"rbc/experiments/metrics"
	"rbc/searcher/agent"
)

// MatchUp pairs the configs playing white and black.
type MatchUp struct {
	White metrics.AgentConfig
	Black metrics.AgentConfig
}

type Experiment struct {
	Name       string
	Dir        string // Root directory of the CSV output
	Configs    []metrics.AgentConfig
	MatchUps   []MatchUp
	Games      int // Per match up
	MaxTurns   int
	Goroutines int
	Seed       uint64
}

type job struct {
	index   int
	matchUp MatchUp
}

type outcome struct {
	game      metrics.GameRecord
	decisions []metrics.DecisionRecord
	err       error
}

// Run plays every game of the experiment, one game per goroutine at a time,
// and writes the records once all games are over.
func Run(ctx context.Context, e Experiment) (string, error) {
	if e.Goroutines <= 0 {
		e.Goroutines = 1
	}

	tasks := make(chan job, len(e.MatchUps)*e.Games)
	for mi, matchUp := range e.MatchUps {
		for i := 0; i < e.Games; i++ {
			tasks <- job{index: mi*e.Games + i, matchUp: matchUp}
		}
	}
	close(tasks)

	log.Info().Msgf("starting %s experiment with %d games...", e.Name, len(tasks))

	outcomes := make([]outcome, len(tasks))
	var wg sync.WaitGroup
	for i := 0; i < e.Goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for task := range tasks {
				outcomes[task.index] = runGame(ctx, e, task)
			}
		}()
	}
	wg.Wait()

	log.Info().Msgf("completed %s experiment", e.Name)

	gameRecords := make([]metrics.GameRecord, 0, len(outcomes))
	decisionRecords := []metrics.DecisionRecord{}
	for _, o := range outcomes {
		if o.err != nil {
			return "", o.err
		}
		gameRecords = append(gameRecords, o.game)
		decisionRecords = append(decisionRecords, o.decisions...)
	}

	// Store experiment metadata
	writer, err := metrics.NewWriter(e.Dir, e.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}
	if err := writer.WriteAgentConfigs(e.Configs); err != nil {
		return "", fmt.Errorf("failed to store agent configs: %w", err)
	}
	log.Info().Msg("stored agent configs")

	// Store experiment results
	if err := writer.WriteGameRecords(gameRecords); err != nil {
		return "", fmt.Errorf("failed to write game records: %w", err)
	}
	log.Info().Msg("stored game records")

	if err := writer.WriteDecisionRecords(decisionRecords); err != nil {
		return "", fmt.Errorf("failed to write decision records: %w", err)
	}
	log.Info().Msg("stored decision records")

	return writer.Dir(), nil
}

// runGame executes a single game between two freshly built agents
func runGame(ctx context.Context, e Experiment, task job) outcome {
	seed := e.Seed + uint64(task.index)*2
	white := NewAgent(task.matchUp.White, seed)
	black := NewAgent(task.matchUp.Black, seed+1)

	options := []engine.Option{}
	if e.MaxTurns > 0 {
		options = append(options, engine.WithMaxTurns(e.MaxTurns))
	}
	result, err := engine.NewLocal(white, black, options...).Run(ctx)
	if err != nil {
		return outcome{err: fmt.Errorf("game %d: %w", task.index, err)}
	}

	log.Info().Msgf("completed game %d with winner: %q after %d turns", task.index+1, result.Winner, result.Turns)
	game, decisions := metrics.Records(result, task.matchUp.White.ID, task.matchUp.Black.ID)
	return outcome{game: game, decisions: decisions}
}

// NewAgent builds the agent a config describes.
func NewAgent(config metrics.AgentConfig, seed uint64) agent.Agent {
	options := []agent.Option{agent.WithRand(rand.New(rand.NewSource(seed)))}

	if config.Iterations > 0 {
		options = append(options, agent.WithIterations(config.Iterations))
	}
	if config.Duration > 0 {
		options = append(options, agent.WithDuration(config.Duration))
	}
	if config.Depth > 0 {
		options = append(options, agent.WithDepth(config.Depth))
	}
	if config.LeafDepth >= 0 {
		options = append(options, agent.WithLeafDepth(config.LeafDepth))
	}
	if config.MaxCandidates > 0 {
		options = append(options, agent.WithMaxCandidates(config.MaxCandidates))
	}

	if config.Temperature > 0 {
		return agent.NewTrainingAgent(config.Temperature, options...)
	}
	return agent.NewEvaluationAgent(options...)
}
