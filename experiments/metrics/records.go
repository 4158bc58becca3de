package metrics

import (
	"time"

	"github.com/google/uuid"

	"rbc/engine"
	"rbc/searcher/agent"
)

// AgentConfig describes how an agent of an experiment is built.
type AgentConfig struct {
	ID            int
	Iterations    int
	Duration      time.Duration
	Depth         int
	LeafDepth     int // Zero scores leaves statically, negative for the default
	MaxCandidates int
	Temperature   float64 // Zero for an evaluation agent, else a sampling training agent
}

type GameRecord struct {
	ID        uuid.UUID
	White     int // AgentConfig.ID
	Black     int // AgentConfig.ID
	Winner    string
	Reason    string
	Turns     int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

type DecisionRecord struct {
	Game       uuid.UUID // GameRecord.ID
	Turn       int
	Color      string
	BeliefSize int
	agent.Decision
}

// Records flattens a finished game into one game record and one decision
// record per sense and per move.
func Records(result engine.Result, white, black int) (GameRecord, []DecisionRecord) {
	game := GameRecord{
		ID:        result.ID,
		White:     white,
		Black:     black,
		Winner:    result.Winner,
		Reason:    result.Reason,
		Turns:     result.Turns,
		StartTime: result.StartTime,
		EndTime:   result.EndTime,
		Duration:  result.Duration,
	}

	decisions := make([]DecisionRecord, 0, 2*len(result.Records))
	for _, turn := range result.Records {
		for _, d := range []agent.Decision{turn.SenseDecision, turn.MoveDecision} {
			decisions = append(decisions, DecisionRecord{
				Game:       result.ID,
				Turn:       turn.Turn,
				Color:      turn.Color.String(),
				BeliefSize: turn.BeliefSize,
				Decision:   d,
			})
		}
	}
	return game, decisions
}
