package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"rbc/chess"
	"rbc/searcher/agent"
)

const (
	ReasonKingCaptured = "king captured"
	ReasonTurnLimit    = "turn limit"
)

type Engine interface {
	// Run plays a game till a king is captured or the turn limit is reached
	Run(ctx context.Context) (Result, error)
}

// TurnRecord is what one player observed and did during its turn.
type TurnRecord struct {
	Turn            int
	Color           chess.Color
	OpponentCapture chess.Square
	Sense           chess.Square
	Requested       chess.Move
	Taken           chess.Move
	Capture         chess.Square
	SenseDecision   agent.Decision
	MoveDecision    agent.Decision
	BeliefSize      int
}

type Result struct {
	ID        uuid.UUID
	Winner    string // Color name, empty on a draw
	Reason    string
	Turns     int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Records   []TurnRecord
	Final     chess.Board
}
