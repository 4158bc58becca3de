package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"rbc/belief"
	"rbc/chess"
	"rbc/meta"
	"rbc/searcher/agent"
)

type Option func(l *Local)

func WithMaxTurns(turns int) Option {
	return func(l *Local) {
		if turns > 0 {
			l.maxTurns = turns
		}
	}
}

// WithStart replaces the standard starting position. Both players know it.
func WithStart(b chess.Board) Option {
	return func(l *Local) {
		l.start = b
	}
}

// Local referees a game between two in-process agents on one goroutine.
type Local struct {
	agents   [2]agent.Agent // Indexed by chess.Color
	maxTurns int
	start    chess.Board
}

var _ Engine = (*Local)(nil)

func NewLocal(white, black agent.Agent, options ...Option) *Local {
	if white == nil || black == nil {
		panic("need an agent for each color")
	}
	l := &Local{
		agents:   [2]agent.Agent{white, black},
		maxTurns: meta.MAX_TURNS,
		start:    chess.NewBoard(),
	}
	for _, option := range options {
		option(l)
	}
	return l
}

func (l *Local) Run(ctx context.Context) (Result, error) {
	result := Result{
		ID:        uuid.New(),
		StartTime: time.Now(),
	}
	logger := log.With().Str("game", result.ID.String()).Logger()

	board := l.start
	beliefs := [2]*belief.State{
		belief.FromStates(chess.White, board.Fog(chess.White), []chess.Board{board}),
		belief.FromStates(chess.Black, board.Fog(chess.Black), []chess.Board{board}),
	}
	capture := chess.NoSquare
	logger.Info().Msgf("%s is starting", board.Turn())

	for turn := 1; turn <= l.maxTurns; turn++ {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("game %s interrupted at turn %d: %w", result.ID, turn, err)
		}

		color := board.Turn()
		bs := beliefs[color]
		a := l.agents[color]
		record := TurnRecord{Turn: turn, Color: color, OpponentCapture: capture}

		// The first player to move has no opponent move to account for
		if turn > 1 {
			if err := bs.OpponentMove(capture); err != nil {
				return result, fmt.Errorf("turn %d: %w", turn, err)
			}
		}

		sq, senseDecision := a.ChooseSense(ctx, bs)
		if err := bs.Sense(sq, board.Sense(sq)); err != nil {
			return result, fmt.Errorf("turn %d: %w", turn, err)
		}

		requested, moveDecision := a.ChooseMove(ctx, bs)
		taken := board.RequestedToTaken(requested)
		capture = board.Apply(taken)
		if err := bs.MyMove(requested, taken, capture); err != nil {
			return result, fmt.Errorf("turn %d: %w", turn, err)
		}

		record.Sense = sq
		record.Requested = requested
		record.Taken = taken
		record.Capture = capture
		record.SenseDecision = senseDecision
		record.MoveDecision = moveDecision
		record.BeliefSize = bs.Size()
		result.Records = append(result.Records, record)
		result.Turns = turn

		logger.Debug().
			Int("turn", turn).
			Str("color", color.String()).
			Str("sense", sq.String()).
			Str("requested", requested.String()).
			Str("taken", taken.String()).
			Str("capture", capture.String()).
			Int("belief", bs.Size()).
			Msg("turn played")

		if !board.HasKing(color.Opponent()) {
			result.Winner = color.String()
			result.Reason = ReasonKingCaptured
			break
		}
	}
	if result.Reason == "" {
		result.Reason = ReasonTurnLimit
	}

	result.Final = board
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	logger.Info().Str("winner", result.Winner).Str("reason", result.Reason).Int("turns", result.Turns).Msg("game over")
	return result, nil
}
