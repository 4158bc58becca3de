package rbc

import (
	"fmt"

	"rbc/chess"
)

type ActionKind uint8

const (
	ChoosePosition ActionKind = iota
	Sense
	Move
)

// Action is one edge of the sub-decision tree. Only the field matching Kind
// is meaningful: Index for ChoosePosition, Square for Sense, Move for Move.
type Action struct {
	Kind   ActionKind
	Index  int
	Square chess.Square
	Move   chess.Move
}

func ChoosePositionAction(i int) Action {
	return Action{Kind: ChoosePosition, Index: i, Square: chess.NoSquare, Move: chess.PassMove}
}

func SenseAction(sq chess.Square) Action {
	return Action{Kind: Sense, Square: sq, Move: chess.PassMove}
}

func MoveAction(m chess.Move) Action {
	return Action{Kind: Move, Square: chess.NoSquare, Move: m}
}

func (a Action) String() string {
	switch a.Kind {
	case ChoosePosition:
		return fmt.Sprintf("choose(%d)", a.Index)
	case Sense:
		return "sense(" + a.Square.String() + ")"
	case Move:
		return "move(" + a.Move.String() + ")"
	}
	return "unknown"
}

// Phase is what the side to move does next.
type Phase uint8

const (
	BeforeSense Phase = iota
	BeforeMove
)

func (p Phase) String() string {
	if p == BeforeSense {
		return "sense"
	}
	return "move"
}
