package game

// Any sequential game with hidden information that aims to be solvable by the
// searcher package implements Game; the searcher only ever sees the Encoding
// built from it.

// Kind classifies a node of an extensive-form game.
type Kind uint8

const (
	Terminal Kind = iota
	Chance
	Choice
)

func (k Kind) String() string {
	switch k {
	case Terminal:
		return "terminal"
	case Chance:
		return "chance"
	case Choice:
		return "choice"
	}
	return "unknown"
}

// Outcome is one branch of a chance node.
type Outcome[A any] struct {
	Probability float64
	Action      A
}

// NodeInfo describes the node reached by a history. Only the fields of its
// Kind are meaningful: Payoff for Terminal, Outcomes for Chance, Player,
// Infoset and Actions for Choice.
type NodeInfo[A any, I comparable] struct {
	Kind     Kind
	Payoff   float64 // player 0's payoff, player 1 receives its negation
	Outcomes []Outcome[A]
	Player   int
	Infoset  I
	Actions  []A
}

func TerminalNode[A any, I comparable](payoff float64) NodeInfo[A, I] {
	return NodeInfo[A, I]{Kind: Terminal, Payoff: payoff}
}

func ChanceNode[A any, I comparable](outcomes []Outcome[A]) NodeInfo[A, I] {
	return NodeInfo[A, I]{Kind: Chance, Outcomes: outcomes}
}

func ChoiceNode[A any, I comparable](player int, infoset I, actions []A) NodeInfo[A, I] {
	return NodeInfo[A, I]{Kind: Choice, Player: player, Infoset: infoset, Actions: actions}
}

// Game maps an action history from the root to the node it reaches. It must
// be a pure function of the history: equal histories give equal NodeInfo.
// The history slice is only valid for the duration of the call.
type Game[A comparable, I comparable] interface {
	NodeInfo(history []A) NodeInfo[A, I]
}
