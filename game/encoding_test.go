package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// pennies is matching pennies: player 1 picks without seeing player 0.
type pennies struct{}

func (pennies) NodeInfo(history []string) NodeInfo[string, string] {
	switch len(history) {
	case 0:
		return ChoiceNode[string, string](0, "p0", []string{"H", "T"})
	case 1:
		return ChoiceNode[string, string](1, "p1", []string{"H", "T"})
	}
	if history[0] == history[1] {
		return TerminalNode[string, string](1)
	}
	return TerminalNode[string, string](-1)
}

// coin flips a biased coin that only player 0 sees before guessing.
type coin struct {
	heads float64
}

func (c coin) NodeInfo(history []string) NodeInfo[string, string] {
	switch len(history) {
	case 0:
		return ChanceNode[string, string]([]Outcome[string]{
			{Probability: c.heads, Action: "H"},
			{Probability: 1 - c.heads, Action: "T"},
		})
	case 1:
		return ChoiceNode[string, string](0, "saw "+history[0], []string{"H", "T"})
	}
	if history[0] == history[1] {
		return TerminalNode[string, string](1)
	}
	return TerminalNode[string, string](0)
}

// forgetful asks player 0 twice but buckets the second decision into one
// infoset whatever the first decision was.
type forgetful struct{}

func (forgetful) NodeInfo(history []string) NodeInfo[string, string] {
	switch len(history) {
	case 0:
		return ChoiceNode[string, string](0, "first", []string{"a", "b"})
	case 1:
		return ChoiceNode[string, string](0, "second", []string{"x", "y"})
	}
	return TerminalNode[string, string](0)
}

// mislabeled reuses one infoset key for two different players or action sets.
type mislabeled struct {
	player  bool
	actions bool
}

func (m mislabeled) NodeInfo(history []string) NodeInfo[string, string] {
	switch len(history) {
	case 0:
		return ChanceNode[string, string]([]Outcome[string]{{0.5, "l"}, {0.5, "r"}})
	case 1:
		player := 0
		actions := []string{"x", "y"}
		if history[0] == "r" && m.player {
			player = 1
		}
		if history[0] == "r" && m.actions {
			actions = []string{"x", "z"}
		}
		return ChoiceNode[string, string](player, "shared", actions)
	}
	return TerminalNode[string, string](0)
}

type badChance struct{}

func (badChance) NodeInfo(history []string) NodeInfo[string, string] {
	if len(history) == 0 {
		return ChanceNode[string, string]([]Outcome[string]{{0.5, "l"}, {0.4, "r"}})
	}
	return TerminalNode[string, string](0)
}

func TestNewEncoding(t *testing.T) {
	t.Run("deduplicating infosets across histories", func(t *testing.T) {
		e := NewEncoding[string, string](pennies{})

		require.Len(t, e.Nodes(), 7, "Root, two player 1 nodes and four leaves")
		require.Len(t, e.Infosets(), 2, "Player 1 cannot tell player 0's choices apart")
		require.Equal(t, 2, e.Players())

		id, ok := e.InfosetID("p1")
		require.True(t, ok)
		is := e.Infosets()[id]
		require.Equal(t, 1, is.Player)
		require.Equal(t, []string{"H", "T"}, is.Actions)
		require.Empty(t, is.History, "Player 1 has not acted before")
	})

	t.Run("storing chance probabilities", func(t *testing.T) {
		e := NewEncoding[string, string](coin{heads: 0.7})

		root := e.Nodes()[0]
		require.Equal(t, Chance, root.Kind)
		require.Equal(t, []float64{0.7, 0.3}, root.Probs)
		require.Len(t, e.Infosets(), 2, "Player 0 sees the coin")
	})

	t.Run("linking children to parents", func(t *testing.T) {
		e := NewEncoding[string, string](coin{heads: 0.5})

		for id, n := range e.Nodes() {
			if n.Kind == Terminal {
				require.Len(t, e.Path(id), 2, "Leaves sit two actions below the root")
			}
			for c := n.First; c < n.First+n.Count; c++ {
				require.Equal(t, id, e.Nodes()[c].Parent)
			}
		}
		leaf := e.Nodes()[e.Nodes()[e.Nodes()[0].First+1].First]
		require.Equal(t, Terminal, leaf.Kind)
		require.Equal(t, 0.0, leaf.Payoff, "Guessing heads on tails loses")
	})

	t.Run("recording observable history", func(t *testing.T) {
		e := NewEncoding[string, string](sequential{})

		id, ok := e.InfosetID("second after a")
		require.True(t, ok)
		first, _ := e.InfosetID("first")
		require.Equal(t, []Step{{Infoset: first, Action: 0}}, e.Infosets()[id].History)
	})
}

// sequential is forgetful with perfect recall restored.
type sequential struct{}

func (sequential) NodeInfo(history []string) NodeInfo[string, string] {
	switch len(history) {
	case 0:
		return ChoiceNode[string, string](0, "first", []string{"a", "b"})
	case 1:
		return ChoiceNode[string, string](0, "second after "+history[0], []string{"x", "y"})
	}
	return TerminalNode[string, string](0)
}

func TestNewEncodingPanics(t *testing.T) {
	t.Run("perfect recall violation", func(t *testing.T) {
		require.PanicsWithValue(t,
			`perfect recall violated at infoset second, history [b]: player 0 observed [{0 1}], stored [{0 0}]`,
			func() { NewEncoding[string, string](forgetful{}) })
	})

	t.Run("player mismatch", func(t *testing.T) {
		require.Panics(t, func() { NewEncoding[string, string](mislabeled{player: true}) })
	})

	t.Run("action set mismatch", func(t *testing.T) {
		require.Panics(t, func() { NewEncoding[string, string](mislabeled{actions: true}) })
	})

	t.Run("chance probabilities not summing to one", func(t *testing.T) {
		require.Panics(t, func() { NewEncoding[string, string](badChance{}) })
	})

	t.Run("well-formed game does not panic", func(t *testing.T) {
		require.NotPanics(t, func() { NewEncoding[string, string](mislabeled{}) })
	})
}
