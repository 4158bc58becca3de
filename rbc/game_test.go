package rbc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"rbc/chess"
	"rbc/game"
	"rbc/searcher"
)

func mustFEN(t *testing.T, fen string) chess.Board {
	t.Helper()
	b, err := chess.FromFEN(fen)
	require.NoError(t, err)
	return b
}

func mustMove(t *testing.T, uci string) chess.Move {
	t.Helper()
	m, ok := chess.ParseMove(uci)
	require.True(t, ok)
	return m
}

// rookEnding has white unsure whether the black king stands on e8 or d8.
func rookEnding(t *testing.T, depth int, phase Phase) *Game {
	t.Helper()
	return NewGame(Config{
		Depth:     depth,
		LeafDepth: 1,
		Phase:     phase,
		Candidates: []chess.Board{
			mustFEN(t, "4k3/8/8/8/8/8/8/R3K3 w - - 0 1"),
			mustFEN(t, "3k4/8/8/8/8/8/8/R3K3 w - - 0 1"),
		},
	})
}

func TestNodeInfo(t *testing.T) {
	t.Run("root lets the opponent pick the true board", func(t *testing.T) {
		g := rookEnding(t, 3, BeforeSense)

		info := g.NodeInfo(nil)

		require.Equal(t, game.Choice, info.Kind)
		require.Equal(t, 1, info.Player)
		require.Equal(t, []Action{ChoosePositionAction(0), ChoosePositionAction(1)}, info.Actions)
		require.Equal(t, chess.White, g.Color())
	})

	t.Run("player 0 cannot see the chosen board", func(t *testing.T) {
		g := rookEnding(t, 3, BeforeSense)

		first := g.NodeInfo([]Action{ChoosePositionAction(0)})
		second := g.NodeInfo([]Action{ChoosePositionAction(1)})

		require.Equal(t, 0, first.Player)
		require.Equal(t, first.Infoset, second.Infoset)
		require.Equal(t, first.Actions, second.Actions)
		for _, a := range first.Actions {
			require.Equal(t, Sense, a.Kind)
		}
	})

	t.Run("sensing separates the candidates", func(t *testing.T) {
		g := rookEnding(t, 3, BeforeSense)
		d7, _ := chess.ParseSquare("d7")

		first := g.NodeInfo([]Action{ChoosePositionAction(0), SenseAction(d7)})
		second := g.NodeInfo([]Action{ChoosePositionAction(1), SenseAction(d7)})

		require.NotEqual(t, first.Infoset, second.Infoset)
		require.Contains(t, first.Actions, MoveAction(chess.PassMove))
		require.Contains(t, first.Actions, MoveAction(mustMove(t, "a1a8")))
	})

	t.Run("replay is pure", func(t *testing.T) {
		g := rookEnding(t, 4, BeforeMove)
		histories := [][]Action{
			nil,
			{ChoosePositionAction(1)},
			{ChoosePositionAction(1), MoveAction(mustMove(t, "a1a7"))},
			{ChoosePositionAction(0), MoveAction(chess.PassMove)},
			{ChoosePositionAction(0), MoveAction(mustMove(t, "e1e2")), SenseAction(20), MoveAction(chess.PassMove)},
		}

		for _, h := range histories {
			require.Equal(t, g.NodeInfo(h), g.NodeInfo(h), "History %v", h)
		}
	})

	t.Run("leaf combines evaluation and information bonus", func(t *testing.T) {
		g := rookEnding(t, 1, BeforeSense)

		info := g.NodeInfo([]Action{ChoosePositionAction(0)})

		// White is unsure between two boards, black knows the truth.
		want := float64(chess.Search(g.cfg.Candidates[0], 1, nil)) - InformationWeight
		require.Equal(t, game.Terminal, info.Kind)
		require.InDelta(t, want, info.Payoff, 1e-9)
	})

	t.Run("king capture ends the game", func(t *testing.T) {
		g := NewGame(Config{
			Depth:      10,
			LeafDepth:  1,
			Phase:      BeforeMove,
			Candidates: []chess.Board{mustFEN(t, "k7/8/8/8/8/8/8/R3K3 w - - 0 1")},
		})

		info := g.NodeInfo([]Action{ChoosePositionAction(0), MoveAction(mustMove(t, "a1a8"))})

		require.Equal(t, game.Terminal, info.Kind)
		require.Greater(t, info.Payoff, float64(chess.MateScore)/2, "White captured the king")
	})

	t.Run("actions out of phase panic", func(t *testing.T) {
		g := rookEnding(t, 4, BeforeSense)

		require.Panics(t, func() {
			g.NodeInfo([]Action{ChoosePositionAction(0), MoveAction(chess.PassMove)})
		})
		require.Panics(t, func() {
			g.NodeInfo([]Action{ChoosePositionAction(5)})
		})
	})
}

func TestNewGame(t *testing.T) {
	require.Panics(t, func() { NewGame(Config{Depth: 2}) }, "A game needs candidates")
	require.Panics(t, func() {
		NewGame(Config{Depth: 2, Candidates: []chess.Board{
			mustFEN(t, "4k3/8/8/8/8/8/8/4K3 w - - 0 1"),
			mustFEN(t, "4k3/8/8/8/8/8/8/4K3 b - - 0 1"),
		}})
	}, "Candidates must share the side to move")
}

func TestEncodeAndSolve(t *testing.T) {
	g := rookEnding(t, 4, BeforeSense)

	var enc *game.Encoding[Action, string]
	require.NotPanics(t, func() { enc = game.NewEncoding[Action, string](g) }, "Transcript keys should keep perfect recall")

	root, ok := enc.InfosetID(RootInfoset)
	require.True(t, ok)
	require.Equal(t, 0, enc.Infosets()[root].Player)
	require.NotEmpty(t, g.memo, "Leaves should be memoized")

	cfr := searcher.NewCFR(enc)
	for i := 0; i < 20; i++ {
		cfr.Step()
	}
	policy := cfr.Strategy()[RootInfoset]
	require.Len(t, policy.Probs, len(policy.Actions))
	require.InDelta(t, 1.0, policy.Visit, 1e-9, "Player 0's first decision is always reached")

	g.Reset()
	require.Empty(t, g.memo)
}

func TestEvaluatorMemo(t *testing.T) {
	z := chess.NewZobristTable(3)
	b := mustFEN(t, "4k3/8/8/8/8/8/8/R3K3 b - - 0 1")
	g := NewGame(Config{Depth: 2, LeafDepth: 1, Candidates: []chess.Board{b}, Zobrist: z})

	score := g.evaluate(b)

	require.Equal(t, evaluation{board: b, score: score}, g.memo[z.Hash(b)], "Entries should be keyed by the given table")

	t.Run("a colliding entry is searched again", func(t *testing.T) {
		other := mustFEN(t, "3k4/8/8/8/8/8/8/R3K3 b - - 0 1")
		g.memo[z.Hash(other)] = evaluation{board: b, score: score + 1000}

		require.Equal(t, chess.Search(other, 1, chess.NewSearchContext()), g.evaluate(other))
		require.Equal(t, other, g.memo[z.Hash(other)].board)
	})
}
