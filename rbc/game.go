package rbc

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog/log"

	"rbc/belief"
	"rbc/chess"
	"rbc/game"
)

// InformationWeight scales the uncertainty difference added to leaf scores.
const InformationWeight = 5.0

// RootInfoset keys player 0's first decision.
const RootInfoset = "0|"

// Config bounds one sub-decision. Candidates are the boards the deciding
// player still considers possible; they must all have that player to move.
type Config struct {
	Depth      int
	LeafDepth  int
	Phase      Phase
	Candidates []chess.Board
	Context    *chess.SearchContext
	Zobrist    *chess.ZobristTable // Keys the evaluator memo
}

// Game is the sub-decision as an extensive-form game. Player 0 is the side to
// move in the candidates and holds a belief over them. Player 1 is its
// opponent and also picks which candidate is the true board, so the solved
// strategy guards against the worst candidate rather than the average one.
//
// NodeInfo replays the whole history on every call; only the evaluator memo
// survives between calls. A Game is not safe for concurrent use.
type Game struct {
	cfg   Config
	color chess.Color
	fog   chess.Board
	memo  map[uint64]evaluation
}

type evaluation struct {
	board chess.Board
	score int
}

var _ game.Game[Action, string] = (*Game)(nil)

func NewGame(cfg Config) *Game {
	if len(cfg.Candidates) == 0 {
		panic("Must specify at least one candidate board")
	}
	color := cfg.Candidates[0].Turn()
	for i, b := range cfg.Candidates {
		if b.Turn() != color {
			panic(fmt.Sprintf("candidate %d has %s to move, candidate 0 has %s", i, b.Turn(), color))
		}
	}
	if cfg.Context == nil {
		cfg.Context = chess.NewSearchContext()
	}
	if cfg.Zobrist == nil {
		cfg.Zobrist = chess.NewZobristTable(0)
	}
	return &Game{
		cfg:   cfg,
		color: color,
		fog:   cfg.Candidates[0].Fog(color),
		memo:  make(map[uint64]evaluation),
	}
}

// Color is the color of player 0.
func (g *Game) Color() chess.Color {
	return g.color
}

// Reset drops memoized evaluations.
func (g *Game) Reset() {
	log.Debug().Int("evaluations", len(g.memo)).Msg("clearing evaluator memo")
	clear(g.memo)
}

func (g *Game) NodeInfo(history []Action) game.NodeInfo[Action, string] {
	if len(history) == 0 {
		actions := make([]Action, len(g.cfg.Candidates))
		for i := range actions {
			actions[i] = ChoosePositionAction(i)
		}
		return game.ChoiceNode[Action, string](1, "1|", actions)
	}

	p := g.replay(history)
	if len(history) >= g.cfg.Depth || !p.board.HasKing(chess.White) || !p.board.HasKing(chess.Black) {
		return game.TerminalNode[Action, string](g.value(p))
	}

	player := p.player(g.color)
	bs := p.beliefs[player]
	var actions []Action
	switch p.phase {
	case BeforeSense:
		for _, sq := range bs.SensibleSenses() {
			actions = append(actions, SenseAction(sq))
		}
	case BeforeMove:
		for _, m := range bs.SensibleMoves() {
			actions = append(actions, MoveAction(m))
		}
	}
	return game.ChoiceNode[Action, string](player, p.keys[player].String(), actions)
}

// position is the state reached by replaying a history.
type position struct {
	board   chess.Board
	beliefs [2]*belief.State
	phase   Phase
	keys    [2]*strings.Builder // observation transcript per player
}

func (p *position) player(color chess.Color) int {
	if p.board.Turn() == color {
		return 0
	}
	return 1
}

func (g *Game) replay(history []Action) *position {
	first := history[0]
	if first.Kind != ChoosePosition || first.Index < 0 || first.Index >= len(g.cfg.Candidates) {
		panic(fmt.Sprintf("history %v does not start by choosing one of %d candidates", history, len(g.cfg.Candidates)))
	}

	truth := g.cfg.Candidates[first.Index]
	p := &position{
		board: truth,
		beliefs: [2]*belief.State{
			belief.FromStates(g.color, g.fog, g.cfg.Candidates),
			belief.FromStates(g.color.Opponent(), truth.Fog(g.color.Opponent()), []chess.Board{truth}),
		},
		phase: g.cfg.Phase,
		keys:  [2]*strings.Builder{{}, {}},
	}
	p.keys[0].WriteString(RootInfoset)
	fmt.Fprintf(p.keys[1], "1|c%d", first.Index)

	for _, a := range history[1:] {
		mover := p.player(g.color)
		switch {
		case a.Kind == Sense && p.phase == BeforeSense:
			result := p.board.Sense(a.Square)
			must(p.beliefs[mover].Sense(a.Square, result), history)
			k := p.keys[mover]
			k.WriteString(" s" + a.Square.String() + "=")
			for _, sp := range result {
				k.WriteString(sp.Piece.String())
			}
			p.phase = BeforeMove

		case a.Kind == Move && p.phase == BeforeMove:
			taken := p.board.RequestedToTaken(a.Move)
			capture := p.board.Apply(taken)
			must(p.beliefs[mover].MyMove(a.Move, taken, capture), history)
			must(p.beliefs[1-mover].OpponentMove(capture), history)
			fmt.Fprintf(p.keys[mover], " m%s>%sx%s", a.Move, taken, capture)
			fmt.Fprintf(p.keys[1-mover], " o%s", capture)
			p.phase = BeforeSense

		default:
			panic(fmt.Sprintf("action %v is not playable in phase %s of history %v", a, p.phase, history))
		}
	}
	return p
}

// must turns a belief contradiction into a panic. Both beliefs contain the
// true board by construction, so a contradiction is a bookkeeping bug.
func must(err error, history []Action) {
	if err == nil {
		return
	}
	if errors.Is(err, belief.ErrContradiction) {
		panic(fmt.Sprintf("belief lost the true board replaying %v: %v", history, err))
	}
	panic(err)
}

// value scores a leaf for player 0: the evaluator on the true board plus the
// information bonus.
func (g *Game) value(p *position) float64 {
	score := float64(g.evaluate(p.board))
	if p.board.Turn() != g.color {
		score = -score
	}
	own := float64(p.beliefs[0].Size())
	opponent := float64(p.beliefs[1].Size())
	return score + InformationWeight*(math.Log2(opponent)-math.Log2(own))
}

// evaluate scores b from its side to move. A colliding hash only costs a
// fresh search, since entries keep their board.
func (g *Game) evaluate(b chess.Board) int {
	key := g.cfg.Zobrist.Hash(b)
	if e, ok := g.memo[key]; ok && e.board == b {
		return e.score
	}
	g.cfg.Context.Reset()
	score := chess.Search(b, g.cfg.LeafDepth, g.cfg.Context)
	g.memo[key] = evaluation{board: b, score: score}
	return score
}
