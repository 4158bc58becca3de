package game

import (
	"fmt"
	"math"
	"slices"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
)

// ProbabilityTolerance bounds how far chance probabilities may sum from one.
const ProbabilityTolerance = 1e-6

// Step is one decision a player made: the infoset and the index of the
// chosen action.
type Step struct {
	Infoset int
	Action  int
}

// Infoset is a set of choice nodes the deciding player cannot tell apart.
// History is the player's own sequence of earlier decisions, identical for
// every node of the set under perfect recall.
type Infoset[A comparable, I comparable] struct {
	Key     I
	Player  int
	Actions []A
	History []Step
}

// Node is an arena entry. Children occupy Count consecutive ids from First.
type Node struct {
	Kind    Kind
	Parent  int // -1 for the root
	Action  int // index of the parent's action leading here
	Payoff  float64
	Infoset int // -1 unless Kind is Choice
	First   int
	Count   int
	Probs   []float64 // chance probabilities per child
}

// Encoding is the fully expanded game tree with deduplicated infosets.
type Encoding[A comparable, I comparable] struct {
	nodes    []Node
	outcomes map[int][]A // chance node id -> outcome actions
	infosets []Infoset[A, I]
	index    map[I]int
}

// NewEncoding expands g depth-first from the empty history. It panics when g
// breaks an invariant of a well-formed game: an infoset seen with another
// player, another action set or another observable history, or chance
// probabilities that do not sum to one.
func NewEncoding[A comparable, I comparable](g Game[A, I]) *Encoding[A, I] {
	e := &Encoding[A, I]{
		nodes:    []Node{{Parent: -1, Infoset: -1}},
		outcomes: make(map[int][]A),
		index:    make(map[I]int),
	}
	e.expand(g, 0, nil, nil)

	log.Debug().Int("nodes", len(e.nodes)).Int("infosets", len(e.infosets)).Msg("encoded game tree")
	return e
}

func (e *Encoding[A, I]) expand(g Game[A, I], id int, history []A, observed [][]Step) {
	info := g.NodeInfo(history)

	switch info.Kind {
	case Terminal:
		e.nodes[id].Kind = Terminal
		e.nodes[id].Payoff = info.Payoff

	case Chance:
		probs := make([]float64, len(info.Outcomes))
		actions := make([]A, len(info.Outcomes))
		for i, o := range info.Outcomes {
			probs[i] = o.Probability
			actions[i] = o.Action
		}
		if len(probs) == 0 || math.Abs(floats.Sum(probs)-1) > ProbabilityTolerance {
			panic(fmt.Sprintf("chance probabilities %v at history %v do not sum to one", probs, history))
		}
		first := e.reserve(id, len(actions))
		e.nodes[id].Kind = Chance
		e.nodes[id].Probs = probs
		e.outcomes[id] = actions
		for i, a := range actions {
			e.expand(g, first+i, append(history, a), observed)
		}

	case Choice:
		if info.Player < 0 {
			panic(fmt.Sprintf("negative player %d at history %v", info.Player, history))
		}
		if len(info.Actions) == 0 {
			panic(fmt.Sprintf("choice node without actions at history %v", history))
		}
		for len(observed) <= info.Player {
			observed = append(observed, nil)
		}
		is := e.lookup(info, observed[info.Player], history)
		first := e.reserve(id, len(info.Actions))
		e.nodes[id].Kind = Choice
		e.nodes[id].Infoset = is
		for i, a := range info.Actions {
			observed[info.Player] = append(observed[info.Player], Step{Infoset: is, Action: i})
			e.expand(g, first+i, append(history, a), observed)
			observed[info.Player] = observed[info.Player][:len(observed[info.Player])-1]
		}

	default:
		panic(fmt.Sprintf("unknown node kind %d at history %v", info.Kind, history))
	}
}

// reserve appends n consecutive children of parent and returns the first id.
func (e *Encoding[A, I]) reserve(parent, n int) int {
	first := len(e.nodes)
	for i := 0; i < n; i++ {
		e.nodes = append(e.nodes, Node{Parent: parent, Action: i, Infoset: -1})
	}
	e.nodes[parent].First = first
	e.nodes[parent].Count = n
	return first
}

// lookup finds or inserts the infoset of a choice node and checks it agrees
// with every earlier node of the same set.
func (e *Encoding[A, I]) lookup(info NodeInfo[A, I], observed []Step, history []A) int {
	if id, ok := e.index[info.Infoset]; ok {
		stored := e.infosets[id]
		if stored.Player != info.Player {
			panic(fmt.Sprintf("infoset %v at history %v has player %d, stored with player %d",
				info.Infoset, history, info.Player, stored.Player))
		}
		if !slices.Equal(stored.Actions, info.Actions) {
			panic(fmt.Sprintf("infoset %v at history %v has actions %v, stored with actions %v",
				info.Infoset, history, info.Actions, stored.Actions))
		}
		if !slices.Equal(stored.History, observed) {
			panic(fmt.Sprintf("perfect recall violated at infoset %v, history %v: player %d observed %v, stored %v",
				info.Infoset, history, info.Player, observed, stored.History))
		}
		return id
	}

	id := len(e.infosets)
	e.infosets = append(e.infosets, Infoset[A, I]{
		Key:     info.Infoset,
		Player:  info.Player,
		Actions: slices.Clone(info.Actions),
		History: slices.Clone(observed),
	})
	e.index[info.Infoset] = id
	return id
}

// Nodes exposes the arena. Callers must not modify it.
func (e *Encoding[A, I]) Nodes() []Node {
	return e.nodes
}

// Infosets exposes the infoset table. Callers must not modify it.
func (e *Encoding[A, I]) Infosets() []Infoset[A, I] {
	return e.infosets
}

// InfosetID returns the id of the infoset keyed by key.
func (e *Encoding[A, I]) InfosetID(key I) (int, bool) {
	id, ok := e.index[key]
	return id, ok
}

// Players is one more than the largest acting player.
func (e *Encoding[A, I]) Players() int {
	n := 0
	for _, is := range e.infosets {
		n = max(n, is.Player+1)
	}
	return n
}

// Path rebuilds the action history of a node by walking parent links.
func (e *Encoding[A, I]) Path(id int) []A {
	var path []A
	for id > 0 {
		n := e.nodes[id]
		parent := e.nodes[n.Parent]
		if parent.Kind == Chance {
			path = append(path, e.outcomes[n.Parent][n.Action])
		} else {
			path = append(path, e.infosets[parent.Infoset].Actions[n.Action])
		}
		id = n.Parent
	}
	slices.Reverse(path)
	return path
}
