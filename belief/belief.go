package belief

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"

	"rbc/chess"
)

// ErrContradiction means no possible state survived an observation: the
// tracked model disagrees with the real game.
var ErrContradiction = errors.New("no possible state is consistent with the observation")

// State tracks, for one color, every board consistent with what that color
// has observed so far.
type State struct {
	Color  chess.Color
	Fog    chess.Board
	States []chess.Board
}

// New starts from the known initial position.
func New(color chess.Color) *State {
	start := chess.NewBoard()
	return &State{
		Color:  color,
		Fog:    start.Fog(color),
		States: []chess.Board{start},
	}
}

// FromStates seeds a belief with arbitrary candidate boards. Duplicates are
// dropped, order is kept.
func FromStates(color chess.Color, fog chess.Board, states []chess.Board) *State {
	set := newBoardSet(len(states))
	for _, b := range states {
		set.add(b)
	}
	return &State{Color: color, Fog: fog, States: set.boards}
}

// Clone returns a copy that shares no mutable state with s.
func (s *State) Clone() *State {
	return &State{
		Color:  s.Color,
		Fog:    s.Fog,
		States: slices.Clone(s.States),
	}
}

func (s *State) Size() int {
	return len(s.States)
}

// OpponentMove advances every possible state by every move the opponent could
// have taken, passing included, and keeps the results whose capture outcome
// matches the observed capture square.
func (s *State) OpponentMove(capture chess.Square) error {
	next := newBoardSet(len(s.States) * 24)
	for _, b := range s.States {
		moves := append(b.PseudoLegalMoves(), chess.PassMove)
		for _, m := range moves {
			child := b
			if child.Apply(m) == capture {
				next.add(child)
			}
		}
	}
	if err := s.replace(next, "opponent move capturing %s", capture); err != nil {
		return err
	}

	if capture != chess.NoSquare {
		s.Fog.Squares[capture] = chess.Empty
		s.Fog.Castling &^= chess.CastlingLoss(capture)
	}
	s.Fog.Side = s.Color
	s.Fog.EnPassant = chess.NoSquare
	return nil
}

// Sense keeps the states whose window at sq equals result exactly.
func (s *State) Sense(sq chess.Square, result []chess.SquarePiece) error {
	next := newBoardSet(len(s.States))
	for _, b := range s.States {
		if slices.Equal(b.Sense(sq), result) {
			next.add(b)
		}
	}
	return s.replace(next, "sense at %s", sq)
}

// SenseEntropy is the base-2 Shannon entropy of the window fingerprints at sq
// across possible states. It is zero iff every state shows the same window.
func (s *State) SenseEntropy(sq chess.Square) float64 {
	if len(s.States) == 0 {
		return 0
	}
	counts := make(map[uint64]int)
	order := make([]uint64, 0)
	for _, b := range s.States {
		fp := b.SenseFingerprint(sq)
		if counts[fp] == 0 {
			order = append(order, fp)
		}
		counts[fp]++
	}
	if len(order) == 1 {
		return 0
	}
	p := make([]float64, len(order))
	for i, fp := range order {
		p[i] = float64(counts[fp]) / float64(len(s.States))
	}
	return stat.Entropy(p) / math.Ln2
}

// MyMove resolves requested against every possible state and keeps those that
// would have produced the observed taken move and capture, advanced by it.
func (s *State) MyMove(requested, taken chess.Move, capture chess.Square) error {
	next := newBoardSet(len(s.States))
	for _, b := range s.States {
		if b.RequestedToTaken(requested) != taken {
			continue
		}
		child := b
		if child.Apply(taken) != capture {
			continue
		}
		next.add(child)
	}
	if err := s.replace(next, "move %s taken as %s capturing %s", requested, taken, capture); err != nil {
		return err
	}
	s.Fog.Apply(taken)
	return nil
}

// SensibleSenses returns the interior squares whose window is not already
// known. When every window is known the first interior square stands in, so
// there is always something to sense.
func (s *State) SensibleSenses() []chess.Square {
	candidates := chess.SensibleSenses()
	squares := make([]chess.Square, 0, len(candidates))
	for _, sq := range candidates {
		if s.SenseEntropy(sq) > 0 {
			squares = append(squares, sq)
		}
	}
	if len(squares) == 0 {
		return candidates[:1]
	}
	return squares
}

// SensibleMoves is the sorted union of the sensible moves of every possible
// state, plus a pass.
func (s *State) SensibleMoves() []chess.Move {
	seen := map[chess.Move]struct{}{chess.PassMove: {}}
	moves := []chess.Move{chess.PassMove}
	for _, b := range s.States {
		for _, m := range b.SensibleMoves() {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			moves = append(moves, m)
		}
	}
	chess.SortMoves(moves)
	return moves
}

func (s *State) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s belief, %d possible states\n", s.Color, len(s.States))
	sb.WriteString(s.Fog.String())
	return sb.String()
}

// replace installs the filtered set, or reports a contradiction and leaves
// the state untouched.
func (s *State) replace(next *boardSet, format string, args ...any) error {
	if len(next.boards) == 0 {
		observation := fmt.Sprintf(format, args...)
		log.Warn().Str("color", s.Color.String()).Int("states", len(s.States)).Msgf("belief contradiction after %s", observation)
		return fmt.Errorf("%s: %w", observation, ErrContradiction)
	}
	s.States = next.boards
	return nil
}

type boardSet struct {
	seen   map[chess.Board]struct{}
	boards []chess.Board
}

func newBoardSet(capacity int) *boardSet {
	return &boardSet{
		seen:   make(map[chess.Board]struct{}, capacity),
		boards: make([]chess.Board, 0, capacity),
	}
}

func (s *boardSet) add(b chess.Board) {
	if _, ok := s.seen[b]; ok {
		return
	}
	s.seen[b] = struct{}{}
	s.boards = append(s.boards, b)
}
