package chess

import "sort"

// Scores in centipawns
const (
	MateScore = 100000
	Infinity  = 1 << 30
)

// MaxQDepth bounds quiescence search.
const MaxQDepth = 6

// PieceValue is indexed by PieceType. Losing the king loses the game, so it
// never enters the material balance.
var PieceValue = [7]int{0, 100, 320, 330, 500, 900, 0}

// SearchContext carries the statistics of the last search. It is reusable
// across searches after Reset.
type SearchContext struct {
	Nodes int
	PV    []Move
}

func NewSearchContext() *SearchContext {
	return &SearchContext{}
}

func (c *SearchContext) Reset() {
	c.Nodes = 0
	c.PV = nil
}

// Search runs a depth-bounded alpha-beta search followed by quiescence and
// returns the score from the side to move's perspective. A missing king is a
// decided game.
func Search(b Board, depth int, ctx *SearchContext) int {
	if ctx == nil {
		ctx = NewSearchContext()
	}
	score, pv := negamax(b, depth, -Infinity, Infinity, 0, ctx)
	ctx.PV = pv
	return score
}

func negamax(b Board, depth, alpha, beta, ply int, ctx *SearchContext) (int, []Move) {
	ctx.Nodes++
	if score, over := decided(b, ply); over {
		return score, nil
	}
	if depth <= 0 {
		return quiescence(b, alpha, beta, ply, 0, ctx), nil
	}

	moves := orderMoves(b, b.PseudoLegalMoves())
	// Passing is always available in RBC
	moves = append(moves, PassMove)

	var bestPV []Move
	best := -Infinity
	for _, m := range moves {
		child := b
		child.Apply(m)
		score, pv := negamax(child, depth-1, -beta, -alpha, ply+1, ctx)
		score = -score
		if score > best {
			best = score
			bestPV = append([]Move{m}, pv...)
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			break
		}
	}
	return best, bestPV
}

func quiescence(b Board, alpha, beta, ply, qdepth int, ctx *SearchContext) int {
	ctx.Nodes++
	if score, over := decided(b, ply); over {
		return score
	}

	standPat := Evaluate(b)
	if qdepth >= MaxQDepth || standPat >= beta {
		return standPat
	}
	if standPat > alpha {
		alpha = standPat
	}

	var captures []Move
	for _, m := range b.PseudoLegalMoves() {
		if b.Squares[m.To] != Empty {
			captures = append(captures, m)
		}
	}
	for _, m := range orderMoves(b, captures) {
		child := b
		child.Apply(m)
		score := -quiescence(child, -beta, -alpha, ply+1, qdepth+1, ctx)
		if score >= beta {
			return score
		}
		if score > alpha {
			alpha = score
		}
	}
	return alpha
}

// decided scores a position where a king was captured. Faster wins score
// higher.
func decided(b Board, ply int) (int, bool) {
	if !b.HasKing(b.Side) {
		return -MateScore + ply, true
	}
	if !b.HasKing(b.Side.Opponent()) {
		return MateScore - ply, true
	}
	return 0, false
}

// orderMoves sorts by MVV-LVA with king captures first.
func orderMoves(b Board, moves []Move) []Move {
	score := func(m Move) int {
		victim := b.Squares[m.To]
		if victim == Empty {
			return 0
		}
		if victim.Type() == King {
			return 1 << 20
		}
		return PieceValue[victim.Type()]*10 - PieceValue[b.Squares[m.From].Type()]/10
	}
	sort.SliceStable(moves, func(i, j int) bool { return score(moves[i]) > score(moves[j]) })
	return moves
}
