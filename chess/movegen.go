package chess

import "sort"

// Direction offsets as (rank, file) deltas
var (
	rookDirs   = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopDirs = [][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	queenDirs  = append(append([][2]int{}, rookDirs...), bishopDirs...)
	knightDirs = [][2]int{{2, 1}, {2, -1}, {-2, 1}, {-2, -1}, {1, 2}, {1, -2}, {-1, 2}, {-1, -2}}
	kingDirs   = queenDirs
)

var promotionTypes = []PieceType{Queen, Rook, Bishop, Knight}

// PseudoLegalMoves generates every move of the side to move under RBC rules:
// there is no notion of check, a king may be left attacked and castling only
// needs its rights and empty squares between king and rook.
func (b Board) PseudoLegalMoves() []Move {
	moves := make([]Move, 0, 48)
	for sq := Square(0); sq < 64; sq++ {
		p := b.Squares[sq]
		if p == Empty || p.Color() != b.Side {
			continue
		}
		moves = b.pieceMoves(sq, moves)
	}
	return moves
}

// SensibleMoves are the pseudo-legal moves without rook and bishop
// underpromotions, which a queen promotion dominates.
func (b Board) SensibleMoves() []Move {
	pseudo := b.PseudoLegalMoves()
	moves := pseudo[:0]
	for _, m := range pseudo {
		if m.Promotion == Rook || m.Promotion == Bishop {
			continue
		}
		moves = append(moves, m)
	}
	return moves
}

func (b Board) pieceMoves(sq Square, moves []Move) []Move {
	p := b.Squares[sq]
	switch p.Type() {
	case Pawn:
		return b.pawnMoves(sq, p.Color(), moves)
	case Knight:
		return b.stepMoves(sq, p.Color(), knightDirs, moves)
	case Bishop:
		return b.slidingMoves(sq, p.Color(), bishopDirs, moves)
	case Rook:
		return b.slidingMoves(sq, p.Color(), rookDirs, moves)
	case Queen:
		return b.slidingMoves(sq, p.Color(), queenDirs, moves)
	case King:
		moves = b.stepMoves(sq, p.Color(), kingDirs, moves)
		return b.castlingMoves(sq, p.Color(), moves)
	}
	return moves
}

func (b Board) pawnMoves(sq Square, c Color, moves []Move) []Move {
	dir, startRank, promoRank := 1, 1, 7
	if c == Black {
		dir, startRank, promoRank = -1, 6, 0
	}

	add := func(to Square) {
		if to.Rank() == promoRank {
			for _, t := range promotionTypes {
				moves = append(moves, Move{From: sq, To: to, Promotion: t})
			}
			return
		}
		moves = append(moves, Move{From: sq, To: to})
	}

	one := FromRankFile(sq.Rank()+dir, sq.File())
	if one != NoSquare && b.Squares[one] == Empty {
		add(one)
		if sq.Rank() == startRank {
			two := FromRankFile(sq.Rank()+2*dir, sq.File())
			if b.Squares[two] == Empty {
				moves = append(moves, Move{From: sq, To: two})
			}
		}
	}

	for _, df := range []int{-1, 1} {
		to := FromRankFile(sq.Rank()+dir, sq.File()+df)
		if to == NoSquare {
			continue
		}
		target := b.Squares[to]
		if (target != Empty && target.Color() != c) || to == b.EnPassant {
			add(to)
		}
	}
	return moves
}

func (b Board) stepMoves(sq Square, c Color, dirs [][2]int, moves []Move) []Move {
	for _, d := range dirs {
		to := FromRankFile(sq.Rank()+d[0], sq.File()+d[1])
		if to == NoSquare {
			continue
		}
		if target := b.Squares[to]; target == Empty || target.Color() != c {
			moves = append(moves, Move{From: sq, To: to})
		}
	}
	return moves
}

func (b Board) slidingMoves(sq Square, c Color, dirs [][2]int, moves []Move) []Move {
	for _, d := range dirs {
		for i := 1; ; i++ {
			to := FromRankFile(sq.Rank()+i*d[0], sq.File()+i*d[1])
			if to == NoSquare {
				break
			}
			target := b.Squares[to]
			if target == Empty {
				moves = append(moves, Move{From: sq, To: to})
				continue
			}
			if target.Color() != c {
				moves = append(moves, Move{From: sq, To: to})
			}
			break
		}
	}
	return moves
}

func (b Board) castlingMoves(sq Square, c Color, moves []Move) []Move {
	if c == White && sq == 4 {
		if b.Castling&CastleWK != 0 && b.Squares[7] == WRook && b.emptyBetween(5, 6) {
			moves = append(moves, Move{From: 4, To: 6})
		}
		if b.Castling&CastleWQ != 0 && b.Squares[0] == WRook && b.emptyBetween(1, 3) {
			moves = append(moves, Move{From: 4, To: 2})
		}
	} else if c == Black && sq == 60 {
		if b.Castling&CastleBK != 0 && b.Squares[63] == BRook && b.emptyBetween(61, 62) {
			moves = append(moves, Move{From: 60, To: 62})
		}
		if b.Castling&CastleBQ != 0 && b.Squares[56] == BRook && b.emptyBetween(57, 59) {
			moves = append(moves, Move{From: 60, To: 58})
		}
	}
	return moves
}

func (b Board) emptyBetween(from, to Square) bool {
	for sq := from; sq <= to; sq++ {
		if b.Squares[sq] != Empty {
			return false
		}
	}
	return true
}

func (b Board) isPseudoLegal(m Move) bool {
	p := b.PieceAt(m.From)
	if p == Empty || p.Color() != b.Side {
		return false
	}
	for _, legal := range b.pieceMoves(m.From, nil) {
		if legal == m {
			return true
		}
	}
	return false
}

// RequestedToTaken resolves a requested move against this position. A legal
// move is taken unchanged and a pawn reaching the last rank promotes to a
// queen by default. A blocked pawn push or slide stops at the farthest
// reachable square of its path, capturing the blocker when it is an enemy.
// Anything else becomes a pass.
func (b Board) RequestedToTaken(requested Move) Move {
	if requested.IsPass() {
		return PassMove
	}
	p := b.PieceAt(requested.From)
	if p == Empty || p.Color() != b.Side {
		return PassMove
	}
	m := withDefaultPromotion(p, requested)
	if b.isPseudoLegal(m) {
		return m
	}
	switch p.Type() {
	case Pawn, Bishop, Rook, Queen:
		return b.slide(p, m)
	}
	return PassMove
}

func withDefaultPromotion(p Piece, m Move) Move {
	if p.Type() != Pawn {
		m.Promotion = NoPieceType
		return m
	}
	last := 7
	if p.Color() == Black {
		last = 0
	}
	if m.To.Rank() != last {
		m.Promotion = NoPieceType
	} else if m.Promotion == NoPieceType {
		m.Promotion = Queen
	}
	return m
}

// slide truncates a straight or diagonal move to the farthest square of its
// path the piece can legally reach, or passes when there is none.
func (b Board) slide(p Piece, m Move) Move {
	dr := m.To.Rank() - m.From.Rank()
	df := m.To.File() - m.From.File()
	if dr != 0 && df != 0 && abs(dr) != abs(df) {
		return PassMove
	}
	sr, sf := sign(dr), sign(df)
	for i := max(abs(dr), abs(df)) - 1; i >= 1; i-- {
		to := FromRankFile(m.From.Rank()+i*sr, m.From.File()+i*sf)
		s := withDefaultPromotion(p, Move{From: m.From, To: to, Promotion: m.Promotion})
		if b.isPseudoLegal(s) {
			return s
		}
	}
	return PassMove
}

// Apply plays m and returns the square of the captured piece, or NoSquare.
// A pass only hands the turn over.
func (b *Board) Apply(m Move) Square {
	us := b.Side
	ep := b.EnPassant
	b.EnPassant = NoSquare
	b.Side = us.Opponent()
	if m.IsPass() {
		return NoSquare
	}

	piece := b.Squares[m.From]
	capture := NoSquare
	if b.Squares[m.To] != Empty {
		capture = m.To
	}

	if piece.Type() == Pawn {
		if m.To == ep && b.Squares[m.To] == Empty {
			capture = FromRankFile(m.From.Rank(), m.To.File())
			b.Squares[capture] = Empty
		}
		if abs(m.To.Rank()-m.From.Rank()) == 2 {
			b.EnPassant = FromRankFile((m.From.Rank()+m.To.Rank())/2, m.From.File())
		}
		m = withDefaultPromotion(piece, m)
	}

	b.Squares[m.To] = piece
	b.Squares[m.From] = Empty
	if m.Promotion != NoPieceType {
		b.Squares[m.To] = NewPiece(us, m.Promotion)
	}

	if piece.Type() == King && abs(m.To.File()-m.From.File()) == 2 {
		rank := m.From.Rank()
		rook := NewPiece(us, Rook)
		if m.To.File() == 6 {
			b.Squares[FromRankFile(rank, 7)] = Empty
			b.Squares[FromRankFile(rank, 5)] = rook
		} else {
			b.Squares[FromRankFile(rank, 0)] = Empty
			b.Squares[FromRankFile(rank, 3)] = rook
		}
	}

	b.Castling &^= CastlingLoss(m.From) | CastlingLoss(m.To)
	return capture
}

// CastlingLoss returns the rights lost when a piece leaves or lands on sq.
func CastlingLoss(sq Square) uint8 {
	switch sq {
	case 4:
		return CastleWK | CastleWQ
	case 60:
		return CastleBK | CastleBQ
	case 0:
		return CastleWQ
	case 7:
		return CastleWK
	case 56:
		return CastleBQ
	case 63:
		return CastleBK
	}
	return 0
}

// SquarePiece is one square of a sense result.
type SquarePiece struct {
	Square Square
	Piece  Piece
}

// Sense returns the 3x3 window centered at sq, clipped to the board, ordered
// by rank then file.
func (b Board) Sense(sq Square) []SquarePiece {
	result := make([]SquarePiece, 0, 9)
	for dr := -1; dr <= 1; dr++ {
		for df := -1; df <= 1; df++ {
			s := FromRankFile(sq.Rank()+dr, sq.File()+df)
			if s == NoSquare {
				continue
			}
			result = append(result, SquarePiece{Square: s, Piece: b.Squares[s]})
		}
	}
	return result
}

// SenseFingerprint encodes the nine occupants of the window at sq into one
// number; off-board squares get their own digit.
func (b Board) SenseFingerprint(sq Square) uint64 {
	const offBoard = 13
	var fp uint64
	for dr := -1; dr <= 1; dr++ {
		for df := -1; df <= 1; df++ {
			code := uint64(offBoard)
			if s := FromRankFile(sq.Rank()+dr, sq.File()+df); s != NoSquare {
				code = uint64(b.Squares[s])
			}
			fp = fp*14 + code
		}
	}
	return fp
}

// SensibleSenses are the interior squares; an edge window sees a strict
// subset of some interior window.
func SensibleSenses() []Square {
	squares := make([]Square, 0, 36)
	for rank := 1; rank <= 6; rank++ {
		for file := 1; file <= 6; file++ {
			squares = append(squares, FromRankFile(rank, file))
		}
	}
	return squares
}

// SortMoves orders moves in place by from, to and promotion.
func SortMoves(moves []Move) {
	sort.Slice(moves, func(i, j int) bool { return moves[i].Less(moves[j]) })
}
