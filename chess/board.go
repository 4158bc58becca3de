package chess

import (
	"strings"
)

// Color is a side of the board.
type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Opponent() Color {
	return 1 - c
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// PieceType is a piece without its color.
type PieceType uint8

const (
	NoPieceType PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// Piece is a piece with its color encoded. Empty marks an unoccupied square.
type Piece uint8

const (
	Empty Piece = iota
	WPawn
	WKnight
	WBishop
	WRook
	WQueen
	WKing
	BPawn
	BKnight
	BBishop
	BRook
	BQueen
	BKing
)

// NewPiece combines a color and a type.
func NewPiece(c Color, t PieceType) Piece {
	if t == NoPieceType {
		return Empty
	}
	if c == White {
		return Piece(t)
	}
	return Piece(t) + BPawn - WPawn
}

func (p Piece) Color() Color {
	if p >= BPawn {
		return Black
	}
	return White
}

func (p Piece) Type() PieceType {
	if p == Empty {
		return NoPieceType
	}
	if p >= BPawn {
		return PieceType(p - BPawn + 1)
	}
	return PieceType(p)
}

func (p Piece) String() string {
	return string(" PNBRQKpnbrqk"[p])
}

// Castling flags
const (
	CastleWK uint8 = 1 << iota
	CastleWQ
	CastleBK
	CastleBQ
)

// Square is a board position (0-63), a1 = 0, h8 = 63.
type Square int8

const NoSquare Square = -1

func (sq Square) Rank() int { return int(sq) / 8 }

func (sq Square) File() int { return int(sq) % 8 }

func (sq Square) IsValid() bool {
	return sq >= 0 && sq < 64
}

func (sq Square) String() string {
	if !sq.IsValid() {
		return "-"
	}
	return string([]byte{"abcdefgh"[sq.File()], "12345678"[sq.Rank()]})
}

// FromRankFile creates a square from rank and file, or NoSquare when off the board.
func FromRankFile(rank, file int) Square {
	if rank < 0 || rank > 7 || file < 0 || file > 7 {
		return NoSquare
	}
	return Square(rank*8 + file)
}

// ParseSquare parses algebraic square names such as "e4".
func ParseSquare(s string) (Square, bool) {
	if len(s) != 2 {
		return NoSquare, false
	}
	sq := FromRankFile(int(s[1]-'1'), int(s[0]-'a'))
	return sq, sq != NoSquare
}

// Move is a requested or taken move. A pass has both squares set to NoSquare.
type Move struct {
	From      Square
	To        Square
	Promotion PieceType
}

// PassMove is the "no move" action.
var PassMove = Move{From: NoSquare, To: NoSquare}

func (m Move) IsPass() bool {
	return m == PassMove
}

// String returns UCI notation (e.g. "e2e4", "e7e8q"), "0000" for a pass.
func (m Move) String() string {
	if m.IsPass() {
		return "0000"
	}
	s := m.From.String() + m.To.String()
	if m.Promotion != NoPieceType {
		s += string(" pnbrqk"[m.Promotion])
	}
	return s
}

// ParseMove parses UCI notation.
func ParseMove(s string) (Move, bool) {
	if s == "0000" {
		return PassMove, true
	}
	if len(s) < 4 || len(s) > 5 {
		return Move{}, false
	}
	from, ok1 := ParseSquare(s[0:2])
	to, ok2 := ParseSquare(s[2:4])
	if !ok1 || !ok2 {
		return Move{}, false
	}
	m := Move{From: from, To: to}
	if len(s) == 5 {
		i := strings.IndexByte(" pnbrqk", s[4])
		if i < int(Knight) || i > int(Queen) {
			return Move{}, false
		}
		m.Promotion = PieceType(i)
	}
	return m, true
}

// Less orders moves for deterministic action lists.
func (m Move) Less(o Move) bool {
	if m.From != o.From {
		return m.From < o.From
	}
	if m.To != o.To {
		return m.To < o.To
	}
	return m.Promotion < o.Promotion
}

// Board is a complete position. It is a comparable value: == is position
// equality and a Board can key a map.
type Board struct {
	Squares   [64]Piece
	Side      Color
	Castling  uint8
	EnPassant Square
}

// NewBoard returns the standard starting position.
func NewBoard() Board {
	b := Board{
		Side:      White,
		Castling:  CastleWK | CastleWQ | CastleBK | CastleBQ,
		EnPassant: NoSquare,
	}
	backRank := []PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for i, t := range backRank {
		b.Squares[i] = NewPiece(White, t)
		b.Squares[56+i] = NewPiece(Black, t)
	}
	for i := 0; i < 8; i++ {
		b.Squares[8+i] = WPawn
		b.Squares[48+i] = BPawn
	}
	return b
}

func (b Board) Turn() Color {
	return b.Side
}

func (b Board) PieceAt(sq Square) Piece {
	if !sq.IsValid() {
		return Empty
	}
	return b.Squares[sq]
}

// KingSquare returns the square of c's king, or NoSquare once it was captured.
func (b Board) KingSquare(c Color) Square {
	king := NewPiece(c, King)
	for sq, p := range b.Squares {
		if p == king {
			return Square(sq)
		}
	}
	return NoSquare
}

func (b Board) HasKing(c Color) bool {
	return b.KingSquare(c) != NoSquare
}

// Fog hides every piece of c's opponent, and the en passant square of an
// opponent double push.
func (b Board) Fog(c Color) Board {
	fogged := b
	for sq, p := range fogged.Squares {
		if p != Empty && p.Color() != c {
			fogged.Squares[sq] = Empty
		}
	}
	if b.EnPassant != NoSquare && b.Side == c {
		fogged.EnPassant = NoSquare
	}
	return fogged
}

// String renders the board with rank 8 on top.
func (b Board) String() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		sb.WriteByte("12345678"[rank])
		sb.WriteByte(' ')
		for file := 0; file < 8; file++ {
			p := b.Squares[FromRankFile(rank, file)]
			if p == Empty {
				sb.WriteByte('.')
			} else {
				sb.WriteString(p.String())
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  abcdefgh\n")
	return sb.String()
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
