package chess

import (
	"fmt"

	nchess "github.com/notnil/chess"
)

var fromNotnilType = map[nchess.PieceType]PieceType{
	nchess.Pawn:   Pawn,
	nchess.Knight: Knight,
	nchess.Bishop: Bishop,
	nchess.Rook:   Rook,
	nchess.Queen:  Queen,
	nchess.King:   King,
}

var toNotnilType = map[PieceType]nchess.PieceType{
	Pawn:   nchess.Pawn,
	Knight: nchess.Knight,
	Bishop: nchess.Bishop,
	Rook:   nchess.Rook,
	Queen:  nchess.Queen,
	King:   nchess.King,
}

// FromFEN parses a FEN string. Validation is delegated to notnil/chess.
func FromFEN(fen string) (Board, error) {
	opt, err := nchess.FEN(fen)
	if err != nil {
		return Board{}, fmt.Errorf("failed to parse FEN %q: %w", fen, err)
	}
	pos := nchess.NewGame(opt).Position()

	b := Board{EnPassant: NoSquare}
	for sq, p := range pos.Board().SquareMap() {
		c := White
		if p.Color() == nchess.Black {
			c = Black
		}
		b.Squares[sq] = NewPiece(c, fromNotnilType[p.Type()])
	}
	if pos.Turn() == nchess.Black {
		b.Side = Black
	}

	rights := pos.CastleRights()
	if rights.CanCastle(nchess.White, nchess.KingSide) {
		b.Castling |= CastleWK
	}
	if rights.CanCastle(nchess.White, nchess.QueenSide) {
		b.Castling |= CastleWQ
	}
	if rights.CanCastle(nchess.Black, nchess.KingSide) {
		b.Castling |= CastleBK
	}
	if rights.CanCastle(nchess.Black, nchess.QueenSide) {
		b.Castling |= CastleBQ
	}
	if ep := pos.EnPassantSquare(); ep != nchess.NoSquare {
		b.EnPassant = Square(ep)
	}
	return b, nil
}

// FEN renders the position through notnil/chess; move counters are not
// tracked and print as "0 1".
func (b Board) FEN() string {
	squares := map[nchess.Square]nchess.Piece{}
	for sq, p := range b.Squares {
		if p == Empty {
			continue
		}
		c := nchess.White
		if p.Color() == Black {
			c = nchess.Black
		}
		squares[nchess.Square(sq)] = nchess.NewPiece(toNotnilType[p.Type()], c)
	}

	turn := nchess.White
	if b.Side == Black {
		turn = nchess.Black
	}

	rights := ""
	for i, flag := range []uint8{CastleWK, CastleWQ, CastleBK, CastleBQ} {
		if b.Castling&flag != 0 {
			rights += string("KQkq"[i])
		}
	}
	if rights == "" {
		rights = "-"
	}

	ep := "-"
	if b.EnPassant != NoSquare {
		ep = nchess.Square(b.EnPassant).String()
	}
	return fmt.Sprintf("%s %s %s %s 0 1", nchess.NewBoard(squares), turn, nchess.CastleRights(rights), ep)
}
