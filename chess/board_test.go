package chess

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustFEN(t *testing.T, fen string) Board {
	t.Helper()
	b, err := FromFEN(fen)
	require.NoError(t, err)
	return b
}

func mustMove(t *testing.T, uci string) Move {
	t.Helper()
	m, ok := ParseMove(uci)
	require.True(t, ok, "Move %q should parse", uci)
	return m
}

func TestNewBoard(t *testing.T) {
	b := NewBoard()

	pieces := 0
	for _, p := range b.Squares {
		if p != Empty {
			pieces++
		}
	}
	require.Equal(t, 32, pieces, "Starting position should have 32 pieces")
	require.Equal(t, White, b.Turn(), "White should move first")
	require.Len(t, b.PseudoLegalMoves(), 20, "Starting position should have 20 moves")
	require.Equal(t, Square(4), b.KingSquare(White))
	require.Equal(t, Square(60), b.KingSquare(Black))
}

func TestFEN(t *testing.T) {
	t.Run("round trip of the starting position", func(t *testing.T) {
		start := "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

		require.Equal(t, start, NewBoard().FEN())
		require.Equal(t, NewBoard(), mustFEN(t, start), "Parsed board should equal the starting position")
	})

	t.Run("en passant and side to move", func(t *testing.T) {
		b := mustFEN(t, "4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1")

		require.Equal(t, Square(43), b.EnPassant, "En passant square should be d6")
		require.Equal(t, uint8(0), b.Castling)
		require.Equal(t, "4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1", b.FEN())
	})

	t.Run("round trip with black to move and partial castling", func(t *testing.T) {
		fen := "r3k2r/8/8/8/4Pp2/8/8/R3K2R b Kq e3 0 1"

		require.Equal(t, fen, mustFEN(t, fen).FEN())
	})

	t.Run("invalid FEN", func(t *testing.T) {
		_, err := FromFEN("not a fen")
		require.Error(t, err)
	})
}

func TestRequestedToTaken(t *testing.T) {
	tests := []struct {
		name      string
		fen       string
		requested string
		taken     string
	}{
		{"legal move is unchanged", "4k3/8/8/8/8/8/4P3/4K3 w - - 0 1", "e2e4", "e2e4"},
		{"slide stops at first blocker", "4k3/8/8/8/3p4/8/8/3QK3 w - - 0 1", "d1d8", "d1d4"},
		{"diagonal slide stops at first blocker", "4k3/8/8/8/8/2p5/8/B3K3 w - - 0 1", "a1f6", "a1c3"},
		{"blocked pawn push passes", "4k3/8/8/8/8/4p3/4P3/4K3 w - - 0 1", "e2e3", "0000"},
		{"blocked double push stops short", "4k3/8/8/8/4p3/8/4P3/4K3 w - - 0 1", "e2e4", "e2e3"},
		{"double push blocked at once passes", "4k3/8/8/8/8/4p3/4P3/4K3 w - - 0 1", "e2e4", "0000"},
		{"slide onto own piece stops before it", "4k3/8/8/8/3P4/8/8/3QK3 w - - 0 1", "d1d8", "d1d3"},
		{"knight cannot slide", "4k3/8/8/8/8/8/3P4/1N2K3 w - - 0 1", "b1d2", "0000"},
		{"pawn capture onto empty square passes", "4k3/8/8/8/8/8/4P3/4K3 w - - 0 1", "e2d3", "0000"},
		{"promotion defaults to queen", "8/4P3/8/8/8/8/8/k6K w - - 0 1", "e7e8", "e7e8q"},
		{"underpromotion is kept", "8/4P3/8/8/8/8/8/k6K w - - 0 1", "e7e8n", "e7e8n"},
		{"castling with empty squares", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "e1g1", "e1g1"},
		{"castling blocked by a hidden piece", "4k3/8/8/8/8/8/8/4Kb1R w K - 0 1", "e1g1", "0000"},
		{"moving an empty square passes", "4k3/8/8/8/8/8/8/4K3 w - - 0 1", "a1a2", "0000"},
		{"pass stays a pass", "4k3/8/8/8/8/8/8/4K3 w - - 0 1", "0000", "0000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mustFEN(t, tt.fen)

			got := b.RequestedToTaken(mustMove(t, tt.requested))

			require.Equal(t, tt.taken, got.String())
		})
	}
}

func TestApply(t *testing.T) {
	t.Run("capture reports the square", func(t *testing.T) {
		b := mustFEN(t, "4k3/8/8/8/3p4/8/8/3QK3 w - - 0 1")

		capture := b.Apply(mustMove(t, "d1d4"))

		require.Equal(t, Square(27), capture, "Capture should be on d4")
		require.Equal(t, WQueen, b.PieceAt(27))
		require.Equal(t, Black, b.Turn())
	})

	t.Run("en passant reports the captured pawn square", func(t *testing.T) {
		b := mustFEN(t, "4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1")

		capture := b.Apply(mustMove(t, "e5d6"))

		require.Equal(t, "d5", capture.String())
		require.Equal(t, Empty, b.PieceAt(35), "Captured pawn should be removed")
	})

	t.Run("castling moves the rook and clears rights", func(t *testing.T) {
		b := mustFEN(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")

		capture := b.Apply(mustMove(t, "e1g1"))

		require.Equal(t, NoSquare, capture)
		require.Equal(t, WKing, b.PieceAt(6))
		require.Equal(t, WRook, b.PieceAt(5))
		require.Equal(t, Empty, b.PieceAt(7))
		require.Equal(t, CastleBK|CastleBQ, b.Castling)
	})

	t.Run("double push sets en passant", func(t *testing.T) {
		b := NewBoard()

		b.Apply(mustMove(t, "e2e4"))

		require.Equal(t, "e3", b.EnPassant.String())
	})

	t.Run("pass hands over the turn", func(t *testing.T) {
		b := NewBoard()
		before := b

		capture := b.Apply(PassMove)

		require.Equal(t, NoSquare, capture)
		require.Equal(t, before.Squares, b.Squares)
		require.Equal(t, Black, b.Turn())
	})

	t.Run("king capture removes the king", func(t *testing.T) {
		b := mustFEN(t, "4k3/8/8/8/8/8/8/4RK2 w - - 0 1")

		b.Apply(mustMove(t, "e1e8"))

		require.False(t, b.HasKing(Black))
		require.Equal(t, NoSquare, b.KingSquare(Black))
	})
}

func TestSense(t *testing.T) {
	t.Run("interior window has nine squares", func(t *testing.T) {
		b := NewBoard()

		result := b.Sense(9) // b2

		require.Len(t, result, 9)
		require.Equal(t, SquarePiece{Square: 0, Piece: WRook}, result[0])
	})

	t.Run("corner window is clipped", func(t *testing.T) {
		require.Len(t, NewBoard().Sense(0), 4)
	})

	t.Run("fingerprint tells windows apart", func(t *testing.T) {
		b := NewBoard()
		moved := b
		moved.Apply(mustMove(t, "b1c3"))

		require.NotEqual(t, b.SenseFingerprint(9), moved.SenseFingerprint(9))
		require.Equal(t, b.SenseFingerprint(36), moved.SenseFingerprint(36), "Window far from the move should not change")
	})

	t.Run("sensible senses are interior", func(t *testing.T) {
		squares := SensibleSenses()

		require.Len(t, squares, 36)
		for _, sq := range squares {
			require.Len(t, NewBoard().Sense(sq), 9)
		}
	})
}

func TestFog(t *testing.T) {
	fog := NewBoard().Fog(White)

	for _, p := range fog.Squares {
		if p != Empty {
			require.Equal(t, White, p.Color(), "Fog should hide every black piece")
		}
	}
	require.Equal(t, WKing, fog.PieceAt(4))

	t.Run("en passant square of a double push", func(t *testing.T) {
		b := NewBoard()
		b.Apply(mustMove(t, "e2e4"))

		require.Equal(t, "e3", b.Fog(White).EnPassant.String(), "The pusher knows its own double push")
		require.Equal(t, NoSquare, b.Fog(Black).EnPassant, "The opponent's double push is hidden")
	})
}

func TestHash(t *testing.T) {
	z := NewZobristTable(7)
	b := NewBoard()
	same := NewBoard()
	moved := NewBoard()
	moved.Apply(mustMove(t, "g1f3"))

	require.Equal(t, z.Hash(b), z.Hash(same))
	require.NotEqual(t, z.Hash(b), z.Hash(moved))
	require.NotEqual(t, z.Hash(moved), z.Hash(moved.Fog(White)), "Hidden pieces should change the hash")
	require.Equal(t, z.Hash(b), NewZobristTable(7).Hash(same), "Tables with one seed should agree")
}

func TestParseMove(t *testing.T) {
	m := mustMove(t, "e7e8q")

	require.Equal(t, Queen, m.Promotion)
	require.Equal(t, "e7e8q", m.String())

	_, ok := ParseMove("e7e8k")
	require.False(t, ok, "King promotion should not parse")
	_, ok = ParseMove("z9a1")
	require.False(t, ok)
}
