package chess

import "golang.org/x/exp/rand"

// ZobristTable holds the random keys used to hash positions. A table is
// immutable once built and is shared by reference; positions hashed with
// tables of the same seed always agree.
type ZobristTable struct {
	pieces    [13][64]uint64
	castling  [16]uint64
	enPassant [8]uint64
	side      uint64
}

func NewZobristTable(seed uint64) *ZobristTable {
	rng := rand.New(rand.NewSource(seed))
	z := &ZobristTable{}
	for piece := range z.pieces {
		for sq := range z.pieces[piece] {
			z.pieces[piece][sq] = rng.Uint64()
		}
	}
	for i := range z.castling {
		z.castling[i] = rng.Uint64()
	}
	for file := range z.enPassant {
		z.enPassant[file] = rng.Uint64()
	}
	z.side = rng.Uint64()
	return z
}

func (z *ZobristTable) Hash(b Board) uint64 {
	var h uint64
	for sq, p := range b.Squares {
		if p != Empty {
			h ^= z.pieces[p][sq]
		}
	}
	h ^= z.castling[b.Castling&0xF]
	if b.EnPassant != NoSquare {
		h ^= z.enPassant[b.EnPassant.File()]
	}
	if b.Side == Black {
		h ^= z.side
	}
	return h
}
