package game

import (
	"math"

	"lukechampine.com/frand"
)

// Zobrist keys are drawn once per process. They identify positions inside a
// run; they are never persisted.
var (
	zobristPieces [NumPieceTypes][NumSquares]uint64
	zobristBlack  uint64
)

func init() {
	const bignum = math.MaxUint64 - 1
	for p := 0; p < NumPieceTypes; p++ {
		for s := 0; s < NumSquares; s++ {
			zobristPieces[p][s] = frand.Uint64n(bignum) + 1
		}
	}
	zobristBlack = frand.Uint64n(bignum) + 1
}

func pieceKey(p Piece, s Square) uint64 {
	if p.IsEmpty() {
		return 0
	}
	return zobristPieces[p.Index()][s]
}

func (j *Jungle) computeKey() uint64 {
	var key uint64
	for s := Square(0); s < NumSquares; s++ {
		key ^= pieceKey(j.squares[s], s)
	}
	if j.side == Black {
		key ^= zobristBlack
	}
	return key
}
