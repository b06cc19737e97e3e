package engine

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash"
)

// DefaultRepetitions is the number of earlier occurrences of a layout that
// makes the game a draw.
const DefaultRepetitions = 3

// repetition tracks layout fingerprints of the positions recorded in a game.
type repetition struct {
	threshold int
	seen      []uint64
}

func newRepetition(threshold int) *repetition {
	if threshold <= 0 {
		threshold = DefaultRepetitions
	}
	return &repetition{threshold: threshold}
}

func fingerprint(layout []float32) uint64 {
	buf := make([]byte, 0, 4*len(layout))
	for _, v := range layout {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}
	return xxhash.Sum64(buf)
}

// repeated reports whether fp already occurred threshold times. Matches
// need not be consecutive.
func (r *repetition) repeated(fp uint64) bool {
	count := 0
	for i := len(r.seen) - 1; i >= 0; i-- {
		if r.seen[i] == fp {
			count++
			if count >= r.threshold {
				return true
			}
		}
	}
	return false
}

func (r *repetition) record(fp uint64) {
	r.seen = append(r.seen, fp)
}
