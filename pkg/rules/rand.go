package rules

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand/v2"
)

// NewRand returns the generator for the move at sequence in a game seeded with seed.
// The same pair always yields the same stream.
func NewRand(seed string, sequence int) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(sequence))
	s2 := fnv.New64()
	_, _ = s2.Write(buf[:])
	_, _ = s2.Write([]byte(seed))
	return rand.New(rand.NewPCG(h.Sum64(), s2.Sum64()))
}

// Shuffle permutes items in place using r.
func Shuffle[T any](r *rand.Rand, items []T) {
	r.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
}

// Times returns 1..n.
func Times(n int) []int {
	if n <= 0 {
		return nil
	}
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// Range returns the integers from lo to hi inclusive, stepping by step.
func Range(lo, hi, step int) []int {
	if step <= 0 {
		step = 1
	}
	var out []int
	for i := lo; i <= hi; i += step {
		out = append(out, i)
	}
	return out
}
