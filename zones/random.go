package zones

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// Randomizer is the source of randomness for tie resolution. Its seed is recorded so a
// draw can be replayed during an audit.
type Randomizer interface {
	Perm(n int) []int
	IntN(n int) int
	Seed() int64
}

type seededRandomizer struct {
	seed int64
	rng  *rand.Rand
}

// NewSeededRandomizer returns a deterministic Randomizer for the given seed.
func NewSeededRandomizer(seed int64) Randomizer {
	s := uint64(seed)
	return &seededRandomizer{
		seed: seed,
		rng:  rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15)),
	}
}

// NewRandomizer seeds a Randomizer from crypto/rand.
func NewRandomizer() Randomizer {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		// crypto/rand only fails on a broken platform; fall back to the runtime source.
		return NewSeededRandomizer(rand.Int64())
	}
	return NewSeededRandomizer(int64(binary.LittleEndian.Uint64(b[:])))
}

func (r *seededRandomizer) Perm(n int) []int { return r.rng.Perm(n) }

func (r *seededRandomizer) IntN(n int) int { return r.rng.IntN(n) }

func (r *seededRandomizer) Seed() int64 { return r.seed }
