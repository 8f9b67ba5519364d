package selection

import (
	"math/rand"
	"time"
)

// Rand is the single source of randomness for pool generation. It is
// injected rather than called ambiently so tests can pin draws to force
// specific branches.
type Rand interface {
	Float64() float64
}

// DecideWithProbability draws a boolean that is true with probability p.
func DecideWithProbability(rng Rand, p float64) bool {
	return rng.Float64() < p
}

func NewRand() Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
