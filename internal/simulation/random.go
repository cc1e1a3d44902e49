package simulation

import (
	"math/rand/v2"
	"sync"
)

// Rand is the source of uniform draws in [0,1).
// Tests substitute a fixed sequence to pin rule branches.
type Rand interface {
	Float64() float64
}

// pcgStream decorrelates the two PCG seed words.
const pcgStream = 0x9e3779b97f4a7c15

// lockedRand makes a PCG generator safe for the concurrent HTTP handlers
// that drive the stateless engine.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRand returns a goroutine-safe source. A zero seed picks a random one.
func NewRand(seed int64) Rand {
	if seed == 0 {
		seed = rand.Int64()
	}
	s := uint64(seed) //nolint:gosec // bit pattern reuse, sign is irrelevant
	return &lockedRand{r: rand.New(rand.NewPCG(s, s^pcgStream))}
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}
