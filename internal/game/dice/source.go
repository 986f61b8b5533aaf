package dice

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand"
	"sync"
)

func requirePositive(n int) {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
}

// cryptoSource implements Source using crypto/rand.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand, used when a
// simulation is run without a seed.
//
// Postcondition: Every value returned by Intn is in [0, n).
func NewCryptoSource() Source {
	return cryptoSource{}
}

// Intn returns a cryptographically secure random int in [0, n).
//
// Precondition: n > 0. Panics if n <= 0 or if crypto/rand fails.
func (cryptoSource) Intn(n int) int {
	requirePositive(n)
	val, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}

// seededSource implements Source with a deterministic math/rand generator.
//
// Invariant: two sources created with the same seed return the same values
// for the same sequence of Intn arguments.
type seededSource struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSeededSource returns a reproducible Source for simulations and tests.
func NewSeededSource(seed int64) Source {
	return &seededSource{rng: mrand.New(mrand.NewSource(seed))}
}

// Intn returns a pseudo-random int in [0, n).
//
// Precondition: n > 0. Panics if n <= 0.
func (s *seededSource) Intn(n int) int {
	requirePositive(n)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}
