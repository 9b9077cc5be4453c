package deck

import (
	crand "crypto/rand"
	"math/big"
	rand "math/rand/v2"
)

// Shuffler produces a uniform permutation of a deck. The engine takes
// it as an injected capability so production play can use an
// unpredictable source while tests use a seeded one.
type Shuffler interface {
	Shuffle(cards []Card)
}

// CryptoShuffler shuffles with crypto/rand. This is the production
// default: shuffle order must be unpredictable when real chips are on
// the line.
type CryptoShuffler struct{}

// Shuffle performs a Fisher-Yates shuffle driven by crypto/rand.
func (CryptoShuffler) Shuffle(cards []Card) {
	for i := len(cards) - 1; i > 0; i-- {
		j := cryptoIntn(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

func cryptoIntn(n int) int {
	b, err := crand.Int(crand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand.Reader failing means the platform entropy
		// source is broken; nothing sensible to fall back to.
		panic(err)
	}
	return int(b.Int64())
}

// SeededShuffler shuffles with a deterministic PRNG. Test mode only.
type SeededShuffler struct {
	rng *rand.Rand
}

// NewSeededShuffler returns a shuffler backed by the given PRNG.
func NewSeededShuffler(rng *rand.Rand) *SeededShuffler {
	return &SeededShuffler{rng: rng}
}

// Shuffle performs a Fisher-Yates shuffle using the seeded PRNG.
func (s *SeededShuffler) Shuffle(cards []Card) {
	for i := len(cards) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}
