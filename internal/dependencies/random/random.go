package random

import (
	"crypto/rand"
	"math/big"
)

// Random picks random values for generated names and demo data
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int

	// Choice returns one of options, or "" when there are none
	Choice(options []string) string
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a Random backed by crypto/rand
func New() *CryptoRandom {
	return &CryptoRandom{}
}

func (r *CryptoRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	result, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(result.Int64())
}

func (r *CryptoRandom) Choice(options []string) string {
	if len(options) == 0 {
		return ""
	}
	return options[r.Intn(len(options))]
}
