package dice

import (
	"crypto/rand"
	"math/big"
)

type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
//
// Postcondition: Every value returned by Intn is in [0, n).
func NewCryptoSource() Source {
	return cryptoSource{}
}

// Intn panics when n <= 0 or crypto/rand fails.
func (cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return int(v.Int64())
}

// Fixed is a Source that always returns the same value, clamped to n-1.
type Fixed int

// Intn returns min(f, n-1).
func (f Fixed) Intn(n int) int {
	if int(f) >= n {
		return n - 1
	}
	return int(f)
}
