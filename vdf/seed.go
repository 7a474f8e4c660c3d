package vdf

import (
	"crypto/rand"
	"io"
	"math/big"

	"github.com/pkg/errors"
	"golang.org/x/crypto/sha3"
)

const DefaultSeedDigits = 192

// RandomSeed draws a uniformly random integer with exactly digits decimal
// digits from r.
func RandomSeed(r io.Reader, digits int) (*big.Int, error) {
	if digits <= 0 {
		return nil, errors.Wrap(
			errors.New("digits must be positive"),
			"random seed",
		)
	}

	if r == nil {
		r = rand.Reader
	}

	ten := big.NewInt(10)
	lo := new(big.Int).Exp(ten, big.NewInt(int64(digits-1)), nil)
	span := new(big.Int).Mul(lo, big.NewInt(9))

	n, err := rand.Int(r, span)
	if err != nil {
		return nil, errors.Wrap(err, "random seed")
	}

	return n.Add(n, lo), nil
}

// SeedFromString reads s as a non-negative decimal integer, or, failing
// that, as the big-endian value of its SHA3-256 digest.
func SeedFromString(s string) *big.Int {
	if n, ok := new(big.Int).SetString(s, 10); ok && n.Sign() >= 0 {
		return n
	}

	digest := sha3.Sum256([]byte(s))
	return new(big.Int).SetBytes(digest[:])
}
