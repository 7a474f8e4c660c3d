package vdf

import (
	"context"
	"math/big"

	"github.com/pkg/errors"
)

// Replay squares the reduced starting form iterations times without pacing
// and returns every witness at or below iterations, in order. It is the
// synchronous counterpart of a search and produces the same prefix of the
// witness stream.
func Replay(
	ctx context.Context,
	triple *ABDeltaTriple,
	iterations uint64,
	modulus *big.Int,
) ([]*big.Int, error) {
	if modulus == nil || modulus.Sign() <= 0 {
		return nil, errors.Wrap(
			errors.New("modulus must be positive"),
			"replay",
		)
	}

	f, err := triple.Form()
	if err != nil {
		return nil, errors.Wrap(err, "replay")
	}

	g := f.Reduce()
	witnesses := []*big.Int{}
	if g.ADivisibleBy(modulus) {
		witnesses = append(witnesses, new(big.Int))
	}

	for i := uint64(1); i <= iterations; i++ {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return witnesses, errors.Wrap(err, "replay")
			}
		}

		if g, err = g.Square(); err != nil {
			return witnesses, errors.Wrap(err, "replay")
		}

		if g.ADivisibleBy(modulus) {
			witnesses = append(witnesses, new(big.Int).SetUint64(i))
		}
	}

	return witnesses, nil
}

// VerifyWitness reports whether iteration is a witness for the triple, by
// squaring the reduced starting form iteration times.
func VerifyWitness(
	ctx context.Context,
	triple *ABDeltaTriple,
	iteration *big.Int,
	modulus *big.Int,
) (bool, error) {
	if iteration == nil || iteration.Sign() < 0 || !iteration.IsUint64() {
		return false, errors.Wrap(
			errors.New("iteration out of range"),
			"verify witness",
		)
	}

	if modulus == nil || modulus.Sign() <= 0 {
		return false, errors.Wrap(
			errors.New("modulus must be positive"),
			"verify witness",
		)
	}

	f, err := triple.Form()
	if err != nil {
		return false, errors.Wrap(err, "verify witness")
	}

	g := f.Reduce()
	n := iteration.Uint64()
	for i := uint64(1); i <= n; i++ {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return false, errors.Wrap(err, "verify witness")
			}
		}

		if g, err = g.Square(); err != nil {
			return false, errors.Wrap(err, "verify witness")
		}
	}

	return g.ADivisibleBy(modulus), nil
}
