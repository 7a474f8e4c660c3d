//
// Copyright (c) 2019 harmony-one
//
// SPDX-License-Identifier: MIT
//

package classgroup

import (
	"math/big"
)

// FloorDivision returns ⌊x / y⌋, rounding toward negative infinity for
// either sign of y.
func FloorDivision(x, y *big.Int) *big.Int {
	q, r := new(big.Int).QuoRem(x, y, new(big.Int))
	if (r.Sign() > 0 && y.Sign() < 0) || (r.Sign() < 0 && y.Sign() > 0) {
		q.Sub(q, bigOne)
	}

	return q
}

// SolveMod solves ax ≡ b (mod m) for m > 0. All solutions are s + k·t for
// integer k. ok is false when no solution exists.
func SolveMod(a, b, m *big.Int) (s, t *big.Int, ok bool) {
	g, d, _ := extendedGCD(a, m)
	if g.Sign() == 0 {
		return nil, nil, false
	}

	q, r := new(big.Int).DivMod(b, g, new(big.Int))
	if r.Sign() != 0 {
		return nil, nil, false
	}

	s = q.Mul(q, d)
	s.Mod(s, m)

	return s, FloorDivision(m, g), true
}

// extendedGCD returns r, s, t with r = gcd(a, b) = a·s + b·t. Unlike
// big.Int.GCD it accepts a negative a; b must be non-negative.
func extendedGCD(a, b *big.Int) (r, s, t *big.Int) {
	r0, r1 := new(big.Int).Set(a), new(big.Int).Set(b)
	s0, s1 := big.NewInt(1), big.NewInt(0)
	t0, t1 := big.NewInt(0), big.NewInt(1)

	if r0.Cmp(r1) > 0 {
		r0, r1 = r1, r0
		s0, t0 = t0, s0
		s1, t1 = t1, s1
	}

	q, rem := new(big.Int), new(big.Int)
	for r1.Sign() > 0 {
		q.DivMod(r0, r1, rem)

		r0, r1 = r1, new(big.Int).Set(rem)
		s0, s1 = s1, new(big.Int).Sub(s0, new(big.Int).Mul(q, s1))
		t0, t1 = t1, new(big.Int).Sub(t0, new(big.Int).Mul(q, t1))
	}

	return r0, s0, t0
}

// gcdAny is gcd(|a|, |b|) with gcd(0, x) = |x|.
func gcdAny(a, b *big.Int) *big.Int {
	if a.Sign() == 0 {
		return new(big.Int).Abs(b)
	}

	if b.Sign() == 0 {
		return new(big.Int).Abs(a)
	}

	return new(big.Int).GCD(
		nil,
		nil,
		new(big.Int).Abs(a),
		new(big.Int).Abs(b),
	)
}
