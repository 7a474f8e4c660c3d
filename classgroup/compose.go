//
// Copyright (c) 2019 harmony-one
// Copyright (c) 2023 Quilibrium, Inc.
//
// SPDX-License-Identifier: MIT
//

package classgroup

import (
	"math/big"

	"github.com/pkg/errors"
)

// Compose returns the reduced product of f and other in the class group.
// Both forms must share a discriminant.
func (f *Form) Compose(other *Form) (*Form, error) {
	if f.d.Cmp(other.d) != 0 {
		return nil, errors.Wrap(
			errors.Wrap(ErrNotComposable, "discriminant mismatch"),
			"compose",
		)
	}

	x := f.Reduce()
	y := other.Reduce()

	// g = (b2 + b1) // 2, h = (b2 - b1) // 2
	g := FloorDivision(new(big.Int).Add(x.b, y.b), bigTwo)
	h := FloorDivision(new(big.Int).Sub(y.b, x.b), bigTwo)

	// w = gcd(a1, a2, g)
	w := gcdAny(x.a, gcdAny(y.a, g))

	s := FloorDivision(x.a, w)
	t := FloorDivision(y.a, w)
	u := FloorDivision(g, w)
	st := new(big.Int).Mul(s, t)
	tu := new(big.Int).Mul(t, u)

	// k0, k1 solve tu·k ≡ hu + s·c1 (mod st)
	hu := new(big.Int).Mul(h, u)
	sc := new(big.Int).Mul(s, x.c)
	rhs := new(big.Int).Add(hu, sc)
	k0, k1, ok := SolveMod(tu, rhs, st)
	if !ok {
		return nil, errors.Wrap(ErrNotComposable, "compose")
	}

	// n solves t·k1·n ≡ h - t·k0 (mod s)
	n, _, ok := SolveMod(
		new(big.Int).Mul(t, k1),
		new(big.Int).Sub(h, new(big.Int).Mul(t, k0)),
		s,
	)
	if !ok {
		return nil, errors.Wrap(ErrNotComposable, "compose")
	}

	k := new(big.Int).Mul(k1, n)
	k.Add(k, k0)

	// l = (tk - h) // s
	l := FloorDivision(new(big.Int).Sub(new(big.Int).Mul(t, k), h), s)

	// m = (tuk - hu - s·c1) // st
	m := new(big.Int).Mul(tu, k)
	m.Sub(m, hu)
	m.Sub(m, sc)
	m = FloorDivision(m, st)

	// a3 = st, b3 = wu - (kt + ls), c3 = kl - wm
	b3 := new(big.Int).Mul(w, u)
	b3.Sub(b3, new(big.Int).Mul(k, t))
	b3.Sub(b3, new(big.Int).Mul(l, s))

	c3 := new(big.Int).Mul(k, l)
	c3.Sub(c3, new(big.Int).Mul(w, m))

	return newFormUnchecked(st, b3, c3, new(big.Int).Set(x.d)).Reduce(), nil
}

// Square returns the reduced square of f. When gcd(a, b) = 1 the square is
// (a², b - 2aµ, µ² - (bµ - c)/a) with bµ ≡ c (mod a); other forms fall back
// to general composition.
func (f *Form) Square() (*Form, error) {
	x := f.Reduce()

	mu, _, ok := SolveMod(x.b, x.c, x.a)
	if !ok || gcdAny(x.a, x.b).Cmp(bigOne) != 0 {
		sq, err := x.Compose(x)
		if err != nil {
			return nil, errors.Wrap(err, "square")
		}

		return sq, nil
	}

	a := new(big.Int).Mul(x.a, x.a)

	amu := new(big.Int).Mul(x.a, mu)
	b := new(big.Int).Sub(x.b, amu.Lsh(amu, 1))

	q := new(big.Int).Mul(x.b, mu)
	q.Sub(q, x.c)
	q = FloorDivision(q, x.a)
	c := new(big.Int).Mul(mu, mu)
	c.Sub(c, q)

	return newFormUnchecked(a, b, c, new(big.Int).Set(x.d)).Reduce(), nil
}

// Pow raises f to a non-negative exponent by square and multiply.
func (f *Form) Pow(n *big.Int) (*Form, error) {
	if n.Sign() < 0 {
		return nil, errors.Wrap(ErrInvalidForm, "negative exponent")
	}

	result, err := Identity(f.d)
	if err != nil {
		return nil, errors.Wrap(err, "pow")
	}

	base := f.Reduce()
	for i := 0; i < n.BitLen(); i++ {
		if n.Bit(i) == 1 {
			if result, err = result.Compose(base); err != nil {
				return nil, errors.Wrap(err, "pow")
			}
		}

		if i+1 < n.BitLen() {
			if base, err = base.Square(); err != nil {
				return nil, errors.Wrap(err, "pow")
			}
		}
	}

	return result, nil
}
