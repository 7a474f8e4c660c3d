//
// Copyright (c) 2019 harmony-one
// Copyright (c) 2023 Quilibrium, Inc.
//
// SPDX-License-Identifier: MIT
//

package classgroup

import (
	"fmt"
	"math/big"

	"github.com/pkg/errors"
)

var (
	ErrInvalidForm   = errors.New("invalid form")
	ErrNotComposable = errors.New("forms not composable")
)

var (
	bigOne  = big.NewInt(1)
	bigTwo  = big.NewInt(2)
	bigFour = big.NewInt(4)
)

// Form is a positive definite binary quadratic form ax² + bxy + cy² of
// negative discriminant b² - 4ac. Forms are immutable: every operation
// returns a new Form.
type Form struct {
	a *big.Int
	b *big.Int
	c *big.Int
	d *big.Int
}

// NewForm builds the form (a, b, c) for the given discriminant, deriving c
// from b² - 4ac = delta. It fails when a is not positive, delta is not
// negative, or 4a does not divide b² - delta.
func NewForm(a, b, delta *big.Int) (*Form, error) {
	if a == nil || b == nil || delta == nil {
		return nil, errors.Wrap(ErrInvalidForm, "new form")
	}

	if a.Sign() <= 0 {
		return nil, errors.Wrap(
			errors.Wrap(ErrInvalidForm, "a must be positive"),
			"new form",
		)
	}

	if delta.Sign() >= 0 {
		return nil, errors.Wrap(
			errors.Wrap(ErrInvalidForm, "discriminant must be negative"),
			"new form",
		)
	}

	z := new(big.Int).Mul(b, b)
	z.Sub(z, delta)

	fourA := new(big.Int).Mul(a, bigFour)
	c, r := new(big.Int).QuoRem(z, fourA, new(big.Int))
	if r.Sign() != 0 {
		return nil, errors.Wrap(
			errors.Wrap(ErrInvalidForm, "4a does not divide b² - discriminant"),
			"new form",
		)
	}

	return &Form{
		a: new(big.Int).Set(a),
		b: new(big.Int).Set(b),
		c: c,
		d: new(big.Int).Set(delta),
	}, nil
}

// Identity returns the principal form of the discriminant, (1, 1, (1-Δ)/4)
// for Δ ≡ 1 mod 4 and (1, 0, -Δ/4) for Δ ≡ 0 mod 4.
func Identity(delta *big.Int) (*Form, error) {
	b := new(big.Int).Mod(delta, bigTwo)
	f, err := NewForm(bigOne, b, delta)
	if err != nil {
		return nil, errors.Wrap(err, "identity")
	}

	return f, nil
}

// newFormUnchecked trusts the caller to supply a consistent triple.
func newFormUnchecked(a, b, c, d *big.Int) *Form {
	return &Form{a: a, b: b, c: c, d: d}
}

func (f *Form) A() *big.Int {
	return new(big.Int).Set(f.a)
}

func (f *Form) B() *big.Int {
	return new(big.Int).Set(f.b)
}

func (f *Form) C() *big.Int {
	return new(big.Int).Set(f.c)
}

func (f *Form) Discriminant() *big.Int {
	return new(big.Int).Set(f.d)
}

// ADivisibleBy reports whether m divides the leading coefficient. This is
// the only check the search performs per step, so it avoids copying a.
func (f *Form) ADivisibleBy(m *big.Int) bool {
	return new(big.Int).Mod(f.a, m).Sign() == 0
}

func (f *Form) Clone() *Form {
	return newFormUnchecked(
		new(big.Int).Set(f.a),
		new(big.Int).Set(f.b),
		new(big.Int).Set(f.c),
		new(big.Int).Set(f.d),
	)
}

func (f *Form) String() string {
	return fmt.Sprintf("(%s, %s, %s)", f.a, f.b, f.c)
}

// IsNormalized reports whether -a < b <= a.
func (f *Form) IsNormalized() bool {
	negA := new(big.Int).Neg(f.a)
	return f.b.Cmp(negA) > 0 && f.b.Cmp(f.a) <= 0
}

// IsReduced reports whether the form is the canonical representative of
// its class: normalized, a <= c, and b >= 0 when a == c.
func (f *Form) IsReduced() bool {
	if !f.IsNormalized() {
		return false
	}

	switch f.a.Cmp(f.c) {
	case 1:
		return false
	case 0:
		return f.b.Sign() >= 0
	}

	return true
}

// Normalize moves b into (-a, a] without changing the class.
func (f *Form) Normalize() *Form {
	if f.IsNormalized() {
		return f.Clone()
	}

	a := new(big.Int).Set(f.a)
	twoA := new(big.Int).Lsh(a, 1)

	// r = (a - b) // 2a
	r := FloorDivision(new(big.Int).Sub(a, f.b), twoA)

	// c' = ar² + br + c
	c := new(big.Int).Mul(a, r)
	c.Mul(c, r)
	c.Add(c, new(big.Int).Mul(f.b, r))
	c.Add(c, f.c)

	// b' = b + 2ar
	b := new(big.Int).Mul(twoA, r)
	b.Add(b, f.b)

	return newFormUnchecked(a, b, c, new(big.Int).Set(f.d))
}

// Reduce returns the reduced representative of the form's class.
func (f *Form) Reduce() *Form {
	g := f.Normalize()
	a, b, c := g.a, g.b, g.c

	for a.Cmp(c) > 0 || (a.Cmp(c) == 0 && b.Sign() < 0) {
		// s = (c + b) // 2c
		twoC := new(big.Int).Lsh(c, 1)
		s := FloorDivision(new(big.Int).Add(c, b), twoC)

		// (a, b, c) = (c, -b + 2sc, cs² - bs + a)
		nb := new(big.Int).Mul(twoC, s)
		nb.Sub(nb, b)

		nc := new(big.Int).Mul(c, s)
		nc.Mul(nc, s)
		nc.Sub(nc, new(big.Int).Mul(b, s))
		nc.Add(nc, a)

		a, b, c = c, nb, nc
	}

	return newFormUnchecked(a, b, c, g.d).Normalize()
}

// Equal compares the reduced representatives of both classes.
func (f *Form) Equal(other *Form) bool {
	if f.d.Cmp(other.d) != 0 {
		return false
	}

	x := f.Reduce()
	y := other.Reduce()

	return x.a.Cmp(y.a) == 0 && x.b.Cmp(y.b) == 0 && x.c.Cmp(y.c) == 0
}
