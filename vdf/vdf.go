// Package vdf searches the class group of a fixed negative discriminant for
// VDF witnesses: iteration counts of repeated squaring at which the leading
// coefficient of the reduced form is divisible by a configured modulus.
//
// A search starts from a form derived deterministically from a seed
// (GroupElementFactory) and runs in a single background goroutine
// (SearchWorker) that reports witnesses on a channel until it is stopped.
package vdf

import (
	"context"
	"math/big"

	"github.com/pkg/errors"
	"source.quilibrium.com/quilibrium/monorepo/vdfsearch/classgroup"
)

// ABDeltaTriple is an unreduced starting element (a, b) of the class group
// of discriminant Delta.
type ABDeltaTriple struct {
	A     *big.Int
	B     *big.Int
	Delta *big.Int
}

func (t *ABDeltaTriple) Form() (*classgroup.Form, error) {
	if t == nil {
		return nil, errors.Wrap(classgroup.ErrInvalidForm, "triple form")
	}

	f, err := classgroup.NewForm(t.A, t.B, t.Delta)
	if err != nil {
		return nil, errors.Wrap(err, "triple form")
	}

	return f, nil
}

func (t *ABDeltaTriple) Clone() *ABDeltaTriple {
	return &ABDeltaTriple{
		A:     new(big.Int).Set(t.A),
		B:     new(big.Int).Set(t.B),
		Delta: new(big.Int).Set(t.Delta),
	}
}

// FormDeriver maps seeds to starting elements.
type FormDeriver interface {
	Derive(seed *big.Int) (*Derivation, error)
	DeriveForm(seed *big.Int) (*ABDeltaTriple, error)
}

// Searcher starts background witness searches.
type Searcher interface {
	StartSearch(ctx context.Context, triple *ABDeltaTriple) (*Search, error)
}

var (
	bigOne = big.NewInt(1)
	bigTwo = big.NewInt(2)
)
