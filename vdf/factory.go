package vdf

import (
	"math/big"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"source.quilibrium.com/quilibrium/monorepo/vdfsearch/config"
)

var ErrDerivationFailed = errors.New("derivation failed")

// Derivation is the outcome of deriving a starting element: the triple,
// the small divisor c with a·c = (b² - Δ)/4, and the PRNG index that
// produced b.
type Derivation struct {
	Triple  *ABDeltaTriple
	Divisor *big.Int
	Index   uint64
}

func (d *Derivation) Clone() *Derivation {
	return &Derivation{
		Triple:  d.Triple.Clone(),
		Divisor: new(big.Int).Set(d.Divisor),
		Index:   d.Index,
	}
}

type GroupElementFactory struct {
	logger       *zap.Logger
	discriminant *big.Int
	primeCeiling *big.Int
	maxAttempts  int
}

func NewGroupElementFactory(
	searchConfig *config.SearchConfig,
	logger *zap.Logger,
) (*GroupElementFactory, error) {
	if searchConfig == nil {
		panic("search config is nil")
	}

	if logger == nil {
		panic("logger is nil")
	}

	if err := searchConfig.Validate(); err != nil {
		return nil, errors.Wrap(err, "new group element factory")
	}

	discriminant, err := searchConfig.GetDiscriminant()
	if err != nil {
		return nil, errors.Wrap(err, "new group element factory")
	}

	return &GroupElementFactory{
		logger:       logger,
		discriminant: discriminant,
		primeCeiling: new(big.Int).SetUint64(searchConfig.PrimeCeiling),
		maxAttempts:  searchConfig.MaxDerivationAttempts,
	}, nil
}

func (f *GroupElementFactory) Discriminant() *big.Int {
	return new(big.Int).Set(f.discriminant)
}

// DeriveForm implements FormDeriver.
func (f *GroupElementFactory) DeriveForm(seed *big.Int) (*ABDeltaTriple, error) {
	d, err := f.Derive(seed)
	if err != nil {
		return nil, err
	}

	return d.Triple, nil
}

// Derive implements FormDeriver. For attempt i it sets b = 2·H(seed, i) + 1
// and u = (b² - Δ)/4, accepting a = u/c as soon as the current small prime
// c divides u. c starts at 2 and advances to the next prime, wrapped modulo
// the prime ceiling, after every rejected attempt.
func (f *GroupElementFactory) Derive(seed *big.Int) (*Derivation, error) {
	if seed == nil || seed.Sign() < 0 {
		return nil, errors.Wrap(
			errors.Wrap(ErrDerivationFailed, "seed must be a non-negative integer"),
			"derive",
		)
	}

	bitlen := f.discriminant.BitLen()
	c := big.NewInt(2)
	u := new(big.Int)
	rem := new(big.Int)

	for i := 0; i < f.maxAttempts; i++ {
		b := PRNG(seed, uint64(i), bitlen)
		b.Lsh(b, 1)
		b.Add(b, bigOne)

		// b is odd and Δ ≡ 1 mod 4, so 4 divides b² - Δ > 0
		u.Mul(b, b)
		u.Sub(u, f.discriminant)
		u.Rsh(u, 2)

		a, _ := new(big.Int).QuoRem(u, c, rem)
		if rem.Sign() == 0 {
			f.logger.Debug(
				"derived starting form",
				zap.Int("attempt", i),
				zap.String("divisor", c.String()),
				zap.Int("a_bits", a.BitLen()),
			)

			return &Derivation{
				Triple: &ABDeltaTriple{
					A:     a,
					B:     b,
					Delta: new(big.Int).Set(f.discriminant),
				},
				Divisor: new(big.Int).Set(c),
				Index:   uint64(i),
			}, nil
		}

		c = nextPrime(c)
		c.Mod(c, f.primeCeiling)
		if c.Cmp(bigTwo) < 0 {
			c.SetInt64(2)
		}
	}

	f.logger.Warn(
		"derivation exhausted attempts",
		zap.Int("max_attempts", f.maxAttempts),
	)

	return nil, errors.Wrap(
		errors.Wrap(ErrDerivationFailed, "attempts exhausted"),
		"derive",
	)
}

// nextPrime returns the smallest prime strictly greater than n. Only used
// with small n.
func nextPrime(n *big.Int) *big.Int {
	p := new(big.Int).Add(n, bigOne)
	for !p.ProbablyPrime(20) {
		p.Add(p, bigOne)
	}

	return p
}

var _ FormDeriver = (*GroupElementFactory)(nil)
