package vdf

import (
	"math/big"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"source.quilibrium.com/quilibrium/monorepo/vdfsearch/config"
)

// CachedGroupElementFactory memoizes derivations by seed. Derivation is
// pure, so a cached result is always identical to a fresh one.
type CachedGroupElementFactory struct {
	factory *GroupElementFactory
	cache   *lru.Cache[string, *Derivation]
}

func NewCachedGroupElementFactory(
	factory *GroupElementFactory,
	searchConfig *config.SearchConfig,
) (*CachedGroupElementFactory, error) {
	if factory == nil {
		panic("factory is nil")
	}

	size := searchConfig.DerivationCacheSize
	if size <= 0 {
		size = config.DefaultDerivationCacheSize
	}

	cache, err := lru.New[string, *Derivation](size)
	if err != nil {
		return nil, errors.Wrap(err, "new cached group element factory")
	}

	return &CachedGroupElementFactory{
		factory: factory,
		cache:   cache,
	}, nil
}

// Derive implements FormDeriver. Callers receive copies, never the cached
// values.
func (c *CachedGroupElementFactory) Derive(seed *big.Int) (*Derivation, error) {
	if seed == nil {
		return c.factory.Derive(seed)
	}

	key := seed.String()
	if d, ok := c.cache.Get(key); ok {
		return d.Clone(), nil
	}

	d, err := c.factory.Derive(seed)
	if err != nil {
		return nil, err
	}

	c.cache.Add(key, d.Clone())
	return d, nil
}

// DeriveForm implements FormDeriver.
func (c *CachedGroupElementFactory) DeriveForm(seed *big.Int) (
	*ABDeltaTriple,
	error,
) {
	d, err := c.Derive(seed)
	if err != nil {
		return nil, err
	}

	return d.Triple, nil
}

func (c *CachedGroupElementFactory) Len() int {
	return c.cache.Len()
}

var _ FormDeriver = (*CachedGroupElementFactory)(nil)
